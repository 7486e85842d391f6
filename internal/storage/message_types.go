package storage

import "time"

// ResumeUploadMessage 简历上传消息
type ResumeUploadMessage struct {
	SubmissionUUID      string    `json:"submission_uuid"`        // 提交UUID，主键
	SubmissionTimestamp time.Time `json:"submission_timestamp"`   // 提交时间戳
	OriginalFilename    string    `json:"original_filename"`      // 原始文件名
	OriginalFilePathOSS string    `json:"original_file_path_oss"` // MinIO中的对象键
	RawFileMD5          string    `json:"raw_file_md5,omitempty"` // 原始文件的MD5，用于失败时回滚
}
