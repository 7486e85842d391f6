package processor

import (
	"context"

	"skillsync-go/internal/types"
)

// TextExtractor 定义从原始文档字节中提取纯文本的能力。
// Tika 与本地解析两种实现都满足此接口。
type TextExtractor interface {
	// ExtractTextFromBytes 从内存中的文件内容提取文本,返回文本与元数据
	ExtractTextFromBytes(ctx context.Context, data []byte, fileName string) (string, map[string]interface{}, error)
}

// ResumeExtractor 定义从简历文本中提取结构化数据的能力。
// LLM 提取器在失败时返回哨兵记录而非 error,因此此接口不返回 error。
type ResumeExtractor interface {
	Extract(ctx context.Context, text string) *types.ResumeData
}

// JobExtractor 定义从职位描述文本中提取结构化要求的能力。
type JobExtractor interface {
	Extract(ctx context.Context, text string) *types.JobDetails
}
