package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// ResumeSubmission 简历提交/快照表
type ResumeSubmission struct {
	SubmissionUUID      string         `gorm:"type:char(36);primaryKey"`
	SubmissionTimestamp time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6);index:idx_rs_submission_timestamp"`
	OriginalFilename    string         `gorm:"type:varchar(255)"`
	OriginalFilePathOSS string         `gorm:"type:varchar(1024)"`
	RawFileMD5          string         `gorm:"type:char(32);index:idx_rs_raw_file_md5"`
	ExtractedText       string         `gorm:"type:mediumtext"`
	ParsedResumeJSON    datatypes.JSON `gorm:"type:json"`
	ProcessingStatus    string         `gorm:"type:varchar(50);default:'UPLOADED';index:idx_rs_processing_status"`
	ParserVersion       string         `gorm:"type:varchar(50)"`
	CreatedAt           time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6)"`
	UpdatedAt           time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6);autoUpdateTime"`
}

func (ResumeSubmission) TableName() string {
	return "resume_submissions"
}

// JobPosting 职位描述表
type JobPosting struct {
	JobUUID            string         `gorm:"type:char(36);primaryKey"`
	JobDescriptionText string         `gorm:"type:text;not null"`
	JobDetailsJSON     datatypes.JSON `gorm:"type:json"`
	ExtractError       string         `gorm:"type:text"`
	CreatedAt          time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6)"`
	UpdatedAt          time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6);autoUpdateTime"`
}

func (JobPosting) TableName() string {
	return "job_postings"
}

// SkillMatch 简历与职位的技能匹配结果表
type SkillMatch struct {
	MatchID           uint64         `gorm:"primaryKey;autoIncrement"`
	SubmissionUUID    string         `gorm:"type:char(36);not null;index:idx_sm_submission_uuid;uniqueIndex:idx_sm_submission_job_unique,priority:1"`
	JobUUID           string         `gorm:"type:char(36);not null;index:idx_sm_job_uuid;uniqueIndex:idx_sm_submission_job_unique,priority:2"`
	MatchPercentage   int            `gorm:"type:int;not null"`
	MatchedSkillsJSON datatypes.JSON `gorm:"type:json"`
	MissingSkillsJSON datatypes.JSON `gorm:"type:json"`
	CreatedAt         time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6)"`
	UpdatedAt         time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6);autoUpdateTime"`

	ResumeSubmission *ResumeSubmission `gorm:"foreignKey:SubmissionUUID;references:SubmissionUUID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	JobPosting       *JobPosting       `gorm:"foreignKey:JobUUID;references:JobUUID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (SkillMatch) TableName() string {
	return "skill_matches"
}

// ToJSON Helper function to marshal any value to datatypes.JSON
func ToJSON(v interface{}) (datatypes.JSON, error) {
	bytes, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return bytes, nil
}
