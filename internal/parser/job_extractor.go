package parser

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strings"
	"unicode/utf8"

	"github.com/cloudwego/eino/components/model"
	einoschema "github.com/cloudwego/eino/schema"

	"skillsync-go/internal/types"
)

const jobSystemPrompt = "You are a helpful assistant that extracts job details and returns ONLY valid JSON."

const jobUserPromptTemplate = `
Extract the following details from this job description and return ONLY a JSON object:
{
    "skills": [array of technical skills mentioned],
    "education": [array of required degrees or certifications],
    "experience": "string describing required years of experience"
}

Job Description: %s

Important: Return ONLY the JSON object, no additional text or explanations.
`

// JobDetailExtractor 使用LLM从职位描述中提取技能、学历和经验要求。
// 提取失败不向调用方抛错，失败原因写进返回记录的 Error 字段，
// 调用方必须检查该字段。
type JobDetailExtractor struct {
	llmModel       model.ToolCallingChatModel
	promptTemplate string
	logger         *log.Logger
}

// JobDetailExtractorOption 是提取器的配置选项
type JobDetailExtractorOption func(*JobDetailExtractor)

// WithJobPromptTemplate 设置自定义提示词模板，模板需保留一个 %s 占位符
func WithJobPromptTemplate(template string) JobDetailExtractorOption {
	return func(e *JobDetailExtractor) {
		e.promptTemplate = template
	}
}

// NewJobDetailExtractor 创建职位要求提取器
func NewJobDetailExtractor(llmModel model.ToolCallingChatModel, logger *log.Logger, options ...JobDetailExtractorOption) *JobDetailExtractor {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	extractor := &JobDetailExtractor{
		llmModel:       llmModel,
		promptTemplate: jobUserPromptTemplate,
		logger:         logger,
	}
	for _, opt := range options {
		opt(extractor)
	}
	return extractor
}

// Extract 调用模型提取职位要求。
// 输入与简历路径采用同一套截断策略；单次调用，不自动重试。
func (e *JobDetailExtractor) Extract(ctx context.Context, text string) *types.JobDetails {
	if e.llmModel == nil {
		return types.FailedJobDetails("llm model is not initialized")
	}

	input := truncateForModel(text)
	messages := []*einoschema.Message{
		einoschema.SystemMessage(jobSystemPrompt),
		einoschema.UserMessage(fmt.Sprintf(e.promptTemplate, input)),
	}

	response, err := e.llmModel.Generate(ctx, messages)
	if err != nil {
		e.logger.Printf("[JobDetailExtractor] LLM调用失败: %v", err)
		return types.FailedJobDetails(fmt.Sprintf("LLM call failed: %v", err))
	}
	if response == nil || strings.TrimSpace(response.Content) == "" {
		return types.FailedJobDetails("empty response from model")
	}

	details, err := e.decodeResponse(response.Content)
	if err != nil {
		e.logger.Printf("[JobDetailExtractor] 解析LLM响应失败: %v. 原始响应: %s", err, response.Content)
		return types.FailedJobDetails(err.Error())
	}
	return details
}

// decodeResponse 两阶段解析并归一化：
// 先整体反序列化，失败后提取配平的 {...} 区间，必要时修复内部引号再试一次
func (e *JobDetailExtractor) decodeResponse(content string) (*types.JobDetails, error) {
	content = strings.TrimPrefix(content, "\ufeff")

	var details types.JobDetails
	if err := json.Unmarshal([]byte(content), &details); err == nil {
		return normalizeJobDetails(&details), nil
	}

	jsonStr := extractJSON(content)
	if jsonStr == "" {
		return nil, fmt.Errorf("model returned invalid JSON")
	}
	if !utf8.ValidString(jsonStr) {
		jsonStr = strings.ToValidUTF8(jsonStr, "")
	}

	if err := json.Unmarshal([]byte(jsonStr), &details); err != nil {
		// 解析失败 -> 自动修复再试一次
		fixed := sanitizeJSON(jsonStr)
		if jsonErr := json.Unmarshal([]byte(fixed), &details); jsonErr != nil {
			return nil, fmt.Errorf("model returned invalid JSON")
		}
	}
	return normalizeJobDetails(&details), nil
}

// normalizeJobDetails 把缺失的序列补成空切片，保证消费方不用判空
func normalizeJobDetails(details *types.JobDetails) *types.JobDetails {
	if details.Skills == nil {
		details.Skills = []string{}
	}
	if details.Education == nil {
		details.Education = []string{}
	}
	return details
}
