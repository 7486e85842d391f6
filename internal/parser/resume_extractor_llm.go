package parser

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/cloudwego/eino/components/model"
	einoschema "github.com/cloudwego/eino/schema"

	"skillsync-go/internal/types"
)

// resumeSystemPrompt 要求模型只输出JSON
const resumeSystemPrompt = "You are a helpful assistant that extracts resume data and returns ONLY valid JSON."

// resumeUserPromptTemplate 枚举目标结构，%s 处填入简历文本
const resumeUserPromptTemplate = `
Extract the following details from this resume and return ONLY a JSON object:
{
    "name": "candidate full name",
    "email": "email address",
    "phone": "phone number",
    "skills": [{"category": "group label", "items": ["skill", ...]}],
    "education": [{"degree": "...", "university": "...", "duration": "..."}]
}

Resume: %s

Important: Return ONLY the JSON object, no additional text or explanations.
`

// LLMResumeExtractor 使用LLM从简历文本中提取结构化数据。
// 对外永不失败：任何内部错误都转换成解析失败哨兵记录返回，
// 调用方通过 IsParseFailed 判断，控制流保持简单。
type LLMResumeExtractor struct {
	llmModel       model.ToolCallingChatModel
	promptTemplate string
	logger         *log.Logger
}

// LLMResumeExtractorOption 是提取器的配置选项
type LLMResumeExtractorOption func(*LLMResumeExtractor)

// WithResumePromptTemplate 设置自定义提示词模板，模板需保留一个 %s 占位符
func WithResumePromptTemplate(template string) LLMResumeExtractorOption {
	return func(e *LLMResumeExtractor) {
		e.promptTemplate = template
	}
}

// NewLLMResumeExtractor 创建新的模型辅助简历提取器
func NewLLMResumeExtractor(llmModel model.ToolCallingChatModel, logger *log.Logger, options ...LLMResumeExtractorOption) *LLMResumeExtractor {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	extractor := &LLMResumeExtractor{
		llmModel:       llmModel,
		promptTemplate: resumeUserPromptTemplate,
		logger:         logger,
	}
	for _, opt := range options {
		opt(extractor)
	}
	return extractor
}

// rawResumeRecord 是模型回复的宽松中间形态。
// 字段用 interface{} 承接，具体类型在显式校验/强转一步中处理，
// 避免对不可信输出做乐观访问。
type rawResumeRecord struct {
	Name      interface{}              `json:"name"`
	Email     interface{}              `json:"email"`
	Phone     interface{}              `json:"phone"`
	Education []map[string]interface{} `json:"education"`
	Skills    []map[string]interface{} `json:"skills"`
}

// Extract 规范化并截断文本后调用模型，解析回复为规范记录。
// 单次调用，不做自动重试；失败返回哨兵记录而不是 error。
func (e *LLMResumeExtractor) Extract(ctx context.Context, text string) *types.ResumeData {
	if e.llmModel == nil {
		e.logger.Printf("[LLMResumeExtractor] llmModel 未初始化")
		return types.ParseFailedResumeData()
	}

	input := truncateForModel(NormalizeText(text))
	messages := []*einoschema.Message{
		einoschema.SystemMessage(resumeSystemPrompt),
		einoschema.UserMessage(fmt.Sprintf(e.promptTemplate, input)),
	}

	response, err := e.llmModel.Generate(ctx, messages)
	if err != nil {
		e.logger.Printf("[LLMResumeExtractor] LLM调用失败: %v", err)
		return types.ParseFailedResumeData()
	}
	if response == nil || strings.TrimSpace(response.Content) == "" {
		e.logger.Printf("[LLMResumeExtractor] LLM返回空响应")
		return types.ParseFailedResumeData()
	}

	raw, err := e.decodeResponse(response.Content)
	if err != nil {
		e.logger.Printf("[LLMResumeExtractor] 解析LLM响应失败: %v", err)
		return types.ParseFailedResumeData()
	}
	return coerceResumeRecord(raw)
}

// decodeResponse 两阶段解析：先整体反序列化，失败后提取首个配平的 {...} 区间重试
func (e *LLMResumeExtractor) decodeResponse(content string) (*rawResumeRecord, error) {
	content = strings.TrimPrefix(content, "\ufeff")

	var raw rawResumeRecord
	if err := json.Unmarshal([]byte(content), &raw); err == nil {
		return &raw, nil
	}

	jsonStr := extractJSON(content)
	if jsonStr == "" {
		return nil, fmt.Errorf("无法从LLM响应中提取有效的JSON")
	}
	if err := json.Unmarshal([]byte(jsonStr), &raw); err != nil {
		return nil, fmt.Errorf("解析JSON失败: %w", err)
	}
	return &raw, nil
}

// coerceResumeRecord 对解码结果做防御性强转：
// 标量缺失补 "Not found"，序列缺失补空，技能分组缺少标签时落到 "Other"。
func coerceResumeRecord(raw *rawResumeRecord) *types.ResumeData {
	data := types.NewResumeData()
	data.Name = coerceString(raw.Name, types.NotFound)
	data.Email = coerceString(raw.Email, types.NotFound)
	data.Phone = coerceString(raw.Phone, types.NotFound)

	for _, entry := range raw.Education {
		data.Education = append(data.Education, types.EducationItem{
			Degree:     coerceString(entry["degree"], ""),
			University: coerceString(entry["university"], ""),
			Duration:   coerceString(entry["duration"], ""),
			Details:    coerceStringList(entry["details"]),
		})
	}
	// 条目为空的分组照样保留,模型给出的分类本身是有效信息
	for _, entry := range raw.Skills {
		data.Skills = append(data.Skills, types.SkillCategory{
			Category: coerceString(entry["category"], "Other"),
			Items:    coerceStringList(entry["items"]),
		})
	}
	return data
}

// coerceString 取出字符串值并去掉首尾空白，缺失或非字符串时返回兜底值
func coerceString(v interface{}, fallback string) string {
	s, ok := v.(string)
	if !ok {
		return fallback
	}
	if trimmed := strings.TrimSpace(s); trimmed != "" {
		return trimmed
	}
	return fallback
}

// coerceStringList 过滤出非空字符串成员，其余类型丢弃
func coerceStringList(v interface{}) []string {
	list, ok := v.([]interface{})
	if !ok {
		return []string{}
	}
	items := make([]string, 0, len(list))
	for _, member := range list {
		if s, ok := member.(string); ok {
			if trimmed := strings.TrimSpace(s); trimmed != "" {
				items = append(items, trimmed)
			}
		}
	}
	return items
}
