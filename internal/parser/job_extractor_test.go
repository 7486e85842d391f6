package parser

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillsync-go/pkg/agent"
)

func TestJobDetailExtractorSuccess(t *testing.T) {
	mockResponse := `{
		"skills": ["Python", "Django", "PostgreSQL"],
		"education": ["Bachelor's degree in Computer Science"],
		"experience": "3+ years"
	}`
	extractor := NewJobDetailExtractor(agent.NewMockChatClient(mockResponse, nil), nil)

	details := extractor.Extract(context.Background(), "We are hiring a backend engineer...")

	assert.Empty(t, details.Error, "合法响应不应携带错误")
	assert.Equal(t, []string{"Python", "Django", "PostgreSQL"}, details.Skills)
	assert.Equal(t, []string{"Bachelor's degree in Computer Science"}, details.Education)
	assert.Equal(t, "3+ years", details.Experience)
}

func TestJobDetailExtractorModelErrorCarriedInRecord(t *testing.T) {
	extractor := NewJobDetailExtractor(agent.NewMockChatClient("", errors.New("网络不可达")), nil)

	details := extractor.Extract(context.Background(), "job description")

	require.NotEmpty(t, details.Error, "模型失败时错误应随记录返回")
	assert.Contains(t, details.Error, "LLM call failed")
	assert.Empty(t, details.Skills, "失败记录的序列应为空切片")
	assert.Empty(t, details.Education)
	assert.Empty(t, details.Experience)
}

func TestJobDetailExtractorInvalidJSON(t *testing.T) {
	extractor := NewJobDetailExtractor(agent.NewMockChatClient("sorry, no JSON today", nil), nil)

	details := extractor.Extract(context.Background(), "job description")
	assert.Equal(t, "model returned invalid JSON", details.Error, "无法恢复的响应应返回统一错误")
}

func TestJobDetailExtractorRepairsInnerQuotes(t *testing.T) {
	// experience 字段带未转义引号,应经修复后成功解析
	mockResponse := `Result: {"skills": ["Go"], "education": [], "experience": "needs "self-starter" mindset"} done`
	extractor := NewJobDetailExtractor(agent.NewMockChatClient(mockResponse, nil), nil)

	details := extractor.Extract(context.Background(), "job description")

	assert.Empty(t, details.Error, "修复后的响应不应携带错误")
	assert.Equal(t, []string{"Go"}, details.Skills)
	assert.Equal(t, `needs "self-starter" mindset`, details.Experience)
}

func TestJobDetailExtractorMissingArraysNormalized(t *testing.T) {
	extractor := NewJobDetailExtractor(agent.NewMockChatClient(`{"experience": "5 years"}`, nil), nil)

	details := extractor.Extract(context.Background(), "job description")

	assert.NotNil(t, details.Skills, "缺失的技能序列应补成空切片")
	assert.NotNil(t, details.Education, "缺失的学历序列应补成空切片")
	assert.Equal(t, "5 years", details.Experience)
}

func TestJobDetailExtractorNilModel(t *testing.T) {
	extractor := NewJobDetailExtractor(nil, nil)
	details := extractor.Extract(context.Background(), "job description")
	assert.Equal(t, "llm model is not initialized", details.Error)
}
