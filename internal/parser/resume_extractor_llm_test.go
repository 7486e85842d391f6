package parser

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillsync-go/internal/types"
	"skillsync-go/pkg/agent"
)

func TestLLMResumeExtractorSuccess(t *testing.T) {
	mockResponse := `{
		"name": "Jane Doe",
		"email": "jane@example.com",
		"phone": "9876543210",
		"skills": [{"category": "Languages", "items": ["Go", "Python"]}],
		"education": [{"degree": "B.Tech", "university": "ABC University", "duration": "2018-2022"}]
	}`
	extractor := NewLLMResumeExtractor(agent.NewMockChatClient(mockResponse, nil), nil)

	data := extractor.Extract(context.Background(), "Jane Doe\njane@example.com")

	require.False(t, data.IsParseFailed(), "合法响应不应返回失败哨兵")
	assert.Equal(t, "Jane Doe", data.Name)
	assert.Equal(t, "jane@example.com", data.Email)
	assert.Equal(t, "9876543210", data.Phone)
	require.Len(t, data.Skills, 1)
	assert.Equal(t, []string{"Go", "Python"}, data.Skills[0].Items)
	require.Len(t, data.Education, 1)
	assert.Equal(t, "ABC University", data.Education[0].University)
}

func TestLLMResumeExtractorRecoversWrappedJSON(t *testing.T) {
	// 模型在 JSON 前后加了寒暄,应通过配平扫描恢复
	mockResponse := `Here is the result: {"name": "Jane"} Thanks!`
	extractor := NewLLMResumeExtractor(agent.NewMockChatClient(mockResponse, nil), nil)

	data := extractor.Extract(context.Background(), "some resume")

	require.False(t, data.IsParseFailed(), "包裹的 JSON 应能被恢复")
	assert.Equal(t, "Jane", data.Name)
	assert.Equal(t, types.NotFound, data.Email, "缺失字段应使用占位值")
	assert.Equal(t, types.NotFound, data.Phone, "缺失字段应使用占位值")
	assert.Empty(t, data.Education)
	assert.Empty(t, data.Skills)
}

func TestLLMResumeExtractorCoercion(t *testing.T) {
	// 非字符串成员应被跳过,缺失分组标签应落到 Other
	mockResponse := `{
		"name": "  ",
		"email": 42,
		"skills": [
			{"items": ["Go", 7, " "]},
			{"category": "Empty", "items": []}
		]
	}`
	extractor := NewLLMResumeExtractor(agent.NewMockChatClient(mockResponse, nil), nil)

	data := extractor.Extract(context.Background(), "resume")

	assert.Equal(t, types.NotFound, data.Name, "空白姓名应回落占位值")
	assert.Equal(t, types.NotFound, data.Email, "非字符串邮箱应回落占位值")
	require.Len(t, data.Skills, 2, "空条目分组也应保留")
	assert.Equal(t, "Other", data.Skills[0].Category, "缺失标签应落到 Other")
	assert.Equal(t, []string{"Go"}, data.Skills[0].Items, "非字符串和空白条目应被跳过")
	assert.Equal(t, "Empty", data.Skills[1].Category)
	assert.Empty(t, data.Skills[1].Items, "分组保留但条目为空")
	assert.NotNil(t, data.Skills[1].Items, "空条目应是空切片而不是nil")
}

func TestLLMResumeExtractorModelError(t *testing.T) {
	extractor := NewLLMResumeExtractor(agent.NewMockChatClient("", errors.New("连接超时")), nil)

	data := extractor.Extract(context.Background(), "resume")

	require.True(t, data.IsParseFailed(), "模型调用失败应返回失败哨兵")
	assert.Equal(t, types.ParseFailedName, data.Name)
	assert.Equal(t, types.NotFound, data.Email)
}

func TestLLMResumeExtractorGarbageResponse(t *testing.T) {
	extractor := NewLLMResumeExtractor(agent.NewMockChatClient("I cannot help with that.", nil), nil)

	data := extractor.Extract(context.Background(), "resume")
	assert.True(t, data.IsParseFailed(), "无法恢复的响应应返回失败哨兵")
}

func TestLLMResumeExtractorSingleAttempt(t *testing.T) {
	// 调用失败后不应有任何自动重试
	mock := agent.NewMockChatClientSequential([]agent.MockResponse{
		{Error: errors.New("rate limited")},
		{Content: `{"name": "Jane"}`},
	})
	extractor := NewLLMResumeExtractor(mock, nil)

	data := extractor.Extract(context.Background(), "resume")

	assert.True(t, data.IsParseFailed(), "首次失败即应返回哨兵")
	assert.Equal(t, 1, mock.ResponseIndex, "失败后不应再次调用模型")
}

func TestLLMResumeExtractorNilModel(t *testing.T) {
	extractor := NewLLMResumeExtractor(nil, nil)
	data := extractor.Extract(context.Background(), "resume")
	assert.True(t, data.IsParseFailed(), "未配置模型应返回失败哨兵")
}
