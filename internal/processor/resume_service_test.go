package processor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillsync-go/internal/constants"
	"skillsync-go/internal/types"
)

// fakeResumeExtractor 按预设结果应答并记录调用次数
type fakeResumeExtractor struct {
	result *types.ResumeData
	calls  int
}

func (f *fakeResumeExtractor) Extract(ctx context.Context, text string) *types.ResumeData {
	f.calls++
	return f.result
}

// 一段启发式解析器能稳定识别的简历文本
const sampleText = `Jane Doe
jane.doe@example.com
Skills
Languages: Go, Python`

func llmResult(name string) *types.ResumeData {
	data := types.NewResumeData()
	data.Name = name
	data.Skills = []types.SkillCategory{
		{Category: "Backend", Items: []string{"Go"}},
	}
	return data
}

func TestNewResumeServiceNilComponents(t *testing.T) {
	_, err := NewResumeService(nil)
	assert.Error(t, err, "缺少组件应构造失败")
}

func TestParseResumeTextEmpty(t *testing.T) {
	svc, err := NewResumeService(NewComponents(), WithsetMode(constants.ExtractModeHeuristic))
	require.NoError(t, err)

	_, err = svc.ParseResumeText(context.Background(), "   \n\t ")
	assert.ErrorIs(t, err, ErrEmptyText, "纯空白文本应返回空文本错误")
}

func TestParseResumeTextHeuristicMode(t *testing.T) {
	llm := &fakeResumeExtractor{result: llmResult("LLM Jane")}
	svc, err := NewResumeService(
		NewComponents(WithcompLLMResumeExtractor(llm)),
		WithsetMode(constants.ExtractModeHeuristic),
	)
	require.NoError(t, err)

	data, err := svc.ParseResumeText(context.Background(), sampleText)
	require.NoError(t, err)

	assert.Equal(t, "Jane Doe", data.Name, "启发式模式应使用启发式解析结果")
	assert.Equal(t, "jane.doe@example.com", data.Email)
	assert.Equal(t, 0, llm.calls, "启发式模式不应调用 LLM 解析器")
}

func TestParseResumeTextLLMMode(t *testing.T) {
	llm := &fakeResumeExtractor{result: llmResult("LLM Jane")}
	svc, err := NewResumeService(
		NewComponents(WithcompLLMResumeExtractor(llm)),
		WithsetMode(constants.ExtractModeLLM),
	)
	require.NoError(t, err)

	data, err := svc.ParseResumeText(context.Background(), sampleText)
	require.NoError(t, err)

	assert.Equal(t, "LLM Jane", data.Name)
	assert.Equal(t, 1, llm.calls)
}

func TestParseResumeTextLLMModeSentinelNotMasked(t *testing.T) {
	llm := &fakeResumeExtractor{result: types.ParseFailedResumeData()}
	svc, err := NewResumeService(
		NewComponents(WithcompLLMResumeExtractor(llm)),
		WithsetMode(constants.ExtractModeLLM),
	)
	require.NoError(t, err)

	data, err := svc.ParseResumeText(context.Background(), sampleText)
	require.NoError(t, err, "解析失败以哨兵记录表达,不是 Go 错误")

	assert.True(t, data.IsParseFailed(), "纯 LLM 模式下失败哨兵应原样返回")
	assert.Equal(t, 1, llm.calls)
}

func TestParseResumeTextBothModePrefersLLM(t *testing.T) {
	llm := &fakeResumeExtractor{result: llmResult("LLM Jane")}
	svc, err := NewResumeService(
		NewComponents(WithcompLLMResumeExtractor(llm)),
		WithsetMode(constants.ExtractModeBoth),
	)
	require.NoError(t, err)

	data, err := svc.ParseResumeText(context.Background(), sampleText)
	require.NoError(t, err)

	assert.Equal(t, "LLM Jane", data.Name, "both 模式 LLM 成功时应采用 LLM 结果")
}

func TestParseResumeTextBothModeFallsBack(t *testing.T) {
	llm := &fakeResumeExtractor{result: types.ParseFailedResumeData()}
	svc, err := NewResumeService(
		NewComponents(WithcompLLMResumeExtractor(llm)),
		WithsetMode(constants.ExtractModeBoth),
	)
	require.NoError(t, err)

	data, err := svc.ParseResumeText(context.Background(), sampleText)
	require.NoError(t, err)

	assert.Equal(t, 1, llm.calls, "both 模式应先尝试 LLM")
	assert.False(t, data.IsParseFailed(), "LLM 失败后应回退启发式结果")
	assert.Equal(t, "Jane Doe", data.Name)
	require.Len(t, data.Skills, 1)
	assert.Equal(t, "Languages", data.Skills[0].Category)
}

func TestNewResumeServiceDowngradesWithoutLLM(t *testing.T) {
	svc, err := NewResumeService(NewComponents(), WithsetMode(constants.ExtractModeBoth))
	require.NoError(t, err)

	data, err := svc.ParseResumeText(context.Background(), sampleText)
	require.NoError(t, err, "没有 LLM 模型时服务仍应可用")

	assert.Equal(t, "Jane Doe", data.Name, "降级后走纯启发式解析")
}

func TestProcessUploadedResumeWithoutStorage(t *testing.T) {
	svc, err := NewResumeService(NewComponents(), WithsetMode(constants.ExtractModeHeuristic))
	require.NoError(t, err)

	err = svc.ProcessUploadedResume(context.Background(), nil)
	assert.ErrorIs(t, err, ErrStorageNotInit)
}
