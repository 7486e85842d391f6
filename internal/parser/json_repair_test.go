package parser

import (
	"encoding/json"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruncateForModel(t *testing.T) {
	short := "hello"
	assert.Equal(t, short, truncateForModel(short), "短文本不应被截断")

	long := strings.Repeat("a", maxModelInputChars+100)
	got := truncateForModel(long)
	assert.Len(t, got, maxModelInputChars+len(truncationMarker), "截断后长度应为上限加标记长度")
	assert.True(t, strings.HasSuffix(got, truncationMarker), "截断文本应以标记结尾")
}

func TestTruncateForModelMultibyte(t *testing.T) {
	// 多字节字符按字符数截断,不能在字符中间切开
	text := "a" + strings.Repeat("界", maxModelInputChars)
	got := truncateForModel(text)
	assert.True(t, utf8.ValidString(got), "截断结果必须是合法的UTF-8")
	assert.Equal(t, maxModelInputChars+utf8.RuneCountInString(truncationMarker), utf8.RuneCountInString(got),
		"截断应按字符数计")
	assert.True(t, strings.HasSuffix(got, truncationMarker), "截断文本应以标记结尾")

	exact := strings.Repeat("简", maxModelInputChars)
	assert.Equal(t, exact, truncateForModel(exact), "恰好达到上限的多字节文本不应被截断")
}

func TestExtractJSONFencedBlock(t *testing.T) {
	content := "Sure, here you go:\n```json\n{\"name\": \"Jane\"}\n```\nLet me know."
	assert.Equal(t, `{"name": "Jane"}`, extractJSON(content), "应优先提取代码块中的 JSON")
}

func TestExtractJSONBalancedBraces(t *testing.T) {
	content := `Here is the result: {"outer": {"inner": 1}} Thanks!`
	assert.Equal(t, `{"outer": {"inner": 1}}`, extractJSON(content), "应提取首个配平的花括号区间")
}

func TestExtractJSONNoObject(t *testing.T) {
	assert.Equal(t, "", extractJSON("no json here"), "无 JSON 时应返回空串")
	assert.Equal(t, "", extractJSON("{unbalanced"), "未配平时应返回空串")
}

func TestSanitizeJSONRepairsInnerQuotes(t *testing.T) {
	// experience 字段内部有未转义的引号
	broken := `{"experience": "3+ years of "hands-on" work"}`
	fixed := sanitizeJSON(broken)

	var decoded map[string]string
	require.NoError(t, json.Unmarshal([]byte(fixed), &decoded), "修复后的 JSON 应能反序列化")
	assert.Equal(t, `3+ years of "hands-on" work`, decoded["experience"], "内部引号应被转义保留")
}

func TestSanitizeJSONLeavesValidInputAlone(t *testing.T) {
	valid := `{"skills": ["Go", "Python"], "experience": "2 years"}`
	assert.Equal(t, valid, sanitizeJSON(valid), "合法 JSON 不应被改写")
}
