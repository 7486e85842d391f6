package tracing

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSafeAttributeValueMasksPII(t *testing.T) {
	masked := SafeAttributeValue("user.email", "myemail@example.com", DefaultMaxLength)
	assert.Equal(t, "my***************om", masked, "含email的属性名应触发掩码")

	masked = SafeAttributeValue("resume.file_name", "zhangsan_resume.pdf", DefaultMaxLength)
	assert.NotContains(t, masked, "zhangsan_resume", "含name的属性名应触发掩码")
	assert.True(t, strings.HasPrefix(masked, "zh"), "掩码应保留头两个字符")
}

func TestSafeAttributeValueTruncatesLongValue(t *testing.T) {
	long := strings.Repeat("x", 300)
	got := SafeAttributeValue("http.route", long, DefaultMaxLength)
	assert.LessOrEqual(t, len([]rune(got)), DefaultMaxLength, "非敏感属性超长时应截断")
	assert.Contains(t, got, "...", "截断后应带省略号")

	short := "GET /api/v1/compare/:id"
	assert.Equal(t, short, SafeAttributeValue("http.route", short, DefaultMaxLength), "未超长的非敏感属性应原样返回")
}

func TestMaskPIIShortValues(t *testing.T) {
	assert.Equal(t, "*", MaskPII("a"))
	assert.Equal(t, "张*", MaskPII("张三"))
	assert.Equal(t, "王*明", MaskPII("王小明"))
	assert.Equal(t, "13*******78", MaskPII("13812345678"))
}

func TestTruncateStringKeepsRuneBoundaries(t *testing.T) {
	mixed := strings.Repeat("简", 120)
	got := TruncateString(mixed, 30)
	assert.LessOrEqual(t, len([]rune(got)), 30)
	for _, r := range got {
		assert.NotEqual(t, '�', r, "截断不应产生无效字符")
	}
}

func TestSafeResumeContent(t *testing.T) {
	content := strings.Repeat("工作经历 ", 100)
	got := SafeResumeContent(content)
	assert.LessOrEqual(t, len([]rune(got)), MaxResumeLength, "简历内容预览应限制长度")
}
