package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTextDropsBoilerplateLabels(t *testing.T) {
	raw := "Project Alpha\nDeployment Link\nCode Link\nBuilt a service\nCertificate Link"
	got := NormalizeText(raw)

	assert.NotContains(t, got, "Deployment Link", "应去掉部署链接标签")
	assert.NotContains(t, got, "Code Link", "应去掉代码链接标签")
	assert.NotContains(t, got, "Certificate Link", "应去掉证书链接标签")
	assert.Contains(t, got, "Project Alpha", "正常内容行应保留")
	assert.Contains(t, got, "Built a service", "正常内容行应保留")
}

func TestNormalizeTextRewritesSectionHeaders(t *testing.T) {
	raw := "John Doe\nskills\nGo, Python\nEDUCATION\nXYZ University\nProjects\nSomething"
	got := NormalizeText(raw)

	assert.Contains(t, got, "=== SKILLS ===", "小写标题也应被改写为统一标记")
	assert.Contains(t, got, "=== EDUCATION ===", "大写标题应被改写为统一标记")
	assert.Contains(t, got, "=== PROJECTS ===", "首字母大写标题应被改写为统一标记")

	// 标题词出现在句子中时不应被改写
	inline := NormalizeText("Strong skills in Go")
	assert.Equal(t, "Strong skills in Go", inline, "行内出现的标题词应保持原样")
}

func TestNormalizeTextDropsBlankLines(t *testing.T) {
	raw := "line one\n\n   \n\tline two\n\n"
	got := NormalizeText(raw)
	assert.Equal(t, "line one\nline two", got, "空行和首尾空白应被清除")
}

func TestNormalizeTextIdempotent(t *testing.T) {
	raw := "Jane\nSKILLS\nGo\n\nEducation\nABC University\nDeployment Link\n"
	once := NormalizeText(raw)
	twice := NormalizeText(once)
	assert.Equal(t, once, twice, "规范化应是幂等的")
}

func TestNormalizeTextEmptyInput(t *testing.T) {
	assert.Equal(t, "", NormalizeText(""), "空输入应返回空字符串")
	assert.Equal(t, "", NormalizeText("\n\n  \n"), "全空白输入应返回空字符串")
}
