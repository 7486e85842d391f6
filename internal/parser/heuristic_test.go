package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillsync-go/internal/types"
)

const sampleResumeText = `John Smith
john.smith@example.com
+91 9876543210
Education
B.Tech Computer Science
XYZ University
2018-2022
CGPA: 8.5
Skills
Languages: Python, Go
Frameworks:
React
Express
Personal Projects
Built a resume parser`

func TestHeuristicExtractBasicInfo(t *testing.T) {
	data := NewHeuristicExtractor().Extract(sampleResumeText)

	assert.Equal(t, "John Smith", data.Name, "姓名应取第一行")
	assert.Equal(t, "john.smith@example.com", data.Email, "邮箱提取不正确")
	assert.Equal(t, "+91 9876543210", data.Phone, "电话提取不正确")
}

func TestHeuristicExtractEducation(t *testing.T) {
	data := NewHeuristicExtractor().Extract(sampleResumeText)

	require.Len(t, data.Education, 1, "应提取到一段教育经历")
	item := data.Education[0]
	assert.Equal(t, "B.Tech Computer Science", item.Degree, "学位行不正确")
	assert.Equal(t, "XYZ University", item.University, "学校行不正确")
	assert.Equal(t, "2018-2022", item.Duration, "起止时间不正确")
	assert.Equal(t, []string{"CGPA: 8.5"}, item.Details, "成绩明细不正确")
}

func TestHeuristicExtractEducationWithoutUniversity(t *testing.T) {
	// 学位行之后直接跟年份行,学校应保持为空
	text := "Someone\nEducation\n12th Standard\n2016\nSkills\n"
	data := NewHeuristicExtractor().Extract(text)

	require.Len(t, data.Education, 1)
	assert.Equal(t, "12th Standard", data.Education[0].Degree)
	assert.Empty(t, data.Education[0].University, "年份行不应被当作学校")
	assert.Equal(t, "2016", data.Education[0].Duration)
}

func TestHeuristicExtractSkills(t *testing.T) {
	data := NewHeuristicExtractor().Extract(sampleResumeText)

	require.Len(t, data.Skills, 2, "应提取到两个技能分组")
	assert.Equal(t, types.SkillCategory{
		Category: "Languages",
		Items:    []string{"Python", "Go"},
	}, data.Skills[0], "行内形式的分组解析不正确")
	assert.Equal(t, types.SkillCategory{
		Category: "Frameworks",
		Items:    []string{"React", "Express"},
	}, data.Skills[1], "分块形式的分组解析不正确")
}

func TestHeuristicExtractSkillsOrphanLinesWithoutCategory(t *testing.T) {
	// 没有分组标签的行不应产生分组
	text := "Someone\nSkills\nReact\nVue\n"
	data := NewHeuristicExtractor().Extract(text)
	assert.Empty(t, data.Skills, "无标签的技能行应被丢弃")
}

func TestHeuristicExtractSkillsNotCutByBareProjectsLine(t *testing.T) {
	// 裸的 Projects 行可能只是某个分组下的条目,不应提前终止技能段
	text := "Someone\nSkills\nLanguages: Go\nTools:\nProjects\nDocker\nPersonal Projects\nBuilt stuff"
	data := NewHeuristicExtractor().Extract(text)

	require.Len(t, data.Skills, 2, "技能段应延伸到 Personal Projects 之前")
	assert.Equal(t, []string{"Go"}, data.Skills[0].Items)
	assert.Equal(t, "Tools", data.Skills[1].Category)
	assert.Equal(t, []string{"Projects", "Docker"}, data.Skills[1].Items)
}

func TestHeuristicExtractSkillsTerminatedByNormalizedProjectsHeader(t *testing.T) {
	// 规范化后的 === PROJECTS === 标记仍然终止技能段
	text := NormalizeText("Jane\nSKILLS\nLanguages: Java\nPROJECTS\nResume parser\n")
	data := NewHeuristicExtractor().Extract(text)

	require.Len(t, data.Skills, 1)
	assert.Equal(t, []string{"Java"}, data.Skills[0].Items)
}

func TestHeuristicExtractNormalizedSectionHeaders(t *testing.T) {
	// 规范化后的 === XXX === 标记同样应能定位章节
	text := NormalizeText("Jane Doe\nEDUCATION\nB.Tech IT\nABC College\nSKILLS\nLanguages: Java\n")
	data := NewHeuristicExtractor().Extract(text)

	require.Len(t, data.Education, 1, "规范化标记下应提取到教育经历")
	assert.Equal(t, "ABC College", data.Education[0].University)
	require.Len(t, data.Skills, 1, "规范化标记下应提取到技能分组")
	assert.Equal(t, []string{"Java"}, data.Skills[0].Items)
}

func TestHeuristicExtractMissingEverything(t *testing.T) {
	data := NewHeuristicExtractor().Extract("@@@")

	assert.Equal(t, types.NotFound, data.Name, "无法提取时姓名应为占位值")
	assert.Equal(t, types.NotFound, data.Email, "无法提取时邮箱应为占位值")
	assert.Equal(t, types.NotFound, data.Phone, "无法提取时电话应为占位值")
	assert.Empty(t, data.Education, "无教育章节时应为空序列")
	assert.Empty(t, data.Skills, "无技能章节时应为空序列")
	assert.False(t, data.IsParseFailed(), "启发式提取不应返回失败哨兵")
}
