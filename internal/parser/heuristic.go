package parser

import (
	"regexp"
	"strings"

	"skillsync-go/internal/types"
)

// 基本信息匹配规则
var (
	nameRegex  = regexp.MustCompile(`(?m)^([^\n@|<]+)`)
	emailRegex = regexp.MustCompile(`[\w.-]+@[\w.-]+\.\w+`)
	phoneRegex = regexp.MustCompile(`(?:\+?\d{1,3}[\s-]?)?\d{10}`)
)

// 章节定位规则。标题既可能是裸词也可能是规范化后的 === XXX === 标记。
var (
	eduSectionRegex = regexp.MustCompile(
		`(?is)Education(?:\s*===)?\s*\n(.*?)(?:\n(?:===\s*)?Skills|\z)`)
	// 裸的 Projects 行不终止技能段,只有规范化标记 === Projects 才算标题
	skillsSectionRegex = regexp.MustCompile(
		`(?is)Skills(?:\s*===)?\s*\n(.*?)(?:\n(?:(?:===\s*)?(?:Personal Projects|Certifications)|===\s*Projects)|\z)`)
)

// 教育经历扫描规则
var (
	degreeRegex         = regexp.MustCompile(`(?i)B\.Tech|12th|10th`)
	yearOrScoreRegex    = regexp.MustCompile(`^\d{4}|CGPA|%`)
	leadingYearRegex    = regexp.MustCompile(`^\d{4}`)
	inlineCategoryRegex = regexp.MustCompile(`^(.+?):\s*(.+)$`)
)

// HeuristicExtractor 基于正则和逐行扫描的确定性简历提取器。
// 不做任何外部调用，对任意输入都返回填充完整的记录，
// 缺失字段使用 "Not found" 占位或空序列。
type HeuristicExtractor struct{}

// NewHeuristicExtractor 创建启发式提取器
func NewHeuristicExtractor() *HeuristicExtractor {
	return &HeuristicExtractor{}
}

// Extract 从原始或已规范化的简历文本中提取结构化数据
func (e *HeuristicExtractor) Extract(text string) *types.ResumeData {
	data := types.NewResumeData()

	// 姓名取第一段不含 @、| 和 < 的行首内容
	if m := nameRegex.FindStringSubmatch(text); m != nil {
		if name := strings.TrimSpace(m[1]); name != "" {
			data.Name = name
		}
	}
	if email := emailRegex.FindString(text); email != "" {
		data.Email = email
	}
	if phone := phoneRegex.FindString(text); phone != "" {
		data.Phone = phone
	}

	if m := eduSectionRegex.FindStringSubmatch(text); m != nil {
		data.Education = parseEducationLines(splitScanLines(m[1]))
	}
	if m := skillsSectionRegex.FindStringSubmatch(text); m != nil {
		data.Skills = parseSkillLines(splitScanLines(m[1]))
	}
	return data
}

// splitScanLines 切分并去掉空行，供逐行扫描使用
func splitScanLines(section string) []string {
	var lines []string
	for _, line := range strings.Split(section, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return lines
}

// parseEducationLines 顺序扫描教育章节：
// 命中学位行后最多向前看三行，依次接受学校、起止时间和成绩明细，
// 被接受的行会推进游标，不再参与后续匹配。
func parseEducationLines(lines []string) []types.EducationItem {
	items := []types.EducationItem{}
	for i := 0; i < len(lines); i++ {
		if !degreeRegex.MatchString(lines[i]) {
			continue
		}
		item := types.EducationItem{Degree: lines[i], Details: []string{}}

		// 学校行不能以年份开头，也不能是成绩行
		if i+1 < len(lines) && !yearOrScoreRegex.MatchString(lines[i+1]) {
			i++
			item.University = lines[i]
		}
		if i+1 < len(lines) && (leadingYearRegex.MatchString(lines[i+1]) ||
			strings.Contains(lines[i+1], "CGPA") || strings.Contains(lines[i+1], "%")) {
			i++
			item.Duration = lines[i]
		}
		if i+1 < len(lines) && (strings.Contains(lines[i+1], "CGPA") || strings.Contains(lines[i+1], "%")) {
			i++
			item.Details = append(item.Details, lines[i])
		}
		items = append(items, item)
	}
	return items
}

// parseSkillLines 解析技能章节。
// 支持 "Frontend: React, Vue" 的行内形式和 "Frontend:" 加后续条目的分块形式，
// 没有归属的行挂到当前分组下。
func parseSkillLines(lines []string) []types.SkillCategory {
	skills := []types.SkillCategory{}
	var currentCategory string
	var currentItems []string

	flush := func() {
		if currentCategory != "" {
			skills = append(skills, types.SkillCategory{
				Category: currentCategory,
				Items:    currentItems,
			})
		}
	}

	for _, line := range lines {
		if m := inlineCategoryRegex.FindStringSubmatch(line); m != nil {
			flush()
			currentCategory = strings.TrimSpace(m[1])
			currentItems = splitSkillItems(m[2])
		} else if strings.HasSuffix(line, ":") {
			flush()
			currentCategory = strings.TrimSpace(strings.TrimSuffix(line, ":"))
			currentItems = []string{}
		} else {
			currentItems = append(currentItems, line)
		}
	}
	flush()
	return skills
}

func splitSkillItems(raw string) []string {
	parts := strings.Split(raw, ",")
	items := make([]string, 0, len(parts))
	for _, p := range parts {
		items = append(items, strings.TrimSpace(p))
	}
	return items
}
