package parser

import (
	"fmt"
	"regexp"
	"strings"
)

// boilerplateLabels 是链接控件在文本提取后残留的无意义标签
var boilerplateLabels = []string{
	"Deployment Link",
	"Code Link",
	"Certificate Link",
}

// sectionHeaderRegex 匹配独占一行的章节标题（大小写不敏感）
var sectionHeaderRegex = regexp.MustCompile(`(?i)^(SKILLS|PROJECTS|EDUCATION|CERTIFICATIONS)$`)

// NormalizeText 清洗从文档中提取出的原始文本：
// 去掉链接标签残留，把章节标题改写为 === SKILLS === 形式的分隔标记，
// 丢弃空行。纯函数，幂等，输出长度不超过输入长度。
func NormalizeText(raw string) string {
	text := raw
	for _, label := range boilerplateLabels {
		text = strings.ReplaceAll(text, label, "")
	}

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if m := sectionHeaderRegex.FindStringSubmatch(trimmed); m != nil {
			// 统一成大写标记，已改写过的行不会再次命中
			lines = append(lines, fmt.Sprintf("=== %s ===", strings.ToUpper(m[1])))
			continue
		}
		lines = append(lines, trimmed)
	}
	return strings.Join(lines, "\n")
}
