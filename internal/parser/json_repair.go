package parser

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// maxModelInputChars 是送入模型的文本上限，超出部分截断并追加标记。
// 简历和职位描述共用同一套截断策略。
const maxModelInputChars = 6000

// truncationMarker 追加在被截断文本末尾，提示模型内容不完整
const truncationMarker = "...[truncated]..."

// truncateForModel 把输入截断到模型可接受的长度。
// 按字符数截断,避免在多字节字符中间切开
func truncateForModel(text string) string {
	if utf8.RuneCountInString(text) <= maxModelInputChars {
		return text
	}
	return string([]rune(text)[:maxModelInputChars]) + truncationMarker
}

var fencedJSONRegex = regexp.MustCompile("(?s)```json\\s*(\\{.*?\\})\\s*```")

// extractJSON 从模型回复中提取JSON部分（防止模型返回的不是纯JSON）。
// 优先取 ```json ... ``` 代码块，没有代码块时回退到花括号配平扫描，
// 取第一个顶层 {...} 区间。
func extractJSON(text string) string {
	matches := fencedJSONRegex.FindStringSubmatch(text)
	if len(matches) > 1 {
		return strings.TrimSpace(matches[1])
	}

	start := strings.Index(text, "{")
	if start == -1 {
		return ""
	}

	// 查找匹配的}
	level := 0
	for i := start; i < len(text); i++ {
		if text[i] == '{' {
			level++
		} else if text[i] == '}' {
			level--
			if level == 0 {
				return strings.TrimSpace(text[start : i+1])
			}
		}
	}
	return ""
}

// sanitizeJSON 会遍历 src，把位于字符串字面量内部但并非真正结束的双引号改写为 \"，
// 以保证整个 JSON 在 Go 端能够正常反序列化。
// 判断方式：下一个非空白字符是 :, ], }, 或 , 时才视为字符串结束。
// 反斜杠转义逻辑正常处理 \\ 和 \"。
func sanitizeJSON(src string) string {
	var b strings.Builder
	inStr := false
	escaped := false

	for i := 0; i < len(src); i++ {
		c := src[i]

		if c == '"' && !escaped {
			if !inStr {
				inStr = true
				b.WriteByte(c)
			} else {
				j := i + 1
				for j < len(src) && (src[j] == ' ' || src[j] == '\t' || src[j] == '\n' || src[j] == '\r') {
					j++
				}
				if j < len(src) && (src[j] == ':' || src[j] == ',' || src[j] == ']' || src[j] == '}') {
					inStr = false
					b.WriteByte(c)
				} else {
					// 字符串内部未转义的引号，补上转义
					b.WriteString("\\\"")
				}
			}
			escaped = false

		} else if c == '\\' && !escaped {
			escaped = true
			b.WriteByte(c)

		} else {
			b.WriteByte(c)
			escaped = false
		}
	}

	return b.String()
}
