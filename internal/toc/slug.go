package toc

import (
	"strings"
	"unicode"
)

// Slugify 把标题文本转成锚点 id：
// 小写；空白连写为 '-'；只保留字母、数字、'-'、'_'；去掉首尾 '-'。结果为空时返回 "section"。
func Slugify(s string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsSpace(r) || r == '-':
			pendingDash = true
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_':
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "section"
	}
	return b.String()
}
