package render

import "strings"

const (
	markdownV2Special = "_*[]()~`>#+-=|{}.!"
	markdownSpecial   = "_*`["
)

// EscapeMarkdownV2 escapes every character Telegram's MarkdownV2 treats as
// markup. Backslashes are escaped first.
func EscapeMarkdownV2(text string) string {
	return escapeSet(text, markdownV2Special)
}

// EscapeMarkdown escapes for the legacy Markdown parse mode.
func EscapeMarkdown(text string) string {
	return escapeSet(text, markdownSpecial)
}

func escapeSet(text, special string) string {
	if text == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(text) + len(text)/4)
	for _, r := range text {
		if r == '\\' || strings.ContainsRune(special, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
