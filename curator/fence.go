package curator

import (
	"strings"
	"unicode"
)

// StripCodeFence removes a surrounding markdown fence (```json ... ```) the
// model sometimes adds despite being told not to. Text without a leading fence
// is returned trimmed.
func StripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	// opening fence line, including any language tag
	if nl := strings.IndexByte(text, '\n'); nl >= 0 {
		text = text[nl+1:]
	} else {
		text = stripLangTag(text[3:])
	}
	if i := strings.LastIndex(text, "```"); i >= 0 {
		text = text[:i]
	}
	return strings.TrimSpace(text)
}

// stripLangTag drops a leading language tag on a one-line fence ("json [..]").
func stripLangTag(text string) string {
	i := strings.IndexAny(text, " \t[{")
	if i <= 0 {
		return text
	}
	for _, r := range text[:i] {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return text
		}
	}
	return text[i:]
}
