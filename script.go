package lexkit

import (
	"strings"
	"unicode"
)

func normalizeWhitespace(q string) string {
	q = strings.TrimSpace(q)
	if q == "" {
		return ""
	}
	return strings.Join(strings.Fields(q), " ")
}

func containsCJKIdeograph(q string) bool {
	for _, r := range q {
		// CJK Unified Ideographs
		if r >= 0x4E00 && r <= 0x9FFF {
			return true
		}
		// CJK Unified Ideographs Extension A
		if r >= 0x3400 && r <= 0x4DBF {
			return true
		}
	}
	return false
}

func containsLatinLetter(q string) bool {
	for _, r := range q {
		if unicode.Is(unicode.Latin, r) {
			return true
		}
	}
	return false
}

// containsAccentedLatin reports whether q carries a non-ASCII Latin letter
// (é, à, ç, œ, ...). Downstream this separates "likely French" from a plain
// English word, which decides whether the meaning fallback is worth a try.
func containsAccentedLatin(q string) bool {
	for _, r := range q {
		if r >= 0x80 && unicode.Is(unicode.Latin, r) {
			return true
		}
	}
	return false
}
