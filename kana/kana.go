// Package kana canonicalizes Japanese query text to hiragana.
//
// Any mix of hiragana, katakana and Hepburn-romanized Latin input folds to a
// single hiragana form, which is the indexed search key for the Japanese
// wordlist. Kanji passes through unchanged: reading disambiguation needs a
// morphological tagger and belongs to the import pipeline, not the query path.
package kana

import "strings"

// ToKana converts text to its canonical hiragana form.
//
// Katakana folds to hiragana first. If any Latin letters remain, the whole
// string is treated as Hepburn romaji and converted, then folded once more.
func ToKana(text string) string {
	if text == "" {
		return ""
	}

	out := HiraganaFold(text)

	if containsLatinLetter(out) {
		out = HiraganaFold(FromRomaji(out))
	}

	// Safety pass: FromRomaji passes unknown runes through untouched.
	return HiraganaFold(out)
}

// HiraganaFold converts every katakana rune to its hiragana counterpart,
// leaving all other runes unchanged.
func HiraganaFold(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		// Katakana ァ..ヶ sits exactly 0x60 above hiragana ぁ..ゖ.
		if r >= 'ァ' && r <= 'ヶ' {
			r -= 0x60
		}
		b.WriteRune(r)
	}
	return b.String()
}

// IsKana reports whether every rune of s lies in the hiragana or katakana
// Unicode blocks. Empty strings are not kana.
func IsKana(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if (r >= 0x3040 && r <= 0x309F) || (r >= 0x30A0 && r <= 0x30FF) {
			continue
		}
		return false
	}
	return true
}

func containsLatinLetter(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
			return true
		}
	}
	return false
}
