package textnorm

import (
	"strings"
	"unicode"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes (NFKD) and drops combining marks, so "é" becomes "e".
var stripMarks = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))

// Key derives the canonical search key for a Latin-script surface form:
//   - Unicode NFKD decomposition
//   - combining diacritical marks stripped
//   - lowercase
//   - whitespace runs collapsed to a single space, trimmed
//
// Key is pure, idempotent, and never fails; empty input yields "".
// Stored canonical keys must always equal Key(surface text).
func Key(s string) string {
	if s == "" {
		return ""
	}
	out, _, err := transform.String(stripMarks, s)
	if err != nil {
		// runes.Remove never errors in practice; fall back to the raw string.
		out = s
	}
	out = strings.ToLower(out)
	return strings.Join(strings.Fields(out), " ")
}

// GlossDocument normalizes a definition gloss into the canonical document
// used for embedding and meaning-based fallback matching:
//   - Unicode NFKC
//   - transliteration to ASCII (best-effort)
//   - lowercase
//   - punctuation collapsed to spaces, whitespace collapsed
//
// It is intentionally language-agnostic: glosses mix Chinese, English and
// French, and the fallback only needs a stable cross-script form.
func GlossDocument(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	s = norm.NFKC.String(s)
	s = unidecode.Unidecode(s)
	s = strings.ToLower(s)

	var b strings.Builder
	b.Grow(len(s))

	pending := false
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			if pending && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pending = false
			b.WriteRune(r)
			continue
		}
		pending = true
	}

	return strings.TrimSpace(b.String())
}
