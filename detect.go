package lexkit

import (
	"context"
	"errors"

	"github.com/open-lexicon/lexkit/kana"
	"github.com/open-lexicon/lexkit/search"
)

// Language tags a detected (or requested) query language.
type Language string

const (
	LangChinese  Language = "zh"
	LangJapanese Language = "jp"
	LangFrench   Language = "fr"
	LangOther    Language = "other"
)

// Detection is the outcome of script/language classification.
type Detection struct {
	// Query is the resolved query: usually the trimmed input, or the mapped
	// Japanese kanji form when a hanzi-column mapping hit rewrote it.
	Query string
	Lang  Language
	// CrossScript is true when the query crossed scripts: a CJK string found
	// in the kanji↔hanzi mapping, or an accented (non-ASCII) Latin letter
	// marking the input as likely French rather than plain English.
	CrossScript bool
}

// Detect classifies a raw query into {zh, jp, fr, other} and, for
// CJK-ideograph input, consults the kanji↔hanzi mapping: the kanji column
// first (a hit means a Japanese form misread as Chinese), then the hanzi
// column (a hit rewrites the query to the mapped kanji form). The mapping
// lookup is the only I/O; Detect has no side effects.
func Detect(ctx context.Context, mappings search.MappingRepo, query string) (Detection, error) {
	q := normalizeWhitespace(query)
	if q == "" {
		return Detection{Query: "", Lang: LangOther}, nil
	}

	if kana.IsKana(q) {
		return Detection{Query: q, Lang: LangJapanese}, nil
	}

	if containsCJKIdeograph(q) {
		if mappings != nil {
			if _, err := mappings.LookupKanji(ctx, q); err == nil {
				return Detection{Query: q, Lang: LangJapanese, CrossScript: true}, nil
			} else if !errors.Is(err, search.ErrNotFound) {
				return Detection{}, err
			}
			if m, err := mappings.LookupHanzi(ctx, q); err == nil {
				return Detection{Query: m.Kanji, Lang: LangChinese, CrossScript: true}, nil
			} else if !errors.Is(err, search.ErrNotFound) {
				return Detection{}, err
			}
		}
		return Detection{Query: q, Lang: LangChinese}, nil
	}

	if containsLatinLetter(q) {
		return Detection{Query: q, Lang: LangFrench, CrossScript: containsAccentedLatin(q)}, nil
	}

	return Detection{Query: q, Lang: LangOther}, nil
}
