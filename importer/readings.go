package importer

import (
	"fmt"
	"strings"

	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"

	"github.com/open-lexicon/lexkit/kana"
)

// ReadingConverter derives a hiragana reading for Japanese text that
// contains kanji, using a morphological dictionary. Rows that already
// carry a kana reading never need it.
type ReadingConverter struct {
	t *tokenizer.Tokenizer
}

func NewReadingConverter() (*ReadingConverter, error) {
	t, err := tokenizer.New(ipa.Dict(), tokenizer.OmitBosEos())
	if err != nil {
		return nil, fmt.Errorf("init tokenizer: %w", err)
	}
	return &ReadingConverter{t: t}, nil
}

// Reading returns the hiragana reading of s. Tokens the dictionary does
// not know keep their surface form, folded to hiragana where applicable.
func (c *ReadingConverter) Reading(s string) string {
	var b strings.Builder
	for _, tok := range c.t.Tokenize(s) {
		if r, ok := tok.Reading(); ok && r != "*" {
			b.WriteString(kana.HiraganaFold(r))
			continue
		}
		b.WriteString(kana.HiraganaFold(tok.Surface))
	}
	return b.String()
}
