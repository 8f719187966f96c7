package pg

import (
	"strings"
	"testing"
)

func TestExactSQL_MatchesSurfaceText(t *testing.T) {
	// A kanji query canonicalizes to itself, so the exact match must also
	// compare the raw surface text, not just the hiragana key column.
	s := NewJapaneseWords(nil, "public")
	sql := s.exactSQL(`"public".wordlist_jp`)

	if !strings.Contains(sql, "hiragana = @key") {
		t.Fatalf("expected key-column match, got:\n%s", sql)
	}
	if !strings.Contains(sql, "text = @raw") {
		t.Fatalf("expected surface-text match, got:\n%s", sql)
	}
}
