package pg

import "testing"

func TestQuoteIdent(t *testing.T) {
	if q, err := quoteIdent("public"); err != nil || q != `"public"` {
		t.Fatalf("got %q, %v", q, err)
	}
	if _, err := quoteIdent(""); err == nil {
		t.Fatalf("expected error for empty identifier")
	}
	if _, err := quoteIdent(`x"; DROP TABLE y`); err == nil {
		t.Fatalf("expected error for invalid identifier")
	}
}

func TestEscapeLike(t *testing.T) {
	if got := escapeLike(`50%_\`); got != `50\%\_\\` {
		t.Fatalf("got %q", got)
	}
}
