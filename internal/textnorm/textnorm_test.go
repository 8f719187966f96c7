package textnorm

import "testing"

func TestKey(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"étudier", "etudier"},
		{"Déjà   Vu", "deja vu"},
		{"  Ça  va  ", "ca va"},
		{"ÉLÈVE", "eleve"},
		{"study", "study"},
		{"l'œil", "l'œil"}, // ligature has no combining mark; only case folds
	}
	for _, c := range cases {
		if got := Key(c.in); got != c.want {
			t.Errorf("Key(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestKeyIdempotent(t *testing.T) {
	inputs := []string{"", "étudier", "  Crème   Brûlée ", "study", "İstanbul"}
	for _, s := range inputs {
		once := Key(s)
		if twice := Key(once); twice != once {
			t.Errorf("Key not idempotent for %q: %q != %q", s, twice, once)
		}
	}
}

func TestGlossDocument(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"   ", ""},
		{"To study; 学习", "to study xue xi"},
		{"apprendre (qqch)", "apprendre qqch"},
	}
	for _, c := range cases {
		if got := GlossDocument(c.in); got != c.want {
			t.Errorf("GlossDocument(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
