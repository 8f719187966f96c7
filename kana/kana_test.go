package kana

import "testing"

func TestToKana(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"こんにちは", "こんにちは"}, // pure hiragana is returned unchanged
		{"カタカナ", "かたかな"},
		{"コーヒー", "こーひー"}, // long-vowel mark survives folding
		{"konnichiwa", "こんにちわ"},
		{"sushi", "すし"},
		{"kitte", "きって"},
		{"toukyou", "とうきょう"},
		{"shimbun", "しんぶん"},
		{"kon'ya", "こんや"},
		{"ramen", "らめん"},
		{"勉強", "勉強"}, // kanji is its own canonical key at query time
		{"勉強suru", "勉強する"},
	}
	for _, c := range cases {
		if got := ToKana(c.in); got != c.want {
			t.Errorf("ToKana(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestToKanaStableOnHiragana(t *testing.T) {
	inputs := []string{"あい", "きって", "とうきょう", "ぎゅうにゅう"}
	for _, s := range inputs {
		if got := ToKana(s); got != s {
			t.Errorf("ToKana(%q) = %q, want unchanged", s, got)
		}
	}
}

func TestHiraganaFold(t *testing.T) {
	if got := HiraganaFold("アイウエオん"); got != "あいうえおん" {
		t.Errorf("HiraganaFold = %q", got)
	}
	if got := HiraganaFold("ヴ"); got != "ゔ" {
		t.Errorf("HiraganaFold(ヴ) = %q", got)
	}
}

func TestIsKana(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"", false},
		{"こんにちは", true},
		{"カタカナ", true},
		{"こんにちは!", false},
		{"勉強", false},
		{"abc", false},
	}
	for _, c := range cases {
		if got := IsKana(c.in); got != c.want {
			t.Errorf("IsKana(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestFromRomajiPassthrough(t *testing.T) {
	if got := FromRomaji("123 こんにちは"); got != "123 こんにちは" {
		t.Errorf("FromRomaji passthrough = %q", got)
	}
}
