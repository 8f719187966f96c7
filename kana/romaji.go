package kana

import (
	"strings"
	"unicode/utf8"
)

// romajiSyllables maps Hepburn romaji syllables to hiragana. Lookup is
// longest-match (3, then 2, then 1 bytes), so yōon entries like "kya" win
// over "ka"/"ya". Both Hepburn and the common kunrei spellings are accepted
// ("shi"/"si", "chi"/"ti", "fu"/"hu", "ji"/"zi").
var romajiSyllables = map[string]string{
	// yōon and digraphs (3 bytes)
	"kya": "きゃ", "kyu": "きゅ", "kyo": "きょ",
	"gya": "ぎゃ", "gyu": "ぎゅ", "gyo": "ぎょ",
	"sha": "しゃ", "shu": "しゅ", "sho": "しょ", "shi": "し", "she": "しぇ",
	"sya": "しゃ", "syu": "しゅ", "syo": "しょ",
	"cha": "ちゃ", "chu": "ちゅ", "cho": "ちょ", "chi": "ち", "che": "ちぇ",
	"tya": "ちゃ", "tyu": "ちゅ", "tyo": "ちょ",
	"nya": "にゃ", "nyu": "にゅ", "nyo": "にょ",
	"hya": "ひゃ", "hyu": "ひゅ", "hyo": "ひょ",
	"bya": "びゃ", "byu": "びゅ", "byo": "びょ",
	"pya": "ぴゃ", "pyu": "ぴゅ", "pyo": "ぴょ",
	"mya": "みゃ", "myu": "みゅ", "myo": "みょ",
	"rya": "りゃ", "ryu": "りゅ", "ryo": "りょ",
	"jya": "じゃ", "jyu": "じゅ", "jyo": "じょ",
	"zya": "じゃ", "zyu": "じゅ", "zyo": "じょ",
	"dya": "ぢゃ", "dyu": "ぢゅ", "dyo": "ぢょ",
	"tsu": "つ", "tsa": "つぁ", "tsi": "つぃ", "tse": "つぇ", "tso": "つぉ",

	// two-byte syllables
	"ka": "か", "ki": "き", "ku": "く", "ke": "け", "ko": "こ",
	"ga": "が", "gi": "ぎ", "gu": "ぐ", "ge": "げ", "go": "ご",
	"sa": "さ", "si": "し", "su": "す", "se": "せ", "so": "そ",
	"za": "ざ", "zi": "じ", "zu": "ず", "ze": "ぜ", "zo": "ぞ",
	"ta": "た", "ti": "ち", "tu": "つ", "te": "て", "to": "と",
	"da": "だ", "di": "ぢ", "du": "づ", "de": "で", "do": "ど",
	"na": "な", "ni": "に", "nu": "ぬ", "ne": "ね", "no": "の",
	"ha": "は", "hi": "ひ", "hu": "ふ", "he": "へ", "ho": "ほ",
	"ba": "ば", "bi": "び", "bu": "ぶ", "be": "べ", "bo": "ぼ",
	"pa": "ぱ", "pi": "ぴ", "pu": "ぷ", "pe": "ぺ", "po": "ぽ",
	"fa": "ふぁ", "fi": "ふぃ", "fu": "ふ", "fe": "ふぇ", "fo": "ふぉ",
	"va": "ゔぁ", "vi": "ゔぃ", "vu": "ゔ", "ve": "ゔぇ", "vo": "ゔぉ",
	"ma": "ま", "mi": "み", "mu": "む", "me": "め", "mo": "も",
	"ya": "や", "yu": "ゆ", "yo": "よ",
	"ra": "ら", "ri": "り", "ru": "る", "re": "れ", "ro": "ろ",
	"ja": "じゃ", "ji": "じ", "ju": "じゅ", "je": "じぇ", "jo": "じょ",
	"wa": "わ", "wi": "ゐ", "we": "ゑ", "wo": "を",

	// bare vowels
	"a": "あ", "i": "い", "u": "う", "e": "え", "o": "お",
}

func isRomajiVowel(c byte) bool {
	return c == 'a' || c == 'i' || c == 'u' || c == 'e' || c == 'o'
}

func isASCIILetter(c byte) bool {
	return c >= 'a' && c <= 'z'
}

// FromRomaji converts Hepburn-romanized Japanese to hiragana.
//
// Handled beyond the syllable table:
//   - doubled consonants become sokuon ("kitte" -> きって)
//   - syllable-final n (and Hepburn m before b/p) becomes ん
//   - "-" becomes the long-vowel mark ー
//
// Runes that are not romaji (kana, kanji, digits, punctuation) pass through
// unchanged, so mixed input stays intact.
func FromRomaji(text string) string {
	s := strings.ToLower(text)
	var b strings.Builder
	b.Grow(len(s) * 3)

	for i := 0; i < len(s); {
		c := s[i]

		if c >= 0x80 || !isASCIILetter(c) && c != '-' && c != '\'' {
			// Pass non-romaji bytes through rune-wise.
			r, size := utf8.DecodeRuneInString(s[i:])
			b.WriteRune(r)
			i += size
			continue
		}

		switch {
		case c == '-':
			b.WriteRune('ー')
			i++
			continue
		case c == '\'':
			// Apostrophe disambiguates ん (e.g. "kon'ya"); it emits nothing.
			i++
			continue
		case c == 'n' && (i+1 >= len(s) || !isSyllableContinuation(s[i+1])):
			b.WriteRune('ん')
			i++
			continue
		case c == 'm' && i+1 < len(s) && (s[i+1] == 'b' || s[i+1] == 'p'):
			// Traditional Hepburn: shimbun -> しんぶん.
			b.WriteRune('ん')
			i++
			continue
		case i+1 < len(s) && s[i] == s[i+1] && isASCIILetter(c) && !isRomajiVowel(c) && c != 'n':
			b.WriteRune('っ')
			i++
			continue
		}

		matched := false
		for l := 3; l >= 1; l-- {
			if i+l > len(s) {
				continue
			}
			if h, ok := romajiSyllables[s[i:i+l]]; ok {
				b.WriteString(h)
				i += l
				matched = true
				break
			}
		}
		if !matched {
			// Stray consonant; keep it rather than guessing.
			b.WriteByte(c)
			i++
		}
	}
	return b.String()
}

// isSyllableContinuation reports whether the byte after an "n" can extend it
// into a na-row syllable (vowel or y) instead of standalone ん.
func isSyllableContinuation(c byte) bool {
	return isRomajiVowel(c) || c == 'y'
}
