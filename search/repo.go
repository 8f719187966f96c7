// Package search implements the lexical suggestion engine: tiered
// prefix/contains matching over repository interfaces, frequency ranking,
// ordered concurrent sub-query plans, and result merging.
package search

import (
	"context"
	"errors"
)

// ErrNotFound is returned by exact-id and exact-key lookups when no entry
// matches. Suggestion queries never return it; they yield empty slices.
var ErrNotFound = errors.New("lexkit: entry not found")

// Field selects which column of a lexicon table a tiered match runs against.
// Repositories translate it to their own schema; the engine never builds
// field names from strings.
type Field int

const (
	// FieldText matches the native surface text (proverb, idiom, word).
	FieldText Field = iota
	// FieldKey matches the canonical search key (normalized Latin text or
	// the hiragana reading).
	FieldKey
	// FieldGloss matches the target-language gloss (Chinese explanation).
	FieldGloss
)

func (f Field) String() string {
	switch f {
	case FieldText:
		return "text"
	case FieldKey:
		return "key"
	case FieldGloss:
		return "gloss"
	default:
		return "unknown"
	}
}

// WordEntry is one wordlist row. Key is derived from Text and never set
// directly: textnorm.Key for French, the hiragana reading for Japanese.
type WordEntry struct {
	ID      int64
	Text    string
	Key     string
	Reading string // hiragana reading; empty for French
	Freq    int64
}

// Gloss is one definition row attached to a word.
type Gloss struct {
	WordID  int64
	POS     string
	Meaning string // target-language (Chinese) meaning
	English string // English explanation; French wordlist only
	Example string
}

// MatchSpec carries both forms of a word query: the canonical key (matched
// against WordEntry.Key) and the raw input (matched against WordEntry.Text).
type MatchSpec struct {
	Canonical string
	Raw       string
}

// WordRepo is the lexicon repository for one language's wordlist.
//
// Ordering contract: FindByPrefix and FindByContains return entries ordered
// by descending Freq. FindByContains must exclude entries that would match
// the prefix tier or equal the query outright. IncrementFreq is best-effort;
// concurrent increments may be lost and callers tolerate that.
type WordRepo interface {
	// FindExact returns the entry whose canonical key equals m.Canonical or
	// whose surface text equals m.Raw, or ErrNotFound. The surface-text arm
	// matters for Japanese: a kanji query canonicalizes to itself, not to
	// the stored hiragana reading.
	FindExact(ctx context.Context, m MatchSpec) (*WordEntry, error)
	FindByPrefix(ctx context.Context, m MatchSpec, limit int) ([]WordEntry, error)
	FindByContains(ctx context.Context, m MatchSpec, limit int) ([]WordEntry, error)
	// FindGlossesByWordIDs batch-fetches glosses for all candidate words in
	// one query.
	FindGlossesByWordIDs(ctx context.Context, ids []int64) ([]Gloss, error)
	IncrementFreq(ctx context.Context, id int64) error
}

// PhraseEntry is one proverb or idiom row. The same canonicalization
// invariant applies: Key is recomputed from Text, never stored directly.
type PhraseEntry struct {
	ID    int64
	Text  string // native text
	Key   string // canonical search key
	Gloss string // target-language explanation
	Freq  int64
}

// PhraseRepo generalizes the tiered engine over any phrase-shaped table
// (proverbs, idioms). One instance is bound to one table.
//
// Ordering contract: tier queries return entries ordered by (-Freq, ID), so
// equal frequencies break ties deterministically. FindByContains excludes
// prefix matches on the same field.
type PhraseRepo interface {
	FindByPrefix(ctx context.Context, field Field, prefix string, limit int) ([]PhraseEntry, error)
	FindByContains(ctx context.Context, field Field, substr string, limit int) ([]PhraseEntry, error)
	// FindByID returns the entry or ErrNotFound.
	FindByID(ctx context.Context, id int64) (*PhraseEntry, error)
	IncrementFreq(ctx context.Context, id int64) error
}

// Mapping is one row of the static kanji↔hanzi table.
type Mapping struct {
	Hanzi string
	Kanji string
	Note  string
}

// MappingRepo looks up the kanji↔hanzi mapping table. Read-only at query
// time; rows come from an offline import.
type MappingRepo interface {
	// LookupKanji finds a row by its Japanese kanji column, or ErrNotFound.
	LookupKanji(ctx context.Context, text string) (*Mapping, error)
	// LookupHanzi finds a row by its Chinese hanzi column, or ErrNotFound.
	LookupHanzi(ctx context.Context, text string) (*Mapping, error)
}
