package search

import (
	"context"
	"errors"
	"sort"
	"unicode/utf8"
)

// DefaultLimit caps suggestion lists when the caller does not set one.
const DefaultLimit = 10

// Suggestion is one ranked autocomplete result. Meanings and English are
// deduplicated sets kept in first-seen order.
type Suggestion struct {
	Word     string
	Reading  string // hiragana; empty for French
	Meanings []string
	English  []string
}

// SuggestWords runs the two-tier autocomplete against one wordlist.
//
// m.Canonical must already be the canonical form of the query (normalized
// Latin text or hiragana); m.Raw is the untouched user input. Candidates are
// gathered exact-first, then prefix, then contains (fetched at twice the
// remaining need to survive dedup), deduplicated by (text, reading),
// re-sorted by (-freq, text length, text) and truncated to limit, after
// which glosses are attached in a single batch query.
//
// Read-only: frequency is not touched here.
func SuggestWords(ctx context.Context, repo WordRepo, m MatchSpec, limit int) ([]Suggestion, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if m.Canonical == "" && m.Raw == "" {
		return []Suggestion{}, nil
	}

	var candidates []WordEntry

	exact, err := repo.FindExact(ctx, m)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if exact != nil {
		candidates = append(candidates, *exact)
	}

	prefix, err := repo.FindByPrefix(ctx, m, limit)
	if err != nil {
		return nil, err
	}
	candidates = append(candidates, prefix...)

	if need := limit - len(prefix); need > 0 {
		contains, err := repo.FindByContains(ctx, m, need*2)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, contains...)
	}

	picked := rankWords(candidates, limit)
	if len(picked) == 0 {
		return []Suggestion{}, nil
	}

	ids := make([]int64, 0, len(picked))
	for _, w := range picked {
		ids = append(ids, w.ID)
	}
	glosses, err := repo.FindGlossesByWordIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	return attachGlosses(picked, glosses), nil
}

type wordKey struct {
	text    string
	reading string
}

// rankWords deduplicates candidates by (text, reading) preserving first-seen
// order, then sorts by descending frequency with shorter surface forms and
// lexicographic order as tie-breaks, and truncates to limit.
//
// The merged set is always sorted and truncated, even when the prefix tier
// alone filled the limit.
func rankWords(candidates []WordEntry, limit int) []WordEntry {
	seen := make(map[wordKey]struct{}, len(candidates))
	out := make([]WordEntry, 0, len(candidates))
	for _, w := range candidates {
		k := wordKey{w.Text, w.Reading}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, w)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Freq != out[j].Freq {
			return out[i].Freq > out[j].Freq
		}
		li, lj := utf8.RuneCountInString(out[i].Text), utf8.RuneCountInString(out[j].Text)
		if li != lj {
			return li < lj
		}
		return out[i].Text < out[j].Text
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func attachGlosses(words []WordEntry, glosses []Gloss) []Suggestion {
	byWord := make(map[int64][]Gloss, len(words))
	for _, g := range glosses {
		byWord[g.WordID] = append(byWord[g.WordID], g)
	}

	out := make([]Suggestion, 0, len(words))
	for _, w := range words {
		s := Suggestion{Word: w.Text, Reading: w.Reading}
		seenMeaning := make(map[string]struct{})
		seenEnglish := make(map[string]struct{})
		for _, g := range byWord[w.ID] {
			if g.Meaning != "" {
				if _, ok := seenMeaning[g.Meaning]; !ok {
					seenMeaning[g.Meaning] = struct{}{}
					s.Meanings = append(s.Meanings, g.Meaning)
				}
			}
			if g.English != "" {
				if _, ok := seenEnglish[g.English]; !ok {
					seenEnglish[g.English] = struct{}{}
					s.English = append(s.English, g.English)
				}
			}
		}
		out = append(out, s)
	}
	return out
}
