package search

import (
	"context"
	"strings"
)

// SuggestPhrases runs the two-tier match for one field of a phrase table.
//
// Tier 1 is the prefix match, tier 2 the contains match minus anything the
// prefix tier already returned; both come back from the repository ordered
// by (-freq, id). The merge keeps tier order, deduplicates by id and
// truncates to limit. Read-only.
func SuggestPhrases(ctx context.Context, repo PhraseRepo, field Field, query string, limit int) ([]PhraseEntry, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return []PhraseEntry{}, nil
	}

	prefix, err := repo.FindByPrefix(ctx, field, query, limit)
	if err != nil {
		return nil, err
	}
	contains, err := repo.FindByContains(ctx, field, query, limit)
	if err != nil {
		return nil, err
	}

	seen := make(map[int64]struct{}, limit)
	out := make([]PhraseEntry, 0, limit)
	for _, e := range append(prefix, contains...) {
		if _, ok := seen[e.ID]; ok {
			continue
		}
		seen[e.ID] = struct{}{}
		out = append(out, e)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

// LookupPhrase fetches one phrase by id and bumps its view counter.
//
// The increment is a best-effort read-modify-write: concurrent lookups on
// the same id may advance the counter by less than the number of lookups.
// Returns ErrNotFound without touching any counter when the id is absent.
func LookupPhrase(ctx context.Context, repo PhraseRepo, id int64) (*PhraseEntry, error) {
	entry, err := repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := repo.IncrementFreq(ctx, id); err != nil {
		return nil, err
	}
	entry.Freq++
	return entry, nil
}
