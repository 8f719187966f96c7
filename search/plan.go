package search

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// SubQuery is one independent retrieval strategy inside a suggestion plan.
type SubQuery func(ctx context.Context) ([]PhraseEntry, error)

// RunPlan executes all sub-queries concurrently and returns their result
// lists in submission order, regardless of completion order. The first
// failure cancels the remaining sub-queries and is returned.
//
// Submission order is significant: the caller schedules primary-language
// strategies before cross-script fallbacks, and the downstream dedup keeps
// the first occurrence of each phrase.
func RunPlan(ctx context.Context, subs []SubQuery) ([][]PhraseEntry, error) {
	out := make([][]PhraseEntry, len(subs))
	g, ctx := errgroup.WithContext(ctx)
	for i, sub := range subs {
		g.Go(func() error {
			res, err := sub(ctx)
			if err != nil {
				return err
			}
			out[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// DedupPhrases concatenates plan results in submission order and drops
// duplicates. The dedup key prefers the native text and falls back to the
// canonical key, so the same idiom reached through the native match and the
// kana-normalized match collapses into its first (highest-priority) hit.
func DedupPhrases(lists [][]PhraseEntry, limit int) []PhraseEntry {
	if limit <= 0 {
		limit = DefaultLimit
	}
	seen := make(map[string]struct{}, limit)
	out := make([]PhraseEntry, 0, limit)
	for _, list := range lists {
		for _, e := range list {
			k := e.Text
			if k == "" {
				k = e.Key
			}
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, e)
			if len(out) >= limit {
				return out
			}
		}
	}
	return out
}
