package search

import (
	"context"
	"testing"
)

type fakeWordRepo struct {
	exact    *WordEntry
	prefix   []WordEntry
	contains []WordEntry
	glosses  []Gloss

	lastMatch     MatchSpec
	containsLimit int
	containsCalls int
	increments    []int64
}

func (f *fakeWordRepo) FindExact(ctx context.Context, m MatchSpec) (*WordEntry, error) {
	f.lastMatch = m
	if f.exact == nil {
		return nil, ErrNotFound
	}
	e := *f.exact
	return &e, nil
}

func (f *fakeWordRepo) FindByPrefix(ctx context.Context, m MatchSpec, limit int) ([]WordEntry, error) {
	if limit < len(f.prefix) {
		return f.prefix[:limit], nil
	}
	return f.prefix, nil
}

func (f *fakeWordRepo) FindByContains(ctx context.Context, m MatchSpec, limit int) ([]WordEntry, error) {
	f.containsCalls++
	f.containsLimit = limit
	if limit < len(f.contains) {
		return f.contains[:limit], nil
	}
	return f.contains, nil
}

func (f *fakeWordRepo) FindGlossesByWordIDs(ctx context.Context, ids []int64) ([]Gloss, error) {
	want := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	var out []Gloss
	for _, g := range f.glosses {
		if _, ok := want[g.WordID]; ok {
			out = append(out, g)
		}
	}
	return out, nil
}

func (f *fakeWordRepo) IncrementFreq(ctx context.Context, id int64) error {
	f.increments = append(f.increments, id)
	return nil
}

func TestSuggestWords_EmptyQuery(t *testing.T) {
	repo := &fakeWordRepo{}
	got, err := SuggestWords(context.Background(), repo, MatchSpec{}, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no suggestions, got %d", len(got))
	}
}

func TestSuggestWords_RanksByFreqThenLength(t *testing.T) {
	repo := &fakeWordRepo{
		prefix: []WordEntry{
			{ID: 1, Text: "etudiante", Freq: 5},
			{ID: 2, Text: "etude", Freq: 9},
			{ID: 3, Text: "etudier", Freq: 9},
		},
	}
	got, err := SuggestWords(context.Background(), repo, MatchSpec{Canonical: "etud", Raw: "etud"}, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"etude", "etudier", "etudiante"}
	if len(got) != len(want) {
		t.Fatalf("expected %d suggestions, got %d", len(want), len(got))
	}
	for i, w := range want {
		if got[i].Word != w {
			t.Fatalf("position %d: expected %q, got %q", i, w, got[i].Word)
		}
	}
}

func TestSuggestWords_DedupsExactAgainstPrefix(t *testing.T) {
	exact := WordEntry{ID: 1, Text: "etude", Freq: 3}
	repo := &fakeWordRepo{
		exact:  &exact,
		prefix: []WordEntry{exact, {ID: 2, Text: "etudier", Freq: 1}},
	}
	got, err := SuggestWords(context.Background(), repo, MatchSpec{Canonical: "etude", Raw: "etude"}, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 suggestions after dedup, got %d", len(got))
	}
	if got[0].Word != "etude" {
		t.Fatalf("expected exact match ranked first, got %q", got[0].Word)
	}
}

func TestSuggestWords_ContainsTierFetchesDouble(t *testing.T) {
	repo := &fakeWordRepo{
		prefix:   []WordEntry{{ID: 1, Text: "maison", Freq: 1}},
		contains: []WordEntry{{ID: 2, Text: "la maison", Freq: 2}},
	}
	_, err := SuggestWords(context.Background(), repo, MatchSpec{Canonical: "maison", Raw: "maison"}, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 5 wanted, 1 from prefix: the contains tier over-fetches to survive dedup.
	if repo.containsLimit != 8 {
		t.Fatalf("expected contains limit 8, got %d", repo.containsLimit)
	}
}

func TestSuggestWords_SkipsContainsWhenPrefixFills(t *testing.T) {
	var prefix []WordEntry
	for i := int64(1); i <= 5; i++ {
		prefix = append(prefix, WordEntry{ID: i, Text: string(rune('a' + i)), Freq: i})
	}
	repo := &fakeWordRepo{prefix: prefix}
	_, err := SuggestWords(context.Background(), repo, MatchSpec{Canonical: "x", Raw: "x"}, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.containsCalls != 0 {
		t.Fatalf("expected contains tier to be skipped, got %d calls", repo.containsCalls)
	}
}

func TestSuggestWords_TruncatesToLimit(t *testing.T) {
	var prefix []WordEntry
	for i := int64(1); i <= 9; i++ {
		prefix = append(prefix, WordEntry{ID: i, Text: string(rune('a' + i)), Freq: i})
	}
	repo := &fakeWordRepo{prefix: prefix}
	got, err := SuggestWords(context.Background(), repo, MatchSpec{Canonical: "x", Raw: "x"}, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 suggestions, got %d", len(got))
	}
}

func TestSuggestWords_AttachesDedupedGlosses(t *testing.T) {
	repo := &fakeWordRepo{
		prefix: []WordEntry{{ID: 1, Text: "勉強", Reading: "べんきょう", Freq: 1}},
		glosses: []Gloss{
			{WordID: 1, Meaning: "学习"},
			{WordID: 1, Meaning: "学习"},
			{WordID: 1, Meaning: "用功"},
			{WordID: 2, Meaning: "不相关"},
		},
	}
	got, err := SuggestWords(context.Background(), repo, MatchSpec{Canonical: "べんきょう", Raw: "勉強"}, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 suggestion, got %d", len(got))
	}
	s := got[0]
	if s.Reading != "べんきょう" {
		t.Fatalf("expected reading carried through, got %q", s.Reading)
	}
	if len(s.Meanings) != 2 || s.Meanings[0] != "学习" || s.Meanings[1] != "用功" {
		t.Fatalf("expected deduped meanings in first-seen order, got %v", s.Meanings)
	}
}

func TestSuggestWords_ReadOnly(t *testing.T) {
	repo := &fakeWordRepo{
		exact: &WordEntry{ID: 1, Text: "etude", Freq: 3},
	}
	if _, err := SuggestWords(context.Background(), repo, MatchSpec{Canonical: "etude", Raw: "etude"}, 10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.increments) != 0 {
		t.Fatalf("suggestion query must not touch frequency, got increments %v", repo.increments)
	}
}
