package search

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRunPlan_PreservesSubmissionOrder(t *testing.T) {
	slow := func(ctx context.Context) ([]PhraseEntry, error) {
		time.Sleep(20 * time.Millisecond)
		return []PhraseEntry{{ID: 1}}, nil
	}
	fast := func(ctx context.Context) ([]PhraseEntry, error) {
		return []PhraseEntry{{ID: 2}}, nil
	}

	lists, err := RunPlan(context.Background(), []SubQuery{slow, fast})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lists) != 2 {
		t.Fatalf("expected 2 lists, got %d", len(lists))
	}
	if lists[0][0].ID != 1 || lists[1][0].ID != 2 {
		t.Fatalf("results not in submission order: %v", lists)
	}
}

func TestRunPlan_FirstErrorWins(t *testing.T) {
	boom := errors.New("boom")
	failing := func(ctx context.Context) ([]PhraseEntry, error) {
		return nil, boom
	}
	blocked := func(ctx context.Context) ([]PhraseEntry, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}

	_, err := RunPlan(context.Background(), []SubQuery{failing, blocked})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
}

func TestDedupPhrases_KeepsFirstOccurrence(t *testing.T) {
	primary := []PhraseEntry{{ID: 1, Text: "一石二鳥", Gloss: "native"}}
	fallback := []PhraseEntry{{ID: 2, Text: "一石二鳥", Gloss: "fallback"}, {ID: 3, Text: "七転び八起き"}}

	got := DedupPhrases([][]PhraseEntry{primary, fallback}, 10)
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0].Gloss != "native" {
		t.Fatalf("expected the primary sub-query's entry to win, got %q", got[0].Gloss)
	}
}

func TestDedupPhrases_FallsBackToKey(t *testing.T) {
	lists := [][]PhraseEntry{
		{{ID: 1, Key: "いしばし"}},
		{{ID: 2, Key: "いしばし"}},
	}
	got := DedupPhrases(lists, 10)
	if len(got) != 1 {
		t.Fatalf("expected entries without text to dedup on key, got %d", len(got))
	}
}

func TestDedupPhrases_Limit(t *testing.T) {
	lists := [][]PhraseEntry{{
		{ID: 1, Text: "a"}, {ID: 2, Text: "b"}, {ID: 3, Text: "c"},
	}}
	got := DedupPhrases(lists, 2)
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
}
