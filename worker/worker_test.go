package worker

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/open-lexicon/lexkit/search"
)

func TestExpBackoff(t *testing.T) {
	base := 5 * time.Second
	max := 10 * time.Minute

	if got := expBackoff(base, 1, max); got != 5*time.Second {
		t.Fatalf("attempt 1: got %v", got)
	}
	if got := expBackoff(base, 4, max); got != 40*time.Second {
		t.Fatalf("attempt 4: got %v", got)
	}
	if got := expBackoff(base, 20, max); got != max {
		t.Fatalf("expected cap at %v, got %v", max, got)
	}
}

func TestAddJitter(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	d := 8 * time.Second
	for i := 0; i < 100; i++ {
		j := addJitter(rng, d)
		if j < d || j > d+d/4 {
			t.Fatalf("jitter out of range: %v", j)
		}
	}
}

func TestIsRetryable(t *testing.T) {
	if !isRetryable(&openai.APIError{HTTPStatusCode: 429}) {
		t.Fatalf("429 should be retryable")
	}
	if !isRetryable(&openai.APIError{HTTPStatusCode: 503}) {
		t.Fatalf("503 should be retryable")
	}
	if isRetryable(&openai.APIError{HTTPStatusCode: 400}) {
		t.Fatalf("400 should not be retryable")
	}
	if isRetryable(&openai.RequestError{HTTPStatusCode: 401}) {
		t.Fatalf("401 should not be retryable")
	}
	if !isRetryable(errors.New("connection reset")) {
		t.Fatalf("unknown errors should be retryable")
	}
}

func TestGlossDocument(t *testing.T) {
	glosses := []search.Gloss{
		{Meaning: "学习", English: "To study!"},
		{Meaning: "研究"},
	}
	got := GlossDocument(glosses)
	want := "xue xi to study yan jiu"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestGlossDocument_Empty(t *testing.T) {
	if got := GlossDocument(nil); got != "" {
		t.Fatalf("expected empty document, got %q", got)
	}
}
