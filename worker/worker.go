// Package worker drains the gloss-embedding task queue: for each leased
// task it rebuilds the word's gloss document, embeds it, and upserts the
// vector used by the meaning fallback.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/sync/errgroup"

	"github.com/open-lexicon/lexkit/embedder"
	"github.com/open-lexicon/lexkit/internal/textnorm"
	"github.com/open-lexicon/lexkit/pg"
	"github.com/open-lexicon/lexkit/search"
	"github.com/open-lexicon/lexkit/tasks"
)

type Options struct {
	BatchSize int
	LockAhead time.Duration
	PollEvery time.Duration

	MaxConcurrentEmbeds int

	MaxAttempts int
	BackoffBase time.Duration
	BackoffMax  time.Duration
}

func (o *Options) withDefaults() Options {
	out := *o
	if out.BatchSize <= 0 {
		out.BatchSize = 250
	}
	if out.LockAhead <= 0 {
		out.LockAhead = 30 * time.Second
	}
	if out.PollEvery <= 0 {
		out.PollEvery = 2 * time.Second
	}
	if out.MaxConcurrentEmbeds <= 0 {
		out.MaxConcurrentEmbeds = 8
	}
	if out.MaxAttempts <= 0 {
		out.MaxAttempts = 10
	}
	if out.BackoffBase <= 0 {
		out.BackoffBase = 5 * time.Second
	}
	if out.BackoffMax <= 0 {
		out.BackoffMax = 10 * time.Minute
	}
	return out
}

func isRetryable(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == 429 || apiErr.HTTPStatusCode == 408 {
			return true
		}
		return apiErr.HTTPStatusCode >= 500 && apiErr.HTTPStatusCode <= 599
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if reqErr.HTTPStatusCode == 429 || reqErr.HTTPStatusCode == 408 {
			return true
		}
		return reqErr.HTTPStatusCode >= 500 && reqErr.HTTPStatusCode <= 599
	}
	return true
}

func expBackoff(base time.Duration, attempt int, max time.Duration) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	mult := math.Pow(2, float64(attempt-1))
	d := time.Duration(float64(base) * mult)
	if d > max {
		return max
	}
	return d
}

func addJitter(rng *rand.Rand, d time.Duration) time.Duration {
	if d <= 0 {
		return d
	}
	// Up to 25% jitter.
	j := time.Duration(rng.Int63n(int64(d / 4)))
	return d + j
}

// Worker polls the task queue and embeds gloss documents.
type Worker struct {
	repo     *tasks.Repo
	embedder embedder.Embedder
	vectors  *pg.GlossVectors
	// words maps a wordlist name (task key) to its repository.
	words map[string]*pg.WordStore
	opts  Options
	log   *slog.Logger
	rng   *rand.Rand
}

func New(repo *tasks.Repo, emb embedder.Embedder, vectors *pg.GlossVectors, words map[string]*pg.WordStore, opts Options, log *slog.Logger) (*Worker, error) {
	if repo == nil {
		return nil, fmt.Errorf("task repo is required")
	}
	if emb == nil {
		return nil, fmt.Errorf("embedder is required")
	}
	if vectors == nil {
		return nil, fmt.Errorf("vector store is required")
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("at least one wordlist store is required")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Worker{
		repo:     repo,
		embedder: emb,
		vectors:  vectors,
		words:    words,
		opts:     opts.withDefaults(),
		log:      log,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

// Run polls until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.opts.PollEvery)
	defer ticker.Stop()

	for {
		if err := w.RunOnce(ctx); err != nil {
			w.log.Error("embed batch failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// RunOnce leases one batch of ready tasks and processes it with bounded
// concurrency. Per-task failures are retried with exponential backoff and
// dead-lettered after MaxAttempts; they do not fail the batch.
func (w *Worker) RunOnce(ctx context.Context) error {
	batch, err := w.repo.FetchReady(ctx, w.opts.BatchSize, w.opts.LockAhead)
	if err != nil {
		return err
	}
	if len(batch) == 0 {
		return nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(w.opts.MaxConcurrentEmbeds)
	for _, t := range batch {
		g.Go(func() error {
			w.handle(ctx, t)
			return nil
		})
	}
	return g.Wait()
}

func (w *Worker) handle(ctx context.Context, t tasks.Task) {
	lease := t.NextRunAt

	err := w.embedOne(ctx, t)
	if err == nil {
		if cErr := w.repo.Complete(ctx, t.Wordlist, t.WordID, t.Model, lease); cErr != nil {
			w.log.Error("complete task", "wordlist", t.Wordlist, "word_id", t.WordID, "error", cErr)
		}
		return
	}

	if t.Attempts+1 >= w.opts.MaxAttempts || !isRetryable(err) {
		w.log.Warn("dead-lettering task",
			"wordlist", t.Wordlist, "word_id", t.WordID, "attempts", t.Attempts, "error", err)
		if dErr := w.repo.DeadLetter(ctx, t, lease, err); dErr != nil {
			w.log.Error("dead-letter task", "wordlist", t.Wordlist, "word_id", t.WordID, "error", dErr)
		}
		return
	}

	backoff := addJitter(w.rng, expBackoff(w.opts.BackoffBase, t.Attempts+1, w.opts.BackoffMax))
	if fErr := w.repo.Fail(ctx, t.Wordlist, t.WordID, t.Model, lease, backoff); fErr != nil {
		w.log.Error("fail task", "wordlist", t.Wordlist, "word_id", t.WordID, "error", fErr)
	}
}

func (w *Worker) embedOne(ctx context.Context, t tasks.Task) error {
	store, ok := w.words[t.Wordlist]
	if !ok {
		return fmt.Errorf("unknown wordlist %q", t.Wordlist)
	}

	glosses, err := store.FindGlossesByWordIDs(ctx, []int64{t.WordID})
	if err != nil {
		return err
	}

	doc := GlossDocument(glosses)
	if doc == "" {
		// Nothing to embed; treat as done rather than retrying forever.
		return nil
	}

	vec, err := w.embedder.EmbedText(ctx, doc)
	if err != nil {
		return err
	}
	return w.vectors.Upsert(ctx, t.Wordlist, t.WordID, t.Model, doc, vec)
}

// GlossDocument joins a word's meanings and English explanations into the
// canonical document embedded for the meaning fallback.
func GlossDocument(glosses []search.Gloss) string {
	parts := make([]string, 0, len(glosses)*2)
	for _, g := range glosses {
		if g.Meaning != "" {
			parts = append(parts, g.Meaning)
		}
		if g.English != "" {
			parts = append(parts, g.English)
		}
	}
	return textnorm.GlossDocument(strings.Join(parts, " "))
}
