// Package backfill recomputes stored canonical keys in bounded passes.
//
// Keys (search_text for French rows, kana_key for Japanese idioms) are
// derived columns. When the derivation changes, existing rows keep their
// old keys until a backfill pass rewrites them. Passes are resumable via
// a cursor row per table so large tables never block startup.
package backfill

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/open-lexicon/lexkit/internal/textnorm"
	"github.com/open-lexicon/lexkit/kana"
	"github.com/open-lexicon/lexkit/tasks"
)

// Target names one table whose key column is recomputed from its text column.
type Target struct {
	Table   string
	TextCol string
	KeyCol  string
	// Rekey derives the canonical key from the row's text.
	Rekey func(string) string
}

// FrenchWordKeys recomputes wordlist_fr.search_text from the headword.
func FrenchWordKeys() Target {
	return Target{Table: "wordlist_fr", TextCol: "text", KeyCol: "search_text", Rekey: textnorm.Key}
}

// ProverbKeys recomputes proverbs_fr.search_text from the proverb text.
func ProverbKeys() Target {
	return Target{Table: "proverbs_fr", TextCol: "proverb", KeyCol: "search_text", Rekey: textnorm.Key}
}

// IdiomKeys renormalizes idioms_jp.kana_key (katakana folded to hiragana).
func IdiomKeys() Target {
	return Target{Table: "idioms_jp", TextCol: "kana_key", KeyCol: "kana_key", Rekey: kana.HiraganaFold}
}

type Options struct {
	// Defaults are chosen to be "fast but safe" for tables in the low millions.
	PageSize      int
	MaxRowsPerRun int
	MaxRuntime    time.Duration
}

func (o *Options) withDefaults() Options {
	out := *o
	if out.PageSize <= 0 {
		out.PageSize = 1000
	}
	if out.MaxRowsPerRun <= 0 {
		out.MaxRowsPerRun = 50_000
	}
	if out.MaxRuntime <= 0 {
		out.MaxRuntime = 30 * time.Second
	}
	return out
}

func quoteIdent(ident string) (string, error) {
	ident = strings.TrimSpace(ident)
	if ident == "" {
		return "", fmt.Errorf("empty identifier")
	}
	for _, r := range ident {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' {
			continue
		}
		return "", fmt.Errorf("invalid identifier %q", ident)
	}
	return `"` + ident + `"`, nil
}

// RunOnce performs a bounded amount of rekeying work across the targets.
// It returns the number of rows rewritten in this pass.
//
// Designed to be called periodically until every target's state row reads
// 'done'. Only rows whose stored key differs from the recomputed one are
// written.
func RunOnce(ctx context.Context, pool *pgxpool.Pool, schema string, targets []Target, opts Options) (int, error) {
	if pool == nil {
		return 0, fmt.Errorf("pool is required")
	}
	if strings.TrimSpace(schema) == "" {
		return 0, fmt.Errorf("schema is required")
	}
	if len(targets) == 0 {
		return 0, nil
	}

	cfg := opts.withDefaults()
	start := time.Now()

	qs, err := quoteIdent(schema)
	if err != nil {
		return 0, fmt.Errorf("invalid schema: %w", err)
	}

	rewritten := 0

	for _, t := range targets {
		if time.Since(start) > cfg.MaxRuntime || rewritten >= cfg.MaxRowsPerRun {
			return rewritten, nil
		}
		if t.Rekey == nil {
			return rewritten, fmt.Errorf("target %s: rekey func is required", t.Table)
		}
		qt, err := quoteIdent(t.Table)
		if err != nil {
			return rewritten, fmt.Errorf("invalid table: %w", err)
		}
		qtext, err := quoteIdent(t.TextCol)
		if err != nil {
			return rewritten, fmt.Errorf("invalid text column: %w", err)
		}
		qkey, err := quoteIdent(t.KeyCol)
		if err != nil {
			return rewritten, fmt.Errorf("invalid key column: %w", err)
		}

		// Ensure state row exists.
		_, _ = pool.Exec(ctx, fmt.Sprintf(`
			INSERT INTO %s.key_backfill_state (table_name, cursor, state, updated_at)
			VALUES ($1, 0, 'running', now())
			ON CONFLICT (table_name) DO NOTHING
		`, qs), t.Table)

		var cursor int64
		var state string
		if err := pool.QueryRow(ctx, fmt.Sprintf(`
			SELECT cursor, state
			FROM %s.key_backfill_state
			WHERE table_name = $1
			LIMIT 1
		`, qs), t.Table).Scan(&cursor, &state); err != nil {
			return rewritten, err
		}
		if state == "done" {
			continue
		}

		for {
			if time.Since(start) > cfg.MaxRuntime || rewritten >= cfg.MaxRowsPerRun {
				break
			}

			n, nextCursor, done, err := rekeyPage(ctx, pool, qs, qt, qtext, qkey, t.Rekey, cursor, cfg.PageSize)
			if err != nil {
				_, _ = pool.Exec(ctx, fmt.Sprintf(`
					UPDATE %s.key_backfill_state
					SET last_error = $2, updated_at = now()
					WHERE table_name = $1
				`, qs), t.Table, err.Error())
				return rewritten, err
			}
			rewritten += n
			cursor = nextCursor

			stateSQL := fmt.Sprintf(`
				UPDATE %s.key_backfill_state
				SET cursor = $2, state = $3, last_error = NULL, updated_at = now()
				WHERE table_name = $1
			`, qs)
			newState := "running"
			if done {
				newState = "done"
			}
			if _, err := pool.Exec(ctx, stateSQL, t.Table, cursor, newState); err != nil {
				return rewritten, err
			}
			if done {
				break
			}
		}
	}

	return rewritten, nil
}

func rekeyPage(ctx context.Context, pool *pgxpool.Pool, qs, qt, qtext, qkey string, rekey func(string) string, cursor int64, pageSize int) (int, int64, bool, error) {
	type pending struct {
		id  int64
		key string
	}
	var updates []pending
	seen := 0
	next := cursor

	rows, err := pool.Query(ctx, fmt.Sprintf(`
		SELECT id, %s, %s
		FROM %s.%s
		WHERE id > $1
		ORDER BY id ASC
		LIMIT $2
	`, qtext, qkey, qs, qt), cursor, pageSize)
	if err != nil {
		return 0, cursor, false, err
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var text, key string
		if err := rows.Scan(&id, &text, &key); err != nil {
			return 0, cursor, false, err
		}
		seen++
		next = id
		if want := rekey(text); want != key {
			updates = append(updates, pending{id: id, key: want})
		}
	}
	if err := rows.Err(); err != nil {
		return 0, cursor, false, err
	}

	for _, u := range updates {
		if _, err := pool.Exec(ctx, fmt.Sprintf(`
			UPDATE %s.%s SET %s = $2 WHERE id = $1
		`, qs, qt, qkey), u.id, u.key); err != nil {
			return 0, cursor, false, err
		}
	}

	return len(updates), next, seen < pageSize, nil
}

// EnqueueMissingEmbeddings enqueues an embed task for every word in the
// given wordlist table that has no vector row for model. Bounded by
// opts.MaxRowsPerRun per call; returns the number enqueued.
func EnqueueMissingEmbeddings(ctx context.Context, pool *pgxpool.Pool, schema string, repo *tasks.Repo, wordlist, table, model string, opts Options) (int, error) {
	if pool == nil {
		return 0, fmt.Errorf("pool is required")
	}
	if repo == nil {
		return 0, fmt.Errorf("task repo is required")
	}
	if strings.TrimSpace(model) == "" {
		return 0, fmt.Errorf("model is required")
	}

	cfg := opts.withDefaults()

	qs, err := quoteIdent(schema)
	if err != nil {
		return 0, fmt.Errorf("invalid schema: %w", err)
	}
	qt, err := quoteIdent(table)
	if err != nil {
		return 0, fmt.Errorf("invalid table: %w", err)
	}

	rows, err := pool.Query(ctx, fmt.Sprintf(`
		SELECT w.id
		FROM %s.%s w
		LEFT JOIN %s.gloss_vectors v
			ON v.wordlist = $1 AND v.word_id = w.id AND v.model = $2
		WHERE v.word_id IS NULL
		ORDER BY w.id ASC
		LIMIT $3
	`, qs, qt, qs), wordlist, model, cfg.MaxRowsPerRun)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return 0, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	enqueued := 0
	for _, id := range ids {
		if err := repo.Enqueue(ctx, wordlist, id, model, "backfill"); err != nil {
			return enqueued, err
		}
		enqueued++
	}
	return enqueued, nil
}
