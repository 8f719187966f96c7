// Package tasks is the Postgres-backed queue of gloss-embedding work:
// imports and backfills enqueue (wordlist, word, model) tuples, the worker
// leases and drains them.
package tasks

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct {
	pool   *pgxpool.Pool
	schema string
}

const embedTasksTable = "embed_tasks"
const embedDeadLettersTable = "embed_dead_letters"

func NewRepo(pool *pgxpool.Pool, schema string) *Repo {
	return &Repo{pool: pool, schema: schema}
}

func (r *Repo) Enqueue(ctx context.Context, wordlist string, wordID int64, model string, reason string) error {
	if strings.TrimSpace(wordlist) == "" || strings.TrimSpace(model) == "" {
		return fmt.Errorf("wordlist and model are required")
	}
	if wordID <= 0 {
		return fmt.Errorf("wordID is required")
	}
	if r.schema == "" {
		return fmt.Errorf("schema is required")
	}
	q := fmt.Sprintf(`
		INSERT INTO %s.%s (wordlist, word_id, model, reason)
		VALUES ($1, $2, $3, COALESCE($4, 'unknown'))
		ON CONFLICT (wordlist, word_id, model) DO UPDATE SET
			reason = EXCLUDED.reason,
			next_run_at = LEAST(%s.%s.next_run_at, now()),
			updated_at = now()
	`, r.schema, embedTasksTable, r.schema, embedTasksTable)
	_, err := r.pool.Exec(ctx, q, wordlist, wordID, model, reason)
	return err
}

// FetchReady returns up to limit tasks ready to run now, and bumps next_run_at
// forward by lockAhead to reduce duplicate work across workers.
func (r *Repo) FetchReady(ctx context.Context, limit int, lockAhead time.Duration) ([]Task, error) {
	if limit <= 0 {
		return nil, nil
	}
	if lockAhead <= 0 {
		lockAhead = 30 * time.Second
	}
	if r.schema == "" {
		return nil, fmt.Errorf("schema is required")
	}

	now := time.Now().UTC()
	next := now.Add(lockAhead)

	q := fmt.Sprintf(`
		WITH picked AS (
			SELECT wordlist, word_id, model
			FROM %s.%s
			WHERE next_run_at <= $1
			ORDER BY next_run_at ASC, wordlist ASC, word_id ASC, model ASC
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		)
		UPDATE %s.%s t
		SET next_run_at = $3,
		    started_at = COALESCE(t.started_at, $1),
		    updated_at = $1
		FROM picked p
		WHERE t.wordlist = p.wordlist
		  AND t.word_id = p.word_id
		  AND t.model = p.model
		RETURNING
			t.wordlist, t.word_id, t.model, t.reason, t.attempts, t.next_run_at, t.started_at, t.created_at, t.updated_at
	`, r.schema, embedTasksTable, r.schema, embedTasksTable)

	rows, err := r.pool.Query(ctx, q, now, limit, next)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Task
	for rows.Next() {
		var t Task
		if err := rows.Scan(
			&t.Wordlist,
			&t.WordID,
			&t.Model,
			&t.Reason,
			&t.Attempts,
			&t.NextRunAt,
			&t.StartedAt,
			&t.CreatedAt,
			&t.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *Repo) Complete(ctx context.Context, wordlist string, wordID int64, model string, leaseUntil time.Time) error {
	if r.schema == "" {
		return fmt.Errorf("schema is required")
	}
	if strings.TrimSpace(wordlist) == "" || wordID <= 0 || strings.TrimSpace(model) == "" {
		return nil
	}
	q := fmt.Sprintf(`
		DELETE FROM %s.%s
		WHERE wordlist = $1 AND word_id = $2 AND model = $3 AND next_run_at = $4
	`, r.schema, embedTasksTable)
	_, err := r.pool.Exec(ctx, q, wordlist, wordID, model, leaseUntil.UTC())
	return err
}

func (r *Repo) Fail(ctx context.Context, wordlist string, wordID int64, model string, leaseUntil time.Time, backoff time.Duration) error {
	if backoff <= 0 {
		backoff = 30 * time.Second
	}
	if r.schema == "" {
		return fmt.Errorf("schema is required")
	}
	if strings.TrimSpace(wordlist) == "" || wordID <= 0 || strings.TrimSpace(model) == "" {
		return nil
	}
	secs := int64(backoff / time.Second)
	if secs < 1 {
		secs = 1
	}
	q := fmt.Sprintf(`
		UPDATE %s.%s
		SET attempts = attempts + 1,
		    next_run_at = now() + make_interval(secs => $1),
		    updated_at = now()
		WHERE wordlist = $2 AND word_id = $3 AND model = $4 AND next_run_at = $5
	`, r.schema, embedTasksTable)
	_, err := r.pool.Exec(ctx, q, secs, wordlist, wordID, model, leaseUntil.UTC())
	return err
}

// DeadLetter moves a task into the dead-letter table and deletes it from
// embed_tasks so the runnable queue stays small.
//
// This is lease-safe: the task is deleted only if next_run_at matches leaseUntil.
func (r *Repo) DeadLetter(ctx context.Context, t Task, leaseUntil time.Time, cause error) error {
	if r.schema == "" {
		return fmt.Errorf("schema is required")
	}
	if strings.TrimSpace(t.Wordlist) == "" || t.WordID <= 0 || strings.TrimSpace(t.Model) == "" {
		return nil
	}
	if cause == nil {
		cause = fmt.Errorf("unknown error")
	}

	tx, txErr := r.pool.Begin(ctx)
	if txErr != nil {
		return txErr
	}
	defer func() { _ = tx.Rollback(ctx) }()

	q1 := fmt.Sprintf(`
		INSERT INTO %s.%s (wordlist, word_id, model, reason, error, attempts, failed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now(), now(), now())
		ON CONFLICT (wordlist, word_id, model) DO UPDATE SET
			reason = EXCLUDED.reason,
			error = EXCLUDED.error,
			attempts = EXCLUDED.attempts,
			failed_at = EXCLUDED.failed_at,
			updated_at = now()
	`, r.schema, embedDeadLettersTable)
	attempts := t.Attempts
	if attempts < 0 {
		attempts = 0
	}
	if _, execErr := tx.Exec(ctx, q1, t.Wordlist, t.WordID, t.Model, t.Reason, cause.Error(), attempts); execErr != nil {
		return execErr
	}

	q2 := fmt.Sprintf(`
		DELETE FROM %s.%s
		WHERE wordlist = $1 AND word_id = $2 AND model = $3 AND next_run_at = $4
	`, r.schema, embedTasksTable)
	if _, execErr := tx.Exec(ctx, q2, t.Wordlist, t.WordID, t.Model, leaseUntil.UTC()); execErr != nil {
		return execErr
	}

	return tx.Commit(ctx)
}
