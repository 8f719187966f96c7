package pg

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/open-lexicon/lexkit/search"
)

// PhraseStore implements search.PhraseRepo for one phrase table (proverbs or
// idioms). Field selectors map to fixed columns here; the engine never sees
// column names.
type PhraseStore struct {
	pool     *pgxpool.Pool
	schema   string
	table    string
	textCol  string
	keyCol   string
	glossCol string
}

var _ search.PhraseRepo = (*PhraseStore)(nil)

// NewProverbs returns the repository over `<schema>.proverbs_fr`.
func NewProverbs(pool *pgxpool.Pool, schema string) *PhraseStore {
	return &PhraseStore{
		pool:     pool,
		schema:   schema,
		table:    "proverbs_fr",
		textCol:  "proverb",
		keyCol:   "search_text",
		glossCol: "chi_exp",
	}
}

// NewIdioms returns the repository over `<schema>.idioms_jp`.
func NewIdioms(pool *pgxpool.Pool, schema string) *PhraseStore {
	return &PhraseStore{
		pool:     pool,
		schema:   schema,
		table:    "idioms_jp",
		textCol:  "idiom",
		keyCol:   "kana_key",
		glossCol: "chi_exp",
	}
}

func (s *PhraseStore) column(f search.Field) (string, error) {
	switch f {
	case search.FieldText:
		return s.textCol, nil
	case search.FieldKey:
		return s.keyCol, nil
	case search.FieldGloss:
		return s.glossCol, nil
	default:
		return "", fmt.Errorf("unsupported field %v", f)
	}
}

func (s *PhraseStore) qualified() (string, error) {
	qs, err := quoteIdent(s.schema)
	if err != nil {
		return "", fmt.Errorf("invalid schema: %w", err)
	}
	return qs + "." + s.table, nil
}

func (s *PhraseStore) selectList() string {
	return fmt.Sprintf("id, %s, %s, COALESCE(%s, ''), freq", s.textCol, s.keyCol, s.glossCol)
}

func (s *PhraseStore) FindByPrefix(ctx context.Context, field search.Field, prefix string, limit int) ([]search.PhraseEntry, error) {
	if limit <= 0 {
		return []search.PhraseEntry{}, nil
	}
	col, err := s.column(field)
	if err != nil {
		return nil, err
	}
	table, err := s.qualified()
	if err != nil {
		return nil, err
	}

	sql := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s ILIKE @prefix
		ORDER BY freq DESC, id ASC
		LIMIT @limit
	`, s.selectList(), table, col)

	return s.queryEntries(ctx, sql, pgx.NamedArgs{
		"prefix": escapeLike(prefix) + "%",
		"limit":  limit,
	})
}

func (s *PhraseStore) FindByContains(ctx context.Context, field search.Field, substr string, limit int) ([]search.PhraseEntry, error) {
	if limit <= 0 {
		return []search.PhraseEntry{}, nil
	}
	col, err := s.column(field)
	if err != nil {
		return nil, err
	}
	table, err := s.qualified()
	if err != nil {
		return nil, err
	}

	sql := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s ILIKE @sub
		  AND %s NOT ILIKE @prefix
		ORDER BY freq DESC, id ASC
		LIMIT @limit
	`, s.selectList(), table, col, col)

	return s.queryEntries(ctx, sql, pgx.NamedArgs{
		"sub":    "%" + escapeLike(substr) + "%",
		"prefix": escapeLike(substr) + "%",
		"limit":  limit,
	})
}

func (s *PhraseStore) queryEntries(ctx context.Context, sql string, args pgx.NamedArgs) ([]search.PhraseEntry, error) {
	if s.pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	rows, err := s.pool.Query(ctx, sql, args)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []search.PhraseEntry
	for rows.Next() {
		var e search.PhraseEntry
		if err := rows.Scan(&e.ID, &e.Text, &e.Key, &e.Gloss, &e.Freq); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *PhraseStore) FindByID(ctx context.Context, id int64) (*search.PhraseEntry, error) {
	if s.pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	table, err := s.qualified()
	if err != nil {
		return nil, err
	}

	sql := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = @id
		LIMIT 1
	`, s.selectList(), table)

	var e search.PhraseEntry
	err = s.pool.QueryRow(ctx, sql, pgx.NamedArgs{"id": id}).
		Scan(&e.ID, &e.Text, &e.Key, &e.Gloss, &e.Freq)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, search.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// IncrementFreq bumps the view counter by one, best-effort.
func (s *PhraseStore) IncrementFreq(ctx context.Context, id int64) error {
	if s.pool == nil {
		return fmt.Errorf("pool is required")
	}
	table, err := s.qualified()
	if err != nil {
		return err
	}
	sql := fmt.Sprintf(`UPDATE %s SET freq = freq + 1 WHERE id = @id`, table)
	_, err = s.pool.Exec(ctx, sql, pgx.NamedArgs{"id": id})
	return err
}
