package pg

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/open-lexicon/lexkit/search"
)

// WordStore implements search.WordRepo for one wordlist table.
//
// The canonical key column holds textnorm.Key(text) for French and the
// hiragana reading for Japanese; rows are written through the importer and
// backfill, which recompute the key from the surface text on every write.
type WordStore struct {
	pool       *pgxpool.Pool
	schema     string
	table      string
	glossTable string
	keyColumn  string
	// keyIsReading marks the key column as a hiragana reading that should
	// surface on results (Japanese).
	keyIsReading bool
	// hasEnglish marks the gloss table as carrying an English explanation
	// column (French).
	hasEnglish bool
}

var _ search.WordRepo = (*WordStore)(nil)

// NewFrenchWords returns the repository over `<schema>.wordlist_fr`.
func NewFrenchWords(pool *pgxpool.Pool, schema string) *WordStore {
	return &WordStore{
		pool:       pool,
		schema:     schema,
		table:      "wordlist_fr",
		glossTable: "definitions_fr",
		keyColumn:  "search_text",
		hasEnglish: true,
	}
}

// NewJapaneseWords returns the repository over `<schema>.wordlist_jp`.
func NewJapaneseWords(pool *pgxpool.Pool, schema string) *WordStore {
	return &WordStore{
		pool:         pool,
		schema:       schema,
		table:        "wordlist_jp",
		glossTable:   "definitions_jp",
		keyColumn:    "hiragana",
		keyIsReading: true,
	}
}

func (s *WordStore) qualified(table string) (string, error) {
	qs, err := quoteIdent(s.schema)
	if err != nil {
		return "", fmt.Errorf("invalid schema: %w", err)
	}
	return qs + "." + table, nil
}

func (s *WordStore) scanEntry(row pgx.Row) (*search.WordEntry, error) {
	var e search.WordEntry
	if err := row.Scan(&e.ID, &e.Text, &e.Key, &e.Freq); err != nil {
		return nil, err
	}
	if s.keyIsReading {
		e.Reading = e.Key
	}
	return &e, nil
}

// exactSQL matches either the canonical key or the raw surface text. The
// surface-text arm is what lets a kanji query hit a Japanese row: ToKana
// leaves kanji untouched, so the canonical form never equals the hiragana
// reading for kanji-bearing input.
func (s *WordStore) exactSQL(table string) string {
	return fmt.Sprintf(`
		SELECT id, text, %s, freq
		FROM %s
		WHERE (%s = @key OR text = @raw)
		ORDER BY freq DESC, id ASC
		LIMIT 1
	`, s.keyColumn, table, s.keyColumn)
}

func (s *WordStore) FindExact(ctx context.Context, m search.MatchSpec) (*search.WordEntry, error) {
	if s.pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	table, err := s.qualified(s.table)
	if err != nil {
		return nil, err
	}

	entry, err := s.scanEntry(s.pool.QueryRow(ctx, s.exactSQL(table), pgx.NamedArgs{
		"key": m.Canonical,
		"raw": m.Raw,
	}))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, search.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *WordStore) FindByPrefix(ctx context.Context, m search.MatchSpec, limit int) ([]search.WordEntry, error) {
	if limit <= 0 {
		return []search.WordEntry{}, nil
	}
	table, err := s.qualified(s.table)
	if err != nil {
		return nil, err
	}

	sql := fmt.Sprintf(`
		SELECT id, text, %s, freq
		FROM %s
		WHERE (%s LIKE @key_prefix OR text LIKE @raw_prefix)
		  AND %s <> @key
		ORDER BY freq DESC, id ASC
		LIMIT @limit
	`, s.keyColumn, table, s.keyColumn, s.keyColumn)

	args := pgx.NamedArgs{
		"key_prefix": escapeLike(m.Canonical) + "%",
		"raw_prefix": escapeLike(m.Raw) + "%",
		"key":        m.Canonical,
		"limit":      limit,
	}
	return s.queryEntries(ctx, sql, args)
}

func (s *WordStore) FindByContains(ctx context.Context, m search.MatchSpec, limit int) ([]search.WordEntry, error) {
	if limit <= 0 {
		return []search.WordEntry{}, nil
	}
	table, err := s.qualified(s.table)
	if err != nil {
		return nil, err
	}

	sql := fmt.Sprintf(`
		SELECT id, text, %s, freq
		FROM %s
		WHERE (%s LIKE @key_sub OR text LIKE @raw_sub)
		  AND %s NOT LIKE @key_prefix
		  AND text NOT LIKE @raw_prefix
		  AND text <> @raw
		ORDER BY freq DESC, id ASC
		LIMIT @limit
	`, s.keyColumn, table, s.keyColumn, s.keyColumn)

	args := pgx.NamedArgs{
		"key_sub":    "%" + escapeLike(m.Canonical) + "%",
		"raw_sub":    "%" + escapeLike(m.Raw) + "%",
		"key_prefix": escapeLike(m.Canonical) + "%",
		"raw_prefix": escapeLike(m.Raw) + "%",
		"raw":        m.Raw,
		"limit":      limit,
	}
	return s.queryEntries(ctx, sql, args)
}

func (s *WordStore) queryEntries(ctx context.Context, sql string, args pgx.NamedArgs) ([]search.WordEntry, error) {
	if s.pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	rows, err := s.pool.Query(ctx, sql, args)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []search.WordEntry
	for rows.Next() {
		var e search.WordEntry
		if err := rows.Scan(&e.ID, &e.Text, &e.Key, &e.Freq); err != nil {
			return nil, err
		}
		if s.keyIsReading {
			e.Reading = e.Key
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// FindByIDs batch-fetches word rows in the order of the given ids.
func (s *WordStore) FindByIDs(ctx context.Context, ids []int64) ([]search.WordEntry, error) {
	if len(ids) == 0 {
		return []search.WordEntry{}, nil
	}
	table, err := s.qualified(s.table)
	if err != nil {
		return nil, err
	}

	sql := fmt.Sprintf(`
		SELECT id, text, %s, freq
		FROM %s
		WHERE id = ANY(@ids::bigint[])
	`, s.keyColumn, table)

	fetched, err := s.queryEntries(ctx, sql, pgx.NamedArgs{"ids": ids})
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]search.WordEntry, len(fetched))
	for _, e := range fetched {
		byID[e.ID] = e
	}
	out := make([]search.WordEntry, 0, len(fetched))
	for _, id := range ids {
		if e, ok := byID[id]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *WordStore) FindGlossesByWordIDs(ctx context.Context, ids []int64) ([]search.Gloss, error) {
	if s.pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if len(ids) == 0 {
		return []search.Gloss{}, nil
	}
	table, err := s.qualified(s.glossTable)
	if err != nil {
		return nil, err
	}

	engCol := "''"
	if s.hasEnglish {
		engCol = "COALESCE(eng_explanation, '')"
	}

	sql := fmt.Sprintf(`
		SELECT word_id, COALESCE(pos, ''), meaning, %s, COALESCE(example, '')
		FROM %s
		WHERE word_id = ANY(@ids::bigint[])
		ORDER BY word_id ASC, id ASC
	`, engCol, table)

	rows, err := s.pool.Query(ctx, sql, pgx.NamedArgs{"ids": ids})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []search.Gloss
	for rows.Next() {
		var g search.Gloss
		if err := rows.Scan(&g.WordID, &g.POS, &g.Meaning, &g.English, &g.Example); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// IncrementFreq bumps the view counter by one. Single-statement update, no
// row lock held across reads; callers treat it as best-effort.
func (s *WordStore) IncrementFreq(ctx context.Context, id int64) error {
	if s.pool == nil {
		return fmt.Errorf("pool is required")
	}
	table, err := s.qualified(s.table)
	if err != nil {
		return err
	}
	sql := fmt.Sprintf(`UPDATE %s SET freq = freq + 1 WHERE id = @id`, table)
	_, err = s.pool.Exec(ctx, sql, pgx.NamedArgs{"id": id})
	return err
}
