package pg

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/open-lexicon/lexkit/search"
)

// MappingStore implements search.MappingRepo over `<schema>.kanji_mappings`,
// the static kanji↔hanzi table populated by the importer.
type MappingStore struct {
	pool   *pgxpool.Pool
	schema string
}

var _ search.MappingRepo = (*MappingStore)(nil)

func NewMappings(pool *pgxpool.Pool, schema string) *MappingStore {
	return &MappingStore{pool: pool, schema: schema}
}

func (s *MappingStore) lookup(ctx context.Context, column, text string) (*search.Mapping, error) {
	if s.pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	qs, err := quoteIdent(s.schema)
	if err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}

	sql := fmt.Sprintf(`
		SELECT hanzi, kanji, COALESCE(note, '')
		FROM %s.kanji_mappings
		WHERE %s = @text
		LIMIT 1
	`, qs, column)

	var m search.Mapping
	err = s.pool.QueryRow(ctx, sql, pgx.NamedArgs{"text": text}).Scan(&m.Hanzi, &m.Kanji, &m.Note)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, search.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *MappingStore) LookupKanji(ctx context.Context, text string) (*search.Mapping, error) {
	return s.lookup(ctx, "kanji", text)
}

func (s *MappingStore) LookupHanzi(ctx context.Context, text string) (*search.Mapping, error) {
	return s.lookup(ctx, "hanzi", text)
}
