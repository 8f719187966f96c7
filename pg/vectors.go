package pg

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/open-lexicon/lexkit/embedder"
	"github.com/open-lexicon/lexkit/search"
)

const glossVectorsTable = "gloss_vectors"

// GlossVectors stores one embedding per (wordlist, word, model) over the
// canonical gloss document of that word's definitions. Rows are written by
// the embedding worker and read by the meaning fallback.
type GlossVectors struct {
	pool   *pgxpool.Pool
	schema string
}

func NewGlossVectors(pool *pgxpool.Pool, schema string) *GlossVectors {
	return &GlossVectors{pool: pool, schema: schema}
}

func (s *GlossVectors) Upsert(ctx context.Context, wordlist string, wordID int64, model string, document string, vec []float32) error {
	if s.pool == nil {
		return fmt.Errorf("pool is required")
	}
	if strings.TrimSpace(wordlist) == "" || strings.TrimSpace(model) == "" {
		return fmt.Errorf("wordlist and model are required")
	}
	if len(vec) == 0 {
		return fmt.Errorf("embedding is empty")
	}
	qs, err := quoteIdent(s.schema)
	if err != nil {
		return fmt.Errorf("invalid schema: %w", err)
	}

	sql := fmt.Sprintf(`
		INSERT INTO %s.%s (wordlist, word_id, model, document, embedding, created_at, updated_at)
		VALUES (@wordlist, @word_id, @model, @document, @embedding, now(), now())
		ON CONFLICT (wordlist, word_id, model) DO UPDATE SET
			document = EXCLUDED.document,
			embedding = EXCLUDED.embedding,
			updated_at = now()
	`, qs, glossVectorsTable)

	_, err = s.pool.Exec(ctx, sql, pgx.NamedArgs{
		"wordlist":  wordlist,
		"word_id":   wordID,
		"model":     model,
		"document":  document,
		"embedding": pgvector.NewHalfVector(vec),
	})
	return err
}

// KNN returns word ids ordered by cosine distance to the query vector.
func (s *GlossVectors) KNN(ctx context.Context, wordlist string, model string, vec []float32, minSimilarity float32, limit int) ([]int64, error) {
	if s.pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if limit <= 0 || len(vec) == 0 {
		return []int64{}, nil
	}
	qs, err := quoteIdent(s.schema)
	if err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}

	half := fmt.Sprintf("halfvec(%d)", len(vec))

	sql := fmt.Sprintf(`
		SELECT
			word_id,
			(1 - (embedding::%s <=> (@vec::%s)))::float4 AS similarity
		FROM %s.%s
		WHERE wordlist = @wordlist AND model = @model AND embedding IS NOT NULL
		ORDER BY embedding::%s <=> (@vec::%s)
		LIMIT @limit
	`, half, half, qs, glossVectorsTable, half, half)

	rows, err := s.pool.Query(ctx, sql, pgx.NamedArgs{
		"wordlist": wordlist,
		"model":    model,
		"vec":      pgvector.NewHalfVector(vec),
		"limit":    limit,
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var id int64
		var sim float32
		if err := rows.Scan(&id, &sim); err != nil {
			return nil, err
		}
		if minSimilarity > 0 && sim < minSimilarity {
			continue
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// GlossSearcher is the meaning-based fallback: it embeds the query's gloss
// document, pulls the nearest gloss vectors, and hydrates them into
// suggestions ranked by vector similarity. Satisfies lexkit.MeaningSearcher.
type GlossSearcher struct {
	Vectors  *GlossVectors
	Words    *WordStore
	Embedder embedder.Embedder
	Wordlist string
	// MinSimilarity drops weak neighbors; 0 keeps everything the KNN returns.
	MinSimilarity float32
}

func (s *GlossSearcher) SearchMeaning(ctx context.Context, doc string, limit int) ([]search.Suggestion, error) {
	if s.Vectors == nil || s.Words == nil || s.Embedder == nil {
		return nil, fmt.Errorf("vectors, words and embedder are required")
	}
	doc = strings.TrimSpace(doc)
	if doc == "" || limit <= 0 {
		return []search.Suggestion{}, nil
	}

	vec, err := s.Embedder.EmbedText(ctx, doc)
	if err != nil {
		return nil, err
	}

	ids, err := s.Vectors.KNN(ctx, s.Wordlist, s.Embedder.Model(), vec, s.MinSimilarity, limit)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []search.Suggestion{}, nil
	}

	words, err := s.Words.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	glosses, err := s.Words.FindGlossesByWordIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	byWord := make(map[int64][]search.Gloss, len(words))
	for _, g := range glosses {
		byWord[g.WordID] = append(byWord[g.WordID], g)
	}

	out := make([]search.Suggestion, 0, len(words))
	for _, w := range words {
		sug := search.Suggestion{Word: w.Text, Reading: w.Reading}
		seenMeaning := make(map[string]struct{})
		seenEnglish := make(map[string]struct{})
		for _, g := range byWord[w.ID] {
			if g.Meaning != "" {
				if _, ok := seenMeaning[g.Meaning]; !ok {
					seenMeaning[g.Meaning] = struct{}{}
					sug.Meanings = append(sug.Meanings, g.Meaning)
				}
			}
			if g.English != "" {
				if _, ok := seenEnglish[g.English]; !ok {
					seenEnglish[g.English] = struct{}{}
					sug.English = append(sug.English, g.English)
				}
			}
		}
		out = append(out, sug)
	}
	return out, nil
}
