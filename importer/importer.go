// Package importer loads lexicon CSV dumps into Postgres.
//
// Each importer reads one CSV shape, derives the canonical key column on
// the way in (search_text, hiragana, kana_key), and optionally enqueues
// gloss-embedding tasks for imported words.
package importer

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/open-lexicon/lexkit/internal/textnorm"
	"github.com/open-lexicon/lexkit/kana"
	"github.com/open-lexicon/lexkit/pg"
	"github.com/open-lexicon/lexkit/tasks"
)

type Options struct {
	Pool   *pgxpool.Pool
	Schema string

	// Readings derives hiragana for Japanese rows that lack one.
	// Optional; rows without a reading are keyed on their surface form.
	Readings *ReadingConverter

	// Tasks and Model enable embed-task enqueueing for imported words.
	Tasks *tasks.Repo
	Model string

	Log *slog.Logger
}

type Importer struct {
	pool     *pgxpool.Pool
	schema   string
	readings *ReadingConverter
	tasks    *tasks.Repo
	model    string
	log      *slog.Logger
}

func New(opts Options) (*Importer, error) {
	if opts.Pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	qs, err := pg.QuoteSchema(opts.Schema)
	if err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}
	if opts.Tasks != nil && strings.TrimSpace(opts.Model) == "" {
		return nil, fmt.Errorf("model is required when task enqueueing is enabled")
	}
	log := opts.Log
	if log == nil {
		log = slog.Default()
	}
	return &Importer{
		pool:     opts.Pool,
		schema:   qs,
		readings: opts.Readings,
		tasks:    opts.Tasks,
		model:    opts.Model,
		log:      log,
	}, nil
}

// row is one CSV record addressed by header name.
type row map[string]string

func (r row) get(name string) string { return strings.TrimSpace(r[name]) }

// readRows parses a headered CSV and streams rows to fn. Rows missing any
// required column are skipped with a warning rather than aborting the import.
func (im *Importer) readRows(r io.Reader, required []string, fn func(row) error) error {
	cr := csv.NewReader(r)
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[h] = i
	}
	for _, col := range required {
		if _, ok := idx[col]; !ok {
			return fmt.Errorf("column %q not found in header %v", col, header)
		}
	}

	line := 1
	skipped := 0
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read row: %w", err)
		}
		line++

		rec := make(row, len(idx))
		for name, i := range idx {
			if i < len(record) {
				rec[name] = record[i]
			}
		}
		ok := true
		for _, col := range required {
			if rec.get(col) == "" {
				ok = false
				break
			}
		}
		if !ok {
			skipped++
			continue
		}
		if err := fn(rec); err != nil {
			return fmt.Errorf("row %d: %w", line, err)
		}
	}

	if skipped > 0 {
		im.log.Warn("skipped rows missing required columns", "skipped", skipped)
	}
	return nil
}

func parseFreq(s string) int64 {
	if s == "" {
		return 0
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// ImportFrenchWords loads rows with columns text, meaning and optionally
// pos, example, eng_explanation, freq. One row per sense; the headword is
// upserted once and each row adds a definition.
func (im *Importer) ImportFrenchWords(ctx context.Context, r io.Reader) (int, error) {
	imported := 0
	err := im.readRows(r, []string{"text", "meaning"}, func(rec row) error {
		text := rec.get("text")

		var wordID int64
		err := im.pool.QueryRow(ctx, fmt.Sprintf(`
			INSERT INTO %s.wordlist_fr (text, search_text, freq)
			VALUES ($1, $2, $3)
			ON CONFLICT (text) DO UPDATE SET search_text = EXCLUDED.search_text
			RETURNING id
		`, im.schema), text, textnorm.Key(text), parseFreq(rec.get("freq"))).Scan(&wordID)
		if err != nil {
			return err
		}

		_, err = im.pool.Exec(ctx, fmt.Sprintf(`
			INSERT INTO %s.definitions_fr (word_id, pos, meaning, example, eng_explanation)
			VALUES ($1, $2, $3, $4, $5)
		`, im.schema), wordID, nullable(rec.get("pos")), rec.get("meaning"),
			nullable(rec.get("example")), nullable(rec.get("eng_explanation")))
		if err != nil {
			return err
		}

		if err := im.enqueue(ctx, "wordlist_fr", wordID); err != nil {
			return err
		}
		imported++
		return nil
	})
	return imported, err
}

// ImportJapaneseWords loads rows with columns text, meaning and optionally
// hiragana, pos, example, freq. A missing hiragana reading is derived with
// the reading converter when one is configured.
func (im *Importer) ImportJapaneseWords(ctx context.Context, r io.Reader) (int, error) {
	imported := 0
	err := im.readRows(r, []string{"text", "meaning"}, func(rec row) error {
		text := rec.get("text")
		reading := kana.HiraganaFold(rec.get("hiragana"))
		if reading == "" && im.readings != nil {
			reading = im.readings.Reading(text)
		}
		if reading == "" {
			reading = kana.HiraganaFold(text)
		}

		var wordID int64
		err := im.pool.QueryRow(ctx, fmt.Sprintf(`
			INSERT INTO %s.wordlist_jp (text, hiragana, freq)
			VALUES ($1, $2, $3)
			ON CONFLICT (text, hiragana) DO UPDATE SET hiragana = EXCLUDED.hiragana
			RETURNING id
		`, im.schema), text, reading, parseFreq(rec.get("freq"))).Scan(&wordID)
		if err != nil {
			return err
		}

		_, err = im.pool.Exec(ctx, fmt.Sprintf(`
			INSERT INTO %s.definitions_jp (word_id, pos, meaning, example)
			VALUES ($1, $2, $3, $4)
		`, im.schema), wordID, nullable(rec.get("pos")), rec.get("meaning"), nullable(rec.get("example")))
		if err != nil {
			return err
		}

		if err := im.enqueue(ctx, "wordlist_jp", wordID); err != nil {
			return err
		}
		imported++
		return nil
	})
	return imported, err
}

// ImportProverbs loads rows with columns proverb and optionally chi_exp, freq.
func (im *Importer) ImportProverbs(ctx context.Context, r io.Reader) (int, error) {
	imported := 0
	err := im.readRows(r, []string{"proverb"}, func(rec row) error {
		text := rec.get("proverb")
		_, err := im.pool.Exec(ctx, fmt.Sprintf(`
			INSERT INTO %s.proverbs_fr (proverb, search_text, chi_exp, freq)
			VALUES ($1, $2, $3, $4)
		`, im.schema), text, textnorm.Key(text), nullable(rec.get("chi_exp")), parseFreq(rec.get("freq")))
		if err != nil {
			return err
		}
		imported++
		return nil
	})
	return imported, err
}

// ImportIdioms loads rows with columns idiom and optionally kana_key,
// chi_exp, freq. A missing kana key is derived from the idiom text.
func (im *Importer) ImportIdioms(ctx context.Context, r io.Reader) (int, error) {
	imported := 0
	err := im.readRows(r, []string{"idiom"}, func(rec row) error {
		text := rec.get("idiom")
		key := kana.HiraganaFold(rec.get("kana_key"))
		if key == "" && im.readings != nil {
			key = im.readings.Reading(text)
		}
		if key == "" {
			key = kana.HiraganaFold(text)
		}
		_, err := im.pool.Exec(ctx, fmt.Sprintf(`
			INSERT INTO %s.idioms_jp (idiom, kana_key, chi_exp, freq)
			VALUES ($1, $2, $3, $4)
		`, im.schema), text, key, nullable(rec.get("chi_exp")), parseFreq(rec.get("freq")))
		if err != nil {
			return err
		}
		imported++
		return nil
	})
	return imported, err
}

// ImportKanjiMappings loads rows with columns hanzi, kanji and optionally note.
func (im *Importer) ImportKanjiMappings(ctx context.Context, r io.Reader) (int, error) {
	imported := 0
	err := im.readRows(r, []string{"hanzi", "kanji"}, func(rec row) error {
		_, err := im.pool.Exec(ctx, fmt.Sprintf(`
			INSERT INTO %s.kanji_mappings (hanzi, kanji, note)
			VALUES ($1, $2, $3)
		`, im.schema), rec.get("hanzi"), rec.get("kanji"), nullable(rec.get("note")))
		if err != nil {
			return err
		}
		imported++
		return nil
	})
	return imported, err
}

func (im *Importer) enqueue(ctx context.Context, wordlist string, wordID int64) error {
	if im.tasks == nil {
		return nil
	}
	return im.tasks.Enqueue(ctx, wordlist, wordID, im.model, "import")
}
