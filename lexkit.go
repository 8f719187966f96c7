// Package lexkit resolves raw multilingual dictionary queries (Latin script,
// Chinese hanzi, Japanese kana/kanji, romanized Japanese) into normalized,
// language-tagged keys and serves ranked autocomplete, proverb and idiom
// suggestions over an injected lexicon repository.
//
// The package is a library consumed by request handlers; it is not itself
// network-facing and imposes no timeouts; those belong to the HTTP layer
// and the repository driver.
package lexkit

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/open-lexicon/lexkit/internal/textnorm"
	"github.com/open-lexicon/lexkit/kana"
	"github.com/open-lexicon/lexkit/search"
)

// MeaningSearcher is the optional meaning-based fallback: it embeds a gloss
// document and returns word suggestions whose definitions are semantically
// close. Used for plain-English French queries where literal matching is
// likely to miss.
type MeaningSearcher interface {
	SearchMeaning(ctx context.Context, doc string, limit int) ([]search.Suggestion, error)
}

// Repos bundles the repositories the entrypoints consume. Meaning may be
// nil; everything else is required by the operations that use it.
type Repos struct {
	FrenchWords   search.WordRepo
	JapaneseWords search.WordRepo
	Proverbs      search.PhraseRepo
	Idioms        search.PhraseRepo
	Mappings      search.MappingRepo
	Meaning       MeaningSearcher
}

// Options tunes a suggestion call.
type Options struct {
	// Limit caps the result list. Defaults to search.DefaultLimit.
	Limit int
}

func (o Options) limit() int {
	if o.Limit <= 0 {
		return search.DefaultLimit
	}
	return o.Limit
}

// Autocomplete returns ranked word suggestions for the given wordlist
// language (fr or jp). A blank query yields an empty list; an unsupported
// language is an error. Read-only: no frequency is touched.
//
// For pure-ASCII French queries the meaning fallback (when configured) runs
// as a concurrent second sub-query and its results merge behind the direct
// matches.
func Autocomplete(ctx context.Context, repos Repos, query string, language Language, opts Options) ([]search.Suggestion, error) {
	q := normalizeWhitespace(query)
	if q == "" {
		return []search.Suggestion{}, nil
	}

	var (
		repo search.WordRepo
		m    search.MatchSpec
	)
	switch language {
	case LangFrench:
		repo = repos.FrenchWords
		m = search.MatchSpec{Canonical: textnorm.Key(q), Raw: q}
	case LangJapanese:
		repo = repos.JapaneseWords
		m = search.MatchSpec{Canonical: kana.ToKana(q), Raw: q}
	default:
		return nil, fmt.Errorf("autocomplete: unsupported language %q", language)
	}
	if repo == nil {
		return nil, fmt.Errorf("autocomplete: %s word repo is required", language)
	}

	limit := opts.limit()
	if language != LangFrench || repos.Meaning == nil || containsAccentedLatin(q) {
		return search.SuggestWords(ctx, repo, m, limit)
	}

	// Direct match and meaning fallback run as concurrent sub-queries; the
	// merge keeps direct hits ahead of fallback hits.
	var direct, fallback []search.Suggestion
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		direct, err = search.SuggestWords(gctx, repo, m, limit)
		return err
	})
	g.Go(func() error {
		var err error
		fallback, err = repos.Meaning.SearchMeaning(gctx, textnorm.GlossDocument(q), limit)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := search.Merge(direct, fallback)
	if len(merged) > limit {
		merged = merged[:limit]
	}
	return merged, nil
}

// SuggestProverb returns ranked proverb suggestions. Chinese-character input
// matches the gloss field, anything else the native proverb text, mirroring
// how users search proverbs by meaning or by wording.
func SuggestProverb(ctx context.Context, repos Repos, query string, opts Options) ([]search.PhraseEntry, error) {
	if repos.Proverbs == nil {
		return nil, fmt.Errorf("suggest proverb: proverb repo is required")
	}
	q := normalizeWhitespace(query)
	if q == "" {
		return []search.PhraseEntry{}, nil
	}

	field := search.FieldText
	if containsCJKIdeograph(q) {
		field = search.FieldGloss
	}
	return search.SuggestPhrases(ctx, repos.Proverbs, field, q, opts.limit())
}

// SuggestIdiom returns ranked idiom suggestions. Detection picks the
// sub-query plan; all sub-queries run concurrently and their results merge
// in submission order, so primary-language strategies outrank cross-script
// fallbacks:
//
//   - Japanese (and unclassifiable) input: native-text match, then the
//     kana-normalized key match.
//   - Chinese input with a mapping hit: the mapped kanji form against native
//     text, the raw input against the gloss field, and the kana form of the
//     mapped text against the key field.
//   - Unmapped Chinese input: gloss match, then native-text match.
//   - Latin input: native-text match only.
func SuggestIdiom(ctx context.Context, repos Repos, query string, opts Options) ([]search.PhraseEntry, error) {
	if repos.Idioms == nil {
		return nil, fmt.Errorf("suggest idiom: idiom repo is required")
	}
	q := normalizeWhitespace(query)
	if q == "" {
		return []search.PhraseEntry{}, nil
	}

	det, err := Detect(ctx, repos.Mappings, q)
	if err != nil {
		return nil, err
	}

	limit := opts.limit()
	tiered := func(field search.Field, query string) search.SubQuery {
		return func(ctx context.Context) ([]search.PhraseEntry, error) {
			return search.SuggestPhrases(ctx, repos.Idioms, field, query, limit)
		}
	}

	var subs []search.SubQuery
	switch {
	case det.Lang == LangJapanese || det.Lang == LangOther:
		subs = []search.SubQuery{
			tiered(search.FieldText, det.Query),
			tiered(search.FieldKey, kana.ToKana(det.Query)),
		}
	case det.Lang == LangChinese && det.CrossScript:
		subs = []search.SubQuery{
			tiered(search.FieldText, det.Query),
			tiered(search.FieldGloss, q),
			tiered(search.FieldKey, kana.ToKana(det.Query)),
		}
	case det.Lang == LangChinese:
		subs = []search.SubQuery{
			tiered(search.FieldGloss, det.Query),
			tiered(search.FieldText, det.Query),
		}
	default:
		subs = []search.SubQuery{
			tiered(search.FieldText, det.Query),
		}
	}

	lists, err := search.RunPlan(ctx, subs)
	if err != nil {
		return nil, err
	}
	return search.DedupPhrases(lists, limit), nil
}

// LookupProverb fetches one proverb by id, bumping its view counter.
// Returns search.ErrNotFound for a missing id.
func LookupProverb(ctx context.Context, repos Repos, id int64) (*search.PhraseEntry, error) {
	if repos.Proverbs == nil {
		return nil, fmt.Errorf("lookup proverb: proverb repo is required")
	}
	return search.LookupPhrase(ctx, repos.Proverbs, id)
}

// LookupIdiom fetches one idiom by id, bumping its view counter.
// Returns search.ErrNotFound for a missing id.
func LookupIdiom(ctx context.Context, repos Repos, id int64) (*search.PhraseEntry, error) {
	if repos.Idioms == nil {
		return nil, fmt.Errorf("lookup idiom: idiom repo is required")
	}
	return search.LookupPhrase(ctx, repos.Idioms, id)
}

// WordResult is the exact-lookup response for one word: its part-of-speech
// tags in first-seen order and every sense attached to it.
type WordResult struct {
	Word    string
	Reading string
	POS     []string
	Senses  []search.Gloss
}

// LookupWord resolves the query to its canonical key and fetches the single
// matching word with all senses. A hit bumps the word's view counter
// (best-effort; concurrent hits may lose increments). Returns
// search.ErrNotFound when nothing matches.
func LookupWord(ctx context.Context, repos Repos, query string, language Language) (*WordResult, error) {
	q := normalizeWhitespace(query)
	if q == "" {
		return nil, search.ErrNotFound
	}

	var (
		repo search.WordRepo
		m    search.MatchSpec
	)
	switch language {
	case LangFrench:
		repo = repos.FrenchWords
		m = search.MatchSpec{Canonical: textnorm.Key(q), Raw: q}
	case LangJapanese:
		repo = repos.JapaneseWords
		m = search.MatchSpec{Canonical: kana.ToKana(q), Raw: q}
	default:
		return nil, fmt.Errorf("lookup word: unsupported language %q", language)
	}
	if repo == nil {
		return nil, fmt.Errorf("lookup word: %s word repo is required", language)
	}

	entry, err := repo.FindExact(ctx, m)
	if err != nil {
		return nil, err
	}
	if err := repo.IncrementFreq(ctx, entry.ID); err != nil {
		return nil, err
	}

	glosses, err := repo.FindGlossesByWordIDs(ctx, []int64{entry.ID})
	if err != nil {
		return nil, err
	}

	res := &WordResult{Word: entry.Text, Reading: entry.Reading, Senses: glosses}
	seen := make(map[string]struct{}, len(glosses))
	for _, g := range glosses {
		if g.POS == "" {
			continue
		}
		if _, ok := seen[g.POS]; ok {
			continue
		}
		seen[g.POS] = struct{}{}
		res.POS = append(res.POS, g.POS)
	}
	return res, nil
}
