package dictionary

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/japaniel/vocabforge/pkg/db"
)

// Store is the subset of the word store the importer needs.
type Store interface {
	WordsWithoutTranslation(ctx context.Context) ([]string, error)
	BulkUpsertWords(ctx context.Context, words []db.WordInput) (map[string]int64, error)
}

const defaultBatchSize = 500

// Importer matches untranslated words against a glossary and fills them in.
type Importer struct {
	store Store
	log   logrus.FieldLogger

	// BatchSize bounds the words written per transaction.
	BatchSize int

	mu    sync.RWMutex
	index map[string][]Entry
}

// NewImporter builds an in-memory lemma index of the glossary entries.
func NewImporter(store Store, entries []Entry, logger logrus.FieldLogger) *Importer {
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	idx := make(map[string][]Entry)
	for _, e := range entries {
		idx[e.Lemma] = append(idx[e.Lemma], e)
	}
	return &Importer{store: store, log: logger, BatchSize: defaultBatchSize, index: idx}
}

// Lookup returns the glossary entries for a lemma.
func (im *Importer) Lookup(lemma string) []Entry {
	im.mu.RLock()
	defer im.mu.RUnlock()
	return im.index[lemma]
}

// ProcessUpdates finds words without a translation and fills translation,
// examples and CEFR level from the glossary. Fields the glossary leaves
// empty are sent as null so stored values survive. It returns the number of
// words updated.
func (im *Importer) ProcessUpdates(ctx context.Context) (int, error) {
	lemmas, err := im.store.WordsWithoutTranslation(ctx)
	if err != nil {
		return 0, fmt.Errorf("list untranslated words: %w", err)
	}

	var updates []db.WordInput
	for _, lemma := range lemmas {
		matches := im.Lookup(lemma)
		if len(matches) == 0 {
			continue
		}
		in, ok := merge(lemma, matches)
		if !ok {
			continue
		}
		updates = append(updates, in)
	}

	size := im.BatchSize
	if size < 1 {
		size = defaultBatchSize
	}
	updated := 0
	for _, batch := range lo.Chunk(updates, size) {
		if err := ctx.Err(); err != nil {
			return updated, err
		}
		if _, err := im.store.BulkUpsertWords(ctx, batch); err != nil {
			return updated, fmt.Errorf("write batch: %w", err)
		}
		updated += len(batch)
	}

	im.log.WithFields(logrus.Fields{"candidates": len(lemmas), "updated": updated}).Info("dictionary enrichment finished")
	return updated, nil
}

// merge folds every entry of a lemma into one upsert: the first non-empty
// translation and CEFR level win, examples are concatenated without
// duplicates. ok is false when nothing useful is left.
func merge(lemma string, entries []Entry) (db.WordInput, bool) {
	in := db.WordInput{Lemma: lemma}
	var examples []string
	for _, e := range entries {
		if in.Translation == nil && e.Translation != "" {
			in.Translation = lo.ToPtr(e.Translation)
		}
		if in.CEFRLevel == nil && e.CEFR != "" {
			in.CEFRLevel = lo.ToPtr(e.CEFR)
		}
		examples = append(examples, e.Examples...)
	}
	if in.Translation == nil {
		return db.WordInput{}, false
	}
	if ex, err := FormatExamples(examples); err == nil && ex != "" {
		in.ExampleSentences = &ex
	}
	return in, true
}

// FormatExamples encodes example sentences as the JSON list stored on a word.
// An empty list encodes as the empty string.
func FormatExamples(examples []string) (string, error) {
	examples = lo.Uniq(lo.Compact(examples))
	if len(examples) == 0 {
		return "", nil
	}
	b, err := json.Marshal(examples)
	return string(b), err
}
