package ingest

import (
	"cmp"
	"fmt"
	"net/url"
	"slices"

	"github.com/japaniel/vocabforge/pkg/db"
	"github.com/japaniel/vocabforge/pkg/lexicon"
)

// WordFrequency is one distinct lemma of a book with its occurrence count.
type WordFrequency struct {
	Lemma        string
	AudioHintURL string
	InBrown      bool
	Frequency    int
}

// AudioHintURL returns the pronunciation lookup link for a lemma.
func AudioHintURL(lemma string) string {
	return fmt.Sprintf("https://forvo.com/word/%s/#en", url.PathEscape(lemma))
}

// Aggregate counts lemmas. The result holds each lemma once, most frequent
// first and alphabetical among equals. A nil brown marks nothing.
func Aggregate(lemmas []string, brown lexicon.WordSet) []WordFrequency {
	counts := make(map[string]int, len(lemmas)/4)
	for _, l := range lemmas {
		counts[l]++
	}

	out := make([]WordFrequency, 0, len(counts))
	for lemma, n := range counts {
		out = append(out, WordFrequency{
			Lemma:        lemma,
			AudioHintURL: AudioHintURL(lemma),
			InBrown:      brown != nil && brown.Contains(lemma),
			Frequency:    n,
		})
	}
	slices.SortFunc(out, func(a, b WordFrequency) int {
		if c := cmp.Compare(b.Frequency, a.Frequency); c != 0 {
			return c
		}
		return cmp.Compare(a.Lemma, b.Lemma)
	})
	return out
}

// wordInputs converts a batch to upsert requests. Translations and examples
// are left nil so enrichment data already stored is kept.
func wordInputs(batch []WordFrequency) []db.WordInput {
	out := make([]db.WordInput, len(batch))
	for i, wf := range batch {
		out[i] = db.WordInput{
			Lemma:         wf.Lemma,
			InBrownCorpus: &wf.InBrown,
			AudioHintURL:  &wf.AudioHintURL,
		}
	}
	return out
}
