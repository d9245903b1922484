// Package analyzer turns English prose into an ordered list of vocabulary
// lemmas: normalization, tokenization, part-of-speech tagging,
// lemmatization and the vocabulary filter.
package analyzer

import (
	"errors"
	"strings"

	"github.com/japaniel/vocabforge/pkg/lexicon"
)

// Token represents a single analyzed word that survived filtering.
type Token struct {
	Surface  string // lowercase token as it appears after normalization
	BaseForm string // the accepted lemma
	Tag      string // Penn Treebank tag
	POS      POS
}

// Analyzer is safe for concurrent use once constructed.
type Analyzer struct {
	lx         *lexicon.Lexicon
	norm       *Normalizer
	tagger     Tagger
	exclusions lexicon.WordSet
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithTagger replaces the default prose tagger.
func WithTagger(t Tagger) Option {
	return func(a *Analyzer) { a.tagger = t }
}

// WithExclusions replaces the built-in exclusion set.
func WithExclusions(s lexicon.WordSet) Option {
	return func(a *Analyzer) { a.exclusions = s }
}

// NewAnalyzer creates an analyzer over the given lexicon.
func NewAnalyzer(lx *lexicon.Lexicon, opts ...Option) (*Analyzer, error) {
	if lx == nil || lx.Vocab == nil {
		return nil, errors.New("analyzer: lexicon with a vocabulary is required")
	}
	a := &Analyzer{
		lx:         lx,
		norm:       NewNormalizer(),
		tagger:     ProseTagger{},
		exclusions: lexicon.Exclusions,
	}
	for _, o := range opts {
		o(a)
	}
	return a, nil
}

// Words normalizes and tokenizes text and returns the lowercase alphabetic
// tokens that are not stop words, with their tags.
func (a *Analyzer) Words(text string) ([]TaggedWord, error) {
	tagged, err := a.tagger.Tag(a.norm.Normalize(text))
	if err != nil {
		return nil, err
	}
	out := tagged[:0]
	for _, tw := range tagged {
		if !isAlpha(tw.Text) {
			continue
		}
		w := strings.ToLower(tw.Text)
		if a.isStopWord(w) {
			continue
		}
		out = append(out, TaggedWord{Text: w, Tag: tw.Tag})
	}
	return out, nil
}

// Analyze returns the accepted tokens of text in order.
func (a *Analyzer) Analyze(text string) ([]Token, error) {
	words, err := a.Words(text)
	if err != nil {
		return nil, err
	}
	var result []Token
	for _, w := range words {
		pos := posFromTag(w.Tag)
		lemma := correct(a.lemmatize(w.Text, pos))
		if !a.accept(lemma) {
			continue
		}
		result = append(result, Token{Surface: w.Text, BaseForm: lemma, Tag: w.Tag, POS: pos})
	}
	return result, nil
}

// Lemmas returns the accepted lemmas of text in order, with repetitions.
func (a *Analyzer) Lemmas(text string) ([]string, error) {
	toks, err := a.Analyze(text)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(toks))
	for i, t := range toks {
		out[i] = t.BaseForm
	}
	return out, nil
}
