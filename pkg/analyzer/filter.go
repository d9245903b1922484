package analyzer

import "github.com/japaniel/vocabforge/pkg/lexicon"

// minLemmaLen is the shortest lemma accepted without a Brown corpus rescue.
const minLemmaLen = 3

func (a *Analyzer) isStopWord(w string) bool {
	return lexicon.IsBuiltinStopWord(w) || (a.lx.Stop != nil && a.lx.Stop.Contains(w))
}

// correct applies the fixed lemma corrections.
func correct(lemma string) string {
	if c, ok := lexicon.LemmaCorrections[lemma]; ok {
		return c
	}
	return lemma
}

// accept reports whether a lemma survives the vocabulary filter: it must be
// in the vocabulary, must not be an excluded term, and short lemmas must be
// known to the Brown corpus.
func (a *Analyzer) accept(lemma string) bool {
	if !a.lx.Vocab.Contains(lemma) {
		return false
	}
	if a.exclusions.Contains(lemma) {
		return false
	}
	if len(lemma) < minLemmaLen {
		return a.lx.Brown != nil && a.lx.Brown.Contains(lemma)
	}
	return true
}
