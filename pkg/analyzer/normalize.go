package analyzer

import (
	"regexp"
	"slices"
	"strings"

	"github.com/japaniel/vocabforge/pkg/lexicon"
)

type rewrite struct {
	re   *regexp.Regexp
	repl string
}

// Normalizer rewrites raw text before tokenization: apostrophes, contractions,
// dashes and hyphenated spellings. A Normalizer is safe for concurrent use.
type Normalizer struct {
	contractions []rewrite
	hyphen       *regexp.Regexp
}

var (
	apostrophes = strings.NewReplacer(
		"’", "'", "‘", "'", "ʼ", "'", "′", "'", "`", "'",
	)
	dashes = strings.NewReplacer(
		"—", " ", // em
		"–", " ", // en
		"‒", " ", // figure
		"−", " ", // minus
		"―", " ", // horizontal bar
		"‐", "-", // hyphen
		"‑", "-", // non-breaking hyphen
		"--", " ",
	)
)

// NewNormalizer compiles the contraction and hyphen tables.
func NewNormalizer() *Normalizer {
	n := &Normalizer{}
	for _, rw := range lexicon.Contractions {
		n.contractions = append(n.contractions, rewrite{
			re:   regexp.MustCompile(`(?i)` + rw.Pattern),
			repl: rw.Replacement,
		})
	}

	keys := make([]string, 0, len(lexicon.HyphenForms))
	for k := range lexicon.HyphenForms {
		keys = append(keys, regexp.QuoteMeta(k))
	}
	// Longest first so that multi-part forms win over their prefixes.
	slices.SortFunc(keys, func(a, b string) int {
		if d := len(b) - len(a); d != 0 {
			return d
		}
		return strings.Compare(a, b)
	})
	n.hyphen = regexp.MustCompile(`(?i)\b(?:` + strings.Join(keys, "|") + `)\b`)
	return n
}

// Normalize applies, in order: apostrophe folding, contraction expansion,
// dash normalization, the hyphen table and finally residual hyphen removal.
func (n *Normalizer) Normalize(text string) string {
	text = apostrophes.Replace(text)
	for _, c := range n.contractions {
		text = c.re.ReplaceAllString(text, c.repl)
	}
	text = dashes.Replace(text)
	text = n.hyphen.ReplaceAllStringFunc(text, func(m string) string {
		if v, ok := lexicon.HyphenForms[strings.ToLower(m)]; ok {
			return v
		}
		return m
	})
	return strings.ReplaceAll(text, "-", " ")
}
