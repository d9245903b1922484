// Package lexicon holds the static English word sets and normalization tables
// shared by the analyzer and the ingestion engine. Everything here is loaded
// once at boot and is read-only afterwards, so values may be shared freely
// between goroutines.
package lexicon

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aaaton/golem/v4"
	"github.com/aaaton/golem/v4/dicts/en"
)

// WordSet answers membership queries for lowercase words.
type WordSet interface {
	Contains(word string) bool
}

// Set is an immutable in-memory WordSet.
type Set map[string]struct{}

// NewSet builds a Set from words, lowercasing and trimming each entry.
func NewSet(words ...string) Set {
	s := make(Set, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			s[w] = struct{}{}
		}
	}
	return s
}

// Contains reports whether word is in the set.
func (s Set) Contains(word string) bool {
	_, ok := s[word]
	return ok
}

// Len returns the number of entries.
func (s Set) Len() int { return len(s) }

// dictSet adapts the golem lemma dictionary to WordSet.
type dictSet struct {
	lem *golem.Lemmatizer
}

func (d dictSet) Contains(word string) bool {
	return d.lem.InDict(word)
}

// Lexicon bundles the static resources consumed by the analyzer.
type Lexicon struct {
	// Vocab is the curated English vocabulary; lemmas outside it are dropped.
	Vocab WordSet
	// Brown is the Brown-corpus inventory used for the in_brown flag and short-word rescue.
	Brown WordSet
	// Stop is the loader-managed stop set, applied in addition to BuiltinStopWords.
	Stop WordSet
	// Dict is the English lemma dictionary used as a lemmatizer fallback. May be nil.
	Dict *golem.Lemmatizer
}

// Options says where to find the word lists. Empty paths select built-in defaults.
type Options struct {
	VocabPath     string
	BrownPath     string
	StopWordsPath string
}

// Load reads the configured word lists. The golem English dictionary is always
// loaded; it doubles as the vocabulary when no VocabPath is given.
func Load(opts Options) (*Lexicon, error) {
	lem, err := golem.New(en.New())
	if err != nil {
		return nil, fmt.Errorf("load lemma dictionary: %w", err)
	}
	lx := &Lexicon{
		Vocab: dictSet{lem: lem},
		Brown: DefaultBrown(),
		Stop:  Set{},
		Dict:  lem,
	}

	if opts.VocabPath != "" {
		s, err := LoadWordSet(opts.VocabPath)
		if err != nil {
			return nil, fmt.Errorf("load vocabulary: %w", err)
		}
		lx.Vocab = s
	}
	if opts.BrownPath != "" {
		s, err := LoadWordSet(opts.BrownPath)
		if err != nil {
			return nil, fmt.Errorf("load brown words: %w", err)
		}
		lx.Brown = s
	}
	if opts.StopWordsPath != "" {
		s, err := LoadWordSet(opts.StopWordsPath)
		if err != nil {
			return nil, fmt.Errorf("load stop words: %w", err)
		}
		lx.Stop = s
	}
	return lx, nil
}

// LoadWordSet reads a newline separated word list. Lines starting with '#'
// are comments. Files ending in .gz are decompressed transparently.
func LoadWordSet(path string) (Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("gzip %s: %w", path, err)
		}
		defer gz.Close()
		r = gz
	}
	return ReadWordSet(r)
}

// ReadWordSet parses a word list from r.
func ReadWordSet(r io.Reader) (Set, error) {
	s := Set{}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		// Some lists carry a frequency column; keep the first field only.
		if i := strings.IndexAny(line, " \t,"); i >= 0 {
			line = line[:i]
		}
		s[strings.ToLower(line)] = struct{}{}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return s, nil
}

// IsBuiltinStopWord reports whether w is in the short built-in stop list.
func IsBuiltinStopWord(w string) bool {
	_, ok := builtinStop[w]
	return ok
}

// BuiltinStopWords is the fixed stop list applied by the tokenizer.
var BuiltinStopWords = []string{
	"i", "it", "am", "is", "are", "be", "a", "an", "the", "as", "of", "at", "by", "to",
	"s", "t", "don", "https",
}

var builtinStop = NewSet(BuiltinStopWords...)
