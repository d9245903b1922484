package analyzer

import (
	"fmt"

	"github.com/jdkato/prose/v2"
)

// TaggedWord is a token with its Penn Treebank part-of-speech tag.
type TaggedWord struct {
	Text string
	Tag  string
}

// Tagger splits text into words and tags each one.
type Tagger interface {
	Tag(text string) ([]TaggedWord, error)
}

// ProseTagger tokenizes and tags with the prose averaged-perceptron model.
type ProseTagger struct{}

// Tag implements Tagger.
func (ProseTagger) Tag(text string) ([]TaggedWord, error) {
	doc, err := prose.NewDocument(text,
		prose.WithSegmentation(false),
		prose.WithExtraction(false),
	)
	if err != nil {
		return nil, fmt.Errorf("tag: %w", err)
	}
	toks := doc.Tokens()
	out := make([]TaggedWord, len(toks))
	for i, t := range toks {
		out[i] = TaggedWord{Text: t.Text, Tag: t.Tag}
	}
	return out, nil
}

// POS is a coarse WordNet part of speech.
type POS byte

const (
	Noun      POS = 'n'
	Verb      POS = 'v'
	Adjective POS = 'a'
	Adverb    POS = 'r'
)

// posFromTag maps a Penn tag to a WordNet class; anything unknown is a noun.
func posFromTag(tag string) POS {
	if tag == "" {
		return Noun
	}
	switch tag[0] {
	case 'J':
		return Adjective
	case 'V':
		return Verb
	case 'R':
		return Adverb
	}
	return Noun
}

func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') {
			return false
		}
	}
	return true
}
