// Package dictionary enriches stored words from an English glossary file.
package dictionary

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// Entry is one glossary record.
type Entry struct {
	Lemma       string   `json:"lemma"`
	Translation string   `json:"translation"`
	Examples    []string `json:"examples"`
	CEFR        string   `json:"cefr"`
}

// cefrLevels are the accepted CEFR values; anything else is dropped.
var cefrLevels = map[string]bool{"A1": true, "A2": true, "B1": true, "B2": true, "C1": true, "C2": true}

// LoadGlossary reads a glossary file, either {"words": [...]} or a bare array.
func LoadGlossary(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeGlossary(f)
}

// DecodeGlossary parses a glossary and normalizes lemmas and CEFR levels.
// Entries without a lemma are skipped.
func DecodeGlossary(r io.Reader) ([]Entry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var wrapped struct {
		Words []Entry `json:"words"`
	}
	var entries []Entry
	if err := json.Unmarshal(data, &wrapped); err == nil {
		entries = wrapped.Words
	} else if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse glossary as object or array: %w", err)
	}

	out := entries[:0]
	for _, e := range entries {
		e.Lemma = strings.ToLower(strings.TrimSpace(e.Lemma))
		if e.Lemma == "" {
			continue
		}
		e.Translation = strings.TrimSpace(e.Translation)
		e.CEFR = strings.ToUpper(strings.TrimSpace(e.CEFR))
		if !cefrLevels[e.CEFR] {
			e.CEFR = ""
		}
		out = append(out, e)
	}
	return out, nil
}
