// Package extract turns book files and web pages into an ordered list of
// headings and paragraphs. Every supported format goes through the same
// Document shape so the analyzer never has to care where text came from.
package extract

import (
	"errors"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	log "github.com/sirupsen/logrus"
)

// Format names a supported input format.
type Format string

const (
	FormatTXT  Format = "txt"
	FormatFB2  Format = "fb2"
	FormatEPUB Format = "epub"
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
	FormatHTML Format = "html"
)

// minTextChars is the smallest amount of text considered a usable document.
const minTextChars = 10

var (
	// ErrNoText is returned when a document yields fewer than ten characters.
	ErrNoText = errors.New("no text extracted")
	// ErrUnsupportedFormat is returned for unknown formats and file extensions.
	ErrUnsupportedFormat = errors.New("unsupported format")
)

// FormatError reports that a document could not be parsed in its declared
// format nor as plain text.
type FormatError struct {
	Format Format
	Err    error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.Format, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// ParseFormat maps a format name or file extension to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "txt", "text":
		return FormatTXT, nil
	case "fb2":
		return FormatFB2, nil
	case "epub":
		return FormatEPUB, nil
	case "pdf":
		return FormatPDF, nil
	case "docx":
		return FormatDOCX, nil
	case "html", "htm", "xhtml":
		return FormatHTML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// BlockKind distinguishes headings from body text.
type BlockKind int

const (
	Paragraph BlockKind = iota
	Heading
)

// Block is one heading or paragraph. Level is 2..6 for headings and 0 otherwise.
type Block struct {
	Kind  BlockKind
	Level int
	Text  string
}

// Document is the extracted, cleaned content of one input.
type Document struct {
	Title  string
	Author string
	Blocks []Block
}

// Text returns all block texts separated by blank lines.
func (d *Document) Text() string {
	var b strings.Builder
	for i, blk := range d.Blocks {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(blk.Text)
	}
	return b.String()
}

// HTML renders the document as a flat sequence of <hN> and <p> elements.
func (d *Document) HTML() string {
	var b strings.Builder
	for _, blk := range d.Blocks {
		text := html.EscapeString(blk.Text)
		if blk.Kind == Heading {
			fmt.Fprintf(&b, "<h%d>%s</h%d>\n", blk.Level, text, blk.Level)
			continue
		}
		fmt.Fprintf(&b, "<p>%s</p>\n", text)
	}
	return b.String()
}

// Stats returns a rough token count and a rough count of distinct words.
// Both are display figures only; ingestion computes the real numbers.
func (d *Document) Stats() (tokens, unique int) {
	seen := make(map[string]struct{})
	for _, blk := range d.Blocks {
		for _, f := range strings.FieldsFunc(blk.Text, func(r rune) bool { return !unicode.IsLetter(r) }) {
			tokens++
			seen[strings.ToLower(f)] = struct{}{}
		}
	}
	return tokens, len(seen)
}

func (d *Document) textLen() int {
	n := 0
	for _, blk := range d.Blocks {
		n += len([]rune(strings.TrimSpace(blk.Text)))
	}
	return n
}

type parser func(data []byte) (*Document, error)

var parsers = map[Format]parser{
	FormatTXT:  parseTXT,
	FormatFB2:  parseFB2,
	FormatEPUB: parseEPUB,
	FormatPDF:  parsePDF,
	FormatDOCX: parseDOCX,
	FormatHTML: parseHTML,
}

// Extract parses data in the given format. When the format parser fails the
// bytes are retried as plain text; a FormatError is returned only if that
// also fails.
func Extract(data []byte, format Format) (*Document, error) {
	p, ok := parsers[format]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	doc, err := p(data)
	if err != nil && format != FormatTXT {
		log.WithFields(log.Fields{"format": format, "error": err}).Warn("parser failed, falling back to plain text")
		doc, err = parseTXT(data)
	}
	if err != nil {
		return nil, &FormatError{Format: format, Err: err}
	}

	clean(doc)
	if doc.textLen() < minTextChars {
		return nil, ErrNoText
	}
	return doc, nil
}

// ExtractFile reads path and extracts it using the format implied by its extension.
func ExtractFile(path string) (*Document, error) {
	format, err := ParseFormat(filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Extract(data, format)
}

// clean strips control characters, collapses whitespace and drops empty blocks.
func clean(doc *Document) {
	doc.Title = collapseSpace(stripControl(doc.Title))
	doc.Author = collapseSpace(stripControl(doc.Author))

	out := doc.Blocks[:0]
	for _, blk := range doc.Blocks {
		blk.Text = collapseSpace(stripControl(blk.Text))
		if blk.Text == "" {
			continue
		}
		if blk.Kind == Heading {
			blk.Level = min(max(blk.Level, 2), 6)
		} else {
			blk.Level = 0
		}
		out = append(out, blk)
	}
	doc.Blocks = out
}

func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\t':
			return ' '
		case r == unicode.ReplacementChar, unicode.IsControl(r):
			return -1
		case r == '\u00a0':
			return ' '
		}
		return r
	}, s)
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
