package extract

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"

	"golang.org/x/net/html/charset"
)

// parseFB2 walks a FictionBook document. Section titles become headings
// (h2 for top-level sections, one level deeper per nesting) and every <p>
// outside a title becomes a paragraph, inline children included.
func parseFB2(data []byte) (*Document, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = charset.NewReaderLabel
	dec.Strict = false

	doc := &Document{}
	var (
		stack    []string
		sections int
		inTitle  bool
		title    []string
		buf      strings.Builder
		inP      bool
		first    string
		last     string
		seenRoot bool
	)

	within := func(name string) bool {
		for _, s := range stack {
			if s == name {
				return true
			}
		}
		return false
	}

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			name := t.Name.Local
			if !seenRoot {
				if name != "FictionBook" {
					return nil, errors.New("not a FictionBook document")
				}
				seenRoot = true
			}
			stack = append(stack, name)
			switch name {
			case "section":
				sections++
			case "title":
				if within("body") {
					inTitle = true
					title = title[:0]
				}
			case "p", "v", "subtitle":
				if within("body") {
					inP = true
					buf.Reset()
				}
			}

		case xml.EndElement:
			name := t.Name.Local
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
			switch name {
			case "section":
				sections--
			case "title":
				if inTitle {
					inTitle = false
					doc.Blocks = append(doc.Blocks, Block{
						Kind:  Heading,
						Level: 1 + max(sections, 1),
						Text:  strings.Join(title, " "),
					})
				}
			case "p", "v", "subtitle":
				if !inP {
					continue
				}
				inP = false
				if inTitle {
					title = append(title, buf.String())
				} else {
					doc.Blocks = append(doc.Blocks, Block{Kind: Paragraph, Text: buf.String()})
				}
			}

		case xml.CharData:
			switch {
			case inP:
				buf.Write(t)
			case within("title-info") && within("book-title"):
				doc.Title += string(t)
			case within("title-info") && within("author") && within("first-name"):
				first += string(t)
			case within("title-info") && within("author") && within("last-name"):
				last += string(t)
			}
		}
	}

	if !seenRoot {
		return nil, errors.New("not a FictionBook document")
	}
	doc.Author = strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
	return doc, nil
}
