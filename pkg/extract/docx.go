package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strconv"
	"strings"
)

type docxCore struct {
	Title   string `xml:"title"`
	Creator string `xml:"creator"`
}

// parseDOCX reads word/document.xml. Paragraph styles Title and Heading1
// map to h2, HeadingN to h(N+1); everything else is body text.
func parseDOCX(data []byte) (*Document, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	files := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		files[f.Name] = f
	}

	body, ok := files["word/document.xml"]
	if !ok {
		return nil, errors.New("docx: missing word/document.xml")
	}

	doc := &Document{}
	var core docxCore
	if err := decodeZipXML(files, "docProps/core.xml", &core); err == nil {
		doc.Title, doc.Author = core.Title, core.Creator
	}

	rc, err := body.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	dec := xml.NewDecoder(rc)
	var (
		inPara bool
		inText bool
		style  string
		buf    strings.Builder
	)
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
			switch t.Name.Local {
			case "p":
				inPara, style = true, ""
				buf.Reset()
			case "pStyle":
				for _, a := range t.Attr {
					if a.Name.Local == "val" {
						style = a.Value
					}
				}
			case "t":
				inText = true
			case "tab", "br", "cr":
				buf.WriteByte(' ')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if inPara {
					doc.Blocks = append(doc.Blocks, docxBlock(style, buf.String()))
				}
				inPara = false
			}
		case xml.CharData:
			if inPara && inText {
				buf.Write(t)
			}
		}
	}
	return doc, nil
}

func docxBlock(style, text string) Block {
	s := strings.ToLower(strings.ReplaceAll(style, " ", ""))
	if s == "title" {
		return Block{Kind: Heading, Level: 2, Text: text}
	}
	if n, ok := strings.CutPrefix(s, "heading"); ok {
		if lvl, err := strconv.Atoi(n); err == nil && lvl >= 1 {
			return Block{Kind: Heading, Level: min(lvl+1, 6), Text: text}
		}
	}
	return Block{Kind: Paragraph, Text: text}
}
