package extract

import (
	"bufio"
	"bytes"
	"io"
	"iter"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/gogs/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

var reChapter = regexp.MustCompile(`^(Chapter|CHAPTER) (\d+|[IVXLCDM]+)(:? .*)?$`)

// detectSample bounds how much of a legacy-encoded body chardet inspects.
const detectSample = 64 * 1024

func parseTXT(data []byte) (*Document, error) {
	doc := &Document{}
	err := scanTXT(textReader(data), func(blk Block) bool {
		doc.Blocks = append(doc.Blocks, blk)
		return true
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// TextParagraphs streams the cleaned headings and paragraphs of a plain text
// body in order, without building a Document. A read error is yielded last,
// with an empty string.
func TextParagraphs(data []byte) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		stopped := false
		err := scanTXT(textReader(data), func(blk Block) bool {
			text := collapseSpace(stripControl(blk.Text))
			if text == "" {
				return true
			}
			if !yield(text, nil) {
				stopped = true
				return false
			}
			return true
		})
		if err != nil && !stopped {
			yield("", err)
		}
	}
}

// scanTXT splits plain text into chapter headings and blank-line separated
// paragraphs, calling emit for each block until it returns false.
func scanTXT(r io.Reader, emit func(Block) bool) error {
	var para []string
	flush := func() bool {
		if len(para) == 0 {
			return true
		}
		ok := emit(Block{Kind: Paragraph, Text: strings.Join(para, " ")})
		para = para[:0]
		return ok
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for sc.Scan() {
		// ScanLines drops the CR of CRLF; a lone CR still ends a line.
		for _, line := range strings.Split(sc.Text(), "\r") {
			line = strings.TrimSpace(line)
			switch {
			case line == "":
				if !flush() {
					return nil
				}
			case reChapter.MatchString(line):
				if !flush() || !emit(Block{Kind: Heading, Level: 2, Text: line}) {
					return nil
				}
			default:
				para = append(para, line)
			}
		}
	}
	if err := sc.Err(); err != nil {
		return err
	}
	flush()
	return nil
}

// textReader returns data as a UTF-8 stream. Valid UTF-8 is used as is;
// otherwise the detector chooses between Windows-1251 and Latin-1, Latin-1
// being the default since it accepts any byte sequence.
func textReader(data []byte) io.Reader {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if utf8.Valid(data) {
		return bytes.NewReader(data)
	}

	var enc encoding.Encoding = charmap.ISO8859_1
	sample := data[:min(len(data), detectSample)]
	if res, err := chardet.NewTextDetector().DetectBest(sample); err == nil {
		switch strings.ToLower(res.Charset) {
		case "windows-1251", "koi8-r", "iso-8859-5":
			enc = charmap.Windows1251
		case "windows-1252":
			enc = charmap.Windows1252
		}
	}
	return enc.NewDecoder().Reader(bytes.NewReader(data))
}
