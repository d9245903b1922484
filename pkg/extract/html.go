package extract

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/go-shiori/go-readability"
)

// Article is the readability result of a web page.
type Article struct {
	Title    string
	Byline   string
	SiteName string
	Document *Document
}

var placeholderURL, _ = url.Parse("http://localhost/")

// ParseArticle runs readability over a web page and returns its main content
// as a Document. pageURL may be nil.
func ParseArticle(data []byte, pageURL *url.URL) (*Article, error) {
	if pageURL == nil {
		pageURL = placeholderURL
	}
	data = SanitizeRuby(data)

	art, err := readability.FromReader(bytes.NewReader(data), pageURL)
	if err != nil {
		return nil, err
	}

	blocks, _, err := htmlBlocks(strings.NewReader(art.Content))
	if err != nil {
		return nil, err
	}
	if len(blocks) == 0 {
		// Articles made of bare divs: fall back to the plain text content.
		for _, para := range strings.Split(art.TextContent, "\n") {
			blocks = append(blocks, Block{Kind: Paragraph, Text: para})
		}
	}

	return &Article{
		Title:    strings.TrimSpace(art.Title),
		Byline:   strings.TrimSpace(art.Byline),
		SiteName: art.SiteName,
		Document: &Document{Title: strings.TrimSpace(art.Title), Author: strings.TrimSpace(art.Byline), Blocks: blocks},
	}, nil
}

func parseHTML(data []byte) (*Document, error) {
	art, err := ParseArticle(data, nil)
	if err != nil {
		return nil, err
	}
	return art.Document, nil
}
