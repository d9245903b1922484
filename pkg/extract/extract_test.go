package extract

import (
	"archive/zip"
	"bytes"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{".txt", FormatTXT},
		{"FB2", FormatFB2},
		{".epub", FormatEPUB},
		{"pdf", FormatPDF},
		{".docx", FormatDOCX},
		{".htm", FormatHTML},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseFormat(".mobi")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestExtract_TXT(t *testing.T) {
	in := "Chapter 1: The Start\n\nThe cat sat\non the   mat.\n\n\nCHAPTER IV\nAnother paragraph here.\n"
	doc, err := Extract([]byte(in), FormatTXT)
	require.NoError(t, err)

	want := []Block{
		{Kind: Heading, Level: 2, Text: "Chapter 1: The Start"},
		{Kind: Paragraph, Text: "The cat sat on the mat."},
		{Kind: Heading, Level: 2, Text: "CHAPTER IV"},
		{Kind: Paragraph, Text: "Another paragraph here."},
	}
	assert.Equal(t, want, doc.Blocks)
	assert.Equal(t, "<h2>Chapter 1: The Start</h2>\n<p>The cat sat on the mat.</p>\n<h2>CHAPTER IV</h2>\n<p>Another paragraph here.</p>\n", doc.HTML())
}

func TestExtract_TXTStripsControlCharacters(t *testing.T) {
	doc, err := Extract([]byte("Hello\x00 wor\x0cld\x07 again and again"), FormatTXT)
	require.NoError(t, err)
	text := doc.Text()
	for _, r := range text {
		if r < 0x20 && r != '\n' {
			t.Fatalf("control character %q left in %q", r, text)
		}
	}
	assert.Equal(t, "Hello world again and again", text)
}

func TestExtract_TXTLegacyEncodings(t *testing.T) {
	latin := []byte("The caf\xe9 on the corner serves na\xefve coffee every morning.")
	doc, err := Extract(latin, FormatTXT)
	require.NoError(t, err)
	assert.Contains(t, doc.Text(), "coffee every morning")

	ru := "Это была тёмная и бурная ночь. Дождь лил как из ведра, и ветер гудел в трубах старого дома."
	enc, err := charmap.Windows1251.NewEncoder().String(ru)
	require.NoError(t, err)
	doc, err = Extract([]byte(enc), FormatTXT)
	require.NoError(t, err)
	assert.Equal(t, ru, doc.Text())
}

func TestTextParagraphs(t *testing.T) {
	in := "Chapter 1: The Start\r\n\r\nThe cat sat\ron the   mat.\n\n\nCHAPTER IV\nAnother\x00 paragraph here.\n"
	var got []string
	for p, err := range TextParagraphs([]byte(in)) {
		require.NoError(t, err)
		got = append(got, p)
	}
	assert.Equal(t, []string{"Chapter 1: The Start", "The cat sat on the mat.", "CHAPTER IV", "Another paragraph here."}, got)

	doc, err := Extract([]byte(in), FormatTXT)
	require.NoError(t, err)
	assert.Equal(t, got, slices.Collect(doc.Paragraphs()))

	n := 0
	for range TextParagraphs([]byte(in)) {
		n++
		break
	}
	assert.Equal(t, 1, n)
}

func TestTextParagraphsLegacyEncoding(t *testing.T) {
	ru := "Это была тёмная и бурная ночь.\n\nДождь лил как из ведра, и ветер гудел в трубах старого дома."
	enc, err := charmap.Windows1251.NewEncoder().String(ru)
	require.NoError(t, err)
	var got []string
	for p, err := range TextParagraphs([]byte(enc)) {
		require.NoError(t, err)
		got = append(got, p)
	}
	assert.Equal(t, strings.Split(ru, "\n\n"), got)
}

func TestExtract_Empty(t *testing.T) {
	_, err := Extract([]byte("  tiny \n"), FormatTXT)
	assert.ErrorIs(t, err, ErrNoText)
}

func TestExtract_FB2(t *testing.T) {
	in := `<?xml version="1.0" encoding="utf-8"?>
<FictionBook xmlns="http://www.gribuser.ru/xml/fictionbook/2.0">
 <description><title-info>
  <author><first-name>Jane</first-name><last-name>Doe</last-name></author>
  <book-title>A Quiet Book</book-title>
 </title-info></description>
 <body>
  <section>
   <title><p>Part One</p></title>
   <p>The <emphasis>quiet</emphasis> river ran on.</p>
   <section>
    <title><p>Inner</p></title>
    <p>Nested text lives here.</p>
   </section>
  </section>
 </body>
 <binary id="x">AAAA</binary>
</FictionBook>`
	doc, err := Extract([]byte(in), FormatFB2)
	require.NoError(t, err)

	assert.Equal(t, "A Quiet Book", doc.Title)
	assert.Equal(t, "Jane Doe", doc.Author)
	assert.Equal(t, []Block{
		{Kind: Heading, Level: 2, Text: "Part One"},
		{Kind: Paragraph, Text: "The quiet river ran on."},
		{Kind: Heading, Level: 3, Text: "Inner"},
		{Kind: Paragraph, Text: "Nested text lives here."},
	}, doc.Blocks)
}

func zipOf(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(files[name]))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestExtract_EPUB(t *testing.T) {
	data := zipOf(t, map[string]string{
		"mimetype": "application/epub+zip",
		"META-INF/container.xml": `<?xml version="1.0"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
 <rootfiles><rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/></rootfiles>
</container>`,
		"OEBPS/content.opf": `<?xml version="1.0"?>
<package xmlns="http://www.idpf.org/2007/opf" xmlns:dc="http://purl.org/dc/elements/1.1/">
 <metadata><dc:title>Spine Order</dc:title><dc:creator>Ann Author</dc:creator></metadata>
 <manifest>
  <item id="c2" href="text/ch2.xhtml" media-type="application/xhtml+xml"/>
  <item id="c1" href="text/ch1.xhtml" media-type="application/xhtml+xml"/>
 </manifest>
 <spine><itemref idref="c1"/><itemref idref="c2"/></spine>
</package>`,
		"OEBPS/text/ch1.xhtml": `<html><body><h1>One</h1><p>First chapter text.</p><script>var x;</script></body></html>`,
		"OEBPS/text/ch2.xhtml": `<html><body><h3>Two</h3><p>Second <b>chapter</b> text.</p></body></html>`,
	})

	doc, err := Extract(data, FormatEPUB)
	require.NoError(t, err)
	assert.Equal(t, "Spine Order", doc.Title)
	assert.Equal(t, "Ann Author", doc.Author)
	assert.Equal(t, []Block{
		{Kind: Heading, Level: 2, Text: "One"},
		{Kind: Paragraph, Text: "First chapter text."},
		{Kind: Heading, Level: 3, Text: "Two"},
		{Kind: Paragraph, Text: "Second chapter text."},
	}, doc.Blocks)
}

func TestExtract_DOCX(t *testing.T) {
	data := zipOf(t, map[string]string{
		"word/document.xml": `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>
 <w:p><w:pPr><w:pStyle w:val="Title"/></w:pPr><w:r><w:t>Big Title</w:t></w:r></w:p>
 <w:p><w:pPr><w:pStyle w:val="Heading2"/></w:pPr><w:r><w:t>Sub</w:t></w:r></w:p>
 <w:p><w:r><w:t xml:space="preserve">Plain </w:t></w:r><w:r><w:t>words</w:t><w:tab/><w:t>here.</w:t></w:r></w:p>
</w:body></w:document>`,
		"docProps/core.xml": `<?xml version="1.0"?>
<cp:coreProperties xmlns:cp="x" xmlns:dc="http://purl.org/dc/elements/1.1/"><dc:title>Doc</dc:title><dc:creator>Writer</dc:creator></cp:coreProperties>`,
	})

	doc, err := Extract(data, FormatDOCX)
	require.NoError(t, err)
	assert.Equal(t, "Doc", doc.Title)
	assert.Equal(t, []Block{
		{Kind: Heading, Level: 2, Text: "Big Title"},
		{Kind: Heading, Level: 3, Text: "Sub"},
		{Kind: Paragraph, Text: "Plain words here."},
	}, doc.Blocks)
}

func TestExtract_FallsBackToText(t *testing.T) {
	doc, err := Extract([]byte("this is not really a pdf file at all"), FormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "this is not really a pdf file at all", doc.Text())

	doc, err = Extract([]byte("plain words pretending to be an epub"), FormatEPUB)
	require.NoError(t, err)
	assert.Contains(t, doc.Text(), "pretending")
}

func TestExtract_UnknownFormat(t *testing.T) {
	_, err := Extract([]byte("some words in a file"), Format("mobi"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	var fe *FormatError
	assert.False(t, errors.As(err, &fe))
}

func TestFormatError(t *testing.T) {
	err := error(&FormatError{Format: FormatPDF, Err: ErrNoText})
	assert.ErrorIs(t, err, ErrNoText)
	assert.Equal(t, "extract pdf: no text extracted", err.Error())
}

func TestSanitizeRuby(t *testing.T) {
	in := []byte(`<p><ruby>漢字<rp>(</rp><RT>かんじ</RT><rp>)</rp></ruby> text</p>`)
	assert.Equal(t, `<p><ruby>漢字</ruby> text</p>`, string(SanitizeRuby(in)))
}

func TestHTMLBlocks(t *testing.T) {
	blocks, title, err := htmlBlocks(strings.NewReader(`<html><head><title>T</title><style>p{}</style></head>
<body><h2>Head</h2><div><p>One<br>two</p></div><h7>not a heading</h7><p>Three</p></body></html>`))
	require.NoError(t, err)
	assert.Equal(t, "T", title)
	assert.Equal(t, []Block{
		{Kind: Heading, Level: 2, Text: "Head"},
		{Kind: Paragraph, Text: "One two"},
		{Kind: Paragraph, Text: "Three"},
	}, blocks)
}

func TestParseArticle(t *testing.T) {
	body := strings.Repeat("The lighthouse keeper climbed the stairs every evening to light the lamp. ", 10)
	page := `<html><head><title>Keeper</title></head><body>
<nav><a href="/">Home</a></nav>
<article><h1>Keeper</h1><p>` + body + `</p><p>` + body + `</p></article>
</body></html>`

	art, err := ParseArticle([]byte(page), nil)
	require.NoError(t, err)
	assert.Contains(t, art.Document.Text(), "lighthouse keeper")
}

func TestStats(t *testing.T) {
	doc := &Document{Blocks: []Block{{Text: "The cat, the CAT."}, {Text: "A dog"}}}
	tokens, unique := doc.Stats()
	assert.Equal(t, 6, tokens)
	assert.Equal(t, 4, unique)
}

func TestChunks(t *testing.T) {
	doc := &Document{Blocks: []Block{
		{Text: strings.Repeat("a", 40)},
		{Text: strings.Repeat("b", 40)},
		{Text: strings.Repeat("c", 200)},
		{Text: "tail"},
	}}

	seq := Chunks(doc.Paragraphs(), 64)
	var got []string
	for c := range seq {
		got = append(got, c)
	}
	require.Len(t, got, 3)
	assert.Equal(t, strings.Repeat("a", 40)+"\n\n"+strings.Repeat("b", 40), got[0])
	assert.Equal(t, strings.Repeat("c", 200), got[1])
	assert.Equal(t, "tail", got[2])

	// Ranging again produces the same chunks.
	var again []string
	for c := range seq {
		again = append(again, c)
	}
	assert.Equal(t, got, again)

	// Early break stops the iteration.
	n := 0
	for range seq {
		n++
		break
	}
	assert.Equal(t, 1, n)
}
