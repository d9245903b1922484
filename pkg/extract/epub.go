package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
)

type epubContainer struct {
	Rootfiles []struct {
		FullPath string `xml:"full-path,attr"`
	} `xml:"rootfiles>rootfile"`
}

type epubPackage struct {
	Title    []string `xml:"metadata>title"`
	Creator  []string `xml:"metadata>creator"`
	Manifest []struct {
		ID        string `xml:"id,attr"`
		Href      string `xml:"href,attr"`
		MediaType string `xml:"media-type,attr"`
	} `xml:"manifest>item"`
	Spine []struct {
		IDRef string `xml:"idref,attr"`
	} `xml:"spine>itemref"`
}

// parseEPUB reads the OPF package named by META-INF/container.xml and
// extracts headings and paragraphs from the spine documents in order.
func parseEPUB(data []byte) (*Document, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	files := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		files[f.Name] = f
	}

	var container epubContainer
	if err := decodeZipXML(files, "META-INF/container.xml", &container); err != nil {
		return nil, err
	}
	if len(container.Rootfiles) == 0 {
		return nil, errors.New("epub: container has no rootfile")
	}
	opfPath := container.Rootfiles[0].FullPath

	var pkg epubPackage
	if err := decodeZipXML(files, opfPath, &pkg); err != nil {
		return nil, err
	}

	hrefs := make(map[string]string, len(pkg.Manifest))
	for _, item := range pkg.Manifest {
		hrefs[item.ID] = item.Href
	}

	doc := &Document{}
	if len(pkg.Title) > 0 {
		doc.Title = pkg.Title[0]
	}
	if len(pkg.Creator) > 0 {
		doc.Author = pkg.Creator[0]
	}

	base := path.Dir(opfPath)
	for _, ref := range pkg.Spine {
		href, ok := hrefs[ref.IDRef]
		if !ok {
			continue
		}
		if u, err := url.PathUnescape(href); err == nil {
			href = u
		}
		f, ok := files[path.Join(base, href)]
		if !ok {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		blocks, _, err := htmlBlocks(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("epub %s: %w", href, err)
		}
		doc.Blocks = append(doc.Blocks, blocks...)
	}
	return doc, nil
}

func decodeZipXML(files map[string]*zip.File, name string, v any) error {
	f, ok := files[strings.TrimPrefix(name, "/")]
	if !ok {
		return fmt.Errorf("missing %s", name)
	}
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()
	return xmlDecode(rc, v)
}

func xmlDecode(r io.Reader, v any) error {
	dec := xml.NewDecoder(r)
	dec.Strict = false
	return dec.Decode(v)
}
