package extractor

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	pdf "github.com/ledongthuc/pdf"
)

func extractPDF(data []byte) (text string, err error) {
	if len(data) == 0 {
		return "", errors.New("empty pdf")
	}
	// ledongthuc/pdf panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("pdf parse panic: %v", r)
		}
	}()
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("pdf reader: %w", err)
	}
	pages := make([]string, 0, r.NumPage())
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		raw, perr := p.GetPlainText(nil)
		if perr != nil {
			return "", fmt.Errorf("pdf page %d: %w", i, perr)
		}
		pages = append(pages, collapseWhitespace(sanitizeUTF8(raw)))
	}
	return strings.TrimSpace(strings.Join(pages, "\n")), nil
}

func extractPPTX(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("pptx archive: %w", err)
	}
	slides := slideEntries(zr)
	if len(slides) == 0 {
		return "", errors.New("pptx has no slides")
	}
	texts := make([]string, 0, len(slides))
	for _, f := range slides {
		raw, err := readZipFile(f)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", f.Name, err)
		}
		runs := collectRuns(raw, "t", "")
		if len(runs) > 0 {
			texts = append(texts, collapseWhitespace(strings.Join(runs, " ")))
			continue
		}
		texts = append(texts, stripMarkup(string(raw)))
	}
	return strings.TrimSpace(strings.Join(texts, "\n")), nil
}

func extractDOCX(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("docx archive: %w", err)
	}
	var doc *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			doc = f
			break
		}
	}
	if doc == nil {
		return "", errors.New("docx missing word/document.xml")
	}
	raw, err := readZipFile(doc)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(joinLines(collectParagraphs(raw))), nil
}

// slideEntries lists ppt/slides/slideN.xml sorted by name.
func slideEntries(zr *zip.Reader) []*zip.File {
	var out []*zip.File
	for _, f := range zr.File {
		if path.Dir(f.Name) != "ppt/slides" {
			continue
		}
		base := path.Base(f.Name)
		if strings.HasPrefix(base, "slide") && strings.HasSuffix(base, ".xml") {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// collectRuns returns the character data of every <local> element. When
// breakOn is set, a newline marker is recorded at the end of that element.
func collectRuns(raw []byte, local, breakOn string) []string {
	dec := xml.NewDecoder(bytes.NewReader(raw))
	dec.Strict = false
	var (
		out    []string
		inside bool
		cur    strings.Builder
	)
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == local {
				inside = true
				cur.Reset()
			}
		case xml.EndElement:
			if t.Name.Local == local && inside {
				inside = false
				if s := cur.String(); strings.TrimSpace(s) != "" {
					out = append(out, s)
				}
			}
			if breakOn != "" && t.Name.Local == breakOn {
				out = append(out, "\n")
			}
		case xml.CharData:
			if inside {
				cur.Write(t)
			}
		}
	}
	return out
}

// collectParagraphs groups <w:t> runs by <w:p> paragraph.
func collectParagraphs(raw []byte) []string {
	var (
		paras []string
		cur   []string
	)
	for _, run := range collectRuns(raw, "t", "p") {
		if run == "\n" {
			paras = append(paras, strings.Join(cur, ""))
			cur = cur[:0]
			continue
		}
		cur = append(cur, run)
	}
	if len(cur) > 0 {
		paras = append(paras, strings.Join(cur, ""))
	}
	return paras
}
