package parser

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/dgallion1/doctex/internal/doctree"
	pdflib "github.com/ledongthuc/pdf"
)

// PDFParser extracts page text with ledongthuc/pdf. When that fails and
// FallbackPdftotext is set, the poppler pdftotext binary is tried instead.
// Layout is not recovered: each page yields plain paragraphs.
type PDFParser struct {
	FallbackPdftotext bool
}

func (p *PDFParser) Parse(r io.Reader, filename string) (*doctree.Tree, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	pages, err := pdfPages(data)
	if err != nil && p.FallbackPdftotext {
		pages, err = pdftotextPages(data)
	}
	if err != nil {
		return nil, fmt.Errorf("extract pdf text: %w", err)
	}

	// A comment names each page so output can be traced back to the source.
	root := doctree.New(doctree.KindRoot)
	for i, page := range pages {
		paras := splitParagraphs(page)
		if len(paras) == 0 {
			continue
		}
		root.Children = append(root.Children, &doctree.Node{Kind: doctree.KindComment, Value: fmt.Sprintf("page %d", i+1)})
		for _, para := range paras {
			root.Children = append(root.Children, paragraph(para))
		}
	}

	return &doctree.Tree{Title: titleFromFilename(filename), Root: root}, nil
}

// pdfPages returns the plain text of every page, empty for pages without
// content or whose text cannot be decoded.
func pdfPages(data []byte) ([]string, error) {
	reader, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	pages := make([]string, reader.NumPage())
	for i := range pages {
		page := reader.Page(i + 1)
		if page.V.IsNull() {
			continue
		}
		if text, err := page.GetPlainText(nil); err == nil {
			pages[i] = text
		}
	}
	return pages, nil
}

// pdftotextPages runs pdftotext on a temp copy; pages come back separated by
// form feeds.
func pdftotextPages(data []byte) ([]string, error) {
	tmp, err := os.CreateTemp("", "doctex-pdf-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	_, err = tmp.Write(data)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, fmt.Errorf("write temp file: %w", err)
	}

	out, err := exec.Command("pdftotext", "-layout", tmp.Name(), "-").Output()
	if err != nil {
		return nil, fmt.Errorf("pdftotext: %w", err)
	}
	return strings.Split(strings.TrimSuffix(string(out), "\f"), "\f"), nil
}
