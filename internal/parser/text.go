package parser

import (
	"bufio"
	"io"
	"strings"

	"github.com/dgallion1/doctex/internal/doctree"
)

// TextParser handles plain text files. Blank lines separate paragraphs.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*doctree.Tree, error) {
	paras, err := scanParagraphs(r)
	if err != nil {
		return nil, err
	}

	root := doctree.New(doctree.KindRoot)
	for _, para := range paras {
		root.Children = append(root.Children, paragraph(para))
	}
	return &doctree.Tree{Title: titleFromFilename(filename), Root: root}, nil
}

// splitParagraphs splits text on blank lines, trimming each paragraph.
func splitParagraphs(text string) []string {
	paras, _ := scanParagraphs(strings.NewReader(text))
	for i, p := range paras {
		paras[i] = strings.TrimSpace(p)
	}
	return paras
}

func scanParagraphs(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var paragraphs []string
	var current strings.Builder

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			if current.Len() > 0 {
				paragraphs = append(paragraphs, current.String())
				current.Reset()
			}
			continue
		}
		if current.Len() > 0 {
			current.WriteString("\n")
		}
		current.WriteString(line)
	}
	if current.Len() > 0 {
		paragraphs = append(paragraphs, current.String())
	}
	return paragraphs, scanner.Err()
}
