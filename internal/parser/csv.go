package parser

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/dgallion1/doctex/internal/doctree"
)

// CSVParser handles CSV files. The file becomes a single table whose first
// record is the header row.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string) (*doctree.Tree, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	tree := &doctree.Tree{
		Title: titleFromFilename(filename),
		Root:  doctree.New(doctree.KindRoot),
	}
	if len(records) == 0 {
		return tree, nil
	}

	table := doctree.New(doctree.KindTable)
	for i, record := range records {
		row := doctree.New(doctree.KindTableRow)
		for _, field := range record {
			row.Children = append(row.Children, &doctree.Node{
				Kind:     doctree.KindTableCell,
				Header:   i == 0,
				Children: []*doctree.Node{doctree.NewText(normalize(field))},
			})
		}
		table.Children = append(table.Children, row)
	}
	tree.Root.Children = append(tree.Root.Children, table)
	return tree, nil
}
