package parser

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dgallion1/doctex/internal/doctree"
)

// JSONParser reads a tree already in node form. The input is either a bare
// root node or an object with "title", "root" and optional "frontmatter".
type JSONParser struct{}

type jsonDocument struct {
	Title       string              `json:"title"`
	Root        *doctree.Node       `json:"root"`
	Frontmatter doctree.Frontmatter `json:"frontmatter"`
}

func (p *JSONParser) Parse(r io.Reader, filename string) (*doctree.Tree, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var doc jsonDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse json tree: %w", err)
	}
	if doc.Root == nil {
		var node doctree.Node
		if err := json.Unmarshal(data, &node); err != nil {
			return nil, fmt.Errorf("parse json tree: %w", err)
		}
		if node.Kind == "" {
			return nil, fmt.Errorf("parse json tree: missing node type")
		}
		doc.Root = &node
	}
	if err := doctree.Validate(doc.Root); err != nil {
		return nil, fmt.Errorf("parse json tree: %w", err)
	}

	tree := &doctree.Tree{Title: titleFromFilename(filename), Root: doc.Root, Meta: doc.Frontmatter}
	switch {
	case doc.Title != "":
		tree.Title = doc.Title
	case doc.Frontmatter.Title != "":
		tree.Title = doc.Frontmatter.Title
	}
	return tree, nil
}
