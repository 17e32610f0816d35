package pipeline

import (
	"bytes"
	"fmt"
	"log/slog"
	"maps"

	"github.com/dgallion1/doctex/internal/abbrev"
	"github.com/dgallion1/doctex/internal/doctree"
	"github.com/dgallion1/doctex/internal/parser"
	"github.com/dgallion1/doctex/internal/tex"
)

// RenderOptions are the per-request settings of a render.
type RenderOptions struct {
	Abbreviations map[string]string `json:"abbreviations,omitempty"`
	Title         string            `json:"title,omitempty"`
	Strict        bool              `json:"strict,omitempty"`
	Standalone    bool              `json:"standalone,omitempty"`
}

// Output is the result of rendering one document.
type Output struct {
	Title    string   `json:"title"`
	Latex    string   `json:"latex"`
	Imports  []string `json:"imports"`
	Commands []string `json:"commands"`
	Warnings []string `json:"warnings"`
	// Document is the standalone file, set when requested.
	Document string `json:"document,omitempty"`
	// Abbreviations is the number of abbreviation nodes in the rendered tree.
	Abbreviations int `json:"abbreviations"`
}

// Tex returns the standalone document when present, else the body.
func (o *Output) Tex() string {
	if o.Document != "" {
		return o.Document
	}
	return o.Latex
}

// Renderer runs parse, abbreviation and serialization for one document.
// Its fields are read-only after construction, so one Renderer may be shared
// by every worker; each call builds its own tree and serializer state.
type Renderer struct {
	Abbreviations abbrev.Config
	Math          map[string]string
	Strict        bool
	Parser        parser.Options
	Handlers      map[doctree.Kind]tex.Handler // overrides, see tex.Options
	Log           *slog.Logger
}

// Render converts data, named filename, to LaTeX. phase is called as the
// render moves between stages and may be nil.
func (r *Renderer) Render(data []byte, filename string, opts RenderOptions, phase func(JobStatus)) (*Output, error) {
	if phase == nil {
		phase = func(JobStatus) {}
	}
	log := r.Log
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	phase(StatusParsing)
	p, err := parser.ForFile(filename, r.Parser)
	if err != nil {
		return nil, err
	}
	tree, err := p.Parse(bytes.NewReader(data), filename)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	if opts.Title != "" {
		tree.Title = opts.Title
	}

	phase(StatusTransforming)
	// Request settings win over document frontmatter, which wins over defaults.
	abbrs := abbrev.Merge(r.Abbreviations, tree.Meta.Abbreviations, opts.Abbreviations)
	abbrev.Transform(tree.Root, abbrs)

	phase(StatusRendering)
	math := map[string]string{}
	maps.Copy(math, r.Math)
	maps.Copy(math, tree.Meta.Math)
	res, err := tex.Serialize(tree.Root, tex.Options{
		Math:     math,
		Strict:   r.Strict || opts.Strict,
		Handlers: r.Handlers,
		Logger:   log,
	})
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}

	out := &Output{
		Title:         tree.Title,
		Latex:         res.Value,
		Imports:       res.Imports,
		Commands:      res.Commands,
		Warnings:      res.WarningStrings(),
		Abbreviations: countAbbreviations(tree),
	}
	if opts.Standalone {
		out.Document = tex.Document(res, tex.DocumentOptions{Title: tree.Title})
	}
	return out, nil
}

func countAbbreviations(tree *doctree.Tree) int {
	if tree.Root == nil {
		return 0
	}
	return len(doctree.SelectAll(tree.Root, doctree.KindAbbreviation))
}
