// Package tex serializes a document tree into LaTeX.
//
// A render pass walks the tree with a fresh State, dispatching each node to
// the handler registered for its kind. Handlers write markup through the
// State primitives and may record required packages and macro definitions,
// which are returned next to the body so callers can emit a preamble.
package tex

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/dgallion1/doctex/internal/doctree"
)

// Defaults for image sizing.
const (
	DefaultImageWidth      = 0.7
	DefaultPageWidthPixels = 800
	defaultDocumentClass   = "article"
	defaultFigurePlacement = "!htbp"
)

// Options configures a render pass.
type Options struct {
	// Handlers override or extend the built-in handlers by kind. A nil
	// handler removes the built-in one.
	Handlers map[doctree.Kind]Handler
	// Math maps a macro name such as `\dd` to its definition.
	Math map[string]string

	LocalizeID       func(string) string
	LocalizeLink     func(string) string
	LocalizeImageSrc func(string) string

	// Strict makes Serialize return an error when a node kind had no handler.
	Strict bool
	Logger *slog.Logger
}

// Result is the output of a render pass.
type Result struct {
	Value    string   `json:"value"`
	Imports  []string `json:"imports"`
	Commands []string `json:"commands"`
	Warnings []error  `json:"-"`
}

// WarningStrings returns the warnings as text, for JSON responses.
func (r Result) WarningStrings() []string {
	out := make([]string, 0, len(r.Warnings))
	for _, w := range r.Warnings {
		out = append(out, w.Error())
	}
	return out
}

// Serialize renders root with a new State. The returned Result is always
// populated; the error is non-nil only in strict mode.
func Serialize(root *doctree.Node, opts Options) (Result, error) {
	s := NewState(opts)
	if root == nil {
		return Result{Imports: []string{}, Commands: []string{}}, nil
	}
	s.collectFootnotes(root)
	s.Render(root, nil)
	s.EnsureNewLine(true)

	res := Result{
		Value:    s.String(),
		Imports:  s.imports.list(),
		Commands: s.commands.list(),
		Warnings: s.warnings,
	}
	if opts.Strict && len(s.warnings) > 0 {
		return res, errors.Join(s.warnings...)
	}
	return res, nil
}

// DocumentOptions configures Document.
type DocumentOptions struct {
	Class string
	Title string
}

// Document wraps a Result into a standalone LaTeX file.
func Document(res Result, opts DocumentOptions) string {
	class := opts.Class
	if class == "" {
		class = defaultDocumentClass
	}
	var b strings.Builder
	b.WriteString(`\documentclass{` + class + "}\n")
	for _, pkg := range res.Imports {
		b.WriteString(`\usepackage{` + pkg + "}\n")
	}
	if len(res.Commands) > 0 {
		b.WriteString("\n")
		for _, c := range res.Commands {
			b.WriteString(c + "\n")
		}
	}
	if opts.Title != "" {
		b.WriteString("\n" + `\title{` + textReplacer.Replace(opts.Title) + "}\n")
		b.WriteString(`\date{}` + "\n")
	}
	b.WriteString("\n" + `\begin{document}` + "\n")
	if opts.Title != "" {
		b.WriteString(`\maketitle` + "\n")
	}
	b.WriteString("\n" + res.Value)
	if !strings.HasSuffix(res.Value, "\n") {
		b.WriteString("\n")
	}
	b.WriteString("\n" + `\end{document}` + "\n")
	return b.String()
}

func (s *State) collectFootnotes(root *doctree.Node) {
	for _, def := range doctree.SelectAll(root, doctree.KindFootnoteDefinition) {
		if def.Identifier != "" {
			s.footnotes[def.Identifier] = def
		}
	}
}

func (s *State) localizeID(id string) string {
	if s.opts.LocalizeID != nil {
		return s.opts.LocalizeID(id)
	}
	return id
}

func (s *State) localizeLink(url string) string {
	if s.opts.LocalizeLink != nil {
		return s.opts.LocalizeLink(url)
	}
	return url
}

func (s *State) localizeImageSrc(src string) string {
	if s.opts.LocalizeImageSrc != nil {
		return s.opts.LocalizeImageSrc(src)
	}
	return src
}
