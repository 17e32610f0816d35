package tex

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/dgallion1/doctex/internal/doctree"
)

// Handler renders one node. parent is nil for the node a pass starts from.
type Handler func(node *doctree.Node, s *State, parent *doctree.Node)

// ErrUnsupportedNodeKind matches any *UnsupportedNodeKindError via errors.Is.
var ErrUnsupportedNodeKind = errors.New("unsupported node kind")

// UnsupportedNodeKindError reports a node kind without a registered handler.
// Known is set for built-in kinds whose handler was removed by the caller.
type UnsupportedNodeKindError struct {
	Kind   doctree.Kind
	Parent doctree.Kind
	Known  bool
}

func (e *UnsupportedNodeKindError) Error() string {
	msg := fmt.Sprintf("unsupported node kind %q", e.Kind)
	if e.Known {
		msg = fmt.Sprintf("no handler for node kind %q", e.Kind)
	}
	if e.Parent != "" {
		msg += fmt.Sprintf(" in %q", e.Parent)
	}
	return msg
}

func (e *UnsupportedNodeKindError) Is(target error) bool {
	return target == ErrUnsupportedNodeKind
}

// InlineEnvOptions configures RenderInlineEnvironment.
type InlineEnvOptions struct {
	After string // written on its own line after \end
}

// EnvOptions configures RenderEnvironment.
type EnvOptions struct {
	Parameters string   // [..] after \begin{env}
	Arguments  []string // {..}{..} after the parameters
	Leading    string   // raw markup on the first line of the body
}

// Render dispatches node to the handler registered for its kind. Kinds without
// a handler leave a comment in the output and are recorded as warnings.
func (s *State) Render(node, parent *doctree.Node) {
	if h, ok := s.handlers[node.Kind]; ok {
		h(node, s, parent)
		return
	}
	err := &UnsupportedNodeKindError{Kind: node.Kind, Known: node.Kind.Known()}
	if parent != nil {
		err.Parent = parent.Kind
	}
	s.warnings = append(s.warnings, err)
	s.log.Warn("no handler for node", "kind", node.Kind, "known", err.Known, "parent", err.Parent)
	s.EnsureNewLine(false)
	s.Write("% unsupported node: " + string(node.Kind) + "\n")
}

// RenderChildren renders every child of node in order, writing delim between
// siblings. Unless inline is set the node is closed as a block afterwards.
func (s *State) RenderChildren(node *doctree.Node, inline bool, delim string) {
	for i, c := range node.Children {
		s.Render(c, node)
		if delim != "" && i+1 < len(node.Children) {
			s.Write(delim)
		}
	}
	if !inline {
		s.CloseBlock(node)
	}
}

// RenderInlineEnvironment wraps the children of node in \begin{env}..\end{env}
// without closing it as a block.
func (s *State) RenderInlineEnvironment(node *doctree.Node, env string, opts InlineEnvOptions) {
	s.EnsureNewLine(false)
	s.Write(`\begin{` + env + "}\n")
	s.RenderChildren(node, true, "")
	s.EnsureNewLine(true)
	s.Write(`\end{` + env + `}`)
	if opts.After != "" {
		s.EnsureNewLine(true)
		s.Write(opts.After)
	}
}

// RenderEnvironment renders node as a block environment. Figures rendered
// inside a long-figure context use the starred, full-width variant of env.
func (s *State) RenderEnvironment(node *doctree.Node, env string, opts EnvOptions) {
	if node.Kind == doctree.KindContainer && s.LongFigure() && !strings.HasSuffix(env, "*") {
		env += "*"
	}
	var begin strings.Builder
	begin.WriteString(`\begin{` + env + `}`)
	if opts.Parameters != "" {
		begin.WriteString("[" + opts.Parameters + "]")
	}
	for _, a := range opts.Arguments {
		begin.WriteString("{" + a + "}")
	}

	s.EnsureNewLine(false)
	s.Write(begin.String() + "\n")
	if opts.Leading != "" {
		s.Write(opts.Leading + "\n")
	}
	s.RenderChildren(node, true, "")
	s.EnsureNewLine(true)
	s.Write(`\end{` + env + `}`)
	s.CloseBlock(node)
}

// CloseBlock ends a block-level node with a blank line. Inline nodes are left
// untouched. Closing a container drops caption settings nobody consumed.
func (s *State) CloseBlock(node *doctree.Node) {
	if node.Kind == doctree.KindContainer {
		s.clearCaption()
	}
	if !node.Kind.IsBlock() || len(s.buf) == 0 {
		return
	}
	s.EnsureNewLine(false)
	if !bytes.HasSuffix(s.buf, []byte("\n\n")) {
		s.Write("\n")
	}
}
