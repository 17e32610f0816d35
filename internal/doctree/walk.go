package doctree

import (
	"fmt"
	"strings"
)

// WalkFunc is called for every node in pre-order. ancestors holds the path from
// the root down to the node's parent. Returning false skips the node's children.
type WalkFunc func(n *Node, ancestors []*Node) bool

// Walk visits n and its descendants in document order.
func Walk(n *Node, fn WalkFunc) {
	if n == nil {
		return
	}
	walk(n, nil, fn)
}

func walk(n *Node, ancestors []*Node, fn WalkFunc) {
	if !fn(n, ancestors) {
		return
	}
	ancestors = append(ancestors, n)
	// Children may be replaced during the visit; index each step.
	for i := 0; i < len(n.Children); i++ {
		walk(n.Children[i], ancestors, fn)
	}
}

// Validate checks a tree built from untrusted input: every node must be
// non-nil and carry a kind. The error names the first offending position.
func Validate(n *Node) error {
	return validate(n, "root")
}

func validate(n *Node, path string) error {
	if n == nil {
		return fmt.Errorf("null node at %s", path)
	}
	if n.Kind == "" {
		return fmt.Errorf("node without type at %s", path)
	}
	for i, c := range n.Children {
		if err := validate(c, fmt.Sprintf("%s.children[%d]", path, i)); err != nil {
			return err
		}
	}
	return nil
}

// SelectAll returns every node of the given kind under n, including n itself.
func SelectAll(n *Node, kind Kind) []*Node {
	var out []*Node
	Walk(n, func(c *Node, _ []*Node) bool {
		if c.Kind == kind {
			out = append(out, c)
		}
		return true
	})
	return out
}

// ToText flattens the literal text content of n.
func ToText(n *Node) string {
	if n == nil {
		return ""
	}
	var buf strings.Builder
	writeText(&buf, n)
	return buf.String()
}

func writeText(buf *strings.Builder, n *Node) {
	switch n.Kind {
	case KindText, KindInlineCode, KindCode, KindMath, KindInlineMath:
		buf.WriteString(n.Value)
		return
	case KindImage:
		buf.WriteString(n.Title)
		return
	}
	for _, c := range n.Children {
		writeText(buf, c)
	}
}

// Clone returns a deep copy of n.
func Clone(n *Node) *Node {
	if n == nil {
		return nil
	}
	cp := *n
	if n.Children != nil {
		cp.Children = make([]*Node, len(n.Children))
		for i, c := range n.Children {
			cp.Children[i] = Clone(c)
		}
	}
	return &cp
}

// Equal reports whether two trees are structurally identical.
func Equal(a, b *Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	if attrsOf(a) != attrsOf(b) || len(a.Children) != len(b.Children) {
		return false
	}
	for i := range a.Children {
		if !Equal(a.Children[i], b.Children[i]) {
			return false
		}
	}
	return true
}

type attrs struct {
	kind                                 Kind
	value, title, url, identifier, label string
	lang, align, width, class, container string
	depth, start                         int
	ordered, enumerated, header          bool
}

func attrsOf(n *Node) attrs {
	return attrs{
		kind: n.Kind, value: n.Value, title: n.Title, url: n.URL, identifier: n.Identifier,
		label: n.Label, lang: n.Lang, align: n.Align, width: n.Width, class: n.Class,
		container: n.ContainerKind, depth: n.Depth, start: n.Start,
		ordered: n.Ordered, enumerated: n.Enumerated, header: n.Header,
	}
}
