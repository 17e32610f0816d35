// Package abbrev marks abbreviations in a document tree.
//
// Transform runs two steps over the tree. Resolve fills in missing titles on
// abbreviation nodes the parser already produced, and Replace finds configured
// abbreviations inside plain text and wraps each occurrence in an abbreviation
// node. Text below a link, cross-reference, citation, code span or an existing
// abbreviation is never rewritten, which also makes Transform idempotent.
package abbrev

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/doctex/internal/doctree"
)

// Config maps an abbreviation to its expanded title.
type Config map[string]string

// Merge returns a new Config holding every entry of cfgs; later configs win.
func Merge(cfgs ...Config) Config {
	out := Config{}
	for _, c := range cfgs {
		for k, v := range c {
			out[k] = v
		}
	}
	return out
}

// protected kinds never have their text rewritten.
var protected = map[doctree.Kind]bool{
	doctree.KindLink:           true,
	doctree.KindCrossReference: true,
	doctree.KindCite:           true,
	doctree.KindCiteGroup:      true,
	doctree.KindInlineCode:     true,
	doctree.KindCode:           true,
	doctree.KindAbbreviation:   true,
}

// Transform resolves existing abbreviation titles, then marks new occurrences.
func Transform(root *doctree.Node, cfg Config) {
	if len(cfg) == 0 {
		return
	}
	Resolve(root, cfg)
	Replace(root, cfg)
}

// Resolve sets the title of every untitled abbreviation node whose text is a key in cfg.
func Resolve(root *doctree.Node, cfg Config) {
	if len(cfg) == 0 {
		return
	}
	for _, n := range doctree.SelectAll(root, doctree.KindAbbreviation) {
		if n.Title != "" {
			continue
		}
		if title, ok := cfg[doctree.ToText(n)]; ok && title != "" {
			n.Title = title
		}
	}
}

// Replace wraps every unprotected occurrence of a configured key in an abbreviation node.
//
// Scanning is leftmost-first. When several keys match at the same offset the
// longest one wins, and equal lengths fall back to byte order. Keys shorter
// than two characters are ignored.
func Replace(root *doctree.Node, cfg Config) {
	keys := matchKeys(cfg)
	if root == nil || len(keys) == 0 {
		return
	}
	m := &matcher{keys: keys, cfg: cfg}
	m.visit(root)
}

func matchKeys(cfg Config) []string {
	keys := make([]string, 0, len(cfg))
	for k := range cfg {
		if utf8.RuneCountInString(k) > 1 {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}

type matcher struct {
	keys []string
	cfg  Config
}

func (m *matcher) visit(n *doctree.Node) {
	if protected[n.Kind] || len(n.Children) == 0 {
		return
	}

	var out []*doctree.Node
	changed := false
	for _, c := range n.Children {
		if c.Kind != doctree.KindText {
			m.visit(c)
			out = append(out, c)
			continue
		}
		parts := m.split(c.Value)
		if parts == nil {
			out = append(out, c)
			continue
		}
		out = append(out, parts...)
		changed = true
	}
	if changed {
		n.Children = out
	}
}

// split returns the fragments replacing a text node, or nil when nothing matched.
func (m *matcher) split(s string) []*doctree.Node {
	var parts []*doctree.Node
	for s != "" {
		at, key := m.find(s)
		if at < 0 {
			break
		}
		if at > 0 {
			parts = append(parts, doctree.NewText(s[:at]))
		}
		parts = append(parts, doctree.NewAbbreviation(m.cfg[key], key))
		s = s[at+len(key):]
	}
	if parts == nil {
		return nil
	}
	if s != "" {
		parts = append(parts, doctree.NewText(s))
	}
	return parts
}

func (m *matcher) find(s string) (int, string) {
	best, bestKey := -1, ""
	for _, k := range m.keys {
		i := strings.Index(s, k)
		if i < 0 {
			continue
		}
		// keys are ordered longest first, so only a strictly earlier hit wins.
		if best < 0 || i < best {
			best, bestKey = i, k
		}
	}
	return best, bestKey
}
