package parser

import (
	"bytes"
	"fmt"

	"github.com/dgallion1/doctex/internal/doctree"
	"gopkg.in/yaml.v3"
)

// splitFrontmatter separates a leading YAML block delimited by "---" lines
// from the document body. Input without such a block is returned unchanged.
func splitFrontmatter(src []byte) (doctree.Frontmatter, []byte, error) {
	var meta doctree.Frontmatter

	src = bytes.TrimPrefix(src, []byte("\ufeff"))
	first, rest, ok := cutLine(src)
	if !ok || string(bytes.TrimRight(first, " \t\r")) != "---" {
		return meta, src, nil
	}

	var block []byte
	for len(rest) > 0 {
		line, next, _ := cutLine(rest)
		switch string(bytes.TrimRight(line, " \t\r")) {
		case "---", "...":
			if err := yaml.Unmarshal(block, &meta); err != nil {
				return meta, src, fmt.Errorf("parse frontmatter: %w", err)
			}
			return meta, next, nil
		}
		block = append(block, line...)
		block = append(block, '\n')
		rest = next
	}
	// No closing delimiter: treat the whole input as body.
	return doctree.Frontmatter{}, src, nil
}

// cutLine returns the first line of b without its newline and the remainder.
// ok is false when b is empty.
func cutLine(b []byte) (line, rest []byte, ok bool) {
	if len(b) == 0 {
		return nil, nil, false
	}
	if i := bytes.IndexByte(b, '\n'); i >= 0 {
		return b[:i], b[i+1:], true
	}
	return b, nil, true
}
