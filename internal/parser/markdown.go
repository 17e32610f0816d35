package parser

import (
	"bytes"
	"io"
	"strconv"
	"strings"

	"github.com/dgallion1/doctex/internal/doctree"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	gparser "github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// MarkdownParser handles Markdown files using goldmark. A leading YAML
// frontmatter block is decoded into the tree metadata.
type MarkdownParser struct{}

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.Table, extension.Strikethrough, extension.Footnote),
	goldmark.WithParserOptions(gparser.WithAutoHeadingID()),
)

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*doctree.Tree, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	meta, body, err := splitFrontmatter(src)
	if err != nil {
		return nil, err
	}

	doc := markdown.Parser().Parse(text.NewReader(body))
	c := &mdConverter{src: body}

	tree := &doctree.Tree{
		Title: titleFromFilename(filename),
		Root:  doctree.New(doctree.KindRoot, c.children(doc)...),
		Meta:  meta,
	}
	if meta.Title != "" {
		tree.Title = meta.Title
	}
	return tree, nil
}

type mdConverter struct {
	src []byte
}

func (c *mdConverter) children(n ast.Node) []*doctree.Node {
	var out []*doctree.Node
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		out = append(out, c.convert(child)...)
	}
	return mergeText(out)
}

func (c *mdConverter) convert(n ast.Node) []*doctree.Node {
	switch node := n.(type) {
	case *ast.Paragraph, *ast.TextBlock:
		return one(doctree.New(doctree.KindParagraph, c.children(n)...))

	case *ast.Heading:
		h := &doctree.Node{
			Kind:       doctree.KindHeading,
			Depth:      node.Level,
			Enumerated: true,
			Children:   c.children(n),
		}
		if id, ok := node.AttributeString("id"); ok {
			if b, ok := id.([]byte); ok {
				h.Identifier = string(b)
			}
		}
		return one(h)

	case *ast.ThematicBreak:
		return one(doctree.New(doctree.KindThematicBreak))

	case *ast.FencedCodeBlock:
		lang := string(node.Language(c.src))
		value := c.lines(n)
		if lang == "math" {
			return one(&doctree.Node{Kind: doctree.KindMath, Value: value})
		}
		return one(&doctree.Node{Kind: doctree.KindCode, Lang: lang, Value: value})

	case *ast.CodeBlock:
		return one(&doctree.Node{Kind: doctree.KindCode, Value: c.lines(n)})

	case *ast.Blockquote:
		return one(doctree.New(doctree.KindBlockquote, c.children(n)...))

	case *ast.List:
		return one(&doctree.Node{
			Kind:     doctree.KindList,
			Ordered:  node.IsOrdered(),
			Start:    node.Start,
			Children: c.children(n),
		})

	case *ast.ListItem:
		return one(doctree.New(doctree.KindListItem, c.children(n)...))

	case *ast.HTMLBlock:
		v := c.lines(n)
		if node.HasClosure() {
			v += string(node.ClosureLine.Value(c.src))
		}
		return one(&doctree.Node{Kind: doctree.KindHTML, Value: v})

	case *ast.Text:
		raw := node.Segment.Value(c.src)
		v := normalize(string(util.ResolveEntityNames(util.ResolveNumericReferences(util.UnescapePunctuations(raw)))))
		out := []*doctree.Node{doctree.NewText(v)}
		switch {
		case node.HardLineBreak():
			out = append(out, doctree.New(doctree.KindBreak))
		case node.SoftLineBreak():
			out[0].Value += "\n"
		}
		return out

	case *ast.String:
		return one(doctree.NewText(normalize(string(node.Value))))

	case *ast.CodeSpan:
		var b bytes.Buffer
		for ch := n.FirstChild(); ch != nil; ch = ch.NextSibling() {
			switch t := ch.(type) {
			case *ast.Text:
				b.Write(t.Segment.Value(c.src))
			case *ast.String:
				b.Write(t.Value)
			}
		}
		return one(&doctree.Node{Kind: doctree.KindInlineCode, Value: b.String()})

	case *ast.Emphasis:
		kind := doctree.KindEmphasis
		if node.Level >= 2 {
			kind = doctree.KindStrong
		}
		return one(doctree.New(kind, c.children(n)...))

	case *ast.Link:
		return one(&doctree.Node{
			Kind:     doctree.KindLink,
			URL:      string(node.Destination),
			Title:    string(node.Title),
			Children: c.children(n),
		})

	case *ast.AutoLink:
		url := string(node.URL(c.src))
		return one(&doctree.Node{
			Kind:     doctree.KindLink,
			URL:      url,
			Children: []*doctree.Node{doctree.NewText(string(node.Label(c.src)))},
		})

	case *ast.Image:
		return one(&doctree.Node{
			Kind:  doctree.KindImage,
			URL:   string(node.Destination),
			Title: c.plain(n),
		})

	case *ast.RawHTML:
		var b strings.Builder
		for i := 0; i < node.Segments.Len(); i++ {
			seg := node.Segments.At(i)
			b.Write(seg.Value(c.src))
		}
		return one(&doctree.Node{Kind: doctree.KindHTML, Value: b.String()})

	case *east.Strikethrough:
		return one(doctree.New(doctree.KindDelete, c.children(n)...))

	case *east.Table:
		return one(doctree.New(doctree.KindTable, c.children(n)...))

	case *east.TableHeader, *east.TableRow:
		row := doctree.New(doctree.KindTableRow, c.children(n)...)
		if _, ok := n.(*east.TableHeader); ok {
			for _, cell := range row.Children {
				cell.Header = true
			}
		}
		return one(row)

	case *east.TableCell:
		return one(&doctree.Node{
			Kind:     doctree.KindTableCell,
			Align:    alignment(node.Alignment),
			Children: c.children(n),
		})

	case *east.FootnoteLink:
		return one(&doctree.Node{Kind: doctree.KindFootnoteReference, Identifier: strconv.Itoa(node.Index)})

	case *east.FootnoteList:
		return c.children(n)

	case *east.Footnote:
		return one(&doctree.Node{
			Kind:       doctree.KindFootnoteDefinition,
			Identifier: strconv.Itoa(node.Index),
			Children:   c.children(n),
		})

	case *east.FootnoteBacklink:
		return nil
	}

	// Unknown goldmark nodes keep their content.
	return c.children(n)
}

// lines joins the raw source lines of a block node.
func (c *mdConverter) lines(n ast.Node) string {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		buf.Write(line.Value(c.src))
	}
	return buf.String()
}

// plain flattens the inline content of n to text.
func (c *mdConverter) plain(n ast.Node) string {
	return doctree.ToText(doctree.New(doctree.KindBlock, c.children(n)...))
}

func alignment(a east.Alignment) string {
	switch a {
	case east.AlignLeft:
		return "left"
	case east.AlignCenter:
		return "center"
	case east.AlignRight:
		return "right"
	}
	return ""
}

func one(n *doctree.Node) []*doctree.Node { return []*doctree.Node{n} }

// mergeText joins runs of adjacent text nodes so that matching over text is
// not split at goldmark's segment boundaries.
func mergeText(nodes []*doctree.Node) []*doctree.Node {
	out := nodes[:0]
	for _, n := range nodes {
		if n.Kind == doctree.KindText && len(out) > 0 && out[len(out)-1].Kind == doctree.KindText {
			out[len(out)-1].Value += n.Value
			continue
		}
		out = append(out, n)
	}
	return out
}
