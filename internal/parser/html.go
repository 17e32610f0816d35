package parser

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/dgallion1/doctex/internal/doctree"
	"golang.org/x/net/html"
)

// HTMLParser handles HTML files.
type HTMLParser struct{}

func (p *HTMLParser) Parse(r io.Reader, filename string) (*doctree.Tree, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	tree := &doctree.Tree{Title: titleFromFilename(filename)}

	// Extract title from <title> tag if present.
	if title := findTitle(doc); title != "" {
		tree.Title = normalize(title)
	}

	// Find <body> or use whole document.
	start := findBody(doc)
	if start == nil {
		start = doc
	}
	tree.Root = doctree.New(doctree.KindRoot, blockChildren(start)...)
	return tree, nil
}

var inlineTags = map[string]doctree.Kind{
	"em":     doctree.KindEmphasis,
	"i":      doctree.KindEmphasis,
	"strong": doctree.KindStrong,
	"b":      doctree.KindStrong,
	"u":      doctree.KindUnderline,
	"del":    doctree.KindDelete,
	"s":      doctree.KindDelete,
	"strike": doctree.KindDelete,
	"sub":    doctree.KindSubscript,
	"sup":    doctree.KindSuperscript,
}

var spaces = regexp.MustCompile(`\s+`)

// convertHTML maps one HTML node to zero or more tree nodes.
func convertHTML(n *html.Node) []*doctree.Node {
	switch n.Type {
	case html.TextNode:
		v := spaces.ReplaceAllString(n.Data, " ")
		if v == "" {
			return nil
		}
		return one(doctree.NewText(normalize(v)))
	case html.ElementNode:
	default:
		return inlineChildren(n)
	}

	if level := headingLevel(n.Data); level > 0 {
		return one(&doctree.Node{
			Kind:       doctree.KindHeading,
			Depth:      level,
			Enumerated: true,
			Identifier: attr(n, "id"),
			Children:   trimInline(inlineChildren(n)),
		})
	}
	if kind, ok := inlineTags[n.Data]; ok {
		return one(doctree.New(kind, inlineChildren(n)...))
	}

	switch n.Data {
	case "script", "style", "nav", "footer", "header", "head", "noscript":
		return nil
	case "p":
		return one(doctree.New(doctree.KindParagraph, trimInline(inlineChildren(n))...))
	case "br":
		return one(doctree.New(doctree.KindBreak))
	case "hr":
		return one(doctree.New(doctree.KindThematicBreak))
	case "code":
		return one(&doctree.Node{Kind: doctree.KindInlineCode, Value: normalize(textContent(n))})
	case "pre":
		return one(preBlock(n))
	case "a":
		href := attr(n, "href")
		if id, ok := strings.CutPrefix(href, "#"); ok && id != "" {
			return one(&doctree.Node{Kind: doctree.KindCrossReference, Identifier: id, Children: inlineChildren(n)})
		}
		return one(&doctree.Node{Kind: doctree.KindLink, URL: href, Title: attr(n, "title"), Children: inlineChildren(n)})
	case "abbr":
		return one(&doctree.Node{Kind: doctree.KindAbbreviation, Title: attr(n, "title"), Children: inlineChildren(n)})
	case "img":
		return one(&doctree.Node{
			Kind:  doctree.KindImage,
			URL:   attr(n, "src"),
			Title: attr(n, "alt"),
			Width: imgWidth(attr(n, "width")),
		})
	case "ul", "ol":
		list := &doctree.Node{Kind: doctree.KindList, Ordered: n.Data == "ol"}
		if s, err := strconv.Atoi(attr(n, "start")); err == nil {
			list.Start = s
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && c.Data == "li" {
				list.Children = append(list.Children, doctree.New(doctree.KindListItem, blockChildren(c)...))
			}
		}
		return one(list)
	case "blockquote":
		return one(doctree.New(doctree.KindBlockquote, blockChildren(n)...))
	case "figure":
		return one(&doctree.Node{
			Kind:          doctree.KindContainer,
			ContainerKind: doctree.ContainerFigure,
			Enumerated:    true,
			Identifier:    attr(n, "id"),
			Class:         attr(n, "class"),
			Children:      wrapInline(inlineChildren(n), true),
		})
	case "figcaption":
		return one(doctree.New(doctree.KindCaption, blockChildren(n)...))
	case "table":
		return one(htmlTable(n))
	}
	// div, section, span and friends contribute their content.
	return inlineChildren(n)
}

func inlineChildren(n *html.Node) []*doctree.Node {
	var out []*doctree.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, convertHTML(c)...)
	}
	return mergeText(out)
}

// blockChildren converts the children of n and wraps loose inline runs in
// paragraphs. Whitespace-only runs are dropped.
func blockChildren(n *html.Node) []*doctree.Node {
	return wrapInline(inlineChildren(n), false)
}

// wrapInline groups inline runs of nodes into paragraphs. With bareImages set,
// images stay direct children so figures keep them next to their caption.
func wrapInline(nodes []*doctree.Node, bareImages bool) []*doctree.Node {
	var out, run []*doctree.Node
	flush := func() {
		run = trimInline(run)
		if len(run) > 0 {
			out = append(out, doctree.New(doctree.KindParagraph, run...))
		}
		run = nil
	}
	for _, c := range nodes {
		if c.Kind.IsBlock() || (bareImages && c.Kind == doctree.KindImage) {
			flush()
			out = append(out, c)
			continue
		}
		run = append(run, c)
	}
	flush()
	return out
}

// trimInline strips leading and trailing whitespace from an inline run.
func trimInline(nodes []*doctree.Node) []*doctree.Node {
	for len(nodes) > 0 && nodes[0].Kind == doctree.KindText {
		nodes[0].Value = strings.TrimLeft(nodes[0].Value, " ")
		if nodes[0].Value != "" {
			break
		}
		nodes = nodes[1:]
	}
	for len(nodes) > 0 && nodes[len(nodes)-1].Kind == doctree.KindText {
		last := nodes[len(nodes)-1]
		last.Value = strings.TrimRight(last.Value, " ")
		if last.Value != "" {
			break
		}
		nodes = nodes[:len(nodes)-1]
	}
	return nodes
}

func preBlock(n *html.Node) *doctree.Node {
	code := &doctree.Node{Kind: doctree.KindCode, Value: textContentRaw(n)}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.Data != "code" {
			continue
		}
		for _, cls := range strings.Fields(attr(c, "class")) {
			if lang, ok := strings.CutPrefix(cls, "language-"); ok {
				code.Lang = lang
			}
		}
	}
	return code
}

func htmlTable(n *html.Node) *doctree.Node {
	table := doctree.New(doctree.KindTable)
	var rows func(*html.Node)
	rows = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.Data {
			case "thead", "tbody", "tfoot":
				rows(c)
			case "tr":
				row := doctree.New(doctree.KindTableRow)
				for cell := c.FirstChild; cell != nil; cell = cell.NextSibling {
					if cell.Type != html.ElementNode || (cell.Data != "td" && cell.Data != "th") {
						continue
					}
					row.Children = append(row.Children, &doctree.Node{
						Kind:     doctree.KindTableCell,
						Header:   cell.Data == "th",
						Align:    attr(cell, "align"),
						Children: trimInline(inlineChildren(cell)),
					})
				}
				table.Children = append(table.Children, row)
			}
		}
	}
	rows(n)
	return table
}

// imgWidth keeps explicit units and treats a bare number as pixels.
func imgWidth(w string) string {
	if _, err := strconv.Atoi(w); err == nil {
		return w + "px"
	}
	return w
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func headingLevel(tag string) int {
	switch tag {
	case "h1":
		return 1
	case "h2":
		return 2
	case "h3":
		return 3
	case "h4":
		return 4
	case "h5":
		return 5
	case "h6":
		return 6
	}
	return 0
}

func textContent(n *html.Node) string {
	return strings.TrimSpace(textContentRaw(n))
}

func textContentRaw(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return buf.String()
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		return textContent(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
