package doctree

// Kind discriminates document nodes. Built-in kinds are listed below; callers
// may use any other string for their own node types and register a handler for it.
type Kind string

const (
	KindRoot               Kind = "root"
	KindBlock              Kind = "block"
	KindParagraph          Kind = "paragraph"
	KindHeading            Kind = "heading"
	KindText               Kind = "text"
	KindEmphasis           Kind = "emphasis"
	KindStrong             Kind = "strong"
	KindUnderline          Kind = "underline"
	KindDelete             Kind = "delete"
	KindSubscript          Kind = "subscript"
	KindSuperscript        Kind = "superscript"
	KindSmallcaps          Kind = "smallcaps"
	KindInlineCode         Kind = "inlineCode"
	KindCode               Kind = "code"
	KindLink               Kind = "link"
	KindCrossReference     Kind = "crossReference"
	KindCite               Kind = "cite"
	KindCiteGroup          Kind = "citeGroup"
	KindAbbreviation       Kind = "abbreviation"
	KindList               Kind = "list"
	KindListItem           Kind = "listItem"
	KindBlockquote         Kind = "blockquote"
	KindThematicBreak      Kind = "thematicBreak"
	KindBreak              Kind = "break"
	KindMath               Kind = "math"
	KindInlineMath         Kind = "inlineMath"
	KindImage              Kind = "image"
	KindContainer          Kind = "container"
	KindCaption            Kind = "caption"
	KindLegend             Kind = "legend"
	KindTable              Kind = "table"
	KindTableRow           Kind = "tableRow"
	KindTableCell          Kind = "tableCell"
	KindComment            Kind = "comment"
	KindAdmonition         Kind = "admonition"
	KindAdmonitionTitle    Kind = "admonitionTitle"
	KindFootnoteReference  Kind = "footnoteReference"
	KindFootnoteDefinition Kind = "footnoteDefinition"
	KindHTML               Kind = "html"
)

// Container kinds, stored in Node.ContainerKind.
const (
	ContainerFigure = "figure"
	ContainerTable  = "table"
)

var blockKinds = map[Kind]bool{
	KindRoot:               true,
	KindBlock:              true,
	KindParagraph:          true,
	KindHeading:            true,
	KindCode:               true,
	KindList:               true,
	KindListItem:           true,
	KindBlockquote:         true,
	KindThematicBreak:      true,
	KindMath:               true,
	KindContainer:          true,
	KindCaption:            true,
	KindLegend:             true,
	KindTable:              true,
	KindTableRow:           true,
	KindComment:            true,
	KindAdmonition:         true,
	KindFootnoteDefinition: true,
	KindHTML:               true,
}

var inlineKinds = map[Kind]bool{
	KindText:              true,
	KindEmphasis:          true,
	KindStrong:            true,
	KindUnderline:         true,
	KindDelete:            true,
	KindSubscript:         true,
	KindSuperscript:       true,
	KindSmallcaps:         true,
	KindInlineCode:        true,
	KindLink:              true,
	KindCrossReference:    true,
	KindCite:              true,
	KindCiteGroup:         true,
	KindAbbreviation:      true,
	KindBreak:             true,
	KindInlineMath:        true,
	KindImage:             true,
	KindTableCell:         true,
	KindAdmonitionTitle:   true,
	KindFootnoteReference: true,
}

// IsBlock reports whether nodes of this kind occupy their own block in the output.
func (k Kind) IsBlock() bool { return blockKinds[k] }

// Known reports whether k is one of the built-in kinds.
func (k Kind) Known() bool { return blockKinds[k] || inlineKinds[k] }

func (k Kind) String() string { return string(k) }

// Node is a single node of a parsed document tree. Which attribute fields are
// meaningful depends on Kind; unused fields stay at their zero value.
type Node struct {
	Kind     Kind    `json:"type"`
	Children []*Node `json:"children,omitempty"`

	Value      string `json:"value,omitempty"`      // text, code, math, comment, html
	Title      string `json:"title,omitempty"`      // abbreviation, link, image
	URL        string `json:"url,omitempty"`        // link, image
	Identifier string `json:"identifier,omitempty"` // heading, container, math, crossReference, footnotes
	Label      string `json:"label,omitempty"`      // cite
	Lang       string `json:"lang,omitempty"`       // code

	Depth      int    `json:"depth,omitempty"` // heading
	Ordered    bool   `json:"ordered,omitempty"`
	Start      int    `json:"start,omitempty"`
	Enumerated bool   `json:"enumerated,omitempty"`
	Header     bool   `json:"header,omitempty"` // tableCell
	Align      string `json:"align,omitempty"`
	Width      string `json:"width,omitempty"` // image, "50%" or "400px"
	Class      string `json:"class,omitempty"`

	ContainerKind string `json:"kind,omitempty"`
}

// New builds a node of the given kind with children.
func New(kind Kind, children ...*Node) *Node {
	return &Node{Kind: kind, Children: children}
}

// NewText builds a text node.
func NewText(value string) *Node {
	return &Node{Kind: KindText, Value: value}
}

// NewAbbreviation builds an abbreviation node wrapping a single text node.
func NewAbbreviation(title, text string) *Node {
	return &Node{Kind: KindAbbreviation, Title: title, Children: []*Node{NewText(text)}}
}

// Tree is a parsed document together with the metadata found alongside it.
type Tree struct {
	Title string // Document title (from metadata or filename)
	Root  *Node
	Meta  Frontmatter
}

// Frontmatter holds the document-level settings the transforms consume.
type Frontmatter struct {
	Title         string            `yaml:"title" json:"title,omitempty"`
	Abbreviations map[string]string `yaml:"abbreviations" json:"abbreviations,omitempty"`
	Math          map[string]string `yaml:"math" json:"math,omitempty"`
}
