package tex

import (
	"math"
	"strconv"
	"strings"

	"github.com/dgallion1/doctex/internal/doctree"
)

var defaultHandlers map[doctree.Kind]Handler

func init() {
	defaultHandlers = map[doctree.Kind]Handler{
		doctree.KindRoot:               renderBlock,
		doctree.KindBlock:              renderBlock,
		doctree.KindParagraph:          renderParagraph,
		doctree.KindHeading:            renderHeading,
		doctree.KindText:               renderText,
		doctree.KindEmphasis:           command(`\textit`),
		doctree.KindStrong:             command(`\textbf`),
		doctree.KindUnderline:          command(`\underline`),
		doctree.KindDelete:             command(`\sout`, "ulem"),
		doctree.KindSubscript:          command(`\textsubscript`),
		doctree.KindSuperscript:        command(`\textsuperscript`),
		doctree.KindSmallcaps:          command(`\textsc`),
		doctree.KindInlineCode:         renderInlineCode,
		doctree.KindCode:               renderCode,
		doctree.KindLink:               renderLink,
		doctree.KindCrossReference:     renderCrossReference,
		doctree.KindCite:               renderCite,
		doctree.KindCiteGroup:          renderCiteGroup,
		doctree.KindAbbreviation:       renderInline,
		doctree.KindList:               renderList,
		doctree.KindListItem:           renderListItem,
		doctree.KindBlockquote:         renderBlockquote,
		doctree.KindThematicBreak:      renderThematicBreak,
		doctree.KindBreak:              renderBreak,
		doctree.KindMath:               renderMath,
		doctree.KindInlineMath:         renderInlineMath,
		doctree.KindImage:              renderImage,
		doctree.KindContainer:          renderContainer,
		doctree.KindCaption:            renderCaption,
		doctree.KindLegend:             renderBlock,
		doctree.KindTable:              renderTable,
		doctree.KindTableRow:           renderTableRow,
		doctree.KindTableCell:          renderTableCell,
		doctree.KindComment:            renderComment,
		doctree.KindAdmonition:         renderAdmonition,
		doctree.KindAdmonitionTitle:    renderAdmonitionTitle,
		doctree.KindFootnoteReference:  renderFootnoteReference,
		doctree.KindFootnoteDefinition: func(*doctree.Node, *State, *doctree.Node) {},
		doctree.KindHTML:               func(*doctree.Node, *State, *doctree.Node) {},
	}
}

// DefaultHandlers returns a copy of the built-in handler table.
func DefaultHandlers() map[doctree.Kind]Handler {
	out := make(map[doctree.Kind]Handler, len(defaultHandlers))
	for k, h := range defaultHandlers {
		out[k] = h
	}
	return out
}

func renderBlock(node *doctree.Node, s *State, _ *doctree.Node) {
	s.RenderChildren(node, false, "")
}

func renderInline(node *doctree.Node, s *State, _ *doctree.Node) {
	s.RenderChildren(node, true, "")
}

func renderText(node *doctree.Node, s *State, _ *doctree.Node) {
	s.Text(node.Value, false)
}

// A blank line would end the cell, so paragraphs in tables stay inline.
func renderParagraph(node *doctree.Node, s *State, _ *doctree.Node) {
	s.RenderChildren(node, s.InTable(), "")
}

// command renders children as the argument of a one-argument macro.
func command(name string, packages ...string) Handler {
	return func(node *doctree.Node, s *State, _ *doctree.Node) {
		s.UsePackages(packages...)
		s.Write(name + "{")
		s.RenderChildren(node, true, "")
		s.Write("}")
	}
}

var headingCommands = []string{`\section`, `\subsection`, `\subsubsection`, `\paragraph`, `\subparagraph`}

func renderHeading(node *doctree.Node, s *State, _ *doctree.Node) {
	depth := min(max(node.Depth, 1), len(headingCommands))
	cmd := headingCommands[depth-1]
	if !node.Enumerated {
		cmd += "*"
	}
	s.EnsureNewLine(false)
	s.Write(cmd + "{")
	s.RenderChildren(node, true, "")
	s.Write("}")
	if node.Enumerated && node.Identifier != "" {
		s.Write(`\label{` + s.localizeID(node.Identifier) + `}`)
	}
	s.CloseBlock(node)
}

func renderInlineCode(node *doctree.Node, s *State, _ *doctree.Node) {
	s.Write(`\texttt{`)
	s.Text(node.Value, false)
	s.Write("}")
}

func renderCode(node *doctree.Node, s *State, _ *doctree.Node) {
	if s.InTable() {
		renderInlineCode(node, s, nil)
		return
	}
	env, params := "verbatim", ""
	if node.Lang != "" {
		env, params = "lstlisting", "language="+node.Lang
		s.UsePackages("listings")
	}
	s.EnsureNewLine(false)
	s.Write(`\begin{` + env + `}`)
	if params != "" {
		s.Write("[" + params + "]")
	}
	s.Write("\n" + strings.TrimRight(node.Value, "\n") + "\n")
	s.Write(`\end{` + env + `}`)
	s.CloseBlock(node)
}

func renderLink(node *doctree.Node, s *State, _ *doctree.Node) {
	s.UsePackages("hyperref")
	url := urlReplacer.Replace(s.localizeLink(node.URL))
	if len(node.Children) == 0 || doctree.ToText(node) == node.URL {
		s.Write(`\url{` + url + `}`)
		return
	}
	s.Write(`\href{` + url + `}{`)
	s.RenderChildren(node, true, "")
	s.Write("}")
}

func renderCrossReference(node *doctree.Node, s *State, _ *doctree.Node) {
	id := s.localizeID(node.Identifier)
	if len(node.Children) == 0 {
		s.Write(`\ref{` + id + `}`)
		return
	}
	s.UsePackages("hyperref")
	s.Write(`\hyperref[` + id + `]{`)
	s.RenderChildren(node, true, "")
	s.Write("}")
}

func renderCite(node *doctree.Node, s *State, _ *doctree.Node) {
	s.Write(`\cite{` + node.Label + `}`)
}

func renderCiteGroup(node *doctree.Node, s *State, _ *doctree.Node) {
	var labels []string
	for _, c := range node.Children {
		if c.Kind == doctree.KindCite && c.Label != "" {
			labels = append(labels, c.Label)
		}
	}
	s.Write(`\cite{` + strings.Join(labels, ",") + `}`)
}

func renderList(node *doctree.Node, s *State, _ *doctree.Node) {
	if !node.Ordered {
		s.RenderEnvironment(node, "itemize", EnvOptions{})
		return
	}
	var opts EnvOptions
	if node.Start > 1 {
		s.UsePackages("enumitem")
		opts.Parameters = "start=" + strconv.Itoa(node.Start)
	}
	s.RenderEnvironment(node, "enumerate", opts)
}

func renderListItem(node *doctree.Node, s *State, _ *doctree.Node) {
	s.EnsureNewLine(false)
	s.Write(`\item `)
	for i, c := range node.Children {
		if c.Kind == doctree.KindParagraph {
			if i > 0 {
				s.EnsureNewLine(true)
				s.Write("\n")
			}
			s.RenderChildren(c, true, "")
			continue
		}
		s.Render(c, node)
	}
	s.EnsureNewLine(false)
}

func renderBlockquote(node *doctree.Node, s *State, _ *doctree.Node) {
	s.RenderEnvironment(node, "quote", EnvOptions{})
}

func renderThematicBreak(node *doctree.Node, s *State, _ *doctree.Node) {
	s.EnsureNewLine(false)
	s.Write(`\bigskip\centerline{\rule{13cm}{0.4pt}}\bigskip`)
	s.CloseBlock(node)
}

func renderBreak(_ *doctree.Node, s *State, _ *doctree.Node) {
	if s.InTable() {
		s.Write(`\newline `)
		return
	}
	s.Write(`\\` + "\n")
}

func renderMath(node *doctree.Node, s *State, _ *doctree.Node) {
	s.UsePackages("amsmath")
	s.useMathMacros(node.Value)
	env := "equation"
	if !node.Enumerated {
		env += "*"
	}
	s.EnsureNewLine(false)
	s.Write(`\begin{` + env + "}\n")
	if node.Enumerated && node.Identifier != "" {
		s.Write(`\label{` + s.localizeID(node.Identifier) + "}\n")
	}
	s.Text(strings.TrimSpace(node.Value), true)
	s.Write("\n" + `\end{` + env + `}`)
	s.CloseBlock(node)
}

func renderInlineMath(node *doctree.Node, s *State, _ *doctree.Node) {
	s.useMathMacros(node.Value)
	s.Write("$")
	s.Text(node.Value, true)
	s.Write("$")
}

func renderImage(node *doctree.Node, s *State, parent *doctree.Node) {
	s.UsePackages("graphicx")
	s.Write(`\includegraphics[width=` + imageWidth(node.Width) + `\linewidth]{` + s.localizeImageSrc(node.URL) + `}`)
	if parent != nil && parent.Kind == doctree.KindContainer {
		s.EnsureNewLine(false)
	}
}

// imageWidth converts "50%" or "400px" into a fraction of the line width.
func imageWidth(w string) string {
	f := DefaultImageWidth
	w = strings.TrimSpace(w)
	switch {
	case strings.HasSuffix(w, "%"):
		if v, err := strconv.ParseFloat(strings.TrimSuffix(w, "%"), 64); err == nil {
			f = v / 100
		}
	case strings.HasSuffix(w, "px"):
		if v, err := strconv.ParseFloat(strings.TrimSuffix(w, "px"), 64); err == nil {
			f = v / DefaultPageWidthPixels
		}
	}
	if f <= 0 {
		f = DefaultImageWidth
	}
	f = min(f, 1)
	return strconv.FormatFloat(f, 'f', -1, 64)
}

var longFigureClasses = map[string]bool{"fullpage": true, "full-width": true, "w-page": true}

func isLongFigure(node *doctree.Node) bool {
	for _, c := range strings.Fields(node.Class) {
		if longFigureClasses[c] {
			return true
		}
	}
	return false
}

func renderContainer(node *doctree.Node, s *State, parent *doctree.Node) {
	if s.InTable() {
		// Floats cannot appear inside a tabular.
		s.RenderChildren(node, true, "")
		return
	}
	env := "figure"
	if node.ContainerKind == doctree.ContainerTable {
		env = "table"
	}
	opts := EnvOptions{Parameters: defaultFigurePlacement, Leading: `\centering`}
	nested := s.Context().InFloat
	if nested {
		// Floats do not nest; inner containers become subfigures or subtables.
		s.UsePackages("subcaption")
		env = "sub" + env
		opts = EnvOptions{Arguments: []string{subfloatWidth(node, parent) + `\linewidth`}, Leading: `\centering`}
	}
	long := !nested && isLongFigure(node)
	s.WithContext(func(c Context) Context {
		c.LongFigure = long
		c.InFloat = true
		return c
	}, func() {
		s.WithCaption(node.Enumerated, node.Identifier, func() {
			s.RenderEnvironment(node, env, opts)
		})
	})
}

// subfloatWidth is the node's own width, else the line shared evenly among
// the container siblings.
func subfloatWidth(node, parent *doctree.Node) string {
	if node.Width != "" {
		return imageWidth(node.Width)
	}
	n := 1
	if parent != nil {
		n = 0
		for _, c := range parent.Children {
			if c.Kind == doctree.KindContainer {
				n++
			}
		}
	}
	return strconv.FormatFloat(math.Floor(95/float64(n))/100, 'f', -1, 64)
}

func renderCaption(node *doctree.Node, s *State, _ *doctree.Node) {
	c := s.TakeCaption()
	cmd := `\caption`
	if !c.Numbered {
		s.UsePackages("caption")
		cmd += "*"
	}
	s.EnsureNewLine(false)
	s.Write(cmd + "{")
	for _, child := range node.Children {
		if child.Kind == doctree.KindParagraph {
			s.RenderChildren(child, true, "")
			continue
		}
		s.Render(child, node)
	}
	s.TrimEnd()
	if c.Numbered && c.ID != "" {
		s.Write(`\label{` + s.localizeID(c.ID) + `}`)
	}
	s.Write("}")
	s.EnsureNewLine(false)
}

func renderTable(node *doctree.Node, s *State, _ *doctree.Node) {
	s.UsePackages("booktabs")
	s.WithContext(func(c Context) Context {
		c.InTable = true
		return c
	}, func() {
		s.EnsureNewLine(false)
		s.Write(`\begin{tabular}{` + columnSpec(node) + "}\n")
		s.Write(`\toprule` + "\n")
		for _, row := range node.Children {
			s.Render(row, node)
			if row.Kind == doctree.KindTableRow && isHeaderRow(row) {
				s.Write(`\midrule` + "\n")
			}
		}
		s.Write(`\bottomrule` + "\n")
		s.Write(`\end{tabular}`)
	})
	s.CloseBlock(node)
}

func columnSpec(table *doctree.Node) string {
	var widest *doctree.Node
	for _, row := range table.Children {
		if widest == nil || len(row.Children) > len(widest.Children) {
			widest = row
		}
	}
	if widest == nil {
		return "l"
	}
	var b strings.Builder
	for _, cell := range widest.Children {
		switch cell.Align {
		case "center":
			b.WriteByte('c')
		case "right":
			b.WriteByte('r')
		default:
			b.WriteByte('l')
		}
	}
	if b.Len() == 0 {
		return "l"
	}
	return b.String()
}

func isHeaderRow(row *doctree.Node) bool {
	if len(row.Children) == 0 {
		return false
	}
	for _, c := range row.Children {
		if !c.Header {
			return false
		}
	}
	return true
}

func renderTableRow(node *doctree.Node, s *State, _ *doctree.Node) {
	s.RenderChildren(node, true, " & ")
	s.Write(` \\` + "\n")
}

func renderTableCell(node *doctree.Node, s *State, _ *doctree.Node) {
	if node.Header {
		s.Write(`\textbf{`)
		s.RenderChildren(node, true, "")
		s.Write("}")
		return
	}
	s.RenderChildren(node, true, "")
}

func renderComment(node *doctree.Node, s *State, _ *doctree.Node) {
	s.EnsureNewLine(false)
	for _, line := range strings.Split(strings.TrimRight(node.Value, "\n"), "\n") {
		s.Write("% " + line + "\n")
	}
}

func renderAdmonition(node *doctree.Node, s *State, _ *doctree.Node) {
	s.UsePackages("framed")
	s.RenderEnvironment(node, "framed", EnvOptions{})
}

func renderAdmonitionTitle(node *doctree.Node, s *State, _ *doctree.Node) {
	s.Write(`\textbf{`)
	s.RenderChildren(node, true, "")
	s.Write("}\n\n")
}

func renderFootnoteReference(node *doctree.Node, s *State, _ *doctree.Node) {
	def, ok := s.footnotes[node.Identifier]
	if !ok {
		s.log.Warn("footnote without definition", "identifier", node.Identifier)
		return
	}
	s.Write(`\footnote{`)
	for i, c := range def.Children {
		if i > 0 {
			s.Write(" ")
		}
		if c.Kind == doctree.KindParagraph {
			s.RenderChildren(c, true, "")
			continue
		}
		s.Render(c, def)
	}
	s.TrimEnd()
	s.Write("}")
}
