package tex

import (
	"errors"
	"strings"
	"testing"

	"github.com/dgallion1/doctex/internal/doctree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func root(children ...*doctree.Node) *doctree.Node {
	return doctree.New(doctree.KindRoot, children...)
}

func paragraph(text string) *doctree.Node {
	return doctree.New(doctree.KindParagraph, doctree.NewText(text))
}

func mustSerialize(t *testing.T, n *doctree.Node, opts Options) Result {
	t.Helper()
	res, err := Serialize(n, opts)
	require.NoError(t, err)
	return res
}

func TestSerialize_Paragraphs(t *testing.T) {
	res := mustSerialize(t, root(paragraph("Hello & world"), paragraph("Second")), Options{})
	assert.Equal(t, "Hello \\& world\n\nSecond\n", res.Value)
	assert.Empty(t, res.Imports)
	assert.Empty(t, res.Commands)
}

func TestSerialize_Nil(t *testing.T) {
	res := mustSerialize(t, nil, Options{})
	assert.Equal(t, "", res.Value)
}

func TestSerialize_Heading(t *testing.T) {
	h := &doctree.Node{Kind: doctree.KindHeading, Depth: 2, Enumerated: true, Identifier: "intro",
		Children: []*doctree.Node{doctree.NewText("Intro")}}
	plain := &doctree.Node{Kind: doctree.KindHeading, Depth: 1, Children: []*doctree.Node{doctree.NewText("Unnumbered")}}
	res := mustSerialize(t, root(h, paragraph("Body"), plain), Options{
		LocalizeID: func(id string) string { return "sec:" + id },
	})
	assert.Equal(t, "\\subsection{Intro}\\label{sec:intro}\n\nBody\n\n\\section*{Unnumbered}\n", res.Value)
}

func TestSerialize_InlineFormatting(t *testing.T) {
	p := doctree.New(doctree.KindParagraph,
		doctree.New(doctree.KindStrong, doctree.NewText("bold")),
		doctree.NewText(" "),
		doctree.New(doctree.KindEmphasis, doctree.NewText("it")),
		doctree.NewText(" "),
		doctree.New(doctree.KindDelete, doctree.NewText("gone")),
		doctree.NewText(" "),
		&doctree.Node{Kind: doctree.KindInlineCode, Value: "a_b"},
	)
	res := mustSerialize(t, root(p), Options{})
	assert.Equal(t, "\\textbf{bold} \\textit{it} \\sout{gone} \\texttt{a\\_b}\n", res.Value)
	assert.Equal(t, []string{"ulem"}, res.Imports)
}

func TestSerialize_AbbreviationRendersText(t *testing.T) {
	p := doctree.New(doctree.KindParagraph,
		doctree.NewAbbreviation("HyperText Markup Language", "HTML"),
		doctree.NewText(" is great"),
	)
	res := mustSerialize(t, root(p), Options{})
	assert.Equal(t, "HTML is great\n", res.Value)
}

func TestSerialize_LinksAndReferences(t *testing.T) {
	p := doctree.New(doctree.KindParagraph,
		&doctree.Node{Kind: doctree.KindLink, URL: "https://x.org/a%20b#top", Children: []*doctree.Node{doctree.NewText("site")}},
		doctree.NewText(" "),
		&doctree.Node{Kind: doctree.KindLink, URL: "https://x.org", Children: []*doctree.Node{doctree.NewText("https://x.org")}},
		doctree.NewText(" "),
		&doctree.Node{Kind: doctree.KindCrossReference, Identifier: "fig1"},
		doctree.NewText(" "),
		&doctree.Node{Kind: doctree.KindCiteGroup, Children: []*doctree.Node{
			{Kind: doctree.KindCite, Label: "knuth"},
			{Kind: doctree.KindCite, Label: "lamport"},
		}},
	)
	res := mustSerialize(t, root(p), Options{
		LocalizeLink: func(u string) string { return strings.Replace(u, "x.org", "y.org", 1) },
	})
	assert.Equal(t, "\\href{https://y.org/a\\%20b\\#top}{site} \\url{https://y.org} \\ref{fig1} \\cite{knuth,lamport}\n", res.Value)
	assert.Equal(t, []string{"hyperref"}, res.Imports)
}

func figure(class string) *doctree.Node {
	return &doctree.Node{
		Kind:          doctree.KindContainer,
		ContainerKind: doctree.ContainerFigure,
		Enumerated:    true,
		Identifier:    "fig1",
		Class:         class,
		Children: []*doctree.Node{
			{Kind: doctree.KindImage, URL: "cat.png", Width: "50%"},
			captionNode("A cat"),
		},
	}
}

func TestSerialize_Figure(t *testing.T) {
	res := mustSerialize(t, root(figure("")), Options{
		LocalizeImageSrc: func(src string) string { return "images/" + src },
	})
	want := "\\begin{figure}[!htbp]\n" +
		"\\centering\n" +
		"\\includegraphics[width=0.5\\linewidth]{images/cat.png}\n" +
		"\\caption{A cat\\label{fig1}}\n" +
		"\\end{figure}\n"
	assert.Equal(t, want, res.Value)
	assert.Equal(t, []string{"graphicx"}, res.Imports)
}

func TestSerialize_LongFigureUsesStarredEnvironment(t *testing.T) {
	res := mustSerialize(t, root(figure("fullpage")), Options{})
	assert.Contains(t, res.Value, "\\begin{figure*}[!htbp]\n")
	assert.Contains(t, res.Value, "\\end{figure*}\n")
}

func TestSerialize_NestedFigureBecomesSubfigure(t *testing.T) {
	outer := &doctree.Node{
		Kind:          doctree.KindContainer,
		ContainerKind: doctree.ContainerFigure,
		Enumerated:    true,
		Identifier:    "fig-outer",
		Children:      []*doctree.Node{figure(""), captionNode("Outer")},
	}
	res := mustSerialize(t, root(outer), Options{
		LocalizeImageSrc: func(src string) string { return "images/" + src },
	})
	want := "\\begin{figure}[!htbp]\n" +
		"\\centering\n" +
		"\\begin{subfigure}{0.95\\linewidth}\n" +
		"\\centering\n" +
		"\\includegraphics[width=0.5\\linewidth]{images/cat.png}\n" +
		"\\caption{A cat\\label{fig1}}\n" +
		"\\end{subfigure}\n" +
		"\n\\caption{Outer\\label{fig-outer}}\n" +
		"\\end{figure}\n"
	assert.Equal(t, want, res.Value)
	assert.Equal(t, 1, strings.Count(res.Value, "\\begin{figure}"))
	assert.Equal(t, []string{"subcaption", "graphicx"}, res.Imports)
}

func TestSerialize_SubfiguresShareTheLine(t *testing.T) {
	outer := &doctree.Node{
		Kind:          doctree.KindContainer,
		ContainerKind: doctree.ContainerFigure,
		Class:         "fullpage",
		Children:      []*doctree.Node{figure("fullpage"), figure(""), captionNode("Pair")},
	}
	res := mustSerialize(t, root(outer), Options{})
	assert.Equal(t, 2, strings.Count(res.Value, "\\begin{subfigure}{0.47\\linewidth}"))
	assert.Contains(t, res.Value, "\\begin{figure*}[!htbp]")
	assert.NotContains(t, res.Value, "subfigure*")
	// The outer figure is not enumerated, so its caption stays unnumbered.
	assert.Contains(t, res.Value, "\\caption*{Pair}")
}

func TestRenderEnvironment_LongFigureFlag(t *testing.T) {
	fig := &doctree.Node{Kind: doctree.KindContainer, ContainerKind: doctree.ContainerFigure}
	long := func(c Context) Context { c.LongFigure = true; return c }

	s := NewState(Options{})
	s.WithContext(long, func() { s.RenderEnvironment(fig, "figure", EnvOptions{}) })
	assert.Equal(t, "\\begin{figure*}\n\\end{figure*}\n\n", s.String())

	s = NewState(Options{})
	s.RenderEnvironment(fig, "figure", EnvOptions{})
	assert.Equal(t, "\\begin{figure}\n\\end{figure}\n\n", s.String())

	// Non-figure environments never switch variant.
	s = NewState(Options{})
	s.WithContext(long, func() { s.RenderEnvironment(doctree.New(doctree.KindBlockquote), "quote", EnvOptions{}) })
	assert.Equal(t, "\\begin{quote}\n\\end{quote}\n\n", s.String())
}

func TestRenderEnvironment_ParametersAndArguments(t *testing.T) {
	s := NewState(Options{})
	s.RenderEnvironment(doctree.New(doctree.KindBlock, paragraph("x")), "minipage", EnvOptions{
		Parameters: "t",
		Arguments:  []string{`0.5\linewidth`, "extra"},
	})
	assert.Equal(t, "\\begin{minipage}[t]{0.5\\linewidth}{extra}\nx\n\\end{minipage}\n\n", s.String())
}

func TestRenderInlineEnvironment_After(t *testing.T) {
	s := NewState(Options{})
	s.Write("before")
	s.RenderInlineEnvironment(doctree.New(doctree.KindParagraph, doctree.NewText("body")), "center", InlineEnvOptions{After: `\par`})
	assert.Equal(t, "before\n\\begin{center}\nbody\n\\end{center}\n\\par", s.String())
}

func TestRenderChildren_Delimiter(t *testing.T) {
	s := NewState(Options{})
	s.RenderChildren(doctree.New(doctree.KindParagraph, doctree.NewText("a"), doctree.NewText("b"), doctree.NewText("c")), true, ", ")
	assert.Equal(t, "a, b, c", s.String())
}

func TestCloseBlock_InlineKindsUntouched(t *testing.T) {
	s := NewState(Options{})
	s.Write("x")
	s.CloseBlock(doctree.New(doctree.KindEmphasis))
	assert.Equal(t, "x", s.String())

	s.CloseBlock(doctree.New(doctree.KindParagraph))
	s.CloseBlock(doctree.New(doctree.KindParagraph))
	assert.Equal(t, "x\n\n", s.String())
}

func table(rows ...[]string) *doctree.Node {
	t := doctree.New(doctree.KindTable)
	for i, r := range rows {
		row := doctree.New(doctree.KindTableRow)
		for _, c := range r {
			row.Children = append(row.Children, &doctree.Node{
				Kind:     doctree.KindTableCell,
				Header:   i == 0,
				Children: []*doctree.Node{paragraph(c)},
			})
		}
		t.Children = append(t.Children, row)
	}
	return t
}

func TestSerialize_Table(t *testing.T) {
	res := mustSerialize(t, root(table([]string{"A", "B"}, []string{"1", "2"})), Options{})
	want := "\\begin{tabular}{ll}\n" +
		"\\toprule\n" +
		"\\textbf{A} & \\textbf{B} \\\\\n" +
		"\\midrule\n" +
		"1 & 2 \\\\\n" +
		"\\bottomrule\n" +
		"\\end{tabular}\n"
	assert.Equal(t, want, res.Value)
	assert.Equal(t, []string{"booktabs"}, res.Imports)
}

func TestSerialize_TableContainerCaptionFirst(t *testing.T) {
	c := &doctree.Node{
		Kind:          doctree.KindContainer,
		ContainerKind: doctree.ContainerTable,
		Enumerated:    true,
		Identifier:    "tbl",
		Children:      []*doctree.Node{captionNode("Numbers"), table([]string{"n"}, []string{"1"})},
	}
	res := mustSerialize(t, root(c), Options{})
	assert.True(t, strings.HasPrefix(res.Value, "\\begin{table}[!htbp]\n\\centering\n\\caption{Numbers\\label{tbl}}\n\\begin{tabular}{l}\n"), res.Value)
	assert.True(t, strings.HasSuffix(res.Value, "\\end{tabular}\n\\end{table}\n"), res.Value)
}

func TestSerialize_NestedTableRestoresContext(t *testing.T) {
	inner := table([]string{"x"})
	outer := table([]string{"outer"})
	outer.Children[0].Children[0].Children = []*doctree.Node{inner}

	var seen []bool
	marker := doctree.Kind("marker")
	opts := Options{Handlers: map[doctree.Kind]Handler{
		marker: func(_ *doctree.Node, s *State, _ *doctree.Node) { seen = append(seen, s.InTable()) },
	}}
	outer.Children[0].Children = append(outer.Children[0].Children, &doctree.Node{
		Kind: doctree.KindTableCell, Children: []*doctree.Node{doctree.New(marker)},
	})
	mustSerialize(t, root(outer, doctree.New(marker)), opts)

	// Still inside the outer table after the inner one closed, outside after.
	assert.Equal(t, []bool{true, false}, seen)
}

func TestSerialize_List(t *testing.T) {
	list := &doctree.Node{Kind: doctree.KindList, Ordered: true, Start: 3, Children: []*doctree.Node{
		doctree.New(doctree.KindListItem, paragraph("one")),
		doctree.New(doctree.KindListItem, paragraph("two")),
	}}
	res := mustSerialize(t, root(list), Options{})
	assert.Equal(t, "\\begin{enumerate}[start=3]\n\\item one\n\\item two\n\\end{enumerate}\n", res.Value)
	assert.Equal(t, []string{"enumitem"}, res.Imports)
}

func TestSerialize_MathWithMacros(t *testing.T) {
	eq := &doctree.Node{Kind: doctree.KindMath, Value: `\RR \ni x`, Enumerated: true, Identifier: "eq1"}
	inline := doctree.New(doctree.KindParagraph, &doctree.Node{Kind: doctree.KindInlineMath, Value: "α"})
	res := mustSerialize(t, root(eq, inline), Options{Math: map[string]string{`\RR`: `\mathbb{R}`}})

	assert.Equal(t, "\\begin{equation}\n\\label{eq1}\n\\RR \\ni x\n\\end{equation}\n\n${\\alpha}$\n", res.Value)
	assert.Equal(t, []string{"amsmath"}, res.Imports)
	assert.Equal(t, []string{`\newcommand{\RR}{\mathbb{R}}`}, res.Commands)
}

func TestSerialize_CodeBlocks(t *testing.T) {
	res := mustSerialize(t, root(
		&doctree.Node{Kind: doctree.KindCode, Value: "a & b\n"},
		&doctree.Node{Kind: doctree.KindCode, Lang: "Go", Value: "x := 1"},
	), Options{})
	assert.Equal(t, "\\begin{verbatim}\na & b\n\\end{verbatim}\n\n\\begin{lstlisting}[language=Go]\nx := 1\n\\end{lstlisting}\n", res.Value)
	assert.Equal(t, []string{"listings"}, res.Imports)
}

func TestSerialize_Footnote(t *testing.T) {
	p := doctree.New(doctree.KindParagraph,
		doctree.NewText("Claim"),
		&doctree.Node{Kind: doctree.KindFootnoteReference, Identifier: "1"},
	)
	def := &doctree.Node{Kind: doctree.KindFootnoteDefinition, Identifier: "1", Children: []*doctree.Node{paragraph("Source.")}}
	res := mustSerialize(t, root(p, def), Options{})
	assert.Equal(t, "Claim\\footnote{Source.}\n", res.Value)
}

func TestSerialize_UnsupportedKindRecovers(t *testing.T) {
	tree := root(paragraph("a"), doctree.New("mystDirective"), paragraph("b"))
	res, err := Serialize(tree, Options{})
	require.NoError(t, err)

	assert.Equal(t, "a\n\n% unsupported node: mystDirective\nb\n", res.Value)
	require.Len(t, res.Warnings, 1)
	var kindErr *UnsupportedNodeKindError
	require.True(t, errors.As(res.Warnings[0], &kindErr))
	assert.Equal(t, doctree.Kind("mystDirective"), kindErr.Kind)
	assert.Equal(t, doctree.KindRoot, kindErr.Parent)
	assert.Equal(t, []string{`unsupported node kind "mystDirective" in "root"`}, res.WarningStrings())
	assert.False(t, kindErr.Known)
}

func TestSerialize_RemovedBuiltinHandlerIsReportedAsKnown(t *testing.T) {
	opts := Options{Handlers: map[doctree.Kind]Handler{doctree.KindThematicBreak: nil}}
	res := mustSerialize(t, root(doctree.New(doctree.KindThematicBreak)), opts)

	require.Len(t, res.Warnings, 1)
	var kindErr *UnsupportedNodeKindError
	require.True(t, errors.As(res.Warnings[0], &kindErr))
	assert.True(t, kindErr.Known)
	assert.Equal(t, `no handler for node kind "thematicBreak" in "root"`, kindErr.Error())
}

func TestSerialize_StrictReportsUnsupportedKinds(t *testing.T) {
	res, err := Serialize(root(doctree.New("a"), doctree.New("b")), Options{Strict: true})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedNodeKind))
	assert.Len(t, res.Warnings, 2)
}

func TestSerialize_CustomHandlerOverridesDefault(t *testing.T) {
	opts := Options{Handlers: map[doctree.Kind]Handler{
		doctree.KindAbbreviation: func(n *doctree.Node, s *State, _ *doctree.Node) {
			s.Write(`\abbr{`)
			s.RenderChildren(n, true, "")
			s.Write("}{" + n.Title + "}")
		},
	}}
	res := mustSerialize(t, root(doctree.New(doctree.KindParagraph, doctree.NewAbbreviation("Title", "T1"))), opts)
	assert.Equal(t, "\\abbr{T1}{Title}\n", res.Value)
}

func TestSerialize_CustomHandlerDelegatesToDefault(t *testing.T) {
	rule := DefaultHandlers()[doctree.KindThematicBreak]
	require.NotNil(t, rule)
	opts := Options{Handlers: map[doctree.Kind]Handler{
		doctree.KindThematicBreak: func(n *doctree.Node, s *State, parent *doctree.Node) {
			s.Write("% section break\n")
			rule(n, s, parent)
		},
	}}
	res := mustSerialize(t, root(doctree.New(doctree.KindThematicBreak)), opts)
	assert.Equal(t, "% section break\n\\bigskip\\centerline{\\rule{13cm}{0.4pt}}\\bigskip\n", res.Value)
}

func TestDocument(t *testing.T) {
	res := Result{Value: "Body\n", Imports: []string{"graphicx"}, Commands: []string{`\newcommand{\a}{1}`}}
	got := Document(res, DocumentOptions{Title: "R&D"})
	want := "\\documentclass{article}\n" +
		"\\usepackage{graphicx}\n" +
		"\n\\newcommand{\\a}{1}\n" +
		"\n\\title{R\\&D}\n\\date{}\n" +
		"\n\\begin{document}\n\\maketitle\n" +
		"\nBody\n" +
		"\n\\end{document}\n"
	assert.Equal(t, want, got)
}

func TestImageWidth(t *testing.T) {
	tests := []struct{ in, want string }{
		{"", "0.7"},
		{"50%", "0.5"},
		{"400px", "0.5"},
		{"250%", "1"},
		{"bogus", "0.7"},
		{"-10%", "0.7"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, imageWidth(tt.in), "width %q", tt.in)
	}
}
