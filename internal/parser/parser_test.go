package parser

import (
	"fmt"
	"strings"
	"testing"

	"github.com/dgallion1/doctex/internal/doctree"
)

func TestForFile(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"a.txt", "*parser.TextParser"},
		{"a.MD", "*parser.MarkdownParser"},
		{"a.markdown", "*parser.MarkdownParser"},
		{"a.csv", "*parser.CSVParser"},
		{"a.htm", "*parser.HTMLParser"},
		{"a.pdf", "*parser.PDFParser"},
		{"a.docx", "*parser.DOCXParser"},
		{"a.json", "*parser.JSONParser"},
	}
	for _, tt := range tests {
		p, err := ForFile(tt.filename, Options{})
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tt.filename, err)
		}
		if got := fmt.Sprintf("%T", p); got != tt.want {
			t.Errorf("%s: expected %s, got %s", tt.filename, tt.want, got)
		}
		if !IsSupportedExtension(tt.filename) {
			t.Errorf("%s: expected supported extension", tt.filename)
		}
	}

	if _, err := ForFile("a.exe", Options{}); err == nil {
		t.Error("expected error for unsupported extension")
	}
	if IsSupportedExtension("a.exe") {
		t.Error("expected .exe to be unsupported")
	}
}

func TestForFile_PDFFallback(t *testing.T) {
	p, err := ForFile("scan.pdf", Options{PDFFallbackPdftotext: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.(*PDFParser).FallbackPdftotext {
		t.Error("expected pdftotext fallback to be enabled")
	}
}

func TestJSONParser_Envelope(t *testing.T) {
	input := `{
  "title": "From JSON",
  "frontmatter": {"abbreviations": {"CPU": "Central Processing Unit"}},
  "root": {"type": "root", "children": [
    {"type": "paragraph", "children": [{"type": "text", "value": "CPU load"}]},
    {"type": "mystDirective", "value": "kept"}
  ]}
}`
	p := &JSONParser{}
	tree, err := p.Parse(strings.NewReader(input), "tree.json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tree.Title != "From JSON" {
		t.Errorf("expected title %q, got %q", "From JSON", tree.Title)
	}
	if tree.Meta.Abbreviations["CPU"] != "Central Processing Unit" {
		t.Errorf("unexpected abbreviations %v", tree.Meta.Abbreviations)
	}
	if len(tree.Root.Children) != 2 {
		t.Fatalf("expected 2 children, got %d", len(tree.Root.Children))
	}
	if k := tree.Root.Children[1].Kind; k != "mystDirective" || k.Known() {
		t.Errorf("expected unknown kind to survive decoding, got %q", k)
	}
}

func TestJSONParser_BareNode(t *testing.T) {
	p := &JSONParser{}
	tree, err := p.Parse(strings.NewReader(`{"type":"root","children":[{"type":"text","value":"hi"}]}`), "bare.json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tree.Title != "bare" || tree.Root.Kind != doctree.KindRoot || doctree.ToText(tree.Root) != "hi" {
		t.Errorf("unexpected tree %+v", tree)
	}
}

func TestJSONParser_Errors(t *testing.T) {
	p := &JSONParser{}
	for _, input := range []string{`not json`, `{"children":[]}`} {
		if _, err := p.Parse(strings.NewReader(input), "bad.json"); err == nil {
			t.Errorf("expected error for %q", input)
		}
	}
}

func TestJSONParser_RejectsNullNodes(t *testing.T) {
	p := &JSONParser{}
	inputs := []string{
		`{"type":"root","children":[null]}`,
		`{"title":"T","root":{"type":"root","children":[{"type":"paragraph","children":[null]}]}}`,
		`{"root":{"type":"root","children":[{"value":"untyped"}]}}`,
	}
	for _, input := range inputs {
		_, err := p.Parse(strings.NewReader(input), "doc.json")
		if err == nil {
			t.Errorf("expected error for %q", input)
			continue
		}
		if !strings.HasPrefix(err.Error(), "parse json tree: ") {
			t.Errorf("unexpected error %q", err)
		}
	}
}

func TestSplitFrontmatter(t *testing.T) {
	tests := []struct {
		name      string
		in        string
		wantTitle string
		wantBody  string
		wantErr   bool
	}{
		{"none", "# Heading\n", "", "# Heading\n", false},
		{"dashes", "---\ntitle: T\n---\nbody\n", "T", "body\n", false},
		{"dots close", "---\ntitle: T\n...\nbody", "T", "body", false},
		{"bom", "\ufeff---\ntitle: T\n---\n", "T", "", false},
		{"unterminated", "---\ntitle: T\nbody\n", "", "---\ntitle: T\nbody\n", false},
		{"bad yaml", "---\ntitle: [\n---\n", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta, body, err := splitFrontmatter([]byte(tt.in))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if meta.Title != tt.wantTitle {
				t.Errorf("expected title %q, got %q", tt.wantTitle, meta.Title)
			}
			if string(body) != tt.wantBody {
				t.Errorf("expected body %q, got %q", tt.wantBody, body)
			}
		})
	}
}

func TestSlug(t *testing.T) {
	tests := map[string]string{
		"Introduction":       "introduction",
		"Results & Analysis": "results-analysis",
		"  2. Method ":       "2-method",
	}
	for in, want := range tests {
		if got := slug(in); got != want {
			t.Errorf("slug(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestBinaryParsers_RejectGarbage(t *testing.T) {
	garbage := "not a real document"
	if _, err := (&PDFParser{}).Parse(strings.NewReader(garbage), "x.pdf"); err == nil {
		t.Error("expected pdf extraction error")
	}
	if _, err := (&DOCXParser{}).Parse(strings.NewReader(garbage), "x.docx"); err == nil {
		t.Error("expected docx parse error")
	}
}
