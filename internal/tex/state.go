package tex

import (
	"bytes"
	"log/slog"
	"regexp"
	"sort"
	"unicode"

	"github.com/dgallion1/doctex/internal/doctree"
)

// Context is the layout context a node is rendered in. Values are immutable;
// handlers derive a new one with State.WithContext for the extent of a subtree.
type Context struct {
	InTable    bool
	LongFigure bool
	InFloat    bool // inside a figure or table container
}

// Caption is the numbering requested for the next caption.
type Caption struct {
	Numbered bool
	ID       string
}

// State is the serializer for one render pass. It owns the output buffer and
// the import/command side tables. A State must not be shared between passes.
type State struct {
	opts     Options
	handlers map[doctree.Kind]Handler
	log      *slog.Logger

	buf []byte
	ctx []Context

	caption        Caption
	captionPending bool

	imports   orderedSet
	commands  orderedSet
	macros    []mathMacro
	footnotes map[string]*doctree.Node
	warnings  []error
}

type mathMacro struct {
	name       string
	definition string
	re         *regexp.Regexp
}

// NewState returns an empty serializer configured by opts.
func NewState(opts Options) *State {
	s := &State{
		opts:      opts,
		handlers:  make(map[doctree.Kind]Handler, len(defaultHandlers)+len(opts.Handlers)),
		log:       opts.Logger,
		ctx:       []Context{{}},
		footnotes: map[string]*doctree.Node{},
	}
	if s.log == nil {
		s.log = slog.New(slog.DiscardHandler)
	}
	for k, h := range defaultHandlers {
		s.handlers[k] = h
	}
	for k, h := range opts.Handlers {
		if h == nil {
			delete(s.handlers, k)
			continue
		}
		s.handlers[k] = h
	}

	names := make([]string, 0, len(opts.Math))
	for name := range opts.Math {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		s.macros = append(s.macros, mathMacro{
			name:       name,
			definition: opts.Math[name],
			re:         regexp.MustCompile(regexp.QuoteMeta(name) + `([^a-zA-Z]|$)`),
		})
	}
	return s
}

// Write appends raw markup.
func (s *State) Write(value string) {
	s.buf = append(s.buf, value...)
}

// Text appends value with markup-significant characters escaped. In math mode
// the value is passed through, only mapping unicode symbols to commands.
func (s *State) Text(value string, mathMode bool) {
	if mathMode {
		s.Write(mathReplacer.Replace(value))
		return
	}
	s.Write(textReplacer.Replace(value))
}

// TrimEnd drops trailing whitespace from the buffer.
func (s *State) TrimEnd() {
	s.buf = bytes.TrimRightFunc(s.buf, unicode.IsSpace)
}

// EnsureNewLine makes the buffer end in a newline. An empty buffer is left alone.
func (s *State) EnsureNewLine(trim bool) {
	if trim {
		s.TrimEnd()
	}
	if len(s.buf) == 0 || s.buf[len(s.buf)-1] == '\n' {
		return
	}
	s.Write("\n")
}

// String returns the markup written so far.
func (s *State) String() string { return string(s.buf) }

// Context returns the innermost layout context.
func (s *State) Context() Context { return s.ctx[len(s.ctx)-1] }

// InTable reports whether rendering happens inside a table.
func (s *State) InTable() bool { return s.Context().InTable }

// LongFigure reports whether the enclosing figure spans the full page width.
func (s *State) LongFigure() bool { return s.Context().LongFigure }

// WithContext runs fn with a context derived from the current one. The previous
// context is restored when fn returns, so nested constructs stack correctly.
func (s *State) WithContext(derive func(Context) Context, fn func()) {
	s.ctx = append(s.ctx, derive(s.Context()))
	defer func() { s.ctx = s.ctx[:len(s.ctx)-1] }()
	fn()
}

// SetNextCaption records how the next caption is numbered and labelled.
func (s *State) SetNextCaption(numbered bool, id string) {
	s.caption = Caption{Numbered: numbered, ID: id}
	s.captionPending = true
}

// WithCaption runs fn with the given caption settings pending and restores the
// previous settings afterwards. A nested container can then neither take nor
// clear the caption of the container around it.
func (s *State) WithCaption(numbered bool, id string, fn func()) {
	prev, pending := s.caption, s.captionPending
	defer func() { s.caption, s.captionPending = prev, pending }()
	s.SetNextCaption(numbered, id)
	fn()
}

// TakeCaption returns and clears the pending caption settings. Without a
// pending setting the caption is numbered and unlabelled.
func (s *State) TakeCaption() Caption {
	if !s.captionPending {
		return Caption{Numbered: true}
	}
	c := s.caption
	s.clearCaption()
	return c
}

func (s *State) clearCaption() {
	s.caption = Caption{}
	s.captionPending = false
}

// UsePackages records packages the output depends on.
func (s *State) UsePackages(names ...string) {
	for _, n := range names {
		s.imports.add(n)
	}
}

// AddCommand records a macro definition to emit before the body.
func (s *State) AddCommand(def string) {
	s.commands.add(def)
}

// useMathMacros adds a definition for every configured macro value refers to,
// including macros referenced from other definitions.
func (s *State) useMathMacros(value string) {
	pending := []string{value}
	seen := map[string]bool{}
	for len(pending) > 0 {
		v := pending[0]
		pending = pending[1:]
		for _, m := range s.macros {
			if seen[m.name] || !m.re.MatchString(v) {
				continue
			}
			seen[m.name] = true
			s.AddCommand(`\newcommand{` + m.name + `}{` + m.definition + `}`)
			pending = append(pending, m.definition)
		}
	}
}

type orderedSet struct {
	items []string
	seen  map[string]bool
}

func (o *orderedSet) add(v string) {
	if v == "" || o.seen[v] {
		return
	}
	if o.seen == nil {
		o.seen = map[string]bool{}
	}
	o.seen[v] = true
	o.items = append(o.items, v)
}

func (o *orderedSet) list() []string {
	out := make([]string, len(o.items))
	copy(out, o.items)
	return out
}
