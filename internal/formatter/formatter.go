// Package formatter writes WAML values as resumable state machines that
// mirror the parsers. A writer emits characters into a bounded
// lexer.Output and suspends when the output is full; draining the output
// and stepping the returned continuation picks up exactly where it left
// off.
package formatter

import (
	"fmt"
	"runtime"
	"strings"
	"unicode/utf8"

	"github.com/KimNorgaard/go-waml/ast"
	"github.com/KimNorgaard/go-waml/errors"
	"github.com/KimNorgaard/go-waml/form"
	"github.com/KimNorgaard/go-waml/internal/lexer"
	"github.com/KimNorgaard/go-waml/internal/token"
)

// Status is the state of a Result.
type Status uint8

const (
	StatusCont Status = iota
	StatusDone
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusDone:
		return "done"
	case StatusError:
		return "error"
	}
	return "cont"
}

// Result is a write in progress or its outcome.
type Result interface {
	Status() Status
	Err() error
	Step(out *lexer.Output) Result
}

type done struct{}

// Done is the Result of a finished write.
var Done Result = done{}

func (done) Status() Status                { return StatusDone }
func (done) Err() error                    { return nil }
func (done) Step(out *lexer.Output) Result { panic("waml: step of a finished write") }

type failed struct{ err error }

// Fail returns a failed Result.
func Fail(err error) Result { return failed{err} }

func (failed) Status() Status                { return StatusError }
func (f failed) Err() error                  { return f.err }
func (failed) Step(out *lexer.Output) Result { panic("waml: step of a failed write") }

type cont struct{}

func (cont) Status() Status { return StatusCont }
func (cont) Err() error     { return nil }

const defaultMaxDepth = 1000

// Options control the layout of written values.
type Options struct {
	// Whitespace puts a space after commas and colons.
	Whitespace bool
	// LineSeparator, when set, puts every array element and object field on
	// its own line.
	LineSeparator string
	// Indent is repeated once per nesting level at the start of each line.
	Indent string
	// ImplicitContext writes one-element tuples with a trailing comma so that
	// readers treating parentheses as grouping still see a tuple.
	ImplicitContext bool
	// Keywords are identifiers that must be quoted when used as keys.
	// Nil means the default keyword set.
	Keywords map[string]bool
	// MaxDepth limits nesting. Zero means 1000.
	MaxDepth int
}

func (o *Options) pretty() bool { return o != nil && o.LineSeparator != "" }

func (o *Options) space() string {
	if o != nil && o.Whitespace {
		return " "
	}
	return ""
}

func (o *Options) maxDepth() int {
	if o == nil || o.MaxDepth <= 0 {
		return defaultMaxDepth
	}
	return o.MaxDepth
}

func (o *Options) keyword(s string) bool {
	if o == nil || o.Keywords == nil {
		return token.IsKeyword(s)
	}
	return o.Keywords[s]
}

// newline returns the line separator followed by the indentation of depth.
func (o *Options) newline(depth int) string {
	return o.LineSeparator + strings.Repeat(o.Indent, depth)
}

// inline returns options for content that is never broken across lines.
func (o *Options) inline() *Options {
	if !o.pretty() {
		return o
	}
	c := *o
	c.LineSeparator = ""
	return &c
}

// key returns k as written in key position: bare when it is an identifier
// that is not a keyword, quoted otherwise.
func (o *Options) key(k string) string {
	if token.IsIdentifier(k) && !o.keyword(k) {
		return k
	}
	return quote(k)
}

func quote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, c := range s {
		if e := token.Escape(c, false); e != "" {
			b.WriteString(e)
		} else {
			b.WriteRune(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}

func markupText(s string) string {
	var b strings.Builder
	for _, c := range s {
		if e := token.Escape(c, true); e != "" {
			b.WriteString(e)
		} else {
			b.WriteRune(c)
		}
	}
	return b.String()
}

// emitter holds text that has not been written yet.
type emitter struct {
	s string
	i int
}

func (e *emitter) set(s string) { e.s, e.i = s, 0 }

// flush writes as much pending text as fits and reports whether all of it
// was written.
func (e *emitter) flush(out *lexer.Output) bool {
	for e.i < len(e.s) {
		if !out.IsCont() {
			return false
		}
		c, n := utf8.DecodeRuneInString(e.s[e.i:])
		out.Write(c)
		e.i += n
	}
	return true
}

// stall is returned by a writer p whose output cannot take more
// characters.
func stall(p Result, out *lexer.Output) Result {
	switch {
	case out.IsEmpty():
		return p
	case out.IsError():
		return Fail(out.Err())
	}
	return Fail(errors.Wrap(out.Position(), errors.ErrTruncated))
}

// call invokes a form callback, turning ordinary panics into diagnostics.
func call[T any](out *lexer.Output, fn func() T) (v T, err error) {
	pos := out.Position()
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if _, fatal := r.(runtime.Error); fatal {
			panic(r)
		}
		if e, ok := r.(error); ok {
			err = errors.Wrap(pos, fmt.Errorf("form panicked: %w", e))
		} else {
			err = errors.Wrap(pos, fmt.Errorf("form panicked: %v", r))
		}
	}()
	return fn(), nil
}

// textWriter writes a fixed string.
type textWriter struct {
	cont
	e emitter
}

func newText(s string) Result {
	return &textWriter{e: emitter{s: s}}
}

func (p *textWriter) Step(out *lexer.Output) Result {
	if !p.e.flush(out) {
		return stall(p, out)
	}
	return Done
}

// attrForm returns the form of the arguments of attribute name.
func attrForm(owner form.Form, name string) form.Form {
	if af, ok := owner.(form.AttrForms); ok {
		if f := af.AttrForm(name); f != nil {
			return f
		}
	}
	return ast.Form{}
}

func attrsOf(f form.Form, v any) *form.Attrs {
	if a, ok := f.(form.Attributed); ok {
		return a.AttrsOf(v)
	}
	return nil
}

type valueStep uint8

const (
	valueStart valueStep = iota
	valueAttrs
	valueSpace
	valueBody
	valueChild
)

// valueWriter writes a value's attributes followed by its body.
type valueWriter struct {
	cont
	f      form.Form
	v      any
	opts   *Options
	depth  int
	markup bool
	bare   bool
	shape  form.Shape
	attrs  *form.Attrs
	child  Result
	e      emitter
	step   valueStep
}

// Value returns a writer for v described by f.
func Value(f form.Form, v any, opts *Options) Result {
	return newValue(f, v, opts, 0)
}

func newValue(f form.Form, v any, opts *Options, depth int) *valueWriter {
	return &valueWriter{f: f, v: v, opts: opts, depth: depth}
}

func (p *valueWriter) Step(out *lexer.Output) Result {
	for {
		switch p.step {
		case valueStart:
			if max := p.opts.maxDepth(); p.depth > max {
				return Fail(errors.Errorf(out.Position(), "maximum nesting depth of %d exceeded", max))
			}
			shape, err := call(out, func() form.Shape { return form.ShapeOf(p.f, p.v) })
			if err != nil {
				return Fail(err)
			}
			if shape == form.ShapeNone {
				return Fail(errors.Errorf(out.Position(), "cannot determine the shape of %T with %T", p.v, p.f))
			}
			p.shape = shape
			if !p.bare {
				attrs, err := call(out, func() *form.Attrs { return attrsOf(p.f, p.v) })
				if err != nil {
					return Fail(err)
				}
				p.attrs = attrs
			}
			if p.attrs.Len() > 0 {
				p.child = newAttrs(p.f, p.attrs, p.opts, p.depth, p.markup)
				p.step = valueAttrs
			} else {
				p.step = valueBody
			}
		case valueAttrs:
			p.child = p.child.Step(out)
			if p.child.Status() != StatusDone {
				return p.result(p.child)
			}
			if p.shape == form.ShapeUnit {
				return Done
			}
			switch p.shape {
			case form.ShapeIdentifier, form.ShapeNumber, form.ShapeTuple:
				if !p.markup {
					p.e.set(" ")
				}
			}
			p.step = valueSpace
		case valueSpace:
			if !p.e.flush(out) {
				return stall(p, out)
			}
			p.step = valueBody
		case valueBody:
			body, err := p.body(out)
			if err != nil {
				return Fail(err)
			}
			p.child = body
			p.step = valueChild
		case valueChild:
			p.child = p.child.Step(out)
			if p.child.Status() != StatusDone {
				return p.result(p.child)
			}
			return Done
		}
	}
}

func (p *valueWriter) result(child Result) Result {
	if child.Status() == StatusCont {
		return p
	}
	return child
}

// body returns the writer for the value without its attributes.
func (p *valueWriter) body(out *lexer.Output) (Result, error) {
	switch p.shape {
	case form.ShapeUnit:
		return newText("()"), nil
	case form.ShapeIdentifier:
		name, err := call(out, func() string { return p.f.(form.IdentForm).IdentifierOf(p.v) })
		if err != nil {
			return nil, err
		}
		if !token.IsIdentifier(name) {
			return nil, errors.Errorf(out.Position(), "invalid identifier %q", name)
		}
		return newText(name), nil
	case form.ShapeNumber:
		n, err := call(out, func() form.Number { return p.f.(form.NumberForm).NumberOf(p.v) })
		if err != nil {
			return nil, err
		}
		return newText(n.String()), nil
	case form.ShapeString:
		s, err := call(out, func() string { return p.f.(form.StringForm).StringOf(p.v) })
		if err != nil {
			return nil, err
		}
		return newText(quote(s)), nil
	case form.ShapeArray:
		f := p.f.(form.ArrayForm)
		it, err := call(out, func() form.Iterator { return f.Elements(p.v) })
		if err != nil {
			return nil, err
		}
		return newArray(f, it, p.opts, p.depth), nil
	case form.ShapeObject:
		f := p.f.(form.ObjectForm)
		it, err := call(out, func() form.FieldIterator { return f.Fields(p.v) })
		if err != nil {
			return nil, err
		}
		return newObject(f, it, p.opts, p.depth), nil
	case form.ShapeTuple:
		f := p.f.(form.TupleForm)
		it, err := call(out, func() form.ItemIterator { return f.Items(p.v) })
		if err != nil {
			return nil, err
		}
		return newTuple(f, it, p.opts, p.depth), nil
	case form.ShapeMarkup:
		f := p.f.(form.MarkupForm)
		it, err := call(out, func() form.NodeIterator { return f.Nodes(p.v) })
		if err != nil {
			return nil, err
		}
		return newMarkup(f, it, p.opts, p.depth), nil
	}
	return nil, errors.Wrap(out.Position(), form.Unsupported(p.f, p.shape))
}

type attrsStep uint8

const (
	attrsName attrsStep = iota
	attrsArgs
)

// attrsWriter writes an attribute run. Outside markup attributes are
// separated by spaces.
type attrsWriter struct {
	cont
	owner  form.Form
	attrs  *form.Attrs
	opts   *Options
	depth  int
	markup bool
	i      int
	e      emitter
	child  Result
	step   attrsStep
}

func newAttrs(owner form.Form, attrs *form.Attrs, opts *Options, depth int, markup bool) Result {
	a := &attrsWriter{owner: owner, attrs: attrs, opts: opts.inline(), depth: depth, markup: markup}
	a.next()
	return a
}

// next queues the name of the current attribute.
func (p *attrsWriter) next() {
	if p.i >= p.attrs.Len() {
		return
	}
	sep := ""
	if p.i > 0 && !p.markup {
		sep = " "
	}
	p.e.set(sep + "@" + p.opts.key(p.attrs.At(p.i).Name))
	p.step = attrsName
}

func (p *attrsWriter) Step(out *lexer.Output) Result {
	for p.i < p.attrs.Len() {
		switch p.step {
		case attrsName:
			if !p.e.flush(out) {
				return stall(p, out)
			}
			a := p.attrs.At(p.i)
			if !a.Args {
				p.i++
				p.next()
				continue
			}
			p.child = p.args(a)
			p.step = attrsArgs
		case attrsArgs:
			p.child = p.child.Step(out)
			switch p.child.Status() {
			case StatusCont:
				return p
			case StatusError:
				return p.child
			}
			p.i++
			p.next()
		}
	}
	return Done
}

// args returns the writer for the parenthesized arguments of a.
func (p *attrsWriter) args(a form.Attr) Result {
	f := attrForm(p.owner, a.Name)
	if a.Value == nil {
		return newText("()")
	}
	switch form.ShapeOf(f, a.Value) {
	case form.ShapeTuple:
		tf := f.(form.TupleForm)
		return newTuple(tf, tf.Items(a.Value), p.opts, p.depth)
	case form.ShapeUnit:
		if attrsOf(f, a.Value).Len() == 0 {
			return newText("()")
		}
	}
	return newWrapped("(", newValue(f, a.Value, p.opts, p.depth+1), ")")
}

// wrappedWriter writes a child between two delimiters.
type wrappedWriter struct {
	cont
	open, close string
	child       Result
	e           emitter
	step        int
}

func newWrapped(open string, child Result, close string) Result {
	return &wrappedWriter{open: open, close: close, child: child, e: emitter{s: open}}
}

func (p *wrappedWriter) Step(out *lexer.Output) Result {
	for {
		switch p.step {
		case 0:
			if !p.e.flush(out) {
				return stall(p, out)
			}
			p.step = 1
		case 1:
			p.child = p.child.Step(out)
			switch p.child.Status() {
			case StatusCont:
				return p
			case StatusError:
				return p.child
			}
			p.e.set(p.close)
			p.step = 2
		default:
			if !p.e.flush(out) {
				return stall(p, out)
			}
			return Done
		}
	}
}
