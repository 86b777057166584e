// Package parser implements WAML parsing as a set of resumable state
// machines, one per grammar production.
//
// Parsing never blocks and never re-reads input. Each call to Step consumes
// as many characters as are available and returns either a finished result
// or a continuation holding exactly the state needed to resume when the
// next chunk arrives. Containers own at most one suspended child parser.
package parser

import (
	"fmt"
	"runtime"

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

// Result is a parse in progress or its outcome. Done and error results are
// final; calling Step on them panics.
type Result interface {
	Status() Status
	Value() any
	Err() error
	Step(in *lexer.Input) Result
}

type done struct{ value any }

// Done returns a finished Result holding v.
func Done(v any) Result { return done{v} }

func (done) Status() Status              { return StatusDone }
func (d done) Value() any                { return d.value }
func (done) Err() error                  { return nil }
func (done) Step(in *lexer.Input) Result { panic("waml: step of a finished parse") }

type failed struct{ err error }

// Fail returns a failed Result.
func Fail(err error) Result { return failed{err} }

func (failed) Status() Status              { return StatusError }
func (failed) Value() any                  { return nil }
func (f failed) Err() error                { return f.err }
func (failed) Step(in *lexer.Input) Result { panic("waml: step of a failed parse") }

// cont is embedded by every continuation.
type cont struct{}

func (cont) Status() Status { return StatusCont }
func (cont) Value() any     { return nil }
func (cont) Err() error     { return nil }

// Options are shared by every parser of one parse.
type Options struct {
	// Exprs reads a tuple holding one unlabeled item as a parenthesized
	// value instead of a 1-tuple.
	Exprs bool
	// MaxDepth limits container nesting. Zero means DefaultMaxDepth.
	MaxDepth int
	// Comment, if set, is called with the position of every '#' that
	// starts a comment. An error fails the parse there.
	Comment func(pos errors.Position) error
}

// DefaultMaxDepth is the nesting limit used when Options.MaxDepth is zero.
const DefaultMaxDepth = 1000

func (o *Options) maxDepth() int {
	if o == nil || o.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return o.MaxDepth
}

func (o *Options) exprs() bool { return o != nil && o.Exprs }

func (o *Options) comment(in *lexer.Input) error {
	if o == nil || o.Comment == nil {
		return nil
	}
	return o.Comment(in.Position())
}

// need is returned by a parser p that requires another character to make
// progress: p itself while more input may arrive, otherwise an error
// naming what was expected.
func need(p Result, in *lexer.Input, what string) Result {
	switch {
	case in.IsCont():
		return Fail(errors.Expected(in.Position(), what, in.Head(), false))
	case in.IsEmpty():
		return p
	case in.IsError():
		return Fail(in.Err())
	}
	return Fail(errors.Expected(in.Position(), what, -1, true))
}

// call invokes a form callback. Errors and non-runtime panics become
// diagnostics at the current position; runtime errors are re-raised.
func call[T any](in *lexer.Input, fn func() (T, error)) (v T, err error) {
	pos := in.Position()
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
	v, err = fn()
	if err != nil {
		err = errors.Wrap(pos, err)
	}
	return v, err
}

func unsupported(in *lexer.Input, f form.Form, s form.Shape) Result {
	return Fail(errors.Wrap(in.Position(), form.Unsupported(f, s)))
}

func tooDeep(in *lexer.Input, max int) Result {
	return Fail(errors.Errorf(in.Position(), "maximum nesting depth of %d exceeded", max))
}

// attrForm returns the form used for the arguments of attribute name.
func attrForm(owner form.Form, name string) form.Form {
	if af, ok := owner.(form.AttrForms); ok {
		if f := af.AttrForm(name); f != nil {
			return f
		}
	}
	return ast.Form{}
}

// skipSpace consumes horizontal whitespace.
func skipSpace(in *lexer.Input) {
	for in.IsCont() && token.IsSpace(in.Head()) {
		in.Step()
	}
}

type valueStep uint8

const (
	valueAttrs valueStep = iota
	valueBody
)

// valueParser reads an optional attribute run and then hands over to the
// parser of whatever production follows.
type valueParser struct {
	cont
	f     form.Form
	opts  *Options
	depth int
	seed  *form.Attrs
	attrs Result
	step  valueStep
}

// Value returns a parser for one value of form f, including its attribute
// prefix.
func Value(f form.Form, opts *Options) Result {
	return newValue(f, opts, 0, nil)
}

// newValue returns a value parser whose attributes start with seed.
func newValue(f form.Form, opts *Options, depth int, seed *form.Attrs) Result {
	return &valueParser{f: f, opts: opts, depth: depth, seed: seed}
}

func (p *valueParser) Step(in *lexer.Input) Result {
	if p.step == valueAttrs {
		if p.attrs == nil {
			skipSpace(in)
			if !in.IsCont() {
				return need(p, in, "value")
			}
			if in.Head() != '@' {
				p.step = valueBody
			} else {
				p.attrs = newAttrs(p.f, p.opts, p.depth, false)
			}
		}
		if p.attrs != nil {
			p.attrs = p.attrs.Step(in)
			switch p.attrs.Status() {
			case StatusCont:
				return p
			case StatusError:
				return p.attrs
			}
			own, _ := p.attrs.Value().(*form.Attrs)
			p.seed = form.Merge(p.seed, own)
			p.step = valueBody
		}
	}

	skipSpace(in)
	if !in.IsCont() {
		if in.IsEmpty() {
			return p
		}
		if in.IsDone() && p.seed.Len() > 0 {
			return p.unit(in)
		}
		return need(p, in, "value")
	}
	body := p.dispatch(in)
	if body.Status() != StatusCont {
		return body
	}
	return body.Step(in)
}

// dispatch picks the parser for the production starting at the current
// character.
func (p *valueParser) dispatch(in *lexer.Input) Result {
	c := in.Head()
	attrs := p.seed
	switch {
	case c == '{':
		f, ok := p.f.(form.ObjectForm)
		if !ok {
			return unsupported(in, p.f, form.ShapeObject)
		}
		return newObject(f, p.opts, p.depth, attrs)
	case c == '[':
		f, ok := p.f.(form.ArrayForm)
		if !ok {
			return unsupported(in, p.f, form.ShapeArray)
		}
		return newArray(f, p.opts, p.depth, attrs)
	case c == '(':
		if f, ok := p.f.(form.TupleForm); ok {
			return newTuple(f, p.opts, p.depth, attrs)
		}
		if f, ok := p.f.(form.UnitForm); ok {
			return newUnit(f, attrs)
		}
		return unsupported(in, p.f, form.ShapeTuple)
	case c == '<':
		f, ok := p.f.(form.MarkupForm)
		if !ok {
			return unsupported(in, p.f, form.ShapeMarkup)
		}
		return newMarkup(f, p.opts, p.depth, attrs)
	case c == '"':
		f, ok := p.f.(form.StringForm)
		if !ok {
			return unsupported(in, p.f, form.ShapeString)
		}
		return newString(f, attrs)
	case c == '-' || token.IsDigit(c):
		f, ok := p.f.(form.NumberForm)
		if !ok {
			return unsupported(in, p.f, form.ShapeNumber)
		}
		return newNumber(f, attrs)
	case token.IsIdentifierStartChar(c):
		f, ok := p.f.(form.IdentForm)
		if !ok {
			return unsupported(in, p.f, form.ShapeIdentifier)
		}
		return newIdent(f, attrs)
	case attrs.Len() > 0:
		return p.unit(in)
	}
	return need(p, in, "value")
}

// unit builds an attributed value without a body, such as `@br`.
func (p *valueParser) unit(in *lexer.Input) Result {
	f, ok := p.f.(form.UnitForm)
	if !ok {
		return unsupported(in, p.f, form.ShapeUnit)
	}
	v, err := call(in, func() (any, error) { return f.Unit(p.seed) })
	if err != nil {
		return Fail(err)
	}
	return Done(v)
}

type documentStep uint8

const (
	documentBefore documentStep = iota
	documentValue
	documentAfter
)

// documentParser reads a single value surrounded by whitespace and
// comments, followed by the end of input.
type documentParser struct {
	cont
	opts    *Options
	value   Result
	step    documentStep
	comment bool
}

// Document returns a parser for a complete WAML document holding one value
// of form f.
func Document(f form.Form, opts *Options) Result {
	return &documentParser{opts: opts, value: Value(f, opts)}
}

func (p *documentParser) Step(in *lexer.Input) Result {
	if p.step == documentBefore {
		if err := skipTrivia(in, &p.comment, p.opts); err != nil {
			return Fail(err)
		}
		if !in.IsCont() {
			return need(p, in, "value")
		}
		p.step = documentValue
	}
	if p.step == documentValue {
		p.value = p.value.Step(in)
		switch p.value.Status() {
		case StatusCont:
			return p
		case StatusError:
			return p.value
		}
		p.step = documentAfter
	}
	if err := skipTrivia(in, &p.comment, p.opts); err != nil {
		return Fail(err)
	}
	switch {
	case in.IsDone():
		return Done(p.value.Value())
	case in.IsEmpty():
		return p
	case in.IsError():
		return Fail(in.Err())
	}
	return Fail(errors.Expected(in.Position(), "end of input", in.Head(), false))
}

// skipTrivia consumes whitespace and comments. A comment cut off by the end
// of a chunk is resumed on the next call through *comment.
func skipTrivia(in *lexer.Input, comment *bool, opts *Options) error {
	for in.IsCont() {
		c := in.Head()
		switch {
		case *comment:
			if token.IsNewline(c) {
				*comment = false
			}
		case token.IsWhitespace(c):
		case c == '#':
			if err := opts.comment(in); err != nil {
				return err
			}
			*comment = true
		default:
			return nil
		}
		in.Step()
	}
	return nil
}
