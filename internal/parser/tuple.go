package parser

import (
	"github.com/KimNorgaard/go-waml/errors"
	"github.com/KimNorgaard/go-waml/form"
	"github.com/KimNorgaard/go-waml/internal/lexer"
	"github.com/KimNorgaard/go-waml/internal/token"
)

type tupleStep uint8

const (
	tupleOpen tupleStep = iota
	tupleBefore
	tupleKey
	tupleAfterKey
	tupleItem
	tupleAfter
)

// tupleParser reads `(...)`. Items are values or `label: value` fields.
//
// An item starting with an identifier or a quoted string is read as a key
// first. If a colon follows, the key is the item's label; otherwise the key
// itself is the item's value.
//
// In expression mode a single unlabeled item without a trailing comma is a
// parenthesized value rather than a tuple.
//
// No builder is created until a second item, or a labeled first item,
// arrives, so that empty and unary tuples can be handed to EmptyTuple and
// UnaryTuple instead.
type tupleParser struct {
	cont
	f     form.TupleForm
	opts  *Options
	depth int
	attrs *form.Attrs
	group bool
	comma bool
	b     any
	count int
	first any
	label string
	key   key
	child Result
	step  tupleStep
}

func newTuple(f form.TupleForm, opts *Options, depth int, attrs *form.Attrs) Result {
	return &tupleParser{f: f, opts: opts, depth: depth, attrs: attrs, group: opts.exprs()}
}

// newTupleArgs returns a parser for attribute arguments.
func newTupleArgs(f form.TupleForm, opts *Options, depth int) Result {
	return &tupleParser{f: f, opts: opts, depth: depth}
}

func (p *tupleParser) Step(in *lexer.Input) Result {
	for {
		switch p.step {
		case tupleOpen:
			if !in.IsCont() || in.Head() != '(' {
				return need(p, in, "'('")
			}
			if max := p.opts.maxDepth(); p.depth+1 > max {
				return tooDeep(in, max)
			}
			in.Step()
			p.step = tupleBefore
		case tupleBefore:
			skipWhitespace(in)
			if !in.IsCont() {
				return need(p, in, "')'")
			}
			c := in.Head()
			if c == ')' {
				return p.finish(in)
			}
			p.label = ""
			if c == '"' || token.IsIdentifierStartChar(c) {
				p.child = newKey()
				p.step = tupleKey
				continue
			}
			p.child = newValue(p.f.ItemForm(p.count, ""), p.opts, p.depth+1, nil)
			p.step = tupleItem
		case tupleKey:
			p.child = p.child.Step(in)
			switch p.child.Status() {
			case StatusCont:
				return p
			case StatusError:
				return p.child
			}
			p.key = p.child.Value().(key)
			p.child = nil
			p.step = tupleAfterKey
		case tupleAfterKey:
			skipSpace(in)
			if in.IsEmpty() {
				return p
			}
			if in.IsCont() && in.Head() == ':' {
				in.Step()
				p.label = p.key.text
				p.child = newValue(p.f.ItemForm(p.count, p.label), p.opts, p.depth+1, nil)
				p.step = tupleItem
				continue
			}
			v, r := p.keyValue(in)
			if r != nil {
				return r
			}
			if r := p.append(in, v); r != nil {
				return r
			}
			p.step = tupleAfter
		case tupleItem:
			p.child = p.child.Step(in)
			switch p.child.Status() {
			case StatusCont:
				return p
			case StatusError:
				return p.child
			}
			if r := p.append(in, p.child.Value()); r != nil {
				return r
			}
			p.child = nil
			p.step = tupleAfter
		case tupleAfter:
			skipWhitespace(in)
			if !in.IsCont() {
				return need(p, in, "')'")
			}
			switch c := in.Head(); c {
			case ')':
				return p.finish(in)
			case ',':
				in.Step()
				p.comma = true
				p.step = tupleBefore
			default:
				return Fail(errors.Expected(in.Position(), "',' or ')'", c, false))
			}
		}
	}
}

// keyValue materializes a key that turned out to be a positional item.
func (p *tupleParser) keyValue(in *lexer.Input) (any, Result) {
	f := p.f.ItemForm(p.count, "")
	var v any
	var err error
	if p.key.quoted {
		sf, ok := f.(form.StringForm)
		if !ok {
			return nil, unsupported(in, f, form.ShapeString)
		}
		v, err = call(in, func() (any, error) {
			b, err := sf.StringBuilder(nil)
			if err != nil {
				return nil, err
			}
			for _, c := range p.key.text {
				b = sf.AppendRune(b, c)
			}
			return sf.BuildString(nil, b)
		})
	} else {
		idf, ok := f.(form.IdentForm)
		if !ok {
			return nil, unsupported(in, f, form.ShapeIdentifier)
		}
		v, err = call(in, func() (any, error) { return idf.Identifier(nil, p.key.text) })
	}
	if err != nil {
		return nil, Fail(err)
	}
	return v, nil
}

// append adds an item, creating the builder once the tuple is known to be
// neither empty nor unary.
func (p *tupleParser) append(in *lexer.Input, v any) Result {
	p.count++
	if p.count == 1 && p.label == "" {
		p.first = v
		return nil
	}
	if p.b == nil {
		b, err := call(in, func() (any, error) { return p.f.TupleBuilder(p.attrs) })
		if err != nil {
			return Fail(err)
		}
		p.b = b
		if p.count == 2 {
			b, err := call(in, func() (any, error) { return p.f.AppendItem(p.b, "", p.first) })
			if err != nil {
				return Fail(err)
			}
			p.b, p.first = b, nil
		}
	}
	b, err := call(in, func() (any, error) { return p.f.AppendItem(p.b, p.label, v) })
	if err != nil {
		return Fail(err)
	}
	p.b = b
	return nil
}

func (p *tupleParser) finish(in *lexer.Input) Result {
	in.Step()
	v, err := call(in, func() (any, error) {
		switch {
		case p.count == 0:
			return p.f.EmptyTuple(p.attrs)
		case p.b == nil && p.group && !p.comma && p.attrs.Len() == 0:
			return p.first, nil
		case p.b == nil:
			return p.f.UnaryTuple(p.attrs, p.first)
		}
		return p.f.BuildTuple(p.attrs, p.b)
	})
	if err != nil {
		return Fail(err)
	}
	return Done(v)
}

// skipWhitespace consumes spaces and newlines.
func skipWhitespace(in *lexer.Input) {
	for in.IsCont() && token.IsWhitespace(in.Head()) {
		in.Step()
	}
}
