package parser

import (
	"strings"

	"github.com/KimNorgaard/go-waml/errors"
	"github.com/KimNorgaard/go-waml/form"
	"github.com/KimNorgaard/go-waml/internal/lexer"
	"github.com/KimNorgaard/go-waml/internal/token"
)

type markupStep uint8

const (
	markupOpen markupStep = iota
	markupOpen2
	markupText
	markupEscape
	markupUnicode
	markupAttrs
	markupAfterAttrs
	markupNested
	markupBraceBefore
	markupBraceValue
	markupBraceAfter
	markupClose2
)

// markupParser reads `<<...>>`: runs of text interleaved with embedded
// nodes. A node is nested markup, optionally attributed (`@a<<...>>`), a
// brace-wrapped list of values (`{v, w}`, `@a{v}`), or a bare attribute run
// (`@br`). Text is buffered until the next node or the closing delimiter.
type markupParser struct {
	cont
	f       form.MarkupForm
	opts    *Options
	depth   int
	attrs   *form.Attrs
	b       any
	text    strings.Builder
	pending *form.Attrs
	child   Result
	comma   bool
	hex     int
	code    rune
	step    markupStep
}

func newMarkup(f form.MarkupForm, opts *Options, depth int, attrs *form.Attrs) Result {
	return &markupParser{f: f, opts: opts, depth: depth, attrs: attrs}
}

// newNestedMarkup returns a parser for markup whose first '<' has already
// been consumed.
func newNestedMarkup(f form.MarkupForm, opts *Options, depth int, attrs *form.Attrs) Result {
	return &markupParser{f: f, opts: opts, depth: depth, attrs: attrs, step: markupOpen2}
}

func (p *markupParser) Step(in *lexer.Input) Result {
	for {
		switch p.step {
		case markupOpen, markupOpen2:
			if !in.IsCont() || in.Head() != '<' {
				return need(p, in, "'<'")
			}
			in.Step()
			if p.step == markupOpen {
				p.step = markupOpen2
				continue
			}
			if max := p.opts.maxDepth(); p.depth+1 > max {
				return tooDeep(in, max)
			}
			b, err := call(in, func() (any, error) { return p.f.MarkupBuilder(p.attrs) })
			if err != nil {
				return Fail(err)
			}
			p.b = b
			p.step = markupText
		case markupText:
			if r := p.scanText(in); r != nil {
				return r
			}
		case markupEscape:
			if !in.IsCont() {
				return need(p, in, "escape character")
			}
			c := in.Head()
			if c == 'u' {
				in.Step()
				p.hex, p.code = 0, 0
				p.step = markupUnicode
				continue
			}
			r, ok := token.Unescape(c, true)
			if !ok {
				return Fail(errors.Expected(in.Position(), "escape character", c, false))
			}
			p.text.WriteRune(r)
			in.Step()
			p.step = markupText
		case markupUnicode:
			ok, err := readUnicode(in, &p.hex, &p.code)
			if err != nil {
				return Fail(err)
			}
			if !ok {
				return need(p, in, "hex digit")
			}
			p.text.WriteRune(p.code)
			p.step = markupText
		case markupAttrs:
			p.child = p.child.Step(in)
			switch p.child.Status() {
			case StatusCont:
				return p
			case StatusError:
				return p.child
			}
			p.pending, _ = p.child.Value().(*form.Attrs)
			p.child = nil
			p.step = markupAfterAttrs
		case markupAfterAttrs:
			if in.IsEmpty() {
				return p
			}
			switch {
			case in.IsCont() && in.Head() == '<':
				in.Step()
				if r := p.nested(in); r != nil {
					return r
				}
			case in.IsCont() && in.Head() == '{':
				in.Step()
				p.comma = false
				p.step = markupBraceBefore
			default:
				if r := p.unit(in); r != nil {
					return r
				}
				p.step = markupText
			}
		case markupNested:
			p.child = p.child.Step(in)
			switch p.child.Status() {
			case StatusCont:
				return p
			case StatusError:
				return p.child
			}
			if r := p.appendNode(in, p.child.Value()); r != nil {
				return r
			}
			p.child = nil
			p.step = markupText
		case markupBraceBefore:
			skipWhitespace(in)
			if !in.IsCont() {
				return need(p, in, "value")
			}
			if in.Head() == '}' && !p.comma {
				in.Step()
				if p.pending.Len() > 0 {
					if r := p.unit(in); r != nil {
						return r
					}
				}
				p.step = markupText
				continue
			}
			p.child = newValue(p.f.NodeForm(), p.opts, p.depth+1, p.pending)
			p.pending = nil
			p.step = markupBraceValue
		case markupBraceValue:
			p.child = p.child.Step(in)
			switch p.child.Status() {
			case StatusCont:
				return p
			case StatusError:
				return p.child
			}
			if r := p.appendNode(in, p.child.Value()); r != nil {
				return r
			}
			p.child = nil
			p.step = markupBraceAfter
		case markupBraceAfter:
			skipWhitespace(in)
			if !in.IsCont() {
				return need(p, in, "'}'")
			}
			switch c := in.Head(); c {
			case '}':
				in.Step()
				p.step = markupText
			case ',':
				in.Step()
				p.comma = true
				p.step = markupBraceBefore
			default:
				return Fail(errors.Expected(in.Position(), "',' or '}'", c, false))
			}
		case markupClose2:
			if !in.IsCont() || in.Head() != '>' {
				return need(p, in, "'>'")
			}
			in.Step()
			if r := p.flush(in); r != nil {
				return r
			}
			v, err := call(in, func() (any, error) { return p.f.BuildMarkup(p.attrs, p.b) })
			if err != nil {
				return Fail(err)
			}
			return Done(v)
		}
	}
}

// scanText consumes text up to the next reserved character and moves to
// the step that handles it. It returns a non-nil Result when the parse
// must stop.
func (p *markupParser) scanText(in *lexer.Input) Result {
	for in.IsCont() {
		c := in.Head()
		if !token.IsMarkupReserved(c) {
			p.text.WriteRune(c)
			in.Step()
			continue
		}
		switch c {
		case '\\':
			in.Step()
			p.step = markupEscape
			return nil
		case '>':
			in.Step()
			p.step = markupClose2
			return nil
		}
		if r := p.flush(in); r != nil {
			return r
		}
		switch c {
		case '<':
			in.Step()
			return p.nested(in)
		case '@':
			p.child = newAttrs(p.f.NodeForm(), p.opts, p.depth+1, true)
			p.step = markupAttrs
		case '{':
			in.Step()
			p.pending = nil
			p.comma = false
			p.step = markupBraceBefore
		default:
			return Fail(errors.Expected(in.Position(), "'>>'", c, false))
		}
		return nil
	}
	return need(p, in, "'>>'")
}

// nested starts a child markup node after its first '<'.
func (p *markupParser) nested(in *lexer.Input) Result {
	f, ok := p.f.NodeForm().(form.MarkupForm)
	if !ok {
		return unsupported(in, p.f.NodeForm(), form.ShapeMarkup)
	}
	p.child = newNestedMarkup(f, p.opts, p.depth+1, p.pending)
	p.pending = nil
	p.step = markupNested
	return nil
}

// unit appends the pending attributes as a node without a body.
func (p *markupParser) unit(in *lexer.Input) Result {
	nf := p.f.NodeForm()
	uf, ok := nf.(form.UnitForm)
	if !ok {
		return unsupported(in, nf, form.ShapeUnit)
	}
	v, err := call(in, func() (any, error) { return uf.Unit(p.pending) })
	if err != nil {
		return Fail(err)
	}
	p.pending = nil
	return p.appendNode(in, v)
}

func (p *markupParser) appendNode(in *lexer.Input, v any) Result {
	b, err := call(in, func() (any, error) { return p.f.AppendNode(p.b, v) })
	if err != nil {
		return Fail(err)
	}
	p.b = b
	return nil
}

// flush hands buffered text to the builder.
func (p *markupParser) flush(in *lexer.Input) Result {
	if p.text.Len() == 0 {
		return nil
	}
	b, err := call(in, func() (any, error) { return p.f.AppendText(p.b, p.text.String()) })
	if err != nil {
		return Fail(err)
	}
	p.b = b
	p.text.Reset()
	return nil
}
