package parser

import (
	"github.com/KimNorgaard/go-waml/errors"
	"github.com/KimNorgaard/go-waml/form"
	"github.com/KimNorgaard/go-waml/internal/lexer"
	"github.com/KimNorgaard/go-waml/internal/token"
)

type arrayStep uint8

const (
	arrayOpen arrayStep = iota
	arrayBefore
	arrayElement
	arrayAfter
)

// arrayParser reads `[...]`. Elements are separated by commas or newlines
// and may be surrounded by comments.
type arrayParser struct {
	cont
	f       form.ArrayForm
	opts    *Options
	depth   int
	attrs   *form.Attrs
	b       any
	elem    Result
	step    arrayStep
	comment bool
}

func newArray(f form.ArrayForm, opts *Options, depth int, attrs *form.Attrs) Result {
	return &arrayParser{f: f, opts: opts, depth: depth, attrs: attrs}
}

func (p *arrayParser) Step(in *lexer.Input) Result {
	for {
		switch p.step {
		case arrayOpen:
			if !in.IsCont() || in.Head() != '[' {
				return need(p, in, "'['")
			}
			if max := p.opts.maxDepth(); p.depth+1 > max {
				return tooDeep(in, max)
			}
			b, err := call(in, func() (any, error) { return p.f.ArrayBuilder(p.attrs) })
			if err != nil {
				return Fail(err)
			}
			p.b = b
			in.Step()
			p.step = arrayBefore
		case arrayBefore:
			if err := skipTrivia(in, &p.comment, p.opts); err != nil {
				return Fail(err)
			}
			if !in.IsCont() {
				return need(p, in, "']'")
			}
			if in.Head() == ']' {
				return p.finish(in)
			}
			p.elem = newValue(p.f.ElementForm(), p.opts, p.depth+1, nil)
			p.step = arrayElement
		case arrayElement:
			p.elem = p.elem.Step(in)
			switch p.elem.Status() {
			case StatusCont:
				return p
			case StatusError:
				return p.elem
			}
			b, err := call(in, func() (any, error) { return p.f.AppendElement(p.b, p.elem.Value()) })
			if err != nil {
				return Fail(err)
			}
			p.b, p.elem = b, nil
			p.step = arrayAfter
		case arrayAfter:
			skipSpace(in)
			if !in.IsCont() {
				return need(p, in, "']'")
			}
			switch c := in.Head(); {
			case c == ']':
				return p.finish(in)
			case c == ',', token.IsNewline(c):
				in.Step()
			case c == '#':
				if err := p.opts.comment(in); err != nil {
					return Fail(err)
				}
				p.comment = true
				in.Step()
			default:
				return Fail(errors.Expected(in.Position(), "',' or ']'", c, false))
			}
			p.step = arrayBefore
		}
	}
}

func (p *arrayParser) finish(in *lexer.Input) Result {
	in.Step()
	v, err := call(in, func() (any, error) { return p.f.BuildArray(p.attrs, p.b) })
	if err != nil {
		return Fail(err)
	}
	return Done(v)
}
