package parser

import (
	"github.com/KimNorgaard/go-waml/form"
	"github.com/KimNorgaard/go-waml/internal/lexer"
)

type attrsStep uint8

const (
	attrsAt attrsStep = iota
	attrsKey
	attrsAfterKey
	attrsArgs
)

// attrsParser reads a run of `@name` and `@name(args)` annotations. Inside
// markup the spaces following an attribute are text, so they are left
// alone.
type attrsParser struct {
	cont
	owner  form.Form
	opts   *Options
	depth  int
	markup bool
	attrs  *form.Attrs
	name   string
	key    Result
	args   Result
	step   attrsStep
}

func newAttrs(owner form.Form, opts *Options, depth int, markup bool) Result {
	return &attrsParser{owner: owner, opts: opts, depth: depth, markup: markup}
}

func (p *attrsParser) Step(in *lexer.Input) Result {
	for {
		switch p.step {
		case attrsAt:
			// Spaces between attributes may be split over several chunks.
			if !p.markup && p.attrs != nil {
				skipSpace(in)
			}
			switch {
			case in.IsEmpty():
				return p
			case in.IsError():
				return Fail(in.Err())
			case in.IsDone(), in.Head() != '@':
				if p.attrs == nil {
					return need(p, in, "'@'")
				}
				return Done(p.attrs)
			}
			in.Step()
			p.key = newKey()
			p.step = attrsKey
		case attrsKey:
			p.key = p.key.Step(in)
			switch p.key.Status() {
			case StatusCont:
				return p
			case StatusError:
				return p.key
			}
			p.name = p.key.Value().(key).text
			p.step = attrsAfterKey
		case attrsAfterKey:
			if in.IsEmpty() {
				return p
			}
			if !in.IsCont() || in.Head() != '(' {
				p.set(form.Attr{Name: p.name})
				p.step = attrsAt
				continue
			}
			p.args = p.newArgs(in)
			if p.args.Status() == StatusError {
				return p.args
			}
			p.step = attrsArgs
		case attrsArgs:
			p.args = p.args.Step(in)
			switch p.args.Status() {
			case StatusCont:
				return p
			case StatusError:
				return p.args
			}
			p.set(form.Attr{Name: p.name, Value: p.args.Value(), Args: true})
			p.step = attrsAt
		}
	}
}

func (p *attrsParser) set(a form.Attr) {
	if p.attrs == nil {
		p.attrs = form.NewAttrs()
	}
	p.attrs.Set(a)
}

// newArgs returns the parser for the parenthesized arguments of the current
// attribute. Arguments are always read as a tuple, never as a grouped
// expression.
func (p *attrsParser) newArgs(in *lexer.Input) Result {
	f := attrForm(p.owner, p.name)
	if tf, ok := f.(form.TupleForm); ok {
		return newTupleArgs(tf, p.opts, p.depth)
	}
	if uf, ok := f.(form.UnitForm); ok {
		return newUnit(uf, nil)
	}
	return unsupported(in, f, form.ShapeTuple)
}
