package parser

import (
	"github.com/KimNorgaard/go-waml/errors"
	"github.com/KimNorgaard/go-waml/form"
	"github.com/KimNorgaard/go-waml/internal/lexer"
	"github.com/KimNorgaard/go-waml/internal/token"
)

type objectStep uint8

const (
	objectOpen objectStep = iota
	objectBefore
	objectKey
	objectColon
	objectValue
	objectAfter
)

// objectParser reads `{...}`. Each key selects the field form that parses
// its value; keys without one go to the annex field when the form has one.
type objectParser struct {
	cont
	f       form.ObjectForm
	opts    *Options
	depth   int
	attrs   *form.Attrs
	b       any
	key     key
	field   form.FieldForm
	child   Result
	step    objectStep
	comment bool
}

func newObject(f form.ObjectForm, opts *Options, depth int, attrs *form.Attrs) Result {
	return &objectParser{f: f, opts: opts, depth: depth, attrs: attrs}
}

func (p *objectParser) Step(in *lexer.Input) Result {
	for {
		switch p.step {
		case objectOpen:
			if !in.IsCont() || in.Head() != '{' {
				return need(p, in, "'{'")
			}
			if max := p.opts.maxDepth(); p.depth+1 > max {
				return tooDeep(in, max)
			}
			b, err := call(in, func() (any, error) { return p.f.ObjectBuilder(p.attrs) })
			if err != nil {
				return Fail(err)
			}
			p.b = b
			in.Step()
			p.step = objectBefore
		case objectBefore:
			if err := skipTrivia(in, &p.comment, p.opts); err != nil {
				return Fail(err)
			}
			if !in.IsCont() {
				return need(p, in, "'}'")
			}
			if in.Head() == '}' {
				return p.finish(in)
			}
			p.child = newKey()
			p.step = objectKey
		case objectKey:
			p.child = p.child.Step(in)
			switch p.child.Status() {
			case StatusCont:
				return p
			case StatusError:
				return p.child
			}
			p.key = p.child.Value().(key)
			if err := p.lookup(in); err != nil {
				return Fail(err)
			}
			p.step = objectColon
		case objectColon:
			skipSpace(in)
			if !in.IsCont() || in.Head() != ':' {
				return need(p, in, "':'")
			}
			in.Step()
			p.child = newValue(p.field.ValueForm(), p.opts, p.depth+1, nil)
			p.step = objectValue
		case objectValue:
			p.child = p.child.Step(in)
			switch p.child.Status() {
			case StatusCont:
				return p
			case StatusError:
				return p.child
			}
			b, err := call(in, func() (any, error) {
				return p.field.SetField(p.b, p.key.text, p.child.Value())
			})
			if err != nil {
				return Fail(err)
			}
			p.b, p.child, p.field = b, nil, nil
			p.step = objectAfter
		case objectAfter:
			skipSpace(in)
			if !in.IsCont() {
				return need(p, in, "'}'")
			}
			switch c := in.Head(); {
			case c == '}':
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
				return Fail(errors.Expected(in.Position(), "',' or '}'", c, false))
			}
			p.step = objectBefore
		}
	}
}

// lookup resolves the field form for the current key.
func (p *objectParser) lookup(in *lexer.Input) error {
	ff, err := call(in, func() (form.FieldForm, error) {
		if ff, ok := p.f.Field(p.key.text); ok && ff != nil {
			return ff, nil
		}
		if a, ok := p.f.(form.AnnexForm); ok {
			if ff := a.Annex(); ff != nil {
				return ff, nil
			}
		}
		return nil, errors.Wrap(p.key.pos, &form.KeyError{Key: p.key.text})
	})
	if err != nil {
		return err
	}
	p.field = ff
	return nil
}

func (p *objectParser) finish(in *lexer.Input) Result {
	in.Step()
	v, err := call(in, func() (any, error) { return p.f.BuildObject(p.attrs, p.b) })
	if err != nil {
		return Fail(err)
	}
	return Done(v)
}
