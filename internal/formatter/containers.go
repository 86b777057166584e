package formatter

import (
	"github.com/KimNorgaard/go-waml/errors"
	"github.com/KimNorgaard/go-waml/form"
	"github.com/KimNorgaard/go-waml/internal/lexer"
)

type containerStep uint8

const (
	containerOpen containerStep = iota
	containerNext
	containerPrefix
	containerChild
	containerClose
)

// containerWriter writes the delimiters and separators shared by arrays,
// objects and tuples. next yields the prefix of the following entry (a key
// or label, possibly empty) and its writer.
type containerWriter struct {
	cont
	open, close string
	pretty      bool
	opts        *Options
	depth       int
	next        func(out *lexer.Output) (prefix string, child Result, ok bool, err error)
	count       int
	e           emitter
	child       Result
	step        containerStep
}

func (p *containerWriter) Step(out *lexer.Output) Result {
	for {
		switch p.step {
		case containerOpen:
			p.e.set(p.open)
			p.step = containerNext
			if !p.e.flush(out) {
				return stall(p, out)
			}
		case containerNext:
			if !p.e.flush(out) {
				return stall(p, out)
			}
			prefix, child, ok, err := p.next(out)
			if err != nil {
				return Fail(errors.Wrap(out.Position(), err))
			}
			if !ok {
				p.e.set(p.closing())
				p.step = containerClose
				continue
			}
			p.e.set(p.separator() + prefix)
			p.child = child
			p.count++
			p.step = containerPrefix
		case containerPrefix:
			if !p.e.flush(out) {
				return stall(p, out)
			}
			p.step = containerChild
		case containerChild:
			p.child = p.child.Step(out)
			switch p.child.Status() {
			case StatusCont:
				return p
			case StatusError:
				return p.child
			}
			p.child = nil
			p.e.set("")
			p.step = containerNext
		case containerClose:
			if !p.e.flush(out) {
				return stall(p, out)
			}
			return Done
		}
	}
}

// separator is written before each entry.
func (p *containerWriter) separator() string {
	if p.pretty {
		return p.opts.newline(p.depth + 1)
	}
	if p.count == 0 {
		return ""
	}
	return "," + p.opts.space()
}

func (p *containerWriter) closing() string {
	if p.pretty && p.count > 0 {
		return p.opts.newline(p.depth) + p.close
	}
	return p.close
}

func newArray(f form.ArrayForm, it form.Iterator, opts *Options, depth int) Result {
	elem := f.ElementForm()
	return &containerWriter{
		open:   "[",
		close:  "]",
		pretty: opts.pretty(),
		opts:   opts,
		depth:  depth,
		next: func(out *lexer.Output) (string, Result, bool, error) {
			type next struct {
				v  any
				ok bool
			}
			n, err := call(out, func() next {
				v, ok := it.Next()
				return next{v, ok}
			})
			if err != nil || !n.ok {
				return "", nil, false, err
			}
			return "", newValue(elem, n.v, opts, depth+1), true, nil
		},
	}
}

func newObject(f form.ObjectForm, it form.FieldIterator, opts *Options, depth int) Result {
	return &containerWriter{
		open:   "{",
		close:  "}",
		pretty: opts.pretty(),
		opts:   opts,
		depth:  depth,
		next: func(out *lexer.Output) (string, Result, bool, error) {
			type next struct {
				field form.Field
				ok    bool
			}
			n, err := call(out, func() next {
				field, ok := it.Next()
				if ok && field.Form == nil {
					if ff, found := f.Field(field.Key); found {
						field.Form = ff.ValueForm()
					}
				}
				return next{field, ok}
			})
			if err != nil || !n.ok {
				return "", nil, false, err
			}
			vf := n.field.Form
			if vf == nil {
				return "", nil, false, form.Unsupported(f, form.ShapeObject)
			}
			prefix := opts.key(n.field.Key) + ":" + opts.space()
			return prefix, newValue(vf, n.field.Value, opts, depth+1), true, nil
		},
	}
}

// newTuple returns a writer for `(...)`. Tuples are never broken across
// lines.
func newTuple(f form.TupleForm, it form.ItemIterator, opts *Options, depth int) Result {
	inline := opts.inline()
	index := 0
	labeled := false
	w := &containerWriter{
		open:  "(",
		close: ")",
		opts:  inline,
		depth: depth,
	}
	w.next = func(out *lexer.Output) (string, Result, bool, error) {
		type next struct {
			item form.Item
			ok   bool
		}
		n, err := call(out, func() next {
			item, ok := it.Next()
			if ok && item.Form == nil {
				item.Form = f.ItemForm(index, item.Label)
			}
			return next{item, ok}
		})
		if err != nil {
			return "", nil, false, err
		}
		if !n.ok {
			if index == 1 && !labeled && opts != nil && opts.ImplicitContext {
				w.close = ",)"
			}
			return "", nil, false, nil
		}
		index++
		prefix := ""
		if n.item.Label != "" {
			labeled = true
			prefix = inline.key(n.item.Label) + ":" + inline.space()
		}
		return prefix, newValue(n.item.Form, n.item.Value, inline, depth+1), true, nil
	}
	return w
}
