package formatter

import (
	"unicode/utf8"

	"github.com/KimNorgaard/go-waml/errors"
	"github.com/KimNorgaard/go-waml/form"
	"github.com/KimNorgaard/go-waml/internal/lexer"
	"github.com/KimNorgaard/go-waml/internal/token"
)

type markupStep uint8

const (
	markupOpen markupStep = iota
	markupNext
	markupChild
	markupClose
)

// markupWriter writes `<<...>>`. Inline nodes are written as nested markup
// and every other node in braces. The writer looks one node ahead so that
// a bare attribute node is not run together with what follows it.
type markupWriter struct {
	cont
	f      form.MarkupForm
	it     form.NodeIterator
	opts   *Options
	depth  int
	peeked bool
	node   form.Node
	more   bool
	e      emitter
	child  Result
	step   markupStep
}

func newMarkup(f form.MarkupForm, it form.NodeIterator, opts *Options, depth int) Result {
	return &markupWriter{f: f, it: it, opts: opts.inline(), depth: depth, e: emitter{s: "<<"}}
}

func (p *markupWriter) Step(out *lexer.Output) Result {
	for {
		switch p.step {
		case markupOpen:
			if !p.e.flush(out) {
				return stall(p, out)
			}
			p.step = markupNext
		case markupNext:
			node, ok, err := p.advance(out)
			if err != nil {
				return Fail(err)
			}
			if !ok {
				p.e.set(">>")
				p.step = markupClose
				continue
			}
			if node.IsText {
				p.child = newText(markupText(node.Text))
			} else {
				child, err := p.nodeWriter(out, node.Value)
				if err != nil {
					return Fail(err)
				}
				p.child = child
			}
			p.step = markupChild
		case markupChild:
			p.child = p.child.Step(out)
			switch p.child.Status() {
			case StatusCont:
				return p
			case StatusError:
				return p.child
			}
			p.child = nil
			p.step = markupNext
		case markupClose:
			if !p.e.flush(out) {
				return stall(p, out)
			}
			return Done
		}
	}
}

// advance returns the next node and peeks at the one after it.
func (p *markupWriter) advance(out *lexer.Output) (form.Node, bool, error) {
	if !p.peeked {
		if err := p.peek(out); err != nil {
			return form.Node{}, false, err
		}
	}
	node, ok := p.node, p.more
	if !ok {
		return node, false, nil
	}
	if err := p.peek(out); err != nil {
		return form.Node{}, false, err
	}
	return node, true, nil
}

func (p *markupWriter) peek(out *lexer.Output) error {
	type next struct {
		node form.Node
		ok   bool
	}
	n, err := call(out, func() next {
		node, ok := p.it.Next()
		return next{node, ok}
	})
	if err != nil {
		return err
	}
	p.node, p.more, p.peeked = n.node, n.ok, true
	return nil
}

// nodeWriter returns the writer for an embedded value.
func (p *markupWriter) nodeWriter(out *lexer.Output, v any) (Result, error) {
	nf := p.f.NodeForm()
	inline, err := call(out, func() bool { return p.f.IsInline(v) })
	if err != nil {
		return nil, err
	}
	if inline {
		w := newValue(nf, v, p.opts, p.depth+1)
		w.markup = true
		return w, nil
	}
	shape, err := call(out, func() form.Shape { return form.ShapeOf(nf, v) })
	if err != nil {
		return nil, err
	}
	attrs, err := call(out, func() *form.Attrs { return attrsOf(nf, v) })
	if err != nil {
		return nil, err
	}
	if shape == form.ShapeNone {
		return nil, errors.Errorf(out.Position(), "cannot determine the shape of %T with %T", v, nf)
	}
	if attrs.Len() == 0 {
		return newWrapped("{", newValue(nf, v, p.opts, p.depth+1), "}"), nil
	}
	w := newValue(nf, v, p.opts, p.depth+1)
	w.bare = true
	body := newWrapped("{", w, "}")
	if shape == form.ShapeUnit {
		if !p.needsBraces() {
			body = nil
		} else {
			body = newText("{}")
		}
	}
	return newSequence(newAttrs(nf, attrs, p.opts, p.depth+1, true), body), nil
}

// needsBraces reports whether a bare attribute run would absorb the node
// that follows it.
func (p *markupWriter) needsBraces() bool {
	if !p.more {
		return false
	}
	if !p.node.IsText {
		return true
	}
	c, _ := utf8.DecodeRuneInString(p.node.Text)
	return c == '(' || token.IsIdentifierChar(c)
}

// sequenceWriter runs writers one after another. Nil writers are skipped.
type sequenceWriter struct {
	cont
	parts []Result
}

func newSequence(parts ...Result) Result {
	return &sequenceWriter{parts: parts}
}

func (p *sequenceWriter) Step(out *lexer.Output) Result {
	for len(p.parts) > 0 {
		if p.parts[0] == nil {
			p.parts = p.parts[1:]
			continue
		}
		r := p.parts[0].Step(out)
		switch r.Status() {
		case StatusCont:
			p.parts[0] = r
			return p
		case StatusError:
			return r
		}
		p.parts = p.parts[1:]
	}
	return Done
}
