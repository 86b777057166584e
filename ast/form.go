package ast

import (
	"fmt"
	"strings"

	"github.com/KimNorgaard/go-waml/form"
)

// Form builds and writes Values. It supports every capability and accepts
// any object key. The identifiers `true` and `false` become Bool values.
type Form struct{}

var (
	_ form.UnitForm   = Form{}
	_ form.IdentForm  = Form{}
	_ form.NumberForm = Form{}
	_ form.StringForm = Form{}
	_ form.ArrayForm  = Form{}
	_ form.ObjectForm = Form{}
	_ form.TupleForm  = Form{}
	_ form.MarkupForm = Form{}
	_ form.Shaper     = Form{}
	_ form.Attributed = Form{}
)

func (Form) ShapeOf(v any) form.Shape {
	if val, ok := v.(Value); ok && val != nil {
		return val.Shape()
	}
	return form.ShapeUnit
}

func (Form) AttrsOf(v any) *form.Attrs {
	if val, ok := v.(Value); ok && val != nil {
		return val.Attrs()
	}
	return nil
}

func (Form) Unit(attrs *form.Attrs) (any, error) {
	return &Unit{attributes{attrs}}, nil
}

func (Form) Identifier(attrs *form.Attrs, name string) (any, error) {
	switch name {
	case "true":
		return &Bool{attributes{attrs}, true}, nil
	case "false":
		return &Bool{attributes{attrs}, false}, nil
	}
	return &Ident{attributes{attrs}, name}, nil
}

func (Form) IdentifierOf(v any) string {
	switch v := v.(type) {
	case *Bool:
		if v.Value {
			return "true"
		}
		return "false"
	case *Ident:
		return v.Name
	}
	return ""
}

func (Form) Int(attrs *form.Attrs, v int64) (any, error) {
	return &Number{attributes{attrs}, form.IntNumber(v)}, nil
}

func (Form) Hex(attrs *form.Attrs, v int64, digits int) (any, error) {
	return &Number{attributes{attrs}, form.HexNumber(v, digits)}, nil
}

func (Form) BigInt(attrs *form.Attrs, text string) (any, error) {
	return &Number{attributes{attrs}, form.BigNumber(text)}, nil
}

func (Form) Decimal(attrs *form.Attrs, text string) (any, error) {
	return &Number{attributes{attrs}, form.DecimalNumber(text)}, nil
}

func (Form) NumberOf(v any) form.Number {
	if n, ok := v.(*Number); ok {
		return n.Number
	}
	return form.Number{}
}

func (Form) StringBuilder(*form.Attrs) (any, error) {
	return &strings.Builder{}, nil
}

func (Form) AppendRune(b any, c rune) any {
	b.(*strings.Builder).WriteRune(c)
	return b
}

func (Form) BuildString(attrs *form.Attrs, b any) (any, error) {
	return &String{attributes{attrs}, b.(*strings.Builder).String()}, nil
}

func (Form) StringOf(v any) string {
	if s, ok := v.(*String); ok {
		return s.Value
	}
	return ""
}

func (Form) ElementForm() form.Form { return Form{} }

func (Form) ArrayBuilder(*form.Attrs) (any, error) {
	return &Array{}, nil
}

func (Form) AppendElement(b any, elem any) (any, error) {
	a := b.(*Array)
	v, err := asValue(elem)
	if err != nil {
		return nil, err
	}
	a.Elements = append(a.Elements, v)
	return a, nil
}

func (Form) BuildArray(attrs *form.Attrs, b any) (any, error) {
	a := b.(*Array)
	a.Attributes = attrs
	return a, nil
}

func (Form) Elements(v any) form.Iterator {
	a, _ := v.(*Array)
	if a == nil {
		return form.ElementIterator[Value]{SliceIterator: form.Iterate[Value](nil)}
	}
	return form.ElementIterator[Value]{SliceIterator: form.Iterate(a.Elements)}
}

func (Form) ObjectBuilder(*form.Attrs) (any, error) {
	return &Object{}, nil
}

func (Form) Field(string) (form.FieldForm, bool) {
	return field{}, true
}

func (Form) BuildObject(attrs *form.Attrs, b any) (any, error) {
	o := b.(*Object)
	o.Attributes = attrs
	return o, nil
}

func (Form) Fields(v any) form.FieldIterator {
	o, _ := v.(*Object)
	var fields []form.Field
	if o != nil {
		fields = make([]form.Field, len(o.Fields))
		for i, f := range o.Fields {
			fields[i] = form.Field{Key: f.Key, Value: f.Value, Form: Form{}}
		}
	}
	return form.Iterate(fields)
}

type field struct{}

func (field) ValueForm() form.Form { return Form{} }

func (field) SetField(b any, key string, v any) (any, error) {
	val, err := asValue(v)
	if err != nil {
		return nil, err
	}
	b.(*Object).Set(key, val)
	return b, nil
}

func (Form) ItemForm(int, string) form.Form { return Form{} }

func (Form) TupleBuilder(*form.Attrs) (any, error) {
	return &Tuple{}, nil
}

func (Form) AppendItem(b any, label string, v any) (any, error) {
	t := b.(*Tuple)
	val, err := asValue(v)
	if err != nil {
		return nil, err
	}
	t.Items = append(t.Items, Item{Label: label, Value: val})
	return t, nil
}

func (Form) BuildTuple(attrs *form.Attrs, b any) (any, error) {
	t := b.(*Tuple)
	t.Attributes = attrs
	return t, nil
}

func (Form) EmptyTuple(attrs *form.Attrs) (any, error) {
	return &Unit{attributes{attrs}}, nil
}

func (Form) UnaryTuple(attrs *form.Attrs, v any) (any, error) {
	val, err := asValue(v)
	if err != nil {
		return nil, err
	}
	return &Tuple{attributes{attrs}, []Item{{Value: val}}}, nil
}

func (Form) Items(v any) form.ItemIterator {
	t, _ := v.(*Tuple)
	var items []form.Item
	if t != nil {
		items = make([]form.Item, len(t.Items))
		for i, it := range t.Items {
			items[i] = form.Item{Label: it.Label, Value: it.Value, Form: Form{}}
		}
	}
	return form.Iterate(items)
}

func (Form) NodeForm() form.Form { return Form{} }

func (Form) MarkupBuilder(*form.Attrs) (any, error) {
	return &Markup{}, nil
}

func (Form) AppendText(b any, text string) (any, error) {
	m := b.(*Markup)
	if n := len(m.Nodes); n > 0 && m.Nodes[n-1].IsText() {
		m.Nodes[n-1].Text += text
		return m, nil
	}
	m.Nodes = append(m.Nodes, Node{Text: text})
	return m, nil
}

func (Form) AppendNode(b any, node any) (any, error) {
	m := b.(*Markup)
	v, err := asValue(node)
	if err != nil {
		return nil, err
	}
	m.Nodes = append(m.Nodes, Node{Value: v})
	return m, nil
}

func (Form) BuildMarkup(attrs *form.Attrs, b any) (any, error) {
	m := b.(*Markup)
	m.Attributes = attrs
	return m, nil
}

func (Form) Nodes(v any) form.NodeIterator {
	m, _ := v.(*Markup)
	var nodes []form.Node
	if m != nil {
		nodes = make([]form.Node, len(m.Nodes))
		for i, n := range m.Nodes {
			if n.IsText() {
				nodes[i] = form.Node{Text: n.Text, IsText: true}
			} else {
				nodes[i] = form.Node{Value: n.Value}
			}
		}
	}
	return form.Iterate(nodes)
}

func (Form) IsInline(node any) bool {
	_, ok := node.(*Markup)
	return ok
}

func asValue(v any) (Value, error) {
	if v == nil {
		return &Unit{}, nil
	}
	val, ok := v.(Value)
	if !ok {
		return nil, fmt.Errorf("waml: %T is not an ast.Value", v)
	}
	return val, nil
}
