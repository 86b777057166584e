package ast

import (
	"github.com/KimNorgaard/go-waml/form"
)

// Constructors for building trees by hand.

func NewUnit() *Unit { return &Unit{} }

func NewBool(v bool) *Bool { return &Bool{Value: v} }

func NewIdent(name string) *Ident { return &Ident{Name: name} }

func NewInt(v int64) *Number { return &Number{Number: form.IntNumber(v)} }

func NewHex(v int64, digits int) *Number { return &Number{Number: form.HexNumber(v, digits)} }

func NewBig(text string) *Number { return &Number{Number: form.BigNumber(text)} }

func NewDecimal(text string) *Number { return &Number{Number: form.DecimalNumber(text)} }

func NewString(s string) *String { return &String{Value: s} }

func NewArray(elems ...Value) *Array { return &Array{Elements: elems} }

func NewObject(fields ...Field) *Object {
	o := &Object{}
	for _, f := range fields {
		o.Set(f.Key, f.Value)
	}
	return o
}

func NewTuple(items ...Item) *Tuple { return &Tuple{Items: items} }

func NewMarkup(nodes ...Node) *Markup { return &Markup{Nodes: nodes} }

// F returns an object field.
func F(key string, v Value) Field { return Field{Key: key, Value: v} }

// P returns a positional tuple item.
func P(v Value) Item { return Item{Value: v} }

// L returns a labeled tuple item.
func L(label string, v Value) Item { return Item{Label: label, Value: v} }

// T returns a markup text node.
func T(text string) Node { return Node{Text: text} }

// V returns a markup value node.
func V(v Value) Node { return Node{Value: v} }

// A returns an attribute with arguments. A nil args value is written as
// `()`.
func A(name string, args Value) form.Attr {
	if args == nil {
		return form.Attr{Name: name, Value: NewUnit(), Args: true}
	}
	return form.Attr{Name: name, Value: args, Args: true}
}

// N returns a nullary attribute.
func N(name string) form.Attr { return form.Attr{Name: name} }

// With sets the attributes of v and returns it.
func With[V Value](v V, attrs ...form.Attr) V {
	v.SetAttrs(form.NewAttrs(attrs...))
	return v
}
