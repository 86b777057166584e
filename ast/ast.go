// Package ast is the generic WAML value tree. Every value may carry an
// attribute run. Form builds and takes apart these values and is the form
// used when no schema is given.
package ast

import (
	"github.com/KimNorgaard/go-waml/form"
)

// Value is the base interface for all WAML values.
type Value interface {
	// Attrs returns the attributes prefixing the value, or nil.
	Attrs() *form.Attrs
	// SetAttrs replaces the attributes of the value.
	SetAttrs(attrs *form.Attrs)
	// Shape returns the grammar production the value is written as.
	Shape() form.Shape
}

type attributes struct {
	Attributes *form.Attrs
}

func (a *attributes) Attrs() *form.Attrs         { return a.Attributes }
func (a *attributes) SetAttrs(attrs *form.Attrs) { a.Attributes = attrs }

// Unit is the empty value `()`. With attributes it is written as the bare
// attribute run, e.g. `@br`.
type Unit struct {
	attributes
}

func (*Unit) Shape() form.Shape { return form.ShapeUnit }

// Bool is one of the identifiers `true` or `false`.
type Bool struct {
	attributes
	Value bool
}

func (*Bool) Shape() form.Shape { return form.ShapeIdentifier }

// Ident is a bare identifier.
type Ident struct {
	attributes
	Name string
}

func (*Ident) Shape() form.Shape { return form.ShapeIdentifier }

// Number is a numeric literal, kept as written.
type Number struct {
	attributes
	form.Number
}

func (*Number) Shape() form.Shape { return form.ShapeNumber }

// String is a quoted string.
type String struct {
	attributes
	Value string
}

func (*String) Shape() form.Shape { return form.ShapeString }

// Array is a `[...]` sequence of values.
type Array struct {
	attributes
	Elements []Value
}

func (*Array) Shape() form.Shape { return form.ShapeArray }

// Field is one key/value pair of an Object.
type Field struct {
	Key   string
	Value Value
}

// Object is a `{...}` sequence of fields. Keys are unique; setting an
// existing key replaces its value and keeps its position.
type Object struct {
	attributes
	Fields []Field
}

func (*Object) Shape() form.Shape { return form.ShapeObject }

// Set stores v under key.
func (o *Object) Set(key string, v Value) {
	for i := range o.Fields {
		if o.Fields[i].Key == key {
			o.Fields[i].Value = v
			return
		}
	}
	o.Fields = append(o.Fields, Field{Key: key, Value: v})
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (Value, bool) {
	for _, f := range o.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// Item is one Tuple item. Label is empty for positional items.
type Item struct {
	Label string
	Value Value
}

// Tuple is a `(...)` sequence of positional and labeled items.
type Tuple struct {
	attributes
	Items []Item
}

func (*Tuple) Shape() form.Shape { return form.ShapeTuple }

// Node is one Markup node: a text run when Value is nil, otherwise an
// embedded value.
type Node struct {
	Text  string
	Value Value
}

// IsText reports whether n is a text run.
func (n Node) IsText() bool { return n.Value == nil }

// Markup is a `<<...>>` mix of text and embedded values.
type Markup struct {
	attributes
	Nodes []Node
}

func (*Markup) Shape() form.Shape { return form.ShapeMarkup }

// Text returns the concatenated text runs of m, skipping embedded values.
func (m *Markup) Text() string {
	var s string
	for _, n := range m.Nodes {
		if n.IsText() {
			s += n.Text
		}
	}
	return s
}
