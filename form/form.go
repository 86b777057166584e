// Package form defines how WAML values are built while parsing and taken
// apart while writing.
//
// A Form describes one kind of target value. It implements the subset of
// capability interfaces (UnitForm, IdentForm, NumberForm, StringForm,
// ArrayForm, ObjectForm, TupleForm, MarkupForm) that its values support.
// Parsing input of a shape the form does not implement fails with an
// UnsupportedError naming the missing capability.
//
// Builders are opaque to the parser. A builder is created when a container
// opens, passed to every append call, and consumed by exactly one build
// call. Append methods return the builder to use from then on, which may
// or may not be the one passed in; callers always continue with the
// returned value.
package form

// Form is any value implementing one or more capability interfaces.
type Form interface{}

// UnitForm builds the unit value `()`, and attributed values with no body.
type UnitForm interface {
	Unit(attrs *Attrs) (any, error)
}

// IdentForm builds values from bare identifiers. Whether an identifier such
// as `true` denotes a boolean is decided here, not by the parser.
type IdentForm interface {
	Identifier(attrs *Attrs, name string) (any, error)
	IdentifierOf(v any) string
}

// NumberForm materializes numeric literals. The parser picks the call that
// preserves the literal exactly; the form picks the representation.
type NumberForm interface {
	Int(attrs *Attrs, v int64) (any, error)
	Hex(attrs *Attrs, v int64, digits int) (any, error)
	BigInt(attrs *Attrs, text string) (any, error)
	Decimal(attrs *Attrs, text string) (any, error)
	NumberOf(v any) Number
}

// StringForm accumulates quoted strings one character at a time.
type StringForm interface {
	StringBuilder(attrs *Attrs) (any, error)
	AppendRune(b any, c rune) any
	BuildString(attrs *Attrs, b any) (any, error)
	StringOf(v any) string
}

// ArrayForm builds `[...]` values from elements of ElementForm.
type ArrayForm interface {
	ElementForm() Form
	ArrayBuilder(attrs *Attrs) (any, error)
	AppendElement(b any, elem any) (any, error)
	BuildArray(attrs *Attrs, b any) (any, error)
	Elements(v any) Iterator
}

// ObjectForm builds `{...}` values. Field returns the form of the field
// named key; keys it does not know are rejected unless the form also
// implements AnnexForm.
type ObjectForm interface {
	ObjectBuilder(attrs *Attrs) (any, error)
	Field(key string) (FieldForm, bool)
	BuildObject(attrs *Attrs, b any) (any, error)
	Fields(v any) FieldIterator
}

// FieldForm parses and stores one object field.
type FieldForm interface {
	ValueForm() Form
	SetField(b any, key string, v any) (any, error)
}

// AnnexForm is implemented by object forms with a catch-all field that
// absorbs keys no other field recognizes.
type AnnexForm interface {
	Annex() FieldForm
}

// TupleForm builds `(...)` values. An empty tuple becomes EmptyTuple and a
// tuple holding a single unlabeled item becomes UnaryTuple; builders are
// only created for the remaining cases.
type TupleForm interface {
	ItemForm(index int, label string) Form
	TupleBuilder(attrs *Attrs) (any, error)
	AppendItem(b any, label string, v any) (any, error)
	BuildTuple(attrs *Attrs, b any) (any, error)
	EmptyTuple(attrs *Attrs) (any, error)
	UnaryTuple(attrs *Attrs, v any) (any, error)
	Items(v any) ItemIterator
}

// MarkupForm builds `<<...>>` values from text runs and embedded nodes.
// IsInline reports whether a node is itself markup and can be written
// without braces.
type MarkupForm interface {
	NodeForm() Form
	MarkupBuilder(attrs *Attrs) (any, error)
	AppendText(b any, text string) (any, error)
	AppendNode(b any, node any) (any, error)
	BuildMarkup(attrs *Attrs, b any) (any, error)
	Nodes(v any) NodeIterator
	IsInline(node any) bool
}

// Shaper is implemented by forms supporting more than one capability. It
// tells writers which shape a value has.
type Shaper interface {
	ShapeOf(v any) Shape
}

// Attributed is implemented by forms whose values carry attributes.
type Attributed interface {
	AttrsOf(v any) *Attrs
}

// AttrForms is implemented by forms that build attribute arguments
// themselves. Forms without it use the generic value tree.
type AttrForms interface {
	AttrForm(name string) Form
}

// Iterator walks array elements.
type Iterator interface {
	Next() (any, bool)
}

// Field is one object field handed to a writer.
type Field struct {
	Key   string
	Value any
	Form  Form
}

// FieldIterator walks object fields in writing order.
type FieldIterator interface {
	Next() (Field, bool)
}

// Item is one tuple item. Label is empty for positional items.
type Item struct {
	Label string
	Value any
	Form  Form
}

// ItemIterator walks tuple items.
type ItemIterator interface {
	Next() (Item, bool)
}

// Node is one markup node: a text run when IsText is set, otherwise an
// embedded value.
type Node struct {
	Text   string
	Value  any
	IsText bool
}

// NodeIterator walks markup nodes.
type NodeIterator interface {
	Next() (Node, bool)
}

// SliceIterator iterates over a slice of values.
type SliceIterator[T any] struct {
	items []T
	i     int
}

// Iterate returns an Iterator over items.
func Iterate[T any](items []T) *SliceIterator[T] {
	return &SliceIterator[T]{items: items}
}

func (it *SliceIterator[T]) Next() (T, bool) {
	var zero T
	if it.i >= len(it.items) {
		return zero, false
	}
	v := it.items[it.i]
	it.i++
	return v, true
}

// ElementIterator adapts a SliceIterator to Iterator.
type ElementIterator[T any] struct {
	*SliceIterator[T]
}

func (it ElementIterator[T]) Next() (any, bool) {
	return it.SliceIterator.Next()
}
