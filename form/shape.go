package form

// Shape names a grammar production a value is read from or written as.
type Shape uint8

const (
	ShapeNone Shape = iota
	ShapeUnit
	ShapeIdentifier
	ShapeNumber
	ShapeString
	ShapeArray
	ShapeObject
	ShapeTuple
	ShapeMarkup
)

func (s Shape) String() string {
	switch s {
	case ShapeUnit:
		return "unit"
	case ShapeIdentifier:
		return "identifier"
	case ShapeNumber:
		return "number"
	case ShapeString:
		return "string"
	case ShapeArray:
		return "array"
	case ShapeObject:
		return "object"
	case ShapeTuple:
		return "tuple"
	case ShapeMarkup:
		return "markup"
	}
	return "none"
}

// Supports reports whether f implements the capability for s.
func Supports(f Form, s Shape) bool {
	switch s {
	case ShapeUnit:
		_, ok := f.(UnitForm)
		return ok
	case ShapeIdentifier:
		_, ok := f.(IdentForm)
		return ok
	case ShapeNumber:
		_, ok := f.(NumberForm)
		return ok
	case ShapeString:
		_, ok := f.(StringForm)
		return ok
	case ShapeArray:
		_, ok := f.(ArrayForm)
		return ok
	case ShapeObject:
		_, ok := f.(ObjectForm)
		return ok
	case ShapeTuple:
		_, ok := f.(TupleForm)
		return ok
	case ShapeMarkup:
		_, ok := f.(MarkupForm)
		return ok
	}
	return false
}

// ShapeOf returns the shape v is written as. Forms implementing Shaper
// decide themselves; otherwise the form must support exactly one shape
// besides unit, and nil values are written as unit.
func ShapeOf(f Form, v any) Shape {
	if s, ok := f.(Shaper); ok {
		return s.ShapeOf(v)
	}
	if v == nil && Supports(f, ShapeUnit) {
		return ShapeUnit
	}
	found := ShapeNone
	for s := ShapeIdentifier; s <= ShapeMarkup; s++ {
		if !Supports(f, s) {
			continue
		}
		if found != ShapeNone {
			return ShapeNone
		}
		found = s
	}
	if found == ShapeNone && Supports(f, ShapeUnit) {
		return ShapeUnit
	}
	return found
}
