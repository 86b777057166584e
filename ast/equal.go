package ast

import (
	"github.com/google/go-cmp/cmp"

	"github.com/KimNorgaard/go-waml/form"
)

// CmpOptions compare Values with go-cmp, including their attributes.
var CmpOptions cmp.Options

func init() {
	CmpOptions = cmp.Options{
		cmp.Comparer(attrsEqual),
		cmp.AllowUnexported(Unit{}, Bool{}, Ident{}, Number{}, String{},
			Array{}, Object{}, Tuple{}, Markup{}),
	}
}

// Equal reports whether a and b are the same value, attributes included.
func Equal(a, b Value) bool {
	return cmp.Equal(a, b, CmpOptions)
}

// Diff returns a human readable diff of a and b, or "" when equal.
func Diff(a, b Value) string {
	return cmp.Diff(a, b, CmpOptions)
}

func attrsEqual(a, b *form.Attrs) bool {
	if a.Len() != b.Len() {
		return false
	}
	for i := range a.Len() {
		x, y := a.At(i), b.At(i)
		if x.Name != y.Name || x.Args != y.Args {
			return false
		}
		if !cmp.Equal(x.Value, y.Value, CmpOptions) {
			return false
		}
	}
	return true
}
