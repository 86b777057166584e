// Package bind provides Forms for ordinary Go types.
//
// Forms are declared explicitly instead of being derived by reflection:
// scalars have ready made forms, containers are built from the forms of
// their elements, and structs list their fields one by one.
//
//	type Point struct{ X, Y int64 }
//
//	pointForm, err := bind.Struct(
//		bind.Field("x", bind.Int64(), func(p *Point) *int64 { return &p.X }),
//		bind.Field("y", bind.Int64(), func(p *Point) *int64 { return &p.Y }),
//	)
//
// A Registry maps Go types to their forms so that callers can look a form
// up by type.
package bind

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/KimNorgaard/go-waml/form"
)

// as converts a value built by an element form to T.
func as[T any](v any) (T, error) {
	t, ok := v.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("cannot use %T as %T", v, zero)
	}
	return t, nil
}

type int64Form struct{}

// Int64 returns the form of int64 values. Hex literals above the int64
// range wrap around.
func Int64() form.Form { return int64Form{} }

func (int64Form) Int(_ *form.Attrs, v int64) (any, error) { return v, nil }

func (int64Form) Hex(_ *form.Attrs, v int64, _ int) (any, error) { return v, nil }

func (int64Form) BigInt(_ *form.Attrs, text string) (any, error) {
	return nil, fmt.Errorf("%s overflows int64", text)
}

func (int64Form) Decimal(_ *form.Attrs, text string) (any, error) {
	return nil, fmt.Errorf("%s is not an integer", text)
}

func (int64Form) NumberOf(v any) form.Number { return form.IntNumber(v.(int64)) }

type float64Form struct{}

// Float64 returns the form of float64 values.
func Float64() form.Form { return float64Form{} }

func (float64Form) Int(_ *form.Attrs, v int64) (any, error) { return float64(v), nil }

func (float64Form) Hex(_ *form.Attrs, v int64, _ int) (any, error) { return float64(uint64(v)), nil }

func (float64Form) BigInt(_ *form.Attrs, text string) (any, error) { return parseFloat(text) }

func (float64Form) Decimal(_ *form.Attrs, text string) (any, error) { return parseFloat(text) }

func parseFloat(text string) (any, error) {
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, fmt.Errorf("%s overflows float64", text)
	}
	return f, nil
}

// NumberOf panics for NaN and infinities, which have no literal.
func (float64Form) NumberOf(v any) form.Number {
	f := v.(float64)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		panic(fmt.Errorf("%v has no number literal", f))
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return form.IntNumber(int64(f))
	}
	return form.DecimalNumber(strconv.FormatFloat(f, 'g', -1, 64))
}

type bigIntForm struct{}

// BigInt returns the form of *big.Int values.
func BigInt() form.Form { return bigIntForm{} }

func (bigIntForm) Int(_ *form.Attrs, v int64) (any, error) { return big.NewInt(v), nil }

func (bigIntForm) Hex(_ *form.Attrs, v int64, _ int) (any, error) {
	return new(big.Int).SetUint64(uint64(v)), nil
}

func (bigIntForm) BigInt(_ *form.Attrs, text string) (any, error) {
	n, ok := new(big.Int).SetString(text, 10)
	if !ok {
		return nil, fmt.Errorf("invalid integer %s", text)
	}
	return n, nil
}

func (bigIntForm) Decimal(_ *form.Attrs, text string) (any, error) {
	return nil, fmt.Errorf("%s is not an integer", text)
}

func (bigIntForm) NumberOf(v any) form.Number {
	n := v.(*big.Int)
	if n.IsInt64() {
		return form.IntNumber(n.Int64())
	}
	return form.BigNumber(n.String())
}

type stringForm struct{}

// String returns the form of string values.
func String() form.Form { return stringForm{} }

func (stringForm) StringBuilder(*form.Attrs) (any, error) { return new(strings.Builder), nil }

func (stringForm) AppendRune(b any, c rune) any {
	b.(*strings.Builder).WriteRune(c)
	return b
}

func (stringForm) BuildString(_ *form.Attrs, b any) (any, error) {
	return b.(*strings.Builder).String(), nil
}

func (stringForm) StringOf(v any) string { return v.(string) }

type boolForm struct{}

// Bool returns the form of bool values, read from the identifiers true and
// false.
func Bool() form.Form { return boolForm{} }

func (boolForm) Identifier(_ *form.Attrs, name string) (any, error) {
	switch name {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return nil, fmt.Errorf("expected true or false, found %s", name)
}

func (boolForm) IdentifierOf(v any) string {
	if v.(bool) {
		return "true"
	}
	return "false"
}
