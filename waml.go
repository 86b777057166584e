package waml

import (
	"fmt"
	"reflect"

	"github.com/KimNorgaard/go-waml/ast"
	"github.com/KimNorgaard/go-waml/form"
	"github.com/KimNorgaard/go-waml/internal/formatter"
	"github.com/KimNorgaard/go-waml/internal/lexer"
	"github.com/KimNorgaard/go-waml/internal/parser"
)

// Former is implemented by types that describe their own form. It is
// consulted before the registry.
type Former interface {
	WAMLForm() form.Form
}

var formerType = reflect.TypeFor[Former]()

// Marshal returns the WAML encoding of v. The form of v comes from the
// WithForm option, from v itself when it implements Former, or from the
// registry. Values of the generic tree are written with ast.Form.
func Marshal(v any, opts ...Option) ([]byte, error) {
	o, err := newOptions(opts)
	if err != nil {
		return nil, err
	}
	f, err := o.formOfValue(v)
	if err != nil {
		return nil, err
	}
	return encode(v, f, o)
}

// Unmarshal parses the WAML-encoded data and stores the result in the
// value pointed to by v.
func Unmarshal(data []byte, v any, opts ...Option) error {
	o, err := newOptions(opts)
	if err != nil {
		return err
	}
	rv, f, err := o.target(v)
	if err != nil {
		return err
	}
	result, err := decode(data, f, o)
	if err != nil {
		return err
	}
	return store(rv, result)
}

// Parse parses data into the generic value tree.
func Parse(data []byte, opts ...Option) (ast.Value, error) {
	o, err := newOptions(opts)
	if err != nil {
		return nil, err
	}
	v, err := decode(data, ast.Form{}, o)
	if err != nil {
		return nil, err
	}
	return v.(ast.Value), nil
}

// ParseString is like Parse but reads from a string.
func ParseString(s string, opts ...Option) (ast.Value, error) {
	return Parse([]byte(s), opts...)
}

// Decode parses data with form f and returns the value it built.
func Decode(data []byte, f form.Form, opts ...Option) (any, error) {
	o, err := newOptions(opts)
	if err != nil {
		return nil, err
	}
	return decode(data, f, o)
}

// Encode writes v, described by form f.
func Encode(v any, f form.Form, opts ...Option) ([]byte, error) {
	o, err := newOptions(opts)
	if err != nil {
		return nil, err
	}
	return encode(v, f, o)
}

// Format parses a document and writes it back with the layout options.
// Comments are not kept; pass RejectComments to fail instead.
func Format(data []byte, opts ...Option) ([]byte, error) {
	o, err := newOptions(opts)
	if err != nil {
		return nil, err
	}
	v, err := decode(data, ast.Form{}, o)
	if err != nil {
		return nil, err
	}
	return encode(v, ast.Form{}, o)
}

func decode(data []byte, f form.Form, o *options) (any, error) {
	in := lexer.New()
	in.Feed(data, true)
	r := parser.Document(f, o.parser()).Step(in)
	if err := r.Err(); err != nil {
		return nil, err
	}
	return r.Value(), nil
}

func encode(v any, f form.Form, o *options) ([]byte, error) {
	out := lexer.NewOutput(0)
	r := formatter.Value(f, v, o.formatter()).Step(out)
	if err := r.Err(); err != nil {
		return nil, err
	}
	return out.Take(), nil
}

// formOfValue returns the form used to write v.
func (o *options) formOfValue(v any) (form.Form, error) {
	if o.form != nil {
		return o.form, nil
	}
	switch v := v.(type) {
	case nil:
		return nil, fmt.Errorf("waml: Marshal(nil)")
	case Former:
		return v.WAMLForm(), nil
	case ast.Value:
		return ast.Form{}, nil
	}
	return o.formOf(reflect.TypeOf(v))
}

// formOf returns the form of values of type t.
func (o *options) formOf(t reflect.Type) (form.Form, error) {
	if o.form != nil {
		return o.form, nil
	}
	if reflect.PointerTo(t).Implements(formerType) {
		return reflect.New(t).Interface().(Former).WAMLForm(), nil
	}
	f, err := o.registry.Resolve(t)
	if err != nil {
		return nil, &TypeError{Type: t, Err: err}
	}
	return f, nil
}

// target checks that v is a non-nil pointer and returns the value it points
// to with the form of its type.
func (o *options) target(v any) (reflect.Value, form.Form, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return reflect.Value{}, nil, fmt.Errorf("waml: Unmarshal(non-pointer %T or nil)", v)
	}
	f, err := o.formOf(rv.Type().Elem())
	if err != nil {
		return reflect.Value{}, nil, err
	}
	return rv.Elem(), f, nil
}

func store(dst reflect.Value, v any) error {
	if v == nil {
		dst.SetZero()
		return nil
	}
	src := reflect.ValueOf(v)
	if !src.Type().AssignableTo(dst.Type()) {
		return fmt.Errorf("waml: cannot store %T in %s", v, dst.Type())
	}
	dst.Set(src)
	return nil
}
