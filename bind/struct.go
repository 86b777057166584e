package bind

import (
	"fmt"
	"maps"
	"reflect"
	"slices"

	"github.com/KimNorgaard/go-waml/form"
)

// FieldSpec declares one field of a struct form.
type FieldSpec[T any] struct {
	name      string
	form      form.Form
	set       func(p *T, key string, v any) error
	get       func(p *T) any
	each      func(p *T) []form.Field
	omitEmpty bool
	annex     bool
}

// Field declares the field called name, read with f and stored at the
// location ptr returns.
func Field[T, F any](name string, f form.Form, ptr func(*T) *F) FieldSpec[T] {
	return FieldSpec[T]{
		name: name,
		form: f,
		set: func(p *T, _ string, v any) error {
			t, err := as[F](v)
			if err != nil {
				return err
			}
			*ptr(p) = t
			return nil
		},
		get: func(p *T) any { return *ptr(p) },
	}
}

// OmitEmpty skips the field when writing a zero value.
func (s FieldSpec[T]) OmitEmpty() FieldSpec[T] {
	s.omitEmpty = true
	return s
}

// Annex declares a map absorbing every key no other field claims. Its
// entries are written after the declared fields in key order.
func Annex[T, V any](f form.Form, ptr func(*T) *map[string]V) FieldSpec[T] {
	return FieldSpec[T]{
		form:  f,
		annex: true,
		set: func(p *T, key string, v any) error {
			t, err := as[V](v)
			if err != nil {
				return err
			}
			m := ptr(p)
			if *m == nil {
				*m = make(map[string]V)
			}
			(*m)[key] = t
			return nil
		},
		each: func(p *T) []form.Field {
			m := *ptr(p)
			fields := make([]form.Field, 0, len(m))
			for _, k := range slices.Sorted(maps.Keys(m)) {
				fields = append(fields, form.Field{Key: k, Value: m[k], Form: f})
			}
			return fields
		},
	}
}

// StructForm reads objects into values of type T.
type StructForm[T any] struct {
	fields []FieldSpec[T]
	index  map[string]int
	annex  *FieldSpec[T]
}

// Struct returns the form of T with the given fields. Fields are written
// in the order given. Keys without a field are rejected unless an Annex
// is declared.
func Struct[T any](specs ...FieldSpec[T]) (*StructForm[T], error) {
	f := &StructForm[T]{index: make(map[string]int)}
	for _, s := range specs {
		if s.annex {
			if f.annex != nil {
				return nil, form.ErrDuplicateAnnex
			}
			f.annex = &s
			continue
		}
		if _, dup := f.index[s.name]; dup {
			return nil, fmt.Errorf("duplicate field %q", s.name)
		}
		f.index[s.name] = len(f.fields)
		f.fields = append(f.fields, s)
	}
	return f, nil
}

// MustStruct is like Struct but panics on error.
func MustStruct[T any](specs ...FieldSpec[T]) *StructForm[T] {
	f, err := Struct(specs...)
	if err != nil {
		panic(err)
	}
	return f
}

func (f *StructForm[T]) ObjectBuilder(*form.Attrs) (any, error) { return new(T), nil }

func (f *StructForm[T]) Field(key string) (form.FieldForm, bool) {
	i, ok := f.index[key]
	if !ok {
		return nil, false
	}
	return structField[T]{&f.fields[i]}, true
}

func (f *StructForm[T]) BuildObject(_ *form.Attrs, b any) (any, error) { return *b.(*T), nil }

func (f *StructForm[T]) Fields(v any) form.FieldIterator {
	t, _ := v.(T)
	fields := make([]form.Field, 0, len(f.fields))
	for _, s := range f.fields {
		fv := s.get(&t)
		if s.omitEmpty && isEmpty(fv) {
			continue
		}
		fields = append(fields, form.Field{Key: s.name, Value: fv, Form: s.form})
	}
	if f.annex != nil {
		fields = append(fields, f.annex.each(&t)...)
	}
	return form.Iterate(fields)
}

func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map:
		return rv.Len() == 0
	}
	return rv.IsZero()
}

type structField[T any] struct {
	spec *FieldSpec[T]
}

func (f structField[T]) ValueForm() form.Form { return f.spec.form }

func (f structField[T]) SetField(b any, key string, v any) (any, error) {
	return b, f.spec.set(b.(*T), key, v)
}

// Annex returns the annex field, or nil when none was declared.
func (f *StructForm[T]) Annex() form.FieldForm {
	if f.annex == nil {
		return nil
	}
	return structField[T]{f.annex}
}
