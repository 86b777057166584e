package bind

import (
	"maps"
	"slices"

	"github.com/tidwall/btree"

	"github.com/KimNorgaard/go-waml/form"
)

// SliceForm reads arrays into []T.
type SliceForm[T any] struct {
	elem form.Form
}

// Slice returns the form of []T whose elements are read with elem.
func Slice[T any](elem form.Form) *SliceForm[T] {
	return &SliceForm[T]{elem: elem}
}

func (f *SliceForm[T]) ElementForm() form.Form { return f.elem }

func (f *SliceForm[T]) ArrayBuilder(*form.Attrs) (any, error) { return []T{}, nil }

func (f *SliceForm[T]) AppendElement(b any, elem any) (any, error) {
	t, err := as[T](elem)
	if err != nil {
		return nil, err
	}
	return append(b.([]T), t), nil
}

func (f *SliceForm[T]) BuildArray(_ *form.Attrs, b any) (any, error) { return b.([]T), nil }

func (f *SliceForm[T]) Elements(v any) form.Iterator {
	s, _ := v.([]T)
	return form.ElementIterator[T]{SliceIterator: form.Iterate(s)}
}

// MapForm reads objects into map[string]V. Every key is accepted. Fields
// are written in key order.
type MapForm[V any] struct {
	elem form.Form
}

// Map returns the form of map[string]V whose values are read with elem.
func Map[V any](elem form.Form) *MapForm[V] {
	return &MapForm[V]{elem: elem}
}

func (f *MapForm[V]) ObjectBuilder(*form.Attrs) (any, error) { return map[string]V{}, nil }

func (f *MapForm[V]) Field(string) (form.FieldForm, bool) { return nil, false }

func (f *MapForm[V]) Annex() form.FieldForm { return mapField[V]{f.elem} }

func (f *MapForm[V]) BuildObject(_ *form.Attrs, b any) (any, error) { return b, nil }

func (f *MapForm[V]) Fields(v any) form.FieldIterator {
	m, _ := v.(map[string]V)
	fields := make([]form.Field, 0, len(m))
	for _, k := range slices.Sorted(maps.Keys(m)) {
		fields = append(fields, form.Field{Key: k, Value: m[k], Form: f.elem})
	}
	return form.Iterate(fields)
}

type mapField[V any] struct {
	elem form.Form
}

func (f mapField[V]) ValueForm() form.Form { return f.elem }

func (f mapField[V]) SetField(b any, key string, v any) (any, error) {
	t, err := as[V](v)
	if err != nil {
		return nil, err
	}
	b.(map[string]V)[key] = t
	return b, nil
}

// SortedMapForm reads objects into a *btree.Map keyed by field name.
type SortedMapForm[V any] struct {
	elem form.Form
}

// SortedMap returns the form of *btree.Map[string, V] whose values are
// read with elem.
func SortedMap[V any](elem form.Form) *SortedMapForm[V] {
	return &SortedMapForm[V]{elem: elem}
}

func (f *SortedMapForm[V]) ObjectBuilder(*form.Attrs) (any, error) {
	return new(btree.Map[string, V]), nil
}

func (f *SortedMapForm[V]) Field(string) (form.FieldForm, bool) { return nil, false }

func (f *SortedMapForm[V]) Annex() form.FieldForm { return sortedField[V]{f.elem} }

func (f *SortedMapForm[V]) BuildObject(_ *form.Attrs, b any) (any, error) { return b, nil }

func (f *SortedMapForm[V]) Fields(v any) form.FieldIterator {
	m, _ := v.(*btree.Map[string, V])
	if m == nil {
		m = new(btree.Map[string, V])
	}
	return &sortedFields[V]{iter: m.Iter(), elem: f.elem}
}

type sortedField[V any] struct {
	elem form.Form
}

func (f sortedField[V]) ValueForm() form.Form { return f.elem }

func (f sortedField[V]) SetField(b any, key string, v any) (any, error) {
	t, err := as[V](v)
	if err != nil {
		return nil, err
	}
	b.(*btree.Map[string, V]).Set(key, t)
	return b, nil
}

type sortedFields[V any] struct {
	iter    btree.MapIter[string, V]
	started bool
	elem    form.Form
}

func (it *sortedFields[V]) Next() (form.Field, bool) {
	var more bool
	if it.started {
		more = it.iter.Next()
	} else {
		more = it.iter.First()
		it.started = true
	}
	if !more {
		return form.Field{}, false
	}
	return form.Field{Key: it.iter.Key(), Value: it.iter.Value(), Form: it.elem}, true
}
