package bind

import (
	"errors"
	"fmt"
	"math/big"
	"reflect"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/KimNorgaard/go-waml/ast"
	"github.com/KimNorgaard/go-waml/form"
)

var (
	// ErrNoForm is returned when a type has neither a form nor a factory.
	ErrNoForm = errors.New("no form registered")
	// ErrCycle is returned when a factory needs the form it is building.
	ErrCycle = errors.New("form resolution cycle")
)

// Factory builds the form of a type on first use. Forms of other types it
// depends on are resolved through r.
type Factory func(r *Resolver) (form.Form, error)

// Registry maps Go types to forms. It is safe for concurrent use; lookups
// never block and forms built by factories are cached.
type Registry struct {
	forms     *xsync.MapOf[reflect.Type, form.Form]
	factories *xsync.MapOf[reflect.Type, Factory]
}

// Default is the registry used when no other is given.
var Default = NewRegistry()

// NewRegistry returns a registry knowing int64, float64, *big.Int, string,
// bool and the generic value tree, which also serves any.
func NewRegistry() *Registry {
	r := &Registry{
		forms:     xsync.NewMapOf[reflect.Type, form.Form](),
		factories: xsync.NewMapOf[reflect.Type, Factory](),
	}
	Register[int64](r, Int64())
	Register[float64](r, Float64())
	Register[*big.Int](r, BigInt())
	Register[string](r, String())
	Register[bool](r, Bool())
	Register[ast.Value](r, ast.Form{})
	Register[any](r, ast.Form{})
	return r
}

// Register sets the form of T, replacing any earlier form or factory.
func Register[T any](r *Registry, f form.Form) {
	t := reflect.TypeFor[T]()
	r.factories.Delete(t)
	r.forms.Store(t, f)
}

// RegisterFactory sets the factory building the form of T. A form already
// resolved for T is dropped.
//
// A factory cannot resolve T itself, directly or through other factories:
// there is no placeholder for a form still being built, so resolving a
// self-referential type such as a tree node fails with ErrCycle. Such types
// need a hand-written form, registered with Register, that looks up the
// forms of its children while parsing rather than when it is built.
func RegisterFactory[T any](r *Registry, fn Factory) {
	t := reflect.TypeFor[T]()
	r.forms.Delete(t)
	r.factories.Store(t, fn)
}

// Resolve returns the form of t.
func (r *Registry) Resolve(t reflect.Type) (form.Form, error) {
	return r.resolver().Resolve(t)
}

func (r *Registry) resolver() *Resolver {
	return &Resolver{r: r, resolving: make(map[reflect.Type]bool)}
}

// Lookup returns the form of T in r.
func Lookup[T any](r *Registry) (form.Form, error) {
	return r.Resolve(reflect.TypeFor[T]())
}

// Resolver resolves forms on behalf of one top level lookup. It tracks the
// types whose factories are running so that a factory depending on its own
// type fails instead of recursing.
type Resolver struct {
	r         *Registry
	resolving map[reflect.Type]bool
}

// Resolve returns the form of t, running its factory if needed.
func (rs *Resolver) Resolve(t reflect.Type) (form.Form, error) {
	if f, ok := rs.r.forms.Load(t); ok {
		return f, nil
	}
	fn, ok := rs.r.factories.Load(t)
	if !ok {
		return nil, fmt.Errorf("%w for %v", ErrNoForm, t)
	}
	if rs.resolving[t] {
		return nil, fmt.Errorf("%w at %v", ErrCycle, t)
	}
	rs.resolving[t] = true
	defer delete(rs.resolving, t)
	f, err := fn(rs)
	if err != nil {
		return nil, fmt.Errorf("building form for %v: %w", t, err)
	}
	// Concurrent resolutions may race; whichever form lands first is kept.
	f, _ = rs.r.forms.LoadOrStore(t, f)
	return f, nil
}

// ResolveFor returns the form of T.
func ResolveFor[T any](rs *Resolver) (form.Form, error) {
	return rs.Resolve(reflect.TypeFor[T]())
}

// SliceOf registers a factory for []T built from the form of T.
func SliceOf[T any](r *Registry) {
	RegisterFactory[[]T](r, func(rs *Resolver) (form.Form, error) {
		elem, err := ResolveFor[T](rs)
		if err != nil {
			return nil, err
		}
		return Slice[T](elem), nil
	})
}

// MapOf registers a factory for map[string]V built from the form of V.
func MapOf[V any](r *Registry) {
	RegisterFactory[map[string]V](r, func(rs *Resolver) (form.Form, error) {
		elem, err := ResolveFor[V](rs)
		if err != nil {
			return nil, err
		}
		return Map[V](elem), nil
	})
}
