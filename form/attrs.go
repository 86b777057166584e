package form

// Attr is one `@name` or `@name(args)` annotation. Args reports whether a
// parenthesized argument tuple was present, which distinguishes `@a()`
// from `@a`. Value holds the built arguments and is nil for nullary
// attributes.
type Attr struct {
	Name  string
	Value any
	Args  bool
}

// Attrs is the ordered attribute run prefixing one value. A nil *Attrs
// means the value has no attributes; every method but Set accepts a nil
// receiver.
type Attrs struct {
	list  []Attr
	index map[string]int
}

// NewAttrs returns an Attrs holding attrs in order.
func NewAttrs(attrs ...Attr) *Attrs {
	a := &Attrs{}
	for _, attr := range attrs {
		a.Set(attr)
	}
	return a
}

// Set adds attr. An attribute with the same name is replaced in place.
func (a *Attrs) Set(attr Attr) {
	if a.index == nil {
		a.index = make(map[string]int)
	}
	if i, ok := a.index[attr.Name]; ok {
		a.list[i] = attr
		return
	}
	a.index[attr.Name] = len(a.list)
	a.list = append(a.list, attr)
}

// Get returns the attribute called name.
func (a *Attrs) Get(name string) (Attr, bool) {
	if a == nil {
		return Attr{}, false
	}
	i, ok := a.index[name]
	if !ok {
		return Attr{}, false
	}
	return a.list[i], true
}

// Has reports whether an attribute called name is present.
func (a *Attrs) Has(name string) bool {
	_, ok := a.Get(name)
	return ok
}

// Len returns the number of attributes.
func (a *Attrs) Len() int {
	if a == nil {
		return 0
	}
	return len(a.list)
}

// At returns the i'th attribute.
func (a *Attrs) At(i int) Attr {
	return a.list[i]
}

// List returns the attributes in order. The slice must not be modified.
func (a *Attrs) List() []Attr {
	if a == nil {
		return nil
	}
	return a.list
}

// Merge returns the attributes of a followed by those of b. Names present
// in both take the value from b. Either may be nil; the result is nil when
// both are empty.
func Merge(a, b *Attrs) *Attrs {
	if b.Len() == 0 {
		return a
	}
	if a.Len() == 0 {
		return b
	}
	m := NewAttrs(a.list...)
	for _, attr := range b.list {
		m.Set(attr)
	}
	return m
}
