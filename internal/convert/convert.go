// Package convert translates between WAML value trees and YAML nodes.
//
// WAML has more kinds of values than YAML. The extra ones are kept with
// local tags so that converting back restores them:
//
//   - identifiers other than true and false: a string tagged !ident
//   - tuples: a sequence, or a mapping when every item is labeled, tagged
//     !tuple
//   - markup: its WAML text tagged !markup
//   - attributed values: a mapping tagged !attributed holding the
//     attributes under "attrs" and the value under "value". A nullary
//     attribute has a null argument and `@a()` an empty !tuple.
package convert

import (
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/KimNorgaard/go-waml"
	"github.com/KimNorgaard/go-waml/ast"
	"github.com/KimNorgaard/go-waml/form"
)

const (
	tagIdent      = "!ident"
	tagTuple      = "!tuple"
	tagMarkup     = "!markup"
	tagAttributed = "!attributed"

	tagNull  = "!!null"
	tagBool  = "!!bool"
	tagInt   = "!!int"
	tagFloat = "!!float"
	tagStr   = "!!str"
	tagSeq   = "!!seq"
	tagMap   = "!!map"
)

// ToYAML returns the YAML node for v.
func ToYAML(v ast.Value) (*yaml.Node, error) {
	if attrs := v.Attrs(); attrs.Len() > 0 {
		return attributed(v, attrs)
	}
	switch v := v.(type) {
	case *ast.Unit:
		return scalar(tagNull, "null"), nil
	case *ast.Bool:
		return scalar(tagBool, strconv.FormatBool(v.Value)), nil
	case *ast.Ident:
		return scalar(tagIdent, v.Name), nil
	case *ast.Number:
		switch v.Number.Kind {
		case form.NumberDecimal:
			return scalar(tagFloat, v.Number.String()), nil
		}
		return scalar(tagInt, v.Number.String()), nil
	case *ast.String:
		return scalar(tagStr, v.Value), nil
	case *ast.Array:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: tagSeq}
		for _, e := range v.Elements {
			c, err := ToYAML(e)
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, c)
		}
		return n, nil
	case *ast.Object:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: tagMap}
		for _, f := range v.Fields {
			c, err := ToYAML(f.Value)
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, scalar(tagStr, f.Key), c)
		}
		return n, nil
	case *ast.Tuple:
		return tuple(v)
	case *ast.Markup:
		text, err := waml.Marshal(v)
		if err != nil {
			return nil, err
		}
		return scalar(tagMarkup, string(text)), nil
	}
	return nil, fmt.Errorf("cannot convert %T to YAML", v)
}

func scalar(tag, value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
}

func tuple(v *ast.Tuple) (*yaml.Node, error) {
	labeled := len(v.Items) > 0
	for _, it := range v.Items {
		if it.Label == "" {
			labeled = false
		}
	}
	kind := yaml.SequenceNode
	if labeled {
		kind = yaml.MappingNode
	}
	n := &yaml.Node{Kind: kind, Tag: tagTuple}
	for _, it := range v.Items {
		if !labeled && it.Label != "" {
			return nil, fmt.Errorf("cannot convert a tuple mixing labeled and positional items to YAML")
		}
		c, err := ToYAML(it.Value)
		if err != nil {
			return nil, err
		}
		if labeled {
			n.Content = append(n.Content, scalar(tagStr, it.Label))
		}
		n.Content = append(n.Content, c)
	}
	return n, nil
}

func attributed(v ast.Value, attrs *form.Attrs) (*yaml.Node, error) {
	list := &yaml.Node{Kind: yaml.MappingNode, Tag: tagMap}
	for _, a := range attrs.List() {
		var args *yaml.Node
		switch {
		case !a.Args:
			args = scalar(tagNull, "null")
		case isBareUnit(a.Value):
			args = &yaml.Node{Kind: yaml.SequenceNode, Tag: tagTuple}
		default:
			av, ok := a.Value.(ast.Value)
			if !ok {
				return nil, fmt.Errorf("cannot convert arguments of @%s to YAML", a.Name)
			}
			var err error
			if args, err = ToYAML(av); err != nil {
				return nil, err
			}
		}
		list.Content = append(list.Content, scalar(tagStr, a.Name), args)
	}
	bare := shallowCopy(v)
	bare.SetAttrs(nil)
	value, err := ToYAML(bare)
	if err != nil {
		return nil, err
	}
	return &yaml.Node{Kind: yaml.MappingNode, Tag: tagAttributed, Content: []*yaml.Node{
		scalar(tagStr, "attrs"), list,
		scalar(tagStr, "value"), value,
	}}, nil
}

// isBareUnit reports whether v is the unit of an empty argument list,
// `@a()`.
func isBareUnit(v any) bool {
	u, ok := v.(*ast.Unit)
	return ok && u.Attrs().Len() == 0
}

// shallowCopy returns a copy of v that can have its attributes replaced.
func shallowCopy(v ast.Value) ast.Value {
	switch v := v.(type) {
	case *ast.Unit:
		c := *v
		return &c
	case *ast.Bool:
		c := *v
		return &c
	case *ast.Ident:
		c := *v
		return &c
	case *ast.Number:
		c := *v
		return &c
	case *ast.String:
		c := *v
		return &c
	case *ast.Array:
		c := *v
		return &c
	case *ast.Object:
		c := *v
		return &c
	case *ast.Tuple:
		c := *v
		return &c
	case *ast.Markup:
		c := *v
		return &c
	}
	return v
}

// FromYAML returns the WAML value of a YAML node.
func FromYAML(n *yaml.Node) (ast.Value, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return ast.NewUnit(), nil
		}
		return FromYAML(n.Content[0])
	case yaml.AliasNode:
		return FromYAML(n.Alias)
	case yaml.ScalarNode:
		return fromScalar(n)
	case yaml.SequenceNode:
		items, err := fromList(n.Content)
		if err != nil {
			return nil, err
		}
		if n.Tag == tagTuple {
			t := ast.NewTuple()
			for _, v := range items {
				t.Items = append(t.Items, ast.P(v))
			}
			return t, nil
		}
		return ast.NewArray(items...), nil
	case yaml.MappingNode:
		switch n.Tag {
		case tagAttributed:
			return fromAttributed(n)
		case tagTuple:
			t := ast.NewTuple()
			err := eachPair(n, func(key string, v ast.Value) {
				t.Items = append(t.Items, ast.L(key, v))
			})
			return t, err
		}
		o := ast.NewObject()
		err := eachPair(n, func(key string, v ast.Value) { o.Set(key, v) })
		return o, err
	}
	return nil, fmt.Errorf("line %d: unsupported YAML node", n.Line)
}

func fromList(nodes []*yaml.Node) ([]ast.Value, error) {
	values := make([]ast.Value, 0, len(nodes))
	for _, c := range nodes {
		v, err := FromYAML(c)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}

func eachPair(n *yaml.Node, fn func(key string, v ast.Value)) error {
	for i := 0; i+1 < len(n.Content); i += 2 {
		k := n.Content[i]
		if k.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: mapping keys must be scalars", k.Line)
		}
		v, err := FromYAML(n.Content[i+1])
		if err != nil {
			return err
		}
		fn(k.Value, v)
	}
	return nil
}

func fromScalar(n *yaml.Node) (ast.Value, error) {
	switch n.ShortTag() {
	case tagNull:
		return ast.NewUnit(), nil
	case tagBool:
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, err
		}
		return ast.NewBool(b), nil
	case tagInt, tagFloat:
		v, err := waml.ParseString(n.Value)
		if err != nil {
			return nil, fmt.Errorf("line %d: number %q has no WAML literal", n.Line, n.Value)
		}
		if _, ok := v.(*ast.Number); !ok {
			return nil, fmt.Errorf("line %d: number %q has no WAML literal", n.Line, n.Value)
		}
		return v, nil
	case tagIdent:
		return ast.NewIdent(n.Value), nil
	case tagMarkup:
		v, err := waml.ParseString(n.Value)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return v, nil
	}
	return ast.NewString(n.Value), nil
}

func fromAttributed(n *yaml.Node) (ast.Value, error) {
	var list, value *yaml.Node
	for i := 0; i+1 < len(n.Content); i += 2 {
		switch n.Content[i].Value {
		case "attrs":
			list = n.Content[i+1]
		case "value":
			value = n.Content[i+1]
		}
	}
	if list == nil || value == nil || list.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: !attributed needs attrs and value", n.Line)
	}
	v, err := FromYAML(value)
	if err != nil {
		return nil, err
	}
	var attrs []form.Attr
	for i := 0; i+1 < len(list.Content); i += 2 {
		name, args := list.Content[i].Value, list.Content[i+1]
		switch {
		case args.ShortTag() == tagNull:
			attrs = append(attrs, ast.N(name))
			continue
		case args.Kind == yaml.SequenceNode && args.Tag == tagTuple && len(args.Content) == 0:
			attrs = append(attrs, ast.A(name, nil))
			continue
		}
		av, err := FromYAML(args)
		if err != nil {
			return nil, err
		}
		attrs = append(attrs, ast.A(name, av))
	}
	return ast.With(v, attrs...), nil
}
