package convert

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/KimNorgaard/go-waml"
	"github.com/KimNorgaard/go-waml/ast"
)

func roundTrip(t *testing.T, v ast.Value) ast.Value {
	t.Helper()
	n, err := ToYAML(v)
	require.NoError(t, err)
	text, err := yaml.Marshal(n)
	require.NoError(t, err)

	var doc yaml.Node
	require.NoError(t, yaml.Unmarshal(text, &doc), string(text))
	back, err := FromYAML(&doc)
	require.NoError(t, err, string(text))
	return back
}

func TestRoundTrip(t *testing.T) {
	testCases := []string{
		`()`,
		`true`,
		`red`,
		`-42`,
		`0x00FF`,
		`123456789012345678901234567890`,
		`1.5e-3`,
		`"line\nbreak"`,
		`"true"`,
		`[1, [2, 3], []]`,
		`{name: "demo", ports: [80, 443], nested: {on: false}}`,
		`(1, "two", three)`,
		`(x: 1, y: 2)`,
		`<<some @b{bold} text>>`,
		`@br`,
		`@unit(ms) 250`,
		`@a() @b [1]`,
		`@a @b(1, 2) {c: @d [()]}`,
	}

	for _, tc := range testCases {
		t.Run(tc, func(t *testing.T) {
			v, err := waml.ParseString(tc)
			require.NoError(t, err)
			back := roundTrip(t, v)
			require.True(t, ast.Equal(v, back), ast.Diff(v, back))
		})
	}
}

func TestFromYAML(t *testing.T) {
	src := `
name: demo
ports: [80, 443]
debug: false
ratio: 0.5
nothing: null
base: &b {x: 1}
copy: *b
`
	var doc yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte(src), &doc))
	v, err := FromYAML(&doc)
	require.NoError(t, err)

	out, err := waml.Marshal(v)
	require.NoError(t, err)
	require.Equal(t, `{name: "demo", ports: [80, 443], debug: false, ratio: 0.5, nothing: (), base: {x: 1}, copy: {x: 1}}`, string(out))
}

func TestErrors(t *testing.T) {
	mixed, err := waml.ParseString(`(1, b: 2)`)
	require.NoError(t, err)
	_, err = ToYAML(mixed)
	require.ErrorContains(t, err, "mixing labeled and positional")

	testCases := map[string]string{
		"x: .inf":                  `line 1: number ".inf" has no WAML literal`,
		"? [1]\n: 2":               "line 1: mapping keys must be scalars",
		"!attributed {value: 1}":   "line 1: !attributed needs attrs and value",
		"!markup '<<unterminated'": "line 1:",
	}
	for src, expected := range testCases {
		t.Run(src, func(t *testing.T) {
			var doc yaml.Node
			require.NoError(t, yaml.Unmarshal([]byte(src), &doc))
			_, err := FromYAML(&doc)
			require.ErrorContains(t, err, expected)
		})
	}
}
