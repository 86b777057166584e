package formatter_test

import (
	"bytes"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/KimNorgaard/go-waml/ast"
	"github.com/KimNorgaard/go-waml/errors"
	"github.com/KimNorgaard/go-waml/internal/formatter"
	"github.com/KimNorgaard/go-waml/internal/lexer"
	"github.com/KimNorgaard/go-waml/internal/parser"
	"github.com/KimNorgaard/go-waml/internal/testutil"
)

var (
	compact = &formatter.Options{Whitespace: true}
	tight   = &formatter.Options{}
	pretty  = &formatter.Options{Whitespace: true, LineSeparator: "\n", Indent: "  "}
)

// Centralized test cases to be used across different format settings.
var testCases = []struct {
	name             string
	value            ast.Value
	expectedCompact  string
	expectedTight    string
	expectedIndented string
}{
	{
		name:             "Unit",
		value:            ast.NewUnit(),
		expectedCompact:  "()",
		expectedTight:    "()",
		expectedIndented: "()",
	},
	{
		name:             "Boolean",
		value:            ast.NewBool(true),
		expectedCompact:  "true",
		expectedTight:    "true",
		expectedIndented: "true",
	},
	{
		name:             "Identifier",
		value:            ast.NewIdent("foo"),
		expectedCompact:  "foo",
		expectedTight:    "foo",
		expectedIndented: "foo",
	},
	{
		name:             "Integer",
		value:            ast.NewInt(-42),
		expectedCompact:  "-42",
		expectedTight:    "-42",
		expectedIndented: "-42",
	},
	{
		name:             "Hex keeps width",
		value:            ast.NewHex(255, 4),
		expectedCompact:  "0x00FF",
		expectedTight:    "0x00FF",
		expectedIndented: "0x00FF",
	},
	{
		name:             "Big integer",
		value:            ast.NewBig("123456789012345678901234567890"),
		expectedCompact:  "123456789012345678901234567890",
		expectedTight:    "123456789012345678901234567890",
		expectedIndented: "123456789012345678901234567890",
	},
	{
		name:             "Decimal",
		value:            ast.NewDecimal("1.5e-3"),
		expectedCompact:  "1.5e-3",
		expectedTight:    "1.5e-3",
		expectedIndented: "1.5e-3",
	},
	{
		name:             "String escapes",
		value:            ast.NewString("a\"b\\\n\x01é"),
		expectedCompact:  `"a\"b\\\n\u0001é"`,
		expectedTight:    `"a\"b\\\n\u0001é"`,
		expectedIndented: `"a\"b\\\n\u0001é"`,
	},
	{
		name:             "Empty Array",
		value:            ast.NewArray(),
		expectedCompact:  "[]",
		expectedTight:    "[]",
		expectedIndented: "[]",
	},
	{
		name:             "Array with scalars",
		value:            ast.NewArray(ast.NewInt(1), ast.NewString("two")),
		expectedCompact:  `[1, "two"]`,
		expectedTight:    `[1,"two"]`,
		expectedIndented: "[\n  1\n  \"two\"\n]",
	},
	{
		name:             "Empty Object",
		value:            ast.NewObject(),
		expectedCompact:  "{}",
		expectedTight:    "{}",
		expectedIndented: "{}",
	},
	{
		name: "Object with quoted keys",
		value: ast.NewObject(
			ast.F("a", ast.NewInt(1)),
			ast.F("b c", ast.NewInt(2)),
			ast.F("true", ast.NewInt(3)),
		),
		expectedCompact:  `{a: 1, "b c": 2, "true": 3}`,
		expectedTight:    `{a:1,"b c":2,"true":3}`,
		expectedIndented: "{\n  a: 1\n  \"b c\": 2\n  \"true\": 3\n}",
	},
	{
		name: "Nested containers",
		value: ast.NewObject(
			ast.F("a", ast.NewArray(ast.NewInt(1), ast.NewObject(ast.F("b", ast.NewInt(2))))),
		),
		expectedCompact:  `{a: [1, {b: 2}]}`,
		expectedTight:    `{a:[1,{b:2}]}`,
		expectedIndented: "{\n  a: [\n    1\n    {\n      b: 2\n    }\n  ]\n}",
	},
	{
		name:             "Tuple",
		value:            ast.NewTuple(ast.L("x", ast.NewInt(1)), ast.P(ast.NewInt(2))),
		expectedCompact:  `(x: 1, 2)`,
		expectedTight:    `(x:1,2)`,
		expectedIndented: `(x: 1, 2)`,
	},
	{
		name: "Attributed object",
		value: ast.With(ast.NewObject(
			ast.F("a", ast.NewInt(1)),
			ast.F("b", ast.NewArray(ast.NewInt(2), ast.NewInt(3))),
		), ast.N("foo")),
		expectedCompact:  `@foo{a: 1, b: [2, 3]}`,
		expectedTight:    `@foo{a:1,b:[2,3]}`,
		expectedIndented: "@foo{\n  a: 1\n  b: [\n    2\n    3\n  ]\n}",
	},
	{
		name: "Attribute arguments",
		value: ast.With(ast.NewInt(3),
			ast.N("a"),
			ast.A("b", ast.NewTuple(ast.P(ast.NewInt(1)), ast.P(ast.NewInt(2)))),
		),
		expectedCompact:  `@a @b(1, 2) 3`,
		expectedTight:    `@a @b(1,2) 3`,
		expectedIndented: `@a @b(1, 2) 3`,
	},
	{
		name:             "Attributed unit",
		value:            ast.With(ast.NewUnit(), ast.N("br")),
		expectedCompact:  `@br`,
		expectedTight:    `@br`,
		expectedIndented: `@br`,
	},
	{
		name:             "Empty arguments",
		value:            ast.With(ast.NewUnit(), ast.A("a", nil)),
		expectedCompact:  `@a()`,
		expectedTight:    `@a()`,
		expectedIndented: `@a()`,
	},
	{
		name:             "Attributed tuple",
		value:            ast.With(ast.NewTuple(ast.P(ast.NewInt(1))), ast.N("t")),
		expectedCompact:  `@t (1)`,
		expectedTight:    `@t (1)`,
		expectedIndented: `@t (1)`,
	},
	{
		name:             "Quoted attribute",
		value:            ast.With(ast.NewString("s"), ast.N("x y")),
		expectedCompact:  `@"x y""s"`,
		expectedTight:    `@"x y""s"`,
		expectedIndented: `@"x y""s"`,
	},
	{
		name: "Markup",
		value: ast.NewMarkup(
			ast.T("hello "),
			ast.V(ast.With(ast.NewIdent("world"), ast.A("b", ast.NewTuple(ast.P(ast.NewInt(1)))))),
		),
		expectedCompact:  `<<hello @b(1){world}>>`,
		expectedTight:    `<<hello @b(1){world}>>`,
		expectedIndented: `<<hello @b(1){world}>>`,
	},
	{
		name:             "Markup escapes",
		value:            ast.NewMarkup(ast.T("a<b>@c\\{d}\"e\n\tf")),
		expectedCompact:  "<<a\\<b\\>\\@c\\\\\\{d\\}\"e\n\tf>>",
		expectedTight:    "<<a\\<b\\>\\@c\\\\\\{d\\}\"e\n\tf>>",
		expectedIndented: "<<a\\<b\\>\\@c\\\\\\{d\\}\"e\n\tf>>",
	},
	{
		name: "Markup nodes",
		value: ast.NewMarkup(
			ast.T("a"),
			ast.V(ast.With(ast.NewUnit(), ast.N("br"))),
			ast.T("b"),
			ast.V(ast.With(ast.NewUnit(), ast.N("hr"))),
			ast.T(" c"),
			ast.V(ast.NewMarkup(ast.T("x"))),
			ast.V(ast.NewArray(ast.NewInt(1), ast.NewInt(2))),
			ast.V(ast.NewUnit()),
			ast.V(ast.With(ast.NewMarkup(ast.T("hi")), ast.N("em"))),
			ast.V(ast.With(ast.NewInt(1), ast.N("n"))),
			ast.V(ast.With(ast.NewUnit(), ast.N("end"))),
		),
		expectedCompact:  `<<a@br{}b@hr c<<x>>{[1, 2]}{()}@em<<hi>>@n{1}@end>>`,
		expectedTight:    `<<a@br{}b@hr c<<x>>{[1,2]}{()}@em<<hi>>@n{1}@end>>`,
		expectedIndented: `<<a@br{}b@hr c<<x>>{[1, 2]}{()}@em<<hi>>@n{1}@end>>`,
	},
	{
		name:             "Markup in pretty containers",
		value:            ast.NewArray(ast.NewMarkup(ast.T("x"), ast.V(ast.NewArray(ast.NewInt(1))))),
		expectedCompact:  `[<<x{[1]}>>]`,
		expectedTight:    `[<<x{[1]}>>]`,
		expectedIndented: "[\n  <<x{[1]}>>\n]",
	},
}

// write drains a writer through an output holding at most limit bytes.
func write(t *testing.T, v ast.Value, opts *formatter.Options, limit int) (string, error) {
	t.Helper()
	out := lexer.NewOutput(limit)
	r := formatter.Value(ast.Form{}, v, opts)
	var buf bytes.Buffer
	for i := 0; ; i++ {
		require.Less(t, i, 1<<16, "writer made no progress")
		r = r.Step(out)
		buf.Write(out.Take())
		if r.Status() != formatter.StatusCont {
			break
		}
	}
	return buf.String(), r.Err()
}

func TestFormatter(t *testing.T) {
	settings := []struct {
		name     string
		opts     *formatter.Options
		expected func(i int) string
	}{
		{"compact", compact, func(i int) string { return testCases[i].expectedCompact }},
		{"tight", tight, func(i int) string { return testCases[i].expectedTight }},
		{"indented", pretty, func(i int) string { return testCases[i].expectedIndented }},
	}
	for _, s := range settings {
		t.Run(s.name, func(t *testing.T) {
			for i, tc := range testCases {
				t.Run(tc.name, func(t *testing.T) {
					got, err := write(t, tc.value, s.opts, 0)
					require.NoError(t, err)
					require.Equal(t, s.expected(i), got)
				})
			}
		})
	}
}

func TestFormatterRoundTrip(t *testing.T) {
	for _, opts := range []*formatter.Options{compact, tight, pretty} {
		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				text, err := write(t, tc.value, opts, 0)
				require.NoError(t, err)
				r := parser.Document(ast.Form{}, nil).Step(lexer.NewString(text))
				require.Equal(t, parser.StatusDone, r.Status(), "%q: %v", text, r.Err())
				got := r.Value().(ast.Value)
				require.True(t, ast.Equal(tc.value, got), "%q: %s", text, ast.Diff(tc.value, got))
			})
		}
	}
}

func TestFormatterCorpus(t *testing.T) {
	for _, name := range testutil.Corpus() {
		data, err := testutil.ReadTestData(name)
		require.NoError(t, err)
		r := parser.Document(ast.Form{}, nil).Step(lexer.NewString(string(data)))
		require.Equal(t, parser.StatusDone, r.Status(), "%s: %v", name, r.Err())
		v := r.Value().(ast.Value)

		for _, opts := range []*formatter.Options{compact, tight, pretty} {
			text, err := write(t, v, opts, 0)
			require.NoError(t, err, name)
			chunked, err := write(t, v, opts, 3)
			require.NoError(t, err, name)
			require.Equal(t, text, chunked, name)

			r := parser.Document(ast.Form{}, nil).Step(lexer.NewString(text))
			require.Equal(t, parser.StatusDone, r.Status(), "%s %q: %v", name, text, r.Err())
			got := r.Value().(ast.Value)
			require.True(t, ast.Equal(v, got), "%s: %s", name, ast.Diff(v, got))
		}
	}
}

func TestFormatterSuspendsOnFullOutput(t *testing.T) {
	for _, tc := range testCases {
		whole, err := write(t, tc.value, pretty, 0)
		require.NoError(t, err)
		for limit := 1; limit <= 8; limit++ {
			got, err := write(t, tc.value, pretty, limit)
			require.NoError(t, err)
			require.Equal(t, whole, got, "%s with limit %d", tc.name, limit)
		}
	}
}

func TestFormatterTruncated(t *testing.T) {
	out := lexer.NewOutput(4)
	r := formatter.Value(ast.Form{}, ast.NewString("hello world"), nil)
	r = r.Step(out)
	require.Equal(t, formatter.StatusCont, r.Status())
	out.Close()
	r = r.Step(out)
	require.Equal(t, formatter.StatusError, r.Status())
	require.ErrorIs(t, r.Err(), errors.ErrTruncated)

	sentinel := stderrors.New("disk full")
	out = lexer.NewOutput(2)
	r = formatter.Value(ast.Form{}, ast.NewArray(ast.NewInt(1), ast.NewInt(2)), nil).Step(out)
	out.Fail(sentinel)
	r = r.Step(out)
	require.ErrorIs(t, r.Err(), sentinel)
}

func TestFormatterImplicitContext(t *testing.T) {
	opts := &formatter.Options{ImplicitContext: true}
	got, err := write(t, ast.NewTuple(ast.P(ast.NewInt(1))), opts, 0)
	require.NoError(t, err)
	require.Equal(t, "(1,)", got)

	got, err = write(t, ast.NewTuple(ast.L("x", ast.NewInt(1))), opts, 0)
	require.NoError(t, err)
	require.Equal(t, "(x:1)", got)

	r := parser.Document(ast.Form{}, &parser.Options{Exprs: true}).Step(lexer.NewString("(1,)"))
	require.True(t, ast.Equal(ast.NewTuple(ast.P(ast.NewInt(1))), r.Value().(ast.Value)))
}

func TestFormatterKeywords(t *testing.T) {
	opts := &formatter.Options{Whitespace: true, Keywords: map[string]bool{"null": true}}
	got, err := write(t, ast.NewObject(ast.F("null", ast.NewInt(1)), ast.F("true", ast.NewInt(2))), opts, 0)
	require.NoError(t, err)
	require.Equal(t, `{"null": 1, true: 2}`, got)
}

func TestFormatterMaxDepth(t *testing.T) {
	opts := &formatter.Options{MaxDepth: 2}
	v := ast.NewArray(ast.NewArray(ast.NewArray(ast.NewInt(1))))
	_, err := write(t, v, opts, 0)
	require.ErrorContains(t, err, "maximum nesting depth of 2 exceeded")
}

func TestFormatterUnknownShape(t *testing.T) {
	r := formatter.Value(struct{}{}, 42, nil).Step(lexer.NewOutput(0))
	require.Equal(t, formatter.StatusError, r.Status())
	require.ErrorContains(t, r.Err(), "cannot determine the shape of int")
}

func TestFormatterDeterministic(t *testing.T) {
	for _, tc := range testCases {
		a, err := write(t, tc.value, compact, 0)
		require.NoError(t, err)
		b, err := write(t, tc.value, compact, 3)
		require.NoError(t, err)
		require.Equal(t, a, b)
	}
}
