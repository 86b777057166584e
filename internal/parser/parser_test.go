package parser

import (
	stderrors "errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/KimNorgaard/go-waml/ast"
	"github.com/KimNorgaard/go-waml/errors"
	"github.com/KimNorgaard/go-waml/form"
	"github.com/KimNorgaard/go-waml/internal/lexer"
	"github.com/KimNorgaard/go-waml/internal/testutil"
)

// feed runs a document parser over chunks, marking the last one final.
func feed(f form.Form, opts *Options, chunks ...string) Result {
	in := lexer.New()
	r := Document(f, opts)
	if len(chunks) == 0 {
		chunks = []string{""}
	}
	for i, c := range chunks {
		in.Feed([]byte(c), i == len(chunks)-1)
		r = r.Step(in)
		if r.Status() != StatusCont {
			return r
		}
	}
	return r
}

func parse(t *testing.T, opts *Options, chunks ...string) (ast.Value, error) {
	t.Helper()
	r := feed(ast.Form{}, opts, chunks...)
	switch r.Status() {
	case StatusError:
		return nil, r.Err()
	case StatusDone:
		v, ok := r.Value().(ast.Value)
		require.True(t, ok, "got %T", r.Value())
		return v, nil
	}
	t.Fatalf("parse of %q did not finish", chunks)
	return nil, nil
}

func requireValue(t *testing.T, expected ast.Value, actual ast.Value) {
	t.Helper()
	require.True(t, ast.Equal(expected, actual), "diff (-want +got):\n%s", ast.Diff(expected, actual))
}

var valueTests = []struct {
	name     string
	input    string
	expected ast.Value
}{
	{"unit", `()`, ast.NewUnit()},
	{"unit with space", `( )`, ast.NewUnit()},
	{"true", `true`, ast.NewBool(true)},
	{"false", `false`, ast.NewBool(false)},
	{"identifier", `foo-bar_1`, ast.NewIdent("foo-bar_1")},
	{"string", `"a\"b\\\n\t"`, ast.NewString("a\"b\\\n\t")},
	{"string unicode escape", `"\u0041\u00E9"`, ast.NewString("Aé")},
	{"string raw unicode", `"héllo"`, ast.NewString("héllo")},
	{"int", `42`, ast.NewInt(42)},
	{"negative int", `-7`, ast.NewInt(-7)},
	{"zero", `0`, ast.NewInt(0)},
	{"negative zero", `-0`, ast.NewInt(0)},
	{"decimal", `1.5`, ast.NewDecimal("1.5")},
	{"exponent", `1e10`, ast.NewDecimal("1e10")},
	{"full decimal", `-2.50E-3`, ast.NewDecimal("-2.50E-3")},
	{"zero fraction", `0.25`, ast.NewDecimal("0.25")},
	{"hex", `0x1F`, ast.NewHex(31, 2)},
	{"hex keeps width", `0X00ff`, ast.NewHex(255, 4)},
	{"empty array", `[]`, ast.NewArray()},
	{"array", `[1, 2, 3]`, ast.NewArray(ast.NewInt(1), ast.NewInt(2), ast.NewInt(3))},
	{"array trailing comma", `[1,2,]`, ast.NewArray(ast.NewInt(1), ast.NewInt(2))},
	{"array newlines", "[\n  1\n  2\n]", ast.NewArray(ast.NewInt(1), ast.NewInt(2))},
	{"array comments", "[1 # one\n  # alone\n  2]", ast.NewArray(ast.NewInt(1), ast.NewInt(2))},
	{"nested array", `[[1], []]`, ast.NewArray(ast.NewArray(ast.NewInt(1)), ast.NewArray())},
	{"empty object", `{}`, ast.NewObject()},
	{"object", `{a: 1, "b c": "x"}`, ast.NewObject(
		ast.F("a", ast.NewInt(1)),
		ast.F("b c", ast.NewString("x")),
	)},
	{"object newlines", "{\n  a: 1\n  b : 2,\n}", ast.NewObject(
		ast.F("a", ast.NewInt(1)),
		ast.F("b", ast.NewInt(2)),
	)},
	{"duplicate key last wins", `{a: 1, b: 2, a: 3}`, ast.NewObject(
		ast.F("a", ast.NewInt(3)),
		ast.F("b", ast.NewInt(2)),
	)},
	{"tuple", `(1, 2)`, ast.NewTuple(ast.P(ast.NewInt(1)), ast.P(ast.NewInt(2)))},
	{"labeled tuple", `(x: 1, 2)`, ast.NewTuple(ast.L("x", ast.NewInt(1)), ast.P(ast.NewInt(2)))},
	{"quoted label", `("x y": 1)`, ast.NewTuple(ast.L("x y", ast.NewInt(1)))},
	{"key items", `(a, "b", true)`, ast.NewTuple(
		ast.P(ast.NewIdent("a")),
		ast.P(ast.NewString("b")),
		ast.P(ast.NewBool(true)),
	)},
	{"unary tuple", `(1)`, ast.NewTuple(ast.P(ast.NewInt(1)))},
	{"tuple newlines", "(\n  1,\n  2,\n)", ast.NewTuple(ast.P(ast.NewInt(1)), ast.P(ast.NewInt(2)))},
	{"attributed number", `@a @b(1, 2) 3`, ast.With(ast.NewInt(3),
		ast.N("a"),
		ast.A("b", ast.NewTuple(ast.P(ast.NewInt(1)), ast.P(ast.NewInt(2)))),
	)},
	{"attribute args are tuples", `@a(1)x`, ast.With(ast.NewIdent("x"),
		ast.A("a", ast.NewTuple(ast.P(ast.NewInt(1)))),
	)},
	{"empty args", `@a()`, ast.With(ast.NewUnit(), ast.A("a", nil))},
	{"quoted attribute", `@"x-y" 1`, ast.With(ast.NewInt(1), ast.N("x-y"))},
	{"attributed unit", `@a`, ast.With(ast.NewUnit(), ast.N("a"))},
	{"attributed unit then tuple", `@a ()`, ast.With(ast.NewUnit(), ast.N("a"))},
	{"attributed units in array", `[@a, @b 1]`, ast.NewArray(
		ast.With(ast.NewUnit(), ast.N("a")),
		ast.With(ast.NewInt(1), ast.N("b")),
	)},
	{"spaces between attributes", `@a  @b{x: 1}`, ast.With(ast.NewObject(ast.F("x", ast.NewInt(1))),
		ast.N("a"),
		ast.N("b"),
	)},
	{"tabs between attributes in array", "[@a \t @b 1]", ast.NewArray(
		ast.With(ast.NewInt(1), ast.N("a"), ast.N("b")),
	)},
	{"attributed unit with spaces", `@a  @b(1)   `, ast.With(ast.NewUnit(),
		ast.N("a"),
		ast.A("b", ast.NewTuple(ast.P(ast.NewInt(1)))),
	)},
	{"attributed array", `@a [1]`, ast.With(ast.NewArray(ast.NewInt(1)), ast.N("a"))},
	{"attributed field", `{a: @x "s"}`, ast.NewObject(ast.F("a", ast.With(ast.NewString("s"), ast.N("x"))))},
	{"duplicate attribute", `@a(1) @a(2) 0`, ast.With(ast.NewInt(0),
		ast.A("a", ast.NewTuple(ast.P(ast.NewInt(2)))),
	)},
	{"empty markup", `<<>>`, ast.NewMarkup()},
	{"markup text", `<<hello world>>`, ast.NewMarkup(ast.T("hello world"))},
	{"markup escapes", `<<a\<b\>c\@d\\e\{f\}\u0041>>`, ast.NewMarkup(ast.T(`a<b>c@d\e{f}A`))},
	{"markup keeps newlines", "<<a\n\"b\">>", ast.NewMarkup(ast.T("a\n\"b\""))},
	{"nested markup", `<<x<<y>>z>>`, ast.NewMarkup(
		ast.T("x"),
		ast.V(ast.NewMarkup(ast.T("y"))),
		ast.T("z"),
	)},
	{"attributed nested markup", `<<@em<<hi>>>>`, ast.NewMarkup(
		ast.V(ast.With(ast.NewMarkup(ast.T("hi")), ast.N("em"))),
	)},
	{"bare attribute node", `<<a@br b>>`, ast.NewMarkup(
		ast.T("a"),
		ast.V(ast.With(ast.NewUnit(), ast.N("br"))),
		ast.T(" b"),
	)},
	{"brace values", `<<{1, "s"}>>`, ast.NewMarkup(ast.V(ast.NewInt(1)), ast.V(ast.NewString("s")))},
	{"empty braces", `<<a{}b>>`, ast.NewMarkup(ast.T("ab"))},
	{"attributed empty braces", `<<@x{}>>`, ast.NewMarkup(ast.V(ast.With(ast.NewUnit(), ast.N("x"))))},
	{"attributed markup", `@doc <<hi>>`, ast.With(ast.NewMarkup(ast.T("hi")), ast.N("doc"))},
	{"comments around document", "# head\n  1 # tail\n# more\n", ast.NewInt(1)},
}

func TestParseValues(t *testing.T) {
	for _, tt := range valueTests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := parse(t, nil, tt.input)
			require.NoError(t, err)
			requireValue(t, tt.expected, v)
		})
	}
}

var errorTests = []struct {
	name    string
	input   string
	message string
	line    int
	column  int
}{
	{"empty document", ``, "expected value, but found end of input", 1, 1},
	{"unterminated object", `{a: 1`, "expected '}', but found end of input", 1, 6},
	{"missing separator", `[1 2]`, "expected ',' or ']', but found '2'", 1, 4},
	{"double comma", `[1,,2]`, "expected value, but found ','", 1, 4},
	{"leading zero", `00`, "leading zero in number", 1, 2},
	{"negative leading zero", `-01`, "leading zero in number", 1, 3},
	{"missing fraction", `1.`, "expected digit, but found end of input", 1, 3},
	{"missing exponent", `1e+x`, "expected digit, but found 'x'", 1, 4},
	{"lone minus", `-`, "expected digit, but found end of input", 1, 2},
	{"empty hex", `0x`, "expected hex digit, but found end of input", 1, 3},
	{"wide hex", `0x12345678901234567`, "hex literal exceeds 16 digits", 1, 19},
	{"unterminated string", `"abc`, "expected '\"', but found end of input", 1, 5},
	{"bad escape", `"\q"`, "expected escape character, but found 'q'", 1, 3},
	{"bad unicode escape", `"\u12G4"`, "expected hex digit, but found 'G'", 1, 6},
	{"surrogate escape", `"\uD800"`, `invalid unicode escape \uD800`, 1, 8},
	{"trailing garbage", `1 2`, "expected end of input, but found '2'", 1, 3},
	{"missing colon", `{a 1}`, "expected ':', but found '1'", 1, 4},
	{"bad key", `{1: 2}`, "expected key, but found '1'", 1, 2},
	{"tuple separator", `(1 2)`, "expected ',' or ')', but found '2'", 1, 4},
	{"unterminated tuple", `(1,`, "expected ')', but found end of input", 1, 4},
	{"lone at", `@`, "expected key, but found end of input", 1, 2},
	{"unterminated markup", `<<abc`, "expected '>>', but found end of input", 1, 6},
	{"single close", `<<a>b>>`, "expected '>', but found 'b'", 1, 5},
	{"stray brace", `<<a}>>`, "expected '>>', but found '}'", 1, 4},
	{"single open", `<a>>`, "expected '<', but found 'a'", 1, 2},
	{"unterminated brace", `<<{1`, "expected '}', but found end of input", 1, 5},
	{"unterminated comment array", "[1 # x", "expected ']', but found end of input", 1, 7},
	{"newline in line", "{\n  a: [1,\n  2 3]}", "expected ',' or ']', but found '3'", 3, 5},
}

func TestParseErrors(t *testing.T) {
	for _, tt := range errorTests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parse(t, nil, tt.input)
			require.Error(t, err)
			var d *errors.Diagnostic
			require.True(t, stderrors.As(err, &d), "got %T", err)
			require.Equal(t, tt.message, d.Message)
			require.Equal(t, tt.line, d.Line, "line")
			require.Equal(t, tt.column, d.Column, "column")
		})
	}
}

func TestUnterminatedObjectExpectsBrace(t *testing.T) {
	_, err := parse(t, nil, `{a: 1`)
	var d *errors.Diagnostic
	require.True(t, stderrors.As(err, &d))
	require.Equal(t, "'}'", d.Expected)
	require.Equal(t, int64(5), d.Offset)
}

// requireSameOutcome checks that parsing chunks ends like parsing whole.
func requireSameOutcome(t *testing.T, whole string, chunks ...string) {
	t.Helper()
	want, wantErr := parse(t, nil, whole)
	got, gotErr := parse(t, nil, chunks...)
	if wantErr != nil {
		require.Error(t, gotErr, "chunks %q", chunks)
		require.Equal(t, wantErr.Error(), gotErr.Error(), "chunks %q", chunks)
		return
	}
	require.NoError(t, gotErr, "chunks %q", chunks)
	require.True(t, ast.Equal(want, got), "chunks %q: %s", chunks, ast.Diff(want, got))
}

func TestChunkedInputEquivalence(t *testing.T) {
	inputs := make([]string, 0, len(valueTests)+len(errorTests))
	for _, tt := range valueTests {
		inputs = append(inputs, tt.input)
	}
	for _, tt := range errorTests {
		inputs = append(inputs, tt.input)
	}
	for _, input := range inputs {
		for i := 1; i < len(input); i++ {
			requireSameOutcome(t, input, input[:i], input[i:])
		}
		var bytes []string
		for i := 0; i < len(input); i++ {
			bytes = append(bytes, input[i:i+1])
		}
		requireSameOutcome(t, input, append(bytes, "")...)
	}
}

func TestCorpusChunks(t *testing.T) {
	for _, name := range testutil.Corpus() {
		t.Run(name, func(t *testing.T) {
			data, err := testutil.ReadTestData(name)
			require.NoError(t, err)
			input := string(data)
			_, err = parse(t, nil, input)
			require.NoError(t, err)
			for i := 1; i < len(input); i++ {
				requireSameOutcome(t, input, input[:i], input[i:])
			}
		})
	}
}

func TestAttributeSpacesAcrossChunks(t *testing.T) {
	v, err := parse(t, nil, "@a ", " @b")
	require.NoError(t, err)
	requireValue(t, ast.With(ast.NewUnit(), ast.N("a"), ast.N("b")), v)

	v, err = parse(t, nil, "[@a ", " ", " @b 1]")
	require.NoError(t, err)
	requireValue(t, ast.NewArray(ast.With(ast.NewInt(1), ast.N("a"), ast.N("b"))), v)
}

func TestScenarioChunks(t *testing.T) {
	v, err := parse(t, nil, "[", "1, ", "2, 3", "]")
	require.NoError(t, err)
	requireValue(t, ast.NewArray(ast.NewInt(1), ast.NewInt(2), ast.NewInt(3)), v)
}

func TestScenarioMarkup(t *testing.T) {
	v, err := parse(t, nil, `<<hello @b(1){world}>>`)
	require.NoError(t, err)
	requireValue(t, ast.NewMarkup(
		ast.T("hello "),
		ast.V(ast.With(ast.NewIdent("world"), ast.A("b", ast.NewTuple(ast.P(ast.NewInt(1)))))),
	), v)
}

func TestParserConsumesEveryByte(t *testing.T) {
	for _, tt := range valueTests {
		if strings.ContainsFunc(tt.input, func(r rune) bool { return r > 0x7F }) {
			continue
		}
		t.Run(tt.name, func(t *testing.T) {
			in := lexer.New()
			r := Document(ast.Form{}, nil)
			for i := 0; i < len(tt.input); i++ {
				in.Feed([]byte{tt.input[i]}, false)
				r = r.Step(in)
				require.Equal(t, StatusCont, r.Status())
				require.True(t, in.IsEmpty(), "byte %d was not consumed", i)
				require.Equal(t, int64(i+1), in.Position().Offset)
			}
			in.Feed(nil, true)
			r = r.Step(in)
			require.Equal(t, StatusDone, r.Status(), "%v", r.Err())
		})
	}
}

func TestNumericBoundaries(t *testing.T) {
	tests := []struct {
		input    string
		expected ast.Value
	}{
		{"9223372036854775807", ast.NewInt(math.MaxInt64)},
		{"-9223372036854775807", ast.NewInt(-math.MaxInt64)},
		{"-9223372036854775808", ast.NewInt(math.MinInt64)},
		{"9223372036854775808", ast.NewBig("9223372036854775808")},
		{"-9223372036854775809", ast.NewBig("-9223372036854775809")},
		{"92233720368547758070", ast.NewBig("92233720368547758070")},
		{"99999999999999999999.5", ast.NewDecimal("99999999999999999999.5")},
		{"0xFFFFFFFFFFFFFFFF", ast.NewHex(-1, 16)},
		{"0x8000000000000000", ast.NewHex(math.MinInt64, 16)},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			v, err := parse(t, nil, tt.input)
			require.NoError(t, err)
			requireValue(t, tt.expected, v)
		})
	}
}

func TestExprsUnwrapsGroups(t *testing.T) {
	opts := &Options{Exprs: true}
	tests := []struct {
		input    string
		expected ast.Value
	}{
		{`(1)`, ast.NewInt(1)},
		{`(1,)`, ast.NewTuple(ast.P(ast.NewInt(1)))},
		{`((x))`, ast.NewIdent("x")},
		{`(x: 1)`, ast.NewTuple(ast.L("x", ast.NewInt(1)))},
		{`@a (1)`, ast.With(ast.NewTuple(ast.P(ast.NewInt(1))), ast.N("a"))},
		{`@a(1)`, ast.With(ast.NewUnit(), ast.A("a", ast.NewTuple(ast.P(ast.NewInt(1)))))},
		{`[(1), (1, 2)]`, ast.NewArray(ast.NewInt(1), ast.NewTuple(ast.P(ast.NewInt(1)), ast.P(ast.NewInt(2))))},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			v, err := parse(t, opts, tt.input)
			require.NoError(t, err)
			requireValue(t, tt.expected, v)
		})
	}
}

func TestMaxDepth(t *testing.T) {
	opts := &Options{MaxDepth: 2}
	_, err := parse(t, opts, `[[1], {a: 1}]`)
	require.NoError(t, err)

	_, err = parse(t, opts, `[[[1]]]`)
	require.ErrorContains(t, err, "maximum nesting depth of 2 exceeded")

	_, err = parse(t, opts, `<<a<<b<<c>>>>>>`)
	require.ErrorContains(t, err, "maximum nesting depth of 2 exceeded")

	_, err = parse(t, opts, `[@a((1)) 1]`)
	require.ErrorContains(t, err, "maximum nesting depth of 2 exceeded")
}

type failingForm struct {
	ast.Form
	panicValue any
	fatal      bool
	err        error
}

func (f failingForm) Int(attrs *form.Attrs, v int64) (any, error) {
	if f.fatal {
		var m map[string]int
		m["boom"]++
	}
	if f.panicValue != nil {
		panic(f.panicValue)
	}
	return nil, f.err
}

func TestFormErrors(t *testing.T) {
	sentinel := stderrors.New("no ints here")
	r := feed(failingForm{err: sentinel}, nil, "  1")
	require.Equal(t, StatusError, r.Status())
	require.ErrorIs(t, r.Err(), sentinel)
	require.True(t, errors.Is(r.Err()))
	require.Contains(t, r.Err().Error(), "column 4")

	r = feed(failingForm{panicValue: "boom"}, nil, "1")
	require.Equal(t, StatusError, r.Status())
	require.ErrorContains(t, r.Err(), "form panicked: boom")

	r = feed(failingForm{panicValue: sentinel}, nil, "1")
	require.ErrorIs(t, r.Err(), sentinel)

	require.Panics(t, func() { feed(failingForm{fatal: true}, nil, "1") })
}

type identOnly struct{}

func (identOnly) Identifier(_ *form.Attrs, name string) (any, error) { return name, nil }
func (identOnly) IdentifierOf(v any) string                          { return v.(string) }

func TestUnsupportedShape(t *testing.T) {
	r := feed(identOnly{}, nil, "abc")
	require.Equal(t, StatusDone, r.Status())
	require.Equal(t, "abc", r.Value())

	r = feed(identOnly{}, nil, "[1]")
	require.ErrorIs(t, r.Err(), form.ErrUnsupported)
	require.ErrorContains(t, r.Err(), "has no array capability")

	r = feed(identOnly{}, nil, "@a")
	require.ErrorIs(t, r.Err(), form.ErrUnsupported)
}

type record map[string]any

type recordForm struct{}

func (recordForm) ObjectBuilder(*form.Attrs) (any, error) { return record{}, nil }

func (recordForm) Field(key string) (form.FieldForm, bool) {
	if key == "name" {
		return recordField{}, true
	}
	return nil, false
}

func (recordForm) BuildObject(_ *form.Attrs, b any) (any, error) { return b, nil }

func (recordForm) Fields(any) form.FieldIterator { return form.Iterate[form.Field](nil) }

type recordField struct{ prefix string }

func (recordField) ValueForm() form.Form { return ast.Form{} }

func (f recordField) SetField(b any, key string, v any) (any, error) {
	b.(record)[f.prefix+key] = v
	return b, nil
}

type annexRecordForm struct{ recordForm }

func (annexRecordForm) Annex() form.FieldForm { return recordField{prefix: "extra."} }

func TestObjectFieldLookup(t *testing.T) {
	r := feed(recordForm{}, nil, `{name: "x", age: 1}`)
	require.Equal(t, StatusError, r.Status())
	require.ErrorIs(t, r.Err(), form.ErrUnsupportedKey)
	var d *errors.Diagnostic
	require.True(t, stderrors.As(r.Err(), &d))
	require.Equal(t, 13, d.Column)
	require.Equal(t, `unsupported key "age"`, d.Message)

	r = feed(annexRecordForm{}, nil, `{name: "x", age: 1}`)
	require.Equal(t, StatusDone, r.Status(), "%v", r.Err())
	rec := r.Value().(record)
	require.Len(t, rec, 2)
	requireValue(t, ast.NewString("x"), rec["name"].(ast.Value))
	requireValue(t, ast.NewInt(1), rec["extra.age"].(ast.Value))
}

func TestFinishedResultsPanic(t *testing.T) {
	in := lexer.NewString("1")
	require.Panics(t, func() { Done(1).Step(in) })
	require.Panics(t, func() { Fail(stderrors.New("x")).Step(in) })
}

func TestSplitRunesAcrossChunks(t *testing.T) {
	input := `"héllo ✓" `
	for i := 1; i < len(input); i++ {
		v, err := parse(t, nil, input[:i], input[i:])
		require.NoError(t, err, "split at %d", i)
		requireValue(t, ast.NewString("héllo ✓"), v)
	}
}

func TestInvalidUTF8(t *testing.T) {
	_, err := parse(t, nil, "\"a\xffb\"")
	require.ErrorContains(t, err, "invalid utf-8 sequence")
}
