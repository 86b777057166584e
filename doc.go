/*
Package waml reads and writes WAML, a text format of objects, arrays,
tuples, markup and attributes. The API mirrors the standard
`encoding/json` package where it can.

A document holds a single value:

	@service(name: "api") {
		port: 8080
		hosts: ["a.example", "b.example"]
		motd: <<Welcome to @b{"api"}!>>
	}

# Forms

Every value is parsed and written through a form, which says how values of
one Go type are built and taken apart. Package bind has forms for scalars,
slices, maps and structs; a bind.Registry finds the form of a type. The
generic value tree of package ast needs no declaration:

	v, err := waml.ParseString(`@foo{a: 1, b: [2, 3]}`)
	if err != nil {
		// handle error
	}
	out, err := waml.Marshal(v)
	// out is @foo{a: 1, b: [2, 3]}

Typed values are declared once and registered:

	type Point struct{ X, Y int64 }

	bind.Register[Point](bind.Default, bind.MustStruct(
		bind.Field("x", bind.Int64(), func(p *Point) *int64 { return &p.X }),
		bind.Field("y", bind.Int64(), func(p *Point) *int64 { return &p.Y }),
	))

	var p Point
	err := waml.Unmarshal([]byte(`{x: 1, y: 2}`), &p)

# Incremental use

Parser accepts input in chunks of any size and Writer produces output in
chunks of bounded size. Both keep their state between calls, so a
document can be read from a network connection or written to a slow
consumer without buffering it whole. Decoder and Encoder wrap them for
io.Reader and io.Writer.

# Errors

Failures are reported as *Diagnostic values carrying the line, column and
byte offset of the problem.
*/
package waml
