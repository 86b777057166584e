package waml

import (
	"fmt"
	"strings"

	"github.com/KimNorgaard/go-waml/bind"
	"github.com/KimNorgaard/go-waml/errors"
	"github.com/KimNorgaard/go-waml/form"
	"github.com/KimNorgaard/go-waml/internal/formatter"
	"github.com/KimNorgaard/go-waml/internal/parser"
	"github.com/KimNorgaard/go-waml/internal/token"
)

// Option configures parsing and writing.
type Option func(*options) error

type options struct {
	exprs           bool
	maxDepth        int
	rejectComments  bool
	whitespace      bool
	indent          string
	lineSeparator   string
	implicitContext bool
	keywords        map[string]bool
	registry        *bind.Registry
	form            form.Form
	bufferSize      int
}

const defaultBufferSize = 4096

func newOptions(opts []Option) (*options, error) {
	o := &options{
		maxDepth:   parser.DefaultMaxDepth,
		whitespace: true,
		registry:   bind.Default,
		bufferSize: defaultBufferSize,
	}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

func (o *options) parser() *parser.Options {
	po := &parser.Options{Exprs: o.exprs, MaxDepth: o.maxDepth}
	if o.rejectComments {
		po.Comment = rejectComment
	}
	return po
}

func rejectComment(pos errors.Position) error {
	return &errors.Diagnostic{Position: pos, Message: "comments are not kept", Err: errors.ErrComment}
}

func (o *options) formatter() *formatter.Options {
	return &formatter.Options{
		Whitespace:      o.whitespace,
		LineSeparator:   o.lineSeparator,
		Indent:          o.indent,
		ImplicitContext: o.implicitContext,
		Keywords:        o.keywords,
		MaxDepth:        o.maxDepth,
	}
}

// ExprsEnabled reads a parenthesized single value such as `(1)` as the
// value itself instead of a 1-tuple. Write with ImplicitContext to keep
// such tuples intact.
func ExprsEnabled() Option {
	return func(o *options) error {
		o.exprs = true
		return nil
	}
}

// RejectComments fails reading at the first comment with ErrComment.
// Values do not carry comments, so use it where writing a document back
// must not lose any.
func RejectComments() Option {
	return func(o *options) error {
		o.rejectComments = true
		return nil
	}
}

// MaxDepth sets the maximum nesting depth of containers and attribute
// arguments. The default is 1000.
//
// The depth n must be a positive integer.
func MaxDepth(n int) Option {
	return func(o *options) error {
		if n <= 0 {
			return fmt.Errorf("waml: max depth must be a positive integer")
		}
		o.maxDepth = n
		return nil
	}
}

// Whitespace controls the space written after commas and colons. It is
// on by default.
func Whitespace(on bool) Option {
	return func(o *options) error {
		o.whitespace = on
		return nil
	}
}

// Indent writes arrays and objects one entry per line, indented by n
// spaces per level. Indent(0) restores single line output.
func Indent(n int) Option {
	return func(o *options) error {
		if n < 0 {
			return fmt.Errorf("waml: indent must be a non-negative integer")
		}
		o.indent = strings.Repeat(" ", n)
		if n == 0 {
			o.lineSeparator = ""
		} else if o.lineSeparator == "" {
			o.lineSeparator = "\n"
		}
		return nil
	}
}

// IndentString is like Indent but repeats s per level, e.g. "\t".
func IndentString(s string) Option {
	return func(o *options) error {
		if strings.TrimLeft(s, " \t") != "" {
			return fmt.Errorf("waml: indent must only contain spaces and tabs")
		}
		o.indent = s
		if o.lineSeparator == "" {
			o.lineSeparator = "\n"
		}
		return nil
	}
}

// LineSeparator sets the string ending each line of indented output. An
// empty separator writes everything on one line.
func LineSeparator(s string) Option {
	return func(o *options) error {
		if strings.Trim(s, "\r\n") != "" {
			return fmt.Errorf("waml: line separator must only contain newlines")
		}
		o.lineSeparator = s
		return nil
	}
}

// ImplicitContext writes one-element tuples as `(x,)`.
func ImplicitContext() Option {
	return func(o *options) error {
		o.implicitContext = true
		return nil
	}
}

// Keywords replaces the identifiers that are quoted when written as object
// keys or attribute names. The default set is true and false.
func Keywords(words ...string) Option {
	return func(o *options) error {
		o.keywords = make(map[string]bool, len(words))
		for _, w := range words {
			if !token.IsIdentifier(w) {
				return fmt.Errorf("waml: keyword %q is not an identifier", w)
			}
			o.keywords[w] = true
		}
		return nil
	}
}

// WithRegistry looks forms up in r instead of bind.Default.
func WithRegistry(r *bind.Registry) Option {
	return func(o *options) error {
		if r == nil {
			return fmt.Errorf("waml: nil registry")
		}
		o.registry = r
		return nil
	}
}

// WithForm uses f instead of looking a form up by type.
func WithForm(f form.Form) Option {
	return func(o *options) error {
		if f == nil {
			return fmt.Errorf("waml: nil form")
		}
		o.form = f
		return nil
	}
}

// BufferSize sets the size of the chunks read by a Decoder and written by
// an Encoder. The default is 4096 bytes.
func BufferSize(n int) Option {
	return func(o *options) error {
		if n <= 0 {
			return fmt.Errorf("waml: buffer size must be a positive integer")
		}
		o.bufferSize = n
		return nil
	}
}
