// Package errors defines the single error type reported by WAML parsers
// and writers.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/rivo/uniseg"
)

// ErrTruncated is the cause of a Diagnostic reported when output space
// runs out before a write completes.
var ErrTruncated = stderrors.New("truncated write")

// ErrComment is the cause of a Diagnostic reported at a comment when
// comments are rejected.
var ErrComment = stderrors.New("comment would be lost")

// Position identifies a point in a WAML stream.
type Position struct {
	Offset int64 // byte offset, starting at 0
	Line   int   // line number, starting at 1
	Column int   // column in characters, starting at 1
}

func (p Position) String() string {
	return fmt.Sprintf("line %d, column %d", p.Line, p.Column)
}

// Diagnostic is a failed parse or write. It carries the position of the
// failure and, for grammar violations, a description of what was expected
// there. Errors returned by forms are wrapped in Err.
type Diagnostic struct {
	Position
	Message  string
	Expected string
	Err      error
}

// Expected returns a Diagnostic for a grammar violation at pos.
func Expected(pos Position, expected string, found rune, eof bool) *Diagnostic {
	d := &Diagnostic{Position: pos, Expected: expected}
	switch {
	case eof:
		d.Message = "expected " + expected + ", but found end of input"
	case found < 0:
		d.Message = "expected " + expected
	default:
		d.Message = fmt.Sprintf("expected %s, but found %q", expected, found)
	}
	return d
}

// Wrap returns a Diagnostic at pos caused by err. A Diagnostic is returned
// unchanged so that the original position survives nesting.
func Wrap(pos Position, err error) *Diagnostic {
	var d *Diagnostic
	if stderrors.As(err, &d) {
		return d
	}
	return &Diagnostic{Position: pos, Message: err.Error(), Err: err}
}

// Errorf returns a Diagnostic at pos with a formatted message.
func Errorf(pos Position, format string, args ...any) *Diagnostic {
	return &Diagnostic{Position: pos, Message: fmt.Sprintf(format, args...)}
}

func (d *Diagnostic) Error() string {
	return fmt.Sprintf("waml: error at line %d, column %d: %s", d.Line, d.Column, d.Message)
}

func (d *Diagnostic) Unwrap() error { return d.Err }

// Excerpt renders the source line containing the diagnostic followed by a
// caret under the offending column. Wide characters before the column are
// measured by their display width.
func (d *Diagnostic) Excerpt(src []byte) string {
	lines := strings.Split(string(src), "\n")
	if d.Line < 1 || d.Line > len(lines) {
		return ""
	}
	line := strings.TrimRight(lines[d.Line-1], "\r")

	var prefix strings.Builder
	col := 1
	for _, r := range line {
		if col >= d.Column {
			break
		}
		prefix.WriteRune(r)
		col++
	}
	pad := strings.Builder{}
	for _, r := range prefix.String() {
		if r == '\t' {
			pad.WriteByte('\t')
			continue
		}
		pad.WriteString(strings.Repeat(" ", uniseg.StringWidth(string(r))))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%4d | %s\n", d.Line, line)
	fmt.Fprintf(&b, "     | %s^", pad.String())
	return b.String()
}

// Is reports whether err is a Diagnostic.
func Is(err error) bool {
	var d *Diagnostic
	return stderrors.As(err, &d)
}
