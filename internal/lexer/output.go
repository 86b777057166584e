package lexer

import (
	"unicode/utf8"

	"github.com/KimNorgaard/go-waml/errors"
)

// Output is a bounded cursor that writers emit characters into. It is in
// the cont state while space remains, empty when the buffer is full and
// must be drained with Take, done once closed, and error when Fail was
// called.
type Output struct {
	buf    []byte
	limit  int
	closed bool
	err    error
	pos    errors.Position
}

// NewOutput returns an Output that suspends once limit bytes are buffered.
// A limit of zero or less never suspends.
func NewOutput(limit int) *Output {
	return &Output{limit: limit, pos: errors.Position{Line: 1, Column: 1}}
}

// IsCont reports whether a character can be written.
func (o *Output) IsCont() bool {
	return o.err == nil && !o.closed && (o.limit <= 0 || len(o.buf) < o.limit)
}

// IsEmpty reports whether the output is full and waiting to be drained.
func (o *Output) IsEmpty() bool {
	return o.err == nil && !o.closed && o.limit > 0 && len(o.buf) >= o.limit
}

// IsDone reports whether the output was closed.
func (o *Output) IsDone() bool { return o.err == nil && o.closed }

// IsError reports whether the output failed.
func (o *Output) IsError() bool { return o.err != nil }

// Err returns the output error, if any.
func (o *Output) Err() error { return o.err }

// Write emits c. A character may overrun the limit by up to three bytes.
func (o *Output) Write(c rune) {
	if !o.IsCont() {
		panic("waml: write to a full output")
	}
	o.buf = utf8.AppendRune(o.buf, c)
	o.pos.Offset += int64(utf8.RuneLen(c))
	if c == '\n' {
		o.pos.Line++
		o.pos.Column = 1
	} else {
		o.pos.Column++
	}
}

// Take returns the buffered bytes and empties the buffer. The returned
// slice is only valid until the next Write.
func (o *Output) Take() []byte {
	b := o.buf
	o.buf = o.buf[:0]
	return b
}

// Len returns the number of buffered bytes.
func (o *Output) Len() int { return len(o.buf) }

// Close marks the output as done; no more characters will be accepted.
func (o *Output) Close() { o.closed = true }

// Fail puts the output in the error state.
func (o *Output) Fail(err error) { o.err = err }

// Position returns the position of the next character.
func (o *Output) Position() errors.Position { return o.pos }
