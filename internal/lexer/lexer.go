package lexer

import (
	"unicode/utf8"

	"github.com/KimNorgaard/go-waml/errors"
)

// Input is a cursor over a stream of UTF-8 encoded chunks. At any time it
// is in exactly one of four states:
//
//   - cont: a character is available from Head
//   - empty: the current chunk is used up, more input may follow
//   - done: no character is available and none will ever arrive
//   - error: the stream is malformed
//
// An Input never moves backwards. A character split across two chunks is
// held until the rest of it arrives.
type Input struct {
	chunk []byte
	index int
	carry []byte
	last  bool

	head      rune
	size      int
	fromCarry bool
	ready     bool

	err error
	pos errors.Position
}

// New returns an Input positioned before the first chunk. Use Feed to
// supply data.
func New() *Input {
	return &Input{pos: errors.Position{Line: 1, Column: 1}}
}

// NewString returns an Input holding all of s, with no more input to follow.
func NewString(s string) *Input {
	in := New()
	in.Feed([]byte(s), true)
	return in
}

// Feed supplies the next chunk. last reports whether the chunk is the final
// one. Bytes of a previous chunk that were not consumed are kept in front
// of the new chunk.
func (in *Input) Feed(chunk []byte, last bool) {
	if in.index < len(in.chunk) {
		rest := make([]byte, 0, len(in.chunk)-in.index+len(chunk))
		rest = append(rest, in.chunk[in.index:]...)
		chunk = append(rest, chunk...)
	}
	in.chunk = chunk
	in.index = 0
	in.last = last
	in.load()
}

// IsCont reports whether a character is available.
func (in *Input) IsCont() bool { return in.ready }

// IsEmpty reports whether the input is waiting for another chunk.
func (in *Input) IsEmpty() bool { return !in.ready && !in.last && in.err == nil }

// IsDone reports whether the input has ended.
func (in *Input) IsDone() bool { return !in.ready && in.last && in.err == nil }

// IsError reports whether the input is malformed.
func (in *Input) IsError() bool { return in.err != nil }

// Err returns the input error, if any.
func (in *Input) Err() error { return in.err }

// Head returns the current character. It is only meaningful when IsCont
// reports true.
func (in *Input) Head() rune { return in.head }

// Position returns the position of the current character.
func (in *Input) Position() errors.Position { return in.pos }

// Step consumes the current character.
func (in *Input) Step() {
	if !in.ready {
		panic("waml: step past the end of a chunk")
	}
	if in.fromCarry {
		in.carry = in.carry[:0]
	} else {
		in.index += in.size
	}
	in.pos.Offset += int64(in.size)
	if in.head == '\n' {
		in.pos.Line++
		in.pos.Column = 1
	} else {
		in.pos.Column++
	}
	in.ready = false
	in.load()
}

func (in *Input) load() {
	if in.err != nil {
		in.ready = false
		return
	}
	if len(in.carry) > 0 {
		need := runeLen(in.carry[0])
		for len(in.carry) < need && in.index < len(in.chunk) {
			in.carry = append(in.carry, in.chunk[in.index])
			in.index++
		}
		if len(in.carry) < need {
			if in.last {
				in.fail()
			}
			return
		}
		r, n := utf8.DecodeRune(in.carry)
		if r == utf8.RuneError && n <= 1 {
			in.fail()
			return
		}
		in.head, in.size, in.fromCarry, in.ready = r, n, true, true
		return
	}
	if in.index >= len(in.chunk) {
		return
	}
	rest := in.chunk[in.index:]
	r, n := utf8.DecodeRune(rest)
	if r == utf8.RuneError && n <= 1 {
		if !utf8.FullRune(rest) && !in.last {
			in.carry = append(in.carry[:0], rest...)
			in.index = len(in.chunk)
			return
		}
		in.fail()
		return
	}
	in.head, in.size, in.fromCarry, in.ready = r, n, false, true
}

func (in *Input) fail() {
	in.ready = false
	in.err = errors.Errorf(in.pos, "invalid utf-8 sequence")
}

func runeLen(b byte) int {
	switch {
	case b < 0x80:
		return 1
	case b&0xE0 == 0xC0:
		return 2
	case b&0xF0 == 0xE0:
		return 3
	case b&0xF8 == 0xF0:
		return 4
	}
	return 1
}
