package parser

import (
	"math"
	"strings"
	"unicode/utf16"

	"github.com/KimNorgaard/go-waml/errors"
	"github.com/KimNorgaard/go-waml/form"
	"github.com/KimNorgaard/go-waml/internal/lexer"
	"github.com/KimNorgaard/go-waml/internal/token"
)

type unitStep uint8

const (
	unitOpen unitStep = iota
	unitClose
)

// unitParser reads `()`.
type unitParser struct {
	cont
	f     form.UnitForm
	attrs *form.Attrs
	step  unitStep
}

func newUnit(f form.UnitForm, attrs *form.Attrs) Result {
	return &unitParser{f: f, attrs: attrs}
}

func (p *unitParser) Step(in *lexer.Input) Result {
	if p.step == unitOpen {
		if !in.IsCont() || in.Head() != '(' {
			return need(p, in, "'('")
		}
		in.Step()
		p.step = unitClose
	}
	for in.IsCont() && token.IsWhitespace(in.Head()) {
		in.Step()
	}
	if !in.IsCont() || in.Head() != ')' {
		return need(p, in, "')'")
	}
	in.Step()
	v, err := call(in, func() (any, error) { return p.f.Unit(p.attrs) })
	if err != nil {
		return Fail(err)
	}
	return Done(v)
}

// identParser reads an identifier.
type identParser struct {
	cont
	f     form.IdentForm
	attrs *form.Attrs
	name  strings.Builder
}

func newIdent(f form.IdentForm, attrs *form.Attrs) Result {
	return &identParser{f: f, attrs: attrs}
}

func (p *identParser) Step(in *lexer.Input) Result {
	if p.name.Len() == 0 {
		if !in.IsCont() || !token.IsIdentifierStartChar(in.Head()) {
			return need(p, in, "identifier")
		}
		p.name.WriteRune(in.Head())
		in.Step()
	}
	for in.IsCont() && token.IsIdentifierChar(in.Head()) {
		p.name.WriteRune(in.Head())
		in.Step()
	}
	switch {
	case in.IsEmpty():
		return p
	case in.IsError():
		return Fail(in.Err())
	}
	v, err := call(in, func() (any, error) { return p.f.Identifier(p.attrs, p.name.String()) })
	if err != nil {
		return Fail(err)
	}
	return Done(v)
}

type stringStep uint8

const (
	stringOpen stringStep = iota
	stringChars
	stringEscape
	stringUnicode
)

// stringParser reads a quoted string into a form supplied builder.
type stringParser struct {
	cont
	f     form.StringForm
	attrs *form.Attrs
	b     any
	step  stringStep
	hex   int
	code  rune
}

func newString(f form.StringForm, attrs *form.Attrs) Result {
	return &stringParser{f: f, attrs: attrs}
}

func (p *stringParser) Step(in *lexer.Input) Result {
	if p.step == stringOpen {
		if !in.IsCont() || in.Head() != '"' {
			return need(p, in, "'\"'")
		}
		b, err := call(in, func() (any, error) { return p.f.StringBuilder(p.attrs) })
		if err != nil {
			return Fail(err)
		}
		p.b = b
		in.Step()
		p.step = stringChars
	}
	for {
		switch p.step {
		case stringChars:
			if !in.IsCont() {
				return need(p, in, "'\"'")
			}
			switch c := in.Head(); c {
			case '"':
				in.Step()
				v, err := call(in, func() (any, error) { return p.f.BuildString(p.attrs, p.b) })
				if err != nil {
					return Fail(err)
				}
				return Done(v)
			case '\\':
				in.Step()
				p.step = stringEscape
			default:
				if r := p.append(in, c); r != nil {
					return r
				}
				in.Step()
			}
		case stringEscape:
			if !in.IsCont() {
				return need(p, in, "escape character")
			}
			c := in.Head()
			if c == 'u' {
				in.Step()
				p.hex, p.code = 0, 0
				p.step = stringUnicode
				continue
			}
			r, ok := token.Unescape(c, false)
			if !ok {
				return Fail(errors.Expected(in.Position(), "escape character", c, false))
			}
			if res := p.append(in, r); res != nil {
				return res
			}
			in.Step()
			p.step = stringChars
		case stringUnicode:
			ok, err := readUnicode(in, &p.hex, &p.code)
			if err != nil {
				return Fail(err)
			}
			if !ok {
				return need(p, in, "hex digit")
			}
			if res := p.append(in, p.code); res != nil {
				return res
			}
			p.step = stringChars
		}
	}
}

func (p *stringParser) append(in *lexer.Input, c rune) Result {
	b, err := call(in, func() (any, error) { return p.f.AppendRune(p.b, c), nil })
	if err != nil {
		return Fail(err)
	}
	p.b = b
	return nil
}

// readUnicode consumes the hex digits of a \uXXXX escape and reports
// whether all four have been read. Surrogate halves are rejected.
func readUnicode(in *lexer.Input, n *int, code *rune) (bool, error) {
	for *n < 4 {
		if !in.IsCont() {
			return false, nil
		}
		c := in.Head()
		if !token.IsHexDigit(c) {
			return false, errors.Expected(in.Position(), "hex digit", c, false)
		}
		*code = *code<<4 | rune(token.HexValue(c))
		*n++
		in.Step()
	}
	if utf16.IsSurrogate(*code) {
		return false, errors.Errorf(in.Position(), "invalid unicode escape \\u%04X", *code)
	}
	return true, nil
}

type numberStep uint8

const (
	numberSign numberStep = iota
	numberFirst
	numberZero
	numberInt
	numberFracFirst
	numberFrac
	numberExpSign
	numberExpFirst
	numberExp
	numberHexFirst
	numberHex
)

// maxHexDigits is the widest hex literal that fits in 64 bits.
const maxHexDigits = 16

// numberParser reads a number. Integers accumulate into a 64-bit magnitude
// until they overflow, after which only the literal text is kept.
type numberParser struct {
	cont
	f        form.NumberForm
	attrs    *form.Attrs
	step     numberStep
	text     []byte
	neg      bool
	mag      uint64
	overflow bool
	decimal  bool
	hex      bool
	digits   int
}

func newNumber(f form.NumberForm, attrs *form.Attrs) Result {
	return &numberParser{f: f, attrs: attrs}
}

func (p *numberParser) limit() uint64 {
	if p.neg {
		return math.MaxInt64 + 1
	}
	return math.MaxInt64
}

func (p *numberParser) accumulate(d uint64) {
	if p.overflow {
		return
	}
	if p.mag > (p.limit()-d)/10 {
		p.overflow = true
		return
	}
	p.mag = p.mag*10 + d
}

func (p *numberParser) take(in *lexer.Input, next numberStep) {
	p.text = append(p.text, byte(in.Head()))
	in.Step()
	p.step = next
}

func (p *numberParser) Step(in *lexer.Input) Result {
	for {
		if !in.IsCont() {
			switch p.step {
			case numberSign, numberFirst, numberFracFirst, numberExpSign, numberExpFirst:
				return need(p, in, "digit")
			case numberHexFirst:
				return need(p, in, "hex digit")
			}
			if in.IsEmpty() {
				return p
			}
			if in.IsError() {
				return Fail(in.Err())
			}
			return p.finish(in)
		}
		c := in.Head()
		switch p.step {
		case numberSign:
			if c == '-' {
				p.neg = true
				p.take(in, numberFirst)
				continue
			}
			p.step = numberFirst
		case numberFirst:
			switch {
			case c == '0':
				p.take(in, numberZero)
			case token.IsDigit(c):
				p.accumulate(uint64(c - '0'))
				p.take(in, numberInt)
			default:
				return Fail(errors.Expected(in.Position(), "digit", c, false))
			}
		case numberZero:
			switch {
			case token.IsDigit(c):
				return Fail(errors.Errorf(in.Position(), "leading zero in number"))
			case (c == 'x' || c == 'X') && !p.neg:
				p.hex = true
				p.take(in, numberHexFirst)
			case c == '.':
				p.take(in, numberFracFirst)
			case c == 'e' || c == 'E':
				p.take(in, numberExpSign)
			default:
				return p.finish(in)
			}
		case numberInt:
			switch {
			case token.IsDigit(c):
				p.accumulate(uint64(c - '0'))
				p.take(in, numberInt)
			case c == '.':
				p.take(in, numberFracFirst)
			case c == 'e' || c == 'E':
				p.take(in, numberExpSign)
			default:
				return p.finish(in)
			}
		case numberFracFirst, numberExpFirst:
			if !token.IsDigit(c) {
				return Fail(errors.Expected(in.Position(), "digit", c, false))
			}
			p.decimal = true
			if p.step == numberFracFirst {
				p.take(in, numberFrac)
			} else {
				p.take(in, numberExp)
			}
		case numberFrac:
			switch {
			case token.IsDigit(c):
				p.take(in, numberFrac)
			case c == 'e' || c == 'E':
				p.take(in, numberExpSign)
			default:
				return p.finish(in)
			}
		case numberExpSign:
			if c == '+' || c == '-' {
				p.take(in, numberExpFirst)
				continue
			}
			p.step = numberExpFirst
		case numberExp:
			if !token.IsDigit(c) {
				return p.finish(in)
			}
			p.take(in, numberExp)
		case numberHexFirst, numberHex:
			if !token.IsHexDigit(c) {
				if p.step == numberHexFirst {
					return Fail(errors.Expected(in.Position(), "hex digit", c, false))
				}
				return p.finish(in)
			}
			if p.digits == maxHexDigits {
				return Fail(errors.Errorf(in.Position(), "hex literal exceeds %d digits", maxHexDigits))
			}
			p.mag = p.mag<<4 | uint64(token.HexValue(c))
			p.digits++
			p.take(in, numberHex)
		}
	}
}

func (p *numberParser) finish(in *lexer.Input) Result {
	v, err := call(in, func() (any, error) {
		switch {
		case p.hex:
			return p.f.Hex(p.attrs, int64(p.mag), p.digits)
		case p.decimal:
			return p.f.Decimal(p.attrs, string(p.text))
		case p.overflow:
			return p.f.BigInt(p.attrs, string(p.text))
		case p.neg:
			return p.f.Int(p.attrs, int64(-p.mag))
		}
		return p.f.Int(p.attrs, int64(p.mag))
	})
	if err != nil {
		return Fail(err)
	}
	return Done(v)
}

// key is an object key or tuple label.
type key struct {
	text   string
	quoted bool
	pos    errors.Position
}

// textForm builds plain Go strings. It reads quoted keys.
type textForm struct{}

func (textForm) StringBuilder(*form.Attrs) (any, error) { return &strings.Builder{}, nil }

func (textForm) AppendRune(b any, c rune) any {
	b.(*strings.Builder).WriteRune(c)
	return b
}

func (textForm) BuildString(_ *form.Attrs, b any) (any, error) {
	return b.(*strings.Builder).String(), nil
}

func (textForm) StringOf(v any) string {
	s, _ := v.(string)
	return s
}

// keyParser reads a Key: an identifier or a quoted string.
type keyParser struct {
	cont
	key   key
	ident strings.Builder
	str   Result
}

func newKey() *keyParser { return &keyParser{} }

func (p *keyParser) Step(in *lexer.Input) Result {
	if p.str == nil && p.ident.Len() == 0 {
		if !in.IsCont() {
			return need(p, in, "key")
		}
		p.key.pos = in.Position()
		switch c := in.Head(); {
		case c == '"':
			p.key.quoted = true
			p.str = newString(textForm{}, nil)
		case token.IsIdentifierStartChar(c):
			p.ident.WriteRune(c)
			in.Step()
		default:
			return Fail(errors.Expected(in.Position(), "key", c, false))
		}
	}
	if p.str != nil {
		p.str = p.str.Step(in)
		switch p.str.Status() {
		case StatusCont:
			return p
		case StatusError:
			return p.str
		}
		p.key.text = p.str.Value().(string)
		return Done(p.key)
	}
	for in.IsCont() && token.IsIdentifierChar(in.Head()) {
		p.ident.WriteRune(in.Head())
		in.Step()
	}
	switch {
	case in.IsEmpty():
		return p
	case in.IsError():
		return Fail(in.Err())
	}
	p.key.text = p.ident.String()
	return Done(p.key)
}
