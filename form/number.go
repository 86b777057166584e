package form

import (
	"strconv"
	"strings"
)

// NumberKind tells how a numeric literal was, or should be, written.
type NumberKind uint8

const (
	NumberInt NumberKind = iota
	NumberHex
	NumberBig
	NumberDecimal
)

// Number describes a numeric literal independently of the Go type it is
// stored as. Int is used by NumberInt and NumberHex, Digits by NumberHex,
// and Text by NumberBig and NumberDecimal.
type Number struct {
	Kind   NumberKind
	Int    int64
	Digits int
	Text   string
}

// IntNumber returns a NumberInt.
func IntNumber(v int64) Number { return Number{Kind: NumberInt, Int: v} }

// HexNumber returns a NumberHex written with at least digits digits.
func HexNumber(v int64, digits int) Number { return Number{Kind: NumberHex, Int: v, Digits: digits} }

// BigNumber returns a NumberBig from its decimal text.
func BigNumber(text string) Number { return Number{Kind: NumberBig, Text: text} }

// DecimalNumber returns a NumberDecimal from its text.
func DecimalNumber(text string) Number { return Number{Kind: NumberDecimal, Text: text} }

// String returns the literal as written by WAML writers.
func (n Number) String() string {
	switch n.Kind {
	case NumberHex:
		s := strings.ToUpper(strconv.FormatUint(uint64(n.Int), 16))
		if len(s) < n.Digits {
			s = strings.Repeat("0", n.Digits-len(s)) + s
		}
		return "0x" + s
	case NumberBig, NumberDecimal:
		return n.Text
	}
	return strconv.FormatInt(n.Int, 10)
}
