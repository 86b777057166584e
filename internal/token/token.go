package token

// Character classes shared by every parser and writer. They follow the
// grammar's SP, NL, NameStartChar and NameChar productions.

// IsSpace reports whether c is horizontal whitespace.
func IsSpace(c rune) bool {
	return c == ' ' || c == '\t'
}

// IsNewline reports whether c is a line terminator.
func IsNewline(c rune) bool {
	return c == '\n' || c == '\r'
}

// IsWhitespace reports whether c is a space or a line terminator.
func IsWhitespace(c rune) bool {
	return IsSpace(c) || IsNewline(c)
}

// IsDigit reports whether c is an ASCII decimal digit.
func IsDigit(c rune) bool {
	return '0' <= c && c <= '9'
}

// IsHexDigit reports whether c is an ASCII hexadecimal digit.
func IsHexDigit(c rune) bool {
	return IsDigit(c) || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

// HexValue returns the value of the hexadecimal digit c.
func HexValue(c rune) int {
	switch {
	case '0' <= c && c <= '9':
		return int(c - '0')
	case 'a' <= c && c <= 'f':
		return int(c-'a') + 10
	case 'A' <= c && c <= 'F':
		return int(c-'A') + 10
	}
	return -1
}

// IsIdentifierStartChar reports whether c may begin an identifier.
func IsIdentifierStartChar(c rune) bool {
	switch {
	case 'A' <= c && c <= 'Z', 'a' <= c && c <= 'z', c == '_':
		return true
	case 0xC0 <= c && c <= 0xD6,
		0xD8 <= c && c <= 0xF6,
		0xF8 <= c && c <= 0x2FF,
		0x370 <= c && c <= 0x37D,
		0x37F <= c && c <= 0x1FFF,
		0x200C <= c && c <= 0x200D,
		0x2070 <= c && c <= 0x218F,
		0x2C00 <= c && c <= 0x2FEF,
		0x3001 <= c && c <= 0xD7FF,
		0xF900 <= c && c <= 0xFDCF,
		0xFDF0 <= c && c <= 0xFFFD,
		0x10000 <= c && c <= 0xEFFFF:
		return true
	}
	return false
}

// IsIdentifierChar reports whether c may continue an identifier.
func IsIdentifierChar(c rune) bool {
	switch {
	case IsIdentifierStartChar(c), IsDigit(c), c == '-':
		return true
	case c == 0xB7,
		0x300 <= c && c <= 0x36F,
		0x203F <= c && c <= 0x2040:
		return true
	}
	return false
}

// IsIdentifier reports whether s can be written as a bare identifier.
func IsIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, c := range s {
		if i == 0 {
			if !IsIdentifierStartChar(c) {
				return false
			}
		} else if !IsIdentifierChar(c) {
			return false
		}
	}
	return true
}

// IsMarkupReserved reports whether c must be escaped inside markup text.
func IsMarkupReserved(c rune) bool {
	return c == '<' || c == '>' || c == '@' || c == '\\' || c == '{' || c == '}'
}

// Unescape maps the character following a backslash to the character it
// denotes. It reports false for 'u', which introduces four hex digits and
// is handled by the caller, and for unknown escapes.
func Unescape(c rune, markup bool) (rune, bool) {
	switch c {
	case '"', '\\', '/':
		return c, true
	case 'b':
		return '\b', true
	case 'f':
		return '\f', true
	case 'n':
		return '\n', true
	case 'r':
		return '\r', true
	case 't':
		return '\t', true
	}
	if markup && IsMarkupReserved(c) {
		return c, true
	}
	return 0, false
}

// Escape returns the escape sequence for c, or "" when c is written as is.
// Strings escape quotes, backslashes and control characters; markup text
// additionally escapes its reserved characters and leaves quotes alone.
func Escape(c rune, markup bool) string {
	switch c {
	case '\\':
		return `\\`
	case '"':
		if markup {
			return ""
		}
		return `\"`
	case '\b':
		return `\b`
	case '\f':
		return `\f`
	case '\n':
		if markup {
			return ""
		}
		return `\n`
	case '\r':
		return `\r`
	case '\t':
		if markup {
			return ""
		}
		return `\t`
	}
	if markup && IsMarkupReserved(c) {
		return `\` + string(c)
	}
	if c < 0x20 || c == 0x7F {
		return UnicodeEscape(c)
	}
	return ""
}

// UnicodeEscape returns the \uXXXX form of c using uppercase hex digits.
func UnicodeEscape(c rune) string {
	const hex = "0123456789ABCDEF"
	return string([]byte{
		'\\', 'u',
		hex[(c>>12)&0xF],
		hex[(c>>8)&0xF],
		hex[(c>>4)&0xF],
		hex[c&0xF],
	})
}

var keywords = map[string]bool{
	"true":  true,
	"false": true,
}

// IsKeyword reports whether ident is reserved by the default keyword set.
// Keys spelled like keywords are quoted when written.
func IsKeyword(ident string) bool {
	return keywords[ident]
}

// DefaultKeywords returns a copy of the default keyword set.
func DefaultKeywords() map[string]bool {
	m := make(map[string]bool, len(keywords))
	for k := range keywords {
		m[k] = true
	}
	return m
}
