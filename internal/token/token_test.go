package token

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCharClasses(t *testing.T) {
	require.True(t, IsSpace(' '))
	require.True(t, IsSpace('\t'))
	require.False(t, IsSpace('\n'))
	require.True(t, IsNewline('\n'))
	require.True(t, IsNewline('\r'))
	require.True(t, IsWhitespace('\r'))
	require.False(t, IsWhitespace('x'))

	require.True(t, IsIdentifierStartChar('a'))
	require.True(t, IsIdentifierStartChar('_'))
	require.True(t, IsIdentifierStartChar('é'))
	require.False(t, IsIdentifierStartChar('1'))
	require.False(t, IsIdentifierStartChar('-'))
	require.True(t, IsIdentifierChar('1'))
	require.True(t, IsIdentifierChar('-'))
	require.False(t, IsIdentifierChar(':'))
	require.False(t, IsIdentifierChar('@'))
}

func TestIsIdentifier(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"foo", true},
		{"my_var", true},
		{"r2d2", true},
		{"kebab-case", true},
		{"", false},
		{"2fast", false},
		{"-x", false},
		{"has space", false},
		{"a:b", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			require.Equal(t, tt.expected, IsIdentifier(tt.input))
		})
	}
}

func TestEscapeRoundTrip(t *testing.T) {
	for _, markup := range []bool{false, true} {
		for c := rune(0); c < 0x80; c++ {
			esc := Escape(c, markup)
			if esc == "" {
				if markup {
					require.False(t, IsMarkupReserved(c), "reserved %q written raw", c)
				}
				continue
			}
			require.Equal(t, '\\', rune(esc[0]))
			if esc[1] == 'u' {
				v := 0
				for _, h := range esc[2:] {
					require.True(t, IsHexDigit(h))
					require.False(t, 'a' <= h && h <= 'f', "lowercase hex in %s", esc)
					v = v*16 + HexValue(h)
				}
				require.Equal(t, c, rune(v))
				continue
			}
			r, ok := Unescape(rune(esc[1]), markup)
			require.True(t, ok, "no unescape for %s", esc)
			require.Equal(t, c, r)
		}
	}
}

func TestEscapeTables(t *testing.T) {
	require.Equal(t, `\"`, Escape('"', false))
	require.Equal(t, "", Escape('"', true))
	require.Equal(t, `\@`, Escape('@', true))
	require.Equal(t, "", Escape('@', false))
	require.Equal(t, `\<`, Escape('<', true))
	require.Equal(t, `\{`, Escape('{', true))
	require.Equal(t, `\}`, Escape('}', true))
	require.Equal(t, "", Escape('{', false))
	require.Equal(t, `\n`, Escape('\n', false))
	require.Equal(t, "", Escape('\n', true))
	require.Equal(t, `\u0001`, Escape(0x01, false))
	require.Equal(t, `\u001F`, Escape(0x1F, true))

	_, ok := Unescape('@', false)
	require.False(t, ok)
	_, ok = Unescape('q', true)
	require.False(t, ok)
}

func TestKeywords(t *testing.T) {
	require.True(t, IsKeyword("true"))
	require.True(t, IsKeyword("false"))
	require.False(t, IsKeyword("null"))

	kw := DefaultKeywords()
	kw["extra"] = true
	require.False(t, IsKeyword("extra"))
}
