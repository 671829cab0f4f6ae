// Package numeral normalizes numeric literals written in any decimal
// digit script to a canonical ASCII form. Richer numeral types (roman,
// fractions, complex) belong to the runtime collaborator, not here.
package numeral

import (
	"errors"
	"strings"
	"unicode"
)

// ErrBadDigit reports a character that is not a digit of any supported script.
var ErrBadDigit = errors.New("invalid numeral character")

// ErrMixedScripts reports digits of two different scripts in one literal.
var ErrMixedScripts = errors.New("mixed digit scripts in one numeral")

// Zero points of decimal digit blocks recognized by the lexer. Unicode
// guarantees each Nd block is a contiguous run of ten code points
// starting at its zero.
var zeroPoints = []rune{
	'0',    // ASCII
	0x0660, // Arabic-Indic
	0x06F0, // Extended Arabic-Indic
	0x0966, // Devanagari
	0x09E6, // Bengali
	0x0A66, // Gurmukhi
	0x0AE6, // Gujarati
	0x0B66, // Oriya
	0x0BE6, // Tamil
	0x0C66, // Telugu
	0x0CE6, // Kannada
	0x0D66, // Malayalam
	0x0E50, // Thai
	0x0ED0, // Lao
	0x0F20, // Tibetan
	0x1040, // Myanmar
	0x17E0, // Khmer
	0xFF10, // Fullwidth
}

// IsDigit reports whether r is a decimal digit in any script.
func IsDigit(r rune) bool {
	return unicode.Is(unicode.Nd, r)
}

// digitValue returns the numeric value of r and the zero point of its
// script block.
func digitValue(r rune) (value int, zero rune, ok bool) {
	for _, z := range zeroPoints {
		if r >= z && r <= z+9 {
			return int(r - z), z, true
		}
	}
	return 0, 0, false
}

// Canonical rewrites a numeral lexeme into canonical ASCII text:
// script digits become ASCII digits, while radix prefixes (0x, 0o, 0b),
// the decimal point, and exponent markers pass through unchanged.
// All digits of one literal must come from a single script.
func Canonical(text string) (string, error) {
	if len(text) > 1 {
		switch strings.ToLower(text[:2]) {
		case "0x", "0o", "0b":
			// Radixed literals are ASCII-only by construction.
			return text, nil
		}
	}

	var out strings.Builder
	out.Grow(len(text))
	var script rune
	expSeen := false
	for _, r := range text {
		switch {
		case r == '.' || r == '+' || r == '-':
			out.WriteRune(r)
		case (r == 'e' || r == 'E') && !expSeen:
			expSeen = true
			out.WriteRune('e')
		default:
			value, zero, ok := digitValue(r)
			if !ok {
				return "", ErrBadDigit
			}
			if script == 0 {
				script = zero
			} else if script != zero {
				return "", ErrMixedScripts
			}
			out.WriteByte(byte('0' + value))
		}
	}
	return out.String(), nil
}
