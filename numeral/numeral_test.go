package numeral

import (
	"testing"
)

func TestCanonical(t *testing.T) {
	samples := []struct {
		text, expected string
	}{
		{"42", "42"},
		{"3.14", "3.14"},
		{"1e10", "1e10"},
		{"2.5E-3", "2.5e-3"},
		{"0x1F", "0x1F"},
		{"0o755", "0o755"},
		{"0b1010", "0b1010"},
		{"१२३", "123"},        // Devanagari
		{"٤٢", "42"},          // Arabic-Indic
		{"๓.๕", "3.5"},        // Thai with decimal point
		{"１２３", "123"},        // Fullwidth
		{"৯৯", "99"},          // Bengali
	}
	for i, s := range samples {
		got, e := Canonical(s.text)
		if e != nil {
			t.Errorf("sample #%d: %q: unexpected error %s", i, s.text, e)
			continue
		}
		if got != s.expected {
			t.Errorf("sample #%d: %q: expecting %q, got %q", i, s.text, s.expected, got)
		}
	}
}

func TestCanonicalErrors(t *testing.T) {
	samples := []struct {
		text string
		err  error
	}{
		{"1२", ErrMixedScripts},
		{"१٢", ErrMixedScripts},
		{"1x2", ErrBadDigit},
	}
	for i, s := range samples {
		_, e := Canonical(s.text)
		if e != s.err {
			t.Errorf("sample #%d: %q: expecting %v, got %v", i, s.text, s.err, e)
		}
	}
}

func TestIsDigit(t *testing.T) {
	digits := []rune{'0', '9', '५', '٣', '๙', '１'}
	for _, r := range digits {
		if !IsDigit(r) {
			t.Errorf("IsDigit(%q) = false", r)
		}
	}
	nonDigits := []rune{'a', '.', '半', 'Ⅳ'} // roman numeral is Nl, not Nd
	for _, r := range nonDigits {
		if IsDigit(r) {
			t.Errorf("IsDigit(%q) = true", r)
		}
	}
}
