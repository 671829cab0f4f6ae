package diag

import (
	"strings"
	"testing"

	"github.com/unilang-dev/unilang"
)

func TestDefaultMessagesLoad(t *testing.T) {
	m := DefaultMessages()
	keys := []string{
		"UNDEFINED_NAME", "DUPLICATE_DEFINITION", "CONST_REASSIGNMENT",
		"BREAK_OUTSIDE_LOOP", "CONTINUE_OUTSIDE_LOOP",
		"RETURN_OUTSIDE_FUNCTION", "YIELD_OUTSIDE_FUNCTION",
		"AWAIT_OUTSIDE_ASYNC", "GLOBAL_UNKNOWN_NAME", "NONLOCAL_NO_BINDING",
	}
	for _, key := range keys {
		if !m.Has(key) {
			t.Errorf("missing message key %s", key)
		}
	}
}

func TestFormat(t *testing.T) {
	m := DefaultMessages()
	samples := []struct {
		key, language, expected string
		placeholders            map[string]string
	}{
		{"UNDEFINED_NAME", "en", `name "x" is not defined`, map[string]string{"name": "x"}},
		{"UNDEFINED_NAME", "fr", `le nom "x" n'est pas défini`, map[string]string{"name": "x"}},
		{"BREAK_OUTSIDE_LOOP", "en", "break outside of a loop", nil},
	}
	for i, s := range samples {
		if got := m.Format(s.key, s.language, s.placeholders); got != s.expected {
			t.Errorf("sample #%d: expecting %q, got %q", i, s.expected, got)
		}
	}
}

func TestFormatFallsBackToEnglish(t *testing.T) {
	m := DefaultMessages()
	// GLOBAL_UNKNOWN_NAME has no Japanese template.
	got := m.Format("GLOBAL_UNKNOWN_NAME", "ja", map[string]string{"name": "x"})
	if !strings.Contains(got, "module level") {
		t.Fatalf("expecting English fallback, got %q", got)
	}
	if m.Format("NO_SUCH_KEY", "en", nil) != "NO_SUCH_KEY" {
		t.Fatal("unknown key must render as itself")
	}
}

func TestRender(t *testing.T) {
	m := DefaultMessages()
	d := Diagnostic{Key: "BREAK_OUTSIDE_LOOP", Line: 3, Col: 5, Severity: SevError}
	if got := m.Render(d, "en"); got != "3:5: error: break outside of a loop" {
		t.Fatalf("unexpected rendering %q", got)
	}
}

func TestLoadMessagesValidation(t *testing.T) {
	samples := []struct {
		data string
		code int
	}{
		{`not json`, ErrBadMessageDoc},
		{`{"messages": {}}`, ErrBadMessageDoc},
		{`{"messages": {"K": {"fr": "seulement"}}}`, ErrMissingEnglish},
	}
	for i, s := range samples {
		_, e := LoadMessages([]byte(s.data))
		if e == nil {
			t.Errorf("sample #%d: expecting error, got nil", i)
			continue
		}
		ee, ok := e.(*unilang.Error)
		if !ok || ee.Code != s.code {
			t.Errorf("sample #%d: expecting code %d, got %v", i, s.code, e)
		}
	}
}

func TestHasErrors(t *testing.T) {
	warnings := []Diagnostic{{Key: "GLOBAL_UNKNOWN_NAME", Severity: SevWarning}}
	if HasErrors(warnings) {
		t.Fatal("warnings alone must not count as errors")
	}
	if !HasErrors(append(warnings, Diagnostic{Key: "UNDEFINED_NAME"})) {
		t.Fatal("expecting errors to be detected")
	}
}
