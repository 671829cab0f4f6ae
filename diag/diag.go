// Package diag defines diagnostic values and the localizable message
// registry used to render them. Analysis stages emit diagnostics with
// language-neutral keys and placeholders; turning them into human text
// happens here, in whatever language the caller asks for.
package diag

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/unilang-dev/unilang"
)

// Error codes used by diag:
const (
	// ErrBadMessageDoc indicates a message document that is not valid
	// JSON or misses required fields.
	ErrBadMessageDoc = unilang.SemanticErrors + 50 + iota

	// ErrMissingEnglish indicates a message key without an English
	// template, which would break the fallback chain.
	ErrMissingEnglish
)

// Severity classifies a diagnostic.
type Severity int

const (
	SevError Severity = iota
	SevWarning
)

var severityNames = [...]string{
	SevError:   "error",
	SevWarning: "warning",
}

func (s Severity) String() string {
	if int(s) < len(severityNames) {
		return severityNames[s]
	}
	return "-unknown-"
}

// Diagnostic is one analysis finding. Key addresses a template in a
// Messages registry; Placeholders fill its {name} slots.
type Diagnostic struct {
	Key          string
	Placeholders map[string]string
	Line, Col    int
	Severity     Severity
}

// HasErrors reports whether any diagnostic in the list is an error.
func HasErrors(list []Diagnostic) bool {
	for i := range list {
		if list[i].Severity == SevError {
			return true
		}
	}
	return false
}

//go:embed messages.json
var defaultMessages []byte

// Messages is an immutable key -> language -> template registry.
type Messages struct {
	templates map[string]map[string]string
}

type messageDoc struct {
	Messages map[string]map[string]string `json:"messages"`
}

// DefaultMessages returns the registry built from the embedded
// message pack.
func DefaultMessages() *Messages {
	m, e := LoadMessages(defaultMessages)
	if e != nil {
		panic("embedded message pack is broken: " + e.Error())
	}
	return m
}

// LoadMessages parses and validates a message document. Every key
// must carry an English template: English is the fallback language.
func LoadMessages(data []byte) (*Messages, error) {
	var doc messageDoc
	if e := json.Unmarshal(data, &doc); e != nil {
		return nil, unilang.FormatError(ErrBadMessageDoc, "DIAG_BAD_DOCUMENT",
			"cannot parse message document: %s", e.Error())
	}
	if len(doc.Messages) == 0 {
		return nil, unilang.FormatError(ErrBadMessageDoc, "DIAG_BAD_DOCUMENT",
			"message document defines no messages")
	}
	for key, byLang := range doc.Messages {
		if byLang["en"] == "" {
			return nil, unilang.FormatError(ErrMissingEnglish, "DIAG_MISSING_ENGLISH",
				"message %s has no English template", key)
		}
	}
	return &Messages{templates: doc.Messages}, nil
}

// Has reports whether a key is registered.
func (m *Messages) Has(key string) bool {
	_, found := m.templates[key]
	return found
}

// Format renders one message template, falling back to English when
// the requested language has no translation and to the bare key when
// the key is unknown. Placeholders replace {name} slots.
func (m *Messages) Format(key, language string, placeholders map[string]string) string {
	byLang, found := m.templates[key]
	if !found {
		return key
	}
	template := byLang[language]
	if template == "" {
		template = byLang["en"]
	}
	for name, value := range placeholders {
		template = strings.ReplaceAll(template, "{"+name+"}", value)
	}
	return template
}

// Render formats a full diagnostic line with position and severity.
func (m *Messages) Render(d Diagnostic, language string) string {
	text := m.Format(d.Key, language, d.Placeholders)
	if d.Line > 0 {
		return fmt.Sprintf("%d:%d: %s: %s", d.Line, d.Col, d.Severity, text)
	}
	return fmt.Sprintf("%s: %s", d.Severity, text)
}
