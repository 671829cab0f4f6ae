/*
Package unilang is the frontend of a multi-frontend language compiler:
it turns source text written with localized keywords in any supported
human language into one canonical, language-agnostic syntax tree.

Consists of subpackages:
  - concept: the registry mapping language-neutral concepts to per-language surface keywords;
  - source: source text, positions, and the rune reader used by the lexer;
  - lexer: Unicode-aware lexical analyzer emitting concept-labeled tokens;
  - numeral: digit-script detection and canonical numeral rendering;
  - normalize: declarative rewriting of language-specific token orders into canonical order;
  - ast: the closed set of syntax tree nodes and a structural printer;
  - parser: concept-dispatched recursive-descent parser;
  - semantic: scope and context analysis producing diagnostics;
  - diag: diagnostic values and localizable message templates;
  - compile: the full pipeline and the container handed to code generators;
  - codegen: renders a validated tree to executable Python source;
  - cmd/unilang: command-line tool and REPL.

Typical usage is:

1. Build a compile.Pipeline from the embedded (or externally supplied)
keyword registry and surface-rule table; both are fully validated at load
time and immutable afterwards.

2. Feed it source text plus an active language code. Each call runs
text -> tokens -> normalized tokens -> tree -> diagnostics with no state
shared between calls, so one pipeline serves concurrent compilations.

3. Hand the resulting compile.Unit to a code generator, or reject it if
the diagnostics list is non-empty.
*/
package unilang

import (
	"fmt"
)

// Version is the core version recorded in every compile.Unit.
const Version = "0.3.0"

// Error classes used by subpackages, each class contains up to 99 error codes:
const (
	RegistryErrors      = 1   // used by concept
	LexicalErrors       = 101 // used by lexer
	NormalizationErrors = 201 // used by normalize
	SyntaxErrors        = 301 // used by parser
	SemanticErrors      = 401 // used by semantic and diag
	GenerationErrors    = 501 // used by codegen
)

// Error is the error type used by unilang subpackages.
type Error struct {
	// Code contains non-zero error code.
	Code int

	// Key contains the language-neutral message key for this error,
	// suitable for lookup in a diag message registry.
	Key string

	// Message contains non-empty error message including source name and position information if provided.
	Message string

	// SourceName contains source name that caused this error or empty string.
	SourceName string

	// Line contains line number in source file or 0.
	Line int

	// Col contains column number in source file or 0.
	Col int
}

// SourcePos is used to retrieve source name and position information when constructing an error;
// source.Pos and lexer.Token implement this interface.
type SourcePos interface {
	// SourceName returns source file name or empty string.
	SourceName() string
	// Line returns line number or 0.
	Line() int
	// Col returns column number or 0.
	Col() int
}

// NewError creates new Error structure.
// name, line, and col will be added to error message if provided (non-zero).
func NewError(code int, key, msg, name string, line, col int) *Error {
	if name != "" && line != 0 && col != 0 {
		msg += fmt.Sprintf(" in %s at line %d col %d", name, line, col)
	} else if line != 0 && col != 0 {
		msg += fmt.Sprintf(" at line %d col %d", line, col)
	}
	return &Error{code, key, msg, name, line, col}
}

// Error simply returns Error.Message.
func (e *Error) Error() string {
	return e.Message
}

// FormatError creates Error structure with no source and position information.
// params will be added to error message using fmt.Sprintf function.
func FormatError(code int, key, msg string, params ...any) *Error {
	if len(params) > 0 {
		msg = fmt.Sprintf(msg, params...)
	}
	return NewError(code, key, msg, "", 0, 0)
}

// FormatErrorPos creates Error structure with source and position information.
// pos must not be nil.
// params will be added to error message using fmt.Sprintf function.
func FormatErrorPos(pos SourcePos, code int, key, msg string, params ...any) *Error {
	if len(params) > 0 {
		msg = fmt.Sprintf(msg, params...)
	}
	return NewError(code, key, msg, pos.SourceName(), pos.Line(), pos.Col())
}
