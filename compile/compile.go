// Package compile assembles the full frontend pipeline: source text is
// tokenized, normalized, parsed, and analyzed in one call. A Pipeline
// is immutable after New and holds no per-call state, so one instance
// serves concurrent compilations.
package compile

import (
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/unilang-dev/unilang"
	"github.com/unilang-dev/unilang/ast"
	"github.com/unilang-dev/unilang/concept"
	"github.com/unilang-dev/unilang/diag"
	"github.com/unilang-dev/unilang/lexer"
	"github.com/unilang-dev/unilang/normalize"
	"github.com/unilang-dev/unilang/parser"
	"github.com/unilang-dev/unilang/semantic"
)

// Options carries the registries a Pipeline is built from. Nil fields
// fall back to the embedded defaults.
type Options struct {
	Registry *concept.Registry
	Rules    *normalize.Table
	Messages *diag.Messages
}

// Pipeline runs the whole frontend. Build it once with New.
type Pipeline struct {
	registry *concept.Registry
	rules    *normalize.Table
	messages *diag.Messages
	lexer    *lexer.Lexer
}

// New builds a pipeline from the given options.
func New(opts Options) *Pipeline {
	p := &Pipeline{
		registry: opts.Registry,
		rules:    opts.Rules,
		messages: opts.Messages,
	}
	if p.registry == nil {
		p.registry = concept.DefaultRegistry()
	}
	if p.rules == nil {
		p.rules = normalize.DefaultTable(p.registry)
	}
	if p.messages == nil {
		p.messages = diag.DefaultMessages()
	}
	p.lexer = lexer.New(p.registry)
	return p
}

// Registry returns the concept registry the pipeline was built with.
func (p *Pipeline) Registry() *concept.Registry {
	return p.registry
}

// Messages returns the diagnostic message registry.
func (p *Pipeline) Messages() *diag.Messages {
	return p.messages
}

// Unit is the outcome of one successful compilation, the container
// handed to code generators.
type Unit struct {
	// ID uniquely identifies this compilation.
	ID uuid.UUID

	// Program is the canonical, language-agnostic tree.
	Program *ast.Program

	// SourceName names the compiled source, usually a file name.
	SourceName string

	// SourceLanguage is the language code the source was written in.
	SourceLanguage string

	// CoreVersion records the frontend version that produced the unit.
	CoreVersion string

	// Metadata carries free-form generator hints.
	Metadata map[string]string
}

// Compile runs text -> tokens -> normalized tokens -> tree ->
// diagnostics. Lexical and syntax violations abort compilation and come
// back as the error; semantic findings never do, they are returned as
// diagnostics next to a complete Unit. Callers deciding whether the
// unit is fit for code generation should check diag.HasErrors.
func (p *Pipeline) Compile(src []byte, name, language string) (*Unit, []diag.Diagnostic, error) {
	tokens, e := p.Tokens(src, name, language)
	if e != nil {
		return nil, nil, e
	}
	program, e := parser.Parse(tokens, language)
	if e != nil {
		return nil, nil, e
	}
	unit := &Unit{
		ID:             uuid.New(),
		Program:        program,
		SourceName:     name,
		SourceLanguage: language,
		CoreVersion:    unilang.Version,
		Metadata:       map[string]string{},
	}
	return unit, semantic.Analyze(program), nil
}

// Tokens tokenizes and normalizes source text without parsing it.
func (p *Pipeline) Tokens(src []byte, name, language string) ([]lexer.Token, error) {
	tokens, e := p.lexer.Tokenize(src, name, language)
	if e != nil {
		return nil, e
	}
	return p.rules.Normalize(tokens, language), nil
}

// Render formats diagnostics as human-readable lines in the given
// message language.
func (p *Pipeline) Render(list []diag.Diagnostic, language string) []string {
	lines := make([]string, len(list))
	for i, d := range list {
		lines[i] = p.messages.Render(d, language)
	}
	return lines
}

// Detect guesses the source language from the keywords appearing in
// the text. It reports false when no registered language matches.
func (p *Pipeline) Detect(src []byte) (string, bool) {
	words := strings.FieldsFunc(string(src), func(r rune) bool {
		return !unicode.IsLetter(r) && r != '_'
	})
	return p.registry.DetectLanguage(words)
}
