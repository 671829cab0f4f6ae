package lexer

import (
	"fmt"

	"github.com/unilang-dev/unilang"
	"github.com/unilang-dev/unilang/concept"
	"github.com/unilang-dev/unilang/source"
)

// Kind is the closed token category.
type Kind int

const (
	EOF Kind = iota
	Identifier
	Keyword
	Number
	String
	FString
	Date
	Operator
	Delimiter
	Newline
	Indent
	Dedent
	Comment
)

var kindNames = [...]string{
	EOF:        "-end-of-file-",
	Identifier: "identifier",
	Keyword:    "keyword",
	Number:     "number",
	String:     "string",
	FString:    "f-string",
	Date:       "date",
	Operator:   "operator",
	Delimiter:  "delimiter",
	Newline:    "newline",
	Indent:     "indent",
	Dedent:     "dedent",
	Comment:    "comment",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "-unknown-"
}

// FPart is one piece of an f-string: either a literal text run or a
// pre-lexed interpolated expression span.
type FPart struct {
	literal string
	tokens  []Token
}

// LiteralPart wraps a literal f-string run.
func LiteralPart(text string) FPart {
	return FPart{literal: text}
}

// ExprPart wraps a lexed interpolation span.
func ExprPart(tokens []Token) FPart {
	return FPart{tokens: tokens}
}

func (p FPart) IsExpr() bool {
	return p.tokens != nil
}

func (p FPart) Literal() string {
	return p.literal
}

func (p FPart) Tokens() []Token {
	return p.tokens
}

// Token is one lexeme. Tokens are immutable once produced; the
// normalizer builds fresh tokens instead of editing matched ones.
//
// Text holds the canonical text: for strings and dates the content
// without delimiters, for folded operator glyphs the ASCII spelling.
// Value holds the canonical ASCII numeral for Number tokens.
type Token struct {
	kind      Kind
	text      string
	value     string
	con       concept.Concept
	parts     []FPart
	srcName   string
	line, col int
}

// NewToken creates a plain token at the given position.
func NewToken(kind Kind, text string, pos unilang.SourcePos) Token {
	t := Token{kind: kind, text: text}
	if pos != nil {
		t.srcName = pos.SourceName()
		t.line = pos.Line()
		t.col = pos.Col()
	}
	return t
}

// NewKeyword creates a concept-labeled keyword token.
func NewKeyword(text string, c concept.Concept, pos unilang.SourcePos) Token {
	t := NewToken(Keyword, text, pos)
	t.con = c
	return t
}

// NewNumber creates a number token carrying its canonical value.
func NewNumber(text, value string, pos unilang.SourcePos) Token {
	t := NewToken(Number, text, pos)
	t.value = value
	return t
}

// NewFString creates an f-string token from its parts.
func NewFString(parts []FPart, pos unilang.SourcePos) Token {
	t := NewToken(FString, "", pos)
	t.parts = parts
	return t
}

func (t Token) Kind() Kind {
	return t.kind
}

func (t Token) Text() string {
	return t.text
}

// Value returns the canonical numeral text of a Number token, or "".
func (t Token) Value() string {
	return t.value
}

// Concept returns the resolved concept of a Keyword token, or
// concept.Invalid for every other token.
func (t Token) Concept() concept.Concept {
	return t.con
}

// IsConcept reports whether the token is a keyword carrying c.
func (t Token) IsConcept(c concept.Concept) bool {
	return t.kind == Keyword && t.con == c
}

// Parts returns the pieces of an FString token, nil otherwise.
func (t Token) Parts() []FPart {
	return t.parts
}

func (t Token) SourceName() string {
	return t.srcName
}

func (t Token) Line() int {
	return t.line
}

func (t Token) Col() int {
	return t.col
}

func (t Token) String() string {
	switch t.kind {
	case Keyword:
		return fmt.Sprintf("%s(%s %q %d:%d)", t.kind, t.con, t.text, t.line, t.col)
	case Indent, Dedent, Newline, EOF:
		return fmt.Sprintf("%s(%d:%d)", t.kind, t.line, t.col)
	}
	return fmt.Sprintf("%s(%q %d:%d)", t.kind, t.text, t.line, t.col)
}

// EofToken creates the closing token of a stream.
func EofToken(pos source.Pos) Token {
	return NewToken(EOF, "", pos)
}
