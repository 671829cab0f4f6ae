// Package lexer defines the Unicode-aware lexical analyzer.
//
// The lexer is the only stage where the active human language matters
// structurally: every identifier-shaped lexeme is resolved against the
// concept registry, and a hit produces a concept-labeled keyword token.
// Everything downstream operates on concepts.
package lexer

import (
	"strings"
	"unicode"

	"github.com/unilang-dev/unilang"
	"github.com/unilang-dev/unilang/concept"
	"github.com/unilang-dev/unilang/numeral"
	"github.com/unilang-dev/unilang/source"
)

// Error codes used by lexer:
const (
	// ErrWrongChar indicates a rune that cannot start any lexeme.
	ErrWrongChar = unilang.LexicalErrors + iota

	// ErrUnterminated indicates an unterminated string, f-string, or date literal.
	ErrUnterminated

	// ErrBadNumeral indicates a malformed numeric literal.
	ErrBadNumeral

	// ErrBadIndent indicates indentation that matches no enclosing level,
	// including inconsistent tab/space mixes.
	ErrBadIndent
)

// Unicode operator glyphs folded to their canonical ASCII spelling.
var unicodeOperators = map[rune]string{
	'×': "*",
	'÷': "/",
	'−': "-",
	'≠': "!=",
	'≤': "<=",
	'≥': ">=",
	'→': "->",
}

// Unicode delimiter glyphs folded to their canonical ASCII spelling.
var unicodeDelimiters = map[rune]string{
	'（': "(", '）': ")",
	'［': "[", '］': "]",
	'｛': "{", '｝': "}",
	'，': ",", '、': ",", '،': ",",
	'：': ":",
	'；': ";", '؛': ";",
	'。': ".",
}

// String delimiter pairs.
var stringPairs = map[rune]rune{
	'"':  '"',
	'\'': '\'',
	'「':  '」',
	'«':  '»',
	'“':  '”',
	'‘':  '’',
}

const (
	dateOpen  = '〔'
	dateClose = '〕'
)

// Three-character operators, longest match first.
var threeCharOps = []string{"**=", "//=", "<<=", ">>="}

// Two-character operators.
var twoCharOps = []string{
	"**", "//", "==", "!=", "<=", ">=", "<<", ">>",
	"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "->",
}

const singleOps = "+-*/%<>=&|^~"
const delimiters = "()[]{},:;.@"

// Lexer tokenizes source text for one concept registry. A Lexer holds
// no per-call state and is safe for concurrent use.
type Lexer struct {
	reg *concept.Registry
}

// New creates a Lexer bound to a registry.
func New(reg *concept.Registry) *Lexer {
	return &Lexer{reg: reg}
}

// Tokenize scans the whole source and returns the flat token stream,
// ending with any pending dedents and an EOF token. language selects
// which registry keywords are recognized; it must be declared by the
// registry.
func (l *Lexer) Tokenize(src []byte, name, language string) ([]Token, error) {
	if !l.reg.HasLanguage(language) {
		return nil, unilang.FormatError(concept.ErrUnknownLanguage, "REGISTRY_UNKNOWN_LANGUAGE",
			"unsupported language %q", language)
	}
	s := &scan{
		lexer:    l,
		reader:   source.NewReader(source.New(name, src)),
		language: language,
		indents:  []string{""},
		atStart:  true,
	}
	e := s.run()
	if e != nil {
		return nil, e
	}
	return s.tokens, nil
}

// scan holds the per-call lexing state.
type scan struct {
	lexer    *Lexer
	reader   *source.Reader
	language string
	tokens   []Token
	indents  []string
	depth    int // open bracket depth: newlines are insignificant inside
	atStart  bool
}

func (s *scan) emit(t Token) {
	s.tokens = append(s.tokens, t)
}

func (s *scan) pos() source.Pos {
	return s.reader.SourcePos()
}

func (s *scan) run() error {
	r := s.reader
	for !r.AtEnd() {
		if s.atStart && s.depth == 0 {
			if e := s.handleIndent(); e != nil {
				return e
			}
			s.atStart = false
			continue
		}

		c := r.Peek()
		switch {
		case c == '\n':
			pos := s.pos()
			r.Next()
			if s.depth == 0 {
				s.emit(NewToken(Newline, "\n", pos))
				s.atStart = true
			}

		case c == ' ' || c == '\t' || c == '\r':
			r.Next()

		case c == '#':
			s.readComment()

		case (c == 'f' || c == 'F') && (r.PeekAt(1) == '"' || r.PeekAt(1) == '\''):
			if e := s.readFString(); e != nil {
				return e
			}

		case (c == '"' || c == '\'') && r.PeekAt(1) == c && r.PeekAt(2) == c:
			if e := s.readTripleString(c); e != nil {
				return e
			}

		case stringPairs[c] != 0:
			if e := s.readString(c); e != nil {
				return e
			}

		case c == dateOpen:
			if e := s.readDate(); e != nil {
				return e
			}

		case numeral.IsDigit(c):
			if e := s.readNumber(); e != nil {
				return e
			}

		case isIdentStart(c):
			s.readIdentifier()

		default:
			if op, ok := unicodeOperators[c]; ok {
				pos := s.pos()
				r.Next()
				s.emit(NewToken(Operator, op, pos))
				break
			}
			if d, ok := unicodeDelimiters[c]; ok {
				pos := s.pos()
				r.Next()
				s.trackDepth(d)
				s.emit(NewToken(Delimiter, d, pos))
				break
			}
			if c == ':' && r.PeekAt(1) == '=' {
				pos := s.pos()
				r.Next()
				r.Next()
				s.emit(NewToken(Operator, ":=", pos))
				break
			}
			if c == '!' && r.PeekAt(1) == '=' {
				pos := s.pos()
				r.Next()
				r.Next()
				s.emit(NewToken(Operator, "!=", pos))
				break
			}
			if strings.ContainsRune(singleOps, c) {
				s.readOperator()
				break
			}
			if strings.ContainsRune(delimiters, c) {
				pos := s.pos()
				r.Next()
				s.trackDepth(string(c))
				s.emit(NewToken(Delimiter, string(c), pos))
				break
			}
			return unilang.FormatErrorPos(s.pos(), ErrWrongChar, "LEX_WRONG_CHAR",
				"wrong char %q (u+%04x)", c, c)
		}
	}

	end := s.pos()
	if n := len(s.tokens); n > 0 && s.tokens[n-1].Kind() != Newline {
		s.emit(NewToken(Newline, "\n", end))
	}
	for len(s.indents) > 1 {
		s.indents = s.indents[:len(s.indents)-1]
		s.emit(NewToken(Dedent, "", end))
	}
	s.emit(EofToken(end))
	return nil
}

func (s *scan) trackDepth(d string) {
	switch d {
	case "(", "[", "{":
		s.depth++
	case ")", "]", "}":
		if s.depth > 0 {
			s.depth--
		}
	}
}

// handleIndent consumes the leading whitespace of a logical line and
// emits indent/dedent tokens. Indents are compared as raw prefixes:
// a deeper line must extend the current indent byte for byte and a
// shallower line must exactly match an enclosing level, so inconsistent
// tab/space mixes never pass silently.
func (s *scan) handleIndent() error {
	r := s.reader
	var indent strings.Builder
	for !r.AtEnd() {
		c := r.Peek()
		if c != ' ' && c != '\t' {
			break
		}
		indent.WriteRune(r.Next())
	}

	// Blank and comment-only lines never affect indentation.
	if r.AtEnd() || r.Peek() == '\n' || r.Peek() == '#' || r.Peek() == '\r' {
		return nil
	}

	pos := s.pos()
	current := s.indents[len(s.indents)-1]
	line := indent.String()
	switch {
	case line == current:
		return nil

	case strings.HasPrefix(line, current):
		s.indents = append(s.indents, line)
		s.emit(NewToken(Indent, "", pos))
		return nil

	case strings.HasPrefix(current, line):
		for len(s.indents) > 1 && len(s.indents[len(s.indents)-1]) > len(line) {
			s.indents = s.indents[:len(s.indents)-1]
			s.emit(NewToken(Dedent, "", pos))
		}
		if s.indents[len(s.indents)-1] != line {
			return unilang.FormatErrorPos(pos, ErrBadIndent, "LEX_BAD_INDENT",
				"indentation matches no enclosing block")
		}
		return nil

	default:
		return unilang.FormatErrorPos(pos, ErrBadIndent, "LEX_BAD_INDENT",
			"inconsistent use of tabs and spaces in indentation")
	}
}

func (s *scan) readComment() {
	r := s.reader
	pos := s.pos()
	var text strings.Builder
	for !r.AtEnd() && r.Peek() != '\n' {
		text.WriteRune(r.Next())
	}
	s.emit(NewToken(Comment, text.String(), pos))
}

func isIdentStart(c rune) bool {
	return c == '_' || unicode.IsLetter(c) ||
		unicode.Is(unicode.Mn, c) || unicode.Is(unicode.Mc, c)
}

func isIdentPart(c rune) bool {
	return isIdentStart(c) || unicode.Is(unicode.Nd, c)
}

func (s *scan) readIdentifier() {
	r := s.reader
	pos := s.pos()
	var text strings.Builder
	for !r.AtEnd() && isIdentPart(r.Peek()) {
		text.WriteRune(r.Next())
	}
	word := text.String()
	if c, ok := s.lexer.reg.Resolve(s.language, word); ok {
		s.emit(NewKeyword(word, c, pos))
	} else {
		s.emit(NewToken(Identifier, word, pos))
	}
}

func (s *scan) readNumber() error {
	r := s.reader
	pos := s.pos()
	start := r.Offset()

	if r.Peek() == '0' {
		next := r.PeekAt(1)
		if next == 'x' || next == 'X' || next == 'o' || next == 'O' || next == 'b' || next == 'B' {
			return s.readRadixNumber(pos, start)
		}
	}

	dotSeen, expSeen := false, false
	for !r.AtEnd() {
		c := r.Peek()
		switch {
		case numeral.IsDigit(c):
			r.Next()
		case c == '.' && !dotSeen && !expSeen:
			dotSeen = true
			r.Next()
		case (c == 'e' || c == 'E') && !expSeen && isExpStart(r.PeekAt(1), r.PeekAt(2)):
			expSeen = true
			r.Next()
			if r.Peek() == '+' || r.Peek() == '-' {
				r.Next()
			}
		default:
			goto done
		}
	}
done:
	text := string(r.Slice(start, r.Offset()))
	value, e := numeral.Canonical(text)
	if e != nil {
		return unilang.FormatErrorPos(pos, ErrBadNumeral, "LEX_BAD_NUMERAL",
			"bad numeral %q: %s", text, e.Error())
	}
	s.emit(NewNumber(text, value, pos))
	return nil
}

func isExpStart(c, next rune) bool {
	if c >= '0' && c <= '9' {
		return true
	}
	return (c == '+' || c == '-') && next >= '0' && next <= '9'
}

func (s *scan) readRadixNumber(pos source.Pos, start int) error {
	r := s.reader
	r.Next() // 0
	marker := r.Next()
	var valid func(rune) bool
	switch marker {
	case 'x', 'X':
		valid = func(c rune) bool {
			return c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
		}
	case 'o', 'O':
		valid = func(c rune) bool { return c >= '0' && c <= '7' }
	default:
		valid = func(c rune) bool { return c == '0' || c == '1' }
	}

	digits := 0
	for !r.AtEnd() && valid(r.Peek()) {
		r.Next()
		digits++
	}
	text := string(r.Slice(start, r.Offset()))
	if digits == 0 {
		return unilang.FormatErrorPos(pos, ErrBadNumeral, "LEX_BAD_NUMERAL",
			"bad numeral %q: missing digits after radix prefix", text)
	}
	s.emit(NewNumber(text, text, pos))
	return nil
}

func (s *scan) readOperator() {
	r := s.reader
	pos := s.pos()
	three := string([]rune{r.Peek(), r.PeekAt(1), r.PeekAt(2)})
	for _, op := range threeCharOps {
		if three == op {
			r.Next()
			r.Next()
			r.Next()
			s.emit(NewToken(Operator, op, pos))
			return
		}
	}
	two := three[:2]
	for _, op := range twoCharOps {
		if two == op {
			r.Next()
			r.Next()
			s.emit(NewToken(Operator, op, pos))
			return
		}
	}
	s.emit(NewToken(Operator, string(r.Next()), pos))
}

func (s *scan) readString(open rune) error {
	r := s.reader
	pos := s.pos()
	closeCh := stringPairs[open]
	ascii := open == '"' || open == '\''
	r.Next()
	var text strings.Builder
	for !r.AtEnd() {
		c := r.Peek()
		if c == closeCh {
			r.Next()
			s.emit(NewToken(String, text.String(), pos))
			return nil
		}
		if c == '\\' && ascii {
			r.Next()
			text.WriteRune('\\')
			text.WriteRune(r.Next())
			continue
		}
		text.WriteRune(r.Next())
	}
	return unilang.FormatErrorPos(pos, ErrUnterminated, "LEX_UNTERMINATED",
		"unterminated string literal")
}

func (s *scan) readTripleString(quote rune) error {
	r := s.reader
	pos := s.pos()
	r.Next()
	r.Next()
	r.Next()
	var text strings.Builder
	for !r.AtEnd() {
		c := r.Peek()
		if c == quote && r.PeekAt(1) == quote && r.PeekAt(2) == quote {
			r.Next()
			r.Next()
			r.Next()
			s.emit(NewToken(String, text.String(), pos))
			return nil
		}
		if c == '\\' {
			r.Next()
			text.WriteRune('\\')
			text.WriteRune(r.Next())
			continue
		}
		text.WriteRune(r.Next())
	}
	return unilang.FormatErrorPos(pos, ErrUnterminated, "LEX_UNTERMINATED",
		"unterminated triple-quoted string literal")
}

// readFString scans f"text {expr} text". Interpolation spans are lexed
// immediately with the same registry and language, so the parser never
// needs lexer access; span token positions are relative to the span.
func (s *scan) readFString() error {
	r := s.reader
	pos := s.pos()
	r.Next() // f
	quote := r.Next()
	var parts []FPart
	var text strings.Builder
	flush := func() {
		if text.Len() > 0 {
			parts = append(parts, LiteralPart(text.String()))
			text.Reset()
		}
	}
	for !r.AtEnd() {
		c := r.Peek()
		switch {
		case c == quote:
			r.Next()
			flush()
			s.emit(NewFString(parts, pos))
			return nil

		case c == '\\':
			r.Next()
			text.WriteRune('\\')
			text.WriteRune(r.Next())

		case c == '{' && r.PeekAt(1) == '{':
			r.Next()
			r.Next()
			text.WriteRune('{')

		case c == '}' && r.PeekAt(1) == '}':
			r.Next()
			r.Next()
			text.WriteRune('}')

		case c == '{':
			r.Next()
			exprText, e := s.readFStringExpr(quote)
			if e != nil {
				return e
			}
			flush()
			sub, e := s.lexer.Tokenize([]byte(exprText), pos.SourceName(), s.language)
			if e != nil {
				return e
			}
			parts = append(parts, ExprPart(trimStreamEnd(sub)))

		case c == '}':
			return unilang.FormatErrorPos(s.pos(), ErrWrongChar, "LEX_WRONG_CHAR",
				"single \"}\" is not allowed inside an f-string")

		default:
			text.WriteRune(r.Next())
		}
	}
	return unilang.FormatErrorPos(pos, ErrUnterminated, "LEX_UNTERMINATED",
		"unterminated f-string literal")
}

func (s *scan) readFStringExpr(quote rune) (string, error) {
	r := s.reader
	pos := s.pos()
	depth := 0
	var text strings.Builder
	for !r.AtEnd() {
		c := r.Peek()
		if c == quote {
			break
		}
		switch c {
		case '{', '[', '(':
			depth++
		case ']', ')':
			depth--
		case '}':
			if depth == 0 {
				r.Next()
				if text.Len() == 0 {
					return "", unilang.FormatErrorPos(pos, ErrWrongChar, "LEX_WRONG_CHAR",
						"empty expression inside f-string")
				}
				return text.String(), nil
			}
			depth--
		}
		text.WriteRune(r.Next())
	}
	return "", unilang.FormatErrorPos(pos, ErrUnterminated, "LEX_UNTERMINATED",
		"unterminated expression inside f-string")
}

// trimStreamEnd drops the trailing newline and EOF of a sub-lexed span.
func trimStreamEnd(tokens []Token) []Token {
	for len(tokens) > 0 {
		k := tokens[len(tokens)-1].Kind()
		if k == EOF || k == Newline || k == Dedent {
			tokens = tokens[:len(tokens)-1]
			continue
		}
		break
	}
	return tokens
}

func (s *scan) readDate() error {
	r := s.reader
	pos := s.pos()
	r.Next()
	var text strings.Builder
	for !r.AtEnd() {
		if r.Peek() == dateClose {
			r.Next()
			s.emit(NewToken(Date, text.String(), pos))
			return nil
		}
		text.WriteRune(r.Next())
	}
	return unilang.FormatErrorPos(pos, ErrUnterminated, "LEX_UNTERMINATED",
		"unterminated date literal")
}
