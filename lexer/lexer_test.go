package lexer

import (
	"testing"

	"github.com/unilang-dev/unilang"
	"github.com/unilang-dev/unilang/concept"
	"github.com/unilang-dev/unilang/source"
)

func tokenize(t *testing.T, text, language string) []Token {
	t.Helper()
	tokens, e := New(concept.DefaultRegistry()).Tokenize([]byte(text), "test", language)
	if e != nil {
		t.Fatalf("Tokenize(%q, %s): %s", text, language, e)
	}
	return tokens
}

func tokenizeErr(t *testing.T, text, language string) *unilang.Error {
	t.Helper()
	_, e := New(concept.DefaultRegistry()).Tokenize([]byte(text), "test", language)
	if e == nil {
		t.Fatalf("Tokenize(%q, %s): expecting error, got nil", text, language)
	}
	ee, ok := e.(*unilang.Error)
	if !ok {
		t.Fatalf("Tokenize(%q, %s): expecting *unilang.Error, got %T", text, language, e)
	}
	return ee
}

func TestKeywordResolution(t *testing.T) {
	samples := []struct {
		language, text string
		expected       concept.Concept
	}{
		{"en", "if", concept.CondIf},
		{"fr", "si", concept.CondIf},
		{"es", "mientras", concept.LoopWhile},
		{"hi", "अगर", concept.CondIf},
		{"ja", "もし", concept.CondIf},
		{"zh", "如果", concept.CondIf},
		{"zh", "打印", concept.Print},
	}
	for i, s := range samples {
		tokens := tokenize(t, s.text, s.language)
		if tokens[0].Kind() != Keyword || tokens[0].Concept() != s.expected {
			t.Errorf("sample #%d: expecting %s keyword, got %s", i, s.expected, tokens[0])
		}
	}
}

func TestKeywordIsLanguageScoped(t *testing.T) {
	tokens := tokenize(t, "si x", "en")
	if tokens[0].Kind() != Identifier {
		t.Fatalf("expecting identifier for foreign keyword, got %s", tokens[0])
	}
}

func TestNumerals(t *testing.T) {
	samples := []struct {
		text, value string
	}{
		{"42", "42"},
		{"3.14", "3.14"},
		{"2.5e-3", "2.5e-3"},
		{"0x1F", "0x1F"},
		{"0o755", "0o755"},
		{"0b1010", "0b1010"},
		{"१२३", "123"},
		{"٤٢", "42"},
		{"๓.๕", "3.5"},
		{"１２３", "123"},
	}
	for i, s := range samples {
		tokens := tokenize(t, s.text, "en")
		tok := tokens[0]
		if tok.Kind() != Number {
			t.Errorf("sample #%d: expecting number, got %s", i, tok)
			continue
		}
		if tok.Text() != s.text || tok.Value() != s.value {
			t.Errorf("sample #%d: expecting (%q, %q), got (%q, %q)",
				i, s.text, s.value, tok.Text(), tok.Value())
		}
	}
}

func TestMixedScriptNumeralError(t *testing.T) {
	e := tokenizeErr(t, "1२", "en")
	if e.Code != ErrBadNumeral {
		t.Fatalf("expecting ErrBadNumeral, got %v", e)
	}
}

func TestStringFamilies(t *testing.T) {
	samples := []struct {
		text, content string
	}{
		{`"hello"`, "hello"},
		{`'world'`, "world"},
		{"「こんにちは」", "こんにちは"},
		{"«salut»", "salut"},
		{"“typo”", "typo"},
		{"‘typo’", "typo"},
		{`"""multi` + "\n" + `line"""`, "multi\nline"},
		{`"a\"b"`, `a\"b`},
	}
	for i, s := range samples {
		tokens := tokenize(t, s.text, "en")
		tok := tokens[0]
		if tok.Kind() != String || tok.Text() != s.content {
			t.Errorf("sample #%d: expecting string %q, got %s", i, s.content, tok)
		}
	}
}

func TestDateLiteral(t *testing.T) {
	tokens := tokenize(t, "〔2024-01-15〕", "en")
	if tokens[0].Kind() != Date || tokens[0].Text() != "2024-01-15" {
		t.Fatalf("expecting date 2024-01-15, got %s", tokens[0])
	}
}

func TestOperatorFolds(t *testing.T) {
	samples := []struct {
		text, folded string
	}{
		{"×", "*"},
		{"÷", "/"},
		{"−", "-"},
		{"≠", "!="},
		{"≤", "<="},
		{"≥", ">="},
		{"→", "->"},
		{":=", ":="},
		{"**=", "**="},
		{"//", "//"},
		{"!=", "!="},
	}
	for i, s := range samples {
		tokens := tokenize(t, "a "+s.text+" b", "en")
		tok := tokens[1]
		if tok.Kind() != Operator || tok.Text() != s.folded {
			t.Errorf("sample #%d: expecting operator %q, got %s", i, s.folded, tok)
		}
	}
}

func TestDelimiterFolds(t *testing.T) {
	samples := []struct {
		text, folded string
	}{
		{"（", "("},
		{"）", ")"},
		{"，", ","},
		{"、", ","},
		{"،", ","},
		{"：", ":"},
		{"。", "."},
	}
	for i, s := range samples {
		tokens := tokenize(t, "a "+s.text+" b", "en")
		tok := tokens[1]
		if tok.Kind() != Delimiter || tok.Text() != s.folded {
			t.Errorf("sample #%d: expecting delimiter %q, got %s", i, s.folded, tok)
		}
	}
}

func TestIndentation(t *testing.T) {
	text := "if x:\n    print(x)\n    print(x)\ny = 1\n"
	expected := []Kind{
		Keyword, Identifier, Delimiter, Newline,
		Indent, Keyword, Delimiter, Identifier, Delimiter, Newline,
		Keyword, Delimiter, Identifier, Delimiter, Newline,
		Dedent, Identifier, Operator, Number, Newline,
		EOF,
	}
	tokens := tokenize(t, text, "en")
	if len(tokens) != len(expected) {
		t.Fatalf("expecting %d tokens, got %d: %v", len(expected), len(tokens), tokens)
	}
	for i, k := range expected {
		if tokens[i].Kind() != k {
			t.Errorf("token #%d: expecting %s, got %s", i, k, tokens[i])
		}
	}
}

func TestNestedDedents(t *testing.T) {
	text := "if a:\n  if b:\n    pass\nx\n"
	tokens := tokenize(t, text, "en")
	dedents := 0
	for _, tok := range tokens {
		if tok.Kind() == Dedent {
			dedents++
		}
	}
	if dedents != 2 {
		t.Fatalf("expecting 2 dedents, got %d: %v", dedents, tokens)
	}
}

func TestTrailingDedentsAtEof(t *testing.T) {
	tokens := tokenize(t, "if a:\n    pass", "en")
	n := len(tokens)
	if n < 3 || tokens[n-1].Kind() != EOF || tokens[n-2].Kind() != Dedent || tokens[n-3].Kind() != Newline {
		t.Fatalf("expecting ... newline dedent eof, got %v", tokens)
	}
}

func TestBlankAndCommentLinesSkipIndent(t *testing.T) {
	text := "if a:\n    x\n\n  # note\n    y\n"
	for _, tok := range tokenize(t, text, "en") {
		if tok.Kind() == Dedent {
			t.Fatalf("blank or comment line must not dedent: %v", tok)
		}
	}
}

func TestInconsistentIndentError(t *testing.T) {
	samples := []struct {
		text string
		line int
	}{
		{"if a:\n\tx\n  y\n", 3},
		{"if a:\n    x\n  y\n", 3},
		{"if a:\n    x\n\ty\n", 3},
	}
	for i, s := range samples {
		e := tokenizeErr(t, s.text, "en")
		if e.Code != ErrBadIndent || e.Line != s.line {
			t.Errorf("sample #%d: expecting ErrBadIndent at line %d, got %v", i, s.line, e)
		}
	}
}

func TestImplicitLineJoining(t *testing.T) {
	text := "f(1,\n   2,\n   3)\n"
	tokens := tokenize(t, text, "en")
	newlines := 0
	for _, tok := range tokens {
		switch tok.Kind() {
		case Newline:
			newlines++
		case Indent, Dedent:
			t.Fatalf("bracketed continuation must not change indentation: %v", tok)
		}
	}
	if newlines != 1 {
		t.Fatalf("expecting a single trailing newline, got %d", newlines)
	}
}

func TestFString(t *testing.T) {
	tokens := tokenize(t, `f"x = {x + 1}!"`, "en")
	tok := tokens[0]
	if tok.Kind() != FString {
		t.Fatalf("expecting f-string, got %s", tok)
	}
	parts := tok.Parts()
	if len(parts) != 3 {
		t.Fatalf("expecting 3 parts, got %d", len(parts))
	}
	if parts[0].IsExpr() || parts[0].Literal() != "x = " {
		t.Errorf("part #0: expecting literal \"x = \", got %+v", parts[0])
	}
	sub := parts[1].Tokens()
	if !parts[1].IsExpr() || len(sub) != 3 {
		t.Fatalf("part #1: expecting 3-token expression, got %v", sub)
	}
	if sub[0].Kind() != Identifier || sub[1].Text() != "+" || sub[2].Value() != "1" {
		t.Errorf("part #1: unexpected expression tokens %v", sub)
	}
	if parts[2].IsExpr() || parts[2].Literal() != "!" {
		t.Errorf("part #2: expecting literal \"!\", got %+v", parts[2])
	}
}

func TestFStringBraceEscapes(t *testing.T) {
	tokens := tokenize(t, `f"{{a}} {b}"`, "en")
	parts := tokens[0].Parts()
	if len(parts) != 2 || parts[0].Literal() != "{a} " || !parts[1].IsExpr() {
		t.Fatalf("unexpected parts %+v", parts)
	}
}

func TestFStringKeywordResolution(t *testing.T) {
	tokens := tokenize(t, `f"{x si 1}"`, "fr")
	sub := tokens[0].Parts()[0].Tokens()
	if len(sub) != 3 || !sub[1].IsConcept(concept.CondIf) {
		t.Fatalf("expecting registry resolution inside f-string, got %v", sub)
	}
}

func TestLexicalErrors(t *testing.T) {
	samples := []struct {
		text string
		code int
	}{
		{`"abc`, ErrUnterminated},
		{"「abc", ErrUnterminated},
		{`"""abc"`, ErrUnterminated},
		{"〔2024-01-01", ErrUnterminated},
		{`f"abc`, ErrUnterminated},
		{`f"{a"`, ErrUnterminated},
		{`f"{}"`, ErrWrongChar},
		{`f"}"`, ErrWrongChar},
		{"a $ b", ErrWrongChar},
		{"0x", ErrBadNumeral},
	}
	for i, s := range samples {
		e := tokenizeErr(t, s.text, "en")
		if e.Code != s.code {
			t.Errorf("sample #%d: %q: expecting code %d, got %v", i, s.text, s.code, e)
		}
	}
}

func TestTokenizeRejectsUnknownLanguage(t *testing.T) {
	_, e := New(concept.DefaultRegistry()).Tokenize([]byte("x"), "test", "xx")
	if e == nil {
		t.Fatal("expecting error for unknown language, got nil")
	}
}

func TestTokenConstructors(t *testing.T) {
	pos := source.NewPos(source.New("test", []byte("x")), 0)
	tok := NewToken(Operator, "+", pos)
	if tok.Kind() != Operator || tok.Text() != "+" || tok.Line() != 1 || tok.Col() != 1 {
		t.Errorf("unexpected token %s", tok)
	}
	kw := NewKeyword("let", concept.Let, pos)
	if !kw.IsConcept(concept.Let) {
		t.Errorf("unexpected keyword token %s", kw)
	}
}

func TestTokenPositions(t *testing.T) {
	tokens := tokenize(t, "let x\nlet y\n", "en")
	samples := []struct {
		index, line, col int
	}{
		{0, 1, 1},
		{1, 1, 5},
		{3, 2, 1},
		{4, 2, 5},
	}
	for i, s := range samples {
		tok := tokens[s.index]
		if tok.Line() != s.line || tok.Col() != s.col || tok.SourceName() != "test" {
			t.Errorf("sample #%d: expecting %d:%d, got %d:%d", i, s.line, s.col, tok.Line(), tok.Col())
		}
	}
}

func TestCommentsAreTokens(t *testing.T) {
	tokens := tokenize(t, "x  # trailing note\n", "en")
	if tokens[1].Kind() != Comment || tokens[1].Text() != "# trailing note" {
		t.Fatalf("expecting comment token, got %s", tokens[1])
	}
}
