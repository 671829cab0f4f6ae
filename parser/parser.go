// Package parser builds the canonical syntax tree from a normalized
// token stream. It is a recursive-descent parser dispatching on token
// concepts, so the same grammar serves every source language. The
// first structural violation halts parsing; there is no recovery.
package parser

import (
	"fmt"

	"github.com/unilang-dev/unilang"
	"github.com/unilang-dev/unilang/ast"
	"github.com/unilang-dev/unilang/concept"
	"github.com/unilang-dev/unilang/lexer"
)

// Error codes used by parser:
const (
	// ErrUnexpectedToken indicates a token that violates the grammar.
	ErrUnexpectedToken = unilang.SyntaxErrors + iota

	// ErrBadTarget indicates an expression used as an assignment or
	// deletion target that cannot be assigned to.
	ErrBadTarget

	// ErrBadParams indicates a malformed parameter list.
	ErrBadParams

	// ErrBadPattern indicates a malformed match-case pattern.
	ErrBadPattern

	// ErrBadDecorator indicates a decorator over a non-definition.
	ErrBadDecorator
)

// Builtin concepts appearing in expressions resolve to canonical
// identifier names, keeping the tree language-agnostic.
var builtinNames = map[concept.Concept]string{
	concept.Print:   "print",
	concept.Input:   "input",
	concept.TypeInt: "int",
	concept.TypeStr: "str",
}

// Parse consumes a token stream produced by the lexer (and usually the
// normalizer) and returns the program tree. Comment tokens are ignored.
func Parse(tokens []lexer.Token, sourceLanguage string) (*ast.Program, error) {
	kept := make([]lexer.Token, 0, len(tokens))
	for _, tok := range tokens {
		if tok.Kind() != lexer.Comment {
			kept = append(kept, tok)
		}
	}
	p := &parser{tokens: kept, language: sourceLanguage}
	return p.parseProgram()
}

type parser struct {
	tokens   []lexer.Token
	pos      int
	language string
}

func (p *parser) cur() lexer.Token {
	if p.pos < len(p.tokens) {
		return p.tokens[p.pos]
	}
	return lexer.Token{}
}

func (p *parser) peek(n int) lexer.Token {
	if p.pos+n < len(p.tokens) {
		return p.tokens[p.pos+n]
	}
	return lexer.Token{}
}

func (p *parser) advance() lexer.Token {
	tok := p.cur()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *parser) at(kind lexer.Kind) bool {
	return p.cur().Kind() == kind
}

func (p *parser) atOperator(text string) bool {
	tok := p.cur()
	return tok.Kind() == lexer.Operator && tok.Text() == text
}

func (p *parser) atDelimiter(text string) bool {
	tok := p.cur()
	return tok.Kind() == lexer.Delimiter && tok.Text() == text
}

func (p *parser) atConcept(c concept.Concept) bool {
	return p.cur().IsConcept(c)
}

func (p *parser) eatOperator(text string) bool {
	if p.atOperator(text) {
		p.pos++
		return true
	}
	return false
}

func (p *parser) eatDelimiter(text string) bool {
	if p.atDelimiter(text) {
		p.pos++
		return true
	}
	return false
}

func (p *parser) eatConcept(c concept.Concept) bool {
	if p.atConcept(c) {
		p.pos++
		return true
	}
	return false
}

func (p *parser) expectDelimiter(text string) error {
	if !p.eatDelimiter(text) {
		return p.unexpected(fmt.Sprintf("%q", text))
	}
	return nil
}

func (p *parser) expectConcept(c concept.Concept) error {
	if !p.eatConcept(c) {
		return p.unexpected(c.String() + " keyword")
	}
	return nil
}

func (p *parser) expectIdent() (lexer.Token, error) {
	if !p.at(lexer.Identifier) {
		return lexer.Token{}, p.unexpected("identifier")
	}
	return p.advance(), nil
}

func (p *parser) unexpected(what string) error {
	tok := p.cur()
	found := tok.Kind().String()
	if tok.Text() != "" {
		found = fmt.Sprintf("%s %q", found, tok.Text())
	}
	return unilang.FormatErrorPos(tok, ErrUnexpectedToken, "SYN_UNEXPECTED",
		"expecting %s, found %s", what, found)
}

func base(tok lexer.Token) ast.Base {
	return ast.Base{Line: tok.Line(), Col: tok.Col()}
}

func (p *parser) skipNewlines() {
	for p.at(lexer.Newline) {
		p.pos++
	}
}

func (p *parser) parseProgram() (*ast.Program, error) {
	prog := &ast.Program{Base: base(p.cur())}
	p.skipNewlines()
	for !p.at(lexer.EOF) {
		stmts, e := p.parseLine()
		if e != nil {
			return nil, e
		}
		prog.Body = append(prog.Body, stmts...)
		p.skipNewlines()
	}
	return prog, nil
}

// parseLine parses either one compound statement or a run of simple
// statements separated by ";" up to the end of the logical line.
func (p *parser) parseLine() ([]ast.Stmt, error) {
	if p.atCompoundStart() {
		s, e := p.parseCompound()
		if e != nil {
			return nil, e
		}
		return []ast.Stmt{s}, nil
	}
	return p.parseSimpleLine()
}

func (p *parser) atCompoundStart() bool {
	tok := p.cur()
	if tok.Kind() == lexer.Delimiter && tok.Text() == "@" {
		return true
	}
	if tok.Kind() != lexer.Keyword {
		return false
	}
	switch tok.Concept() {
	case concept.CondIf, concept.LoopWhile, concept.LoopFor, concept.FuncDef,
		concept.ClassDef, concept.Try, concept.With, concept.Match, concept.Async:
		return true
	}
	return false
}

func (p *parser) parseSimpleLine() ([]ast.Stmt, error) {
	var stmts []ast.Stmt
	for {
		s, e := p.parseSimple()
		if e != nil {
			return nil, e
		}
		stmts = append(stmts, s)
		if !p.eatDelimiter(";") {
			break
		}
		if p.at(lexer.Newline) || p.at(lexer.EOF) || p.at(lexer.Dedent) {
			break
		}
	}
	if p.at(lexer.Dedent) || p.at(lexer.EOF) {
		return stmts, nil
	}
	if !p.at(lexer.Newline) {
		return nil, p.unexpected("end of statement")
	}
	p.pos++
	return stmts, nil
}

// parseSimple parses one simple statement. The concept switch is
// complete over the closed set: concepts that cannot start a statement
// fail with a syntax error, and a concept missing here entirely is an
// internal error.
func (p *parser) parseSimple() (ast.Stmt, error) {
	tok := p.cur()
	if tok.Kind() != lexer.Keyword {
		return p.parseExprStatement()
	}
	switch tok.Concept() {
	case concept.Let, concept.Const:
		return p.parseVarDecl()
	case concept.Return:
		return p.parseReturn()
	case concept.Pass:
		p.pos++
		return &ast.Pass{Base: base(tok)}, nil
	case concept.LoopBreak:
		p.pos++
		return &ast.Break{Base: base(tok)}, nil
	case concept.LoopContinue:
		p.pos++
		return &ast.Continue{Base: base(tok)}, nil
	case concept.Raise:
		return p.parseRaise()
	case concept.Del:
		return p.parseDelete()
	case concept.Assert:
		return p.parseAssert()
	case concept.Global, concept.Local:
		return p.parseScopeDecl()
	case concept.Import:
		return p.parseImport()
	case concept.From:
		return p.parseFromImport()
	case concept.Yield, concept.Await, concept.Lambda, concept.Not,
		concept.True, concept.False, concept.None,
		concept.Print, concept.Input, concept.TypeInt, concept.TypeStr:
		return p.parseExprStatement()
	case concept.CondIf, concept.LoopWhile, concept.LoopFor, concept.FuncDef,
		concept.ClassDef, concept.Try, concept.With, concept.Match, concept.Async:
		// unreachable: parseLine routes these to parseCompound
		return nil, p.unexpected("simple statement")
	case concept.CondElif, concept.CondElse, concept.In, concept.Except,
		concept.Finally, concept.Case, concept.Default, concept.As,
		concept.And, concept.Or, concept.Is:
		return nil, p.unexpected("statement")
	}
	panic(fmt.Sprintf("unilang/parser: internal error: unhandled concept %s in statement position",
		tok.Concept()))
}

func (p *parser) parseVarDecl() (ast.Stmt, error) {
	tok := p.advance()
	isConst := tok.Concept() == concept.Const
	name, e := p.expectIdent()
	if e != nil {
		return nil, e
	}
	decl := &ast.VarDecl{Base: base(tok), Const: isConst, Name: name.Text()}
	if p.eatDelimiter(":") {
		decl.Annotation, e = p.parseTest()
		if e != nil {
			return nil, e
		}
	}
	if p.eatOperator("=") {
		decl.Value, e = p.parseTestListAsTuple()
		if e != nil {
			return nil, e
		}
	} else if isConst {
		return nil, p.unexpected("\"=\" (const requires a value)")
	}
	return decl, nil
}

func (p *parser) parseReturn() (ast.Stmt, error) {
	tok := p.advance()
	ret := &ast.Return{Base: base(tok)}
	if !p.atLineEnd() {
		var e error
		ret.Value, e = p.parseTestListAsTuple()
		if e != nil {
			return nil, e
		}
	}
	return ret, nil
}

func (p *parser) parseRaise() (ast.Stmt, error) {
	tok := p.advance()
	r := &ast.Raise{Base: base(tok)}
	if p.atLineEnd() {
		return r, nil
	}
	var e error
	r.Exc, e = p.parseTest()
	if e != nil {
		return nil, e
	}
	if p.eatConcept(concept.From) {
		r.From, e = p.parseTest()
		if e != nil {
			return nil, e
		}
	}
	return r, nil
}

func (p *parser) parseDelete() (ast.Stmt, error) {
	tok := p.advance()
	d := &ast.Delete{Base: base(tok)}
	for {
		t, e := p.parsePostfix()
		if e != nil {
			return nil, e
		}
		if e = p.checkTarget(t); e != nil {
			return nil, e
		}
		d.Targets = append(d.Targets, t)
		if !p.eatDelimiter(",") {
			return d, nil
		}
	}
}

func (p *parser) parseAssert() (ast.Stmt, error) {
	tok := p.advance()
	a := &ast.Assert{Base: base(tok)}
	var e error
	a.Cond, e = p.parseTest()
	if e != nil {
		return nil, e
	}
	if p.eatDelimiter(",") {
		a.Msg, e = p.parseTest()
		if e != nil {
			return nil, e
		}
	}
	return a, nil
}

func (p *parser) parseScopeDecl() (ast.Stmt, error) {
	tok := p.advance()
	var names []string
	for {
		name, e := p.expectIdent()
		if e != nil {
			return nil, e
		}
		names = append(names, name.Text())
		if !p.eatDelimiter(",") {
			break
		}
	}
	if tok.Concept() == concept.Global {
		return &ast.Global{Base: base(tok), Names: names}, nil
	}
	return &ast.Local{Base: base(tok), Names: names}, nil
}

func (p *parser) parseDottedName() (string, error) {
	name, e := p.expectIdent()
	if e != nil {
		return "", e
	}
	path := name.Text()
	for p.eatDelimiter(".") {
		name, e = p.expectIdent()
		if e != nil {
			return "", e
		}
		path += "." + name.Text()
	}
	return path, nil
}

func (p *parser) parseImportItem() (ast.ImportItem, error) {
	path, e := p.parseDottedName()
	if e != nil {
		return ast.ImportItem{}, e
	}
	item := ast.ImportItem{Path: path}
	if p.eatConcept(concept.As) {
		alias, e := p.expectIdent()
		if e != nil {
			return ast.ImportItem{}, e
		}
		item.Alias = alias.Text()
	}
	return item, nil
}

func (p *parser) parseImport() (ast.Stmt, error) {
	tok := p.advance()
	imp := &ast.Import{Base: base(tok)}
	for {
		item, e := p.parseImportItem()
		if e != nil {
			return nil, e
		}
		imp.Items = append(imp.Items, item)
		if !p.eatDelimiter(",") {
			return imp, nil
		}
	}
}

func (p *parser) parseFromImport() (ast.Stmt, error) {
	tok := p.advance()
	module, e := p.parseDottedName()
	if e != nil {
		return nil, e
	}
	if e = p.expectConcept(concept.Import); e != nil {
		return nil, e
	}
	imp := &ast.FromImport{Base: base(tok), Module: module}
	if p.eatOperator("*") {
		imp.Wildcard = true
		return imp, nil
	}
	for {
		item, e := p.parseImportItem()
		if e != nil {
			return nil, e
		}
		imp.Items = append(imp.Items, item)
		if !p.eatDelimiter(",") {
			return imp, nil
		}
	}
}

func (p *parser) atLineEnd() bool {
	switch p.cur().Kind() {
	case lexer.Newline, lexer.EOF, lexer.Dedent:
		return true
	case lexer.Delimiter:
		return p.cur().Text() == ";"
	}
	return false
}

// parseExprStatement parses an expression and the assignment forms
// growing out of it.
func (p *parser) parseExprStatement() (ast.Stmt, error) {
	tok := p.cur()
	expr, e := p.parseTestListAsTuple()
	if e != nil {
		return nil, e
	}

	if p.atDelimiter(":") {
		return p.parseAnnAssign(tok, expr)
	}
	if op, found := p.augmentedOp(); found {
		p.pos++
		if e = p.checkSingleTarget(expr); e != nil {
			return nil, e
		}
		value, e := p.parseTestListAsTuple()
		if e != nil {
			return nil, e
		}
		return &ast.AugAssign{Base: base(tok), Target: expr, Op: op, Value: value}, nil
	}
	if p.atOperator("=") {
		return p.parseAssign(tok, expr)
	}
	return &ast.ExprStmt{Base: base(tok), Value: expr}, nil
}

func (p *parser) parseAnnAssign(tok lexer.Token, target ast.Expr) (ast.Stmt, error) {
	if e := p.checkSingleTarget(target); e != nil {
		return nil, e
	}
	p.pos++ // ":"
	ann, e := p.parseTest()
	if e != nil {
		return nil, e
	}
	stmt := &ast.AnnAssign{Base: base(tok), Target: target, Annotation: ann}
	if p.eatOperator("=") {
		stmt.Value, e = p.parseTestListAsTuple()
		if e != nil {
			return nil, e
		}
	}
	return stmt, nil
}

func (p *parser) parseAssign(tok lexer.Token, first ast.Expr) (ast.Stmt, error) {
	exprs := []ast.Expr{first}
	for p.eatOperator("=") {
		next, e := p.parseTestListAsTuple()
		if e != nil {
			return nil, e
		}
		exprs = append(exprs, next)
	}
	value := exprs[len(exprs)-1]
	targets := exprs[:len(exprs)-1]
	for _, t := range targets {
		if e := p.checkTarget(t); e != nil {
			return nil, e
		}
	}
	return &ast.Assign{Base: base(tok), Targets: targets, Value: value}, nil
}

var augmentedOps = map[string]string{
	"+=": "+", "-=": "-", "*=": "*", "/=": "/", "%=": "%",
	"**=": "**", "//=": "//", "<<=": "<<", ">>=": ">>",
	"&=": "&", "|=": "|", "^=": "^",
}

func (p *parser) augmentedOp() (string, bool) {
	tok := p.cur()
	if tok.Kind() != lexer.Operator {
		return "", false
	}
	op, found := augmentedOps[tok.Text()]
	return op, found
}

// checkTarget verifies that an expression may be assigned to.
func (p *parser) checkTarget(e ast.Expr) error {
	switch t := e.(type) {
	case *ast.Ident, *ast.Attribute, *ast.Index:
		return nil
	case *ast.Starred:
		return p.checkTarget(t.Value)
	case *ast.TupleLit:
		for _, item := range t.Items {
			if err := p.checkTarget(item); err != nil {
				return err
			}
		}
		return nil
	case *ast.ListLit:
		for _, item := range t.Items {
			if err := p.checkTarget(item); err != nil {
				return err
			}
		}
		return nil
	}
	line, col := e.Pos()
	return unilang.NewError(ErrBadTarget, "SYN_BAD_TARGET",
		"cannot assign to this expression", "", line, col)
}

// checkSingleTarget is checkTarget without tuple/starred forms.
func (p *parser) checkSingleTarget(e ast.Expr) error {
	switch e.(type) {
	case *ast.Ident, *ast.Attribute, *ast.Index:
		return nil
	}
	line, col := e.Pos()
	return unilang.NewError(ErrBadTarget, "SYN_BAD_TARGET",
		"cannot assign to this expression", "", line, col)
}

// --- compound statements ---

func (p *parser) parseCompound() (ast.Stmt, error) {
	tok := p.cur()
	if p.atDelimiter("@") {
		return p.parseDecorated()
	}
	switch tok.Concept() {
	case concept.CondIf:
		return p.parseIf()
	case concept.LoopWhile:
		return p.parseWhile()
	case concept.LoopFor:
		return p.parseFor(false, tok)
	case concept.FuncDef:
		return p.parseFuncDef(false, nil, tok)
	case concept.ClassDef:
		return p.parseClassDef(nil, tok)
	case concept.Try:
		return p.parseTry()
	case concept.With:
		return p.parseWith(false, tok)
	case concept.Match:
		return p.parseMatch()
	case concept.Async:
		return p.parseAsync(nil)
	}
	panic(fmt.Sprintf("unilang/parser: internal error: unhandled compound concept %s",
		tok.Concept()))
}

// parseSuite parses ": NEWLINE INDENT ... DEDENT" or a single-line
// suite after ":".
func (p *parser) parseSuite() ([]ast.Stmt, error) {
	if e := p.expectDelimiter(":"); e != nil {
		return nil, e
	}
	if !p.at(lexer.Newline) {
		return p.parseSimpleLine()
	}
	p.skipNewlines()
	if !p.at(lexer.Indent) {
		return nil, p.unexpected("indented block")
	}
	p.pos++
	var body []ast.Stmt
	for {
		p.skipNewlines()
		if p.at(lexer.Dedent) {
			p.pos++
			return body, nil
		}
		if p.at(lexer.EOF) {
			return nil, p.unexpected("dedent")
		}
		stmts, e := p.parseLine()
		if e != nil {
			return nil, e
		}
		body = append(body, stmts...)
	}
}

func (p *parser) parseIf() (ast.Stmt, error) {
	return p.parseIfChain(p.advance())
}

// parseIfChain parses the condition and suites after a consumed
// COND_IF or COND_ELIF keyword; elif clauses nest into Else.
func (p *parser) parseIfChain(tok lexer.Token) (ast.Stmt, error) {
	cond, e := p.parseNamedTest()
	if e != nil {
		return nil, e
	}
	body, e := p.parseSuite()
	if e != nil {
		return nil, e
	}
	stmt := &ast.If{Base: base(tok), Cond: cond, Body: body}
	switch {
	case p.atConcept(concept.CondElif):
		nested, e := p.parseIfChain(p.advance())
		if e != nil {
			return nil, e
		}
		stmt.Else = []ast.Stmt{nested}
	case p.eatConcept(concept.CondElse):
		stmt.Else, e = p.parseSuite()
		if e != nil {
			return nil, e
		}
	}
	return stmt, nil
}

func (p *parser) parseWhile() (ast.Stmt, error) {
	tok := p.advance()
	cond, e := p.parseNamedTest()
	if e != nil {
		return nil, e
	}
	body, e := p.parseSuite()
	if e != nil {
		return nil, e
	}
	stmt := &ast.While{Base: base(tok), Cond: cond, Body: body}
	if p.eatConcept(concept.CondElse) {
		stmt.Else, e = p.parseSuite()
		if e != nil {
			return nil, e
		}
	}
	return stmt, nil
}

func (p *parser) parseFor(async bool, at lexer.Token) (ast.Stmt, error) {
	p.pos++ // LOOP_FOR
	target, e := p.parseTargetList()
	if e != nil {
		return nil, e
	}
	if e = p.expectConcept(concept.In); e != nil {
		return nil, e
	}
	iter, e := p.parseTestListAsTuple()
	if e != nil {
		return nil, e
	}
	body, e := p.parseSuite()
	if e != nil {
		return nil, e
	}
	stmt := &ast.For{Base: base(at), Target: target, Iter: iter, Body: body, Async: async}
	if p.eatConcept(concept.CondElse) {
		stmt.Else, e = p.parseSuite()
		if e != nil {
			return nil, e
		}
	}
	return stmt, nil
}

// parseTargetList parses one or more comma separated targets; more
// than one folds into a tuple target.
func (p *parser) parseTargetList() (ast.Expr, error) {
	first := p.cur()
	var items []ast.Expr
	for {
		var t ast.Expr
		var e error
		if p.atOperator("*") {
			star := p.advance()
			inner, e := p.parsePostfix()
			if e != nil {
				return nil, e
			}
			t = &ast.Starred{Base: base(star), Value: inner}
		} else {
			t, e = p.parsePostfix()
			if e != nil {
				return nil, e
			}
		}
		if e = p.checkTarget(t); e != nil {
			return nil, e
		}
		items = append(items, t)
		if !p.eatDelimiter(",") {
			break
		}
	}
	if len(items) == 1 {
		return items[0], nil
	}
	return &ast.TupleLit{Base: base(first), Items: items}, nil
}

func (p *parser) parseFuncDef(async bool, decorators []ast.Expr, at lexer.Token) (ast.Stmt, error) {
	p.pos++ // FUNC_DEF
	name, e := p.expectIdent()
	if e != nil {
		return nil, e
	}
	if e = p.expectDelimiter("("); e != nil {
		return nil, e
	}
	params, e := p.parseParams()
	if e != nil {
		return nil, e
	}
	fn := &ast.FuncDef{
		Base: base(at), Name: name.Text(), Params: params,
		Decorators: decorators, Async: async,
	}
	if p.eatOperator("->") {
		fn.Returns, e = p.parseTest()
		if e != nil {
			return nil, e
		}
	}
	fn.Body, e = p.parseSuite()
	if e != nil {
		return nil, e
	}
	return fn, nil
}

func (p *parser) parseParams() ([]ast.Param, error) {
	var params []ast.Param
	seenStar, seenDoubleStar := false, false
	for !p.atDelimiter(")") {
		var param ast.Param
		switch {
		case p.atOperator("**"):
			p.pos++
			name, e := p.expectIdent()
			if e != nil {
				return nil, e
			}
			param = ast.Param{Name: name.Text(), Kind: ast.ParamDoubleStar}
			seenDoubleStar = true
		case p.atOperator("*"):
			star := p.advance()
			if seenStar {
				return nil, unilang.FormatErrorPos(star, ErrBadParams, "SYN_BAD_PARAMS",
					"only one \"*\" is allowed in a parameter list")
			}
			seenStar = true
			if p.at(lexer.Identifier) {
				name := p.advance()
				param = ast.Param{Name: name.Text(), Kind: ast.ParamStar}
			} else {
				param = ast.Param{Kind: ast.ParamStarMark}
			}
		case p.atOperator("/"):
			p.pos++
			param = ast.Param{Kind: ast.ParamSlashMark}
		default:
			if seenDoubleStar {
				return nil, p.unexpected("\")\" (no parameters after \"**\")")
			}
			name, e := p.expectIdent()
			if e != nil {
				return nil, e
			}
			param = ast.Param{Name: name.Text(), Kind: ast.ParamPlain}
			if p.eatDelimiter(":") {
				param.Annotation, e = p.parseTest()
				if e != nil {
					return nil, e
				}
			}
			if p.eatOperator("=") {
				param.Default, e = p.parseTest()
				if e != nil {
					return nil, e
				}
			}
		}
		params = append(params, param)
		if !p.eatDelimiter(",") {
			break
		}
	}
	if e := p.expectDelimiter(")"); e != nil {
		return nil, e
	}
	return params, nil
}

func (p *parser) parseClassDef(decorators []ast.Expr, at lexer.Token) (ast.Stmt, error) {
	p.pos++ // CLASS_DEF
	name, e := p.expectIdent()
	if e != nil {
		return nil, e
	}
	cls := &ast.ClassDef{Base: base(at), Name: name.Text(), Decorators: decorators}
	if p.eatDelimiter("(") {
		for !p.atDelimiter(")") {
			if p.at(lexer.Identifier) && p.peek(1).Kind() == lexer.Operator && p.peek(1).Text() == "=" {
				kw := p.advance()
				p.pos++ // "="
				value, e := p.parseTest()
				if e != nil {
					return nil, e
				}
				cls.Keywords = append(cls.Keywords, ast.Arg{Name: kw.Text(), Value: value})
			} else {
				b, e := p.parseTest()
				if e != nil {
					return nil, e
				}
				cls.Bases = append(cls.Bases, b)
			}
			if !p.eatDelimiter(",") {
				break
			}
		}
		if e = p.expectDelimiter(")"); e != nil {
			return nil, e
		}
	}
	cls.Body, e = p.parseSuite()
	if e != nil {
		return nil, e
	}
	return cls, nil
}

func (p *parser) parseTry() (ast.Stmt, error) {
	tok := p.advance()
	body, e := p.parseSuite()
	if e != nil {
		return nil, e
	}
	stmt := &ast.Try{Base: base(tok), Body: body}
	for p.atConcept(concept.Except) {
		hTok := p.advance()
		h := ast.Handler{Base: base(hTok)}
		if !p.atDelimiter(":") {
			h.Type, e = p.parseTest()
			if e != nil {
				return nil, e
			}
			if p.eatConcept(concept.As) {
				name, e := p.expectIdent()
				if e != nil {
					return nil, e
				}
				h.Name = name.Text()
			}
		}
		h.Body, e = p.parseSuite()
		if e != nil {
			return nil, e
		}
		stmt.Handlers = append(stmt.Handlers, h)
	}
	if len(stmt.Handlers) > 0 && p.eatConcept(concept.CondElse) {
		stmt.Else, e = p.parseSuite()
		if e != nil {
			return nil, e
		}
	}
	if p.eatConcept(concept.Finally) {
		stmt.Finally, e = p.parseSuite()
		if e != nil {
			return nil, e
		}
	}
	if len(stmt.Handlers) == 0 && len(stmt.Finally) == 0 {
		return nil, p.unexpected("EXCEPT or FINALLY clause")
	}
	return stmt, nil
}

func (p *parser) parseWith(async bool, at lexer.Token) (ast.Stmt, error) {
	p.pos++ // WITH
	stmt := &ast.With{Base: base(at), Async: async}
	for {
		ctx, e := p.parseTest()
		if e != nil {
			return nil, e
		}
		item := ast.WithItem{Context: ctx}
		if p.eatConcept(concept.As) {
			target, e := p.parsePostfix()
			if e != nil {
				return nil, e
			}
			if e = p.checkTarget(target); e != nil {
				return nil, e
			}
			item.Target = target
		}
		stmt.Items = append(stmt.Items, item)
		if !p.eatDelimiter(",") {
			break
		}
	}
	var e error
	stmt.Body, e = p.parseSuite()
	if e != nil {
		return nil, e
	}
	return stmt, nil
}

func (p *parser) parseDecorated() (ast.Stmt, error) {
	var decorators []ast.Expr
	for p.eatDelimiter("@") {
		d, e := p.parsePostfix()
		if e != nil {
			return nil, e
		}
		decorators = append(decorators, d)
		if !p.at(lexer.Newline) {
			return nil, p.unexpected("end of decorator line")
		}
		p.skipNewlines()
	}
	tok := p.cur()
	switch {
	case p.atConcept(concept.FuncDef):
		return p.parseFuncDef(false, decorators, tok)
	case p.atConcept(concept.ClassDef):
		return p.parseClassDef(decorators, tok)
	case p.atConcept(concept.Async):
		return p.parseAsync(decorators)
	}
	return nil, unilang.FormatErrorPos(tok, ErrBadDecorator, "SYN_BAD_DECORATOR",
		"decorators must be followed by a function or class definition")
}

func (p *parser) parseAsync(decorators []ast.Expr) (ast.Stmt, error) {
	tok := p.advance() // ASYNC
	switch {
	case p.atConcept(concept.FuncDef):
		return p.parseFuncDef(true, decorators, tok)
	case p.atConcept(concept.LoopFor) && decorators == nil:
		return p.parseFor(true, tok)
	case p.atConcept(concept.With) && decorators == nil:
		return p.parseWith(true, tok)
	}
	return nil, p.unexpected("FUNC_DEF, LOOP_FOR or WITH after ASYNC")
}
