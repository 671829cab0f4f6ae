package parser

import (
	"github.com/unilang-dev/unilang/ast"
	"github.com/unilang-dev/unilang/concept"
	"github.com/unilang-dev/unilang/lexer"
)

// parseNamedTest parses a test allowing a top-level walrus binding.
func (p *parser) parseNamedTest() (ast.Expr, error) {
	if p.at(lexer.Identifier) && p.peek(1).Kind() == lexer.Operator && p.peek(1).Text() == ":=" {
		id := p.advance()
		p.pos++ // ":="
		value, e := p.parseTest()
		if e != nil {
			return nil, e
		}
		return &ast.Named{
			Base:   base(id),
			Target: &ast.Ident{Base: base(id), Name: id.Text()},
			Value:  value,
		}, nil
	}
	return p.parseTest()
}

// parseTest is the top expression level: lambda, yield, or a
// conditional over an or-test.
func (p *parser) parseTest() (ast.Expr, error) {
	if p.atConcept(concept.Lambda) {
		return p.parseLambda()
	}
	if p.atConcept(concept.Yield) {
		return p.parseYield()
	}
	e, err := p.parseOrTest()
	if err != nil {
		return nil, err
	}
	if !p.atConcept(concept.CondIf) {
		return e, nil
	}
	tok := p.advance()
	cond, err := p.parseOrTest()
	if err != nil {
		return nil, err
	}
	if err = p.expectConcept(concept.CondElse); err != nil {
		return nil, err
	}
	other, err := p.parseTest()
	if err != nil {
		return nil, err
	}
	return &ast.Conditional{Base: base(tok), Cond: cond, Then: e, Else: other}, nil
}

// parseTestListAsTuple parses "test (, test)*"; two or more items, or
// a trailing comma, fold into a tuple.
func (p *parser) parseTestListAsTuple() (ast.Expr, error) {
	first := p.cur()
	item, e := p.parseStarTest()
	if e != nil {
		return nil, e
	}
	if !p.atDelimiter(",") {
		return item, nil
	}
	items := []ast.Expr{item}
	for p.eatDelimiter(",") {
		if !p.atExprStart() {
			break
		}
		next, e := p.parseStarTest()
		if e != nil {
			return nil, e
		}
		items = append(items, next)
	}
	return &ast.TupleLit{Base: base(first), Items: items}, nil
}

func (p *parser) parseStarTest() (ast.Expr, error) {
	if p.atOperator("*") {
		star := p.advance()
		value, e := p.parseOrTest()
		if e != nil {
			return nil, e
		}
		return &ast.Starred{Base: base(star), Value: value}, nil
	}
	return p.parseTest()
}

func (p *parser) atExprStart() bool {
	tok := p.cur()
	switch tok.Kind() {
	case lexer.Identifier, lexer.Number, lexer.String, lexer.FString, lexer.Date:
		return true
	case lexer.Operator:
		switch tok.Text() {
		case "+", "-", "~", "*", "**":
			return true
		}
	case lexer.Delimiter:
		switch tok.Text() {
		case "(", "[", "{":
			return true
		}
	case lexer.Keyword:
		switch tok.Concept() {
		case concept.True, concept.False, concept.None, concept.Not,
			concept.Lambda, concept.Await, concept.Yield,
			concept.Print, concept.Input, concept.TypeInt, concept.TypeStr:
			return true
		}
	}
	return false
}

func (p *parser) parseOrTest() (ast.Expr, error) {
	first, e := p.parseAndTest()
	if e != nil {
		return nil, e
	}
	if !p.atConcept(concept.Or) {
		return first, nil
	}
	node := &ast.BoolOp{Base: base(p.cur()), Op: "or", Values: []ast.Expr{first}}
	for p.eatConcept(concept.Or) {
		next, e := p.parseAndTest()
		if e != nil {
			return nil, e
		}
		node.Values = append(node.Values, next)
	}
	return node, nil
}

func (p *parser) parseAndTest() (ast.Expr, error) {
	first, e := p.parseNotTest()
	if e != nil {
		return nil, e
	}
	if !p.atConcept(concept.And) {
		return first, nil
	}
	node := &ast.BoolOp{Base: base(p.cur()), Op: "and", Values: []ast.Expr{first}}
	for p.eatConcept(concept.And) {
		next, e := p.parseNotTest()
		if e != nil {
			return nil, e
		}
		node.Values = append(node.Values, next)
	}
	return node, nil
}

func (p *parser) parseNotTest() (ast.Expr, error) {
	if p.atConcept(concept.Not) {
		tok := p.advance()
		operand, e := p.parseNotTest()
		if e != nil {
			return nil, e
		}
		return &ast.Unary{Base: base(tok), Op: "not", Operand: operand}, nil
	}
	return p.parseComparison()
}

// comparisonOp recognizes the operator at the cursor, including the
// two-keyword forms, and consumes it.
func (p *parser) comparisonOp() (string, bool) {
	tok := p.cur()
	if tok.Kind() == lexer.Operator {
		switch tok.Text() {
		case "<", "<=", ">", ">=", "==", "!=":
			p.pos++
			return tok.Text(), true
		}
		return "", false
	}
	switch {
	case tok.IsConcept(concept.In):
		p.pos++
		return "in", true
	case tok.IsConcept(concept.Not) && p.peek(1).IsConcept(concept.In):
		p.pos += 2
		return "not in", true
	case tok.IsConcept(concept.Is):
		p.pos++
		if p.eatConcept(concept.Not) {
			return "is not", true
		}
		return "is", true
	}
	return "", false
}

func (p *parser) parseComparison() (ast.Expr, error) {
	left, e := p.parseBitOr()
	if e != nil {
		return nil, e
	}
	tok := p.cur()
	op, found := p.comparisonOp()
	if !found {
		return left, nil
	}
	cmp := &ast.Compare{Base: base(tok), Left: left}
	for {
		right, e := p.parseBitOr()
		if e != nil {
			return nil, e
		}
		cmp.Ops = append(cmp.Ops, op)
		cmp.Rights = append(cmp.Rights, right)
		op, found = p.comparisonOp()
		if !found {
			return cmp, nil
		}
	}
}

func (p *parser) parseBinaryLevel(ops []string, next func() (ast.Expr, error)) (ast.Expr, error) {
	left, e := next()
	if e != nil {
		return nil, e
	}
	for {
		tok := p.cur()
		if tok.Kind() != lexer.Operator {
			return left, nil
		}
		matched := false
		for _, op := range ops {
			if tok.Text() == op {
				matched = true
				break
			}
		}
		if !matched {
			return left, nil
		}
		p.pos++
		right, e := next()
		if e != nil {
			return nil, e
		}
		left = &ast.Binary{Base: base(tok), Op: tok.Text(), Left: left, Right: right}
	}
}

func (p *parser) parseBitOr() (ast.Expr, error) {
	return p.parseBinaryLevel([]string{"|"}, p.parseBitXor)
}

func (p *parser) parseBitXor() (ast.Expr, error) {
	return p.parseBinaryLevel([]string{"^"}, p.parseBitAnd)
}

func (p *parser) parseBitAnd() (ast.Expr, error) {
	return p.parseBinaryLevel([]string{"&"}, p.parseShift)
}

func (p *parser) parseShift() (ast.Expr, error) {
	return p.parseBinaryLevel([]string{"<<", ">>"}, p.parseArith)
}

func (p *parser) parseArith() (ast.Expr, error) {
	return p.parseBinaryLevel([]string{"+", "-"}, p.parseTerm)
}

func (p *parser) parseTerm() (ast.Expr, error) {
	return p.parseBinaryLevel([]string{"*", "/", "//", "%"}, p.parseFactor)
}

func (p *parser) parseFactor() (ast.Expr, error) {
	tok := p.cur()
	if tok.Kind() == lexer.Operator {
		switch tok.Text() {
		case "+", "-", "~":
			p.pos++
			operand, e := p.parseFactor()
			if e != nil {
				return nil, e
			}
			return &ast.Unary{Base: base(tok), Op: tok.Text(), Operand: operand}, nil
		}
	}
	return p.parsePower()
}

// parsePower binds "**" right-associatively, tighter than unary on
// the left operand.
func (p *parser) parsePower() (ast.Expr, error) {
	left, e := p.parseAwaitPrimary()
	if e != nil {
		return nil, e
	}
	if !p.atOperator("**") {
		return left, nil
	}
	tok := p.advance()
	right, e := p.parseFactor()
	if e != nil {
		return nil, e
	}
	return &ast.Binary{Base: base(tok), Op: "**", Left: left, Right: right}, nil
}

func (p *parser) parseAwaitPrimary() (ast.Expr, error) {
	if p.atConcept(concept.Await) {
		tok := p.advance()
		value, e := p.parseAwaitPrimary()
		if e != nil {
			return nil, e
		}
		return &ast.AwaitExpr{Base: base(tok), Value: value}, nil
	}
	return p.parsePostfix()
}

// parsePostfix parses an atom followed by call, subscript, and
// attribute suffixes. It is also the entry point for assignment and
// decorator targets.
func (p *parser) parsePostfix() (ast.Expr, error) {
	e, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.cur()
		switch {
		case p.atDelimiter("("):
			e, err = p.parseCall(e, tok)
		case p.atDelimiter("["):
			e, err = p.parseSubscript(e, tok)
		case p.atDelimiter("."):
			p.pos++
			name, nameErr := p.expectIdent()
			if nameErr != nil {
				return nil, nameErr
			}
			e = &ast.Attribute{Base: base(tok), Value: e, Name: name.Text()}
		default:
			return e, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

func (p *parser) parseCall(fn ast.Expr, at lexer.Token) (ast.Expr, error) {
	p.pos++ // "("
	call := &ast.Call{Base: base(at), Func: fn}
	if p.eatDelimiter(")") {
		return call, nil
	}
	for {
		arg, e := p.parseArg()
		if e != nil {
			return nil, e
		}
		if len(call.Args) == 0 && arg.Unpack == "" && arg.Name == "" && p.atCompClauseStart() {
			clauses, e := p.parseCompClauses()
			if e != nil {
				return nil, e
			}
			gen := &ast.GenExp{Base: base(at), Elt: arg.Value, Clauses: clauses}
			call.Args = append(call.Args, ast.Arg{Value: gen})
			break
		}
		call.Args = append(call.Args, arg)
		if !p.eatDelimiter(",") {
			break
		}
		if p.atDelimiter(")") {
			break
		}
	}
	if e := p.expectDelimiter(")"); e != nil {
		return nil, e
	}
	return call, nil
}

func (p *parser) parseArg() (ast.Arg, error) {
	switch {
	case p.atOperator("**"):
		p.pos++
		value, e := p.parseTest()
		if e != nil {
			return ast.Arg{}, e
		}
		return ast.Arg{Unpack: "**", Value: value}, nil
	case p.atOperator("*"):
		p.pos++
		value, e := p.parseTest()
		if e != nil {
			return ast.Arg{}, e
		}
		return ast.Arg{Unpack: "*", Value: value}, nil
	case p.at(lexer.Identifier) && p.peek(1).Kind() == lexer.Operator && p.peek(1).Text() == "=":
		name := p.advance()
		p.pos++ // "="
		value, e := p.parseTest()
		if e != nil {
			return ast.Arg{}, e
		}
		return ast.Arg{Name: name.Text(), Value: value}, nil
	}
	value, e := p.parseNamedTest()
	if e != nil {
		return ast.Arg{}, e
	}
	return ast.Arg{Value: value}, nil
}

func (p *parser) parseSubscript(value ast.Expr, at lexer.Token) (ast.Expr, error) {
	p.pos++ // "["
	var start ast.Expr
	var e error
	if !p.atDelimiter(":") {
		start, e = p.parseTest()
		if e != nil {
			return nil, e
		}
	}
	sub := start
	if p.eatDelimiter(":") {
		slice := &ast.SliceExpr{Base: base(at), Start: start}
		if !p.atDelimiter(":") && !p.atDelimiter("]") {
			slice.Stop, e = p.parseTest()
			if e != nil {
				return nil, e
			}
		}
		if p.eatDelimiter(":") && !p.atDelimiter("]") {
			slice.Step, e = p.parseTest()
			if e != nil {
				return nil, e
			}
		}
		sub = slice
	}
	if e = p.expectDelimiter("]"); e != nil {
		return nil, e
	}
	return &ast.Index{Base: base(at), Value: value, Sub: sub}, nil
}

func (p *parser) parseAtom() (ast.Expr, error) {
	tok := p.cur()
	switch tok.Kind() {
	case lexer.Number:
		p.pos++
		return &ast.NumberLit{Base: base(tok), Value: tok.Value()}, nil
	case lexer.String:
		p.pos++
		return &ast.StringLit{Base: base(tok), Value: tok.Text()}, nil
	case lexer.Date:
		p.pos++
		return &ast.DateLit{Base: base(tok), Value: tok.Text()}, nil
	case lexer.FString:
		p.pos++
		return p.parseFString(tok)
	case lexer.Identifier:
		p.pos++
		return &ast.Ident{Base: base(tok), Name: tok.Text()}, nil
	case lexer.Keyword:
		switch tok.Concept() {
		case concept.True:
			p.pos++
			return &ast.BoolLit{Base: base(tok), Value: true}, nil
		case concept.False:
			p.pos++
			return &ast.BoolLit{Base: base(tok), Value: false}, nil
		case concept.None:
			p.pos++
			return &ast.NoneLit{Base: base(tok)}, nil
		}
		if name, found := builtinNames[tok.Concept()]; found {
			p.pos++
			return &ast.Ident{Base: base(tok), Name: name}, nil
		}
	case lexer.Delimiter:
		switch tok.Text() {
		case "(":
			return p.parseParenForm(tok)
		case "[":
			return p.parseListForm(tok)
		case "{":
			return p.parseDictSetForm(tok)
		}
	}
	return nil, p.unexpected("expression")
}

func (p *parser) parseParenForm(at lexer.Token) (ast.Expr, error) {
	p.pos++ // "("
	if p.eatDelimiter(")") {
		return &ast.TupleLit{Base: base(at)}, nil
	}
	first, e := p.parseStarNamedTest()
	if e != nil {
		return nil, e
	}
	if p.atCompClauseStart() {
		clauses, e := p.parseCompClauses()
		if e != nil {
			return nil, e
		}
		if e = p.expectDelimiter(")"); e != nil {
			return nil, e
		}
		return &ast.GenExp{Base: base(at), Elt: first, Clauses: clauses}, nil
	}
	if !p.atDelimiter(",") {
		if e = p.expectDelimiter(")"); e != nil {
			return nil, e
		}
		return first, nil
	}
	items := []ast.Expr{first}
	for p.eatDelimiter(",") {
		if p.atDelimiter(")") {
			break
		}
		next, e := p.parseStarNamedTest()
		if e != nil {
			return nil, e
		}
		items = append(items, next)
	}
	if e = p.expectDelimiter(")"); e != nil {
		return nil, e
	}
	return &ast.TupleLit{Base: base(at), Items: items}, nil
}

func (p *parser) parseStarNamedTest() (ast.Expr, error) {
	if p.atOperator("*") {
		return p.parseStarTest()
	}
	return p.parseNamedTest()
}

func (p *parser) parseListForm(at lexer.Token) (ast.Expr, error) {
	p.pos++ // "["
	if p.eatDelimiter("]") {
		return &ast.ListLit{Base: base(at)}, nil
	}
	first, e := p.parseStarNamedTest()
	if e != nil {
		return nil, e
	}
	if p.atCompClauseStart() {
		clauses, e := p.parseCompClauses()
		if e != nil {
			return nil, e
		}
		if e = p.expectDelimiter("]"); e != nil {
			return nil, e
		}
		return &ast.ListComp{Base: base(at), Elt: first, Clauses: clauses}, nil
	}
	items := []ast.Expr{first}
	for p.eatDelimiter(",") {
		if p.atDelimiter("]") {
			break
		}
		next, e := p.parseStarNamedTest()
		if e != nil {
			return nil, e
		}
		items = append(items, next)
	}
	if e = p.expectDelimiter("]"); e != nil {
		return nil, e
	}
	return &ast.ListLit{Base: base(at), Items: items}, nil
}

func (p *parser) parseDictSetForm(at lexer.Token) (ast.Expr, error) {
	p.pos++ // "{"
	if p.eatDelimiter("}") {
		return &ast.DictLit{Base: base(at)}, nil
	}

	if p.atOperator("**") {
		return p.parseDictRest(at, nil)
	}
	first, e := p.parseNamedTest()
	if e != nil {
		return nil, e
	}
	if p.eatDelimiter(":") {
		value, e := p.parseTest()
		if e != nil {
			return nil, e
		}
		if p.atCompClauseStart() {
			clauses, e := p.parseCompClauses()
			if e != nil {
				return nil, e
			}
			if e = p.expectDelimiter("}"); e != nil {
				return nil, e
			}
			return &ast.DictComp{Base: base(at), Key: first, Value: value, Clauses: clauses}, nil
		}
		items := []ast.DictItem{{Key: first, Value: value}}
		if p.eatDelimiter(",") {
			return p.parseDictRest(at, items)
		}
		if e = p.expectDelimiter("}"); e != nil {
			return nil, e
		}
		return &ast.DictLit{Base: base(at), Items: items}, nil
	}

	// set literal or set comprehension
	if p.atCompClauseStart() {
		clauses, e := p.parseCompClauses()
		if e != nil {
			return nil, e
		}
		if e = p.expectDelimiter("}"); e != nil {
			return nil, e
		}
		return &ast.SetComp{Base: base(at), Elt: first, Clauses: clauses}, nil
	}
	items := []ast.Expr{first}
	for p.eatDelimiter(",") {
		if p.atDelimiter("}") {
			break
		}
		next, e := p.parseNamedTest()
		if e != nil {
			return nil, e
		}
		items = append(items, next)
	}
	if e = p.expectDelimiter("}"); e != nil {
		return nil, e
	}
	return &ast.SetLit{Base: base(at), Items: items}, nil
}

// parseDictRest collects the remaining dict entries, including
// **unpack entries.
func (p *parser) parseDictRest(at lexer.Token, items []ast.DictItem) (ast.Expr, error) {
	for !p.atDelimiter("}") {
		if p.atOperator("**") {
			p.pos++
			value, e := p.parseTest()
			if e != nil {
				return nil, e
			}
			items = append(items, ast.DictItem{Value: value})
		} else {
			key, e := p.parseNamedTest()
			if e != nil {
				return nil, e
			}
			if e = p.expectDelimiter(":"); e != nil {
				return nil, e
			}
			value, e := p.parseTest()
			if e != nil {
				return nil, e
			}
			items = append(items, ast.DictItem{Key: key, Value: value})
		}
		if !p.eatDelimiter(",") {
			break
		}
	}
	if e := p.expectDelimiter("}"); e != nil {
		return nil, e
	}
	return &ast.DictLit{Base: base(at), Items: items}, nil
}

func (p *parser) atCompClauseStart() bool {
	if p.atConcept(concept.LoopFor) {
		return true
	}
	return p.atConcept(concept.Async) && p.peek(1).IsConcept(concept.LoopFor)
}

func (p *parser) parseCompClauses() ([]ast.CompClause, error) {
	var clauses []ast.CompClause
	for p.atCompClauseStart() {
		async := p.eatConcept(concept.Async)
		p.pos++ // LOOP_FOR
		target, e := p.parseTargetList()
		if e != nil {
			return nil, e
		}
		if e = p.expectConcept(concept.In); e != nil {
			return nil, e
		}
		iter, e := p.parseOrTest()
		if e != nil {
			return nil, e
		}
		clause := ast.CompClause{Target: target, Iter: iter, Async: async}
		for p.atConcept(concept.CondIf) {
			p.pos++
			cond, e := p.parseNamedOrTest()
			if e != nil {
				return nil, e
			}
			clause.Conds = append(clause.Conds, cond)
		}
		clauses = append(clauses, clause)
	}
	return clauses, nil
}

// parseNamedOrTest is an or-test allowing a walrus binding, used in
// comprehension conditions where a full conditional would be ambiguous.
func (p *parser) parseNamedOrTest() (ast.Expr, error) {
	if p.at(lexer.Identifier) && p.peek(1).Kind() == lexer.Operator && p.peek(1).Text() == ":=" {
		return p.parseNamedTest()
	}
	return p.parseOrTest()
}

func (p *parser) parseLambda() (ast.Expr, error) {
	tok := p.advance() // LAMBDA
	var params []ast.Param
	for !p.atDelimiter(":") {
		var param ast.Param
		switch {
		case p.atOperator("**"):
			p.pos++
			name, e := p.expectIdent()
			if e != nil {
				return nil, e
			}
			param = ast.Param{Name: name.Text(), Kind: ast.ParamDoubleStar}
		case p.atOperator("*"):
			p.pos++
			name, e := p.expectIdent()
			if e != nil {
				return nil, e
			}
			param = ast.Param{Name: name.Text(), Kind: ast.ParamStar}
		default:
			name, e := p.expectIdent()
			if e != nil {
				return nil, e
			}
			param = ast.Param{Name: name.Text(), Kind: ast.ParamPlain}
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
	if e := p.expectDelimiter(":"); e != nil {
		return nil, e
	}
	body, e := p.parseTest()
	if e != nil {
		return nil, e
	}
	return &ast.Lambda{Base: base(tok), Params: params, Body: body}, nil
}

func (p *parser) parseYield() (ast.Expr, error) {
	tok := p.advance() // YIELD
	node := &ast.YieldExpr{Base: base(tok)}
	if p.eatConcept(concept.From) {
		var e error
		node.From = true
		node.Value, e = p.parseTest()
		return node, e
	}
	if p.atExprStart() {
		var e error
		node.Value, e = p.parseTestListAsTuple()
		return node, e
	}
	return node, nil
}

// parseFString turns a pre-lexed f-string token into an FStringLit by
// running a sub-parser over each interpolation span.
func (p *parser) parseFString(tok lexer.Token) (ast.Expr, error) {
	node := &ast.FStringLit{Base: base(tok)}
	for _, part := range tok.Parts() {
		if !part.IsExpr() {
			node.Chunks = append(node.Chunks, ast.FChunk{Literal: part.Literal()})
			continue
		}
		sub := &parser{tokens: part.Tokens(), language: p.language}
		expr, e := sub.parseTestListAsTuple()
		if e != nil {
			return nil, e
		}
		if sub.pos < len(sub.tokens) {
			return nil, sub.unexpected("end of f-string expression")
		}
		node.Chunks = append(node.Chunks, ast.FChunk{Expr: expr})
	}
	return node, nil
}
