package parser

import (
	"github.com/unilang-dev/unilang"
	"github.com/unilang-dev/unilang/ast"
	"github.com/unilang-dev/unilang/concept"
	"github.com/unilang-dev/unilang/lexer"
)

func (p *parser) parseMatch() (ast.Stmt, error) {
	tok := p.advance() // MATCH
	subject, e := p.parseTestListAsTuple()
	if e != nil {
		return nil, e
	}
	stmt := &ast.Match{Base: base(tok), Subject: subject}
	if e = p.expectDelimiter(":"); e != nil {
		return nil, e
	}
	if !p.at(lexer.Newline) {
		return nil, p.unexpected("newline (match body cannot be a single-line suite)")
	}
	p.skipNewlines()
	if !p.at(lexer.Indent) {
		return nil, p.unexpected("indented block")
	}
	p.pos++
	for {
		p.skipNewlines()
		if p.at(lexer.Dedent) {
			p.pos++
			break
		}
		c, e := p.parseMatchCase()
		if e != nil {
			return nil, e
		}
		stmt.Cases = append(stmt.Cases, c)
	}
	if len(stmt.Cases) == 0 {
		return nil, p.unexpected("CASE clause")
	}
	return stmt, nil
}

func (p *parser) parseMatchCase() (ast.MatchCase, error) {
	tok := p.cur()
	c := ast.MatchCase{Base: base(tok)}

	// "default:" is the wildcard clause.
	if p.eatConcept(concept.Default) {
		c.Pattern = &ast.WildcardPat{Base: base(tok)}
		var e error
		c.Body, e = p.parseSuite()
		return c, e
	}

	if e := p.expectConcept(concept.Case); e != nil {
		return ast.MatchCase{}, e
	}
	pattern, e := p.parseOpenPattern()
	if e != nil {
		return ast.MatchCase{}, e
	}
	c.Pattern = pattern
	if p.eatConcept(concept.CondIf) {
		c.Guard, e = p.parseNamedTest()
		if e != nil {
			return ast.MatchCase{}, e
		}
	}
	c.Body, e = p.parseSuite()
	return c, e
}

// parseOpenPattern parses a pattern list; a comma makes it a sequence.
func (p *parser) parseOpenPattern() (ast.Pattern, error) {
	first := p.cur()
	pattern, e := p.parsePattern()
	if e != nil {
		return nil, e
	}
	if !p.atDelimiter(",") {
		return pattern, nil
	}
	seq := &ast.SequencePat{Base: base(first), Items: []ast.Pattern{pattern}}
	for p.eatDelimiter(",") {
		if p.atDelimiter(":") || p.atConcept(concept.CondIf) {
			break
		}
		next, e := p.parsePattern()
		if e != nil {
			return nil, e
		}
		seq.Items = append(seq.Items, next)
	}
	return seq, nil
}

func (p *parser) parsePattern() (ast.Pattern, error) {
	pattern, e := p.parseOrPattern()
	if e != nil {
		return nil, e
	}
	if p.atConcept(concept.As) {
		tok := p.advance()
		name, e := p.expectIdent()
		if e != nil {
			return nil, e
		}
		return &ast.AsPat{Base: base(tok), Pattern: pattern, Name: name.Text()}, nil
	}
	return pattern, nil
}

func (p *parser) parseOrPattern() (ast.Pattern, error) {
	first, e := p.parseClosedPattern()
	if e != nil {
		return nil, e
	}
	if !p.atOperator("|") {
		return first, nil
	}
	node := &ast.OrPat{Base: base(p.cur()), Alts: []ast.Pattern{first}}
	for p.eatOperator("|") {
		next, e := p.parseClosedPattern()
		if e != nil {
			return nil, e
		}
		node.Alts = append(node.Alts, next)
	}
	return node, nil
}

func (p *parser) parseClosedPattern() (ast.Pattern, error) {
	tok := p.cur()
	switch tok.Kind() {
	case lexer.Number:
		p.pos++
		return &ast.LiteralPat{Base: base(tok),
			Value: &ast.NumberLit{Base: base(tok), Value: tok.Value()}}, nil

	case lexer.String:
		p.pos++
		return &ast.LiteralPat{Base: base(tok),
			Value: &ast.StringLit{Base: base(tok), Value: tok.Text()}}, nil

	case lexer.Date:
		p.pos++
		return &ast.LiteralPat{Base: base(tok),
			Value: &ast.DateLit{Base: base(tok), Value: tok.Text()}}, nil

	case lexer.Operator:
		if tok.Text() == "-" && p.peek(1).Kind() == lexer.Number {
			p.pos++
			num := p.advance()
			return &ast.LiteralPat{Base: base(tok),
				Value: &ast.Unary{Base: base(tok), Op: "-",
					Operand: &ast.NumberLit{Base: base(num), Value: num.Value()}}}, nil
		}

	case lexer.Keyword:
		switch tok.Concept() {
		case concept.True:
			p.pos++
			return &ast.LiteralPat{Base: base(tok),
				Value: &ast.BoolLit{Base: base(tok), Value: true}}, nil
		case concept.False:
			p.pos++
			return &ast.LiteralPat{Base: base(tok),
				Value: &ast.BoolLit{Base: base(tok), Value: false}}, nil
		case concept.None:
			p.pos++
			return &ast.LiteralPat{Base: base(tok),
				Value: &ast.NoneLit{Base: base(tok)}}, nil
		}

	case lexer.Identifier:
		if tok.Text() == "_" {
			p.pos++
			return &ast.WildcardPat{Base: base(tok)}, nil
		}
		next := p.peek(1)
		if next.Kind() == lexer.Delimiter {
			switch next.Text() {
			case "(", ".":
				return p.parseClassOrValuePattern()
			}
		}
		p.pos++
		return &ast.CapturePat{Base: base(tok), Name: tok.Text()}, nil

	case lexer.Delimiter:
		switch tok.Text() {
		case "(", "[":
			return p.parseSequencePattern(tok)
		case "{":
			return p.parseMappingPattern(tok)
		}
	}
	return nil, unilang.FormatErrorPos(tok, ErrBadPattern, "SYN_BAD_PATTERN",
		"expecting a pattern")
}

// parseClassOrValuePattern parses a dotted name followed either by a
// class pattern argument list or nothing (a value pattern).
func (p *parser) parseClassOrValuePattern() (ast.Pattern, error) {
	tok := p.cur()
	name, e := p.expectIdent()
	if e != nil {
		return nil, e
	}
	var value ast.Expr = &ast.Ident{Base: base(name), Name: name.Text()}
	for p.eatDelimiter(".") {
		attr, e := p.expectIdent()
		if e != nil {
			return nil, e
		}
		value = &ast.Attribute{Base: base(tok), Value: value, Name: attr.Text()}
	}
	if !p.atDelimiter("(") {
		return &ast.LiteralPat{Base: base(tok), Value: value}, nil
	}

	p.pos++ // "("
	cls := &ast.ClassPat{Base: base(tok), Class: value}
	for !p.atDelimiter(")") {
		if p.at(lexer.Identifier) && p.peek(1).Kind() == lexer.Operator && p.peek(1).Text() == "=" {
			kw := p.advance()
			p.pos++ // "="
			pattern, e := p.parsePattern()
			if e != nil {
				return nil, e
			}
			cls.Keywords = append(cls.Keywords, ast.ClassPatKeyword{Name: kw.Text(), Pattern: pattern})
		} else {
			pattern, e := p.parsePattern()
			if e != nil {
				return nil, e
			}
			cls.Args = append(cls.Args, pattern)
		}
		if !p.eatDelimiter(",") {
			break
		}
	}
	if e = p.expectDelimiter(")"); e != nil {
		return nil, e
	}
	return cls, nil
}

func (p *parser) parseSequencePattern(at lexer.Token) (ast.Pattern, error) {
	closing := "]"
	if at.Text() == "(" {
		closing = ")"
	}
	p.pos++
	seq := &ast.SequencePat{Base: base(at)}
	single := false
	for !p.atDelimiter(closing) {
		item, e := p.parsePattern()
		if e != nil {
			return nil, e
		}
		seq.Items = append(seq.Items, item)
		if !p.eatDelimiter(",") {
			single = len(seq.Items) == 1
			break
		}
	}
	if e := p.expectDelimiter(closing); e != nil {
		return nil, e
	}
	// a parenthesized pattern without a comma is a group, not a sequence
	if closing == ")" && single {
		return seq.Items[0], nil
	}
	return seq, nil
}

func (p *parser) parseMappingPattern(at lexer.Token) (ast.Pattern, error) {
	p.pos++ // "{"
	m := &ast.MappingPat{Base: base(at)}
	for !p.atDelimiter("}") {
		key, e := p.parseTest()
		if e != nil {
			return nil, e
		}
		if e = p.expectDelimiter(":"); e != nil {
			return nil, e
		}
		value, e := p.parsePattern()
		if e != nil {
			return nil, e
		}
		m.Keys = append(m.Keys, key)
		m.Values = append(m.Values, value)
		if !p.eatDelimiter(",") {
			break
		}
	}
	if e := p.expectDelimiter("}"); e != nil {
		return nil, e
	}
	return m, nil
}
