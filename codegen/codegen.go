// Package codegen renders a compiled unit as executable Python 3
// source. The tree is language-agnostic, so the output is identical no
// matter which human language the source was written in.
package codegen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/unilang-dev/unilang"
	"github.com/unilang-dev/unilang/ast"
	"github.com/unilang-dev/unilang/compile"
)

// Error codes used by codegen:
const (
	// ErrNoProgram indicates a unit without a program tree.
	ErrNoProgram = unilang.GenerationErrors + iota
)

// Operator precedence, loose to tight. Children below the context
// level get parenthesized.
const (
	precLambda = iota + 1
	precCond
	precOr
	precAnd
	precNot
	precCompare
	precBitOr
	precBitXor
	precBitAnd
	precShift
	precAdd
	precMul
	precUnary
	precPower
	precAwait
	precPostfix
	precAtom
)

var binaryPrec = map[string]int{
	"|": precBitOr, "^": precBitXor, "&": precBitAnd,
	"<<": precShift, ">>": precShift,
	"+": precAdd, "-": precAdd,
	"*": precMul, "/": precMul, "//": precMul, "%": precMul,
	"**": precPower,
}

// Generate renders a unit as Python source. A header comment records
// the unit identity for traceability.
func Generate(unit *compile.Unit) (string, error) {
	if unit == nil || unit.Program == nil {
		return "", unilang.FormatError(ErrNoProgram, "GEN_NO_PROGRAM",
			"unit carries no program tree")
	}
	g := &generator{}
	body := &strings.Builder{}
	g.stmts(body, unit.Program.Body)

	out := &strings.Builder{}
	fmt.Fprintf(out, "# generated by unilang %s from %s (%s)\n",
		unit.CoreVersion, unit.SourceName, unit.SourceLanguage)
	fmt.Fprintf(out, "# unit %s\n", unit.ID)
	if g.needsDatetime {
		out.WriteString("import datetime\n")
	}
	out.WriteByte('\n')
	out.WriteString(body.String())
	return out.String(), nil
}

type generator struct {
	indent        int
	needsDatetime bool
}

func (g *generator) line(b *strings.Builder, text string) {
	for i := 0; i < g.indent; i++ {
		b.WriteString("    ")
	}
	b.WriteString(text)
	b.WriteByte('\n')
}

func (g *generator) stmts(b *strings.Builder, list []ast.Stmt) {
	for _, s := range list {
		g.stmt(b, s)
	}
}

// suite renders an indented block, or "pass" when it is empty.
func (g *generator) suite(b *strings.Builder, list []ast.Stmt) {
	g.indent++
	if len(list) == 0 {
		g.line(b, "pass")
	} else {
		g.stmts(b, list)
	}
	g.indent--
}

func (g *generator) stmt(b *strings.Builder, s ast.Stmt) {
	switch s := s.(type) {
	case *ast.VarDecl:
		switch {
		case s.Annotation != nil && s.Value != nil:
			g.line(b, s.Name+": "+g.expr(s.Annotation, precLambda)+" = "+g.expr(s.Value, precLambda))
		case s.Annotation != nil:
			g.line(b, s.Name+": "+g.expr(s.Annotation, precLambda))
		case s.Value != nil:
			g.line(b, s.Name+" = "+g.expr(s.Value, precLambda))
		default:
			g.line(b, s.Name+" = None")
		}

	case *ast.Assign:
		parts := make([]string, 0, len(s.Targets)+1)
		for _, t := range s.Targets {
			parts = append(parts, g.expr(t, precLambda))
		}
		parts = append(parts, g.expr(s.Value, precLambda))
		g.line(b, strings.Join(parts, " = "))

	case *ast.AugAssign:
		g.line(b, g.expr(s.Target, precPostfix)+" "+s.Op+"= "+g.expr(s.Value, precLambda))

	case *ast.AnnAssign:
		text := g.expr(s.Target, precPostfix) + ": " + g.expr(s.Annotation, precLambda)
		if s.Value != nil {
			text += " = " + g.expr(s.Value, precLambda)
		}
		g.line(b, text)

	case *ast.ExprStmt:
		g.line(b, g.expr(s.Value, precLambda))

	case *ast.Pass:
		g.line(b, "pass")

	case *ast.Return:
		if s.Value == nil {
			g.line(b, "return")
		} else {
			g.line(b, "return "+g.expr(s.Value, precLambda))
		}

	case *ast.Break:
		g.line(b, "break")

	case *ast.Continue:
		g.line(b, "continue")

	case *ast.Raise:
		switch {
		case s.Exc == nil:
			g.line(b, "raise")
		case s.From == nil:
			g.line(b, "raise "+g.expr(s.Exc, precLambda))
		default:
			g.line(b, "raise "+g.expr(s.Exc, precLambda)+" from "+g.expr(s.From, precLambda))
		}

	case *ast.Delete:
		g.line(b, "del "+g.exprList(s.Targets))

	case *ast.Global:
		g.line(b, "global "+strings.Join(s.Names, ", "))

	case *ast.Local:
		g.line(b, "nonlocal "+strings.Join(s.Names, ", "))

	case *ast.Assert:
		text := "assert " + g.expr(s.Cond, precLambda)
		if s.Msg != nil {
			text += ", " + g.expr(s.Msg, precLambda)
		}
		g.line(b, text)

	case *ast.Import:
		items := make([]string, len(s.Items))
		for i, item := range s.Items {
			items[i] = item.Path
			if item.Alias != "" {
				items[i] += " as " + item.Alias
			}
		}
		g.line(b, "import "+strings.Join(items, ", "))

	case *ast.FromImport:
		if s.Wildcard {
			g.line(b, "from "+s.Module+" import *")
			return
		}
		items := make([]string, len(s.Items))
		for i, item := range s.Items {
			items[i] = item.Path
			if item.Alias != "" {
				items[i] += " as " + item.Alias
			}
		}
		g.line(b, "from "+s.Module+" import "+strings.Join(items, ", "))

	case *ast.If:
		g.ifChain(b, s, "if")

	case *ast.While:
		g.line(b, "while "+g.expr(s.Cond, precLambda)+":")
		g.suite(b, s.Body)
		if len(s.Else) > 0 {
			g.line(b, "else:")
			g.suite(b, s.Else)
		}

	case *ast.For:
		head := "for "
		if s.Async {
			head = "async for "
		}
		g.line(b, head+g.expr(s.Target, precLambda)+" in "+g.expr(s.Iter, precLambda)+":")
		g.suite(b, s.Body)
		if len(s.Else) > 0 {
			g.line(b, "else:")
			g.suite(b, s.Else)
		}

	case *ast.FuncDef:
		for _, d := range s.Decorators {
			g.line(b, "@"+g.expr(d, precLambda))
		}
		head := "def "
		if s.Async {
			head = "async def "
		}
		head += s.Name + "(" + g.params(s.Params) + ")"
		if s.Returns != nil {
			head += " -> " + g.expr(s.Returns, precLambda)
		}
		g.line(b, head+":")
		g.suite(b, s.Body)

	case *ast.ClassDef:
		for _, d := range s.Decorators {
			g.line(b, "@"+g.expr(d, precLambda))
		}
		head := "class " + s.Name
		args := make([]string, 0, len(s.Bases)+len(s.Keywords))
		for _, base := range s.Bases {
			args = append(args, g.expr(base, precLambda))
		}
		for _, kw := range s.Keywords {
			args = append(args, g.arg(kw))
		}
		if len(args) > 0 {
			head += "(" + strings.Join(args, ", ") + ")"
		}
		g.line(b, head+":")
		g.suite(b, s.Body)

	case *ast.Try:
		g.line(b, "try:")
		g.suite(b, s.Body)
		for i := range s.Handlers {
			h := &s.Handlers[i]
			head := "except"
			if h.Type != nil {
				head += " " + g.expr(h.Type, precLambda)
				if h.Name != "" {
					head += " as " + h.Name
				}
			}
			g.line(b, head+":")
			g.suite(b, h.Body)
		}
		if len(s.Else) > 0 {
			g.line(b, "else:")
			g.suite(b, s.Else)
		}
		if len(s.Finally) > 0 {
			g.line(b, "finally:")
			g.suite(b, s.Finally)
		}

	case *ast.With:
		head := "with "
		if s.Async {
			head = "async with "
		}
		items := make([]string, len(s.Items))
		for i, item := range s.Items {
			items[i] = g.expr(item.Context, precLambda)
			if item.Target != nil {
				items[i] += " as " + g.expr(item.Target, precLambda)
			}
		}
		g.line(b, head+strings.Join(items, ", ")+":")
		g.suite(b, s.Body)

	case *ast.Match:
		g.line(b, "match "+g.expr(s.Subject, precLambda)+":")
		g.indent++
		for i := range s.Cases {
			c := &s.Cases[i]
			head := "case " + g.pattern(c.Pattern)
			if c.Guard != nil {
				head += " if " + g.expr(c.Guard, precLambda)
			}
			g.line(b, head+":")
			g.suite(b, c.Body)
		}
		g.indent--

	default:
		panic(fmt.Sprintf("unilang/codegen: internal error: unhandled statement %T", s))
	}
}

// ifChain renders an If whose Else holds a single nested If as elif.
func (g *generator) ifChain(b *strings.Builder, s *ast.If, keyword string) {
	g.line(b, keyword+" "+g.expr(s.Cond, precLambda)+":")
	g.suite(b, s.Body)
	if len(s.Else) == 0 {
		return
	}
	if nested, ok := s.Else[0].(*ast.If); ok && len(s.Else) == 1 {
		g.ifChain(b, nested, "elif")
		return
	}
	g.line(b, "else:")
	g.suite(b, s.Else)
}

func (g *generator) params(list []ast.Param) string {
	parts := make([]string, len(list))
	for i, p := range list {
		switch p.Kind {
		case ast.ParamStarMark:
			parts[i] = "*"
			continue
		case ast.ParamSlashMark:
			parts[i] = "/"
			continue
		case ast.ParamStar:
			parts[i] = "*" + p.Name
		case ast.ParamDoubleStar:
			parts[i] = "**" + p.Name
		default:
			parts[i] = p.Name
		}
		if p.Annotation != nil {
			parts[i] += ": " + g.expr(p.Annotation, precLambda)
			if p.Default != nil {
				parts[i] += " = " + g.expr(p.Default, precLambda)
			}
		} else if p.Default != nil {
			parts[i] += "=" + g.expr(p.Default, precLambda)
		}
	}
	return strings.Join(parts, ", ")
}

func (g *generator) exprList(list []ast.Expr) string {
	parts := make([]string, len(list))
	for i, e := range list {
		parts[i] = g.expr(e, precLambda)
	}
	return strings.Join(parts, ", ")
}

func (g *generator) arg(a ast.Arg) string {
	switch {
	case a.Unpack != "":
		return a.Unpack + g.expr(a.Value, precLambda)
	case a.Name != "":
		return a.Name + "=" + g.expr(a.Value, precLambda)
	}
	return g.expr(a.Value, precLambda)
}

// expr renders an expression, parenthesizing it when its precedence is
// below the context minimum.
func (g *generator) expr(e ast.Expr, min int) string {
	text, prec := g.render(e)
	if prec < min {
		return "(" + text + ")"
	}
	return text
}

func (g *generator) render(e ast.Expr) (string, int) {
	switch e := e.(type) {
	case *ast.NumberLit:
		return e.Value, precAtom

	case *ast.StringLit:
		return strconv.Quote(e.Value), precAtom

	case *ast.FStringLit:
		return g.fstring(e), precAtom

	case *ast.DateLit:
		g.needsDatetime = true
		return "datetime.date.fromisoformat(" + strconv.Quote(e.Value) + ")", precPostfix

	case *ast.BoolLit:
		if e.Value {
			return "True", precAtom
		}
		return "False", precAtom

	case *ast.NoneLit:
		return "None", precAtom

	case *ast.TupleLit:
		if len(e.Items) == 1 {
			return "(" + g.expr(e.Items[0], precLambda) + ",)", precAtom
		}
		return "(" + g.exprList(e.Items) + ")", precAtom

	case *ast.ListLit:
		return "[" + g.exprList(e.Items) + "]", precAtom

	case *ast.SetLit:
		if len(e.Items) == 0 {
			return "set()", precPostfix
		}
		return "{" + g.exprList(e.Items) + "}", precAtom

	case *ast.DictLit:
		parts := make([]string, len(e.Items))
		for i, item := range e.Items {
			if item.Key == nil {
				parts[i] = "**" + g.expr(item.Value, precLambda)
			} else {
				parts[i] = g.expr(item.Key, precLambda) + ": " + g.expr(item.Value, precLambda)
			}
		}
		return "{" + strings.Join(parts, ", ") + "}", precAtom

	case *ast.Ident:
		return e.Name, precAtom

	case *ast.Binary:
		prec := binaryPrec[e.Op]
		if e.Op == "**" {
			// right-associative
			return g.expr(e.Left, prec+1) + " " + e.Op + " " + g.expr(e.Right, prec), prec
		}
		return g.expr(e.Left, prec) + " " + e.Op + " " + g.expr(e.Right, prec+1), prec

	case *ast.Unary:
		if e.Op == "not" {
			return "not " + g.expr(e.Operand, precNot), precNot
		}
		return e.Op + g.expr(e.Operand, precUnary), precUnary

	case *ast.BoolOp:
		prec := precOr
		if e.Op == "and" {
			prec = precAnd
		}
		parts := make([]string, len(e.Values))
		for i, v := range e.Values {
			parts[i] = g.expr(v, prec+1)
		}
		return strings.Join(parts, " "+e.Op+" "), prec

	case *ast.Compare:
		text := g.expr(e.Left, precCompare+1)
		for i, op := range e.Ops {
			text += " " + op + " " + g.expr(e.Rights[i], precCompare+1)
		}
		return text, precCompare

	case *ast.Call:
		args := make([]string, len(e.Args))
		for i, a := range e.Args {
			args[i] = g.arg(a)
		}
		return g.expr(e.Func, precPostfix) + "(" + strings.Join(args, ", ") + ")", precPostfix

	case *ast.Attribute:
		return g.expr(e.Value, precPostfix) + "." + e.Name, precPostfix

	case *ast.Index:
		return g.expr(e.Value, precPostfix) + "[" + g.subscript(e.Sub) + "]", precPostfix

	case *ast.SliceExpr:
		// reachable only through Index
		return g.subscript(e), precAtom

	case *ast.Lambda:
		text := "lambda"
		if len(e.Params) > 0 {
			text += " " + g.params(e.Params)
		}
		return text + ": " + g.expr(e.Body, precLambda), precLambda

	case *ast.YieldExpr:
		switch {
		case e.From:
			return "yield from " + g.expr(e.Value, precLambda), precLambda
		case e.Value != nil:
			return "yield " + g.expr(e.Value, precLambda), precLambda
		}
		return "yield", precLambda

	case *ast.AwaitExpr:
		return "await " + g.expr(e.Value, precAwait), precAwait

	case *ast.Conditional:
		return g.expr(e.Then, precOr) + " if " + g.expr(e.Cond, precOr) +
			" else " + g.expr(e.Else, precCond), precCond

	case *ast.Named:
		// always parenthesized; Python allows it bare in few spots only
		return "(" + e.Target.Name + " := " + g.expr(e.Value, precLambda) + ")", precAtom

	case *ast.Starred:
		return "*" + g.expr(e.Value, precPostfix), precUnary

	case *ast.ListComp:
		return "[" + g.expr(e.Elt, precLambda) + g.compClauses(e.Clauses) + "]", precAtom

	case *ast.SetComp:
		return "{" + g.expr(e.Elt, precLambda) + g.compClauses(e.Clauses) + "}", precAtom

	case *ast.GenExp:
		return "(" + g.expr(e.Elt, precLambda) + g.compClauses(e.Clauses) + ")", precAtom

	case *ast.DictComp:
		return "{" + g.expr(e.Key, precLambda) + ": " + g.expr(e.Value, precLambda) +
			g.compClauses(e.Clauses) + "}", precAtom

	default:
		panic(fmt.Sprintf("unilang/codegen: internal error: unhandled expression %T", e))
	}
}

func (g *generator) subscript(e ast.Expr) string {
	s, ok := e.(*ast.SliceExpr)
	if !ok {
		return g.expr(e, precLambda)
	}
	text := ""
	if s.Start != nil {
		text += g.expr(s.Start, precLambda)
	}
	text += ":"
	if s.Stop != nil {
		text += g.expr(s.Stop, precLambda)
	}
	if s.Step != nil {
		text += ":" + g.expr(s.Step, precLambda)
	}
	return text
}

func (g *generator) compClauses(clauses []ast.CompClause) string {
	text := ""
	for _, c := range clauses {
		keyword := " for "
		if c.Async {
			keyword = " async for "
		}
		text += keyword + g.expr(c.Target, precLambda) + " in " + g.expr(c.Iter, precOr)
		for _, cond := range c.Conds {
			text += " if " + g.expr(cond, precOr)
		}
	}
	return text
}

func (g *generator) fstring(e *ast.FStringLit) string {
	b := &strings.Builder{}
	b.WriteString(`f"`)
	for _, c := range e.Chunks {
		if c.Expr != nil {
			b.WriteByte('{')
			b.WriteString(g.expr(c.Expr, precLambda))
			b.WriteByte('}')
			continue
		}
		for _, r := range c.Literal {
			switch r {
			case '{':
				b.WriteString("{{")
			case '}':
				b.WriteString("}}")
			case '"':
				b.WriteString(`\"`)
			case '\\':
				b.WriteString(`\\`)
			case '\n':
				b.WriteString(`\n`)
			default:
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}

func (g *generator) pattern(p ast.Pattern) string {
	switch p := p.(type) {
	case *ast.LiteralPat:
		return g.expr(p.Value, precOr)
	case *ast.CapturePat:
		return p.Name
	case *ast.WildcardPat:
		return "_"
	case *ast.OrPat:
		parts := make([]string, len(p.Alts))
		for i, alt := range p.Alts {
			parts[i] = g.pattern(alt)
		}
		return strings.Join(parts, " | ")
	case *ast.AsPat:
		return g.pattern(p.Pattern) + " as " + p.Name
	case *ast.SequencePat:
		parts := make([]string, len(p.Items))
		for i, item := range p.Items {
			parts[i] = g.pattern(item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case *ast.MappingPat:
		parts := make([]string, len(p.Keys))
		for i := range p.Keys {
			parts[i] = g.expr(p.Keys[i], precLambda) + ": " + g.pattern(p.Values[i])
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case *ast.ClassPat:
		parts := make([]string, 0, len(p.Args)+len(p.Keywords))
		for _, arg := range p.Args {
			parts = append(parts, g.pattern(arg))
		}
		for _, kw := range p.Keywords {
			parts = append(parts, kw.Name+"="+g.pattern(kw.Pattern))
		}
		return g.expr(p.Class, precPostfix) + "(" + strings.Join(parts, ", ") + ")"
	default:
		panic(fmt.Sprintf("unilang/codegen: internal error: unhandled pattern %T", p))
	}
}
