package semantic

import (
	"fmt"
	"strings"

	"github.com/unilang-dev/unilang/ast"
	"github.com/unilang-dev/unilang/diag"
)

func (a *analyzer) stmt(s ast.Stmt) {
	switch s := s.(type) {
	case *ast.VarDecl:
		if s.Annotation != nil {
			a.expr(s.Annotation)
		}
		if s.Value != nil {
			a.expr(s.Value)
		}
		kind := BindVariable
		if s.Const {
			kind = BindConst
		}
		a.declare(s, s.Name, kind)

	case *ast.Assign:
		a.expr(s.Value)
		for _, t := range s.Targets {
			a.assignTarget(t)
		}

	case *ast.AugAssign:
		a.expr(s.Value)
		switch t := s.Target.(type) {
		case *ast.Ident:
			sym := a.lookup(t.Name)
			switch {
			case sym == nil && !builtins[t.Name]:
				a.report(t, diag.SevError, "UNDEFINED_NAME", t.Name)
			case sym != nil && sym.Kind == BindConst:
				a.report(t, diag.SevError, "CONST_REASSIGNMENT", t.Name)
			}
		default:
			a.expr(s.Target)
		}

	case *ast.AnnAssign:
		a.expr(s.Annotation)
		if s.Value != nil {
			a.expr(s.Value)
		}
		a.assignTarget(s.Target)

	case *ast.ExprStmt:
		a.expr(s.Value)

	case *ast.Pass:

	case *ast.Return:
		if a.enclosingFunction() == nil {
			a.report(s, diag.SevError, "RETURN_OUTSIDE_FUNCTION", "")
		}
		if s.Value != nil {
			a.expr(s.Value)
		}

	case *ast.Break:
		if a.loopDepth == 0 {
			a.report(s, diag.SevError, "BREAK_OUTSIDE_LOOP", "")
		}

	case *ast.Continue:
		if a.loopDepth == 0 {
			a.report(s, diag.SevError, "CONTINUE_OUTSIDE_LOOP", "")
		}

	case *ast.Raise:
		if s.Exc != nil {
			a.expr(s.Exc)
		}
		if s.From != nil {
			a.expr(s.From)
		}

	case *ast.Delete:
		for _, t := range s.Targets {
			a.expr(t)
		}

	case *ast.Global:
		for _, name := range s.Names {
			a.scope.globals[name] = true
			line, col := s.Pos()
			a.globals = append(a.globals, pendingGlobal{name, line, col})
		}

	case *ast.Local:
		for _, name := range s.Names {
			target := a.enclosingFunctionWith(name)
			if target == nil {
				a.report(s, diag.SevError, "NONLOCAL_NO_BINDING", name)
				continue
			}
			a.scope.locals[name] = true
		}

	case *ast.Assert:
		a.expr(s.Cond)
		if s.Msg != nil {
			a.expr(s.Msg)
		}

	case *ast.Import:
		for _, item := range s.Items {
			name := item.Alias
			if name == "" {
				name = strings.SplitN(item.Path, ".", 2)[0]
			}
			a.bindTarget(s, name, BindVariable)
		}

	case *ast.FromImport:
		for _, item := range s.Items {
			name := item.Alias
			if name == "" {
				name = item.Path
			}
			a.bindTarget(s, name, BindVariable)
		}

	case *ast.If:
		a.expr(s.Cond)
		a.stmts(s.Body)
		a.stmts(s.Else)

	case *ast.While:
		a.expr(s.Cond)
		a.loopDepth++
		a.stmts(s.Body)
		a.loopDepth--
		a.stmts(s.Else)

	case *ast.For:
		a.expr(s.Iter)
		a.assignTarget(s.Target)
		a.loopDepth++
		a.stmts(s.Body)
		a.loopDepth--
		a.stmts(s.Else)

	case *ast.FuncDef:
		for _, d := range s.Decorators {
			a.expr(d)
		}
		for i := range s.Params {
			if s.Params[i].Annotation != nil {
				a.expr(s.Params[i].Annotation)
			}
			if s.Params[i].Default != nil {
				a.expr(s.Params[i].Default)
			}
		}
		if s.Returns != nil {
			a.expr(s.Returns)
		}
		a.bindTarget(s, s.Name, BindFunction)
		a.push(scopeFunction)
		a.scope.async = s.Async
		for i := range s.Params {
			if s.Params[i].Name != "" {
				a.declare(s, s.Params[i].Name, BindParam)
			}
		}
		savedLoops := a.loopDepth
		a.loopDepth = 0
		a.stmts(s.Body)
		a.loopDepth = savedLoops
		a.pop()

	case *ast.ClassDef:
		for _, d := range s.Decorators {
			a.expr(d)
		}
		for _, b := range s.Bases {
			a.expr(b)
		}
		for i := range s.Keywords {
			a.expr(s.Keywords[i].Value)
		}
		a.bindTarget(s, s.Name, BindClass)
		a.push(scopeClass)
		a.stmts(s.Body)
		a.pop()

	case *ast.Try:
		a.stmts(s.Body)
		for i := range s.Handlers {
			h := &s.Handlers[i]
			if h.Type != nil {
				a.expr(h.Type)
			}
			a.push(scopeBlock)
			if h.Name != "" {
				a.bindIn(a.scope, h, h.Name, BindVariable)
			}
			a.stmts(h.Body)
			a.pop()
		}
		a.stmts(s.Else)
		a.stmts(s.Finally)

	case *ast.With:
		for _, item := range s.Items {
			a.expr(item.Context)
		}
		a.push(scopeBlock)
		for _, item := range s.Items {
			if item.Target != nil {
				a.assignTarget(item.Target)
			}
		}
		a.stmts(s.Body)
		a.pop()

	case *ast.Match:
		a.expr(s.Subject)
		for i := range s.Cases {
			c := &s.Cases[i]
			a.pattern(c.Pattern)
			if c.Guard != nil {
				a.expr(c.Guard)
			}
			a.stmts(c.Body)
		}

	default:
		panic(fmt.Sprintf("unilang/semantic: internal error: unhandled statement %T", s))
	}
}

func (a *analyzer) stmts(list []ast.Stmt) {
	for _, s := range list {
		a.stmt(s)
	}
}

// assignTarget records the binding effect of assigning to an
// expression; non-name targets are analyzed as uses.
func (a *analyzer) assignTarget(t ast.Expr) {
	switch t := t.(type) {
	case *ast.Ident:
		sym := a.lookup(t.Name)
		if sym != nil && sym.Kind == BindConst {
			a.report(t, diag.SevError, "CONST_REASSIGNMENT", t.Name)
			return
		}
		a.bindTarget(t, t.Name, BindVariable)
	case *ast.Starred:
		a.assignTarget(t.Value)
	case *ast.TupleLit:
		for _, item := range t.Items {
			a.assignTarget(item)
		}
	case *ast.ListLit:
		for _, item := range t.Items {
			a.assignTarget(item)
		}
	default:
		a.expr(t)
	}
}

func (a *analyzer) expr(e ast.Expr) {
	switch e := e.(type) {
	case *ast.NumberLit, *ast.StringLit, *ast.DateLit, *ast.BoolLit, *ast.NoneLit:

	case *ast.FStringLit:
		for _, c := range e.Chunks {
			if c.Expr != nil {
				a.expr(c.Expr)
			}
		}

	case *ast.TupleLit:
		a.exprs(e.Items)
	case *ast.ListLit:
		a.exprs(e.Items)
	case *ast.SetLit:
		a.exprs(e.Items)
	case *ast.DictLit:
		for _, item := range e.Items {
			if item.Key != nil {
				a.expr(item.Key)
			}
			a.expr(item.Value)
		}

	case *ast.Ident:
		if builtins[e.Name] {
			return
		}
		if a.lookup(e.Name) == nil {
			a.report(e, diag.SevError, "UNDEFINED_NAME", e.Name)
		}

	case *ast.Binary:
		a.expr(e.Left)
		a.expr(e.Right)
	case *ast.Unary:
		a.expr(e.Operand)
	case *ast.BoolOp:
		a.exprs(e.Values)
	case *ast.Compare:
		a.expr(e.Left)
		a.exprs(e.Rights)

	case *ast.Call:
		a.expr(e.Func)
		for i := range e.Args {
			a.expr(e.Args[i].Value)
		}

	case *ast.Attribute:
		a.expr(e.Value)
	case *ast.Index:
		a.expr(e.Value)
		a.expr(e.Sub)
	case *ast.SliceExpr:
		if e.Start != nil {
			a.expr(e.Start)
		}
		if e.Stop != nil {
			a.expr(e.Stop)
		}
		if e.Step != nil {
			a.expr(e.Step)
		}

	case *ast.Lambda:
		for i := range e.Params {
			if e.Params[i].Default != nil {
				a.expr(e.Params[i].Default)
			}
		}
		a.push(scopeFunction)
		for i := range e.Params {
			if e.Params[i].Name != "" {
				a.declare(e, e.Params[i].Name, BindParam)
			}
		}
		a.expr(e.Body)
		a.pop()

	case *ast.YieldExpr:
		if a.enclosingFunction() == nil {
			a.report(e, diag.SevError, "YIELD_OUTSIDE_FUNCTION", "")
		}
		if e.Value != nil {
			a.expr(e.Value)
		}

	case *ast.AwaitExpr:
		fn := a.enclosingFunction()
		if fn == nil || !fn.async {
			a.report(e, diag.SevError, "AWAIT_OUTSIDE_ASYNC", "")
		}
		a.expr(e.Value)

	case *ast.Conditional:
		a.expr(e.Cond)
		a.expr(e.Then)
		a.expr(e.Else)

	case *ast.Named:
		a.expr(e.Value)
		a.assignTarget(e.Target)

	case *ast.Starred:
		a.expr(e.Value)

	case *ast.ListComp:
		a.comp(e.Clauses, e.Elt)
	case *ast.SetComp:
		a.comp(e.Clauses, e.Elt)
	case *ast.GenExp:
		a.comp(e.Clauses, e.Elt)
	case *ast.DictComp:
		a.comp(e.Clauses, e.Key, e.Value)

	default:
		panic(fmt.Sprintf("unilang/semantic: internal error: unhandled expression %T", e))
	}
}

func (a *analyzer) exprs(list []ast.Expr) {
	for _, e := range list {
		a.expr(e)
	}
}

// comp analyzes a comprehension in its own block scope: clause
// targets are bound there and do not leak out.
func (a *analyzer) comp(clauses []ast.CompClause, elts ...ast.Expr) {
	a.push(scopeBlock)
	for _, c := range clauses {
		a.expr(c.Iter)
		a.assignTarget(c.Target)
		a.exprs(c.Conds)
	}
	for _, e := range elts {
		a.expr(e)
	}
	a.pop()
}

func (a *analyzer) pattern(p ast.Pattern) {
	switch p := p.(type) {
	case *ast.LiteralPat:
		a.expr(p.Value)
	case *ast.CapturePat:
		a.bindTarget(p, p.Name, BindVariable)
	case *ast.WildcardPat:
	case *ast.OrPat:
		for _, alt := range p.Alts {
			a.pattern(alt)
		}
	case *ast.AsPat:
		a.pattern(p.Pattern)
		a.bindTarget(p, p.Name, BindVariable)
	case *ast.SequencePat:
		for _, item := range p.Items {
			a.pattern(item)
		}
	case *ast.MappingPat:
		for i := range p.Keys {
			a.expr(p.Keys[i])
			a.pattern(p.Values[i])
		}
	case *ast.ClassPat:
		a.expr(p.Class)
		for _, arg := range p.Args {
			a.pattern(arg)
		}
		for i := range p.Keywords {
			a.pattern(p.Keywords[i].Pattern)
		}
	default:
		panic(fmt.Sprintf("unilang/semantic: internal error: unhandled pattern %T", p))
	}
}
