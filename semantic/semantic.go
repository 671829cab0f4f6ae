// Package semantic walks the canonical tree and verifies scope and
// context rules. Analysis never fails: it returns a list of
// diagnostics, empty when the program is clean.
package semantic

import (
	"github.com/unilang-dev/unilang/ast"
	"github.com/unilang-dev/unilang/diag"
)

// BindKind classifies what a name is bound to.
type BindKind int

const (
	BindVariable BindKind = iota
	BindConst
	BindParam
	BindFunction
	BindClass
)

// Symbol is one name binding.
type Symbol struct {
	Name      string
	Kind      BindKind
	Line, Col int
}

type scopeKind int

const (
	scopeModule scopeKind = iota
	scopeFunction
	scopeClass
	scopeBlock
)

type scope struct {
	kind    scopeKind
	parent  *scope
	symbols map[string]*Symbol
	async   bool
	globals map[string]bool
	locals  map[string]bool
}

func newScope(kind scopeKind, parent *scope) *scope {
	return &scope{
		kind:    kind,
		parent:  parent,
		symbols: map[string]*Symbol{},
		globals: map[string]bool{},
		locals:  map[string]bool{},
	}
}

// Names bound implicitly in every program.
var builtins = map[string]bool{
	"print": true, "input": true, "int": true, "str": true,
	"float": true, "bool": true, "len": true, "range": true,
	"list": true, "dict": true, "set": true, "tuple": true,
	"enumerate": true, "zip": true, "abs": true, "min": true,
	"max": true, "sum": true, "sorted": true, "reversed": true,
	"type": true, "isinstance": true, "repr": true, "open": true,
	"object": true, "super": true, "Exception": true,
	"ValueError": true, "TypeError": true, "KeyError": true,
	"IndexError": true, "ZeroDivisionError": true, "StopIteration": true,
}

type pendingGlobal struct {
	name      string
	line, col int
}

type analyzer struct {
	scope     *scope
	module    *scope
	loopDepth int
	globals   []pendingGlobal
	diags     []diag.Diagnostic
}

// Analyze checks a program and returns its diagnostics.
func Analyze(program *ast.Program) []diag.Diagnostic {
	a := &analyzer{}
	a.module = newScope(scopeModule, nil)
	a.scope = a.module
	for _, s := range program.Body {
		a.stmt(s)
	}
	// global declarations are checked after the whole module is seen,
	// so a later module-level binding still satisfies them
	for _, g := range a.globals {
		if _, found := a.module.symbols[g.name]; !found {
			a.reportAt(g.line, g.col, diag.SevWarning, "GLOBAL_UNKNOWN_NAME", g.name)
		}
	}
	return a.diags
}

func (a *analyzer) report(n ast.Node, severity diag.Severity, key, name string) {
	line, col := n.Pos()
	a.reportAt(line, col, severity, key, name)
}

func (a *analyzer) reportAt(line, col int, severity diag.Severity, key, name string) {
	d := diag.Diagnostic{Key: key, Line: line, Col: col, Severity: severity}
	if name != "" {
		d.Placeholders = map[string]string{"name": name}
	}
	a.diags = append(a.diags, d)
}

func (a *analyzer) push(kind scopeKind) {
	a.scope = newScope(kind, a.scope)
}

func (a *analyzer) pop() {
	a.scope = a.scope.parent
}

// lookup resolves a name through the scope chain. Class attributes are
// visible to the class body and to block scopes nested in it, but not
// across a function or class boundary: a function nested in a class
// does not see the class attributes.
func (a *analyzer) lookup(name string) *Symbol {
	if a.scope.globals[name] {
		return a.module.symbols[name]
	}
	crossed := false
	for s := a.scope; s != nil; s = s.parent {
		if s.kind == scopeClass && crossed {
			continue
		}
		if sym, found := s.symbols[name]; found {
			return sym
		}
		if s.kind == scopeFunction || s.kind == scopeClass {
			crossed = true
		}
	}
	return nil
}

// bindTarget places a binding in the scope an assignment to name
// affects, honoring global and local declarations.
func (a *analyzer) bindTarget(n ast.Node, name string, kind BindKind) {
	if a.scope.globals[name] {
		a.bindIn(a.module, n, name, kind)
		return
	}
	if a.scope.locals[name] {
		if s := a.enclosingFunctionWith(name); s != nil {
			a.bindIn(s, n, name, kind)
			return
		}
	}
	a.bindIn(a.scope, n, name, kind)
}

func (a *analyzer) bindIn(s *scope, n ast.Node, name string, kind BindKind) {
	line, col := n.Pos()
	s.symbols[name] = &Symbol{Name: name, Kind: kind, Line: line, Col: col}
}

// declare is the let/const path: a duplicate in the same scope is an
// error, shadowing an outer binding is not.
func (a *analyzer) declare(n ast.Node, name string, kind BindKind) {
	if _, found := a.scope.symbols[name]; found {
		a.report(n, diag.SevError, "DUPLICATE_DEFINITION", name)
		return
	}
	a.bindIn(a.scope, n, name, kind)
}

func (a *analyzer) enclosingFunction() *scope {
	for s := a.scope; s != nil; s = s.parent {
		if s.kind == scopeFunction {
			return s
		}
	}
	return nil
}

// enclosingFunctionWith finds the nearest function scope outside the
// current function that already binds name; the current function's own
// scope does not count.
func (a *analyzer) enclosingFunctionWith(name string) *scope {
	inner := a.enclosingFunction()
	started := inner == nil
	for s := a.scope; s != nil; s = s.parent {
		if s.kind != scopeFunction {
			continue
		}
		if !started {
			started = s == inner
			continue
		}
		if _, found := s.symbols[name]; found {
			return s
		}
	}
	return nil
}
