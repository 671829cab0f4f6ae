package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// Print renders a node as a stable s-expression. The rendering carries
// no source positions, so two trees print equal exactly when they are
// structurally equal; this is what cross-language comparison relies on.
func Print(n Node) string {
	var b strings.Builder
	printNode(&b, n)
	return b.String()
}

func printNode(b *strings.Builder, n Node) {
	switch n := n.(type) {
	case *Program:
		open(b, "program")
		printStmts(b, n.Body)
		b.WriteByte(')')

	case *NumberLit:
		fmt.Fprintf(b, "(num %s)", n.Value)
	case *StringLit:
		fmt.Fprintf(b, "(str %s)", strconv.Quote(n.Value))
	case *DateLit:
		fmt.Fprintf(b, "(date %s)", n.Value)
	case *BoolLit:
		fmt.Fprintf(b, "(bool %v)", n.Value)
	case *NoneLit:
		b.WriteString("(none)")
	case *FStringLit:
		open(b, "fstr")
		for _, c := range n.Chunks {
			if c.Expr == nil {
				fmt.Fprintf(b, " %s", strconv.Quote(c.Literal))
			} else {
				b.WriteByte(' ')
				printNode(b, c.Expr)
			}
		}
		b.WriteByte(')')

	case *TupleLit:
		printSeq(b, "tuple", n.Items)
	case *ListLit:
		printSeq(b, "list", n.Items)
	case *SetLit:
		printSeq(b, "set", n.Items)
	case *DictLit:
		open(b, "dict")
		for _, it := range n.Items {
			if it.Key == nil {
				b.WriteString(" (unpack ")
				printNode(b, it.Value)
			} else {
				b.WriteString(" (item ")
				printNode(b, it.Key)
				b.WriteByte(' ')
				printNode(b, it.Value)
			}
			b.WriteByte(')')
		}
		b.WriteByte(')')

	case *Ident:
		fmt.Fprintf(b, "(id %s)", n.Name)
	case *Binary:
		open(b, "bin "+n.Op)
		printExprs(b, n.Left, n.Right)
		b.WriteByte(')')
	case *Unary:
		open(b, "unary "+n.Op)
		printExprs(b, n.Operand)
		b.WriteByte(')')
	case *BoolOp:
		open(b, n.Op)
		printExprs(b, n.Values...)
		b.WriteByte(')')
	case *Compare:
		open(b, "cmp")
		printExprs(b, n.Left)
		for i, op := range n.Ops {
			fmt.Fprintf(b, " (%s ", op)
			printNode(b, n.Rights[i])
			b.WriteByte(')')
		}
		b.WriteByte(')')

	case *Call:
		open(b, "call")
		printExprs(b, n.Func)
		for _, a := range n.Args {
			b.WriteString(" (arg")
			if a.Unpack != "" {
				b.WriteString(" " + a.Unpack)
			}
			if a.Name != "" {
				b.WriteString(" " + a.Name + "=")
			}
			b.WriteByte(' ')
			printNode(b, a.Value)
			b.WriteByte(')')
		}
		b.WriteByte(')')

	case *Attribute:
		open(b, "attr")
		printExprs(b, n.Value)
		b.WriteString(" " + n.Name + ")")
	case *Index:
		open(b, "index")
		printExprs(b, n.Value, n.Sub)
		b.WriteByte(')')
	case *SliceExpr:
		open(b, "slice")
		printOpt(b, n.Start)
		printOpt(b, n.Stop)
		printOpt(b, n.Step)
		b.WriteByte(')')

	case *Lambda:
		open(b, "lambda ")
		printParams(b, n.Params)
		b.WriteByte(' ')
		printNode(b, n.Body)
		b.WriteByte(')')
	case *YieldExpr:
		name := "yield"
		if n.From {
			name = "yield-from"
		}
		open(b, name)
		printOpt(b, n.Value)
		b.WriteByte(')')
	case *AwaitExpr:
		open(b, "await")
		printExprs(b, n.Value)
		b.WriteByte(')')
	case *Conditional:
		open(b, "cond")
		printExprs(b, n.Cond, n.Then, n.Else)
		b.WriteByte(')')
	case *Named:
		open(b, "named "+n.Target.Name)
		printExprs(b, n.Value)
		b.WriteByte(')')
	case *Starred:
		open(b, "starred")
		printExprs(b, n.Value)
		b.WriteByte(')')

	case *ListComp:
		printComp(b, "listcomp", []Expr{n.Elt}, n.Clauses)
	case *SetComp:
		printComp(b, "setcomp", []Expr{n.Elt}, n.Clauses)
	case *GenExp:
		printComp(b, "genexp", []Expr{n.Elt}, n.Clauses)
	case *DictComp:
		printComp(b, "dictcomp", []Expr{n.Key, n.Value}, n.Clauses)

	case *VarDecl:
		name := "let"
		if n.Const {
			name = "const"
		}
		open(b, name+" "+n.Name)
		printOpt(b, n.Annotation)
		printOpt(b, n.Value)
		b.WriteByte(')')
	case *Assign:
		open(b, "assign (targets")
		printExprs(b, n.Targets...)
		b.WriteByte(')')
		printExprs(b, n.Value)
		b.WriteByte(')')
	case *AugAssign:
		open(b, "aug "+n.Op)
		printExprs(b, n.Target, n.Value)
		b.WriteByte(')')
	case *AnnAssign:
		open(b, "ann-assign")
		printExprs(b, n.Target, n.Annotation)
		printOpt(b, n.Value)
		b.WriteByte(')')
	case *ExprStmt:
		open(b, "expr")
		printExprs(b, n.Value)
		b.WriteByte(')')
	case *Pass:
		b.WriteString("(pass)")
	case *Return:
		open(b, "return")
		printOpt(b, n.Value)
		b.WriteByte(')')
	case *Break:
		b.WriteString("(break)")
	case *Continue:
		b.WriteString("(continue)")
	case *Raise:
		open(b, "raise")
		printOpt(b, n.Exc)
		printOpt(b, n.From)
		b.WriteByte(')')
	case *Delete:
		printSeq(b, "del", n.Targets)
	case *Global:
		fmt.Fprintf(b, "(global %s)", strings.Join(n.Names, " "))
	case *Local:
		fmt.Fprintf(b, "(local %s)", strings.Join(n.Names, " "))
	case *Assert:
		open(b, "assert")
		printExprs(b, n.Cond)
		printOpt(b, n.Msg)
		b.WriteByte(')')

	case *Import:
		open(b, "import")
		printImportItems(b, n.Items)
		b.WriteByte(')')
	case *FromImport:
		open(b, "from "+n.Module)
		if n.Wildcard {
			b.WriteString(" *")
		} else {
			printImportItems(b, n.Items)
		}
		b.WriteByte(')')

	case *If:
		open(b, "if")
		printExprs(b, n.Cond)
		printSuite(b, "then", n.Body)
		printOptSuite(b, "else", n.Else)
		b.WriteByte(')')
	case *While:
		open(b, "while")
		printExprs(b, n.Cond)
		printSuite(b, "do", n.Body)
		printOptSuite(b, "else", n.Else)
		b.WriteByte(')')
	case *For:
		name := "for"
		if n.Async {
			name = "async-for"
		}
		open(b, name)
		printExprs(b, n.Target, n.Iter)
		printSuite(b, "do", n.Body)
		printOptSuite(b, "else", n.Else)
		b.WriteByte(')')

	case *FuncDef:
		name := "def"
		if n.Async {
			name = "async-def"
		}
		open(b, name+" "+n.Name+" ")
		printParams(b, n.Params)
		if n.Returns != nil {
			b.WriteString(" (returns ")
			printNode(b, n.Returns)
			b.WriteByte(')')
		}
		printDecorators(b, n.Decorators)
		printSuite(b, "body", n.Body)
		b.WriteByte(')')

	case *ClassDef:
		open(b, "class "+n.Name)
		if len(n.Bases) > 0 {
			b.WriteString(" (bases")
			printExprs(b, n.Bases...)
			b.WriteByte(')')
		}
		for _, kw := range n.Keywords {
			fmt.Fprintf(b, " (kw %s= ", kw.Name)
			printNode(b, kw.Value)
			b.WriteByte(')')
		}
		printDecorators(b, n.Decorators)
		printSuite(b, "body", n.Body)
		b.WriteByte(')')

	case *Try:
		open(b, "try")
		printSuite(b, "body", n.Body)
		for i := range n.Handlers {
			h := &n.Handlers[i]
			b.WriteString(" (except")
			if h.Type != nil {
				b.WriteByte(' ')
				printNode(b, h.Type)
			}
			if h.Name != "" {
				b.WriteString(" as " + h.Name)
			}
			printStmts(b, h.Body)
			b.WriteByte(')')
		}
		printOptSuite(b, "else", n.Else)
		printOptSuite(b, "finally", n.Finally)
		b.WriteByte(')')

	case *With:
		name := "with"
		if n.Async {
			name = "async-with"
		}
		open(b, name)
		for _, it := range n.Items {
			b.WriteString(" (item ")
			printNode(b, it.Context)
			if it.Target != nil {
				b.WriteString(" as ")
				printNode(b, it.Target)
			}
			b.WriteByte(')')
		}
		printSuite(b, "body", n.Body)
		b.WriteByte(')')

	case *Match:
		open(b, "match")
		printExprs(b, n.Subject)
		for i := range n.Cases {
			c := &n.Cases[i]
			b.WriteString(" (case ")
			printNode(b, c.Pattern)
			if c.Guard != nil {
				b.WriteString(" (guard ")
				printNode(b, c.Guard)
				b.WriteByte(')')
			}
			printStmts(b, c.Body)
			b.WriteByte(')')
		}
		b.WriteByte(')')

	case *LiteralPat:
		open(b, "pat-lit")
		printExprs(b, n.Value)
		b.WriteByte(')')
	case *CapturePat:
		fmt.Fprintf(b, "(pat-bind %s)", n.Name)
	case *WildcardPat:
		b.WriteString("(pat-any)")
	case *OrPat:
		open(b, "pat-or")
		for _, p := range n.Alts {
			b.WriteByte(' ')
			printNode(b, p)
		}
		b.WriteByte(')')
	case *AsPat:
		open(b, "pat-as "+n.Name)
		b.WriteByte(' ')
		printNode(b, n.Pattern)
		b.WriteByte(')')
	case *SequencePat:
		open(b, "pat-seq")
		for _, p := range n.Items {
			b.WriteByte(' ')
			printNode(b, p)
		}
		b.WriteByte(')')
	case *MappingPat:
		open(b, "pat-map")
		for i, k := range n.Keys {
			b.WriteString(" (entry ")
			printNode(b, k)
			b.WriteByte(' ')
			printNode(b, n.Values[i])
			b.WriteByte(')')
		}
		b.WriteByte(')')
	case *ClassPat:
		open(b, "pat-class")
		printExprs(b, n.Class)
		for _, p := range n.Args {
			b.WriteByte(' ')
			printNode(b, p)
		}
		for _, kw := range n.Keywords {
			fmt.Fprintf(b, " (%s= ", kw.Name)
			printNode(b, kw.Pattern)
			b.WriteByte(')')
		}
		b.WriteByte(')')

	default:
		panic(fmt.Sprintf("unilang/ast: internal error: unhandled node %T", n))
	}
}

func open(b *strings.Builder, name string) {
	b.WriteByte('(')
	b.WriteString(name)
}

func printExprs(b *strings.Builder, exprs ...Expr) {
	for _, e := range exprs {
		b.WriteByte(' ')
		printNode(b, e)
	}
}

// printOpt renders a possibly absent child as "_" to keep arity stable.
func printOpt(b *strings.Builder, e Expr) {
	if e == nil {
		b.WriteString(" _")
		return
	}
	b.WriteByte(' ')
	printNode(b, e)
}

func printSeq(b *strings.Builder, name string, items []Expr) {
	open(b, name)
	printExprs(b, items...)
	b.WriteByte(')')
}

func printStmts(b *strings.Builder, stmts []Stmt) {
	for _, s := range stmts {
		b.WriteByte(' ')
		printNode(b, s)
	}
}

func printSuite(b *strings.Builder, name string, stmts []Stmt) {
	b.WriteString(" (" + name)
	printStmts(b, stmts)
	b.WriteByte(')')
}

func printOptSuite(b *strings.Builder, name string, stmts []Stmt) {
	if len(stmts) > 0 {
		printSuite(b, name, stmts)
	}
}

func printParams(b *strings.Builder, params []Param) {
	b.WriteString("(params")
	for _, p := range params {
		b.WriteString(" (")
		switch p.Kind {
		case ParamStar:
			b.WriteString("*" + p.Name)
		case ParamDoubleStar:
			b.WriteString("**" + p.Name)
		case ParamStarMark:
			b.WriteString("*")
		case ParamSlashMark:
			b.WriteString("/")
		default:
			b.WriteString(p.Name)
		}
		if p.Annotation != nil {
			b.WriteString(" : ")
			printNode(b, p.Annotation)
		}
		if p.Default != nil {
			b.WriteString(" = ")
			printNode(b, p.Default)
		}
		b.WriteByte(')')
	}
	b.WriteByte(')')
}

func printComp(b *strings.Builder, name string, elts []Expr, clauses []CompClause) {
	open(b, name)
	printExprs(b, elts...)
	for _, c := range clauses {
		if c.Async {
			b.WriteString(" (async-for")
		} else {
			b.WriteString(" (for")
		}
		printExprs(b, c.Target, c.Iter)
		for _, cond := range c.Conds {
			b.WriteString(" (if ")
			printNode(b, cond)
			b.WriteByte(')')
		}
		b.WriteByte(')')
	}
	b.WriteByte(')')
}

func printImportItems(b *strings.Builder, items []ImportItem) {
	for _, it := range items {
		b.WriteString(" " + it.Path)
		if it.Alias != "" {
			b.WriteString(" as " + it.Alias)
		}
	}
}

func printDecorators(b *strings.Builder, decorators []Expr) {
	for _, d := range decorators {
		b.WriteString(" (decorator ")
		printNode(b, d)
		b.WriteByte(')')
	}
}
