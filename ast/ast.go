// Package ast defines the canonical, language-agnostic syntax tree.
//
// The node set is closed: consumers switch exhaustively over the
// variants below and treat an unknown node as an internal error. All
// surface keywords are gone at this level; only concepts remain, so
// trees built from different source languages compare structurally
// equal when the programs agree.
package ast

// Base carries the source position every node records. Line and Col
// are 1-based; 0 means the position is unknown.
type Base struct {
	Line, Col int
}

// Pos returns the node position.
func (b Base) Pos() (line, col int) {
	return b.Line, b.Col
}

// Node is implemented by every tree node.
type Node interface {
	Pos() (line, col int)
}

// Expr is implemented by expression nodes.
type Expr interface {
	Node
	exprNode()
}

// Stmt is implemented by statement nodes.
type Stmt interface {
	Node
	stmtNode()
}

// Program is the tree root.
type Program struct {
	Base
	Body []Stmt
}

// --- literals ---

// NumberLit holds the canonical ASCII numeral text.
type NumberLit struct {
	Base
	Value string
}

type StringLit struct {
	Base
	Value string
}

// FChunk is one piece of an FStringLit: a literal run when Expr is
// nil, an interpolated expression otherwise.
type FChunk struct {
	Literal string
	Expr    Expr
}

type FStringLit struct {
	Base
	Chunks []FChunk
}

// DateLit holds the text between date brackets, unparsed.
type DateLit struct {
	Base
	Value string
}

type BoolLit struct {
	Base
	Value bool
}

type NoneLit struct {
	Base
}

type TupleLit struct {
	Base
	Items []Expr
}

type ListLit struct {
	Base
	Items []Expr
}

type SetLit struct {
	Base
	Items []Expr
}

// DictItem is one dict entry; a nil Key marks a **unpack entry.
type DictItem struct {
	Key   Expr
	Value Expr
}

type DictLit struct {
	Base
	Items []DictItem
}

// --- expressions ---

type Ident struct {
	Base
	Name string
}

type Binary struct {
	Base
	Op          string
	Left, Right Expr
}

type Unary struct {
	Base
	Op      string
	Operand Expr
}

// BoolOp is an "and"/"or" chain; Values holds two or more operands.
type BoolOp struct {
	Base
	Op     string
	Values []Expr
}

// Compare is one comparison chain: Left, then pairwise operators and
// right operands. len(Ops) == len(Rights) >= 1.
type Compare struct {
	Base
	Left   Expr
	Ops    []string
	Rights []Expr
}

// Arg is one call argument. Unpack is "", "*" or "**"; Name is set
// for keyword arguments.
type Arg struct {
	Name   string
	Unpack string
	Value  Expr
}

type Call struct {
	Base
	Func Expr
	Args []Arg
}

type Attribute struct {
	Base
	Value Expr
	Name  string
}

type Index struct {
	Base
	Value Expr
	Sub   Expr
}

// SliceExpr appears only as the Sub of an Index; any bound may be nil.
type SliceExpr struct {
	Base
	Start, Stop, Step Expr
}

// ParamKind distinguishes ordinary parameters from variadic
// collectors and the bare separator markers.
type ParamKind int

const (
	ParamPlain      ParamKind = iota
	ParamStar                 // *args
	ParamDoubleStar           // **kwargs
	ParamStarMark             // bare * separator
	ParamSlashMark            // bare / separator
)

// Param is one formal parameter.
type Param struct {
	Name       string
	Kind       ParamKind
	Annotation Expr
	Default    Expr
}

type Lambda struct {
	Base
	Params []Param
	Body   Expr
}

type YieldExpr struct {
	Base
	Value Expr
	From  bool
}

type AwaitExpr struct {
	Base
	Value Expr
}

// Conditional is "then if cond else other".
type Conditional struct {
	Base
	Cond, Then, Else Expr
}

// Named is a walrus binding.
type Named struct {
	Base
	Target *Ident
	Value  Expr
}

type Starred struct {
	Base
	Value Expr
}

// CompClause is one "for target in iter [if cond]..." clause of a
// comprehension.
type CompClause struct {
	Target Expr
	Iter   Expr
	Conds  []Expr
	Async  bool
}

type ListComp struct {
	Base
	Elt     Expr
	Clauses []CompClause
}

type SetComp struct {
	Base
	Elt     Expr
	Clauses []CompClause
}

type GenExp struct {
	Base
	Elt     Expr
	Clauses []CompClause
}

type DictComp struct {
	Base
	Key, Value Expr
	Clauses    []CompClause
}

// --- simple statements ---

// VarDecl is a let/const declaration. Annotation and Value may be nil
// for let; const always has a value.
type VarDecl struct {
	Base
	Const      bool
	Name       string
	Annotation Expr
	Value      Expr
}

// Assign covers plain and chained assignment: every target gets Value.
type Assign struct {
	Base
	Targets []Expr
	Value   Expr
}

// AugAssign is "target op= value"; Op holds the operator without "=".
type AugAssign struct {
	Base
	Target Expr
	Op     string
	Value  Expr
}

// AnnAssign is "target: annotation [= value]".
type AnnAssign struct {
	Base
	Target     Expr
	Annotation Expr
	Value      Expr
}

type ExprStmt struct {
	Base
	Value Expr
}

type Pass struct {
	Base
}

type Return struct {
	Base
	Value Expr
}

type Break struct {
	Base
}

type Continue struct {
	Base
}

type Raise struct {
	Base
	Exc  Expr
	From Expr
}

type Delete struct {
	Base
	Targets []Expr
}

type Global struct {
	Base
	Names []string
}

// Local declares names function-local, shadowing outer bindings.
type Local struct {
	Base
	Names []string
}

type Assert struct {
	Base
	Cond Expr
	Msg  Expr
}

// ImportItem is one imported module or name with an optional alias.
type ImportItem struct {
	Path  string
	Alias string
}

type Import struct {
	Base
	Items []ImportItem
}

type FromImport struct {
	Base
	Module   string
	Items    []ImportItem
	Wildcard bool
}

// --- compound statements ---

// If holds one condition and its suites; an elif chain nests in Else.
type If struct {
	Base
	Cond Expr
	Body []Stmt
	Else []Stmt
}

type While struct {
	Base
	Cond Expr
	Body []Stmt
	Else []Stmt
}

type For struct {
	Base
	Target Expr
	Iter   Expr
	Body   []Stmt
	Else   []Stmt
	Async  bool
}

type FuncDef struct {
	Base
	Name       string
	Params     []Param
	Returns    Expr
	Body       []Stmt
	Decorators []Expr
	Async      bool
}

type ClassDef struct {
	Base
	Name       string
	Bases      []Expr
	Keywords   []Arg
	Body       []Stmt
	Decorators []Expr
}

// Handler is one except clause; a nil Type catches everything.
type Handler struct {
	Base
	Type Expr
	Name string
	Body []Stmt
}

type Try struct {
	Base
	Body     []Stmt
	Handlers []Handler
	Else     []Stmt
	Finally  []Stmt
}

// WithItem is one "context [as target]" item.
type WithItem struct {
	Context Expr
	Target  Expr
}

type With struct {
	Base
	Items []WithItem
	Body  []Stmt
	Async bool
}

// Pattern is implemented by match-case pattern nodes.
type Pattern interface {
	Node
	patternNode()
}

// LiteralPat matches a literal value.
type LiteralPat struct {
	Base
	Value Expr
}

// CapturePat binds the subject to a name.
type CapturePat struct {
	Base
	Name string
}

// WildcardPat matches anything without binding.
type WildcardPat struct {
	Base
}

type OrPat struct {
	Base
	Alts []Pattern
}

type AsPat struct {
	Base
	Pattern Pattern
	Name    string
}

type SequencePat struct {
	Base
	Items []Pattern
}

// MappingPat matches dict shapes; Keys and Values run in parallel.
type MappingPat struct {
	Base
	Keys   []Expr
	Values []Pattern
}

// ClassPatKeyword is one "name=pattern" argument of a ClassPat.
type ClassPatKeyword struct {
	Name    string
	Pattern Pattern
}

type ClassPat struct {
	Base
	Class    Expr
	Args     []Pattern
	Keywords []ClassPatKeyword
}

// MatchCase is one case clause with an optional guard.
type MatchCase struct {
	Base
	Pattern Pattern
	Guard   Expr
	Body    []Stmt
}

type Match struct {
	Base
	Subject Expr
	Cases   []MatchCase
}

func (*NumberLit) exprNode()   {}
func (*StringLit) exprNode()   {}
func (*FStringLit) exprNode()  {}
func (*DateLit) exprNode()     {}
func (*BoolLit) exprNode()     {}
func (*NoneLit) exprNode()     {}
func (*TupleLit) exprNode()    {}
func (*ListLit) exprNode()     {}
func (*SetLit) exprNode()      {}
func (*DictLit) exprNode()     {}
func (*Ident) exprNode()       {}
func (*Binary) exprNode()      {}
func (*Unary) exprNode()       {}
func (*BoolOp) exprNode()      {}
func (*Compare) exprNode()     {}
func (*Call) exprNode()        {}
func (*Attribute) exprNode()   {}
func (*Index) exprNode()       {}
func (*SliceExpr) exprNode()   {}
func (*Lambda) exprNode()      {}
func (*YieldExpr) exprNode()   {}
func (*AwaitExpr) exprNode()   {}
func (*Conditional) exprNode() {}
func (*Named) exprNode()       {}
func (*Starred) exprNode()     {}
func (*ListComp) exprNode()    {}
func (*SetComp) exprNode()     {}
func (*GenExp) exprNode()      {}
func (*DictComp) exprNode()    {}

func (*VarDecl) stmtNode()    {}
func (*Assign) stmtNode()     {}
func (*AugAssign) stmtNode()  {}
func (*AnnAssign) stmtNode()  {}
func (*ExprStmt) stmtNode()   {}
func (*Pass) stmtNode()       {}
func (*Return) stmtNode()     {}
func (*Break) stmtNode()      {}
func (*Continue) stmtNode()   {}
func (*Raise) stmtNode()      {}
func (*Delete) stmtNode()     {}
func (*Global) stmtNode()     {}
func (*Local) stmtNode()      {}
func (*Assert) stmtNode()     {}
func (*Import) stmtNode()     {}
func (*FromImport) stmtNode() {}
func (*If) stmtNode()         {}
func (*While) stmtNode()      {}
func (*For) stmtNode()        {}
func (*FuncDef) stmtNode()    {}
func (*ClassDef) stmtNode()   {}
func (*Try) stmtNode()        {}
func (*With) stmtNode()       {}
func (*Match) stmtNode()      {}

func (*LiteralPat) patternNode()  {}
func (*CapturePat) patternNode()  {}
func (*WildcardPat) patternNode() {}
func (*OrPat) patternNode()       {}
func (*AsPat) patternNode()       {}
func (*SequencePat) patternNode() {}
func (*MappingPat) patternNode()  {}
func (*ClassPat) patternNode()    {}
