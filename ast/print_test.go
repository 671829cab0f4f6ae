package ast

import (
	"testing"
)

func TestPrintExpression(t *testing.T) {
	// 2 + 3 * 4
	n := &Binary{Op: "+",
		Left: &NumberLit{Value: "2"},
		Right: &Binary{Op: "*",
			Left:  &NumberLit{Value: "3"},
			Right: &NumberLit{Value: "4"},
		},
	}
	expected := "(bin + (num 2) (bin * (num 3) (num 4)))"
	if got := Print(n); got != expected {
		t.Fatalf("expecting %s, got %s", expected, got)
	}
}

func TestPrintStatement(t *testing.T) {
	n := &Program{Body: []Stmt{
		&VarDecl{Name: "x", Value: &NumberLit{Value: "2"}},
		&If{
			Cond: &Compare{
				Left:   &Ident{Name: "x"},
				Ops:    []string{">"},
				Rights: []Expr{&NumberLit{Value: "1"}},
			},
			Body: []Stmt{&Pass{}},
		},
	}}
	expected := "(program (let x _ (num 2)) (if (cmp (id x) (> (num 1))) (then (pass))))"
	if got := Print(n); got != expected {
		t.Fatalf("expecting %s, got %s", expected, got)
	}
}

func TestPrintIgnoresPositions(t *testing.T) {
	a := &Ident{Base: Base{Line: 1, Col: 1}, Name: "x"}
	b := &Ident{Base: Base{Line: 7, Col: 40}, Name: "x"}
	if Print(a) != Print(b) {
		t.Fatal("positions must not affect the rendering")
	}
}

func TestPrintDistinguishesOptionalChildren(t *testing.T) {
	with := Print(&Return{Value: &NoneLit{}})
	without := Print(&Return{})
	if with == without {
		t.Fatalf("explicit None and absent value must differ: %s", with)
	}
}

type bogusNode struct {
	Base
}

func TestPrintPanicsOnUnknownNode(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expecting panic on unknown node")
		}
	}()
	Print(&bogusNode{})
}
