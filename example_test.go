package unilang_test

import (
	"fmt"

	"github.com/unilang-dev/unilang/ast"
	"github.com/unilang-dev/unilang/compile"
)

func Example() {
	english := `let x = 2
let y = 3
print(x + y)
`
	french := `soit x = 2
soit y = 3
affiche(x + y)
`
	pipeline := compile.New(compile.Options{})

	enUnit, enDiags, e := pipeline.Compile([]byte(english), "en.ul", "en")
	if e != nil {
		fmt.Println(e)
		return
	}
	frUnit, frDiags, e := pipeline.Compile([]byte(french), "fr.ul", "fr")
	if e != nil {
		fmt.Println(e)
		return
	}

	fmt.Println("diagnostics:", len(enDiags)+len(frDiags))
	fmt.Println("same tree:", ast.Print(enUnit.Program) == ast.Print(frUnit.Program))
	fmt.Println(ast.Print(enUnit.Program))
	// Output:
	// diagnostics: 0
	// same tree: true
	// (program (let x _ (num 2)) (let y _ (num 3)) (expr (call (id print) (arg (bin + (id x) (id y))))))
}
