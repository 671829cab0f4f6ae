package semantic

import (
	"testing"

	"github.com/unilang-dev/unilang/ast"
	"github.com/unilang-dev/unilang/concept"
	"github.com/unilang-dev/unilang/diag"
	"github.com/unilang-dev/unilang/lexer"
	"github.com/unilang-dev/unilang/parser"
)

func analyze(t *testing.T, text string) []diag.Diagnostic {
	t.Helper()
	tokens, e := lexer.New(concept.DefaultRegistry()).Tokenize([]byte(text), "test", "en")
	if e != nil {
		t.Fatalf("Tokenize(%q): %s", text, e)
	}
	prog, e := parser.Parse(tokens, "en")
	if e != nil {
		t.Fatalf("Parse(%q): %s", text, e)
	}
	return Analyze(prog)
}

func assertClean(t *testing.T, text string) {
	t.Helper()
	if ds := analyze(t, text); len(ds) != 0 {
		t.Errorf("expecting no diagnostics for %q, got %v", text, ds)
	}
}

func assertKeys(t *testing.T, text string, keys ...string) {
	t.Helper()
	ds := analyze(t, text)
	if len(ds) != len(keys) {
		t.Errorf("expecting %d diagnostics for %q, got %v", len(keys), text, ds)
		return
	}
	for i, key := range keys {
		if ds[i].Key != key {
			t.Errorf("diagnostic #%d for %q: expecting %s, got %s", i, text, key, ds[i].Key)
		}
	}
}

func TestCleanPrograms(t *testing.T) {
	samples := []string{
		"let x = 2\nlet y = 3\nprint(x + y)\n",
		"def f(a, b=2):\n\treturn a + b\nf(1)\n",
		"def fact(n):\n\tif n <= 1:\n\t\treturn 1\n\treturn n * fact(n - 1)\n",
		"for i in range(10):\n\tif i > 5:\n\t\tbreak\n\tcontinue\n",
		"let xs = [1, 2, 3]\nlet ys = [x * x for x in xs]\n",
		"async def g():\n\tpass\nasync def f():\n\tawait g()\n",
		"class C:\n\tdef m(self):\n\t\treturn self\n",
		"try:\n\tpass\nexcept ValueError as e:\n\tprint(e)\n",
		"import os.path\nprint(os)\n",
		"from math import sqrt as root\nroot(2)\n",
		"lambda a, b: a + b\n",
		"let s = \"hi\"\nprint(f\"say {s}\")\n",
	}
	for _, text := range samples {
		assertClean(t, text)
	}
}

func TestUndefinedName(t *testing.T) {
	ds := analyze(t, "let x = 2\nprint(x + y)\n")
	if len(ds) != 1 {
		t.Fatalf("expecting exactly one diagnostic, got %v", ds)
	}
	if ds[0].Key != "UNDEFINED_NAME" || ds[0].Placeholders["name"] != "y" {
		t.Fatalf("unexpected diagnostic %v", ds[0])
	}
	if ds[0].Severity != diag.SevError {
		t.Fatal("undefined name must be an error")
	}
}

func TestDuplicateDefinition(t *testing.T) {
	assertKeys(t, "let x = 1\nlet x = 2\n", "DUPLICATE_DEFINITION")
	assertKeys(t, "def f(a, a):\n\tpass\n", "DUPLICATE_DEFINITION")
	// shadowing in an inner scope is not a duplicate
	assertClean(t, "let x = 1\ndef f():\n\tlet x = 2\n\treturn x\nf()\n")
}

func TestConstReassignment(t *testing.T) {
	assertKeys(t, "const K = 1\nK = 2\n", "CONST_REASSIGNMENT")
	assertKeys(t, "const K = 1\nK += 2\n", "CONST_REASSIGNMENT")
	assertClean(t, "const K = 1\nlet x = K + 1\nx = 2\n")
}

func TestLoopContext(t *testing.T) {
	assertKeys(t, "break\n", "BREAK_OUTSIDE_LOOP")
	assertKeys(t, "continue\n", "CONTINUE_OUTSIDE_LOOP")
	// a function body resets the loop context
	assertKeys(t, "while True:\n\tdef f():\n\t\tbreak\n", "BREAK_OUTSIDE_LOOP")
	assertClean(t, "while True:\n\tbreak\n")
}

func TestFunctionContext(t *testing.T) {
	assertKeys(t, "return 1\n", "RETURN_OUTSIDE_FUNCTION")
	assertKeys(t, "yield 1\n", "YIELD_OUTSIDE_FUNCTION")
	assertClean(t, "def f():\n\tyield 1\n")
}

func TestAwaitContext(t *testing.T) {
	assertKeys(t, "def f():\n\tawait g()\n",
		"AWAIT_OUTSIDE_ASYNC", "UNDEFINED_NAME")
	assertClean(t, "async def f():\n\tawait input()\n")
}

func TestGlobalDeclaration(t *testing.T) {
	// assignment through the declaration binds at module level
	assertClean(t, "def f():\n\tglobal n\n\tn = 1\nf()\nprint(n)\n")
	// a later module-level binding still satisfies the declaration
	assertClean(t, "def f():\n\tglobal n\nlet n = 0\nf()\n")
	ds := analyze(t, "def f():\n\tglobal missing\nf()\n")
	if len(ds) != 1 || ds[0].Key != "GLOBAL_UNKNOWN_NAME" {
		t.Fatalf("expecting GLOBAL_UNKNOWN_NAME, got %v", ds)
	}
	if ds[0].Severity != diag.SevWarning {
		t.Fatal("an unbound global declaration is a warning, not an error")
	}
}

func TestLocalDeclaration(t *testing.T) {
	assertClean(t, "def f():\n\tlet n = 0\n\tdef g():\n\t\tlocal n\n\t\tn = 1\n\tg()\n\treturn n\nf()\n")
	assertKeys(t, "def f():\n\tlocal n\n\tn = 1\nf()\n", "NONLOCAL_NO_BINDING")
}

func TestClassScopeInvisibleToMethods(t *testing.T) {
	// class attributes are not in scope inside a method body
	assertKeys(t, "class C:\n\tlet attr = 1\n\tdef m(self):\n\t\treturn attr\n",
		"UNDEFINED_NAME")
	// but the class body itself sees them
	assertClean(t, "class C:\n\tlet attr = 1\n\tlet twice = attr * 2\n")
}

func TestClassAttributesInNestedBlocks(t *testing.T) {
	// block scopes inside a class body still see the class attributes
	assertClean(t, "class C:\n\tlet attr = 1\n\twith open(\"f\") as f:\n\t\tprint(attr, f)\n")
	assertClean(t, "class C:\n\tlet attr = 1\n\ttry:\n\t\tprint(attr)\n\texcept Exception as e:\n\t\tprint(attr, e)\n")
	// a nested class body does not
	assertKeys(t, "class C:\n\tlet attr = 1\n\tclass D:\n\t\tlet x = attr\n", "UNDEFINED_NAME")
}

func TestComprehensionScope(t *testing.T) {
	// the clause target does not leak out of the comprehension
	assertKeys(t, "let ys = [x for x in range(3)]\nprint(x)\n", "UNDEFINED_NAME")
}

func TestMatchBindings(t *testing.T) {
	assertClean(t, "match input():\n\tcase \"a\" | \"b\":\n\t\tpass\n\tcase [first, second]:\n\t\tprint(first, second)\n\tcase other if len(other) > 0:\n\t\tprint(other)\n\tdefault:\n\t\tpass\n")
}

func TestWalrusBinds(t *testing.T) {
	assertClean(t, "while (line := input()):\n\tprint(line)\n")
}

func TestForTupleTarget(t *testing.T) {
	assertClean(t, "let items = []\nfor k, v in items:\n\tprint(k, v)\n")
}

func TestBuiltinsAreKnown(t *testing.T) {
	assertClean(t, "print(len(str(int(\"4\"))))\n")
}

func TestAnalyzePositions(t *testing.T) {
	ds := analyze(t, "let x = 1\nx = y\n")
	if len(ds) != 1 {
		t.Fatalf("expecting one diagnostic, got %v", ds)
	}
	if ds[0].Line != 2 || ds[0].Col != 5 {
		t.Fatalf("expecting position 2:5, got %d:%d", ds[0].Line, ds[0].Col)
	}
}

func TestAnalyzeNeverFails(t *testing.T) {
	prog := &ast.Program{}
	if ds := Analyze(prog); len(ds) != 0 {
		t.Fatalf("empty program must be clean, got %v", ds)
	}
}
