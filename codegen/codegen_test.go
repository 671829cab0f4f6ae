package codegen

import (
	"strings"
	"testing"

	"github.com/unilang-dev/unilang"
	"github.com/unilang-dev/unilang/compile"
)

// gen compiles and renders a program, returning the output without the
// header block (which carries a fresh unit id every run).
func gen(t *testing.T, text, language string) string {
	t.Helper()
	p := compile.New(compile.Options{})
	unit, diags, e := p.Compile([]byte(text), "test", language)
	if e != nil {
		t.Fatalf("Compile(%q): %s", text, e)
	}
	if len(diags) != 0 {
		t.Fatalf("Compile(%q): unexpected diagnostics %v", text, diags)
	}
	out, e := Generate(unit)
	if e != nil {
		t.Fatalf("Generate(%q): %s", text, e)
	}
	_, body, found := strings.Cut(out, "\n\n")
	if !found {
		t.Fatalf("missing header separator in %q", out)
	}
	return body
}

func TestGenerateSimple(t *testing.T) {
	samples := []struct {
		text, expected string
	}{
		{"let x = 2\nprint(x)\n", "x = 2\nprint(x)\n"},
		{"const K = 10\nlet y = K * 2\n", "K = 10\ny = K * 2\n"},
		{"let y = (1 + 2) * 3\n", "y = (1 + 2) * 3\n"},
		{"let z = 2 ** 3 ** 2\n", "z = 2 ** 3 ** 2\n"},
		{"let b = not x and y\nlet x = 0\nlet y = 0\n", "b = not x and y\nx = 0\ny = 0\n"},
		{"let r = 1 < n <= 10\nlet n = 5\n", "r = 1 < n <= 10\nn = 5\n"},
		{"let xs = [1, 2]\nxs[0] += 1\n", "xs = [1, 2]\nxs[0] += 1\n"},
		{"let t = (1,)\n", "t = (1,)\n"},
		{"let s = xs[1:3]\nlet xs = []\n", "s = xs[1:3]\nxs = []\n"},
		{"del x\nlet x = 1\n", "del x\nx = 1\n"},
		{"assert x > 0, \"bad\"\nlet x = 1\n", "assert x > 0, \"bad\"\nx = 1\n"},
	}
	for i, s := range samples {
		// declarations may come after use here; generation does not care
		p := compile.New(compile.Options{})
		unit, _, e := p.Compile([]byte(s.text), "test", "en")
		if e != nil {
			t.Fatalf("sample #%d: Compile: %s", i, e)
		}
		out, e := Generate(unit)
		if e != nil {
			t.Fatalf("sample #%d: Generate: %s", i, e)
		}
		_, body, _ := strings.Cut(out, "\n\n")
		if body != s.expected {
			t.Errorf("sample #%d: expecting %q, got %q", i, s.expected, body)
		}
	}
}

func TestGenerateCompound(t *testing.T) {
	text := "def clamp(v, lo=0, hi=10):\n" +
		"\tif v < lo:\n\t\treturn lo\n" +
		"\telif v > hi:\n\t\treturn hi\n" +
		"\telse:\n\t\treturn v\n"
	expected := "def clamp(v, lo=0, hi=10):\n" +
		"    if v < lo:\n        return lo\n" +
		"    elif v > hi:\n        return hi\n" +
		"    else:\n        return v\n"
	if got := gen(t, text, "en"); got != expected {
		t.Errorf("expecting:\n%s\ngot:\n%s", expected, got)
	}
}

func TestGenerateLoops(t *testing.T) {
	text := "let total = 0\nfor i in range(5):\n\tif i == 3:\n\t\tcontinue\n\ttotal += i\n" +
		"while total > 0:\n\ttotal -= 1\n"
	expected := "total = 0\nfor i in range(5):\n    if i == 3:\n        continue\n    total += i\n" +
		"while total > 0:\n    total -= 1\n"
	if got := gen(t, text, "en"); got != expected {
		t.Errorf("expecting:\n%s\ngot:\n%s", expected, got)
	}
}

func TestGenerateLocalBecomesNonlocal(t *testing.T) {
	text := "def f():\n\tlet n = 0\n\tdef g():\n\t\tlocal n\n\t\tn = 1\n\tg()\n\treturn n\n"
	expected := "def f():\n    n = 0\n    def g():\n        nonlocal n\n        n = 1\n    g()\n    return n\n"
	if got := gen(t, text, "en"); got != expected {
		t.Errorf("expecting:\n%s\ngot:\n%s", expected, got)
	}
}

func TestGenerateDateLiteral(t *testing.T) {
	p := compile.New(compile.Options{})
	unit, diags, e := p.Compile([]byte("let d = 〔2024-01-15〕\n"), "test", "en")
	if e != nil || len(diags) != 0 {
		t.Fatalf("Compile: %v %v", e, diags)
	}
	out, e := Generate(unit)
	if e != nil {
		t.Fatalf("Generate: %s", e)
	}
	if !strings.Contains(out, "import datetime\n") {
		t.Error("expecting a datetime import")
	}
	if !strings.Contains(out, `d = datetime.date.fromisoformat("2024-01-15")`) {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestGenerateFString(t *testing.T) {
	text := "let name = \"ada\"\nprint(f\"hi {name}!\")\n"
	expected := "name = \"ada\"\nprint(f\"hi {name}!\")\n"
	if got := gen(t, text, "en"); got != expected {
		t.Errorf("expecting %q, got %q", expected, got)
	}
}

func TestGenerateMatch(t *testing.T) {
	text := "match input():\n" +
		"\tcase \"a\" | \"b\":\n\t\tpass\n" +
		"\tcase other if len(other) > 1:\n\t\tprint(other)\n" +
		"\tdefault:\n\t\tpass\n"
	expected := "match input():\n" +
		"    case \"a\" | \"b\":\n        pass\n" +
		"    case other if len(other) > 1:\n        print(other)\n" +
		"    case _:\n        pass\n"
	if got := gen(t, text, "en"); got != expected {
		t.Errorf("expecting:\n%s\ngot:\n%s", expected, got)
	}
}

func TestGenerateAsync(t *testing.T) {
	text := "async def fetch(url):\n\tawait url\n"
	expected := "async def fetch(url):\n    await url\n"
	if got := gen(t, text, "en"); got != expected {
		t.Errorf("expecting %q, got %q", expected, got)
	}
}

func TestGenerateIsLanguageIndependent(t *testing.T) {
	en := gen(t, "let x = 2\nif x > 1:\n\tprint(x)\n", "en")
	fr := gen(t, "soit x = 2\nsi x > 1:\n\taffiche(x)\n", "fr")
	if en != fr {
		t.Errorf("outputs diverge:\n%s\n%s", en, fr)
	}
}

func TestGenerateHeader(t *testing.T) {
	p := compile.New(compile.Options{})
	unit, _, e := p.Compile([]byte("pass\n"), "demo.ul", "en")
	if e != nil {
		t.Fatalf("Compile: %s", e)
	}
	out, e := Generate(unit)
	if e != nil {
		t.Fatalf("Generate: %s", e)
	}
	if !strings.Contains(out, "from demo.ul (en)") {
		t.Errorf("header misses source info:\n%s", out)
	}
	if !strings.Contains(out, unit.ID.String()) {
		t.Errorf("header misses the unit id:\n%s", out)
	}
}

func TestGenerateRejectsEmptyUnit(t *testing.T) {
	_, e := Generate(nil)
	if e == nil {
		t.Fatal("expecting an error for a nil unit")
	}
	ee, ok := e.(*unilang.Error)
	if !ok || ee.Code != ErrNoProgram {
		t.Errorf("expecting code %d, got %v", ErrNoProgram, e)
	}
}
