package normalize

import (
	"testing"

	"github.com/unilang-dev/unilang"
	"github.com/unilang-dev/unilang/concept"
	"github.com/unilang-dev/unilang/lexer"
)

func lex(t *testing.T, text, language string) []lexer.Token {
	t.Helper()
	tokens, e := lexer.New(concept.DefaultRegistry()).Tokenize([]byte(text), "test", language)
	if e != nil {
		t.Fatalf("Tokenize(%q, %s): %s", text, language, e)
	}
	return tokens
}

func concepts(tokens []lexer.Token) []concept.Concept {
	out := make([]concept.Concept, 0, len(tokens))
	for _, tok := range tokens {
		if tok.Kind() == lexer.Keyword {
			out = append(out, tok.Concept())
		}
	}
	return out
}

func sameConcepts(a, b []concept.Concept) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestDefaultTableLoads(t *testing.T) {
	table := DefaultTable(concept.DefaultRegistry())
	names := table.Rules()
	if len(names) != 4 {
		t.Fatalf("expecting 4 rules, got %v", names)
	}
	if names[0] != "ja_for_header_sov" {
		t.Fatalf("rules must keep declaration order, got %v", names)
	}
}

func TestJapaneseForHeader(t *testing.T) {
	reg := concept.DefaultRegistry()
	table := DefaultTable(reg)
	tokens := table.Normalize(lex(t, "リスト 内の 各 要素 に対して :", "ja"), "ja")

	expected := []struct {
		kind lexer.Kind
		text string
		con  concept.Concept
	}{
		{lexer.Keyword, "各", concept.LoopFor},
		{lexer.Identifier, "要素", concept.Invalid},
		{lexer.Keyword, "中", concept.In},
		{lexer.Identifier, "リスト", concept.Invalid},
		{lexer.Delimiter, ":", concept.Invalid},
	}
	for i, s := range expected {
		tok := tokens[i]
		if tok.Kind() != s.kind || tok.Text() != s.text || tok.Concept() != s.con {
			t.Errorf("token #%d: expecting (%s %q %s), got %s", i, s.kind, s.text, s.con, tok)
		}
	}
}

func TestHindiForHeader(t *testing.T) {
	table := DefaultTable(concept.DefaultRegistry())
	tokens := table.Normalize(lex(t, "सूची में तत्व के लिए :", "hi"), "hi")

	got := concepts(tokens)
	if !sameConcepts(got, []concept.Concept{concept.LoopFor, concept.In}) {
		t.Fatalf("expecting canonical FOR..IN order, got %v", got)
	}
	if tokens[1].Text() != "तत्व" || tokens[3].Text() != "सूची" {
		t.Fatalf("expecting target before iterable, got %v", tokens)
	}
}

func TestCrossLanguageHeadersConverge(t *testing.T) {
	table := DefaultTable(concept.DefaultRegistry())
	ja := table.Normalize(lex(t, "リスト 内の 各 要素 に対して :", "ja"), "ja")
	hi := table.Normalize(lex(t, "सूची में तत्व के लिए :", "hi"), "hi")
	if !sameConcepts(concepts(ja), concepts(hi)) {
		t.Fatalf("expecting identical concept order, got %v vs %v", concepts(ja), concepts(hi))
	}
	for i := range ja {
		if ja[i].Kind() != hi[i].Kind() {
			t.Fatalf("token #%d: kind mismatch %s vs %s", i, ja[i], hi[i])
		}
	}
}

func TestConditionalParticleDropped(t *testing.T) {
	table := DefaultTable(concept.DefaultRegistry())
	samples := []struct {
		text, language string
	}{
		{"もし x なら :", "ja"},
		{"अगर x तो :", "hi"},
	}
	for i, s := range samples {
		tokens := table.Normalize(lex(t, s.text, s.language), s.language)
		if !tokens[0].IsConcept(concept.CondIf) {
			t.Errorf("sample #%d: expecting COND_IF first, got %s", i, tokens[0])
			continue
		}
		if tokens[1].Kind() != lexer.Identifier || tokens[2].Text() != ":" {
			t.Errorf("sample #%d: expecting condition then colon, got %v", i, tokens)
		}
	}
}

func TestIdempotentOnCanonicalInput(t *testing.T) {
	table := DefaultTable(concept.DefaultRegistry())
	once := table.Normalize(lex(t, "リスト 内の 各 要素 に対して :", "ja"), "ja")
	twice := table.Normalize(once, "ja")
	if len(once) != len(twice) {
		t.Fatalf("second pass changed length: %d vs %d", len(once), len(twice))
	}
	for i := range once {
		if once[i].String() != twice[i].String() {
			t.Fatalf("token #%d changed on second pass: %s vs %s", i, once[i], twice[i])
		}
	}
}

func TestUnmatchedStreamPassesThrough(t *testing.T) {
	table := DefaultTable(concept.DefaultRegistry())
	in := lex(t, "for x in items:\n    pass\n", "en")
	out := table.Normalize(in, "en")
	if len(in) != len(out) {
		t.Fatalf("expecting pass-through, got %d vs %d tokens", len(in), len(out))
	}
	for i := range in {
		if in[i].String() != out[i].String() {
			t.Fatalf("token #%d changed: %s vs %s", i, in[i], out[i])
		}
	}
}

func TestRulesAnchorAtStatementStart(t *testing.T) {
	table := DefaultTable(concept.DefaultRegistry())
	in := lex(t, "f(リスト 内の 各 要素 に対して)", "ja")
	out := table.Normalize(in, "ja")
	if len(in) != len(out) {
		t.Fatalf("bracketed run must not be rewritten: %v", out)
	}
}

func TestRewrittenTokensInheritAnchorPosition(t *testing.T) {
	table := DefaultTable(concept.DefaultRegistry())
	tokens := table.Normalize(lex(t, "pass\nリスト 内の 各 要素 に対して :", "ja"), "ja")
	for _, tok := range tokens {
		if tok.IsConcept(concept.LoopFor) {
			if tok.Line() != 2 || tok.Col() != 1 {
				t.Fatalf("expecting anchor position 2:1, got %d:%d", tok.Line(), tok.Col())
			}
			return
		}
	}
	t.Fatal("no LOOP_FOR keyword in output")
}

func TestLoadRulesValidation(t *testing.T) {
	reg := concept.DefaultRegistry()
	samples := []struct {
		data string
		code int
	}{
		{`not json`, ErrBadRuleDoc},
		{`{"rules": [{"language": "ja", "pattern": [{"kind": "concept", "concept": "COND_IF"}], "rewrite": []}]}`,
			ErrBadRuleDoc},
		{`{"rules": [{"name": "r", "language": "zz", "pattern": [{"kind": "concept", "concept": "COND_IF"}], "rewrite": []}]}`,
			ErrUnknownRuleLanguage},
		{`{"rules": [{"name": "r", "language": "ja", "pattern": [{"kind": "concept", "concept": "NO_SUCH"}], "rewrite": []}]}`,
			ErrUnknownRuleConcept},
		{`{"rules": [{"name": "r", "language": "ja", "pattern": [{"kind": "wat"}], "rewrite": []}]}`,
			ErrBadElement},
		{`{"rules": [{"name": "r", "language": "ja", "pattern": [], "rewrite": []}]}`,
			ErrBadElement},
		{`{"rules": [{"name": "r", "language": "ja", "pattern": [{"kind": "concept", "concept": "COND_IF"}], "template": "nope"}]}`,
			ErrUnknownTemplate},
		{`{"rules": [{"name": "r", "language": "ja", "pattern": [{"kind": "concept", "concept": "COND_IF"}]}]}`,
			ErrRewriteSource},
		{`{"templates": {"t": []}, "rules": [{"name": "r", "language": "ja", "pattern": [{"kind": "concept", "concept": "COND_IF"}], "template": "t", "rewrite": []}]}`,
			ErrRewriteSource},
		{`{"rules": [{"name": "r", "language": "ja", "pattern": [{"kind": "identifier", "slot": "x"}], "rewrite": [{"emit": "expr_slot", "slot": "x"}]}]}`,
			ErrBadSlot},
		{`{"rules": [{"name": "r", "language": "ja", "pattern": [{"kind": "expr", "slot": "x"}], "rewrite": [{"emit": "identifier_slot", "slot": "y"}]}]}`,
			ErrBadSlot},
	}
	for i, s := range samples {
		_, e := LoadRules([]byte(s.data), reg)
		if e == nil {
			t.Errorf("sample #%d: expecting error, got nil", i)
			continue
		}
		ee, ok := e.(*unilang.Error)
		if !ok || ee.Code != s.code {
			t.Errorf("sample #%d: expecting code %d, got %v", i, s.code, e)
		}
	}
}
