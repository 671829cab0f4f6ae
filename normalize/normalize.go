// Package normalize rewrites language-specific surface token orders into
// the canonical order the parser expects. Rules are declarative and fully
// validated at load time; normalization itself never fails, it simply
// leaves unmatched token runs untouched.
package normalize

import (
	_ "embed"
	"encoding/json"

	"github.com/unilang-dev/unilang"
	"github.com/unilang-dev/unilang/concept"
	"github.com/unilang-dev/unilang/lexer"
)

// Error codes used by normalize:
const (
	// ErrBadRuleDoc indicates a rule document that is not valid JSON or
	// misses required fields.
	ErrBadRuleDoc = unilang.NormalizationErrors + iota

	// ErrUnknownRuleConcept indicates a concept identifier the registry
	// does not define.
	ErrUnknownRuleConcept

	// ErrUnknownRuleLanguage indicates a rule bound to a language the
	// registry does not declare.
	ErrUnknownRuleLanguage

	// ErrUnknownTemplate indicates a rule referencing an undefined template.
	ErrUnknownTemplate

	// ErrBadElement indicates a malformed pattern or rewrite element.
	ErrBadElement

	// ErrBadSlot indicates a rewrite slot that does not name a matching
	// capture in the pattern.
	ErrBadSlot

	// ErrRewriteSource indicates a rule with both or neither of an inline
	// rewrite and a template reference.
	ErrRewriteSource
)

//go:embed rules.json
var defaultRules []byte

type elemKind int

const (
	matchConcept elemKind = iota
	matchLiteral
	matchDelimiter
	captureIdent
	captureExpr
)

type element struct {
	kind elemKind
	con  concept.Concept
	text string
	slot string
}

type outKind int

const (
	emitConcept outKind = iota
	emitDelimiter
	emitIdentSlot
	emitExprSlot
)

type output struct {
	kind outKind
	con  concept.Concept
	text string
	slot string
}

type rule struct {
	name     string
	language string
	pattern  []element
	rewrite  []output
}

// Table is an immutable, validated set of normalization rules bound to
// one registry. A Table is safe for concurrent use.
type Table struct {
	reg   *concept.Registry
	rules []rule
}

type elementDoc struct {
	Kind    string `json:"kind"`
	Concept string `json:"concept"`
	Text    string `json:"text"`
	Slot    string `json:"slot"`
}

type outputDoc struct {
	Emit    string `json:"emit"`
	Concept string `json:"concept"`
	Text    string `json:"text"`
	Slot    string `json:"slot"`
}

type ruleDoc struct {
	Templates map[string][]outputDoc `json:"templates"`
	Rules     []struct {
		Name     string       `json:"name"`
		Language string       `json:"language"`
		Pattern  []elementDoc `json:"pattern"`
		Template string       `json:"template"`
		Rewrite  []outputDoc  `json:"rewrite"`
	} `json:"rules"`
}

// DefaultTable returns the table built from the embedded rule set.
func DefaultTable(reg *concept.Registry) *Table {
	t, e := LoadRules(defaultRules, reg)
	if e != nil {
		panic("embedded rule table is broken: " + e.Error())
	}
	return t
}

// LoadRules parses and validates a rule document against a registry.
// Rules keep their declaration order, which is also their match priority.
func LoadRules(data []byte, reg *concept.Registry) (*Table, error) {
	var doc ruleDoc
	if e := json.Unmarshal(data, &doc); e != nil {
		return nil, unilang.FormatError(ErrBadRuleDoc, "NORM_BAD_DOCUMENT",
			"cannot parse rule document: %s", e.Error())
	}

	templates := make(map[string][]output, len(doc.Templates))
	for name, docs := range doc.Templates {
		outputs, e := compileOutputs(docs, "template "+name)
		if e != nil {
			return nil, e
		}
		templates[name] = outputs
	}

	t := &Table{reg: reg, rules: make([]rule, 0, len(doc.Rules))}
	for _, rd := range doc.Rules {
		if rd.Name == "" {
			return nil, unilang.FormatError(ErrBadRuleDoc, "NORM_BAD_DOCUMENT",
				"rule without a name")
		}
		if !reg.HasLanguage(rd.Language) {
			return nil, unilang.FormatError(ErrUnknownRuleLanguage, "NORM_UNKNOWN_LANGUAGE",
				"rule %s: unknown language %q", rd.Name, rd.Language)
		}
		if len(rd.Pattern) == 0 {
			return nil, unilang.FormatError(ErrBadElement, "NORM_BAD_ELEMENT",
				"rule %s: empty pattern", rd.Name)
		}

		pattern, slots, e := compilePattern(rd.Pattern, rd.Name)
		if e != nil {
			return nil, e
		}

		var rewrite []output
		switch {
		case rd.Template != "" && rd.Rewrite != nil:
			return nil, unilang.FormatError(ErrRewriteSource, "NORM_REWRITE_SOURCE",
				"rule %s: both template and inline rewrite", rd.Name)
		case rd.Template != "":
			tpl, found := templates[rd.Template]
			if !found {
				return nil, unilang.FormatError(ErrUnknownTemplate, "NORM_UNKNOWN_TEMPLATE",
					"rule %s: unknown template %q", rd.Name, rd.Template)
			}
			rewrite = tpl
		case rd.Rewrite != nil:
			rewrite, e = compileOutputs(rd.Rewrite, "rule "+rd.Name)
			if e != nil {
				return nil, e
			}
		default:
			return nil, unilang.FormatError(ErrRewriteSource, "NORM_REWRITE_SOURCE",
				"rule %s: neither template nor inline rewrite", rd.Name)
		}

		for _, o := range rewrite {
			switch o.kind {
			case emitIdentSlot:
				if slots[o.slot] != captureIdent {
					return nil, unilang.FormatError(ErrBadSlot, "NORM_BAD_SLOT",
						"rule %s: %q is not an identifier capture", rd.Name, o.slot)
				}
			case emitExprSlot:
				if slots[o.slot] != captureExpr {
					return nil, unilang.FormatError(ErrBadSlot, "NORM_BAD_SLOT",
						"rule %s: %q is not an expression capture", rd.Name, o.slot)
				}
			}
		}

		t.rules = append(t.rules, rule{rd.Name, rd.Language, pattern, rewrite})
	}
	return t, nil
}

func compilePattern(docs []elementDoc, where string) ([]element, map[string]elemKind, error) {
	pattern := make([]element, 0, len(docs))
	slots := make(map[string]elemKind)
	for _, d := range docs {
		var el element
		switch d.Kind {
		case "concept":
			c, found := concept.FromID(d.Concept)
			if !found {
				return nil, nil, unilang.FormatError(ErrUnknownRuleConcept, "NORM_UNKNOWN_CONCEPT",
					"%s: unknown concept %q", where, d.Concept)
			}
			el = element{kind: matchConcept, con: c}
		case "literal":
			if d.Text == "" {
				return nil, nil, unilang.FormatError(ErrBadElement, "NORM_BAD_ELEMENT",
					"%s: literal element without text", where)
			}
			el = element{kind: matchLiteral, text: d.Text}
		case "delimiter":
			if d.Text == "" {
				return nil, nil, unilang.FormatError(ErrBadElement, "NORM_BAD_ELEMENT",
					"%s: delimiter element without text", where)
			}
			el = element{kind: matchDelimiter, text: d.Text}
		case "identifier", "expr":
			if d.Slot == "" {
				return nil, nil, unilang.FormatError(ErrBadElement, "NORM_BAD_ELEMENT",
					"%s: capture element without a slot", where)
			}
			if _, dup := slots[d.Slot]; dup {
				return nil, nil, unilang.FormatError(ErrBadSlot, "NORM_BAD_SLOT",
					"%s: duplicate slot %q", where, d.Slot)
			}
			el = element{kind: captureIdent, slot: d.Slot}
			if d.Kind == "expr" {
				el.kind = captureExpr
			}
			slots[d.Slot] = el.kind
		default:
			return nil, nil, unilang.FormatError(ErrBadElement, "NORM_BAD_ELEMENT",
				"%s: unknown element kind %q", where, d.Kind)
		}
		pattern = append(pattern, el)
	}
	return pattern, slots, nil
}

func compileOutputs(docs []outputDoc, where string) ([]output, error) {
	outputs := make([]output, 0, len(docs))
	for _, d := range docs {
		var o output
		switch d.Emit {
		case "concept":
			c, found := concept.FromID(d.Concept)
			if !found {
				return nil, unilang.FormatError(ErrUnknownRuleConcept, "NORM_UNKNOWN_CONCEPT",
					"%s: unknown concept %q", where, d.Concept)
			}
			o = output{kind: emitConcept, con: c}
		case "delimiter":
			if d.Text == "" {
				return nil, unilang.FormatError(ErrBadElement, "NORM_BAD_ELEMENT",
					"%s: delimiter output without text", where)
			}
			o = output{kind: emitDelimiter, text: d.Text}
		case "identifier_slot", "expr_slot":
			if d.Slot == "" {
				return nil, unilang.FormatError(ErrBadElement, "NORM_BAD_ELEMENT",
					"%s: slot output without a slot name", where)
			}
			o = output{kind: emitIdentSlot, slot: d.Slot}
			if d.Emit == "expr_slot" {
				o.kind = emitExprSlot
			}
		default:
			return nil, unilang.FormatError(ErrBadElement, "NORM_BAD_ELEMENT",
				"%s: unknown output kind %q", where, d.Emit)
		}
		outputs = append(outputs, o)
	}
	return outputs, nil
}

// Rules returns the names of loaded rules in match priority order.
func (t *Table) Rules() []string {
	names := make([]string, len(t.rules))
	for i := range t.rules {
		names[i] = t.rules[i].name
	}
	return names
}

// Normalize rewrites the token stream for the active language and
// returns a fresh slice; the input is never modified. Rules anchor at
// statement starts only, are tried in declaration order with first
// match winning, and scanning resumes after a replacement.
func (t *Table) Normalize(tokens []lexer.Token, language string) []lexer.Token {
	out := make([]lexer.Token, 0, len(tokens))
	atAnchor := true
	i := 0
	for i < len(tokens) {
		if atAnchor {
			if replacement, consumed := t.matchAt(tokens, i, language); consumed > 0 {
				out = append(out, replacement...)
				i += consumed
				atAnchor = false
				continue
			}
		}
		tok := tokens[i]
		out = append(out, tok)
		i++
		if tok.Kind() != lexer.Comment {
			atAnchor = isAnchor(tok)
		}
	}
	return out
}

func isAnchor(tok lexer.Token) bool {
	switch tok.Kind() {
	case lexer.Newline, lexer.Indent, lexer.Dedent:
		return true
	case lexer.Delimiter:
		return tok.Text() == ";"
	}
	return false
}

func (t *Table) matchAt(tokens []lexer.Token, start int, language string) ([]lexer.Token, int) {
	for ri := range t.rules {
		r := &t.rules[ri]
		if r.language != language {
			continue
		}
		caps := make(map[string][]lexer.Token)
		end, ok := matchElems(tokens, start, r.pattern, caps)
		if !ok {
			continue
		}
		anchor := tokens[start]
		replacement := make([]lexer.Token, 0, end-start)
		for _, o := range r.rewrite {
			switch o.kind {
			case emitConcept:
				surface, e := t.reg.Surface(o.con, language)
				if e != nil {
					surface = o.con.String()
				}
				replacement = append(replacement, lexer.NewKeyword(surface, o.con, anchor))
			case emitDelimiter:
				replacement = append(replacement, lexer.NewToken(lexer.Delimiter, o.text, anchor))
			case emitIdentSlot, emitExprSlot:
				replacement = append(replacement, caps[o.slot]...)
			}
		}
		return replacement, end - start
	}
	return nil, 0
}

// matchElems matches pattern elements starting at pos and fills caps.
// Expression captures are greedy: the longest balanced span that still
// lets the remaining elements match wins.
func matchElems(tokens []lexer.Token, pos int, elems []element, caps map[string][]lexer.Token) (int, bool) {
	if len(elems) == 0 {
		return pos, true
	}
	if pos >= len(tokens) {
		return 0, false
	}
	el := elems[0]
	tok := tokens[pos]
	switch el.kind {
	case matchConcept:
		if tok.IsConcept(el.con) {
			return matchElems(tokens, pos+1, elems[1:], caps)
		}

	case matchLiteral:
		if (tok.Kind() == lexer.Identifier || tok.Kind() == lexer.Keyword) && tok.Text() == el.text {
			return matchElems(tokens, pos+1, elems[1:], caps)
		}

	case matchDelimiter:
		if tok.Kind() == lexer.Delimiter && tok.Text() == el.text {
			return matchElems(tokens, pos+1, elems[1:], caps)
		}

	case captureIdent:
		if tok.Kind() == lexer.Identifier {
			caps[el.slot] = tokens[pos : pos+1]
			return matchElems(tokens, pos+1, elems[1:], caps)
		}

	case captureExpr:
		cuts := exprCuts(tokens, pos)
		for ci := len(cuts) - 1; ci >= 0; ci-- {
			end, ok := matchElems(tokens, cuts[ci], elems[1:], caps)
			if ok {
				caps[el.slot] = tokens[pos:cuts[ci]]
				return end, true
			}
		}
	}
	return 0, false
}

// exprCuts returns the positions where an expression span starting at
// pos may end: every bracket-balanced boundary before the line end.
func exprCuts(tokens []lexer.Token, pos int) []int {
	var cuts []int
	depth := 0
	for i := pos; i < len(tokens); i++ {
		switch tokens[i].Kind() {
		case lexer.Newline, lexer.Indent, lexer.Dedent, lexer.EOF, lexer.Comment:
			return cuts
		case lexer.Delimiter:
			switch tokens[i].Text() {
			case "(", "[", "{":
				depth++
			case ")", "]", "}":
				if depth == 0 {
					return cuts
				}
				depth--
			}
		}
		if depth == 0 {
			cuts = append(cuts, i+1)
		}
	}
	return cuts
}
