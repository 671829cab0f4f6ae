// Package concept defines the closed set of language-neutral grammar
// concepts and the registry mapping them to per-language surface keywords.
//
// A concept names one semantic grammar role (for example "the if-keyword
// role"); every supported human language supplies exactly one surface
// form per concept, and within one language no two concepts may share a
// surface form. Both rules are enforced when a registry loads.
package concept

// Concept identifies one language-neutral grammar role.
type Concept int

const (
	Invalid Concept = iota

	// Declarations
	Let
	Const
	FuncDef
	ClassDef

	// Control flow
	Return
	Yield
	CondIf
	CondElif
	CondElse
	LoopWhile
	LoopFor
	In
	LoopBreak
	LoopContinue
	Pass
	Try
	Except
	Finally
	Raise
	Match
	Case
	Default
	With
	As
	Global
	Local
	Del
	Assert

	// Modifiers
	Async
	Await
	Lambda

	// Word operators
	And
	Or
	Not
	Is

	// Literals
	True
	False
	None

	// Imports
	Import
	From

	// Callables and types usable as plain identifiers
	Print
	Input
	TypeInt
	TypeStr

	conceptCount
)

// Category groups concepts for registry data layout and tooling.
type Category int

const (
	CatDeclaration Category = iota
	CatControl
	CatModifier
	CatOperatorWord
	CatLiteral
	CatImport
	CatBuiltin
)

var categoryNames = map[Category]string{
	CatDeclaration:  "declarations",
	CatControl:      "control_flow",
	CatModifier:     "modifiers",
	CatOperatorWord: "operators",
	CatLiteral:      "literals",
	CatImport:       "imports",
	CatBuiltin:      "builtins",
}

func (c Category) String() string {
	return categoryNames[c]
}

type conceptInfo struct {
	id       string
	category Category
}

var conceptTable = map[Concept]conceptInfo{
	Let:          {"LET", CatDeclaration},
	Const:        {"CONST", CatDeclaration},
	FuncDef:      {"FUNC_DEF", CatDeclaration},
	ClassDef:     {"CLASS_DEF", CatDeclaration},
	Return:       {"RETURN", CatControl},
	Yield:        {"YIELD", CatControl},
	CondIf:       {"COND_IF", CatControl},
	CondElif:     {"COND_ELIF", CatControl},
	CondElse:     {"COND_ELSE", CatControl},
	LoopWhile:    {"LOOP_WHILE", CatControl},
	LoopFor:      {"LOOP_FOR", CatControl},
	In:           {"IN", CatControl},
	LoopBreak:    {"LOOP_BREAK", CatControl},
	LoopContinue: {"LOOP_CONTINUE", CatControl},
	Pass:         {"PASS", CatControl},
	Try:          {"TRY", CatControl},
	Except:       {"EXCEPT", CatControl},
	Finally:      {"FINALLY", CatControl},
	Raise:        {"RAISE", CatControl},
	Match:        {"MATCH", CatControl},
	Case:         {"CASE", CatControl},
	Default:      {"DEFAULT", CatControl},
	With:         {"WITH", CatControl},
	As:           {"AS", CatControl},
	Global:       {"GLOBAL", CatControl},
	Local:        {"LOCAL", CatControl},
	Del:          {"DEL", CatControl},
	Assert:       {"ASSERT", CatControl},
	Async:        {"ASYNC", CatModifier},
	Await:        {"AWAIT", CatModifier},
	Lambda:       {"LAMBDA", CatModifier},
	And:          {"AND", CatOperatorWord},
	Or:           {"OR", CatOperatorWord},
	Not:          {"NOT", CatOperatorWord},
	Is:           {"IS", CatOperatorWord},
	True:         {"TRUE", CatLiteral},
	False:        {"FALSE", CatLiteral},
	None:         {"NONE", CatLiteral},
	Import:       {"IMPORT", CatImport},
	From:         {"FROM", CatImport},
	Print:        {"PRINT", CatBuiltin},
	Input:        {"INPUT", CatBuiltin},
	TypeInt:      {"TYPE_INT", CatBuiltin},
	TypeStr:      {"TYPE_STR", CatBuiltin},
}

var conceptByID = make(map[string]Concept, len(conceptTable))

func init() {
	for c, info := range conceptTable {
		conceptByID[info.id] = c
	}
}

// String returns the stable concept identifier used in registry data
// (e.g. "COND_IF"), or "INVALID" for the zero value.
func (c Concept) String() string {
	info, ok := conceptTable[c]
	if !ok {
		return "INVALID"
	}
	return info.id
}

// Category returns the concept's category.
func (c Concept) Category() Category {
	return conceptTable[c].category
}

// Valid reports whether c names a registered concept.
func (c Concept) Valid() bool {
	_, ok := conceptTable[c]
	return ok
}

// FromID resolves a stable identifier such as "LOOP_FOR" to its Concept.
func FromID(id string) (Concept, bool) {
	c, ok := conceptByID[id]
	return c, ok
}

// All returns every registered concept in declaration order.
func All() []Concept {
	result := make([]Concept, 0, len(conceptTable))
	for c := Concept(1); c < conceptCount; c++ {
		if c.Valid() {
			result = append(result, c)
		}
	}
	return result
}
