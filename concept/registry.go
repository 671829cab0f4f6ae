package concept

import (
	_ "embed"
	"encoding/json"
	"sort"

	"github.com/unilang-dev/unilang"
)

// Error codes used by the registry:
const (
	// ErrBadDocument indicates malformed registry data.
	ErrBadDocument = unilang.RegistryErrors + iota

	// ErrUnknownConcept indicates a concept identifier not present in the closed set.
	ErrUnknownConcept

	// ErrUnknownLanguage indicates a language code outside the declared language list.
	ErrUnknownLanguage

	// ErrMissingSurface indicates a concept with no surface form for a declared language.
	ErrMissingSurface

	// ErrAmbiguousSurface indicates two concepts sharing one surface form within a language.
	ErrAmbiguousSurface

	// ErrEmptySurface indicates an empty surface string.
	ErrEmptySurface
)

//go:embed keywords.json
var defaultKeywords []byte

// Registry is the immutable concept/keyword mapping for a set of
// supported languages. A loaded Registry is read-only and safe for
// concurrent use; it is passed by reference into lexer and pipeline
// instances, never held as a process-wide singleton.
type Registry struct {
	languages []string
	surfaces  map[Concept]map[string]string // concept -> language -> keyword
	reverse   map[string]map[string]Concept // language -> keyword -> concept
}

// Load parses and validates registry data. It fails with a
// registry-class error on malformed documents, unknown concept or
// language identifiers, missing translations, or two concepts
// colliding on one surface form within a language.
func Load(data []byte) (*Registry, error) {
	var doc struct {
		Languages  []string                                `json:"languages"`
		Categories map[string]map[string]map[string]string `json:"categories"`
	}
	if e := json.Unmarshal(data, &doc); e != nil {
		return nil, unilang.FormatError(ErrBadDocument, "REGISTRY_BAD_DOCUMENT", "malformed keyword registry: %s", e.Error())
	}
	if len(doc.Languages) == 0 {
		return nil, unilang.FormatError(ErrBadDocument, "REGISTRY_BAD_DOCUMENT", "keyword registry declares no languages")
	}

	r := &Registry{
		languages: doc.Languages,
		surfaces:  make(map[Concept]map[string]string, len(conceptTable)),
		reverse:   make(map[string]map[string]Concept, len(doc.Languages)),
	}
	known := make(map[string]bool, len(doc.Languages))
	for _, lang := range doc.Languages {
		known[lang] = true
		r.reverse[lang] = make(map[string]Concept)
	}

	for catName, concepts := range doc.Categories {
		for id, translations := range concepts {
			c, ok := FromID(id)
			if !ok {
				return nil, unilang.FormatError(ErrUnknownConcept, "REGISTRY_UNKNOWN_CONCEPT",
					"unknown concept %q in category %q", id, catName)
			}
			r.surfaces[c] = make(map[string]string, len(translations))
			for lang, keyword := range translations {
				if !known[lang] {
					return nil, unilang.FormatError(ErrUnknownLanguage, "REGISTRY_UNKNOWN_LANGUAGE",
						"concept %q uses undeclared language %q", id, lang)
				}
				if keyword == "" {
					return nil, unilang.FormatError(ErrEmptySurface, "REGISTRY_EMPTY_SURFACE",
						"concept %q has an empty surface form for %q", id, lang)
				}
				if prev, clash := r.reverse[lang][keyword]; clash {
					return nil, unilang.FormatError(ErrAmbiguousSurface, "REGISTRY_AMBIGUOUS_SURFACE",
						"surface %q in language %q maps to both %s and %s", keyword, lang, prev, c)
				}
				r.surfaces[c][lang] = keyword
				r.reverse[lang][keyword] = c
			}
		}
	}

	if violations := r.Validate(); len(violations) > 0 {
		return nil, violations[0]
	}
	return r, nil
}

// DefaultRegistry returns a registry built from the embedded keyword
// pack. The embedded pack is validated by tests, so a load failure here
// is a programming error.
func DefaultRegistry() *Registry {
	r, e := Load(defaultKeywords)
	if e != nil {
		panic(e)
	}
	return r
}

// Resolve performs the reverse lookup: keyword text in the given
// language to its concept. Lookup is exact and case-sensitive.
func (r *Registry) Resolve(language, text string) (Concept, bool) {
	index, ok := r.reverse[language]
	if !ok {
		return Invalid, false
	}
	c, ok := index[text]
	return c, ok
}

// Surface returns the keyword text for a concept in the given language.
func (r *Registry) Surface(c Concept, language string) (string, error) {
	if _, ok := r.reverse[language]; !ok {
		return "", unilang.FormatError(ErrUnknownLanguage, "REGISTRY_UNKNOWN_LANGUAGE",
			"unsupported language %q", language)
	}
	translations, ok := r.surfaces[c]
	if !ok {
		return "", unilang.FormatError(ErrUnknownConcept, "REGISTRY_UNKNOWN_CONCEPT",
			"concept %s not present in registry", c)
	}
	keyword, ok := translations[language]
	if !ok {
		return "", unilang.FormatError(ErrMissingSurface, "REGISTRY_MISSING_SURFACE",
			"concept %s has no surface form for %q", c, language)
	}
	return keyword, nil
}

// IsKeyword reports whether text is a registered keyword in language.
func (r *Registry) IsKeyword(language, text string) bool {
	_, ok := r.Resolve(language, text)
	return ok
}

// HasLanguage reports whether the registry declares the language code.
func (r *Registry) HasLanguage(language string) bool {
	_, ok := r.reverse[language]
	return ok
}

// Languages returns the declared language codes, sorted.
func (r *Registry) Languages() []string {
	result := make([]string, len(r.languages))
	copy(result, r.languages)
	sort.Strings(result)
	return result
}

// Keywords returns the full concept-to-keyword mapping for a language.
func (r *Registry) Keywords(language string) map[Concept]string {
	result := make(map[Concept]string, len(r.surfaces))
	for c, translations := range r.surfaces {
		if keyword, ok := translations[language]; ok {
			result[c] = keyword
		}
	}
	return result
}

// Validate re-checks completeness (every concept has a surface form for
// every declared language) and returns all violations. Uniqueness is
// structurally guaranteed after load, so only completeness can regress
// when a caller supplies a partial pack.
func (r *Registry) Validate() []*unilang.Error {
	var violations []*unilang.Error
	for _, c := range All() {
		translations := r.surfaces[c]
		if translations == nil {
			violations = append(violations, unilang.FormatError(ErrMissingSurface, "REGISTRY_MISSING_SURFACE",
				"concept %s missing from registry data", c))
			continue
		}
		for _, lang := range r.languages {
			if translations[lang] == "" {
				violations = append(violations, unilang.FormatError(ErrMissingSurface, "REGISTRY_MISSING_SURFACE",
					"concept %s has no surface form for %q", c, lang))
			}
		}
	}
	return violations
}

// DetectLanguage scores each declared language by how many of the given
// words are keywords in it and returns the best match. The result is
// advisory; the pipeline always requires an explicit language selector.
func (r *Registry) DetectLanguage(words []string) (string, bool) {
	best := ""
	bestScore := 0
	for _, lang := range r.Languages() {
		index := r.reverse[lang]
		score := 0
		for _, w := range words {
			if _, ok := index[w]; ok {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = lang, score
		}
	}
	return best, bestScore > 0
}
