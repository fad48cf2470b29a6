// Package langpolicy maps a configured language code to the categories it
// suppresses from the report and the characters it treats as expected,
// per spec.md §4.6.
package langpolicy

import (
	"strings"

	"github.com/wildebeest-nlp/wildebeest/internal/analyzer/registry"
)

// ValidCodes is the fixed set of language codes the configuration surface
// accepts (spec.md §6). "en" is normalized to "eng" before validation.
var ValidCodes = []string{
	"ar", "ara", "chi", "dar", "de", "en", "eng", "es", "far", "fr", "fre",
	"gr", "jp", "kin", "mlg", "ru", "som", "ur", "zh",
}

// Normalize applies the single documented alias (en -> eng) and lowercases
// the code; it performs no other validation.
func Normalize(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "en" {
		return "eng"
	}
	return code
}

// Valid reports whether code (already normalized) is one of the accepted
// language codes, or the empty string (meaning "no language policy").
func Valid(code string) bool {
	if code == "" {
		return true
	}
	for _, c := range ValidCodes {
		if Normalize(c) == code || c == code {
			return true
		}
	}
	return false
}

// Policy is the resolved suppression/allowance set for one language code.
// Unknown codes resolve to an empty Policy with no suppressions and no
// allowed characters, per spec.md §4.6 ("unknown codes silently yield
// empty sets").
type Policy struct {
	Code     string
	suppress map[registry.Tag]bool
	allowed  map[rune]bool
}

// New resolves a Policy for code, which should already be normalized via
// Normalize. Empty string yields the empty policy.
func New(code string) *Policy {
	p := &Policy{Code: code}

	switch code {
	case "ara", "ar", "far", "dar", "ur":
		p.suppress = tagSet(registry.ArabicLetter)
	case "eng", "en":
		p.suppress = tagSet(registry.ASCIILetter)
	case "zh", "chi", "jp":
		p.suppress = tagSet(registry.CJK)
	case "ru":
		p.suppress = tagSet(registry.Cyrillic)
	case "gr":
		p.suppress = tagSet(registry.Greek)
	case "de", "fr", "fre", "es", "kin", "som", "mlg":
		p.suppress = tagSet(registry.ASCIILetter)
	}

	switch code {
	case "de":
		p.allowed = runeSet("äöüÄÖÜß")
	case "fr", "fre":
		p.allowed = runeSet("àâçéèêëîïôûùüÿœæÀÂÇÉÈÊËÎÏÔÛÙÜŸŒÆ")
	case "es":
		p.allowed = runeSet("áéíóúñüÁÉÍÓÚÑÜ¿¡")
	}

	return p
}

func tagSet(tags ...registry.Tag) map[registry.Tag]bool {
	m := make(map[registry.Tag]bool, len(tags))
	for _, t := range tags {
		m[t] = true
	}
	return m
}

func runeSet(s string) map[rune]bool {
	m := make(map[rune]bool)
	for _, r := range s {
		m[r] = true
	}
	return m
}

// Suppresses reports whether tag is an "of-course-expected" category for
// this language and should be hidden from the displayed report (its count
// is still tracked; see spec.md §4.7).
func (p *Policy) Suppresses(tag registry.Tag) bool {
	if p == nil || p.suppress == nil {
		return false
	}
	return p.suppress[tag]
}

// AllowsChar implements charclass.LanguageAllower: it reports whether r is
// part of this language's documented allowed-character set. Per spec.md
// §4.3 step 7, this check only promotes codepoints that would otherwise
// receive the generic LATIN_PLUS_ALPHA tag; Arabic-range "Urdu letters"
// mentioned in spec.md's prose already carry their own dedicated tags
// (ARABIC_LETTER and friends) before this check is ever consulted, so
// they are intentionally left alone here (see DESIGN.md).
func (p *Policy) AllowsChar(r rune) bool {
	if p == nil || p.allowed == nil {
		return false
	}
	return p.allowed[r]
}
