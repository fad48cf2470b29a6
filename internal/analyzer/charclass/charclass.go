// Package charclass implements the Character Classifier (spec.md §4.3):
// given the raw bytes of one token, it walks the bytes, validates UTF-8
// framing, and for each well-formed codepoint notes zero or more category
// tags determined by byte-range tables.
package charclass

import (
	"github.com/wildebeest-nlp/wildebeest/internal/analyzer/registry"
	"github.com/wildebeest-nlp/wildebeest/internal/analyzer/store"
)

// LanguageAllower reports whether r is an expected character for the
// configured language's alphabet (e.g. German umlauts, French accents).
// When it returns true for a Latin-plus-alpha codepoint, the classifier
// upgrades the generic LATIN_PLUS_ALPHA tag to LANGUAGE_SPECIFIC.
type LanguageAllower interface {
	AllowsChar(r rune) bool
}

// Classify walks token's raw bytes and notes every character-level
// category it encounters against loc in s. lang may be nil, in which
// case no codepoint is ever promoted to LANGUAGE_SPECIFIC.
func Classify(s *store.Store, token string, loc store.Location, lang LanguageAllower) {
	b := []byte(token)
	i := 0
	first := true

	emit := func(tag registry.Tag, char string) {
		mode := store.ModeFollowUp
		if first {
			mode = store.ModeInitial
		}
		s.Note(tag, token, loc, mode, char)
		first = false
	}

	// Step 1: a token beginning with continuation bytes is one NON_UTF8
	// hit covering the whole leading run.
	if len(b) > 0 && isCont(b[0]) {
		emit(registry.NonUTF8, "")
		for i < len(b) && isCont(b[i]) {
			i++
		}
	}

	for i < len(b) {
		c := b[i]

		if c < 0x80 {
			i++
			continue
		}

		if isCont(c) {
			emit(registry.NonUTF8, "")
			i++
			continue
		}

		n, ok := seqLen(c)
		if !ok || i+n > len(b) {
			emit(registry.NonUTF8, "")
			i++
			continue
		}

		malformed := false
		for k := 1; k < n; k++ {
			if !isCont(b[i+k]) {
				malformed = true
				break
			}
		}
		if malformed {
			emit(registry.NonUTF8, "")
			i++
			continue
		}

		if isOverlong(c, b[i+1]) {
			emit(registry.UTF8NonShortest, "")
			i += n
			continue
		}

		r := decodeRune(b[i:i+n], n, c)
		classifyRune(emit, r, i == 0, lang)
		i += n
	}
}

func isCont(b byte) bool { return b >= 0x80 && b <= 0xBF }

func seqLen(c byte) (int, bool) {
	switch {
	case c >= 0xC0 && c <= 0xDF:
		return 2, true
	case c >= 0xE0 && c <= 0xEF:
		return 3, true
	case c >= 0xF0 && c <= 0xF7:
		return 4, true
	case c >= 0xF8 && c <= 0xFB:
		return 5, true
	case c >= 0xFC && c <= 0xFD:
		return 6, true
	default:
		return 0, false
	}
}

// isOverlong detects the non-shortest-form encodings spec.md §4.3 step 3
// calls out explicitly: a 2-byte sequence starting C0/C1, a 3-byte
// sequence starting E0 with first continuation 80-9F, or a 4-byte
// sequence starting F0 with first continuation 80-8F.
func isOverlong(lead, cont1 byte) bool {
	switch lead {
	case 0xC0, 0xC1:
		return true
	case 0xE0:
		return cont1 >= 0x80 && cont1 <= 0x9F
	case 0xF0:
		return cont1 >= 0x80 && cont1 <= 0x8F
	}
	return false
}

func decodeRune(seq []byte, n int, lead byte) rune {
	mask := byte(0x7F) >> uint(n)
	cp := rune(lead & mask)
	for k := 1; k < n; k++ {
		cp = (cp << 6) | rune(seq[k]&0x3F)
	}
	return cp
}

// classifyRune applies the decision table of spec.md §4.3 step 4-8 to one
// already-decoded codepoint.
func classifyRune(emit func(registry.Tag, string), r rune, first bool, lang LanguageAllower) {
	char := string(r)

	if r == 0xFEFF {
		if first {
			emit(registry.InitialByteOrderMark, char)
		} else {
			emit(registry.ZeroWidth, char)
		}
		return
	}

	if isLigature(r) {
		emit(registry.LatinExtendedLigature, char)
		return
	}

	if r == 0x00B2 || r == 0x00B3 || r == 0x00B9 || inRange(r, 0x2070, 0x209F) {
		emit(registry.MiscSymbol, char)
		return
	}
	if r == 0x00D7 || r == 0x00F7 {
		emit(registry.MathematicalOperator, char)
		return
	}

	if inRange(r, 0x80, 0x9F) {
		emit(registry.ControlChar, char)
		return
	}
	if tag, ok := lookup(r, whitespaceRanges); ok {
		emit(tag, char)
		return
	}
	if tag, ok := lookup(r, zeroWidthRanges); ok {
		emit(tag, char)
		return
	}
	if r == 0xFFFC {
		emit(registry.ReplacementObject, char)
		return
	}
	if r == 0xFFFD {
		emit(registry.ReplacementChar, char)
		return
	}
	if inRange(r, 0xFE00, 0xFE0F) || inRange(r, 0xE0100, 0xE01EF) {
		emit(registry.VariationSelector, char)
		return
	}
	if inRange(r, 0xE0000, 0xE007F) {
		emit(registry.Tag_, char)
		return
	}
	if tag, ok := lookup(r, combiningRanges); ok {
		emit(tag, char)
		return
	}

	if tag, ok := arabicSubRange(r); ok {
		emit(tag, char)
		return
	}

	if inRange(r, 0x0F00, 0x0FFF) {
		emit(tibetanSubRange(r), char)
		return
	}

	if tag, ok := georgianSubRange(r); ok {
		emit(tag, char)
		return
	}

	if tag, ok := lookup(r, scriptRanges); ok {
		emit(tag, char)
		return
	}

	if tag, ok := privateUseSubRange(r); ok {
		emit(tag, char)
		return
	}

	if tag, ok := lookup(r, latinPlusRanges); ok {
		if lang != nil && lang.AllowsChar(r) {
			emit(registry.LanguageSpecific, char)
			return
		}
		emit(tag, char)
		return
	}
	if lang != nil && lang.AllowsChar(r) {
		emit(registry.LanguageSpecific, char)
		return
	}

	if r > 0x7F {
		emit(registry.OtherChar, char)
	}
}

func isLigature(r rune) bool {
	switch r {
	case 0x0132, 0x0133, 0x0152, 0x0153: // IJ ij Œ œ
		return true
	}
	return false
}

func arabicSubRange(r rune) (registry.Tag, bool) {
	switch r {
	case 0x064A:
		return registry.ArabicLetterYeh, true
	case 0x06CC:
		return registry.FarsiLetterYeh, true
	case 0x0643:
		return registry.ArabicLetterKaf, true
	case 0x06A9:
		return registry.FarsiLetterKehef, true
	case 0x0640:
		return registry.ArabicTatweel, true
	}
	switch {
	case inRange(r, 0x0660, 0x0669):
		return registry.ArabicDigit, true
	case inRange(r, 0x06F0, 0x06F9):
		return registry.ArabicIndicDigit, true
	case inRange(r, 0x0600, 0x060F), inRange(r, 0x061B, 0x061F), r == 0x066A, r == 0x066B, r == 0x066C, r == 0x066D:
		return registry.ArabicPunctuation, true
	case inRange(r, 0xFB50, 0xFDFF), inRange(r, 0xFE70, 0xFEFF):
		return registry.ArabicPresentationForm, true
	case inRange(r, 0x0600, 0x06FF), inRange(r, 0x0750, 0x077F), inRange(r, 0x08A0, 0x08FF):
		return registry.ArabicLetter, true
	}
	return 0, false
}

func privateUseSubRange(r rune) (registry.Tag, bool) {
	switch {
	case inRange(r, 0xF8D0, 0xF8FF):
		return registry.KlingonPiqad, true
	case inRange(r, 0xE000, 0xF8FF):
		return registry.PrivateUse, true
	case inRange(r, 0xF0000, 0xFFFFD):
		return registry.PrivateUse, true
	case inRange(r, 0x100000, 0x10FFFD):
		return registry.PrivateUse, true
	}
	return 0, false
}
