package charclass

import "github.com/wildebeest-nlp/wildebeest/internal/analyzer/registry"

// rangeTag pairs an inclusive codepoint range with the primary category
// it maps to. Ranges are checked in declaration order by classifyRune;
// earlier, more specific entries win over later, broader ones.
type rangeTag struct {
	lo, hi rune
	tag    registry.Tag
}

func inRange(r rune, lo, hi rune) bool { return r >= lo && r <= hi }

// whitespaceRanges are non-ASCII codepoints classified as whitespace.
var whitespaceRanges = []rangeTag{
	{0x00A0, 0x00A0, registry.NonASCIIWhitespace}, // NBSP
	{0x1680, 0x1680, registry.NonASCIIWhitespace}, // Ogham space mark
	{0x2000, 0x200A, registry.NonASCIIWhitespace}, // various general-punctuation spaces
	{0x2028, 0x2029, registry.NonASCIIWhitespace}, // line/paragraph separator
	{0x202F, 0x202F, registry.NonASCIIWhitespace}, // narrow no-break space
	{0x205F, 0x205F, registry.NonASCIIWhitespace}, // medium mathematical space
	{0x3000, 0x3000, registry.NonASCIIWhitespace}, // ideographic space
}

// zeroWidthRanges are zero-width / directional-formatting codepoints.
// U+FEFF is handled separately by the caller (BOM-vs-ZERO_WIDTH split
// depends on token position, not just codepoint value).
var zeroWidthRanges = []rangeTag{
	{0x200B, 0x200D, registry.ZeroWidth}, // ZWSP, ZWNJ, ZWJ
	{0x200E, 0x200F, registry.ZeroWidth}, // LRM, RLM
	{0x202A, 0x202E, registry.ZeroWidth}, // directional formatting
	{0x2060, 0x2064, registry.ZeroWidth}, // word joiner, invisible operators
	{0x2066, 0x2069, registry.ZeroWidth}, // LRI, RLI, FSI, PDI
}

var combiningRanges = []rangeTag{
	{0x0300, 0x036F, registry.CombiningDiacritic},
	{0x1DC0, 0x1DFF, registry.CombiningDiacritic},
	{0xFE20, 0xFE2F, registry.CombiningDiacritic},
}

var scriptRanges = []rangeTag{
	{0x0250, 0x02AF, registry.IPALetter},

	{0x0370, 0x03FF, registry.Greek},
	{0x1F00, 0x1FFF, registry.Greek},

	{0x0400, 0x052F, registry.Cyrillic},
	{0x2DE0, 0x2DFF, registry.Cyrillic}, // Cyrillic Extended-A
	{0xA640, 0xA69F, registry.Cyrillic}, // Cyrillic Extended-B

	{0x0530, 0x058F, registry.Armenian},
	{0x0590, 0x05FF, registry.Hebrew},

	{0x0700, 0x074F, registry.Syriac},
	{0x0780, 0x07BF, registry.Thaana},

	{0x0900, 0x097F, registry.Devanagari},
	{0x0980, 0x09FF, registry.Bengali},
	{0x0A00, 0x0A7F, registry.Gurmukhi},
	{0x0A80, 0x0AFF, registry.Gujarati},
	{0x0B00, 0x0B7F, registry.Oriya},
	{0x0B80, 0x0BFF, registry.Tamil},
	{0x0C00, 0x0C7F, registry.Telugu},
	{0x0C80, 0x0CFF, registry.Kannada},
	{0x0D00, 0x0D7F, registry.Malayalam},
	{0x0D80, 0x0DFF, registry.Sinhala},

	{0x0E00, 0x0E7F, registry.Thai},
	{0x0E80, 0x0EFF, registry.Lao},

	{0x1000, 0x109F, registry.Myanmar},
	{0xA9E0, 0xA9FF, registry.Myanmar}, // Myanmar Extended-B
	{0xAA60, 0xAA7F, registry.Myanmar}, // Myanmar Extended-A

	{0x1200, 0x137F, registry.Ethiopic},
	{0x1380, 0x139F, registry.Ethiopic},
	{0x2D80, 0x2DDF, registry.Ethiopic},

	{0x13A0, 0x13FF, registry.Cherokee},
	{0xAB70, 0xABBF, registry.Cherokee},

	{0x1400, 0x167F, registry.CanadianSyllabics},
	{0x18B0, 0x18FF, registry.CanadianSyllabics},

	{0x1681, 0x169C, registry.Ogham}, // Ogham space mark (0x1680) handled as whitespace
	{0x16A0, 0x16FF, registry.Runic},

	{0x1780, 0x17FF, registry.Khmer},
	{0x19E0, 0x19FF, registry.Khmer},

	{0x1800, 0x18AF, registry.Mongolian},
	{0x1A00, 0x1A1F, registry.Buginese},
	{0x1B80, 0x1BBF, registry.Sundanese},
	{0x1CC0, 0x1CCF, registry.Sundanese},

	{0xA980, 0xA9DF, registry.Javanese},

	{0xAAE0, 0xAAFF, registry.MeeteiMayek},
	{0xABC0, 0xABFF, registry.MeeteiMayek},

	{0xA000, 0xA48F, registry.Yi},
	{0xA490, 0xA4CF, registry.Yi},
	{0xA4D0, 0xA4FF, registry.Lisu},

	{0x1100, 0x11FF, registry.Hangul},
	{0x3130, 0x318F, registry.Hangul},
	{0xA960, 0xA97F, registry.Hangul},
	{0xAC00, 0xD7A3, registry.Hangul},
	{0xD7B0, 0xD7FF, registry.Hangul},

	{0x10330, 0x1034F, registry.Gothic},
	{0x10900, 0x1091F, registry.Phoenician},
	{0x12000, 0x1247F, registry.Cuneiform},
	{0x13000, 0x1342F, registry.EgyptianHieroglyph},

	{0x4E00, 0x9FFF, registry.CJK},
	{0x2E80, 0x2EFF, registry.CJK},
	{0x2F00, 0x2FDF, registry.CJK},
	{0x3040, 0x309F, registry.CJK}, // Hiragana
	{0x30A0, 0x30FF, registry.CJK}, // Katakana
	{0x3100, 0x312F, registry.CJK}, // Bopomofo
	{0xF900, 0xFAFF, registry.CJK}, // CJK Compatibility Ideographs

	{0x3200, 0x33FF, registry.CJKSquaredLatinAbbrev}, // Enclosed CJK Letters/Months + CJK Compatibility

	{0x20000, 0x3FFFF, registry.CJKExtended},

	{0x1F300, 0x1F5FF, registry.Pictograph},
	{0x1F600, 0x1F64F, registry.Pictograph},
	{0x1F680, 0x1F6FF, registry.Pictograph},
	{0x1F900, 0x1F9FF, registry.Pictograph},

	{0x1D400, 0x1D7FF, registry.MathAlphanumeric},

	{0x2100, 0x214F, registry.LetterlikeSymbol},

	{0x2190, 0x21FF, registry.ArrowSymbol},
	{0x27F0, 0x27FF, registry.ArrowSymbol},
	{0x2900, 0x297F, registry.ArrowSymbol},
	{0x2B00, 0x2B2F, registry.ArrowSymbol},

	{0x2200, 0x22FF, registry.MathematicalOperator},
	{0x2A00, 0x2AFF, registry.MathematicalOperator},

	{0x2300, 0x23FF, registry.TechnicalSymbol},
	{0x2400, 0x245F, registry.TechnicalSymbol}, // control pictures + OCR

	{0x2460, 0x24FF, registry.EnclosedAlphanumeric},

	{0x2500, 0x257F, registry.BoxDrawing},
	{0x2580, 0x25FF, registry.GeometricShape}, // block elements + geometric shapes

	{0x2600, 0x26FF, registry.MiscSymbol},
	{0x2700, 0x27BF, registry.MiscSymbol}, // dingbats

	{0xFF00, 0xFFEF, registry.Fullwidth},
}

// georgianSubRange classifies a Georgian-block codepoint into its
// finer-grained sub-category; spec.md calls out Asomtavruli, Nuskhuri,
// standard Mkhedruli, archaic letters, and the emphasis mark separately.
func georgianSubRange(r rune) (registry.Tag, bool) {
	switch {
	case inRange(r, 0x10A0, 0x10C5):
		return registry.GeorgianAsomtavruli, true
	case r == 0x10C7 || r == 0x10CD:
		return registry.GeorgianArchaic, true
	case r == 0x10FC:
		return registry.GeorgianEmphasis, true
	case inRange(r, 0x10D0, 0x10FA), inRange(r, 0x10FD, 0x10FF):
		return registry.Georgian, true
	case inRange(r, 0x2D00, 0x2D2F):
		return registry.GeorgianNuskhuri, true
	case inRange(r, 0x1C90, 0x1CBF):
		return registry.GeorgianArchaic, true
	}
	return 0, false
}

// tibetanPunctuationRanges holds the codepoints spec.md distinguishes as
// Tibetan punctuation rather than letters.
var tibetanPunctuationRanges = []rangeTag{
	{0x0F01, 0x0F0A, registry.TibetanPunctuation},
	{0x0F0D, 0x0F14, registry.TibetanPunctuation},
	{0x0F3A, 0x0F3F, registry.TibetanPunctuation},
	{0x0FBE, 0x0FC5, registry.TibetanPunctuation},
	{0x0FD0, 0x0FD4, registry.TibetanPunctuation},
}

func tibetanSubRange(r rune) registry.Tag {
	for _, rg := range tibetanPunctuationRanges {
		if inRange(r, rg.lo, rg.hi) {
			return registry.TibetanPunctuation
		}
	}
	return registry.TibetanLetter
}

// latinPlusRanges are Latin letters outside the base ASCII range that,
// absent a language-specific allowance, are tagged LATIN_PLUS_ALPHA.
var latinPlusRanges = []rangeTag{
	{0x00C0, 0x00FF, registry.LatinPlusAlpha},
	{0x0100, 0x017F, registry.LatinPlusAlpha},
	{0x0180, 0x024F, registry.LatinPlusAlpha},
	{0x1E00, 0x1EFF, registry.LatinPlusAlpha},
}

func lookup(r rune, ranges []rangeTag) (registry.Tag, bool) {
	for _, rg := range ranges {
		if inRange(r, rg.lo, rg.hi) {
			return rg.tag, true
		}
	}
	return 0, false
}
