// Package lexicon holds the fixed data tables spec.md §4.4 calls for:
// domain suffixes, file extensions, abbreviation lists, and allowlists
// used by the token classifier. The line pre-scanner keeps its own
// inline lists in its regular expressions.
package lexicon

// DomainSuffixes are top-level domain strings recognized when deciding
// whether a trailing-period token is a domain-like benign exemption.
var DomainSuffixes = buildSet(
	"com", "org", "edu", "gov", "net", "mil", "int", "info", "biz", "co",
	"io", "us", "uk", "de", "fr", "jp", "cn", "ru", "in", "au", "ca", "br",
	"tv", "me", "app",
)

// FileExtensions are common filename suffixes; the token classifier
// consults them to treat an embedded-punctuation token ending in a known
// extension as BEN_UNSPLIT_PUNCT.
var FileExtensions = buildSet(
	"cgi", "doc", "docx", "gif", "html", "htm", "pdf", "jpg", "jpeg", "png",
	"txt", "zip", "tar", "gz", "exe", "php", "asp", "aspx", "js", "css",
	"xml", "json", "mp3", "mp4", "avi", "mov", "xlsx", "pptx", "csv", "log",
)

// TitleAbbreviationsEnglish are title abbreviations exempted from
// UNSPLIT_PERIOD for English and most Latin-script languages.
var TitleAbbreviationsEnglish = buildSet(
	"mr", "mrs", "ms", "dr", "prof", "st", "sr", "jr", "gen", "col", "lt",
	"capt", "rev", "hon", "sen", "rep", "gov", "pres",
)

// MonthAbbreviations are standard month abbreviations exempted the same
// way as title abbreviations.
var MonthAbbreviations = buildSet(
	"jan", "feb", "mar", "apr", "jun", "jul", "aug", "sep", "sept", "oct",
	"nov", "dec",
)

// FixedAbbreviations are the specific lower-cased tokens spec.md §4.4
// names explicitly (a.m., p.m., i.e., vs., v.).
var FixedAbbreviations = buildSet("a.m.", "p.m.", "i.e.", "e.g.", "vs.", "v.", "etc.")

// MalagasyBibleBooks is the language-specific title list for mlg.
var MalagasyBibleBooks = buildSet(
	"gen", "eks", "lev", "fan", "deo", "jos", "mpits", "rot", "sam", "mpa", "mpanj", "tant",
)

// LongTokenAllowlist holds long-but-legitimate words exempted from
// LONG_TOKEN_20 (spec.md §4.4 step 7).
var LongTokenAllowlist = buildSet(
	"counterrevolutionary", "internationalization", "telecommunications",
	"disproportionately", "characteristically", "interdisciplinary",
	"unconstitutionally", "responsibility", "incomprehensibility",
)

// BareClitics are standalone contraction suffixes exempted from
// UNSPLIT_APO_V / UNSPLIT_NOT under BEN_UNSPLIT_APO.
var BareClitics = buildSet("'d", "'ll", "'m", "n't", "'re", "'s", "'ve", "c'", "d'", "l'")

func buildSet(items ...string) map[string]bool {
	m := make(map[string]bool, len(items))
	for _, it := range items {
		m[it] = true
	}
	return m
}
