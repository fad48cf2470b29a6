// Package tokenclass implements the Token Classifier (spec.md §4.4): the
// per-token decision cascade that runs before the Character Classifier,
// recognizing fast-track tokens, special token types (email/URL/hashtag/
// handle/XML/info), unsplit-punctuation patterns, mixed-script tokens,
// Devanagari nukta sub-analysis, and overlength tokens.
package tokenclass

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/wildebeest-nlp/wildebeest/internal/analyzer/charclass"
	"github.com/wildebeest-nlp/wildebeest/internal/analyzer/config"
	"github.com/wildebeest-nlp/wildebeest/internal/analyzer/langpolicy"
	"github.com/wildebeest-nlp/wildebeest/internal/analyzer/lexicon"
	"github.com/wildebeest-nlp/wildebeest/internal/analyzer/registry"
	"github.com/wildebeest-nlp/wildebeest/internal/analyzer/store"
)

var (
	pureASCIILetters = regexp.MustCompile(`^[A-Za-z]+$`)
	pureASCIIDigits  = regexp.MustCompile(`^[0-9]+$`)
	pureArabic       = regexp.MustCompile(`^[\x{0600}-\x{06FF}\x{0750}-\x{077F}\x{08A0}-\x{08FF}]+$`)
	pureCJK          = regexp.MustCompile(`^[\x{3400}-\x{4DBF}\x{4E00}-\x{9FFF}]+$`)

	emailPattern = regexp.MustCompile(`^[\w.%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	urlPattern   = regexp.MustCompile(`^(?:https?://|www\.)\S+\.\S+$`)
	hashtagPattern = regexp.MustCompile(`^#[A-Za-z0-9_]+$`)
	handlePattern  = regexp.MustCompile(`^@[A-Za-z0-9_]+$`)
	xmlTagPattern  = regexp.MustCompile(`^</?[A-Za-z][\w:.-]*/?>$`)
	infoPattern    = regexp.MustCompile(`^::[A-Za-z][A-Za-z0-9_]*::?$`)

	suspiciousURLPattern = regexp.MustCompile(`^\w[\w.-]*\.(com|org|net|edu|gov|io|co)[/\w.?=&#-]*$`)

	unsplitAlphaHyphenPattern = regexp.MustCompile(`^[A-Za-z]+-+`)
	unsplitApoSPattern        = regexp.MustCompile(`^[A-Za-z]+'s$`)
	unsplitApoVPattern        = regexp.MustCompile(`^[A-Za-z]+('d|'ll|'m|'ve)$`)
	notContractionPattern     = regexp.MustCompile(`(?i)^[A-Za-z]+n't$`)
	numPeriodPattern          = regexp.MustCompile(`^[0-9]+\.$`)
	trailingPeriodPattern     = regexp.MustCompile(`^[A-Za-z]+\.$`)
	embeddedPunctPattern      = regexp.MustCompile(`^[A-Za-z]+[,;:!?()\[\]{}"]+[A-Za-z]*$`)

	cyrillicRange  = regexp.MustCompile(`[\x{0400}-\x{04FF}]`)
	latinRange     = regexp.MustCompile(`[A-Za-z]`)
	arabicRangeRe  = regexp.MustCompile(`[\x{0600}-\x{06FF}]`)
	cjkRangeRe     = regexp.MustCompile(`[\x{4E00}-\x{9FFF}]`)
	asciiRangeRe   = regexp.MustCompile(`[\x00-\x7F]`)
	georgianRangeRe = regexp.MustCompile(`[\x{10A0}-\x{10FF}]`)
	arabicPrefixRe  = regexp.MustCompile(`^(?:وال|بال|لل|وب|ال|ب|ل|و)[0-9A-Za-z]`)
	leadingPunctRe  = regexp.MustCompile(`^[,;:!?()\[\]{}"'-]+`)
	trailingPunctRe = regexp.MustCompile(`[,;:!?()\[\]{}"'-]+$`)

	devanagariNuktaRe = regexp.MustCompile(`[\x{0958}-\x{095F}]|\x{093C}`)
)

// Classify runs the full token classification cascade against token and
// delegates whatever bytes survive to charclass.Classify for residual
// character-level tagging. It reports whether the token was handled by
// the fast-track path, for the driver's fast-track counter (spec.md §2
// item 8).
func Classify(s *store.Store, cfg *config.Config, lang *langpolicy.Policy, token string, loc store.Location) bool {
	if token == "" {
		return true
	}

	if fastTrack(s, cfg, token, loc) {
		return true
	}

	special := classifySpecialType(token)

	if special == typeNone {
		langCode := ""
		if lang != nil {
			langCode = lang.Code
		}
		checkUnsplitPunctuation(s, token, loc, langCode)
	}
	noteSpecialType(s, special, token, loc)

	if special != typeURL && special != typeEmail && suspiciousURLPattern.MatchString(token) {
		s.Note(registry.SuspiciousURL, token, loc, store.ModeUnconditional, "")
	}

	checkMixedScript(s, token, loc)
	checkNukta(s, token, loc)
	checkLength(s, cfg, token, loc)

	charclass.Classify(s, token, loc, lang)
	return false
}

type specialType int

const (
	typeNone specialType = iota
	typeEmail
	typeURL
	typeHashtag
	typeHandle
	typeXML
	typeInfo
)

func classifySpecialType(token string) specialType {
	switch {
	case emailPattern.MatchString(token):
		return typeEmail
	case urlPattern.MatchString(token):
		return typeURL
	case hashtagPattern.MatchString(token):
		return typeHashtag
	case handlePattern.MatchString(token):
		return typeHandle
	case xmlTagPattern.MatchString(token):
		return typeXML
	case infoPattern.MatchString(token):
		return typeInfo
	}
	return typeNone
}

func noteSpecialType(s *store.Store, t specialType, token string, loc store.Location) {
	var tag registry.Tag
	switch t {
	case typeEmail:
		tag = registry.Email
	case typeURL:
		tag = registry.URL
	case typeHashtag:
		tag = registry.Hashtag
	case typeHandle:
		tag = registry.Handle
	case typeXML:
		tag = registry.XML
	case typeInfo:
		tag = registry.Info
	default:
		return
	}
	s.Note(tag, token, loc, store.ModeUnconditional, "")
}

// fastTrack handles the high-frequency, cheap-to-decide token shapes of
// spec.md §4.4 step 1 without ever reaching the Character Classifier.
func fastTrack(s *store.Store, cfg *config.Config, token string, loc store.Location) bool {
	if pureASCIILetters.MatchString(token) && utf8.RuneCountInString(token) < cfg.LongTokenMin {
		if notContractionPattern.MatchString(token) || strings.EqualFold(token, "cannot") {
			s.Note(registry.UnsplitNot, token, loc, store.ModeUnconditional, "")
		}
		s.Note(registry.ASCIILetter, token, loc, store.ModeUnconditional, "")
		return true
	}
	if pureASCIIDigits.MatchString(token) {
		return true
	}
	if len(token) == 1 && strings.ContainsRune(".,;:!?'\"()[]{}-", rune(token[0])) {
		return true
	}
	if pureArabic.MatchString(token) && len(token) < 40 {
		s.Note(registry.ArabicLetter, token, loc, store.ModeUnconditional, "")
		return true
	}
	if pureCJK.MatchString(token) && len(token) < 60 {
		s.Note(registry.CJK, token, loc, store.ModeUnconditional, "")
		return true
	}
	return false
}

// checkUnsplitPunctuation applies spec.md §4.4 step 2's unsplit-punctuation
// rules, with the BEN_UNSPLIT_* benign exemptions checked first.
func checkUnsplitPunctuation(s *store.Store, token string, loc store.Location, langCode string) {
	lower := strings.ToLower(token)

	if unsplitAlphaHyphenPattern.MatchString(token) {
		s.Note(registry.UnsplitPunctAlphaHyphen, token, loc, store.ModeUnconditional, "")
	}

	if unsplitApoSPattern.MatchString(token) {
		s.Note(registry.UnsplitApoS, token, loc, store.ModeUnconditional, "")
	}

	if lexicon.BareClitics[lower] {
		// Already its own token (e.g. a standalone "'d"): the split already
		// happened, so this is the benign case rather than an anomaly.
		s.Note(registry.BenUnsplitApo, token, loc, store.ModeUnconditional, "")
	} else if unsplitApoVPattern.MatchString(token) {
		s.Note(registry.UnsplitApoV, token, loc, store.ModeUnconditional, "")
	}

	if notContractionPattern.MatchString(token) {
		s.Note(registry.UnsplitNot, token, loc, store.ModeUnconditional, "")
	}

	if numPeriodPattern.MatchString(token) {
		s.Note(registry.NumUnsplitPeriod, token, loc, store.ModeUnconditional, "")
	}

	if trailingPeriodPattern.MatchString(token) {
		stem := strings.TrimSuffix(lower, ".")
		if lexicon.FixedAbbreviations[lower] || lexicon.TitleAbbreviationsEnglish[stem] ||
			lexicon.MonthAbbreviations[stem] || (langCode == "mlg" && lexicon.MalagasyBibleBooks[stem]) ||
			lexicon.DomainSuffixes[stem] {
			s.Note(registry.BenUnsplitPeriod, token, loc, store.ModeUnconditional, "")
		} else {
			s.Note(registry.UnsplitPeriod, token, loc, store.ModeUnconditional, "")
		}
	}

	if embeddedPunctPattern.MatchString(token) {
		if lexicon.FileExtensions[lastDotSuffix(lower)] {
			s.Note(registry.BenUnsplitPunct, token, loc, store.ModeUnconditional, "")
		} else {
			s.Note(registry.UnsplitPunct, token, loc, store.ModeUnconditional, "")
		}
	}
}

func lastDotSuffix(s string) string {
	if i := strings.LastIndexByte(s, '.'); i >= 0 {
		return s[i+1:]
	}
	return ""
}

// checkMixedScript applies the mixed-script and punctuation-prefix/suffix
// rules of spec.md §4.4 step 5.
func checkMixedScript(s *store.Store, token string, loc store.Location) {
	hasArabic := arabicRangeRe.MatchString(token)
	hasCJK := cjkRangeRe.MatchString(token)
	hasCyrillic := cyrillicRange.MatchString(token)
	hasGeorgian := georgianRangeRe.MatchString(token)
	hasLatin := latinRange.MatchString(token)

	if hasArabic && latinRange.MatchString(token) {
		if arabicPrefixRe.MatchString(token) {
			s.Note(registry.ArabicPrefixASCII, token, loc, store.ModeUnconditional, "")
		} else {
			s.Note(registry.MixedArabicASCII, token, loc, store.ModeUnconditional, "")
		}
	}
	if hasCJK && hasLatin && asciiRangeRe.MatchString(token) {
		s.Note(registry.MixedCJKASCII, token, loc, store.ModeUnconditional, "")
	}
	if hasCyrillic && hasLatin {
		s.Note(registry.MixedCyrillicLatin, token, loc, store.ModeUnconditional, "")
	}

	if hasCyrillic && !hasLatin {
		notePunctPosition(s, token, loc,
			registry.CyrillicPunctPrefix, registry.CyrillicPunctSuffix,
			registry.CyrillicPunctPeriod, registry.CyrillicPunctMixed)
	}
	if hasGeorgian {
		notePunctPosition(s, token, loc,
			registry.GeorgianPunctPrefix, registry.GeorgianPunctSuffix,
			registry.GeorgianPunctPeriod, registry.GeorgianPunctMixed)
	}
}

func notePunctPosition(s *store.Store, token string, loc store.Location, prefix, suffix, period, mixed registry.Tag) {
	switch {
	case token == "":
		return
	case strings.HasSuffix(token, ".") && !strings.Contains(strings.TrimSuffix(token, "."), "."):
		s.Note(period, token, loc, store.ModeUnconditional, "")
	case leadingPunctRe.MatchString(token) && trailingPunctRe.MatchString(token):
		s.Note(mixed, token, loc, store.ModeUnconditional, "")
	case leadingPunctRe.MatchString(token):
		s.Note(prefix, token, loc, store.ModeUnconditional, "")
	case trailingPunctRe.MatchString(token):
		s.Note(suffix, token, loc, store.ModeUnconditional, "")
	}
}

// checkNukta applies the Devanagari nukta sub-analysis of spec.md §4.4
// step 6: a nukta combining mark (U+093C) or one of the pre-composed
// nukta letters (U+0958-095F) triggers finer-grained tagging than the
// generic DEVANAGARI script tag.
func checkNukta(s *store.Store, token string, loc store.Location) {
	if !devanagariNuktaRe.MatchString(token) {
		return
	}
	runes := []rune(token)
	for i, r := range runes {
		switch {
		case inCompRange(r):
			if legacyComposed(r) {
				s.Note(registry.AltCmpNukta, token, loc, store.ModeUnconditional, "")
			} else {
				s.Note(registry.StdCmpNukta, token, loc, store.ModeUnconditional, "")
			}
		case r == 0x093C:
			if i > 0 && isNuktaBase(runes[i-1]) {
				s.Note(registry.StdSepNukta, token, loc, store.ModeUnconditional, "")
			} else if i > 0 && isVowelSign(runes[i-1]) {
				s.Note(registry.DisVsgnNukta, token, loc, store.ModeUnconditional, "")
			} else {
				s.Note(registry.AltSepNukta, token, loc, store.ModeUnconditional, "")
			}
		}
	}
}

func inCompRange(r rune) bool { return r >= 0x0958 && r <= 0x095F }

// legacyComposed distinguishes the two historically-attested precomposed
// nukta letters (qa U+0958, khha U+0959) from the standard set.
func legacyComposed(r rune) bool { return r == 0x0958 || r == 0x0959 }

func isNuktaBase(r rune) bool { return r >= 0x0915 && r <= 0x0939 }
func isVowelSign(r rune) bool { return r >= 0x093E && r <= 0x094C }

// checkLength applies the long-token checks of spec.md §4.4 step 7. The
// two thresholds are independent: a sufficiently long token can trigger
// both LONG_TOKEN_20 and LONG_TOKEN_30.
func checkLength(s *store.Store, cfg *config.Config, token string, loc store.Location) {
	n := leadByteCount(token)
	if n >= 30 {
		s.Note(registry.LongToken30, token, loc, store.ModeUnconditional, "")
	}
	if n >= cfg.LongTokenMin && !lexicon.LongTokenAllowlist[strings.ToLower(token)] {
		s.Note(registry.LongToken20, token, loc, store.ModeUnconditional, "")
	}
}

// leadByteCount counts codepoints by counting non-continuation bytes,
// matching spec.md §4.4's "decode only lead bytes" instruction.
func leadByteCount(token string) int {
	n := 0
	for i := 0; i < len(token); i++ {
		if token[i]&0xC0 != 0x80 {
			n++
		}
	}
	return n
}
