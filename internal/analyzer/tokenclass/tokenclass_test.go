package tokenclass

import (
	"testing"

	"github.com/wildebeest-nlp/wildebeest/internal/analyzer/config"
	"github.com/wildebeest-nlp/wildebeest/internal/analyzer/registry"
	"github.com/wildebeest-nlp/wildebeest/internal/analyzer/store"
)

func newStore() *store.Store { return store.New(20, 10) }

func defaultCfg(t *testing.T) *config.Config {
	t.Helper()
	cfg, _ := config.New(config.Params{})
	return cfg
}

func TestFastTrackASCIIWord(t *testing.T) {
	s := newStore()
	Classify(s, defaultCfg(t), nil, "hello", "1")
	if cat := s.Category(registry.ASCIILetter); cat == nil || cat.Count != 1 {
		t.Fatalf("expected ASCII_LETTER count 1, got %+v", cat)
	}
	if s.Category(registry.UnsplitNot) != nil {
		t.Error("did not expect UNSPLIT_NOT for a plain word")
	}
}

func TestFastTrackCannotIsNotContraction(t *testing.T) {
	s := newStore()
	Classify(s, defaultCfg(t), nil, "cannot", "1")
	if cat := s.Category(registry.UnsplitNot); cat == nil || cat.Count != 1 {
		t.Fatalf("expected UNSPLIT_NOT for cannot, got %+v", cat)
	}
}

func TestFastTrackDigitsNoCategory(t *testing.T) {
	s := newStore()
	Classify(s, defaultCfg(t), nil, "12345", "1")
	if len(s.Categories()) != 0 {
		t.Errorf("expected no categories for pure digits, got %v", s.Categories())
	}
}

func TestEmailRecognized(t *testing.T) {
	s := newStore()
	Classify(s, defaultCfg(t), nil, "jane.doe@example.com", "1")
	if cat := s.Category(registry.Email); cat == nil || cat.Count != 1 {
		t.Fatalf("expected EMAIL, got %+v", cat)
	}
	if s.Category(registry.SuspiciousURL) != nil {
		t.Error("did not expect SUSPICIOUS_URL alongside a recognized EMAIL")
	}
}

func TestURLRecognized(t *testing.T) {
	s := newStore()
	Classify(s, defaultCfg(t), nil, "https://example.com/path", "1")
	if cat := s.Category(registry.URL); cat == nil || cat.Count != 1 {
		t.Fatalf("expected URL, got %+v", cat)
	}
}

func TestHashtagAndHandle(t *testing.T) {
	s := newStore()
	Classify(s, defaultCfg(t), nil, "#wildebeest", "1")
	Classify(s, defaultCfg(t), nil, "@wildebeest", "2")
	if s.Category(registry.Hashtag) == nil {
		t.Error("expected HASHTAG")
	}
	if s.Category(registry.Handle) == nil {
		t.Error("expected HANDLE")
	}
}

func TestSuspiciousURLNotFullyRecognized(t *testing.T) {
	s := newStore()
	Classify(s, defaultCfg(t), nil, "example.com/broken?x", "1")
	if s.Category(registry.SuspiciousURL) == nil {
		t.Error("expected SUSPICIOUS_URL for a domain-shaped but unrecognized token")
	}
	if s.Category(registry.URL) != nil {
		t.Error("did not expect URL for this token")
	}
}

func TestUnsplitApoSFlagsPossessive(t *testing.T) {
	s := newStore()
	Classify(s, defaultCfg(t), nil, "dog's", "1")
	if s.Category(registry.UnsplitApoS) == nil {
		t.Error("expected UNSPLIT_APO_S for dog's")
	}
}

func TestUnsplitApoVFlagsUnsplitContraction(t *testing.T) {
	s := newStore()
	Classify(s, defaultCfg(t), nil, "they'd", "1")
	if s.Category(registry.UnsplitApoV) == nil {
		t.Error("expected UNSPLIT_APO_V for an unsplit contraction")
	}
}

func TestBareCliticIsBenign(t *testing.T) {
	s := newStore()
	Classify(s, defaultCfg(t), nil, "'d", "1")
	if s.Category(registry.BenUnsplitApo) == nil {
		t.Error("expected BEN_UNSPLIT_APO for a bare recognized clitic")
	}
}

func TestTrailingPeriodAbbreviationIsBenign(t *testing.T) {
	s := newStore()
	Classify(s, defaultCfg(t), nil, "Dr.", "1")
	if s.Category(registry.BenUnsplitPeriod) == nil {
		t.Error("expected BEN_UNSPLIT_PERIOD for a recognized title abbreviation")
	}
	if s.Category(registry.UnsplitPeriod) != nil {
		t.Error("did not expect UNSPLIT_PERIOD for a recognized abbreviation")
	}
}

func TestTrailingPeriodOrdinaryWordIsUnsplit(t *testing.T) {
	s := newStore()
	Classify(s, defaultCfg(t), nil, "sentence.", "1")
	if s.Category(registry.UnsplitPeriod) == nil {
		t.Error("expected UNSPLIT_PERIOD for an ordinary trailing-period word")
	}
}

func TestNumUnsplitPeriod(t *testing.T) {
	s := newStore()
	Classify(s, defaultCfg(t), nil, "42.", "1")
	if s.Category(registry.NumUnsplitPeriod) == nil {
		t.Error("expected NUM_UNSPLIT_PERIOD")
	}
}

func TestMixedCyrillicLatin(t *testing.T) {
	s := newStore()
	token := string([]rune{0x043F, 0x0440, 0x0438, 0x0432, 'e', 't', 0x0441, 0x0442, 0x0432, 0x0438, 0x0435})
	Classify(s, defaultCfg(t), nil, token, "1")
	if s.Category(registry.MixedCyrillicLatin) == nil {
		t.Error("expected MIXED_CYRILLIC_LATIN")
	}
}

func TestLongToken20And30(t *testing.T) {
	s := newStore()
	long25 := "abcdefghijklmnopqrstuvwxy" // 25 ASCII chars, not pure-letters fast-tracked (>=20)
	Classify(s, defaultCfg(t), nil, long25, "1")
	if s.Category(registry.LongToken20) == nil {
		t.Error("expected LONG_TOKEN_20 for a 25-char token")
	}
	if s.Category(registry.LongToken30) != nil {
		t.Error("did not expect LONG_TOKEN_30 for a 25-char token")
	}

	s2 := newStore()
	long35 := "abcdefghijklmnopqrstuvwxyzabcdefghi" // 35 chars
	Classify(s2, defaultCfg(t), nil, long35, "1")
	if s2.Category(registry.LongToken20) == nil || s2.Category(registry.LongToken30) == nil {
		t.Error("expected both LONG_TOKEN_20 and LONG_TOKEN_30 for a 35-char token")
	}
}

func TestLongTokenAllowlistSuppressesLongToken20(t *testing.T) {
	s := newStore()
	Classify(s, defaultCfg(t), nil, "internationalization", "1")
	if s.Category(registry.LongToken20) != nil {
		t.Error("did not expect LONG_TOKEN_20 for an allowlisted long word")
	}
}

func TestDevanagariNuktaSeparate(t *testing.T) {
	s := newStore()
	// U+0915 (ka) followed by U+093C (nukta): standard separate encoding.
	token := string([]rune{0x0915, 0x093C})
	Classify(s, defaultCfg(t), nil, token, "1")
	if s.Category(registry.StdSepNukta) == nil {
		t.Error("expected STD_SEP_NUKTA")
	}
}

func TestDevanagariNuktaPrecomposed(t *testing.T) {
	s := newStore()
	token := string([]rune{0x0958}) // legacy precomposed qa
	Classify(s, defaultCfg(t), nil, token, "1")
	if s.Category(registry.AltCmpNukta) == nil {
		t.Error("expected ALT_CMP_NUKTA for the legacy precomposed qa")
	}
}

func TestEmptyTokenNoop(t *testing.T) {
	s := newStore()
	Classify(s, defaultCfg(t), nil, "", "1")
	if len(s.Categories()) != 0 {
		t.Errorf("expected no categories for empty token, got %v", s.Categories())
	}
}
