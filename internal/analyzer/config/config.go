// Package config defines the analyzer's immutable run configuration and
// the clamping/validation rules of spec.md §3 and §6.
package config

import (
	"fmt"

	analyzererrors "github.com/wildebeest-nlp/wildebeest/internal/analyzer/errors"
	"github.com/wildebeest-nlp/wildebeest/internal/analyzer/langpolicy"
)

const (
	DefaultMaxExamples  = 20
	DefaultMaxLocations = 10
	DefaultLongTokenMin = 20

	HardMaxExamples  = 1000
	HardMaxLocations = 100
)

// Config is immutable after construction (spec.md §3). Build one with
// New, which applies the clamping/validation rules and returns any
// warnings generated along the way.
type Config struct {
	MaxExamples            int
	MaxLocations           int
	ShowAllCategories      bool
	FirstFieldIsSentenceID bool
	LanguageCode           string // normalized; "" if none configured
	LongTokenMin           int
}

// Params are the raw, as-entered values from the CLI/config-file
// collaborator (spec.md §6), before validation.
type Params struct {
	MaxExamples            int
	MaxLocations           int
	ShowAllCategories      bool
	FirstFieldIsSentenceID bool
	LanguageCode           string
	LongTokenMin           int
}

// New validates and clamps p into a Config, returning every warning
// raised along the way. Per spec.md §7, an out-of-range configuration
// value is clamped or ignored, never fatal.
func New(p Params) (*Config, []analyzererrors.Warning) {
	var warnings []analyzererrors.Warning

	cfg := &Config{
		ShowAllCategories:      p.ShowAllCategories,
		FirstFieldIsSentenceID: p.FirstFieldIsSentenceID,
	}

	cfg.MaxExamples = p.MaxExamples
	if cfg.MaxExamples <= 0 {
		cfg.MaxExamples = DefaultMaxExamples
	} else if cfg.MaxExamples > HardMaxExamples {
		warnings = append(warnings, analyzererrors.New(
			analyzererrors.WarnMaxExamplesClamped,
			"max_examples exceeds hard cap; clamped to 1000"))
		cfg.MaxExamples = HardMaxExamples
	}

	cfg.MaxLocations = p.MaxLocations
	if cfg.MaxLocations <= 0 {
		cfg.MaxLocations = DefaultMaxLocations
	} else if cfg.MaxLocations > HardMaxLocations {
		warnings = append(warnings, analyzererrors.New(
			analyzererrors.WarnMaxLocationsClamped,
			"max_locations exceeds hard cap; clamped to 100"))
		cfg.MaxLocations = HardMaxLocations
	}

	cfg.LongTokenMin = p.LongTokenMin
	if cfg.LongTokenMin <= 0 {
		if p.LongTokenMin != 0 {
			warnings = append(warnings, analyzererrors.New(
				analyzererrors.WarnLongTokenMinInvalid,
				"long_token_min must be positive; using default"))
		}
		cfg.LongTokenMin = DefaultLongTokenMin
	}

	code := langpolicy.Normalize(p.LanguageCode)
	if !langpolicy.Valid(code) {
		warnings = append(warnings, analyzererrors.New(
			analyzererrors.WarnUnknownLanguageCode,
			fmt.Sprintf("unrecognized language_code %q; proceeding with no language policy", p.LanguageCode)))
		code = ""
	}
	cfg.LanguageCode = code

	return cfg, warnings
}
