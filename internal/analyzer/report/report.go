// Package report implements the Aggregator / Report Builder (spec.md
// §4.7): it walks the Example Store in registry order, applies the
// display-policy table, and produces an ordered, display-ready Report
// value. Rendering to text or JSON is the reportio package's job.
package report

import (
	"sort"
	"strings"

	"github.com/wildebeest-nlp/wildebeest/internal/analyzer/config"
	"github.com/wildebeest-nlp/wildebeest/internal/analyzer/langpolicy"
	"github.com/wildebeest-nlp/wildebeest/internal/analyzer/registry"
	"github.com/wildebeest-nlp/wildebeest/internal/analyzer/store"
)

// ExampleLine is one distinct-token row under a category section.
type ExampleLine struct {
	Token       string
	Occurrences uint64
	Locations   []store.Location
	Truncated   bool // true when Occurrences exceeds the printed location count
}

// Section is one category's report entry. ShowExamples false means the
// section renders as a header-only or header+note line, per the
// display-policy table in spec.md §4.7.
type Section struct {
	Tag          registry.Tag
	Name         string
	Description  string
	Count        uint64
	Suppressed   bool
	ShowExamples bool
	Examples     []ExampleLine
	ExamplesFull bool
}

// Report is the complete, ordered result of one analysis run.
type Report struct {
	TotalTokens    uint64
	TotalLines     uint64
	FastTrackCount uint64
	LanguageCode   string
	Sections       []Section
}

// Build walks s in registry (report) order and assembles a Report. lang
// may be nil (no suppression). cfg.MaxLocations is the configured cap used
// to decide whether an example's location list was truncated.
func Build(s *store.Store, cfg *config.Config, lang *langpolicy.Policy, totalTokens, totalLines, fastTrackCount uint64) *Report {
	r := &Report{
		TotalTokens:    totalTokens,
		TotalLines:     totalLines,
		FastTrackCount: fastTrackCount,
		LanguageCode:   cfg.LanguageCode,
	}

	for _, tag := range registry.All() {
		cat := s.Category(tag)
		count := uint64(0)
		var examplesFull bool
		if cat != nil {
			count = cat.Count
			examplesFull = cat.ExamplesFull
		}

		suppressed := lang.Suppresses(tag)

		sec := Section{
			Tag:         tag,
			Name:        tag.Name(),
			Description: tag.Description(),
			Count:       count,
			Suppressed:  suppressed,
		}

		switch {
		case count == 0 && !cfg.ShowAllCategories:
			continue // omit entirely
		case count == 0:
			// header only, no examples
		case !suppressed:
			sec.ShowExamples = true
		case cfg.ShowAllCategories:
			sec.ShowExamples = true
		default:
			// header + note, no examples
		}

		if sec.ShowExamples && cat != nil {
			sec.Examples = buildExamples(cat, cfg.MaxLocations)
			sec.ExamplesFull = examplesFull
		}

		r.Sections = append(r.Sections, sec)
	}

	return r
}

func buildExamples(cat *store.Category, maxLocations int) []ExampleLine {
	examples := cat.Examples()
	out := make([]ExampleLine, 0, len(examples))
	for _, ex := range examples {
		out = append(out, ExampleLine{
			Token:       ex.Token,
			Occurrences: ex.Occurrences,
			Locations:   ex.Locations,
			Truncated:   ex.Occurrences > uint64(maxLocations),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Occurrences != out[j].Occurrences {
			return out[i].Occurrences > out[j].Occurrences
		}
		return strings.ToLower(out[i].Token) < strings.ToLower(out[j].Token)
	})

	return out
}
