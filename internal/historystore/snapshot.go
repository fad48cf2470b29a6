// Package historystore persists finished run reports (spec.md §6's
// output, one row per run) so successive passes over an evolving corpus
// can be compared, the same "one persistence concern, two SQL drivers"
// shape the teacher uses for its job queue and ORM layers.
package historystore

import (
	"github.com/wildebeest-nlp/wildebeest/internal/analyzer/report"
)

// CategoryCount is one category tag's run-total count, the only part of
// a Category worth persisting across runs (the distinct-example detail
// is re-derivable by re-running the analyzer; the trend is not).
type CategoryCount struct {
	Tag   string
	Count uint64
}

// Snapshot is one finished run, as handed to SaveRun.
type Snapshot struct {
	RunID           string
	LanguageCode    string
	ConfigSnapshot  string // the analyzer config, serialized as JSON
	TotalLines      uint64
	TotalTokens     uint64
	FastTrackCount  uint64
	CategoryCounts  []CategoryCount
}

// FromReport builds a Snapshot from a finished analysis run. configJSON
// is the caller's already-serialized analyzer/config.Params (or Config),
// kept opaque here since historystore has no reason to know its shape.
func FromReport(runID string, r *report.Report, configJSON string) Snapshot {
	s := Snapshot{
		RunID:          runID,
		LanguageCode:   r.LanguageCode,
		ConfigSnapshot: configJSON,
		TotalLines:     r.TotalLines,
		TotalTokens:    r.TotalTokens,
		FastTrackCount: r.FastTrackCount,
	}
	for _, sec := range r.Sections {
		if sec.Count == 0 {
			continue
		}
		s.CategoryCounts = append(s.CategoryCounts, CategoryCount{
			Tag:   sec.Tag.String(),
			Count: sec.Count,
		})
	}
	return s
}
