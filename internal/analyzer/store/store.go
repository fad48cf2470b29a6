// Package store implements the Example Store: bounded, per-category
// bookkeeping of issue counts, distinct example tokens, and their
// locations, as specified in spec.md §4.2.
package store

import (
	"github.com/wildebeest-nlp/wildebeest/internal/analyzer/registry"
)

// Mode controls per-token dedup when Note is called by the character
// classifier while walking a single token's codepoints.
type Mode int

const (
	// ModeInitial clears the per-token "already noted" set and always
	// records. Pass this for the first decoded codepoint of a token.
	ModeInitial Mode = iota
	// ModeFollowUp records only if the tag was not already noted for the
	// current token. Pass this for codepoints after the first.
	ModeFollowUp
	// ModeUnconditional neither reads nor writes the noted set. Pass this
	// for whole-token checks, which run once per token by construction.
	ModeUnconditional
)

// Location is an opaque location identifier: a 1-based line number by
// default, or a sentence ID when the caller configures that mode. The
// store never interprets it.
type Location string

// Example is a (token, occurrence-count, locations) record for one
// category tag.
type Example struct {
	Token       string
	Occurrences uint64
	Locations   []Location
}

// Category holds the run-accumulated state for one registry.Tag.
type Category struct {
	Description string
	Count       uint64

	examples     map[string]*Example
	order        []string // insertion order of distinct example tokens
	ExamplesFull bool
}

// Examples returns the category's distinct examples in insertion order.
func (c *Category) Examples() []*Example {
	out := make([]*Example, 0, len(c.order))
	for _, tok := range c.order {
		out = append(out, c.examples[tok])
	}
	return out
}

// Store is the Example Store: lazily-created Category records for every
// tag noted during a run, plus the per-token dedup set used by ModeFollowUp.
type Store struct {
	maxExamples  int
	maxLocations int

	categories map[registry.Tag]*Category
	noted      map[registry.Tag]bool
}

// New creates a Store bounded by maxExamples distinct examples per
// category and maxLocations locations per example. Callers are expected
// to have already clamped these to the hard caps in spec.md §3.
func New(maxExamples, maxLocations int) *Store {
	return &Store{
		maxExamples:  maxExamples,
		maxLocations: maxLocations,
		categories:   make(map[registry.Tag]*Category),
	}
}

// Category returns the record for tag, or nil if it was never noted.
func (s *Store) Category(tag registry.Tag) *Category {
	return s.categories[tag]
}

// Categories returns every tag that has been noted at least once, in no
// particular order; callers needing report order should iterate
// registry.All() and look each up instead.
func (s *Store) Categories() map[registry.Tag]*Category {
	return s.categories
}

// BeginToken clears the per-token dedup set. Note with ModeInitial calls
// it before recording, which is how the char classifier starts each new
// token's dedup window.
func (s *Store) BeginToken() {
	if s.noted == nil {
		return
	}
	for k := range s.noted {
		delete(s.noted, k)
	}
}

// Note records one occurrence of tag against example at location,
// honoring the dedup semantics of mode. When char is non-empty and tag
// has a registered _CHAR sibling (registry.CharSibling), the sibling is
// always recorded against char — per-character tags are never subject to
// per-token dedup, so every character that matches is counted, per
// spec.md's testable "per-character tagging" property.
func (s *Store) Note(tag registry.Tag, example string, loc Location, mode Mode, char string) {
	switch mode {
	case ModeInitial:
		s.BeginToken()
		s.record(tag, example, loc)
		s.mark(tag)
	case ModeFollowUp:
		if !s.isNoted(tag) {
			s.record(tag, example, loc)
			s.mark(tag)
		}
	default: // ModeUnconditional
		s.record(tag, example, loc)
	}

	if char != "" {
		if sibling, ok := registry.CharSibling(tag); ok {
			s.record(sibling, char, loc)
		}
	}
}

func (s *Store) isNoted(tag registry.Tag) bool {
	return s.noted != nil && s.noted[tag]
}

func (s *Store) mark(tag registry.Tag) {
	if s.noted == nil {
		s.noted = make(map[registry.Tag]bool)
	}
	s.noted[tag] = true
}

// record is the unconditional count+example bookkeeping step; it is the
// only place that mutates a Category.
func (s *Store) record(tag registry.Tag, example string, loc Location) {
	cat := s.categories[tag]
	if cat == nil {
		cat = &Category{
			Description: tag.Description(),
			examples:    make(map[string]*Example),
		}
		s.categories[tag] = cat
	}
	cat.Count++

	if ex, ok := cat.examples[example]; ok {
		ex.Occurrences++
		if len(ex.Locations) < s.maxLocations {
			ex.Locations = append(ex.Locations, loc)
		}
		return
	}

	if len(cat.order) < s.maxExamples {
		cat.examples[example] = &Example{
			Token:       example,
			Occurrences: 1,
			Locations:   []Location{loc},
		}
		cat.order = append(cat.order, example)
		return
	}

	cat.ExamplesFull = true
}

// LoadCategory installs a category directly, in the given example order,
// bypassing the per-run dedup bookkeeping Note applies. Used to
// reconstruct a Store from a serialized shard (internal/shard) or from a
// persisted snapshot, where the examples already reflect a finished
// accumulation.
func (s *Store) LoadCategory(tag registry.Tag, description string, count uint64, examplesFull bool, examples []*Example) {
	cat := &Category{
		Description:  description,
		Count:        count,
		ExamplesFull: examplesFull,
		examples:     make(map[string]*Example, len(examples)),
	}
	for _, ex := range examples {
		cat.examples[ex.Token] = ex
		cat.order = append(cat.order, ex.Token)
	}
	s.categories[tag] = cat
}

// Merge folds src's per-tag state into dst using the same count-sum,
// example-union, and location-concat-with-cap rule Note applies within a
// single run — the per-tag summation spec.md §5 describes for a sharded
// implementation that merges stores at the end.
func Merge(dst, src *Store) {
	for tag, srcCat := range src.categories {
		dstCat := dst.categories[tag]
		if dstCat == nil {
			dstCat = &Category{
				Description: srcCat.Description,
				examples:    make(map[string]*Example),
			}
			dst.categories[tag] = dstCat
		}
		dstCat.Count += srcCat.Count
		if srcCat.ExamplesFull {
			dstCat.ExamplesFull = true
		}

		for _, tok := range srcCat.order {
			ex := srcCat.examples[tok]
			if existing, ok := dstCat.examples[tok]; ok {
				existing.Occurrences += ex.Occurrences
				for _, loc := range ex.Locations {
					if len(existing.Locations) >= dst.maxLocations {
						break
					}
					existing.Locations = append(existing.Locations, loc)
				}
				continue
			}

			if len(dstCat.order) >= dst.maxExamples {
				dstCat.ExamplesFull = true
				continue
			}

			locs := append([]Location(nil), ex.Locations...)
			if len(locs) > dst.maxLocations {
				locs = locs[:dst.maxLocations]
			}
			dstCat.examples[tok] = &Example{Token: tok, Occurrences: ex.Occurrences, Locations: locs}
			dstCat.order = append(dstCat.order, tok)
		}
	}
}
