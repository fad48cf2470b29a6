package reportio

import (
	"encoding/json"
	"io"

	"github.com/wildebeest-nlp/wildebeest/internal/analyzer/registry"
	"github.com/wildebeest-nlp/wildebeest/internal/analyzer/report"
)

// bucket is one of the fixed top-level keys of the structured dump
// described in spec.md §6.
type bucket string

const (
	bucketLetterScript  bucket = "letter-script"
	bucketNumberScript  bucket = "number-script"
	bucketOtherScript   bucket = "other-script"
	bucketNonCanonical  bucket = "non-canonical"
	bucketCharConflict  bucket = "char-conflict"
	bucketNotableToken  bucket = "notable-token"
	bucketPattern       bucket = "pattern"
	bucketBlock         bucket = "block"
)

// entryExample is one [token, location] pair in a bucket entry's ex list.
type entryExample struct {
	Token    string `json:"token"`
	Location string `json:"location"`
}

// entry is one inner record of a bucket. Not every field applies to
// every bucket; spec.md §6 reserves orig/norm/*-count/*-form/changes for
// the non-canonical bucket specifically.
type entry struct {
	Char       string         `json:"char,omitempty"`
	ID         string         `json:"id,omitempty"`
	Name       string         `json:"name,omitempty"`
	Count      uint64         `json:"count"`
	Examples   []entryExample `json:"ex"`
	Orig       string         `json:"orig,omitempty"`
	Norm       string         `json:"norm,omitempty"`
	OrigCount  uint64         `json:"orig-count,omitempty"`
	NormCount  uint64         `json:"norm-count,omitempty"`
	OrigForm   string         `json:"orig-form,omitempty"`
	NormForm   string         `json:"norm-form,omitempty"`
	Changes    string         `json:"changes,omitempty"`
}

// Document is the full structured dump, keyed the way spec.md §6 names
// the top level: n_lines, n_characters, then one map per bucket.
type Document struct {
	NLines      uint64                    `json:"n_lines"`
	NCharacters uint64                    `json:"n_characters"`
	Buckets     map[bucket]map[string]entry `json:"-"`
}

// MarshalJSON flattens Buckets into the document's top level alongside
// n_lines/n_characters, matching the nested-mapping shape spec.md §6
// describes rather than nesting it under a "buckets" key.
func (d Document) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(d.Buckets)+2)
	out["n_lines"] = d.NLines
	out["n_characters"] = d.NCharacters
	for b, m := range d.Buckets {
		out[string(b)] = m
	}
	return json.Marshal(out)
}

// BuildDocument assembles the structured-output shape from r. Entries are
// keyed by the tag's stable name (script name, block name, or pattern
// name, per spec.md §6); conflict-pair and non-canonical keys reuse the
// same tag-name key since this analyzer does not track distinct
// original/normalized form pairs independently of their tag.
func BuildDocument(r *report.Report, nCharacters uint64) Document {
	doc := Document{
		NLines:      r.TotalLines,
		NCharacters: nCharacters,
		Buckets:     make(map[bucket]map[string]entry),
	}

	for _, sec := range r.Sections {
		if sec.Count == 0 {
			continue
		}
		b := classify(sec.Tag)
		m := doc.Buckets[b]
		if m == nil {
			m = make(map[string]entry)
			doc.Buckets[b] = m
		}

		ex := make([]entryExample, 0, len(sec.Examples))
		for _, e := range sec.Examples {
			loc := ""
			if len(e.Locations) > 0 {
				loc = string(e.Locations[0])
			}
			ex = append(ex, entryExample{Token: e.Token, Location: loc})
		}

		m[sec.Name] = entry{
			Name:     sec.Description,
			Count:    sec.Count,
			Examples: ex,
		}
	}

	return doc
}

// classify buckets a tag into one of the fixed structured-output
// top-level keys, mirroring the category groupings of spec.md §4.1.
func classify(t registry.Tag) bucket {
	switch {
	case t == registry.NonUTF8 || t == registry.UTF8NonShortest:
		return bucketNonCanonical
	case isScriptTag(t):
		return bucketBlock
	case isNumberTag(t):
		return bucketNumberScript
	case isConflictTag(t):
		return bucketCharConflict
	case isPatternTag(t):
		return bucketPattern
	case isNotableTokenTag(t):
		return bucketNotableToken
	default:
		return bucketOtherScript
	}
}

func isScriptTag(t registry.Tag) bool {
	switch t {
	case registry.ASCIILetter, registry.LatinPlusAlpha, registry.LanguageSpecific,
		registry.Greek, registry.Cyrillic, registry.Armenian, registry.Hebrew,
		registry.ArabicLetter, registry.Devanagari, registry.Bengali, registry.Gurmukhi,
		registry.Gujarati, registry.Oriya, registry.Tamil, registry.Telugu, registry.Kannada,
		registry.Malayalam, registry.Sinhala, registry.Thai, registry.Lao, registry.Khmer,
		registry.Myanmar, registry.Mongolian, registry.Georgian, registry.Ethiopic,
		registry.Cherokee, registry.CanadianSyllabics, registry.CJK, registry.Hangul:
		return true
	}
	return false
}

func isNumberTag(t registry.Tag) bool {
	switch t {
	case registry.ArabicDigit, registry.ArabicIndicDigit:
		return true
	}
	return false
}

func isConflictTag(t registry.Tag) bool {
	switch t {
	case registry.MixedArabicASCII, registry.MixedCJKASCII, registry.MixedCyrillicLatin,
		registry.ArabicPrefixASCII:
		return true
	}
	return false
}

func isPatternTag(t registry.Tag) bool {
	switch t {
	case registry.UnsplitPunctAlphaHyphen, registry.UnsplitPunct, registry.UnsplitApoS,
		registry.UnsplitApoV, registry.UnsplitNot, registry.NumUnsplitPeriod, registry.UnsplitPeriod,
		registry.BenUnsplitPeriod, registry.BenUnsplitApo, registry.BenUnsplitPunct,
		registry.BrokenURL, registry.BrokenEmail, registry.BrokenFilename,
		registry.BrokenURLFuzzy, registry.BrokenEmailFuzzy, registry.SplitXML,
		registry.XMLEscDec, registry.XMLEscHex, registry.XMLEscStd, registry.XMLEscABC,
		registry.UnusualPunctComb, registry.LongToken20, registry.LongToken30:
		return true
	}
	return false
}

func isNotableTokenTag(t registry.Tag) bool {
	switch t {
	case registry.Email, registry.URL, registry.Hashtag, registry.Handle, registry.XML,
		registry.Info, registry.SuspiciousURL:
		return true
	}
	return false
}

// WriteJSON writes doc to w as indented JSON.
func WriteJSON(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
