// Package prescan implements the Line Pre-Scanner (spec.md §4.5): a
// whole-line pass, run before tokenization, that recognizes constructs a
// naive whitespace tokenizer would otherwise split apart — URLs, emails,
// filenames, and XML markup broken across a space — plus XML character
// escapes and other unusual punctuation combinations.
package prescan

import (
	"regexp"
	"strings"

	"github.com/wildebeest-nlp/wildebeest/internal/analyzer/registry"
	"github.com/wildebeest-nlp/wildebeest/internal/analyzer/store"
)

// triggerSubstrings gate the full pattern list: a line containing none of
// these can only ever match the XML-escape sub-list, so the expensive
// full pass is skipped.
var triggerSubstrings = []string{"http", "www", " @ ", "&", `\ "`}

type rule struct {
	tag registry.Tag
	re  *regexp.Regexp
}

// fullRules is the ordered list run on lines containing a trigger
// substring. Order matters: a specific, well-formed pattern must precede
// its fuzzier fallback so a clean broken URL is never reclassified as
// BROKEN_URL_FUZZY (spec.md §4.5).
var fullRules = []rule{
	{registry.BrokenURL, regexp.MustCompile(`(?i)\bhttps?://\S+\s+\S*\.(?:com|org|net|edu|gov|io|co|us|uk)\b`)},
	{registry.BrokenEmail, regexp.MustCompile(`(?i)\b[\w.+-]+\s+@\s*[\w.-]+\.[a-z]{2,}\b`)},
	{registry.BrokenFilename, regexp.MustCompile(`(?i)\b[\w-]+\s+\.\s*(?:cgi|doc|docx|gif|html?|pdf|jpe?g|png|txt|zip|exe|php)\b`)},
	{registry.SplitXML, regexp.MustCompile(`<\s*/?\s*[A-Za-z][\w:.-]*\s*/?\s*>`)},
	{registry.XMLEscDec, regexp.MustCompile(`&#[0-9]+;`)},
	{registry.XMLEscHex, regexp.MustCompile(`(?i)&#x[0-9a-f]+;`)},
	{registry.XMLEscStd, regexp.MustCompile(`&(?:amp|lt|gt|quot|apos|nbsp);`)},
	{registry.XMLEscABC, regexp.MustCompile(`&[A-Za-z][A-Za-z0-9]*;`)},
	{registry.BrokenURLFuzzy, regexp.MustCompile(`(?i)\bwww\s+\.\s*\S+`)},
	{registry.BrokenEmailFuzzy, regexp.MustCompile(`(?i)\b[\w.+-]+\s*@\s+[\w.-]+`)},
	{registry.UnusualPunctComb, regexp.MustCompile(`\\\s+"`)},
}

// xmlEscapeRules is the sub-list run on lines with no trigger substring:
// XML numeric/named character escapes can appear regardless of whether
// the line also looks like a broken URL/email/filename.
var xmlEscapeRules = []rule{
	fullRules[4], // XML_ESC_DEC
	fullRules[5], // XML_ESC_HEX
	fullRules[6], // XML_ESC_STD
	fullRules[7], // XML_ESC_ABC
}

// Scan repeatedly matches line against the applicable ordered rule list,
// recording each match against loc and blanking the matched span with
// equivalent whitespace so token boundaries elsewhere survive, then
// re-attempts the list against the updated line. It returns the
// (possibly blanked) line for the tokenizer to consume. The loop
// terminates when no rule matches.
func Scan(s *store.Store, line string, loc store.Location) string {
	rules := xmlEscapeRules
	if hasTrigger(line) {
		rules = fullRules
	}

	for {
		matched := false
		for _, r := range rules {
			span := r.re.FindStringIndex(line)
			if span == nil {
				continue
			}
			s.Note(r.tag, line[span[0]:span[1]], loc, store.ModeUnconditional, "")
			line = line[:span[0]] + strings.Repeat(" ", span[1]-span[0]) + line[span[1]:]
			matched = true
			break
		}
		if !matched {
			break
		}
	}
	return line
}

func hasTrigger(line string) bool {
	for _, t := range triggerSubstrings {
		if strings.Contains(line, t) {
			return true
		}
	}
	return false
}
