// Package reportio renders a report.Report to the two output shapes
// spec.md §6 names: a human-readable text report and an optional
// structured JSON dump.
package reportio

import (
	"fmt"
	"io"
	"strings"

	"github.com/wildebeest-nlp/wildebeest/internal/analyzer/report"
	"github.com/wildebeest-nlp/wildebeest/internal/cli/ui"
)

// WriteText renders r to w as the human-readable report described in
// spec.md §6: a leading summary line, then one block per category in
// registry order.
func WriteText(w io.Writer, r *report.Report, noColor bool) error {
	langLabel := r.LanguageCode
	if langLabel == "" {
		langLabel = "none"
	}
	ui.Header(w, fmt.Sprintf("Analysed %d tokens in %d lines (language code: %s)", r.TotalTokens, r.TotalLines, langLabel), noColor)
	fmt.Fprintln(w)

	for _, sec := range r.Sections {
		writeSection(w, sec, noColor)
	}
	return nil
}

func writeSection(w io.Writer, sec report.Section, noColor bool) {
	s := ui.NewSection(w, fmt.Sprintf("%s (%d instances)", sec.Name, sec.Count), noColor)

	if sec.Count == 0 {
		s.AddLine(sec.Description)
		s.Render()
		return
	}

	if sec.Suppressed {
		s.AddLine(fmt.Sprintf("suppressed by the configured language policy (%s)", sec.Description))
	}

	if sec.ShowExamples {
		for _, ex := range sec.Examples {
			s.AddLine(formatExample(ex))
		}
		if sec.ExamplesFull {
			s.AddLine("  …")
		}
	}

	s.Render()
}

func formatExample(ex report.ExampleLine) string {
	locs := make([]string, len(ex.Locations))
	for i, l := range ex.Locations {
		locs[i] = string(l)
	}
	suffix := strings.Join(locs, ", ")
	if ex.Truncated {
		suffix += ", …"
	}
	return fmt.Sprintf("%s (%d instances; line %s)", ex.Token, ex.Occurrences, suffix)
}
