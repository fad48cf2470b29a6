// Package analyzer wires the Category Registry, Example Store, Character
// Classifier, Token Classifier, Line Pre-Scanner, Language Policy, and
// Aggregator together into the Driver described in spec.md §2 item 8 and
// §5: a single-threaded, strictly sequential pass over the input line
// stream with cooperative, line-granularity cancellation.
package analyzer

import (
	"context"
	"strconv"
	"strings"

	"github.com/wildebeest-nlp/wildebeest/internal/analyzer/config"
	"github.com/wildebeest-nlp/wildebeest/internal/analyzer/langpolicy"
	"github.com/wildebeest-nlp/wildebeest/internal/analyzer/prescan"
	"github.com/wildebeest-nlp/wildebeest/internal/analyzer/report"
	"github.com/wildebeest-nlp/wildebeest/internal/analyzer/store"
	"github.com/wildebeest-nlp/wildebeest/internal/analyzer/tokenclass"
	"github.com/wildebeest-nlp/wildebeest/internal/input"
)

// Driver owns the line loop and the run's accumulated state. It is the
// only component in this package that is not stateless across tokens.
type Driver struct {
	cfg  *config.Config
	lang *langpolicy.Policy
	st   *store.Store

	totalLines      uint64
	totalTokens     uint64
	fastTrackTokens uint64

	progress         func(lines, tokens uint64)
	progressInterval uint64
}

// defaultProgressInterval is how many lines the driver processes between
// progress callbacks, when one is set.
const defaultProgressInterval = 200

// SetProgressFunc registers fn to be called periodically (every ~200
// lines) with the lines/tokens consumed so far, for a caller exposing
// run progress (e.g. the report API's websocket endpoint) while
// classification is still in flight. It never affects the report itself
// ­— spec.md's "no partial streaming output" constraint applies only to
// the classification result, not to this telemetry.
func (d *Driver) SetProgressFunc(fn func(lines, tokens uint64)) {
	d.progress = fn
	d.progressInterval = defaultProgressInterval
}

// New constructs a Driver for one run, with a fresh Example Store sized
// per cfg's clamped limits.
func New(cfg *config.Config) *Driver {
	return &Driver{
		cfg:  cfg,
		lang: langpolicy.New(cfg.LanguageCode),
		st:   store.New(cfg.MaxExamples, cfg.MaxLocations),
	}
}

// Run consumes lines from r until exhaustion or ctx is cancelled, then
// builds and returns the final Report. Cancellation is observed only
// between lines (spec.md §5): a token in progress always runs to
// completion, so the returned report reflects every line processed
// before the signal was seen.
func (d *Driver) Run(ctx context.Context, r *input.Reader) (*report.Report, error) {
	for {
		select {
		case <-ctx.Done():
			return d.buildReport(), nil
		default:
		}

		line, ok := r.Next()
		if !ok {
			break
		}
		d.processLine(line.Number, line.Text)

		if d.progress != nil && d.totalLines%d.progressInterval == 0 {
			d.progress(d.totalLines, d.totalTokens)
		}
	}

	if d.progress != nil {
		d.progress(d.totalLines, d.totalTokens)
	}

	if err := r.Err(); err != nil {
		return d.buildReport(), err
	}
	return d.buildReport(), nil
}

// processLine normalizes whitespace, resolves the location identifier,
// runs the Line Pre-Scanner, then classifies each surviving
// whitespace-delimited token.
func (d *Driver) processLine(number int, text string) {
	d.totalLines++

	normalized := collapseWhitespace(text)
	loc := store.Location(strconv.Itoa(number))
	rest := normalized

	if d.cfg.FirstFieldIsSentenceID {
		if id, remainder, ok := splitFirstField(normalized); ok {
			loc = store.Location(id)
			rest = remainder
		}
	}

	scanned := prescan.Scan(d.st, rest, loc)

	for _, tok := range strings.Fields(scanned) {
		d.totalTokens++
		if tokenclass.Classify(d.st, d.cfg, d.lang, tok, loc) {
			d.fastTrackTokens++
		}
	}
}

func (d *Driver) buildReport() *report.Report {
	return report.Build(d.st, d.cfg, d.lang, d.totalTokens, d.totalLines, d.fastTrackTokens)
}

// collapseWhitespace strips leading/trailing ASCII space/tab and
// collapses interior runs to a single space, per spec.md §6.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// splitFirstField separates the sentence-ID field from the rest of an
// already-normalized line.
func splitFirstField(s string) (id, rest string, ok bool) {
	i := strings.IndexByte(s, ' ')
	if i < 0 {
		if s == "" {
			return "", "", false
		}
		return s, "", true
	}
	return s[:i], s[i+1:], true
}
