package reportio

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/wildebeest-nlp/wildebeest/internal/analyzer/config"
	"github.com/wildebeest-nlp/wildebeest/internal/analyzer/registry"
	"github.com/wildebeest-nlp/wildebeest/internal/analyzer/report"
	"github.com/wildebeest-nlp/wildebeest/internal/analyzer/store"
)

func sampleReport(t *testing.T) *report.Report {
	t.Helper()
	s := store.New(20, 10)
	s.Note(registry.ASCIILetter, "hello", "1", store.ModeUnconditional, "")
	s.Note(registry.UnsplitPeriod, "world.", "2", store.ModeUnconditional, "")
	cfg, _ := config.New(config.Params{})
	return report.Build(s, cfg, nil, 2, 2, 0)
}

func TestWriteTextIncludesSummaryAndCounts(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteText(&buf, sampleReport(t), true); err != nil {
		t.Fatalf("WriteText: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Analysed 2 tokens in 2 lines") {
		t.Errorf("missing summary line: %q", out)
	}
	if !strings.Contains(out, "ASCII_LETTER (1 instances)") {
		t.Errorf("missing ASCII_LETTER section: %q", out)
	}
	if !strings.Contains(out, "hello") {
		t.Errorf("missing example token: %q", out)
	}
}

func TestWriteJSONRoundTrips(t *testing.T) {
	doc := BuildDocument(sampleReport(t), 42)
	var buf bytes.Buffer
	if err := WriteJSON(&buf, doc); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded["n_lines"].(float64) != 2 {
		t.Errorf("n_lines = %v, want 2", decoded["n_lines"])
	}
	if decoded["n_characters"].(float64) != 42 {
		t.Errorf("n_characters = %v, want 42", decoded["n_characters"])
	}
	if _, ok := decoded["block"]; !ok {
		t.Error("expected a \"block\" bucket for ASCII_LETTER")
	}
}
