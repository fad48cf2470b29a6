package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/wildebeest-nlp/wildebeest/internal/analyzer"
	analyzerconfig "github.com/wildebeest-nlp/wildebeest/internal/analyzer/config"
	analyzererrors "github.com/wildebeest-nlp/wildebeest/internal/analyzer/errors"
	"github.com/wildebeest-nlp/wildebeest/internal/analyzer/langpolicy"
	wbconfig "github.com/wildebeest-nlp/wildebeest/internal/cli/config"
	"github.com/wildebeest-nlp/wildebeest/internal/cli/ui"
	"github.com/wildebeest-nlp/wildebeest/internal/input"
	"github.com/wildebeest-nlp/wildebeest/internal/reportio"
)

var (
	analyzeMaxExamples       int
	analyzeMaxLocations      int
	analyzeLanguageCode      string
	analyzeLongTokenMin      int
	analyzeShowAllCategories bool
	analyzeSentenceIDField   bool
	analyzeJSON              bool
	analyzeNoColor           bool
	analyzeOutput            string
)

// NewAnalyzeCommand creates the analyze command: the single entry point
// for running a streaming pass over a corpus and producing the anomaly
// report described in spec.md §1-§7.
func NewAnalyzeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [file]",
		Short: "Scan a text corpus for encoding, tokenization, and script anomalies",
		Long: `Read a corpus one line at a time and report every anomalous category
the Token Classifier and Line Pre-Scanner detect: malformed UTF-8, unsplit
punctuation, suspicious URLs, mixed-script tokens, and more.

If no file is given, the corpus is read from stdin. With --first-field-is-sentence-id,
each line's leading whitespace-delimited field is treated as the example locations shown
in the report rather than a line number.

Examples:
  wildebeest analyze corpus.txt
  cat corpus.txt | wildebeest analyze
  wildebeest analyze --json --language-code de corpus.txt`,
		Args: cobra.MaximumNArgs(1),
		RunE: runAnalyze,
	}

	cmd.Flags().IntVar(&analyzeMaxExamples, "max-examples", 0, "Max distinct example tokens kept per category (0 = use config/default)")
	cmd.Flags().IntVar(&analyzeMaxLocations, "max-locations", 0, "Max locations recorded per example (0 = use config/default)")
	cmd.Flags().StringVar(&analyzeLanguageCode, "language-code", "", "Language code enabling a language-specific suppression/allow policy")
	cmd.Flags().IntVar(&analyzeLongTokenMin, "long-token-min", 0, "Lead-byte threshold for LONG_TOKEN_20 (0 = use config/default)")
	cmd.Flags().BoolVar(&analyzeShowAllCategories, "show-all", false, "Show every category, including ones with zero occurrences")
	cmd.Flags().BoolVar(&analyzeSentenceIDField, "first-field-is-sentence-id", false, "Treat each line's first field as a sentence/example ID")
	cmd.Flags().BoolVar(&analyzeJSON, "json", false, "Write the report as JSON instead of text")
	cmd.Flags().BoolVar(&analyzeNoColor, "no-color", false, "Disable ANSI color in text output")
	cmd.Flags().StringVarP(&analyzeOutput, "output", "o", "", "Write the report to this path instead of stdout")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	warnColor := color.New(color.FgYellow)
	if analyzeNoColor {
		warnColor.DisableColor()
	}

	fileCfg, err := wbconfig.Load()
	if err != nil {
		fileCfg = &wbconfig.Config{}
		warnColor.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
	}

	params := fileCfg.Analyzer.ToParams()
	applyAnalyzeFlagOverrides(cmd, &params)

	cfg, warnings := analyzerconfig.New(params)
	for _, w := range warnings {
		if w.Code == analyzererrors.WarnUnknownLanguageCode {
			suggestions := ui.FindSimilar(langpolicy.Normalize(params.LanguageCode), langpolicy.ValidCodes, nil)
			fmt.Fprint(cmd.ErrOrStderr(), ui.LanguageCodeNotFoundError(params.LanguageCode, suggestions, analyzeNoColor))
			continue
		}
		ui.WriteError(cmd.ErrOrStderr(), ui.ErrorOptions{
			Level:   ui.ErrorLevelWarning,
			Problem: w.Message,
			NoColor: analyzeNoColor,
		})
	}

	in, closeIn, err := openAnalyzeInput(args)
	if err != nil {
		return err
	}
	defer closeIn()

	out, closeOut, err := openAnalyzeOutput()
	if err != nil {
		return err
	}
	defer closeOut()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	driver := analyzer.New(cfg)
	reader := input.NewReader(in)

	spinner := ui.NewSpinner(cmd.ErrOrStderr(), ui.SpinnerOptions{
		Message: "Scanning corpus...",
		NoColor: analyzeNoColor,
	})
	spinner.Start()
	driver.SetProgressFunc(func(lines, tokens uint64) {
		spinner.UpdateMessage(fmt.Sprintf("Scanning corpus... %d lines, %d tokens", lines, tokens))
	})

	rep, err := driver.Run(ctx, reader)
	if err != nil {
		spinner.Error(fmt.Sprintf("analyze failed: %v", err))
		return fmt.Errorf("analyze: %w", err)
	}
	spinner.Success(fmt.Sprintf("Scanned %d lines, %d tokens", rep.TotalLines, rep.TotalTokens))

	if analyzeJSON {
		doc := reportio.BuildDocument(rep, 0)
		return reportio.WriteJSON(out, doc)
	}
	return reportio.WriteText(out, rep, analyzeNoColor)
}

func applyAnalyzeFlagOverrides(cmd *cobra.Command, params *analyzerconfig.Params) {
	if cmd.Flags().Changed("max-examples") {
		params.MaxExamples = analyzeMaxExamples
	}
	if cmd.Flags().Changed("max-locations") {
		params.MaxLocations = analyzeMaxLocations
	}
	if cmd.Flags().Changed("language-code") {
		params.LanguageCode = analyzeLanguageCode
	}
	if cmd.Flags().Changed("long-token-min") {
		params.LongTokenMin = analyzeLongTokenMin
	}
	if cmd.Flags().Changed("show-all") {
		params.ShowAllCategories = analyzeShowAllCategories
	}
	if cmd.Flags().Changed("first-field-is-sentence-id") {
		params.FirstFieldIsSentenceID = analyzeSentenceIDField
	}
}

func openAnalyzeInput(args []string) (*os.File, func(), error) {
	if len(args) == 0 {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(args[0])
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s: %w", args[0], err)
	}
	return f, func() { f.Close() }, nil
}

func openAnalyzeOutput() (*os.File, func(), error) {
	if analyzeOutput == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(analyzeOutput)
	if err != nil {
		return nil, nil, fmt.Errorf("creating %s: %w", analyzeOutput, err)
	}
	return f, func() { f.Close() }, nil
}
