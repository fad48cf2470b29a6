package commands

import (
	"os"
	"strconv"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/wildebeest-nlp/wildebeest/internal/cli/config"
	"github.com/wildebeest-nlp/wildebeest/internal/cli/ui"
)

var initForce bool

// NewInitCommand creates the init command: an interactive wizard that
// writes a wildebeest.yml the config loader reads back.
func NewInitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a wildebeest.yml config file",
		Long:  "Walk through the analyzer's configuration surface and write wildebeest.yml.",
		RunE:  runInit,
	}

	cmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing wildebeest.yml")

	return cmd
}

func runInit(cmd *cobra.Command, args []string) error {
	if config.InProject() && !initForce {
		ui.WriteError(cmd.ErrOrStderr(), ui.ErrorOptions{
			Level:   ui.ErrorLevelError,
			Problem: "wildebeest.yml already exists (use --force to overwrite)",
		})
		return nil
	}

	answers := struct {
		LanguageCode      string
		MaxExamples       string
		MaxLocations      string
		ShowAllCategories bool
		SentenceIDMode    bool
	}{}

	questions := []*survey.Question{
		{
			Name: "languagecode",
			Prompt: &survey.Input{
				Message: "Language code (empty for none):",
				Help:    "Enables a per-language suppression/allow policy, e.g. eng, de, ara",
			},
		},
		{
			Name: "maxexamples",
			Prompt: &survey.Input{
				Message: "Max distinct example tokens per category:",
				Default: strconv.Itoa(defaultMaxExamples),
			},
		},
		{
			Name: "maxlocations",
			Prompt: &survey.Input{
				Message: "Max locations recorded per example:",
				Default: strconv.Itoa(defaultMaxLocations),
			},
		},
		{
			Name: "showallcategories",
			Prompt: &survey.Confirm{
				Message: "Show every category, including ones with zero occurrences?",
				Default: false,
			},
		},
		{
			Name: "sentenceidmode",
			Prompt: &survey.Confirm{
				Message: "Does each line start with a sentence/example ID field?",
				Default: false,
			},
		},
	}

	if err := survey.Ask(questions, &answers); err != nil {
		return err
	}

	maxExamples, _ := strconv.Atoi(answers.MaxExamples)
	maxLocations, _ := strconv.Atoi(answers.MaxLocations)

	cfg := config.Config{
		Analyzer: config.AnalyzerConfig{
			LanguageCode:           answers.LanguageCode,
			MaxExamples:            maxExamples,
			MaxLocations:           maxLocations,
			ShowAllCategories:      answers.ShowAllCategories,
			FirstFieldIsSentenceID: answers.SentenceIDMode,
		},
		Server: config.ServerConfig{
			Port: 8088,
			Host: "localhost",
		},
		History: config.HistoryConfig{
			Driver: "sqlite",
			DSN:    "wildebeest.db",
		},
	}

	out, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	if err := os.WriteFile("wildebeest.yml", out, 0o644); err != nil {
		return err
	}

	ui.WriteSuccess(cmd.OutOrStdout(), "Wrote wildebeest.yml", false)
	return nil
}

const (
	defaultMaxExamples  = 20
	defaultMaxLocations = 10
)
