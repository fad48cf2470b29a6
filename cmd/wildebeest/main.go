package main

import (
	"os"

	"github.com/wildebeest-nlp/wildebeest/internal/cli/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
