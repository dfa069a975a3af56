package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/decker-cli/internal/adapters/driven/vectorstore/sqlite"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration and knowledge base status",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	store, settings, err := loadSettings()
	if err != nil {
		return err
	}

	cmd.Printf("Config:     %s\n", store.Path())
	cmd.Printf("Data dir:   %s\n", settings.DataDir)
	cmd.Printf("Output dir: %s\n", settings.OutputDir)

	if settings.Embedding.IsConfigured() {
		cmd.Printf("Embedding:  %s (%s)\n", settings.Embedding.Provider, orDefault(settings.Embedding.Model))
	} else {
		cmd.Println("Embedding:  not configured")
	}
	if settings.LLM.IsConfigured() {
		cmd.Printf("LLM:        %s (%s)\n", settings.LLM.Provider, orDefault(settings.LLM.Model))
	} else {
		cmd.Println("LLM:        not configured")
	}

	// The index database lives under the data dir when ingest has run.
	if _, err := os.Stat(sqlite.IndexPath(settings.DataDir)); err == nil {
		cmd.Println("Index:      present")
	} else {
		cmd.Println("Index:      absent (run 'decker ingest <dir>')")
	}
	return nil
}

func orDefault(model string) string {
	if model == "" {
		return "default model"
	}
	return model
}
