// Package cli wires the cobra command tree that drives the decker
// pipeline: ingest, generate, status, config and version.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/decker-cli/internal/adapters/driven/ai"
	configfile "github.com/custodia-labs/decker-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/decker-cli/internal/adapters/driven/renderer/markdown"
	"github.com/custodia-labs/decker-cli/internal/adapters/driven/vectorstore/sqlite"
	"github.com/custodia-labs/decker-cli/internal/core/domain"
	"github.com/custodia-labs/decker-cli/internal/core/ports/driven"
	"github.com/custodia-labs/decker-cli/internal/core/services"
	"github.com/custodia-labs/decker-cli/internal/extractors"
	"github.com/custodia-labs/decker-cli/internal/extractors/docx"
	"github.com/custodia-labs/decker-cli/internal/extractors/pdf"
	"github.com/custodia-labs/decker-cli/internal/extractors/plaintext"
	"github.com/custodia-labs/decker-cli/internal/logger"
	"github.com/custodia-labs/decker-cli/internal/splitter"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	verbose   bool
	configDir string
)

var rootCmd = &cobra.Command{
	Use:   "decker",
	Short: "Generate slide decks from your own documents",
	Long: `Decker builds a local knowledge base from your documents and
generates grounded, fact-checked slide decks about any topic.

Ingest a directory of documents first, then generate decks:

  decker ingest ./docs
  decker generate "Quantum Computing" --slides 7`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.decker)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadSettings opens the config store and resolves the full settings.
func loadSettings() (*configfile.ConfigStore, domain.Settings, error) {
	store, err := configfile.NewConfigStore(configDir)
	if err != nil {
		return nil, domain.Settings{}, fmt.Errorf("open config: %w", err)
	}
	return store, store.Settings(), nil
}

// newExtractorRegistry registers all built-in document extractors.
func newExtractorRegistry() *extractors.Registry {
	registry := extractors.NewRegistry()
	registry.Register(plaintext.New())
	registry.Register(pdf.New())
	registry.Register(docx.New())
	return registry
}

// newRAGService assembles the retrieval pipeline from settings. The
// returned cleanup closes the embedding service and the vector store.
func newRAGService(settings domain.Settings) (*services.RAGService, func(), error) {
	embedder, err := ai.CreateAndValidateEmbeddingService(&settings.Embedding)
	if err != nil {
		return nil, nil, err
	}

	store, err := sqlite.NewStore(sqlite.Config{
		DataDir:    settings.DataDir,
		EmbedBatch: settings.Embedding.BatchSize,
	}, embedder)
	if err != nil {
		embedder.Close()
		return nil, nil, err
	}

	split := splitter.New(
		splitter.WithChunkSize(settings.ChunkSize),
		splitter.WithOverlap(settings.ChunkOverlap),
	)
	loader := services.NewLoaderService(newExtractorRegistry())

	cleanup := func() {
		store.Close()
		embedder.Close()
	}
	return services.NewRAGService(loader, split, store), cleanup, nil
}

// newDeckService assembles the generation pipeline on top of an
// existing RAG service.
func newDeckService(settings domain.Settings, rag *services.RAGService, optimize bool) (*services.DeckService, driven.Generator, error) {
	generator, err := ai.CreateAndValidateGenerator(&settings.LLM)
	if err != nil {
		return nil, nil, err
	}

	deck := services.NewDeckService(rag, generator, markdown.NewRenderer(), services.DeckConfig{
		TopK:         settings.TopK,
		SlideTopK:    settings.SlideTopK,
		Optimize:     optimize || settings.Optimize,
		StageTimeout: settings.StageTimeout,
		OutputDir:    settings.OutputDir,
	})
	return deck, generator, nil
}
