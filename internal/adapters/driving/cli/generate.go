package cli

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/decker-cli/internal/core/domain"
	"github.com/custodia-labs/decker-cli/internal/logger"
)

var (
	generateSlides   int
	generateContext  string
	generateFiles    string
	generateOptimize bool
)

var generateCmd = &cobra.Command{
	Use:   "generate [topic]",
	Short: "Generate a slide deck about a topic",
	Long: `Runs the staged generation pipeline: outline, content expansion,
factual review against the knowledge base, optional format optimization
and export. The rendered deck and an outline draft are written to the
output directory.

Statements the reviewer could not verify are marked needs_review in the
rendered deck; generated content is not guaranteed to be factually
correct.`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().IntVarP(&generateSlides, "slides", "n", domain.DefaultSlideTarget, "number of slides to generate")
	generateCmd.Flags().StringVarP(&generateContext, "context", "c", "", "extra background context for grounding")
	generateCmd.Flags().StringVarP(&generateFiles, "files", "f", "", "ingest this directory before generating")
	generateCmd.Flags().BoolVar(&generateOptimize, "optimize", false, "add design hints to each statement")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	topic := args[0]

	_, settings, err := loadSettings()
	if err != nil {
		return err
	}

	rag, cleanup, err := newRAGService(settings)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if generateFiles != "" {
		if err := rag.Ingest(ctx, generateFiles); err != nil {
			return fmt.Errorf("ingest %s: %w", generateFiles, err)
		}
		cmd.Printf("Ingested documents from %s\n", generateFiles)
	}

	// Generation works ungrounded when no index exists yet; every
	// prompt then carries the no-documents placeholder.
	if err := rag.Load(ctx); err != nil {
		if !errors.Is(err, domain.ErrIndexAbsent) {
			return err
		}
		logger.Warn("No knowledge base found; generating without document grounding")
	}

	deck, generator, err := newDeckService(settings, rag, generateOptimize)
	if err != nil {
		return err
	}
	defer generator.Close()

	state, err := deck.Run(ctx, topic, generateSlides, generateContext)
	if err != nil {
		var stageErr *domain.StageError
		if errors.As(err, &stageErr) {
			return fmt.Errorf("generation failed during %s: %w", stageErr.Stage, stageErr.Err)
		}
		return err
	}

	printRunSummary(cmd, state)
	return nil
}

// printRunSummary reports the produced artifact and any statements the
// reviewer flagged.
func printRunSummary(cmd *cobra.Command, state *domain.DeckState) {
	cmd.Printf("Deck written to %s\n", state.OutputFile)
	cmd.Printf("Slides: %d\n", len(state.FinalSlides))

	flagged := 0
	for _, slide := range state.FinalSlides {
		for _, item := range slide.Content {
			if item.Status == domain.StatusNeedsReview {
				flagged++
			}
		}
	}
	if flagged > 0 {
		cmd.Printf("Review needed: %d statements could not be verified against the knowledge base\n", flagged)
	}
}
