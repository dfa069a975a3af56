package driving

import (
	"context"

	"github.com/custodia-labs/decker-cli/internal/core/domain"
)

// DeckGenerator runs the staged deck generation pipeline.
type DeckGenerator interface {
	// Run executes outline, expand, review, optional optimize and export
	// in strict order over a fresh DeckState and returns the terminal
	// state. Failures are reported as *domain.StageError carrying the
	// failing stage; no partial artifact is produced on failure.
	// The background argument is optional free-text context for grounding.
	Run(ctx context.Context, topic string, slideTarget int, background string) (*domain.DeckState, error)
}
