package driven

import (
	"context"

	"github.com/custodia-labs/decker-cli/internal/core/domain"
)

// Renderer turns a terminal deck state into a presentation artifact.
// It is an external collaborator: renderer-specific failures are
// surfaced verbatim by the export stage.
type Renderer interface {
	// Render writes the deck to outputPath and returns the path of the
	// produced file. The state is terminal; Render must not mutate it.
	Render(ctx context.Context, state *domain.DeckState, outputPath string) (string, error)
}
