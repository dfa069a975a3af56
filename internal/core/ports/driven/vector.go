package driven

import (
	"context"

	"github.com/custodia-labs/decker-cli/internal/core/domain"
)

// VectorStore persists chunk embeddings at a fixed location and serves
// similarity queries over them. The persisted index is process-wide
// shared state: created or wholly replaced by Build, read by Load and
// Search, never mutated in place otherwise.
type VectorStore interface {
	// Build embeds the chunks and persists a fresh index, fully
	// replacing any prior index at the store's location.
	// Returns domain.ErrEmptyInput when chunks is empty.
	Build(ctx context.Context, chunks []domain.Chunk) error

	// Load attaches the store to the persisted index.
	// Returns domain.ErrIndexAbsent when no index has ever been built;
	// callers must distinguish that from a transient failure.
	Load(ctx context.Context) error

	// Search returns up to k chunks ranked by descending similarity to
	// the query text. An empty result is not an error.
	Search(ctx context.Context, query string, k int) ([]domain.ScoredChunk, error)

	// Close releases resources.
	Close() error
}
