package driving

import (
	"context"

	"github.com/custodia-labs/decker-cli/internal/core/domain"
)

// RAGPipeline builds and queries the document knowledge base.
type RAGPipeline interface {
	// Ingest runs load, split, embed and persist end to end for all
	// supported documents under dir. It rebuilds the index from scratch;
	// running it twice with different documents discards the earlier
	// index entirely. Returns domain.ErrNoDocuments when the walk
	// extracts nothing usable.
	Ingest(ctx context.Context, dir string) error

	// Load attaches the pipeline to the persisted index. It must be
	// called (or implicitly happen) before Query.
	// Returns domain.ErrIndexAbsent when no index has been built.
	Load(ctx context.Context) error

	// Query retrieves up to k chunks relevant to the text, ranked by
	// descending similarity. Returns domain.ErrNotLoaded when called
	// before a successful Load.
	Query(ctx context.Context, text string, k int) ([]domain.Chunk, error)
}
