package driven

import "github.com/custodia-labs/decker-cli/internal/core/domain"

// Splitter cleans document text and partitions it into bounded,
// overlapping chunks. Output preserves source document order, then
// intra-document split order.
type Splitter interface {
	// Split produces chunks of at most the configured size, with the
	// configured overlap shared between consecutive chunks of one source.
	Split(docs []domain.Document) []domain.Chunk
}
