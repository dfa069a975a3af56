package driven

import (
	"context"

	"github.com/custodia-labs/decker-cli/internal/core/domain"
)

// Extractor converts one file format into plain document text.
// Each extractor handles a fixed set of file extensions.
//
// Implementations may include:
//   - PDF (page text extraction)
//   - Plain text / Markdown
//   - DOCX (word-processor documents)
type Extractor interface {
	// SupportedExtensions returns the lowercased extensions this
	// extractor handles, including the dot (e.g. ".pdf").
	SupportedExtensions() []string

	// Extract reads the file at path and returns a document with
	// Content and source metadata populated.
	Extract(ctx context.Context, path string) (*domain.Document, error)
}

// ExtractorRegistry maps file extensions to extractors.
// Unregistered extensions are a no-op skip during loading, not an error.
type ExtractorRegistry interface {
	// Register adds an extractor for all its supported extensions.
	Register(e Extractor)

	// ForExtension returns the extractor for a lowercased extension,
	// or false when none is registered.
	ForExtension(ext string) (Extractor, bool)
}
