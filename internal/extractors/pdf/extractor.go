// Package pdf extracts text from PDF documents.
package pdf

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"

	"github.com/custodia-labs/decker-cli/internal/core/domain"
	"github.com/custodia-labs/decker-cli/internal/core/ports/driven"
	"github.com/custodia-labs/decker-cli/internal/logger"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles PDF documents.
type Extractor struct{}

// New creates a new PDF extractor.
func New() *Extractor {
	return &Extractor{}
}

// SupportedExtensions returns the extensions this extractor handles.
func (e *Extractor) SupportedExtensions() []string {
	return []string{".pdf"}
}

// Extract reads the PDF and concatenates the plain text of all pages.
// Pages that fail text extraction are skipped with a logged warning so
// one malformed page does not lose the whole document.
func (e *Extractor) Extract(_ context.Context, path string) (*domain.Document, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	reader, err := pdf.NewReader(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("read pdf %s: %w", path, err)
	}

	var text strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		pageText, err := page.GetPlainText(nil)
		if err != nil {
			logger.Warn("pdf %s: page %d text extraction failed: %v", filepath.Base(path), i, err)
			continue
		}

		text.WriteString(pageText)
		text.WriteString("\n")
	}

	return &domain.Document{
		ID:      uuid.New().String(),
		Source:  filepath.Base(path),
		Path:    path,
		Ext:     strings.ToLower(filepath.Ext(path)),
		Content: text.String(),
	}, nil
}
