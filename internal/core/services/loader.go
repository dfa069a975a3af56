package services

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/decker-cli/internal/core/domain"
	"github.com/custodia-labs/decker-cli/internal/core/ports/driven"
	"github.com/custodia-labs/decker-cli/internal/logger"
)

// LoaderService walks a directory tree and extracts every supported
// document. Files with unregistered extensions are skipped, not errors.
type LoaderService struct {
	registry driven.ExtractorRegistry
}

// NewLoaderService creates a loader backed by the given extractor registry.
func NewLoaderService(registry driven.ExtractorRegistry) *LoaderService {
	return &LoaderService{registry: registry}
}

// LoadDir extracts all supported documents under dir, in lexical walk
// order. A file whose extraction fails is skipped with a warning so one
// corrupt file cannot sink a whole ingestion. Returns
// domain.ErrNoDocuments when nothing usable was extracted.
func (l *LoaderService) LoadDir(ctx context.Context, dir string) ([]domain.Document, error) {
	var docs []domain.Document

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			// Skip hidden directories like .git
			if name := d.Name(); name != "." && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}

		ext := strings.ToLower(filepath.Ext(path))
		extractor, ok := l.registry.ForExtension(ext)
		if !ok {
			logger.Debug("Skipping unsupported file: %s", path)
			return nil
		}

		doc, err := extractor.Extract(ctx, path)
		if err != nil {
			logger.Warn("Failed to extract %s: %v", path, err)
			return nil
		}
		if strings.TrimSpace(doc.Content) == "" {
			logger.Debug("Skipping empty document: %s", path)
			return nil
		}

		docs = append(docs, *doc)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}

	if len(docs) == 0 {
		return nil, fmt.Errorf("%s: %w", dir, domain.ErrNoDocuments)
	}

	logger.Debug("Loaded %d documents from %s", len(docs), dir)
	return docs, nil
}
