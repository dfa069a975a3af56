package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/custodia-labs/decker-cli/internal/core/domain"
	"github.com/custodia-labs/decker-cli/internal/core/ports/driven"
	"github.com/custodia-labs/decker-cli/internal/core/ports/driving"
	"github.com/custodia-labs/decker-cli/internal/logger"
)

// Ensure RAGService implements the interface.
var _ driving.RAGPipeline = (*RAGService)(nil)

// RAGService wires document loading, splitting and the vector store
// into the ingest/load/query pipeline.
type RAGService struct {
	loader   *LoaderService
	splitter driven.Splitter
	store    driven.VectorStore

	mu        sync.Mutex
	ingesting bool
	loaded    bool
}

// NewRAGService creates the retrieval pipeline.
func NewRAGService(loader *LoaderService, splitter driven.Splitter, store driven.VectorStore) *RAGService {
	return &RAGService{
		loader:   loader,
		splitter: splitter,
		store:    store,
	}
}

// Ingest runs load, split, embed and persist end to end for all
// supported documents under dir, fully replacing any existing index.
// Only one ingestion may run at a time; a concurrent call gets
// domain.ErrIngestInProgress instead of queueing.
func (s *RAGService) Ingest(ctx context.Context, dir string) error {
	s.mu.Lock()
	if s.ingesting {
		s.mu.Unlock()
		return domain.ErrIngestInProgress
	}
	s.ingesting = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.ingesting = false
		s.mu.Unlock()
	}()

	logger.Section("Ingestion")

	docs, err := s.loader.LoadDir(ctx, dir)
	if err != nil {
		return err
	}

	chunks := s.splitter.Split(docs)
	if len(chunks) == 0 {
		return fmt.Errorf("%s: %w", dir, domain.ErrNoDocuments)
	}
	logger.Debug("Split %d documents into %d chunks", len(docs), len(chunks))

	if err := s.store.Build(ctx, chunks); err != nil {
		return fmt.Errorf("build index: %w", err)
	}

	s.mu.Lock()
	s.loaded = true
	s.mu.Unlock()

	logger.Info("Ingested %d documents (%d chunks)", len(docs), len(chunks))
	return nil
}

// Load attaches the pipeline to the persisted index. Safe to call more
// than once; subsequent calls are no-ops after the first success.
func (s *RAGService) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loaded {
		return nil
	}

	if err := s.store.Load(ctx); err != nil {
		if errors.Is(err, domain.ErrIndexAbsent) {
			return err
		}
		return fmt.Errorf("load index: %w", err)
	}

	s.loaded = true
	return nil
}

// Query retrieves up to k chunks relevant to the text, ranked by
// descending similarity.
func (s *RAGService) Query(ctx context.Context, text string, k int) ([]domain.Chunk, error) {
	s.mu.Lock()
	loaded := s.loaded
	s.mu.Unlock()

	if !loaded {
		return nil, domain.ErrNotLoaded
	}
	if k <= 0 {
		k = domain.DefaultTopK
	}

	scored, err := s.store.Search(ctx, text, k)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	chunks := make([]domain.Chunk, len(scored))
	for i, sc := range scored {
		chunks[i] = sc.Chunk
	}
	return chunks, nil
}
