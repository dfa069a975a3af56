package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/decker-cli/internal/core/domain"
)

// fakeSplitter emits one chunk per document.
type fakeSplitter struct{}

func (fakeSplitter) Split(docs []domain.Document) []domain.Chunk {
	chunks := make([]domain.Chunk, 0, len(docs))
	for i, doc := range docs {
		chunks = append(chunks, domain.Chunk{
			ID:       doc.ID,
			Source:   doc.Source,
			Path:     doc.Path,
			Content:  doc.Content,
			Position: i,
		})
	}
	return chunks
}

// fakeVectorStore keeps the built chunks in memory and serves them back
// in insertion order, ignoring similarity.
type fakeVectorStore struct {
	mu       sync.Mutex
	built    []domain.Chunk
	hasIndex bool

	// When set, Build signals entry on buildStarted and then blocks
	// until buildGate closes.
	buildStarted chan struct{}
	buildGate    chan struct{}
}

func (f *fakeVectorStore) Build(_ context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return domain.ErrEmptyInput
	}
	if f.buildStarted != nil {
		close(f.buildStarted)
		<-f.buildGate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.built = append([]domain.Chunk(nil), chunks...)
	f.hasIndex = true
	return nil
}

func (f *fakeVectorStore) Load(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.hasIndex {
		return domain.ErrIndexAbsent
	}
	return nil
}

func (f *fakeVectorStore) Search(_ context.Context, _ string, k int) ([]domain.ScoredChunk, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var results []domain.ScoredChunk
	for i, c := range f.built {
		if i >= k {
			break
		}
		results = append(results, domain.ScoredChunk{Chunk: c, Similarity: 1.0 - float64(i)*0.1})
	}
	return results, nil
}

func (f *fakeVectorStore) Close() error { return nil }

func newTestRAG(t *testing.T, store *fakeVectorStore) *RAGService {
	t.Helper()
	return NewRAGService(newTestLoader(&fakeTextExtractor{}), fakeSplitter{}, store)
}

func TestRAGService_IngestThenQuery(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "first document")
	writeFile(t, dir, "b.txt", "second document")

	store := &fakeVectorStore{}
	rag := newTestRAG(t, store)

	require.NoError(t, rag.Ingest(context.Background(), dir))

	chunks, err := rag.Query(context.Background(), "document", 5)
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, "first document", chunks[0].Content)
}

func TestRAGService_IngestEmptyDir(t *testing.T) {
	rag := newTestRAG(t, &fakeVectorStore{})

	err := rag.Ingest(context.Background(), t.TempDir())
	assert.ErrorIs(t, err, domain.ErrNoDocuments)
}

func TestRAGService_QueryBeforeLoad(t *testing.T) {
	rag := newTestRAG(t, &fakeVectorStore{hasIndex: true})

	_, err := rag.Query(context.Background(), "anything", 3)
	assert.ErrorIs(t, err, domain.ErrNotLoaded)
}

func TestRAGService_LoadAbsentIndex(t *testing.T) {
	rag := newTestRAG(t, &fakeVectorStore{})

	err := rag.Load(context.Background())
	assert.ErrorIs(t, err, domain.ErrIndexAbsent)
}

func TestRAGService_LoadThenQuery(t *testing.T) {
	store := &fakeVectorStore{
		built:    []domain.Chunk{{ID: "c1", Content: "persisted"}},
		hasIndex: true,
	}
	rag := newTestRAG(t, store)

	require.NoError(t, rag.Load(context.Background()))

	chunks, err := rag.Query(context.Background(), "persisted", 1)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "persisted", chunks[0].Content)
}

func TestRAGService_ConcurrentIngestRejected(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "content")

	store := &fakeVectorStore{
		buildStarted: make(chan struct{}),
		buildGate:    make(chan struct{}),
	}
	rag := newTestRAG(t, store)

	done := make(chan error, 1)
	go func() {
		done <- rag.Ingest(context.Background(), dir)
	}()

	// Wait until the first ingestion is inside Build, then race a second one.
	<-store.buildStarted
	assert.ErrorIs(t, rag.Ingest(context.Background(), dir), domain.ErrIngestInProgress)

	close(store.buildGate)
	require.NoError(t, <-done)
}
