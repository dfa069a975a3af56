// Package sqlite provides a SQLite-backed persisted vector index.
// Chunks and their embeddings live in a single database file at a fixed
// location; similarity search is brute-force cosine over all rows.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/decker-cli/internal/core/domain"
	"github.com/custodia-labs/decker-cli/internal/core/ports/driven"
	"github.com/custodia-labs/decker-cli/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// dbFileName is the index database file inside the data directory.
const dbFileName = "index.db"

// IndexPath returns the database file path for a data directory,
// usable without constructing a store.
func IndexPath(dataDir string) string {
	return filepath.Join(dataDir, dbFileName)
}

// defaultEmbedBatch is how many chunk texts are embedded per request.
const defaultEmbedBatch = 64

// schema creates the index tables. The index is rebuilt wholesale on
// every Build, so there is no migration story beyond this DDL.
const schema = `
CREATE TABLE IF NOT EXISTS chunks (
	id        TEXT PRIMARY KEY,
	source    TEXT NOT NULL,
	path      TEXT NOT NULL,
	content   TEXT NOT NULL,
	position  INTEGER NOT NULL,
	embedding BLOB NOT NULL
);
CREATE TABLE IF NOT EXISTS index_meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// pathLocks serialises ingestion per persisted location. Concurrent
// builds to the same path would race on the file; queries take the read
// side so they never observe a half-written index.
var (
	pathLocksMu sync.Mutex
	pathLocks   = make(map[string]*sync.RWMutex)
)

func lockForPath(path string) *sync.RWMutex {
	pathLocksMu.Lock()
	defer pathLocksMu.Unlock()

	l, ok := pathLocks[path]
	if !ok {
		l = &sync.RWMutex{}
		pathLocks[path] = l
	}
	return l
}

// Config holds configuration for the SQLite vector store.
type Config struct {
	// DataDir is the directory holding the index database.
	// Fixed for the process; defaults to ~/.decker/data.
	DataDir string

	// EmbedBatch is the number of texts embedded per request (default 64).
	EmbedBatch int
}

// Store persists chunk embeddings in SQLite and serves cosine top-k search.
type Store struct {
	dataDir    string
	dbPath     string
	embedder   driven.EmbeddingService
	embedBatch int
	lock       *sync.RWMutex

	mu     sync.Mutex
	db     *sql.DB
	loaded bool
}

// NewStore creates a vector store over the given embedding service.
func NewStore(cfg Config, embedder driven.EmbeddingService) (*Store, error) {
	if embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	dataDir := cfg.DataDir
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".decker", "data")
	}

	embedBatch := cfg.EmbedBatch
	if embedBatch <= 0 {
		embedBatch = defaultEmbedBatch
	}

	dbPath := IndexPath(dataDir)

	return &Store{
		dataDir:    dataDir,
		dbPath:     dbPath,
		embedder:   embedder,
		embedBatch: embedBatch,
		lock:       lockForPath(dbPath),
	}, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

// Build embeds the chunks and persists a fresh index, fully replacing
// any prior index at the store's location. The whole replacement runs
// inside one transaction under the per-path write lock, so a concurrent
// Search sees either the old index or the new one, never a mix.
func (s *Store) Build(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return domain.ErrEmptyInput
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	logger.Section("Index Build")
	logger.Info("Embedding %d chunks with %s", len(chunks), s.embedder.ModelName())

	embeddings, err := s.embedAll(ctx, chunks)
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}

	db, err := s.open()
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin build transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM chunks"); err != nil {
		return fmt.Errorf("clear previous index: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT OR REPLACE INTO chunks (id, source, path, content, position, embedding) VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, chunk := range chunks {
		blob := encodeEmbedding(embeddings[i])
		if _, err := stmt.ExecContext(ctx, chunk.ID, chunk.Source, chunk.Path, chunk.Content, chunk.Position, blob); err != nil {
			return fmt.Errorf("insert chunk %s: %w", chunk.ID, err)
		}
	}

	meta := map[string]string{
		"model":      s.embedder.ModelName(),
		"dimensions": fmt.Sprintf("%d", s.embedder.Dimensions()),
		"chunks":     fmt.Sprintf("%d", len(chunks)),
	}
	for key, value := range meta {
		if _, err := tx.ExecContext(ctx,
			"INSERT OR REPLACE INTO index_meta (key, value) VALUES (?, ?)", key, value); err != nil {
			return fmt.Errorf("write index metadata: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit index: %w", err)
	}

	s.mu.Lock()
	s.loaded = true
	s.mu.Unlock()

	logger.Info("Persisted index with %d chunks at %s", len(chunks), s.dbPath)
	return nil
}

// Load attaches the store to the persisted index.
// A location where no index was ever built reports domain.ErrIndexAbsent.
func (s *Store) Load(ctx context.Context) error {
	s.lock.RLock()
	defer s.lock.RUnlock()

	if _, err := os.Stat(s.dbPath); os.IsNotExist(err) {
		return domain.ErrIndexAbsent
	} else if err != nil {
		return fmt.Errorf("stat index: %w", err)
	}

	db, err := s.open()
	if err != nil {
		return err
	}

	// A database file without metadata means a build never completed.
	var count int
	err = db.QueryRowContext(ctx, "SELECT COUNT(*) FROM index_meta").Scan(&count)
	if err != nil {
		return fmt.Errorf("read index metadata: %w", err)
	}
	if count == 0 {
		return domain.ErrIndexAbsent
	}

	s.mu.Lock()
	s.loaded = true
	s.mu.Unlock()

	return nil
}

// Search returns up to k chunks ranked by descending cosine similarity
// to the query text. An empty result is not an error.
func (s *Store) Search(ctx context.Context, query string, k int) ([]domain.ScoredChunk, error) {
	if k <= 0 {
		k = domain.DefaultTopK
	}

	s.mu.Lock()
	loaded := s.loaded
	s.mu.Unlock()
	if !loaded {
		return nil, domain.ErrIndexAbsent
	}

	queryVec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	s.lock.RLock()
	defer s.lock.RUnlock()

	db, err := s.open()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx,
		"SELECT id, source, path, content, position, embedding FROM chunks")
	if err != nil {
		return nil, fmt.Errorf("scan index: %w", err)
	}
	defer rows.Close()

	var hits []domain.ScoredChunk
	for rows.Next() {
		var chunk domain.Chunk
		var blob []byte
		if err := rows.Scan(&chunk.ID, &chunk.Source, &chunk.Path, &chunk.Content, &chunk.Position, &blob); err != nil {
			return nil, fmt.Errorf("scan chunk row: %w", err)
		}

		similarity := cosineSimilarity(queryVec, decodeEmbedding(blob))
		hits = append(hits, domain.ScoredChunk{Chunk: chunk, Similarity: similarity})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chunk rows: %w", err)
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Similarity > hits[j].Similarity
	})

	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	s.loaded = false
	return err
}

// open lazily opens the database, creating the data directory and
// schema on first use. Callers must hold the appropriate path lock.
func (s *Store) open() (*sql.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return s.db, nil
	}

	if err := os.MkdirAll(s.dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	// WAL keeps concurrent readers usable during a rebuild
	db, err := sql.Open("sqlite", s.dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening index database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating index schema: %w", err)
	}

	s.db = db
	return db, nil
}

// embedAll embeds chunk contents in batches.
func (s *Store) embedAll(ctx context.Context, chunks []domain.Chunk) ([][]float32, error) {
	embeddings := make([][]float32, 0, len(chunks))

	for start := 0; start < len(chunks); start += s.embedBatch {
		end := start + s.embedBatch
		if end > len(chunks) {
			end = len(chunks)
		}

		texts := make([]string, 0, end-start)
		for _, chunk := range chunks[start:end] {
			texts = append(texts, chunk.Content)
		}

		batch, err := s.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, err
		}
		if len(batch) != len(texts) {
			return nil, fmt.Errorf("embedding batch returned %d vectors for %d texts", len(batch), len(texts))
		}
		embeddings = append(embeddings, batch...)
	}

	return embeddings, nil
}

// encodeEmbedding serialises a vector as little-endian float32 bytes.
func encodeEmbedding(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

// decodeEmbedding deserialises little-endian float32 bytes into a vector.
func decodeEmbedding(buf []byte) []float32 {
	vec := make([]float32, len(buf)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return vec
}

// cosineSimilarity computes the cosine similarity of two vectors.
// Mismatched lengths compare over the shorter prefix; a zero vector
// scores zero.
func cosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
