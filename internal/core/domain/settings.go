package domain

import "time"

// Default pipeline tuning values.
const (
	// DefaultChunkSize is the target chunk length in characters.
	DefaultChunkSize = 800

	// DefaultChunkOverlap is the number of characters shared between
	// consecutive chunks of the same source.
	DefaultChunkOverlap = 150

	// DefaultTopK is the number of chunks retrieved for topic-level grounding.
	DefaultTopK = 5

	// DefaultSlideTopK is the number of chunks retrieved for per-slide grounding.
	DefaultSlideTopK = 3

	// DefaultSlideTarget is the slide count used when the caller gives none.
	DefaultSlideTarget = 7

	// DefaultStageTimeout bounds each pipeline stage.
	DefaultStageTimeout = 3 * time.Minute
)

// EmbeddingSettings configures the embedding provider.
type EmbeddingSettings struct {
	// Provider is "openai" or "ollama".
	Provider string

	// Model is the embedding model identifier.
	Model string

	// APIKey authenticates hosted providers.
	APIKey string

	// BaseURL overrides the provider endpoint.
	BaseURL string

	// Dimensions overrides the model's default output dimensionality.
	Dimensions int

	// BatchSize is the maximum texts per embedding request.
	BatchSize int
}

// IsConfigured returns true if the settings name a provider.
func (s *EmbeddingSettings) IsConfigured() bool {
	return s != nil && s.Provider != ""
}

// LLMSettings configures the text-generation provider.
type LLMSettings struct {
	// Provider is "openai", "anthropic" or "ollama".
	Provider string

	// Model is the generation model identifier.
	Model string

	// APIKey authenticates hosted providers.
	APIKey string

	// BaseURL overrides the provider endpoint.
	BaseURL string
}

// IsConfigured returns true if the settings name a provider.
func (s *LLMSettings) IsConfigured() bool {
	return s != nil && s.Provider != ""
}

// Settings is the full decker configuration.
type Settings struct {
	// DataDir is where the persisted vector index lives.
	// Fixed for the process; callers needing per-tenant isolation
	// must key the path externally.
	DataDir string

	// OutputDir is where rendered decks and drafts are written.
	OutputDir string

	// ChunkSize is the target chunk length in characters.
	ChunkSize int

	// ChunkOverlap is the overlap between consecutive chunks.
	ChunkOverlap int

	// TopK is the retrieval depth for topic-level grounding.
	TopK int

	// SlideTopK is the retrieval depth for per-slide grounding.
	SlideTopK int

	// Optimize enables the optional format optimization stage.
	Optimize bool

	// StageTimeout bounds each pipeline stage; zero means the default.
	StageTimeout time.Duration

	// Embedding configures the embedding provider.
	Embedding EmbeddingSettings

	// LLM configures the generation provider.
	LLM LLMSettings
}

// Normalised returns a copy with zero values replaced by defaults.
func (s Settings) Normalised() Settings {
	if s.ChunkSize <= 0 {
		s.ChunkSize = DefaultChunkSize
	}
	if s.ChunkOverlap < 0 || s.ChunkOverlap >= s.ChunkSize {
		s.ChunkOverlap = DefaultChunkOverlap
		if s.ChunkOverlap >= s.ChunkSize {
			s.ChunkOverlap = s.ChunkSize / 5
		}
	}
	if s.TopK <= 0 {
		s.TopK = DefaultTopK
	}
	if s.SlideTopK <= 0 {
		s.SlideTopK = DefaultSlideTopK
	}
	if s.StageTimeout <= 0 {
		s.StageTimeout = DefaultStageTimeout
	}
	return s
}
