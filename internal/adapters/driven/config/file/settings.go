package file

import (
	"os"
	"path/filepath"
	"time"

	"github.com/custodia-labs/decker-cli/internal/core/domain"
)

// Configuration keys recognised in config.toml (dot notation after flattening).
const (
	KeyDataDir      = "data_dir"
	KeyOutputDir    = "output_dir"
	KeyChunkSize    = "chunk_size"
	KeyChunkOverlap = "chunk_overlap"
	KeyTopK         = "top_k"
	KeySlideTopK    = "slide_top_k"
	KeyOptimize     = "optimize"
	KeyStageTimeout = "stage_timeout_seconds"

	KeyEmbeddingProvider   = "embedding.provider"
	KeyEmbeddingModel      = "embedding.model"
	KeyEmbeddingAPIKey     = "embedding.api_key"
	KeyEmbeddingBaseURL    = "embedding.base_url"
	KeyEmbeddingDimensions = "embedding.dimensions"
	KeyEmbeddingBatchSize  = "embedding.batch_size"

	KeyLLMProvider = "llm.provider"
	KeyLLMModel    = "llm.model"
	KeyLLMAPIKey   = "llm.api_key"
	KeyLLMBaseURL  = "llm.base_url"
)

// Settings builds the full domain settings from the stored configuration,
// with environment variables as an API-key fallback and defaults applied.
func (s *ConfigStore) Settings() domain.Settings {
	settings := domain.Settings{
		DataDir:      s.GetString(KeyDataDir),
		OutputDir:    s.GetString(KeyOutputDir),
		ChunkSize:    s.GetInt(KeyChunkSize),
		ChunkOverlap: s.GetInt(KeyChunkOverlap),
		TopK:         s.GetInt(KeyTopK),
		SlideTopK:    s.GetInt(KeySlideTopK),
		Optimize:     s.GetBool(KeyOptimize),
		StageTimeout: time.Duration(s.GetInt(KeyStageTimeout)) * time.Second,
		Embedding: domain.EmbeddingSettings{
			Provider:   s.GetString(KeyEmbeddingProvider),
			Model:      s.GetString(KeyEmbeddingModel),
			APIKey:     s.GetString(KeyEmbeddingAPIKey),
			BaseURL:    s.GetString(KeyEmbeddingBaseURL),
			Dimensions: s.GetInt(KeyEmbeddingDimensions),
			BatchSize:  s.GetInt(KeyEmbeddingBatchSize),
		},
		LLM: domain.LLMSettings{
			Provider: s.GetString(KeyLLMProvider),
			Model:    s.GetString(KeyLLMModel),
			APIKey:   s.GetString(KeyLLMAPIKey),
			BaseURL:  s.GetString(KeyLLMBaseURL),
		},
	}

	if settings.Embedding.APIKey == "" {
		settings.Embedding.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if settings.LLM.APIKey == "" {
		switch settings.LLM.Provider {
		case "anthropic":
			settings.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		default:
			settings.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		}
	}

	if settings.DataDir == "" {
		settings.DataDir = filepath.Join(filepath.Dir(s.filePath), "index")
	}
	if settings.OutputDir == "" {
		settings.OutputDir = "generated_decks"
	}

	return settings.Normalised()
}
