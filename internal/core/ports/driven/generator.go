package driven

import "context"

// Generator produces text and schema-conformant values from prompts.
// Structured output is a capability boundary: callers must never trust
// the returned shape blindly. Adapters validate what the model returned
// and report domain.ErrGeneration on mismatch.
//
// Implementations may include:
//   - OpenAI (GPT-4 family)
//   - Anthropic (Claude)
//   - Ollama (local models)
type Generator interface {
	// Generate produces a free-text completion from a prompt.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// GenerateStructured produces a JSON value conforming to the shape
	// of target (a pointer to a struct) and unmarshals into it.
	// Returns an error wrapping domain.ErrGeneration when the model
	// output cannot be parsed into the target shape.
	GenerateStructured(ctx context.Context, prompt string, target any) error

	// ModelName returns the name of the generation model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerateOptions configures text generation behaviour.
type GenerateOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64
}
