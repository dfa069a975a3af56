package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/decker-cli/internal/core/domain"
	"github.com/custodia-labs/decker-cli/internal/core/ports/driven"
	"github.com/custodia-labs/decker-cli/internal/core/ports/driving"
	"github.com/custodia-labs/decker-cli/internal/logger"
)

// Ensure DeckService implements the interface.
var _ driving.DeckGenerator = (*DeckService)(nil)

// DeckConfig tunes the generation pipeline.
type DeckConfig struct {
	// TopK is the retrieval depth for topic-level grounding.
	TopK int

	// SlideTopK is the retrieval depth for per-slide grounding.
	SlideTopK int

	// Optimize enables the format optimization stage.
	Optimize bool

	// StageTimeout bounds each pipeline stage.
	StageTimeout time.Duration

	// OutputDir is where rendered decks and drafts are written.
	OutputDir string
}

// DeckService runs the staged deck generation pipeline:
// outline, expand, review, optional optimize, export.
type DeckService struct {
	rag       driving.RAGPipeline
	generator driven.Generator
	renderer  driven.Renderer
	config    DeckConfig
}

// NewDeckService creates the deck generation pipeline.
func NewDeckService(rag driving.RAGPipeline, generator driven.Generator, renderer driven.Renderer, config DeckConfig) *DeckService {
	if config.TopK <= 0 {
		config.TopK = domain.DefaultTopK
	}
	if config.SlideTopK <= 0 {
		config.SlideTopK = domain.DefaultSlideTopK
	}
	if config.StageTimeout <= 0 {
		config.StageTimeout = domain.DefaultStageTimeout
	}
	if config.OutputDir == "" {
		config.OutputDir = "generated_decks"
	}
	return &DeckService{
		rag:       rag,
		generator: generator,
		renderer:  renderer,
		config:    config,
	}
}

// Run executes the full pipeline over a fresh DeckState and returns the
// terminal state. Failures are reported as *domain.StageError carrying
// the failing stage; no partial artifact is produced on failure.
func (s *DeckService) Run(ctx context.Context, topic string, slideTarget int, background string) (*domain.DeckState, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, fmt.Errorf("topic: %w", domain.ErrInvalidInput)
	}
	if slideTarget <= 0 {
		slideTarget = domain.DefaultSlideTarget
	}

	state := &domain.DeckState{
		RunID:       uuid.New().String(),
		Topic:       topic,
		SlideTarget: slideTarget,
		Context:     background,
	}

	logger.Section("Deck Generation")
	logger.Info("Run %s: %q, %d slides", state.RunID, topic, slideTarget)

	stages := []struct {
		stage domain.Stage
		run   func(context.Context, *domain.DeckState) error
	}{
		{domain.StageOutline, s.runOutline},
		{domain.StageExpand, s.runExpand},
		{domain.StageReview, s.runReview},
		{domain.StageOptimize, s.runOptimize},
		{domain.StageExport, s.runExport},
	}

	for _, st := range stages {
		logger.Info("%s", state.Phase())
		if err := s.runStage(ctx, st.stage, state, st.run); err != nil {
			return state, err
		}
	}

	return state, nil
}

// runStage executes one stage under its own timeout and wraps any
// failure in a StageError.
func (s *DeckService) runStage(ctx context.Context, stage domain.Stage, state *domain.DeckState, run func(context.Context, *domain.DeckState) error) error {
	stageCtx, cancel := context.WithTimeout(ctx, s.config.StageTimeout)
	defer cancel()

	if err := run(stageCtx, state); err != nil {
		var se *domain.StageError
		if errors.As(err, &se) {
			return err
		}
		return domain.NewStageError(stage, err)
	}
	return nil
}

// gatherContext retrieves up to k chunks for the query and joins their
// text into a prompt block. Retrieval failures never fail a stage: the
// fallback text is used so generation can proceed ungrounded.
func (s *DeckService) gatherContext(ctx context.Context, query string, k int, fallback string) string {
	chunks, err := s.rag.Query(ctx, query, k)
	if err != nil {
		logger.Debug("Retrieval unavailable for %q: %v", query, err)
		return fallback
	}
	if len(chunks) == 0 {
		return fallback
	}

	parts := make([]string, len(chunks))
	for i, c := range chunks {
		parts[i] = c.Content
	}
	return strings.Join(parts, "\n\n")
}
