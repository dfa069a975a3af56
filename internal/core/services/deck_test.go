package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/decker-cli/internal/core/domain"
	"github.com/custodia-labs/decker-cli/internal/core/ports/driven"
)

// fakeRAG serves a fixed chunk for every query and records the queries.
type fakeRAG struct {
	mu      sync.Mutex
	queries []string
	chunks  []domain.Chunk
	err     error
}

func (f *fakeRAG) Ingest(context.Context, string) error { return nil }
func (f *fakeRAG) Load(context.Context) error           { return nil }

func (f *fakeRAG) Query(_ context.Context, text string, _ int) ([]domain.Chunk, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, text)
	if f.err != nil {
		return nil, f.err
	}
	return f.chunks, nil
}

// fakeGenerator scripts the pipeline's model calls. Structured calls
// are answered by shape; free-text calls return expandResponse. With
// block set, every call hangs until its context is cancelled.
type fakeGenerator struct {
	mu      sync.Mutex
	calls   int
	prompts []string
	block   bool

	outline        domain.Outline
	outlineErr     error
	expandResponse string
	expandErr      error
	validations    map[string]domain.SlideValidation
	reviewErr      error
	hintResponse   string
}

func (f *fakeGenerator) record(prompt string) {
	f.mu.Lock()
	f.calls++
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()
}

func (f *fakeGenerator) allPrompts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.prompts...)
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	f.record(prompt)
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if strings.Contains(prompt, "design hint") {
		return f.hintResponse, nil
	}
	if f.expandErr != nil {
		return "", f.expandErr
	}
	return f.expandResponse, nil
}

func (f *fakeGenerator) GenerateStructured(ctx context.Context, prompt string, target any) error {
	f.record(prompt)
	if f.block {
		<-ctx.Done()
		return ctx.Err()
	}

	switch out := target.(type) {
	case *domain.Outline:
		if f.outlineErr != nil {
			return f.outlineErr
		}
		*out = f.outline
		return nil
	case *domain.SlideValidation:
		if f.reviewErr != nil {
			return f.reviewErr
		}
		for title, v := range f.validations {
			if strings.Contains(prompt, "Slide: "+title) {
				*out = v
				return nil
			}
		}
		return fmt.Errorf("no scripted validation: %w", domain.ErrGeneration)
	default:
		return fmt.Errorf("unexpected target %T: %w", target, domain.ErrGeneration)
	}
}

func (f *fakeGenerator) ModelName() string          { return "fake-model" }
func (f *fakeGenerator) Ping(context.Context) error { return nil }
func (f *fakeGenerator) Close() error               { return nil }

// fakeRenderer writes a marker file.
type fakeRenderer struct {
	err error
}

func (f *fakeRenderer) Render(_ context.Context, _ *domain.DeckState, outputPath string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if err := os.WriteFile(outputPath, []byte("rendered"), 0644); err != nil {
		return "", err
	}
	return outputPath, nil
}

// happyGenerator scripts a full successful two-slide run.
func happyGenerator() *fakeGenerator {
	expandLines := "First detailed statement.\nSecond detailed statement."
	return &fakeGenerator{
		outline: domain.Outline{Slides: []domain.SlideOutline{
			{Title: "Intro", BulletPoints: []string{"what", "why"}},
			{Title: "Details", BulletPoints: []string{"how"}},
		}},
		expandResponse: expandLines,
		validations: map[string]domain.SlideValidation{
			"Intro": {Validation: []domain.ValidationPoint{
				{Status: domain.StatusAccurate},
				{Status: domain.StatusNeedsReview, Reason: "unsupported"},
			}},
			"Details": {Validation: []domain.ValidationPoint{
				{Status: domain.StatusAccurate},
				{Status: domain.StatusAccurate},
			}},
		},
		hintResponse: "Use a bold icon",
	}
}

func newTestDeck(t *testing.T, gen *fakeGenerator, rag *fakeRAG, optimize bool) *DeckService {
	t.Helper()
	return NewDeckService(rag, gen, &fakeRenderer{}, DeckConfig{
		Optimize:  optimize,
		OutputDir: t.TempDir(),
	})
}

func TestDeckRun_FullPipeline(t *testing.T) {
	rag := &fakeRAG{chunks: []domain.Chunk{{Content: "knowledge base text"}}}
	deck := newTestDeck(t, happyGenerator(), rag, false)

	state, err := deck.Run(context.Background(), "Test Topic", 2, "extra background")
	require.NoError(t, err)

	assert.NotEmpty(t, state.RunID)
	assert.Equal(t, "Test Topic", state.Topic)
	require.NotNil(t, state.Outline)
	assert.Equal(t, []string{"Intro", "Details"}, state.SlideTitles())
	require.Len(t, state.ExpandedContent, 2)
	require.Len(t, state.ValidationResults, 2)
	require.Len(t, state.FinalSlides, 2)
	assert.Equal(t, "success", state.ExportStatus)
	assert.Equal(t, domain.PhaseComplete, state.Phase())

	// The rendered artifact and the outline draft both exist.
	_, err = os.Stat(state.OutputFile)
	assert.NoError(t, err)
	assert.True(t, strings.HasSuffix(state.OutputFile, ".md"))
	assert.Contains(t, filepath.Base(state.OutputFile), "Test_Topic_")

	draft := strings.TrimSuffix(state.OutputFile, ".md") + "_draft.txt"
	data, err := os.ReadFile(draft)
	require.NoError(t, err)
	assert.Contains(t, string(data), "1. Intro")
}

func TestDeckRun_ReviewPinsStatementText(t *testing.T) {
	gen := happyGenerator()
	// The model returns different statement text; the pipeline must keep
	// the expanded statements verbatim.
	gen.validations["Intro"] = domain.SlideValidation{
		Title: "Rewritten Title",
		Validation: []domain.ValidationPoint{
			{Point: "made up", Status: domain.StatusAccurate, Reason: "stray reason"},
			{Point: "also made up", Status: domain.StatusNeedsReview, Reason: "unsupported"},
		},
	}
	deck := newTestDeck(t, gen, &fakeRAG{}, false)

	state, err := deck.Run(context.Background(), "Topic", 2, "")
	require.NoError(t, err)

	intro := state.ValidationResults[0]
	assert.Equal(t, "Intro", intro.Title)
	assert.Equal(t, "First detailed statement.", intro.Validation[0].Point)
	assert.Empty(t, intro.Validation[0].Reason, "accurate verdicts carry no reason")
	assert.Equal(t, "Second detailed statement.", intro.Validation[1].Point)
}

func TestDeckRun_NeedsReviewWithoutReasonFails(t *testing.T) {
	gen := happyGenerator()
	gen.validations["Intro"] = domain.SlideValidation{
		Validation: []domain.ValidationPoint{
			{Status: domain.StatusNeedsReview},
			{Status: domain.StatusAccurate},
		},
	}
	deck := newTestDeck(t, gen, &fakeRAG{}, false)

	_, err := deck.Run(context.Background(), "Topic", 2, "")
	require.Error(t, err)

	var stageErr *domain.StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, domain.StageReview, stageErr.Stage)
	assert.ErrorIs(t, err, domain.ErrGeneration)
}

func TestDeckRun_VerdictCountMismatchFails(t *testing.T) {
	gen := happyGenerator()
	gen.validations["Details"] = domain.SlideValidation{
		Validation: []domain.ValidationPoint{{Status: domain.StatusAccurate}},
	}
	deck := newTestDeck(t, gen, &fakeRAG{}, false)

	_, err := deck.Run(context.Background(), "Topic", 2, "")
	var stageErr *domain.StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, domain.StageReview, stageErr.Stage)
}

func TestDeckRun_OutlineFailureWrapsStage(t *testing.T) {
	gen := happyGenerator()
	gen.outlineErr = fmt.Errorf("model refused: %w", domain.ErrGeneration)
	deck := newTestDeck(t, gen, &fakeRAG{}, false)

	state, err := deck.Run(context.Background(), "Topic", 2, "")
	require.Error(t, err)

	var stageErr *domain.StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, domain.StageOutline, stageErr.Stage)
	assert.Nil(t, state.Outline)
	assert.Empty(t, state.OutputFile, "no partial artifact on failure")
}

func TestDeckRun_EmptyOutlineFails(t *testing.T) {
	gen := happyGenerator()
	gen.outline = domain.Outline{}
	deck := newTestDeck(t, gen, &fakeRAG{}, false)

	_, err := deck.Run(context.Background(), "Topic", 2, "")
	assert.ErrorIs(t, err, domain.ErrGeneration)
}

func TestDeckRun_RetrievalFailureDoesNotFailRun(t *testing.T) {
	rag := &fakeRAG{err: domain.ErrNotLoaded}
	gen := happyGenerator()
	deck := newTestDeck(t, gen, rag, false)

	state, err := deck.Run(context.Background(), "Topic", 2, "")
	require.NoError(t, err)
	assert.Equal(t, "success", state.ExportStatus)

	// Every degraded retrieval is replaced by an explicit placeholder
	// in the prompts, never an empty context block.
	prompts := strings.Join(gen.allPrompts(), "\n===\n")
	assert.Contains(t, prompts, noTopicContext)
	assert.Contains(t, prompts, noDetailContext)
	assert.Contains(t, prompts, noSlideContext)
}

func TestDeckRun_StageTimeoutAbortsWithStage(t *testing.T) {
	gen := happyGenerator()
	gen.block = true
	deck := NewDeckService(&fakeRAG{}, gen, &fakeRenderer{}, DeckConfig{
		StageTimeout: 10 * time.Millisecond,
		OutputDir:    t.TempDir(),
	})

	state, err := deck.Run(context.Background(), "Topic", 2, "")
	require.Error(t, err)

	var stageErr *domain.StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, domain.StageOutline, stageErr.Stage)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Nil(t, state.Outline, "timed-out stage must not populate state")
}

func TestDeckRun_OptimizeAddsDesignHints(t *testing.T) {
	deck := newTestDeck(t, happyGenerator(), &fakeRAG{}, true)

	state, err := deck.Run(context.Background(), "Topic", 2, "")
	require.NoError(t, err)

	for _, slide := range state.FinalSlides {
		for _, item := range slide.Content {
			assert.Equal(t, "Use a bold icon", item.DesignHint)
		}
	}
}

func TestDeckRun_OptimizeDisabledNoHints(t *testing.T) {
	deck := newTestDeck(t, happyGenerator(), &fakeRAG{}, false)

	state, err := deck.Run(context.Background(), "Topic", 2, "")
	require.NoError(t, err)

	require.NotEmpty(t, state.FinalSlides)
	for _, slide := range state.FinalSlides {
		for _, item := range slide.Content {
			assert.Empty(t, item.DesignHint)
		}
	}
	// Validation verdicts carry through to the final slides.
	assert.Equal(t, domain.StatusNeedsReview, state.FinalSlides[0].Content[1].Status)
}

func TestDeckRun_DesignHintTruncated(t *testing.T) {
	gen := happyGenerator()
	gen.hintResponse = strings.Repeat("x", 200)
	deck := newTestDeck(t, gen, &fakeRAG{}, true)

	state, err := deck.Run(context.Background(), "Topic", 2, "")
	require.NoError(t, err)
	assert.Len(t, state.FinalSlides[0].Content[0].DesignHint, maxDesignHintLen)
}

func TestDeckRun_RenderFailure(t *testing.T) {
	deck := NewDeckService(&fakeRAG{}, happyGenerator(), &fakeRenderer{err: assert.AnError}, DeckConfig{
		OutputDir: t.TempDir(),
	})

	state, err := deck.Run(context.Background(), "Topic", 2, "")
	require.Error(t, err)

	var stageErr *domain.StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, domain.StageExport, stageErr.Stage)
	assert.ErrorIs(t, err, domain.ErrRender)
	assert.Equal(t, "failed", state.ExportStatus)
}

func TestDeckRun_EmptyTopic(t *testing.T) {
	deck := newTestDeck(t, happyGenerator(), &fakeRAG{}, false)

	_, err := deck.Run(context.Background(), "   ", 2, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDeckRun_DefaultSlideTarget(t *testing.T) {
	deck := newTestDeck(t, happyGenerator(), &fakeRAG{}, false)

	state, err := deck.Run(context.Background(), "Topic", 0, "")
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSlideTarget, state.SlideTarget)
}

func TestDeckRun_ExpandPreservesOutlineOrder(t *testing.T) {
	gen := happyGenerator()
	deck := newTestDeck(t, gen, &fakeRAG{}, false)

	state, err := deck.Run(context.Background(), "Topic", 2, "")
	require.NoError(t, err)

	require.Len(t, state.ExpandedContent, 2)
	assert.Equal(t, "Intro", state.ExpandedContent[0].Title)
	assert.Equal(t, "Details", state.ExpandedContent[1].Title)
}

func TestDeckRun_EmptyExpansionFallsBackToBullets(t *testing.T) {
	gen := happyGenerator()
	gen.expandResponse = "   \n  "
	// Fall back to outline bullets, so verdict counts must match those.
	gen.validations = map[string]domain.SlideValidation{
		"Intro": {Validation: []domain.ValidationPoint{
			{Status: domain.StatusAccurate},
			{Status: domain.StatusAccurate},
		}},
		"Details": {Validation: []domain.ValidationPoint{
			{Status: domain.StatusAccurate},
		}},
	}
	deck := newTestDeck(t, gen, &fakeRAG{}, false)

	state, err := deck.Run(context.Background(), "Topic", 2, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"what", "why"}, state.ExpandedContent[0].DetailedPoints)
}
