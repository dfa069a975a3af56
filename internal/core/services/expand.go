package services

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/decker-cli/internal/core/domain"
	"github.com/custodia-labs/decker-cli/internal/core/ports/driven"
)

// noDetailContext is the grounding placeholder for the expand stage.
const noDetailContext = "No detailed information available."

// noSlideContext is the placeholder when per-slide retrieval yields nothing.
const noSlideContext = "No slide-specific information available."

// expandConcurrency bounds the number of slides expanded in parallel.
const expandConcurrency = 3

// runExpand elaborates every outline slide into detailed prose points.
// Slides are expanded concurrently but the result preserves outline
// order, with exactly one expanded slide per outline slide.
func (s *DeckService) runExpand(ctx context.Context, state *domain.DeckState) error {
	if state.Outline == nil || len(state.Outline.Slides) == 0 {
		return fmt.Errorf("expand without outline: %w", domain.ErrInvalidInput)
	}

	// One topic-level retrieval shared by all slides.
	ragContext := s.gatherContext(ctx, state.Topic+" detailed information", s.config.TopK, noDetailContext)

	expanded := make([]domain.ExpandedSlide, len(state.Outline.Slides))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(expandConcurrency)

	for i, slide := range state.Outline.Slides {
		i, slide := i, slide
		g.Go(func() error {
			out, err := s.expandSlide(gctx, state, slide, ragContext)
			if err != nil {
				return err
			}
			expanded[i] = out
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	state.ExpandedContent = expanded
	return nil
}

// expandSlide expands one slide, grounding it on chunks retrieved for
// the slide's own title.
func (s *DeckService) expandSlide(ctx context.Context, state *domain.DeckState, slide domain.SlideOutline, ragContext string) (domain.ExpandedSlide, error) {
	slideContext := s.gatherContext(ctx, slide.Title, s.config.SlideTopK, noSlideContext)

	prompt := expandPrompt(slide, state.Context, ragContext, slideContext)

	response, err := s.generator.Generate(ctx, prompt, driven.GenerateOptions{})
	if err != nil {
		return domain.ExpandedSlide{}, fmt.Errorf("expand %q: %w", slide.Title, err)
	}

	points := splitPoints(response)
	if len(points) == 0 {
		// A silent model should not sink the run; carry the outline
		// bullets forward so the slide still has content.
		points = slide.BulletPoints
	}

	return domain.ExpandedSlide{
		Title:          slide.Title,
		DetailedPoints: points,
	}, nil
}

// splitPoints turns a free-text completion into one point per non-empty
// line, stripping common list markers.
func splitPoints(text string) []string {
	var points []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "- ")
		line = strings.TrimPrefix(line, "* ")
		line = strings.TrimPrefix(line, "• ")
		if line == "" {
			continue
		}
		points = append(points, line)
	}
	return points
}

func expandPrompt(slide domain.SlideOutline, background, ragContext, slideContext string) string {
	bullets := make([]string, len(slide.BulletPoints))
	for i, p := range slide.BulletPoints {
		bullets[i] = "- " + p
	}

	return fmt.Sprintf(`Expand the following bullet points into detailed, factual statements:

Slide Title: %s
Bullet Points:
%s

Context: %s

Relevant Knowledge Base Information:
%s

Slide-Specific Information:
%s

Provide 2-3 detailed, factual sentences for each bullet point using the retrieved information.
Keep content accurate and presentation-ready.
Write one statement per line with no numbering.`,
		slide.Title, strings.Join(bullets, "\n"), background, ragContext, slideContext)
}
