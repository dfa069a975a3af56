package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/decker-cli/internal/core/domain"
	"github.com/custodia-labs/decker-cli/internal/logger"
)

// noTopicContext is the grounding placeholder when retrieval yields nothing.
const noTopicContext = "No relevant documents found."

// runOutline plans the deck: one structured generation call producing
// slide titles with 3-4 short bullet points each, grounded on the
// top-ranked chunks for the topic.
func (s *DeckService) runOutline(ctx context.Context, state *domain.DeckState) error {
	ragContent := s.gatherContext(ctx, state.Topic, s.config.TopK, noTopicContext)

	prompt := outlinePrompt(state.Topic, state.SlideTarget, ragContent)

	var outline domain.Outline
	if err := s.generator.GenerateStructured(ctx, prompt, &outline); err != nil {
		return fmt.Errorf("generate outline: %w", err)
	}

	if len(outline.Slides) == 0 {
		return fmt.Errorf("outline has no slides: %w", domain.ErrGeneration)
	}
	for i, slide := range outline.Slides {
		if strings.TrimSpace(slide.Title) == "" {
			return fmt.Errorf("outline slide %d has no title: %w", i+1, domain.ErrGeneration)
		}
	}

	// Slide count is a best-effort target.
	if len(outline.Slides) != state.SlideTarget {
		logger.Warn("Requested %d slides, outline has %d", state.SlideTarget, len(outline.Slides))
	}

	state.Outline = &outline
	return nil
}

func outlinePrompt(topic string, slides int, ragContent string) string {
	return fmt.Sprintf(`You are an experienced outline designer.

Generate a concise, structured outline of EXACTLY %d slides about: %s

Knowledge Base Information:
%s

Create %d slides with:
- A clear, descriptive title for each slide
- 3-4 bullet points per slide
- Logical flow and key concepts from the knowledge base

If content is insufficient, distribute available information evenly across all %d slides.

Respond with a JSON object: {"slides": [{"title": "...", "bullet_points": ["..."]}]}`,
		slides, topic, ragContent, slides, slides)
}
