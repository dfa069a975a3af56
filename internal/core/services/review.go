package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/decker-cli/internal/core/domain"
)

// runReview fact-checks every expanded statement against retrieved
// reference text. The model only classifies: statement text and order
// are pinned to the expanded content, never taken from the model.
func (s *DeckService) runReview(ctx context.Context, state *domain.DeckState) error {
	if len(state.ExpandedContent) == 0 {
		return fmt.Errorf("review without expanded content: %w", domain.ErrInvalidInput)
	}

	// One topic-level retrieval shared by all slide validations.
	ragContext := s.gatherContext(ctx, state.Topic, s.config.TopK, noTopicContext)

	validations := make([]domain.SlideValidation, len(state.ExpandedContent))
	for i, slide := range state.ExpandedContent {
		validation, err := s.reviewSlide(ctx, state.Topic, slide, ragContext)
		if err != nil {
			return err
		}
		validations[i] = validation
	}

	state.ValidationResults = validations
	return nil
}

// reviewSlide validates one slide and normalises the model's answer:
// titles and statements come from the expanded slide, every point needs
// a recognised status, and needs_review requires a reason.
func (s *DeckService) reviewSlide(ctx context.Context, topic string, slide domain.ExpandedSlide, ragContext string) (domain.SlideValidation, error) {
	prompt := reviewPrompt(topic, slide, ragContext)

	var validation domain.SlideValidation
	if err := s.generator.GenerateStructured(ctx, prompt, &validation); err != nil {
		return domain.SlideValidation{}, fmt.Errorf("review %q: %w", slide.Title, err)
	}

	if len(validation.Validation) != len(slide.DetailedPoints) {
		return domain.SlideValidation{}, fmt.Errorf("review %q: got %d verdicts for %d statements: %w",
			slide.Title, len(validation.Validation), len(slide.DetailedPoints), domain.ErrGeneration)
	}

	validation.Title = slide.Title
	for i := range validation.Validation {
		v := &validation.Validation[i]
		v.Point = slide.DetailedPoints[i]

		switch v.Status {
		case domain.StatusAccurate:
			v.Reason = ""
		case domain.StatusNeedsReview:
			if strings.TrimSpace(v.Reason) == "" {
				return domain.SlideValidation{}, fmt.Errorf("review %q: needs_review verdict without reason: %w",
					slide.Title, domain.ErrGeneration)
			}
		default:
			return domain.SlideValidation{}, fmt.Errorf("review %q: unknown status %q: %w",
				slide.Title, v.Status, domain.ErrGeneration)
		}
	}

	return validation, nil
}

func reviewPrompt(topic string, slide domain.ExpandedSlide, ragContext string) string {
	points := make([]string, len(slide.DetailedPoints))
	for i, p := range slide.DetailedPoints {
		points[i] = "- " + p
	}

	return fmt.Sprintf(`Review each statement in this slide for factual accuracy.

Topic: %s

Slide: %s
Content:
%s

Reference Information:
%s

For each statement, validate if it's factually correct and supported by the reference information.
- Mark as "accurate" if factually correct and supported
- Mark as "needs_review" if uncertain, unsupported, or potentially incorrect (provide reason)

Validate all statements in this slide, in order, one verdict per statement.

Respond with a JSON object: {"title": "...", "validation": [{"point": "...", "status": "accurate" or "needs_review", "reason": "..."}]}`,
		topic, slide.Title, strings.Join(points, "\n"), ragContext)
}
