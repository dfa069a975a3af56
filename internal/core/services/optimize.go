package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/decker-cli/internal/core/domain"
	"github.com/custodia-labs/decker-cli/internal/core/ports/driven"
)

// maxDesignHintLen caps the styling suggestion attached to a statement.
const maxDesignHintLen = 50

// runOptimize turns validation results into the final slides. When the
// optimize flag is on, each statement additionally gets a short design
// hint from the model; otherwise the statements pass through unstyled.
// Either way this stage is what populates FinalSlides for export.
func (s *DeckService) runOptimize(ctx context.Context, state *domain.DeckState) error {
	if len(state.ValidationResults) == 0 {
		return fmt.Errorf("optimize without validation results: %w", domain.ErrInvalidInput)
	}

	final := make([]domain.ContentSlide, len(state.ValidationResults))
	for i, validation := range state.ValidationResults {
		items := make([]domain.SlideContentItem, len(validation.Validation))
		for j, point := range validation.Validation {
			item := domain.SlideContentItem{
				Statement: point.Point,
				Status:    point.Status,
			}
			if s.config.Optimize {
				hint, err := s.designHint(ctx, point.Point)
				if err != nil {
					return fmt.Errorf("design hint for %q: %w", validation.Title, err)
				}
				item.DesignHint = hint
			}
			items[j] = item
		}
		final[i] = domain.ContentSlide{
			Title:   validation.Title,
			Content: items,
		}
	}

	state.FinalSlides = final
	return nil
}

// designHint asks the model for a short styling suggestion, hard-capped
// at maxDesignHintLen characters.
func (s *DeckService) designHint(ctx context.Context, statement string) (string, error) {
	prompt := fmt.Sprintf(`Suggest a minimal design hint for this statement:
%q

Provide a brief styling suggestion (icon, emphasis, layout) in 3-5 words.`, statement)

	response, err := s.generator.Generate(ctx, prompt, driven.GenerateOptions{MaxTokens: 60})
	if err != nil {
		return "", err
	}

	hint := strings.TrimSpace(response)
	if runes := []rune(hint); len(runes) > maxDesignHintLen {
		hint = string(runes[:maxDesignHintLen])
	}
	return hint, nil
}
