package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/custodia-labs/decker-cli/internal/core/domain"
	"github.com/custodia-labs/decker-cli/internal/logger"
)

// exportTimestamp is the filename timestamp layout, e.g. 20260831_154210.
const exportTimestamp = "20060102_150405"

// runExport renders the deck into the output directory and writes a
// plain-text outline draft alongside it. The artifact name is
// <topic-with-underscores>_<timestamp>.md.
func (s *DeckService) runExport(ctx context.Context, state *domain.DeckState) error {
	if len(state.FinalSlides) == 0 {
		state.ExportStatus = "failed"
		return fmt.Errorf("export without final slides: %w", domain.ErrInvalidInput)
	}

	if err := os.MkdirAll(s.config.OutputDir, 0755); err != nil {
		state.ExportStatus = "failed"
		return fmt.Errorf("create output directory: %w", err)
	}

	base := fmt.Sprintf("%s_%s",
		strings.ReplaceAll(state.Topic, " ", "_"),
		time.Now().Format(exportTimestamp))

	outputPath := filepath.Join(s.config.OutputDir, base+".md")
	rendered, err := s.renderer.Render(ctx, state, outputPath)
	if err != nil {
		state.ExportStatus = "failed"
		return fmt.Errorf("%w: %v", domain.ErrRender, err)
	}

	// Best-effort draft; the rendered deck is the real artifact.
	draftPath := filepath.Join(s.config.OutputDir, base+"_draft.txt")
	if err := os.WriteFile(draftPath, []byte(outlineDraft(state)), 0644); err != nil {
		logger.Warn("Failed to write outline draft: %v", err)
	}

	state.ExportStatus = "success"
	state.OutputFile = rendered
	return nil
}

// outlineDraft formats the planned outline as plain text.
func outlineDraft(state *domain.DeckState) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", state.Topic)

	if state.Outline != nil {
		for i, slide := range state.Outline.Slides {
			fmt.Fprintf(&b, "\n%d. %s\n", i+1, slide.Title)
			for _, point := range slide.BulletPoints {
				fmt.Fprintf(&b, "   - %s\n", point)
			}
		}
	}
	return b.String()
}
