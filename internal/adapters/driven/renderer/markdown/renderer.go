// Package markdown renders a finished deck as a Markdown document, one
// second-level heading per slide with its statements as bullet points.
package markdown

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/decker-cli/internal/core/domain"
	"github.com/custodia-labs/decker-cli/internal/core/ports/driven"
)

// Ensure Renderer implements the interface.
var _ driven.Renderer = (*Renderer)(nil)

// Renderer writes deck state to a Markdown file.
type Renderer struct{}

// NewRenderer creates a Markdown renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render writes the final slides to outputPath and returns the path of the
// produced file. Statements flagged needs_review are emphasised; design
// hints follow their statement as an indented note.
func (r *Renderer) Render(ctx context.Context, state *domain.DeckState, outputPath string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if state == nil || len(state.FinalSlides) == 0 {
		return "", fmt.Errorf("render: %w", domain.ErrEmptyInput)
	}

	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("create output directory: %w", err)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", state.Topic)
	b.WriteString("*Generated Presentation*\n")

	for _, slide := range state.FinalSlides {
		fmt.Fprintf(&b, "\n## %s\n\n", slide.Title)
		for _, item := range slide.Content {
			if item.Status == domain.StatusNeedsReview {
				fmt.Fprintf(&b, "- *%s*\n", item.Statement)
			} else {
				fmt.Fprintf(&b, "- %s\n", item.Statement)
			}
			if item.DesignHint != "" {
				fmt.Fprintf(&b, "  - _[%s]_\n", item.DesignHint)
			}
		}
	}

	if err := os.WriteFile(outputPath, []byte(b.String()), 0644); err != nil {
		return "", fmt.Errorf("write deck: %w", err)
	}
	return outputPath, nil
}
