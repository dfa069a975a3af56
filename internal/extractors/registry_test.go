package extractors

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/decker-cli/internal/core/domain"
)

type stubExtractor struct {
	exts []string
}

func (s *stubExtractor) SupportedExtensions() []string { return s.exts }

func (s *stubExtractor) Extract(_ context.Context, path string) (*domain.Document, error) {
	return &domain.Document{Path: path}, nil
}

func TestRegistry_ForExtension(t *testing.T) {
	r := NewRegistry()
	txt := &stubExtractor{exts: []string{".txt", ".md"}}
	r.Register(txt)

	got, ok := r.ForExtension(".txt")
	require.True(t, ok)
	assert.Same(t, txt, got.(*stubExtractor))

	_, ok = r.ForExtension(".pdf")
	assert.False(t, ok)
}

func TestRegistry_CaseInsensitive(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubExtractor{exts: []string{".PDF"}})

	_, ok := r.ForExtension(".pdf")
	assert.True(t, ok)
	_, ok = r.ForExtension(".Pdf")
	assert.True(t, ok)
}

func TestRegistry_LastRegistrationWins(t *testing.T) {
	r := NewRegistry()
	first := &stubExtractor{exts: []string{".txt"}}
	second := &stubExtractor{exts: []string{".txt"}}
	r.Register(first)
	r.Register(second)

	got, ok := r.ForExtension(".txt")
	require.True(t, ok)
	assert.Same(t, second, got.(*stubExtractor))
}

func TestRegistry_Extensions(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubExtractor{exts: []string{".txt", ".md"}})
	r.Register(&stubExtractor{exts: []string{".docx"}})

	assert.Equal(t, []string{".docx", ".md", ".txt"}, r.Extensions())
}
