package services

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/decker-cli/internal/core/domain"
	"github.com/custodia-labs/decker-cli/internal/core/ports/driven"
	"github.com/custodia-labs/decker-cli/internal/extractors"
)

// fakeTextExtractor reads .txt files verbatim. An entry in failPaths
// makes extraction of that path fail.
type fakeTextExtractor struct {
	failPaths map[string]bool
}

func (f *fakeTextExtractor) SupportedExtensions() []string {
	return []string{".txt"}
}

func (f *fakeTextExtractor) Extract(_ context.Context, path string) (*domain.Document, error) {
	if f.failPaths[path] {
		return nil, assert.AnError
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &domain.Document{
		ID:      path,
		Source:  filepath.Base(path),
		Path:    path,
		Ext:     strings.ToLower(filepath.Ext(path)),
		Content: string(data),
	}, nil
}

func newTestLoader(e driven.Extractor) *LoaderService {
	registry := extractors.NewRegistry()
	registry.Register(e)
	return NewLoaderService(registry)
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadDir_ExtractsSupportedFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "alpha content")
	writeFile(t, dir, "sub/b.txt", "beta content")
	writeFile(t, dir, "c.unknown", "ignored")

	loader := newTestLoader(&fakeTextExtractor{})

	docs, err := loader.LoadDir(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "alpha content", docs[0].Content)
	assert.Equal(t, "beta content", docs[1].Content)
}

func TestLoadDir_NoDocuments(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "only.unknown", "nope")

	loader := newTestLoader(&fakeTextExtractor{})

	_, err := loader.LoadDir(context.Background(), dir)
	assert.ErrorIs(t, err, domain.ErrNoDocuments)
}

func TestLoadDir_SkipsFailingAndEmptyFiles(t *testing.T) {
	dir := t.TempDir()
	bad := writeFile(t, dir, "bad.txt", "unreadable")
	writeFile(t, dir, "empty.txt", "   \n")
	writeFile(t, dir, "good.txt", "useful text")

	loader := newTestLoader(&fakeTextExtractor{failPaths: map[string]bool{bad: true}})

	docs, err := loader.LoadDir(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "good.txt", docs[0].Source)
}

func TestLoadDir_SkipsHiddenDirectories(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".git/hidden.txt", "should not load")
	writeFile(t, dir, "visible.txt", "should load")

	loader := newTestLoader(&fakeTextExtractor{})

	docs, err := loader.LoadDir(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "visible.txt", docs[0].Source)
}

func TestLoadDir_MissingDirectory(t *testing.T) {
	loader := newTestLoader(&fakeTextExtractor{})

	_, err := loader.LoadDir(context.Background(), filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrNoDocuments)
}
