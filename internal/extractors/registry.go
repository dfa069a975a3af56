package extractors

import (
	"sort"
	"strings"

	"github.com/custodia-labs/decker-cli/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.ExtractorRegistry = (*Registry)(nil)

// Registry maps lowercased file extensions to extractors.
type Registry struct {
	byExt map[string]driven.Extractor
}

// NewRegistry creates an empty extractor registry.
func NewRegistry() *Registry {
	return &Registry{
		byExt: make(map[string]driven.Extractor),
	}
}

// Register adds an extractor under all its supported extensions.
// A later registration for the same extension wins.
func (r *Registry) Register(e driven.Extractor) {
	for _, ext := range e.SupportedExtensions() {
		r.byExt[strings.ToLower(ext)] = e
	}
}

// ForExtension returns the extractor for a file extension, or false
// when the extension is not registered.
func (r *Registry) ForExtension(ext string) (driven.Extractor, bool) {
	e, ok := r.byExt[strings.ToLower(ext)]
	return e, ok
}

// Extensions returns all registered extensions, sorted.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
