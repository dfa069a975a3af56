// Package splitter cleans extracted document text and partitions it into
// bounded, overlapping chunks suitable for embedding.
package splitter

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"
	"unicode"

	"github.com/custodia-labs/decker-cli/internal/core/domain"
	"github.com/custodia-labs/decker-cli/internal/core/ports/driven"
)

// Ensure Splitter implements the interface.
var _ driven.Splitter = (*Splitter)(nil)

// allowedPunct is the punctuation kept by cleaning. Everything that is
// not a letter, digit, space or newline and not in this set is stripped.
const allowedPunct = `.,;:!?'"()[]%&+-–—/@#$€£_`

// separators is the boundary preference used when cutting chunks:
// paragraph break, line break, sentence end, clause end, word boundary.
// A hard character cut is the implicit last resort.
var separators = []string{"\n\n", "\n", ". ", "; ", " "}

// Splitter partitions cleaned document text into overlapping chunks.
type Splitter struct {
	chunkSize int
	overlap   int
}

// Option configures the splitter.
type Option func(*Splitter)

// WithChunkSize sets the target chunk size in characters.
func WithChunkSize(size int) Option {
	return func(s *Splitter) {
		if size > 0 {
			s.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between consecutive chunks in characters.
func WithOverlap(overlap int) Option {
	return func(s *Splitter) {
		if overlap >= 0 {
			s.overlap = overlap
		}
	}
}

// New creates a splitter with the given options.
func New(opts ...Option) *Splitter {
	s := &Splitter{
		chunkSize: domain.DefaultChunkSize,
		overlap:   domain.DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(s)
	}

	// Overlap must leave room for the window to advance
	if s.overlap >= s.chunkSize {
		s.overlap = s.chunkSize / 4
	}

	return s
}

// Split cleans each document and partitions it into chunks of at most
// the configured size, sharing the configured overlap between
// consecutive chunks of the same source. Chunk IDs are a stable SHA-1
// of content plus source, so re-ingesting identical content yields
// identical IDs.
func (s *Splitter) Split(docs []domain.Document) []domain.Chunk {
	var chunks []domain.Chunk

	for _, doc := range docs {
		cleaned := Clean(doc.Content)
		if cleaned == "" {
			continue
		}

		for i, content := range s.splitText(cleaned) {
			chunks = append(chunks, domain.Chunk{
				ID:       chunkID(content, doc.Source),
				Source:   doc.Source,
				Path:     doc.Path,
				Content:  content,
				Position: i,
			})
		}
	}

	return chunks
}

// splitText cuts cleaned text into windows of at most chunkSize runes.
// Each cut prefers the most natural boundary available in the tail of
// the window before falling back to a hard character cut, and the next
// window starts overlap runes before the previous cut.
func (s *Splitter) splitText(text string) []string {
	runes := []rune(text)
	total := len(runes)

	if total <= s.chunkSize {
		return []string{text}
	}

	var parts []string
	start := 0

	for start < total {
		end := start + s.chunkSize
		if end >= total {
			parts = append(parts, strings.TrimSpace(string(runes[start:total])))
			break
		}

		end = s.snap(runes, start, end)
		part := strings.TrimSpace(string(runes[start:end]))
		if part != "" {
			parts = append(parts, part)
		}

		next := end - s.overlap
		if next <= start {
			// Boundary snapping shrank the window too far; force progress
			next = start + 1
		}
		start = next
	}

	return parts
}

// snap searches backwards from end for the best separator inside the
// second half of the window. The cut lands just after the separator so
// sentence punctuation stays with its sentence. Without any separator
// the hard cut at end stands.
func (s *Splitter) snap(runes []rune, start, end int) int {
	window := string(runes[start:end])
	floor := len([]rune(window)) / 2

	for _, sep := range separators {
		if idx := strings.LastIndex(window, sep); idx >= 0 {
			runeIdx := len([]rune(window[:idx]))
			if runeIdx >= floor {
				return start + runeIdx + len([]rune(sep))
			}
		}
	}

	return end
}

// Clean normalises document text: CRLF to LF, runs of spaces and tabs
// to a single space, three or more newlines to a paragraph break, and
// characters outside the allow-list removed.
func Clean(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var b strings.Builder
	b.Grow(len(text))

	var spaceRun, newlineRun int
	for _, r := range text {
		switch {
		case r == '\n':
			newlineRun++
			spaceRun = 0
			if newlineRun <= 2 {
				b.WriteRune('\n')
			}
		case unicode.IsSpace(r):
			spaceRun++
			newlineRun = 0
			if spaceRun == 1 {
				b.WriteRune(' ')
			}
		case unicode.IsLetter(r), unicode.IsDigit(r), strings.ContainsRune(allowedPunct, r):
			spaceRun = 0
			newlineRun = 0
			b.WriteRune(r)
		default:
			// Stripped: control characters, emoji, stray symbols
		}
	}

	return strings.TrimSpace(b.String())
}

// chunkID derives the stable chunk identifier from content and source.
func chunkID(content, source string) string {
	sum := sha1.Sum([]byte(content + source))
	return hex.EncodeToString(sum[:])
}
