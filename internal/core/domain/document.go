package domain

// Document represents a source document after text extraction.
// It is the canonical representation handed to the splitter.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// Source is the bare filename the document was extracted from.
	Source string

	// Path is the full filesystem path of the source file.
	Path string

	// Ext is the lowercased file extension, including the dot.
	Ext string

	// Content is the full extracted text before cleaning and chunking.
	Content string
}

// Chunk represents a retrievable unit of a document.
// Documents are split into bounded, overlapping chunks before indexing.
type Chunk struct {
	// ID is a stable identifier derived from the chunk content and source.
	// Identical content from the same source always yields the same ID,
	// which de-duplicates repeated ingestion of unchanged documents.
	ID string

	// Source is the bare filename of the originating document.
	Source string

	// Path is the full filesystem path of the originating document.
	Path string

	// Content is the cleaned text of this chunk.
	Content string

	// Position is the ordinal position within the source document.
	Position int
}

// ScoredChunk pairs a chunk with its similarity score from a vector search.
type ScoredChunk struct {
	Chunk Chunk

	// Similarity is the cosine similarity to the query vector (0-1).
	Similarity float64
}
