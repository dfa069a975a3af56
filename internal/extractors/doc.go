// Package extractors provides per-format document text extraction.
// Each subpackage handles one file format; the registry maps file
// extensions to extractors so unknown extensions can be skipped.
package extractors
