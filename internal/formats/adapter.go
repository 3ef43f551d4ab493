// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package formats defines the uniform per-document-type contract: load,
// extract text, map terms to native-space geometry, redact, export. Each
// supported type implements Adapter in its own subpackage.
package formats

import (
	"context"

	"inkblot/internal/detector"
	"inkblot/internal/sanitize"
)

// AllPages selects every page/section in ExtractText and FindTextBoxes.
const AllPages = -1

// Metadata describes a loaded document. Exactly one of the per-format counts
// is meaningful for a given adapter.
type Metadata struct {
	FileName string
	Size     int64
	MimeType string

	PageCount int
	RowCount  int
	LineCount int
}

// Document is the per-adapter document state. Content is opaque and
// format-specific (a cell grid, a line array, parsed page references). Boxes
// accumulates every redaction applied and is append-only until reset, so a
// re-export after additional edits still reflects earlier redactions.
type Document struct {
	Metadata Metadata
	Content  any

	Boxes []detector.BoundingBox

	Rendered bool
	Modified bool

	// SanitizeReport records what the metadata sanitization pass removed
	// during the most recent PDF export, for the summary report.
	SanitizeReport *sanitize.Report
}

// TextRun maps a run of extracted characters to its native-space geometry.
// Offset is the run's character offset into the extract's FullText.
type TextRun struct {
	Text   string
	Offset int
	Page   int
	Box    detector.BoundingBox
}

// TextExtract is the text stream the detectors operate on.
type TextExtract struct {
	FullText string

	// PageText holds per-page text for paged formats, keyed by 0-based page.
	PageText map[int]string

	// Lines holds the line array for line-addressed formats.
	Lines []string

	// Runs, when present, give per-run geometry for precise highlighting.
	Runs []TextRun
}

// ExportOptions controls serialization of the redacted document.
type ExportOptions struct {
	// JPEGQuality applies to JPEG re-encoding, 1-100. Zero means default.
	JPEGQuality int

	// Sanitize configures the PDF metadata sanitization pass. Nil means
	// sanitize everything.
	Sanitize *sanitize.Options
}

// Adapter is the uniform contract every supported document type implements.
//
// Load parses raw bytes and fails with a LoadError when the data is corrupt
// or not of the claimed type; no partial document is returned. FindTextBoxes
// performs case-insensitive substring search for every term and returns one
// box per occurrence. Redact mutates the document content, appends to
// Document.Boxes and marks the document modified. Export serializes the
// redacted document; on failure no partial output is returned and the
// document state is left intact for retry. Cleanup releases any worker,
// canvas or cache resources the adapter holds.
type Adapter interface {
	Name() string
	Extensions() []string

	Load(ctx context.Context, name string, data []byte) (*Document, error)
	ExtractText(ctx context.Context, doc *Document, page int) (*TextExtract, error)
	FindTextBoxes(doc *Document, terms []string, page int) ([]detector.BoundingBox, error)
	Redact(doc *Document, boxes []detector.BoundingBox) error
	Export(ctx context.Context, doc *Document, opts ExportOptions) ([]byte, error)
	Cleanup()
}
