// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package csvfile implements the formats.Adapter contract for delimited
// tabular files. Redaction is whole-cell: any match inside a cell blanks the
// entire cell, and the replacement length is decoupled from the original so
// the output does not leak value lengths.
package csvfile

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"hash/fnv"
	"strings"

	"inkblot/internal/detector"
	"inkblot/internal/formats"
	"inkblot/internal/observability"
)

// BlockChar fills redacted cells.
const BlockChar = '█'

// Replacement runs stay inside this range regardless of original content
// length.
const (
	minFillLen = 3
	maxFillLen = 20
)

// Nominal cell geometry for grid presentation. Tabular files have no
// intrinsic pixel layout, so boxes address cells by row and column and carry
// a uniform grid placement.
const (
	cellWidth  = 120.0
	cellHeight = 24.0
)

// Adapter handles .csv and .tsv files.
type Adapter struct {
	observer *observability.StandardObserver
}

// NewAdapter creates a tabular file adapter.
func NewAdapter(observer *observability.StandardObserver) *Adapter {
	return &Adapter{observer: observer}
}

func (a *Adapter) Name() string { return formats.FormatCSV }

func (a *Adapter) Extensions() []string { return []string{".csv", ".tsv"} }

type gridContent struct {
	rows  [][]string
	comma rune
}

// Load parses the data into a cell grid. The delimiter is taken from the
// extension (.tsv means tab) with a sniff fallback on the first line.
// Rows may have differing field counts.
func (a *Adapter) Load(ctx context.Context, name string, data []byte) (*formats.Document, error) {
	complete := a.observer.StartTiming("csvfile", "load", name)
	defer complete(true, nil)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	comma := detectDelimiter(name, data)
	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, &formats.LoadError{Format: formats.FormatCSV, Name: name, Err: err}
	}

	return &formats.Document{
		Metadata: formats.Metadata{
			FileName: name,
			Size:     int64(len(data)),
			MimeType: "text/csv",
			RowCount: len(rows),
		},
		Content: &gridContent{rows: rows, comma: comma},
	}, nil
}

func detectDelimiter(name string, data []byte) rune {
	if strings.HasSuffix(strings.ToLower(name), ".tsv") {
		return '\t'
	}
	firstLine := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		firstLine = data[:i]
	}
	if bytes.Count(firstLine, []byte{'\t'}) > bytes.Count(firstLine, []byte{','}) {
		return '\t'
	}
	return ','
}

// ExtractText flattens the grid row by row, cells joined by the delimiter,
// so detectors see cell values in their row context.
func (a *Adapter) ExtractText(ctx context.Context, doc *formats.Document, page int) (*formats.TextExtract, error) {
	content, err := contentOf(doc)
	if err != nil {
		return nil, err
	}

	lines := make([]string, len(content.rows))
	for i, row := range content.rows {
		lines[i] = strings.Join(row, string(content.comma))
	}
	return &formats.TextExtract{
		FullText: strings.Join(lines, "\n"),
		Lines:    lines,
	}, nil
}

// FindTextBoxes returns one cell-addressed box per case-insensitive
// occurrence of each term. The box spans the whole cell because redaction is
// whole-cell.
func (a *Adapter) FindTextBoxes(doc *formats.Document, terms []string, page int) ([]detector.BoundingBox, error) {
	content, err := contentOf(doc)
	if err != nil {
		return nil, err
	}

	var boxes []detector.BoundingBox
	for rowIdx, row := range content.rows {
		if page != formats.AllPages && page != rowIdx {
			continue
		}
		for colIdx, cell := range row {
			lower := strings.ToLower(cell)
			for _, term := range terms {
				if term == "" {
					continue
				}
				needle := strings.ToLower(term)
				for from := 0; ; {
					rel := strings.Index(lower[from:], needle)
					if rel < 0 {
						break
					}
					start := from + rel
					end := start + len(needle)
					boxes = append(boxes, detector.BoundingBox{
						X:      float64(colIdx) * cellWidth,
						Y:      float64(rowIdx) * cellHeight,
						W:      cellWidth,
						H:      cellHeight,
						Text:   cell[start:end],
						Row:    rowIdx,
						Column: colIdx,
						Source: detector.SourceManual,
					})
					from = end
				}
			}
		}
	}
	return boxes, nil
}

// Redact blanks every cell addressed by a box. Applying the same box twice
// is idempotent.
func (a *Adapter) Redact(doc *formats.Document, boxes []detector.BoundingBox) error {
	content, err := contentOf(doc)
	if err != nil {
		return err
	}

	for _, box := range boxes {
		if box.Row < 0 || box.Row >= len(content.rows) {
			a.observer.LogWarning("csvfile", fmt.Sprintf("redaction box row %d outside grid (%d rows), skipped", box.Row, len(content.rows)))
			continue
		}
		row := content.rows[box.Row]
		if box.Column < 0 || box.Column >= len(row) {
			a.observer.LogWarning("csvfile", fmt.Sprintf("redaction box column %d outside row %d (%d cells), skipped", box.Column, box.Row, len(row)))
			continue
		}
		row[box.Column] = fillCell(row[box.Column])
	}

	doc.Boxes = append(doc.Boxes, boxes...)
	doc.Modified = true
	return nil
}

// RedactColumn blanks every data cell in one column, addressed either by
// header name (string, case-insensitive, row 0 is the header) or by 0-based
// index (int). A missing column is an error naming what was requested.
func (a *Adapter) RedactColumn(doc *formats.Document, column any) error {
	content, err := contentOf(doc)
	if err != nil {
		return err
	}
	if len(content.rows) == 0 {
		return fmt.Errorf("document has no rows")
	}

	var colIdx int
	switch c := column.(type) {
	case int:
		colIdx = c
		if colIdx < 0 || colIdx >= len(content.rows[0]) {
			return fmt.Errorf("column index %d not found: header has %d columns", colIdx, len(content.rows[0]))
		}
	case string:
		colIdx = -1
		for i, header := range content.rows[0] {
			if strings.EqualFold(strings.TrimSpace(header), strings.TrimSpace(c)) {
				colIdx = i
				break
			}
		}
		if colIdx < 0 {
			return fmt.Errorf("column %q not found in header %v", c, content.rows[0])
		}
	default:
		return fmt.Errorf("column selector must be a name or an index, got %T", column)
	}

	var boxes []detector.BoundingBox
	for rowIdx := 1; rowIdx < len(content.rows); rowIdx++ {
		row := content.rows[rowIdx]
		if colIdx >= len(row) || row[colIdx] == "" {
			continue
		}
		boxes = append(boxes, detector.BoundingBox{
			X:      float64(colIdx) * cellWidth,
			Y:      float64(rowIdx) * cellHeight,
			W:      cellWidth,
			H:      cellHeight,
			Text:   row[colIdx],
			Row:    rowIdx,
			Column: colIdx,
			Source: detector.SourceManual,
		})
	}
	return a.Redact(doc, boxes)
}

// fillCell returns the replacement run for a cell. The length is a stable
// function of the cell content hash, clamped to the fill range, so the same
// value always redacts to the same output while the run length carries no
// usable information about the original.
func fillCell(cell string) string {
	if isFilled(cell) {
		return cell
	}
	h := fnv.New32a()
	h.Write([]byte(cell))
	n := minFillLen + int(h.Sum32()%uint32(maxFillLen-minFillLen+1))
	return strings.Repeat(string(BlockChar), n)
}

func isFilled(cell string) bool {
	if cell == "" {
		return false
	}
	for _, r := range cell {
		if r != BlockChar {
			return false
		}
	}
	return true
}

// Export writes the grid back out with the original delimiter. Quoting
// follows RFC 4180.
func (a *Adapter) Export(ctx context.Context, doc *formats.Document, opts formats.ExportOptions) ([]byte, error) {
	content, err := contentOf(doc)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	writer.Comma = content.comma
	if err := writer.WriteAll(content.rows); err != nil {
		return nil, &formats.ExportError{Format: formats.FormatCSV, Err: err}
	}
	return buf.Bytes(), nil
}

func (a *Adapter) Cleanup() {}

func contentOf(doc *formats.Document) (*gridContent, error) {
	content, ok := doc.Content.(*gridContent)
	if !ok {
		return nil, fmt.Errorf("document was not loaded by the csvfile adapter")
	}
	return content, nil
}
