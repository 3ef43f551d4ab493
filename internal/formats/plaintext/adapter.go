// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package plaintext implements the formats.Adapter contract for UTF-8 text
// files. Geometry is synthetic: each line is one row of a fixed-metric
// monospace grid, so boxes are derived from rune column and line number
// rather than from any rendering engine.
package plaintext

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/image/font/basicfont"

	"inkblot/internal/detector"
	"inkblot/internal/formats"
	"inkblot/internal/observability"
)

// BlockChar replaces redacted runes one for one, preserving line layout.
const BlockChar = '█'

// Grid metrics come from the fixed font used to present text content, so
// box coordinates line up with what a monospace viewer shows.
var (
	charWidth  = float64(basicfont.Face7x13.Advance)
	lineHeight = float64(basicfont.Face7x13.Height)
)

// Adapter handles .txt and extension-less text content.
type Adapter struct {
	observer *observability.StandardObserver
}

// NewAdapter creates a plain text adapter.
func NewAdapter(observer *observability.StandardObserver) *Adapter {
	return &Adapter{observer: observer}
}

func (a *Adapter) Name() string { return formats.FormatText }

func (a *Adapter) Extensions() []string { return []string{".txt", ".text", ".log", ".md"} }

type textContent struct {
	lines []string
}

// Load validates the data as text and splits it into lines. Binary content
// fails with a LoadError rather than producing a garbage document.
func (a *Adapter) Load(ctx context.Context, name string, data []byte) (*formats.Document, error) {
	complete := a.observer.StartTiming("plaintext", "load", name)
	defer complete(true, nil)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if bytes.IndexByte(data, 0) >= 0 || !utf8.Valid(data) {
		return nil, &formats.LoadError{Format: formats.FormatText, Name: name, Err: fmt.Errorf("content is not valid UTF-8 text")}
	}

	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	lines := strings.Split(text, "\n")

	return &formats.Document{
		Metadata: formats.Metadata{
			FileName:  name,
			Size:      int64(len(data)),
			MimeType:  "text/plain",
			LineCount: len(lines),
		},
		Content: &textContent{lines: lines},
	}, nil
}

// ExtractText returns the full text and its line array. The page argument is
// ignored; text files are a single logical page.
func (a *Adapter) ExtractText(ctx context.Context, doc *formats.Document, page int) (*formats.TextExtract, error) {
	content, err := contentOf(doc)
	if err != nil {
		return nil, err
	}
	return &formats.TextExtract{
		FullText: strings.Join(content.lines, "\n"),
		Lines:    append([]string(nil), content.lines...),
	}, nil
}

// FindTextBoxes locates every case-insensitive occurrence of every term and
// returns one box per occurrence, carrying the original-case matched text
// and its line number. Terms spanning a line break are not matched.
func (a *Adapter) FindTextBoxes(doc *formats.Document, terms []string, page int) ([]detector.BoundingBox, error) {
	content, err := contentOf(doc)
	if err != nil {
		return nil, err
	}

	var boxes []detector.BoundingBox
	for lineIdx, line := range content.lines {
		if page != formats.AllPages && page != lineIdx {
			continue
		}
		lower := strings.ToLower(line)
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

				startCol := utf8.RuneCountInString(line[:start])
				runeLen := utf8.RuneCountInString(line[start:end])
				boxes = append(boxes, detector.BoundingBox{
					X:      float64(startCol) * charWidth,
					Y:      float64(lineIdx) * lineHeight,
					W:      float64(runeLen) * charWidth,
					H:      lineHeight,
					Text:   line[start:end],
					Line:   lineIdx,
					Source: detector.SourceManual,
				})
				from = end
			}
		}
	}
	return boxes, nil
}

// Redact replaces each boxed span with block characters of equal rune
// length. Boxes outside the current line bounds are clamped, not rejected,
// so stale geometry degrades to a partial redaction rather than an error.
func (a *Adapter) Redact(doc *formats.Document, boxes []detector.BoundingBox) error {
	content, err := contentOf(doc)
	if err != nil {
		return err
	}

	for _, box := range boxes {
		if err := box.Validate(); err != nil {
			return err
		}
		if box.Line < 0 || box.Line >= len(content.lines) {
			a.observer.LogWarning("plaintext", fmt.Sprintf("redaction box line %d outside document (%d lines), skipped", box.Line, len(content.lines)))
			continue
		}
		runes := []rune(content.lines[box.Line])
		startCol := int(box.X/charWidth + 0.5)
		n := int(box.W/charWidth + 0.5)
		if startCol < 0 {
			startCol = 0
		}
		if startCol >= len(runes) {
			continue
		}
		if startCol+n > len(runes) {
			n = len(runes) - startCol
		}
		for i := startCol; i < startCol+n; i++ {
			runes[i] = BlockChar
		}
		content.lines[box.Line] = string(runes)
	}

	doc.Boxes = append(doc.Boxes, boxes...)
	doc.Modified = true
	return nil
}

// Export serializes the (possibly redacted) lines back to UTF-8 bytes.
func (a *Adapter) Export(ctx context.Context, doc *formats.Document, opts formats.ExportOptions) ([]byte, error) {
	content, err := contentOf(doc)
	if err != nil {
		return nil, err
	}
	return []byte(strings.Join(content.lines, "\n")), nil
}

func (a *Adapter) Cleanup() {}

func contentOf(doc *formats.Document) (*textContent, error) {
	content, ok := doc.Content.(*textContent)
	if !ok {
		return nil, fmt.Errorf("document was not loaded by the plaintext adapter")
	}
	return content, nil
}
