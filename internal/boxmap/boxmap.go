// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package boxmap joins text-span detections with word-level geometry. It is
// the bridge between what the detectors found and where it sits on a page.
package boxmap

import (
	"strings"

	"inkblot/internal/detector"
	"inkblot/internal/geometry"
	"inkblot/internal/ocr"
)

// DefaultPaddingPx is the fixed padding added around OCR union boxes so a
// redaction never clips the glyph edges of the run it covers.
const DefaultPaddingPx = 4.0

// WordIndex is a cumulative character-offset index over OCR words. Words are
// joined by single spaces; the detectors run over the joined text and their
// offsets map back to word runs through the index.
type WordIndex struct {
	words  []ocr.Word
	starts []int
	text   string
}

// NewWordIndex builds the index from recognized words.
func NewWordIndex(words []ocr.Word) *WordIndex {
	idx := &WordIndex{
		words:  words,
		starts: make([]int, len(words)),
	}

	var b strings.Builder
	for i, w := range words {
		if i > 0 {
			b.WriteString(" ")
		}
		idx.starts[i] = b.Len()
		b.WriteString(w.Text)
	}
	idx.text = b.String()

	return idx
}

// Text returns the joined text the detectors should run over.
func (idx *WordIndex) Text() string {
	return idx.text
}

// BoxesFor returns the union bounding box of the word run whose character
// spans overlap [start, end), expanded by pad pixels. The second return is
// false when no word overlaps the span.
func (idx *WordIndex) BoxesFor(start, end int, pad float64) (detector.BoundingBox, bool) {
	var union detector.BoundingBox
	found := false

	for i, w := range idx.words {
		wStart := idx.starts[i]
		wEnd := wStart + len(w.Text)
		if wStart < end && start < wEnd {
			if !found {
				union = w.BBox
				found = true
			} else {
				union = geometry.Union(union, w.BBox)
			}
		}
	}

	if !found {
		return detector.BoundingBox{}, false
	}
	return geometry.Expand(union, pad), true
}

// MapDetections produces one padded union box per detection that geometry
// could be found for. Boxes carry the detection's text, type, source and
// confidence, plus the index of the originating detection.
func MapDetections(idx *WordIndex, detections []detector.Detection, pad float64) []detector.BoundingBox {
	var boxes []detector.BoundingBox

	for i, d := range detections {
		box, ok := idx.BoxesFor(d.Start, d.End, pad)
		if !ok {
			continue
		}
		box.Text = d.Text
		box.Type = d.Type
		box.Source = d.Source
		box.Confidence = d.Confidence
		box.DetectionID = i
		boxes = append(boxes, box)
	}

	return boxes
}

// BuildItems joins detections with their mapped boxes into the
// user-adjustable redaction set. Every item starts enabled; detections with
// no geometry are still listed so the caller can surface them, but carry no
// boxes.
func BuildItems(detections []detector.Detection, boxes []detector.BoundingBox) []detector.RedactionItem {
	byDetection := make(map[int][]detector.BoundingBox)
	for _, b := range boxes {
		byDetection[b.DetectionID] = append(byDetection[b.DetectionID], b)
	}

	items := make([]detector.RedactionItem, 0, len(detections))
	for i, d := range detections {
		items = append(items, detector.RedactionItem{
			Detection: d,
			Boxes:     byDetection[i],
			Enabled:   true,
		})
	}

	return items
}
