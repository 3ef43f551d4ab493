// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package detector

import (
	"fmt"
	"math"
)

// Source identifies where a detection or bounding box originated.
type Source string

const (
	SourceRegex  Source = "regex"
	SourceML     Source = "ml"
	SourceManual Source = "manual"
	SourceHybrid Source = "hybrid"
)

// Detection represents a PII match prior to visual placement.
//
// Regex-origin detections always carry Confidence 1.0 and real character
// offsets into the text they were matched against. ML-origin detections carry
// the provider's confidence in [0,1] and must carry offsets.
type Detection struct {
	Text       string
	Type       string
	Confidence float64
	Source     Source

	// Start and End are character offsets into the extracted text,
	// half-open [Start, End).
	Start int
	End   int
}

// Overlaps reports whether two detections overlap by character offset.
func (d Detection) Overlaps(other Detection) bool {
	return d.Start < other.End && other.Start < d.End
}

// Contains reports whether d's span fully contains other's span.
func (d Detection) Contains(other Detection) bool {
	return d.Start <= other.Start && d.End >= other.End
}

// BoundingBox is the unified redaction-region representation.
//
// Units are format-native: pixels for canvas/image/OCR space, points for
// PDF-page space before conversion. Exactly one of Page/Row/Column/Line is
// meaningful depending on the source format; the zero value of the others is
// ignored. Page and Line are 0-based, Row counts the header as row 0.
type BoundingBox struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`

	// Text is the matched substring, kept for traceability and tests.
	Text string `json:"text,omitempty"`

	Page   int `json:"page,omitempty"`
	Row    int `json:"row,omitempty"`
	Column int `json:"column,omitempty"`
	Line   int `json:"line,omitempty"`

	// Type is the PII category, empty for manual boxes.
	Type       string  `json:"type,omitempty"`
	Source     Source  `json:"source"`
	Confidence float64 `json:"confidence"`

	// DetectionID links back to the originating detection, -1 when none.
	DetectionID int `json:"detection_id,omitempty"`
}

// Validate rejects boxes that would silently drop or misplace a redaction:
// non-finite coordinates or non-positive dimensions.
func (b BoundingBox) Validate() error {
	for name, v := range map[string]float64{"x": b.X, "y": b.Y, "w": b.W, "h": b.H} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("bounding box %s is not finite: %v", name, v)
		}
	}
	if b.W <= 0 || b.H <= 0 {
		return fmt.Errorf("bounding box has non-positive dimensions: w=%v h=%v", b.W, b.H)
	}
	return nil
}

// Intersects reports whether two boxes overlap in the plane.
func (b BoundingBox) Intersects(o BoundingBox) bool {
	return b.X < o.X+o.W && o.X < b.X+b.W && b.Y < o.Y+o.H && o.Y < b.Y+b.H
}

// RedactionItem is the user-togglable union of a detection and its geometry.
// Enabled controls whether the item is included in the final redaction set.
type RedactionItem struct {
	Detection Detection
	Boxes     []BoundingBox
	Enabled   bool
}
