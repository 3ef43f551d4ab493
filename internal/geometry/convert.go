// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package geometry holds the format-specific coordinate math. It is the
// single place where a unit or origin error could hide, so every conversion
// validates its inputs and outputs and fails loudly instead of clamping.
package geometry

import (
	"fmt"
	"math"

	"inkblot/internal/detector"
	"inkblot/internal/observability"
)

// ConversionError reports non-finite or out-of-contract conversion input.
// Silently clamping would mask a detection or geometry bug that leaves a
// region unredacted, so the offending values are carried in the error.
type ConversionError struct {
	Op     string
	Reason string
	Values map[string]float64
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("coordinate conversion %s: %s (values: %v)", e.Op, e.Reason, e.Values)
}

// PDFToPixel converts a box from PDF page space (origin bottom-left, points,
// y up) to canvas pixel space (origin top-left, device pixels at the given
// render scale, y down).
func PDFToPixel(box detector.BoundingBox, pageHeightPoints, scale float64) (detector.BoundingBox, error) {
	if err := checkInputs("pdf_to_pixel", box, pageHeightPoints, scale); err != nil {
		return detector.BoundingBox{}, err
	}

	out := box
	out.X = box.X * scale
	out.W = box.W * scale
	out.H = box.H * scale
	out.Y = (pageHeightPoints - box.Y - box.H) * scale

	if err := checkFinite("pdf_to_pixel", out); err != nil {
		return detector.BoundingBox{}, err
	}
	return out, nil
}

// PixelToPDF is the inverse of PDFToPixel, used at export time to place a
// rectangle back onto true PDF geometry.
func PixelToPDF(box detector.BoundingBox, pageHeightPoints, scale float64) (detector.BoundingBox, error) {
	if err := checkInputs("pixel_to_pdf", box, pageHeightPoints, scale); err != nil {
		return detector.BoundingBox{}, err
	}

	out := box
	out.X = box.X / scale
	out.W = box.W / scale
	out.H = box.H / scale
	out.Y = pageHeightPoints - (box.Y/scale + out.H)

	if err := checkFinite("pixel_to_pdf", out); err != nil {
		return detector.BoundingBox{}, err
	}
	return out, nil
}

// WarnIfOffPage flags a PDF-space box whose y lands outside the page. An
// off-page box means an upstream detection or mapping bug; it is reported but
// never dropped, because dropping would hide a missing redaction.
func WarnIfOffPage(box detector.BoundingBox, pageHeightPoints float64, observer *observability.StandardObserver) bool {
	if box.Y < 0 || box.Y > pageHeightPoints {
		observer.LogWarning("geometry", fmt.Sprintf(
			"box %q y=%.2f outside page height %.2f (page %d)", box.Text, box.Y, pageHeightPoints, box.Page))
		return true
	}
	return false
}

func checkInputs(op string, box detector.BoundingBox, pageHeightPoints, scale float64) error {
	values := map[string]float64{
		"x": box.X, "y": box.Y, "w": box.W, "h": box.H,
		"page_height": pageHeightPoints, "scale": scale,
	}
	for name, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &ConversionError{Op: op, Reason: "non-finite " + name, Values: values}
		}
	}
	if scale <= 0 {
		return &ConversionError{Op: op, Reason: "scale must be positive", Values: values}
	}
	if pageHeightPoints <= 0 {
		return &ConversionError{Op: op, Reason: "page height must be positive", Values: values}
	}
	if err := box.Validate(); err != nil {
		return &ConversionError{Op: op, Reason: err.Error(), Values: values}
	}
	return nil
}

func checkFinite(op string, box detector.BoundingBox) error {
	values := map[string]float64{"x": box.X, "y": box.Y, "w": box.W, "h": box.H}
	for name, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &ConversionError{Op: op, Reason: "non-finite result " + name, Values: values}
		}
	}
	return nil
}
