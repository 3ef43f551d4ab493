// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package render defines the PDF page rasterization contract. The rendering
// engine is a black box to the pipeline; it only needs a pixel image and the
// viewport that relates pixels back to page points.
package render

import (
	"image"
)

// Viewport relates a rendered image to the page it came from.
type Viewport struct {
	// WidthPx and HeightPx are the rendered image dimensions.
	WidthPx  int
	HeightPx int

	// Scale is the render scale: pixels per point.
	Scale float64
}

// Renderer rasterizes one page of a PDF file. pageIndex is 0-based.
type Renderer interface {
	RenderPage(path string, pageIndex int, scale float64) (image.Image, Viewport, error)
}
