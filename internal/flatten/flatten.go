// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package flatten produces the terminal, unrecoverable representation of a
// redacted document: fully opaque fills over raster pages and image-only PDF
// assembly. Partial-opacity fills, blur and pixelation are reversible and
// must never reach an exported file, so no such path exists here.
package flatten

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"inkblot/internal/detector"
)

// FillRects returns a copy of img with every box drawn as an opaque black
// rectangle. Boxes are validated first; an invalid box is an error, not a
// skip, because a silently dropped box is a missing redaction.
func FillRects(img image.Image, boxes []detector.BoundingBox) (*image.NRGBA, error) {
	out := imaging.Clone(img)
	fill := image.NewUniform(color.Black)

	for _, b := range boxes {
		if err := b.Validate(); err != nil {
			return nil, fmt.Errorf("refusing to fill invalid box: %w", err)
		}

		r := image.Rect(
			int(math.Floor(b.X)),
			int(math.Floor(b.Y)),
			int(math.Ceil(b.X+b.W)),
			int(math.Ceil(b.Y+b.H)),
		).Intersect(out.Bounds())

		draw.Draw(out, r, fill, image.Point{}, draw.Src)
	}

	return out, nil
}

// EncodePNG serializes an image as PNG. Canvas re-encoding never copies
// source metadata forward, which is what strips EXIF/GPS.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("png encode failed: %w", err)
	}
	return buf.Bytes(), nil
}

// EncodeJPEG serializes an image as JPEG at the given quality (1-100, 0
// selects a sensible default).
func EncodeJPEG(img image.Image, quality int) ([]byte, error) {
	if quality <= 0 {
		quality = 92
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("jpeg encode failed: %w", err)
	}
	return buf.Bytes(), nil
}

// BuildImagePDF assembles PNG-encoded pages into a fresh PDF whose page
// content is raster images only: no text-showing operators anywhere, so
// nothing selectable or extractable survives, including under the fills.
func BuildImagePDF(pages [][]byte) ([]byte, error) {
	if len(pages) == 0 {
		return nil, fmt.Errorf("no pages to assemble")
	}

	tempDir, err := os.MkdirTemp("", "inkblot-flatten-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer func() { _ = os.RemoveAll(tempDir) }()

	imgFiles := make([]string, 0, len(pages))
	for i, page := range pages {
		path := filepath.Join(tempDir, fmt.Sprintf("page_%04d.png", i+1))
		if err := os.WriteFile(path, page, 0600); err != nil {
			return nil, fmt.Errorf("failed to stage page %d: %w", i+1, err)
		}
		imgFiles = append(imgFiles, path)
	}

	outFile := filepath.Join(tempDir, "flattened.pdf")
	if err := api.ImportImagesFile(imgFiles, outFile, nil, nil); err != nil {
		return nil, fmt.Errorf("image-only PDF assembly failed: %w", err)
	}

	data, err := os.ReadFile(outFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read assembled PDF: %w", err)
	}

	return data, nil
}
