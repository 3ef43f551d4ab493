// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package ocr defines the contract for the OCR engine the pipeline consumes.
// The engine itself is a black box; only word-level text and geometry cross
// this boundary.
package ocr

import (
	"context"
	"image"

	"inkblot/internal/detector"
)

// Word is a single recognized word with its pixel-space bounding box.
type Word struct {
	Text       string
	BBox       detector.BoundingBox
	Confidence float64
}

// Result is the outcome of recognizing one canvas/image.
type Result struct {
	Text  string
	Words []Word
}

// Provider runs recognition on a rendered image. Implementations are scoped
// per operation: created, used and torn down rather than held open, which
// bounds resource usage across a long session with many files.
type Provider interface {
	Recognize(ctx context.Context, img image.Image) (*Result, error)
	Close() error
}

// Factory creates a provider for one recognition pass.
type Factory func() (Provider, error)
