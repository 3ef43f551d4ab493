// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package ocr

import (
	"context"
	"image"
)

// StaticProvider returns a pre-computed result for every image. It backs
// tests and dry runs where no OCR engine is wired in.
type StaticProvider struct {
	Result Result
	Err    error
}

// Recognize implements Provider.
func (p *StaticProvider) Recognize(ctx context.Context, img image.Image) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p.Err != nil {
		return nil, p.Err
	}
	r := p.Result
	return &r, nil
}

// Close implements Provider.
func (p *StaticProvider) Close() error { return nil }
