// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package ml defines the contract for the entity-recognition model the
// pipeline consumes. Model loading and inference are black boxes; only
// entity spans with confidence cross this boundary.
package ml

import (
	"context"

	"inkblot/internal/detector"
)

// Provider returns entity detections for a text. Every returned detection
// must carry character offsets into text, Source ml and confidence in [0,1];
// entries below minConfidence are filtered by the provider.
type Provider interface {
	Detect(ctx context.Context, text string, minConfidence float64) ([]detector.Detection, error)
	Close() error
}

// StaticProvider returns a fixed detection set, filtered by minConfidence.
// It backs tests and runs without a model.
type StaticProvider struct {
	Detections []detector.Detection
	Err        error
}

// Detect implements Provider.
func (p *StaticProvider) Detect(ctx context.Context, text string, minConfidence float64) ([]detector.Detection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p.Err != nil {
		return nil, p.Err
	}

	var out []detector.Detection
	for _, d := range p.Detections {
		if d.Confidence >= minConfidence {
			d.Source = detector.SourceML
			out = append(out, d)
		}
	}
	return out, nil
}

// Close implements Provider.
func (p *StaticProvider) Close() error { return nil }
