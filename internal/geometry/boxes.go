// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package geometry

import (
	"sort"

	"inkblot/internal/detector"
)

// Union returns the smallest box covering both inputs. Metadata (type,
// source, addressing) is taken from a; the combined text keeps a's value
// since the caller tracks the full term separately.
func Union(a, b detector.BoundingBox) detector.BoundingBox {
	out := a
	minX := min(a.X, b.X)
	minY := min(a.Y, b.Y)
	maxX := max(a.X+a.W, b.X+b.W)
	maxY := max(a.Y+a.H, b.Y+b.H)

	out.X = minX
	out.Y = minY
	out.W = maxX - minX
	out.H = maxY - minY
	return out
}

// Expand grows a box by pad on every side.
func Expand(b detector.BoundingBox, pad float64) detector.BoundingBox {
	out := b
	out.X -= pad
	out.Y -= pad
	out.W += 2 * pad
	out.H += 2 * pad
	return out
}

// MergeOverlapping collapses intersecting boxes on the same page into union
// boxes. The merged box replaces both inputs; its source becomes hybrid when
// the inputs disagree. Boxes on different pages never merge.
func MergeOverlapping(boxes []detector.BoundingBox) []detector.BoundingBox {
	if len(boxes) < 2 {
		return boxes
	}

	work := make([]detector.BoundingBox, len(boxes))
	copy(work, boxes)
	sort.Slice(work, func(i, j int) bool {
		if work[i].Page != work[j].Page {
			return work[i].Page < work[j].Page
		}
		if work[i].X != work[j].X {
			return work[i].X < work[j].X
		}
		return work[i].Y < work[j].Y
	})

	var out []detector.BoundingBox
	for _, b := range work {
		merged := false
		for i := range out {
			if out[i].Page == b.Page && out[i].Intersects(b) {
				u := Union(out[i], b)
				if out[i].Source != b.Source {
					u.Source = detector.SourceHybrid
				}
				if u.Confidence < b.Confidence {
					u.Confidence = b.Confidence
				}
				out[i] = u
				merged = true
				break
			}
		}
		if !merged {
			out = append(out, b)
		}
	}

	return out
}
