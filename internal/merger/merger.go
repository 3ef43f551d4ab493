// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package merger combines regex and ML detection results into one
// deduplicated, confidence-ranked set.
package merger

import (
	"sort"

	"inkblot/internal/detector"
)

// Merge combines pattern-detector output and ML-detector output.
//
// Rules, applied in order:
//   - detections are deduplicated by (text, type), keeping the highest
//     confidence entry;
//   - same-type detections whose character spans overlap collapse to the
//     highest-confidence one; when a lower-ranked member of the overlap
//     fully contains the winner's span, the winner expands to that larger
//     span and becomes a hybrid detection;
//   - different-type overlapping detections are independent facts and are
//     both kept.
//
// The result is deterministic and independent of input order: all inputs are
// sorted before comparison and every tie-break is total.
func Merge(regexResults, mlResults []detector.Detection) []detector.Detection {
	combined := make([]detector.Detection, 0, len(regexResults)+len(mlResults))
	combined = append(combined, regexResults...)
	combined = append(combined, mlResults...)

	combined = dedupeByTextType(combined)
	sortCanonical(combined)

	// Cluster same-type detections by span overlap, then resolve each
	// cluster to a single detection.
	used := make([]bool, len(combined))
	var out []detector.Detection

	for i := range combined {
		if used[i] {
			continue
		}
		cluster := []int{i}
		used[i] = true

		// Overlap is transitive within a sorted sweep: extend the cluster
		// while the running span still overlaps the next candidate.
		spanEnd := combined[i].End
		for j := i + 1; j < len(combined); j++ {
			if used[j] || combined[j].Type != combined[i].Type {
				continue
			}
			if combined[j].Start >= spanEnd {
				break
			}
			cluster = append(cluster, j)
			used[j] = true
			if combined[j].End > spanEnd {
				spanEnd = combined[j].End
			}
		}

		out = append(out, resolveCluster(combined, cluster))
	}

	sortCanonical(out)
	return out
}

// resolveCluster picks the highest-confidence member and expands it to the
// span of any member that fully contains it.
func resolveCluster(all []detector.Detection, cluster []int) detector.Detection {
	winner := all[cluster[0]]
	for _, idx := range cluster[1:] {
		if all[idx].Confidence > winner.Confidence {
			winner = all[idx]
		}
	}

	for _, idx := range cluster {
		d := all[idx]
		if d.Contains(winner) && (d.End-d.Start) > (winner.End-winner.Start) {
			winner.Start = d.Start
			winner.End = d.End
			winner.Text = d.Text
			winner.Source = detector.SourceHybrid
		}
	}

	return winner
}

// dedupeByTextType collapses identical (text, type) pairs to the highest
// confidence entry. Identical detections from two category checks collapse
// to one.
func dedupeByTextType(in []detector.Detection) []detector.Detection {
	type key struct{ text, typ string }
	best := make(map[key]detector.Detection, len(in))
	order := make([]key, 0, len(in))

	for _, d := range in {
		k := key{d.Text, d.Type}
		prev, seen := best[k]
		if !seen {
			best[k] = d
			order = append(order, k)
			continue
		}
		if d.Confidence > prev.Confidence {
			best[k] = d
		}
	}

	out := make([]detector.Detection, 0, len(best))
	for _, k := range order {
		out = append(out, best[k])
	}
	return out
}

// sortCanonical imposes a total order so merging is input-order independent.
func sortCanonical(ds []detector.Detection) {
	sort.Slice(ds, func(i, j int) bool {
		a, b := ds[i], ds[j]
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		if a.End != b.End {
			return a.End > b.End
		}
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		if a.Type != b.Type {
			return a.Type < b.Type
		}
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		return a.Text < b.Text
	})
}
