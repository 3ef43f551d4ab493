// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package merger

import (
	"reflect"
	"testing"

	"inkblot/internal/detector"
)

func det(text, typ string, conf float64, source detector.Source, start, end int) detector.Detection {
	return detector.Detection{
		Text:       text,
		Type:       typ,
		Confidence: conf,
		Source:     source,
		Start:      start,
		End:        end,
	}
}

func TestMerge_DeduplicatesByTextAndType(t *testing.T) {
	regex := []detector.Detection{det("john@example.com", "EMAIL", 1.0, detector.SourceRegex, 10, 26)}
	ml := []detector.Detection{det("john@example.com", "EMAIL", 0.8, detector.SourceML, 10, 26)}

	out := Merge(regex, ml)
	if len(out) != 1 {
		t.Fatalf("expected 1 detection, got %d", len(out))
	}
	if out[0].Confidence != 1.0 || out[0].Source != detector.SourceRegex {
		t.Errorf("expected the higher-confidence entry to survive, got %+v", out[0])
	}
}

func TestMerge_SameTypeOverlapKeepsHigherConfidence(t *testing.T) {
	regex := []detector.Detection{det("212-09-9999", "SSN", 1.0, detector.SourceRegex, 5, 16)}
	ml := []detector.Detection{det("09-9999", "SSN", 0.6, detector.SourceML, 9, 16)}

	out := Merge(regex, ml)
	if len(out) != 1 {
		t.Fatalf("expected 1 detection, got %d", len(out))
	}
	if out[0].Text != "212-09-9999" || out[0].Confidence != 1.0 {
		t.Errorf("expected the regex detection to win, got %+v", out[0])
	}
}

func TestMerge_WinnerExpandsToContainingSpan(t *testing.T) {
	// The ML detection covers a larger span at lower confidence. The
	// higher-confidence winner keeps its confidence but grows to the
	// containing span and becomes hybrid, so the redaction covers the
	// whole region either source flagged.
	regex := []detector.Detection{det("212-09-9999", "SSN", 1.0, detector.SourceRegex, 9, 20)}
	ml := []detector.Detection{det("SSN 212-09-9999", "SSN", 0.7, detector.SourceML, 5, 20)}

	out := Merge(regex, ml)
	if len(out) != 1 {
		t.Fatalf("expected 1 detection, got %d", len(out))
	}
	if out[0].Start != 5 || out[0].End != 20 {
		t.Errorf("expected span [5,20), got [%d,%d)", out[0].Start, out[0].End)
	}
	if out[0].Confidence != 1.0 {
		t.Errorf("expected winner confidence 1.0, got %v", out[0].Confidence)
	}
	if out[0].Source != detector.SourceHybrid {
		t.Errorf("expected hybrid source, got %q", out[0].Source)
	}
}

func TestMerge_DifferentTypesBothKept(t *testing.T) {
	regex := []detector.Detection{det("4532-0151-1283", "AADHAAR", 1.0, detector.SourceRegex, 0, 14)}
	ml := []detector.Detection{det("4532-0151-1283-0366", "CREDIT_CARD", 0.9, detector.SourceML, 0, 19)}

	out := Merge(regex, ml)
	if len(out) != 2 {
		t.Fatalf("overlapping detections of different types are independent facts, got %d", len(out))
	}
}

func TestMerge_OrderIndependent(t *testing.T) {
	a := det("john@example.com", "EMAIL", 1.0, detector.SourceRegex, 0, 16)
	b := det("212-09-9999", "SSN", 1.0, detector.SourceRegex, 20, 31)
	c := det("09-9999", "SSN", 0.5, detector.SourceML, 24, 31)
	d := det("john@example.com", "EMAIL", 0.9, detector.SourceML, 0, 16)

	first := Merge([]detector.Detection{a, b}, []detector.Detection{c, d})
	second := Merge([]detector.Detection{b, a}, []detector.Detection{d, c})

	if !reflect.DeepEqual(first, second) {
		t.Errorf("merge depends on input order:\n%v\nvs\n%v", first, second)
	}
}

func TestMerge_EmptyInputs(t *testing.T) {
	if out := Merge(nil, nil); len(out) != 0 {
		t.Errorf("expected empty output, got %v", out)
	}
}
