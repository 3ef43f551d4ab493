// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"inkblot/internal/detector"
)

func sampleItems() []detector.RedactionItem {
	return []detector.RedactionItem{
		{
			Detection: detector.Detection{Text: "john@example.com", Type: "EMAIL", Source: detector.SourceRegex, Confidence: 1.0},
			Boxes:     []detector.BoundingBox{{X: 1, Y: 1, W: 5, H: 5}},
			Enabled:   true,
		},
		{
			Detection: detector.Detection{Text: "212-09-9999", Type: "SSN", Source: detector.SourceRegex, Confidence: 1.0},
			Enabled:   false,
		},
	}
}

func TestBuildCounts(t *testing.T) {
	s := Build("note.txt", "text", "out/note_redacted.txt", sampleItems(), nil)
	if s.Applied != 1 || s.Skipped != 1 {
		t.Errorf("applied=%d skipped=%d", s.Applied, s.Skipped)
	}
}

func TestMask_DoesNotLeakValue(t *testing.T) {
	s := Build("note.txt", "text", "", sampleItems(), nil)
	for _, item := range s.Items {
		if strings.Contains(item.Text, "john@example") || strings.Contains(item.Text, "212-09") {
			t.Errorf("summary leaks the detected value: %q", item.Text)
		}
	}
	if s.Items[0].Text[0] != 'j' {
		t.Errorf("mask keeps the first rune: %q", s.Items[0].Text)
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	s := Build("note.txt", "text", "", sampleItems(), nil)
	if err := s.WriteJSON(&buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded Summary
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.File != "note.txt" || len(decoded.Items) != 2 {
		t.Errorf("round-trip wrong: %+v", decoded)
	}
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	s := Build("note.txt", "text", "out.txt", sampleItems(), nil)
	s.WriteText(&buf, true)

	out := buf.String()
	if !strings.Contains(out, "EMAIL") || !strings.Contains(out, "redacted: 1") {
		t.Errorf("summary text missing fields: %q", out)
	}
}
