// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package plaintext

import (
	"context"
	"strings"
	"testing"

	"inkblot/internal/formats"
)

func load(t *testing.T, text string) (*Adapter, *formats.Document) {
	t.Helper()
	a := NewAdapter(nil)
	doc, err := a.Load(context.Background(), "note.txt", []byte(text))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	return a, doc
}

func TestLoad_RejectsBinary(t *testing.T) {
	a := NewAdapter(nil)
	_, err := a.Load(context.Background(), "blob.txt", []byte{0x00, 0x01, 0xff})
	if err == nil {
		t.Fatal("expected a load error for binary content")
	}
	if _, ok := err.(*formats.LoadError); !ok {
		t.Errorf("expected *formats.LoadError, got %T", err)
	}
}

func TestFindTextBoxes_RepeatedTerm(t *testing.T) {
	a, doc := load(t, "test test test")

	boxes, err := a.FindTextBoxes(doc, []string{"test"}, formats.AllPages)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(boxes) != 3 {
		t.Fatalf("expected 3 boxes for 3 occurrences, got %d", len(boxes))
	}
	for i, b := range boxes {
		if b.Text != "test" {
			t.Errorf("box %d text = %q", i, b.Text)
		}
		if i > 0 && boxes[i].X <= boxes[i-1].X {
			t.Errorf("boxes should advance left to right: %v then %v", boxes[i-1].X, boxes[i].X)
		}
	}
}

func TestFindTextBoxes_CaseInsensitive(t *testing.T) {
	a, doc := load(t, "Hello hello HELLO")

	boxes, err := a.FindTextBoxes(doc, []string{"hello"}, formats.AllPages)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(boxes) != 3 {
		t.Fatalf("expected 3 boxes, got %d", len(boxes))
	}
	// Matched text keeps the original casing.
	want := []string{"Hello", "hello", "HELLO"}
	for i, b := range boxes {
		if b.Text != want[i] {
			t.Errorf("box %d text = %q, want %q", i, b.Text, want[i])
		}
	}
}

func TestFindTextBoxes_MultiLine(t *testing.T) {
	a, doc := load(t, "alpha\nbeta alpha\ngamma")

	boxes, err := a.FindTextBoxes(doc, []string{"alpha"}, formats.AllPages)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(boxes) != 2 {
		t.Fatalf("expected 2 boxes, got %d", len(boxes))
	}
	if boxes[0].Line != 0 || boxes[1].Line != 1 {
		t.Errorf("line addressing wrong: %d and %d", boxes[0].Line, boxes[1].Line)
	}
}

func TestRedactExportRoundTrip(t *testing.T) {
	a, doc := load(t, "contact john@example.com for details")

	boxes, err := a.FindTextBoxes(doc, []string{"john@example.com"}, formats.AllPages)
	if err != nil || len(boxes) != 1 {
		t.Fatalf("find failed: %v (%d boxes)", err, len(boxes))
	}
	if err := a.Redact(doc, boxes); err != nil {
		t.Fatalf("redact failed: %v", err)
	}

	out, err := a.Export(context.Background(), doc, formats.ExportOptions{})
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}

	text := string(out)
	if strings.Contains(text, "john@example.com") {
		t.Error("redacted value survived export")
	}
	want := "contact " + strings.Repeat(string(BlockChar), len("john@example.com")) + " for details"
	if text != want {
		t.Errorf("got %q, want %q", text, want)
	}
}

func TestRedact_AccumulatesAcrossApplies(t *testing.T) {
	a, doc := load(t, "alpha beta gamma")

	first, _ := a.FindTextBoxes(doc, []string{"alpha"}, formats.AllPages)
	if err := a.Redact(doc, first); err != nil {
		t.Fatalf("first redact failed: %v", err)
	}
	second, _ := a.FindTextBoxes(doc, []string{"gamma"}, formats.AllPages)
	if err := a.Redact(doc, second); err != nil {
		t.Fatalf("second redact failed: %v", err)
	}

	if len(doc.Boxes) != 2 {
		t.Errorf("document should accumulate all applied boxes, got %d", len(doc.Boxes))
	}

	out, _ := a.Export(context.Background(), doc, formats.ExportOptions{})
	text := string(out)
	if strings.Contains(text, "alpha") || strings.Contains(text, "gamma") {
		t.Errorf("earlier redactions must survive later ones: %q", text)
	}
	if !strings.Contains(text, "beta") {
		t.Errorf("untouched text must survive: %q", text)
	}
}

func TestExtractText(t *testing.T) {
	a, doc := load(t, "one\ntwo\nthree")

	extract, err := a.ExtractText(context.Background(), doc, formats.AllPages)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if extract.FullText != "one\ntwo\nthree" {
		t.Errorf("full text wrong: %q", extract.FullText)
	}
	if len(extract.Lines) != 3 {
		t.Errorf("expected 3 lines, got %d", len(extract.Lines))
	}
	if doc.Metadata.LineCount != 3 {
		t.Errorf("metadata line count = %d", doc.Metadata.LineCount)
	}
}
