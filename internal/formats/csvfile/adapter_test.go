// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package csvfile

import (
	"context"
	"strings"
	"testing"

	"inkblot/internal/formats"
)

const sampleCSV = "Name,Email,Phone\nJohn,john@example.com,555-123-4567\nJane,jane@example.com,555-987-6543\n"

func load(t *testing.T, name, data string) (*Adapter, *formats.Document) {
	t.Helper()
	a := NewAdapter(nil)
	doc, err := a.Load(context.Background(), name, []byte(data))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	return a, doc
}

func TestLoad(t *testing.T) {
	_, doc := load(t, "people.csv", sampleCSV)
	if doc.Metadata.RowCount != 3 {
		t.Errorf("expected 3 rows, got %d", doc.Metadata.RowCount)
	}
}

func TestLoad_TabDelimited(t *testing.T) {
	a, doc := load(t, "people.tsv", "Name\tEmail\nJohn\tjohn@example.com\n")

	extract, err := a.ExtractText(context.Background(), doc, formats.AllPages)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(extract.FullText, "john@example.com") {
		t.Errorf("cell content missing from extract: %q", extract.FullText)
	}
}

func TestFindTextBoxes_WholeCellAddressing(t *testing.T) {
	a, doc := load(t, "people.csv", sampleCSV)

	boxes, err := a.FindTextBoxes(doc, []string{"john@example.com"}, formats.AllPages)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(boxes) != 1 {
		t.Fatalf("expected 1 box, got %d", len(boxes))
	}
	if boxes[0].Row != 1 || boxes[0].Column != 1 {
		t.Errorf("cell addressing wrong: row=%d col=%d", boxes[0].Row, boxes[0].Column)
	}
}

func TestRedact_WholeCell(t *testing.T) {
	a, doc := load(t, "people.csv", sampleCSV)

	// A partial match still blanks the entire cell.
	boxes, _ := a.FindTextBoxes(doc, []string{"john@"}, formats.AllPages)
	if len(boxes) != 1 {
		t.Fatalf("expected 1 box, got %d", len(boxes))
	}
	if err := a.Redact(doc, boxes); err != nil {
		t.Fatalf("redact failed: %v", err)
	}

	out, err := a.Export(context.Background(), doc, formats.ExportOptions{})
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	text := string(out)
	if strings.Contains(text, "john@example.com") || strings.Contains(text, "example.com") {
		t.Errorf("cell content survived whole-cell redaction: %q", text)
	}
	if !strings.Contains(text, string(BlockChar)) {
		t.Error("expected a block-character fill in the output")
	}
	if !strings.Contains(text, "jane@example.com") {
		t.Error("untouched cells must survive")
	}
}

func TestRedact_FillLengthIndependentButDeterministic(t *testing.T) {
	fillA := fillCell("john@example.com")
	fillB := fillCell("john@example.com")
	if fillA != fillB {
		t.Errorf("same content must fill identically: %q vs %q", fillA, fillB)
	}
	n := len([]rune(fillA))
	if n < minFillLen || n > maxFillLen {
		t.Errorf("fill length %d outside [%d,%d]", n, minFillLen, maxFillLen)
	}
	// Refilling an already-filled cell is a no-op.
	if fillCell(fillA) != fillA {
		t.Error("refilling a filled cell must be idempotent")
	}
}

func TestRedactColumn_NameAndIndexEquivalent(t *testing.T) {
	a1, doc1 := load(t, "people.csv", sampleCSV)
	if err := a1.RedactColumn(doc1, "Email"); err != nil {
		t.Fatalf("redact by name failed: %v", err)
	}
	out1, _ := a1.Export(context.Background(), doc1, formats.ExportOptions{})

	a2, doc2 := load(t, "people.csv", sampleCSV)
	if err := a2.RedactColumn(doc2, 1); err != nil {
		t.Fatalf("redact by index failed: %v", err)
	}
	out2, _ := a2.Export(context.Background(), doc2, formats.ExportOptions{})

	if string(out1) != string(out2) {
		t.Errorf("column-by-name and column-by-index outputs differ:\n%q\nvs\n%q", out1, out2)
	}
	if strings.Contains(string(out1), "john@example.com") {
		t.Error("email column content survived")
	}
	if !strings.Contains(string(out1), "Email") {
		t.Error("header row must survive column redaction")
	}
}

func TestRedactColumn_MissingColumn(t *testing.T) {
	a, doc := load(t, "people.csv", sampleCSV)

	err := a.RedactColumn(doc, "SSN")
	if err == nil {
		t.Fatal("expected an error for a missing column")
	}
	if !strings.Contains(err.Error(), "SSN") {
		t.Errorf("error must name the missing column: %v", err)
	}

	err = a.RedactColumn(doc, 9)
	if err == nil || !strings.Contains(err.Error(), "9") {
		t.Errorf("error must name the missing index: %v", err)
	}
}

func TestExport_PreservesStructure(t *testing.T) {
	a, doc := load(t, "people.csv", sampleCSV)

	out, err := a.Export(context.Background(), doc, formats.ExportOptions{})
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(out), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(lines))
	}
	if lines[0] != "Name,Email,Phone" {
		t.Errorf("header wrong: %q", lines[0])
	}
}
