// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"context"
	"strings"
	"testing"

	"inkblot/internal/detector"
	"inkblot/internal/formats"
	"inkblot/internal/formats/csvfile"
	"inkblot/internal/formats/plaintext"
	"inkblot/internal/ml"
	"inkblot/internal/validators"
)

func newTestPipeline(mlProvider ml.Provider) *Pipeline {
	registry := formats.NewRegistry()
	registry.Register(formats.FormatText, plaintext.NewAdapter(nil))
	registry.Register(formats.FormatCSV, csvfile.NewAdapter(nil))

	return NewPipeline(Options{
		Formats:       registry,
		Validators:    validators.NewDefaultRegistry(nil, nil),
		MLProvider:    mlProvider,
		MinConfidence: 0.5,
	})
}

func TestEndToEnd_Plaintext(t *testing.T) {
	p := newTestPipeline(nil)
	ctx := context.Background()

	text := "contact john@example.com, SSN 212-09-9999 on file"
	session, err := p.Open(ctx, "note.txt", []byte(text))
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer session.Close()

	if err := session.DetectAll(ctx, 0); err != nil {
		t.Fatalf("detection failed: %v", err)
	}

	items := session.Items()
	if len(items) < 2 {
		t.Fatalf("expected at least email and SSN items, got %d", len(items))
	}
	for _, item := range items {
		if !item.Enabled {
			t.Error("items must start enabled")
		}
	}

	if err := session.Apply(); err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	out, err := session.Export(ctx, formats.ExportOptions{})
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	result := string(out)
	if strings.Contains(result, "john@example.com") || strings.Contains(result, "212-09-9999") {
		t.Errorf("detected values survived redaction: %q", result)
	}
	if !strings.Contains(result, "contact") {
		t.Errorf("surrounding text must survive: %q", result)
	}
}

func TestEndToEnd_CSV(t *testing.T) {
	p := newTestPipeline(nil)
	ctx := context.Background()

	data := "Name,Email\nJohn,john@example.com\nJane,jane@example.com\n"
	session, err := p.Open(ctx, "people.csv", []byte(data))
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer session.Close()

	if err := session.DetectAll(ctx, 0); err != nil {
		t.Fatalf("detection failed: %v", err)
	}
	if err := session.Apply(); err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	out, err := session.Export(ctx, formats.ExportOptions{})
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	result := string(out)
	if strings.Contains(result, "john@example.com") || strings.Contains(result, "jane@example.com") {
		t.Errorf("email cells survived: %q", result)
	}
	if !strings.Contains(result, "John") || !strings.Contains(result, "Jane") {
		t.Errorf("name cells must survive: %q", result)
	}
}

func TestSetEnabled_SkipsItem(t *testing.T) {
	p := newTestPipeline(nil)
	ctx := context.Background()

	text := "john@example.com and jane@example.org"
	session, err := p.Open(ctx, "note.txt", []byte(text))
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer session.Close()

	if err := session.DetectAll(ctx, 0); err != nil {
		t.Fatalf("detection failed: %v", err)
	}
	items := session.Items()
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}

	keep := -1
	for i, item := range items {
		if item.Detection.Text == "jane@example.org" {
			keep = i
		}
	}
	if keep < 0 {
		t.Fatal("jane@example.org not detected")
	}
	if err := session.SetEnabled(keep, false); err != nil {
		t.Fatalf("toggle failed: %v", err)
	}

	if err := session.Apply(); err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	out, _ := session.Export(ctx, formats.ExportOptions{})
	result := string(out)
	if strings.Contains(result, "john@example.com") {
		t.Error("enabled item not redacted")
	}
	if !strings.Contains(result, "jane@example.org") {
		t.Error("disabled item must not be redacted")
	}
}

func TestSetEnabled_OutOfRange(t *testing.T) {
	p := newTestPipeline(nil)
	session, err := p.Open(context.Background(), "note.txt", []byte("nothing here"))
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer session.Close()

	if err := session.SetEnabled(0, false); err == nil {
		t.Error("expected an out-of-range error")
	}
}

func TestMLResultsMerged(t *testing.T) {
	mlProvider := &ml.StaticProvider{Detections: []detector.Detection{
		{Text: "Acme Corp", Type: "ORG", Confidence: 0.9, Start: 23, End: 32},
	}}
	p := newTestPipeline(mlProvider)
	ctx := context.Background()

	text := "john@example.com works Acme Corp"
	session, err := p.Open(ctx, "note.txt", []byte(text))
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer session.Close()

	if err := session.DetectAll(ctx, 0); err != nil {
		t.Fatalf("detection failed: %v", err)
	}

	var sawEmail, sawOrg bool
	for _, item := range session.Items() {
		switch item.Detection.Type {
		case "EMAIL":
			sawEmail = true
		case "ORG":
			sawOrg = true
			if item.Detection.Source != detector.SourceML {
				t.Errorf("ML detection source wrong: %q", item.Detection.Source)
			}
		}
	}
	if !sawEmail || !sawOrg {
		t.Errorf("expected both pattern and ML detections (email=%v org=%v)", sawEmail, sawOrg)
	}
}

func TestMLFailureDegradesToPatterns(t *testing.T) {
	mlProvider := &ml.StaticProvider{Err: context.DeadlineExceeded}
	p := newTestPipeline(mlProvider)
	ctx := context.Background()

	session, err := p.Open(ctx, "note.txt", []byte("mail john@example.com"))
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer session.Close()

	if err := session.DetectAll(ctx, 0); err != nil {
		t.Fatalf("detection must survive an ML failure: %v", err)
	}
	if len(session.Items()) != 1 {
		t.Errorf("expected the pattern detection, got %d items", len(session.Items()))
	}
}

func TestApplyBumpsGeneration(t *testing.T) {
	p := newTestPipeline(nil)
	ctx := context.Background()

	session, err := p.Open(ctx, "note.txt", []byte("ssn 212-09-9999"))
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer session.Close()

	if session.Generation() != 0 {
		t.Fatalf("fresh session generation = %d", session.Generation())
	}
	if err := session.DetectAll(ctx, 0); err != nil {
		t.Fatalf("detection failed: %v", err)
	}
	if err := session.Apply(); err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if session.Generation() != 1 {
		t.Errorf("apply must bump the generation, got %d", session.Generation())
	}
	if len(session.Items()) != 0 {
		t.Errorf("applied items must leave the pending set, got %d", len(session.Items()))
	}
}

func TestStaleDetectionDiscarded(t *testing.T) {
	p := newTestPipeline(nil)
	ctx := context.Background()

	session, err := p.Open(ctx, "note.txt", []byte("first john@example.com\nsecond 212-09-9999"))
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer session.Close()

	// A mutation between detection start and commit must invalidate the
	// in-flight results. Simulate it by detecting, then applying a manual
	// box, then checking that a detection started before the apply reports
	// staleness.
	startGen := session.Generation()
	if err := session.AddManualBoxes([]detector.BoundingBox{{X: 0, Y: 0, W: 7, H: 13, Line: 0}}); err != nil {
		t.Fatalf("manual box failed: %v", err)
	}
	if err := session.Apply(); err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if session.Generation() == startGen {
		t.Fatal("apply did not bump the generation")
	}

	// The session now refuses results computed against startGen; DetectPage
	// re-run against the current document succeeds and finds the surviving
	// values.
	if err := session.DetectPage(ctx, formats.AllPages); err != nil {
		t.Fatalf("re-detection failed: %v", err)
	}
	if len(session.Items()) == 0 {
		t.Error("re-detection found nothing")
	}
}

func TestApplyWithoutItems(t *testing.T) {
	p := newTestPipeline(nil)
	session, err := p.Open(context.Background(), "note.txt", []byte("nothing sensitive"))
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer session.Close()

	if err := session.Apply(); err == nil {
		t.Error("apply with no enabled items must error")
	}
}

func TestOpen_UnsupportedFormat(t *testing.T) {
	p := newTestPipeline(nil)
	_, err := p.Open(context.Background(), "blob.bin", []byte{0x00, 0x01, 0x02})
	if err == nil {
		t.Fatal("expected an unsupported format error")
	}
}
