// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package validators

import (
	"bytes"
	"strings"
	"testing"

	"inkblot/internal/detector"
	"inkblot/internal/observability"
)

func TestNewDefaultRegistry_AllEnabled(t *testing.T) {
	r := NewDefaultRegistry(nil, nil)
	categories := r.Categories()
	if len(categories) < 10 {
		t.Fatalf("expected the full category set, got %d: %v", len(categories), categories)
	}
}

func TestNewDefaultRegistry_Subset(t *testing.T) {
	r := NewDefaultRegistry(map[string]bool{"EMAIL": true, "SSN": true}, nil)

	text := "mail john@example.com ssn 212-09-9999 card 4532015112830366"
	results := r.DetectAll(text)

	types := make(map[string]int)
	for _, d := range results {
		types[d.Type]++
	}
	if types["EMAIL"] != 1 || types["SSN"] != 1 {
		t.Errorf("expected one EMAIL and one SSN, got %v", types)
	}
	if types["VISA"] != 0 {
		t.Errorf("credit card detection should be disabled, got %v", types)
	}
}

func TestNewDefaultRegistry_FinancialCategories(t *testing.T) {
	// Every category a built-in profile can name must resolve to a
	// registered validator.
	enabled := map[string]bool{
		"CREDIT_CARD": true, "IBAN": true, "SWIFT_BIC": true, "SSN": true, "CPF": true,
	}
	r := NewDefaultRegistry(enabled, nil)

	got := make(map[string]bool)
	for _, c := range r.Categories() {
		got[c] = true
	}
	for name := range enabled {
		if !got[name] {
			t.Errorf("category %s not registered, got %v", name, r.Categories())
		}
	}
}

func TestNewDefaultRegistry_WarnsOnUnknownCheck(t *testing.T) {
	var buf bytes.Buffer
	observer := observability.NewStandardObserver(observability.ObservabilityMetrics, &buf)

	r := NewDefaultRegistry(map[string]bool{"EMAIL": true, "EMIAL": true}, observer)

	if got := r.Categories(); len(got) != 1 || got[0] != "EMAIL" {
		t.Errorf("Categories() = %v, want [EMAIL]", got)
	}
	if !strings.Contains(buf.String(), "EMIAL") {
		t.Errorf("expected a warning naming the unknown check, got %q", buf.String())
	}
}

func TestDetectAll_MixedCategories(t *testing.T) {
	r := NewDefaultRegistry(nil, nil)

	text := "John (john@example.com) paid with 4532-0151-1283-0366, SSN 212-09-9999."
	results := r.DetectAll(text)

	types := make(map[string]bool)
	for _, d := range results {
		types[d.Type] = true
		if text[d.Start:d.End] != d.Text {
			t.Errorf("offsets [%d,%d) do not address %q", d.Start, d.End, d.Text)
		}
	}
	for _, want := range []string{"EMAIL", "VISA", "SSN"} {
		if !types[want] {
			t.Errorf("expected a %s detection, got types %v", want, types)
		}
	}
}

type panickingValidator struct{}

func (panickingValidator) Name() string                       { return "PANIC" }
func (panickingValidator) Detect(string) []detector.Detection { panic("boom") }

func TestDetectAll_IsolatesValidatorPanic(t *testing.T) {
	r := NewDefaultRegistry(map[string]bool{"EMAIL": true}, nil)
	r.Register(panickingValidator{})

	results := r.DetectAll("reach me at john@example.com")
	if len(results) != 1 || results[0].Type != "EMAIL" {
		t.Errorf("expected the email detection to survive a panicking validator, got %v", results)
	}
}
