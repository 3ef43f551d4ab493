// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package iban

import (
	"testing"
)

func TestValidateChecksum(t *testing.T) {
	cases := []struct {
		name string
		iban string
		want bool
	}{
		{"valid GB", "GB82WEST12345698765432", true},
		{"valid DE", "DE89370400440532013000", true},
		{"valid FR", "FR1420041010050500013M02606", true},
		{"last digit off", "GB82WEST12345698765433", false},
		{"check digits off", "GB83WEST12345698765432", false},
		{"too short", "GB82WEST123", false},
		{"lowercase rejected", "gb82west12345698765432", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ValidateChecksum(tc.iban); got != tc.want {
				t.Errorf("ValidateChecksum(%q) = %v, want %v", tc.iban, got, tc.want)
			}
		})
	}
}

func TestDetect(t *testing.T) {
	v := NewValidator()

	text := "Transfer to GB82 WEST 1234 5698 7654 32 by Friday."
	matches := v.Detect(text)
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	if matches[0].Text != "GB82 WEST 1234 5698 7654 32" {
		t.Errorf("got %q", matches[0].Text)
	}
	if text[matches[0].Start:matches[0].End] != matches[0].Text {
		t.Error("offsets do not address the matched text")
	}
}

func TestDetect_RejectsBadChecksum(t *testing.T) {
	v := NewValidator()
	matches := v.Detect("ref GB82WEST12345698765433 rejected")
	if len(matches) != 0 {
		t.Errorf("expected no matches for checksum-invalid IBAN, got %d", len(matches))
	}
}
