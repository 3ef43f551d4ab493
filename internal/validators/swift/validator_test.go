// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package swift

import (
	"testing"
)

func TestName(t *testing.T) {
	if got := NewValidator().Name(); got != "SWIFT_BIC" {
		t.Errorf("Name() = %q, want %q", got, "SWIFT_BIC")
	}
}

func TestDetect(t *testing.T) {
	v := NewValidator()
	cases := []struct {
		text string
		want int
	}{
		{"wire to DEUTDEFF please", 1},
		{"BOFAUS3N", 1},
		{"branch code CHASUS33XXX", 1},
		{"PASSWORD required", 0},  // WO is not a country
		{"REDACTED contents", 0},  // CT is not a country
		{"lowercase deutdeff", 0}, // BICs are upper case
		{"DEUTDEFF and BOFAUS3N", 2},
	}
	for _, tc := range cases {
		matches := v.Detect(tc.text)
		if len(matches) != tc.want {
			t.Errorf("Detect(%q) found %d matches, want %d", tc.text, len(matches), tc.want)
			continue
		}
		for _, m := range matches {
			if tc.text[m.Start:m.End] != m.Text {
				t.Errorf("offsets [%d,%d) do not address %q", m.Start, m.End, m.Text)
			}
		}
	}
}

func TestIsCountryCode(t *testing.T) {
	for code, want := range map[string]bool{"US": true, "DE": true, "XK": true, "WO": false, "ZZ": false} {
		if got := isCountryCode(code); got != want {
			t.Errorf("isCountryCode(%q) = %v, want %v", code, got, want)
		}
	}
}
