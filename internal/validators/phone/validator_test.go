// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package phone

import (
	"testing"
)

func TestDetect(t *testing.T) {
	v := NewValidator()
	cases := []struct {
		text string
		want int
	}{
		{"call 555-123-4567", 1},
		{"call (555) 123-4567", 1},
		{"call (555)123-4567", 1}, // no separator after the closing paren
		{"call 555.123.4567", 1},
		{"call +1 555.123.4567", 1},
		{"intl +15551234567", 1},
		{"short +1234567 code", 0}, // under the E.164 digit floor
		{"call 555-123-4567 or (555)987-6543", 2},
		{"no numbers here", 0},
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
