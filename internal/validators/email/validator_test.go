// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package email

import (
	"testing"
)

func TestDetect(t *testing.T) {
	v := NewValidator()

	cases := []struct {
		name    string
		text    string
		matches []string
	}{
		{"single address", "contact john@example.com for details", []string{"john@example.com"}},
		{"two addresses", "john@example.com, jane.doe@corp.example.org", []string{"john@example.com", "jane.doe@corp.example.org"}},
		{"plus tag", "billing+invoices@example.com", []string{"billing+invoices@example.com"}},
		{"no address", "nothing to see here", nil},
		{"missing tld", "user@localhost", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			matches := v.Detect(tc.text)
			if len(matches) != len(tc.matches) {
				t.Fatalf("expected %d matches, got %d", len(tc.matches), len(matches))
			}
			for i, m := range matches {
				if m.Text != tc.matches[i] {
					t.Errorf("match %d: got %q, want %q", i, m.Text, tc.matches[i])
				}
				if tc.text[m.Start:m.End] != m.Text {
					t.Errorf("offsets [%d,%d) do not address %q", m.Start, m.End, m.Text)
				}
				if m.Type != "EMAIL" {
					t.Errorf("expected type EMAIL, got %q", m.Type)
				}
			}
		})
	}
}
