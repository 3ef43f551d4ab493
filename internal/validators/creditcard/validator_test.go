// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package creditcard

import (
	"testing"
)

func TestLuhnCheck(t *testing.T) {
	cases := []struct {
		name   string
		number string
		want   bool
	}{
		{"valid visa", "4532015112830366", true},
		{"valid amex", "378282246310005", true},
		{"valid mastercard", "5555555555554444", true},
		{"sequential digits fail", "1234567812345678", false},
		{"single digit off", "4532015112830367", false},
		{"empty", "", false},
		{"non-digit", "4532a15112830366", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := LuhnCheck(tc.number); got != tc.want {
				t.Errorf("LuhnCheck(%q) = %v, want %v", tc.number, got, tc.want)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	if got := Normalize("4532-0151 1283-0366"); got != "4532015112830366" {
		t.Errorf("Normalize stripped separators wrong: %q", got)
	}
}

func TestCardType(t *testing.T) {
	cases := []struct {
		number string
		want   string
	}{
		{"4532015112830366", "VISA"},
		{"5555555555554444", "MASTERCARD"},
		{"2221000000000009", "MASTERCARD"},
		{"378282246310005", "AMERICAN_EXPRESS"},
		{"6011111111111117", "DISCOVER"},
		{"6200000000000005", "UNIONPAY"},
		{"9999999999999995", "CREDIT_CARD"},
	}
	for _, tc := range cases {
		if got := CardType(tc.number); got != tc.want {
			t.Errorf("CardType(%q) = %q, want %q", tc.number, got, tc.want)
		}
	}
}

func TestDetect_FormattedVariants(t *testing.T) {
	v := NewValidator()

	cases := []struct {
		name string
		text string
	}{
		{"plain", "card 4532015112830366 on file"},
		{"dashed", "card 4532-0151-1283-0366 on file"},
		{"spaced", "card 4532 0151 1283 0366 on file"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			matches := v.Detect(tc.text)
			if len(matches) != 1 {
				t.Fatalf("expected 1 match, got %d", len(matches))
			}
			m := matches[0]
			if m.Type != "VISA" {
				t.Errorf("expected VISA, got %q", m.Type)
			}
			if tc.text[m.Start:m.End] != m.Text {
				t.Errorf("offsets [%d,%d) do not address the matched text %q", m.Start, m.End, m.Text)
			}
		})
	}
}

func TestDetect_RejectsLuhnInvalid(t *testing.T) {
	v := NewValidator()
	matches := v.Detect("order number 1234567812345678 shipped")
	if len(matches) != 0 {
		t.Errorf("expected no matches for Luhn-invalid number, got %d", len(matches))
	}
}

func TestDetect_Idempotent(t *testing.T) {
	v := NewValidator()
	text := "4532015112830366 and 378282246310005"

	first := v.Detect(text)
	second := v.Detect(text)
	if len(first) != len(second) {
		t.Fatalf("repeated detection differs: %d vs %d matches", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("match %d differs between runs: %+v vs %+v", i, first[i], second[i])
		}
	}
}
