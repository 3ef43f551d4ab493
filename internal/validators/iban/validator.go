// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package iban

import (
	"regexp"
	"strings"

	"inkblot/internal/detector"
)

// Validator detects International Bank Account Numbers. Candidates matching
// the country-code + check-digit shape are accepted only when the ISO 13616
// mod-97 checksum holds, which keeps arbitrary uppercase/digit runs out of
// the results.
type Validator struct {
	pattern string
	regex   *regexp.Regexp
}

// NewValidator creates and returns a new Validator instance.
func NewValidator() *Validator {
	v := &Validator{
		pattern: `\b[A-Z]{2}\d{2}(?:\s?[A-Z0-9]{4}){2,7}(?:\s?[A-Z0-9]{1,4})?\b`,
	}

	v.regex = regexp.MustCompile(v.pattern)
	return v
}

// Name returns the detection category this validator produces.
func (v *Validator) Name() string {
	return "IBAN"
}

// Detect returns one detection per checksum-valid IBAN occurrence.
func (v *Validator) Detect(text string) []detector.Detection {
	var matches []detector.Detection

	for _, loc := range v.regex.FindAllStringIndex(text, -1) {
		candidate := text[loc[0]:loc[1]]
		if !ValidateChecksum(strings.ReplaceAll(candidate, " ", "")) {
			continue
		}
		matches = append(matches, detector.Detection{
			Text:       candidate,
			Type:       v.Name(),
			Confidence: 1.0,
			Source:     detector.SourceRegex,
			Start:      loc[0],
			End:        loc[1],
		})
	}

	return matches
}

// ValidateChecksum implements the ISO 13616 mod-97 test: move the first four
// characters to the end, expand letters to two-digit values (A=10..Z=35) and
// require the resulting integer mod 97 to equal 1.
func ValidateChecksum(iban string) bool {
	if len(iban) < 15 || len(iban) > 34 {
		return false
	}

	rearranged := iban[4:] + iban[:4]

	// Compute mod 97 incrementally to avoid big-integer arithmetic.
	remainder := 0
	for i := 0; i < len(rearranged); i++ {
		c := rearranged[i]
		switch {
		case c >= '0' && c <= '9':
			remainder = (remainder*10 + int(c-'0')) % 97
		case c >= 'A' && c <= 'Z':
			n := int(c-'A') + 10
			remainder = (remainder*100 + n) % 97
		default:
			return false
		}
	}

	return remainder == 1
}
