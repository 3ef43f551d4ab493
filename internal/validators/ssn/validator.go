// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package ssn

import (
	"regexp"

	"inkblot/internal/detector"
)

// Validator detects US Social Security Numbers in the formatted
// (123-45-6789) and bare 9-digit forms.
//
// RE2 has no lookaround, so the candidate patterns match only the SSN shape
// and the boundary guards are checked on the bytes adjacent to each
// candidate. Guard characters are never consumed, so adjacent occurrences
// separated by a single character are all found.
type Validator struct {
	formattedPattern string
	barePattern      string

	formattedRegex *regexp.Regexp
	bareRegex      *regexp.Regexp
}

// NewValidator creates and returns a new Validator instance.
func NewValidator() *Validator {
	v := &Validator{
		formattedPattern: `\d{3}-\d{2}-\d{4}`,
		barePattern:      `\d{9}`,
	}

	v.formattedRegex = regexp.MustCompile(v.formattedPattern)
	v.bareRegex = regexp.MustCompile(v.barePattern)
	return v
}

// Name returns the detection category this validator produces.
func (v *Validator) Name() string {
	return "SSN"
}

// Detect returns one detection per SSN occurrence with character offsets.
// Candidates flanked by a digit are rejected, which keeps 9-digit runs
// inside longer numbers from matching; formatted candidates additionally
// reject a flanking dash so dash-joined sequences stay out.
func (v *Validator) Detect(text string) []detector.Detection {
	var matches []detector.Detection

	collect := func(re *regexp.Regexp, boundary func(byte) bool, normalize func(string) string) {
		for _, loc := range re.FindAllStringIndex(text, -1) {
			start, end := loc[0], loc[1]
			if start > 0 && !boundary(text[start-1]) {
				continue
			}
			if end < len(text) && !boundary(text[end]) {
				continue
			}
			candidate := text[start:end]
			if !isPlausibleSSN(normalize(candidate)) {
				continue
			}
			matches = append(matches, detector.Detection{
				Text:       candidate,
				Type:       v.Name(),
				Confidence: 1.0,
				Source:     detector.SourceRegex,
				Start:      start,
				End:        end,
			})
		}
	}

	identity := func(s string) string { return s }
	collect(v.formattedRegex, isFormattedBoundary, stripDashes)
	collect(v.bareRegex, isBareBoundary, identity)

	return matches
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func isBareBoundary(b byte) bool { return !isDigit(b) }

func isFormattedBoundary(b byte) bool { return !isDigit(b) && b != '-' }

func stripDashes(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '-' {
			out = append(out, s[i])
		}
	}
	return string(out)
}

// isPlausibleSSN rejects number groups the SSA never issues: area 000, 666 or
// 900-999, group 00, serial 0000.
func isPlausibleSSN(digits string) bool {
	if len(digits) != 9 {
		return false
	}
	area := digits[0:3]
	group := digits[3:5]
	serial := digits[5:9]

	if area == "000" || area == "666" || area[0] == '9' {
		return false
	}
	if group == "00" {
		return false
	}
	if serial == "0000" {
		return false
	}
	return true
}
