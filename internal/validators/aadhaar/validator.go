// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package aadhaar

import (
	"regexp"

	"inkblot/internal/detector"
)

// Validator detects Indian Aadhaar numbers: 12 digits in groups of four,
// first digit 2-9 (0 and 1 are never issued as leading digits).
type Validator struct {
	pattern string
	regex   *regexp.Regexp
}

// NewValidator creates and returns a new Validator instance.
func NewValidator() *Validator {
	v := &Validator{
		pattern: `\b[2-9]\d{3}[\s-]?\d{4}[\s-]?\d{4}\b`,
	}

	v.regex = regexp.MustCompile(v.pattern)
	return v
}

// Name returns the detection category this validator produces.
func (v *Validator) Name() string {
	return "AADHAAR"
}

// Detect returns one detection per Aadhaar occurrence.
func (v *Validator) Detect(text string) []detector.Detection {
	var matches []detector.Detection

	for _, loc := range v.regex.FindAllStringIndex(text, -1) {
		matches = append(matches, detector.Detection{
			Text:       text[loc[0]:loc[1]],
			Type:       v.Name(),
			Confidence: 1.0,
			Source:     detector.SourceRegex,
			Start:      loc[0],
			End:        loc[1],
		})
	}

	return matches
}
