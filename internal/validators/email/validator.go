// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package email

import (
	"regexp"

	"inkblot/internal/detector"
)

// Validator detects email addresses using a simplified RFC 5322 pattern.
// The pattern deliberately avoids nested quantifiers so it cannot backtrack
// pathologically on large documents.
type Validator struct {
	pattern string
	regex   *regexp.Regexp
}

// NewValidator creates and returns a new Validator instance.
func NewValidator() *Validator {
	v := &Validator{
		pattern: `\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`,
	}

	// Compile the regex pattern once at initialization
	v.regex = regexp.MustCompile(v.pattern)
	return v
}

// Name returns the detection category this validator produces.
func (v *Validator) Name() string {
	return "EMAIL"
}

// Detect returns one detection per email occurrence in text, with character
// offsets into text. Deterministic matches carry confidence 1.0.
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
