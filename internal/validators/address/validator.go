// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package address

import (
	"regexp"

	"inkblot/internal/detector"
)

// Validator detects US-style street addresses and standalone ZIP+4 codes.
type Validator struct {
	streetPattern string
	zipPattern    string

	streetRegex *regexp.Regexp
	zipRegex    *regexp.Regexp
}

// NewValidator creates and returns a new Validator instance.
func NewValidator() *Validator {
	v := &Validator{
		streetPattern: `\b\d{1,6}\s+[A-Z][A-Za-z]*(?:\s+[A-Z][A-Za-z]*){0,3}\s+` +
			`(?:Street|St|Avenue|Ave|Boulevard|Blvd|Drive|Dr|Lane|Ln|Road|Rd|Court|Ct|Circle|Cir|Way|Place|Pl|Terrace|Ter)\.?\b`,
		zipPattern: `\b\d{5}-\d{4}\b`,
	}

	v.streetRegex = regexp.MustCompile(v.streetPattern)
	v.zipRegex = regexp.MustCompile(v.zipPattern)
	return v
}

// Name returns the detection category this validator produces.
func (v *Validator) Name() string {
	return "ADDRESS"
}

// Detect returns one detection per address occurrence.
func (v *Validator) Detect(text string) []detector.Detection {
	var matches []detector.Detection

	for _, re := range []*regexp.Regexp{v.streetRegex, v.zipRegex} {
		for _, loc := range re.FindAllStringIndex(text, -1) {
			matches = append(matches, detector.Detection{
				Text:       text[loc[0]:loc[1]],
				Type:       v.Name(),
				Confidence: 1.0,
				Source:     detector.SourceRegex,
				Start:      loc[0],
				End:        loc[1],
			})
		}
	}

	return matches
}
