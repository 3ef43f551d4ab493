// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package date

import (
	"regexp"

	"inkblot/internal/detector"
)

// Validator detects calendar dates in the common numeric and written forms:
// 01/02/2006, 2006-01-02, Jan 2, 2006, 2 January 2006.
type Validator struct {
	patterns []string
	regexes  []*regexp.Regexp
}

// NewValidator creates and returns a new Validator instance.
func NewValidator() *Validator {
	v := &Validator{
		patterns: []string{
			`\b\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\b`,
			`\b\d{4}-\d{2}-\d{2}\b`,
			`\b(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\.?\s+\d{1,2}(?:st|nd|rd|th)?,?\s+\d{4}\b`,
			`\b\d{1,2}(?:st|nd|rd|th)?\s+(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\.?\s+\d{4}\b`,
		},
	}

	for _, p := range v.patterns {
		v.regexes = append(v.regexes, regexp.MustCompile(p))
	}
	return v
}

// Name returns the detection category this validator produces.
func (v *Validator) Name() string {
	return "DATE"
}

// Detect returns one detection per date occurrence. Spans matched by more
// than one pattern are reported once.
func (v *Validator) Detect(text string) []detector.Detection {
	type span struct{ start, end int }
	seen := make(map[span]bool)

	var matches []detector.Detection
	for _, re := range v.regexes {
		for _, loc := range re.FindAllStringIndex(text, -1) {
			s := span{loc[0], loc[1]}
			if seen[s] {
				continue
			}
			seen[s] = true
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
