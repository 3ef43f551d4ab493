// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package phone

import (
	"regexp"
	"sort"

	"inkblot/internal/detector"
)

// Validator detects phone numbers with two complementary patterns: a loose
// US-style pattern that tolerates common separator conventions, and a strict
// E.164 pattern for international numbers.
type Validator struct {
	loosePattern string
	e164Pattern  string

	looseRegex *regexp.Regexp
	e164Regex  *regexp.Regexp
}

// minE164Digits suppresses short false positives like "+1234".
const minE164Digits = 10

// NewValidator creates and returns a new Validator instance.
func NewValidator() *Validator {
	v := &Validator{
		// Optional +1 country code, area code with or without parentheses,
		// separator characters between groups. A parenthesized area code
		// already delimits itself, so the separator after it is optional.
		loosePattern: `(?:\+?1[\s.-]?)?(?:\(\d{3}\)[\s.-]?|\d{3}[\s.-])\d{3}[\s.-]?\d{4}\b`,
		e164Pattern:  `\+\d{7,15}\b`,
	}

	v.looseRegex = regexp.MustCompile(v.loosePattern)
	v.e164Regex = regexp.MustCompile(v.e164Pattern)
	return v
}

// Name returns the detection category this validator produces.
func (v *Validator) Name() string {
	return "PHONE"
}

// Detect returns one detection per phone number occurrence. Both patterns run
// over the full text; overlapping spans from the two patterns are deduplicated
// with the earlier, longer span winning.
func (v *Validator) Detect(text string) []detector.Detection {
	type span struct{ start, end int }
	seen := make(map[span]bool)

	var matches []detector.Detection
	add := func(start, end int) {
		s := span{start, end}
		if seen[s] {
			return
		}
		seen[s] = true
		matches = append(matches, detector.Detection{
			Text:       text[start:end],
			Type:       v.Name(),
			Confidence: 1.0,
			Source:     detector.SourceRegex,
			Start:      start,
			End:        end,
		})
	}

	for _, loc := range v.looseRegex.FindAllStringIndex(text, -1) {
		add(loc[0], loc[1])
	}

	for _, loc := range v.e164Regex.FindAllStringIndex(text, -1) {
		if digitCount(text[loc[0]:loc[1]]) < minE164Digits {
			continue
		}
		// Skip E.164 candidates already covered by a loose match.
		covered := false
		for s := range seen {
			if loc[0] < s.end && s.start < loc[1] {
				covered = true
				break
			}
		}
		if !covered {
			add(loc[0], loc[1])
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Start != matches[j].Start {
			return matches[i].Start < matches[j].Start
		}
		return matches[i].End > matches[j].End
	})

	return matches
}

func digitCount(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}
