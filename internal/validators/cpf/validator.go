// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package cpf

import (
	"regexp"

	"inkblot/internal/detector"
)

// Validator detects Brazilian CPF numbers (###.###.###-##), accepting a
// candidate only when both check digits verify.
type Validator struct {
	pattern string
	regex   *regexp.Regexp
}

// NewValidator creates and returns a new Validator instance.
func NewValidator() *Validator {
	v := &Validator{
		pattern: `\b\d{3}\.\d{3}\.\d{3}-\d{2}\b`,
	}

	v.regex = regexp.MustCompile(v.pattern)
	return v
}

// Name returns the detection category this validator produces.
func (v *Validator) Name() string {
	return "CPF"
}

// Detect returns one detection per check-digit-valid CPF occurrence.
func (v *Validator) Detect(text string) []detector.Detection {
	var matches []detector.Detection

	for _, loc := range v.regex.FindAllStringIndex(text, -1) {
		candidate := text[loc[0]:loc[1]]
		if !ValidateCheckDigits(digitsOf(candidate)) {
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

func digitsOf(s string) string {
	out := make([]byte, 0, 11)
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			out = append(out, s[i])
		}
	}
	return string(out)
}

// ValidateCheckDigits verifies the two CPF verification digits. All-identical
// digit sequences pass the arithmetic but are never issued, so they are
// rejected up front.
func ValidateCheckDigits(digits string) bool {
	if len(digits) != 11 {
		return false
	}

	allSame := true
	for i := 1; i < 11; i++ {
		if digits[i] != digits[0] {
			allSame = false
			break
		}
	}
	if allSame {
		return false
	}

	if checkDigit(digits, 9) != int(digits[9]-'0') {
		return false
	}
	return checkDigit(digits, 10) == int(digits[10]-'0')
}

// checkDigit computes the CPF verification digit over the first n digits
// using descending weights n+1..2.
func checkDigit(digits string, n int) int {
	sum := 0
	for i := 0; i < n; i++ {
		sum += int(digits[i]-'0') * (n + 1 - i)
	}
	rest := (sum * 10) % 11
	if rest == 10 {
		return 0
	}
	return rest
}
