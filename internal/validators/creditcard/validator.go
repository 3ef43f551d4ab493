// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package creditcard

import (
	"regexp"
	"strings"

	"inkblot/internal/detector"
)

// Validator detects payment card numbers. Candidates are extracted with a
// permissive 13-19 digit pattern allowing space and dash separators, then
// accepted only if the separator-stripped number passes the Luhn checksum.
type Validator struct {
	pattern string
	regex   *regexp.Regexp
}

// NewValidator creates and returns a new Validator instance.
func NewValidator() *Validator {
	v := &Validator{
		// 13-19 digits total, optional single space or dash between digits.
		pattern: `\b\d(?:[ -]?\d){12,18}\b`,
	}

	v.regex = regexp.MustCompile(v.pattern)
	return v
}

// Name returns the detection category this validator produces.
func (v *Validator) Name() string {
	return "CREDIT_CARD"
}

// Detect returns one detection per Luhn-valid card number occurrence.
func (v *Validator) Detect(text string) []detector.Detection {
	var matches []detector.Detection

	for _, loc := range v.regex.FindAllStringIndex(text, -1) {
		candidate := text[loc[0]:loc[1]]
		clean := Normalize(candidate)

		if len(clean) < 13 || len(clean) > 19 {
			continue
		}
		if !LuhnCheck(clean) {
			continue
		}

		matches = append(matches, detector.Detection{
			Text:       candidate,
			Type:       CardType(clean),
			Confidence: 1.0,
			Source:     detector.SourceRegex,
			Start:      loc[0],
			End:        loc[1],
		})
	}

	return matches
}

// Normalize strips space and dash separators from a card number candidate.
func Normalize(number string) string {
	return strings.ReplaceAll(strings.ReplaceAll(number, " ", ""), "-", "")
}

// LuhnCheck validates a card number with the mod-10 checksum: double every
// second digit from the right, subtract 9 when the result exceeds 9, and
// require the digit sum to be divisible by 10.
func LuhnCheck(number string) bool {
	if number == "" {
		return false
	}

	sum := 0
	isDouble := false

	for i := len(number) - 1; i >= 0; i-- {
		if number[i] < '0' || number[i] > '9' {
			return false
		}
		digit := int(number[i] - '0')

		if isDouble {
			digit *= 2
			if digit > 9 {
				digit -= 9
			}
		}

		sum += digit
		isDouble = !isDouble
	}

	return sum%10 == 0
}

// CardType identifies the card network from the leading digits. Numbers that
// match no known network still report the generic CREDIT_CARD type.
func CardType(cardNumber string) string {
	if len(cardNumber) < 1 {
		return "CREDIT_CARD"
	}

	switch cardNumber[0] {
	case '4':
		return "VISA"
	case '5':
		if len(cardNumber) >= 2 && cardNumber[1] >= '1' && cardNumber[1] <= '5' {
			return "MASTERCARD"
		}
		return "MAESTRO"
	case '3':
		if len(cardNumber) >= 2 {
			switch cardNumber[1] {
			case '4', '7':
				return "AMERICAN_EXPRESS"
			case '5':
				return "JCB"
			case '0', '6', '8':
				return "DINERS_CLUB"
			}
		}
		return "CREDIT_CARD"
	case '6':
		if len(cardNumber) >= 2 && cardNumber[1] == '2' {
			return "UNIONPAY"
		}
		return "DISCOVER"
	case '2':
		if len(cardNumber) >= 6 && cardNumber[:6] >= "222100" && cardNumber[:6] <= "272099" {
			return "MASTERCARD"
		}
		return "CREDIT_CARD"
	default:
		return "CREDIT_CARD"
	}
}
