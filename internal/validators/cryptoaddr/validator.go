// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package cryptoaddr

import (
	"regexp"

	"inkblot/internal/detector"
)

// Validator detects cryptocurrency addresses: Bitcoin legacy base58,
// Bitcoin bech32 and Ethereum hex formats.
type Validator struct {
	patterns map[string]string
	regexes  map[string]*regexp.Regexp
}

// NewValidator creates and returns a new Validator instance.
func NewValidator() *Validator {
	v := &Validator{
		patterns: map[string]string{
			"BTC_ADDRESS": `\b[13][a-km-zA-HJ-NP-Z1-9]{25,34}\b|\bbc1[a-z0-9]{25,62}\b`,
			"ETH_ADDRESS": `\b0x[a-fA-F0-9]{40}\b`,
		},
	}

	v.regexes = make(map[string]*regexp.Regexp, len(v.patterns))
	for name, p := range v.patterns {
		v.regexes[name] = regexp.MustCompile(p)
	}
	return v
}

// Name returns the detection category this validator produces.
func (v *Validator) Name() string {
	return "CRYPTO_ADDRESS"
}

// Detect returns one detection per address occurrence. The Type field carries
// the specific chain (BTC_ADDRESS, ETH_ADDRESS).
func (v *Validator) Detect(text string) []detector.Detection {
	var matches []detector.Detection

	for _, name := range []string{"BTC_ADDRESS", "ETH_ADDRESS"} {
		for _, loc := range v.regexes[name].FindAllStringIndex(text, -1) {
			matches = append(matches, detector.Detection{
				Text:       text[loc[0]:loc[1]],
				Type:       name,
				Confidence: 1.0,
				Source:     detector.SourceRegex,
				Start:      loc[0],
				End:        loc[1],
			})
		}
	}

	return matches
}
