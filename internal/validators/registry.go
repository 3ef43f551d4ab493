// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package validators

import (
	"fmt"
	"sort"

	"inkblot/internal/detector"
	"inkblot/internal/observability"
	"inkblot/internal/validators/aadhaar"
	"inkblot/internal/validators/address"
	"inkblot/internal/validators/cpf"
	"inkblot/internal/validators/creditcard"
	"inkblot/internal/validators/cryptoaddr"
	"inkblot/internal/validators/date"
	"inkblot/internal/validators/email"
	"inkblot/internal/validators/iban"
	"inkblot/internal/validators/phone"
	"inkblot/internal/validators/ssn"
	"inkblot/internal/validators/swift"
)

// PatternValidator is the contract every category detector satisfies: a pure
// function from text to detections, plus a category name for registration.
type PatternValidator interface {
	Name() string
	Detect(text string) []detector.Detection
}

// Registry holds the enabled pattern validators. It is constructed explicitly
// and passed by reference so tests never share hidden global state.
type Registry struct {
	validators []PatternValidator
	observer   *observability.StandardObserver
}

// NewRegistry creates an empty registry.
func NewRegistry(observer *observability.StandardObserver) *Registry {
	return &Registry{observer: observer}
}

// NewDefaultRegistry creates a registry with every built-in category whose
// name appears in enabled. A nil or empty map enables all categories. An
// enabled key matching no built-in category is reported through the
// observer, so a misspelled check name cannot silently disable detection.
func NewDefaultRegistry(enabled map[string]bool, observer *observability.StandardObserver) *Registry {
	r := NewRegistry(observer)

	all := []PatternValidator{
		email.NewValidator(),
		phone.NewValidator(),
		ssn.NewValidator(),
		creditcard.NewValidator(),
		date.NewValidator(),
		address.NewValidator(),
		iban.NewValidator(),
		cpf.NewValidator(),
		aadhaar.NewValidator(),
		swift.NewValidator(),
		cryptoaddr.NewValidator(),
	}

	known := make(map[string]bool, len(all))
	for _, v := range all {
		known[v.Name()] = true
		if len(enabled) == 0 || enabled[v.Name()] {
			r.Register(v)
		}
	}

	for name := range enabled {
		if !known[name] {
			observer.LogWarning("pattern_registry",
				fmt.Sprintf("check %q matches no built-in category and was ignored", name))
		}
	}

	return r
}

// Register appends a validator. New categories are additive; existing ones
// are never touched.
func (r *Registry) Register(v PatternValidator) {
	r.validators = append(r.validators, v)
}

// Categories returns the registered category names in sorted order.
func (r *Registry) Categories() []string {
	names := make([]string, 0, len(r.validators))
	for _, v := range r.validators {
		names = append(names, v.Name())
	}
	sort.Strings(names)
	return names
}

// DetectAll runs every registered validator over text and concatenates the
// results. A panicking category is isolated: its results are skipped with a
// logged warning so one bad pattern cannot blank out the other categories.
func (r *Registry) DetectAll(text string) []detector.Detection {
	var all []detector.Detection

	for _, v := range r.validators {
		results := r.detectOne(v, text)
		all = append(all, results...)
	}

	return all
}

func (r *Registry) detectOne(v PatternValidator, text string) (results []detector.Detection) {
	defer func() {
		if rec := recover(); rec != nil {
			r.observer.LogWarning("pattern_registry",
				fmt.Sprintf("validator %s panicked and was skipped: %v", v.Name(), rec))
			results = nil
		}
	}()

	return v.Detect(text)
}
