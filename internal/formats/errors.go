// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package formats

import "fmt"

// LoadError reports a file that cannot be parsed as its claimed type.
type LoadError struct {
	Format string
	Name   string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("cannot load %s as %s: %v", e.Name, e.Format, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// UnsupportedFormatError reports that no adapter is registered for the
// detected format.
type UnsupportedFormatError struct {
	Detected string
}

func (e *UnsupportedFormatError) Error() string {
	detected := e.Detected
	if detected == "" {
		detected = "unknown"
	}
	return fmt.Sprintf("no format adapter registered for %q", detected)
}

// ExportError reports a failed serialization. Callers keep the pre-export
// document state so the user can retry.
type ExportError struct {
	Format string
	Err    error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export of %s document failed: %v", e.Format, e.Err)
}

func (e *ExportError) Unwrap() error { return e.Err }
