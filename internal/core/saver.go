// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileSaver persists an exported document. The export path never touches
// the original file; savers write a sibling artifact.
type FileSaver interface {
	Save(name string, data []byte) (string, error)
}

// DiskSaver writes exports under a directory, suffixing the base name so
// the original is never overwritten.
type DiskSaver struct {
	Dir    string
	Suffix string
}

// Save writes data to <dir>/<base><suffix><ext> and returns the path.
func (s *DiskSaver) Save(name string, data []byte) (string, error) {
	dir := s.Dir
	if dir == "" {
		dir = "."
	}
	suffix := s.Suffix
	if suffix == "" {
		suffix = "_redacted"
	}

	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	base := filepath.Base(name)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	outPath := filepath.Join(dir, stem+suffix+ext)

	if err := os.WriteFile(outPath, data, 0600); err != nil {
		return "", fmt.Errorf("failed to write output file: %w", err)
	}
	return outPath, nil
}
