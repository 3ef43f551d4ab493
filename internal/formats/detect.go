// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package formats

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Format identifiers returned by DetectFormat and used for registration.
const (
	FormatPDFText = "pdf-text"
	FormatPDFScan = "pdf-scan"
	FormatImage   = "image"
	FormatText    = "text"
	FormatCSV     = "csv"
	FormatUnknown = ""
)

// minTextLayerChars is the number of non-space characters the first pages
// must yield before a PDF counts as having a usable text layer.
const minTextLayerChars = 32

// textProbePages bounds the text-layer probe; a scan with a short cover page
// should not need the whole document read to classify.
const textProbePages = 3

// DetectFormat classifies raw bytes into a format id. It is a pure function
// of (name, data): extension first, then content sniffing, with the
// PDF text-layer probe deciding between the two PDF variants.
func DetectFormat(name string, data []byte) string {
	ext := strings.ToLower(filepath.Ext(name))

	switch ext {
	case ".pdf":
		if hasPDFMagic(data) {
			if hasTextLayer(data) {
				return FormatPDFText
			}
			return FormatPDFScan
		}
		return FormatUnknown
	case ".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tiff", ".tif", ".webp":
		return FormatImage
	case ".csv", ".tsv":
		return FormatCSV
	case ".txt", ".md", ".log":
		return FormatText
	}

	// No extension hint: sniff content.
	if hasPDFMagic(data) {
		if hasTextLayer(data) {
			return FormatPDFText
		}
		return FormatPDFScan
	}
	if hasImageMagic(data) {
		return FormatImage
	}
	if looksLikeText(data) {
		return FormatText
	}
	return FormatUnknown
}

func hasPDFMagic(data []byte) bool {
	return bytes.HasPrefix(data, []byte("%PDF-"))
}

func hasImageMagic(data []byte) bool {
	switch {
	case bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")):
		return true
	case bytes.HasPrefix(data, []byte("\xff\xd8\xff")):
		return true
	case bytes.HasPrefix(data, []byte("GIF87a")) || bytes.HasPrefix(data, []byte("GIF89a")):
		return true
	case bytes.HasPrefix(data, []byte("BM")):
		return true
	case bytes.HasPrefix(data, []byte("II*\x00")) || bytes.HasPrefix(data, []byte("MM\x00*")):
		return true
	default:
		return false
	}
}

// hasTextLayer probes the first pages for extractable text. The PDF reader
// can panic on malformed input, so the probe is isolated; a panic counts as
// no text layer.
func hasTextLayer(data []byte) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return false
	}

	pages := r.NumPage()
	if pages > textProbePages {
		pages = textProbePages
	}

	chars := 0
	for i := 1; i <= pages; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		for _, c := range text {
			if c != ' ' && c != '\n' && c != '\t' && c != '\r' {
				chars++
				if chars >= minTextLayerChars {
					return true
				}
			}
		}
	}

	return false
}

// looksLikeText applies the printable-ratio heuristic over the first 512
// bytes: no NUL bytes and at least 95% printable.
func looksLikeText(data []byte) bool {
	if len(data) == 0 {
		return false
	}

	probe := data
	if len(probe) > 512 {
		probe = probe[:512]
	}

	printable := 0
	for _, b := range probe {
		if b == 0 {
			return false
		}
		if (b >= 32 && b <= 126) || b == 9 || b == 10 || b == 13 {
			printable++
		}
	}

	return float64(printable)/float64(len(probe)) > 0.95
}
