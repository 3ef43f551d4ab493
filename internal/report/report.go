// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package report renders the end-of-run summary: what was found, what was
// redacted, what the sanitizer removed. Text output is for terminals, JSON
// for tooling.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"

	"inkblot/internal/detector"
	"inkblot/internal/sanitize"
)

// Summary is the result of one file's redaction run.
type Summary struct {
	File     string           `json:"file"`
	Format   string           `json:"format"`
	Output   string           `json:"output,omitempty"`
	Items    []ItemSummary    `json:"items"`
	Applied  int              `json:"applied"`
	Skipped  int              `json:"skipped"`
	Sanitize *sanitize.Report `json:"sanitize,omitempty"`
}

// ItemSummary is one redaction set entry.
type ItemSummary struct {
	Type       string  `json:"type"`
	Text       string  `json:"text"`
	Source     string  `json:"source"`
	Confidence float64 `json:"confidence"`
	Boxes      int     `json:"boxes"`
	Enabled    bool    `json:"enabled"`
}

// Build assembles a Summary from a session's redaction set.
func Build(file, format, output string, items []detector.RedactionItem, sanReport *sanitize.Report) *Summary {
	s := &Summary{
		File:     file,
		Format:   format,
		Output:   output,
		Sanitize: sanReport,
	}
	for _, item := range items {
		s.Items = append(s.Items, ItemSummary{
			Type:       item.Detection.Type,
			Text:       mask(item.Detection.Text),
			Source:     string(item.Detection.Source),
			Confidence: item.Detection.Confidence,
			Boxes:      len(item.Boxes),
			Enabled:    item.Enabled,
		})
		if item.Enabled {
			s.Applied++
		} else {
			s.Skipped++
		}
	}
	return s
}

// mask keeps the first and last rune of the matched text so the summary
// itself does not reproduce the value it reports redacting.
func mask(text string) string {
	runes := []rune(text)
	if len(runes) <= 2 {
		return "**"
	}
	out := make([]rune, len(runes))
	out[0] = runes[0]
	for i := 1; i < len(runes)-1; i++ {
		out[i] = '*'
	}
	out[len(runes)-1] = runes[len(runes)-1]
	return string(out)
}

// WriteJSON renders the summary as indented JSON.
func (s *Summary) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

// WriteText renders a human-readable summary.
func (s *Summary) WriteText(w io.Writer, noColor bool) {
	header := color.New(color.Bold)
	ok := color.New(color.FgGreen)
	warn := color.New(color.FgYellow)
	if noColor {
		header.DisableColor()
		ok.DisableColor()
		warn.DisableColor()
	}

	header.Fprintf(w, "%s (%s)\n", s.File, s.Format)

	byType := make(map[string]int)
	for _, item := range s.Items {
		if item.Enabled {
			byType[item.Type]++
		}
	}
	types := make([]string, 0, len(byType))
	for t := range byType {
		types = append(types, t)
	}
	sort.Strings(types)

	for _, t := range types {
		fmt.Fprintf(w, "  %-14s %d\n", t, byType[t])
	}
	ok.Fprintf(w, "  redacted: %d", s.Applied)
	if s.Skipped > 0 {
		warn.Fprintf(w, "  (skipped: %d)", s.Skipped)
	}
	fmt.Fprintln(w)

	if s.Sanitize != nil && s.Sanitize.Total() > 0 {
		fmt.Fprintf(w, "  sanitized: %d metadata items (info %d, xmp %d, annotations %d, forms %d, attachments %d, js %d)\n",
			s.Sanitize.Total(), s.Sanitize.InfoFields, s.Sanitize.XMPStreams, s.Sanitize.Annotations,
			s.Sanitize.FormFields, s.Sanitize.Attachments, s.Sanitize.JSActions)
	}
	if s.Output != "" {
		fmt.Fprintf(w, "  wrote %s\n", s.Output)
	}
}
