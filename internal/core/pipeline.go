// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package core orchestrates the redaction pipeline: format detection,
// loading, multi-source PII detection, box mapping, the user-adjustable
// redaction set, apply and export.
package core

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"inkblot/internal/boxmap"
	"inkblot/internal/detector"
	"inkblot/internal/formats"
	"inkblot/internal/merger"
	"inkblot/internal/ml"
	"inkblot/internal/observability"
	"inkblot/internal/validators"
)

// Options configures a Pipeline.
type Options struct {
	Observer      *observability.StandardObserver
	Formats       *formats.Registry
	Validators    *validators.Registry
	MLProvider    ml.Provider
	MinConfidence float64
	PaddingPx     float64
}

// Pipeline holds the shared detection machinery. It is safe for use across
// sessions; per-document state lives in Session.
type Pipeline struct {
	observer      *observability.StandardObserver
	formats       *formats.Registry
	validators    *validators.Registry
	mlProvider    ml.Provider
	minConfidence float64
	padding       float64
}

// NewPipeline wires a pipeline from its parts.
func NewPipeline(opts Options) *Pipeline {
	padding := opts.PaddingPx
	if padding <= 0 {
		padding = boxmap.DefaultPaddingPx
	}
	return &Pipeline{
		observer:      opts.Observer,
		formats:       opts.Formats,
		validators:    opts.Validators,
		mlProvider:    opts.MLProvider,
		minConfidence: opts.MinConfidence,
		padding:       padding,
	}
}

// Session is one open document and its redaction set.
type Session struct {
	pipeline *Pipeline

	FormatID string
	Adapter  formats.Adapter
	Doc      *formats.Document

	mu    sync.Mutex
	items []detector.RedactionItem

	// generation increments on every document mutation. Detection results
	// computed against an older generation are discarded instead of being
	// attached to a document they no longer describe.
	generation uint64
}

// Open detects the file's format, loads it and starts a session.
func (p *Pipeline) Open(ctx context.Context, name string, data []byte) (*Session, error) {
	complete := p.observer.StartTiming("core", "open", name)
	defer complete(true, nil)

	adapter, formatID, err := p.formats.ForFile(name, data)
	if err != nil {
		return nil, err
	}

	doc, err := adapter.Load(ctx, name, data)
	if err != nil {
		return nil, err
	}

	return &Session{
		pipeline: p,
		FormatID: formatID,
		Adapter:  adapter,
		Doc:      doc,
	}, nil
}

// Generation returns the session's current mutation generation.
func (s *Session) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// Items returns a copy of the current redaction set.
func (s *Session) Items() []detector.RedactionItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]detector.RedactionItem(nil), s.items...)
}

// SetEnabled toggles one redaction item.
func (s *Session) SetEnabled(index int, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.items) {
		return fmt.Errorf("redaction item %d out of range (%d items)", index, len(s.items))
	}
	s.items[index].Enabled = enabled
	return nil
}

// DetectPage runs the full detection chain over one page (or the whole
// document with formats.AllPages): text extraction, pattern and ML
// detection, confidence merging, box mapping. Results are appended to the
// redaction set unless the document mutated while detection ran, in which
// case they are discarded and errStale is returned.
func (s *Session) DetectPage(ctx context.Context, page int) error {
	startGen := s.Generation()

	complete := s.pipeline.observer.StartTiming("core", "detect", s.Doc.Metadata.FileName)
	defer complete(true, nil)

	extract, err := s.Adapter.ExtractText(ctx, s.Doc, page)
	if err != nil {
		return err
	}

	regexResults := s.pipeline.validators.DetectAll(extract.FullText)

	var mlResults []detector.Detection
	if s.pipeline.mlProvider != nil {
		mlResults, err = s.pipeline.mlProvider.Detect(ctx, extract.FullText, s.pipeline.minConfidence)
		if err != nil {
			// ML is an enrichment source; pattern results still stand.
			s.pipeline.observer.LogWarning("core", fmt.Sprintf("ML detection failed, continuing with pattern results: %v", err))
			mlResults = nil
		}
	}

	merged := merger.Merge(regexResults, mlResults)
	merged = filterConfidence(merged, s.pipeline.minConfidence)
	if len(merged) == 0 {
		return nil
	}

	terms := uniqueTexts(merged)
	boxes, err := s.Adapter.FindTextBoxes(s.Doc, terms, page)
	if err != nil {
		return err
	}
	boxes = attachDetections(boxes, merged)

	items := boxmap.BuildItems(merged, boxes)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != startGen {
		s.pipeline.observer.LogWarning("core", fmt.Sprintf(
			"discarding stale detection results for %s (generation %d != %d)",
			s.Doc.Metadata.FileName, startGen, s.generation))
		return ErrStaleResults
	}
	s.items = append(s.items, items...)
	return nil
}

// DetectAll runs detection page by page, current page first so the visible
// page's results land before the rest of the document is ground through.
func (s *Session) DetectAll(ctx context.Context, currentPage int) error {
	pages := s.Doc.Metadata.PageCount
	if pages <= 1 {
		return s.DetectPage(ctx, formats.AllPages)
	}

	order := make([]int, 0, pages)
	if currentPage >= 0 && currentPage < pages {
		order = append(order, currentPage)
	}
	for p := 0; p < pages; p++ {
		if p != currentPage {
			order = append(order, p)
		}
	}

	for _, p := range order {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.DetectPage(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// AddManualBoxes appends user-drawn regions as one manual redaction item.
func (s *Session) AddManualBoxes(boxes []detector.BoundingBox) error {
	for i := range boxes {
		if err := boxes[i].Validate(); err != nil {
			return err
		}
		boxes[i].Source = detector.SourceManual
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, detector.RedactionItem{
		Detection: detector.Detection{
			Type:       "MANUAL",
			Source:     detector.SourceManual,
			Confidence: 1.0,
		},
		Boxes:   boxes,
		Enabled: true,
	})
	return nil
}

// Apply redacts every enabled item's boxes and bumps the generation so any
// in-flight detection result is discarded rather than applied to the
// mutated document.
func (s *Session) Apply() error {
	s.mu.Lock()
	var boxes []detector.BoundingBox
	for _, item := range s.items {
		if item.Enabled {
			boxes = append(boxes, item.Boxes...)
		}
	}
	s.mu.Unlock()

	if len(boxes) == 0 {
		return fmt.Errorf("no enabled redactions to apply")
	}

	if err := s.Adapter.Redact(s.Doc, boxes); err != nil {
		return err
	}

	s.mu.Lock()
	s.generation++
	s.items = nil
	s.mu.Unlock()
	return nil
}

// Export serializes the redacted document.
func (s *Session) Export(ctx context.Context, opts formats.ExportOptions) ([]byte, error) {
	return s.Adapter.Export(ctx, s.Doc, opts)
}

// Close releases per-document resources.
func (s *Session) Close() {
	type docCleaner interface {
		CleanupDocument(doc *formats.Document)
	}
	if c, ok := s.Adapter.(docCleaner); ok {
		c.CleanupDocument(s.Doc)
	}
}

func filterConfidence(ds []detector.Detection, min float64) []detector.Detection {
	if min <= 0 {
		return ds
	}
	out := ds[:0]
	for _, d := range ds {
		if d.Confidence >= min {
			out = append(out, d)
		}
	}
	return out
}

func uniqueTexts(ds []detector.Detection) []string {
	seen := make(map[string]bool)
	var terms []string
	for _, d := range ds {
		key := strings.ToLower(d.Text)
		if !seen[key] {
			seen[key] = true
			terms = append(terms, d.Text)
		}
	}
	return terms
}

// attachDetections stamps each adapter box with the metadata of the
// detection whose text it matched. Boxes matching no detection are dropped;
// they can only come from a term the merger did not emit.
func attachDetections(boxes []detector.BoundingBox, detections []detector.Detection) []detector.BoundingBox {
	byText := make(map[string]int)
	for i, d := range detections {
		key := strings.ToLower(d.Text)
		if _, ok := byText[key]; !ok {
			byText[key] = i
		}
	}

	out := boxes[:0]
	for _, b := range boxes {
		i, ok := byText[strings.ToLower(b.Text)]
		if !ok {
			continue
		}
		d := detections[i]
		b.Type = d.Type
		b.Source = d.Source
		b.Confidence = d.Confidence
		b.DetectionID = i
		out = append(out, b)
	}
	return out
}
