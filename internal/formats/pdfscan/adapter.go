// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package pdfscan implements the formats.Adapter contract for scanned PDFs:
// pages that are raster images with no usable text layer. Each page is
// rasterized and OCR'd one at a time, boxes live in that page's pixel
// space, and export reassembles the filled page images into a fresh
// image-only PDF.
package pdfscan

import (
	"context"
	"fmt"
	"image"
	"os"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"inkblot/internal/boxmap"
	"inkblot/internal/detector"
	"inkblot/internal/flatten"
	"inkblot/internal/formats"
	"inkblot/internal/geometry"
	"inkblot/internal/observability"
	"inkblot/internal/ocr"
	"inkblot/internal/render"
	"inkblot/internal/sanitize"
)

// DefaultScale matches the text-layer adapter's render scale.
const DefaultScale = 2.0

// Adapter handles scanned PDFs. OCR runs lazily per page, so opening a
// large scan costs one page of work, not the whole document.
type Adapter struct {
	observer   *observability.StandardObserver
	renderer   render.Renderer
	ocrFactory ocr.Factory
	scale      float64
	padding    float64
}

// NewAdapter creates a scanned PDF adapter. A nil renderer defaults to
// pdfcpu page-image extraction, which is exact for scan output.
func NewAdapter(observer *observability.StandardObserver, renderer render.Renderer, ocrFactory ocr.Factory, scale, padding float64) *Adapter {
	if renderer == nil {
		renderer = &render.ImageExtractRenderer{}
	}
	if scale <= 0 {
		scale = DefaultScale
	}
	if padding <= 0 {
		padding = boxmap.DefaultPaddingPx
	}
	return &Adapter{
		observer:   observer,
		renderer:   renderer,
		ocrFactory: ocrFactory,
		scale:      scale,
		padding:    padding,
	}
}

func (a *Adapter) Name() string { return formats.FormatPDFScan }

func (a *Adapter) Extensions() []string { return []string{".pdf"} }

type scanContent struct {
	tempPath  string
	pageCount int

	// Per-page state, keyed by 0-based page, filled lazily.
	images  map[int]image.Image
	indexes map[int]*boxmap.WordIndex
}

// Load validates the PDF and stages it for page extraction. No page is
// rendered or OCR'd yet.
func (a *Adapter) Load(ctx context.Context, name string, data []byte) (*formats.Document, error) {
	complete := a.observer.StartTiming("pdfscan", "load", name)
	defer complete(true, nil)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.CreateTemp("", "inkblot-scan-*.pdf")
	if err != nil {
		return nil, &formats.LoadError{Format: formats.FormatPDFScan, Name: name, Err: err}
	}
	tempPath := f.Name()
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tempPath)
		return nil, &formats.LoadError{Format: formats.FormatPDFScan, Name: name, Err: err}
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tempPath)
		return nil, &formats.LoadError{Format: formats.FormatPDFScan, Name: name, Err: err}
	}

	if err := api.ValidateFile(tempPath, nil); err != nil {
		_ = os.Remove(tempPath)
		return nil, &formats.LoadError{Format: formats.FormatPDFScan, Name: name, Err: fmt.Errorf("structure validation failed: %w", err)}
	}

	pageCount, err := api.PageCountFile(tempPath)
	if err != nil {
		_ = os.Remove(tempPath)
		return nil, &formats.LoadError{Format: formats.FormatPDFScan, Name: name, Err: fmt.Errorf("failed to count pages: %w", err)}
	}

	return &formats.Document{
		Metadata: formats.Metadata{
			FileName:  name,
			Size:      int64(len(data)),
			MimeType:  "application/pdf",
			PageCount: pageCount,
		},
		Content: &scanContent{
			tempPath:  tempPath,
			pageCount: pageCount,
			images:    make(map[int]image.Image),
			indexes:   make(map[int]*boxmap.WordIndex),
		},
	}, nil
}

// ExtractText OCRs the selected page, or every page in order for AllPages.
// Each page gets its own provider instance, created and torn down inside
// the call.
func (a *Adapter) ExtractText(ctx context.Context, doc *formats.Document, page int) (*formats.TextExtract, error) {
	content, err := contentOf(doc)
	if err != nil {
		return nil, err
	}

	first, last := page, page
	if page == formats.AllPages {
		first, last = 0, content.pageCount-1
	}

	extract := &formats.TextExtract{PageText: make(map[int]string)}
	var b strings.Builder
	for p := first; p <= last; p++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		idx, err := a.pageIndex(ctx, doc, content, p)
		if err != nil {
			return nil, err
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(idx.Text())
		extract.PageText[p] = idx.Text()
	}
	extract.FullText = b.String()
	return extract, nil
}

func (a *Adapter) pageImage(doc *formats.Document, content *scanContent, pageIdx int) (image.Image, error) {
	if img, ok := content.images[pageIdx]; ok {
		return img, nil
	}
	if pageIdx < 0 || pageIdx >= content.pageCount {
		return nil, fmt.Errorf("page %d out of range (%d pages)", pageIdx, content.pageCount)
	}

	img, _, err := a.renderer.RenderPage(content.tempPath, pageIdx, a.scale)
	if err != nil {
		return nil, fmt.Errorf("page %d render failed: %w", pageIdx+1, err)
	}
	content.images[pageIdx] = img
	return img, nil
}

func (a *Adapter) pageIndex(ctx context.Context, doc *formats.Document, content *scanContent, pageIdx int) (*boxmap.WordIndex, error) {
	if idx, ok := content.indexes[pageIdx]; ok {
		return idx, nil
	}
	if a.ocrFactory == nil {
		return nil, fmt.Errorf("no OCR engine configured for scanned PDF text extraction")
	}

	img, err := a.pageImage(doc, content, pageIdx)
	if err != nil {
		return nil, err
	}

	complete := a.observer.StartTiming("pdfscan", "ocr", fmt.Sprintf("%s#%d", doc.Metadata.FileName, pageIdx+1))
	defer complete(true, nil)

	provider, err := a.ocrFactory()
	if err != nil {
		return nil, fmt.Errorf("failed to start OCR engine: %w", err)
	}
	defer func() { _ = provider.Close() }()

	result, err := provider.Recognize(ctx, img)
	if err != nil {
		return nil, fmt.Errorf("page %d recognition failed: %w", pageIdx+1, err)
	}

	idx := boxmap.NewWordIndex(result.Words)
	content.indexes[pageIdx] = idx
	return idx, nil
}

// FindTextBoxes searches the OCR text of already-extracted pages and maps
// occurrences to padded word-union boxes in the page's pixel space.
func (a *Adapter) FindTextBoxes(doc *formats.Document, terms []string, page int) ([]detector.BoundingBox, error) {
	content, err := contentOf(doc)
	if err != nil {
		return nil, err
	}

	var boxes []detector.BoundingBox
	for p := 0; p < content.pageCount; p++ {
		if page != formats.AllPages && page != p {
			continue
		}
		idx, ok := content.indexes[p]
		if !ok {
			continue
		}

		text := idx.Text()
		lower := strings.ToLower(text)
		for _, term := range terms {
			if term == "" {
				continue
			}
			needle := strings.ToLower(term)
			for from := 0; ; {
				rel := strings.Index(lower[from:], needle)
				if rel < 0 {
					break
				}
				start := from + rel
				end := start + len(needle)
				if box, ok := idx.BoxesFor(start, end, a.padding); ok {
					box.Text = text[start:end]
					box.Page = p
					box.Source = detector.SourceManual
					boxes = append(boxes, box)
				}
				from = end
			}
		}
	}
	return boxes, nil
}

// Redact draws opaque fills on the affected page images.
func (a *Adapter) Redact(doc *formats.Document, boxes []detector.BoundingBox) error {
	content, err := contentOf(doc)
	if err != nil {
		return err
	}

	byPage := make(map[int][]detector.BoundingBox)
	for _, b := range boxes {
		byPage[b.Page] = append(byPage[b.Page], b)
	}

	for p, pageBoxes := range byPage {
		img, err := a.pageImage(doc, content, p)
		if err != nil {
			return err
		}
		filled, err := flatten.FillRects(img, geometry.MergeOverlapping(pageBoxes))
		if err != nil {
			return err
		}
		content.images[p] = filled
	}

	doc.Boxes = append(doc.Boxes, boxes...)
	doc.Modified = true
	return nil
}

// Export assembles the page images (rendering any page never touched by a
// redaction) into an image-only PDF and sanitizes its metadata.
func (a *Adapter) Export(ctx context.Context, doc *formats.Document, opts formats.ExportOptions) ([]byte, error) {
	content, err := contentOf(doc)
	if err != nil {
		return nil, err
	}

	complete := a.observer.StartTiming("pdfscan", "export", doc.Metadata.FileName)
	defer complete(true, nil)

	pages := make([][]byte, 0, content.pageCount)
	for p := 0; p < content.pageCount; p++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		img, err := a.pageImage(doc, content, p)
		if err != nil {
			return nil, &formats.ExportError{Format: formats.FormatPDFScan, Err: err}
		}
		png, err := flatten.EncodePNG(img)
		if err != nil {
			return nil, &formats.ExportError{Format: formats.FormatPDFScan, Err: err}
		}
		pages = append(pages, png)
	}

	assembled, err := flatten.BuildImagePDF(pages)
	if err != nil {
		return nil, &formats.ExportError{Format: formats.FormatPDFScan, Err: err}
	}

	sanOpts := sanitize.All()
	if opts.Sanitize != nil {
		sanOpts = *opts.Sanitize
	}
	out, report, err := sanitize.Sanitize(assembled, sanOpts)
	if err != nil {
		return nil, &formats.ExportError{Format: formats.FormatPDFScan, Err: err}
	}

	doc.SanitizeReport = report
	return out, nil
}

func (a *Adapter) Cleanup() {}

// CleanupDocument removes the staged temp file and drops cached pages.
func (a *Adapter) CleanupDocument(doc *formats.Document) {
	if content, err := contentOf(doc); err == nil {
		if content.tempPath != "" {
			_ = os.Remove(content.tempPath)
			content.tempPath = ""
		}
		content.images = make(map[int]image.Image)
		content.indexes = make(map[int]*boxmap.WordIndex)
	}
}

func contentOf(doc *formats.Document) (*scanContent, error) {
	content, ok := doc.Content.(*scanContent)
	if !ok {
		return nil, fmt.Errorf("document was not loaded by the pdfscan adapter")
	}
	return content, nil
}
