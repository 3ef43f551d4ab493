// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package pdftext implements the formats.Adapter contract for PDFs with a
// native text layer. Text and per-run geometry come from the text layer in
// PDF point space; boxes are converted to canvas pixel space for the
// redaction set, and export flattens every page to a raster image so no
// text operators survive under the fills.
package pdftext

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"inkblot/internal/detector"
	"inkblot/internal/flatten"
	"inkblot/internal/formats"
	"inkblot/internal/geometry"
	"inkblot/internal/observability"
	"inkblot/internal/render"
	"inkblot/internal/sanitize"
)

// DefaultScale is the render scale (pixels per point) boxes are expressed
// at when no configuration overrides it.
const DefaultScale = 2.0

// Adapter handles text-layer PDFs. The renderer rasterizes pages at export
// time; without one, loading, extraction and box mapping still work but
// Export fails, since a flattened export needs page images.
type Adapter struct {
	observer *observability.StandardObserver
	renderer render.Renderer
	scale    float64
}

// NewAdapter creates a text-layer PDF adapter.
func NewAdapter(observer *observability.StandardObserver, renderer render.Renderer, scale float64) *Adapter {
	if scale <= 0 {
		scale = DefaultScale
	}
	return &Adapter{observer: observer, renderer: renderer, scale: scale}
}

func (a *Adapter) Name() string { return formats.FormatPDFText }

func (a *Adapter) Extensions() []string { return []string{".pdf"} }

type pdfContent struct {
	raw      []byte
	tempPath string
	reader   *pdf.Reader
	dims     []types.Dim
	formText []string

	pages map[int]*pageExtract
}

// pageExtract caches one page's text and its runs. Run boxes are kept in
// PDF point space and converted to pixels only when handed out.
type pageExtract struct {
	text string
	runs []formats.TextRun
}

// Load validates the PDF structure, opens the text layer and reads per-page
// dimensions. The raw bytes are also staged to a temp file because the
// validator and the renderer operate on paths.
func (a *Adapter) Load(ctx context.Context, name string, data []byte) (*formats.Document, error) {
	complete := a.observer.StartTiming("pdftext", "load", name)
	defer complete(true, nil)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tempPath, err := stageTempFile(data)
	if err != nil {
		return nil, &formats.LoadError{Format: formats.FormatPDFText, Name: name, Err: err}
	}

	if err := api.ValidateFile(tempPath, nil); err != nil {
		_ = os.Remove(tempPath)
		return nil, &formats.LoadError{Format: formats.FormatPDFText, Name: name, Err: fmt.Errorf("structure validation failed: %w", err)}
	}

	dims, err := api.PageDimsFile(tempPath)
	if err != nil {
		_ = os.Remove(tempPath)
		return nil, &formats.LoadError{Format: formats.FormatPDFText, Name: name, Err: fmt.Errorf("failed to read page dimensions: %w", err)}
	}

	reader, err := openTextLayer(data)
	if err != nil {
		_ = os.Remove(tempPath)
		return nil, &formats.LoadError{Format: formats.FormatPDFText, Name: name, Err: err}
	}

	return &formats.Document{
		Metadata: formats.Metadata{
			FileName:  name,
			Size:      int64(len(data)),
			MimeType:  "application/pdf",
			PageCount: reader.NumPage(),
		},
		Content: &pdfContent{
			raw:      data,
			tempPath: tempPath,
			reader:   reader,
			dims:     dims,
			formText: formFieldValues(data),
			pages:    make(map[int]*pageExtract),
		},
	}, nil
}

func stageTempFile(data []byte) (string, error) {
	f, err := os.CreateTemp("", "inkblot-pdf-*.pdf")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("failed to stage temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

// openTextLayer opens the text-layer reader. The parser panics on some
// malformed files, so the call is isolated.
func openTextLayer(data []byte) (reader *pdf.Reader, err error) {
	defer func() {
		if r := recover(); r != nil {
			reader = nil
			err = fmt.Errorf("text layer parse failed: %v", r)
		}
	}()
	return pdf.NewReader(bytes.NewReader(data), int64(len(data)))
}

// ExtractText returns the text layer of one page, or of all pages joined by
// newlines when page is AllPages. Run offsets index into FullText.
func (a *Adapter) ExtractText(ctx context.Context, doc *formats.Document, page int) (*formats.TextExtract, error) {
	content, err := contentOf(doc)
	if err != nil {
		return nil, err
	}

	complete := a.observer.StartTiming("pdftext", "extract_text", doc.Metadata.FileName)
	defer complete(true, nil)

	first, last := pageRange(page, content.reader.NumPage())

	extract := &formats.TextExtract{PageText: make(map[int]string)}
	var b strings.Builder
	for p := first; p <= last; p++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pe, err := a.extractPage(content, p)
		if err != nil {
			return nil, err
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		base := b.Len()
		b.WriteString(pe.text)
		extract.PageText[p] = pe.text
		for _, run := range pe.runs {
			run.Offset += base
			extract.Runs = append(extract.Runs, run)
		}
	}
	// Form field values carry PII outside the content streams. They join the
	// first page's extraction so detection sees them exactly once; they have
	// no run geometry, so matches surface as items without boxes and the
	// fields themselves are removed by the export sanitizer.
	if first == 0 && len(content.formText) > 0 {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(strings.Join(content.formText, "\n"))
	}
	extract.FullText = b.String()
	return extract, nil
}

func pageRange(page, numPages int) (first, last int) {
	if page == formats.AllPages {
		return 0, numPages - 1
	}
	return page, page
}

// extractPage reads one 0-based page's rows and builds text plus runs. Rows
// come out top to bottom; chunks within a row are joined left to right, with
// a space inserted across gaps wider than a point.
func (a *Adapter) extractPage(content *pdfContent, pageIdx int) (pe *pageExtract, err error) {
	if cached, ok := content.pages[pageIdx]; ok {
		return cached, nil
	}
	if pageIdx < 0 || pageIdx >= content.reader.NumPage() {
		return nil, fmt.Errorf("page %d out of range (%d pages)", pageIdx, content.reader.NumPage())
	}

	defer func() {
		if r := recover(); r != nil {
			pe = nil
			err = fmt.Errorf("page %d text extraction failed: %v", pageIdx, r)
		}
	}()

	p := content.reader.Page(pageIdx + 1)
	if p.V.IsNull() {
		pe = &pageExtract{}
		content.pages[pageIdx] = pe
		return pe, nil
	}

	rows, err := p.GetTextByRow()
	if err != nil {
		return nil, fmt.Errorf("page %d text extraction failed: %w", pageIdx, err)
	}

	pe = &pageExtract{}
	var b strings.Builder
	for _, row := range rows {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		var prev *pdf.Text
		for i := range row.Content {
			chunk := row.Content[i]
			if chunk.S == "" {
				continue
			}
			if prev != nil && chunk.X-(prev.X+prev.W) > 1.0 && !strings.HasSuffix(prev.S, " ") {
				b.WriteString(" ")
			}
			pe.runs = append(pe.runs, formats.TextRun{
				Text:   chunk.S,
				Offset: b.Len(),
				Page:   pageIdx,
				Box: detector.BoundingBox{
					X:    chunk.X,
					Y:    chunk.Y,
					W:    chunk.W,
					H:    chunk.FontSize,
					Page: pageIdx,
				},
			})
			b.WriteString(chunk.S)
			prev = &row.Content[i]
		}
	}
	pe.text = b.String()
	content.pages[pageIdx] = pe
	return pe, nil
}

// FindTextBoxes searches the selected pages case-insensitively and returns
// one pixel-space box per occurrence: the union of the (proportionally
// sliced) runs the occurrence covers, converted from PDF point space at the
// adapter's render scale. Off-page geometry is reported, never dropped.
func (a *Adapter) FindTextBoxes(doc *formats.Document, terms []string, page int) ([]detector.BoundingBox, error) {
	content, err := contentOf(doc)
	if err != nil {
		return nil, err
	}

	first, last := pageRange(page, content.reader.NumPage())

	var boxes []detector.BoundingBox
	for p := first; p <= last; p++ {
		pe, err := a.extractPage(content, p)
		if err != nil {
			return nil, err
		}
		pageHeight := a.pageHeight(content, p)
		lower := strings.ToLower(pe.text)

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

				pdfBox, ok := unionRunSpan(pe.runs, start, end)
				from = end
				if !ok {
					continue
				}
				geometry.WarnIfOffPage(pdfBox, pageHeight, a.observer)

				pixBox, err := geometry.PDFToPixel(pdfBox, pageHeight, a.scale)
				if err != nil {
					return nil, err
				}
				pixBox.Text = pe.text[start:end]
				pixBox.Page = p
				pixBox.Source = detector.SourceManual
				boxes = append(boxes, pixBox)
			}
		}
	}
	return boxes, nil
}

// unionRunSpan returns the PDF-space union box for character span
// [start, end) over the runs. Runs only partially covered contribute a
// proportional horizontal slice, assuming uniform glyph advance within the
// run.
func unionRunSpan(runs []formats.TextRun, start, end int) (detector.BoundingBox, bool) {
	var union detector.BoundingBox
	found := false

	for _, run := range runs {
		runStart := run.Offset
		runEnd := run.Offset + len(run.Text)
		if runStart >= end || runEnd <= start {
			continue
		}

		slice := run.Box
		n := len(run.Text)
		if n > 0 && run.Box.W > 0 {
			overlapStart := max(start, runStart) - runStart
			overlapEnd := min(end, runEnd) - runStart
			perChar := run.Box.W / float64(n)
			slice.X = run.Box.X + float64(overlapStart)*perChar
			slice.W = float64(overlapEnd-overlapStart) * perChar
		}

		if !found {
			union = slice
			found = true
		} else {
			union = geometry.Union(union, slice)
		}
	}

	return union, found
}

func (a *Adapter) pageHeight(content *pdfContent, pageIdx int) float64 {
	if pageIdx >= 0 && pageIdx < len(content.dims) {
		return content.dims[pageIdx].Height
	}
	// US Letter fallback when the dim table is short.
	return 792.0
}

// Redact records pixel-space boxes against the document. The source PDF is
// never rewritten in place; the fills are applied to rendered pages at
// export.
func (a *Adapter) Redact(doc *formats.Document, boxes []detector.BoundingBox) error {
	for _, box := range boxes {
		if err := box.Validate(); err != nil {
			return err
		}
	}
	doc.Boxes = append(doc.Boxes, boxes...)
	doc.Modified = true
	return nil
}

// Export renders every page, draws the fills, assembles an image-only PDF
// and sanitizes its metadata. The original text layer does not survive in
// any form: page content is raster only, including under the fills.
func (a *Adapter) Export(ctx context.Context, doc *formats.Document, opts formats.ExportOptions) ([]byte, error) {
	content, err := contentOf(doc)
	if err != nil {
		return nil, err
	}
	if a.renderer == nil {
		return nil, &formats.ExportError{Format: formats.FormatPDFText, Err: fmt.Errorf("no page renderer configured for flattened export")}
	}

	complete := a.observer.StartTiming("pdftext", "export", doc.Metadata.FileName)
	defer complete(true, nil)

	numPages := content.reader.NumPage()
	pages := make([][]byte, 0, numPages)
	for p := 0; p < numPages; p++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		img, vp, err := a.renderer.RenderPage(content.tempPath, p, a.scale)
		if err != nil {
			return nil, &formats.ExportError{Format: formats.FormatPDFText, Err: fmt.Errorf("page %d render failed: %w", p+1, err)}
		}

		filled, err := flatten.FillRects(img, a.pageBoxes(doc, content, p, vp))
		if err != nil {
			return nil, &formats.ExportError{Format: formats.FormatPDFText, Err: err}
		}

		png, err := flatten.EncodePNG(filled)
		if err != nil {
			return nil, &formats.ExportError{Format: formats.FormatPDFText, Err: err}
		}
		pages = append(pages, png)
	}

	assembled, err := flatten.BuildImagePDF(pages)
	if err != nil {
		return nil, &formats.ExportError{Format: formats.FormatPDFText, Err: err}
	}

	sanOpts := sanitize.All()
	if opts.Sanitize != nil {
		sanOpts = *opts.Sanitize
	}
	out, report, err := sanitize.Sanitize(assembled, sanOpts)
	if err != nil {
		return nil, &formats.ExportError{Format: formats.FormatPDFText, Err: err}
	}

	doc.SanitizeReport = report
	return out, nil
}

// pageBoxes selects the document's boxes for one page, rescaled to the
// renderer's actual output when it differs from the adapter's nominal
// scale.
func (a *Adapter) pageBoxes(doc *formats.Document, content *pdfContent, pageIdx int, vp render.Viewport) []detector.BoundingBox {
	factor := 1.0
	if pageIdx < len(content.dims) && content.dims[pageIdx].Width > 0 && vp.WidthPx > 0 {
		effective := float64(vp.WidthPx) / content.dims[pageIdx].Width
		if effective > 0 {
			factor = effective / a.scale
		}
	}

	var out []detector.BoundingBox
	for _, b := range doc.Boxes {
		if b.Page != pageIdx {
			continue
		}
		b.X *= factor
		b.Y *= factor
		b.W *= factor
		b.H *= factor
		out = append(out, b)
	}
	return out
}

// Cleanup removes the staged temp file.
func (a *Adapter) Cleanup() {}

// CleanupDocument removes per-document staging. It is separate from Cleanup
// because the adapter is shared across documents.
func (a *Adapter) CleanupDocument(doc *formats.Document) {
	if content, err := contentOf(doc); err == nil && content.tempPath != "" {
		_ = os.Remove(content.tempPath)
		content.tempPath = ""
	}
}

func contentOf(doc *formats.Document) (*pdfContent, error) {
	content, ok := doc.Content.(*pdfContent)
	if !ok {
		return nil, fmt.Errorf("document was not loaded by the pdftext adapter")
	}
	return content, nil
}
