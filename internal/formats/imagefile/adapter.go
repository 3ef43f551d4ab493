// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package imagefile implements the formats.Adapter contract for raster
// images. Text is recovered through OCR, redaction is an opaque pixel fill,
// and export re-encodes from the working canvas so no source metadata
// (EXIF, GPS, thumbnails) survives into the output.
package imagefile

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"

	"inkblot/internal/boxmap"
	"inkblot/internal/detector"
	"inkblot/internal/flatten"
	"inkblot/internal/formats"
	"inkblot/internal/geometry"
	"inkblot/internal/observability"
	"inkblot/internal/ocr"
)

// Adapter handles PNG, JPEG, GIF, TIFF and BMP images.
type Adapter struct {
	observer   *observability.StandardObserver
	ocrFactory ocr.Factory
	padding    float64
}

// NewAdapter creates an image adapter. The OCR factory may be nil, in which
// case text extraction reports that no engine is available; loading and
// manual box redaction still work.
func NewAdapter(observer *observability.StandardObserver, ocrFactory ocr.Factory, padding float64) *Adapter {
	if padding <= 0 {
		padding = boxmap.DefaultPaddingPx
	}
	return &Adapter{observer: observer, ocrFactory: ocrFactory, padding: padding}
}

func (a *Adapter) Name() string { return formats.FormatImage }

func (a *Adapter) Extensions() []string {
	return []string{".png", ".jpg", ".jpeg", ".gif", ".tif", ".tiff", ".bmp"}
}

type imageContent struct {
	img       *image.NRGBA
	outFormat imaging.Format
	hadEXIF   bool

	idx     *boxmap.WordIndex
	ocrDone bool
}

// Load decodes the image into a working canvas and records whether the
// source carried EXIF metadata. The canvas is the only state kept; the
// original bytes are dropped so nothing can copy their metadata forward.
func (a *Adapter) Load(ctx context.Context, name string, data []byte) (*formats.Document, error) {
	complete := a.observer.StartTiming("imagefile", "load", name)
	defer complete(true, nil)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &formats.LoadError{Format: formats.FormatImage, Name: name, Err: err}
	}

	outFormat := imaging.PNG
	if ext := lowerExt(name); ext != "" {
		if f, ferr := imaging.FormatFromExtension(ext); ferr == nil {
			outFormat = f
		}
	}
	// GIF re-encoding drops animation, so flattened output is always PNG.
	if outFormat == imaging.GIF {
		outFormat = imaging.PNG
	}

	hadEXIF := false
	if _, exifErr := exif.Decode(bytes.NewReader(data)); exifErr == nil {
		hadEXIF = true
		a.observer.LogWarning("imagefile", fmt.Sprintf("%s carries EXIF metadata; it will be stripped on export", name))
	}

	return &formats.Document{
		Metadata: formats.Metadata{
			FileName:  name,
			Size:      int64(len(data)),
			MimeType:  "image/" + strings.TrimPrefix(lowerExt(name), "."),
			PageCount: 1,
		},
		Content: &imageContent{
			img:       imaging.Clone(img),
			outFormat: outFormat,
			hadEXIF:   hadEXIF,
		},
	}, nil
}

func lowerExt(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return strings.ToLower(name[i:])
	}
	return ""
}

// ExtractText runs one OCR pass over the canvas and caches the word index
// for later box lookups. The provider is created for this call and closed
// before returning.
func (a *Adapter) ExtractText(ctx context.Context, doc *formats.Document, page int) (*formats.TextExtract, error) {
	content, err := contentOf(doc)
	if err != nil {
		return nil, err
	}

	if !content.ocrDone {
		if err := a.runOCR(ctx, doc, content); err != nil {
			return nil, err
		}
	}

	return &formats.TextExtract{
		FullText: content.idx.Text(),
		PageText: map[int]string{0: content.idx.Text()},
	}, nil
}

func (a *Adapter) runOCR(ctx context.Context, doc *formats.Document, content *imageContent) error {
	if a.ocrFactory == nil {
		return fmt.Errorf("no OCR engine configured for image text extraction")
	}

	complete := a.observer.StartTiming("imagefile", "ocr", doc.Metadata.FileName)
	defer complete(true, nil)

	provider, err := a.ocrFactory()
	if err != nil {
		return fmt.Errorf("failed to start OCR engine: %w", err)
	}
	defer func() { _ = provider.Close() }()

	result, err := provider.Recognize(ctx, content.img)
	if err != nil {
		return fmt.Errorf("recognition failed: %w", err)
	}

	content.idx = boxmap.NewWordIndex(result.Words)
	content.ocrDone = true
	return nil
}

// FindTextBoxes maps case-insensitive term occurrences in the OCR text to
// padded union boxes over the recognized words. ExtractText must have run
// first so the word index exists.
func (a *Adapter) FindTextBoxes(doc *formats.Document, terms []string, page int) ([]detector.BoundingBox, error) {
	content, err := contentOf(doc)
	if err != nil {
		return nil, err
	}
	if !content.ocrDone {
		return nil, fmt.Errorf("text has not been extracted yet")
	}

	text := content.idx.Text()
	lower := strings.ToLower(text)

	var boxes []detector.BoundingBox
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
			if box, ok := content.idx.BoxesFor(start, end, a.padding); ok {
				box.Text = text[start:end]
				box.Source = detector.SourceManual
				boxes = append(boxes, box)
			}
			from = end
		}
	}
	return boxes, nil
}

// Redact draws opaque fills over the boxes on the working canvas.
func (a *Adapter) Redact(doc *formats.Document, boxes []detector.BoundingBox) error {
	content, err := contentOf(doc)
	if err != nil {
		return err
	}

	// Padded word boxes frequently overlap; fill their unions.
	filled, err := flatten.FillRects(content.img, geometry.MergeOverlapping(boxes))
	if err != nil {
		return err
	}
	content.img = filled

	doc.Boxes = append(doc.Boxes, boxes...)
	doc.Modified = true
	return nil
}

// Export re-encodes the working canvas in the source format (PNG for
// sources that cannot round-trip) and verifies the output carries no EXIF
// block before returning it.
func (a *Adapter) Export(ctx context.Context, doc *formats.Document, opts formats.ExportOptions) ([]byte, error) {
	content, err := contentOf(doc)
	if err != nil {
		return nil, err
	}

	complete := a.observer.StartTiming("imagefile", "export", doc.Metadata.FileName)
	defer complete(true, nil)

	var out []byte
	switch content.outFormat {
	case imaging.JPEG:
		out, err = flatten.EncodeJPEG(content.img, opts.JPEGQuality)
	default:
		out, err = flatten.EncodePNG(content.img)
	}
	if err != nil {
		return nil, &formats.ExportError{Format: formats.FormatImage, Err: err}
	}

	if _, exifErr := exif.Decode(bytes.NewReader(out)); exifErr == nil {
		return nil, &formats.ExportError{Format: formats.FormatImage, Err: fmt.Errorf("exported image unexpectedly carries EXIF metadata")}
	}

	return out, nil
}

func (a *Adapter) Cleanup() {}

func contentOf(doc *formats.Document) (*imageContent, error) {
	content, ok := doc.Content.(*imageContent)
	if !ok {
		return nil, fmt.Errorf("document was not loaded by the imagefile adapter")
	}
	return content, nil
}
