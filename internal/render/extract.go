// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package render

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// ImageExtractRenderer satisfies Renderer for scanned PDFs whose pages are
// single full-page raster images. It pulls the page image out with pdfcpu
// instead of rasterizing content streams, which is exact for scan output and
// wrong for anything with vector content, so callers route only scanned
// documents here.
type ImageExtractRenderer struct{}

// RenderPage implements Renderer.
func (r *ImageExtractRenderer) RenderPage(path string, pageIndex int, scale float64) (image.Image, Viewport, error) {
	if scale <= 0 {
		return nil, Viewport{}, fmt.Errorf("render scale must be positive, got %v", scale)
	}

	tempDir, err := os.MkdirTemp("", "inkblot-render-*")
	if err != nil {
		return nil, Viewport{}, fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer func() { _ = os.RemoveAll(tempDir) }()

	pageNr := pageIndex + 1
	if err := api.ExtractImagesFile(path, tempDir, []string{strconv.Itoa(pageNr)}, nil); err != nil {
		return nil, Viewport{}, fmt.Errorf("failed to extract page %d image: %w", pageNr, err)
	}

	img, err := firstPageImage(tempDir, pageNr)
	if err != nil {
		return nil, Viewport{}, err
	}

	bounds := img.Bounds()
	vp := Viewport{
		WidthPx:  bounds.Dx(),
		HeightPx: bounds.Dy(),
		Scale:    scale,
	}
	return img, vp, nil
}

// firstPageImage locates the extracted image for pageNr. pdfcpu names files
// like page_1_Im0.png.
func firstPageImage(dir string, pageNr int) (image.Image, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	prefix := "page_" + strconv.Itoa(pageNr) + "_"
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasPrefix(name, prefix) && !strings.HasPrefix(name, "page_"+strconv.Itoa(pageNr)+".") {
			continue
		}
		img, err := imaging.Open(filepath.Join(dir, name))
		if err != nil {
			continue
		}
		return img, nil
	}

	return nil, errors.New("page has no extractable raster image")
}
