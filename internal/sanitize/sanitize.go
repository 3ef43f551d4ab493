// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package sanitize strips the metadata side channels a flattened PDF could
// still leak through: the info dictionary, XMP streams, annotations, form
// fields, embedded files and JavaScript actions. Each category is
// independently toggleable and reports how many items it removed.
package sanitize

import (
	"bytes"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// Options selects the sanitization categories to apply.
type Options struct {
	InfoDict    bool
	XMP         bool
	Annotations bool
	Forms       bool
	Attachments bool
	JavaScript  bool
}

// All enables every category.
func All() Options {
	return Options{
		InfoDict:    true,
		XMP:         true,
		Annotations: true,
		Forms:       true,
		Attachments: true,
		JavaScript:  true,
	}
}

// Report counts removed items per category for user-facing confirmation.
// A category absent from the document reports zero, never an error.
type Report struct {
	InfoFields  int `json:"info_fields"`
	XMPStreams  int `json:"xmp_streams"`
	Annotations int `json:"annotations"`
	FormFields  int `json:"form_fields"`
	Attachments int `json:"attachments"`
	JSActions   int `json:"js_actions"`
}

// Total returns the number of removed items across all categories.
func (r Report) Total() int {
	return r.InfoFields + r.XMPStreams + r.Annotations + r.FormFields + r.Attachments + r.JSActions
}

// Sanitize applies the selected categories to a PDF and returns the
// sanitized bytes plus the per-category removal report.
func Sanitize(data []byte, opts Options) ([]byte, *Report, error) {
	ctx, err := api.ReadContext(bytes.NewReader(data), model.NewDefaultConfiguration())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read PDF context: %w", err)
	}

	report := &Report{}

	if opts.InfoDict {
		report.InfoFields = stripInfoDict(ctx)
	}

	rootDict, err := ctx.Catalog()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to resolve document catalog: %w", err)
	}

	if opts.XMP {
		report.XMPStreams = stripXMP(rootDict)
	}
	if opts.Annotations {
		report.Annotations = stripAnnotations(ctx)
	}
	if opts.Forms {
		report.FormFields = stripForms(ctx, rootDict)
	}
	if opts.Attachments {
		report.Attachments = stripAttachments(ctx, rootDict)
	}
	if opts.JavaScript {
		report.JSActions = stripJavaScript(ctx, rootDict)
	}

	var buf bytes.Buffer
	if err := api.WriteContext(ctx, &buf); err != nil {
		return nil, nil, fmt.Errorf("failed to write sanitized PDF: %w", err)
	}

	return buf.Bytes(), report, nil
}

// stripInfoDict drops the document information dictionary (title, author,
// subject, keywords, producer, creator, dates).
func stripInfoDict(ctx *model.Context) int {
	if ctx.Info == nil {
		return 0
	}

	count := 1
	if d, err := ctx.DereferenceDict(*ctx.Info); err == nil && d != nil {
		count = len(d)
	}

	ctx.Info = nil
	return count
}

func stripXMP(rootDict types.Dict) int {
	if _, found := rootDict.Find("Metadata"); !found {
		return 0
	}
	rootDict.Delete("Metadata")
	return 1
}

// stripAnnotations removes comments, highlights, links and every other
// annotation from each page.
func stripAnnotations(ctx *model.Context) int {
	count := 0

	for i := 1; i <= ctx.PageCount; i++ {
		pageDict, _, _, err := ctx.PageDict(i, false)
		if err != nil || pageDict == nil {
			continue
		}

		obj, found := pageDict.Find("Annots")
		if !found {
			continue
		}
		if arr, err := ctx.DereferenceArray(obj); err == nil {
			count += len(arr)
		} else {
			count++
		}
		pageDict.Delete("Annots")
	}

	return count
}

// stripForms removes the AcroForm dictionary and counts its field tree.
func stripForms(ctx *model.Context, rootDict types.Dict) int {
	obj, found := rootDict.Find("AcroForm")
	if !found {
		return 0
	}

	count := 0
	if d, err := ctx.DereferenceDict(obj); err == nil && d != nil {
		if fieldsObj, ok := d.Find("Fields"); ok {
			if arr, err := ctx.DereferenceArray(fieldsObj); err == nil {
				count = len(arr)
			}
		}
	}

	rootDict.Delete("AcroForm")
	return count
}

// stripAttachments removes the EmbeddedFiles name tree.
func stripAttachments(ctx *model.Context, rootDict types.Dict) int {
	namesDict := dereferencedDict(ctx, rootDict, "Names")
	if namesDict == nil {
		return 0
	}

	obj, found := namesDict.Find("EmbeddedFiles")
	if !found {
		return 0
	}

	count := countNameTree(ctx, obj)
	namesDict.Delete("EmbeddedFiles")
	return count
}

// stripJavaScript removes document-level JavaScript name tree entries, a
// JavaScript OpenAction, and document/page additional-actions.
func stripJavaScript(ctx *model.Context, rootDict types.Dict) int {
	count := 0

	if namesDict := dereferencedDict(ctx, rootDict, "Names"); namesDict != nil {
		if obj, found := namesDict.Find("JavaScript"); found {
			count += countNameTree(ctx, obj)
			namesDict.Delete("JavaScript")
		}
	}

	if obj, found := rootDict.Find("OpenAction"); found {
		if d, err := ctx.DereferenceDict(obj); err == nil && d != nil {
			if s, ok := d.Find("S"); ok {
				if name, ok := s.(types.Name); ok && name.Value() == "JavaScript" {
					rootDict.Delete("OpenAction")
					count++
				}
			}
		}
	}

	if _, found := rootDict.Find("AA"); found {
		rootDict.Delete("AA")
		count++
	}

	for i := 1; i <= ctx.PageCount; i++ {
		pageDict, _, _, err := ctx.PageDict(i, false)
		if err != nil || pageDict == nil {
			continue
		}
		if _, found := pageDict.Find("AA"); found {
			pageDict.Delete("AA")
			count++
		}
	}

	return count
}

// dereferencedDict resolves a dict-valued key of d, following an indirect
// reference if needed.
func dereferencedDict(ctx *model.Context, d types.Dict, key string) types.Dict {
	obj, found := d.Find(key)
	if !found {
		return nil
	}
	out, err := ctx.DereferenceDict(obj)
	if err != nil {
		return nil
	}
	return out
}

// countNameTree counts the leaf entries of a PDF name tree. Entries come in
// (name, value) pairs in the Names array; Kids nest one level per node.
func countNameTree(ctx *model.Context, obj types.Object) int {
	d, err := ctx.DereferenceDict(obj)
	if err != nil || d == nil {
		return 0
	}

	count := 0
	if namesObj, found := d.Find("Names"); found {
		if arr, err := ctx.DereferenceArray(namesObj); err == nil {
			count += len(arr) / 2
		}
	}
	if kidsObj, found := d.Find("Kids"); found {
		if kids, err := ctx.DereferenceArray(kidsObj); err == nil {
			for _, kid := range kids {
				count += countNameTree(ctx, kid)
			}
		}
	}

	return count
}
