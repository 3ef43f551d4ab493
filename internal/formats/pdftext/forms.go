// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package pdftext

import (
	"bytes"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// formFieldValues collects the filled-in values of AcroForm fields. Form
// fields carry user-entered text outside the page content streams, so they
// are fed into text extraction alongside the page text. Best effort: a
// malformed or absent form yields nil.
func formFieldValues(data []byte) []string {
	ctx, err := api.ReadContext(bytes.NewReader(data), model.NewDefaultConfiguration())
	if err != nil {
		return nil
	}

	rootDict, err := ctx.Catalog()
	if err != nil {
		return nil
	}

	obj, found := rootDict.Find("AcroForm")
	if !found {
		return nil
	}
	acroForm, err := ctx.DereferenceDict(obj)
	if err != nil || acroForm == nil {
		return nil
	}

	fieldsObj, found := acroForm.Find("Fields")
	if !found {
		return nil
	}

	var values []string
	collectFieldValues(ctx, fieldsObj, &values, 0)
	return values
}

// collectFieldValues walks a field array, reading each field's V entry and
// recursing into Kids. Depth is bounded against cyclic field trees.
func collectFieldValues(ctx *model.Context, fieldsObj types.Object, values *[]string, depth int) {
	if depth > 8 {
		return
	}

	fields, err := ctx.DereferenceArray(fieldsObj)
	if err != nil {
		return
	}

	for _, f := range fields {
		field, err := ctx.DereferenceDict(f)
		if err != nil || field == nil {
			continue
		}

		if vObj, found := field.Find("V"); found {
			if s := stringValue(ctx, vObj); s != "" {
				*values = append(*values, s)
			}
		}

		if kidsObj, found := field.Find("Kids"); found {
			collectFieldValues(ctx, kidsObj, values, depth+1)
		}
	}
}

func stringValue(ctx *model.Context, obj types.Object) string {
	resolved, err := ctx.Dereference(obj)
	if err != nil {
		return ""
	}

	switch v := resolved.(type) {
	case types.StringLiteral:
		s, err := types.StringLiteralToString(v)
		if err != nil {
			return ""
		}
		return s
	case types.HexLiteral:
		s, err := types.HexLiteralToString(v)
		if err != nil {
			return ""
		}
		return s
	case types.Name:
		return v.Value()
	default:
		return ""
	}
}
