// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package core

import "errors"

// ErrStaleResults reports that detection finished against a document that
// mutated while it ran; the results were discarded. Callers re-run
// detection against the current document state.
var ErrStaleResults = errors.New("detection results are stale: document changed during detection")
