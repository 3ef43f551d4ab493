// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package formats

import "sort"

// Registry maps format ids to adapters. It is constructed once at session
// start and passed by reference, keeping lazy registration without hidden
// module-level state.
type Registry struct {
	adapters map[string]Adapter
}

// NewRegistry creates an empty adapter registry.
func NewRegistry() *Registry {
	return &Registry{adapters: make(map[string]Adapter)}
}

// Register binds an adapter to a format id. Later registrations for the same
// id replace earlier ones.
func (r *Registry) Register(formatID string, a Adapter) {
	r.adapters[formatID] = a
}

// Get returns the adapter for a format id.
func (r *Registry) Get(formatID string) (Adapter, error) {
	a, ok := r.adapters[formatID]
	if !ok {
		return nil, &UnsupportedFormatError{Detected: formatID}
	}
	return a, nil
}

// ForFile detects the format of (name, data) and returns the matching
// adapter together with the detected format id.
func (r *Registry) ForFile(name string, data []byte) (Adapter, string, error) {
	id := DetectFormat(name, data)
	if id == FormatUnknown {
		return nil, id, &UnsupportedFormatError{Detected: "unknown"}
	}
	a, err := r.Get(id)
	if err != nil {
		return nil, id, err
	}
	return a, id, nil
}

// Formats returns the registered format ids in sorted order.
func (r *Registry) Formats() []string {
	ids := make([]string, 0, len(r.adapters))
	for id := range r.adapters {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// CleanupAll releases resources across every registered adapter.
func (r *Registry) CleanupAll() {
	for _, a := range r.adapters {
		a.Cleanup()
	}
}
