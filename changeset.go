// Copyright (c) 2025 The kvsync authors
// Use of this source code is governed by a MIT license found in the LICENSE file.

package kvsync

import (
	"maps"
	"slices"
)

// ChangeSet describes the keys added, updated and removed by a single mutation of a source.
//
// To create a new ChangeSet, call [Diff]. A ChangeSet is immutable.
type ChangeSet struct {
	source  string
	added   map[string]string
	updated map[string]Change
	removed []string
}

// Change is the old and new value of an updated key.
type Change struct {
	Old string
	New string
}

// Diff returns the ChangeSet of the named source changing from before to after.
func Diff(source string, before, after map[string]string) ChangeSet {
	changes := ChangeSet{
		source:  source,
		added:   make(map[string]string),
		updated: make(map[string]Change),
	}
	for key, value := range after {
		oldValue, ok := before[key]
		switch {
		case !ok:
			changes.added[key] = value
		case oldValue != value:
			changes.updated[key] = Change{Old: oldValue, New: value}
		}
	}
	for key := range before {
		if _, ok := after[key]; !ok {
			changes.removed = append(changes.removed, key)
		}
	}
	slices.Sort(changes.removed)

	return changes
}

// Source returns the name of the source that has been changed.
func (c ChangeSet) Source() string {
	return c.source
}

// Added returns the keys added with their values.
func (c ChangeSet) Added() map[string]string {
	return maps.Clone(c.added)
}

// Updated returns the keys updated with their old and new values.
func (c ChangeSet) Updated() map[string]Change {
	return maps.Clone(c.updated)
}

// Removed returns the keys removed in ascending order.
func (c ChangeSet) Removed() []string {
	return slices.Clone(c.removed)
}

// Keys returns all changed keys in ascending order.
func (c ChangeSet) Keys() []string {
	keys := make([]string, 0, c.Len())
	keys = append(keys, slices.Collect(maps.Keys(c.added))...)
	keys = append(keys, slices.Collect(maps.Keys(c.updated))...)
	keys = append(keys, c.removed...)
	slices.Sort(keys)

	return keys
}

// Has reports whether the key is added, updated or removed.
func (c ChangeSet) Has(key string) bool {
	if _, ok := c.added[key]; ok {
		return true
	}
	if _, ok := c.updated[key]; ok {
		return true
	}
	_, ok := slices.BinarySearch(c.removed, key)

	return ok
}

// Len returns the number of changed keys.
func (c ChangeSet) Len() int {
	return len(c.added) + len(c.updated) + len(c.removed)
}

// IsEmpty reports whether nothing has been changed.
func (c ChangeSet) IsEmpty() bool {
	return c.Len() == 0
}
