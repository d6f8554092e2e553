// Copyright (c) 2025 The kvsync authors
// Use of this source code is governed by a MIT license found in the LICENSE file.

package kvsync

import (
	"maps"
	"slices"
)

// Source is an immutable named snapshot of configuration entries.
//
// To create a new Source, call [NewSource].
// All accessors return copies, so a Source can be shared between goroutines without locking.
type Source struct {
	name    string
	entries map[string]string
	origins []string
	errs    []error
}

// NewSource creates a Source with the given name, entries and SourceOption(s).
// The entries are copied.
func NewSource(name string, entries map[string]string, opts ...SourceOption) *Source {
	source := &Source{
		name:    name,
		entries: maps.Clone(entries),
	}
	if source.entries == nil {
		source.entries = make(map[string]string)
	}
	for _, opt := range opts {
		opt(source)
	}

	return source
}

// WithOrigins tags the Source with its provenance, e.g. the path of the file it is read from.
func WithOrigins(origins ...string) SourceOption {
	return func(source *Source) {
		source.origins = append(source.origins, origins...)
	}
}

// WithErrors records the failures that happened while reading the Source.
func WithErrors(errs ...error) SourceOption {
	return func(source *Source) {
		for _, err := range errs {
			if err != nil {
				source.errs = append(source.errs, err)
			}
		}
	}
}

// SourceOption configures a Source with specific options.
type SourceOption func(*Source)

// Name returns the name of the Source.
func (s *Source) Name() string {
	if s == nil {
		return ""
	}

	return s.name
}

// Entries returns a copy of all entries. It never returns nil.
func (s *Source) Entries() map[string]string {
	if s == nil {
		return make(map[string]string)
	}

	return maps.Clone(s.entries)
}

// Get returns the value of the key and whether the key exists.
func (s *Source) Get(key string) (string, bool) {
	if s == nil {
		return "", false
	}

	value, ok := s.entries[key]

	return value, ok
}

// Len returns the number of entries.
func (s *Source) Len() int {
	if s == nil {
		return 0
	}

	return len(s.entries)
}

// IsEmpty reports whether the Source has no entries.
func (s *Source) IsEmpty() bool {
	return s.Len() == 0
}

// Keys returns the keys in ascending order.
func (s *Source) Keys() []string {
	if s == nil {
		return nil
	}

	return slices.Sorted(maps.Keys(s.entries))
}

// Origins returns the provenance tags of the Source.
func (s *Source) Origins() []string {
	if s == nil {
		return nil
	}

	return slices.Clone(s.origins)
}

// Errors returns the failures recorded while reading the Source, in order.
func (s *Source) Errors() []error {
	if s == nil {
		return nil
	}

	return slices.Clone(s.errs)
}

// Refresh returns a new Source with the same name and origins but the given entries,
// together with the ChangeSet from this Source to the new one.
// The receiver is not modified.
func (s *Source) Refresh(entries map[string]string, opts ...SourceOption) (*Source, ChangeSet) {
	refreshed := NewSource(s.Name(), entries, append([]SourceOption{WithOrigins(s.Origins()...)}, opts...)...)

	return refreshed, Diff(s.Name(), s.Entries(), refreshed.entries)
}

func (s *Source) String() string {
	return s.Name()
}
