// Copyright (c) 2025 The kvsync authors
// Use of this source code is governed by a MIT license found in the LICENSE file.

package bind

import "log/slog"

// WithIgnore provides the names of configurations which are never used to resolve values,
// and which changes are always ignored.
func WithIgnore(names ...string) Option {
	return func(options *options) {
		for _, name := range names {
			options.ignore[name] = struct{}{}
		}
	}
}

// WithConcurrency limits the number of targets applied in parallel on change.
//
// By default, it's runtime.GOMAXPROCS(0).
func WithConcurrency(limit int) Option {
	return func(options *options) {
		options.concurrency = limit
	}
}

// WithErrorHandler provides the function that handles errors from changes applied by Attach.
//
// By default, it logs the error.
func WithErrorHandler(handler func(error)) Option {
	return func(options *options) {
		options.onError = handler
	}
}

// WithLogHandler provides the slog.Handler for logs from Binder.
//
// By default, it uses handler from slog.Default().
func WithLogHandler(handler slog.Handler) Option {
	return func(options *options) {
		if handler != nil {
			options.logger = slog.New(handler)
		}
	}
}

type (
	// Option configures a Binder with specific options.
	Option  func(*options)
	options Binder
)

// WithAreas provides the areas which prefix the relative keys of all fields built by Struct.
func WithAreas(areas ...string) StructOption {
	return func(options *structOptions) {
		options.areas = append(options.areas, areas...)
	}
}

// WithOwner provides the owner name used in diagnostics for fields built by Struct.
//
// By default, it's the name of the struct type.
func WithOwner(owner string) StructOption {
	return func(options *structOptions) {
		options.owner = owner
	}
}

type (
	// StructOption configures how Struct builds targets.
	StructOption  func(*structOptions)
	structOptions struct {
		areas   []string
		owner   string
		tagName string
	}
)

// WithTagName provides the tag name which Struct reads candidate keys from.
//
// The default tag name is `kvsync`.
func WithTagName(tagName string) StructOption {
	return func(options *structOptions) {
		options.tagName = tagName
	}
}
