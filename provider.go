// Copyright (c) 2023 The kvsync authors
// Use of this source code is governed by a MIT license found in the LICENSE file.

package kvsync

import "context"

// Loader is the interface that wraps the Load method.
//
// Load loads configuration and returns it as a map[string]any, which can be either
// flat like `{"parent.child.key": 1}` or nested like `{parent: {child: {key: 1}}}`.
// Nested keys are joined with the delimiter of the Config, and values are converted
// to their string representation.
//
// A Loader which implements fmt.Stringer is named after its String method,
// which must be unique within a Config.
type Loader interface {
	Load() (map[string]any, error)
}

// Watcher is the interface that wraps the Watch method.
//
// Watch watches configuration and calls onChange with the full new configuration
// whenever it changes. A nil map means the configuration has been removed.
// It blocks until ctx is done, or the watching returns an error.
type Watcher interface {
	Watch(ctx context.Context, onChange func(map[string]any)) error
}
