// Copyright (c) 2024 The kvsync authors
// Use of this source code is governed by a MIT license found in the LICENSE file.

package fs

// WithUnmarshal overrides the function that parses the file content into a map[string]any,
// which by default is picked by the file extension.
func WithUnmarshal(unmarshal func([]byte, any) error) Option {
	return func(options *options) {
		options.unmarshal = unmarshal
	}
}

type (
	// Option configures a FS with specific options.
	Option  func(*options)
	options FS
)
