// Copyright (c) 2025 The kvsync authors
// Use of this source code is governed by a MIT license found in the LICENSE file.

package env

// WithPrefix restricts loading to the environment variables whose names start with prefix,
// e.g. "SERVER_" only loads SERVER_HOST, SERVER_PORT and alike.
//
// By default, all environment variables are loaded.
func WithPrefix(prefix string) Option {
	return func(options *options) {
		options.prefix = prefix
	}
}

// WithNameSplitter provides the function that turns an environment variable name into key segments,
// which are joined by the delimiter of the Config.
// The variable is skipped if it returns no segment or a single empty segment.
//
// By default, the name is lowercased and split on "_", so PARENT_CHILD_KEY becomes parent.child.key.
func WithNameSplitter(splitter func(string) []string) Option {
	return func(options *options) {
		options.splitter = splitter
	}
}

type (
	// Option configures an Env with specific options.
	Option  func(*options)
	options Env
)
