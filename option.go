// Copyright (c) 2023 The kvsync authors
// Use of this source code is governed by a MIT license found in the LICENSE file.

package kvsync

import (
	"log/slog"

	"github.com/nil-go/kvsync/codec"
)

// WithPolicy provides the Policy used to aggregate the sources.
//
// The default policy is [Override], which lets each source take precedence
// over the sources before it.
func WithPolicy(policy Policy) Option {
	return func(options *options) {
		options.policy = policy
	}
}

// WithDelimiter provides the delimiter used to join nested keys returned by loaders,
// and to split keys into paths for Unmarshal.
//
// The default delimiter is `.`, which makes keys like `parent.child.key`.
func WithDelimiter(delimiter string) Option {
	return func(options *options) {
		options.delimiter = delimiter
	}
}

// WithCodecs provides the codec.Registry used to decode values in Unmarshal and Get.
//
// By default, it uses codec.Default().
func WithCodecs(registry *codec.Registry) Option {
	return func(options *options) {
		options.registry = registry
	}
}

// WithTagName provides the tag name that Unmarshal reads the field alias from.
//
// The default tag name is `kvsync`.
func WithTagName(tagName string) Option {
	return func(options *options) {
		options.tagName = tagName
	}
}

// WithLogHandler provides the slog.Handler for logs from Config.
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
	// Option configures a Config with specific options.
	Option  func(*options)
	options Config
)
