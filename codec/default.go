// Copyright (c) 2025 The kvsync authors
// Use of this source code is governed by a MIT license found in the LICENSE file.

package codec

import "sync/atomic"

// Default returns the process-wide Registry, which has [Builtins] registered.
func Default() *Registry {
	return defaultRegistry.Load()
}

// SetDefault makes r the process-wide Registry returned by [Default].
//
// It panics if r is nil.
func SetDefault(r *Registry) {
	if r == nil {
		panic("cannot set nil registry as default")
	}

	defaultRegistry.Store(r)
}

var defaultRegistry atomic.Pointer[Registry] //nolint:gochecknoglobals

func init() { //nolint:gochecknoinits
	defaultRegistry.Store(NewRegistry(Builtins()...))
}
