// Copyright (c) 2025 The kvsync authors
// Use of this source code is governed by a MIT license found in the LICENSE file.

package kvsync

import "fmt"

// AggregationError reports that a Policy could not resolve a conflict on the key.
type AggregationError struct {
	Key     string
	Current string
	Value   string
}

func (e *AggregationError) Error() string {
	return fmt.Sprintf("conflict on key %s: %q and %q", e.Key, e.Current, e.Value)
}

// ConfigError is a fatal configuration error.
//
// While a Loader failure is normally recorded on its Source and loading continues
// with the other loaders, a failure that is or wraps a *ConfigError aborts loading.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("fatal configuration error: %v", e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
