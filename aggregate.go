// Copyright (c) 2025 The kvsync authors
// Use of this source code is governed by a MIT license found in the LICENSE file.

package kvsync

import "fmt"

// Aggregate merges the sources into a single map using the policy.
//
// Sources are merged in order, so with [Override] each source takes precedence
// over the sources before it. Keys of each source are merged in ascending order,
// which makes the result a pure function of the sources and the policy.
// A nil policy is treated as [Override].
//
// It stops at the first error returned by the policy.
func Aggregate(sources []*Source, policy Policy) (map[string]string, error) {
	if policy == nil {
		policy = Override
	}

	values := make(map[string]string)
	for _, source := range sources {
		for _, key := range source.Keys() {
			current, present := values[key]
			value, keep, err := policy.Aggregate(key, current, present, source.entries[key])
			if err != nil {
				return nil, fmt.Errorf("aggregate %s: %w", source.Name(), err)
			}
			if keep {
				values[key] = value
			} else {
				delete(values, key)
			}
		}
	}

	return values, nil
}
