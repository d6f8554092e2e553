// Copyright (c) 2025 The kvsync authors
// Use of this source code is governed by a MIT license found in the LICENSE file.

package maps

import "slices"

// Sub returns the value under the given path in the nested map,
// or nil if the path does not exist.
func Sub(values map[string]any, path []string) any {
	path = slices.DeleteFunc(slices.Clone(path), func(key string) bool { return key == "" })
	if len(path) == 0 {
		return values
	}

	value := values[path[0]]
	if len(path) == 1 {
		return value
	}

	if mp, ok := value.(map[string]any); ok {
		return Sub(mp, path[1:])
	}

	return nil
}
