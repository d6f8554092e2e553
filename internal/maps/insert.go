// Copyright (c) 2024 The kvsync authors
// Use of this source code is governed by a MIT license found in the LICENSE file.

package maps

// Insert puts the value into the nested map under the given keys,
// creating intermediate maps and replacing non-map values on the way.
func Insert(dst map[string]any, keys []string, value any) {
	if len(keys) == 0 {
		return
	}

	next := dst
	for _, key := range keys[:len(keys)-1] {
		child, ok := next[key].(map[string]any)
		if !ok {
			child = make(map[string]any)
			next[key] = child
		}
		next = child
	}
	next[keys[len(keys)-1]] = value
}
