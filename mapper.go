// Copyright (c) 2025 The kvsync authors
// Use of this source code is governed by a MIT license found in the LICENSE file.

package kvsync

import "strings"

// KeyFunc maps a source key to a new key.
// It returns false if the entry should be dropped.
type KeyFunc func(key string) (string, bool)

// Map returns a new Source with the keys of source transformed by keyFn.
// Entries for which keyFn returns false are dropped.
//
// If several keys map to the same key, keys are visited in ascending order
// and the value of the last visited key is kept.
// The mapped Source keeps the name, origins and errors of source,
// which itself is not modified.
func Map(source *Source, keyFn KeyFunc) *Source {
	if keyFn == nil {
		panic("cannot map source with nil key function")
	}

	entries := make(map[string]string, source.Len())
	for _, key := range source.Keys() {
		if mapped, ok := keyFn(key); ok {
			entries[mapped] = source.entries[key]
		}
	}

	return NewSource(source.Name(), entries, WithOrigins(source.Origins()...), WithErrors(source.Errors()...))
}

// Prefix returns a KeyFunc which prepends prefix to every key.
func Prefix(prefix string) KeyFunc {
	return func(key string) (string, bool) {
		return prefix + key, true
	}
}

// TrimPrefix returns a KeyFunc which removes prefix from keys,
// and drops the keys without the prefix.
func TrimPrefix(prefix string) KeyFunc {
	return func(key string) (string, bool) {
		trimmed, ok := strings.CutPrefix(key, prefix)
		if !ok || trimmed == "" {
			return "", false
		}

		return trimmed, true
	}
}

// Filter returns a KeyFunc which keeps the keys matching keep unchanged
// and drops all others.
func Filter(keep func(key string) bool) KeyFunc {
	return func(key string) (string, bool) {
		return key, keep(key)
	}
}

// Compose returns a KeyFunc applying the given KeyFuncs in order.
// An entry is dropped as soon as one of them drops it.
func Compose(fns ...KeyFunc) KeyFunc {
	return func(key string) (string, bool) {
		for _, fn := range fns {
			var ok bool
			if key, ok = fn(key); !ok {
				return "", false
			}
		}

		return key, true
	}
}
