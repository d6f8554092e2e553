// Copyright (c) 2025 The kvsync authors
// Use of this source code is governed by a MIT license found in the LICENSE file.

package maps

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
)

// Flatten converts the nested map into a flat map whose keys are
// the nested keys joined by delimiter. Nil values are skipped,
// and slices are joined by comma.
//
// Keys are visited in ascending order, so if two keys flatten into the same key,
// e.g. "a.b" and {"a": {"b": ...}}, the later one in that order wins.
func Flatten(values map[string]any, delimiter string) map[string]string {
	flat := make(map[string]string, len(values))
	flatten(flat, "", values, delimiter)

	return flat
}

func flatten(dst map[string]string, prefix string, values map[string]any, delimiter string) {
	for _, name := range sortedKeys(values) {
		value := values[name]
		key := name
		if prefix != "" {
			key = prefix + delimiter + name
		}

		switch val := value.(type) {
		case nil:
		case map[string]any:
			flatten(dst, key, val, delimiter)
		case map[string]string:
			for _, k := range sortedKeys(val) {
				dst[key+delimiter+k] = val[k]
			}
		default:
			dst[key] = Stringify(val)
		}
	}
}

func sortedKeys[V any](values map[string]V) []string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	return keys
}

// Stringify formats a scalar or slice value in its configuration string form.
func Stringify(value any) string {
	switch val := value.(type) {
	case string:
		return val
	case []byte:
		return string(val)
	case []string:
		return strings.Join(val, ",")
	case []any:
		elems := make([]string, 0, len(val))
		for _, elem := range val {
			elems = append(elems, Stringify(elem))
		}

		return strings.Join(elems, ",")
	case fmt.Stringer:
		return val.String()
	default:
		if rv := reflect.ValueOf(val); rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
			elems := make([]string, 0, rv.Len())
			for i := range rv.Len() {
				elems = append(elems, Stringify(rv.Index(i).Interface()))
			}

			return strings.Join(elems, ",")
		}

		return fmt.Sprint(val)
	}
}
