// Copyright (c) 2025 The kvsync authors
// Use of this source code is governed by a MIT license found in the LICENSE file.

package bind

import (
	"fmt"
	"reflect"
	"strings"
)

// Struct builds targets for the exported fields of the struct pointed to by owner
// from their struct tags.
//
//   - `kvsync:"app.timeout,timeout"` lists the candidate keys in order,
//     and `kvsync:"-"` or no tag skips the field.
//   - `default:"30"` provides the value applied when none of the keys is present.
//   - `codec:"name"` names the codec.Factory that decodes the value.
//
// Nested structs are not traversed.
func Struct[T any](owner *T, opts ...StructOption) ([]*Target, error) {
	option := &structOptions{}
	for _, opt := range opts {
		opt(option)
	}
	if option.tagName == "" {
		option.tagName = "kvsync"
	}

	typ := reflect.TypeFor[T]()
	if typ.Kind() != reflect.Struct {
		return nil, fmt.Errorf("struct %v: %w", typ, errNotStruct)
	}
	if option.owner == "" {
		option.owner = typ.String()
	}

	var targets []*Target
	for i := range typ.NumField() {
		field := typ.Field(i)
		tag, ok := field.Tag.Lookup(option.tagName)
		if !ok || tag == "-" || !field.IsExported() || field.Anonymous {
			continue
		}

		member, err := Field(owner, field.Name)
		if err != nil {
			return nil, err
		}
		defaultValue, hasDefault := field.Tag.Lookup("default")
		target, err := NewTarget(Descriptor{
			Owner:      option.owner,
			Member:     member,
			Keys:       strings.Split(tag, ","),
			Areas:      option.areas,
			Default:    defaultValue,
			HasDefault: hasDefault,
			Codec:      field.Tag.Get("codec"),
		})
		if err != nil {
			return nil, err
		}
		targets = append(targets, target)
	}

	return targets, nil
}
