// Copyright (c) 2025 The kvsync authors
// Use of this source code is governed by a MIT license found in the LICENSE file.

package bind

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/nil-go/kvsync/codec"
)

// Descriptor describes how a Member is bound to configuration.
type Descriptor struct {
	// Owner is the name of the owner type used in diagnostics.
	Owner string
	// Member is the member which values are applied to.
	Member Member
	// Keys are the candidate keys in order, and the first present key wins.
	// A key enclosed in brackets, e.g. `[server.port]`, is absolute and not prefixed by Areas.
	Keys []string
	// Areas prefix each relative key, e.g. the area `app` turns the key `timeout` into `app.timeout`.
	Areas []string
	// Default is applied if none of the keys is present, and HasDefault is true.
	Default    string
	HasDefault bool
	// Codec is the name of the codec.Factory registered in the codec.Registry
	// that overrides the registered Codec for the type of the member.
	Codec string
	// Factory overrides the registered Codec for the type of the member.
	// It takes precedence over Codec.
	Factory codec.Factory
}

// Target is a Member bound to its candidate keys.
//
// To create a new Target, call [NewTarget] or [Struct].
type Target struct {
	descriptor Descriptor
	keys       []string

	mutex sync.Mutex // serializes applying values
}

// NewTarget creates a Target with the given Descriptor.
func NewTarget(descriptor Descriptor) (*Target, error) {
	if descriptor.Member == nil {
		return nil, errNilMember
	}

	keys := Keys(descriptor.Keys, descriptor.Areas...)
	if len(keys) == 0 {
		return nil, fmt.Errorf("target %s.%s: %w", descriptor.Owner, descriptor.Member.Name(), errNoKeys)
	}

	return &Target{descriptor: descriptor, keys: keys}, nil
}

// Keys expands keys with the given areas in order.
// Relative keys are prefixed by each area, while absolute keys in brackets are only unwrapped.
// Empty and duplicate keys are dropped.
func Keys(keys []string, areas ...string) []string {
	expanded := make([]string, 0, len(keys)*max(len(areas), 1))
	add := func(key string) {
		if key != "" && !slices.Contains(expanded, key) {
			expanded = append(expanded, key)
		}
	}

	for _, key := range keys {
		key = strings.TrimSpace(key)
		if strings.HasPrefix(key, "[") && strings.HasSuffix(key, "]") {
			add(strings.TrimSpace(key[1 : len(key)-1]))

			continue
		}
		if key == "" {
			continue
		}
		if len(areas) == 0 {
			add(key)

			continue
		}
		for _, area := range areas {
			if area = strings.Trim(area, "."); area == "" {
				add(key)
			} else {
				add(area + "." + key)
			}
		}
	}

	return expanded
}

// Descriptor returns the Descriptor of the Target.
func (t *Target) Descriptor() Descriptor {
	return t.descriptor
}

// Keys returns the candidate keys of the Target after expanding areas.
func (t *Target) Keys() []string {
	return slices.Clone(t.keys)
}

// Matches reports whether the key is one of candidate keys of the Target.
func (t *Target) Matches(key string) bool {
	return slices.Contains(t.keys, key)
}

func (t *Target) String() string {
	return t.descriptor.Owner + "." + t.descriptor.Member.Name()
}

func (t *Target) resolve(view View) (key, value string, ok bool) {
	for _, key := range t.keys {
		if value, ok := view.Get(key); ok {
			return key, value, true
		}
	}

	return "", "", false
}

func (t *Target) codec(registry *codec.Registry) (codec.Codec, error) { //nolint:ireturn
	typ := t.descriptor.Member.Type()
	if t.descriptor.Factory != nil {
		return registry.Codec(typ, t.descriptor.Factory) //nolint:wrapcheck
	}

	return registry.Named(typ, t.descriptor.Codec) //nolint:wrapcheck
}

var (
	errNilMember = errors.New("cannot bind nil member")
	errNoKeys    = errors.New("no candidate key")
)
