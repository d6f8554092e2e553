// Copyright (c) 2023 The kvsync authors
// Use of this source code is governed by a MIT license found in the LICENSE file.

// Package env loads configuration from environment variables.
//
// Env loads all environment variables and returns a nested map[string]any
// by lower-casing the names and splitting them by `_`. E.g. the environment variable
// `PARENT_CHILD_KEY="1"` is loaded as `{parent: {child: {key: "1"}}}`,
// which is the key `parent.child.key` in a Config with the default delimiter.
// The environment variables with empty value are treated as unset.
//
// The default behavior can be changed with following options:
//   - WithPrefix enables loads environment variables with the given prefix in the name.
//   - WithNameSplitter provides the function to split environment variable name to nested keys.
package env

import (
	"os"
	"strings"

	"github.com/nil-go/kvsync/internal/maps"
)

// Env is a Loader that loads configuration from environment variables.
//
// To create a new Env, call [New].
type Env struct {
	_        [0]func() // Ensure it's incomparable.
	prefix   string
	splitter func(string) []string
}

// New creates an Env with the given Option(s).
func New(opts ...Option) Env {
	option := &options{}
	for _, opt := range opts {
		opt(option)
	}

	return Env(*option)
}

func (e Env) Load() (map[string]any, error) {
	splitter := e.splitter
	if splitter == nil {
		splitter = func(name string) []string {
			return strings.Split(strings.ToLower(name), "_")
		}
	}

	values := make(map[string]any)
	for _, env := range os.Environ() {
		if e.prefix == "" || strings.HasPrefix(env, e.prefix) {
			name, value, _ := strings.Cut(env, "=")
			if value == "" {
				// The environment variable with empty value is treated as unset.
				continue
			}

			keys := splitter(name)
			if len(keys) == 0 || len(keys) == 1 && keys[0] == "" {
				continue
			}
			maps.Insert(values, keys, value)
		}
	}

	return values, nil
}

func (e Env) String() string {
	if e.prefix == "" {
		return "env"
	}

	return "env:" + e.prefix
}
