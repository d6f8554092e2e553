// Copyright (c) 2023 The kvsync authors
// Use of this source code is governed by a MIT license found in the LICENSE file.

package kvsync

import (
	"log/slog"
	"reflect"
	"sync/atomic"

	"github.com/nil-go/kvsync/codec"
	"github.com/nil-go/kvsync/provider/env"
)

// Get returns the value of the key in the default Config,
// decoded with the codec.Registry of the Config.
// It returns zero value if the key does not exist or there is an error.
func Get[T any](key string) T { //nolint:ireturn
	var value T

	config := defaultConfig.Load()
	raw, ok := config.Get(key)
	if !ok {
		return value
	}

	value, err := codec.Decode[T](config.codecs(), raw)
	if err != nil {
		config.logger.Error(
			"Could not read config, return empty value instead.",
			"error", err,
			"key", key,
			"type", reflect.TypeOf(value),
		)
	}

	return value
}

// Unmarshal reads configuration under the given path from the default Config
// into the given object pointed to by target.
func Unmarshal(path string, target any) error {
	return defaultConfig.Load().Unmarshal(path, target)
}

// Default returns the default [Config].
func Default() *Config {
	return defaultConfig.Load()
}

// SetDefault makes c the default [Config].
// After this call, the kvsync package's top functions (e.g. kvsync.Get)
// will read from the default config.
func SetDefault(c *Config) {
	if c == nil {
		slog.Warn("Ignore nil config as the default config.")

		return
	}

	defaultConfig.Store(c)
}

var defaultConfig atomic.Pointer[Config] //nolint:gochecknoglobals

func init() { //nolint:gochecknoinits
	config := New("default")
	// Ignore error as env loader does not return error.
	_ = config.Load(env.New())
	defaultConfig.Store(config)
}
