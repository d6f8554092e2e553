// Copyright (c) 2025 The kvsync authors
// Use of this source code is governed by a MIT license found in the LICENSE file.

// Package format reads configuration files and unmarshals them into nested maps.
package format

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// ByExtension returns the unmarshal function for the file extension of path.
// It supports YAML (.yaml, .yml), TOML (.toml), JSON with comments (.jsonc)
// and dotenv (.env), and falls back to JSON.
func ByExtension(path string) func([]byte, any) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal
	case ".toml":
		return toml.Unmarshal
	case ".jsonc":
		return JSONC
	case ".env":
		return Dotenv
	default:
		return json.Unmarshal
	}
}

// Load reads the file at path with read, and unmarshals its content with unmarshal.
// If unmarshal is nil, it is picked by [ByExtension].
//
// Errors from read are wrapped so errors.Is(err, fs.ErrNotExist) still holds.
func Load(path string, read func(string) ([]byte, error), unmarshal func([]byte, any) error) (map[string]any, error) {
	data, err := read(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	if unmarshal == nil {
		unmarshal = ByExtension(path)
	}

	return Decode(data, unmarshal)
}

// Decode unmarshals data into a nested map. Empty content decodes into an empty map.
func Decode(data []byte, unmarshal func([]byte, any) error) (map[string]any, error) {
	var values map[string]any
	if err := unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}
	if values == nil {
		values = make(map[string]any)
	}

	return values, nil
}

// JSONC unmarshals JSON with comments and trailing commas.
func JSONC(data []byte, v any) error {
	return json.Unmarshal(jsonc.ToJSON(data), v) //nolint:wrapcheck
}

// Dotenv unmarshals `KEY=value` lines into v, which must be *map[string]any.
// Keys are kept as they are in the file.
func Dotenv(data []byte, v any) error {
	values, ok := v.(*map[string]any)
	if !ok {
		return fmt.Errorf("unmarshal dotenv into %T: %w", v, errUnsupportedTarget)
	}

	env, err := godotenv.Unmarshal(string(data))
	if err != nil {
		return fmt.Errorf("unmarshal dotenv: %w", err)
	}
	*values = make(map[string]any, len(env))
	for key, value := range env {
		(*values)[key] = value
	}

	return nil
}

var errUnsupportedTarget = errors.New("unsupported target")
