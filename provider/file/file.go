// Copyright (c) 2024 The kvsync authors
// Use of this source code is governed by a MIT license found in the LICENSE file.

// Package file provides a kvsync.Loader reading a file from the OS file system.
//
// The content is unmarshaled into a nested map[string]any, and an empty file
// loads as an empty map. Unless WithUnmarshal is given, the format follows the
// file extension (.yaml/.yml, .toml, .jsonc, .env), with JSON as the fallback.
//
// A missing file is an error unless IgnoreFileNotExit is given,
// in which case it loads as an empty map and logs a warning.
package file

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"github.com/nil-go/kvsync/provider/internal/format"
)

// File is a Loader that loads configuration from a OS file.
// It is also a Watcher on platforms supported by fsnotify.
//
// To create a new File, call [New].
type File struct {
	logger         *slog.Logger
	path           string
	unmarshal      func([]byte, any) error
	ignoreNotExist bool
}

// New creates a File with the given path and Option(s).
//
// It panics if the path is empty.
func New(path string, opts ...Option) File {
	if path == "" {
		panic("cannot create File with empty path")
	}

	option := &options{
		path: path,
	}
	for _, opt := range opts {
		opt(option)
	}
	if option.logger == nil {
		option.logger = slog.Default()
	}

	return File(*option)
}

func (f File) Load() (map[string]any, error) {
	values, err := format.Load(f.path, os.ReadFile, f.unmarshal)
	if err != nil && f.ignoreNotExist && errors.Is(err, fs.ErrNotExist) {
		f.logger.Warn("Config file does not exist.", "file", f.path)

		return make(map[string]any), nil
	}

	return values, err //nolint:wrapcheck
}

func (f File) String() string {
	return "file:" + f.path
}
