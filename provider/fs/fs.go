// Copyright (c) 2024 The kvsync authors
// Use of this source code is governed by a MIT license found in the LICENSE file.

// Package fs provides a kvsync.Loader reading a file from an fs.FS,
// e.g. an embed.FS bundled into the binary.
//
// The format of the file is chosen the same way as in package file.
package fs

import (
	"io/fs"
	"os"

	"github.com/nil-go/kvsync/provider/internal/format"
)

// FS is a Loader that loads configuration from file system.
//
// To create a new FS, call [New].
type FS struct {
	fs        fs.FS
	path      string
	unmarshal func([]byte, any) error
}

// New creates a FS with the given fs.FS, path and Option(s).
// If fs is nil, it reads from the current working directory.
func New(fs fs.FS, path string, opts ...Option) FS {
	option := &options{
		fs:   fs,
		path: path,
	}
	for _, opt := range opts {
		opt(option)
	}

	return FS(*option)
}

func (f FS) Load() (map[string]any, error) {
	fsys := f.fs
	if fsys == nil {
		// Ignore error: It uses whatever returned.
		path, _ := os.Getwd()
		fsys = os.DirFS(path)
	}

	return format.Load(f.path, func(path string) ([]byte, error) { //nolint:wrapcheck
		return fs.ReadFile(fsys, path)
	}, f.unmarshal)
}

func (f FS) String() string {
	return "fs:" + f.path
}
