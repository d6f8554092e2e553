// Copyright (c) 2023 The kvsync authors
// Use of this source code is governed by a MIT license found in the LICENSE file.

//go:build appengine || !(darwin || dragonfly || freebsd || openbsd || linux || netbsd || solaris || windows)

package file

import (
	"context"
	"runtime"
)

func (f File) Watch(context.Context, func(map[string]any)) error {
	f.logger.Warn("File.Watch does not supported.", "os", runtime.GOOS, "file", f.path)

	return nil
}
