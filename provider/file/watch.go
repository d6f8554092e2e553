// Copyright (c) 2024 The kvsync authors
// Use of this source code is governed by a MIT license found in the LICENSE file.

//go:build !appengine && (darwin || dragonfly || freebsd || openbsd || linux || netbsd || solaris || windows)

package file

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch watches the file and calls onChange with the reloaded configuration
// whenever it is created or written, or with nil when it is removed.
// A file which fails to reload is logged and skipped,
// so that the previous configuration stays in effect.
//
// It blocks until ctx is done, or it fails to start watching.
func (f File) Watch(ctx context.Context, onChange func(map[string]any)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher for %s: %w", f.path, err)
	}
	defer func() {
		if e := watcher.Close(); e != nil {
			f.logger.LogAttrs(
				ctx, slog.LevelWarn,
				"Error when closing file watcher.",
				slog.String("file", f.path),
				slog.Any("error", e),
			)
		}
	}()

	// Although only a single file is being watched, fsnotify has to watch
	// the whole parent directory to pick up all events such as symlink changes.
	dir, _ := filepath.Split(f.path)
	if dir == "" {
		dir = "."
	}
	if e := watcher.Add(dir); e != nil {
		return fmt.Errorf("watch dir %s: %w", dir, e)
	}

	// Resolve symlinks so that changes to the target of a symlink can be detected.
	realPath, err := filepath.EvalSymlinks(f.path)
	if err != nil && !f.ignoreNotExist {
		return fmt.Errorf("eval symlink: %w", err)
	}
	if realPath != "" {
		realPath = filepath.Clean(realPath)
	}

	var (
		lastEvent     string
		lastEventTime time.Time
	)
	for {
		select {
		case event := <-watcher.Events:
			// Certain events fire multiple times on some platforms.
			if event.String() == lastEvent && time.Since(lastEventTime) < debounce {
				continue
			}
			lastEvent = event.String()
			lastEventTime = time.Now()

			if file := filepath.Clean(event.Name); file != realPath && file != filepath.Clean(f.path) {
				continue
			}
			f.handle(ctx, event, onChange)

		case err := <-watcher.Errors:
			f.logger.LogAttrs(
				ctx, slog.LevelWarn,
				"Error when watching file.",
				slog.String("file", f.path),
				slog.Any("error", err),
			)

		case <-ctx.Done():
			return nil
		}
	}
}

func (f File) handle(ctx context.Context, event fsnotify.Event, onChange func(map[string]any)) {
	switch {
	case event.Has(fsnotify.Remove):
		f.logger.LogAttrs(
			ctx, slog.LevelWarn,
			"Config file has been removed.",
			slog.String("file", f.path),
		)
		onChange(nil)
	case event.Has(fsnotify.Create) || event.Has(fsnotify.Write):
		values, err := f.Load()
		if err != nil {
			f.logger.LogAttrs(
				ctx, slog.LevelWarn,
				"Error when reloading config file.",
				slog.String("file", f.path),
				slog.Any("error", err),
			)

			return
		}
		onChange(values)
	}
}

const debounce = 5 * time.Millisecond
