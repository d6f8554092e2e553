// Copyright (c) 2024 The kvsync authors
// Use of this source code is governed by a MIT license found in the LICENSE file.

package kvsync

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	kmaps "github.com/nil-go/kvsync/internal/maps"
)

// Watch watches and updates configuration when it changes.
// It blocks until ctx is done, or any watcher returns an error.
// WARNING: All loaders passed in Load after calling Watch do not get watched.
//
// It only can be called once. Call after first has no effects.
// It panics if ctx is nil.
func (c *Config) Watch(ctx context.Context) error {
	if ctx == nil {
		panic("cannot watch change with nil context")
	}

	c.nocopy.Check()

	c.mutex.Lock()
	var watchers []loader
	for _, ldr := range c.loaders {
		if _, ok := ldr.loader.(Watcher); ok {
			watchers = append(watchers, ldr)
		}
	}
	c.mutex.Unlock()
	if len(watchers) == 0 {
		return nil
	}

	if c.watched.Swap(true) {
		c.logger.LogAttrs(ctx, slog.LevelWarn, "Config has been watched, call Watch again has no effects.")

		return nil
	}

	group, ctx := errgroup.WithContext(ctx)
	for _, ldr := range watchers {
		watcher := ldr.loader.(Watcher) //nolint:errcheck,forcetypeassert
		group.Go(func() error {
			onChange := func(values map[string]any) {
				c.refresh(ctx, ldr.name, values)
			}

			c.logger.LogAttrs(ctx, slog.LevelDebug, "Watching configuration change.", slog.String("loader", ldr.name))
			if err := watcher.Watch(ctx, onChange); err != nil {
				return fmt.Errorf("watch configuration change on %s: %w", ldr.name, err)
			}

			return nil
		})
	}

	return group.Wait() //nolint:wrapcheck
}

func (c *Config) refresh(ctx context.Context, name string, values map[string]any) {
	source, ok := c.Source(name)
	if !ok {
		// The source has been removed after watching started.
		return
	}

	refreshed, _ := source.Refresh(kmaps.Flatten(values, c.delimiter))
	changes, err := c.Update(refreshed)
	if err != nil {
		c.logger.LogAttrs(
			ctx, slog.LevelWarn,
			"Error when applying configuration change.",
			slog.String("loader", name),
			slog.Any("error", err),
		)

		return
	}
	if changes.IsEmpty() {
		return
	}

	c.logger.LogAttrs(
		ctx, slog.LevelInfo,
		"Configuration has been changed.",
		slog.String("loader", name),
	)
}

// Subscribe registers a callback function that is executed with every non-empty ChangeSet
// produced by a mutation of the Config, and returns a function to cancel the subscription.
//
// Each subscriber receives ChangeSets in mutation order on its own goroutine,
// so a slow subscriber neither blocks the mutation nor other subscribers.
//
// This method is concurrency-safe.
// It panics if onChange is nil.
func (c *Config) Subscribe(onChange func(ChangeSet)) func() {
	if onChange == nil {
		panic("cannot subscribe with nil onChange")
	}

	sub := &subscriber{
		onChange: onChange,
		logger:   c.logger,
		signal:   make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	c.subscribersMutex.Lock()
	c.subscribers[sub] = struct{}{}
	c.subscribersMutex.Unlock()
	go sub.run()

	var once sync.Once

	return func() {
		once.Do(func() {
			c.subscribersMutex.Lock()
			delete(c.subscribers, sub)
			c.subscribersMutex.Unlock()
			close(sub.done)
		})
	}
}

// publish must be called while holding c.mutex so that subscribers
// receive ChangeSets in mutation order.
func (c *Config) publish(changes ChangeSet) {
	if changes.IsEmpty() {
		return
	}

	c.subscribersMutex.RLock()
	defer c.subscribersMutex.RUnlock()

	for sub := range c.subscribers {
		sub.push(changes)
	}
}

type subscriber struct {
	onChange func(ChangeSet)
	logger   *slog.Logger

	queue      []ChangeSet
	queueMutex sync.Mutex
	signal     chan struct{}
	done       chan struct{}
}

func (s *subscriber) push(changes ChangeSet) {
	s.queueMutex.Lock()
	s.queue = append(s.queue, changes)
	s.queueMutex.Unlock()

	select {
	case s.signal <- struct{}{}:
	default:
	}
}

func (s *subscriber) pop() (ChangeSet, bool) {
	s.queueMutex.Lock()
	defer s.queueMutex.Unlock()

	if len(s.queue) == 0 {
		return ChangeSet{}, false
	}
	changes := s.queue[0]
	s.queue = s.queue[1:]

	return changes, true
}

func (s *subscriber) run() {
	for {
		select {
		case <-s.done:
			return
		case <-s.signal:
			for changes, ok := s.pop(); ok; changes, ok = s.pop() {
				select {
				case <-s.done:
					return
				default:
				}
				s.deliver(changes)
			}
		}
	}
}

func (s *subscriber) deliver(changes ChangeSet) {
	defer func() {
		if recovered := recover(); recovered != nil {
			s.logger.LogAttrs(
				context.Background(), slog.LevelError,
				"Panic when handling configuration change.",
				slog.String("source", changes.Source()),
				slog.Any("panic", recovered),
			)
		}
	}()

	s.onChange(changes)
}
