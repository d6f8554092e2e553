// Copyright (c) 2025 The kvsync authors
// Use of this source code is governed by a MIT license found in the LICENSE file.

package bind

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"runtime"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/nil-go/kvsync"
	"github.com/nil-go/kvsync/codec"
)

// View is a named key/value view of configuration, e.g. *kvsync.Config or *kvsync.Source.
type View interface {
	Name() string
	Get(key string) (string, bool)
}

// Observable is a View which publishes its changes, e.g. *kvsync.Config.
type Observable interface {
	View
	Subscribe(onChange func(kvsync.ChangeSet)) func()
}

// Binder binds targets to configuration and keeps them up to date.
//
// To create a new Binder, call [New].
type Binder struct {
	registry    *codec.Registry
	ignore      map[string]struct{}
	concurrency int
	logger      *slog.Logger
	onError     func(error)

	targets      map[*Target]struct{}
	targetsMutex sync.RWMutex
}

// New creates a Binder which decodes values with the given codec.Registry
// and the given Option(s).
//
// If registry is nil, it uses codec.Default().
func New(registry *codec.Registry, opts ...Option) *Binder {
	option := &options{
		ignore: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(option)
	}
	option.registry = registry
	if option.registry == nil {
		option.registry = codec.Default()
	}
	if option.concurrency <= 0 {
		option.concurrency = runtime.GOMAXPROCS(0)
	}
	if option.logger == nil {
		option.logger = slog.Default()
	}
	if option.onError == nil {
		logger := option.logger
		option.onError = func(err error) {
			logger.LogAttrs(context.Background(), slog.LevelError, "Error when applying configuration change.", slog.Any("error", err))
		}
	}
	option.targets = make(map[*Target]struct{})

	return (*Binder)(option)
}

// Bind applies the value of the target from the resolving configuration, and keeps the target bound for OnChange.
// Later configurations have higher precedence, so the resolving configuration is
// the last one whose name is not ignored.
// The first present candidate key wins. If none is present, the default value is applied
// if there is one, otherwise the member is left untouched.
//
// The target is not bound if it returns an error.
func (b *Binder) Bind(target *Target, configs ...View) error {
	if target == nil {
		return errNilTarget
	}

	view := b.resolving(configs)
	if view == nil {
		return &BindingError{
			Owner:  target.descriptor.Owner,
			Member: target.descriptor.Member.Name(),
			Err:    errNoConfiguration,
		}
	}

	b.targetsMutex.Lock()
	b.targets[target] = struct{}{}
	b.targetsMutex.Unlock()
	if err := b.apply(target, view, false); err != nil {
		b.Unbind(target)

		return err
	}

	return nil
}

// Unbind stops applying changes to the target.
func (b *Binder) Unbind(target *Target) {
	b.targetsMutex.Lock()
	delete(b.targets, target)
	b.targetsMutex.Unlock()
}

// Bound reports whether the target is bound.
func (b *Binder) Bound(target *Target) bool {
	b.targetsMutex.RLock()
	defer b.targetsMutex.RUnlock()

	_, ok := b.targets[target]

	return ok
}

// OnChange re-applies the values of all bound targets matching keys in the ChangeSet,
// resolving them from the configurations in the same way as Bind.
// A removed key falls back to other candidate keys, then the default value,
// then the zero value of the member.
//
// The ChangeSet is ignored if its source is ignored, or is any of the given configurations
// other than the resolving one, since the change is masked by the resolving configuration.
// Targets are applied in parallel, and errors from all targets are joined.
func (b *Binder) OnChange(changes kvsync.ChangeSet, configs ...View) error {
	view := b.resolving(configs)
	if view == nil || changes.IsEmpty() {
		return nil
	}
	if _, ok := b.overridden(view, configs)[changes.Source()]; ok {
		b.logger.LogAttrs(
			context.Background(), slog.LevelDebug,
			"Ignore configuration change as it is overridden.",
			slog.String("source", changes.Source()),
			slog.String("config", view.Name()),
		)

		return nil
	}

	var matched []*Target
	b.targetsMutex.RLock()
	for target := range b.targets {
		for _, key := range changes.Keys() {
			if target.Matches(key) {
				matched = append(matched, target)

				break
			}
		}
	}
	b.targetsMutex.RUnlock()

	var (
		errs      []error
		errsMutex sync.Mutex
		group     errgroup.Group
	)
	group.SetLimit(b.concurrency)
	for _, target := range matched {
		group.Go(func() error {
			if err := b.apply(target, view, true); err != nil {
				errsMutex.Lock()
				errs = append(errs, err)
				errsMutex.Unlock()
			}

			return nil
		})
	}
	_ = group.Wait() // Errors are collected into errs.

	return errors.Join(errs...)
}

// Attach subscribes to all given configurations and applies their changes with OnChange.
// Errors are reported to the error handler of the Binder.
// It returns a function that cancels all subscriptions.
func (b *Binder) Attach(configs ...Observable) func() {
	views := make([]View, 0, len(configs))
	for _, config := range configs {
		views = append(views, config)
	}

	cancels := make([]func(), 0, len(configs))
	for _, config := range configs {
		cancels = append(cancels, config.Subscribe(func(changes kvsync.ChangeSet) {
			view := b.resolving(views)
			if view == nil {
				return
			}
			// ChangeSets from a Config are named after its sources, not the Config.
			if _, ok := b.overridden(view, views)[config.Name()]; ok {
				return
			}
			if err := b.OnChange(changes, views...); err != nil {
				b.onError(err)
			}
		}))
	}

	return func() {
		for _, cancel := range cancels {
			cancel()
		}
	}
}

// resolving returns the configuration with the highest precedence which is not ignored.
// Like sources in a Config, later configurations have higher precedence.
func (b *Binder) resolving(configs []View) View { //nolint:ireturn
	for _, config := range slices.Backward(configs) {
		if config == nil {
			continue
		}
		if _, ok := b.ignore[config.Name()]; !ok {
			return config
		}
	}

	return nil
}

func (b *Binder) overridden(view View, configs []View) map[string]struct{} {
	names := make(map[string]struct{}, len(b.ignore)+len(configs))
	for name := range b.ignore {
		names[name] = struct{}{}
	}
	for _, config := range configs {
		if config != nil && config.Name() != view.Name() {
			names[config.Name()] = struct{}{}
		}
	}

	return names
}

func (b *Binder) apply(target *Target, view View, reset bool) error {
	target.mutex.Lock()
	defer target.mutex.Unlock()

	key, value, ok := target.resolve(view)
	switch {
	case ok:
	case target.descriptor.HasDefault:
		value = target.descriptor.Default
	case reset:
		return b.set(target, "", nil)
	default:
		return nil
	}

	valueCodec, err := target.codec(b.registry)
	if err != nil {
		return b.fail(target, key, err)
	}
	decoded, err := valueCodec.Decode(value)
	if err != nil {
		return b.fail(target, key, err)
	}

	return b.set(target, key, decoded)
}

func (b *Binder) set(target *Target, key string, value any) error {
	if err := target.descriptor.Member.Set(value); err != nil {
		if errors.Is(err, ErrOwnerGone) {
			b.Unbind(target)
			b.logger.LogAttrs(
				context.Background(), slog.LevelDebug,
				"Unbind target as its owner has been collected.",
				slog.String("target", target.String()),
			)

			return nil
		}

		return b.fail(target, key, err)
	}

	b.logger.LogAttrs(
		context.Background(), slog.LevelDebug,
		"Configuration has been applied.",
		slog.String("target", target.String()),
		slog.String("key", key),
		slog.String("type", fmt.Sprint(reflect.TypeOf(value))),
	)

	return nil
}

func (b *Binder) fail(target *Target, key string, err error) error {
	return &BindingError{
		Owner:  target.descriptor.Owner,
		Member: target.descriptor.Member.Name(),
		Key:    key,
		Err:    err,
	}
}

var (
	errNilTarget       = errors.New("cannot bind nil target")
	errNoConfiguration = errors.New("no configuration which is not ignored")
)
