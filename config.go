// Copyright (c) 2024 The kvsync authors
// Use of this source code is governed by a MIT license found in the LICENSE file.

package kvsync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/mitchellh/mapstructure"

	"github.com/nil-go/kvsync/codec"
	"github.com/nil-go/kvsync/internal"
	"github.com/nil-go/kvsync/internal/credential"
	kmaps "github.com/nil-go/kvsync/internal/maps"
)

// Config is a named, ordered list of sources aggregated into a single view.
// Each source takes precedence over the sources before it, as far as the Policy
// of the Config decides so.
//
// To create a new Config, call [New].
// Reading from a Config is lock-free and concurrency-safe,
// and mutations are serialized.
type Config struct {
	nocopy internal.NoCopy[Config]

	// Options.
	name      string
	logger    *slog.Logger
	policy    Policy
	registry  *codec.Registry
	delimiter string
	tagName   string

	// Loaded configuration.
	state   atomic.Pointer[state]
	mutex   sync.Mutex // guards mutations and loaders
	loaders []loader

	// For watching changes.
	subscribers      map[*subscriber]struct{}
	subscribersMutex sync.RWMutex
	watched          atomic.Bool
}

type (
	state struct {
		sources []*Source
		values  map[string]string
	}
	loader struct {
		loader Loader
		name   string
	}
)

// New creates a new Config with the given name and Option(s).
func New(name string, opts ...Option) *Config {
	option := &options{}
	for _, opt := range opts {
		opt(option)
	}
	option.name = name
	if option.logger == nil {
		option.logger = slog.Default()
	}
	if option.policy == nil {
		option.policy = Override
	}
	if option.delimiter == "" {
		option.delimiter = "."
	}
	if option.tagName == "" {
		option.tagName = "kvsync"
	}
	option.subscribers = make(map[*subscriber]struct{})
	option.state.Store(&state{values: make(map[string]string)})

	return (*Config)(option)
}

// Name returns the name of the Config.
func (c *Config) Name() string {
	if c == nil {
		return ""
	}

	return c.name
}

// Load loads configuration from the given loaders and appends them as sources,
// each taking precedence over the sources before it.
//
// A loader which fails is still appended as an empty Source carrying the error,
// and loading continues with the other loaders. If the error is or wraps a *ConfigError,
// loading is aborted and the Config is left unchanged.
func (c *Config) Load(loaders ...Loader) error {
	c.nocopy.Check()

	c.mutex.Lock()
	defer c.mutex.Unlock()

	current := c.state.Load()
	sources := slices.Clone(current.sources)
	added := make([]loader, 0, len(loaders))
	for _, ldr := range loaders {
		if ldr == nil || reflect.ValueOf(ldr).Kind() == reflect.Pointer && reflect.ValueOf(ldr).IsNil() {
			return errNilLoader
		}

		name := fmt.Sprint(ldr)
		if slices.ContainsFunc(sources, func(source *Source) bool { return source.Name() == name }) {
			return fmt.Errorf("load %s: %w", name, errDuplicateSource)
		}

		source, err := c.read(ldr, name)
		if err != nil {
			return fmt.Errorf("load configuration: %w", err)
		}
		sources = append(sources, source)
		added = append(added, loader{loader: ldr, name: name})
	}

	if err := c.commit(sources); err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	c.loaders = append(c.loaders, added...)
	for _, source := range sources[len(current.sources):] {
		c.publish(Diff(source.Name(), nil, source.entries))
	}

	return nil
}

func (c *Config) read(ldr Loader, name string) (*Source, error) {
	values, err := ldr.Load()
	if err != nil {
		var fatal *ConfigError
		if errors.As(err, &fatal) {
			return nil, fmt.Errorf("load %s: %w", name, err)
		}

		c.logger.LogAttrs(
			context.Background(), slog.LevelWarn,
			"Error when loading configuration, continue with other loaders.",
			slog.String("loader", name),
			slog.Any("error", err),
		)

		return NewSource(name, nil, WithOrigins(name), WithErrors(err)), nil
	}

	return NewSource(name, kmaps.Flatten(values, c.delimiter), WithOrigins(name)), nil
}

// Add appends the given sources, each taking precedence over the sources before it.
// The names of sources must be unique within the Config.
func (c *Config) Add(sources ...*Source) error {
	c.nocopy.Check()

	c.mutex.Lock()
	defer c.mutex.Unlock()

	current := c.state.Load()
	merged := slices.Clone(current.sources)
	for _, source := range sources {
		if source == nil {
			return errNilSource
		}
		if slices.ContainsFunc(merged, func(s *Source) bool { return s.Name() == source.Name() }) {
			return fmt.Errorf("add %s: %w", source.Name(), errDuplicateSource)
		}
		merged = append(merged, source)
	}

	if err := c.commit(merged); err != nil {
		return err
	}
	for _, source := range sources {
		c.publish(Diff(source.Name(), nil, source.entries))
	}

	return nil
}

// Update replaces the source which has the same name as the given source,
// keeping its precedence, and publishes the ChangeSet between them to subscribers.
// It returns the ChangeSet, which is empty if nothing has changed.
func (c *Config) Update(source *Source) (ChangeSet, error) {
	c.nocopy.Check()

	if source == nil {
		return ChangeSet{}, errNilSource
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	current := c.state.Load()
	index := slices.IndexFunc(current.sources, func(s *Source) bool { return s.Name() == source.Name() })
	if index < 0 {
		return ChangeSet{}, fmt.Errorf("update %s: %w", source.Name(), errUnknownSource)
	}

	changes := Diff(source.Name(), current.sources[index].entries, source.entries)
	sources := slices.Clone(current.sources)
	sources[index] = source
	if err := c.commit(sources); err != nil {
		return ChangeSet{}, err
	}
	c.publish(changes)

	return changes, nil
}

// Remove removes the source with the given name, and publishes the removal of all its keys.
func (c *Config) Remove(name string) (ChangeSet, error) {
	c.nocopy.Check()

	c.mutex.Lock()
	defer c.mutex.Unlock()

	current := c.state.Load()
	index := slices.IndexFunc(current.sources, func(s *Source) bool { return s.Name() == name })
	if index < 0 {
		return ChangeSet{}, fmt.Errorf("remove %s: %w", name, errUnknownSource)
	}

	changes := Diff(name, current.sources[index].entries, nil)
	if err := c.commit(slices.Delete(slices.Clone(current.sources), index, index+1)); err != nil {
		return ChangeSet{}, err
	}
	c.loaders = slices.DeleteFunc(c.loaders, func(l loader) bool { return l.name == name })
	c.publish(changes)

	return changes, nil
}

// Reorder changes the precedence of sources to the order of the given names,
// which must name every source of the Config exactly once.
// Since no single source has changed, the ChangeSet of the aggregated view is published
// under the name of the Config.
func (c *Config) Reorder(names ...string) (ChangeSet, error) {
	c.nocopy.Check()

	c.mutex.Lock()
	defer c.mutex.Unlock()

	current := c.state.Load()
	if len(names) != len(current.sources) {
		return ChangeSet{}, fmt.Errorf("reorder %v: %w", names, errInvalidOrder)
	}
	sources := make([]*Source, 0, len(names))
	for _, name := range names {
		index := slices.IndexFunc(current.sources, func(s *Source) bool { return s.Name() == name })
		if index < 0 || slices.Contains(sources, current.sources[index]) {
			return ChangeSet{}, fmt.Errorf("reorder %v: %w", names, errInvalidOrder)
		}
		sources = append(sources, current.sources[index])
	}

	if err := c.commit(sources); err != nil {
		return ChangeSet{}, err
	}
	changes := Diff(c.name, current.values, c.state.Load().values)
	c.publish(changes)

	return changes, nil
}

func (c *Config) commit(sources []*Source) error {
	values, err := Aggregate(sources, c.policy)
	if err != nil {
		return err
	}
	c.state.Store(&state{sources: sources, values: values})

	return nil
}

// Sources returns the sources of the Config in precedence order, lowest first.
func (c *Config) Sources() []*Source {
	if c == nil {
		return nil
	}

	return slices.Clone(c.state.Load().sources)
}

// Source returns the source with the given name.
func (c *Config) Source(name string) (*Source, bool) {
	for _, source := range c.Sources() {
		if source.Name() == name {
			return source, true
		}
	}

	return nil, false
}

// Properties returns a copy of the aggregated view.
func (c *Config) Properties() map[string]string {
	if c == nil {
		return make(map[string]string)
	}

	values := c.state.Load().values
	properties := make(map[string]string, len(values))
	for key, value := range values {
		properties[key] = value
	}

	return properties
}

// Get returns the aggregated value of the key and whether the key exists.
func (c *Config) Get(key string) (string, bool) {
	if c == nil {
		return "", false
	}

	value, ok := c.state.Load().values[key]

	return value, ok
}

// Exists reports whether the key exists in the aggregated view.
func (c *Config) Exists(key string) bool {
	_, ok := c.Get(key)

	return ok
}

// Errors returns the failures recorded on all sources while loading, or nil if there is none.
func (c *Config) Errors() error {
	var errs []error
	for _, source := range c.Sources() {
		for _, err := range source.Errors() {
			errs = append(errs, fmt.Errorf("source %s: %w", source.Name(), err))
		}
	}

	return errors.Join(errs...)
}

// Unmarshal reads configuration under the given path from the Config
// and decodes it into the given object pointed to by target.
// Keys are split into nested paths by the delimiter of the Config.
//
// Strings are decoded with the codec.Registry of the Config if it supports the target type.
func (c *Config) Unmarshal(path string, target any) error {
	if c == nil {
		return nil
	}

	c.nocopy.Check()

	values := c.state.Load().values
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	// Parent keys are shadowed by their children.
	slices.Sort(keys)
	nested := make(map[string]any)
	for _, key := range keys {
		kmaps.Insert(nested, strings.Split(key, c.delimiter), values[key])
	}

	decoder, err := mapstructure.NewDecoder(
		&mapstructure.DecoderConfig{
			Result:           target,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				codecHook(c.codecs()),
				mapstructure.StringToSliceHookFunc(","),
				mapstructure.TextUnmarshallerHookFunc(),
			),
			TagName: c.tagName,
		},
	)
	if err != nil {
		return fmt.Errorf("new decoder: %w", err)
	}

	var split []string
	if path != "" {
		split = strings.Split(path, c.delimiter)
	}
	if err := decoder.Decode(kmaps.Sub(nested, split)); err != nil {
		return fmt.Errorf("decode: %w", err)
	}

	return nil
}

func (c *Config) codecs() *codec.Registry {
	if c.registry != nil {
		return c.registry
	}

	return codec.Default()
}

func codecHook(registry *codec.Registry) mapstructure.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if from.Kind() != reflect.String || to.Kind() == reflect.String {
			return data, nil
		}

		valueCodec, err := registry.Codec(to, nil)
		if err != nil {
			// Leave it to mapstructure.
			return data, nil //nolint:nilerr
		}

		return valueCodec.Decode(reflect.ValueOf(data).String()) //nolint:wrapcheck
	}
}

// Explain provides information about how Config resolves the value of the given key
// from its sources. It blurs sensitive information.
//
// The value is credited to the source whose value was kept last by the Policy,
// e.g. the lowest precedence source for FirstWins.
// If the value does not come from a single source, e.g. for Combine,
// it lists the value of every contributing source.
func (c *Config) Explain(key string) string {
	if c == nil {
		return key + " has no configuration.\n\n"
	}
	current := c.state.Load()
	value, ok := current.values[key]
	if !ok {
		return key + " has no configuration.\n\n"
	}

	type sourceValue struct {
		source string
		value  string
	}
	var (
		sources     []sourceValue
		winner      = -1
		accumulated string
		present     bool
	)
	for _, source := range current.sources {
		v, ok := source.Get(key)
		if !ok {
			continue
		}
		sources = append(sources, sourceValue{source.Name(), v})

		next, keep, err := c.policy.Aggregate(key, accumulated, present, v)
		if err != nil {
			break // The committed values have no conflict.
		}
		switch {
		case !keep:
			accumulated, present, winner = "", false, -1
		case !present || next != accumulated:
			accumulated, present, winner = next, true, len(sources)-1
		}
	}

	explanation := &strings.Builder{}
	writeValues := func(values []sourceValue) {
		for _, source := range slices.Backward(values) {
			explanation.WriteString("  - ")
			explanation.WriteString(credential.Blur(key, source.value))
			explanation.WriteString("(")
			explanation.WriteString(source.source)
			explanation.WriteString(")\n")
		}
	}
	explanation.WriteString(key)
	explanation.WriteString(" has value[")
	explanation.WriteString(credential.Blur(key, value))
	if winner >= 0 && sources[winner].value == value {
		explanation.WriteString("] that is loaded by source[")
		explanation.WriteString(sources[winner].source)
		explanation.WriteString("].\n")
		others := slices.Delete(slices.Clone(sources), winner, winner+1)
		if len(others) > 0 {
			explanation.WriteString("Here are other value(source)s:\n")
			writeValues(others)
		}
	} else {
		explanation.WriteString("] that is aggregated from sources.\n")
		explanation.WriteString("Here are value(source)s:\n")
		writeValues(sources)
	}
	explanation.WriteString("\n")

	return explanation.String()
}

func (c *Config) String() string {
	return c.Name()
}

var (
	errNilLoader       = errors.New("cannot load config from nil loader")
	errNilSource       = errors.New("cannot add nil source")
	errDuplicateSource = errors.New("source name already exists")
	errUnknownSource   = errors.New("source does not exist")
	errInvalidOrder    = errors.New("names must list every source exactly once")
)
