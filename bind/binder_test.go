// Copyright (c) 2025 The kvsync authors
// Use of this source code is governed by a MIT license found in the LICENSE file.

package bind_test

import (
	"errors"
	"log/slog"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nil-go/kvsync"
	"github.com/nil-go/kvsync/bind"
	"github.com/nil-go/kvsync/codec"
	"github.com/nil-go/kvsync/internal/assert"
)

type level int

func levelCodec() (codec.Codec, error) { //nolint:ireturn
	return codec.Func(
		func(s string) (level, error) {
			switch strings.ToLower(s) {
			case "debug":
				return -4, nil
			case "info":
				return 0, nil
			default:
				return 0, errors.New("unknown level") //nolint:err113
			}
		},
		func(l level) string { return strconv.Itoa(int(l)) },
	), nil
}

func newConfig(t *testing.T, name string, entries map[string]string) *kvsync.Config {
	t.Helper()

	config := kvsync.New(name, kvsync.WithLogHandler(slog.DiscardHandler))
	assert.NoError(t, config.Add(kvsync.NewSource(name, entries)))

	return config
}

func newTarget(t *testing.T, owner *settings, field string, keys ...string) *bind.Target {
	t.Helper()

	member, err := bind.Field(owner, field)
	assert.NoError(t, err)
	target, err := bind.NewTarget(bind.Descriptor{Owner: "settings", Member: member, Keys: keys})
	assert.NoError(t, err)

	return target
}

func newBinder(opts ...bind.Option) *bind.Binder {
	return bind.New(nil, append([]bind.Option{bind.WithLogHandler(slog.DiscardHandler)}, opts...)...)
}

func TestBinder_timeout(t *testing.T) {
	t.Parallel()

	config := newConfig(t, "app", map[string]string{"timeout": "30"})
	owner := &settings{}
	target := newTarget(t, owner, "Port", "app.timeout", "timeout")

	binder := newBinder()
	assert.NoError(t, binder.Bind(target, config))
	assert.Equal(t, 30, owner.Port)
	assert.True(t, binder.Bound(target))

	changes, err := config.Update(kvsync.NewSource("app", map[string]string{"timeout": "45"}))
	assert.NoError(t, err)
	assert.NoError(t, binder.OnChange(changes, config))
	assert.Equal(t, 45, owner.Port)

	// The key with higher priority wins.
	changes, err = config.Update(kvsync.NewSource("app", map[string]string{"timeout": "45", "app.timeout": "60"}))
	assert.NoError(t, err)
	assert.NoError(t, binder.OnChange(changes, config))
	assert.Equal(t, 60, owner.Port)
}

func TestBinder_ignoreOverridden(t *testing.T) {
	t.Parallel()

	testcases := []struct {
		description string
		opts        []bind.Option
		configs     func(base, override *kvsync.Config) []bind.View
		bound       int
		baseChange  int
		overChange  int
	}{
		{
			description: "override last",
			configs: func(base, override *kvsync.Config) []bind.View {
				return []bind.View{base, override}
			},
			bound:      1,
			baseChange: 1,
			overChange: 3,
		},
		{
			description: "ignore base",
			opts:        []bind.Option{bind.WithIgnore("base")},
			configs: func(base, override *kvsync.Config) []bind.View {
				return []bind.View{override, base}
			},
			bound:      1,
			baseChange: 1,
			overChange: 3,
		},
		{
			description: "ignore override",
			opts:        []bind.Option{bind.WithIgnore("override")},
			configs: func(base, override *kvsync.Config) []bind.View {
				return []bind.View{base, override}
			},
			bound:      0,
			baseChange: 2,
			overChange: 2,
		},
		{
			description: "override first",
			configs: func(base, override *kvsync.Config) []bind.View {
				return []bind.View{override, base}
			},
			bound:      0,
			baseChange: 2,
			overChange: 2,
		},
	}

	for _, testcase := range testcases {
		t.Run(testcase.description, func(t *testing.T) {
			t.Parallel()

			base := newConfig(t, "base", map[string]string{"x": "0"})
			override := newConfig(t, "override", map[string]string{"x": "1"})
			configs := testcase.configs(base, override)
			owner := &settings{}
			target := newTarget(t, owner, "Port", "x")

			binder := newBinder(testcase.opts...)
			assert.NoError(t, binder.Bind(target, configs...))
			assert.Equal(t, testcase.bound, owner.Port)

			changes, err := base.Update(kvsync.NewSource("base", map[string]string{"x": "2"}))
			assert.NoError(t, err)
			assert.NoError(t, binder.OnChange(changes, configs...))
			assert.Equal(t, testcase.baseChange, owner.Port)

			changes, err = override.Update(kvsync.NewSource("override", map[string]string{"x": "3"}))
			assert.NoError(t, err)
			assert.NoError(t, binder.OnChange(changes, configs...))
			assert.Equal(t, testcase.overChange, owner.Port)
		})
	}
}

func TestBinder_Bind(t *testing.T) {
	t.Parallel()

	registry := codec.NewRegistry(codec.Builtins()...)
	registry.RegisterFactory("level", levelCodec)

	testcases := []struct {
		description string
		descriptor  func(*settings) bind.Descriptor
		entries     map[string]string
		expected    any
		err         string
	}{
		{
			description: "first present key",
			descriptor: func(owner *settings) bind.Descriptor {
				return bind.Descriptor{Member: fieldOf(owner, "Timeout"), Keys: []string{"a", "b", "c"}}
			},
			entries:  map[string]string{"b": "1s", "c": "2s"},
			expected: time.Second,
		},
		{
			description: "default value",
			descriptor: func(owner *settings) bind.Descriptor {
				return bind.Descriptor{
					Member:     fieldOf(owner, "Timeout"),
					Keys:       []string{"a"},
					Default:    "3s",
					HasDefault: true,
				}
			},
			expected: 3 * time.Second,
		},
		{
			description: "untouched without default",
			descriptor: func(owner *settings) bind.Descriptor {
				return bind.Descriptor{Member: fieldOf(owner, "Timeout"), Keys: []string{"a"}}
			},
			expected: time.Minute,
		},
		{
			description: "slice value",
			descriptor: func(owner *settings) bind.Descriptor {
				return bind.Descriptor{Member: fieldOf(owner, "Hosts"), Keys: []string{"hosts"}}
			},
			entries:  map[string]string{"hosts": "a, b"},
			expected: []string{"a", "b"},
		},
		{
			description: "named codec",
			descriptor: func(owner *settings) bind.Descriptor {
				return bind.Descriptor{Member: levelMember(owner), Keys: []string{"level"}, Codec: "level"}
			},
			entries:  map[string]string{"level": "DEBUG"},
			expected: time.Duration(-4),
		},
		{
			description: "codec factory",
			descriptor: func(owner *settings) bind.Descriptor {
				return bind.Descriptor{Member: levelMember(owner), Keys: []string{"level"}, Factory: levelCodec}
			},
			entries:  map[string]string{"level": "debug"},
			expected: time.Duration(-4),
		},
		{
			description: "conversion error",
			descriptor: func(owner *settings) bind.Descriptor {
				return bind.Descriptor{Owner: "settings", Member: fieldOf(owner, "Timeout"), Keys: []string{"timeout"}}
			},
			entries:  map[string]string{"timeout": "soon"},
			expected: time.Minute,
			err:      `bind settings.Timeout to timeout: convert "soon" to time.Duration: time: invalid duration "soon"`,
		},
		{
			description: "unsupported type",
			descriptor: func(owner *settings) bind.Descriptor {
				return bind.Descriptor{Owner: "settings", Member: levelMember(owner), Keys: []string{"level"}}
			},
			entries:  map[string]string{"level": "debug"},
			expected: time.Minute,
			err:      "bind settings.Level to level: unsupported type: bind_test.level",
		},
		{
			description: "codec factory of other type",
			descriptor: func(owner *settings) bind.Descriptor {
				return bind.Descriptor{
					Owner:   "settings",
					Member:  fieldOf(owner, "Name"),
					Keys:    []string{"name"},
					Factory: func() (codec.Codec, error) { return codec.Int[int](), nil },
				}
			},
			entries:  map[string]string{"name": "65"},
			expected: "",
			err:      "bind settings.Name to name: instantiate codec for string: codec for int is not assignable to string",
		},
		{
			description: "setter error",
			descriptor: func(owner *settings) bind.Descriptor {
				return bind.Descriptor{Owner: "settings", Member: levelMember(owner), Keys: []string{"level"}, Codec: "level"}
			},
			entries:  map[string]string{"level": "info"},
			expected: time.Minute,
			err:      "bind settings.Level to level: zero level",
		},
	}

	for _, testcase := range testcases {
		t.Run(testcase.description, func(t *testing.T) {
			t.Parallel()

			owner := &settings{Timeout: time.Minute}
			target, err := bind.NewTarget(testcase.descriptor(owner))
			assert.NoError(t, err)

			binder := bind.New(registry, bind.WithLogHandler(slog.DiscardHandler))
			err = binder.Bind(target, newConfig(t, "config", testcase.entries))
			if testcase.err != "" {
				assert.EqualError(t, err, testcase.err)
				bindingErr := assert.ErrorAs[*bind.BindingError](t, err)
				assert.Equal(t, "settings", bindingErr.Owner)
				assert.False(t, binder.Bound(target))
			} else {
				assert.NoError(t, err)
				assert.True(t, binder.Bound(target))
			}

			var actual any
			switch field := target.Descriptor().Member.Name(); field {
			case "Hosts":
				actual = owner.Hosts
			case "Name":
				actual = owner.Name
			default:
				actual = owner.Timeout
			}
			assert.Equal(t, testcase.expected, actual)
		})
	}
}

func fieldOf(owner *settings, name string) bind.Member { //nolint:ireturn
	member, _ := bind.Field(owner, name)

	return member
}

// levelMember stores the level into Timeout so it shares the assertion with other fields.
func levelMember(owner *settings) bind.Member { //nolint:ireturn
	member, _ := bind.Setter(owner, "Level", func(s *settings, l level) error {
		if l == 0 {
			return errors.New("zero level") //nolint:err113
		}
		s.Timeout = time.Duration(l)

		return nil
	})

	return member
}

func TestBinder_Bind_codecMismatch(t *testing.T) {
	t.Parallel()

	owner := &settings{}
	target, err := bind.NewTarget(bind.Descriptor{
		Owner:   "settings",
		Member:  fieldOf(owner, "Name"),
		Keys:    []string{"name"},
		Factory: func() (codec.Codec, error) { return codec.Int[int](), nil },
	})
	assert.NoError(t, err)

	err = newBinder().Bind(target, newConfig(t, "config", map[string]string{"name": "65"}))
	bindingErr := assert.ErrorAs[*bind.BindingError](t, err)
	assert.Equal(t, "name", bindingErr.Key)
	instantiationErr := assert.ErrorAs[*codec.CodecInstantiationError](t, err)
	assert.Equal(t, reflect.TypeFor[string](), instantiationErr.Type)
	assert.Equal(t, "", owner.Name)
}

func TestBinder_Bind_error(t *testing.T) {
	t.Parallel()

	binder := newBinder(bind.WithIgnore("config"))
	assert.EqualError(t, binder.Bind(nil), "cannot bind nil target")

	target := newTarget(t, &settings{}, "Port", "port")
	err := binder.Bind(target, newConfig(t, "config", nil))
	assert.EqualError(t, err, "bind settings.Port: no configuration which is not ignored")
	assert.False(t, binder.Bound(target))
}

func TestBinder_OnChange_removed(t *testing.T) {
	t.Parallel()

	config := newConfig(t, "config", map[string]string{"port": "1", "fallback": "2", "timeout": "1s"})
	owner := &settings{}
	port := newTarget(t, owner, "Port", "port", "fallback")
	member, err := bind.Field(owner, "Timeout")
	assert.NoError(t, err)
	timeout, err := bind.NewTarget(bind.Descriptor{
		Member:     member,
		Keys:       []string{"timeout"},
		Default:    "5s",
		HasDefault: true,
	})
	assert.NoError(t, err)

	binder := newBinder()
	assert.NoError(t, binder.Bind(port, config))
	assert.NoError(t, binder.Bind(timeout, config))
	assert.Equal(t, settings{Port: 1, Timeout: time.Second}, *owner)

	// Falls back to the next key, and the default value.
	changes, err := config.Update(kvsync.NewSource("config", map[string]string{"fallback": "2"}))
	assert.NoError(t, err)
	assert.NoError(t, binder.OnChange(changes, config))
	assert.Equal(t, settings{Port: 2, Timeout: 5 * time.Second}, *owner)

	// Resets to zero value.
	changes, err = config.Update(kvsync.NewSource("config", nil))
	assert.NoError(t, err)
	assert.NoError(t, binder.OnChange(changes, config))
	assert.Equal(t, settings{Timeout: 5 * time.Second}, *owner)
}

func TestBinder_OnChange_unmatched(t *testing.T) {
	t.Parallel()

	config := newConfig(t, "config", map[string]string{"port": "1"})
	owner := &settings{}
	target := newTarget(t, owner, "Port", "port")
	binder := newBinder()
	assert.NoError(t, binder.Bind(target, config))

	// Unrelated keys do not touch the member even if it has been changed since.
	owner.Port = 10
	changes, err := config.Update(kvsync.NewSource("config", map[string]string{"port": "1", "other": "2"}))
	assert.NoError(t, err)
	assert.NoError(t, binder.OnChange(changes, config))
	assert.Equal(t, 10, owner.Port)

	// Unbound targets are not applied.
	binder.Unbind(target)
	changes, err = config.Update(kvsync.NewSource("config", map[string]string{"port": "3"}))
	assert.NoError(t, err)
	assert.NoError(t, binder.OnChange(changes, config))
	assert.Equal(t, 10, owner.Port)

	// Empty changes and no configuration.
	assert.NoError(t, binder.OnChange(kvsync.ChangeSet{}, config))
	assert.NoError(t, binder.OnChange(changes))
}

func TestBinder_OnChange_errors(t *testing.T) {
	t.Parallel()

	config := newConfig(t, "config", map[string]string{"port": "1", "timeout": "1s"})
	owner := &settings{}
	port := newTarget(t, owner, "Port", "port")
	timeout := newTarget(t, owner, "Timeout", "timeout")
	binder := newBinder()
	assert.NoError(t, binder.Bind(port, config))
	assert.NoError(t, binder.Bind(timeout, config))

	changes, err := config.Update(kvsync.NewSource("config", map[string]string{"port": "x", "timeout": "y"}))
	assert.NoError(t, err)
	err = binder.OnChange(changes, config)
	assert.True(t, strings.Contains(err.Error(), `bind settings.Port to port: convert "x" to int`))
	assert.True(t, strings.Contains(err.Error(), `bind settings.Timeout to timeout: convert "y" to time.Duration`))
	conversionErr := assert.ErrorAs[*codec.ConversionError](t, err)
	assert.True(t, conversionErr.Type == reflect.TypeFor[int]() || conversionErr.Type == reflect.TypeFor[time.Duration]())
	// Failed targets stay bound, so they can be fixed by later changes.
	assert.True(t, binder.Bound(port))
	assert.Equal(t, settings{Port: 1, Timeout: time.Second}, *owner)
}

func TestBinder_ownerGone(t *testing.T) {
	t.Parallel()

	config := newConfig(t, "config", map[string]string{"port": "1"})
	binder := newBinder()
	target, err := bind.NewTarget(bind.Descriptor{Owner: "settings", Member: collectedMember(t), Keys: []string{"port"}})
	assert.NoError(t, err)

	assert.NoError(t, binder.Bind(target, config))
	assert.False(t, binder.Bound(target))
}

func TestBinder_ownerGone_onChange(t *testing.T) {
	t.Parallel()

	config := newConfig(t, "config", map[string]string{"port": "1"})
	binder := newBinder()
	member := &collectableMember{}
	target, err := bind.NewTarget(bind.Descriptor{Owner: "settings", Member: member, Keys: []string{"port"}})
	assert.NoError(t, err)
	assert.NoError(t, binder.Bind(target, config))
	assert.True(t, binder.Bound(target))

	member.collect()
	changes, err := config.Update(kvsync.NewSource("config", map[string]string{"port": "2"}))
	assert.NoError(t, err)
	assert.NoError(t, binder.OnChange(changes, config))
	assert.False(t, binder.Bound(target))
	assert.Equal(t, 1, member.value)
}

type collectableMember struct {
	mutex     sync.Mutex
	collected bool
	value     int
}

func (*collectableMember) Name() string { return "collectable" }

func (*collectableMember) Type() reflect.Type { return reflect.TypeFor[int]() }

func (m *collectableMember) Set(value any) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.collected {
		return bind.ErrOwnerGone
	}
	m.value, _ = value.(int)

	return nil
}

func (m *collectableMember) collect() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.collected = true
}

func TestBinder_Attach(t *testing.T) {
	t.Parallel()

	base := newConfig(t, "base", map[string]string{"port": "1"})
	override := newConfig(t, "override", map[string]string{"port": "2"})

	values := make(chan int, 10)
	target, err := bind.NewTarget(bind.Descriptor{
		Owner: "settings",
		Member: bind.Func("port", func(port int) error {
			values <- port

			return nil
		}),
		Keys: []string{"port"},
	})
	assert.NoError(t, err)

	errs := make(chan error, 10)
	binder := newBinder(bind.WithErrorHandler(func(err error) { errs <- err }))
	assert.NoError(t, binder.Bind(target, base, override))
	assert.Equal(t, 2, <-values)

	cancel := binder.Attach(base, override)
	defer cancel()

	_, err = base.Update(kvsync.NewSource("base", map[string]string{"port": "10"}))
	assert.NoError(t, err)
	_, err = override.Update(kvsync.NewSource("override", map[string]string{"port": "20"}))
	assert.NoError(t, err)
	assert.Equal(t, 20, receive(t, values))

	_, err = override.Update(kvsync.NewSource("override", map[string]string{"port": "invalid"}))
	assert.NoError(t, err)
	select {
	case err := <-errs:
		assert.EqualError(t, err, `bind settings.port to port: convert "invalid" to int: strconv.ParseInt: parsing "invalid": invalid syntax`)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for error")
	}
	select {
	case value := <-values:
		t.Errorf("unexpected value %d", value)
	default:
	}
}

func receive(t *testing.T, values chan int) int {
	t.Helper()

	select {
	case value := <-values:
		return value
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for value")

		return 0
	}
}

func TestBinder_OnChange_concurrent(t *testing.T) {
	t.Parallel()

	const count = 50
	entries := make(map[string]string, count)
	for i := range count {
		entries["key"+strconv.Itoa(i)] = strconv.Itoa(i)
	}
	config := newConfig(t, "config", entries)

	owners := make([]*settings, count)
	binder := newBinder(bind.WithConcurrency(4))
	for i := range count {
		owners[i] = &settings{}
		assert.NoError(t, binder.Bind(newTarget(t, owners[i], "Port", "key"+strconv.Itoa(i)), config))
	}

	var waitGroup sync.WaitGroup
	for round := 1; round <= 5; round++ {
		updated := make(map[string]string, count)
		for i := range count {
			updated["key"+strconv.Itoa(i)] = strconv.Itoa(i * round * 10)
		}
		changes, err := config.Update(kvsync.NewSource("config", updated))
		assert.NoError(t, err)

		waitGroup.Add(1)
		go func() {
			defer waitGroup.Done()

			assert.NoError(t, binder.OnChange(changes, config))
		}()
	}
	waitGroup.Wait()

	for i, owner := range owners {
		assert.Equal(t, i*50, owner.Port)
	}
}
