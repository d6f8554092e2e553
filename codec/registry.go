// Copyright (c) 2025 The kvsync authors
// Use of this source code is governed by a MIT license found in the LICENSE file.

package codec

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
)

// Registry maps target types to Codecs, with at most one Codec per type.
// It also keeps named Factories which can be referenced by binding descriptors
// to override the registered Codec.
//
// To create a new Registry, call [NewRegistry].
// A Registry is concurrency-safe.
type Registry struct {
	codecs    map[reflect.Type]Codec
	factories map[string]Factory
	mutex     sync.RWMutex
}

// NewRegistry creates a Registry with the given Codecs registered.
// Later Codecs replace earlier ones with the same type.
func NewRegistry(codecs ...Codec) *Registry {
	registry := &Registry{
		codecs:    make(map[reflect.Type]Codec, len(codecs)),
		factories: make(map[string]Factory),
	}
	for _, codec := range codecs {
		registry.Register(codec)
	}

	return registry
}

// Register registers the Codec for its target type, replacing any existing Codec
// for the same type. It returns the replaced Codec, or nil if the type was not supported.
//
// It panics if codec is nil.
func (r *Registry) Register(codec Codec) Codec { //nolint:ireturn
	if codec == nil {
		panic("cannot register nil codec")
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	previous := r.codecs[codec.Type()]
	r.codecs[codec.Type()] = codec

	return previous
}

// Unregister removes the Codec for the given type and returns it, or nil if there is none.
func (r *Registry) Unregister(typ reflect.Type) Codec { //nolint:ireturn
	r.mutex.Lock()
	defer r.mutex.Unlock()

	previous := r.codecs[typ]
	delete(r.codecs, typ)

	return previous
}

// IsSupported reports whether a Codec is registered for the given type.
func (r *Registry) IsSupported(typ reflect.Type) bool {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	_, ok := r.codecs[typ]

	return ok
}

// Codec returns the Codec for the given type.
//
// If override is not nil, the Codec it creates is returned instead of the registered one.
// The override applies to this call only and leaves the Registry unchanged.
// It returns a *CodecInstantiationError if the override fails to create a Codec for the type,
// or an *UnsupportedTypeError if no override is given and the type is not supported.
func (r *Registry) Codec(typ reflect.Type, override Factory) (Codec, error) { //nolint:ireturn
	if override != nil {
		return instantiate(typ, "", override)
	}

	r.mutex.RLock()
	defer r.mutex.RUnlock()

	if codec, ok := r.codecs[typ]; ok {
		return codec, nil
	}

	return nil, &UnsupportedTypeError{Type: typ}
}

// RegisterFactory registers the Factory under the given name and returns the replaced one.
//
// It panics if the name is empty or factory is nil.
func (r *Registry) RegisterFactory(name string, factory Factory) Factory {
	if name == "" || factory == nil {
		panic("cannot register codec factory with empty name or nil factory")
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	previous := r.factories[name]
	r.factories[name] = factory

	return previous
}

// Named returns the Codec for the given type created by the Factory registered under name.
// If name is empty, it behaves like Codec without override.
func (r *Registry) Named(typ reflect.Type, name string) (Codec, error) { //nolint:ireturn
	if name == "" {
		return r.Codec(typ, nil)
	}

	r.mutex.RLock()
	factory, ok := r.factories[name]
	r.mutex.RUnlock()
	if !ok {
		return nil, &CodecInstantiationError{Type: typ, Name: name, Err: errUnknownFactory}
	}

	return instantiate(typ, name, factory)
}

func instantiate(typ reflect.Type, name string, factory Factory) (codec Codec, err error) { //nolint:nonamedreturns
	defer func() {
		if recovered := recover(); recovered != nil {
			codec = nil
			err = &CodecInstantiationError{Type: typ, Name: name, Err: fmt.Errorf("panic: %v", recovered)} //nolint:err113
		}
	}()

	codec, err = factory()
	switch {
	case err != nil:
		return nil, &CodecInstantiationError{Type: typ, Name: name, Err: err}
	case codec == nil:
		return nil, &CodecInstantiationError{Type: typ, Name: name, Err: errNilCodec}
	case !codec.Type().AssignableTo(typ):
		return nil, &CodecInstantiationError{
			Type: typ,
			Name: name,
			Err:  fmt.Errorf("codec for %v is not assignable to %v", codec.Type(), typ), //nolint:err113
		}
	}

	return codec, nil
}

var (
	errUnknownFactory = errors.New("no codec factory registered with the name")
	errNilCodec       = errors.New("codec factory returns nil codec")
)
