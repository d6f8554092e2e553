// Copyright (c) 2025 The kvsync authors
// Use of this source code is governed by a MIT license found in the LICENSE file.

package codec

import (
	"fmt"
	"reflect"
)

// Codec converts between the string representation of a configuration value
// and the value of its target type.
type Codec interface {
	// Type returns the target type of the Codec.
	Type() reflect.Type
	// Decode parses the string into a value of the target type.
	// It returns a *ConversionError if the string could not be parsed.
	Decode(value string) (any, error)
	// Encode formats a value of the target type into its string representation.
	// It returns a *ConversionError if the value is not of the target type.
	Encode(value any) (string, error)
}

// Factory creates a Codec on demand.
// It is used to override the registered Codec for a single lookup.
type Factory func() (Codec, error)

// Func returns a Codec for type T built from the given decode and encode functions.
//
// It panics if decode or encode is nil.
func Func[T any](decode func(string) (T, error), encode func(T) string) Codec { //nolint:ireturn
	if decode == nil || encode == nil {
		panic("cannot create codec with nil decode or encode")
	}

	return funcCodec[T]{decode: decode, encode: encode}
}

type funcCodec[T any] struct {
	decode func(string) (T, error)
	encode func(T) string
}

func (c funcCodec[T]) Type() reflect.Type {
	return reflect.TypeFor[T]()
}

func (c funcCodec[T]) Decode(value string) (any, error) {
	decoded, err := c.decode(value)
	if err != nil {
		return nil, &ConversionError{Value: value, Type: c.Type(), Err: err}
	}

	return decoded, nil
}

func (c funcCodec[T]) Encode(value any) (string, error) {
	typed, ok := value.(T)
	if !ok {
		return "", &ConversionError{
			Value: fmt.Sprint(value),
			Type:  c.Type(),
			Err:   fmt.Errorf("unexpected type %T", value), //nolint:err113
		}
	}

	return c.encode(typed), nil
}

// Decode decodes the string with the registered Codec for type T.
func Decode[T any](registry *Registry, value string) (T, error) { //nolint:ireturn
	var zero T

	codec, err := registry.Codec(reflect.TypeFor[T](), nil)
	if err != nil {
		return zero, err
	}

	decoded, err := codec.Decode(value)
	if err != nil {
		return zero, err //nolint:wrapcheck
	}
	typed, ok := decoded.(T)
	if !ok {
		return zero, &ConversionError{
			Value: value,
			Type:  reflect.TypeFor[T](),
			Err:   fmt.Errorf("codec returns unexpected type %T", decoded), //nolint:err113
		}
	}

	return typed, nil
}
