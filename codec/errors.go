// Copyright (c) 2025 The kvsync authors
// Use of this source code is governed by a MIT license found in the LICENSE file.

package codec

import (
	"fmt"
	"reflect"
)

// UnsupportedTypeError reports that no Codec is available for the type.
type UnsupportedTypeError struct {
	Type reflect.Type
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("unsupported type: %v", e.Type)
}

// ConversionError reports a failure converting between a string and the type.
type ConversionError struct {
	Value string
	Type  reflect.Type
	Err   error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("convert %q to %v: %v", e.Value, e.Type, e.Err)
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

// CodecInstantiationError reports that an overriding Codec could not be created.
type CodecInstantiationError struct {
	Type reflect.Type
	Name string
	Err  error
}

func (e *CodecInstantiationError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("instantiate codec %q for %v: %v", e.Name, e.Type, e.Err)
	}

	return fmt.Sprintf("instantiate codec for %v: %v", e.Type, e.Err)
}

func (e *CodecInstantiationError) Unwrap() error {
	return e.Err
}
