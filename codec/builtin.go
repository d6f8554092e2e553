// Copyright (c) 2025 The kvsync authors
// Use of this source code is governed by a MIT license found in the LICENSE file.

package codec

import (
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Builtins returns Codecs for string, bool, all sizes of int, uint and float,
// time.Duration, time.Time (RFC 3339), []string (comma separated) and *url.URL.
func Builtins() []Codec {
	return []Codec{
		Func(func(s string) (string, error) { return s, nil }, func(s string) string { return s }),
		Func(strconv.ParseBool, strconv.FormatBool),
		Int[int](),
		Int[int8](),
		Int[int16](),
		Int[int32](),
		Int[int64](),
		Uint[uint](),
		Uint[uint8](),
		Uint[uint16](),
		Uint[uint32](),
		Uint[uint64](),
		Float[float32](),
		Float[float64](),
		Func(time.ParseDuration, time.Duration.String),
		Func(
			func(s string) (time.Time, error) { return time.Parse(time.RFC3339Nano, s) },
			func(t time.Time) string { return t.Format(time.RFC3339Nano) },
		),
		Func(
			func(s string) ([]string, error) {
				if s == "" {
					return []string{}, nil
				}
				elems := strings.Split(s, ",")
				for i := range elems {
					elems[i] = strings.TrimSpace(elems[i])
				}

				return elems, nil
			},
			func(elems []string) string { return strings.Join(elems, ",") },
		),
		Func(url.Parse, (*url.URL).String),
	}
}

// Int returns a Codec for the signed integer type T.
// It accepts base prefixes such as 0x when decoding.
func Int[T ~int | ~int8 | ~int16 | ~int32 | ~int64]() Codec { //nolint:ireturn
	bits := bitSize[T]()

	return Func(
		func(s string) (T, error) {
			i, err := strconv.ParseInt(strings.TrimSpace(s), 0, bits)

			return T(i), err //nolint:wrapcheck
		},
		func(t T) string { return strconv.FormatInt(int64(t), 10) },
	)
}

// Uint returns a Codec for the unsigned integer type T.
// It accepts base prefixes such as 0x when decoding.
func Uint[T ~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64]() Codec { //nolint:ireturn
	bits := bitSize[T]()

	return Func(
		func(s string) (T, error) {
			i, err := strconv.ParseUint(strings.TrimSpace(s), 0, bits)

			return T(i), err //nolint:wrapcheck
		},
		func(t T) string { return strconv.FormatUint(uint64(t), 10) },
	)
}

// Float returns a Codec for the floating-point type T.
func Float[T ~float32 | ~float64]() Codec { //nolint:ireturn
	bits := bitSize[T]()

	return Func(
		func(s string) (T, error) {
			f, err := strconv.ParseFloat(strings.TrimSpace(s), bits)

			return T(f), err //nolint:wrapcheck
		},
		func(t T) string { return strconv.FormatFloat(float64(t), 'g', -1, bits) },
	)
}

func bitSize[T any]() int {
	return reflect.TypeFor[T]().Bits()
}
