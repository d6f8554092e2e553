// Copyright (c) 2023 The kvsync authors
// Use of this source code is governed by a MIT license found in the LICENSE file.

package assert

import (
	"errors"
	"reflect"
	"testing"
)

func Equal[T any](tb testing.TB, expected, actual T) {
	tb.Helper()

	if !reflect.DeepEqual(expected, actual) {
		tb.Errorf("expected: %v; actual: %v", expected, actual)
	}
}

func NoError(tb testing.TB, err error) {
	tb.Helper()

	if err != nil {
		tb.Errorf("unexpected error: %v", err)
	}
}

func EqualError(tb testing.TB, err error, message string) {
	tb.Helper()

	if err == nil {
		tb.Errorf("expected error: %v; actual: nil", message)

		return
	}
	if err.Error() != message {
		tb.Errorf("expected: %v; actual: %v", message, err.Error())
	}
}

func True(tb testing.TB, value bool) {
	tb.Helper()

	if !value {
		tb.Errorf("expected True")
	}
}

func NotEmpty(tb testing.TB, value any) {
	tb.Helper()

	if reflect.ValueOf(value).IsZero() {
		tb.Errorf("expected not empty")
	}
}

func False(tb testing.TB, value bool) {
	tb.Helper()

	if value {
		tb.Errorf("expected False")
	}
}

func ErrorAs[E error](tb testing.TB, err error) E { //nolint:ireturn
	tb.Helper()

	var target E
	if !errors.As(err, &target) {
		tb.Errorf("expected error of type %T; actual: %v", target, err)
	}

	return target
}
