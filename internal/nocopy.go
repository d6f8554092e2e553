// Copyright (c) 2024 The kvsync authors
// Use of this source code is governed by a MIT license found in the LICENSE file.

package internal

import (
	"reflect"
	"sync/atomic"
)

// NoCopy panics on use of a T that has been copied by value after its first use.
// Embed it as a field and call Check at the start of every mutating method.
type NoCopy[T any] struct {
	self atomic.Pointer[NoCopy[T]]
}

func (c *NoCopy[T]) Check() {
	if c.self.CompareAndSwap(nil, c) || c.self.Load() == c {
		return
	}

	panic("illegal use of non-zero " + reflect.TypeFor[T]().Name() + " copied by value")
}
