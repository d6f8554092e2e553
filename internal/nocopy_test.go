// Copyright (c) 2025 The kvsync authors
// Use of this source code is governed by a MIT license found in the LICENSE file.

package internal_test

import (
	"testing"

	"github.com/nil-go/kvsync/internal"
	"github.com/nil-go/kvsync/internal/assert"
)

func TestNoCopy(t *testing.T) {
	t.Parallel()

	var original guarded
	original.check()
	original.check()

	// Copies before the first use are fine.
	var fresh guarded
	copied := fresh //nolint:govet
	copied.check()
}

func TestNoCopy_panic(t *testing.T) {
	t.Parallel()

	defer func() {
		assert.Equal(t, "illegal use of non-zero guarded copied by value", recover())
	}()

	var original guarded
	original.check()
	copied := original //nolint:govet
	copied.check()

	t.Fail()
}

type guarded struct {
	nocopy internal.NoCopy[guarded]
}

func (g *guarded) check() {
	g.nocopy.Check()
}
