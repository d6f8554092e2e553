// Copyright (c) 2025 The kvsync authors
// Use of this source code is governed by a MIT license found in the LICENSE file.

package kvsync_test

import (
	"errors"
	"testing"

	"github.com/nil-go/kvsync"
	"github.com/nil-go/kvsync/internal/assert"
)

func TestConfigError(t *testing.T) {
	t.Parallel()

	testcases := []struct {
		description string
		err         *kvsync.ConfigError
		expected    string
	}{
		{
			description: "with cause",
			err:         &kvsync.ConfigError{Err: errors.New("bad config")},
			expected:    "fatal configuration error: bad config",
		},
		{
			description: "without cause",
			err:         &kvsync.ConfigError{},
			expected:    "fatal configuration error: <nil>",
		},
	}

	for _, testcase := range testcases {
		t.Run(testcase.description, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, testcase.expected, testcase.err.Error())
		})
	}
}

func TestAggregationError(t *testing.T) {
	t.Parallel()

	err := &kvsync.AggregationError{Key: "k", Current: "a", Value: "b"}
	assert.Equal(t, `conflict on key k: "a" and "b"`, err.Error())
}
