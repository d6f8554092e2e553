// Copyright (c) 2024 The kvsync authors
// Use of this source code is governed by a MIT license found in the LICENSE file.

package pflag_test

import (
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/nil-go/kvsync"
	kflag "github.com/nil-go/kvsync/provider/pflag"
)

var _ kvsync.Loader = kflag.PFlag{}

func TestPFlag_Load(t *testing.T) {
	t.Parallel()

	testcases := []struct {
		description string
		config      *kvsync.Config
		opts        []kflag.Option
		args        []string
		expected    map[string]any
	}{
		{
			description: "defaults",
			expected: map[string]any{
				"p.d":     ".",
				"p.slice": []string{"a", "b"},
				"q.t":     time.Second,
			},
		},
		{
			description: "changed",
			args:        []string{"--p.k=v", "--p.i=3"},
			expected: map[string]any{
				"p.k":     "v",
				"p.i":     3,
				"p.d":     ".",
				"p.slice": []string{"a", "b"},
				"q.t":     time.Second,
			},
		},
		{
			description: "with prefix",
			opts:        []kflag.Option{kflag.WithPrefix("p.")},
			args:        []string{"--p.k=v"},
			expected: map[string]any{
				"p.k":     "v",
				"p.d":     ".",
				"p.slice": []string{"a", "b"},
			},
		},
		{
			description: "exists in config",
			config:      newConfig(t, map[string]string{"p.d": "x", "p.k": "y"}),
			args:        []string{"--p.k=v"},
			expected: map[string]any{
				"p.k":     "v",
				"p.slice": []string{"a", "b"},
				"q.t":     time.Second,
			},
		},
	}

	for _, testcase := range testcases {
		t.Run(testcase.description, func(t *testing.T) {
			t.Parallel()

			set := pflag.NewFlagSet("test", pflag.ContinueOnError)
			set.String("p.k", "", "")
			set.String("p.d", ".", "")
			set.Int("p.i", 0, "")
			set.StringSlice("p.slice", []string{"a", "b"}, "")
			set.Duration("q.t", time.Second, "")
			require.NoError(t, set.Parse(testcase.args))

			opts := append([]kflag.Option{kflag.WithFlagSet(set)}, testcase.opts...)
			values, err := kflag.New(testcase.config, opts...).Load()
			require.NoError(t, err)
			require.Equal(t, testcase.expected, values)
		})
	}
}

func TestPFlag_Load_config(t *testing.T) {
	t.Parallel()

	set := pflag.NewFlagSet("test", pflag.ContinueOnError)
	set.StringSlice("hosts", nil, "")
	set.Duration("timeout", 0, "")
	require.NoError(t, set.Parse([]string{"--hosts=a,b", "--timeout=45s"}))

	config := kvsync.New("flags")
	require.NoError(t, config.Load(kflag.New(config, kflag.WithFlagSet(set))))
	require.Equal(t, map[string]string{"hosts": "a,b", "timeout": "45s"}, config.Properties())
}

func newConfig(t *testing.T, entries map[string]string) *kvsync.Config {
	t.Helper()

	config := kvsync.New("base")
	require.NoError(t, config.Add(kvsync.NewSource("base", entries)))

	return config
}

func TestPFlag_String(t *testing.T) {
	t.Parallel()

	testcases := []struct {
		description string
		prefix      string
		expected    string
	}{
		{
			description: "with prefix",
			prefix:      "P_",
			expected:    "pflag:P_",
		},
		{
			description: "no prefix",
			expected:    "pflag",
		},
	}

	for _, testcase := range testcases {
		t.Run(testcase.description, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, testcase.expected, kflag.New(nil, kflag.WithPrefix(testcase.prefix)).String())
		})
	}
}
