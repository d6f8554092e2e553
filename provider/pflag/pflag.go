// Copyright (c) 2024 The kvsync authors
// Use of this source code is governed by a MIT license found in the LICENSE file.

// Package pflag loads configuration from flags defined by [spf13/pflag].
//
// PFlag loads flags in [pflag.CommandLine] whose names starts with the given prefix
// and returns them as a flat map[string]any keyed by the flag names.
// So the flag `parent.child.key="1"` is loaded as the key `parent.child.key`.
// The unchanged flags are skipped if their default value is zero,
// or the Config already has the key from other loaders.
package pflag

import (
	"flag"
	"reflect"
	"strings"

	"github.com/spf13/pflag"
)

// PFlag is a Loader that loads configuration from flags defined by [spf13/pflag].
//
// To create a new PFlag, call [New].
type PFlag struct {
	config exister
	prefix string
	set    *pflag.FlagSet
}

type exister interface {
	Exists(key string) bool
}

// New creates a PFlag with the given Option(s).
//
// The first parameter is the Config instance that checks if the keys of defined flags
// have been set by other loaders. If not, default flag values are loaded.
// If they exist, flag values are loaded only if explicitly set in the command line.
func New(config exister, opts ...Option) PFlag {
	option := &options{
		config: config,
	}
	for _, opt := range opts {
		opt(option)
	}

	return PFlag(*option)
}

func (f PFlag) Load() (map[string]any, error) {
	set := f.set
	if set == nil {
		if !pflag.Parsed() {
			pflag.CommandLine.AddGoFlagSet(flag.CommandLine)
			pflag.Parse()
		}
		set = pflag.CommandLine
	}

	exists := func(string) bool { return false }
	if f.config != nil {
		exists = f.config.Exists
	}

	values := make(map[string]any)
	set.VisitAll(
		func(flag *pflag.Flag) {
			if f.prefix != "" && !strings.HasPrefix(flag.Name, f.prefix) {
				return
			}

			val, _ := f.flagVal(set, flag) // Ignore error as it uses whatever returned.
			// Skip zero default value to avoid overriding values set by other loader.
			if !flag.Changed && (exists(flag.Name) || isZero(val)) {
				return
			}

			values[flag.Name] = val
		},
	)

	return values, nil
}

func isZero(val any) bool {
	value := reflect.ValueOf(val)
	switch value.Kind() {
	case reflect.Invalid:
		return true
	case reflect.Slice, reflect.Map:
		return value.Len() == 0
	default:
		return value.IsZero()
	}
}

//nolint:cyclop,funlen,gocyclo,wrapcheck
func (f PFlag) flagVal(set *pflag.FlagSet, flag *pflag.Flag) (any, error) {
	switch flag.Value.Type() {
	case "int":
		return set.GetInt(flag.Name)
	case "uint":
		return set.GetUint(flag.Name)
	case "int8":
		return set.GetInt8(flag.Name)
	case "uint8":
		return set.GetUint8(flag.Name)
	case "int16":
		return set.GetInt16(flag.Name)
	case "uint16":
		return set.GetUint16(flag.Name)
	case "int32":
		return set.GetInt32(flag.Name)
	case "uint32":
		return set.GetUint32(flag.Name)
	case "int64":
		return set.GetInt64(flag.Name)
	case "uint64":
		return set.GetUint64(flag.Name)
	case "float":
		return set.GetFloat64(flag.Name)
	case "float32":
		return set.GetFloat32(flag.Name)
	case "float64":
		return set.GetFloat64(flag.Name)
	case "bool":
		return set.GetBool(flag.Name)
	case "duration":
		return set.GetDuration(flag.Name)
	case "ip":
		return set.GetIP(flag.Name)
	case "ipMask":
		return set.GetIPv4Mask(flag.Name)
	case "ipNet":
		return set.GetIPNet(flag.Name)
	case "count":
		return set.GetCount(flag.Name)
	case "bytesHex":
		return set.GetBytesHex(flag.Name)
	case "bytesBase64":
		return set.GetBytesBase64(flag.Name)
	case "string":
		return set.GetString(flag.Name)
	case "stringSlice":
		return set.GetStringSlice(flag.Name)
	case "intSlice":
		return set.GetIntSlice(flag.Name)
	case "uintSlice":
		return set.GetUintSlice(flag.Name)
	case "int32Slice":
		return set.GetInt32Slice(flag.Name)
	case "int64Slice":
		return set.GetInt64Slice(flag.Name)
	case "float32Slice":
		return set.GetFloat32Slice(flag.Name)
	case "float64Slice":
		return set.GetFloat64Slice(flag.Name)
	case "boolSlice":
		return set.GetBoolSlice(flag.Name)
	case "durationSlice":
		return set.GetDurationSlice(flag.Name)
	case "ipSlice":
		return set.GetIPSlice(flag.Name)
	case "stringArray":
		return set.GetStringArray(flag.Name)
	case "stringToString":
		return set.GetStringToString(flag.Name)
	case "stringToInt":
		return set.GetStringToInt(flag.Name)
	case "stringToInt64":
		return set.GetStringToInt64(flag.Name)
	default:
		return flag.Value.String(), nil
	}
}

func (f PFlag) String() string {
	if f.prefix == "" {
		return "pflag"
	}

	return "pflag:" + f.prefix
}
