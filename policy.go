// Copyright (c) 2025 The kvsync authors
// Use of this source code is governed by a MIT license found in the LICENSE file.

package kvsync

// Policy resolves the value of a key while sources are aggregated.
//
// Aggregate receives the key, the value accumulated so far (present is false if there is none)
// and the value of the source being merged. It returns the value to keep and whether to keep it
// at all: returning false removes the key from the aggregate.
// A Policy must be deterministic and free of side effects.
type Policy interface {
	Aggregate(key, current string, present bool, value string) (string, bool, error)
}

// PolicyFunc is an adapter to allow the use of ordinary functions as Policy.
type PolicyFunc func(key, current string, present bool, value string) (string, bool, error)

func (f PolicyFunc) Aggregate(key, current string, present bool, value string) (string, bool, error) {
	return f(key, current, present, value)
}

//nolint:gochecknoglobals
var (
	// Override lets the later source always win.
	Override Policy = PolicyFunc(func(_, _ string, _ bool, value string) (string, bool, error) {
		return value, true, nil
	})

	// FirstWins keeps the value of the earliest source defining the key.
	FirstWins Policy = PolicyFunc(func(_, current string, present bool, value string) (string, bool, error) {
		if present {
			return current, true, nil
		}

		return value, true, nil
	})

	// ThrowOnConflict fails with an *AggregationError if two sources define different values for the key.
	ThrowOnConflict Policy = PolicyFunc(func(key, current string, present bool, value string) (string, bool, error) {
		if present && current != value {
			return "", false, &AggregationError{Key: key, Current: current, Value: value}
		}

		return value, true, nil
	})
)

// Combine returns a Policy which concatenates the values of all sources defining the key,
// in source order, joined by separator.
func Combine(separator string) Policy { //nolint:ireturn
	return PolicyFunc(func(_, current string, present bool, value string) (string, bool, error) {
		if present {
			return current + separator + value, true, nil
		}

		return value, true, nil
	})
}
