// Copyright (c) 2025 The kvsync authors
// Use of this source code is governed by a MIT license found in the LICENSE file.

package bind

import "fmt"

// BindingError reports a failure applying a configuration value to a member.
type BindingError struct {
	Owner  string
	Member string
	Key    string
	Err    error
}

func (e *BindingError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("bind %s.%s: %v", e.Owner, e.Member, e.Err)
	}

	return fmt.Sprintf("bind %s.%s to %s: %v", e.Owner, e.Member, e.Key, e.Err)
}

func (e *BindingError) Unwrap() error {
	return e.Err
}
