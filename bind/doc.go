// Copyright (c) 2025 The kvsync authors
// Use of this source code is governed by a MIT license found in the LICENSE file.

// Package bind keeps members of live objects synchronized with configuration.
//
// A Target ties a Member of an object to an ordered list of candidate keys.
// Binder.Bind resolves the first key present in the last configuration
// which is not ignored, decodes it with the codec.Registry and sets the member.
// As with sources in a kvsync.Config, later configurations have higher precedence.
// Binder.OnChange re-applies the value when a kvsync.ChangeSet touches
// one of the candidate keys, unless the change comes from a configuration
// masked by a higher precedence one.
//
// The Binder never keeps an object alive. Members created by [Field] and [Setter]
// hold weak pointers, and the Target is unbound once its owner has been collected.
package bind
