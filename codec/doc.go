// Copyright (c) 2025 The kvsync authors
// Use of this source code is governed by a MIT license found in the LICENSE file.

/*
Package codec converts configuration values between their string form
and typed Go values.

A [Codec] handles exactly one target type. Codecs are kept in a [Registry],
which holds at most one Codec per type. Registering a Codec for a type that is
already supported replaces it and returns the previous one, so callers can
restore it later.

The registry returned by [Default] is shared by the whole process and is
pre-loaded with codecs for the basic types (see [Builtins]).
*/
package codec
