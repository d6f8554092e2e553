// Copyright (c) 2023 The kvsync authors
// Use of this source code is governed by a MIT license found in the LICENSE file.

/*
Package kvsync aggregates key/value configuration from multiple sources into
a single view, and publishes the changes of that view as sources change.

A [Source] is an immutable named snapshot of string entries. A [Config] keeps
an ordered list of sources, where each source takes precedence over the
sources before it, and merges them with a [Policy] such as [Override],
[FirstWins], [Combine] or [ThrowOnConflict]. Sources are usually loaded by a
[Loader] (see the provider packages), and a loader which is also a [Watcher]
refreshes its source while [Config.Watch] is running.

Every mutation of a Config produces a [ChangeSet], which is delivered to the
functions registered with [Config.Subscribe]. Package bind builds on it to keep
struct fields and setters in sync with the configuration.

There is a default Config accessible through top-level functions
(such as [Get] and [Unmarshal]) which loads environment variables.
*/
package kvsync
