// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package history keeps the version log: a newest-first list of immutable
// snapshots of the whole collection, bounded to MaxVersions entries and
// persisted as one JSON array under a single key of a backend store.
//
// The list helpers (CreateVersion, EnforceVersionLimit, RemoveVersion) are
// pure. Store adds persistence and reports failures as SaveResult values
// rather than errors.
package history
