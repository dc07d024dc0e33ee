// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package editor owns the live collection and applies every mutation to it:
// the data file is rewritten, one snapshot is appended to the version log,
// and a notification goes out for record level changes. The version store,
// diff engine and notification sink are injected.
package editor
