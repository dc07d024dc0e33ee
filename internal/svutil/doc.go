// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package svutil offers snapshot discovery helpers. Given the version log, it
// finds specific snapshots based on user criteria. It can also wrap the live
// collection or a collection file read from disk so they can be compared like
// any stored snapshot.
package svutil
