// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package kv holds the contract shared by every persistence backend: the
// Store interface, the optional optimistic Versioned extension and the
// sentinel errors callers match with errors.Is.
package kv
