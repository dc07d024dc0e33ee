// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package notify sends best-effort "record changed" events to peers. A
// Notifier owns one background loop that holds the connection, reconnects
// after a fixed backoff and drops events while disconnected. Notify never
// blocks the caller.
package notify
