// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package console evaluates the queries typed into the interactive console.
// Every query yields a string so the UI only has to append it to the
// transcript.
package console
