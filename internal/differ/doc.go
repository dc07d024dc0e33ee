// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package differ compares two record collections by id and content, and
// renders the result as a bucketed summary or as per-record JSON deltas.
package differ
