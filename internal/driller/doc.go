// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package driller walks a record's JSON along a dot path so filters, attrs
// and the console can reach nested and list values.
package driller
