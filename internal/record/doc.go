// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package record defines the catalogued theory record and the collection
// document that holds them, together with id assignment, category labels,
// deep cloning and shape validation.
package record
