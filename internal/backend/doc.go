// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package backend selects the key/value store that holds the version log.
// Implementations live in the local, memory, s3, redis and sqlite
// subpackages; all of them replace a key's value in one atomic write and
// report capacity failures as ErrQuotaExceeded.
package backend
