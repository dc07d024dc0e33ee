// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package aws loads aws-sdk-go-v2 configuration and builds the S3 client used
// by the s3 history backend.
package aws
