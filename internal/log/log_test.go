// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package log

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/apex/log"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want log.Level
	}{
		{"", log.ErrorLevel},
		{"trace", log.DebugLevel},
		{"DEBUG", log.DebugLevel},
		{"info", log.InfoLevel},
		{"warn", log.WarnLevel},
		{"error", log.ErrorLevel},
		{"fatal", log.FatalLevel},
		{"bogus", log.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestCustomHandler(t *testing.T) {
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		name  string
		entry *log.Entry
		want  string
	}{
		{
			name:  "info",
			entry: &log.Entry{Level: log.InfoLevel, Message: "hello", Timestamp: ts},
			want:  "2026-01-02 03:04:05 I hello\n",
		},
		{
			name:  "trace prefix",
			entry: &log.Entry{Level: log.DebugLevel, Message: "TRACE: deep", Timestamp: ts},
			want:  "2026-01-02 03:04:05 T deep\n",
		},
		{
			name: "error field",
			entry: &log.Entry{
				Level:     log.WarnLevel,
				Message:   "write failed",
				Timestamp: ts,
				Fields:    log.Fields{"error": errors.New("boom")},
			},
			want: "2026-01-02 03:04:05 W write failed: boom\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			h := &CustomHandler{Writer: &buf}
			assert.NoError(t, h.HandleLog(tt.entry))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}
