// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package kv

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckQuota(t *testing.T) {
	tests := []struct {
		name    string
		quota   int64
		used    int64
		size    int64
		wantErr bool
	}{
		{"unlimited", 0, 100, 100, false},
		{"negative is unlimited", -1, 100, 100, false},
		{"fits", 100, 40, 60, false},
		{"over", 100, 41, 60, true},
		{"used already over", 10, 20, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckQuota(tt.quota, tt.used, tt.size)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrQuotaExceeded)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestToken(t *testing.T) {
	assert.Equal(t, Token([]byte("a")), Token([]byte("a")))
	assert.NotEqual(t, Token([]byte("a")), Token([]byte("b")))
	assert.Len(t, Token(nil), 64)
}
