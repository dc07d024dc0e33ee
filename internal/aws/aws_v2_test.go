// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package aws

import (
	"context"
	"testing"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	s3v2 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptions(t *testing.T) {
	tests := []struct {
		name   string
		opts   []Option
		expect options
	}{
		{
			name:   "none",
			expect: options{},
		},
		{
			name:   "profile and region",
			opts:   []Option{WithProfile("history"), WithRegion("eu-west-1")},
			expect: options{profile: "history", region: "eu-west-1"},
		},
		{
			name:   "later wins",
			opts:   []Option{WithRegion("us-east-1"), WithRegion("us-west-2")},
			expect: options{region: "us-west-2"},
		},
		{
			name:   "endpoint and path style",
			opts:   []Option{WithEndpoint("http://localhost:9000"), WithPathStyle(true)},
			expect: options{endpoint: "http://localhost:9000", pathStyle: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, apply(tt.opts))
		})
	}
}

func TestWithRetryer(t *testing.T) {
	o := apply([]Option{WithRetryer(func() awsv2.Retryer { return retry.NewStandard() })})
	require.NotNil(t, o.retryer)
	assert.NotNil(t, o.retryer())
}

func TestS3Options(t *testing.T) {
	assert.Empty(t, S3Options(options{}))

	fns := S3Options(options{endpoint: "http://minio:9000", pathStyle: true})
	require.Len(t, fns, 2)

	var so s3v2.Options
	for _, fn := range fns {
		fn(&so)
	}
	require.NotNil(t, so.BaseEndpoint)
	assert.Equal(t, "http://minio:9000", *so.BaseEndpoint)
	assert.True(t, so.UsePathStyle)
}

func TestLoadAWSConfig_WithRegion(t *testing.T) {
	t.Setenv("AWS_CONFIG_FILE", "/nonexistent")
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", "/nonexistent")

	cfg, err := LoadAWSConfig(context.Background(), WithRegion("us-west-2"), WithEndpoint("ignored"))
	require.NoError(t, err)
	assert.Equal(t, "us-west-2", cfg.Region)
}

func TestNewS3(t *testing.T) {
	t.Setenv("AWS_CONFIG_FILE", "/nonexistent")
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", "/nonexistent")

	cfg, err := LoadAWSConfig(context.Background(), WithRegion("ap-northeast-1"))
	require.NoError(t, err)

	client := NewS3(cfg, WithEndpoint("http://localhost:9000"), WithPathStyle(true))
	assert.IsType(t, &s3v2.Client{}, client)
	assert.True(t, client.Options().UsePathStyle)
	assert.Equal(t, "http://localhost:9000", awsv2.ToString(client.Options().BaseEndpoint))
}
