// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package s3

import (
	"context"
	"errors"
	"fmt"

	"github.com/apex/log"

	awsx "github.com/staranto/theoryctl/internal/aws"
)

type BackendS3Option = func(ctx context.Context, be *BackendS3) error

// NewBackendS3 returns a BackendS3. Unless a client was injected, the S3
// client is built from the ambient AWS config plus the backend's region,
// profile and endpoint settings.
func NewBackendS3(ctx context.Context, options ...BackendS3Option) (*BackendS3, error) {
	options = append([]BackendS3Option{WithDefaults()}, options...)

	be := &BackendS3{Ctx: ctx}

	for _, opt := range options {
		if err := opt(ctx, be); err != nil {
			return nil, err
		}
	}

	if be.Bucket == "" {
		return nil, errors.New("s3 backend requires a bucket")
	}

	if be.client == nil {
		opts := []awsx.Option{
			awsx.WithRegion(be.Region),
			awsx.WithProfile(be.Profile),
			awsx.WithEndpoint(be.Endpoint),
			awsx.WithPathStyle(be.PathStyle),
		}
		cfg, err := awsx.LoadAWSConfig(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		be.client = awsx.NewS3(cfg, opts...)
	}

	log.Debugf("NewBackendS3: %s", be)
	return be, nil
}

func WithDefaults() BackendS3Option {
	return func(ctx context.Context, be *BackendS3) error {
		be.Prefix = "theoryctl"
		return nil
	}
}

func WithBucket(bucket string) BackendS3Option {
	return func(ctx context.Context, be *BackendS3) error {
		be.Bucket = bucket
		return nil
	}
}

// WithPrefix sets the object key prefix. An empty prefix keeps the default.
func WithPrefix(prefix string) BackendS3Option {
	return func(ctx context.Context, be *BackendS3) error {
		if prefix != "" {
			be.Prefix = prefix
		}
		return nil
	}
}

func WithRegion(region string) BackendS3Option {
	return func(ctx context.Context, be *BackendS3) error {
		be.Region = region
		return nil
	}
}

func WithProfile(profile string) BackendS3Option {
	return func(ctx context.Context, be *BackendS3) error {
		be.Profile = profile
		return nil
	}
}

// WithEndpoint targets an S3 compatible service such as MinIO.
func WithEndpoint(endpoint string, pathStyle bool) BackendS3Option {
	return func(ctx context.Context, be *BackendS3) error {
		be.Endpoint = endpoint
		be.PathStyle = pathStyle
		return nil
	}
}

func withClient(client objectAPI) BackendS3Option {
	return func(ctx context.Context, be *BackendS3) error {
		be.client = client
		return nil
	}
}
