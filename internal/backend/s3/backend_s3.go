// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"

	"github.com/apex/log"
	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	s3v2 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/staranto/theoryctl/internal/backend/kv"
)

// objectAPI is the slice of the S3 client the backend uses.
type objectAPI interface {
	GetObject(ctx context.Context, in *s3v2.GetObjectInput, optFns ...func(*s3v2.Options)) (*s3v2.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3v2.PutObjectInput, optFns ...func(*s3v2.Options)) (*s3v2.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3v2.DeleteObjectInput, optFns ...func(*s3v2.Options)) (*s3v2.DeleteObjectOutput, error)
}

// BackendS3 stores each key as the object Prefix/key in Bucket. Reads are
// served from the local cache when the object's ETag has not changed.
type BackendS3 struct {
	Ctx       context.Context
	Bucket    string
	Prefix    string
	Region    string
	Profile   string
	Endpoint  string
	PathStyle bool

	client objectAPI
}

func (be *BackendS3) Get(ctx context.Context, key string) ([]byte, error) {
	data, _, err := be.GetVersioned(ctx, key)
	return data, err
}

// GetVersioned returns the object body and its ETag.
func (be *BackendS3) GetVersioned(ctx context.Context, key string) ([]byte, string, error) {
	if err := PurgeCache(); err != nil {
		log.WithError(err).Warn("failed to purge cache")
	}

	input := &s3v2.GetObjectInput{
		Bucket: awsv2.String(be.Bucket),
		Key:    awsv2.String(be.objectKey(key)),
	}

	entry, cached := CacheReader(be, key)
	if cached && entry.Tag != "" {
		input.IfNoneMatch = awsv2.String(entry.Tag)
	}

	result, err := be.client.GetObject(ctx, input)
	if err != nil {
		if cached && statusCode(err) == http.StatusNotModified {
			log.Debugf("s3 get: key=%s not modified", key)
			return entry.Data, entry.Tag, nil
		}
		if isNotFound(err) {
			_ = CacheRemove(be, key)
			return nil, "", kv.ErrNotFound
		}
		return nil, "", fmt.Errorf("failed to get S3 object: %w", err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read S3 object body: %w", err)
	}

	tag := awsv2.ToString(result.ETag)
	if err := CacheWriter(be, key, tag, data); err != nil {
		log.WithError(err).Error("error writing to cache")
	}
	return data, tag, nil
}

func (be *BackendS3) Put(ctx context.Context, key string, value []byte) error {
	return be.put(ctx, key, value, nil)
}

// PutIf writes only when the object's ETag still equals token. An empty
// token requires that the object does not exist yet.
func (be *BackendS3) PutIf(ctx context.Context, key string, value []byte, token string) error {
	return be.put(ctx, key, value, func(in *s3v2.PutObjectInput) {
		if token == "" {
			in.IfNoneMatch = awsv2.String("*")
		} else {
			in.IfMatch = awsv2.String(token)
		}
	})
}

func (be *BackendS3) put(ctx context.Context, key string, value []byte, cond func(*s3v2.PutObjectInput)) error {
	input := &s3v2.PutObjectInput{
		Bucket:      awsv2.String(be.Bucket),
		Key:         awsv2.String(be.objectKey(key)),
		Body:        bytes.NewReader(value),
		ContentType: awsv2.String("application/json"),
	}
	if cond != nil {
		cond(input)
	}

	out, err := be.client.PutObject(ctx, input)
	if err != nil {
		switch {
		case isConflict(err):
			return kv.ErrConflict
		case isQuota(err):
			return fmt.Errorf("%w: %v", kv.ErrQuotaExceeded, err)
		}
		return fmt.Errorf("failed to put S3 object: %w", err)
	}

	if err := CacheWriter(be, key, awsv2.ToString(out.ETag), value); err != nil {
		log.WithError(err).Error("error writing to cache")
	}
	log.Debugf("s3 put: bucket=%s key=%s bytes=%d", be.Bucket, be.objectKey(key), len(value))
	return nil
}

// Delete removes the object. S3 reports success for missing keys.
func (be *BackendS3) Delete(ctx context.Context, key string) error {
	_, err := be.client.DeleteObject(ctx, &s3v2.DeleteObjectInput{
		Bucket: awsv2.String(be.Bucket),
		Key:    awsv2.String(be.objectKey(key)),
	})
	if err != nil && !isNotFound(err) {
		return fmt.Errorf("failed to delete S3 object: %w", err)
	}
	if err := CacheRemove(be, key); err != nil {
		log.WithError(err).Warn("failed to drop cache entry")
	}
	return nil
}

func (be *BackendS3) String() string {
	return "backend-s3:s3://" + path.Join(be.Bucket, be.Prefix)
}

func (be *BackendS3) objectKey(key string) string {
	return path.Join(be.Prefix, key)
}

func statusCode(err error) int {
	var re *awshttp.ResponseError
	if errors.As(err, &re) {
		return re.HTTPStatusCode()
	}
	return 0
}

func apiCode(err error) string {
	var ae smithy.APIError
	if errors.As(err, &ae) {
		return ae.ErrorCode()
	}
	return ""
}

func isNotFound(err error) bool {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	switch apiCode(err) {
	case "NoSuchKey", "NotFound":
		return true
	}
	return statusCode(err) == http.StatusNotFound
}

func isConflict(err error) bool {
	switch apiCode(err) {
	case "PreconditionFailed", "ConditionalRequestConflict":
		return true
	}
	sc := statusCode(err)
	return sc == http.StatusPreconditionFailed || sc == http.StatusConflict
}

func isQuota(err error) bool {
	switch apiCode(err) {
	case "QuotaExceeded", "EntityTooLarge", "XMinioStorageFull", "XMinioAdminBucketQuotaExceeded":
		return true
	}
	return statusCode(err) == http.StatusInsufficientStorage
}
