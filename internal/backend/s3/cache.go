// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package s3

import (
	"github.com/staranto/theoryctl/internal/cacheutil"
	"github.com/staranto/theoryctl/internal/config"
)

// The cache is organized by bucket and then prefix. The key is hashed and
// used as the filename.
func cacheSubdirs(be *BackendS3) []string {
	return []string{be.Bucket, be.Prefix}
}

// CacheReader reads the cache entry for key. The second return value is
// false when caching is disabled or the entry does not exist.
func CacheReader(be *BackendS3, key string) (*cacheutil.Entry, bool) {
	return cacheutil.Read(cacheSubdirs(be), key)
}

func CacheWriter(be *BackendS3, key, etag string, data []byte) error {
	return cacheutil.Write(cacheSubdirs(be), key, etag, data)
}

func CacheRemove(be *BackendS3, key string) error {
	return cacheutil.Remove(cacheSubdirs(be), key)
}

func PurgeCache() error {
	cleanHours, _ := config.GetInt("cache.clean")
	return cacheutil.Purge(cleanHours)
}
