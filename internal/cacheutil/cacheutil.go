// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cacheutil

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/staranto/theoryctl/internal/log"
)

// tagSuffix names the sidecar file that holds an entry's validator (an S3
// ETag, for instance).
const tagSuffix = ".tag"

// Entry is a cached value on disk. Key is the clear-text key and EncodedKey
// the hashed filename. Tag is empty when the entry was written without one.
type Entry struct {
	Key        string
	EncodedKey string
	Path       string
	Tag        string
	Data       []byte
}

// Dir resolves the base cache directory.
// Precedence:
//  1. THEORYCTL_CACHE_DIR, if set and non-empty
//  2. os.UserCacheDir()/theoryctl
//
// Returns ("", false) if a base cannot be resolved (treat as disabled).
func Dir() (string, bool) {
	if c, ok := os.LookupEnv("THEORYCTL_CACHE_DIR"); ok && c != "" {
		return c, true
	}
	if dir, err := os.UserCacheDir(); err == nil && dir != "" {
		return filepath.Join(dir, "theoryctl"), true
	}
	return "", false
}

// Enabled returns true unless THEORYCTL_CACHE is "0" or "false".
func Enabled() bool {
	enabled, _ := os.LookupEnv("THEORYCTL_CACHE")
	return enabled == "" || (enabled != "0" && enabled != "false")
}

// EnsureBaseDir creates the base cache directory when caching is enabled.
func EnsureBaseDir() (string, bool, error) {
	if !Enabled() {
		return "", false, nil
	}

	base, ok := Dir()
	if !ok {
		return "", false, nil
	}

	if err := os.MkdirAll(base, 0o755); err != nil { //nolint:mnd
		return base, false, fmt.Errorf("failed to create cache base directory: %w", err)
	}
	return base, true, nil
}

// EntryPath returns where an entry for clearKey lives below subdirs and
// whether it currently exists.
func EntryPath(subdirs []string, clearKey string) (string, bool) {
	base, ok := Dir()
	if !ok {
		return "", false
	}
	p := filepath.Join(append([]string{base}, append(clean(subdirs), encodeKey(clearKey))...)...)
	if _, err := os.Stat(p); err == nil {
		return p, true
	}
	return p, false
}

// Purge removes files older than hours. hours <= 0 disables purging.
func Purge(hours int) error {
	if hours <= 0 {
		log.Debug("cache cleaning disabled")
		return nil
	}

	base, ok := Dir()
	if !ok {
		return nil
	}

	maxAge := time.Duration(hours) * time.Hour
	err := filepath.WalkDir(base, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if errors.Is(walkErr, fs.ErrNotExist) {
				return nil
			}
			return walkErr
		}
		if d.IsDir() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		if time.Since(info.ModTime()) > maxAge {
			if err := os.Remove(path); err == nil {
				log.Debugf("removed cache file %s", path)
			} else {
				log.WithError(err).Warnf("failed to remove cache file %s", path)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to purge cache: %w", err)
	}
	return nil
}

// Read returns the cached entry for clearKey, if any.
func Read(subdirs []string, clearKey string) (*Entry, bool) {
	if !Enabled() {
		return nil, false
	}
	p, ok := EntryPath(subdirs, clearKey)
	if !ok {
		return nil, false
	}
	b, err := os.ReadFile(p)
	if err != nil {
		return nil, false
	}

	tag, _ := os.ReadFile(p + tagSuffix)

	log.Debugf("cache hit: key=%s", clearKey)
	return &Entry{
		Key:        clearKey,
		EncodedKey: encodeKey(clearKey),
		Path:       p,
		Tag:        strings.TrimSpace(string(tag)),
		Data:       b,
	}, true
}

// Write stores data and its validator tag for clearKey beneath subdirs.
func Write(subdirs []string, clearKey, tag string, data []byte) error {
	if !Enabled() {
		return nil
	}
	base, ok := Dir()
	if !ok {
		return nil
	}

	dir := filepath.Join(append([]string{base}, clean(subdirs)...)...)
	if err := os.MkdirAll(dir, 0o755); err != nil { //nolint:mnd
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	p := filepath.Join(dir, encodeKey(clearKey))
	if err := os.WriteFile(p, data, 0o600); err != nil { //nolint:mnd
		return fmt.Errorf("failed to write to cache: %w", err)
	}

	if tag == "" {
		_ = os.Remove(p + tagSuffix)
	} else if err := os.WriteFile(p+tagSuffix, []byte(tag), 0o600); err != nil { //nolint:mnd
		return fmt.Errorf("failed to write cache tag: %w", err)
	}

	log.Debugf("cache write: key=%s tag=%s", clearKey, tag)
	return nil
}

// Remove drops the entry for clearKey. Missing entries are not an error.
func Remove(subdirs []string, clearKey string) error {
	p, ok := EntryPath(subdirs, clearKey)
	if p == "" {
		return nil
	}
	if ok {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to remove cache entry: %w", err)
		}
	}
	_ = os.Remove(p + tagSuffix)
	return nil
}

// clean drops empty path components and escapes separators so a subdir
// never walks outside the cache base.
func clean(subdirs []string) []string {
	out := make([]string, 0, len(subdirs))
	for _, s := range subdirs {
		if s == "" || s == "." || s == ".." {
			continue
		}
		out = append(out, strings.ReplaceAll(s, string(filepath.Separator), "_"))
	}
	return out
}

func encodeKey(input string) string {
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}
