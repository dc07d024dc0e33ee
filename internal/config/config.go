// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/apex/log"
	"gopkg.in/yaml.v3"
)

// Type is the in-memory representation of the loaded configuration.
//
// Fields:
//   - Source: absolute path of the YAML file loaded.
//   - Namespace: optional dot-prefixed keyspace used to prefer namespaced
//     lookups (e.g. "history.backend.type" before "backend.type").
//   - Data: raw key/value tree unmarshaled from YAML.
type Type struct {
	Source    string
	Namespace string
	Data      map[string]interface{}
}

// Config holds the global, lazily-initialized configuration instance.
var Config Type

// init attempts to load configuration at process start. Errors are ignored so
// the application can still run without a config file.
func init() {
	_, _ = Load()
}

// typed resolves key and converts it with conv. A single fallback is returned
// when the key is missing; a present value of the wrong shape is an error
// naming the key.
func typed[T any](key, want string, conv func(any) (T, bool), fallback []T) (T, error) {
	var zero T

	val, err := lookup(key)
	if err != nil {
		if len(fallback) == 1 {
			return fallback[0], nil
		}
		return zero, err
	}

	v, ok := conv(val)
	if !ok {
		return zero, fmt.Errorf("%w: %s is not %s", ErrType, key, want)
	}
	return v, nil
}

// ErrType reports a configured value of the wrong shape.
var ErrType = errors.New("config type mismatch")

// GetBool returns the boolean at key, or the single default when missing.
func GetBool(key string, defaultValue ...bool) (bool, error) {
	return typed(key, "a bool", func(v any) (bool, bool) {
		b, ok := v.(bool)
		return b, ok
	}, defaultValue)
}

// GetInt returns the integer at key, or the single default when missing.
// YAML numbers may decode as int, int64 or float64.
func GetInt(key string, defaultValue ...int) (int, error) {
	return typed(key, "an int", func(v any) (int, bool) {
		switch n := v.(type) {
		case int:
			return n, true
		case int64:
			return int(n), true
		case float64:
			return int(n), true
		}
		return 0, false
	}, defaultValue)
}

// GetString returns the string at key, or the single default when missing.
func GetString(key string, defaultValue ...string) (string, error) {
	return typed(key, "a string", func(v any) (string, bool) {
		s, ok := v.(string)
		return s, ok
	}, defaultValue)
}

// GetStringSlice returns the list of strings at key, or the single default
// when missing. Every element must be a string.
func GetStringSlice(key string, defaultValue ...[]string) ([]string, error) {
	return typed(key, "a list of strings", func(v any) ([]string, bool) {
		switch list := v.(type) {
		case []string:
			return list, true
		case []any:
			out := make([]string, len(list))
			for i, item := range list {
				s, ok := item.(string)
				if !ok {
					return nil, false
				}
				out[i] = s
			}
			return out, true
		}
		return nil, false
	}, defaultValue)
}

// Load reads the YAML configuration file and populates the global Config. The
// optional namespace is remembered so later lookups try "<ns>.<key>" first.
//
// Returns the loaded Type or an error if the file could not be located or
// parsed. The namespace is retained even when loading fails.
func Load(namespace ...string) (Type, error) {
	ns := Config.Namespace
	if len(namespace) > 0 {
		ns = namespace[0]
	}

	path, err := getConfigFile()
	if err != nil {
		Config.Namespace = ns
		return Type{Namespace: ns}, err
	}

	bytes, err := os.ReadFile(path)
	if err != nil {
		Config.Namespace = ns
		return Type{Namespace: ns}, err
	}

	var data map[string]interface{}
	if err := yaml.Unmarshal(bytes, &data); err != nil {
		Config.Namespace = ns
		return Type{Namespace: ns}, err
	}

	Config = Type{
		Source:    path,
		Namespace: ns,
		Data:      data}

	return Config, nil
}

// lookup lazily loads the config and resolves key against it.
func lookup(key string) (any, error) {
	if len(Config.Data) == 0 {
		_, _ = Load()
	}
	return Config.get(key)
}

// get traverses the configuration tree using a dotted key path (e.g.
// "backend.s3.bucket"). If Namespace is set, a namespaced candidate key is
// attempted first (Namespace + "." + kspec), then the unnamespaced key.
// Returns the raw value (any) if found.
func (cfg *Type) get(kspec string) (any, error) {
	candidateKeys := []string{kspec}
	if cfg.Namespace != "" {
		candidateKeys = []string{cfg.Namespace + "." + kspec, kspec}
	}

	for _, key := range candidateKeys {
		var current interface{} = cfg.Data

		success := true
		for part := range strings.SplitSeq(key, ".") {
			m, ok := current.(map[string]interface{})
			if !ok {
				success = false
				break
			}
			current, ok = m[part]
			if !ok {
				success = false
				break
			}
		}

		if success {
			return current, nil
		}
	}

	return nil, fmt.Errorf("no valid path found among: %v", candidateKeys)
}

// getConfigFile returns the absolute path to the YAML config file. If the
// THEORYCTL_CFG_FILE environment variable is set, it is treated as the full
// path to the config file. Otherwise, the OS-specific user configuration
// directory returned by os.UserConfigDir is used with the filename
// "theoryctl.yaml". The file must exist and not be a directory.
func getConfigFile() (string, error) {
	if cfgPath := os.Getenv("THEORYCTL_CFG_FILE"); cfgPath != "" {
		if fileInfo, err := os.Stat(cfgPath); err == nil {
			if !fileInfo.IsDir() {
				log.Debugf("using config file from THEORYCTL_CFG_FILE: %s", cfgPath)
				return cfgPath, nil
			}
			return "", fmt.Errorf("THEORYCTL_CFG_FILE points to a directory: %s", cfgPath)
		}
		return "", fmt.Errorf("config file not found at THEORYCTL_CFG_FILE path: %s", cfgPath)
	}

	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}

	file := filepath.Join(dir, "theoryctl.yaml")
	if fileInfo, err := os.Stat(file); err == nil {
		if !fileInfo.IsDir() {
			log.Debugf("using config file: %s", file)
			return file, nil
		}
	}

	return "", fmt.Errorf("no config file found in standard locations")
}
