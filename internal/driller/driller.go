// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package driller

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

var segmentRegex = regexp.MustCompile(`^([a-zA-Z0-9_-]+)(\[(\d+|\*)?\])?$`)

// Driller navigates JSON using a dot path. A segment may carry an index,
// key[2], to pick one list element. key[] and key[*] keep the whole list, as
// does a bare key. An index past the end yields an empty result.
func Driller(jsonData string, path string) gjson.Result {
	current := gjson.Parse(jsonData)
	if path == "" {
		return current
	}

	for _, p := range strings.Split(path, ".") {
		matches := segmentRegex.FindStringSubmatch(p)
		if len(matches) == 0 {
			return gjson.Result{}
		}

		val := current.Get(matches[1])

		if idx := matches[3]; idx != "" && idx != "*" {
			i, err := strconv.Atoi(idx)
			if err != nil || !val.IsArray() {
				return gjson.Result{}
			}
			arr := val.Array()
			if i >= len(arr) {
				return gjson.Result{}
			}
			val = arr[i]
		}

		current = val
	}

	return current
}
