// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package record

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// IDPrefix is the prefix shared by every record id.
const IDPrefix = "theory-"

var idRegex = regexp.MustCompile(`^theory-\d{3,}$`)

// ValidID reports whether id has the theory-NNN form with at least three
// digits.
func ValidID(id string) bool {
	return idRegex.MatchString(id)
}

// NextID returns the id following the highest numeric suffix in records,
// zero padded to three digits. Ids without a numeric suffix are ignored.
func NextID(records []Record) string {
	highest := 0
	for _, r := range records {
		n, err := strconv.Atoi(strings.TrimPrefix(r.ID, IDPrefix))
		if err != nil || !strings.HasPrefix(r.ID, IDPrefix) {
			continue
		}
		if n > highest {
			highest = n
		}
	}
	return fmt.Sprintf("%s%03d", IDPrefix, highest+1)
}
