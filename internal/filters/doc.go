// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package filters selects records from a JSON array.
//
// Filters are specified as key-operator-target expressions and can be
// combined using a configurable delimiter (default: comma, override with
// THEORYCTL_FILTER_DELIM).
//
// Operators include:
//
//   - = : exact match
//   - ~ : case-insensitive match
//   - ^ : prefix match
//   - @ : contains substring, or list membership
//   - / : regex match
//   - < : less than (numeric comparison when both sides are numbers)
//   - > : greater than (numeric comparison when both sides are numbers)
//
// Any operator can be negated by prefixing it with '!'.
//
// Examples:
//
//   - "category=motivation"
//   - "name~FLOW THEORY"
//   - "id^theory-01"
//   - "theorists@Piaget"
//   - "priority<3"
//   - "description!/(?i)behaviou?r"
//
// Filter keys are matched against the OutputKey of attributes (see attrs
// package) and then against the record itself, so a record field can be
// filtered on without being displayed. The pseudo key "text" runs the same
// case-insensitive free-text search as --search.
package filters
