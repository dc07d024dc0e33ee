// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package record

import "sort"

// Categories maps each category key to its display label.
var Categories = map[string]string{
	"learning_theory":              "Learning theory",
	"developmental":                "Developmental theory",
	"motivation":                   "Motivation theory",
	"instructional_design":         "Instructional design",
	"social_learning":              "Social learning",
	"curriculum":                   "Curriculum",
	"assessment":                   "Assessment",
	"technology_enhanced":          "Technology enhanced learning",
	"asian_education":              "Asian educational thought",
	"modern_education":             "Modern education",
	"critical_alternative_special": "Critical and alternative education",
	"critical_alternative":         "Critical and alternative education",
}

// CategoryLabel returns the label for key, or key itself when unknown.
func CategoryLabel(key string) string {
	if label, ok := Categories[key]; ok {
		return label
	}
	return key
}

// UsedCategories returns the distinct categories present in records, sorted.
func UsedCategories(records []Record) []string {
	seen := map[string]bool{}
	var out []string
	for _, r := range records {
		if r.Category == "" || seen[r.Category] {
			continue
		}
		seen[r.Category] = true
		out = append(out, r.Category)
	}
	sort.Strings(out)
	return out
}
