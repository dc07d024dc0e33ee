// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package filters

import (
	"embed"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"

	"github.com/staranto/theoryctl/internal/attrs"
)

//go:embed testdata/*.yaml
var testDataFS embed.FS

// testBuildFiltersCase represents a single test case for TestBuildFilters.
type testBuildFiltersCase struct {
	Name      string   `yaml:"name"`
	Spec      string   `yaml:"spec"`
	Delimiter string   `yaml:"delimiter"`
	Want      []Filter `yaml:"want"`
	WantCount int      `yaml:"wantCount"`
}

// testCheckStringOperandCase represents a single test case for
// TestCheckStringOperand.
type testCheckStringOperandCase struct {
	Name   string `yaml:"name"`
	Value  string `yaml:"value"`
	Filter Filter `yaml:"filter"`
	Want   bool   `yaml:"want"`
}

// loadTestData loads test data from embedded YAML files.
func loadTestData(filename string, v interface{}) error {
	data, err := testDataFS.ReadFile("testdata/" + filename)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, v)
}

const dataset = `[
  {"id": "theory-001", "name": "Flow", "category": "motivation", "priority": 2,
   "theorists": ["Csikszentmihalyi"], "description": "Optimal experience"},
  {"id": "theory-002", "name": "Scaffolding", "name_ja": "足場かけ", "category": "social_learning",
   "priority": 1, "theorists": ["Wood", "Bruner", "Ross"], "description": "Temporary support"},
  {"id": "theory-010", "name": "Behaviorism", "category": "learning_theory", "priority": 4,
   "theorists": ["Skinner", "Watson"], "description": "Observable behaviour"}
]`

func TestBuildFilters(t *testing.T) {
	var tests []testBuildFiltersCase
	require.NoError(t, loadTestData("filters_test_build_filters.yaml", &tests))

	for _, tt := range tests {
		t.Run(tt.Name, func(t *testing.T) {
			if tt.Delimiter != "" {
				t.Setenv("THEORYCTL_FILTER_DELIM", tt.Delimiter)
			}

			got := BuildFilters(tt.Spec)
			require.Len(t, got, tt.WantCount)
			for i, filter := range tt.Want {
				assert.Equal(t, filter.Key, got[i].Key)
				assert.Equal(t, filter.Operand, got[i].Operand)
				assert.Equal(t, filter.Value, got[i].Value)
				assert.Equal(t, filter.Negate, got[i].Negate)
			}
		})
	}
}

func TestCheckStringOperand(t *testing.T) {
	var tests []testCheckStringOperandCase
	require.NoError(t, loadTestData("filters_test_check_string_operand.yaml", &tests))

	for _, tt := range tests {
		t.Run(tt.Name, func(t *testing.T) {
			assert.Equal(t, tt.Want, checkStringOperand(tt.Value, tt.Filter))
		})
	}
}

func TestCheckNumericOperand(t *testing.T) {
	tests := []struct {
		name   string
		value  float64
		filter Filter
		want   bool
	}{
		{"equal", 3, Filter{Operand: "=", Value: "3"}, true},
		{"not equal", 3, Filter{Operand: "=", Value: "3", Negate: true}, false},
		{"greater", 3, Filter{Operand: ">", Value: "2"}, true},
		{"less", 3, Filter{Operand: "<", Value: "2"}, false},
		{"not less", 3, Filter{Operand: "<", Value: "2", Negate: true}, true},
		{"prefix falls back to text", 12, Filter{Operand: "^", Value: "1"}, true},
		{"non-numeric target falls back to text", 3, Filter{Operand: "=", Value: "three"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, checkNumericOperand(tt.value, tt.filter))
		})
	}
}

func TestCheckContainsOperand(t *testing.T) {
	tests := []struct {
		name   string
		value  interface{}
		filter Filter
		want   bool
	}{
		{"list member", []any{"Piaget", "Bruner"}, Filter{Operand: "@", Value: "Bruner"}, true},
		{"list substring", []any{"Piaget", "Bruner"}, Filter{Operand: "@", Value: "run"}, true},
		{"list not member", []any{"Piaget"}, Filter{Operand: "@", Value: "Bruner", Negate: true}, true},
		{"list negated hit", []any{"Piaget"}, Filter{Operand: "@", Value: "Piaget", Negate: true}, false},
		{"list equality", []any{"Piaget"}, Filter{Operand: "=", Value: "Pia"}, false},
		{"list regex", []any{"Piaget"}, Filter{Operand: "/", Value: "^P"}, true},
		{"map key", map[string]any{"source": "x"}, Filter{Operand: "@", Value: "source"}, true},
		{"map missing key", map[string]any{"source": "x"}, Filter{Operand: "@", Value: "url"}, false},
		{"unsupported", 3, Filter{Operand: "@", Value: "3"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, checkContainsOperand(tt.value, tt.filter))
		})
	}
}

func TestToFloat64(t *testing.T) {
	for _, v := range []interface{}{float64(2), float32(2), 2, int32(2), int64(2), uint(2), uint32(2), uint64(2)} {
		got, ok := toFloat64(v)
		assert.True(t, ok, "%T", v)
		assert.Equal(t, float64(2), got)
	}
	_, ok := toFloat64("2")
	assert.False(t, ok)
}

func TestFilterDataset(t *testing.T) {
	attrList := attrs.AttrList{
		{Key: "id", OutputKey: "id", Include: true},
		{Key: "category", OutputKey: "cat", Include: true},
		{Key: "priority", OutputKey: "priority", Include: true},
	}

	tests := []struct {
		name string
		spec string
		want []string
	}{
		{"no filter", "", []string{"theory-001", "theory-002", "theory-010"}},
		{"by output key", "cat=motivation", []string{"theory-001"}},
		{"by undisplayed field", "name^Sca", []string{"theory-002"}},
		{"numeric", "priority<3", []string{"theory-001", "theory-002"}},
		{"combined", "priority<3,id!=theory-001", []string{"theory-002"}},
		{"list membership", "theorists@Skinner", []string{"theory-010"}},
		{"missing field", "name_ja~足場かけ", []string{"theory-002"}},
		{"negated missing field", "name_ja!@x", []string{"theory-001", "theory-002", "theory-010"}},
		{"regex", "description/(?i)behaviou?r", []string{"theory-010"}},
		{"text", "text@bruner", []string{"theory-002"}},
		{"negated text", "text!@flow", []string{"theory-002", "theory-010"}},
		{"nothing", "cat=assessment", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterDataset(gjson.Parse(dataset), attrList, tt.spec)
			ids := []string{}
			for _, row := range got {
				ids = append(ids, row["id"].(string))
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestFilterDatasetProjectsAttrs(t *testing.T) {
	attrList := attrs.AttrList{
		{Key: "*", OutputKey: "*", TransformSpec: "u"},
		{Key: "name", OutputKey: "title", Include: true},
		{Key: "theorists[0]", OutputKey: "lead", Include: true},
	}

	got := FilterDataset(gjson.Parse(dataset), attrList, "id=theory-002")
	require.Len(t, got, 1)
	assert.Equal(t, map[string]interface{}{"title": "Scaffolding", "lead": "Wood"}, got[0])
}

func TestMatchText(t *testing.T) {
	rows := gjson.Parse(dataset).Array()

	tests := []struct {
		query string
		want  []bool
	}{
		{"", []bool{true, true, true}},
		{"FLOW", []bool{true, false, false}},
		{"足場", []bool{false, true, false}},
		{"theory-0", []bool{true, true, true}},
		{"watson", []bool{false, false, true}},
		{"support", []bool{false, true, false}},
		{"motivation", []bool{false, false, false}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			for i, row := range rows {
				assert.Equal(t, tt.want[i], MatchText(row, tt.query), "row %d", i)
			}
		})
	}
}
