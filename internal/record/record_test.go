// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package record

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDoc = `{
  "metadata": {"version": "2.0.0", "tags": ["a", "b"], "nested": {"k": 1}},
  "theories": [
    {
      "id": "theory-001",
      "name": "Constructivism",
      "name_ja": "構成主義",
      "category": "learning_theory",
      "priority": 5,
      "theorists": ["Piaget", "Vygotsky"],
      "description": "Learners construct knowledge.",
      "description_ja": "",
      "key_principles": ["active learning"],
      "applications": [],
      "strengths": [],
      "limitations": [],
      "source_url": "https://example.com",
      "weight": 3
    }
  ]
}`

func TestParseKeepsUnknownFields(t *testing.T) {
	c, err := Parse([]byte(sampleDoc))
	require.NoError(t, err)
	require.Len(t, c.Theories, 1)

	r := c.Theories[0]
	assert.Equal(t, "Constructivism", r.Name)
	assert.Equal(t, []string{"Piaget", "Vygotsky"}, r.Theorists)
	assert.Equal(t, "https://example.com", r.Extra["source_url"])
	assert.Equal(t, float64(3), r.Extra["weight"])

	out, err := json.Marshal(r)
	require.NoError(t, err)

	var back Record
	require.NoError(t, json.Unmarshal(out, &back))
	assert.True(t, r.Equal(back))
	assert.Contains(t, string(out), `"source_url":"https://example.com"`)
}

func TestMarshalEmitsEmptyLists(t *testing.T) {
	out, err := json.Marshal(Record{ID: "theory-002", Name: "X"})
	require.NoError(t, err)
	assert.Contains(t, string(out), `"theorists":[]`)
	assert.Contains(t, string(out), `"limitations":[]`)
}

func TestParseInvalid(t *testing.T) {
	_, err := Parse([]byte("{not json"))
	assert.Error(t, err)

	c, err := Parse([]byte(`{"theories": []}`))
	require.NoError(t, err)
	assert.NotNil(t, c.Metadata)
}

func TestCloneIsIndependent(t *testing.T) {
	c, err := Parse([]byte(sampleDoc))
	require.NoError(t, err)

	clone := c.Clone()

	c.Theories[0].Name = "changed"
	c.Theories[0].Theorists[0] = "changed"
	c.Theories[0].Extra["source_url"] = "changed"
	c.Metadata["version"] = "9"
	c.Metadata["tags"].([]any)[0] = "z"
	c.Metadata["nested"].(map[string]any)["k"] = 2
	c.Theories = append(c.Theories, Record{ID: "theory-002"})

	require.Len(t, clone.Theories, 1)
	assert.Equal(t, "Constructivism", clone.Theories[0].Name)
	assert.Equal(t, "Piaget", clone.Theories[0].Theorists[0])
	assert.Equal(t, "https://example.com", clone.Theories[0].Extra["source_url"])
	assert.Equal(t, "2.0.0", clone.Metadata["version"])
	assert.Equal(t, "a", clone.Metadata["tags"].([]any)[0])
	assert.Equal(t, float64(1), clone.Metadata["nested"].(map[string]any)["k"])
}

func TestClonePreservesNil(t *testing.T) {
	r := Record{ID: "theory-001"}
	c := r.Clone()
	assert.Nil(t, c.Theorists)
	assert.Nil(t, c.Extra)

	empty := Collection{}.Clone()
	assert.NotNil(t, empty.Metadata)
	assert.NotNil(t, empty.Theories)
	assert.Empty(t, empty.Theories)
}

func TestEqual(t *testing.T) {
	base := Record{ID: "t1", Name: "A", Theorists: []string{"x", "y"}}

	tests := []struct {
		name  string
		other Record
		want  bool
	}{
		{"identical", Record{ID: "t1", Name: "A", Theorists: []string{"x", "y"}}, true},
		{"nil vs empty list", Record{ID: "t1", Name: "A", Theorists: []string{"x", "y"}, Strengths: []string{}}, true},
		{"scalar differs", Record{ID: "t1", Name: "B", Theorists: []string{"x", "y"}}, false},
		{"list order differs", Record{ID: "t1", Name: "A", Theorists: []string{"y", "x"}}, false},
		{"extra differs", Record{ID: "t1", Name: "A", Theorists: []string{"x", "y"}, Extra: map[string]any{"k": "v"}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, base.Equal(tt.other))
			assert.Equal(t, tt.want, tt.other.Equal(base))
		})
	}
}

func TestNextID(t *testing.T) {
	tests := []struct {
		name    string
		records []Record
		want    string
	}{
		{"empty", nil, "theory-001"},
		{"sequential", []Record{{ID: "theory-001"}, {ID: "theory-002"}}, "theory-003"},
		{"gap uses max", []Record{{ID: "theory-010"}, {ID: "theory-002"}}, "theory-011"},
		{"ignores foreign ids", []Record{{ID: "theory-sample"}, {ID: "other-900"}, {ID: "theory-004"}}, "theory-005"},
		{"wide suffix", []Record{{ID: "theory-1234"}}, "theory-1235"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextID(tt.records))
		})
	}
}

func TestValidID(t *testing.T) {
	assert.True(t, ValidID("theory-001"))
	assert.True(t, ValidID("theory-12345"))
	assert.False(t, ValidID("theory-01"))
	assert.False(t, ValidID("theory-abc"))
	assert.False(t, ValidID(""))
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(Record{ID: "theory-001", NameJa: "名前", Category: "motivation"}))

	err := Validate(Record{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalid))

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Errors, 3)
	assert.Equal(t, "id", verr.Errors[0].Field)
}

func TestValidateImport(t *testing.T) {
	tests := []struct {
		name    string
		doc     Collection
		wantErr bool
	}{
		{"empty", Collection{}, true},
		{"valid", Collection{Theories: []Record{{ID: "a", Name: "A"}, {ID: "b", NameJa: "B"}}}, false},
		{"missing id", Collection{Theories: []Record{{Name: "A"}}}, true},
		{"missing name", Collection{Theories: []Record{{ID: "a"}}}, true},
		{"duplicate id", Collection{Theories: []Record{{ID: "a", Name: "A"}, {ID: "a", Name: "B"}}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateImport(tt.doc)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalid)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestSet(t *testing.T) {
	r := New("theory-009")
	assert.Equal(t, 4, r.Priority)

	require.NoError(t, r.Set("name", "  Behaviorism "))
	require.NoError(t, r.Set("priority", "2"))
	require.NoError(t, r.Set("theorists", "Skinner; Watson ;;"))
	require.NoError(t, r.Set("custom", "value"))

	assert.Equal(t, "Behaviorism", r.Name)
	assert.Equal(t, 2, r.Priority)
	assert.Equal(t, []string{"Skinner", "Watson"}, r.Theorists)
	assert.Equal(t, "value", r.Extra["custom"])

	assert.ErrorIs(t, r.Set("priority", "high"), ErrInvalid)
	assert.ErrorIs(t, r.Set("id", "theory-1"), ErrInvalid)
}

func TestMissingFields(t *testing.T) {
	r := Record{ID: "theory-001", Name: " ", Theorists: []string{"", " "}, Strengths: []string{"ok"}}
	assert.Equal(t, []string{"name", "theorists", "bogus"}, MissingFields(r, "id", "name", "theorists", "strengths", "bogus"))
}

func TestCategories(t *testing.T) {
	assert.Equal(t, "Motivation theory", CategoryLabel("motivation"))
	assert.Equal(t, "unknown_key", CategoryLabel("unknown_key"))
	assert.Len(t, Categories, 12)

	got := UsedCategories([]Record{{Category: "b"}, {Category: "a"}, {Category: "b"}, {}})
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestMarshalCollection(t *testing.T) {
	out, err := Collection{}.Marshal()
	require.NoError(t, err)
	assert.JSONEq(t, `{"metadata":{},"theories":[]}`, string(out))
}
