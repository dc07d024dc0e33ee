// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package attrs

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/staranto/theoryctl/internal/log"
	"github.com/staranto/theoryctl/internal/record"
)

// Attr represents each of the keys to be included in the output. These are
// the JSON keys of a record, thus the name.
type Attr struct {
	// The gjson path to extract from each record.
	Key string `yaml:"key" json:"Key"`
	// Should this Attr be included in output or is it just
	// intended for filtering and sorting?
	Include bool `yaml:"include" json:"Include"`
	// The key to use in the output. This is also used as the column title when
	// output=text.
	OutputKey string `yaml:"outputKey" json:"OutputKey"`
	// Transformation spec to apply to the output value.
	TransformSpec string `yaml:"transformSpec" json:"TransformSpec"`
}

var lengthRegex = regexp.MustCompile(`-?\d+`)

// Transform applies the attribute's transform spec to a value and returns the
// transformed result.
//
//	t  timestamp to local time      T  timestamp to time ago
//	l  lower case                   u  upper case
//	c  category key to label        j  join a list with ", "
//	n  number with thousands commas b  number as binary bytes
//	N  truncate to N, -N elide the middle
func (a *Attr) Transform(value interface{}) interface{} {
	spec := a.TransformSpec
	if spec == "" {
		return value
	}

	if list, ok := value.([]interface{}); ok && strings.ContainsAny(spec, "j") {
		parts := make([]string, 0, len(list))
		for _, v := range list {
			parts = append(parts, fmt.Sprint(v))
		}
		value = strings.Join(parts, ", ")
	}

	if n, ok := value.(float64); ok {
		switch {
		case strings.Contains(spec, "b") && n >= 0:
			return humanize.IBytes(uint64(n))
		case strings.Contains(spec, "n"):
			return humanize.Comma(int64(n))
		}
		log.Tracef("number value: value=%v", value)
		return value
	}

	result, ok := value.(string)
	if !ok {
		log.Tracef("non-string value: value=%v", value)
		return value
	}

	if strings.Contains(spec, "c") {
		result = record.CategoryLabel(result)
	}

	// Convert UTC time to local or time ago.
	if strings.ContainsAny(spec, "tT") {
		if t, err := time.Parse(time.RFC3339, result); err == nil {
			local := t.In(time.Local)
			if strings.Contains(spec, "T") {
				result = humanize.Time(local)
				log.Tracef("time ago: result=%s", result)
			} else {
				result = local.Format("2006-01-02T15:04:05MST")
				log.Tracef("time local: result=%s", result)
			}
		}
	}

	// We need to know which case transformation appears last. This covers the
	// case where there has been a global case transformation prepended to the
	// attrs transformation and allows the attr's to carry more weight.
	// IOW... --attrs '*::U,name::l' will be lower case.
	lastL := strings.LastIndexAny(spec, "lL")
	lastU := strings.LastIndexAny(spec, "uU")

	if lastL > lastU {
		result = strings.ToLower(result)
	} else if lastU > lastL {
		result = strings.ToUpper(result)
	}

	// Same logic as above re: case. A more specific length transformation
	// overrides a global one.
	match := lengthRegex.FindAllString(spec, -1)
	if len(match) != 0 {
		l, _ := strconv.Atoi(match[len(match)-1])
		result = truncate(result, l)
	}

	return result
}

// truncate shortens s to l runes, or elides the middle when l is negative.
func truncate(s string, l int) string {
	runes := []rune(s)
	abs := int(math.Abs(float64(l)))
	if len(runes) <= abs {
		return s
	}
	if l >= 0 {
		log.Tracef("length trunc: len=%d", l)
		return string(runes[:l])
	}

	side := abs/2 - 1
	if side < 1 {
		return string(runes[:abs])
	}
	log.Tracef("length middle: len=%d", abs)
	return string(runes[:side]) + ".." + string(runes[len(runes)-side:])
}

// AttrList is a collection of Attr used to shape output fields.
type AttrList []Attr

// Defaults is the column set ls shows when --attrs does not replace it.
func Defaults() AttrList {
	return AttrList{
		{Key: "id", OutputKey: "id", Include: true},
		{Key: "name", OutputKey: "name", Include: true},
		{Key: "category", OutputKey: "category", Include: true},
		{Key: "priority", OutputKey: "priority", Include: true},
		{Key: "theorists", OutputKey: "theorists", Include: true, TransformSpec: "j"},
	}
}

// Set parses each spec from --attrs and adds it to the AttrList.
func (a *AttrList) Set(value string) error {
	if value == "" || value == "*" {
		log.Debugf("early return: value=%s", value)
		return nil
	}

	const (
		jsonIdx = iota
		outputIdx
		transformIdx
	)

	// There are three : delimited fields in each spec. The first is the gjson
	// path to extract from the record. The second is the key to use in the
	// output. The third is the transformation spec to apply to the output
	// value. The latter two are optional. The output key defaults to the last
	// section of the path.
	specs := strings.Split(value, ",")
	log.Debugf("specs split: specs=%v", specs)
specloop:
	for _, spec := range specs {
		attr := Attr{
			Include: true,
		}

		fields := strings.Split(spec, ":")

		// A leading ! excludes the attribute from the output.
		attr.Key = strings.TrimSpace(fields[jsonIdx])
		if strings.HasPrefix(attr.Key, "!") {
			attr.Include = false
			attr.Key = attr.Key[1:]
		}
		attr.Key = strings.TrimPrefix(attr.Key, ".")
		if attr.Key == "" {
			return fmt.Errorf("empty attribute in %q", value)
		}

		if attr.Key == "*" {
			attr.Include = false
		}

		if len(fields) == 1 {
			segments := strings.Split(attr.Key, ".")
			attr.OutputKey = segments[len(segments)-1]
		} else if fields[outputIdx] != "" {
			attr.OutputKey = strings.TrimSpace(fields[outputIdx])
		} else {
			attr.OutputKey = attr.Key
		}

		if len(fields) > transformIdx {
			attr.TransformSpec = strings.TrimSpace(fields[transformIdx])
		}
		log.Tracef("attr parsed: key=%s, output=%s, spec=%s", attr.Key, attr.OutputKey, attr.TransformSpec)

		// If the attr already exists in the list (because it is a default for
		// a command or the user double-entered it), apply the OutputKey, Include
		// and TransformSpec to the existing Attr.
		for i := range *a {
			if (*a)[i].Key == attr.Key || (*a)[i].OutputKey == attr.Key {
				(*a)[i].Include = attr.Include
				(*a)[i].OutputKey = attr.OutputKey
				if attr.TransformSpec != "" {
					(*a)[i].TransformSpec = attr.TransformSpec
				}
				continue specloop
			}
		}

		*a = append(*a, attr)
	}

	return nil
}

// SetGlobalTransformSpec inserts a global transform spec at the front of all
// attrs in the list.
func (a *AttrList) SetGlobalTransformSpec() error {
	spec := ""

	// If there is more than one global spec, take the first.
	for attr := range *a {
		if (*a)[attr].Key == "*" {
			spec = (*a)[attr].TransformSpec
			break
		}
	}

	if spec == "" {
		return nil
	}

	for attr := range *a {
		if (*a)[attr].Key == "*" {
			continue
		}
		(*a)[attr].TransformSpec = spec + "," + (*a)[attr].TransformSpec
	}
	log.Debugf("global spec prepended: spec=%s", spec)

	return nil
}

// Keys returns the paths of every attribute, included or not.
func (a AttrList) Keys() []string {
	keys := make([]string, 0, len(a))
	for _, attr := range a {
		if attr.Key != "*" {
			keys = append(keys, attr.Key)
		}
	}
	return keys
}

// String returns a string representation of the AttrList. This matches the
// format of the original --attrs flag.
func (a *AttrList) String() string {
	result := make([]string, 0, len(*a))
	for _, attr := range *a {
		result = append(result, fmt.Sprintf("%s:%s:%s", attr.Key, attr.OutputKey, attr.TransformSpec))
	}
	return strings.Join(result, ",")
}

// Type returns the flag type for use with the flag.Value interface.
func (a *AttrList) Type() string { return "list" }
