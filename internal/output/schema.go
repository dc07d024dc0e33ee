// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"fmt"
	"io"
	"os"
	"reflect"
	"sort"
	"strings"

	"github.com/apex/log"
)

// schemaTag represents a discovered struct field used when emitting schema
// information (--schema flag).
type schemaTag struct {
	Name string
	Type string
}

// print renders the tag into its display form.
func (t schemaTag) print() string {
	if t.Type == "" {
		return t.Name
	}
	return fmt.Sprintf("%-16s %s", t.Name, t.Type)
}

// NewTag constructs a schemaTag from a json struct tag value and an optional
// holder prefix used to build dotted attribute names. Untagged or ignored
// fields yield a zero tag.
func NewTag(h string, s string) schemaTag {
	name, _, _ := strings.Cut(s, ",")
	if name == "" || name == "-" {
		return schemaTag{}
	}
	if h != "" {
		name = h + "." + name
	}
	return schemaTag{Name: name}
}

// maxSchemaDepth limits the depth of schema walking to prevent infinite
// recursion.
const maxSchemaDepth = 1

// DumpSchema writes a sorted list of attribute names for the provided type
// to the provided writer. If w is nil, os.Stdout is used.
func DumpSchema(prefix string, typ reflect.Type, w io.Writer) {
	if w == nil {
		w = os.Stdout
	}

	fmt.Fprintln(w,
		`Record attributes that are directly available to the --attrs, --filter and
--sort flags. Keys not listed here are kept as is and can be addressed the
same way.`)
	fmt.Fprintln(w, "")

	tags := dumpSchemaWalker(prefix, typ, 0)
	if len(tags) == 0 {
		log.Debugf("No tags found for type: %s", typ.Name())
		return
	}

	sort.Slice(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })

	for _, tag := range tags {
		fmt.Fprintln(w, tag.print())
	}
}

// dumpSchemaWalker recursively walks a struct type discovering json tags.
func dumpSchemaWalker(holder string, typ reflect.Type, depth int) []schemaTag {
	tags := make([]schemaTag, 0)

	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)

		tag := NewTag(holder, field.Tag.Get("json"))
		if tag.Name == "" {
			continue
		}

		ft := field.Type
		if ft.Kind() == reflect.Ptr {
			ft = ft.Elem()
		}

		switch ft.Kind() {
		case reflect.Struct:
			tag.Type = "object"
			tags = append(tags, tag)
			if depth < maxSchemaDepth {
				tags = append(tags, dumpSchemaWalker(tag.Name, ft, depth+1)...)
			}
			continue
		case reflect.Slice:
			tag.Type = "list"
		case reflect.Int, reflect.Int64, reflect.Float64:
			tag.Type = "number"
		default:
			tag.Type = ft.Kind().String()
		}

		tags = append(tags, tag)
	}

	return tags
}
