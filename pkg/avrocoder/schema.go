// Licensed to the Apache Software Foundation (ASF) under one or more
// contributor license agreements.  See the NOTICE file distributed with
// this work for additional information regarding copyright ownership.
// The ASF licenses this file to You under the Apache License, Version 2.0
// (the "License"); you may not use this file except in compliance with
// the License.  You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package avrocoder

import (
	"encoding/json"
	"reflect"
	"strings"
	"time"
	"unicode"

	"github.com/erikogenvik/beam-avrocoder/internal/errors"
)

type avroKind int

const (
	kindNull avroKind = iota
	kindBoolean
	kindInt
	kindLong
	kindFloat
	kindDouble
	kindBytes
	kindString
	kindArray
	kindMap
	kindRecord
	kindUnion
)

var primitiveNames = map[avroKind]string{
	kindNull:    "null",
	kindBoolean: "boolean",
	kindInt:     "int",
	kindLong:    "long",
	kindFloat:   "float",
	kindDouble:  "double",
	kindBytes:   "bytes",
	kindString:  "string",
}

const timestampMicros = "timestamp-micros"

var timeType = reflect.TypeOf(time.Time{})

// node is one Avro type in a derived schema. Record nodes are shared, so a
// recursive Go type yields a cyclic graph.
type node struct {
	kind     avroKind
	logical  string
	name     string   // record full name
	fields   []*field // record
	items    *node    // array items, map values
	branches []*node  // union
}

type field struct {
	name  string
	index []int
	typ   *node
}

var nullNode = &node{kind: kindNull}

// branchName is the key goavro uses for n inside a union.
func (n *node) branchName() string {
	switch n.kind {
	case kindRecord:
		return n.name
	case kindArray:
		return "array"
	case kindMap:
		return "map"
	default:
		return primitiveNames[n.kind]
	}
}

// schemaBuilder derives Avro types from Go types. Record names must map to a
// single Go type per schema.
type schemaBuilder struct {
	records map[reflect.Type]*node
	names   map[string]reflect.Type
}

// deriveSchema returns the Avro type for the record type t. A pointer to a
// struct becomes a union of null and the record.
func deriveSchema(t reflect.Type) (*node, error) {
	b := &schemaBuilder{
		records: make(map[reflect.Type]*node),
		names:   make(map[string]reflect.Type),
	}
	st := t
	if st.Kind() == reflect.Ptr {
		st = st.Elem()
	}
	if st.Kind() != reflect.Struct {
		return nil, errors.Errorf("%v is not a struct or a pointer to a struct", t)
	}
	rec, err := b.record(st)
	if err != nil {
		return nil, err
	}
	if t.Kind() == reflect.Ptr {
		return &node{kind: kindUnion, branches: []*node{nullNode, rec}}, nil
	}
	return rec, nil
}

func (b *schemaBuilder) record(t reflect.Type) (*node, error) {
	if n, ok := b.records[t]; ok {
		return n, nil
	}
	if t.Name() == "" {
		return nil, errors.Errorf("anonymous struct %v has no Avro record name", t)
	}
	name := recordName(t)
	if other, ok := b.names[name]; ok {
		return nil, errors.Errorf("types %v and %v both map to Avro record %q", other, t, name)
	}
	n := &node{kind: kindRecord, name: name}
	b.records[t] = n
	b.names[name] = t

	seen := make(map[string]string)
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() || (sf.Anonymous && sf.Type == codedType) {
			continue
		}
		fname, skip := fieldName(sf)
		if skip {
			continue
		}
		if prev, ok := seen[fname]; ok {
			return nil, errors.Errorf("fields %v and %v of %v both map to Avro field %q", prev, sf.Name, t, fname)
		}
		seen[fname] = sf.Name
		ft, err := b.fieldType(sf.Type)
		if err != nil {
			return nil, errors.WithContextf(err, "deriving Avro type of field %v.%v", t.Name(), sf.Name)
		}
		n.fields = append(n.fields, &field{name: fname, index: sf.Index, typ: ft})
	}
	return n, nil
}

func (b *schemaBuilder) fieldType(t reflect.Type) (*node, error) {
	if t == timeType {
		return &node{kind: kindLong, logical: timestampMicros}, nil
	}
	switch t.Kind() {
	case reflect.Bool:
		return &node{kind: kindBoolean}, nil
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Uint8, reflect.Uint16:
		return &node{kind: kindInt}, nil
	case reflect.Int, reflect.Int64, reflect.Uint32:
		return &node{kind: kindLong}, nil
	case reflect.Float32:
		return &node{kind: kindFloat}, nil
	case reflect.Float64:
		return &node{kind: kindDouble}, nil
	case reflect.String:
		return &node{kind: kindString}, nil
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return &node{kind: kindBytes}, nil
		}
		return b.container(kindArray, t.Elem())
	case reflect.Array:
		return b.container(kindArray, t.Elem())
	case reflect.Map:
		if t.Key().Kind() != reflect.String {
			return nil, errors.Errorf("map key type %v is not a string", t.Key())
		}
		return b.container(kindMap, t.Elem())
	case reflect.Struct:
		return b.record(t)
	case reflect.Ptr:
		elem := t.Elem()
		if elem.Kind() == reflect.Ptr {
			return nil, errors.Errorf("nested pointer type %v has no Avro representation", t)
		}
		if elem == timeType {
			return nil, errors.Errorf("nullable %v has no Avro representation", elem)
		}
		inner, err := b.fieldType(elem)
		if err != nil {
			return nil, err
		}
		return &node{kind: kindUnion, branches: []*node{nullNode, inner}}, nil
	default:
		return nil, errors.Errorf("Go type %v has no Avro representation", t)
	}
}

func (b *schemaBuilder) container(kind avroKind, elem reflect.Type) (*node, error) {
	items, err := b.fieldType(elem)
	if err != nil {
		return nil, err
	}
	return &node{kind: kind, items: items}, nil
}

// fieldName returns the Avro field name of sf and whether to skip it.
func fieldName(sf reflect.StructField) (string, bool) {
	if tag, ok := sf.Tag.Lookup("avro"); ok {
		name := tagName(tag)
		if name == "-" {
			return "", true
		}
		if name != "" {
			return sanitize(name), false
		}
	}
	if tag := sf.Tag.Get("beam"); tag != "" {
		if name := tagName(tag); name != "" {
			return sanitize(name), false
		}
	}
	return sanitize(sf.Name), false
}

// tagName returns the name part of a struct tag value, dropping options.
func tagName(tag string) string {
	if idx := strings.Index(tag, ","); idx != -1 {
		return tag[:idx]
	}
	return tag
}

// recordName returns the Avro full name of a named struct type: the package
// path segments as namespace and the type name as name.
func recordName(t reflect.Type) string {
	var parts []string
	for _, seg := range strings.FieldsFunc(t.PkgPath(), func(r rune) bool { return r == '/' || r == '.' }) {
		parts = append(parts, sanitize(seg))
	}
	return strings.Join(append(parts, sanitize(t.Name())), ".")
}

// sanitize maps s onto the Avro name grammar [A-Za-z_][A-Za-z0-9_]*.
func sanitize(s string) string {
	var b strings.Builder
	for i, r := range s {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || r == '_'):
			b.WriteRune(r)
		case r < unicode.MaxASCII && unicode.IsDigit(r):
			if i == 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "_"
	}
	return b.String()
}

// schemaJSON renders n as an Avro schema document. Each record is defined at
// its first occurrence and referenced by full name afterwards.
func schemaJSON(n *node) (string, error) {
	out, err := json.Marshal(n.jsonValue(make(map[string]bool)))
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func (n *node) jsonValue(defined map[string]bool) any {
	switch n.kind {
	case kindRecord:
		if defined[n.name] {
			return n.name
		}
		defined[n.name] = true
		fields := make([]any, 0, len(n.fields))
		for _, f := range n.fields {
			fields = append(fields, map[string]any{"name": f.name, "type": f.typ.jsonValue(defined)})
		}
		return map[string]any{"type": "record", "name": n.name, "fields": fields}
	case kindArray:
		return map[string]any{"type": "array", "items": n.items.jsonValue(defined)}
	case kindMap:
		return map[string]any{"type": "map", "values": n.items.jsonValue(defined)}
	case kindUnion:
		branches := make([]any, 0, len(n.branches))
		for _, br := range n.branches {
			branches = append(branches, br.jsonValue(defined))
		}
		return branches
	default:
		if n.logical != "" {
			return map[string]any{"type": primitiveNames[n.kind], "logicalType": n.logical}
		}
		return primitiveNames[n.kind]
	}
}
