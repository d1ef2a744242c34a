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
	"reflect"
	"time"

	"github.com/erikogenvik/beam-avrocoder/internal/errors"
)

// converter moves one Go type to and from goavro's native form.
type converter struct {
	toNative   func(rv reflect.Value) (any, error)
	fromNative func(native any, rv reflect.Value) error
}

// serializer converts values of a single Go type using its derived schema.
type serializer struct {
	t    reflect.Type
	root *node
	conv *converter
}

func newSerializer(t reflect.Type) (*serializer, error) {
	root, err := deriveSchema(t)
	if err != nil {
		return nil, err
	}
	conv, err := buildConverter(t, root, make(map[reflect.Type]*converter))
	if err != nil {
		return nil, err
	}
	return &serializer{t: t, root: root, conv: conv}, nil
}

// toNative converts v, which must be of the serializer's type or a pointer
// to it, to goavro's native form.
func (s *serializer) toNative(v any) (any, error) {
	if v == nil {
		if s.t.Kind() != reflect.Ptr {
			return nil, errors.Wrapf(ErrNilValue, "encoding %v", s.t)
		}
		return s.conv.toNative(reflect.Zero(s.t))
	}
	rv := reflect.ValueOf(v)
	if rv.Type() != s.t {
		if rv.Kind() != reflect.Ptr || rv.Type().Elem() != s.t {
			return nil, errors.Errorf("cannot encode value of type %v with Avro coder for %v", rv.Type(), s.t)
		}
		if rv.IsNil() {
			return nil, errors.Wrapf(ErrNilValue, "encoding %v", s.t)
		}
		rv = rv.Elem()
	}
	return s.conv.toNative(rv)
}

// fromNative builds a value of the serializer's type from goavro's native form.
func (s *serializer) fromNative(native any) (any, error) {
	out := reflect.New(s.t).Elem()
	if err := s.conv.fromNative(native, out); err != nil {
		return nil, err
	}
	return out.Interface(), nil
}

// buildConverter mirrors deriveSchema: t and n must describe the same shape.
// Converters for struct types are cached so recursive types terminate.
func buildConverter(t reflect.Type, n *node, records map[reflect.Type]*converter) (*converter, error) {
	switch n.kind {
	case kindBoolean:
		return &converter{
			toNative: func(rv reflect.Value) (any, error) { return rv.Bool(), nil },
			fromNative: func(native any, rv reflect.Value) error {
				b, ok := native.(bool)
				if !ok {
					return nativeTypeError(native, t)
				}
				rv.SetBool(b)
				return nil
			},
		}, nil
	case kindInt, kindLong:
		if n.logical == timestampMicros {
			return timeConverter(), nil
		}
		return intConverter(t, n.kind), nil
	case kindFloat:
		return &converter{
			toNative: func(rv reflect.Value) (any, error) { return float32(rv.Float()), nil },
			fromNative: func(native any, rv reflect.Value) error {
				f, ok := native.(float32)
				if !ok {
					return nativeTypeError(native, t)
				}
				rv.SetFloat(float64(f))
				return nil
			},
		}, nil
	case kindDouble:
		return &converter{
			toNative: func(rv reflect.Value) (any, error) { return rv.Float(), nil },
			fromNative: func(native any, rv reflect.Value) error {
				f, ok := native.(float64)
				if !ok {
					return nativeTypeError(native, t)
				}
				rv.SetFloat(f)
				return nil
			},
		}, nil
	case kindString:
		return &converter{
			toNative: func(rv reflect.Value) (any, error) { return rv.String(), nil },
			fromNative: func(native any, rv reflect.Value) error {
				s, ok := native.(string)
				if !ok {
					return nativeTypeError(native, t)
				}
				rv.SetString(s)
				return nil
			},
		}, nil
	case kindBytes:
		return &converter{
			toNative: func(rv reflect.Value) (any, error) { return rv.Bytes(), nil },
			fromNative: func(native any, rv reflect.Value) error {
				b, ok := native.([]byte)
				if !ok {
					return nativeTypeError(native, t)
				}
				if len(b) == 0 {
					rv.Set(reflect.Zero(t))
					return nil
				}
				rv.SetBytes(append([]byte(nil), b...))
				return nil
			},
		}, nil
	case kindArray:
		return arrayConverter(t, n, records)
	case kindMap:
		return mapConverter(t, n, records)
	case kindUnion:
		return unionConverter(t, n, records)
	case kindRecord:
		return recordConverter(t, n, records)
	default:
		return nil, errors.Errorf("no converter for Avro %v of %v", primitiveNames[n.kind], t)
	}
}

func intConverter(t reflect.Type, kind avroKind) *converter {
	unsigned := t.Kind() == reflect.Uint8 || t.Kind() == reflect.Uint16 || t.Kind() == reflect.Uint32
	return &converter{
		toNative: func(rv reflect.Value) (any, error) {
			var v int64
			if unsigned {
				v = int64(rv.Uint())
			} else {
				v = rv.Int()
			}
			if kind == kindInt {
				return int32(v), nil
			}
			return v, nil
		},
		fromNative: func(native any, rv reflect.Value) error {
			var v int64
			switch n := native.(type) {
			case int32:
				v = int64(n)
			case int64:
				v = n
			default:
				return nativeTypeError(native, t)
			}
			if unsigned {
				if v < 0 || rv.OverflowUint(uint64(v)) {
					return errors.Errorf("Avro value %d overflows %v", v, t)
				}
				rv.SetUint(uint64(v))
				return nil
			}
			if rv.OverflowInt(v) {
				return errors.Errorf("Avro value %d overflows %v", v, t)
			}
			rv.SetInt(v)
			return nil
		},
	}
}

func timeConverter() *converter {
	return &converter{
		toNative: func(rv reflect.Value) (any, error) {
			tm := rv.Interface().(time.Time)
			if tm.Location() != time.UTC {
				return nil, errors.Wrapf(ErrLossyTime, "%v is in location %v, not UTC", tm, tm.Location())
			}
			if tm.Nanosecond()%int(time.Microsecond) != 0 {
				return nil, errors.Wrapf(ErrLossyTime, "%v has sub-microsecond precision", tm)
			}
			return tm, nil
		},
		fromNative: func(native any, rv reflect.Value) error {
			tm, ok := native.(time.Time)
			if !ok {
				return nativeTypeError(native, timeType)
			}
			rv.Set(reflect.ValueOf(tm.UTC()))
			return nil
		},
	}
}

func arrayConverter(t reflect.Type, n *node, records map[reflect.Type]*converter) (*converter, error) {
	elem, err := buildConverter(t.Elem(), n.items, records)
	if err != nil {
		return nil, err
	}
	return &converter{
		toNative: func(rv reflect.Value) (any, error) {
			out := make([]any, rv.Len())
			for i := range out {
				v, err := elem.toNative(rv.Index(i))
				if err != nil {
					return nil, errors.WithContextf(err, "element %d", i)
				}
				out[i] = v
			}
			return out, nil
		},
		fromNative: func(native any, rv reflect.Value) error {
			items, ok := native.([]any)
			if !ok {
				return nativeTypeError(native, t)
			}
			if t.Kind() == reflect.Array {
				if len(items) != t.Len() {
					return errors.Errorf("Avro array of %d items does not fit %v", len(items), t)
				}
			} else {
				if len(items) == 0 {
					rv.Set(reflect.Zero(t))
					return nil
				}
				rv.Set(reflect.MakeSlice(t, len(items), len(items)))
			}
			for i, item := range items {
				if err := elem.fromNative(item, rv.Index(i)); err != nil {
					return errors.WithContextf(err, "element %d", i)
				}
			}
			return nil
		},
	}, nil
}

func mapConverter(t reflect.Type, n *node, records map[reflect.Type]*converter) (*converter, error) {
	elem, err := buildConverter(t.Elem(), n.items, records)
	if err != nil {
		return nil, err
	}
	return &converter{
		toNative: func(rv reflect.Value) (any, error) {
			out := make(map[string]any, rv.Len())
			iter := rv.MapRange()
			for iter.Next() {
				k := iter.Key().String()
				v, err := elem.toNative(iter.Value())
				if err != nil {
					return nil, errors.WithContextf(err, "map key %q", k)
				}
				out[k] = v
			}
			return out, nil
		},
		fromNative: func(native any, rv reflect.Value) error {
			entries, ok := native.(map[string]any)
			if !ok {
				return nativeTypeError(native, t)
			}
			if len(entries) == 0 {
				rv.Set(reflect.Zero(t))
				return nil
			}
			m := reflect.MakeMapWithSize(t, len(entries))
			for k, v := range entries {
				val := reflect.New(t.Elem()).Elem()
				if err := elem.fromNative(v, val); err != nil {
					return errors.WithContextf(err, "map key %q", k)
				}
				m.SetMapIndex(reflect.ValueOf(k).Convert(t.Key()), val)
			}
			rv.Set(m)
			return nil
		},
	}, nil
}

// unionConverter handles pointers, which derive to [null, T] unions.
func unionConverter(t reflect.Type, n *node, records map[reflect.Type]*converter) (*converter, error) {
	if t.Kind() != reflect.Ptr || len(n.branches) != 2 || n.branches[0].kind != kindNull {
		return nil, errors.Errorf("%v does not match a nullable Avro union", t)
	}
	inner := n.branches[1]
	elem, err := buildConverter(t.Elem(), inner, records)
	if err != nil {
		return nil, err
	}
	branch := inner.branchName()
	return &converter{
		toNative: func(rv reflect.Value) (any, error) {
			if rv.IsNil() {
				return nil, nil
			}
			v, err := elem.toNative(rv.Elem())
			if err != nil {
				return nil, err
			}
			return map[string]any{branch: v}, nil
		},
		fromNative: func(native any, rv reflect.Value) error {
			if native == nil {
				rv.Set(reflect.Zero(t))
				return nil
			}
			wrapped, ok := native.(map[string]any)
			if !ok || len(wrapped) != 1 {
				return nativeTypeError(native, t)
			}
			p := reflect.New(t.Elem())
			for _, v := range wrapped {
				if err := elem.fromNative(v, p.Elem()); err != nil {
					return err
				}
			}
			rv.Set(p)
			return nil
		},
	}, nil
}

type fieldPlan struct {
	name  string
	index []int
	conv  *converter
}

func recordConverter(t reflect.Type, n *node, records map[reflect.Type]*converter) (*converter, error) {
	if c, ok := records[t]; ok {
		return c, nil
	}
	c := &converter{}
	records[t] = c

	plans := make([]fieldPlan, 0, len(n.fields))
	for _, f := range n.fields {
		fc, err := buildConverter(t.FieldByIndex(f.index).Type, f.typ, records)
		if err != nil {
			return nil, err
		}
		plans = append(plans, fieldPlan{name: f.name, index: f.index, conv: fc})
	}

	c.toNative = func(rv reflect.Value) (any, error) {
		out := make(map[string]any, len(plans))
		for _, p := range plans {
			v, err := p.conv.toNative(rv.FieldByIndex(p.index))
			if err != nil {
				return nil, errors.WithContextf(err, "field %v.%v", t.Name(), p.name)
			}
			out[p.name] = v
		}
		return out, nil
	}
	c.fromNative = func(native any, rv reflect.Value) error {
		m, ok := native.(map[string]any)
		if !ok {
			return nativeTypeError(native, t)
		}
		for _, p := range plans {
			v, ok := m[p.name]
			if !ok {
				return errors.Errorf("Avro record %v has no field %q", n.name, p.name)
			}
			if err := p.conv.fromNative(v, rv.FieldByIndex(p.index)); err != nil {
				return errors.WithContextf(err, "field %v.%v", t.Name(), p.name)
			}
		}
		return nil
	}
	return c, nil
}

func nativeTypeError(native any, t reflect.Type) error {
	return errors.Errorf("cannot convert Avro native %T to %v", native, t)
}
