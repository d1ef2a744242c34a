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
	"context"
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/erikogenvik/beam-avrocoder/internal/errors"
	"github.com/linkedin/goavro/v2"
)

// Coder encodes and decodes values of a single Go struct type with the Avro
// binary format. The type is the only durable state: the serializer, schema
// and goavro codec are derived from it on first use and cached.
//
// A Coder is safe for concurrent use. Concurrent first uses may each derive
// the schema; one result is kept.
type Coder struct {
	t        reflect.Type
	resolved atomic.Pointer[resolution]
}

// resolution is the derived, non-transferable state of a Coder. A failed
// derivation is cached too, since it depends on the type alone.
type resolution struct {
	ser    *serializer
	codec  *goavro.Codec
	schema string
	err    error
}

// New returns an unresolved Coder for t, which must be a named struct type or
// a pointer to one. Nothing is derived until the Coder is first used.
func New(t reflect.Type) *Coder {
	return &Coder{t: t}
}

// Of returns an unresolved Coder for T.
func Of[T any]() *Coder {
	return New(reflect.TypeOf((*T)(nil)).Elem())
}

// Type returns the type the Coder encodes.
func (c *Coder) Type() reflect.Type {
	return c.t
}

func (c *Coder) String() string {
	return fmt.Sprintf("%v[avro]", c.t)
}

// Schema returns the Avro schema derived for the Coder's type as JSON.
func (c *Coder) Schema() (string, error) {
	r := c.resolve()
	if r.err != nil {
		return "", r.err
	}
	return r.schema, nil
}

// Encode writes the Avro binary encoding of v to w. v must have the Coder's
// type or be a pointer to it. Exactly the bytes of one datum are written with
// no length prefix. w is flushed if it has a Flush method and is never closed.
func (c *Coder) Encode(v any, w io.Writer) error {
	r := c.resolve()
	if r.err != nil {
		return r.err
	}
	native, err := r.ser.toNative(v)
	if err != nil {
		return err
	}
	buf, err := r.codec.BinaryFromNative(nil, native)
	if err != nil {
		return err
	}
	if _, err := w.Write(buf); err != nil {
		return err
	}
	if f, ok := w.(interface{ Flush() error }); ok {
		return f.Flush()
	}
	return nil
}

// Decode reads exactly one Avro datum from r and returns it as a value of the
// Coder's type. Bytes following the datum are not consumed. r is never closed.
//
// io.EOF is returned when r is exhausted before the datum starts, and
// io.ErrUnexpectedEOF when it ends inside the datum.
func (c *Coder) Decode(r io.Reader) (any, error) {
	res := c.resolve()
	if res.err != nil {
		return nil, res.err
	}
	buf, err := newDatumReader(r).read(res.ser.root)
	if err != nil {
		return nil, err
	}
	native, rest, err := res.codec.NativeFromBinary(buf)
	if err != nil {
		return nil, err
	}
	if len(rest) != 0 {
		return nil, errors.Errorf("avro: %d bytes left after decoding %v", len(rest), c.t)
	}
	return res.ser.fromNative(native)
}

// IsDeterministic reports whether equal values always encode to equal bytes.
// It always reports true; map fields are not checked for ordering.
func (c *Coder) IsDeterministic() bool {
	return true
}

// VerifyDeterministic always succeeds. See IsDeterministic.
func (c *Coder) VerifyDeterministic() error {
	return nil
}

// Equals reports whether o encodes the same type as c.
func (c *Coder) Equals(o *Coder) bool {
	if c == nil || o == nil {
		return c == o
	}
	return c.t == o.t
}

// Hash returns a hash of the Coder's type. Equal Coders have equal hashes.
func (c *Coder) Hash() uint64 {
	return xxhash.Sum64String(typeID(c.t))
}

// Clone returns an unresolved Coder for the same type.
func (c *Coder) Clone() *Coder {
	return New(c.t)
}

type coderJSON struct {
	Type string `json:"type"`
	Ptr  bool   `json:"ptr,omitempty"`
}

// MarshalJSON encodes the Coder's type as its registry key. Derived state is
// not included.
func (c *Coder) MarshalJSON() ([]byte, error) {
	t, ptr := c.t, false
	if t.Kind() == reflect.Ptr {
		t, ptr = t.Elem(), true
	}
	key, ok := typeKey(t)
	if !ok {
		return nil, errors.Errorf("avro coder type %v has no registry key", c.t)
	}
	return json.Marshal(coderJSON{Type: key, Ptr: ptr})
}

// UnmarshalJSON restores a Coder from MarshalJSON output. The type must have
// been declared or registered in this process. Any derived state is dropped.
func (c *Coder) UnmarshalJSON(data []byte) error {
	var cj coderJSON
	if err := json.Unmarshal(data, &cj); err != nil {
		return err
	}
	t, ok := lookupType(cj.Type)
	if !ok {
		return errors.Errorf("avro coder type %q is not registered", cj.Type)
	}
	if cj.Ptr {
		t = reflect.PtrTo(t)
	}
	c.t = t
	c.resolved.Store(nil)
	return nil
}

func (c *Coder) resolve() *resolution {
	if r := c.resolved.Load(); r != nil {
		return r
	}
	start := time.Now()
	r := newResolution(c.t)
	emitCoderResolved(context.Background(), c.t.String(), len(r.schema), time.Since(start), r.err)
	c.resolved.CompareAndSwap(nil, r)
	return c.resolved.Load()
}

func newResolution(t reflect.Type) *resolution {
	fail := func(err error) *resolution {
		return &resolution{err: &MissingSerializerError{Type: t, Cause: err}}
	}
	ser, err := newSerializer(t)
	if err != nil {
		return fail(err)
	}
	schema, err := schemaJSON(ser.root)
	if err != nil {
		return fail(err)
	}
	codec, err := goavro.NewCodec(schema)
	if err != nil {
		return fail(err)
	}
	return &resolution{ser: ser, codec: codec, schema: schema}
}

func typeID(t reflect.Type) string {
	if t.Kind() == reflect.Ptr {
		return "*" + typeID(t.Elem())
	}
	if key, ok := typeKey(t); ok {
		return key
	}
	return t.String()
}
