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
	"bytes"
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/apache/beam/sdks/v2/go/pkg/beam"
	"github.com/apache/beam/sdks/v2/go/pkg/beam/core/runtime"
	"github.com/apache/beam/sdks/v2/go/pkg/beam/log"
	"github.com/erikogenvik/beam-avrocoder/internal/errors"
)

var (
	// catalog holds declared and registered struct types by registry key.
	catalogMu sync.Mutex
	catalog   = make(map[string]reflect.Type)

	// coders is the process-wide Coder per type used by the Beam callbacks.
	coders sync.Map // reflect.Type -> *Coder

	// installed holds the types already handed to beam.RegisterCoder.
	installed sync.Map // reflect.Type -> *Coder
)

// Declare adds struct types to the catalog swept by RegisterPackage. It is
// meant to be called from init(), usually by code that avrocodergen writes.
// Pointer types are recorded as their element type. Declare panics on types
// without a package-qualified name.
func Declare(types ...reflect.Type) {
	catalogMu.Lock()
	defer catalogMu.Unlock()
	for _, t := range types {
		declare(t)
	}
}

func declare(t reflect.Type) {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	key, ok := typeKey(t)
	if !ok {
		panic(fmt.Sprintf("avrocoder: cannot declare unnamed type %v", t))
	}
	if prev, ok := catalog[key]; ok && prev != t {
		panic(fmt.Sprintf("avrocoder: type key %v declared for both %v and %v", key, prev, t))
	}
	catalog[key] = t
}

// Register installs an Avro Coder for exactly t in Beam's coder registry and
// returns it. Registering the same type again returns the installed Coder.
// Like beam.RegisterCoder it must be called before beam.Init().
func Register(t reflect.Type) *Coder {
	if c, ok := Lookup(t); ok {
		return c
	}
	catalogMu.Lock()
	declare(t)
	catalogMu.Unlock()

	c := coderFor(t)
	if _, loaded := installed.LoadOrStore(t, c); loaded {
		return c
	}

	beam.RegisterCoder(t, encodeElement, decodeElement)

	ctx := context.Background()
	log.Infof(ctx, "Registered Avro coder for %v", t)
	emitCoderRegistered(ctx, t.String())
	return c
}

// RegisterPackage registers a Coder for every declared type marked with Coded
// whose package is pkgPath or lies below it. Types are registered in order of
// their registry key. An empty pkgPath matches every declared type.
func RegisterPackage(pkgPath string) []*Coder {
	var keys []string
	catalogMu.Lock()
	for key, t := range catalog {
		if IsCoded(t) && inPackage(t.PkgPath(), pkgPath) {
			keys = append(keys, key)
		}
	}
	types := make([]reflect.Type, 0, len(keys))
	sort.Strings(keys)
	for _, key := range keys {
		types = append(types, catalog[key])
	}
	catalogMu.Unlock()

	ret := make([]*Coder, 0, len(types))
	for _, t := range types {
		ret = append(ret, Register(t))
	}
	log.Infof(context.Background(), "Registered %d Avro coders under %q", len(ret), pkgPath)
	return ret
}

// Lookup returns the Coder installed for t by Register, if any.
func Lookup(t reflect.Type) (*Coder, bool) {
	c, ok := installed.Load(t)
	if !ok {
		return nil, false
	}
	return c.(*Coder), true
}

func inPackage(pkg, root string) bool {
	if root == "" || pkg == root {
		return true
	}
	return strings.HasPrefix(pkg, strings.TrimSuffix(root, "/")+"/")
}

// coderFor returns the process-wide Coder for t. Workers reach it from the
// type alone, so a Coder built elsewhere never needs to be shipped.
func coderFor(t reflect.Type) *Coder {
	if c, ok := coders.Load(t); ok {
		return c.(*Coder)
	}
	c, _ := coders.LoadOrStore(t, New(t))
	return c.(*Coder)
}

// encodeElement is the encoder handed to beam.RegisterCoder. Beam length
// prefixes the returned bytes.
func encodeElement(t reflect.Type, v beam.T) ([]byte, error) {
	var buf bytes.Buffer
	if err := coderFor(t).Encode(v, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decodeElement is the decoder handed to beam.RegisterCoder.
func decodeElement(t reflect.Type, data []byte) (beam.T, error) {
	r := bytes.NewReader(data)
	v, err := coderFor(t).Decode(r)
	if err != nil {
		return nil, err
	}
	if r.Len() != 0 {
		return nil, errors.Errorf("avro: %d trailing bytes after %v element", r.Len(), t)
	}
	return v, nil
}

func typeKey(t reflect.Type) (string, bool) {
	return runtime.TypeKey(t)
}

// lookupType resolves a registry key from the catalog, then from Beam's
// type registry.
func lookupType(key string) (reflect.Type, bool) {
	catalogMu.Lock()
	t, ok := catalog[key]
	catalogMu.Unlock()
	if ok {
		return t, true
	}
	return runtime.LookupType(key)
}
