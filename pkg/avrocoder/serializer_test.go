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
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSerializer_ToNative(t *testing.T) {
	s, err := newSerializer(pairType)
	if err != nil {
		t.Fatalf("newSerializer(%v) = %v", pairType, err)
	}
	tests := []struct {
		v    Pair
		want any
	}{
		{
			v:    Pair{AValue: "the value being tested"},
			want: map[string]any{"a_value": "the value being tested", "could_be_null": nil},
		}, {
			v:    Pair{AValue: "another value being tested", CouldBeNull: int32Ptr(10)},
			want: map[string]any{"a_value": "another value being tested", "could_be_null": map[string]any{"int": int32(10)}},
		},
	}
	for _, test := range tests {
		got, err := s.toNative(test.v)
		if err != nil {
			t.Fatalf("toNative(%v) = %v", test.v, err)
		}
		if d := cmp.Diff(test.want, got); d != "" {
			t.Errorf("toNative(%v) diff(-want,+got):\n %v", test.v, d)
		}
		back, err := s.fromNative(got)
		if err != nil {
			t.Fatalf("fromNative(%v) = %v", got, err)
		}
		if d := cmp.Diff(test.v, back); d != "" {
			t.Errorf("fromNative(%v) diff(-want,+got):\n %v", got, d)
		}
	}
}

func TestSerializer_UnionBranchNames(t *testing.T) {
	s, err := newSerializer(everythingType)
	if err != nil {
		t.Fatalf("newSerializer(%v) = %v", everythingType, err)
	}
	opts := []string{"z"}
	native, err := s.toNative(everything{Opt: &inner{Name: "n"}, OptList: &opts})
	if err != nil {
		t.Fatalf("toNative() = %v", err)
	}
	rec := native.(map[string]any)
	if _, ok := rec["Opt"].(map[string]any)[recordPrefix+"inner"]; !ok {
		t.Errorf("toNative() Opt = %v, want branch %v", rec["Opt"], recordPrefix+"inner")
	}
	if _, ok := rec["OptList"].(map[string]any)["array"]; !ok {
		t.Errorf("toNative() OptList = %v, want branch array", rec["OptList"])
	}
}

func TestIntConverter_Overflow(t *testing.T) {
	tests := []struct {
		t      reflect.Type
		kind   avroKind
		native any
	}{
		{reflect.TypeOf(int8(0)), kindInt, int32(300)},
		{reflect.TypeOf(int16(0)), kindInt, int32(-40000)},
		{reflect.TypeOf(uint8(0)), kindInt, int32(-1)},
		{reflect.TypeOf(uint16(0)), kindInt, int32(70000)},
		{reflect.TypeOf(uint32(0)), kindLong, int64(1 << 33)},
	}
	for _, test := range tests {
		rv := reflect.New(test.t).Elem()
		err := intConverter(test.t, test.kind).fromNative(test.native, rv)
		if err == nil || !strings.Contains(err.Error(), "overflows") {
			t.Errorf("fromNative(%v) into %v = %v, want overflow error", test.native, test.t, err)
		}
	}

	rv := reflect.New(reflect.TypeOf(int8(0))).Elem()
	if err := intConverter(rv.Type(), kindInt).fromNative("7", rv); err == nil {
		t.Errorf("fromNative(%q) into int8 succeeded, want error", "7")
	}
}

func TestSerializer_FromNativeErrors(t *testing.T) {
	s, err := newSerializer(pairType)
	if err != nil {
		t.Fatalf("newSerializer(%v) = %v", pairType, err)
	}
	tests := []struct {
		native any
		want   string
	}{
		{native: "not a record", want: "cannot convert"},
		{native: map[string]any{"a_value": "x"}, want: `no field "could_be_null"`},
		{native: map[string]any{"a_value": 1, "could_be_null": nil}, want: "cannot convert"},
		{native: map[string]any{"a_value": "x", "could_be_null": map[string]any{"int": int32(1), "long": int64(1)}}, want: "cannot convert"},
	}
	for _, test := range tests {
		_, err := s.fromNative(test.native)
		if err == nil || !strings.Contains(err.Error(), test.want) {
			t.Errorf("fromNative(%v) = %v, want error containing %q", test.native, err, test.want)
		}
	}
}
