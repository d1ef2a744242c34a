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
)

// Pair is the canonical record used across the tests: one required string and
// one optional int.
type Pair struct {
	Coded
	AValue      string `avro:"a_value"`
	CouldBeNull *int32 `avro:"could_be_null"`
}

type inner struct {
	Name string `beam:"name"`
	Tags []string
}

type everything struct {
	B       bool
	I8      int8
	I16     int16
	I32     int32
	I       int
	I64     int64
	U8      uint8
	U16     uint16
	U32     uint32
	F32     float32
	F64     float64
	S       string
	Raw     []byte
	At      time.Time
	List    []int64
	Fixed   [2]string
	Attrs   map[string]float64
	Inner   inner
	Opt     *inner
	OptList *[]string
	Skipped string `avro:"-"`
	hidden  int
}

type tree struct {
	Value    int32
	Children []tree
}

type counts struct {
	N []int32
}

type badRecord struct {
	Coded
	Name string
	Ch   chan int
}

type unmarked struct {
	Name string
}

var (
	pairType       = reflect.TypeOf(Pair{})
	everythingType = reflect.TypeOf(everything{})
	treeType       = reflect.TypeOf(tree{})
	countsType     = reflect.TypeOf(counts{})
	badRecordType  = reflect.TypeOf(badRecord{})
	unmarkedType   = reflect.TypeOf(unmarked{})
)

func int32Ptr(v int32) *int32 {
	return &v
}
