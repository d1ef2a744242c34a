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

// Package avrocoder encodes Go struct records for Beam pipelines using the
// Avro binary format, with the Avro schema derived from the Go type.
//
// A type opts in by embedding Coded:
//
//	type Pair struct {
//		avrocoder.Coded
//		AValue      string `avro:"a_value"`
//		CouldBeNull *int32 `avro:"could_be_null"`
//	}
//
// and is installed in Beam's coder registry before beam.Init():
//
//	avrocoder.Register(reflect.TypeOf((*Pair)(nil)).Elem())
//
// or, for every declared type in a package tree (see cmd/avrocodergen):
//
//	avrocoder.RegisterPackage("example.com/records")
//
// Field names come from the avro struct tag, then the beam struct tag, then the
// Go field name. Pointer fields become Avro unions with null. time.Time fields
// become timestamp-micros longs; encoding a time that is not in UTC or has
// sub-microsecond precision fails with ErrLossyTime rather than altering it.
// The encoding is not self-describing: a reader needs the same Go type to
// decode it.
package avrocoder
