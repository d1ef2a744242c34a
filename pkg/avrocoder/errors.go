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
	"errors"
	"fmt"
	"reflect"
)

var (
	// ErrMissingSerializer is wrapped by every MissingSerializerError.
	ErrMissingSerializer = errors.New("no Avro serializer derivable")

	// ErrNilValue indicates a nil value was given to a coder whose type has no
	// null representation.
	ErrNilValue = errors.New("nil value for non-nullable Avro coder")

	// ErrLossyTime indicates a time.Time that timestamp-micros cannot hold
	// exactly: it is not in UTC or has sub-microsecond precision.
	ErrLossyTime = errors.New("time not representable as Avro timestamp-micros")
)

// MissingSerializerError reports that no Avro schema or serializer can be
// derived for Type. It is a configuration error: retrying never succeeds.
type MissingSerializerError struct {
	Type  reflect.Type
	Cause error
}

func (e *MissingSerializerError) Error() string {
	return fmt.Sprintf("type %v has no derivable Avro serializer: %v", e.Type, e.Cause)
}

func (e *MissingSerializerError) Unwrap() []error {
	return []error{ErrMissingSerializer, e.Cause}
}
