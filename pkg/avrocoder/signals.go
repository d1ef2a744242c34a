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
	"time"

	"github.com/zoobzio/capitan"
)

// Signals for coder lifecycle events.
var (
	SignalCoderResolved   = capitan.NewSignal("avrocoder.coder.resolved", "Serializer and schema derived for a type")
	SignalCoderRegistered = capitan.NewSignal("avrocoder.coder.registered", "Coder installed in the Beam coder registry")
)

// Keys for typed event data.
var (
	KeyTypeName    = capitan.NewStringKey("type_name")
	KeySchemaBytes = capitan.NewIntKey("schema_bytes")
	KeyDuration    = capitan.NewDurationKey("duration")
	KeyError       = capitan.NewErrorKey("error")
)

// emitCoderResolved emits an event when a coder finishes resolving, successfully or not.
func emitCoderResolved(ctx context.Context, typeName string, schemaBytes int, duration time.Duration, err error) {
	fields := []capitan.Field{
		KeyTypeName.Field(typeName),
		KeySchemaBytes.Field(schemaBytes),
		KeyDuration.Field(duration),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalCoderResolved, fields...)
		return
	}
	capitan.Emit(ctx, SignalCoderResolved, fields...)
}

// emitCoderRegistered emits an event when a coder is installed.
func emitCoderRegistered(ctx context.Context, typeName string) {
	capitan.Emit(ctx, SignalCoderRegistered, KeyTypeName.Field(typeName))
}
