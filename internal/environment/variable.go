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

// Package environment reads avrocodergen settings from the process environment.
package environment

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

var (
	// Output names the generated registration file written into each package.
	Output Variable = "AVROCODERGEN_OUTPUT"

	// Config points at an optional YAML file with generator settings.
	Config Variable = "AVROCODERGEN_CONFIG"

	// Check makes the generator verify registration files instead of writing them.
	Check Variable = "AVROCODERGEN_CHECK"
)

// Variable is the key of a system environment variable.
type Variable string

// Default assigns value to the system environment if the variable is unset.
func (v Variable) Default(value string) error {
	if v.Missing() {
		return os.Setenv((string)(v), value)
	}
	return nil
}

// MustDefault is Default but panics on error.
func (v Variable) MustDefault(value string) {
	if err := v.Default(value); err != nil {
		panic(err)
	}
}

// Missing reports whether the system environment variable is an empty string.
func (v Variable) Missing() bool {
	return v.Value() == ""
}

// Key returns the system environment variable key.
func (v Variable) Key() string {
	return (string)(v)
}

// Value returns the system environment variable value.
func (v Variable) Value() string {
	return os.Getenv((string)(v))
}

// Bool parses the value with strconv.ParseBool. An unset variable is false.
func (v Variable) Bool() (bool, error) {
	if v.Missing() {
		return false, nil
	}
	return strconv.ParseBool(v.Value())
}

// KeyValue returns <key>=<value>.
func (v Variable) KeyValue() string {
	return fmt.Sprintf("%s=%s", (string)(v), v.Value())
}

// Missing reports as an error all vars that are not assigned in the system
// environment.
func Missing(vars ...Variable) error {
	var missing []string
	for _, v := range vars {
		if v.Missing() {
			missing = append(missing, v.KeyValue())
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("variables empty but expected from environment: %s", strings.Join(missing, "; "))
	}
	return nil
}
