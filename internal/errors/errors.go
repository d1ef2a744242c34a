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

// Package errors creates and annotates errors raised while deriving Avro
// schemas and coders. Annotations nest, so a failure deep inside a record
// reports every enclosing record and field on its own line.
package errors

import (
	"fmt"
	"io"
	"strings"
)

// New returns an error with the given message.
func New(message string) error {
	return &coderError{msg: message}
}

// Errorf returns an error with a message formatted according to the format
// specifier.
func Errorf(format string, args ...any) error {
	return &coderError{msg: fmt.Sprintf(format, args...)}
}

// Wrap returns a new error annotating err with a new message.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return &coderError{cause: err, msg: message}
}

// Wrapf returns a new error annotating err with a new message according to
// the format specifier.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return &coderError{cause: err, msg: fmt.Sprintf(format, args...)}
}

// WithContext returns a new error adding additional context to err.
func WithContext(err error, context string) error {
	if err == nil {
		return nil
	}
	return &coderError{cause: err, context: context}
}

// WithContextf returns a new error adding additional context to err according
// to the format specifier.
func WithContextf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return &coderError{cause: err, context: fmt.Sprintf(format, args...)}
}

// coderError is one link in a chain of annotations.
//
//   - No cause means this is the original error and msg is set.
//   - A context describes where the failure happened, a msg what happened.
type coderError struct {
	cause   error
	context string
	msg     string
}

// Error prints the chain outermost first, with the original error last.
func (e *coderError) Error() string {
	var b strings.Builder
	e.print(&b)
	return b.String()
}

func (e *coderError) print(b *strings.Builder) {
	if e.context != "" {
		b.WriteString("\t")
		b.WriteString(strings.ReplaceAll(e.context, "\n", "\n\t"))
		b.WriteString("\n")
	}
	if e.msg != "" {
		b.WriteString(e.msg)
		if e.cause != nil {
			b.WriteString("\n\tcaused by:\n")
		}
	}
	if e.cause == nil {
		return
	}
	if ce, ok := e.cause.(*coderError); ok {
		ce.print(b)
		return
	}
	b.WriteString(e.cause.Error())
}

// Format implements the fmt.Formatter interface.
func (e *coderError) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v', 's':
		io.WriteString(s, e.Error())
	case 'q':
		fmt.Fprintf(s, "%q", e.Error())
	}
}

// Unwrap returns the cause of this error if present.
func (e *coderError) Unwrap() error {
	return e.cause
}
