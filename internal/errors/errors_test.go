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

package errors

import (
	stderrors "errors"
	"fmt"
	"io"
	"strings"
	"testing"
)

const (
	base string = "base"
	msg1 string = "message 1"
	msg2 string = "message 2"
	ctx1 string = "context 1"
	ctx2 string = "context 2"
)

func TestNew(t *testing.T) {
	err := New(base)
	if err.Error() != base {
		t.Errorf("Error msg does not match original. Want: %q, Got: %q", base, err.Error())
	}
}

func TestErrorf(t *testing.T) {
	want := fmt.Sprintf("%s %d", "ten", 10)
	err := Errorf("%s %d", "ten", 10)
	if err.Error() != want {
		t.Errorf("Incorrect formatting. Want: %q, Got: %q", want, err.Error())
	}
}

func TestNilPassthrough(t *testing.T) {
	if Wrap(nil, msg1) != nil || Wrapf(nil, "%d", 1) != nil || WithContext(nil, ctx1) != nil || WithContextf(nil, "%d", 1) != nil {
		t.Error("annotating a nil error must return nil")
	}
}

func TestStructure(t *testing.T) {
	tests := []struct {
		err  error
		want errorStructure
	}{
		{
			err:  Wrap(New(base), msg1),
			want: errorStructure{{ERROR, msg1}, {ERROR, base}},
		}, {
			err:  Wrap(Wrap(New(base), msg1), msg2),
			want: errorStructure{{ERROR, msg2}, {ERROR, msg1}, {ERROR, base}},
		}, {
			err:  WithContext(New(base), ctx1),
			want: errorStructure{{CONTEXT, ctx1}, {ERROR, base}},
		}, {
			err:  WithContext(Wrap(WithContext(New(base), ctx1), msg1), ctx2),
			want: errorStructure{{CONTEXT, ctx2}, {ERROR, msg1}, {CONTEXT, ctx1}, {ERROR, base}},
		}, {
			err:  Wrap(io.EOF, msg1),
			want: errorStructure{{ERROR, msg1}, {ERROR, io.EOF.Error()}},
		},
	}
	for _, test := range tests {
		got := getStructure(test.err)
		if !equalStructure(got, test.want) {
			t.Errorf("Incorrect structure. Want: %+v, Got: %+v", test.want, got)
		}
	}
}

func TestFormattedVariants(t *testing.T) {
	want := fmt.Sprintf("%s %d", "ten", 10)
	if got := getStructure(Wrapf(New(base), "%s %d", "ten", 10))[0].msg; got != want {
		t.Errorf("Wrapf: Want: %q, Got: %q", want, got)
	}
	if got := getStructure(WithContextf(New(base), "%s %d", "ten", 10))[0].msg; got != want {
		t.Errorf("WithContextf: Want: %q, Got: %q", want, got)
	}
}

func TestErrorOutput(t *testing.T) {
	err := Wrap(WithContext(New(base), ctx1), msg1)
	got := err.Error()
	want := msg1 + "\n\tcaused by:\n\t" + ctx1 + "\n" + base
	if got != want {
		t.Errorf("Incorrect output. Want: %q, Got: %q", want, got)
	}
	if s := fmt.Sprintf("%v", err); s != want {
		t.Errorf("%%v output differs from Error(). Want: %q, Got: %q", want, s)
	}
	if s := fmt.Sprintf("%q", err); !strings.HasPrefix(s, "\"") {
		t.Errorf("%%q output not quoted: %s", s)
	}
}

func TestUnwrapChain(t *testing.T) {
	sentinel := stderrors.New("sentinel")
	err := WithContext(Wrapf(sentinel, "field %s", "x"), ctx1)
	if !stderrors.Is(err, sentinel) {
		t.Errorf("errors.Is(%v, sentinel) = false, want true", err)
	}
}

// getStructure flattens an error chain into its contexts and messages in
// output order.
func getStructure(e error) errorStructure {
	var structure errorStructure
	for {
		ce, ok := e.(*coderError)
		if !ok {
			return append(structure, entry{ERROR, e.Error()})
		}
		if ce.context != "" {
			structure = append(structure, entry{CONTEXT, ce.context})
		}
		if ce.msg != "" {
			structure = append(structure, entry{ERROR, ce.msg})
		}
		if ce.cause == nil {
			return structure
		}
		e = ce.cause
	}
}

func equalStructure(left errorStructure, right errorStructure) bool {
	if len(left) != len(right) {
		return false
	}
	for i := range left {
		if left[i] != right[i] {
			return false
		}
	}
	return true
}

type msgType int

const (
	ERROR msgType = iota
	CONTEXT
)

type entry struct {
	t   msgType
	msg string
}

type errorStructure []entry
