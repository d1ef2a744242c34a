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
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// plainReader hides any io.ByteReader implementation of the wrapped reader.
type plainReader struct {
	io.Reader
}

func TestDatumReader(t *testing.T) {
	pair, err := deriveSchema(pairType)
	if err != nil {
		t.Fatalf("deriveSchema(%v) = %v", pairType, err)
	}
	cnts, err := deriveSchema(countsType)
	if err != nil {
		t.Fatalf("deriveSchema(%v) = %v", countsType, err)
	}
	tests := []struct {
		name  string
		root  *node
		input []byte
		datum []byte
	}{
		{
			name:  "pair null",
			root:  pair,
			input: []byte{4, 'a', 'b', 0, 'x', 'y'},
			datum: []byte{4, 'a', 'b', 0},
		}, {
			name:  "pair set",
			root:  pair,
			input: []byte{4, 'a', 'b', 2, 20, 'x'},
			datum: []byte{4, 'a', 'b', 2, 20},
		}, {
			name:  "array blocks",
			root:  cnts,
			input: []byte{2, 2, 2, 6, 0, 'x'},
			datum: []byte{2, 2, 2, 6, 0},
		}, {
			name:  "sized array block",
			root:  cnts,
			input: []byte{3, 4, 2, 4, 0, 'x'},
			datum: []byte{3, 4, 2, 4, 0},
		}, {
			name:  "empty array",
			root:  cnts,
			input: []byte{0, 0},
			datum: []byte{0},
		},
	}
	for _, test := range tests {
		readers := map[string]func([]byte) io.Reader{
			"byte reader": func(b []byte) io.Reader { return bytes.NewReader(b) },
			"plain":       func(b []byte) io.Reader { return plainReader{bytes.NewReader(b)} },
		}
		for kind, mk := range readers {
			t.Run(test.name+"/"+kind, func(t *testing.T) {
				r := mk(test.input)
				got, err := newDatumReader(r).read(test.root)
				if err != nil {
					t.Fatalf("read(%v) = %v", test.input, err)
				}
				if d := cmp.Diff(test.datum, got); d != "" {
					t.Errorf("read(%v) = %v, want %v diff(-want,+got):\n %v", test.input, got, test.datum, d)
				}
				rest, _ := io.ReadAll(r)
				if want := test.input[len(test.datum):]; !bytes.Equal(rest, want) {
					t.Errorf("read(%v) left %v unread, want %v", test.input, rest, want)
				}
			})
		}
	}
}

func TestDatumReader_Errors(t *testing.T) {
	pair, err := deriveSchema(pairType)
	if err != nil {
		t.Fatalf("deriveSchema(%v) = %v", pairType, err)
	}
	tests := []struct {
		name  string
		input []byte
		want  error
		msg   string
	}{
		{name: "empty", input: nil, want: io.EOF},
		{name: "truncated string", input: []byte{4, 'a'}, want: io.ErrUnexpectedEOF},
		{name: "missing union", input: []byte{4, 'a', 'b'}, want: io.ErrUnexpectedEOF},
		{name: "truncated varint", input: []byte{0x80}, want: io.ErrUnexpectedEOF},
		{name: "bad branch", input: []byte{0, 4}, msg: "out of range"},
		{name: "negative length", input: []byte{1}, msg: "negative length"},
		{name: "long varint", input: bytes.Repeat([]byte{0xff}, 11), msg: "too long"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := newDatumReader(bytes.NewReader(test.input)).read(pair)
			if err == nil {
				t.Fatalf("read(%v) succeeded, want error", test.input)
			}
			if test.want != nil && err != test.want {
				t.Errorf("read(%v) = %v, want %v", test.input, err, test.want)
			}
			if test.msg != "" && !strings.Contains(err.Error(), test.msg) {
				t.Errorf("read(%v) = %v, want error containing %q", test.input, err, test.msg)
			}
		})
	}
}
