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

	"github.com/erikogenvik/beam-avrocoder/internal/errors"
)

// errVarLongTooLong indicates corrupt input: an Avro long spans more than
// ten bytes.
var errVarLongTooLong = errors.New("avro: varint too long")

// datumReader copies exactly one Avro datum from r, walking the schema to
// find where the datum ends. It reads single bytes for varints and exact
// lengths for sized payloads, so bytes after the datum are left in r.
type datumReader struct {
	r       io.Reader
	br      io.ByteReader
	buf     bytes.Buffer
	one     [1]byte
	started bool
}

func newDatumReader(r io.Reader) *datumReader {
	d := &datumReader{r: r}
	if br, ok := r.(io.ByteReader); ok {
		d.br = br
	}
	return d
}

// read consumes the datum described by n. io.EOF before the first byte is
// returned as is; EOF inside the datum is io.ErrUnexpectedEOF. Other read
// errors are returned unchanged.
func (d *datumReader) read(n *node) ([]byte, error) {
	if err := d.datum(n); err != nil {
		return nil, err
	}
	return d.buf.Bytes(), nil
}

func (d *datumReader) datum(n *node) error {
	switch n.kind {
	case kindNull:
		return nil
	case kindBoolean:
		_, err := d.readByte()
		return err
	case kindInt, kindLong:
		_, err := d.readLong()
		return err
	case kindFloat:
		return d.readN(4)
	case kindDouble:
		return d.readN(8)
	case kindBytes, kindString:
		return d.readSized()
	case kindRecord:
		for _, f := range n.fields {
			if err := d.datum(f.typ); err != nil {
				return err
			}
		}
		return nil
	case kindArray:
		return d.blocks(func() error { return d.datum(n.items) })
	case kindMap:
		return d.blocks(func() error {
			if err := d.readSized(); err != nil {
				return err
			}
			return d.datum(n.items)
		})
	case kindUnion:
		idx, err := d.readLong()
		if err != nil {
			return err
		}
		if idx < 0 || idx >= int64(len(n.branches)) {
			return errors.Errorf("avro: union branch index %d out of range [0, %d)", idx, len(n.branches))
		}
		return d.datum(n.branches[idx])
	default:
		return errors.Errorf("avro: cannot read datum of kind %d", n.kind)
	}
}

// blocks reads an Avro array or map body: a sequence of blocks ending in a
// zero count. A negative count is followed by the block size in bytes.
func (d *datumReader) blocks(item func() error) error {
	for {
		count, err := d.readLong()
		if err != nil {
			return err
		}
		if count == 0 {
			return nil
		}
		if count < 0 {
			size, err := d.readLong()
			if err != nil {
				return err
			}
			if size < 0 {
				return errors.Errorf("avro: negative block size %d", size)
			}
			if err := d.readN(size); err != nil {
				return err
			}
			continue
		}
		for i := int64(0); i < count; i++ {
			if err := item(); err != nil {
				return err
			}
		}
	}
}

func (d *datumReader) readSized() error {
	size, err := d.readLong()
	if err != nil {
		return err
	}
	if size < 0 {
		return errors.Errorf("avro: negative length %d", size)
	}
	return d.readN(size)
}

// readLong reads a zig-zag varint.
func (d *datumReader) readLong() (int64, error) {
	var u uint64
	var shift uint
	for {
		b, err := d.readByte()
		if err != nil {
			return 0, err
		}
		if shift >= 64 {
			return 0, errVarLongTooLong
		}
		u |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return int64(u>>1) ^ -int64(u&1), nil
		}
		shift += 7
	}
}

func (d *datumReader) readByte() (byte, error) {
	var b byte
	var err error
	if d.br != nil {
		b, err = d.br.ReadByte()
	} else {
		_, err = io.ReadFull(d.r, d.one[:])
		b = d.one[0]
	}
	if err != nil {
		return 0, d.eof(err)
	}
	d.started = true
	d.buf.WriteByte(b)
	return b, nil
}

func (d *datumReader) readN(n int64) error {
	if n == 0 {
		return nil
	}
	copied, err := io.CopyN(&d.buf, d.r, n)
	if copied > 0 {
		d.started = true
	}
	if err != nil {
		return d.eof(err)
	}
	return nil
}

func (d *datumReader) eof(err error) error {
	if err == io.EOF && d.started {
		return io.ErrUnexpectedEOF
	}
	return err
}
