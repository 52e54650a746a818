// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	"encoding/binary"

	"github.com/pkg/errors"

	ls "github.com/db47h/logicsim"
)

// blobVersion is the first byte of every state blob produced by this package.
const blobVersion = 1

// ErrBlobVersion is returned when decoding a state blob of an unsupported
// version.
//
var ErrBlobVersion = errors.New("unsupported state blob version")

// blob is a little endian state encoder/decoder.
type blob struct {
	b   []byte
	err error
}

func newBlob(size int) *blob {
	return &blob{b: append(make([]byte, 0, size+1), blobVersion)}
}

func readBlob(b []byte) *blob {
	if len(b) == 0 {
		return &blob{err: errors.New("empty state blob")}
	}
	if b[0] != blobVersion {
		return &blob{err: errors.Wrapf(ErrBlobVersion, "version %d", b[0])}
	}
	return &blob{b: b[1:]}
}

func (w *blob) putValue(v ls.Value) { w.b = v.AppendBinary(w.b) }
func (w *blob) putUint64(u uint64) { w.b = binary.LittleEndian.AppendUint64(w.b, u) }

func (w *blob) putBytes(p []byte) {
	w.putUint64(uint64(len(p)))
	w.b = append(w.b, p...)
}

func (w *blob) putUint16s(p []uint16) {
	w.putUint64(uint64(len(p)))
	for _, u := range p {
		w.b = binary.LittleEndian.AppendUint16(w.b, u)
	}
}

func (w *blob) need(n uint64) bool {
	if w.err != nil {
		return false
	}
	if uint64(len(w.b)) < n {
		w.err = errors.New("truncated state blob")
		return false
	}
	return true
}

func (w *blob) value() ls.Value {
	if w.err != nil {
		return ls.Value{}
	}
	v, rest, err := ls.DecodeValue(w.b)
	if err != nil {
		w.err = err
		return v
	}
	w.b = rest
	return v
}

func (w *blob) uint64() uint64 {
	if !w.need(8) {
		return 0
	}
	u := binary.LittleEndian.Uint64(w.b)
	w.b = w.b[8:]
	return u
}

func (w *blob) bytes() []byte {
	n := w.uint64()
	if !w.need(n) {
		return nil
	}
	p := append([]byte(nil), w.b[:n]...)
	w.b = w.b[n:]
	return p
}

func (w *blob) uint16s() []uint16 {
	n := w.uint64()
	if n > uint64(len(w.b))/2 {
		w.need(n * 2)
		return nil
	}
	p := make([]uint16, n)
	for i := range p {
		p[i] = binary.LittleEndian.Uint16(w.b[2*i:])
	}
	w.b = w.b[2*n:]
	return p
}

// done returns the decoding error, if any, or an error if data remains.
func (w *blob) done() error {
	if w.err == nil && len(w.b) != 0 {
		w.err = errors.New("trailing data in state blob")
	}
	return w.err
}
