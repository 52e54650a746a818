// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logicsim

import (
	"encoding/binary"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// MaxWidth is the maximum bit width of a Value.
//
const MaxWidth = 64

// A Bit is the state of a single wire in four-state logic.
//
type Bit uint8

// Bit states.
//
const (
	Bit0 Bit = iota // driven low
	Bit1            // driven high
	BitZ            // floating (undriven)
	BitX            // conflict (multiply driven disagreement)
)

func (b Bit) String() string {
	switch b {
	case Bit0:
		return "0"
	case Bit1:
		return "1"
	case BitZ:
		return "z"
	}
	return "x"
}

// A Value is an immutable multi-bit signal value. Bit 0 is the lsb.
//
// The zero Value has a width of 0 and is only useful as a "no value" marker.
//
type Value struct {
	width uint8
	bits  uint64 // driven-1 bits
	z     uint64 // floating bits
	x     uint64 // conflict bits
}

// Common 1 bit values.
//
var (
	False = Known(1, 0)
	True  = Known(1, 1)
)

func mask(width int) uint64 {
	if width >= 64 {
		return ^uint64(0)
	}
	return 1<<uint(width) - 1
}

func checkWidth(width int) {
	if width < 1 || width > MaxWidth {
		panic("invalid value width " + strconv.Itoa(width))
	}
}

// Known returns a fully driven value of the given width. Bits of v beyond width
// are discarded.
//
func Known(width int, v uint64) Value {
	checkWidth(width)
	return Value{width: uint8(width), bits: v & mask(width)}
}

// Floating returns a value of the given width with all bits floating.
//
func Floating(width int) Value {
	checkWidth(width)
	return Value{width: uint8(width), z: mask(width)}
}

// Conflict returns a value of the given width with all bits in conflict.
//
func Conflict(width int) Value {
	checkWidth(width)
	return Value{width: uint8(width), x: mask(width)}
}

// FromBits returns a value built from individual bit states, bs[0] being the
// lsb.
//
func FromBits(bs ...Bit) Value {
	checkWidth(len(bs))
	v := Value{width: uint8(len(bs))}
	for i, b := range bs {
		m := uint64(1) << uint(i)
		switch b {
		case Bit0:
		case Bit1:
			v.bits |= m
		case BitZ:
			v.z |= m
		default:
			v.x |= m
		}
	}
	return v
}

// Parse parses a value written msb first using the characters 0, 1, z and x.
// Underscores are ignored.
//
func Parse(s string) (Value, error) {
	s = strings.Replace(s, "_", "", -1)
	n := len(s)
	if n < 1 || n > MaxWidth {
		return Value{}, errors.Errorf("invalid value %q: width must be in range 1..%d", s, MaxWidth)
	}
	bs := make([]Bit, n)
	for i := 0; i < n; i++ {
		var b Bit
		switch s[n-1-i] {
		case '0':
			b = Bit0
		case '1':
			b = Bit1
		case 'z', 'Z':
			b = BitZ
		case 'x', 'X', 'e', 'E':
			b = BitX
		default:
			return Value{}, errors.Errorf("invalid value %q: unexpected character %q", s, s[n-1-i])
		}
		bs[i] = b
	}
	return FromBits(bs...), nil
}

// Width returns the bit width of v.
//
func (v Value) Width() int { return int(v.width) }

// Bit returns the state of bit i.
//
func (v Value) Bit(i int) Bit {
	if i < 0 || i >= int(v.width) {
		panic("bit index out of range")
	}
	m := uint64(1) << uint(i)
	switch {
	case v.x&m != 0:
		return BitX
	case v.z&m != 0:
		return BitZ
	case v.bits&m != 0:
		return Bit1
	}
	return Bit0
}

// driven returns the mask of bits driven to either 0 or 1.
func (v Value) driven() uint64 {
	return ^(v.z | v.x) & mask(int(v.width))
}

// Defined returns true if every bit of v is driven to 0 or 1.
//
func (v Value) Defined() bool {
	return v.width > 0 && v.z|v.x == 0
}

// Floating returns true if every bit of v is floating.
//
func (v Value) Floating() bool {
	return v.width > 0 && v.z == mask(int(v.width))
}

// HasConflict returns true if any bit of v is in conflict.
//
func (v Value) HasConflict() bool {
	return v.x != 0
}

// Equal returns true if v and o have the same width and every bit matches.
//
func (v Value) Equal(o Value) bool {
	return v == o
}

// Uint64 returns the integer value of v. It fails with ErrIndeterminate if any
// bit is floating or in conflict.
//
func (v Value) Uint64() (uint64, error) {
	if !v.Defined() {
		return 0, errors.Wrap(ErrIndeterminate, v.String())
	}
	return v.bits, nil
}

// Raw returns the raw bit pattern of v where floating and conflict bits read
// as 0. Use it when masking an indeterminate value is the desired behavior.
//
func (v Value) Raw() uint64 {
	return v.bits
}

// Merge merges two values driving the same wire. Two agreeing driven bits merge
// to that bit, a floating bit yields the other side's state, two disagreeing
// driven bits (or a conflict bit on either side) yield a conflict.
//
func (v Value) Merge(o Value) (Value, error) {
	if v.width != o.width {
		return Value{}, errors.Wrapf(ErrWidthMismatch, "merge %d and %d bits", v.width, o.width)
	}
	x := v.x | o.x | (v.driven() & o.driven() & (v.bits ^ o.bits))
	z := v.z & o.z
	return Value{
		width: v.width,
		bits:  (v.bits | o.bits) &^ (x | z),
		z:     z,
		x:     x,
	}, nil
}

// Not returns the bitwise complement of v. Undriven bits yield conflicts.
//
func (v Value) Not() Value {
	d := v.driven()
	return Value{
		width: v.width,
		bits:  ^v.bits & d,
		x:     ^d & mask(int(v.width)),
	}
}

// And returns the four-state bitwise AND of v and o. A driven 0 on either side
// dominates.
//
func (v Value) And(o Value) (Value, error) {
	if v.width != o.width {
		return Value{}, errors.Wrapf(ErrWidthMismatch, "and %d and %d bits", v.width, o.width)
	}
	zero := v.driven()&^v.bits | o.driven()&^o.bits
	one := v.bits & o.bits & v.driven() & o.driven()
	return Value{
		width: v.width,
		bits:  one,
		x:     ^(zero | one) & mask(int(v.width)),
	}, nil
}

// Or returns the four-state bitwise OR of v and o. A driven 1 on either side
// dominates.
//
func (v Value) Or(o Value) (Value, error) {
	if v.width != o.width {
		return Value{}, errors.Wrapf(ErrWidthMismatch, "or %d and %d bits", v.width, o.width)
	}
	one := v.bits&v.driven() | o.bits&o.driven()
	zero := v.driven() &^ v.bits & o.driven() &^ o.bits
	return Value{
		width: v.width,
		bits:  one,
		x:     ^(zero | one) & mask(int(v.width)),
	}, nil
}

// Xor returns the four-state bitwise XOR of v and o.
//
func (v Value) Xor(o Value) (Value, error) {
	if v.width != o.width {
		return Value{}, errors.Wrapf(ErrWidthMismatch, "xor %d and %d bits", v.width, o.width)
	}
	d := v.driven() & o.driven()
	return Value{
		width: v.width,
		bits:  (v.bits ^ o.bits) & d,
		x:     ^d & mask(int(v.width)),
	}, nil
}

// RisingEdge returns true if a clock sampled prev then cur went from driven-0
// to driven-1.
//
func RisingEdge(prev, cur Value) bool {
	return prev.Equal(False) && cur.Equal(True)
}

// String returns v msb first using 0, 1, z and x.
//
func (v Value) String() string {
	if v.width == 0 {
		return "<nil>"
	}
	var b strings.Builder
	b.Grow(int(v.width))
	for i := int(v.width) - 1; i >= 0; i-- {
		b.WriteString(v.Bit(i).String())
	}
	return b.String()
}

// valueSize is the size of the binary encoding of a Value.
const valueSize = 1 + 3*8

// MarshalBinary implements encoding.BinaryMarshaler.
//
func (v Value) MarshalBinary() ([]byte, error) {
	return v.AppendBinary(make([]byte, 0, valueSize)), nil
}

// AppendBinary appends the binary encoding of v to b.
//
func (v Value) AppendBinary(b []byte) []byte {
	b = append(b, v.width)
	b = binary.LittleEndian.AppendUint64(b, v.bits)
	b = binary.LittleEndian.AppendUint64(b, v.z)
	return binary.LittleEndian.AppendUint64(b, v.x)
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
//
func (v *Value) UnmarshalBinary(b []byte) error {
	_, err := v.decode(b)
	return err
}

// DecodeValue decodes a value encoded with AppendBinary from the start of b and
// returns the remaining bytes.
//
func DecodeValue(b []byte) (Value, []byte, error) {
	var v Value
	rest, err := v.decode(b)
	return v, rest, err
}

func (v *Value) decode(b []byte) ([]byte, error) {
	if len(b) < valueSize {
		return nil, errors.New("short value encoding")
	}
	w := b[0]
	if w > MaxWidth {
		return nil, errors.Errorf("invalid value width %d", w)
	}
	m := uint64(0)
	if w > 0 {
		m = mask(int(w))
	}
	nv := Value{
		width: w,
		bits:  binary.LittleEndian.Uint64(b[1:]),
		z:     binary.LittleEndian.Uint64(b[9:]),
		x:     binary.LittleEndian.Uint64(b[17:]),
	}
	if nv.bits|nv.z|nv.x != (nv.bits|nv.z|nv.x)&m || nv.bits&(nv.z|nv.x) != 0 || nv.z&nv.x != 0 {
		return nil, errors.New("corrupt value encoding")
	}
	*v = nv
	return b[valueSize:], nil
}
