// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package hwlib provides a library of reusable parts for logicsim.
//
// Copyright 2018 Denis Bernard <db047h@gmail.com>
//
// This package is licensed under the MIT license. See license text in the LICENSE file.
//
package hwlib

import (
	"strconv"

	ls "github.com/db47h/logicsim"
)

// common pin names
const (
	pA    = "a"
	pB    = "b"
	pIn   = "in"
	pSel  = "sel"
	pOut  = "out"
	pClk  = "clk"
	pLoad = "load"
	pWE   = "we"
)

// gate delay
const gateDelay = 1

// io returns the "name[bits]" port spec string.
func io(name string, bits int) string {
	if bits == 1 {
		return name
	}
	return name + "[" + strconv.Itoa(bits) + "]"
}

func suffix(name string, bits int) string {
	if bits == 1 {
		return name
	}
	return name + strconv.Itoa(bits)
}

func unaryN(name string, bits int, fn func(ls.Value) ls.Value) *ls.PartSpec {
	return &ls.PartSpec{
		Name:  suffix(name, bits),
		Ports: ls.Ports(ls.In(io(pIn, bits)), ls.Out(io(pOut, bits))),
		Delay: gateDelay,
		Mount: func(s *ls.Socket) ls.Component {
			in, out := s.Pin(pIn), s.Pin(pOut)
			return ls.ComponentFn(func(c *ls.Context) error {
				c.Set(out, fn(c.Get(in)), c.Delay())
				return nil
			})
		}}
}

// buffer passes through driven bits and turns floating bits into conflicts.
func buffer(v ls.Value) ls.Value { return v.Not().Not() }

var (
	not1 = unaryN("NOT", 1, ls.Value.Not)
	buf1 = unaryN("BUFFER", 1, buffer)
)

// Not returns a NOT gate.
//
//	Inputs: in
//	Outputs: out
//	Function: out = !in
//
func Not(c string) ls.Part { return not1.NewPart(c) }

// NotN returns a N-bits NOT gate.
//
//	Inputs: in[bits]
//	Outputs: out[bits]
//	Function: for i := range out { out[i] = !in[i] }
//
func NotN(bits int) ls.NewPartFn { return unaryN("NOT", bits, ls.Value.Not).NewPart }

// Buffer returns a buffer.
//
//	Inputs: in
//	Outputs: out
//	Function: out = in
//
func Buffer(c string) ls.Part { return buf1.NewPart(c) }

// BufferN returns a N-bits buffer.
//
func BufferN(bits int) ls.NewPartFn { return unaryN("BUFFER", bits, buffer).NewPart }

type binop func(a, b ls.Value) (ls.Value, error)

func not(op binop) binop {
	return func(a, b ls.Value) (ls.Value, error) {
		v, err := op(a, b)
		return v.Not(), err
	}
}

var (
	and  binop = ls.Value.And
	or   binop = ls.Value.Or
	xor  binop = ls.Value.Xor
	nand       = not(and)
	nor        = not(or)
	xnor       = not(xor)
)

func gateN(name string, bits int, op binop) *ls.PartSpec {
	return &ls.PartSpec{
		Name:  suffix(name, bits),
		Ports: ls.Ports(ls.In(io(pA, bits)+", "+io(pB, bits)), ls.Out(io(pOut, bits))),
		Delay: gateDelay,
		Mount: func(s *ls.Socket) ls.Component {
			a, b, out := s.Pin(pA), s.Pin(pB), s.Pin(pOut)
			return ls.ComponentFn(func(c *ls.Context) error {
				v, err := op(c.Get(a), c.Get(b))
				if err != nil {
					return ls.PortError(out, err)
				}
				c.Set(out, v, c.Delay())
				return nil
			})
		}}
}

var (
	and1  = gateN("AND", 1, and)
	nand1 = gateN("NAND", 1, nand)
	or1   = gateN("OR", 1, or)
	nor1  = gateN("NOR", 1, nor)
	xor1  = gateN("XOR", 1, xor)
	xnor1 = gateN("XNOR", 1, xnor)
)

// And returns a AND gate.
//
//	Inputs: a, b
//	Outputs: out
//	Function: out = a && b
//
func And(c string) ls.Part { return and1.NewPart(c) }

// Nand returns a NAND gate.
//
//	Inputs: a, b
//	Outputs: out
//	Function: out = !(a && b)
//
func Nand(c string) ls.Part { return nand1.NewPart(c) }

// Or returns a OR gate.
//
//	Inputs: a, b
//	Outputs: out
//	Function: out = a || b
//
func Or(c string) ls.Part { return or1.NewPart(c) }

// Nor returns a NOR gate.
//
//	Inputs: a, b
//	Outputs: out
//	Function: out = !(a || b)
//
func Nor(c string) ls.Part { return nor1.NewPart(c) }

// Xor returns a XOR gate.
//
//	Inputs: a, b
//	Outputs: out
//	Function: out = (a && !b) || (!a && b)
//
func Xor(c string) ls.Part { return xor1.NewPart(c) }

// Xnor returns a XNOR gate.
//
//	Inputs: a, b
//	Outputs: out
//	Function: out = a && b || !a && !b
//
func Xnor(c string) ls.Part { return xnor1.NewPart(c) }

// AndN returns a N-bits AND gate.
//
//	Inputs: a[bits], b[bits]
//	Outputs: out[bits]
//
func AndN(bits int) ls.NewPartFn { return gateN("AND", bits, and).NewPart }

// NandN returns a N-bits NAND gate.
//
func NandN(bits int) ls.NewPartFn { return gateN("NAND", bits, nand).NewPart }

// OrN returns a N-bits OR gate.
//
func OrN(bits int) ls.NewPartFn { return gateN("OR", bits, or).NewPart }

// NorN returns a N-bits NOR gate.
//
func NorN(bits int) ls.NewPartFn { return gateN("NOR", bits, nor).NewPart }

// XorN returns a N-bits XOR gate.
//
func XorN(bits int) ls.NewPartFn { return gateN("XOR", bits, xor).NewPart }

// XnorN returns a N-bits XNOR gate.
//
func XnorN(bits int) ls.NewPartFn { return gateN("XNOR", bits, xnor).NewPart }

// Gate returns the NewPartFn of the named gate ("NOT", "AND", "OR"...).
//
func Gate(name string, bits int) (ls.NewPartFn, bool) {
	switch name {
	case "NOT":
		return NotN(bits), true
	case "BUFFER":
		return BufferN(bits), true
	case "AND":
		return AndN(bits), true
	case "NAND":
		return NandN(bits), true
	case "OR":
		return OrN(bits), true
	case "NOR":
		return NorN(bits), true
	case "XOR":
		return XorN(bits), true
	case "XNOR":
		return XnorN(bits), true
	}
	return nil, false
}
