// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	ls "github.com/db47h/logicsim"
)

var (
	mux1  = muxN(1)
	dmux1 = dmuxN(1)
)

// Mux returns a multiplexer.
//
//	Inputs: a, b, sel
//	Outputs: out
//	Function: if sel == 0 { out = a } else { out = b }
//
// An indeterminate sel fails the computation with ErrIndeterminate and leaves
// out floating.
//
func Mux(c string) ls.Part { return mux1.NewPart(c) }

// MuxN returns a N-bits multiplexer.
//
//	Inputs: a[bits], b[bits], sel
//	Outputs: out[bits]
//
func MuxN(bits int) ls.NewPartFn { return muxN(bits).NewPart }

func muxN(bits int) *ls.PartSpec {
	return &ls.PartSpec{
		Name:  suffix("MUX", bits),
		Ports: ls.Ports(ls.In(io(pA, bits)+", "+io(pB, bits)+", "+pSel), ls.Out(io(pOut, bits))),
		Delay: gateDelay,
		Mount: func(s *ls.Socket) ls.Component {
			a, b, sel, out := s.Pin(pA), s.Pin(pB), s.Pin(pSel), s.Pin(pOut)
			return ls.ComponentFn(func(c *ls.Context) error {
				sv, err := c.Get(sel).Uint64()
				if err != nil {
					return ls.PortError(sel, err)
				}
				if sv == 0 {
					c.Set(out, c.Get(a), c.Delay())
				} else {
					c.Set(out, c.Get(b), c.Delay())
				}
				return nil
			})
		}}
}

// DMux returns a demultiplexer.
//
//	Inputs: in, sel
//	Outputs: a, b
//	Function: if sel == 0 { a = in; b = 0 } else { a = 0; b = in }
//
func DMux(c string) ls.Part { return dmux1.NewPart(c) }

// DMuxN returns a N-bits demultiplexer.
//
func DMuxN(bits int) ls.NewPartFn { return dmuxN(bits).NewPart }

func dmuxN(bits int) *ls.PartSpec {
	return &ls.PartSpec{
		Name:  suffix("DMUX", bits),
		Ports: ls.Ports(ls.In(io(pIn, bits)+", "+pSel), ls.Out(io(pA, bits)+", "+io(pB, bits))),
		Delay: gateDelay,
		Mount: func(s *ls.Socket) ls.Component {
			in, sel, a, b := s.Pin(pIn), s.Pin(pSel), s.Pin(pA), s.Pin(pB)
			zero := ls.Known(bits, 0)
			return ls.ComponentFn(func(c *ls.Context) error {
				sv, err := c.Get(sel).Uint64()
				if err != nil {
					return ls.PortError(sel, err)
				}
				if sv == 0 {
					c.Set(a, c.Get(in), c.Delay())
					c.Set(b, zero, c.Delay())
				} else {
					c.Set(a, zero, c.Delay())
					c.Set(b, c.Get(in), c.Delay())
				}
				return nil
			})
		}}
}
