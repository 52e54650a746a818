// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	ls "github.com/db47h/logicsim"
)

// RegisterState is the state of a Register: the last clock sample and the
// latched value.
//
type RegisterState struct {
	Width int
	Clock ls.Value
	Q     ls.Value
}

func newRegisterState(bits int) *RegisterState {
	return &RegisterState{Width: bits, Clock: ls.Floating(1), Q: ls.Known(bits, 0)}
}

// Reset clears the latched value.
//
func (s *RegisterState) Reset() {
	s.Clock = ls.Floating(1)
	s.Q = ls.Known(s.Width, 0)
}

// Clone implements ls.State.
//
func (s *RegisterState) Clone() ls.State {
	c := *s
	return &c
}

// MarshalBinary implements encoding.BinaryMarshaler.
//
func (s *RegisterState) MarshalBinary() ([]byte, error) {
	w := newBlob(64)
	w.putUint64(uint64(s.Width))
	w.putValue(s.Clock)
	w.putValue(s.Q)
	return w.b, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
//
func (s *RegisterState) UnmarshalBinary(b []byte) error {
	r := readBlob(b)
	width := int(r.uint64())
	clk, q := r.value(), r.value()
	if err := r.done(); err != nil {
		return err
	}
	if q.Width() != width || clk.Width() != 1 {
		return ls.ErrWidthMismatch
	}
	s.Width, s.Clock, s.Q = width, clk, q
	return nil
}

// Register returns a N-bits register.
//
//	Inputs: in[bits], load, clk
//	Outputs: out[bits]
//	Function: if RisingEdge(clk) && load { out = in }
//
// An unconnected load input reads as 1.
//
func Register(bits int) ls.NewPartFn {
	return (&ls.PartSpec{
		Name:     suffix("REGISTER", bits),
		Kind:     ls.Clocked,
		Ports:    ls.Ports(ls.In(io(pIn, bits)+", "+pLoad), ls.Clk(pClk), ls.Out(io(pOut, bits))),
		Delay:    gateDelay,
		NewState: func() ls.State { return newRegisterState(bits) },
		Mount: func(s *ls.Socket) ls.Component {
			in, load, clk, out := s.Pin(pIn), s.Pin(pLoad), s.Pin(pClk), s.Pin(pOut)
			always := !s.Connected(pLoad)
			return ls.ComponentFn(func(c *ls.Context) error {
				st, ok := c.State().(*RegisterState)
				if !ok {
					return ls.ErrStateType
				}
				cv := c.Get(clk)
				if ls.RisingEdge(st.Clock, cv) && (always || c.Get(load).Equal(ls.True)) {
					st.Q = c.Get(in)
				}
				st.Clock = cv
				c.Set(out, st.Q, c.Delay())
				return nil
			})
		}}).NewPart
}

var dff = Register(1)

// DFF returns a clocked data flip flop.
//
//	Inputs: in, clk
//	Outputs: out
//	Function: out = in on every rising edge of clk
//
func DFF(c string) ls.Part {
	return dff(c)
}
