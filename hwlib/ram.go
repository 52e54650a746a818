// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	"strconv"

	ls "github.com/db47h/logicsim"
)

// RAMState is the state of a RAM.
//
type RAMState struct {
	Width int
	Mem   []uint64
	Clock ls.Value
}

// NewRAMState returns a zeroed memory of 1<<addrBits words of dataBits bits.
//
func NewRAMState(addrBits, dataBits int) *RAMState {
	return &RAMState{Width: dataBits, Mem: make([]uint64, 1<<uint(addrBits)), Clock: ls.Floating(1)}
}

// Load copies words into the memory, starting at address 0.
//
func (s *RAMState) Load(words []uint64) {
	copy(s.Mem, words)
}

// Reset zeroes the memory.
//
func (s *RAMState) Reset() {
	for i := range s.Mem {
		s.Mem[i] = 0
	}
	s.Clock = ls.Floating(1)
}

// Clone implements ls.State.
//
func (s *RAMState) Clone() ls.State {
	c := *s
	c.Mem = append([]uint64(nil), s.Mem...)
	return &c
}

// Words implements export.Memory.
//
func (s *RAMState) Words() []uint64 { return append([]uint64(nil), s.Mem...) }

// WordWidth implements export.Memory.
//
func (s *RAMState) WordWidth() int { return s.Width }

// MarshalBinary implements encoding.BinaryMarshaler.
//
func (s *RAMState) MarshalBinary() ([]byte, error) {
	w := newBlob(8*len(s.Mem) + 48)
	w.putUint64(uint64(s.Width))
	w.putUint64(uint64(len(s.Mem)))
	for _, v := range s.Mem {
		w.putUint64(v)
	}
	w.putValue(s.Clock)
	return w.b, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
//
func (s *RAMState) UnmarshalBinary(b []byte) error {
	r := readBlob(b)
	width, n := int(r.uint64()), r.uint64()
	if !r.need(n * 8) {
		return r.err
	}
	mem := make([]uint64, n)
	for i := range mem {
		mem[i] = r.uint64()
	}
	clk := r.value()
	if err := r.done(); err != nil {
		return err
	}
	if width != s.Width || len(mem) != len(s.Mem) || clk.Width() != 1 {
		return ls.ErrStateType
	}
	s.Mem, s.Clock = mem, clk
	return nil
}

// RAM returns a memory of 1<<addrBits words of dataBits bits with
// synchronous write and asynchronous read.
//
//	Inputs: clk (clock), we, addr[addrBits], din[dataBits]
//	Outputs: dout[dataBits]
//	Function: dout = mem[addr]
//	          on a rising edge of clk, if we == 1, mem[addr] = din
//
// An indeterminate address fails with ErrIndeterminate on port addr and leaves
// dout floating.
//
func RAM(addrBits, dataBits int) ls.NewPartFn {
	if addrBits < 1 || addrBits > 24 {
		panic("invalid RAM address width " + strconv.Itoa(addrBits))
	}
	return (&ls.PartSpec{
		Name:     "RAM" + strconv.Itoa(1<<uint(addrBits)) + "x" + strconv.Itoa(dataBits),
		Kind:     ls.Clocked,
		Ports:    ls.Ports(ls.Clk(pClk), ls.In(pWE+", "+io("addr", addrBits)+", "+io("din", dataBits)), ls.Out(io("dout", dataBits))),
		Delay:    gateDelay,
		NewState: func() ls.State { return NewRAMState(addrBits, dataBits) },
		Mount: func(s *ls.Socket) ls.Component {
			clk, we, addr, din, dout := s.Pin(pClk), s.Pin(pWE), s.Pin("addr"), s.Pin("din"), s.Pin("dout")
			return ls.ComponentFn(func(c *ls.Context) error {
				st, ok := c.State().(*RAMState)
				if !ok {
					return ls.ErrStateType
				}
				cv := c.Get(clk)
				edge := ls.RisingEdge(st.Clock, cv)
				st.Clock = cv
				a, err := c.Get(addr).Uint64()
				if err != nil {
					return ls.PortError(addr, err)
				}
				if edge && c.Get(we).Equal(ls.True) {
					d := c.Get(din)
					if !d.Defined() {
						return ls.PortError(din, ls.ErrIndeterminate)
					}
					st.Mem[a] = d.Raw()
				}
				c.Set(dout, ls.Known(dataBits, st.Mem[a]), c.Delay())
				return nil
			})
		}}).NewPart
}
