// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	"github.com/pkg/errors"

	ls "github.com/db47h/logicsim"
)

// Video framebuffer geometry in character cells.
const (
	VideoCols = 64
	VideoRows = 24
)

// VideoState is the state of a character framebuffer: VideoCols * VideoRows
// cells in row major order and the last write clock sample.
//
type VideoState struct {
	Buf   []byte
	Clock ls.Value
}

// NewVideoState returns a blank framebuffer state.
//
func NewVideoState() *VideoState {
	return &VideoState{Buf: make([]byte, VideoCols*VideoRows), Clock: ls.Floating(1)}
}

// Write stores v at offset x + y*VideoCols. Coordinates are not checked
// against the screen geometry; callers must mask them. Offsets past the end of
// the buffer fail with ErrAddressRange.
//
func (s *VideoState) Write(x, y int, v byte) error {
	off := x + y*VideoCols
	if off < 0 || off >= len(s.Buf) {
		return errors.Wrapf(ls.ErrAddressRange, "video cell (%d, %d)", x, y)
	}
	s.Buf[off] = v
	return nil
}

// Cell returns the contents of cell (x, y).
//
func (s *VideoState) Cell(x, y int) byte {
	return s.Buf[x+y*VideoCols]
}

// Cells returns a copy of the framebuffer.
//
func (s *VideoState) Cells() []byte {
	return append([]byte(nil), s.Buf...)
}

// Reset blanks the screen.
//
func (s *VideoState) Reset() {
	for i := range s.Buf {
		s.Buf[i] = 0
	}
	s.Clock = ls.Floating(1)
}

// Clone implements ls.State.
//
func (s *VideoState) Clone() ls.State {
	return &VideoState{Buf: s.Cells(), Clock: s.Clock}
}

// Words implements export.Memory.
//
func (s *VideoState) Words() []uint64 {
	w := make([]uint64, len(s.Buf))
	for i, v := range s.Buf {
		w[i] = uint64(v)
	}
	return w
}

// WordWidth implements export.Memory.
//
func (s *VideoState) WordWidth() int { return 8 }

// MarshalBinary implements encoding.BinaryMarshaler.
//
func (s *VideoState) MarshalBinary() ([]byte, error) {
	w := newBlob(len(s.Buf) + 40)
	w.putBytes(s.Buf)
	w.putValue(s.Clock)
	return w.b, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
//
func (s *VideoState) UnmarshalBinary(b []byte) error {
	r := readBlob(b)
	buf := r.bytes()
	clk := r.value()
	if err := r.done(); err != nil {
		return err
	}
	if len(buf) != VideoCols*VideoRows || clk.Width() != 1 {
		return ls.ErrStateType
	}
	s.Buf, s.Clock = buf, clk
	return nil
}

var video = &ls.PartSpec{
	Name:     "VIDEO",
	Kind:     ls.Clocked,
	Ports:    ls.Ports(ls.Clk(pClk), ls.In(pWE+", x[6], y[5], data[8]")),
	NewState: func() ls.State { return NewVideoState() },
	Mount: func(s *ls.Socket) ls.Component {
		clk, we, x, y, data := s.Pin(pClk), s.Pin(pWE), s.Pin("x"), s.Pin("y"), s.Pin("data")
		return ls.ComponentFn(func(c *ls.Context) error {
			st, ok := c.State().(*VideoState)
			if !ok {
				return ls.ErrStateType
			}
			cv := c.Get(clk)
			edge := ls.RisingEdge(st.Clock, cv)
			st.Clock = cv
			if !edge || !c.Get(we).Equal(ls.True) {
				return nil
			}
			return ls.PortError(y, st.Write(int(c.Get(x).Raw()), int(c.Get(y).Raw()), byte(c.Get(data).Raw())))
		})
	}}

// Video returns a 64x24 character framebuffer.
//
//	Inputs: clk (clock), we, x[6], y[5], data[8]
//	Function: on a rising edge of clk, if we == 1, cell(x, y) = data
//
// Writes to rows past the last one fail with ErrAddressRange on port y.
//
func Video(c string) ls.Part { return video.NewPart(c) }
