// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	ls "github.com/db47h/logicsim"
)

// Keyboard defaults.
const (
	KeyboardCapacity = 1 << 16
	KeyboardDelay    = 9
)

// KeyAction is the kind of a KeyEvent.
//
type KeyAction uint8

// Key actions.
//
const (
	KeyPress KeyAction = iota
	KeyRelease
	KeyTyped
)

// A KeyEvent is an external keyboard event. Press and release events are
// translated to PS/2 scan codes according to Key (see MakeCode); typed events
// insert the character code of Char.
//
type KeyEvent struct {
	Action KeyAction
	Key    string
	Char   rune
}

// KeyboardState is the state of a buffered keyboard: a circular buffer of
// codes, its write index, the last read clock sample and the latched output.
//
type KeyboardState struct {
	Buf   []uint16
	Index int
	Clock ls.Value
	Out   ls.Value
}

// NewKeyboardState returns an empty keyboard state with the given capacity.
//
func NewKeyboardState(capacity int) *KeyboardState {
	if capacity <= 0 {
		panic("invalid keyboard capacity")
	}
	return &KeyboardState{
		Buf:   make([]uint16, capacity),
		Clock: ls.Floating(1),
		Out:   ls.Floating(8),
	}
}

// Insert stores a code at the write index and advances it modulo the buffer
// capacity.
//
func (s *KeyboardState) Insert(code uint16) {
	s.Buf[s.Index] = code
	s.Index = (s.Index + 1) % len(s.Buf)
}

// Propagate latches the entry at address (modulo the buffer capacity) on a
// rising edge of clock and returns the latched output. The clock sample is
// remembered for edge detection.
//
func (s *KeyboardState) Propagate(clock ls.Value, address uint64) ls.Value {
	if ls.RisingEdge(s.Clock, clock) {
		s.Out = ls.Known(8, uint64(s.Buf[address%uint64(len(s.Buf))]))
	}
	s.Clock = clock
	return s.Out
}

// Reset clears the buffer and moves the write index back to the origin. The
// last clock sample and the latched output are kept.
//
func (s *KeyboardState) Reset() {
	for i := range s.Buf {
		s.Buf[i] = 0
	}
	s.Index = 0
}

// Clone implements ls.State.
//
func (s *KeyboardState) Clone() ls.State {
	c := *s
	c.Buf = append([]uint16(nil), s.Buf...)
	return &c
}

// Words implements export.Memory.
//
func (s *KeyboardState) Words() []uint64 {
	w := make([]uint64, len(s.Buf))
	for i, v := range s.Buf {
		w[i] = uint64(v)
	}
	return w
}

// WordWidth implements export.Memory.
//
func (s *KeyboardState) WordWidth() int { return 16 }

// MarshalBinary implements encoding.BinaryMarshaler.
//
func (s *KeyboardState) MarshalBinary() ([]byte, error) {
	w := newBlob(2*len(s.Buf) + 80)
	w.putUint16s(s.Buf)
	w.putUint64(uint64(s.Index))
	w.putValue(s.Clock)
	w.putValue(s.Out)
	return w.b, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
//
func (s *KeyboardState) UnmarshalBinary(b []byte) error {
	r := readBlob(b)
	buf := r.uint16s()
	idx := r.uint64()
	clk, out := r.value(), r.value()
	if err := r.done(); err != nil {
		return err
	}
	if len(buf) == 0 || idx >= uint64(len(buf)) || clk.Width() != 1 || out.Width() != 8 {
		return ls.ErrStateType
	}
	s.Buf, s.Index, s.Clock, s.Out = buf, int(idx), clk, out
	return nil
}

func keyboardStimulus(st ls.State, ev ls.Event) (bool, error) {
	s, ok := st.(*KeyboardState)
	if !ok {
		return false, ls.ErrStateType
	}
	e, ok := ev.(KeyEvent)
	if !ok {
		return false, nil
	}
	var seq []byte
	switch e.Action {
	case KeyPress:
		seq, ok = MakeCode(e.Key)
	case KeyRelease:
		seq, ok = BreakCode(e.Key)
	case KeyTyped:
		if e.Char < 0 || e.Char > 0xFFFF {
			return false, nil
		}
		s.Insert(uint16(e.Char))
		return true, nil
	default:
		return false, nil
	}
	if !ok {
		return false, nil
	}
	for _, c := range seq {
		s.Insert(uint16(c))
	}
	return true, nil
}

// Keyboard returns a buffered keyboard with the given buffer capacity.
// KeyEvents applied with Circuit.ApplyStimulus are inserted in the buffer;
// unmapped keys are not consumed.
//
//	Inputs: rst, rclk (clock), wclk (clock), adr[16]
//	Outputs: data[8]
//	In/Out: pclk, pdat
//	Function: on a rising edge of rclk, data = buffer[adr mod capacity]
//	          if rst == 1, the buffer is cleared after the read
//
// Address bits that are not driven read as 0. The PS/2 lines pclk and pdat and
// the wclk clock are declared for connection compatibility only: the part
// never drives them and ignores their values.
//
func Keyboard(capacity int) ls.NewPartFn {
	return (&ls.PartSpec{
		Name:     "KEYBOARD",
		Kind:     ls.External,
		Ports:    ls.Ports(ls.In("rst"), ls.Bidi("pclk, pdat"), ls.In("adr[16]"), ls.Out("data[8]"), ls.Clk("wclk, rclk")),
		Delay:    KeyboardDelay,
		NewState: func() ls.State { return NewKeyboardState(capacity) },
		Stimulus: keyboardStimulus,
		Mount: func(s *ls.Socket) ls.Component {
			rst, rclk, adr, data := s.Pin("rst"), s.Pin("rclk"), s.Pin("adr"), s.Pin("data")
			return ls.ComponentFn(func(c *ls.Context) error {
				st, ok := c.State().(*KeyboardState)
				if !ok {
					return ls.ErrStateType
				}
				v := st.Propagate(c.Get(rclk), c.Get(adr).Raw())
				if c.Get(rst).Equal(ls.True) {
					st.Reset()
				}
				c.Set(data, v, c.Delay())
				return nil
			})
		}}).NewPart
}
