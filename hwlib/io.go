// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	"strconv"

	"github.com/pkg/errors"

	ls "github.com/db47h/logicsim"
)

// PointerEvent is a pointer press or release on a Pin.
//
type PointerEvent struct {
	Down bool
}

// PinState is the value driven by a Pin.
//
type PinState struct {
	V ls.Value
}

// Reset drives all bits low.
//
func (s *PinState) Reset() { s.V = ls.Known(s.V.Width(), 0) }

// Clone implements ls.State.
//
func (s *PinState) Clone() ls.State {
	c := *s
	return &c
}

// MarshalBinary implements encoding.BinaryMarshaler.
//
func (s *PinState) MarshalBinary() ([]byte, error) {
	w := newBlob(32)
	w.putValue(s.V)
	return w.b, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
//
func (s *PinState) UnmarshalBinary(b []byte) error {
	r := readBlob(b)
	v := r.value()
	if err := r.done(); err != nil {
		return err
	}
	if v.Width() != s.V.Width() {
		return ls.ErrWidthMismatch
	}
	s.V = v
	return nil
}

func pinStimulus(st ls.State, ev ls.Event) (bool, error) {
	s, ok := st.(*PinState)
	if !ok {
		return false, ls.ErrStateType
	}
	w := s.V.Width()
	switch e := ev.(type) {
	case ls.Value:
		if e.Width() != w {
			return false, errors.Wrapf(ls.ErrWidthMismatch, "%d bits value on %d bits pin", e.Width(), w)
		}
		s.V = e
	case uint64:
		s.V = ls.Known(w, e)
	case PointerEvent:
		if e.Down {
			s.V = ls.Known(w, ^uint64(0))
		} else {
			s.V = ls.Known(w, 0)
		}
	default:
		return false, nil
	}
	return true, nil
}

// Pin returns a host-driven input pin of the given width. Its value is set
// with Circuit.ApplyStimulus using a logicsim.Value of the same width, a
// uint64 or a PointerEvent (all ones while down, zero when released). A Value
// of another width fails with ErrWidthMismatch. It initially drives all bits
// low.
//
//	Outputs: out[bits]
//
func Pin(bits int) ls.NewPartFn {
	return (&ls.PartSpec{
		Name:     suffix("PIN", bits),
		Kind:     ls.External,
		Ports:    ls.Out(io(pOut, bits)),
		NewState: func() ls.State { return &PinState{V: ls.Known(bits, 0)} },
		Stimulus: pinStimulus,
		Mount: func(s *ls.Socket) ls.Component {
			out := s.Pin(pOut)
			return ls.ComponentFn(func(c *ls.Context) error {
				st, ok := c.State().(*PinState)
				if !ok {
					return ls.ErrStateType
				}
				c.Set(out, st.V, c.Delay())
				return nil
			})
		}}).NewPart
}

// Probe creates a probe. The fn function is called with the current time and
// the value of the in port every time it changes.
//
//	Inputs: in[bits]
//	Function: fn(now, in)
//
func Probe(bits int, fn func(t ls.Time, v ls.Value)) ls.NewPartFn {
	return (&ls.PartSpec{
		Name:  suffix("PROBE", bits),
		Ports: ls.In(io(pIn, bits)),
		Mount: func(s *ls.Socket) ls.Component {
			in := s.Pin(pIn)
			return ls.ComponentFn(func(c *ls.Context) error {
				fn(c.Now(), c.Get(in))
				return nil
			})
		}}).NewPart
}

// ClockState is the state of a Clock.
//
type ClockState struct {
	Level   bool
	Started bool
	Next    ls.Time // time of the next transition
}

// Reset stops the clock.
//
func (s *ClockState) Reset() { *s = ClockState{} }

// Clone implements ls.State.
//
func (s *ClockState) Clone() ls.State {
	c := *s
	return &c
}

// MarshalBinary implements encoding.BinaryMarshaler.
//
func (s *ClockState) MarshalBinary() ([]byte, error) {
	w := newBlob(24)
	var flags uint64
	if s.Level {
		flags |= 1
	}
	if s.Started {
		flags |= 2
	}
	w.putUint64(flags)
	w.putUint64(uint64(s.Next))
	return w.b, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
//
func (s *ClockState) UnmarshalBinary(b []byte) error {
	r := readBlob(b)
	flags, next := r.uint64(), r.uint64()
	if err := r.done(); err != nil {
		return err
	}
	*s = ClockState{Level: flags&1 != 0, Started: flags&2 != 0, Next: ls.Time(next)}
	return nil
}

// Clock returns a free running oscillator. Its output starts low at time 0
// and toggles every halfPeriod time units.
//
//	Outputs: out
//
func Clock(halfPeriod ls.Time) ls.NewPartFn {
	if halfPeriod == 0 {
		panic("zero clock half period")
	}
	return (&ls.PartSpec{
		Name:     "CLOCK" + strconv.FormatUint(uint64(halfPeriod), 10),
		Kind:     ls.Clocked,
		Ports:    ls.Out(pOut),
		NewState: func() ls.State { return new(ClockState) },
		Mount: func(s *ls.Socket) ls.Component {
			out := s.Pin(pOut)
			return ls.ComponentFn(func(c *ls.Context) error {
				st, ok := c.State().(*ClockState)
				if !ok {
					return ls.ErrStateType
				}
				now := c.Now()
				switch {
				case !st.Started:
					st.Started = true
					st.Level = false
					st.Next = now + halfPeriod
					c.Wake(halfPeriod)
				case now >= st.Next:
					st.Level = !st.Level
					st.Next = now + halfPeriod
					c.Wake(halfPeriod)
				default:
					// re-evaluated between transitions (e.g. after an import).
					c.Wake(st.Next - now)
				}
				if st.Level {
					c.Set(out, ls.True, 0)
				} else {
					c.Set(out, ls.False, 0)
				}
				return nil
			})
		}}).NewPart
}
