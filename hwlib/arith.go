// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	"math/bits"

	ls "github.com/db47h/logicsim"
)

// Adder returns a N-bits adder with carry in and carry out.
//
//	Inputs: a[width], b[width], cin
//	Outputs: s[width], cout
//	Function: s = lsb(a + b + cin)
//	          cout = carry out of the msb
//
// An unconnected cin reads as 0. Any indeterminate operand bit makes both
// outputs conflicts.
//
func Adder(width int) ls.NewPartFn {
	return (&ls.PartSpec{
		Name:  suffix("ADDER", width),
		Ports: ls.Ports(ls.In(io(pA, width)+", "+io(pB, width)+", cin"), ls.Out(io("s", width)+", cout")),
		Delay: gateDelay,
		Mount: func(s *ls.Socket) ls.Component {
			a, b, cin := s.Pin(pA), s.Pin(pB), s.Pin("cin")
			sum, cout := s.Pin("s"), s.Pin("cout")
			useCarry := s.Connected("cin")
			return ls.ComponentFn(func(c *ls.Context) error {
				va, errA := c.Get(a).Uint64()
				vb, errB := c.Get(b).Uint64()
				var vc uint64
				var errC error
				if useCarry {
					vc, errC = c.Get(cin).Uint64()
				}
				if errA != nil || errB != nil || errC != nil {
					c.Set(sum, ls.Conflict(width), c.Delay())
					c.Set(cout, ls.Conflict(1), c.Delay())
					return nil
				}
				r, carry := bits.Add64(va, vb, vc)
				if width < 64 {
					carry = r >> uint(width) & 1
				}
				c.Set(sum, ls.Known(width, r), c.Delay())
				c.Set(cout, ls.Known(1, carry), c.Delay())
				return nil
			})
		}}).NewPart
}
