// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logicsim

import (
	"strconv"
)

var nand = &PartSpec{
	Name:  "NAND",
	Ports: Ports(In("a, b"), Out("out")),
	Delay: 1,
	Mount: func(s *Socket) Component {
		a, b, out := s.Pin("a"), s.Pin("b"), s.Pin("out")
		return ComponentFn(func(c *Context) error {
			v, err := c.Get(a).And(c.Get(b))
			if err != nil {
				return PortError(out, err)
			}
			c.Set(out, v.Not(), c.Delay())
			return nil
		})
	}}

// Nand returns a NAND gate, the only logic gate built into the simulator.
// Every other gate can be built from it with Chip.
//
//	Inputs: a, b
//	Outputs: out
//	Function: out = !(a && b)
//
func Nand(c string) Part { return nand.NewPart(c) }

// Constant returns a part driving the constant value v on its out port.
//
//	Outputs: out[v.Width()]
//
func Constant(v Value) NewPartFn {
	w := "out"
	if v.Width() > 1 {
		w += "[" + strconv.Itoa(v.Width()) + "]"
	}
	return (&PartSpec{
		Name:  "CONST" + strconv.Itoa(v.Width()),
		Ports: Out(w),
		Mount: func(s *Socket) Component {
			out := s.Pin("out")
			return ComponentFn(func(c *Context) error {
				c.Set(out, v, 0)
				return nil
			})
		}}).NewPart
}
