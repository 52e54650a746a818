// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package netlist

import (
	"github.com/pkg/errors"

	ls "github.com/db47h/logicsim"
	hl "github.com/db47h/logicsim/hwlib"
)

// A Kind returns the NewPartFn of a part kind for the given parameters.
//
type Kind func(p Params) (ls.NewPartFn, error)

// Kinds maps part kind names to their constructor. Gates, mux, dmux, adder,
// register and pin use Params.Bits (default 1), clock uses HalfPeriod,
// keyboard uses Capacity, ram uses AddrBits and Bits, const uses Value.
//
var Kinds = map[string]Kind{
	"not":    gate("NOT"),
	"buffer": gate("BUFFER"),
	"and":    gate("AND"),
	"nand":   gate("NAND"),
	"or":     gate("OR"),
	"nor":    gate("NOR"),
	"xor":    gate("XOR"),
	"xnor":   gate("XNOR"),
	"mux": func(p Params) (ls.NewPartFn, error) {
		return hl.MuxN(p.bits()), nil
	},
	"dmux": func(p Params) (ls.NewPartFn, error) {
		return hl.DMuxN(p.bits()), nil
	},
	"adder": func(p Params) (ls.NewPartFn, error) {
		return hl.Adder(p.bits()), nil
	},
	"register": func(p Params) (ls.NewPartFn, error) {
		return hl.Register(p.bits()), nil
	},
	"dff": func(Params) (ls.NewPartFn, error) {
		return hl.DFF, nil
	},
	"pin": func(p Params) (ls.NewPartFn, error) {
		return hl.Pin(p.bits()), nil
	},
	"clock": func(p Params) (ls.NewPartFn, error) {
		if p.HalfPeriod == 0 {
			return nil, errors.New("clock half period must be > 0")
		}
		return hl.Clock(p.HalfPeriod), nil
	},
	"keyboard": func(p Params) (ls.NewPartFn, error) {
		if p.Capacity < 0 {
			return nil, errors.Errorf("invalid keyboard capacity %d", p.Capacity)
		}
		if p.Capacity == 0 {
			return hl.Keyboard(hl.KeyboardCapacity), nil
		}
		return hl.Keyboard(p.Capacity), nil
	},
	"video": func(Params) (ls.NewPartFn, error) {
		return hl.Video, nil
	},
	"ram": func(p Params) (ls.NewPartFn, error) {
		if p.AddrBits <= 0 || p.AddrBits > 24 {
			return nil, errors.Errorf("invalid ram address width %d", p.AddrBits)
		}
		return hl.RAM(p.AddrBits, p.bits()), nil
	},
	"const": func(p Params) (ls.NewPartFn, error) {
		v, err := ls.Parse(p.Value)
		if err != nil {
			return nil, err
		}
		return ls.Constant(v), nil
	},
}

func (p Params) bits() int {
	if p.Bits <= 0 {
		return 1
	}
	return p.Bits
}

func gate(name string) Kind {
	return func(p Params) (ls.NewPartFn, error) {
		fn, ok := hl.Gate(name, p.bits())
		if !ok {
			return nil, errors.New("unknown gate " + name)
		}
		return fn, nil
	}
}
