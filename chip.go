// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logicsim

import (
	"strconv"

	"github.com/pkg/errors"
)

type chip struct {
	parts Parts
}

// Chip composes existing parts into a new part packaged into a chip.
// The given ports will be the ports of the chip; sub-parts connect to them by
// name. Any other net name used by sub-parts is private to each chip instance.
//
// A 2 bits register could be created like this:
//
//	reg2, err := Chip("REG2",
//		Ports(In("d[2]"), Clk("clk"), Out("q[2]")),
//		Parts{
//			hwlib.Register(2)("in=d, clk=clk, out=q"),
//		})
//
// The returned value is a function of type NewPartFn that can be used to
// compose the new part with others into circuits or other chips:
//
//	c, err := NewCircuit(Parts{reg2("d=bus, clk=clk, q=out")})
//
// Chips are flattened when a circuit is built: the instance named "r" of a
// chip containing a part named "x" yields the instance "r/x".
//
func Chip(name string, ports []Port, parts Parts) (NewPartFn, error) {
	sp := &PartSpec{
		Name:  name,
		Kind:  Combinational,
		Ports: ports,
		chip:  &chip{parts: parts},
	}
	if err := sp.check(); err != nil {
		return nil, err
	}

	// check wiring with the chip's own ports acting as free nets.
	w := newWiring()
	for _, p := range ports {
		if err := w.declare(p.Name, p.Width); err != nil {
			return nil, errors.Wrap(err, name)
		}
	}
	for i, p := range parts {
		if err := w.addPart(i, p, partName(p, i)); err != nil {
			return nil, errors.Wrap(err, name)
		}
	}
	return sp.NewPart, nil
}

// partName returns the local instance name of the i-th part of a part list.
func partName(p Part, i int) string {
	if p.name != "" {
		return p.name
	}
	return p.Name + "#" + strconv.Itoa(i)
}

// A flatPart is a leaf part with globally resolved instance and net names.
type flatPart struct {
	id    InstanceID
	spec  *PartSpec
	delay Time
	conns []Connection
}

// flatten expands chips recursively. nets maps the local net names visible to
// parts (chip port names) to global net names.
func flatten(parts Parts, prefix string, nets map[string]string, out []flatPart) ([]flatPart, error) {
	seen := make(map[string]bool, len(parts))
	resolve := func(n string) string {
		if n == NetTrue || n == NetFalse {
			return n
		}
		if g, ok := nets[n]; ok {
			return g
		}
		if prefix == "" {
			return n
		}
		return prefix + "/" + n
	}
	for i, p := range parts {
		if p.PartSpec == nil {
			return nil, errors.New("nil part spec at index " + strconv.Itoa(i))
		}
		name := partName(p, i)
		if seen[name] {
			return nil, errors.New("duplicate instance name " + name)
		}
		seen[name] = true
		id := name
		if prefix != "" {
			id = prefix + "/" + name
		}
		if p.chip != nil {
			sub := make(map[string]string, len(p.Conns))
			for _, c := range p.Conns {
				if _, ok := p.PartSpec.Port(c.Port); !ok {
					return nil, errors.New("invalid port name " + c.Port + " for part " + p.Name)
				}
				sub[c.Port] = resolve(c.Net)
			}
			var err error
			if out, err = flatten(p.chip.parts, id, sub, out); err != nil {
				return nil, err
			}
			continue
		}
		conns := make([]Connection, len(p.Conns))
		for j, c := range p.Conns {
			conns[j] = Connection{Port: c.Port, Net: resolve(c.Net)}
		}
		out = append(out, flatPart{id: InstanceID(id), spec: p.PartSpec, delay: p.effectiveDelay(), conns: conns})
	}
	return out, nil
}
