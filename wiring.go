// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logicsim

import (
	"github.com/pkg/errors"
)

// a portRef identifies a port by part index (in the part list being wired) and
// pin number.
type portRef struct {
	part int
	pin  Pin
}

type netNode struct {
	name    string
	width   int
	drivers []portRef
	readers []portRef
}

// wiring collects the nets used by a part list and checks that connected ports
// agree on widths and directions.
type wiring struct {
	nets  map[string]*netNode
	order []string // net names in order of first use
}

func newWiring() *wiring {
	return &wiring{nets: make(map[string]*netNode)}
}

// declare adds a net with a known width.
func (w *wiring) declare(name string, width int) error {
	if n, ok := w.nets[name]; ok {
		if n.width != width {
			return errors.Wrapf(ErrWidthMismatch, "net %s declared with %d and %d bits", name, n.width, width)
		}
		return nil
	}
	w.nets[name] = &netNode{name: name, width: width}
	w.order = append(w.order, name)
	return nil
}

// addPart wires all connections of part p, the i-th part of the list.
func (w *wiring) addPart(i int, p Part, name string) error {
	for _, c := range p.Conns {
		pin := Pin(-1)
		for j, pt := range p.Ports {
			if pt.Name == c.Port {
				pin = Pin(j)
				break
			}
		}
		if pin < 0 {
			return errors.New("invalid port name " + c.Port + " for part " + p.Name)
		}
		if err := w.connect(c.Net, p.Ports[pin], portRef{i, pin}); err != nil {
			return errors.Wrap(err, name+"."+c.Port)
		}
	}
	return nil
}

func (w *wiring) connect(net string, pt Port, ref portRef) error {
	if net == NetTrue || net == NetFalse {
		if pt.Dir.drives() {
			return errors.New("output port connected to constant " + net)
		}
		return nil
	}
	if err := w.declare(net, pt.Width); err != nil {
		return errors.Wrapf(ErrWidthMismatch, "%d bits port to %d bits net %s", pt.Width, w.nets[net].width, net)
	}
	n := w.nets[net]
	if pt.Dir.drives() {
		n.drivers = append(n.drivers, ref)
	}
	if pt.Dir.reads() {
		n.readers = append(n.readers, ref)
	}
	return nil
}
