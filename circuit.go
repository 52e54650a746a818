// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logicsim

import (
	"sort"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// pinConn is the runtime connection of a port.
type pinConn struct {
	net  int   // -1: unconnected or constant
	slot int   // driver slot in net; -1 if the port does not drive it
	cst  Value // value of a port connected to a constant
}

type instance struct {
	idx   int
	id    InstanceID
	spec  *PartSpec
	delay Time
	comp  Component
	cell  *Cell // nil for combinational parts
	pins  []pinConn
}

// A net carries the merged value of all the ports driving it.
type net struct {
	name    string
	width   int
	value   Value   // committed value
	slots   []Value // one driven value per driving port
	readers []int   // instance indices
}

func (n *net) merge() Value {
	v := Floating(n.width)
	for _, s := range n.slots {
		v, _ = v.Merge(s)
	}
	return v
}

// A CommitFn is called by the scheduler whenever the committed value of a net
// changes.
//
type CommitFn func(t Time, net string, v Value)

// Circuit is a runnable circuit simulation.
//
// All methods except ApplyStimulus must be called from a single goroutine (the
// simulation goroutine).
//
type Circuit struct {
	cfg   Config
	log   logrus.FieldLogger
	cells *Cells
	hooks []CommitFn

	insts  []*instance
	byID   map[InstanceID]*instance
	nets   []*net
	netIdx map[string]int

	now     Time
	seq     uint64
	queue   eventQueue
	dirty   []int
	isDirty []bool
	failed  error

	inv invalidations
	ctx Context
}

// invalidations is the hand-off queue between stimulus goroutines and the
// simulation goroutine.
type invalidations struct {
	mu  sync.Mutex
	ids []int
	set map[int]bool
}

func (q *invalidations) push(i int) {
	q.mu.Lock()
	if !q.set[i] {
		q.set[i] = true
		q.ids = append(q.ids, i)
	}
	q.mu.Unlock()
}

func (q *invalidations) drain() []int {
	q.mu.Lock()
	ids := q.ids
	q.ids = nil
	if len(ids) > 0 {
		q.set = make(map[int]bool)
	}
	q.mu.Unlock()
	return ids
}

func (q *invalidations) len() int {
	q.mu.Lock()
	n := len(q.ids)
	q.mu.Unlock()
	return n
}

// NewCircuit builds a new circuit based on the given parts. Chips are
// flattened, nets are created for every net name used in a connection and
// every instance is scheduled for evaluation at time 0.
//
func NewCircuit(parts Parts, opts ...Option) (*Circuit, error) {
	if len(parts) == 0 {
		return nil, errors.New("empty part list")
	}
	flat, err := flatten(parts, "", nil, nil)
	if err != nil {
		return nil, err
	}

	c := &Circuit{
		byID:   make(map[InstanceID]*instance, len(flat)),
		netIdx: make(map[string]int),
	}
	for _, o := range opts {
		o(c)
	}
	c.cfg = c.cfg.withDefaults()
	if c.log == nil {
		c.log = discardLogger()
	}
	if c.cells == nil {
		c.cells = NewCells()
	}
	c.inv.set = make(map[int]bool)

	w := newWiring()
	for i, fp := range flat {
		if err = fp.spec.check(); err != nil {
			return nil, errors.Wrap(err, string(fp.id))
		}
		if err = w.addPart(i, Part{PartSpec: fp.spec, Conns: fp.conns}, string(fp.id)); err != nil {
			return nil, err
		}
	}
	for _, name := range w.order {
		nn := w.nets[name]
		c.netIdx[name] = len(c.nets)
		c.nets = append(c.nets, &net{name: name, width: nn.width, value: Floating(nn.width)})
	}

	for i, fp := range flat {
		inst := &instance{
			idx:   i,
			id:    fp.id,
			spec:  fp.spec,
			delay: fp.delay,
			pins:  make([]pinConn, len(fp.spec.Ports)),
		}
		connected := make([]bool, len(fp.spec.Ports))
		for j := range inst.pins {
			inst.pins[j] = pinConn{net: -1, slot: -1}
		}
		for _, cn := range fp.conns {
			var pin int
			for pin = range fp.spec.Ports {
				if fp.spec.Ports[pin].Name == cn.Port {
					break
				}
			}
			pt := fp.spec.Ports[pin]
			connected[pin] = true
			switch cn.Net {
			case NetFalse:
				inst.pins[pin].cst = Known(pt.Width, 0)
				continue
			case NetTrue:
				inst.pins[pin].cst = Known(pt.Width, ^uint64(0))
				continue
			}
			ni := c.netIdx[cn.Net]
			n := c.nets[ni]
			inst.pins[pin].net = ni
			if pt.Dir.drives() {
				inst.pins[pin].slot = len(n.slots)
				n.slots = append(n.slots, Floating(n.width))
			}
			if pt.Dir.reads() && (len(n.readers) == 0 || n.readers[len(n.readers)-1] != i) {
				n.readers = append(n.readers, i)
			}
		}
		if fp.spec.Kind.stateful() {
			inst.cell = c.cells.Get(fp.id, fp.spec.NewState)
		}
		if inst.comp = fp.spec.Mount(newSocket(fp.id, fp.spec, connected)); inst.comp == nil {
			return nil, errors.New(string(fp.id) + ": Mount returned a nil component")
		}
		c.insts = append(c.insts, inst)
		c.byID[fp.id] = inst
	}

	c.isDirty = make([]bool, len(c.insts))
	c.markAll()
	return c, nil
}

func (c *Circuit) markDirty(i int) {
	if !c.isDirty[i] {
		c.isDirty[i] = true
		c.dirty = append(c.dirty, i)
	}
}

func (c *Circuit) markAll() {
	for i := range c.insts {
		c.markDirty(i)
	}
}

// OnCommit registers a function called every time the committed value of a
// net changes.
//
func (c *Circuit) OnCommit(fn CommitFn) {
	c.hooks = append(c.hooks, fn)
}

// Config returns the effective scheduler configuration.
//
func (c *Circuit) Config() Config { return c.cfg }

// Now returns the current simulated time.
//
func (c *Circuit) Now() Time { return c.now }

// Pending returns the number of pending events in the queue.
//
func (c *Circuit) Pending() int { return len(c.queue) }

// Idle returns true if there is nothing left to simulate: no pending events,
// no instance waiting for evaluation and no invalidated state.
//
func (c *Circuit) Idle() bool {
	return len(c.queue) == 0 && len(c.dirty) == 0 && c.inv.len() == 0
}

// Value returns the committed value of the named net.
//
func (c *Circuit) Value(net string) (Value, bool) {
	i, ok := c.netIdx[net]
	if !ok {
		return Value{}, false
	}
	return c.nets[i].value, true
}

// PortValue returns the value seen by the given port of an instance.
//
func (c *Circuit) PortValue(id InstanceID, port string) (Value, error) {
	inst, ok := c.byID[id]
	if !ok {
		return Value{}, errors.Wrap(ErrUnknownInstance, string(id))
	}
	for i, pt := range inst.spec.Ports {
		if pt.Name == port {
			return c.get(inst, Pin(i)), nil
		}
	}
	return Value{}, errors.New("invalid port name " + port + " for part " + inst.spec.Name)
}

func (c *Circuit) get(inst *instance, p Pin) Value {
	pc := &inst.pins[p]
	if pc.net >= 0 {
		return c.nets[pc.net].value
	}
	if pc.cst.width > 0 {
		return pc.cst
	}
	return Floating(inst.spec.Ports[p].Width)
}

// Nets returns the sorted names of all nets.
//
func (c *Circuit) Nets() []string {
	names := make([]string, len(c.nets))
	for i, n := range c.nets {
		names[i] = n.name
	}
	sort.Strings(names)
	return names
}

// Instances returns the IDs of all leaf instances in build order.
//
func (c *Circuit) Instances() []InstanceID {
	ids := make([]InstanceID, len(c.insts))
	for i, inst := range c.insts {
		ids[i] = inst.id
	}
	return ids
}

// PartOf returns the part specification of an instance.
//
func (c *Circuit) PartOf(id InstanceID) (*PartSpec, bool) {
	inst, ok := c.byID[id]
	if !ok {
		return nil, false
	}
	return inst.spec, true
}

// Cell returns the state cell of an instance.
//
func (c *Circuit) Cell(id InstanceID) (*Cell, error) {
	inst, ok := c.byID[id]
	if !ok {
		return nil, errors.Wrap(ErrUnknownInstance, string(id))
	}
	if inst.cell == nil {
		return nil, errors.Wrap(ErrNoState, string(id))
	}
	return inst.cell, nil
}

// Snapshot returns a clone of the state of an instance, for renderers and
// exporters. It can be called from any goroutine.
//
func (c *Circuit) Snapshot(id InstanceID) (State, error) {
	cell, err := c.Cell(id)
	if err != nil {
		return nil, err
	}
	return cell.Snapshot(), nil
}
