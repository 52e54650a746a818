// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logicsim

import (
	"encoding"
	"sort"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type netState struct {
	value Value
	slots []Value
}

// A Checkpoint is an in-memory copy of the complete state of a circuit: state
// cells, net and driver values, pending events and the current time. It never
// shares mutable buffers with the live circuit and can be restored any number
// of times.
//
type Checkpoint struct {
	now    Time
	seq    uint64
	states map[InstanceID]State
	nets   []netState
	queue  eventQueue
	dirty  []int
	failed error
}

// Time returns the simulated time at which the checkpoint was taken.
//
func (cp *Checkpoint) Time() Time { return cp.now }

// Checkpoint captures the current state of the circuit.
//
func (c *Circuit) Checkpoint() *Checkpoint {
	for _, i := range c.inv.drain() {
		c.markDirty(i)
	}
	cp := &Checkpoint{
		now:    c.now,
		seq:    c.seq,
		states: make(map[InstanceID]State),
		nets:   make([]netState, len(c.nets)),
		queue:  append(eventQueue(nil), c.queue...),
		dirty:  append([]int(nil), c.dirty...),
		failed: c.failed,
	}
	for _, inst := range c.insts {
		if inst.cell != nil {
			cp.states[inst.id] = inst.cell.Snapshot()
		}
	}
	for i, n := range c.nets {
		cp.nets[i] = netState{value: n.value, slots: append([]Value(nil), n.slots...)}
	}
	return cp
}

// Restore reinstates a checkpoint taken from the same circuit. Cells keep
// their identity; their contents are replaced by clones of the checkpointed
// states.
//
func (c *Circuit) Restore(cp *Checkpoint) error {
	if len(cp.nets) != len(c.nets) {
		return errors.New("checkpoint does not belong to this circuit")
	}
	for i, n := range c.nets {
		if len(cp.nets[i].slots) != len(n.slots) {
			return errors.New("checkpoint does not belong to this circuit")
		}
	}
	for _, inst := range c.insts {
		if inst.cell == nil {
			continue
		}
		st, ok := cp.states[inst.id]
		if !ok {
			return errors.Errorf("checkpoint has no state for %s", inst.id)
		}
		inst.cell.Restore(st)
	}
	for i, n := range c.nets {
		n.value = cp.nets[i].value
		copy(n.slots, cp.nets[i].slots)
	}
	c.discard()
	c.inv.drain()
	c.queue = append(c.queue, cp.queue...)
	for _, i := range cp.dirty {
		c.markDirty(i)
	}
	c.now = cp.now
	c.seq = cp.seq
	c.failed = cp.failed
	return nil
}

// A Snapshot is the serializable form of a circuit state. Instance states are
// stored as versioned binary blobs produced by the states' MarshalBinary
// method; nets are informational.
//
type Snapshot struct {
	Time      Time                  `json:"time"`
	Instances map[InstanceID][]byte `json:"instances"`
	Nets      map[string]string     `json:"nets"`
}

// Export returns a serializable snapshot of the circuit. Every stateful part
// must implement encoding.BinaryMarshaler.
//
func (c *Circuit) Export() (*Snapshot, error) {
	s := &Snapshot{
		Time:      c.now,
		Instances: make(map[InstanceID][]byte),
		Nets:      make(map[string]string, len(c.nets)),
	}
	for _, inst := range c.insts {
		if inst.cell == nil {
			continue
		}
		st := inst.cell.Snapshot()
		m, ok := st.(encoding.BinaryMarshaler)
		if !ok {
			return nil, errors.Wrapf(ErrStateType, "%s: %T is not a BinaryMarshaler", inst.id, st)
		}
		b, err := m.MarshalBinary()
		if err != nil {
			return nil, errors.Wrap(err, string(inst.id))
		}
		s.Instances[inst.id] = b
	}
	for _, n := range c.nets {
		s.Nets[n.name] = n.value.String()
	}
	return s, nil
}

// Import rebuilds the circuit state from a snapshot: state cells are decoded
// from their blobs, nets take their recorded values, the event queue is
// cleared and every instance is scheduled for evaluation at the snapshot time
// so that drivers are recomputed.
//
// Instances missing from the snapshot keep a default state.
//
func (c *Circuit) Import(s *Snapshot) error {
	states := make(map[InstanceID]State, len(s.Instances))
	ids := make([]string, 0, len(s.Instances))
	for id := range s.Instances {
		ids = append(ids, string(id))
	}
	sort.Strings(ids)
	for _, id := range ids {
		inst, ok := c.byID[InstanceID(id)]
		if !ok {
			return errors.Wrap(ErrUnknownInstance, id)
		}
		if inst.cell == nil {
			return errors.Wrap(ErrNoState, id)
		}
		st := inst.spec.NewState()
		u, ok := st.(encoding.BinaryUnmarshaler)
		if !ok {
			return errors.Wrapf(ErrStateType, "%s: %T is not a BinaryUnmarshaler", id, st)
		}
		if err := u.UnmarshalBinary(s.Instances[InstanceID(id)]); err != nil {
			return errors.Wrap(err, id)
		}
		states[inst.id] = st
	}
	values := make(map[int]Value, len(s.Nets))
	for name, str := range s.Nets {
		i, ok := c.netIdx[name]
		if !ok {
			return errors.New("unknown net " + name)
		}
		v, err := Parse(str)
		if err != nil {
			return errors.Wrap(err, name)
		}
		if v.Width() != c.nets[i].width {
			return errors.Wrapf(ErrWidthMismatch, "net %s", name)
		}
		values[i] = v
	}

	c.Reset()
	for id, st := range states {
		c.byID[id].cell.Restore(st)
	}
	for i, v := range values {
		c.nets[i].value = v
	}
	c.now = s.Time
	c.log.WithFields(logrus.Fields{
		"time":      s.Time,
		"instances": len(states),
	}).Info("snapshot imported")
	return nil
}
