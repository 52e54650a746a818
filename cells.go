// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logicsim

import (
	"sort"
	"sync"
)

// State is the private, mutable memory of a part instance (a buffer, a latched
// value, the last clock sample...). It survives across propagation calls.
//
// State values are only ever accessed through their Cell, with the cell lock
// held.
//
type State interface {
	// Reset reinitializes the state to its default contents in place.
	Reset()
	// Clone returns a deep, independent copy of the state. Mutable buffers
	// must never be shared between a state and its clone.
	Clone() State
}

// A Cell holds the state of exactly one instance together with the lock that
// guards it. The simulation goroutine and external stimulus goroutines compete
// for this lock only.
//
type Cell struct {
	id InstanceID
	mu sync.Mutex
	st State
}

// ID returns the ID of the instance owning the cell.
//
func (c *Cell) ID() InstanceID { return c.id }

// Do calls fn with the cell's state while holding the cell lock. fn must not
// retain st after it returns.
//
func (c *Cell) Do(fn func(st State)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(c.st)
}

// Snapshot returns a clone of the cell's state.
//
func (c *Cell) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.st.Clone()
}

// Reset reinitializes the cell's state without changing its identity.
//
func (c *Cell) Reset() {
	c.mu.Lock()
	c.st.Reset()
	c.mu.Unlock()
}

// Restore replaces the cell's state with a clone of st.
//
func (c *Cell) Restore(st State) {
	st = st.Clone()
	c.mu.Lock()
	c.st = st
	c.mu.Unlock()
}

// Cells is a registry of state cells keyed by instance ID. Cells are created
// lazily on first access.
//
// The registry lock only guards the map; it is never held while a cell lock is
// acquired, so operations on distinct cells never wait for each other.
//
type Cells struct {
	mu sync.RWMutex
	m  map[InstanceID]*Cell
}

// NewCells returns an empty registry.
//
func NewCells() *Cells {
	return &Cells{m: make(map[InstanceID]*Cell)}
}

// Get returns the cell for id, atomically creating and registering a new one
// holding newState() if none exists.
//
func (cs *Cells) Get(id InstanceID, newState func() State) *Cell {
	cs.mu.RLock()
	c := cs.m[id]
	cs.mu.RUnlock()
	if c != nil {
		return c
	}
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if c = cs.m[id]; c == nil {
		c = &Cell{id: id, st: newState()}
		cs.m[id] = c
	}
	return c
}

// Lookup returns the cell for id if it exists.
//
func (cs *Cells) Lookup(id InstanceID) (*Cell, bool) {
	cs.mu.RLock()
	c, ok := cs.m[id]
	cs.mu.RUnlock()
	return c, ok
}

// Reset reinitializes the cell for id. It returns false if there is no such
// cell.
//
func (cs *Cells) Reset(id InstanceID) bool {
	c, ok := cs.Lookup(id)
	if ok {
		c.Reset()
	}
	return ok
}

// Delete removes the cell for id.
//
func (cs *Cells) Delete(id InstanceID) {
	cs.mu.Lock()
	delete(cs.m, id)
	cs.mu.Unlock()
}

// IDs returns the sorted IDs of all registered cells.
//
func (cs *Cells) IDs() []InstanceID {
	cs.mu.RLock()
	ids := make([]InstanceID, 0, len(cs.m))
	for id := range cs.m {
		ids = append(ids, id)
	}
	cs.mu.RUnlock()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Snapshot returns a clone of every registered state. Each cell is locked only
// for the duration of its own clone.
//
func (cs *Cells) Snapshot() map[InstanceID]State {
	cs.mu.RLock()
	cells := make([]*Cell, 0, len(cs.m))
	for _, c := range cs.m {
		cells = append(cells, c)
	}
	cs.mu.RUnlock()
	out := make(map[InstanceID]State, len(cells))
	for _, c := range cells {
		out[c.id] = c.Snapshot()
	}
	return out
}
