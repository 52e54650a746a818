// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logicsim

import (
	"container/heap"
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/db47h/logicsim/internal/metrics"
)

// An event either updates a driver slot of a net or wakes an instance up.
type event struct {
	t    Time
	seq  uint64
	net  int // -1 for wake events
	slot int
	inst int
	v    Value
}

// eventQueue is a min-heap ordered by (time, sequence number).
type eventQueue []event

func (q eventQueue) Len() int { return len(q) }
func (q eventQueue) Less(i, j int) bool {
	if q[i].t != q[j].t {
		return q[i].t < q[j].t
	}
	return q[i].seq < q[j].seq
}
func (q eventQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *eventQueue) Push(x interface{}) { *q = append(*q, x.(event)) }
func (q *eventQueue) Pop() interface{} {
	old := *q
	n := len(old)
	e := old[n-1]
	*q = old[:n-1]
	return e
}

func (c *Circuit) schedule(e event) {
	e.seq = c.seq
	c.seq++
	heap.Push(&c.queue, e)
}

// commit applies an event and marks the readers of the net dirty if its value
// changed.
func (c *Circuit) commit(e event) {
	if e.net < 0 {
		c.markDirty(e.inst)
		return
	}
	n := c.nets[e.net]
	n.slots[e.slot] = e.v
	v := n.merge()
	if v == n.value {
		return
	}
	n.value = v
	for _, fn := range c.hooks {
		fn(c.now, n.name, v)
	}
	for _, r := range n.readers {
		c.markDirty(r)
	}
}

type pendingSet struct {
	pin   Pin
	v     Value
	delay Time
}

// A Context gives a component access to its inputs, outputs and state during
// a single computation.
//
type Context struct {
	c    *Circuit
	inst *instance
	st   State
	sets []pendingSet
	wake []Time
	err  error
}

// Instance returns the ID of the instance being evaluated.
//
func (ctx *Context) Instance() InstanceID { return ctx.inst.id }

// Now returns the current simulated time.
//
func (ctx *Context) Now() Time { return ctx.c.now }

// Delay returns the propagation delay of the instance.
//
func (ctx *Context) Delay() Time { return ctx.inst.delay }

// State returns the instance's state. It returns nil for combinational parts.
// The state must not be retained after Propagate returns.
//
func (ctx *Context) State() State { return ctx.st }

// Get returns the current value seen by pin p. Unconnected ports read floating.
//
func (ctx *Context) Get(p Pin) Value {
	return ctx.c.get(ctx.inst, p)
}

// Set schedules value v on output pin p after the given delay. Values are
// buffered and only scheduled if the computation succeeds. Setting a value of
// the wrong width or setting a non-output pin fails the computation.
//
func (ctx *Context) Set(p Pin, v Value, delay Time) {
	pt := ctx.inst.spec.Ports[p]
	switch {
	case !pt.Dir.drives():
		ctx.fail(PortError(p, errors.New("set on "+pt.Dir.String()+" port")))
	case v.Width() != pt.Width:
		ctx.fail(PortError(p, errors.Wrapf(ErrWidthMismatch, "%d bits value on %d bits port", v.Width(), pt.Width)))
	default:
		ctx.sets = append(ctx.sets, pendingSet{p, v, delay})
	}
}

// Wake schedules a new evaluation of the instance after the given delay, even
// if none of its inputs change.
//
func (ctx *Context) Wake(after Time) {
	ctx.wake = append(ctx.wake, after)
}

func (ctx *Context) fail(err error) {
	if ctx.err == nil {
		ctx.err = err
	}
}

func (ctx *Context) reset(c *Circuit, inst *instance) {
	ctx.c = c
	ctx.inst = inst
	ctx.st = nil
	ctx.sets = ctx.sets[:0]
	ctx.wake = ctx.wake[:0]
	ctx.err = nil
}

// propagate runs the component with the instance cell locked.
func (c *Circuit) propagate(inst *instance) (err error) {
	ctx := &c.ctx
	ctx.reset(c, inst)
	if inst.cell != nil {
		inst.cell.mu.Lock()
		defer inst.cell.mu.Unlock()
		ctx.st = inst.cell.st
	}
	defer func() {
		if r := recover(); r != nil {
			err = errors.Wrap(errPanic, fmt.Sprint(r))
		}
	}()
	if err = inst.comp.Propagate(ctx); err != nil {
		return err
	}
	return ctx.err
}

// evaluate runs a component and schedules its outputs. On error, it drives
// the offending outputs floating and returns a ComponentError.
func (c *Circuit) evaluate(inst *instance) *ComponentError {
	err := c.propagate(inst)
	ctx := &c.ctx
	if err == nil {
		for _, s := range ctx.sets {
			if pc := inst.pins[s.pin]; pc.slot >= 0 {
				c.schedule(event{t: c.now + s.delay, net: pc.net, slot: pc.slot, v: s.v})
			}
		}
		for _, d := range ctx.wake {
			c.schedule(event{t: c.now + d, net: -1, inst: inst.idx})
		}
		return nil
	}

	ce := &ComponentError{Instance: inst.id, Part: inst.spec.Name, Time: c.now, Err: err}
	pin := Pin(-1)
	var pe *portError
	if errors.As(err, &pe) && int(pe.pin) >= 0 && int(pe.pin) < len(inst.pins) {
		ce.Port = inst.spec.Ports[pe.pin].Name
		if inst.spec.Ports[pe.pin].Dir.drives() {
			pin = pe.pin
		}
	}
	for i, pc := range inst.pins {
		if pc.slot < 0 || (pin >= 0 && Pin(i) != pin) {
			continue
		}
		c.schedule(event{t: c.now, net: pc.net, slot: pc.slot, v: Floating(inst.spec.Ports[i].Width)})
	}
	return ce
}

// next returns the time of the next instant to process.
func (c *Circuit) next() (Time, bool) {
	if len(c.dirty) > 0 || c.inv.len() > 0 {
		return c.now, true
	}
	if len(c.queue) > 0 {
		return c.queue[0].t, true
	}
	return 0, false
}

// Step processes the earliest pending instant: it drains invalidated
// instances, then runs delta rounds (commit all events due at that instant,
// then evaluate every dirty instance in the order it became dirty) until the
// instant settles.
//
// Component faults do not stop the step; they are returned as Faults once the
// instant has settled. Only faults raised by the last evaluation of an instance
// at that instant are reported: a fault caused by an input that settles within
// the same instant (a delta glitch) is dropped. If the instant does not settle within
// Config.MaxIterations rounds, Step returns an *OscillationError, discards all
// pending events and refuses to run until the circuit is Reset or Restored.
//
func (c *Circuit) Step() error {
	if c.failed != nil {
		return c.failed
	}
	for _, i := range c.inv.drain() {
		c.markDirty(i)
	}
	t, ok := c.next()
	if !ok {
		return nil
	}
	c.now = t

	var (
		faults map[int]*ComponentError
		listed map[int]bool
		order  []int
		evals  int
		events int
	)
	for round := 0; ; round++ {
		for len(c.queue) > 0 && c.queue[0].t == t {
			c.commit(heap.Pop(&c.queue).(event))
			events++
		}
		if len(c.dirty) == 0 {
			break
		}
		if round >= c.cfg.MaxIterations {
			return c.oscillate(round)
		}
		dirty := c.dirty
		c.dirty = nil
		for _, i := range dirty {
			c.isDirty[i] = false
		}
		for _, i := range dirty {
			ce := c.evaluate(c.insts[i])
			evals++
			switch {
			case ce != nil:
				if faults == nil {
					faults = make(map[int]*ComponentError)
					listed = make(map[int]bool)
				}
				// order lists each instance once, even if it recovers
				// and fails again within the instant.
				if !listed[i] {
					listed[i] = true
					order = append(order, i)
				}
				faults[i] = ce
			case faults != nil:
				delete(faults, i)
			}
		}
	}
	metrics.EmitEvents(events)
	metrics.EmitEvaluations(evals)
	metrics.EmitStep(uint64(c.now), len(c.queue))

	var fs Faults
	for _, i := range order {
		if ce, ok := faults[i]; ok {
			c.log.WithFields(logrus.Fields{
				"instance": ce.Instance,
				"port":     ce.Port,
				"time":     ce.Time,
			}).WithError(ce.Err).Warn("component fault")
			metrics.EmitFault(ce.Part)
			fs = append(fs, ce)
		}
	}
	return fs.err()
}

func (c *Circuit) oscillate(rounds int) error {
	err := &OscillationError{Time: c.now, Iterations: rounds}
	for _, i := range c.dirty {
		err.Instances = append(err.Instances, c.insts[i].id)
	}
	c.log.WithFields(logrus.Fields{
		"time":      c.now,
		"instances": err.Instances,
	}).Error("oscillation")
	metrics.EmitOscillation()
	c.discard()
	c.failed = err
	return err
}

func (c *Circuit) discard() {
	c.queue = c.queue[:0]
	for _, i := range c.dirty {
		c.isDirty[i] = false
	}
	c.dirty = nil
	metrics.SetQueueDepth(0)
}

// Run steps the circuit until it is idle, the step budget is exhausted
// (ErrBudget), it oscillates or ctx is canceled. A budget <= 0 means
// Config.StepBudget.
//
// Cancellation is checked between steps: the pending queue is then discarded
// (see Abort) while committed values and instance states are kept.
//
// Component faults do not stop the run; they are accumulated and returned as
// Faults if no other error occurs.
//
func (c *Circuit) Run(ctx context.Context, budget int) error {
	return c.run(ctx, budget, func(Time) bool { return true })
}

// RunUntil steps the circuit while the next instant is at or before t, then
// advances the current time to t.
//
func (c *Circuit) RunUntil(ctx context.Context, t Time) error {
	err := c.run(ctx, 0, func(next Time) bool { return next <= t })
	if c.failed == nil && ctx.Err() == nil && c.now < t {
		c.now = t
	}
	return err
}

func (c *Circuit) run(ctx context.Context, budget int, more func(Time) bool) error {
	if budget <= 0 {
		budget = c.cfg.StepBudget
	}
	var faults Faults
	for n := 0; ; n++ {
		if err := ctx.Err(); err != nil {
			c.Abort()
			return errors.Wrap(err, "run canceled")
		}
		t, ok := c.next()
		if !ok || !more(t) {
			return faults.err()
		}
		if n >= budget {
			return errors.Wrapf(ErrBudget, "%d steps at t=%d", budget, c.now)
		}
		if err := c.Step(); err != nil {
			var f Faults
			if !errors.As(err, &f) {
				return err
			}
			faults = append(faults, f...)
		}
	}
}

// Abort discards all pending events and evaluations. Committed net values and
// instance states are kept so that a subsequent run resumes from them.
//
func (c *Circuit) Abort() {
	n := len(c.queue)
	c.discard()
	c.log.WithFields(logrus.Fields{
		"time":      c.now,
		"discarded": n,
	}).Info("run aborted")
}

// Reset reinitializes every state cell in place, sets all nets floating,
// clears the event queue, rewinds the time to 0 and schedules every instance
// for evaluation.
//
func (c *Circuit) Reset() {
	for _, inst := range c.insts {
		if inst.cell != nil {
			inst.cell.Reset()
		}
	}
	for _, n := range c.nets {
		n.value = Floating(n.width)
		for i := range n.slots {
			n.slots[i] = n.value
		}
	}
	c.discard()
	c.inv.drain()
	c.now = 0
	c.seq = 0
	c.failed = nil
	c.markAll()
	c.log.Info("circuit reset")
}
