// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logicsim

import (
	"strings"

	"github.com/pkg/errors"
)

// Time is a simulated time in arbitrary units.
//
type Time uint64

// An InstanceID identifies a placed part instance in a circuit. Instance IDs of
// parts nested in chips are of the form "chip/part".
//
type InstanceID string

// Kind tags the variant of a part.
//
type Kind uint8

// Part kinds.
//
const (
	// Combinational parts compute their outputs from their inputs only.
	Combinational Kind = iota
	// Clocked parts own a private state cell.
	Clocked
	// External parts own a private state cell that can also be mutated by
	// external stimuli (see Circuit.ApplyStimulus).
	External
)

func (k Kind) String() string {
	switch k {
	case Combinational:
		return "combinational"
	case Clocked:
		return "clocked"
	case External:
		return "external"
	}
	return "unknown"
}

// stateful returns true for kinds owning a state cell.
func (k Kind) stateful() bool { return k == Clocked || k == External }

// A Component is the runtime of a mounted part. Propagate is called by the
// scheduler whenever one of the part's inputs changes (or when the part's
// state has been invalidated by a stimulus). It reads inputs and state through
// c and schedules new output values with c.Set.
//
// A component returning an error aborts its computation: none of the values
// set during that call are committed and the offending outputs are left
// floating.
//
type Component interface {
	Propagate(c *Context) error
}

// ComponentFn adapts a function to the Component interface.
//
type ComponentFn func(c *Context) error

// Propagate calls f(c).
//
func (f ComponentFn) Propagate(c *Context) error { return f(c) }

// A MountFn mounts a part into socket s. MountFn's should query the socket for
// pin handles and return a component closing over them.
//
// For example, a Not gate can be defined like this:
//
//	not := &PartSpec{
//		Name:  "Not",
//		Ports: Ports(In("in"), Out("out")),
//		Delay: 1,
//		Mount: func(s *Socket) Component {
//			in, out := s.Pin("in"), s.Pin("out")
//			return ComponentFn(func(c *Context) error {
//				c.Set(out, c.Get(in).Not(), c.Delay())
//				return nil
//			})
//		}}
//
type MountFn func(s *Socket) Component

// An Event is an external stimulus payload (a key event, a pointer event, a
// value to drive...). Its concrete type is defined by the part receiving it.
//
type Event interface{}

// A StimulusFn applies an external event to a part's state. It is always
// called with the state cell locked and must return quickly. It returns true
// if the event was consumed; unmapped events must return false and a nil
// error, and leave the state untouched. Malformed events, like a value of the
// wrong width, return an error and leave the state untouched.
//
type StimulusFn func(st State, ev Event) (bool, error)

// A PartSpec wraps a part specification (its blueprint).
//
type PartSpec struct {
	// Part name.
	Name string
	// Part kind.
	Kind Kind
	// Port list. Port names must be distinct.
	Ports []Port
	// Default propagation delay for the part's outputs. Components read it
	// with Context.Delay so that it can be overridden per instance.
	Delay Time
	// NewState returns a fresh default state. Required for Clocked and
	// External parts.
	NewState func() State
	// Mount function (see MountFn).
	Mount MountFn
	// Stimulus handler. Required for External parts.
	Stimulus StimulusFn

	chip *chip
}

// Port returns the port with the given name.
//
func (p *PartSpec) Port(name string) (Port, bool) {
	for _, pt := range p.Ports {
		if pt.Name == name {
			return pt, true
		}
	}
	return Port{}, false
}

func (p *PartSpec) check() error {
	if p.Mount == nil && p.chip == nil {
		return errors.New("part " + p.Name + ": nil Mount function")
	}
	if p.Kind.stateful() && p.NewState == nil {
		return errors.New("part " + p.Name + ": " + p.Kind.String() + " part without NewState")
	}
	if p.Kind == External && p.Stimulus == nil {
		return errors.New("part " + p.Name + ": external part without Stimulus handler")
	}
	seen := make(map[string]bool, len(p.Ports))
	for _, pt := range p.Ports {
		if seen[pt.Name] {
			return errors.New("part " + p.Name + ": duplicate port " + pt.Name)
		}
		seen[pt.Name] = true
	}
	return nil
}

// NewPart is a NewPartFn that wraps p with the given connections into a Part.
//
func (p *PartSpec) NewPart(connections string) Part {
	conns, err := ParseConnections(connections)
	if err != nil {
		panic(err)
	}
	return Part{PartSpec: p, Conns: conns, delay: -1}
}

// A NewPartFn is a function that takes a connection configuration and returns a
// new Part. See ParseConnections for the syntax of the connection configuration
// string.
//
type NewPartFn func(c string) Part

// A Part wraps a part specification together with its connections within a host
// circuit or chip.
//
type Part struct {
	*PartSpec
	Conns []Connection

	name  string
	delay int64 // < 0: use PartSpec.Delay
}

// As returns a copy of p with the given instance name. Unnamed parts get an
// automatic name when mounted.
//
func (p Part) As(name string) Part {
	p.name = name
	return p
}

// WithDelay returns a copy of p whose propagation delay is d.
//
func (p Part) WithDelay(d Time) Part {
	p.delay = int64(d)
	return p
}

// InstanceName returns the name set with As.
//
func (p Part) InstanceName() string { return p.name }

func (p Part) effectiveDelay() Time {
	if p.delay < 0 {
		return p.PartSpec.Delay
	}
	return Time(p.delay)
}

func (p Part) String() string {
	var b strings.Builder
	if p.name != "" {
		b.WriteString(p.name)
		b.WriteByte(':')
	}
	b.WriteString(p.Name)
	b.WriteByte('(')
	b.WriteString(connString(p.Conns))
	b.WriteByte(')')
	return b.String()
}

// Parts is a convenience wrapper for []Part.
//
type Parts []Part
