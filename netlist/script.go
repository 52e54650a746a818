// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package netlist

import (
	"context"
	"sort"

	"github.com/pkg/errors"

	ls "github.com/db47h/logicsim"
	hl "github.com/db47h/logicsim/hwlib"
)

// A StimulusDef describes an external event in a netlist script. Exactly one
// of Value, Uint, Pointer, Press, Release and Type must be set. Type expands
// to one typed key event per character.
//
type StimulusDef struct {
	At       ls.Time `json:"at"`
	Instance string  `json:"instance"`

	Value   string  `json:"value,omitempty"`
	Uint    *uint64 `json:"uint,omitempty"`
	Pointer string  `json:"pointer,omitempty"` // "down" or "up"
	Press   string  `json:"press,omitempty"`
	Release string  `json:"release,omitempty"`
	Type    string  `json:"type,omitempty"`
}

// A Stimulus is an external event applied to an instance at a given time.
//
type Stimulus struct {
	At       ls.Time
	Instance ls.InstanceID
	Event    ls.Event
}

func (d *StimulusDef) events() ([]ls.Event, error) {
	var (
		evs []ls.Event
		n   int
	)
	if d.Value != "" {
		v, err := ls.Parse(d.Value)
		if err != nil {
			return nil, err
		}
		evs = append(evs, v)
		n++
	}
	if d.Uint != nil {
		evs = append(evs, *d.Uint)
		n++
	}
	if d.Pointer != "" {
		switch d.Pointer {
		case "down":
			evs = append(evs, hl.PointerEvent{Down: true})
		case "up":
			evs = append(evs, hl.PointerEvent{})
		default:
			return nil, errors.Errorf("invalid pointer event %q", d.Pointer)
		}
		n++
	}
	if d.Press != "" {
		evs = append(evs, hl.KeyEvent{Action: hl.KeyPress, Key: d.Press})
		n++
	}
	if d.Release != "" {
		evs = append(evs, hl.KeyEvent{Action: hl.KeyRelease, Key: d.Release})
		n++
	}
	if d.Type != "" {
		for _, r := range d.Type {
			evs = append(evs, hl.KeyEvent{Action: hl.KeyTyped, Char: r})
		}
		n++
	}
	if n != 1 {
		return nil, errors.Errorf("%d events defined, expected exactly one", n)
	}
	return evs, nil
}

// Script returns the netlist stimuli sorted by time. Stimuli at the same time
// keep their netlist order.
//
func (n *Netlist) Script() ([]Stimulus, error) {
	var s []Stimulus
	for i := range n.Stimuli {
		d := &n.Stimuli[i]
		if d.Instance == "" {
			return nil, errors.Errorf("stimulus %d: missing instance", i)
		}
		evs, err := d.events()
		if err != nil {
			return nil, errors.Wrapf(err, "stimulus %d", i)
		}
		for _, ev := range evs {
			s = append(s, Stimulus{d.At, ls.InstanceID(d.Instance), ev})
		}
	}
	sort.SliceStable(s, func(i, j int) bool { return s[i].At < s[j].At })
	return s, nil
}

// Play runs c, applying each stimulus when the simulated time reaches its At
// field, then runs c up to time until. Stimuli must be sorted by time.
// Component faults do not stop the script. Stimuli that the target instance
// does not consume are reported as errors.
//
func Play(ctx context.Context, c *ls.Circuit, script []Stimulus, until ls.Time) error {
	for _, s := range script {
		if err := c.RunUntil(ctx, s.At); err != nil && !ls.IsFault(err) {
			return err
		}
		ok, err := c.ApplyStimulus(s.Instance, s.Event)
		if err != nil {
			return err
		}
		if !ok {
			return errors.Errorf("%s: event %v not consumed at t=%d", s.Instance, s.Event, s.At)
		}
	}
	if err := c.RunUntil(ctx, until); err != nil && !ls.IsFault(err) {
		return err
	}
	return nil
}
