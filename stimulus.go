// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logicsim

import (
	"github.com/pkg/errors"

	"github.com/db47h/logicsim/internal/metrics"
)

// ApplyStimulus applies an external event (a key press, a pointer event, a
// value to drive...) to the state of an External instance. It is safe to call
// from any goroutine: it only holds the instance's cell lock while the part's
// Stimulus function runs, then queues the instance for evaluation by the
// simulation goroutine at the start of its next Step.
//
// Events the part does not map are not consumed: ApplyStimulus then returns
// false and a nil error, and the state is untouched. Events the part rejects
// as malformed (e.g. ErrWidthMismatch) return false and the part's error.
//
func (c *Circuit) ApplyStimulus(id InstanceID, ev Event) (consumed bool, err error) {
	inst, ok := c.byID[id]
	if !ok {
		metrics.EmitStimulus(metrics.Rejected)
		return false, errors.Wrap(ErrUnknownInstance, string(id))
	}
	if inst.spec.Kind != External {
		metrics.EmitStimulus(metrics.Rejected)
		return false, errors.Wrap(ErrNoStimulus, string(id))
	}
	cell := c.cells.Get(id, inst.spec.NewState)
	cell.Do(func(st State) {
		consumed, err = inst.spec.Stimulus(st, ev)
	})
	if err != nil {
		metrics.EmitStimulus(metrics.Rejected)
		return false, errors.Wrap(err, string(id))
	}
	if !consumed {
		metrics.EmitStimulus(metrics.Ignored)
		return false, nil
	}
	c.inv.push(inst.idx)
	metrics.EmitStimulus(metrics.Consumed)
	return true, nil
}
