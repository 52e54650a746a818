// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logicsim

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Errors returned by the value model, components and the scheduler.
//
var (
	ErrWidthMismatch   = errors.New("width mismatch between connected ports")
	ErrIndeterminate   = errors.New("indeterminate value used as an address or selector")
	ErrAddressRange    = errors.New("address out of range")
	ErrOscillation     = errors.New("oscillation apparent")
	ErrBudget          = errors.New("step budget exhausted")
	ErrUnknownInstance = errors.New("unknown instance")
	ErrNoStimulus      = errors.New("instance does not accept external stimulus")
	ErrStateType       = errors.New("unexpected state type")
	ErrNoState         = errors.New("instance has no state")
	errPanic           = errors.New("component panic")
)

// A ComponentError is an error raised by a single component computation. It is
// always attributable to an instance and, when known, to one of its ports.
//
type ComponentError struct {
	Instance InstanceID
	Part     string
	Port     string
	Time     Time
	Err      error
}

func (e *ComponentError) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Instance))
	if e.Port != "" {
		b.WriteByte('.')
		b.WriteString(e.Port)
	}
	if e.Part != "" {
		b.WriteString(" (")
		b.WriteString(e.Part)
		b.WriteByte(')')
	}
	b.WriteString(" at t=")
	b.WriteString(strconv.FormatUint(uint64(e.Time), 10))
	b.WriteString(": ")
	b.WriteString(e.Err.Error())
	return b.String()
}

// Unwrap returns the underlying error.
//
func (e *ComponentError) Unwrap() error { return e.Err }

// Cause returns the underlying error (github.com/pkg/errors compatibility).
//
func (e *ComponentError) Cause() error { return e.Err }

// portError is an error attributed to a port by a component. The scheduler
// fills in the remaining fields when it turns it into a ComponentError.
type portError struct {
	pin Pin
	err error
}

func (e *portError) Error() string { return e.err.Error() }
func (e *portError) Unwrap() error { return e.err }

// PortError attributes err to the given pin. Components should use it when
// returning errors caused by a specific port so that diagnostics (and the
// fault isolation policy) can target that port.
//
func PortError(p Pin, err error) error {
	if err == nil {
		return nil
	}
	return &portError{pin: p, err: err}
}

// Faults is the list of component errors raised during a simulation step.
// Faults are not fatal: the step completed and the faulty outputs were left
// floating.
//
type Faults []*ComponentError

func (f Faults) Error() string {
	switch len(f) {
	case 0:
		return "no faults"
	case 1:
		return f[0].Error()
	}
	var b strings.Builder
	b.WriteString(strconv.Itoa(len(f)))
	b.WriteString(" component faults: ")
	for i, e := range f {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(e.Error())
	}
	return b.String()
}

func (f Faults) err() error {
	if len(f) == 0 {
		return nil
	}
	return f
}

// An OscillationError reports a zero-delay feedback loop that did not settle
// within the configured iteration bound.
//
type OscillationError struct {
	Time       Time
	Iterations int
	Instances  []InstanceID // instances still active when the bound was hit
}

func (e *OscillationError) Error() string {
	var b strings.Builder
	b.WriteString(ErrOscillation.Error())
	b.WriteString(" at t=")
	b.WriteString(strconv.FormatUint(uint64(e.Time), 10))
	b.WriteString(" after ")
	b.WriteString(strconv.Itoa(e.Iterations))
	b.WriteString(" iterations")
	if len(e.Instances) > 0 {
		b.WriteString(" (")
		for i, id := range e.Instances {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(string(id))
		}
		b.WriteByte(')')
	}
	return b.String()
}

// Is makes errors.Is(err, ErrOscillation) work.
//
func (e *OscillationError) Is(target error) bool { return target == ErrOscillation }

// IsFault returns true if err is or wraps a component error.
//
func IsFault(err error) bool {
	var f Faults
	if errors.As(err, &f) {
		return true
	}
	var ce *ComponentError
	return errors.As(err, &ce)
}
