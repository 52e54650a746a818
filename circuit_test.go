// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logicsim_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	ls "github.com/db47h/logicsim"
	hl "github.com/db47h/logicsim/hwlib"
)

func newCircuit(t *testing.T, parts ls.Parts, opts ...ls.Option) *ls.Circuit {
	t.Helper()
	c, err := ls.NewCircuit(parts, opts...)
	require.NoError(t, err)
	require.NoError(t, c.Run(context.Background(), 0))
	return c
}

func drive(t *testing.T, c *ls.Circuit, id ls.InstanceID, ev ls.Event) {
	t.Helper()
	ok, err := c.ApplyStimulus(id, ev)
	require.NoError(t, err)
	require.True(t, ok)
}

func netValue(t *testing.T, c *ls.Circuit, net string) ls.Value {
	t.Helper()
	v, ok := c.Value(net)
	require.True(t, ok, net)
	return v
}

func TestEmptyCircuit(t *testing.T) {
	_, err := ls.NewCircuit(nil)
	require.Error(t, err)
}

func TestInitialEvaluation(t *testing.T) {
	c, err := ls.NewCircuit(ls.Parts{ls.Constant(ls.Known(4, 5))("out=x")})
	require.NoError(t, err)
	require.False(t, c.Idle())
	require.True(t, netValue(t, c, "x").Floating())
	require.NoError(t, c.Step())
	require.Equal(t, ls.Known(4, 5), netValue(t, c, "x"))
	require.Equal(t, ls.Time(0), c.Now())
	require.True(t, c.Idle())
}

func TestMultipleDrivers(t *testing.T) {
	c := newCircuit(t, ls.Parts{
		hl.Pin(8)("out=bus").As("a"),
		hl.Pin(8)("out=bus").As("b"),
	})
	drive(t, c, "a", uint64(0x0f))
	drive(t, c, "b", uint64(0x0f))
	require.NoError(t, c.Run(context.Background(), 0))
	require.Equal(t, ls.Known(8, 0x0f), netValue(t, c, "bus"))

	drive(t, c, "b", uint64(0x3c))
	require.NoError(t, c.Run(context.Background(), 0))
	require.Equal(t, "00xx11xx", netValue(t, c, "bus").String())

	drive(t, c, "b", ls.Floating(8))
	require.NoError(t, c.Run(context.Background(), 0))
	require.Equal(t, ls.Known(8, 0x0f), netValue(t, c, "bus"))
}

func TestSameTimeFIFO(t *testing.T) {
	c := newCircuit(t, ls.Parts{
		hl.Pin(1)("out=a").As("a"),
		hl.Pin(1)("out=b").As("b"),
		hl.Pin(1)("out=c").As("c"),
	})
	var order []string
	c.OnCommit(func(_ ls.Time, net string, _ ls.Value) { order = append(order, net) })
	for _, id := range []ls.InstanceID{"c", "a", "b"} {
		drive(t, c, id, ls.True)
	}
	require.NoError(t, c.Run(context.Background(), 0))
	require.Equal(t, []string{"c", "a", "b"}, order)
}

func oscillator(t *testing.T) *ls.Circuit {
	return newCircuit(t, ls.Parts{
		hl.Pin(1)("out=en").As("en"),
		ls.Nand("a=x, b=en, out=x").WithDelay(0).As("loop"),
	}, ls.WithConfig(ls.Config{MaxIterations: 50}))
}

func TestOscillation(t *testing.T) {
	c := oscillator(t)
	require.Equal(t, ls.True, netValue(t, c, "x"))
	drive(t, c, "en", ls.True)

	err := c.Run(context.Background(), 0)
	require.ErrorIs(t, err, ls.ErrOscillation)
	var oe *ls.OscillationError
	require.ErrorAs(t, err, &oe)
	require.Equal(t, 50, oe.Iterations)
	require.Contains(t, oe.Instances, ls.InstanceID("loop"))
	require.Equal(t, 0, c.Pending())

	// terminal until reset
	require.ErrorIs(t, c.Step(), ls.ErrOscillation)
	c.Reset()
	require.NoError(t, c.Run(context.Background(), 0))
	require.Equal(t, ls.True, netValue(t, c, "x"))
}

func TestOscillationWithDelay(t *testing.T) {
	// a loop with a strictly positive delay is an oscillator, not an error
	c := newCircuit(t, ls.Parts{
		hl.Pin(1)("out=en").As("en"),
		ls.Nand("a=x, b=en, out=x").As("loop"),
	})
	drive(t, c, "en", ls.True)
	require.NoError(t, c.RunUntil(context.Background(), 100))
	require.False(t, c.Idle())
}

var badWidth = &ls.PartSpec{
	Name:  "BAD",
	Ports: ls.Ports(ls.In("in"), ls.Out("out[2], ok")),
	Delay: 1,
	Mount: func(s *ls.Socket) ls.Component {
		in, out, ok := s.Pin("in"), s.Pin("out"), s.Pin("ok")
		return ls.ComponentFn(func(c *ls.Context) error {
			c.Set(ok, ls.True, c.Delay())
			if c.Get(in).Equal(ls.True) {
				c.Set(out, ls.Known(3, 1), c.Delay())
			} else {
				c.Set(out, ls.Known(2, 1), c.Delay())
			}
			return nil
		})
	}}

var panicky = &ls.PartSpec{
	Name:  "PANIC",
	Ports: ls.Ports(ls.In("in"), ls.Out("out")),
	Mount: func(s *ls.Socket) ls.Component {
		in, out := s.Pin("in"), s.Pin("out")
		return ls.ComponentFn(func(c *ls.Context) error {
			if c.Get(in).Equal(ls.True) {
				panic("boom")
			}
			c.Set(out, ls.False, 0)
			return nil
		})
	}}

func TestFaultIsolation(t *testing.T) {
	c := newCircuit(t, ls.Parts{
		hl.Pin(1)("out=in").As("in"),
		badWidth.NewPart("in=in, out=out, ok=ok").As("bad"),
		panicky.NewPart("in=in, out=pout").As("panic"),
		hl.Not("in=in, out=nin"),
	})
	require.Equal(t, ls.Known(2, 1), netValue(t, c, "out"))
	require.Equal(t, ls.True, netValue(t, c, "ok"))

	drive(t, c, "in", ls.True)
	err := c.Run(context.Background(), 0)
	require.True(t, ls.IsFault(err))
	var faults ls.Faults
	require.ErrorAs(t, err, &faults)
	require.Len(t, faults, 2)

	require.Equal(t, ls.InstanceID("bad"), faults[0].Instance)
	require.Equal(t, "out", faults[0].Port)
	require.ErrorIs(t, faults[0], ls.ErrWidthMismatch)
	require.Equal(t, ls.InstanceID("panic"), faults[1].Instance)
	require.Contains(t, faults[1].Error(), "boom")

	// offending output floating, the others untouched or floating
	require.True(t, netValue(t, c, "out").Floating())
	require.Equal(t, ls.True, netValue(t, c, "ok"))
	require.True(t, netValue(t, c, "pout").Floating())
	// the rest of the circuit keeps running
	require.Equal(t, ls.False, netValue(t, c, "nin"))

	drive(t, c, "in", ls.False)
	require.NoError(t, c.Run(context.Background(), 0))
	require.Equal(t, ls.Known(2, 1), netValue(t, c, "out"))
	require.Equal(t, ls.False, netValue(t, c, "pout"))
}

var errFlaky = errors.New("flaky")

// flaky returns a part that fails whenever fail(x, n1, n2) is true.
func flaky(fail func(x, n1, n2 ls.Value) bool) *ls.PartSpec {
	return &ls.PartSpec{
		Name:  "FLAKY",
		Ports: ls.In("x, n1, n2"),
		Mount: func(s *ls.Socket) ls.Component {
			x, n1, n2 := s.Pin("x"), s.Pin("n1"), s.Pin("n2")
			return ls.ComponentFn(func(c *ls.Context) error {
				if fail(c.Get(x), c.Get(n1), c.Get(n2)) {
					return errFlaky
				}
				return nil
			})
		}}
}

// glitchCircuit feeds x, not(x) and not(not(x)) to a flaky part. After x
// rises, n1 falls one delta round later and n2 rises one round after that.
func glitchCircuit(t *testing.T, fail func(x, n1, n2 ls.Value) bool) *ls.Circuit {
	t.Helper()
	c := newCircuit(t, ls.Parts{
		hl.Pin(1)("out=x").As("x"),
		hl.Not("in=x, out=n1").WithDelay(0).As("n1"),
		hl.Not("in=n1, out=n2").WithDelay(0).As("n2"),
		flaky(fail).NewPart("x=x, n1=n1, n2=n2").As("f"),
	})
	drive(t, c, "x", ls.True)
	return c
}

func TestFaultGlitch(t *testing.T) {
	// fails only while x and n1 are both high: cleared within the instant
	c := glitchCircuit(t, func(x, n1, _ ls.Value) bool {
		return x.Equal(n1)
	})
	require.NoError(t, c.Step())
	require.Equal(t, ls.True, netValue(t, c, "n2"))
	require.True(t, c.Idle())
}

func TestFaultReportedOnce(t *testing.T) {
	// fails, recovers, then fails again when n2 settles
	c := glitchCircuit(t, func(x, n1, n2 ls.Value) bool {
		return x.Equal(n1) || n1.Equal(ls.False) && n2.Equal(ls.True)
	})
	err := c.Step()
	var faults ls.Faults
	require.ErrorAs(t, err, &faults)
	require.Len(t, faults, 1)
	require.Equal(t, ls.InstanceID("f"), faults[0].Instance)
	require.Equal(t, "FLAKY", faults[0].Part)
	require.Empty(t, faults[0].Port)
	require.ErrorIs(t, faults[0], errFlaky)
}

func TestRunBudget(t *testing.T) {
	c, err := ls.NewCircuit(ls.Parts{hl.Clock(1)("out=clk")})
	require.NoError(t, err)
	err = c.Run(context.Background(), 10)
	require.ErrorIs(t, err, ls.ErrBudget)
	require.Equal(t, ls.Time(9), c.Now())
}

func TestRunCanceled(t *testing.T) {
	c, err := ls.NewCircuit(ls.Parts{
		hl.Clock(2)("out=clk"),
		hl.Pin(1)("out=en").As("en"),
		hl.And("a=clk, b=en, out=out"),
	})
	require.NoError(t, err)
	require.NoError(t, c.RunUntil(context.Background(), 3))
	require.Equal(t, ls.True, netValue(t, c, "clk"))
	require.False(t, c.Idle())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = c.Run(ctx, 0)
	require.True(t, errors.Is(err, context.Canceled))
	// pending events discarded, committed values kept
	require.Equal(t, 0, c.Pending())
	require.True(t, c.Idle())
	require.Equal(t, ls.Time(3), c.Now())
	require.Equal(t, ls.True, netValue(t, c, "clk"))

	// resumable
	drive(t, c, "en", ls.True)
	require.NoError(t, c.Run(context.Background(), 0))
	require.Equal(t, ls.True, netValue(t, c, "out"))
}

func TestReset(t *testing.T) {
	c := newCircuit(t, ls.Parts{
		hl.Pin(4)("out=d").As("d"),
		hl.Pin(1)("out=clk").As("clk"),
		hl.Register(4)("in=d, clk=clk, out=q").As("reg"),
	})
	drive(t, c, "d", uint64(9))
	drive(t, c, "clk", ls.True)
	require.NoError(t, c.Run(context.Background(), 0))
	require.Equal(t, ls.Known(4, 9), netValue(t, c, "q"))
	cell, err := c.Cell("reg")
	require.NoError(t, err)

	c.Reset()
	require.Equal(t, ls.Time(0), c.Now())
	require.True(t, netValue(t, c, "q").Floating())
	require.NoError(t, c.Run(context.Background(), 0))
	require.Equal(t, ls.Known(4, 0), netValue(t, c, "q"))
	require.Equal(t, ls.Known(1, 0), netValue(t, c, "clk"))
	cell2, err := c.Cell("reg")
	require.NoError(t, err)
	require.Same(t, cell, cell2)
}

func TestSharedCells(t *testing.T) {
	cs := ls.NewCells()
	c := newCircuit(t, ls.Parts{hl.Keyboard(8)("data=data").As("kbd")}, ls.WithCells(cs))
	drive(t, c, "kbd", hl.KeyEvent{Action: hl.KeyTyped, Char: 'x'})
	cell, ok := cs.Lookup("kbd")
	require.True(t, ok)
	require.Equal(t, uint16('x'), cell.Snapshot().(*hl.KeyboardState).Buf[0])
}

func TestCellsCreatedAtBuild(t *testing.T) {
	cs := ls.NewCells()
	_, err := ls.NewCircuit(ls.Parts{
		hl.Keyboard(8)("data=data").As("kbd"),
		hl.Not("in=y, out=x").As("not"),
	}, ls.WithCells(cs))
	require.NoError(t, err)
	require.Equal(t, []ls.InstanceID{"kbd"}, cs.IDs())

	// an existing cell is reused, not replaced
	cell, _ := cs.Lookup("kbd")
	_, err = ls.NewCircuit(ls.Parts{hl.Keyboard(8)("data=data").As("kbd")}, ls.WithCells(cs))
	require.NoError(t, err)
	again, _ := cs.Lookup("kbd")
	require.Same(t, cell, again)
}

func TestObservation(t *testing.T) {
	c := newCircuit(t, ls.Parts{
		hl.Pin(1)("out=a").As("a"),
		hl.Not("in=a, out=b").As("not"),
	}, ls.WithConfig(ls.Config{StepBudget: 7}))
	require.Equal(t, []string{"a", "b"}, c.Nets())
	require.Equal(t, []ls.InstanceID{"a", "not"}, c.Instances())
	require.Equal(t, 7, c.Config().StepBudget)
	require.Equal(t, ls.DefaultMaxIterations, c.Config().MaxIterations)
	spec, ok := c.PartOf("not")
	require.True(t, ok)
	require.Equal(t, "NOT", spec.Name)
	_, ok = c.Value("nope")
	require.False(t, ok)
	_, err := c.Snapshot("not")
	require.ErrorIs(t, err, ls.ErrNoState)
	_, err = c.Snapshot("nope")
	require.ErrorIs(t, err, ls.ErrUnknownInstance)
}
