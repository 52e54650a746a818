// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logicsim_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	ls "github.com/db47h/logicsim"
	hl "github.com/db47h/logicsim/hwlib"
)

func registerCircuit(t *testing.T) *ls.Circuit {
	return newCircuit(t, ls.Parts{
		hl.Pin(8)("out=d").As("d"),
		hl.Pin(1)("out=clk").As("clk"),
		hl.Register(8)("in=d, clk=clk, out=q").As("reg"),
		hl.Keyboard(4)("rclk=clk, adr=false, data=kbd").As("kbd"),
	})
}

func latch(t *testing.T, c *ls.Circuit, v uint64) {
	t.Helper()
	drive(t, c, "d", v)
	drive(t, c, "clk", ls.False)
	require.NoError(t, c.Run(context.Background(), 0))
	drive(t, c, "clk", ls.True)
	require.NoError(t, c.Run(context.Background(), 0))
	require.Equal(t, ls.Known(8, v), netValue(t, c, "q"))
}

func typeKey(t *testing.T, c *ls.Circuit, r rune) {
	t.Helper()
	drive(t, c, "kbd", hl.KeyEvent{Action: hl.KeyTyped, Char: r})
	require.NoError(t, c.Run(context.Background(), 0))
}

func TestCheckpointRestore(t *testing.T) {
	c := registerCircuit(t)
	latch(t, c, 0x42)
	typeKey(t, c, 'a')
	cp := c.Checkpoint()
	require.Equal(t, c.Now(), cp.Time())

	latch(t, c, 0x43)
	typeKey(t, c, 'b')

	for i := 0; i < 2; i++ {
		require.NoError(t, c.Restore(cp))
		require.Equal(t, cp.Time(), c.Now())
		require.Equal(t, ls.Known(8, 0x42), netValue(t, c, "q"))
		require.Equal(t, ls.Known(8, 0x42), netValue(t, c, "d"))
		st, err := c.Snapshot("reg")
		require.NoError(t, err)
		require.Equal(t, ls.Known(8, 0x42), st.(*hl.RegisterState).Q)
		st, err = c.Snapshot("kbd")
		require.NoError(t, err)
		require.Equal(t, []uint16{'a', 0, 0, 0}, st.(*hl.KeyboardState).Buf)
		require.Equal(t, 1, st.(*hl.KeyboardState).Index)

		// diverge again; the checkpoint is not affected
		latch(t, c, 0x44)
		typeKey(t, c, 'c')
	}
}

func TestCheckpointPending(t *testing.T) {
	c, err := ls.NewCircuit(ls.Parts{hl.Clock(2)("out=clk")})
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, c.RunUntil(ctx, 3))
	cp := c.Checkpoint()
	require.NoError(t, c.RunUntil(ctx, 9))
	require.Equal(t, ls.False, netValue(t, c, "clk"))

	require.NoError(t, c.Restore(cp))
	require.Equal(t, ls.Time(3), c.Now())
	require.Equal(t, ls.True, netValue(t, c, "clk"))
	require.Equal(t, 1, c.Pending())
	require.NoError(t, c.RunUntil(ctx, 4))
	require.Equal(t, ls.False, netValue(t, c, "clk"))
}

func TestRestoreForeign(t *testing.T) {
	c := registerCircuit(t)
	other := newCircuit(t, ls.Parts{hl.Pin(1)("out=x").As("x")})
	require.Error(t, c.Restore(other.Checkpoint()))
}

func TestRestoreClearsOscillation(t *testing.T) {
	c := oscillator(t)
	cp := c.Checkpoint()
	drive(t, c, "en", ls.True)
	require.ErrorIs(t, c.Run(context.Background(), 0), ls.ErrOscillation)
	require.NoError(t, c.Restore(cp))
	require.NoError(t, c.Run(context.Background(), 0))
	require.Equal(t, ls.True, netValue(t, c, "x"))
}

func TestExportImport(t *testing.T) {
	c := registerCircuit(t)
	latch(t, c, 0x17)
	typeKey(t, c, 'z')
	s, err := c.Export()
	require.NoError(t, err)
	require.Len(t, s.Instances, 4)
	require.Equal(t, "00010111", s.Nets["q"])

	b, err := json.Marshal(s)
	require.NoError(t, err)
	var s2 ls.Snapshot
	require.NoError(t, json.Unmarshal(b, &s2))

	c2 := registerCircuit(t)
	require.NoError(t, c2.Import(&s2))
	require.Equal(t, c.Now(), c2.Now())
	for _, id := range c.Instances() {
		st1, err := c.Snapshot(id)
		require.NoError(t, err)
		st2, err := c2.Snapshot(id)
		require.NoError(t, err)
		require.Equal(t, st1, st2, string(id))
	}
	require.NoError(t, c2.Run(context.Background(), 0))
	for _, n := range c.Nets() {
		require.Equal(t, netValue(t, c, n), netValue(t, c2, n), n)
	}

	// both copies evolve the same way
	latch(t, c, 0x18)
	latch(t, c2, 0x18)
	require.Equal(t, c.Now(), c2.Now())
}

func TestImportErrors(t *testing.T) {
	c := registerCircuit(t)
	s, err := c.Export()
	require.NoError(t, err)

	bad := *s
	bad.Instances = map[ls.InstanceID][]byte{"nope": nil}
	require.ErrorIs(t, c.Import(&bad), ls.ErrUnknownInstance)

	bad.Instances = map[ls.InstanceID][]byte{"reg": append([]byte{99}, s.Instances["reg"][1:]...)}
	require.ErrorIs(t, c.Import(&bad), hl.ErrBlobVersion)

	bad.Instances = s.Instances
	bad.Nets = map[string]string{"q": "1"}
	require.ErrorIs(t, c.Import(&bad), ls.ErrWidthMismatch)

	// failed imports leave the circuit untouched
	require.Equal(t, s.Time, c.Now())
}
