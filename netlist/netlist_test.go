// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package netlist_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	ls "github.com/db47h/logicsim"
	hl "github.com/db47h/logicsim/hwlib"
	"github.com/db47h/logicsim/netlist"
)

const fullAdder = `
config:
  maxIterations: 7
chips:
  - name: HALFADD
    inputs: a, b
    outputs: s, c
    parts:
      - {kind: xor, connect: "a=a, b=b, out=s"}
      - {kind: and, connect: "a=a, b=b, out=c"}
  - name: FULLADD
    inputs: a, b, cin
    outputs: s, cout
    parts:
      - {kind: HALFADD, connect: "a=a, b=b, s=s1, c=c1"}
      - {kind: HALFADD, connect: "a=s1, b=cin, s=s, c=c2"}
      - {kind: or, connect: "a=c1, b=c2, out=cout"}
parts:
  - {kind: pin, name: a, connect: "out=a"}
  - {kind: pin, name: b, connect: "out=b"}
  - {kind: pin, name: c, connect: "out=c"}
  - {kind: FULLADD, name: fa, connect: "a=a, b=b, cin=c, s=sum, cout=carry"}
  - {kind: const, connect: "out=k", params: {value: "1010"}}
  - {kind: not, connect: "in=k, out=nk", params: {bits: 4, delay: 0}}
stimuli:
  - {at: 15, instance: c, pointer: down}
  - {at: 5, instance: a, value: "1"}
  - {at: 10, instance: b, uint: 1}
until: 30
`

func load(t *testing.T, src string) *netlist.Netlist {
	t.Helper()
	n, err := netlist.Load(strings.NewReader(src))
	require.NoError(t, err)
	return n
}

func value(t *testing.T, c *ls.Circuit, net string) ls.Value {
	t.Helper()
	v, ok := c.Value(net)
	require.True(t, ok, net)
	return v
}

func TestFullAdder(t *testing.T) {
	n := load(t, fullAdder)
	require.Equal(t, 7, n.Config.MaxIterations)
	require.Equal(t, ls.Time(30), n.Until)

	c, err := n.Build()
	require.NoError(t, err)
	require.Equal(t, 7, c.Config().MaxIterations)
	require.Contains(t, c.Instances(), ls.InstanceID("fa/HALFADD#0/XOR#0"))

	script, err := n.Script()
	require.NoError(t, err)
	require.Equal(t, []ls.Time{5, 10, 15}, []ls.Time{script[0].At, script[1].At, script[2].At})

	var sums []ls.Time
	c.OnCommit(func(t ls.Time, net string, v ls.Value) {
		if net == "sum" {
			sums = append(sums, t)
		}
	})
	require.NoError(t, netlist.Play(context.Background(), c, script, n.Until))
	require.Equal(t, ls.Time(30), c.Now())
	require.Equal(t, ls.True, value(t, c, "sum"))
	require.Equal(t, ls.True, value(t, c, "carry"))
	require.Equal(t, ls.Known(4, 0xa), value(t, c, "k"))
	require.Equal(t, ls.Known(4, 0x5), value(t, c, "nk"))
	require.NotEmpty(t, sums)
}

func TestBuildOptions(t *testing.T) {
	c, err := load(t, fullAdder).Build(ls.WithConfig(ls.Config{MaxIterations: 9}))
	require.NoError(t, err)
	require.Equal(t, 9, c.Config().MaxIterations)
}

func TestKeyboardScript(t *testing.T) {
	n := load(t, `
parts:
  - {kind: keyboard, name: kbd, connect: "data=d", params: {capacity: 4}}
  - {kind: ram, connect: "addr=d, dout=q", params: {addrBits: 8, bits: 8}}
  - {kind: clock, connect: "out=clk", params: {halfPeriod: 2}}
  - {kind: register, connect: "in=q, clk=clk, out=r", params: {bits: 8}}
stimuli:
  - {at: 3, instance: kbd, type: "hi"}
  - {at: 4, instance: kbd, press: "a"}
`)
	c, err := n.Build()
	require.NoError(t, err)
	script, err := n.Script()
	require.NoError(t, err)
	require.Len(t, script, 3)
	require.NoError(t, netlist.Play(context.Background(), c, script, 10))

	st, err := c.Snapshot("kbd")
	require.NoError(t, err)
	mk, ok := hl.MakeCode("a")
	require.True(t, ok)
	want := []uint16{'h', 'i'}
	for _, b := range mk {
		want = append(want, uint16(b))
	}
	if diff := cmp.Diff(want, st.(*hl.KeyboardState).Buf[:len(want)]); diff != "" {
		t.Fatal(diff)
	}
}

func TestLoadFile(t *testing.T) {
	name := filepath.Join(t.TempDir(), "fa.yaml")
	require.NoError(t, os.WriteFile(name, []byte(fullAdder), 0o644))
	n, err := netlist.LoadFile(name)
	require.NoError(t, err)
	require.Len(t, n.Parts, 6)

	_, err = netlist.LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestErrors(t *testing.T) {
	td := []struct {
		name string
		src  string
	}{
		{"unknown kind", `parts: [{kind: flux, connect: "out=x"}]`},
		{"bad connections", `parts: [{kind: not, connect: "in"}]`},
		{"bad port", `parts: [{kind: not, connect: "foo=x"}]`},
		{"clock period", `parts: [{kind: clock, connect: "out=x"}]`},
		{"wide", `parts: [{kind: and, connect: "out=x", params: {bits: 65}}]`},
		{"ram", `parts: [{kind: ram, connect: "dout=x"}]`},
		{"const", `parts: [{kind: const, connect: "out=x", params: {value: "12"}}]`},
		{"chip name", `{chips: [{name: and, inputs: a, outputs: b, parts: [{kind: not, connect: "in=a, out=b"}]}], parts: [{kind: and, connect: ""}]}`},
		{"chip ports", `{chips: [{name: X, inputs: "a[", outputs: b, parts: [{kind: not, connect: "in=a, out=b"}]}], parts: [{kind: X, connect: ""}]}`},
		{"chip part", `{chips: [{name: X, inputs: a, outputs: b, parts: [{kind: Y, connect: "in=a, out=b"}]}], parts: [{kind: X, connect: ""}]}`},
	}
	for _, d := range td {
		t.Run(d.name, func(t *testing.T) {
			_, err := load(t, d.src).Build()
			require.Error(t, err)
		})
	}

	_, err := netlist.Load(strings.NewReader("parts: [}"))
	require.Error(t, err)
}

func TestScriptErrors(t *testing.T) {
	td := []struct {
		name string
		src  string
	}{
		{"no event", `stimuli: [{at: 1, instance: a}]`},
		{"two events", `stimuli: [{at: 1, instance: a, value: "1", uint: 1}]`},
		{"bad value", `stimuli: [{at: 1, instance: a, value: "2"}]`},
		{"pointer", `stimuli: [{at: 1, instance: a, pointer: sideways}]`},
		{"no instance", `stimuli: [{at: 1, value: "1"}]`},
	}
	for _, d := range td {
		t.Run(d.name, func(t *testing.T) {
			_, err := load(t, d.src).Script()
			require.Error(t, err)
		})
	}
}

func TestPlayNotConsumed(t *testing.T) {
	n := load(t, `
parts: [{kind: pin, name: a, connect: "out=a"}]
stimuli: [{at: 1, instance: a, press: "a"}]
`)
	c, err := n.Build()
	require.NoError(t, err)
	script, err := n.Script()
	require.NoError(t, err)
	require.Error(t, netlist.Play(context.Background(), c, script, 2))
}
