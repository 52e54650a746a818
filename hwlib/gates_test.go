// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	ls "github.com/db47h/logicsim"
	hl "github.com/db47h/logicsim/hwlib"
)

func TestGates(t *testing.T) {
	td := []struct {
		name   string
		gate   ls.NewPartFn
		result []uint64 // a=0 && b=0, a=0 && b=1, a=1 && b=0, a=1 && b=1
	}{
		{"AND", hl.And, []uint64{0, 0, 0, 1}},
		{"NAND", hl.Nand, []uint64{1, 1, 1, 0}},
		{"OR", hl.Or, []uint64{0, 1, 1, 1}},
		{"NOR", hl.Nor, []uint64{1, 0, 0, 0}},
		{"XOR", hl.Xor, []uint64{0, 1, 1, 0}},
		{"XNOR", hl.Xnor, []uint64{1, 0, 0, 1}},
	}
	for _, d := range td {
		t.Run(d.name, func(t *testing.T) {
			c := newCircuit(t,
				hl.Pin(1)("out=a").As("pa"),
				hl.Pin(1)("out=b").As("pb"),
				d.gate("a=a, b=b, out=out"),
			)
			for i, exp := range d.result {
				set(t, c, "pa", uint64(i>>1))
				set(t, c, "pb", uint64(i&1))
				require.Equal(t, ls.Known(1, exp), value(t, c, "out"), "%s(%d, %d)", d.name, i>>1, i&1)
			}
		})
	}
}

func TestGatesFourState(t *testing.T) {
	td := []struct {
		name string
		gate ls.NewPartFn
		a, b string
		out  string
	}{
		{"and dominant 0", hl.AndN(4), "0z1x", "0011", "001x"},
		{"or dominant 1", hl.OrN(4), "1z0x", "1100", "110x"},
		{"xor undriven", hl.XorN(4), "01zx", "1100", "10xx"},
	}
	for _, d := range td {
		t.Run(d.name, func(t *testing.T) {
			c := newCircuit(t,
				hl.Pin(4)("out=a").As("pa"),
				hl.Pin(4)("out=b").As("pb"),
				d.gate("a=a, b=b, out=out"),
			)
			set(t, c, "pa", mustParse(t, d.a))
			set(t, c, "pb", mustParse(t, d.b))
			require.Equal(t, d.out, value(t, c, "out").String())
		})
	}
}

func TestNotN(t *testing.T) {
	c := newCircuit(t,
		hl.Pin(8)("out=in").As("in"),
		hl.NotN(8)("in=in, out=out"),
	)
	set(t, c, "in", uint64(0x5a))
	require.Equal(t, ls.Known(8, 0xa5), value(t, c, "out"))
}

func TestGateConstants(t *testing.T) {
	c := newCircuit(t,
		hl.And("a=true, b=true, out=t"),
		hl.Or("a=false, b=false, out=f"),
		hl.AndN(4)("a=true, b=true, out=t4"),
	)
	require.Equal(t, ls.True, value(t, c, "t"))
	require.Equal(t, ls.False, value(t, c, "f"))
	require.Equal(t, ls.Known(4, 0xf), value(t, c, "t4"))
}

func TestGateByName(t *testing.T) {
	for _, n := range []string{"NOT", "BUFFER", "AND", "NAND", "OR", "NOR", "XOR", "XNOR"} {
		fn, ok := hl.Gate(n, 2)
		require.True(t, ok, n)
		require.Equal(t, n+"2", fn("").Name)
	}
	_, ok := hl.Gate("FOO", 1)
	require.False(t, ok)
}
