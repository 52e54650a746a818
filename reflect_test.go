// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logicsim_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	ls "github.com/db47h/logicsim"
	hl "github.com/db47h/logicsim/hwlib"
)

// mux4 is a custom 4 bits mux.
//
type mux4 struct {
	A   ls.Pin `hw:"in,,4"`  // input bus "a"
	B   ls.Pin `hw:"in,,4"`  // input bus "b"
	S   ls.Pin `hw:"in,sel"` // single pin, the second tag value forces the port name to "sel"
	Out ls.Pin `hw:"out,,4"` // output bus "out"
}

// Propagate implements Component.
//
func (m *mux4) Propagate(c *ls.Context) error {
	v := c.Get(m.A)
	switch s := c.Get(m.S); {
	case s.Equal(ls.True):
		v = c.Get(m.B)
	case !s.Equal(ls.False):
		v = ls.Conflict(4)
	}
	c.Set(m.Out, v, c.Delay())
	return nil
}

// no need to import reflect, just cast a nil pointer to mux4
var mux4Spec = ls.MakePart((*mux4)(nil))

// MakePart example with a custom Mux4
func ExampleMakePart() {
	c, err := ls.NewCircuit(ls.Parts{
		hl.Pin(4)("out=a").As("a"),
		hl.Pin(4)("out=b").As("b"),
		hl.Pin(1)("out=sel").As("sel"),
		mux4Spec.NewPart("a=a, b=b, sel=sel, out=out"),
	})
	if err != nil {
		panic(err)
	}
	ctx := context.Background()
	c.ApplyStimulus("a", uint64(1))
	c.ApplyStimulus("b", uint64(15))
	c.Run(ctx, 0)
	out, _ := c.Value("out")
	fmt.Println("sel=0 => out =", out)
	c.ApplyStimulus("sel", ls.True)
	c.Run(ctx, 0)
	out, _ = c.Value("out")
	fmt.Println("sel=1 => out =", out)
	// Output:
	// sel=0 => out = 0001
	// sel=1 => out = 1111
}

func TestMakePart(t *testing.T) {
	require.Equal(t, "MUX4", mux4Spec.Name)
	require.Equal(t, ls.Time(1), mux4Spec.Delay)
	require.Equal(t, ls.Ports(ls.In("a[4], b[4], sel"), ls.Out("out[4]")), mux4Spec.Ports)
}

type noTag struct {
	A ls.Pin
}

func (noTag) Propagate(*ls.Context) error { return nil }

type badType struct {
	A int `hw:"in"`
}

func (*badType) Propagate(*ls.Context) error { return nil }

type badDir struct {
	A ls.Pin `hw:"up"`
}

func (*badDir) Propagate(*ls.Context) error { return nil }

type wideTag struct {
	A ls.Pin `hw:"in,,65"`
}

func (*wideTag) Propagate(*ls.Context) error { return nil }

type dupPort struct {
	A ls.Pin `hw:"in"`
	B ls.Pin `hw:"out,a"`
}

func (*dupPort) Propagate(*ls.Context) error { return nil }

type notStruct int

func (notStruct) Propagate(*ls.Context) error { return nil }

func TestMakePartPanics(t *testing.T) {
	require.NotPanics(t, func() { ls.MakePart(noTag{}) })
	for _, c := range []ls.Component{(*badType)(nil), (*badDir)(nil), (*wideTag)(nil), (*dupPort)(nil), notStruct(0)} {
		require.Panics(t, func() { ls.MakePart(c) }, "%T", c)
	}
}
