// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwtest_test

import (
	"testing"

	ls "github.com/db47h/logicsim"
	hl "github.com/db47h/logicsim/hwlib"
	"github.com/db47h/logicsim/hwtest"
)

func TestComparePart(t *testing.T) {
	or, err := ls.Chip("custom_or", ls.Ports(ls.In("a, b"), ls.Out("out")), ls.Parts{
		ls.Nand("a=a, b=a, out=notA"),
		ls.Nand("a=b, b=b, out=notB"),
		ls.Nand("a=notA, b=notB, out=out"),
	})
	if err != nil {
		t.Fatal(err)
	}
	hwtest.ComparePart(t, hl.Or, or)
}

func TestComparePartN(t *testing.T) {
	xor4, err := ls.Chip("custom_xor4", ls.Ports(ls.In("a[4], b[4]"), ls.Out("out[4]")), ls.Parts{
		hl.OrN(4)("a=a, b=b, out=or"),
		hl.NandN(4)("a=a, b=b, out=nand"),
		hl.AndN(4)("a=or, b=nand, out=out"),
	})
	if err != nil {
		t.Fatal(err)
	}
	hwtest.ComparePart(t, hl.XorN(4), xor4)
}

func TestDeterministic(t *testing.T) {
	build := func() (*ls.Circuit, error) {
		return ls.NewCircuit(ls.Parts{
			hl.Clock(3)("out=clk"),
			hl.Pin(8)("out=d").As("d"),
			hl.Register(8)("in=d, clk=clk, out=q"),
			hl.Adder(8)("a=q, b=d, s=sum"),
			hl.Keyboard(16)("rclk=clk, adr=false, data=kbd").As("kbd"),
			// two drivers on the same net
			hl.BufferN(8)("in=d, out=bus"),
			hl.BufferN(8)("in=q, out=bus"),
		})
	}
	hwtest.Deterministic(t, build, []hwtest.Stimulus{
		{At: 2, Instance: "d", Event: uint64(0x11)},
		{At: 7, Instance: "kbd", Event: hl.KeyEvent{Action: hl.KeyTyped, Char: 'a'}},
		{At: 7, Instance: "d", Event: uint64(0x22)},
		{At: 13, Instance: "d", Event: uint64(0x33)},
	}, 40)
}
