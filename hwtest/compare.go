// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package hwtest provides utility functions for testing circuits.
//
package hwtest

import (
	"context"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	ls "github.com/db47h/logicsim"
	"github.com/db47h/logicsim/hwlib"
	"github.com/db47h/logicsim/netlist"
)

// A Commit is a net value change recorded at a given time.
//
type Commit struct {
	T   ls.Time
	Net string
	V   string
}

// Recorder records every committed net value change of a circuit.
//
type Recorder struct {
	Commits []Commit
}

// Record registers r with c.
//
func (r *Recorder) Record(c *ls.Circuit) {
	c.OnCommit(func(t ls.Time, net string, v ls.Value) {
		r.Commits = append(r.Commits, Commit{t, net, v.String()})
	})
}

// A Stimulus is an external event applied to an instance at a given time.
//
type Stimulus = netlist.Stimulus

// Deterministic builds two independent circuits with build, plays the same
// stimuli on both and checks that they commit bit-identical net values at
// every simulated time.
//
func Deterministic(t testing.TB, build func() (*ls.Circuit, error), stimuli []Stimulus, until ls.Time) {
	t.Helper()
	var rec [2]Recorder
	for i := range rec {
		c, err := build()
		if err != nil {
			t.Fatal(err)
		}
		rec[i].Record(c)
		if err = netlist.Play(context.Background(), c, stimuli, until); err != nil {
			t.Fatal(err)
		}
	}
	if len(rec[0].Commits) == 0 {
		t.Fatal("no value committed")
	}
	if diff := cmp.Diff(rec[0].Commits, rec[1].Commits); diff != "" {
		t.Fatalf("runs differ (-run1 +run2):\n%s", diff)
	}
}

// ComparePart takes two parts and compares their outputs given the same
// inputs. Both parts must have the same port list. Inputs are exhaustively
// tested for up to 12 input bits, then randomly.
//
func ComparePart(t testing.TB, part1, part2 ls.NewPartFn) {
	t.Helper()

	ps1, ps2 := part1("").PartSpec, part2("").PartSpec
	if diff := cmp.Diff(ps1.Ports, ps2.Ports); diff != "" {
		t.Fatalf("port lists differ (-part1 +part2):\n%s", diff)
	}

	var (
		parts   ls.Parts
		inputs  []ls.Port
		outputs []ls.Port
		c1, c2  strings.Builder
		nbits   int
	)
	conn := func(b *strings.Builder, port, net string) {
		if b.Len() > 0 {
			b.WriteString(", ")
		}
		b.WriteString(port + "=" + net)
	}
	for _, p := range ps1.Ports {
		switch p.Dir {
		case ls.Output:
			outputs = append(outputs, p)
			conn(&c1, p.Name, "p1."+p.Name)
			conn(&c2, p.Name, "p2."+p.Name)
		case ls.Input, ls.Clock:
			inputs = append(inputs, p)
			nbits += p.Width
			conn(&c1, p.Name, p.Name)
			conn(&c2, p.Name, p.Name)
			parts = append(parts, hwlib.Pin(p.Width)("out="+p.Name).As("in."+p.Name))
		default:
			t.Fatalf("unsupported port direction %v for %s", p.Dir, p.Name)
		}
	}
	parts = append(parts, part1(c1.String()).As("p1"), part2(c2.String()).As("p2"))
	c, err := ls.NewCircuit(parts)
	if err != nil {
		t.Fatal(err)
	}

	seed := time.Now().UnixNano()
	rnd := rand.New(rand.NewSource(seed))
	iter := 1 << uint(nbits)
	exhaustive := nbits <= 12
	if !exhaustive {
		iter = 1 << 12
		t.Logf("random inputs, seed %d", seed)
	}
	ctx := context.Background()
	for i := 0; i < iter; i++ {
		shift := uint(0)
		for _, in := range inputs {
			var v uint64
			if exhaustive {
				v = uint64(i) >> shift
			} else {
				v = rnd.Uint64()
			}
			shift += uint(in.Width)
			if _, err = c.ApplyStimulus(ls.InstanceID("in."+in.Name), ls.Known(in.Width, v)); err != nil {
				t.Fatal(err)
			}
		}
		if err = c.Run(ctx, 0); err != nil && !ls.IsFault(err) {
			t.Fatal(err)
		}
		for _, o := range outputs {
			v1, _ := c.Value("p1." + o.Name)
			v2, _ := c.Value("p2." + o.Name)
			if !v1.Equal(v2) {
				var b strings.Builder
				for _, in := range inputs {
					v, _ := c.Value(in.Name)
					b.WriteString(in.Name + "=" + v.String() + " ")
				}
				t.Fatalf("%sexpected %s=%v, got %v", b.String(), o.Name, v1, v2)
			}
		}
	}
}
