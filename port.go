// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logicsim

// Dir is a port direction.
//
type Dir uint8

// Port directions.
//
const (
	Input Dir = iota
	Output
	InOut
	Clock // a clock input
)

func (d Dir) String() string {
	switch d {
	case Input:
		return "input"
	case Output:
		return "output"
	case InOut:
		return "inout"
	case Clock:
		return "clock"
	}
	return "unknown"
}

// reads returns true for directions that read their net.
func (d Dir) reads() bool { return d != Output }

// drives returns true for directions that can drive their net.
func (d Dir) drives() bool { return d == Output || d == InOut }

// A Port is a named, directioned, fixed-width connection point of a part.
//
type Port struct {
	Name  string
	Dir   Dir
	Width int
}

// In returns input ports described by spec. See IO.
//
func In(spec string) []Port { return IO(Input, spec) }

// Out returns output ports described by spec. See IO.
//
func Out(spec string) []Port { return IO(Output, spec) }

// Bidi returns input/output ports described by spec. See IO.
//
func Bidi(spec string) []Port { return IO(InOut, spec) }

// Clk returns clock input ports described by spec. See IO.
//
func Clk(spec string) []Port { return IO(Clock, spec) }

// IO parses a port specification string and returns the corresponding ports
// with direction d. The string is a comma separated list of port names, each
// optionally followed by a bit width in brackets:
//
//	IO(Input, "a[8], b[8], sel") // two 8 bits ports a and b and a 1 bit port sel
//
// IO panics if spec is malformed.
//
func IO(d Dir, spec string) []Port {
	ps, err := parseIOspec(spec)
	if err != nil {
		panic(err)
	}
	for i := range ps {
		ps[i].Dir = d
	}
	return ps
}

// Ports concatenates port lists.
//
func Ports(lists ...[]Port) []Port {
	var n int
	for _, l := range lists {
		n += len(l)
	}
	out := make([]Port, 0, n)
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}
