// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package netlist loads circuit descriptions written in YAML.
//
// A netlist lists parts by kind with their connections, optional chip
// definitions built from those parts, the simulator configuration and a
// stimulus script:
//
//	config:
//	  maxIterations: 100
//	chips:
//	  - name: HALFADD
//	    inputs: a, b
//	    outputs: s, c
//	    parts:
//	      - {kind: xor, connect: "a=a, b=b, out=s"}
//	      - {kind: and, connect: "a=a, b=b, out=c"}
//	parts:
//	  - {kind: pin, name: a, connect: "out=x"}
//	  - {kind: pin, name: b, connect: "out=y"}
//	  - {kind: HALFADD, name: ha, connect: "a=x, b=y, s=sum, c=carry"}
//	stimuli:
//	  - {at: 10, instance: a, value: "1"}
//	until: 20
//
package netlist

import (
	"io"
	"io/ioutil"
	"os"
	"strings"

	"github.com/ghodss/yaml"
	"github.com/pkg/errors"

	ls "github.com/db47h/logicsim"
)

// A Netlist is a circuit description.
//
type Netlist struct {
	Config  ls.Config     `json:"config"`
	Chips   []ChipDef     `json:"chips,omitempty"`
	Parts   []PartDef     `json:"parts"`
	Stimuli []StimulusDef `json:"stimuli,omitempty"`
	Until   ls.Time       `json:"until,omitempty"`
}

// A PartDef describes a part instance.
//
type PartDef struct {
	Kind    string `json:"kind"`
	Name    string `json:"name,omitempty"`
	Connect string `json:"connect"`
	Params  Params `json:"params,omitempty"`
}

// Params holds the parameters of a part kind. Which ones are used depends on
// the kind; see Kinds.
//
type Params struct {
	Bits       int      `json:"bits,omitempty"`
	AddrBits   int      `json:"addrBits,omitempty"`
	HalfPeriod ls.Time  `json:"halfPeriod,omitempty"`
	Capacity   int      `json:"capacity,omitempty"`
	Value      string   `json:"value,omitempty"`
	Delay      *ls.Time `json:"delay,omitempty"`
}

// A ChipDef describes a chip. Its parts may use the kinds of previously
// defined chips.
//
type ChipDef struct {
	Name    string    `json:"name"`
	Inputs  string    `json:"inputs"`
	Outputs string    `json:"outputs"`
	Parts   []PartDef `json:"parts"`
}

// Load reads a YAML netlist from r.
//
func Load(r io.Reader) (*Netlist, error) {
	b, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "read netlist")
	}
	n := new(Netlist)
	if err = yaml.Unmarshal(b, n); err != nil {
		return nil, errors.Wrap(err, "parse netlist")
	}
	return n, nil
}

// LoadFile reads a YAML netlist from the named file.
//
func LoadFile(name string) (*Netlist, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	n, err := Load(f)
	return n, errors.Wrap(err, name)
}

// Resolve resolves the chip definitions and part kinds of the netlist.
//
func (n *Netlist) Resolve() (ls.Parts, error) {
	kinds := make(map[string]Kind, len(Kinds)+len(n.Chips))
	for k, fn := range Kinds {
		kinds[k] = fn
	}
	for _, cd := range n.Chips {
		if _, ok := kinds[cd.Name]; ok {
			return nil, errors.Errorf("chip %s: duplicate kind name", cd.Name)
		}
		parts, err := resolve(kinds, cd.Parts)
		if err != nil {
			return nil, errors.Wrap(err, "chip "+cd.Name)
		}
		ports, err := chipPorts(cd)
		if err != nil {
			return nil, errors.Wrap(err, "chip "+cd.Name)
		}
		fn, err := ls.Chip(cd.Name, ports, parts)
		if err != nil {
			return nil, err
		}
		kinds[cd.Name] = func(Params) (ls.NewPartFn, error) { return fn, nil }
	}
	return resolve(kinds, n.Parts)
}

// Build resolves the netlist and returns a new circuit configured with the
// netlist's Config. Options in opts are applied after it.
//
func (n *Netlist) Build(opts ...ls.Option) (*ls.Circuit, error) {
	parts, err := n.Resolve()
	if err != nil {
		return nil, err
	}
	return ls.NewCircuit(parts, append([]ls.Option{ls.WithConfig(n.Config)}, opts...)...)
}

func chipPorts(cd ChipDef) (ports []ls.Port, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("invalid port list: %v", r)
		}
	}()
	var in, out []ls.Port
	if strings.TrimSpace(cd.Inputs) != "" {
		in = ls.In(cd.Inputs)
	}
	if strings.TrimSpace(cd.Outputs) != "" {
		out = ls.Out(cd.Outputs)
	}
	return ls.Ports(in, out), nil
}

func resolve(kinds map[string]Kind, defs []PartDef) (ls.Parts, error) {
	parts := make(ls.Parts, 0, len(defs))
	for i, d := range defs {
		k, ok := kinds[d.Kind]
		if !ok {
			return nil, errors.Errorf("part %d: unknown kind %q", i, d.Kind)
		}
		if d.Params.Bits > 64 {
			return nil, errors.Errorf("part %d (%s): invalid width %d", i, d.Kind, d.Params.Bits)
		}
		fn, err := k(d.Params)
		if err != nil {
			return nil, errors.Wrapf(err, "part %d (%s)", i, d.Kind)
		}
		if _, err = ls.ParseConnections(d.Connect); err != nil {
			return nil, errors.Wrapf(err, "part %d (%s)", i, d.Kind)
		}
		p := fn(d.Connect)
		if d.Name != "" {
			p = p.As(d.Name)
		}
		if d.Params.Delay != nil {
			p = p.WithDelay(*d.Params.Delay)
		}
		parts = append(parts, p)
	}
	return parts, nil
}
