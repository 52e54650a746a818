// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logicsim

// A Pin is a handle to one of the ports of a mounted part. Pins are obtained
// from a Socket in a MountFn and used with the Context methods.
//
type Pin int

// A Socket maps a part's port names to pin handles.
//
type Socket struct {
	id    InstanceID
	spec  *PartSpec
	index map[string]Pin
	conn  []bool
}

func newSocket(id InstanceID, spec *PartSpec, connected []bool) *Socket {
	s := &Socket{
		id:    id,
		spec:  spec,
		index: make(map[string]Pin, len(spec.Ports)),
		conn:  connected,
	}
	for i, p := range spec.Ports {
		s.index[p.Name] = Pin(i)
	}
	return s
}

// Instance returns the ID of the instance being mounted.
//
func (s *Socket) Instance() InstanceID { return s.id }

// Pin returns the pin handle for the given port name.
// This function panics if the port does not exist.
//
func (s *Socket) Pin(name string) Pin {
	n, ok := s.index[name]
	if !ok {
		panic("port " + name + " does not exist in part " + s.spec.Name)
	}
	return n
}

// Connected returns true if the named port is connected to a net or a
// constant. Unconnected input ports read floating values.
//
func (s *Socket) Connected(name string) bool {
	return s.conn[s.Pin(name)]
}

// Width returns the width of the named port.
//
func (s *Socket) Width(name string) int {
	return s.spec.Ports[s.Pin(name)].Width
}
