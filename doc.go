/*
Package logicsim provides an event-driven, four-state digital logic simulator.

Circuits are built from parts: gates, registers, memories and peripherals
such as a buffered keyboard or a character framebuffer. Parts are
instantiated from a PartSpec with a connection string, then composed into
chips or directly into a Circuit:

	c, err := logicsim.NewCircuit(logicsim.Parts{
		hwlib.Not("in=a, out=b"),
		hwlib.And("a=a, b=b, out=c"),
	})

Signals are multi-bit four-state values (driven-0, driven-1, floating,
conflict). Each net merges the values of all the ports that drive it: two
disagreeing drivers yield a conflict.

The scheduler processes a priority queue of timed events. Every step commits
all events due at the earliest pending instant, then evaluates the components
whose inputs changed, repeating until the instant settles. A zero-delay loop
that does not settle is reported as an oscillation.

Clocked and External parts own a private state cell. External parts also
accept stimuli from other goroutines (key presses, pointer events) through
Circuit.ApplyStimulus; the simulation picks up the invalidated instances at the
start of its next step.

*/
package logicsim
