// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	ls "github.com/db47h/logicsim"
)

func newCircuit(t *testing.T, parts ...ls.Part) *ls.Circuit {
	t.Helper()
	c, err := ls.NewCircuit(parts)
	require.NoError(t, err)
	settle(t, c)
	return c
}

func settle(t *testing.T, c *ls.Circuit) {
	t.Helper()
	require.NoError(t, c.Run(context.Background(), 0))
}

func set(t *testing.T, c *ls.Circuit, pin ls.InstanceID, v interface{}) {
	t.Helper()
	ok, err := c.ApplyStimulus(pin, v)
	require.NoError(t, err)
	require.True(t, ok)
	settle(t, c)
}

func value(t *testing.T, c *ls.Circuit, net string) ls.Value {
	t.Helper()
	v, ok := c.Value(net)
	require.True(t, ok, "net %s", net)
	return v
}

func mustParse(t *testing.T, s string) ls.Value {
	t.Helper()
	v, err := ls.Parse(s)
	require.NoError(t, err)
	return v
}
