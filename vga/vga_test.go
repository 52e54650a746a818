// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package vga_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	hl "github.com/db47h/logicsim/hwlib"
	"github.com/db47h/logicsim/vga"
)

func TestGeometry(t *testing.T) {
	require.Equal(t, hl.VideoCols, vga.Cols)
	require.Equal(t, hl.VideoRows, vga.Rows)
}

func TestAt(t *testing.T) {
	td := []struct {
		tick uint64
		beam vga.Beam
	}{
		{0, vga.Beam{H: 0, V: 0}},
		{1, vga.Beam{H: 0, V: 0}},
		{2, vga.Beam{H: 1, V: 0}},
		{2 * 799, vga.Beam{H: 799, V: 0}},
		{2 * 800, vga.Beam{H: 0, V: 1}},
		{2 * 800 * 525, vga.Beam{H: 0, V: 0}},
		{2 * (800*524 + 3), vga.Beam{H: 3, V: 524}},
	}
	for _, d := range td {
		require.Equal(t, d.beam, vga.At(d.tick), "tick %d", d.tick)
	}
}

func TestSync(t *testing.T) {
	td := []struct {
		h, v         int
		hs, vs, show bool
	}{
		{0, 0, true, true, true},
		{639, 479, true, true, true},
		{640, 0, true, true, false},
		{655, 0, true, true, false},
		{656, 0, false, true, false},
		{751, 0, false, true, false},
		{752, 0, true, true, false},
		{0, 480, true, true, false},
		{0, 489, true, true, false},
		{0, 490, true, false, false},
		{0, 491, true, false, false},
		{0, 492, true, true, false},
	}
	for _, d := range td {
		b := vga.Beam{H: d.h, V: d.v}
		require.Equal(t, d.hs, b.HSync(), "hsync %v", b)
		require.Equal(t, d.vs, b.VSync(), "vsync %v", b)
		require.Equal(t, d.show, b.Visible(), "visible %v", b)
	}
}

func TestPixel(t *testing.T) {
	vs := hl.NewVideoState()
	require.NoError(t, vs.Write(2, 1, 'A'))
	fb := vs.Cells()

	fg, bg := vga.Palette[vga.Foreground], vga.Palette[vga.Background]
	require.Equal(t, bg, vga.Pixel(fb, vga.Beam{H: 0, V: 0}, vga.Solid))
	require.Equal(t, fg, vga.Pixel(fb, vga.Beam{H: 20, V: 20}, vga.Solid))
	require.Equal(t, fg, vga.Pixel(fb, vga.Beam{H: 29, V: 39}, vga.Solid))
	require.Equal(t, bg, vga.Pixel(fb, vga.Beam{H: 30, V: 39}, vga.Solid))
	require.Equal(t, vga.Blank, vga.Pixel(fb, vga.Beam{H: 700, V: 20}, vga.Solid))

	var ch byte
	var u, v int
	glyph := func(c byte, gu, gv int) bool {
		ch, u, v = c, gu, gv
		return false
	}
	vga.Pixel(fb, vga.Beam{H: 27, V: 33}, glyph)
	require.Equal(t, byte('A'), ch)
	require.Equal(t, 7, u)
	require.Equal(t, 13, v)
}

func TestFrame(t *testing.T) {
	fb := make([]byte, vga.Cols*vga.Rows)
	fb[len(fb)-1] = 1
	img := vga.Frame(fb, vga.Solid)
	require.Equal(t, vga.Width, img.Bounds().Dx())
	require.Equal(t, vga.Height, img.Bounds().Dy())
	require.Equal(t, vga.Palette[vga.Foreground], img.RGBAAt(vga.Width-1, vga.Height-1))
	require.Equal(t, vga.Palette[vga.Background], img.RGBAAt(vga.Width-11, vga.Height-1))
}
