// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package vga computes the 640x480@60Hz timing and pixel colours of a
// character framebuffer, like the one held by hwlib.VideoState, as a VGA
// controller clocked by a 50MHz oscillator would produce them.
//
// Everything is a pure function of the oscillator tick count; the package
// keeps no state.
//
package vga

import (
	"image"
	"image/color"
)

// Display geometry and timing, in pixels and lines.
//
const (
	Width  = 640
	Height = 480

	HTotal     = 800
	HSyncStart = 656
	HSyncEnd   = 752 // exclusive
	VTotal     = 525
	VSyncStart = 490
	VSyncEnd   = 492 // exclusive

	CellWidth  = 10
	CellHeight = 20
	Cols       = Width / CellWidth
	Rows       = Height / CellHeight

	Foreground = 15 // palette index
	Background = 1
)

// Palette is the fixed 16 colour palette.
//
var Palette = [16]color.RGBA{
	{0x09, 0x03, 0x00, 0xff},
	{0xdb, 0x2d, 0x20, 0xff},
	{0x01, 0xa2, 0x52, 0xff},
	{0xfd, 0xed, 0x02, 0xff},
	{0x01, 0xa0, 0xe4, 0xff},
	{0xa1, 0x6a, 0x94, 0xff},
	{0xb5, 0xe4, 0xf4, 0xff},
	{0xa5, 0xa2, 0xa2, 0xff},
	{0x5c, 0x58, 0x55, 0xff},
	{0xe8, 0xbb, 0xd0, 0xff},
	{0x3a, 0x34, 0x32, 0xff},
	{0x4a, 0x45, 0x43, 0xff},
	{0x80, 0x7d, 0x7c, 0xff},
	{0xd6, 0xd5, 0xd4, 0xff},
	{0xcd, 0xab, 0x53, 0xff},
	{0xf7, 0xf7, 0xf7, 0xff},
}

// Blank is the colour output outside of the visible area.
//
var Blank = color.RGBA{0, 0, 0, 0xff}

// A Beam is the position of the VGA beam at a given oscillator tick.
//
type Beam struct {
	H, V int // pixel counter and line counter
}

// At returns the beam position after tick oscillator rising edges. The pixel
// clock runs at half the oscillator frequency.
//
func At(tick uint64) Beam {
	px := tick / 2
	return Beam{
		H: int(px % HTotal),
		V: int(px / HTotal % VTotal),
	}
}

// Visible returns true if the beam is in the 640x480 display area.
//
func (b Beam) Visible() bool { return b.H < Width && b.V < Height }

// HSync returns the level of the active-low horizontal sync signal.
//
func (b Beam) HSync() bool { return !(HSyncStart <= b.H && b.H < HSyncEnd) }

// VSync returns the level of the active-low vertical sync signal.
//
func (b Beam) VSync() bool { return !(VSyncStart <= b.V && b.V < VSyncEnd) }

// Cell returns the framebuffer cell under the beam and the position (u, v) of
// the beam within that cell. It is only meaningful if b is visible.
//
func (b Beam) Cell() (x, y, u, v int) {
	return b.H / CellWidth, b.V / CellHeight, b.H % CellWidth, b.V % CellHeight
}

// A GlyphFunc returns true if the pixel at (u, v) of character ch is lit.
// u is in [0, CellWidth) and v in [0, CellHeight).
//
type GlyphFunc func(ch byte, u, v int) bool

// Solid is a GlyphFunc that lights every pixel of non-zero characters.
//
func Solid(ch byte, _, _ int) bool { return ch != 0 }

// Pixel returns the colour output for beam b, given a Cols x Rows framebuffer
// indexed by x + y*Cols and a glyph function.
//
func Pixel(fb []byte, b Beam, glyph GlyphFunc) color.RGBA {
	if !b.Visible() {
		return Blank
	}
	x, y, u, v := b.Cell()
	var ch byte
	if i := x + y*Cols; i < len(fb) {
		ch = fb[i]
	}
	if glyph(ch, u, v) {
		return Palette[Foreground]
	}
	return Palette[Background]
}

// Frame renders a complete frame of fb.
//
func Frame(fb []byte, glyph GlyphFunc) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, Width, Height))
	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x++ {
			img.SetRGBA(x, y, Pixel(fb, Beam{x, y}, glyph))
		}
	}
	return img
}
