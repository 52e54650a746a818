// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

// PS/2 scan code set 2 markers.
const (
	ScanExtended = 0xE0
	ScanRelease  = 0xF0
)

// scanCodes maps key names to PS/2 set 2 make codes.
var scanCodes = map[string][]byte{
	"A": {0x1C}, "B": {0x32}, "C": {0x21}, "D": {0x23}, "E": {0x24}, "F": {0x2B},
	"G": {0x34}, "H": {0x33}, "I": {0x43}, "J": {0x3B}, "K": {0x42}, "L": {0x4B},
	"M": {0x3A}, "N": {0x31}, "O": {0x44}, "P": {0x4D}, "Q": {0x15}, "R": {0x2D},
	"S": {0x1B}, "T": {0x2C}, "U": {0x3C}, "V": {0x2A}, "W": {0x1D}, "X": {0x22},
	"Y": {0x35}, "Z": {0x1A},

	"0": {0x45}, "1": {0x16}, "2": {0x1E}, "3": {0x26}, "4": {0x25},
	"5": {0x2E}, "6": {0x36}, "7": {0x3D}, "8": {0x3E}, "9": {0x46},

	"`": {0x0E}, "-": {0x4E}, "=": {0x55}, "[": {0x54}, "]": {0x5B},
	"\\": {0x5D}, ";": {0x4C}, "'": {0x52}, ",": {0x41}, ".": {0x49}, "/": {0x4A},

	"Space":     {0x29},
	"Enter":     {0x5A},
	"Backspace": {0x66},
	"Tab":       {0x0D},
	"Escape":    {0x76},
	"CapsLock":  {0x58},
	"Shift":     {0x12},
	"RShift":    {0x59},
	"Ctrl":      {0x14},
	"Alt":       {0x11},

	"F1": {0x05}, "F2": {0x06}, "F3": {0x04}, "F4": {0x0C}, "F5": {0x03}, "F6": {0x0B},
	"F7": {0x83}, "F8": {0x0A}, "F9": {0x01}, "F10": {0x09}, "F11": {0x78}, "F12": {0x07},

	"RCtrl":    {ScanExtended, 0x14},
	"RAlt":     {ScanExtended, 0x11},
	"Insert":   {ScanExtended, 0x70},
	"Delete":   {ScanExtended, 0x71},
	"Home":     {ScanExtended, 0x6C},
	"End":      {ScanExtended, 0x69},
	"PageUp":   {ScanExtended, 0x7D},
	"PageDown": {ScanExtended, 0x7A},
	"Up":       {ScanExtended, 0x75},
	"Down":     {ScanExtended, 0x72},
	"Left":     {ScanExtended, 0x6B},
	"Right":    {ScanExtended, 0x74},
}

// MakeCode returns the scan code sequence sent when the named key is pressed.
//
func MakeCode(key string) ([]byte, bool) {
	seq, ok := scanCodes[key]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), seq...), true
}

// BreakCode returns the scan code sequence sent when the named key is
// released: the release marker followed by the make code, or, for extended
// keys, the extended marker, the release marker and the rest of the sequence.
//
func BreakCode(key string) ([]byte, bool) {
	seq, ok := scanCodes[key]
	if !ok {
		return nil, false
	}
	return releaseSeq(seq), true
}

func releaseSeq(seq []byte) []byte {
	out := make([]byte, 0, len(seq)+1)
	if len(seq) > 0 && seq[0] == ScanExtended {
		out = append(out, ScanExtended, ScanRelease)
		return append(out, seq[1:]...)
	}
	out = append(out, ScanRelease)
	return append(out, seq...)
}
