// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package export writes the contents of memory-like part states as memory
// initialization listings for synthesis tools.
//
package export

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Memory is implemented by part states that expose an addressable word array,
// like hwlib.RAMState, hwlib.VideoState and hwlib.KeyboardState.
//
type Memory interface {
	// Words returns a copy of the memory contents, one word per address.
	Words() []uint64
	// WordWidth returns the width of a word in bits.
	WordWidth() int
}

// An Entry is a single address/value pair of a listing.
//
type Entry struct {
	Address int
	Value   uint64
}

// Listing returns the address/value pairs of m in address order. Values are
// masked to the memory word width.
//
func Listing(m Memory) []Entry {
	mask := wordMask(m.WordWidth())
	ws := m.Words()
	l := make([]Entry, len(ws))
	for i, w := range ws {
		l[i] = Entry{i, w & mask}
	}
	return l
}

func wordMask(width int) uint64 {
	if width >= 64 {
		return ^uint64(0)
	}
	return 1<<uint(width) - 1
}

// WriteMIF writes the contents of m to w in the memory initialization file
// format with the given depth. Addresses past the end of m up to depth-1 are
// zero-filled. A depth of 0 uses the size of m. Values are written in lower
// case hexadecimal, padded with zeros to the word width.
//
func WriteMIF(w io.Writer, m Memory, depth int) error {
	width := m.WordWidth()
	if width <= 0 || width > 64 {
		return errors.Errorf("invalid word width %d", width)
	}
	l := Listing(m)
	if depth == 0 {
		depth = len(l)
	}
	if len(l) > depth {
		return errors.Errorf("%d words do not fit in depth %d", len(l), depth)
	}
	digits := (width + 3) / 4

	bw := bufio.NewWriter(w)
	bw.WriteString("WIDTH=" + strconv.Itoa(width) + ";\n")
	bw.WriteString("DEPTH=" + strconv.Itoa(depth) + ";\n")
	bw.WriteString("ADDRESS_RADIX=UNS;\n")
	bw.WriteString("DATA_RADIX=HEX;\n")
	bw.WriteString("CONTENT BEGIN\n")
	for _, e := range l {
		h := strconv.FormatUint(e.Value, 16)
		if len(h) < digits {
			h = strings.Repeat("0", digits-len(h)) + h
		}
		bw.WriteString("\t" + strconv.Itoa(e.Address) + " : " + h + ";\n")
	}
	if len(l) < depth {
		bw.WriteString("\t[" + strconv.Itoa(len(l)) + ".." + strconv.Itoa(depth-1) + "] : 0;\n")
	}
	bw.WriteString("END;\n")
	return errors.Wrap(bw.Flush(), "write MIF")
}
