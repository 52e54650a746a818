// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package export_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/db47h/logicsim/export"
	hl "github.com/db47h/logicsim/hwlib"
)

type words struct {
	w     []uint64
	width int
}

func (m words) Words() []uint64 { return m.w }
func (m words) WordWidth() int  { return m.width }

func TestListing(t *testing.T) {
	l := export.Listing(words{[]uint64{0x1ff, 3}, 8})
	if diff := cmp.Diff([]export.Entry{{Address: 0, Value: 0xff}, {Address: 1, Value: 3}}, l); diff != "" {
		t.Fatal(diff)
	}
	require.Len(t, export.Listing(words{nil, 8}), 0)
}

func TestWriteMIF(t *testing.T) {
	ram := hl.NewRAMState(2, 12)
	ram.Load([]uint64{0xabc, 0x1})

	var b strings.Builder
	require.NoError(t, export.WriteMIF(&b, ram, 8))
	require.Equal(t, `WIDTH=12;
DEPTH=8;
ADDRESS_RADIX=UNS;
DATA_RADIX=HEX;
CONTENT BEGIN
	0 : abc;
	1 : 001;
	2 : 000;
	3 : 000;
	[4..7] : 0;
END;
`, b.String())
}

func TestWriteMIFFull(t *testing.T) {
	var b strings.Builder
	require.NoError(t, export.WriteMIF(&b, words{[]uint64{1, 2}, 1}, 0))
	require.Equal(t, "WIDTH=1;\nDEPTH=2;\nADDRESS_RADIX=UNS;\nDATA_RADIX=HEX;\nCONTENT BEGIN\n\t0 : 1;\n\t1 : 0;\nEND;\n", b.String())
}

func TestWriteMIFErrors(t *testing.T) {
	var b strings.Builder
	require.Error(t, export.WriteMIF(&b, words{[]uint64{1, 2, 3}, 8}, 2))
	require.Error(t, export.WriteMIF(&b, words{nil, 0}, 2))
}

func TestVideoListing(t *testing.T) {
	v := hl.NewVideoState()
	require.NoError(t, v.Write(1, 1, 'A'))
	l := export.Listing(v)
	require.Len(t, l, hl.VideoCols*hl.VideoRows)
	require.Equal(t, export.Entry{Address: hl.VideoCols + 1, Value: 'A'}, l[hl.VideoCols+1])
}
