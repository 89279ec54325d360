package ps2_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/hid2ps2/hid"
	"github.com/Alia5/hid2ps2/ps2"
)

func TestScanCodeConstructors(t *testing.T) {
	tests := []struct {
		name string
		sc   ps2.ScanCode
		want []byte
	}{
		{name: "make", sc: ps2.MakeCode(0x1C), want: []byte{0x1C}},
		{name: "break", sc: ps2.BreakCode(0x1C), want: []byte{0xF0, 0x1C}},
		{name: "extended make", sc: ps2.ExtendedMakeCode(0x71), want: []byte{0xE0, 0x71}},
		{name: "extended break", sc: ps2.ExtendedBreakCode(0x71), want: []byte{0xE0, 0xF0, 0x71}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.sc.Bytes())
			assert.Equal(t, len(tt.want), tt.sc.Len())
		})
	}
}

func TestScanCodeString(t *testing.T) {
	assert.Equal(t, "e0 f0 71", ps2.ExtendedBreakCode(0x71).String())
	assert.Equal(t, "1c", ps2.MakeCode(0x1C).String())
}

func TestLookupFixtures(t *testing.T) {
	// Known set-2 values, the contract the whole encoder rests on.
	code, extended, ok := ps2.Lookup(hid.KeyA)
	require.True(t, ok)
	assert.Equal(t, byte(0x1C), code)
	assert.False(t, extended)

	code, extended, ok = ps2.Lookup(hid.KeyDelete)
	require.True(t, ok)
	assert.Equal(t, byte(0x71), code)
	assert.True(t, extended)

	code, extended, ok = ps2.Lookup(hid.KeyEnter)
	require.True(t, ok)
	assert.Equal(t, byte(0x5A), code)
	assert.False(t, extended)
}

func TestLookupUnmapped(t *testing.T) {
	// F13 has no set-2 equivalent in the table.
	_, _, ok := ps2.Lookup(0x68)
	assert.False(t, ok)

	_, _, ok = ps2.Lookup(hid.KeyNone)
	assert.False(t, ok)
}
