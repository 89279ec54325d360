package hid_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/hid2ps2/hid"
)

func TestParseReport(t *testing.T) {
	tests := []struct {
		name     string
		raw      []byte
		wantMods uint8
		wantKeys []uint8
	}{
		{
			name:     "empty report",
			raw:      []byte{0, 0, 0, 0, 0, 0, 0, 0},
			wantKeys: nil,
		},
		{
			name:     "single key",
			raw:      []byte{0, 0, hid.KeyA, 0, 0, 0, 0, 0},
			wantKeys: []uint8{hid.KeyA},
		},
		{
			name:     "modifiers only",
			raw:      []byte{hid.ModLeftShift | hid.ModRightCtrl, 0, 0, 0, 0, 0, 0, 0},
			wantMods: hid.ModLeftShift | hid.ModRightCtrl,
			wantKeys: nil,
		},
		{
			name:     "six keys",
			raw:      []byte{0, 0, hid.KeyA, hid.KeyB, hid.KeyC, hid.KeyD, hid.KeyE, hid.KeyF},
			wantKeys: []uint8{hid.KeyA, hid.KeyB, hid.KeyC, hid.KeyD, hid.KeyE, hid.KeyF},
		},
		{
			name:     "no-op slots skipped",
			raw:      []byte{0, 0, hid.KeyNone, hid.KeyA, hid.KeyNone, hid.KeyB, 0, 0},
			wantKeys: []uint8{hid.KeyA, hid.KeyB},
		},
		{
			name:     "rollover error codes skipped",
			raw:      []byte{0, 0, hid.KeyRollover, hid.KeyRollover, hid.KeyRollover, 0, 0, 0},
			wantKeys: nil,
		},
		{
			name:     "duplicate codes collapsed",
			raw:      []byte{0, 0, hid.KeyA, hid.KeyA, hid.KeyB, hid.KeyA, 0, 0},
			wantKeys: []uint8{hid.KeyA, hid.KeyB},
		},
		{
			name:     "reserved byte ignored",
			raw:      []byte{0, 0xFF, hid.KeyZ, 0, 0, 0, 0, 0},
			wantKeys: []uint8{hid.KeyZ},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap, err := hid.ParseReport(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.wantMods, snap.Modifiers)
			assert.Equal(t, uint8(len(tt.wantKeys)), snap.Count)
			for _, k := range tt.wantKeys {
				assert.True(t, snap.Contains(k), "missing key %02x", k)
			}
			assert.LessOrEqual(t, snap.Count, uint8(hid.MaxKeys))
			assert.False(t, snap.Contains(hid.KeyNone))
			assert.False(t, snap.Contains(hid.KeyRollover))
		})
	}
}

func TestParseReportLength(t *testing.T) {
	for _, n := range []int{0, 1, 7, 9, 64} {
		_, err := hid.ParseReport(make([]byte, n))
		assert.Error(t, err, "length %d", n)
	}
}

func TestSnapshotEqual(t *testing.T) {
	a, err := hid.ParseReport([]byte{hid.ModLeftShift, 0, hid.KeyA, hid.KeyB, 0, 0, 0, 0})
	require.NoError(t, err)

	// Same keys in different slots compare equal.
	b, err := hid.ParseReport([]byte{hid.ModLeftShift, 0, hid.KeyB, 0, hid.KeyA, 0, 0, 0})
	require.NoError(t, err)
	assert.True(t, a.Equal(b))
	assert.True(t, b.Equal(a))

	c, err := hid.ParseReport([]byte{0, 0, hid.KeyA, hid.KeyB, 0, 0, 0, 0})
	require.NoError(t, err)
	assert.False(t, a.Equal(c), "modifier difference")

	d, err := hid.ParseReport([]byte{hid.ModLeftShift, 0, hid.KeyA, hid.KeyC, 0, 0, 0, 0})
	require.NoError(t, err)
	assert.False(t, a.Equal(d), "key set difference")
}

func TestSnapshotHasModifier(t *testing.T) {
	snap, err := hid.ParseReport([]byte{hid.ModLeftCtrl | hid.ModLeftAlt, 0, 0, 0, 0, 0, 0, 0})
	require.NoError(t, err)
	assert.True(t, snap.HasModifier(hid.ModLeftCtrl))
	assert.True(t, snap.HasModifier(hid.ModLeftCtrl|hid.ModLeftAlt))
	assert.False(t, snap.HasModifier(hid.ModRightCtrl))
}
