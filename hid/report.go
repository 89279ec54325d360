// Package hid parses USB HID boot keyboard reports into snapshots and
// buffers them between the report callback and the processing loop.
package hid

import (
	"fmt"
	"strings"
)

// ReportSize is the length of a boot protocol keyboard report.
const ReportSize = 8

// MaxKeys is the number of simultaneous non-modifier keys a boot report
// can carry.
const MaxKeys = 6

// Snapshot is one point-in-time record of the keyboard state: the modifier
// bitmask plus the set of currently held non-modifier keys. Snapshots are
// compared by value and never mutated in place.
type Snapshot struct {
	Modifiers uint8
	Keys      [MaxKeys]uint8
	Count     uint8
}

// ParseReport decodes an 8-byte boot keyboard report.
//
// Byte 0 is the modifier bitmask, byte 1 is reserved, bytes 2-7 carry up to
// six usage codes. Slots holding KeyNone or KeyRollover are skipped, as are
// duplicate codes, so Count only reflects distinct valid keys.
func ParseReport(raw []byte) (Snapshot, error) {
	if len(raw) != ReportSize {
		return Snapshot{}, fmt.Errorf("hid: report length %d, want %d", len(raw), ReportSize)
	}

	snap := Snapshot{Modifiers: raw[0]}
	for _, code := range raw[2:ReportSize] {
		if code == KeyNone || code == KeyRollover {
			continue
		}
		if snap.Contains(code) {
			continue
		}
		snap.Keys[snap.Count] = code
		snap.Count++
	}
	return snap, nil
}

// Contains reports whether the usage code is held in this snapshot,
// by value rather than slot position.
func (s Snapshot) Contains(code uint8) bool {
	for i := uint8(0); i < s.Count; i++ {
		if s.Keys[i] == code {
			return true
		}
	}
	return false
}

// HasModifier reports whether all bits of mask are set.
func (s Snapshot) HasModifier(mask uint8) bool {
	return s.Modifiers&mask == mask
}

// Equal reports whether two snapshots hold the same modifiers and key set.
// Key order is insignificant.
func (s Snapshot) Equal(o Snapshot) bool {
	if s.Modifiers != o.Modifiers || s.Count != o.Count {
		return false
	}
	for i := uint8(0); i < s.Count; i++ {
		if !o.Contains(s.Keys[i]) {
			return false
		}
	}
	return true
}

// String renders the snapshot for debug logging, e.g. "mod=02 keys=[A B]".
func (s Snapshot) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "mod=%02x keys=[", s.Modifiers)
	for i := uint8(0); i < s.Count; i++ {
		if i > 0 {
			b.WriteByte(' ')
		}
		if name, ok := KeyName[s.Keys[i]]; ok {
			b.WriteString(name)
		} else {
			fmt.Fprintf(&b, "%02x", s.Keys[i])
		}
	}
	b.WriteByte(']')
	return b.String()
}
