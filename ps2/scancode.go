// Package ps2 translates keyboard snapshots into PS/2 set-2 scan codes and
// clocks them onto the wire with device-side framing.
package ps2

import (
	"fmt"
	"strings"
)

// Prefix bytes of the set-2 scan code encoding.
const (
	BreakPrefix    = 0xF0 // key release
	ExtendedPrefix = 0xE0 // extended key block
)

// Bytes a keyboard puts on the wire outside of key transitions.
const (
	CodeBATSuccess = 0xAA // self-test passed
	CodeAck        = 0xFA
	CodeResend     = 0xFE
	CodeError      = 0xFF
)

// MaxScanCodeLen is the longest transition sequence (extended break).
const MaxScanCodeLen = 4

// ScanCode is the 1-4 byte sequence for one key transition. It is a value
// type, built once by a constructor and consumed exactly once by the
// transmitter.
type ScanCode struct {
	data [MaxScanCodeLen]byte
	n    uint8
}

// MakeCode builds a press sequence: the bare scan code.
func MakeCode(code byte) ScanCode {
	return ScanCode{data: [MaxScanCodeLen]byte{code}, n: 1}
}

// BreakCode builds a release sequence: 0xF0 then the scan code.
func BreakCode(code byte) ScanCode {
	return ScanCode{data: [MaxScanCodeLen]byte{BreakPrefix, code}, n: 2}
}

// ExtendedMakeCode builds a press sequence for an extended key: 0xE0 then
// the scan code.
func ExtendedMakeCode(code byte) ScanCode {
	return ScanCode{data: [MaxScanCodeLen]byte{ExtendedPrefix, code}, n: 2}
}

// ExtendedBreakCode builds a release sequence for an extended key:
// 0xE0 0xF0 then the scan code.
func ExtendedBreakCode(code byte) ScanCode {
	return ScanCode{data: [MaxScanCodeLen]byte{ExtendedPrefix, BreakPrefix, code}, n: 3}
}

// Bytes returns the wire bytes of the sequence.
func (sc ScanCode) Bytes() []byte {
	return sc.data[:sc.n]
}

// Len returns the number of wire bytes.
func (sc ScanCode) Len() int {
	return int(sc.n)
}

// String renders the sequence as space-separated hex, e.g. "e0 f0 71".
func (sc ScanCode) String() string {
	var b strings.Builder
	for i := uint8(0); i < sc.n; i++ {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%02x", sc.data[i])
	}
	return b.String()
}
