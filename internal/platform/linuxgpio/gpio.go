//go:build linux

// Package linuxgpio drives the PS/2 clock and data pins through the Linux
// GPIO character device (uAPI v2). Both lines are requested as open-drain
// outputs; external pull-ups take a released line high, and reading an
// open-drain output returns the actual line level, which is how a host
// inhibit becomes visible.
package linuxgpio

import (
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

const consumer = "hid2ps2"

// Bit positions inside the line request.
const (
	clockBit = 0
	dataBit  = 1
)

// Lines implements ps2.LineDriver over one requested pair of GPIO lines.
type Lines struct {
	chip   *os.File
	lineFd int32
}

// Open requests the clock and data line offsets on the given GPIO chip.
func Open(chipPath string, clockOffset, dataOffset uint32) (*Lines, error) {
	chip, err := os.OpenFile(chipPath, os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}

	var req unix.GpioV2LineRequest
	req.Offsets[clockBit] = clockOffset
	req.Offsets[dataBit] = dataOffset
	req.Num_lines = 2
	copy(req.Consumer[:], consumer)
	req.Config.Flags = unix.GPIO_V2_LINE_FLAG_OUTPUT | unix.GPIO_V2_LINE_FLAG_OPEN_DRAIN

	if err := ioctl(chip.Fd(), unix.GPIO_V2_GET_LINE_IOCTL, unsafe.Pointer(&req)); err != nil {
		_ = chip.Close()
		return nil, fmt.Errorf("request lines %d,%d on %s: %w", clockOffset, dataOffset, chipPath, err)
	}

	l := &Lines{chip: chip, lineFd: req.Fd}

	// Release both lines (high through the pull-ups), the PS/2 idle state.
	idle := unix.GpioV2LineValues{
		Bits: 1<<clockBit | 1<<dataBit,
		Mask: 1<<clockBit | 1<<dataBit,
	}
	if err := ioctl(uintptr(l.lineFd), unix.GPIO_V2_LINE_SET_VALUES_IOCTL, unsafe.Pointer(&idle)); err != nil {
		_ = l.Close()
		return nil, fmt.Errorf("idle lines: %w", err)
	}

	return l, nil
}

// Close releases the requested lines and the chip.
func (l *Lines) Close() error {
	if l.lineFd > 0 {
		_ = unix.Close(int(l.lineFd))
		l.lineFd = 0
	}
	return l.chip.Close()
}

// SetClock drives (false) or releases (true) the clock line.
func (l *Lines) SetClock(high bool) { l.set(clockBit, high) }

// SetData drives (false) or releases (true) the data line.
func (l *Lines) SetData(high bool) { l.set(dataBit, high) }

// ReadClock samples the clock line level.
func (l *Lines) ReadClock() bool { return l.get(clockBit) }

// ReadData samples the data line level.
func (l *Lines) ReadData() bool { return l.get(dataBit) }

func (l *Lines) set(bit uint, high bool) {
	vals := unix.GpioV2LineValues{Mask: 1 << bit}
	if high {
		vals.Bits = 1 << bit
	}
	// A failed set leaves the previous level on the wire; the inhibit
	// and framing checks upstream surface the resulting fault.
	_ = ioctl(uintptr(l.lineFd), unix.GPIO_V2_LINE_SET_VALUES_IOCTL, unsafe.Pointer(&vals))
}

func (l *Lines) get(bit uint) bool {
	vals := unix.GpioV2LineValues{Mask: 1 << bit}
	if err := ioctl(uintptr(l.lineFd), unix.GPIO_V2_LINE_GET_VALUES_IOCTL, unsafe.Pointer(&vals)); err != nil {
		return false
	}
	return vals.Bits&(1<<bit) != 0
}

func ioctl(fd, req uintptr, arg unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, req, uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}
