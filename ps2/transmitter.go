package ps2

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"
)

// LineDriver is the open-drain pin pair the transmitter drives. Writing
// true releases the line (pull-up takes it high), false drives it low.
// Reads return the sampled line level, which a host may hold low
// regardless of what we last wrote.
type LineDriver interface {
	SetClock(high bool)
	SetData(high bool)
	ReadClock() bool
	ReadData() bool
}

// Delayer supplies the half-bit-period waits. Separating the time source
// from the engine keeps the framing logic testable without hardware.
type Delayer interface {
	Delay(d time.Duration)
}

// DelayFunc adapts a plain function to the Delayer interface.
type DelayFunc func(d time.Duration)

func (f DelayFunc) Delay(d time.Duration) { f(d) }

// SleepDelayer delays with time.Sleep, adequate on hosted targets.
var SleepDelayer Delayer = DelayFunc(time.Sleep)

// Status is the transmitter state visible to the surrounding application.
type Status int32

const (
	StatusReady Status = iota
	StatusTransmitting
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusReady:
		return "ready"
	case StatusTransmitting:
		return "transmitting"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Timing defaults. 83us per bit puts the clock near 12 kHz, inside the
// 10-16.7 kHz band the protocol allows.
const (
	DefaultBitPeriod = 83 * time.Microsecond

	// inhibitPolls bounds how long we wait for a host to release the
	// clock line before a byte, in bit periods.
	inhibitPolls = 5
)

// Transmission faults.
var (
	ErrInhibited = errors.New("ps2: host is holding the clock line low")
	ErrNotReady  = errors.New("ps2: transmitter not ready")
)

// Transmitter serializes scan code bytes as 11-bit device-to-host frames:
// start bit, 8 data bits LSB first, odd parity, stop bit. For every bit
// the data line is set while clock is low for a half period, then clock is
// released for the second half; the host samples on the falling edge.
//
// The transmitter is owned by the bridge loop; only Status is safe to
// read from other goroutines.
type Transmitter struct {
	lines  LineDriver
	delay  Delayer
	half   time.Duration
	status atomic.Int32
}

// NewTransmitter builds a transmitter over the given line pair. A zero
// bitPeriod selects DefaultBitPeriod; delay may be nil for SleepDelayer.
// Both lines are released to their idle (high) state.
func NewTransmitter(lines LineDriver, delay Delayer, bitPeriod time.Duration) *Transmitter {
	if delay == nil {
		delay = SleepDelayer
	}
	if bitPeriod == 0 {
		bitPeriod = DefaultBitPeriod
	}
	t := &Transmitter{
		lines: lines,
		delay: delay,
		half:  bitPeriod / 2,
	}
	t.idleLines()
	return t
}

// Status returns the current transmitter state.
func (t *Transmitter) Status() Status {
	return Status(t.status.Load())
}

// Reset releases both lines and returns the transmitter to ready,
// clearing a previous fault.
func (t *Transmitter) Reset() {
	t.idleLines()
	t.status.Store(int32(StatusReady))
}

// Send transmits a whole scan code, back to back with only the stop bit
// separating bytes. A fault on any byte abandons the remainder of the
// sequence, leaves the lines idle and the transmitter in the error state;
// nothing is partially retransmitted.
func (t *Transmitter) Send(sc ScanCode) error {
	if t.Status() == StatusError {
		return ErrNotReady
	}
	t.status.Store(int32(StatusTransmitting))
	for _, b := range sc.Bytes() {
		if err := t.sendByte(b); err != nil {
			t.idleLines()
			t.status.Store(int32(StatusError))
			return fmt.Errorf("scan code %s: %w", sc, err)
		}
	}
	t.status.Store(int32(StatusReady))
	return nil
}

// SendByte transmits a single protocol byte outside of a key transition,
// such as the 0xAA self-test result after a reset.
func (t *Transmitter) SendByte(b byte) error {
	if t.Status() == StatusError {
		return ErrNotReady
	}
	t.status.Store(int32(StatusTransmitting))
	if err := t.sendByte(b); err != nil {
		t.idleLines()
		t.status.Store(int32(StatusError))
		return err
	}
	t.status.Store(int32(StatusReady))
	return nil
}

func (t *Transmitter) sendByte(b byte) error {
	if err := t.waitClockReleased(); err != nil {
		return err
	}

	t.sendBit(false) // start bit
	for i := 0; i < 8; i++ {
		t.sendBit(b&(1<<i) != 0)
	}
	t.sendBit(oddParity(b))
	t.sendBit(true) // stop bit
	return nil
}

// sendBit clocks one bit: data valid while clock is low, host samples the
// falling edge, then the clock is released for the second half period.
func (t *Transmitter) sendBit(high bool) {
	t.lines.SetData(high)
	t.lines.SetClock(false)
	t.delay.Delay(t.half)
	t.lines.SetClock(true)
	t.delay.Delay(t.half)
}

// waitClockReleased checks for the inhibit condition: a host pulls clock
// low to forbid device transmission. We poll for a bounded number of bit
// periods before giving up.
func (t *Transmitter) waitClockReleased() error {
	for i := 0; i < inhibitPolls; i++ {
		if t.lines.ReadClock() {
			return nil
		}
		t.delay.Delay(2 * t.half)
	}
	return ErrInhibited
}

func (t *Transmitter) idleLines() {
	t.lines.SetClock(true)
	t.lines.SetData(true)
}

// oddParity returns the parity bit for b: 1 XOR the XOR of all data bits,
// so data plus parity always has an odd number of set bits.
func oddParity(b byte) bool {
	p := uint8(1)
	for i := 0; i < 8; i++ {
		p ^= (b >> i) & 1
	}
	return p != 0
}
