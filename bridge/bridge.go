// Package bridge wires the HID report queue, the scan code translator and
// the PS/2 transmitter into the USB-to-PS/2 pipeline.
package bridge

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/Alia5/hid2ps2/hid"
	"github.com/Alia5/hid2ps2/internal/log"
	"github.com/Alia5/hid2ps2/ps2"
)

// State is the bridge lifecycle state visible to the surrounding
// application layer, which may drive an indicator off it.
type State int32

const (
	StateInit State = iota
	StateReady
	StateRunning
	StateError
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateReady:
		return "ready"
	case StateRunning:
		return "running"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// ErrQueueFull reports a rejected report push. Expected under bursty
// input; the newest report is dropped and the buffered ones stay intact.
var ErrQueueFull = errors.New("bridge: report queue full, report dropped")

// sendRetries is how many times a faulted scan code is resent as a whole
// before the bridge gives up and parks in the error state.
const sendRetries = 1

// defaultPollInterval paces the consumer loop when the queue is empty.
const defaultPollInterval = time.Millisecond

// Bridge owns the full pipeline. HandleReport is the producer side and
// may be called from the USB transfer callback; everything else runs on
// the single Run goroutine.
type Bridge struct {
	queue      hid.Queue
	translator ps2.Translator
	tx         *ps2.Transmitter
	logger     *slog.Logger
	raw        log.RawLogger
	poll       time.Duration

	state     atomic.Int32
	connected atomic.Bool
	announce  atomic.Bool
	dropped   atomic.Uint64
}

// Option adjusts bridge construction.
type Option func(*Bridge)

// WithPollInterval overrides the idle polling interval of the Run loop.
func WithPollInterval(d time.Duration) Option {
	return func(b *Bridge) { b.poll = d }
}

// New builds a bridge over the given transmitter. rawLogger may be a
// no-op logger; it receives every report and every wire byte for
// debugging.
func New(tx *ps2.Transmitter, logger *slog.Logger, rawLogger log.RawLogger, opts ...Option) *Bridge {
	b := &Bridge{
		tx:     tx,
		logger: logger,
		raw:    rawLogger,
		poll:   defaultPollInterval,
	}
	for _, o := range opts {
		o(b)
	}
	b.state.Store(int32(StateReady))
	return b
}

// HandleReport is the report-arrival callback. It parses the raw report
// and enqueues the snapshot; a full queue drops this newest report and
// returns ErrQueueFull, leaving older snapshots dequeuable in order.
func (b *Bridge) HandleReport(raw []byte) error {
	snap, err := hid.ParseReport(raw)
	if err != nil {
		return err
	}
	b.raw.Log(true, raw)
	if !b.queue.TryPush(snap) {
		b.dropped.Add(1)
		return ErrQueueFull
	}
	return nil
}

// SetConnected records device attachment. Disconnecting clears the queue
// and resets the translator so a reattached keyboard starts from an
// all-released state; connecting schedules the self-test announcement.
func (b *Bridge) SetConnected(connected bool) {
	was := b.connected.Swap(connected)
	if was == connected {
		return
	}
	if connected {
		b.announce.Store(true)
		b.logger.Info("keyboard connected")
		return
	}
	b.queue.Clear()
	b.translator.Reset()
	b.logger.Info("keyboard disconnected, pipeline state cleared")
}

// Connected reports whether a keyboard is attached.
func (b *Bridge) Connected() bool {
	return b.connected.Load()
}

// State returns the bridge lifecycle state.
func (b *Bridge) State() State {
	return State(b.state.Load())
}

// Dropped returns the number of reports rejected by a full queue.
func (b *Bridge) Dropped() uint64 {
	return b.dropped.Load()
}

// Reset clears a terminal error: the transmitter lines are released and
// the pipeline state is wiped, ready for a fresh Run.
func (b *Bridge) Reset() {
	b.queue.Clear()
	b.translator.Reset()
	b.tx.Reset()
	b.state.Store(int32(StateReady))
}

// Run drains the queue until ctx is done: pop, translate, transmit. Each
// scan code is sent to completion before the next snapshot is popped, so
// key events never interleave on the wire. A transmission fault is
// retried once per scan code; a fault past the retry budget is terminal
// and parks the bridge in StateError until Reset.
func (b *Bridge) Run(ctx context.Context) error {
	b.state.Store(int32(StateRunning))
	defer func() {
		if b.State() == StateRunning {
			b.state.Store(int32(StateReady))
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if b.announce.Swap(false) {
			if err := b.sendBAT(); err != nil {
				b.state.Store(int32(StateError))
				return err
			}
		}

		snap, ok := b.queue.TryPop()
		if !ok {
			b.idle(ctx)
			continue
		}

		events, err := b.translator.Translate(snap)
		if err != nil {
			// More transitions than one report pair may produce; the
			// translator state is unchanged, so the next snapshot's diff
			// still covers the net change.
			b.logger.Warn("report skipped", "error", err, "snapshot", snap.String())
			continue
		}

		for _, sc := range events {
			if err := b.send(sc); err != nil {
				b.state.Store(int32(StateError))
				b.logger.Error("transmission failed, bridge halted", "error", err)
				return err
			}
		}
	}
}

// send transmits one scan code, retrying the whole sequence once after a
// transmitter reset.
func (b *Bridge) send(sc ps2.ScanCode) error {
	var err error
	for attempt := 0; attempt <= sendRetries; attempt++ {
		if attempt > 0 {
			b.tx.Reset()
			b.logger.Debug("retrying scan code", "scancode", sc.String(), "attempt", attempt)
		}
		if err = b.tx.Send(sc); err == nil {
			b.raw.Log(false, sc.Bytes())
			b.logger.Log(context.Background(), log.LevelTrace, "sent", "scancode", sc.String())
			return nil
		}
	}
	return err
}

// sendBAT announces the self-test-passed byte a keyboard emits after
// power-up, so hosts that expect the handshake see one on attach.
func (b *Bridge) sendBAT() error {
	var err error
	for attempt := 0; attempt <= sendRetries; attempt++ {
		if attempt > 0 {
			b.tx.Reset()
		}
		if err = b.tx.SendByte(ps2.CodeBATSuccess); err == nil {
			b.raw.Log(false, []byte{ps2.CodeBATSuccess})
			return nil
		}
	}
	return err
}

// idle waits one poll interval or until cancellation.
func (b *Bridge) idle(ctx context.Context) {
	t := time.NewTimer(b.poll)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
