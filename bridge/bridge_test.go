package bridge_test

import (
	"context"
	"io"
	"log/slog"
	"math/bits"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/hid2ps2/bridge"
	"github.com/Alia5/hid2ps2/hid"
	"github.com/Alia5/hid2ps2/internal/log"
	"github.com/Alia5/hid2ps2/ps2"
)

// wireRecorder plays host: it latches the data line on falling clock
// edges and can decode the captured frames back into bytes. It is
// mutex-guarded because the Run loop clocks bits from its own goroutine.
type wireRecorder struct {
	mu      sync.Mutex
	clock   bool
	data    bool
	samples []bool
}

func (r *wireRecorder) SetClock(high bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.clock && !high {
		r.samples = append(r.samples, r.data)
	}
	r.clock = high
}

func (r *wireRecorder) SetData(high bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data = high
}

func (r *wireRecorder) ReadClock() bool { return true }

func (r *wireRecorder) ReadData() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.data
}

// bytes decodes the complete frames captured so far.
func (r *wireRecorder) bytes(t *testing.T) []byte {
	t.Helper()
	r.mu.Lock()
	samples := append([]bool(nil), r.samples...)
	r.mu.Unlock()

	var out []byte
	for f := 0; f+11 <= len(samples); f += 11 {
		frame := samples[f : f+11]
		require.False(t, frame[0], "start bit")
		require.True(t, frame[10], "stop bit")
		var b byte
		for i := 0; i < 8; i++ {
			if frame[1+i] {
				b |= 1 << i
			}
		}
		ones := bits.OnesCount8(b)
		if frame[9] {
			ones++
		}
		require.Equal(t, 1, ones%2, "odd parity for %02x", b)
		out = append(out, b)
	}
	return out
}

type inhibitedWire struct{ wireRecorder }

func (w *inhibitedWire) ReadClock() bool { return false }

var (
	noDelay    = ps2.DelayFunc(func(time.Duration) {})
	discardLog = slog.New(slog.NewTextHandler(io.Discard, nil))
)

func newTestBridge(lines ps2.LineDriver) *bridge.Bridge {
	tx := ps2.NewTransmitter(lines, noDelay, time.Microsecond)
	return bridge.New(tx, discardLog, log.NewRaw(nil),
		bridge.WithPollInterval(100*time.Microsecond))
}

func report(mods uint8, keys ...uint8) []byte {
	raw := make([]byte, hid.ReportSize)
	raw[0] = mods
	copy(raw[2:], keys)
	return raw
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestBridgePressRelease(t *testing.T) {
	rec := &wireRecorder{}
	b := newTestBridge(rec)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- b.Run(ctx) }()

	require.NoError(t, b.HandleReport(report(0, hid.KeyA)))
	require.NoError(t, b.HandleReport(report(0)))

	waitFor(t, func() bool { return len(rec.bytes(t)) >= 3 })
	assert.Equal(t, []byte{0x1C, 0xF0, 0x1C}, rec.bytes(t))

	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, bridge.StateReady, b.State())
}

func TestBridgeShiftedKey(t *testing.T) {
	rec := &wireRecorder{}
	b := newTestBridge(rec)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- b.Run(ctx) }()

	require.NoError(t, b.HandleReport(report(hid.ModLeftShift, hid.KeyA)))
	require.NoError(t, b.HandleReport(report(0)))

	// Modifier make precedes the key make; releases mirror that order.
	waitFor(t, func() bool { return len(rec.bytes(t)) >= 6 })
	assert.Equal(t, []byte{0x12, 0x1C, 0xF0, 0x12, 0xF0, 0x1C}, rec.bytes(t))

	cancel()
	require.NoError(t, <-done)
}

func TestBridgeBATOnConnect(t *testing.T) {
	rec := &wireRecorder{}
	b := newTestBridge(rec)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- b.Run(ctx) }()

	b.SetConnected(true)
	assert.True(t, b.Connected())

	require.NoError(t, b.HandleReport(report(0, hid.KeyB)))

	// The self-test byte goes out before any key traffic.
	waitFor(t, func() bool { return len(rec.bytes(t)) >= 2 })
	assert.Equal(t, []byte{0xAA, 0x32}, rec.bytes(t))

	cancel()
	require.NoError(t, <-done)
}

func TestBridgeQueueFull(t *testing.T) {
	b := newTestBridge(&wireRecorder{})

	for i := 0; i < hid.QueueCapacity; i++ {
		require.NoError(t, b.HandleReport(report(0, hid.KeyA)))
	}
	assert.ErrorIs(t, b.HandleReport(report(0, hid.KeyB)), bridge.ErrQueueFull)
	assert.ErrorIs(t, b.HandleReport(report(0, hid.KeyC)), bridge.ErrQueueFull)
	assert.Equal(t, uint64(2), b.Dropped())
}

func TestBridgeRejectsMalformedReport(t *testing.T) {
	b := newTestBridge(&wireRecorder{})
	assert.Error(t, b.HandleReport([]byte{0, 0, hid.KeyA}))
	assert.Zero(t, b.Dropped())
}

func TestBridgeDisconnectClearsPipeline(t *testing.T) {
	rec := &wireRecorder{}
	b := newTestBridge(rec)

	b.SetConnected(true)
	require.NoError(t, b.HandleReport(report(0, hid.KeyA)))
	b.SetConnected(false)
	assert.False(t, b.Connected())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- b.Run(ctx) }()

	// The queued press was discarded on disconnect; only the pending
	// self-test announcement remains.
	waitFor(t, func() bool { return len(rec.bytes(t)) >= 1 })
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, []byte{0xAA}, rec.bytes(t))

	cancel()
	require.NoError(t, <-done)
}

func TestBridgeOversizedDiffSkipsReport(t *testing.T) {
	rec := &wireRecorder{}
	b := newTestBridge(rec)

	// All eight modifiers plus a key is nine transitions in one report;
	// that snapshot is skipped, and the following one diffs against the
	// untouched state.
	require.NoError(t, b.HandleReport(report(0xFF, hid.KeyA)))
	require.NoError(t, b.HandleReport(report(0, hid.KeyB)))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- b.Run(ctx) }()

	waitFor(t, func() bool { return len(rec.bytes(t)) >= 1 })
	assert.Equal(t, []byte{0x32}, rec.bytes(t))

	cancel()
	require.NoError(t, <-done)
}

func TestBridgeTransmitFaultIsTerminal(t *testing.T) {
	wire := &inhibitedWire{}
	b := newTestBridge(wire)

	require.NoError(t, b.HandleReport(report(0, hid.KeyA)))

	// The send is retried once after a reset, then Run gives up.
	err := b.Run(context.Background())
	require.ErrorIs(t, err, ps2.ErrInhibited)
	assert.Equal(t, bridge.StateError, b.State())

	b.Reset()
	assert.Equal(t, bridge.StateReady, b.State())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "init", bridge.StateInit.String())
	assert.Equal(t, "ready", bridge.StateReady.String())
	assert.Equal(t, "running", bridge.StateRunning.String())
	assert.Equal(t, "error", bridge.StateError.String())
	assert.Equal(t, "unknown", bridge.State(42).String())
}
