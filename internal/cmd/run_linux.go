package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/Alia5/hid2ps2/bridge"
	"github.com/Alia5/hid2ps2/hid"
	"github.com/Alia5/hid2ps2/internal/log"
	"github.com/Alia5/hid2ps2/internal/platform/linuxgpio"
	"github.com/Alia5/hid2ps2/ps2"
)

// reopenDelay paces reconnect attempts after the hidraw device vanishes.
const reopenDelay = 500 * time.Millisecond

func (r *Run) start(ctx context.Context, logger *slog.Logger, rawLogger log.RawLogger) error {
	lines, err := linuxgpio.Open(r.GPIOChip, r.ClockLine, r.DataLine)
	if err != nil {
		return fmt.Errorf("open gpio lines: %w", err)
	}
	defer lines.Close()

	tx := ps2.NewTransmitter(lines, nil, r.BitPeriod)
	b := bridge.New(tx, logger, rawLogger)

	logger.Info("starting bridge",
		"chip", r.GPIOChip, "clock", r.ClockLine, "data", r.DataLine,
		"hidraw", r.Hidraw, "bitPeriod", r.BitPeriod)

	go r.readReports(ctx, b, logger)

	return b.Run(ctx)
}

// readReports feeds boot keyboard reports from the hidraw device into the
// bridge, reopening the device when the keyboard is unplugged.
func (r *Run) readReports(ctx context.Context, b *bridge.Bridge, logger *slog.Logger) {
	for ctx.Err() == nil {
		f, err := os.Open(r.Hidraw)
		if err != nil {
			b.SetConnected(false)
			sleepCtx(ctx, reopenDelay)
			continue
		}

		// Unblock the pending read when the context is cancelled.
		done := make(chan struct{})
		go func() {
			select {
			case <-ctx.Done():
				_ = f.Close()
			case <-done:
			}
		}()

		b.SetConnected(true)
		r.readLoop(ctx, f, b, logger)
		close(done)
		_ = f.Close()
		b.SetConnected(false)
		sleepCtx(ctx, reopenDelay)
	}
}

func (r *Run) readLoop(ctx context.Context, f *os.File, b *bridge.Bridge, logger *slog.Logger) {
	buf := make([]byte, hid.ReportSize)
	for ctx.Err() == nil {
		n, err := io.ReadFull(f, buf)
		if err != nil {
			if ctx.Err() == nil {
				logger.Warn("hidraw read failed", "error", err, "read", n)
			}
			return
		}
		if err := b.HandleReport(buf); err != nil {
			if errors.Is(err, bridge.ErrQueueFull) {
				logger.Debug("report dropped, queue full")
				continue
			}
			logger.Warn("report rejected", "error", err)
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
