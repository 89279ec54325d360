// Package cmd implements the CLI commands.
package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Alia5/hid2ps2/internal/log"
)

// Run bridges a USB HID keyboard to the PS/2 lines using the Linux GPIO
// character device and a hidraw report source.
type Run struct {
	GPIOChip  string        `help:"GPIO character device driving the PS/2 lines" default:"/dev/gpiochip0" env:"HID2PS2_GPIO_CHIP"`
	ClockLine uint32        `help:"GPIO line offset of the PS/2 clock pin" default:"17" env:"HID2PS2_CLOCK_LINE"`
	DataLine  uint32        `help:"GPIO line offset of the PS/2 data pin" default:"27" env:"HID2PS2_DATA_LINE"`
	Hidraw    string        `help:"hidraw device delivering boot keyboard reports" default:"/dev/hidraw0" env:"HID2PS2_HIDRAW"`
	BitPeriod time.Duration `help:"PS/2 bit period" default:"83us" env:"HID2PS2_BIT_PERIOD"`
}

// Run is called by kong when the run command is executed.
func (r *Run) Run(logger *slog.Logger, rawLogger log.RawLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return r.start(ctx, logger, rawLogger)
}
