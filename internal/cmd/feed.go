package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"golang.org/x/term"

	"github.com/Alia5/hid2ps2/bridge"
	"github.com/Alia5/hid2ps2/hid"
	"github.com/Alia5/hid2ps2/internal/log"
	"github.com/Alia5/hid2ps2/ps2"
)

// Feed runs the full pipeline from terminal keystrokes instead of a USB
// keyboard: each typed character becomes a press/release report pair. The
// wire bytes go nowhere unless raw tracing is enabled, which makes this
// the quickest way to inspect the translation output.
type Feed struct {
	BitPeriod time.Duration `help:"PS/2 bit period" default:"83us" env:"HID2PS2_BIT_PERIOD"`
}

// Run is called by kong when the feed command is executed.
func (f *Feed) Run(logger *slog.Logger, rawLogger log.RawLogger) error {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return fmt.Errorf("feed needs an interactive terminal on stdin")
	}
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("raw mode: %w", err)
	}
	defer func() { _ = term.Restore(fd, oldState) }()

	tx := ps2.NewTransmitter(loopbackLines{}, nil, f.BitPeriod)
	b := bridge.New(tx, logger, rawLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	runErr := make(chan error, 1)
	go func() { runErr <- b.Run(ctx) }()

	b.SetConnected(true)
	fmt.Print("type to feed the bridge, Esc or Ctrl-C to quit\r\n")

	buf := make([]byte, 1)
	for {
		if _, err := os.Stdin.Read(buf); err != nil {
			break
		}
		c := buf[0]
		if c == 0x1B || c == 0x03 { // Esc, Ctrl-C
			break
		}
		if err := f.typeChar(b, c); err != nil {
			logger.Warn("keystroke dropped", "char", string(c), "error", err)
		}
	}

	cancel()
	return <-runErr
}

// typeChar synthesizes the press and release reports for one character.
func (f *Feed) typeChar(b *bridge.Bridge, c byte) error {
	usage, ok := hid.CharToKey[c]
	if !ok {
		return fmt.Errorf("no usage code for %q", c)
	}
	var mod byte
	if hid.ShiftChars[c] {
		mod = hid.ModLeftShift
	}

	press := []byte{mod, 0, usage, 0, 0, 0, 0, 0}
	if err := b.HandleReport(press); err != nil {
		return err
	}
	release := []byte{0, 0, 0, 0, 0, 0, 0, 0}
	return b.HandleReport(release)
}

// loopbackLines satisfies ps2.LineDriver with no hardware behind it; the
// clock always reads released so transmission never sees an inhibit.
type loopbackLines struct{}

func (loopbackLines) SetClock(bool)   {}
func (loopbackLines) SetData(bool)    {}
func (loopbackLines) ReadClock() bool { return true }
func (loopbackLines) ReadData() bool  { return true }
