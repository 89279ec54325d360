//go:build !linux

package cmd

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Alia5/hid2ps2/internal/log"
)

func (r *Run) start(_ context.Context, _ *slog.Logger, _ log.RawLogger) error {
	return errors.New("the run command needs the Linux GPIO character device; use feed on other platforms")
}
