//go:build !linux

package cmd

import (
	"errors"
	"log/slog"
)

var errNoServiceManager = errors.New("service installation is only supported on linux (systemd)")

func install(_ *slog.Logger) error {
	return errNoServiceManager
}

func uninstall(_ *slog.Logger) error {
	return errNoServiceManager
}
