package cmd

import "log/slog"

// Service groups the system service management subcommands.
type Service struct {
	Install   ServiceInstall   `cmd:"" help:"Install, enable and start the bridge as a systemd service"`
	Uninstall ServiceUninstall `cmd:"" help:"Stop, disable and remove the bridge service"`
}

type ServiceInstall struct{}

func (ServiceInstall) Run(logger *slog.Logger) error {
	return install(logger)
}

type ServiceUninstall struct{}

func (ServiceUninstall) Run(logger *slog.Logger) error {
	return uninstall(logger)
}
