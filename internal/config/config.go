// Package config declares the CLI grammar parsed by kong.
package config

import "github.com/Alia5/hid2ps2/internal/cmd"

// LogConfig groups the logging flags shared by all commands.
type LogConfig struct {
	Level   string `help:"Log level (trace, debug, info, warn, error)" default:"info" env:"HID2PS2_LOG_LEVEL"`
	File    string `help:"Log file path; console only when empty" env:"HID2PS2_LOG_FILE"`
	RawFile string `help:"File receiving hex traces of HID reports and wire bytes" env:"HID2PS2_LOG_RAW_FILE"`
}

// CLI is the root command structure.
type CLI struct {
	Config string    `help:"Path to a config file (json, yaml or toml)" env:"HID2PS2_CONFIG"`
	Log    LogConfig `embed:"" prefix:"log."`

	Run     cmd.Run           `cmd:"" help:"Bridge a USB HID keyboard to the PS/2 lines"`
	Feed    cmd.Feed          `cmd:"" help:"Drive the bridge from terminal keystrokes (no USB hardware needed)"`
	Service cmd.Service       `cmd:"" help:"Manage the bridge as a system service"`
	Cfg     cmd.ConfigCommand `cmd:"" name:"config" help:"Configuration file helpers"`
}
