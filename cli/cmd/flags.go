// Package cmd provides CLI commands for the sightline binary.
package cmd

import "github.com/urfave/cli/v2"

// Shared flags for read-only commands.
var (
	// FormatFlag selects output format: json, table, yaml.
	FormatFlag = &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Output format: json, table, yaml",
	}

	// NoColorFlag disables colored output.
	NoColorFlag = &cli.BoolFlag{
		Name:  "no-color",
		Usage: "Disable colored output",
	}

	// TUIFlag enables Bubble Tea interactive mode.
	// Only valid for select read-only commands (inspect, stats).
	TUIFlag = &cli.BoolFlag{
		Name:  "tui",
		Usage: "Enable interactive TUI mode (inspect, stats only)",
	}

	// ConfigFlag names the sightline.yaml config file.
	ConfigFlag = &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to sightline.yaml config file",
	}

	// ArchiveFlag names the BCF archive, overriding the config file.
	ArchiveFlag = &cli.StringFlag{
		Name:    "archive",
		Aliases: []string{"a"},
		Usage:   "Path to the BCF archive",
	}
)

// ReadOnlyFlags returns the shared render flags for all read-only commands.
// Includes --tui so that unsupported commands can provide explicit error
// messages instead of generic "flag not defined" errors.
func ReadOnlyFlags() []cli.Flag {
	return []cli.Flag{
		FormatFlag,
		NoColorFlag,
		TUIFlag,
	}
}

// ArchiveFlags returns ReadOnlyFlags plus the flags that locate the
// archive: the config file and the direct --archive override.
func ArchiveFlags() []cli.Flag {
	return append(ReadOnlyFlags(), ConfigFlag, ArchiveFlag)
}

// TUIArchiveFlags returns flags for archive commands that support TUI mode.
// This is an alias for ArchiveFlags, kept for documentation clarity.
func TUIArchiveFlags() []cli.Flag {
	return ArchiveFlags()
}
