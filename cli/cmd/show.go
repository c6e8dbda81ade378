package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/glasswing-io/sightline/display"
	"github.com/glasswing-io/sightline/session"
)

// ShowCommand returns the show command.
// Show routes the issue's markup text and snapshot through the display
// sinks: text to stdout, the snapshot image saved next to it.
func ShowCommand() *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Send an issue's text and snapshot to the display sinks",
		ArgsUsage: "<issue-id>",
		Flags: append(ArchiveFlags(),
			&cli.StringFlag{
				Name:  "snapshot-dir",
				Usage: "Directory for saved snapshot images (default: working directory)",
			},
		),
		Action: showAction,
	}
}

func showAction(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.Exit("issue-id required", 1)
	}
	issueID := c.Args().First()

	if c.Bool("tui") {
		return cli.Exit("--tui is not supported for show", 1)
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return cli.Exit(err.Error(), exitArchiveFailure)
	}
	archivePath, err := resolveArchive(c, cfg)
	if err != nil {
		return cli.Exit(err.Error(), exitArchiveFailure)
	}
	snapshotDir := resolveString(c, "snapshot-dir", cfg.SnapshotDir)
	if snapshotDir == "" {
		snapshotDir = "."
	}

	ctx := context.Background()
	sess, err := session.Open(ctx, &session.Config{
		ArchivePath: archivePath,
		Backend:     session.BackendNone,
		Display:     display.NewConsole(os.Stdout, os.Stderr, snapshotDir),
		LogLevel:    cliLogLevel(cfg),
	})
	if err != nil {
		return cli.Exit(fmt.Sprintf("cannot open archive: %v", err), exitArchiveFailure)
	}
	defer func() { _ = sess.Close() }()

	if err := sess.Show(ctx, issueID); err != nil {
		if errors.Is(err, session.ErrNoIssue) {
			return cli.Exit(fmt.Sprintf("no issue %q in archive", issueID), exitLocateFailure)
		}
		return cli.Exit(err.Error(), exitArchiveFailure)
	}
	return nil
}
