package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/glasswing-io/sightline/cli/reader"
	"github.com/glasswing-io/sightline/cli/render"
)

// listWarningThreshold is the number of rows above which we warn about using --limit.
const listWarningThreshold = 100

// isStderrTTY returns true if stderr is a TTY.
func isStderrTTY() bool {
	info, err := os.Stderr.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}

// ListCommand returns the list command.
// List returns thin summary rows, not inspect-level detail.
func ListCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List issue summaries from the archive",
		Flags: append(ArchiveFlags(),
			&cli.StringFlag{
				Name:  "status",
				Usage: "Filter by topic status (e.g. Open, Closed)",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of issues to return (0 = no limit)",
				Value: 0,
			},
		),
		Action: listAction,
	}
}

func listAction(c *cli.Context) error {
	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}

	// TUI not supported for list
	if c.Bool("tui") {
		return cli.Exit("--tui is not supported for list", 1)
	}

	rd, err := openArchive(c)
	if err != nil {
		return err
	}

	results := filterSummaries(rd.Summaries(), c.String("status"))
	if limit := c.Int("limit"); limit > 0 && len(results) > limit {
		results = results[:limit]
	}

	// Warn if output is large and --limit was not specified (TTY only to avoid noise in pipelines)
	if len(results) > listWarningThreshold && c.Int("limit") == 0 && isStderrTTY() {
		fmt.Fprintf(os.Stderr, "Warning: returning %d results. Consider using --limit to reduce output.\n\n", len(results))
	}

	return r.Render(results)
}

// filterSummaries keeps the rows matching the status, case-insensitive.
// An empty status keeps everything.
func filterSummaries(rows []reader.IssueSummary, status string) []reader.IssueSummary {
	if status == "" {
		return rows
	}
	kept := make([]reader.IssueSummary, 0, len(rows))
	for _, row := range rows {
		if strings.EqualFold(row.Status, status) {
			kept = append(kept, row)
		}
	}
	return kept
}
