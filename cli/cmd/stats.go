package cmd

import (
	"github.com/urfave/cli/v2"

	"github.com/glasswing-io/sightline/cli/render"
)

// StatsCommand returns the stats command.
// Stats returns aggregated, derived facts about the archive.
func StatsCommand() *cli.Command {
	return &cli.Command{
		Name:   "stats",
		Usage:  "Show archive statistics",
		Flags:  TUIArchiveFlags(),
		Action: statsAction,
	}
}

func statsAction(c *cli.Context) error {
	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}

	rd, err := openArchive(c)
	if err != nil {
		return err
	}

	if c.Bool("tui") {
		return r.RenderTUI("stats", rd.Stats())
	}

	return r.Render(rd.Stats())
}
