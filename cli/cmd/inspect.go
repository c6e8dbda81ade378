package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/glasswing-io/sightline/cli/render"
)

// InspectCommand returns the inspect command.
// Inspect returns a deep view of a single issue: markup text, parsed
// viewpoint, reconstructed camera, and snapshot dimensions.
func InspectCommand() *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     "Inspect a single issue by ID",
		ArgsUsage: "<issue-id>",
		Flags:     TUIArchiveFlags(),
		Action:    inspectAction,
	}
}

func inspectAction(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.Exit("issue-id required", 1)
	}
	issueID := c.Args().First()

	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}

	rd, err := openArchive(c)
	if err != nil {
		return err
	}

	detail := rd.Detail(issueID)
	if detail == nil {
		return cli.Exit(fmt.Sprintf("no issue %q in archive", issueID), exitLocateFailure)
	}

	// Handle TUI mode
	if c.Bool("tui") {
		return r.RenderTUI("inspect", detail)
	}

	return r.Render(detail)
}
