package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/glasswing-io/sightline/cli/render"
	"github.com/glasswing-io/sightline/geom"
	"github.com/glasswing-io/sightline/host"
	"github.com/glasswing-io/sightline/locate"
	"github.com/glasswing-io/sightline/session"
	"github.com/glasswing-io/sightline/types"
)

// Exit codes for goto outcomes.
const (
	exitSuccess         = 0
	exitLocateFailure   = 1
	exitHostUnavailable = 2
	exitArchiveFailure  = 3
)

// GotoCommand returns the goto command.
// This is the only command that mutates host state.
func GotoCommand() *cli.Command {
	return &cli.Command{
		Name:      "goto",
		Usage:     "Run the go-to-view action for an issue (the only mutating command)",
		ArgsUsage: "<issue-id>",
		Flags: append(ArchiveFlags(),
			// Host flags
			&cli.StringFlag{
				Name:  "backend",
				Usage: "Host backend: scene, bridge, or none",
			},
			&cli.StringFlag{
				Name:  "scene",
				Usage: "Scene file for the scene backend (default: embedded demo scene)",
			},
			&cli.StringFlag{
				Name:  "host-cmd",
				Usage: "Viewer host binary for the bridge backend",
			},
			&cli.StringSliceFlag{
				Name:  "host-arg",
				Usage: "Extra argument for the host binary (repeatable)",
			},
			&cli.BoolFlag{
				Name:  "quiet",
				Usage: "Suppress result output",
			},
		),
		Action: gotoAction,
	}
}

// backendChoice holds the parsed host configuration.
type backendChoice struct {
	backend string
	scene   string
	command string
	args    []string
}

func gotoAction(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.Exit("issue-id required", 1)
	}
	issueID := c.Args().First()

	if c.Bool("tui") {
		return cli.Exit("--tui is not supported for goto", 1)
	}

	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return cli.Exit(err.Error(), exitArchiveFailure)
	}
	archivePath, err := resolveArchive(c, cfg)
	if err != nil {
		return cli.Exit(err.Error(), exitArchiveFailure)
	}

	choice := backendChoice{
		backend: resolveString(c, "backend", cfg.Host.Backend),
		scene:   resolveString(c, "scene", cfg.Host.Scene),
		command: resolveString(c, "host-cmd", cfg.Host.Command),
		args:    c.StringSlice("host-arg"),
	}
	if choice.backend == "" {
		choice.backend = session.BackendNone
	}
	if len(choice.args) == 0 {
		choice.args = cfg.Host.Args
	}
	if err := validateBackendChoice(choice); err != nil {
		return cli.Exit(fmt.Sprintf("invalid host config: %v", err), exitHostUnavailable)
	}

	// Set up context with signal handling; the context governs the
	// lifetime of a bridge host subprocess.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	sess, err := session.Open(ctx, &session.Config{
		ArchivePath: archivePath,
		Backend:     choice.backend,
		ScenePath:   choice.scene,
		HostCommand: choice.command,
		HostArgs:    choice.args,
		LogLevel:    cliLogLevel(cfg),
	})
	if err != nil {
		if errors.Is(err, host.ErrHostUnavailable) {
			return cli.Exit(fmt.Sprintf("cannot start host: %v", err), exitHostUnavailable)
		}
		return cli.Exit(fmt.Sprintf("cannot open session: %v", err), exitArchiveFailure)
	}
	defer func() { _ = sess.Close() }()

	res, err := sess.GoTo(ctx, issueID)
	if err != nil {
		if errors.Is(err, session.ErrNoIssue) {
			return cli.Exit(fmt.Sprintf("no issue %q in archive", issueID), exitLocateFailure)
		}
		return cli.Exit(fmt.Sprintf("action failed: %v", err), exitArchiveFailure)
	}

	if !c.Bool("quiet") {
		if err := r.Render(actionViewFromResult(res)); err != nil {
			return err
		}
	}

	return cli.Exit("", res.Outcome.Status.ExitCode())
}

// validateBackendChoice checks the host selection before a session is
// opened, so misconfiguration fails with a flag-level message.
func validateBackendChoice(choice backendChoice) error {
	switch choice.backend {
	case session.BackendScene:
		if choice.command != "" {
			fmt.Fprintf(os.Stderr, "Warning: --host-cmd ignored for scene backend\n")
		}
		return nil

	case session.BackendBridge:
		if choice.command == "" {
			return fmt.Errorf("bridge backend requires --host-cmd (path to the viewer host binary)")
		}
		return nil

	case session.BackendNone:
		if choice.scene != "" || choice.command != "" {
			fmt.Fprintf(os.Stderr, "Warning: host flags ignored for none backend\n")
		}
		return nil

	default:
		return fmt.Errorf("invalid backend: %s (must be scene, bridge, or none)", choice.backend)
	}
}

// actionView flattens an ActionResult for rendering.
type actionView struct {
	Status     string                 `json:"status" yaml:"status"`
	Message    string                 `json:"message" yaml:"message"`
	IssueID    string                 `json:"issue_id" yaml:"issue_id"`
	ActionID   string                 `json:"action_id" yaml:"action_id"`
	Handle     string                 `json:"handle,omitempty" yaml:"handle,omitempty"`
	Center     *geom.Vec3             `json:"center,omitempty" yaml:"center,omitempty"`
	Height     *float64               `json:"height,omitempty" yaml:"height,omitempty"`
	Selected   bool                   `json:"selected" yaml:"selected"`
	Retries    int                    `json:"retries,omitempty" yaml:"retries,omitempty"`
	Camera     *types.CameraTransform `json:"camera,omitempty" yaml:"camera,omitempty"`
	Notes      []string               `json:"notes,omitempty" yaml:"notes,omitempty"`
	DurationMS int64                  `json:"duration_ms" yaml:"duration_ms"`
}

// actionViewFromResult flattens the nested action result into one
// renderable record. Center and height only appear when the framing
// pass applied a view.
func actionViewFromResult(res *types.ActionResult) actionView {
	v := actionView{
		Status:     string(res.Outcome.Status),
		Message:    res.Outcome.Message,
		IssueID:    res.Meta.IssueID,
		ActionID:   res.Meta.ActionID,
		Camera:     res.Camera,
		Notes:      res.Notes,
		DurationMS: res.DurationMS,
	}
	if f := res.Framing; f != nil {
		if f.Handle != 0 {
			v.Handle = locate.FormatHandle(host.Handle(f.Handle))
		}
		if f.Outcome == types.FramingApplied {
			center := f.Center
			height := f.Height
			v.Center = &center
			v.Height = &height
		}
		v.Selected = f.Selected
		if f.ExtentsRetried {
			v.Retries++
		}
		if f.SelectionRetried {
			v.Retries++
		}
	}
	return v
}
