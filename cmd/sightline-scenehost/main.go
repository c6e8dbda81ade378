// Package main provides the sightline-scenehost entrypoint.
//
// sightline-scenehost answers the framed host protocol on stdin/stdout,
// backed by a scene simulator instead of a real modeling host. The
// sightline CLI launches it as its bridge subprocess in demos and
// tests; anything speaking the protocol can drive it directly.
//
// Usage:
//
//	sightline-scenehost [--scene <path>] [--quiet]
//
// Exit codes:
//   - 0: conversation ended with bye, EOF, or a signal
//   - 1: unusable scene or transport failure
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/glasswing-io/sightline/host/bridge"
	"github.com/glasswing-io/sightline/host/scene"
	"github.com/glasswing-io/sightline/log"
	"github.com/glasswing-io/sightline/types"
)

func main() {
	app := &cli.App{
		Name:    "sightline-scenehost",
		Usage:   "Scene-backed host adapter speaking framed stdio",
		Version: types.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "scene",
				Usage: "Path to a scene YAML file (defaults to the embedded demo scene)",
			},
			&cli.BoolFlag{
				Name:  "quiet",
				Usage: "Suppress lifecycle logging",
			},
		},
		Action: serveAction,
	}

	if err := app.Run(os.Args); err != nil {
		os.Exit(1)
	}
}

func serveAction(c *cli.Context) error {
	source := c.String("scene")
	var (
		s   *scene.Host
		err error
	)
	if source != "" {
		s, err = scene.Load(source)
	} else {
		source = "embedded demo"
		s, err = scene.Demo()
	}
	if err != nil {
		return cli.Exit(fmt.Sprintf("scenehost: %v", err), 1)
	}
	defer func() { _ = s.Close() }()

	logger := log.NewLogger(&types.SessionMeta{SessionID: uuid.NewString()})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
		// Unblock the frame read so the serve loop can wind down.
		_ = os.Stdin.Close()
	}()

	if !c.Bool("quiet") {
		logger.Info("scene host serving", map[string]any{
			"scene":    source,
			"entities": s.EntityCount(),
			"protocol": types.ProtocolVersion,
		})
	}

	err = bridge.Serve(ctx, s, os.Stdin, os.Stdout)
	if err != nil && ctx.Err() == nil {
		logger.Error("scene host stopped", map[string]any{"error": err.Error()})
		return cli.Exit("", 1)
	}
	if !c.Bool("quiet") {
		logger.Info("scene host stopped", nil)
	}
	return nil
}
