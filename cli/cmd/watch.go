package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/urfave/cli/v2"

	"github.com/glasswing-io/sightline/bcf"
)

// WatchCommand returns the watch command.
func WatchCommand() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Watch a BCF archive and report issue counts on every change",
		Flags: append(ArchiveFlags(),
			&cli.DurationFlag{
				Name:  "debounce",
				Usage: "Delay before reloading after a change",
				Value: 500 * time.Millisecond,
			},
		),
		Action: watchAction,
	}
}

func watchAction(c *cli.Context) error {
	if c.Bool("tui") {
		return cli.Exit("--tui is not supported for watch", 1)
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return cli.Exit(err.Error(), exitArchiveFailure)
	}
	archivePath, err := resolveArchive(c, cfg)
	if err != nil {
		return cli.Exit(err.Error(), exitArchiveFailure)
	}
	debounce := resolveDuration(c, "debounce", cfg.Watch.Debounce.Duration)

	// The first load must succeed; later reload failures are transient
	// (an editor mid-save, a half-copied file) and only warn.
	if err := reportArchive(archivePath); err != nil {
		return cli.Exit(fmt.Sprintf("cannot open archive: %v", err), exitArchiveFailure)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return cli.Exit(fmt.Sprintf("cannot start watcher: %v", err), exitArchiveFailure)
	}
	defer watcher.Close()

	// Watch the directory, not the file: editors that save by
	// write-temp-then-rename would silently detach a file watch.
	if err := watcher.Add(filepath.Dir(archivePath)); err != nil {
		return cli.Exit(fmt.Sprintf("cannot watch %s: %v", filepath.Dir(archivePath), err), exitArchiveFailure)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	target := filepath.Clean(archivePath)
	var timer *time.Timer
	var timerCh <-chan time.Time

	for {
		select {
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !archiveEvent(ev, target) {
				continue
			}
			// Restart the debounce window. A rename-style save fires
			// Remove then Create back to back; one reload covers both.
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(debounce)
			timerCh = timer.C

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "Warning: watch error: %v\n", err)

		case <-timerCh:
			timerCh = nil
			if err := reportArchive(archivePath); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: reload failed: %v\n", err)
			}

		case <-sigCh:
			return nil
		}
	}
}

// archiveEvent reports whether the event touches the watched archive
// in a way that warrants a reload. Chmod-only events do not.
func archiveEvent(ev fsnotify.Event, target string) bool {
	if filepath.Clean(ev.Name) != target {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) ||
		ev.Has(fsnotify.Rename) || ev.Has(fsnotify.Remove)
}

// reportArchive loads the archive and prints a one-line summary.
func reportArchive(path string) error {
	arch, err := bcf.Open(path)
	if err != nil {
		return err
	}
	fmt.Printf("%s  %s: %d issues, %d skipped\n",
		time.Now().Format(time.RFC3339), filepath.Base(path),
		len(arch.Issues), len(arch.Failures))
	return nil
}
