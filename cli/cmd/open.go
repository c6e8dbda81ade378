package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/glasswing-io/sightline/bcf"
	"github.com/glasswing-io/sightline/cli/config"
	"github.com/glasswing-io/sightline/cli/reader"
)

// defaultConfigFile is picked up from the working directory when
// --config is not given.
const defaultConfigFile = "sightline.yaml"

// loadConfig reads the config file named by --config. Without the flag,
// a sightline.yaml in the working directory is used when present; a
// missing default file is not an error, a missing named one is.
func loadConfig(c *cli.Context) (*config.Config, error) {
	if path := c.String("config"); path != "" {
		return config.Load(path)
	}
	if _, err := os.Stat(defaultConfigFile); err == nil {
		return config.Load(defaultConfigFile)
	}
	return &config.Config{}, nil
}

// resolveArchive returns the archive path: the --archive flag wins,
// then the config file.
func resolveArchive(c *cli.Context, cfg *config.Config) (string, error) {
	path := resolveString(c, "archive", cfg.Archive)
	if path == "" {
		return "", errors.New("no archive given: pass --archive or set archive in sightline.yaml")
	}
	return path, nil
}

// resolveString resolves a string setting: an explicitly set flag wins,
// then the config value, then the flag's default.
func resolveString(c *cli.Context, name, configVal string) string {
	if c.IsSet(name) {
		return c.String(name)
	}
	if configVal != "" {
		return configVal
	}
	return c.String(name)
}

// resolveDuration resolves a duration setting with the same precedence
// as resolveString.
func resolveDuration(c *cli.Context, name string, configVal time.Duration) time.Duration {
	if c.IsSet(name) {
		return c.Duration(name)
	}
	if configVal != 0 {
		return configVal
	}
	return c.Duration(name)
}

// cliLogLevel keeps interactive output readable: the config value wins,
// otherwise only warnings and errors reach stderr.
func cliLogLevel(cfg *config.Config) string {
	if cfg.Log.Level != "" {
		return cfg.Log.Level
	}
	return "warn"
}

// openArchive loads the archive named by flags or config and installs
// an archive-backed reader as the package default, so the TUI browses
// the same records the command renders.
func openArchive(c *cli.Context) (*reader.Archive, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, cli.Exit(err.Error(), exitArchiveFailure)
	}
	path, err := resolveArchive(c, cfg)
	if err != nil {
		return nil, cli.Exit(err.Error(), exitArchiveFailure)
	}

	arch, err := bcf.Open(path)
	if err != nil {
		return nil, cli.Exit(fmt.Sprintf("cannot open archive: %v", err), exitArchiveFailure)
	}
	if n := len(arch.Failures); n > 0 && isStderrTTY() {
		fmt.Fprintf(os.Stderr, "Warning: %d issue folder(s) skipped during load; see stats for details.\n\n", n)
	}

	rd := reader.FromArchive(arch)
	reader.SetReader(rd)
	return rd, nil
}
