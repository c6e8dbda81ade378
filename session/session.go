// Package session owns one loaded archive and at most one host
// connection, and runs the engine's actions against them.
//
// A session is explicit state: open it, use it, close it. There are no
// process-wide singletons. Actions serialize on the session mutex, so
// a session never holds more than one document lock at a time.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"

	"github.com/glasswing-io/sightline/bcf"
	"github.com/glasswing-io/sightline/display"
	"github.com/glasswing-io/sightline/host"
	"github.com/glasswing-io/sightline/host/bridge"
	"github.com/glasswing-io/sightline/host/scene"
	"github.com/glasswing-io/sightline/locate"
	"github.com/glasswing-io/sightline/log"
	"github.com/glasswing-io/sightline/metrics"
	"github.com/glasswing-io/sightline/types"
)

// Host backend names accepted by Config.Backend.
const (
	// BackendScene runs the in-process scene simulator.
	BackendScene = "scene"
	// BackendBridge launches a host subprocess and speaks the ipc frame
	// protocol to it over stdio.
	BackendBridge = "bridge"
	// BackendNone wires no host; locate actions end host_unavailable.
	BackendNone = "none"
)

// ErrNoIssue is returned when an action names an issue the archive
// does not contain.
var ErrNoIssue = errors.New("session: no such issue")

// ErrClosed is returned by calls made after Close.
var ErrClosed = errors.New("session: closed")

// Config configures a session.
type Config struct {
	// ArchivePath is the BCF archive to load (required).
	ArchivePath string
	// Backend selects the host implementation: scene, bridge, or none.
	// Empty means none.
	Backend string
	// ScenePath is the scene file for the scene backend. Empty selects
	// the embedded demo scene.
	ScenePath string
	// HostCommand is the host binary for the bridge backend.
	HostCommand string
	// HostArgs are extra arguments for the host binary.
	HostArgs []string
	// Display receives issue content and notices. Nil means discard.
	Display display.Sink
	// LogWriter overrides the log destination (default os.Stderr).
	LogWriter io.Writer
	// LogLevel drops log entries below the named level. Empty keeps
	// everything.
	LogLevel string
	// HostFactory overrides host construction (for testing). When set,
	// the host fields above are ignored.
	HostFactory func(ctx context.Context) (host.Host, error)
}

// Session is one open archive plus its host connection.
type Session struct {
	meta    types.SessionMeta
	archive *bcf.Archive
	host    host.Host
	framer  *locate.Framer
	sink    display.Sink
	logger  *log.Logger
	met     *metrics.Collector

	mu     sync.Mutex
	closed bool
}

// Open loads the archive named in cfg, builds the host backend, and
// returns a ready session. The context governs the lifetime of a
// bridge host subprocess; cancel it only once the session is done.
func Open(ctx context.Context, cfg *Config) (*Session, error) {
	if cfg.ArchivePath == "" {
		return nil, errors.New("session: archive path must be non-empty")
	}
	backend := cfg.Backend
	if backend == "" {
		backend = BackendNone
	}

	meta := types.SessionMeta{
		SessionID: uuid.NewString(),
		Archive:   cfg.ArchivePath,
	}
	if err := meta.Validate(); err != nil {
		return nil, fmt.Errorf("session: invalid identity: %w", err)
	}

	logger := log.NewLogger(&meta)
	if cfg.LogWriter != nil {
		logger = logger.WithOutput(cfg.LogWriter)
	}
	if cfg.LogLevel != "" {
		leveled, err := logger.WithLevel(cfg.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("session: %w", err)
		}
		logger = leveled
	}
	met := metrics.NewCollector(backend, cfg.ArchivePath, meta.SessionID)

	arch, err := bcf.Open(cfg.ArchivePath)
	if err != nil {
		return nil, fmt.Errorf("session: load archive: %w", err)
	}
	met.AbsorbArchiveStats(int64(len(arch.Issues)), int64(len(arch.Failures)))
	for _, f := range arch.Failures {
		logger.Warn("issue skipped", map[string]any{
			"issue": f.ID,
			"error": f.Err.Error(),
		})
	}

	h, err := buildHost(ctx, cfg, backend, met)
	if err != nil {
		return nil, err
	}

	sink := cfg.Display
	if sink == nil {
		sink = display.Null{}
	}

	logger.Info("session opened", map[string]any{
		"archive": cfg.ArchivePath,
		"issues":  len(arch.Issues),
		"skipped": len(arch.Failures),
		"backend": backend,
	})

	return &Session{
		meta:    meta,
		archive: arch,
		host:    h,
		framer:  locate.NewFramer(h),
		sink:    sink,
		logger:  logger,
		met:     met,
	}, nil
}

// buildHost constructs the host backend named in the config.
func buildHost(ctx context.Context, cfg *Config, backend string, met *metrics.Collector) (host.Host, error) {
	if cfg.HostFactory != nil {
		return cfg.HostFactory(ctx)
	}
	switch backend {
	case BackendScene:
		if cfg.ScenePath != "" {
			h, err := scene.Load(cfg.ScenePath)
			if err != nil {
				return nil, fmt.Errorf("session: load scene: %w", err)
			}
			return h, nil
		}
		h, err := scene.Demo()
		if err != nil {
			return nil, fmt.Errorf("session: embedded demo scene: %w", err)
		}
		return h, nil
	case BackendBridge:
		if cfg.HostCommand == "" {
			return nil, errors.New("session: bridge backend requires a host command")
		}
		c, err := bridge.Start(ctx, bridge.Config{
			Path:    cfg.HostCommand,
			Args:    cfg.HostArgs,
			Metrics: met,
		})
		if err != nil {
			return nil, fmt.Errorf("session: %w",
				host.NewHostError(host.ErrHostUnavailable, "start bridge", 0, err))
		}
		return c, nil
	case BackendNone:
		return host.Nop{}, nil
	default:
		return nil, fmt.Errorf("session: unknown host backend %q", backend)
	}
}

// Meta returns the session identity.
func (s *Session) Meta() types.SessionMeta { return s.meta }

// Issues returns the loaded issues, sorted by ID. The slice is shared;
// callers must not mutate it.
func (s *Session) Issues() []bcf.Issue { return s.archive.Issues }

// Issue returns one issue by ID.
func (s *Session) Issue(id string) (*bcf.Issue, bool) { return s.archive.Issue(id) }

// Failures returns the issue folders the archive load skipped.
func (s *Session) Failures() []bcf.LoadFailure { return s.archive.Failures }

// Stats returns a point-in-time copy of the session counters.
func (s *Session) Stats() metrics.Snapshot { return s.met.Snapshot() }

// Show pushes the issue's markup text and snapshot through the display
// sink. Sink failures are logged, never returned; only an unknown
// issue or a closed session fails the call.
func (s *Session) Show(ctx context.Context, issueID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	issue, ok := s.archive.Issue(issueID)
	if !ok {
		return fmt.Errorf("%w: %q", ErrNoIssue, issueID)
	}

	if err := s.sink.ShowText(issue.ID, issue.DisplayText()); err != nil {
		s.logger.Warn("display sink rejected text", map[string]any{
			"issue": issue.ID,
			"error": err.Error(),
		})
	}
	if len(issue.Snapshot) > 0 {
		if err := s.sink.ShowImage(issue.ID, issue.Snapshot); err != nil {
			s.logger.Warn("display sink rejected snapshot", map[string]any{
				"issue": issue.ID,
				"error": err.Error(),
			})
		}
	}
	return nil
}

// Close releases the host and the display sink. Safe to call more
// than once.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	var errs []error
	if err := s.host.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close host: %w", err))
	}
	if err := s.sink.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close display sink: %w", err))
	}
	s.logger.Info("session closed", map[string]any{
		"session_id": s.meta.SessionID,
	})
	// Sync failures on terminal streams are routine.
	_ = s.logger.Sync()
	return errors.Join(errs...)
}
