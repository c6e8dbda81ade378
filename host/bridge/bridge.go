// Package bridge runs a host adapter as a subprocess and speaks the
// framed request/response protocol over its stdio.
//
// The conversation is strictly sequential: one request, one response,
// matched by ID. A transport failure anywhere marks the conversation
// broken and every later call fails fast with a host-unavailable
// error. The context passed to Start owns the process; cancelling it
// tears the subprocess down.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"

	"github.com/glasswing-io/sightline/geom"
	"github.com/glasswing-io/sightline/host"
	"github.com/glasswing-io/sightline/ipc"
	"github.com/glasswing-io/sightline/metrics"
	"github.com/glasswing-io/sightline/types"
)

// stderrTailSize bounds how much subprocess stderr is kept for error
// reports.
const stderrTailSize = 8 * 1024

// Config configures a bridged host subprocess.
type Config struct {
	// Path is the host adapter binary.
	Path string
	// Args are passed to the adapter verbatim.
	Args []string
	// Metrics receives bridge call counters. May be nil.
	Metrics *metrics.Collector
}

// Client is a host gateway backed by a subprocess.
type Client struct {
	cmd   *exec.Cmd
	stdin io.Closer
	enc   *ipc.FrameEncoder
	dec   *ipc.FrameDecoder
	tail  *tailBuffer
	met   *metrics.Collector

	mu     sync.Mutex
	nextID uint64
	broken bool
	closed bool
}

// Start launches the adapter and performs the version handshake. The
// returned client owns the process; Close reaps it.
func Start(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.Path == "" {
		return nil, errors.New("bridge: host command path is empty")
	}

	cmd := exec.CommandContext(ctx, cfg.Path, cfg.Args...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("bridge: stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("bridge: stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("bridge: stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		cfg.Metrics.IncHostLaunchFailure()
		return nil, fmt.Errorf("bridge: start %s: %w", cfg.Path, err)
	}

	c := &Client{
		cmd:   cmd,
		stdin: stdin,
		enc:   ipc.NewFrameEncoder(stdin),
		dec:   ipc.NewFrameDecoder(stdout),
		tail:  &tailBuffer{max: stderrTailSize},
		met:   cfg.Metrics,
	}
	// Keep stderr drained so the adapter never blocks writing
	// diagnostics; the tail shows up in transport errors.
	go func() { _, _ = io.Copy(c.tail, stderr) }()

	if err := c.handshake(); err != nil {
		_ = c.kill()
		_ = cmd.Wait()
		cfg.Metrics.IncHostLaunchFailure()
		return nil, err
	}
	cfg.Metrics.IncHostLaunchSuccess()
	return c, nil
}

func (c *Client) handshake() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	resp, err := c.roundTrip(ipc.Request{Op: ipc.OpHello, Version: types.ProtocolVersion})
	if err != nil {
		return err
	}
	if resp.Version != types.ProtocolVersion {
		c.broken = true
		return fmt.Errorf("bridge: host protocol version %q does not match %q",
			resp.Version, types.ProtocolVersion)
	}
	return nil
}

// Ready asks the adapter whether a usable document is open.
func (c *Client) Ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return host.NewHostError(host.ErrHostUnavailable, ipc.OpReady, 0, err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return host.NewHostError(host.ErrHostUnavailable, ipc.OpReady, 0, errors.New("bridge: client closed"))
	}
	_, err := c.roundTrip(ipc.Request{Op: ipc.OpReady})
	return err
}

// WithDocumentLock acquires the adapter's document lock, runs fn, and
// releases the lock when fn returns, errors, or panics.
func (c *Client) WithDocumentLock(ctx context.Context, fn func(host.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return host.NewHostError(host.ErrHostUnavailable, ipc.OpLock, 0, err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return host.NewHostError(host.ErrHostUnavailable, ipc.OpLock, 0, errors.New("bridge: client closed"))
	}

	if _, err := c.roundTrip(ipc.Request{Op: ipc.OpLock}); err != nil {
		return err
	}
	defer func() {
		_, _ = c.roundTrip(ipc.Request{Op: ipc.OpUnlock})
	}()
	return fn(&tx{client: c})
}

// Close says goodbye, closes stdin, and reaps the subprocess. Safe to
// call more than once.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true

	if !c.broken {
		_, _ = c.roundTrip(ipc.Request{Op: ipc.OpBye})
	}
	if c.stdin != nil {
		_ = c.stdin.Close()
	}
	if c.cmd != nil {
		if err := c.cmd.Wait(); err != nil {
			var exitErr *exec.ExitError
			if !errors.As(err, &exitErr) {
				return fmt.Errorf("bridge: wait: %w", err)
			}
		}
	}
	return nil
}

func (c *Client) kill() error {
	if c.cmd != nil && c.cmd.Process != nil {
		return c.cmd.Process.Kill()
	}
	return nil
}

// roundTrip sends one request and reads its response. Callers hold
// c.mu.
func (c *Client) roundTrip(req ipc.Request) (*ipc.Response, error) {
	h := host.Handle(req.Handle)
	if c.broken {
		return nil, host.NewHostError(host.ErrHostUnavailable, req.Op, h,
			errors.New("bridge: conversation is broken"))
	}

	c.nextID++
	req.ID = c.nextID
	c.met.IncBridgeCall()

	payload, err := ipc.EncodeRequest(&req)
	if err != nil {
		return nil, host.NewHostError(host.ErrHostUnavailable, req.Op, h, err)
	}
	if err := c.enc.WriteFrame(payload); err != nil {
		c.broken = true
		return nil, c.transportError(req.Op, h, err)
	}

	frame, err := c.dec.ReadFrame()
	if err != nil {
		c.broken = true
		return nil, c.transportError(req.Op, h, err)
	}
	resp, err := ipc.DecodeResponse(frame)
	if err != nil {
		// Pairing is lost once a response fails to decode.
		c.met.IncIPCDecodeErrors()
		c.broken = true
		return nil, c.transportError(req.Op, h, err)
	}
	if resp.ID != req.ID {
		c.broken = true
		return nil, c.transportError(req.Op, h,
			fmt.Errorf("response id %d does not match request id %d", resp.ID, req.ID))
	}

	if !resp.OK {
		kind := host.KindFromWire(resp.ErrKind)
		if kind == nil {
			kind = host.ErrHostUnavailable
		}
		var cause error
		if resp.ErrMsg != "" {
			cause = errors.New(resp.ErrMsg)
		}
		return resp, host.NewHostError(kind, req.Op, h, cause)
	}
	return resp, nil
}

// transportError wraps a stream failure as host-unavailable, attaching
// whatever the subprocess said on stderr.
func (c *Client) transportError(op string, h host.Handle, err error) error {
	if tail := c.tail.String(); tail != "" {
		err = fmt.Errorf("%w (host stderr: %s)", err, tail)
	}
	return host.NewHostError(host.ErrHostUnavailable, op, h, err)
}

// tx issues document operations while the adapter holds its lock.
type tx struct {
	client *Client
}

func (t *tx) ResolveHandle(h host.Handle) (host.Entity, error) {
	resp, err := t.client.roundTrip(ipc.Request{Op: ipc.OpResolve, Handle: uint64(h)})
	if err != nil {
		return host.Entity{}, err
	}
	return host.Entity{Handle: host.Handle(resp.Handle), Name: resp.Name}, nil
}

func (t *tx) BoundingBox(e host.Entity) (geom.Box, error) {
	resp, err := t.client.roundTrip(ipc.Request{Op: ipc.OpBoundingBox, Handle: uint64(e.Handle)})
	if err != nil {
		return geom.Box{}, err
	}
	if resp.Box == nil {
		return geom.Box{}, host.NewHostError(host.ErrExtentsUnavailable, ipc.OpBoundingBox, e.Handle,
			errors.New("response carried no box"))
	}
	return *resp.Box, nil
}

func (t *tx) CurrentView() (types.ViewState, error) {
	resp, err := t.client.roundTrip(ipc.Request{Op: ipc.OpCurrentView})
	if err != nil {
		return types.ViewState{}, err
	}
	if resp.View == nil {
		return types.ViewState{}, host.NewHostError(host.ErrHostUnavailable, ipc.OpCurrentView, 0,
			errors.New("response carried no view"))
	}
	return *resp.View, nil
}

func (t *tx) SetView(v types.ViewState) error {
	_, err := t.client.roundTrip(ipc.Request{Op: ipc.OpSetView, View: &v})
	return err
}

func (t *tx) SetSelection(entities []host.Entity) error {
	handles := make([]uint64, len(entities))
	for i, e := range entities {
		handles[i] = uint64(e.Handle)
	}
	_, err := t.client.roundTrip(ipc.Request{Op: ipc.OpSelect, Handles: handles})
	return err
}

func (t *tx) QueryHandle(h host.Handle) (host.Entity, error) {
	resp, err := t.client.roundTrip(ipc.Request{Op: ipc.OpQuery, Handle: uint64(h)})
	if err != nil {
		return host.Entity{}, err
	}
	return host.Entity{Handle: host.Handle(resp.Handle), Name: resp.Name}, nil
}

// tailBuffer keeps the last max bytes written to it.
type tailBuffer struct {
	mu  sync.Mutex
	max int
	buf []byte
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buf = append(t.buf, p...)
	if len(t.buf) > t.max {
		t.buf = t.buf[len(t.buf)-t.max:]
	}
	return len(p), nil
}

func (t *tailBuffer) String() string {
	if t == nil {
		return ""
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return string(t.buf)
}
