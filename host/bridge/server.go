package bridge

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/glasswing-io/sightline/host"
	"github.com/glasswing-io/sightline/ipc"
	"github.com/glasswing-io/sightline/types"
)

// Lockable is the host surface the server side drives: the gateway
// plus the explicit lock pair the wire protocol carries. The in-process
// scene simulator satisfies it.
type Lockable interface {
	host.Host
	Lock(ctx context.Context) (host.Tx, error)
	Unlock()
}

// Serve answers framed requests from r on w until bye, EOF, or a fatal
// frame error. One call serves one conversation; the peer owns request
// ordering. A lock still held when the conversation ends is released.
func Serve(ctx context.Context, h Lockable, r io.Reader, w io.Writer) error {
	s := &server{
		ctx:  ctx,
		host: h,
		dec:  ipc.NewFrameDecoder(r),
		enc:  ipc.NewFrameEncoder(w),
	}
	defer s.releaseLock()

	for {
		frame, err := s.dec.ReadFrame()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("bridge: read request: %w", err)
		}

		req, err := ipc.DecodeRequest(frame)
		if err != nil {
			// The frame arrived whole but did not decode. The stream
			// position is still good, so answer and keep serving.
			if werr := s.reply(s.errResponse(0, errors.New("malformed request"))); werr != nil {
				return werr
			}
			continue
		}

		resp := s.apply(req)
		if err := s.reply(resp); err != nil {
			return err
		}
		if req.Op == ipc.OpBye {
			return nil
		}
	}
}

type server struct {
	ctx  context.Context
	host Lockable
	dec  *ipc.FrameDecoder
	enc  *ipc.FrameEncoder

	tx     host.Tx
	locked bool
}

func (s *server) apply(req *ipc.Request) *ipc.Response {
	switch req.Op {
	case ipc.OpHello:
		return &ipc.Response{ID: req.ID, OK: true, Version: types.ProtocolVersion}

	case ipc.OpReady:
		if err := s.host.Ready(s.ctx); err != nil {
			return s.errResponse(req.ID, err)
		}
		return &ipc.Response{ID: req.ID, OK: true}

	case ipc.OpLock:
		if s.locked {
			return s.errResponse(req.ID, errors.New("document lock already held"))
		}
		tx, err := s.host.Lock(s.ctx)
		if err != nil {
			return s.errResponse(req.ID, err)
		}
		s.tx = tx
		s.locked = true
		return &ipc.Response{ID: req.ID, OK: true}

	case ipc.OpUnlock:
		if !s.locked {
			return s.errResponse(req.ID, errors.New("document lock not held"))
		}
		s.releaseLock()
		return &ipc.Response{ID: req.ID, OK: true}

	case ipc.OpBye:
		return &ipc.Response{ID: req.ID, OK: true}

	case ipc.OpResolve, ipc.OpBoundingBox, ipc.OpCurrentView, ipc.OpSetView, ipc.OpSelect, ipc.OpQuery:
		if !s.locked {
			return s.errResponse(req.ID, fmt.Errorf("%s requires the document lock", req.Op))
		}
		return s.applyLocked(req)

	default:
		return s.errResponse(req.ID, fmt.Errorf("unknown operation %q", req.Op))
	}
}

func (s *server) applyLocked(req *ipc.Request) *ipc.Response {
	switch req.Op {
	case ipc.OpResolve:
		e, err := s.tx.ResolveHandle(host.Handle(req.Handle))
		if err != nil {
			return s.errResponse(req.ID, err)
		}
		return &ipc.Response{ID: req.ID, OK: true, Handle: uint64(e.Handle), Name: e.Name}

	case ipc.OpBoundingBox:
		box, err := s.tx.BoundingBox(host.Entity{Handle: host.Handle(req.Handle)})
		if err != nil {
			return s.errResponse(req.ID, err)
		}
		return &ipc.Response{ID: req.ID, OK: true, Box: &box}

	case ipc.OpCurrentView:
		view, err := s.tx.CurrentView()
		if err != nil {
			return s.errResponse(req.ID, err)
		}
		return &ipc.Response{ID: req.ID, OK: true, View: &view}

	case ipc.OpSetView:
		if req.View == nil {
			return s.errResponse(req.ID, errors.New("set_view carried no view"))
		}
		if err := s.tx.SetView(*req.View); err != nil {
			return s.errResponse(req.ID, err)
		}
		return &ipc.Response{ID: req.ID, OK: true}

	case ipc.OpSelect:
		entities := make([]host.Entity, len(req.Handles))
		for i, h := range req.Handles {
			entities[i] = host.Entity{Handle: host.Handle(h)}
		}
		if err := s.tx.SetSelection(entities); err != nil {
			return s.errResponse(req.ID, err)
		}
		return &ipc.Response{ID: req.ID, OK: true}

	case ipc.OpQuery:
		e, err := s.tx.QueryHandle(host.Handle(req.Handle))
		if err != nil {
			return s.errResponse(req.ID, err)
		}
		return &ipc.Response{ID: req.ID, OK: true, Handle: uint64(e.Handle), Name: e.Name}
	}
	return s.errResponse(req.ID, fmt.Errorf("unknown operation %q", req.Op))
}

func (s *server) errResponse(id uint64, err error) *ipc.Response {
	return &ipc.Response{
		ID:      id,
		OK:      false,
		ErrKind: host.KindToWire(err),
		ErrMsg:  err.Error(),
	}
}

func (s *server) reply(resp *ipc.Response) error {
	payload, err := ipc.EncodeResponse(resp)
	if err != nil {
		return fmt.Errorf("bridge: encode response: %w", err)
	}
	if err := s.enc.WriteFrame(payload); err != nil {
		return fmt.Errorf("bridge: write response: %w", err)
	}
	return nil
}

func (s *server) releaseLock() {
	if s.locked {
		s.host.Unlock()
		s.tx = nil
		s.locked = false
	}
}
