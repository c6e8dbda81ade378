package ipc

import (
	"github.com/vmihailenco/msgpack/v5"

	"github.com/glasswing-io/sightline/geom"
	"github.com/glasswing-io/sightline/types"
)

// Operations a bridge request can carry. Document-mutating operations
// must arrive between OpLock and OpUnlock; servers reject them outside
// a lock.
const (
	// OpHello opens the conversation and exchanges protocol versions.
	OpHello = "hello"
	// OpReady asks whether a usable host document is open.
	OpReady = "ready"
	// OpLock acquires the document lock.
	OpLock = "lock"
	// OpUnlock releases the document lock.
	OpUnlock = "unlock"
	// OpResolve resolves a handle to an entity.
	OpResolve = "resolve"
	// OpBoundingBox measures an entity's extents.
	OpBoundingBox = "bbox"
	// OpCurrentView reads the active view.
	OpCurrentView = "current_view"
	// OpSetView replaces the active view.
	OpSetView = "set_view"
	// OpSelect replaces the current selection.
	OpSelect = "select"
	// OpQuery scans the document for a handle (selection fallback).
	OpQuery = "query"
	// OpBye ends the conversation; the server exits after replying.
	OpBye = "bye"
)

// Request is one bridge request frame.
type Request struct {
	// ID is the request identifier, echoed on the response.
	ID uint64 `msgpack:"id"`
	// Op is the operation discriminator.
	Op string `msgpack:"op"`
	// Handle is the entity handle for resolve/bbox/query.
	Handle uint64 `msgpack:"handle,omitempty"`
	// Handles is the selection set for select.
	Handles []uint64 `msgpack:"handles,omitempty"`
	// View is the view to apply for set_view.
	View *types.ViewState `msgpack:"view,omitempty"`
	// Version is the caller's protocol version, sent with hello.
	Version string `msgpack:"version,omitempty"`
}

// Response is one bridge response frame.
type Response struct {
	// ID echoes the request identifier.
	ID uint64 `msgpack:"id"`
	// OK reports operation success. When false, ErrKind and ErrMsg
	// describe the failure.
	OK bool `msgpack:"ok"`
	// ErrKind is the classified failure kind string.
	ErrKind string `msgpack:"err_kind,omitempty"`
	// ErrMsg is the human-readable failure description.
	ErrMsg string `msgpack:"err_msg,omitempty"`
	// Handle is the resolved entity handle for resolve/query.
	Handle uint64 `msgpack:"handle,omitempty"`
	// Name is the resolved entity name for resolve/query.
	Name string `msgpack:"name,omitempty"`
	// Box carries extents for bbox.
	Box *geom.Box `msgpack:"box,omitempty"`
	// View carries the active view for current_view.
	View *types.ViewState `msgpack:"view,omitempty"`
	// Version is the server's protocol version, sent with hello.
	Version string `msgpack:"version,omitempty"`
}

// EncodeRequest marshals a request into a frame payload.
func EncodeRequest(req *Request) ([]byte, error) {
	payload, err := msgpack.Marshal(req)
	if err != nil {
		return nil, &FrameError{
			Kind: FrameErrorDecode,
			Msg:  "failed to encode request",
			Err:  err,
		}
	}
	return payload, nil
}

// DecodeRequest unmarshals a frame payload as a request.
func DecodeRequest(payload []byte) (*Request, error) {
	var req Request
	if err := msgpack.Unmarshal(payload, &req); err != nil {
		return nil, &FrameError{
			Kind: FrameErrorDecode,
			Msg:  "failed to decode request",
			Err:  err,
		}
	}
	return &req, nil
}

// EncodeResponse marshals a response into a frame payload.
func EncodeResponse(resp *Response) ([]byte, error) {
	payload, err := msgpack.Marshal(resp)
	if err != nil {
		return nil, &FrameError{
			Kind: FrameErrorDecode,
			Msg:  "failed to encode response",
			Err:  err,
		}
	}
	return payload, nil
}

// DecodeResponse unmarshals a frame payload as a response.
func DecodeResponse(payload []byte) (*Response, error) {
	var resp Response
	if err := msgpack.Unmarshal(payload, &resp); err != nil {
		return nil, &FrameError{
			Kind: FrameErrorDecode,
			Msg:  "failed to decode response",
			Err:  err,
		}
	}
	return &resp, nil
}
