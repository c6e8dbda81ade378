// Package host defines the capability surface the viewpoint engine
// needs from a CAD host: resolve a handle, measure an entity, read and
// write the current view, change the selection. Everything runs inside
// a scoped document lock so the engine never observes a half-mutated
// document.
//
// Two implementations exist: host/scene, an in-process simulator
// backed by a scene file, and host/bridge, a subprocess speaking the
// ipc frame protocol. The engine cannot tell them apart.
package host

import (
	"context"

	"github.com/glasswing-io/sightline/geom"
	"github.com/glasswing-io/sightline/types"
)

// Handle is a numeric entity handle in host space.
type Handle uint64

// Entity is a resolved host object. The zero Entity is not valid;
// entities only come from ResolveHandle or QueryHandle.
type Entity struct {
	Handle Handle
	Name   string
}

// Host is one connected host session.
type Host interface {
	// Ready reports whether a usable host document is open. A failure
	// classifies as host-unavailable and aborts the calling action.
	Ready(ctx context.Context) error

	// WithDocumentLock runs fn against the locked document. The lock is
	// released when fn returns, errors, or panics; fn must not retain
	// the Tx past its own return.
	WithDocumentLock(ctx context.Context, fn func(Tx) error) error

	// Close tears the session down. Safe to call more than once.
	Close() error
}

// Tx is the locked-document view of a host. All calls are synchronous
// and blocking.
type Tx interface {
	// ResolveHandle looks a handle up in the open document.
	ResolveHandle(h Handle) (Entity, error)

	// BoundingBox measures an entity. Hosts are allowed to fail this
	// transiently; callers own the retry policy.
	BoundingBox(e Entity) (geom.Box, error)

	// CurrentView reads the active view.
	CurrentView() (types.ViewState, error)

	// SetView replaces the active view.
	SetView(v types.ViewState) error

	// SetSelection replaces the current selection.
	SetSelection(entities []Entity) error

	// QueryHandle is the filtered-query fallback used when direct
	// selection fails: it scans the document for the handle instead of
	// resolving it directly.
	QueryHandle(h Handle) (Entity, error)
}

// Nop is a Host with no document. Every call reports host-unavailable.
// It backs the "none" backend so read-only commands can run without
// any host wiring.
type Nop struct{}

// Ready implements Host.
func (Nop) Ready(context.Context) error {
	return NewHostError(ErrHostUnavailable, "ready", 0, nil)
}

// WithDocumentLock implements Host.
func (Nop) WithDocumentLock(context.Context, func(Tx) error) error {
	return NewHostError(ErrHostUnavailable, "lock", 0, nil)
}

// Close implements Host.
func (Nop) Close() error { return nil }
