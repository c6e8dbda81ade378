// Package scene provides a file-backed stand-in for a modeling host.
//
// A scene is loaded from a small YAML document describing the current
// view and the entities the model contains, including per-entity
// failure injection for exercising retry paths. The same simulator
// backs the "scene" host backend in-process and the sightline-scenehost
// subprocess over the wire.
package scene

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/glasswing-io/sightline/geom"
	"github.com/glasswing-io/sightline/host"
	"github.com/glasswing-io/sightline/locate"
	"github.com/glasswing-io/sightline/types"
)

//go:embed demo_scene.yaml
var demoScene []byte

// sceneFile is the on-disk scene schema. Handles are written in the
// same hex-first syntax entity references use everywhere else.
type sceneFile struct {
	View     viewSpec     `yaml:"view"`
	Entities []entitySpec `yaml:"entities"`
}

type viewSpec struct {
	Target    geom.Vec3 `yaml:"target"`
	Height    float64   `yaml:"height"`
	Direction geom.Vec3 `yaml:"direction"`
	Up        geom.Vec3 `yaml:"up"`
}

type entitySpec struct {
	Handle string    `yaml:"handle"`
	Name   string    `yaml:"name"`
	Box    *geom.Box `yaml:"box,omitempty"`

	// FlakyExtents fails that many bounding-box calls before the
	// entity starts answering; FlakySelection does the same for
	// selection calls.
	FlakyExtents   int `yaml:"flaky_extents,omitempty"`
	FlakySelection int `yaml:"flaky_selection,omitempty"`
}

// record is the in-memory state of one scene entity.
type record struct {
	entity   host.Entity
	box      *geom.Box
	flakyBox int
	flakySel int
}

// Host is an in-memory scene implementing the host gateway. All state
// changes happen under the document lock.
type Host struct {
	mu        sync.Mutex
	records   map[host.Handle]*record
	view      types.ViewState
	selection []host.Entity
	closed    bool
}

// Load reads a scene file from disk.
func Load(path string) (*Host, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("scene: open %s: %w", path, err)
	}
	defer f.Close()
	return FromReader(f)
}

// FromReader decodes a scene document. Unknown fields are rejected so
// typos in hand-written scenes surface as load errors.
func FromReader(r io.Reader) (*Host, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var file sceneFile
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("scene: decode: %w", err)
	}
	return build(file)
}

// Demo returns the demonstration scene compiled into the binary.
func Demo() (*Host, error) {
	return FromReader(bytes.NewReader(demoScene))
}

func build(file sceneFile) (*Host, error) {
	if file.View.Height <= 0 {
		return nil, fmt.Errorf("scene: view height must be positive, got %v", file.View.Height)
	}
	if file.View.Direction.IsZero() {
		return nil, errors.New("scene: view direction must not be zero")
	}

	s := &Host{
		records: make(map[host.Handle]*record, len(file.Entities)),
		view: types.ViewState{
			Target:    file.View.Target,
			Height:    file.View.Height,
			Direction: file.View.Direction,
			Up:        file.View.Up,
		},
	}
	for i, spec := range file.Entities {
		h, err := locate.ParseHandle(spec.Handle)
		if err != nil {
			return nil, fmt.Errorf("scene: entity %d: %w", i, err)
		}
		if _, dup := s.records[h]; dup {
			return nil, fmt.Errorf("scene: duplicate handle %s", locate.FormatHandle(h))
		}
		if spec.FlakyExtents < 0 || spec.FlakySelection < 0 {
			return nil, fmt.Errorf("scene: entity %s: failure counts must not be negative", spec.Handle)
		}
		s.records[h] = &record{
			entity:   host.Entity{Handle: h, Name: spec.Name},
			box:      spec.Box,
			flakyBox: spec.FlakyExtents,
			flakySel: spec.FlakySelection,
		}
	}
	return s, nil
}

// Ready reports whether the scene can take calls.
func (s *Host) Ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return host.NewHostError(host.ErrHostUnavailable, "ready", 0, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return host.NewHostError(host.ErrHostUnavailable, "ready", 0, errors.New("scene closed"))
	}
	return nil
}

// Lock acquires the document lock and returns the transaction bound to
// it. The transaction stays valid until Unlock. Callers that do not
// need to hold the lock across calls should use WithDocumentLock.
func (s *Host) Lock(ctx context.Context) (host.Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, host.NewHostError(host.ErrHostUnavailable, "lock", 0, err)
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, host.NewHostError(host.ErrHostUnavailable, "lock", 0, errors.New("scene closed"))
	}
	return &tx{scene: s}, nil
}

// Unlock releases the document lock taken by Lock.
func (s *Host) Unlock() {
	s.mu.Unlock()
}

// WithDocumentLock runs fn under the document lock. The lock is
// released when fn returns, errors, or panics.
func (s *Host) WithDocumentLock(ctx context.Context, fn func(host.Tx) error) error {
	t, err := s.Lock(ctx)
	if err != nil {
		return err
	}
	defer s.Unlock()
	return fn(t)
}

// Close marks the scene unavailable. Subsequent locks fail.
func (s *Host) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// View returns the scene's current view state.
func (s *Host) View() types.ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// Selection returns a copy of the currently selected entities.
func (s *Host) Selection() []host.Entity {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]host.Entity, len(s.selection))
	copy(out, s.selection)
	return out
}

// EntityCount returns the number of entities in the scene.
func (s *Host) EntityCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// tx is the transaction handed out while the document lock is held.
type tx struct {
	scene *Host
}

func (t *tx) ResolveHandle(h host.Handle) (host.Entity, error) {
	rec, ok := t.scene.records[h]
	if !ok {
		return host.Entity{}, host.NewHostError(host.ErrEntityNotFound, "resolve", h, nil)
	}
	return rec.entity, nil
}

func (t *tx) BoundingBox(e host.Entity) (geom.Box, error) {
	rec, ok := t.scene.records[e.Handle]
	if !ok {
		return geom.Box{}, host.NewHostError(host.ErrEntityNotFound, "bbox", e.Handle, nil)
	}
	if rec.flakyBox > 0 {
		rec.flakyBox--
		return geom.Box{}, host.NewHostError(host.ErrExtentsUnavailable, "bbox", e.Handle,
			errors.New("extents not ready"))
	}
	if rec.box == nil {
		return geom.Box{}, host.NewHostError(host.ErrExtentsUnavailable, "bbox", e.Handle,
			errors.New("no geometry for entity"))
	}
	return *rec.box, nil
}

func (t *tx) CurrentView() (types.ViewState, error) {
	return t.scene.view, nil
}

func (t *tx) SetView(v types.ViewState) error {
	t.scene.view = v
	return nil
}

func (t *tx) SetSelection(entities []host.Entity) error {
	for _, e := range entities {
		rec, ok := t.scene.records[e.Handle]
		if !ok {
			return host.NewHostError(host.ErrEntityNotFound, "select", e.Handle, nil)
		}
		if rec.flakySel > 0 {
			rec.flakySel--
			return host.NewHostError(host.ErrHostUnavailable, "select", e.Handle,
				errors.New("selection rejected"))
		}
	}
	t.scene.selection = append(t.scene.selection[:0], entities...)
	return nil
}

func (t *tx) QueryHandle(h host.Handle) (host.Entity, error) {
	rec, ok := t.scene.records[h]
	if !ok {
		return host.Entity{}, host.NewHostError(host.ErrEntityNotFound, "query", h, nil)
	}
	return rec.entity, nil
}
