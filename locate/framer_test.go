package locate

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/glasswing-io/sightline/geom"
	"github.com/glasswing-io/sightline/host"
	"github.com/glasswing-io/sightline/types"
)

// fakeTx scripts host behavior per test: remaining failure counts
// drain as calls arrive.
type fakeTx struct {
	entities       map[host.Handle]host.Entity
	boxes          map[host.Handle]geom.Box
	bboxFailures   int
	selectFailures int
	queryFails     bool

	bboxCalls   int
	selectCalls int
	view        types.ViewState
	viewWrites  int
	selection   []host.Entity
}

func (f *fakeTx) ResolveHandle(h host.Handle) (host.Entity, error) {
	e, ok := f.entities[h]
	if !ok {
		return host.Entity{}, host.NewHostError(host.ErrEntityNotFound, "resolve", h, nil)
	}
	return e, nil
}

func (f *fakeTx) BoundingBox(e host.Entity) (geom.Box, error) {
	f.bboxCalls++
	if f.bboxFailures > 0 {
		f.bboxFailures--
		return geom.Box{}, host.NewHostError(host.ErrExtentsUnavailable, "bbox", e.Handle, errors.New("transient extents failure"))
	}
	box, ok := f.boxes[e.Handle]
	if !ok {
		return geom.Box{}, host.NewHostError(host.ErrExtentsUnavailable, "bbox", e.Handle, nil)
	}
	return box, nil
}

func (f *fakeTx) CurrentView() (types.ViewState, error) {
	return f.view, nil
}

func (f *fakeTx) SetView(v types.ViewState) error {
	f.view = v
	f.viewWrites++
	return nil
}

func (f *fakeTx) SetSelection(entities []host.Entity) error {
	f.selectCalls++
	if f.selectFailures > 0 {
		f.selectFailures--
		return errors.New("selection rejected")
	}
	f.selection = entities
	return nil
}

func (f *fakeTx) QueryHandle(h host.Handle) (host.Entity, error) {
	if f.queryFails {
		return host.Entity{}, host.NewHostError(host.ErrEntityNotFound, "query", h, nil)
	}
	return f.ResolveHandle(h)
}

type fakeHost struct {
	tx      *fakeTx
	lockErr error
	locks   int
}

func (f *fakeHost) Ready(context.Context) error { return nil }

func (f *fakeHost) WithDocumentLock(_ context.Context, fn func(host.Tx) error) error {
	if f.lockErr != nil {
		return f.lockErr
	}
	f.locks++
	return fn(f.tx)
}

func (f *fakeHost) Close() error { return nil }

// newFakeHost seeds one entity, handle 0xAB12, with a 2x2x2 box at the
// origin and a view looking down negative Z from afar.
func newFakeHost() *fakeHost {
	return &fakeHost{tx: &fakeTx{
		entities: map[host.Handle]host.Entity{
			0xAB12: {Handle: 0xAB12, Name: "entrance door"},
		},
		boxes: map[host.Handle]geom.Box{
			0xAB12: {Min: geom.Vec3{}, Max: geom.Vec3{X: 2, Y: 2, Z: 2}},
		},
		view: types.ViewState{
			Target:    geom.Vec3{X: 40, Y: 0, Z: 40},
			Height:    100,
			Direction: geom.Vec3{Z: -1},
			Up:        geom.Vec3{Y: 1},
		},
	}}
}

func TestGoTo_FramesAndSelects(t *testing.T) {
	fh := newFakeHost()
	res, err := NewFramer(fh).GoTo(context.Background(), "AB12")
	if err != nil {
		t.Fatalf("GoTo() error = %v", err)
	}

	if res.Outcome != types.FramingApplied {
		t.Errorf("Outcome = %v, want applied", res.Outcome)
	}
	if !res.Center.AlmostEqual(geom.Vec3{X: 1, Y: 1, Z: 1}, 1e-9) {
		t.Errorf("Center = %+v, want (1,1,1)", res.Center)
	}
	if math.Abs(res.Height-2.3) > 1e-9 {
		t.Errorf("Height = %v, want 2.3", res.Height)
	}
	if !res.Selected {
		t.Error("Selected = false, want true")
	}
	if res.ExtentsRetried || res.SelectionRetried {
		t.Error("retry flags set on the clean path")
	}

	// The view moved but kept its orientation.
	if !fh.tx.view.Target.AlmostEqual(res.Center, 1e-9) {
		t.Errorf("view target = %+v, want %+v", fh.tx.view.Target, res.Center)
	}
	if !fh.tx.view.Direction.AlmostEqual(geom.Vec3{Z: -1}, 1e-9) {
		t.Errorf("view direction changed: %+v", fh.tx.view.Direction)
	}
	if !fh.tx.view.Up.AlmostEqual(geom.Vec3{Y: 1}, 1e-9) {
		t.Errorf("view up changed: %+v", fh.tx.view.Up)
	}
}

func TestGoTo_InvalidHandleSkipsHost(t *testing.T) {
	fh := newFakeHost()
	res, err := NewFramer(fh).GoTo(context.Background(), "not-a-handle")

	if !errors.Is(err, ErrInvalidHandleFormat) {
		t.Errorf("error = %v, want ErrInvalidHandleFormat", err)
	}
	if res.Outcome != types.FramingInvalidHandle {
		t.Errorf("Outcome = %v, want invalid_handle", res.Outcome)
	}
	if fh.locks != 0 {
		t.Errorf("host was called %d times for an unparseable reference", fh.locks)
	}
}

func TestGoTo_EntityNotFound(t *testing.T) {
	fh := newFakeHost()
	res, err := NewFramer(fh).GoTo(context.Background(), "DEAD")

	if !errors.Is(err, host.ErrEntityNotFound) {
		t.Errorf("error = %v, want ErrEntityNotFound", err)
	}
	if res.Outcome != types.FramingEntityNotFound {
		t.Errorf("Outcome = %v, want entity_not_found", res.Outcome)
	}
	if fh.tx.viewWrites != 0 {
		t.Error("view was written for an unresolved entity")
	}
}

func TestGoTo_TransientExtentsRetries(t *testing.T) {
	fh := newFakeHost()
	fh.tx.bboxFailures = 1

	res, err := NewFramer(fh).GoTo(context.Background(), "AB12")
	if err != nil {
		t.Fatalf("GoTo() error = %v", err)
	}
	if res.Outcome != types.FramingApplied {
		t.Errorf("Outcome = %v, want applied after one retry", res.Outcome)
	}
	if !res.ExtentsRetried {
		t.Error("ExtentsRetried = false")
	}
	if fh.tx.bboxCalls != 2 {
		t.Errorf("bbox calls = %d, want 2", fh.tx.bboxCalls)
	}
}

func TestGoTo_PersistentExtentsSoftFails(t *testing.T) {
	fh := newFakeHost()
	fh.tx.bboxFailures = 2

	res, err := NewFramer(fh).GoTo(context.Background(), "AB12")
	if err != nil {
		t.Fatalf("GoTo() error = %v, soft failures must not error", err)
	}
	if res.Outcome != types.FramingExtentsUnavailable {
		t.Errorf("Outcome = %v, want extents_unavailable", res.Outcome)
	}
	if fh.tx.bboxCalls != 2 {
		t.Errorf("bbox calls = %d, want exactly 2 (one retry)", fh.tx.bboxCalls)
	}
	if fh.tx.viewWrites != 0 {
		t.Error("view was written without extents")
	}
	// Selection still runs on the soft path.
	if !res.Selected {
		t.Error("Selected = false, selection should not depend on extents")
	}
}

func TestGoTo_DegenerateBoxTreatedAsUnavailable(t *testing.T) {
	fh := newFakeHost()
	fh.tx.boxes[0xAB12] = geom.Box{
		Min: geom.Vec3{X: 1, Y: 1, Z: 1},
		Max: geom.Vec3{X: 1, Y: 1, Z: 1},
	}

	res, err := NewFramer(fh).GoTo(context.Background(), "AB12")
	if err != nil {
		t.Fatalf("GoTo() error = %v", err)
	}
	if res.Outcome != types.FramingExtentsUnavailable {
		t.Errorf("Outcome = %v, want extents_unavailable for a zero-diagonal box", res.Outcome)
	}
	if !res.ExtentsRetried {
		t.Error("degenerate data should trigger the one retry")
	}
}

func TestGoTo_HeightFloor(t *testing.T) {
	fh := newFakeHost()
	fh.tx.boxes[0xAB12] = geom.Box{
		Min: geom.Vec3{},
		Max: geom.Vec3{X: 1e-8, Y: 1e-8, Z: 1e-8},
	}

	res, err := NewFramer(fh).GoTo(context.Background(), "AB12")
	if err != nil {
		t.Fatalf("GoTo() error = %v", err)
	}
	if res.Outcome != types.FramingApplied {
		t.Fatalf("Outcome = %v, want applied", res.Outcome)
	}
	if res.Height < minHeight {
		t.Errorf("Height = %v, below the floor %v", res.Height, minHeight)
	}
}

func TestGoTo_SelectionFallback(t *testing.T) {
	fh := newFakeHost()
	fh.tx.selectFailures = 1

	res, err := NewFramer(fh).GoTo(context.Background(), "AB12")
	if err != nil {
		t.Fatalf("GoTo() error = %v", err)
	}
	if !res.SelectionRetried {
		t.Error("SelectionRetried = false")
	}
	if !res.Selected {
		t.Error("Selected = false, fallback query should have recovered")
	}
	if fh.tx.selectCalls != 2 {
		t.Errorf("selection calls = %d, want 2", fh.tx.selectCalls)
	}
}

func TestGoTo_SelectionUnchangedWhenBothAttemptsFail(t *testing.T) {
	fh := newFakeHost()
	fh.tx.selectFailures = 2

	res, err := NewFramer(fh).GoTo(context.Background(), "AB12")
	if err != nil {
		t.Fatalf("GoTo() error = %v, selection failures are soft", err)
	}
	if res.Outcome != types.FramingApplied {
		t.Errorf("Outcome = %v, want applied", res.Outcome)
	}
	if res.Selected {
		t.Error("Selected = true after both attempts failed")
	}
	if len(fh.tx.selection) != 0 {
		t.Errorf("selection mutated: %v", fh.tx.selection)
	}
}

func TestGoTo_Idempotent(t *testing.T) {
	fh := newFakeHost()
	framer := NewFramer(fh)

	first, err := framer.GoTo(context.Background(), "AB12")
	if err != nil {
		t.Fatalf("first GoTo() error = %v", err)
	}
	viewAfterFirst := fh.tx.view

	second, err := framer.GoTo(context.Background(), "AB12")
	if err != nil {
		t.Fatalf("second GoTo() error = %v", err)
	}

	if first != second {
		t.Errorf("results differ: %+v vs %+v", first, second)
	}
	if fh.tx.view != viewAfterFirst {
		t.Errorf("view drifted on reapplication: %+v vs %+v", fh.tx.view, viewAfterFirst)
	}
}

func TestGoTo_HostUnavailable(t *testing.T) {
	fh := newFakeHost()
	fh.lockErr = host.NewHostError(host.ErrHostUnavailable, "lock", 0, errors.New("no open document"))

	_, err := NewFramer(fh).GoTo(context.Background(), "AB12")
	if !errors.Is(err, host.ErrHostUnavailable) {
		t.Errorf("error = %v, want ErrHostUnavailable", err)
	}
}
