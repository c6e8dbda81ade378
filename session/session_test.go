package session

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/glasswing-io/sightline/bcf"
	"github.com/glasswing-io/sightline/geom"
	"github.com/glasswing-io/sightline/host"
	"github.com/glasswing-io/sightline/host/scene"
	"github.com/glasswing-io/sightline/types"
)

const sessionScene = `
view:
  target: {x: 12, y: 4, z: 8}
  height: 45
  direction: {x: 0, y: 0, z: -1}
  up: {x: 0, y: 1, z: 0}
entities:
  - handle: AB12
    name: Entrance door
    box:
      min: {x: 0, y: 0, z: 0}
      max: {x: 2, y: 2, z: 2}
  - handle: BEEF
    name: Shaky wall
    flaky_extents: 2
    box:
      min: {x: 10, y: 0, z: 10}
      max: {x: 14, y: 12, z: 14}
`

const doorMarkup = `<Markup><Topic TopicStatus="Open"><Title>Door blocked</Title><Description>Swing hits the duct.</Description></Topic></Markup>`

const cameraBlock = `<PerspectiveCamera>` +
	`<CameraViewPoint><X>5</X><Y>1.7</Y><Z>9</Z></CameraViewPoint>` +
	`<CameraDirection><X>0</X><Y>0</Y><Z>-1</Z></CameraDirection>` +
	`<CameraUpVector><X>0</X><Y>1</Y><Z>0</Z></CameraUpVector>` +
	`<FieldOfView>60</FieldOfView>` +
	`</PerspectiveCamera>`

const cameraOnlyViewpoint = `<VisualizationInfo>` + cameraBlock + `</VisualizationInfo>`

func viewpointFor(ref string) string {
	return `<VisualizationInfo>` + cameraBlock +
		`<Components><Selection><Component IfcGuid="` + ref + `" Selected="true"/></Selection></Components>` +
		`</VisualizationInfo>`
}

// writeArchive builds a zip archive on disk from entry name to content.
func writeArchive(t *testing.T, entries map[string]string) string {
	t.Helper()

	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range names {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(entries[name])); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}

	path := filepath.Join(t.TempDir(), "issues.bcf")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write archive: %v", err)
	}
	return path
}

// sceneConfig returns a config whose host is a fresh scene simulator,
// plus the simulator itself for state assertions.
func sceneConfig(t *testing.T) (*Config, *scene.Host) {
	t.Helper()
	sc, err := scene.FromReader(strings.NewReader(sessionScene))
	if err != nil {
		t.Fatalf("scene: %v", err)
	}
	cfg := &Config{
		Backend:     BackendScene,
		HostFactory: func(context.Context) (host.Host, error) { return sc, nil },
	}
	return cfg, sc
}

func openSession(t *testing.T, cfg *Config, entries map[string]string) *Session {
	t.Helper()
	cfg.ArchivePath = writeArchive(t, entries)
	cfg.LogWriter = io.Discard
	s, err := Open(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpen_RequiresArchive(t *testing.T) {
	if _, err := Open(context.Background(), &Config{}); err == nil {
		t.Fatal("Open accepted an empty archive path")
	}
}

func TestOpen_MissingArchiveFile(t *testing.T) {
	_, err := Open(context.Background(), &Config{
		ArchivePath: filepath.Join(t.TempDir(), "nope.bcf"),
		LogWriter:   io.Discard,
	})
	if !errors.Is(err, bcf.ErrArchiveRead) {
		t.Fatalf("err = %v, want archive read failure", err)
	}
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), &Config{
		ArchivePath: writeArchive(t, map[string]string{"a/markup.bcf": doorMarkup}),
		Backend:     "teleport",
		LogWriter:   io.Discard,
	})
	if err == nil || !strings.Contains(err.Error(), "unknown host backend") {
		t.Fatalf("err = %v, want unknown backend", err)
	}
}

func TestOpen_CountsSkippedIssues(t *testing.T) {
	cfg := &Config{Backend: BackendNone}
	s := openSession(t, cfg, map[string]string{
		"good/markup.bcf": doorMarkup,
		"bad/markup.bcf":  strings.Repeat("x", 4*1024*1024+1),
	})

	if got := len(s.Issues()); got != 1 {
		t.Fatalf("Issues() = %d, want 1", got)
	}
	if got := len(s.Failures()); got != 1 {
		t.Fatalf("Failures() = %d, want 1", got)
	}
	st := s.Stats()
	if st.IssuesLoaded != 1 || st.IssuesFailed != 1 {
		t.Fatalf("stats loaded/failed = %d/%d, want 1/1", st.IssuesLoaded, st.IssuesFailed)
	}
}

func TestGoTo_FramesEntityEndToEnd(t *testing.T) {
	cfg, sc := sceneConfig(t)
	s := openSession(t, cfg, map[string]string{
		"door-1/markup.bcf":     doorMarkup,
		"door-1/viewpoint.bcfv": viewpointFor("AB12"),
	})

	res, err := s.GoTo(context.Background(), "door-1")
	if err != nil {
		t.Fatalf("GoTo: %v", err)
	}

	if res.Outcome.Status != types.ActionSuccess {
		t.Fatalf("status = %q (%s), want success", res.Outcome.Status, res.Outcome.Message)
	}
	if res.Outcome.Status.ExitCode() != 0 {
		t.Errorf("exit code = %d, want 0", res.Outcome.Status.ExitCode())
	}
	if res.Meta.ActionID == "" || res.Meta.IssueID != "door-1" || res.Meta.SessionID != s.Meta().SessionID {
		t.Errorf("incomplete action meta %+v", res.Meta)
	}

	if res.Camera == nil {
		t.Fatal("camera missing from result")
	}
	if res.Camera.Eye != (geom.Vec3{X: 5, Y: 1.7, Z: 9}) {
		t.Errorf("camera eye = %+v", res.Camera.Eye)
	}
	if math.Abs(res.Camera.FieldOfViewRadians-math.Pi/3) > 1e-12 {
		t.Errorf("fov = %v, want pi/3", res.Camera.FieldOfViewRadians)
	}
	var noted bool
	for _, n := range res.Notes {
		if strings.Contains(n, "disabled") {
			noted = true
		}
	}
	if !noted {
		t.Errorf("notes %v do not mention the disabled camera apply", res.Notes)
	}

	if res.Framing == nil {
		t.Fatal("framing missing from result")
	}
	if res.Framing.Outcome != types.FramingApplied || !res.Framing.Selected {
		t.Errorf("framing = %+v", res.Framing)
	}
	if res.Framing.Center != (geom.Vec3{X: 1, Y: 1, Z: 1}) || res.Framing.Height != 2.3 {
		t.Errorf("framing center/height = %+v/%v", res.Framing.Center, res.Framing.Height)
	}

	view := sc.View()
	if view.Target != (geom.Vec3{X: 1, Y: 1, Z: 1}) || view.Height != 2.3 {
		t.Errorf("scene view = %+v", view)
	}
	if view.Direction != (geom.Vec3{X: 0, Y: 0, Z: -1}) || view.Up != (geom.Vec3{X: 0, Y: 1, Z: 0}) {
		t.Errorf("orientation changed: %+v", view)
	}
	sel := sc.Selection()
	if len(sel) != 1 || sel[0].Handle != 0xAB12 {
		t.Errorf("selection = %+v", sel)
	}

	st := s.Stats()
	if st.ActionsStarted != 1 || st.ActionsCompleted != 1 || st.ActionsFailed != 0 {
		t.Errorf("action counters = %d/%d/%d", st.ActionsStarted, st.ActionsCompleted, st.ActionsFailed)
	}
	if st.ViewpointsParsed != 1 || st.CamerasReconstructed != 1 {
		t.Errorf("parse counters = %d/%d", st.ViewpointsParsed, st.CamerasReconstructed)
	}
	if st.FramingByOutcome[string(types.FramingApplied)] != 1 {
		t.Errorf("framing outcomes = %v", st.FramingByOutcome)
	}
}

func TestGoTo_NoTargetLeavesHostAlone(t *testing.T) {
	cfg, sc := sceneConfig(t)
	s := openSession(t, cfg, map[string]string{
		"pan-1/markup.bcf":     doorMarkup,
		"pan-1/viewpoint.bcfv": cameraOnlyViewpoint,
	})

	res, err := s.GoTo(context.Background(), "pan-1")
	if err != nil {
		t.Fatalf("GoTo: %v", err)
	}
	if res.Outcome.Status != types.ActionNoTarget {
		t.Fatalf("status = %q, want no_target", res.Outcome.Status)
	}
	if res.Outcome.Status.ExitCode() != 0 {
		t.Errorf("exit code = %d, want 0", res.Outcome.Status.ExitCode())
	}
	if res.Framing != nil {
		t.Errorf("framing recorded without a reference: %+v", res.Framing)
	}
	if res.Camera == nil {
		t.Error("camera should still be reconstructed")
	}
	if view := sc.View(); view.Target != (geom.Vec3{X: 12, Y: 4, Z: 8}) || view.Height != 45 {
		t.Errorf("view mutated: %+v", view)
	}
	if st := s.Stats(); st.ActionsCompleted != 1 {
		t.Errorf("ActionsCompleted = %d, want 1", st.ActionsCompleted)
	}
}

func TestGoTo_MissingViewpointDocument(t *testing.T) {
	cfg, _ := sceneConfig(t)
	s := openSession(t, cfg, map[string]string{
		"bare-1/markup.bcf": doorMarkup,
	})

	res, err := s.GoTo(context.Background(), "bare-1")
	if err != nil {
		t.Fatalf("GoTo: %v", err)
	}
	if res.Outcome.Status != types.ActionNoTarget {
		t.Fatalf("status = %q, want no_target", res.Outcome.Status)
	}
	var noted bool
	for _, n := range res.Notes {
		if strings.Contains(n, "lacks") {
			noted = true
		}
	}
	if !noted {
		t.Errorf("notes %v do not mention the incomplete camera", res.Notes)
	}
	st := s.Stats()
	if st.ParseDegraded != 1 || st.CamerasIncomplete != 1 {
		t.Errorf("degraded counters = %d/%d, want 1/1", st.ParseDegraded, st.CamerasIncomplete)
	}
}

func TestGoTo_UnknownEntity(t *testing.T) {
	cfg, _ := sceneConfig(t)
	s := openSession(t, cfg, map[string]string{
		"ghost-1/markup.bcf":     doorMarkup,
		"ghost-1/viewpoint.bcfv": viewpointFor("FFFF"),
	})

	res, err := s.GoTo(context.Background(), "ghost-1")
	if err != nil {
		t.Fatalf("GoTo: %v", err)
	}
	if res.Outcome.Status != types.ActionNotFound {
		t.Fatalf("status = %q (%s), want not_found", res.Outcome.Status, res.Outcome.Message)
	}
	if res.Outcome.Status.ExitCode() != 1 {
		t.Errorf("exit code = %d, want 1", res.Outcome.Status.ExitCode())
	}
	if res.Framing == nil || res.Framing.Outcome != types.FramingEntityNotFound {
		t.Errorf("framing = %+v", res.Framing)
	}
	if st := s.Stats(); st.ActionsFailed != 1 {
		t.Errorf("ActionsFailed = %d, want 1", st.ActionsFailed)
	}
}

func TestGoTo_MalformedReference(t *testing.T) {
	cfg, _ := sceneConfig(t)
	s := openSession(t, cfg, map[string]string{
		"junk-1/markup.bcf":     doorMarkup,
		"junk-1/viewpoint.bcfv": viewpointFor("not-hex!"),
	})

	res, err := s.GoTo(context.Background(), "junk-1")
	if err != nil {
		t.Fatalf("GoTo: %v", err)
	}
	if res.Outcome.Status != types.ActionNotFound {
		t.Fatalf("status = %q, want not_found", res.Outcome.Status)
	}
	if !strings.Contains(res.Outcome.Message, "not a usable handle") {
		t.Errorf("message = %q", res.Outcome.Message)
	}
	if st := s.Stats(); st.FramingByOutcome[string(types.FramingInvalidHandle)] != 1 {
		t.Errorf("framing outcomes = %v", st.FramingByOutcome)
	}
}

func TestGoTo_SoftFailureOnFlakyExtents(t *testing.T) {
	cfg, sc := sceneConfig(t)
	s := openSession(t, cfg, map[string]string{
		"wall-1/markup.bcf":     doorMarkup,
		"wall-1/viewpoint.bcfv": viewpointFor("BEEF"),
	})

	res, err := s.GoTo(context.Background(), "wall-1")
	if err != nil {
		t.Fatalf("GoTo: %v", err)
	}
	if res.Outcome.Status != types.ActionSoftFailure {
		t.Fatalf("status = %q (%s), want soft_failure", res.Outcome.Status, res.Outcome.Message)
	}
	if res.Outcome.Status.ExitCode() != 0 {
		t.Errorf("exit code = %d, want 0", res.Outcome.Status.ExitCode())
	}
	if !res.Framing.ExtentsRetried {
		t.Error("extents retry not recorded")
	}
	if !res.Framing.Selected {
		t.Error("selection should still happen without extents")
	}
	if view := sc.View(); view.Target != (geom.Vec3{X: 12, Y: 4, Z: 8}) || view.Height != 45 {
		t.Errorf("view mutated on soft failure: %+v", view)
	}
	st := s.Stats()
	if st.ExtentsRetries != 1 {
		t.Errorf("ExtentsRetries = %d, want 1", st.ExtentsRetries)
	}
	if st.FramingByOutcome[string(types.FramingExtentsUnavailable)] != 1 {
		t.Errorf("framing outcomes = %v", st.FramingByOutcome)
	}
}

func TestGoTo_HostUnavailableWithoutHost(t *testing.T) {
	cfg := &Config{Backend: BackendNone}
	s := openSession(t, cfg, map[string]string{
		"door-1/markup.bcf":     doorMarkup,
		"door-1/viewpoint.bcfv": viewpointFor("AB12"),
	})

	res, err := s.GoTo(context.Background(), "door-1")
	if err != nil {
		t.Fatalf("GoTo: %v", err)
	}
	if res.Outcome.Status != types.ActionHostUnavailable {
		t.Fatalf("status = %q, want host_unavailable", res.Outcome.Status)
	}
	if res.Outcome.Status.ExitCode() != 2 {
		t.Errorf("exit code = %d, want 2", res.Outcome.Status.ExitCode())
	}
	if res.Outcome.Message == "" {
		t.Error("empty outcome message")
	}
	if res.Framing != nil {
		t.Errorf("framing attempted without a host: %+v", res.Framing)
	}
	if st := s.Stats(); st.ActionsFailed != 1 {
		t.Errorf("ActionsFailed = %d, want 1", st.ActionsFailed)
	}
}

func TestGoTo_UnknownIssue(t *testing.T) {
	cfg, _ := sceneConfig(t)
	s := openSession(t, cfg, map[string]string{"door-1/markup.bcf": doorMarkup})

	if _, err := s.GoTo(context.Background(), "missing"); !errors.Is(err, ErrNoIssue) {
		t.Fatalf("err = %v, want ErrNoIssue", err)
	}
}

type captureSink struct {
	texts  map[string]string
	images map[string][]byte
	infos  []string
	faults []string
	closed bool
}

func newCaptureSink() *captureSink {
	return &captureSink{texts: map[string]string{}, images: map[string][]byte{}}
}

func (c *captureSink) ShowText(issueID, text string) error {
	c.texts[issueID] = text
	return nil
}

func (c *captureSink) ShowImage(issueID string, data []byte) error {
	c.images[issueID] = append([]byte(nil), data...)
	return nil
}

func (c *captureSink) ReportInfo(m string) { c.infos = append(c.infos, m) }

func (c *captureSink) ReportError(m string) { c.faults = append(c.faults, m) }

func (c *captureSink) Close() error {
	c.closed = true
	return nil
}

func TestShow_RoutesTextAndSnapshot(t *testing.T) {
	sink := newCaptureSink()
	cfg := &Config{Backend: BackendNone, Display: sink}
	snapshot := "\x89PNG\r\n\x1a\nimage bytes"
	s := openSession(t, cfg, map[string]string{
		"door-1/markup.bcf":   doorMarkup,
		"door-1/snapshot.png": snapshot,
	})

	if err := s.Show(context.Background(), "door-1"); err != nil {
		t.Fatalf("Show: %v", err)
	}
	if got := sink.texts["door-1"]; !strings.Contains(got, "Door blocked") {
		t.Errorf("text = %q", got)
	}
	if !bytes.Equal(sink.images["door-1"], []byte(snapshot)) {
		t.Error("snapshot bytes did not reach the sink")
	}

	if err := s.Show(context.Background(), "missing"); !errors.Is(err, ErrNoIssue) {
		t.Fatalf("err = %v, want ErrNoIssue", err)
	}

	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !sink.closed {
		t.Error("sink not closed with the session")
	}
}

func TestClose_Idempotent(t *testing.T) {
	cfg, _ := sceneConfig(t)
	s := openSession(t, cfg, map[string]string{"door-1/markup.bcf": doorMarkup})

	if err := s.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if _, err := s.GoTo(context.Background(), "door-1"); !errors.Is(err, ErrClosed) {
		t.Fatalf("GoTo after close: %v, want ErrClosed", err)
	}
	if err := s.Show(context.Background(), "door-1"); !errors.Is(err, ErrClosed) {
		t.Fatalf("Show after close: %v, want ErrClosed", err)
	}
}
