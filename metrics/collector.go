// Package metrics provides per-session metrics collection.
//
// The Collector accumulates counters during a single session. It is a leaf
// package with no internal dependencies. Archive load metrics are absorbed
// from the loader's summary after open rather than recorded live, avoiding
// double-counting when issues are re-read.
package metrics

import "sync"

// Snapshot is an immutable point-in-time view of all session metrics.
// Returned by Collector.Snapshot(). Safe to read concurrently after creation.
type Snapshot struct {
	// Action lifecycle
	ActionsStarted   int64
	ActionsCompleted int64
	ActionsFailed    int64

	// Archive (absorbed from the loader after open)
	IssuesLoaded int64
	IssuesFailed int64

	// Viewpoint parsing and camera reconstruction
	ViewpointsParsed     int64
	ParseDegraded        int64
	CamerasReconstructed int64
	CamerasIncomplete    int64

	// Locate-and-frame
	FramingByOutcome map[string]int64
	ExtentsRetries   int64
	SelectionRetries int64

	// Host process
	HostLaunchSuccess int64
	HostLaunchFailure int64
	BridgeCalls       int64
	IPCDecodeErrors   int64

	// Dimensions (informational, set at construction)
	Backend   string
	Archive   string
	SessionID string
}

// Collector accumulates metrics during a single session.
// Thread-safe via sync.Mutex. All increment methods are nil-receiver safe.
type Collector struct {
	mu sync.Mutex

	actionsStarted   int64
	actionsCompleted int64
	actionsFailed    int64

	issuesLoaded int64
	issuesFailed int64

	viewpointsParsed     int64
	parseDegraded        int64
	camerasReconstructed int64
	camerasIncomplete    int64

	framingByOutcome map[string]int64
	extentsRetries   int64
	selectionRetries int64

	hostLaunchSuccess int64
	hostLaunchFailure int64
	bridgeCalls       int64
	ipcDecodeErrors   int64

	backend   string
	archive   string
	sessionID string
}

// NewCollector creates a Collector with dimension labels. backend names the
// host backend in use; archive and sessionID are informational.
func NewCollector(backend, archive, sessionID string) *Collector {
	return &Collector{
		framingByOutcome: make(map[string]int64),
		backend:          backend,
		archive:          archive,
		sessionID:        sessionID,
	}
}

// --- Action lifecycle ---

// IncActionStarted records the start of a session action.
func (c *Collector) IncActionStarted() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.actionsStarted++
	c.mu.Unlock()
}

// IncActionCompleted records an action that ran to a terminal status.
func (c *Collector) IncActionCompleted() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.actionsCompleted++
	c.mu.Unlock()
}

// IncActionFailed records an action that ended in not_found or
// host_unavailable.
func (c *Collector) IncActionFailed() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.actionsFailed++
	c.mu.Unlock()
}

// --- Archive ---

// AbsorbArchiveStats copies issue counts from the archive loader into the
// collector. Called once after the archive is opened.
func (c *Collector) AbsorbArchiveStats(loaded, failed int64) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.issuesLoaded = loaded
	c.issuesFailed = failed
	c.mu.Unlock()
}

// --- Parsing ---

// IncViewpointParsed records a viewpoint document parsed into a result.
func (c *Collector) IncViewpointParsed() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.viewpointsParsed++
	c.mu.Unlock()
}

// IncParseDegraded records a parse that fell back past the primary
// extraction strategy (attribute, direct-text, or deep-text form).
func (c *Collector) IncParseDegraded() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.parseDegraded++
	c.mu.Unlock()
}

// IncCameraReconstructed records a viewpoint turned into a full transform.
func (c *Collector) IncCameraReconstructed() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.camerasReconstructed++
	c.mu.Unlock()
}

// IncCameraIncomplete records a viewpoint whose pose could not be rebuilt.
func (c *Collector) IncCameraIncomplete() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.camerasIncomplete++
	c.mu.Unlock()
}

// --- Locate-and-frame ---

// IncFraming records one locate-and-frame pass by outcome. The keys are
// string-typed outcomes to keep this package free of dependencies on the
// types package.
func (c *Collector) IncFraming(outcome string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	if c.framingByOutcome == nil {
		c.framingByOutcome = make(map[string]int64)
	}
	c.framingByOutcome[outcome]++
	c.mu.Unlock()
}

// IncExtentsRetry records a bounding-box query that needed its retry.
func (c *Collector) IncExtentsRetry() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.extentsRetries++
	c.mu.Unlock()
}

// IncSelectionRetry records a selection that fell back to the filtered
// handle query.
func (c *Collector) IncSelectionRetry() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.selectionRetries++
	c.mu.Unlock()
}

// --- Host process ---

// IncHostLaunchSuccess records a host backend that came up and handshook.
func (c *Collector) IncHostLaunchSuccess() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.hostLaunchSuccess++
	c.mu.Unlock()
}

// IncHostLaunchFailure records a host backend that failed to come up.
func (c *Collector) IncHostLaunchFailure() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.hostLaunchFailure++
	c.mu.Unlock()
}

// IncBridgeCall records one request sent over the host bridge.
func (c *Collector) IncBridgeCall() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.bridgeCalls++
	c.mu.Unlock()
}

// IncIPCDecodeErrors records a bridge frame decode error.
func (c *Collector) IncIPCDecodeErrors() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.ipcDecodeErrors++
	c.mu.Unlock()
}

// --- Snapshot ---

// Snapshot returns an immutable point-in-time view of all metrics.
// The returned Snapshot is safe to read concurrently; the Collector can
// continue to be mutated independently.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	framing := make(map[string]int64, len(c.framingByOutcome))
	for k, v := range c.framingByOutcome {
		framing[k] = v
	}

	return Snapshot{
		ActionsStarted:   c.actionsStarted,
		ActionsCompleted: c.actionsCompleted,
		ActionsFailed:    c.actionsFailed,

		IssuesLoaded: c.issuesLoaded,
		IssuesFailed: c.issuesFailed,

		ViewpointsParsed:     c.viewpointsParsed,
		ParseDegraded:        c.parseDegraded,
		CamerasReconstructed: c.camerasReconstructed,
		CamerasIncomplete:    c.camerasIncomplete,

		FramingByOutcome: framing,
		ExtentsRetries:   c.extentsRetries,
		SelectionRetries: c.selectionRetries,

		HostLaunchSuccess: c.hostLaunchSuccess,
		HostLaunchFailure: c.hostLaunchFailure,
		BridgeCalls:       c.bridgeCalls,
		IPCDecodeErrors:   c.ipcDecodeErrors,

		Backend:   c.backend,
		Archive:   c.archive,
		SessionID: c.sessionID,
	}
}
