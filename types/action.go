package types //nolint:revive // types is a valid package name

// ActionStatus is the final classification of a go-to-view action.
type ActionStatus string

const (
	// ActionSuccess means the entity was framed (and usually selected).
	ActionSuccess ActionStatus = "success"
	// ActionNoTarget means the viewpoint carried no entity reference;
	// there was nothing to locate. Informational, not an error.
	ActionNoTarget ActionStatus = "no_target"
	// ActionSoftFailure means extents were unavailable; the view was
	// left unmodified but the action completed.
	ActionSoftFailure ActionStatus = "soft_failure"
	// ActionNotFound means the reference was malformed or the host
	// could not resolve it.
	ActionNotFound ActionStatus = "not_found"
	// ActionHostUnavailable means no usable host session existed; the
	// action aborted.
	ActionHostUnavailable ActionStatus = "host_unavailable"
)

// ExitCode maps an action status to the process exit code contract:
// informational and soft endings exit 0, locate failures exit 1, a
// missing host exits 2.
func (s ActionStatus) ExitCode() int {
	switch s {
	case ActionNotFound:
		return 1
	case ActionHostUnavailable:
		return 2
	default:
		return 0
	}
}

// ActionOutcome is the status plus its human-readable description.
type ActionOutcome struct {
	// Status is the outcome classification.
	Status ActionStatus `json:"status" yaml:"status"`
	// Message is a human-readable description.
	Message string `json:"message" yaml:"message"`
}

// ActionResult is everything one go-to-view action produced.
type ActionResult struct {
	// Meta is the action identity.
	Meta ActionMeta `json:"meta" yaml:"meta"`
	// Outcome is the final classification.
	Outcome ActionOutcome `json:"outcome" yaml:"outcome"`
	// Camera is the rebuilt camera transform, when the viewpoint held a
	// complete pose. Computed and reported, never applied to the host.
	Camera *CameraTransform `json:"camera,omitempty" yaml:"camera,omitempty"`
	// Framing is the locate-and-frame record, when a reference existed.
	Framing *FramingResult `json:"framing,omitempty" yaml:"framing,omitempty"`
	// Notes carries informational degradations (incomplete camera,
	// missing reference) that did not fail the action.
	Notes []string `json:"notes,omitempty" yaml:"notes,omitempty"`
	// DurationMS is the wall-clock action duration in milliseconds.
	DurationMS int64 `json:"duration_ms" yaml:"duration_ms"`
}
