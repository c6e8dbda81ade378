package host

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for host failure classification.
// Use errors.Is(err, ErrXxx) for typed assertions.
var (
	// ErrHostUnavailable indicates no usable host document or session.
	ErrHostUnavailable = errors.New("host unavailable")

	// ErrEntityNotFound indicates the handle did not resolve to an
	// entity in the open document.
	ErrEntityNotFound = errors.New("entity not found")

	// ErrExtentsUnavailable indicates the host returned no usable
	// bounding box (threw, or handed back degenerate extents).
	ErrExtentsUnavailable = errors.New("extents unavailable")
)

// HostError wraps an underlying error with host classification. It
// preserves the original error in the chain for errors.As inspection.
type HostError struct {
	// Kind is the sentinel error for classification.
	Kind error
	// Op is the host operation that failed (e.g. "resolve", "bbox").
	Op string
	// Handle is the entity handle involved, if any.
	Handle Handle
	// Err is the underlying error.
	Err error
}

func (e *HostError) Error() string {
	if e.Handle != 0 {
		if e.Err != nil {
			return fmt.Sprintf("%s %X: %v: %v", e.Op, uint64(e.Handle), e.Kind, e.Err)
		}
		return fmt.Sprintf("%s %X: %v", e.Op, uint64(e.Handle), e.Kind)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Kind)
}

// Unwrap returns the underlying error for errors.Is/As chain traversal.
func (e *HostError) Unwrap() error {
	return e.Err
}

// Is reports whether the error matches the target sentinel.
func (e *HostError) Is(target error) bool {
	return errors.Is(e.Kind, target)
}

// NewHostError creates a classified host error.
func NewHostError(kind error, op string, h Handle, err error) *HostError {
	return &HostError{Kind: kind, Op: op, Handle: h, Err: err}
}

// Classify determines the sentinel for an arbitrary host-side error.
// Classification is based on error type and message patterns; already
// classified errors pass through their kind.
func Classify(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, ErrEntityNotFound):
		return ErrEntityNotFound
	case errors.Is(err, ErrExtentsUnavailable):
		return ErrExtentsUnavailable
	case errors.Is(err, ErrHostUnavailable):
		return ErrHostUnavailable
	}

	var timeoutErr interface{ Timeout() bool }
	if errors.As(err, &timeoutErr) && timeoutErr.Timeout() {
		return ErrHostUnavailable
	}

	msg := strings.ToLower(err.Error())
	switch {
	case containsAny(msg, "not found", "no such", "unknown handle", "does not exist"):
		return ErrEntityNotFound
	case containsAny(msg, "extents", "bounding box", "no geometry", "degenerate"):
		return ErrExtentsUnavailable
	case containsAny(msg, "broken pipe", "eof", "closed", "exited", "no document", "connection", "deadline exceeded"):
		return ErrHostUnavailable
	default:
		return ErrHostUnavailable
	}
}

// Wire kind strings carried in bridge responses.
const (
	wireEntityNotFound     = "entity_not_found"
	wireExtentsUnavailable = "extents_unavailable"
	wireHostUnavailable    = "host_unavailable"
	wireHostError          = "host_error"
)

// KindToWire maps a classified error to its protocol kind string.
func KindToWire(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEntityNotFound):
		return wireEntityNotFound
	case errors.Is(err, ErrExtentsUnavailable):
		return wireExtentsUnavailable
	case errors.Is(err, ErrHostUnavailable):
		return wireHostUnavailable
	default:
		return wireHostError
	}
}

// KindFromWire maps a protocol kind string back to its sentinel. An
// unknown kind yields nil; callers fall back to the message text.
func KindFromWire(kind string) error {
	switch kind {
	case wireEntityNotFound:
		return ErrEntityNotFound
	case wireExtentsUnavailable:
		return ErrExtentsUnavailable
	case wireHostUnavailable:
		return ErrHostUnavailable
	default:
		return nil
	}
}

// containsAny checks if s contains any of the substrings. Callers pass
// s already lowercased.
func containsAny(s string, substrs ...string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
