package types //nolint:revive // types is a valid package name

import (
	"errors"
	"fmt"
)

// SessionMeta identifies one engine session. A session owns one loaded
// archive and at most one host connection.
type SessionMeta struct {
	// SessionID is the unique session identifier.
	SessionID string `json:"session_id" yaml:"session_id"`
	// Archive is the path of the archive the session loaded.
	Archive string `json:"archive" yaml:"archive"`
}

// Validate checks that the session identity is usable.
func (m *SessionMeta) Validate() error {
	if m.SessionID == "" {
		return errors.New("session_id must be non-empty")
	}
	if m.Archive == "" {
		return errors.New("archive must be non-empty")
	}
	return nil
}

// ActionMeta identifies one go-to-view action within a session.
// Actions are serialized; the IDs exist so logs and results from
// consecutive actions stay attributable.
type ActionMeta struct {
	// ActionID is the unique action identifier.
	ActionID string `json:"action_id" yaml:"action_id"`
	// SessionID is the owning session's identifier.
	SessionID string `json:"session_id" yaml:"session_id"`
	// IssueID is the archive issue the action operates on.
	IssueID string `json:"issue_id" yaml:"issue_id"`
}

// Validate checks that the action identity is complete:
//   - action_id and session_id must be non-empty
//   - issue_id must be non-empty (an action always targets one issue)
func (m *ActionMeta) Validate() error {
	if m.ActionID == "" {
		return errors.New("action_id must be non-empty")
	}
	if m.SessionID == "" {
		return errors.New("session_id must be non-empty")
	}
	if m.IssueID == "" {
		return fmt.Errorf("issue_id must be non-empty for action %s", m.ActionID)
	}
	return nil
}
