package types //nolint:revive // types is a valid package name

import (
	"testing"
)

func TestSessionMeta_Validate(t *testing.T) {
	tests := []struct {
		name    string
		meta    SessionMeta
		wantErr bool
	}{
		{
			name:    "empty session_id",
			meta:    SessionMeta{SessionID: "", Archive: "issues.bcfzip"},
			wantErr: true,
		},
		{
			name:    "empty archive",
			meta:    SessionMeta{SessionID: "sess-001", Archive: ""},
			wantErr: true,
		},
		{
			name:    "valid",
			meta:    SessionMeta{SessionID: "sess-001", Archive: "issues.bcfzip"},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.meta.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestActionMeta_Validate(t *testing.T) {
	tests := []struct {
		name    string
		meta    ActionMeta
		wantErr bool
	}{
		{
			name:    "empty action_id",
			meta:    ActionMeta{ActionID: "", SessionID: "sess-001", IssueID: "topic-1"},
			wantErr: true,
		},
		{
			name:    "empty session_id",
			meta:    ActionMeta{ActionID: "act-001", SessionID: "", IssueID: "topic-1"},
			wantErr: true,
		},
		{
			name:    "empty issue_id",
			meta:    ActionMeta{ActionID: "act-001", SessionID: "sess-001", IssueID: ""},
			wantErr: true,
		},
		{
			name:    "valid",
			meta:    ActionMeta{ActionID: "act-001", SessionID: "sess-001", IssueID: "topic-1"},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.meta.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestActionStatus_ExitCode(t *testing.T) {
	tests := []struct {
		status ActionStatus
		want   int
	}{
		{ActionSuccess, 0},
		{ActionNoTarget, 0},
		{ActionSoftFailure, 0},
		{ActionNotFound, 1},
		{ActionHostUnavailable, 2},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.ExitCode(); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}
