package cmd

import (
	"testing"

	"github.com/fsnotify/fsnotify"
)

func TestArchiveEvent(t *testing.T) {
	target := "/site/clashes.bcf"

	tests := []struct {
		name string
		ev   fsnotify.Event
		want bool
	}{
		{
			name: "write to target",
			ev:   fsnotify.Event{Name: "/site/clashes.bcf", Op: fsnotify.Write},
			want: true,
		},
		{
			name: "create of target",
			ev:   fsnotify.Event{Name: "/site/clashes.bcf", Op: fsnotify.Create},
			want: true,
		},
		{
			name: "rename of target",
			ev:   fsnotify.Event{Name: "/site/clashes.bcf", Op: fsnotify.Rename},
			want: true,
		},
		{
			name: "remove of target",
			ev:   fsnotify.Event{Name: "/site/clashes.bcf", Op: fsnotify.Remove},
			want: true,
		},
		{
			name: "chmod only ignored",
			ev:   fsnotify.Event{Name: "/site/clashes.bcf", Op: fsnotify.Chmod},
			want: false,
		},
		{
			name: "write to sibling ignored",
			ev:   fsnotify.Event{Name: "/site/notes.txt", Op: fsnotify.Write},
			want: false,
		},
		{
			name: "unclean path still matches",
			ev:   fsnotify.Event{Name: "/site/./clashes.bcf", Op: fsnotify.Write},
			want: true,
		},
		{
			name: "combined write and chmod",
			ev:   fsnotify.Event{Name: "/site/clashes.bcf", Op: fsnotify.Write | fsnotify.Chmod},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := archiveEvent(tt.ev, target); got != tt.want {
				t.Errorf("archiveEvent(%v) = %v, want %v", tt.ev, got, tt.want)
			}
		})
	}
}
