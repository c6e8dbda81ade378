package tui

import "fmt"

// Run starts the appropriate TUI based on the view type.
// Returns an error if the view type doesn't support TUI.
func Run(viewType string, data any) error {
	switch viewType {
	case "inspect":
		return RunBrowseTUI(data)
	case "stats":
		return RunStatsTUI(data)
	default:
		return fmt.Errorf("TUI mode is not supported for %s", viewType)
	}
}

// IsTUISupported returns true if the view type supports TUI mode.
// Only inspect and stats are interactive.
func IsTUISupported(viewType string) bool {
	switch viewType {
	case "inspect", "stats":
		return true
	default:
		return false
	}
}

// SupportedTUIViews returns the view types that support TUI.
func SupportedTUIViews() []string {
	return []string{"inspect", "stats"}
}
