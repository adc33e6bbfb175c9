package cli

import (
	"github.com/alexanderramin/staffplan/internal/workspace"
)

// SharedState holds context shared across all views via pointer.
type SharedState struct {
	App *App
	WS  *workspace.Workspace

	// Terminal dimensions
	Width  int
	Height int
}

// ContentHeight returns the available height for view content,
// accounting for header (2 lines: title + separator) and the status
// bar (3 lines: separator, flash, hints).
func (s *SharedState) ContentHeight() int {
	h := s.Height - 5
	if h < 1 {
		return 1
	}
	return h
}
