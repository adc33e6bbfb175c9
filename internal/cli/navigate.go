package cli

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/alexanderramin/staffplan/internal/workspace"
)

// Navigation messages used by views to request view transitions.
// The appModel handles these in its Update method.

// pushViewMsg pushes a new view onto the navigation stack.
type pushViewMsg struct {
	view View
}

// popViewMsg pops the current view off the navigation stack,
// returning to the previous view.
type popViewMsg struct{}

// flashMsg carries a one-line status message shown above the key hints
// until the next key press.
type flashMsg struct {
	text string
}

// wizardCompleteMsg is sent when a wizard form completes or is cancelled.
// The appModel handles it atomically: pop the wizard view, then run nextCmd.
type wizardCompleteMsg struct {
	nextCmd tea.Cmd
}

// recommendationsMsg is delivered when a recommendation request finishes.
// It is broadcast to every view on the stack.
type recommendationsMsg struct {
	snap workspace.Snapshot
}

// pushView returns a tea.Cmd that pushes a view onto the stack.
func pushView(v View) tea.Cmd {
	return func() tea.Msg { return pushViewMsg{view: v} }
}

// popView returns a tea.Cmd that pops the current view.
func popView() tea.Cmd {
	return func() tea.Msg { return popViewMsg{} }
}

// flash returns a tea.Cmd that shows text in the status line.
func flash(text string) tea.Cmd {
	if text == "" {
		return nil
	}
	return func() tea.Msg { return flashMsg{text: text} }
}

// wizardDone pops the wizard and flashes text.
func wizardDone(text string) tea.Msg {
	return wizardCompleteMsg{nextCmd: flash(text)}
}
