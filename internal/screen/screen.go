// Package screen defines what the router needs from a screen.
package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/examcoach/internal/ui/layout"
)

// Screen is one page of the client. The router owns a stack of them and
// only the top one receives input.
type Screen interface {
	Init() tea.Cmd

	// Update handles a message. Returning a different Screen is not
	// supported; screens push and pop through router messages.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the area between the header and the footer.
	View(width, height int) string

	// Title is shown in the middle of the header.
	Title() string
}

// KeyHintProvider is implemented by screens with their own footer hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// StatusProvider is implemented by screens that report activity in the
// header, such as a marking request in flight. An empty status leaves the
// header showing the server address.
type StatusProvider interface {
	Status() string
}
