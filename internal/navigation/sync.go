// Package navigation keeps the previous/next controls in step with the
// server-held question cursor.
package navigation

import (
	"context"
	"log/slog"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/examcoach/internal/client"
)

// Client fetches the cursor position.
type Client interface {
	NavigationInfo(ctx context.Context) (*client.NavigationPayload, error)
}

// Info is the cursor position: a zero-based index into Total questions.
type Info struct {
	Index int
	Total int
}

// Buttons is the visibility of the previous and next controls.
type Buttons struct {
	PreviousVisible bool
	NextVisible     bool
}

// AllVisible is the state before the first refresh lands.
var AllVisible = Buttons{PreviousVisible: true, NextVisible: true}

// InfoMsg carries the result of a refresh.
type InfoMsg struct {
	Info Info
	Err  error
}

// Sync issues navigation info requests. It holds no state between calls.
type Sync struct {
	client Client
}

// New creates a Sync backed by c.
func New(c Client) *Sync {
	return &Sync{client: c}
}

// Refresh requests the current position. The result arrives as an InfoMsg.
func (s *Sync) Refresh() tea.Cmd {
	c := s.client
	return func() tea.Msg {
		p, err := c.NavigationInfo(context.Background())
		if err != nil {
			return InfoMsg{Err: err}
		}
		return InfoMsg{Info: Info{Index: p.Number, Total: p.Total}}
	}
}

// Visibility maps a position onto the controls: previous is hidden on the
// first question, next on the last. A single question hides both.
func Visibility(info Info) Buttons {
	return Buttons{
		PreviousVisible: info.Index != 0,
		NextVisible:     info.Index != info.Total-1,
	}
}

// Apply returns the visibility after msg. A failed refresh keeps b.
func Apply(b Buttons, msg InfoMsg) Buttons {
	if msg.Err != nil {
		slog.Warn("navigation info refresh failed", "error", msg.Err)
		return b
	}
	return Visibility(msg.Info)
}
