// Package question holds the question on screen and moves between questions.
package question

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/examcoach/internal/client"
	"github.com/abhisek/examcoach/internal/feedback"
	"github.com/abhisek/examcoach/internal/navigation"
)

// DefaultFocusDelay lets the scroll to the top settle before the answer
// field takes focus again.
const DefaultFocusDelay = 500 * time.Millisecond

// Client loads questions from the server.
type Client interface {
	Current(ctx context.Context) (*client.QuestionPayload, error)
	Navigate(ctx context.Context, dir client.Direction) (*client.QuestionPayload, error)
}

// Resetter clears the feedback outputs and the progress bar.
type Resetter interface {
	Reset()
}

// AnswerField is the input the learner types into.
type AnswerField interface {
	Clear()
	Focus() tea.Cmd
}

// Record is the question on screen. It is only ever replaced whole.
type Record struct {
	InsertText   *string
	QuestionText string
	Marks        int
}

// HasInsert reports whether the question comes with a passage.
func (r Record) HasInsert() bool {
	return r.InsertText != nil && *r.InsertText != ""
}

// ErrNavigation is a refused or failed move between questions.
type ErrNavigation struct {
	Op      string
	Message string
	Err     error
}

func (e *ErrNavigation) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return e.Message
}

func (e *ErrNavigation) Unwrap() error {
	return e.Err
}

// NoticeMsg asks the screen to show a blocking notice.
type NoticeMsg struct {
	Err *ErrNavigation
}

// loadedMsg carries a question response back into the update loop.
type loadedMsg struct {
	op      string
	payload *client.QuestionPayload
	err     error
}

type focusMsg struct{}

// State owns the current Record.
type State struct {
	client     Client
	outputs    Resetter
	field      AnswerField
	nav        *navigation.Sync
	focusDelay time.Duration

	record Record
	loaded bool
}

// Option configures a State.
type Option func(*State)

// WithFocusDelay overrides the delay before the answer field is refocused
// after TryAgain.
func WithFocusDelay(d time.Duration) Option {
	return func(s *State) {
		s.focusDelay = d
	}
}

// New creates a State. outputs is reset and field cleared whenever the
// question changes.
func New(c Client, outputs Resetter, field AnswerField, nav *navigation.Sync, opts ...Option) *State {
	s := &State{
		client:     c,
		outputs:    outputs,
		field:      field,
		nav:        nav,
		focusDelay: DefaultFocusDelay,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Record returns the question on screen.
func (s *State) Record() Record {
	return s.record
}

// Loaded reports whether any question has been received yet.
func (s *State) Loaded() bool {
	return s.loaded
}

// Load fetches the question at the server cursor.
func (s *State) Load() tea.Cmd {
	c := s.client
	return func() tea.Msg {
		p, err := c.Current(context.Background())
		return loadedMsg{op: "load question", payload: p, err: err}
	}
}

// Navigate asks the server to move the cursor in dir.
func (s *State) Navigate(dir client.Direction) tea.Cmd {
	c := s.client
	return func() tea.Msg {
		p, err := c.Navigate(context.Background(), dir)
		return loadedMsg{op: "navigate " + string(dir), payload: p, err: err}
	}
}

// TryAgain clears the answer and both outputs, scrolls to the top and
// refocuses the answer field once the scroll has settled.
func (s *State) TryAgain() tea.Cmd {
	s.outputs.Reset()
	s.field.Clear()
	return tea.Batch(
		func() tea.Msg { return feedback.ScrollMsg{Landmark: feedback.LandmarkTop} },
		tea.Tick(s.focusDelay, func(time.Time) tea.Msg { return focusMsg{} }),
	)
}

// Update handles question responses and the delayed refocus.
func (s *State) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case loadedMsg:
		return s.apply(msg)
	case focusMsg:
		return s.field.Focus()
	}
	return nil
}

// apply replaces the record first and then resets the outputs and the
// progress bar. A failure leaves everything as it was.
func (s *State) apply(msg loadedMsg) tea.Cmd {
	if msg.err != nil {
		slog.Error("question request failed", "op", msg.op, "error", msg.err)
		return notice(&ErrNavigation{Op: msg.op, Err: msg.err})
	}
	if !msg.payload.Success {
		slog.Info("question request refused", "op", msg.op, "message", msg.payload.Message)
		return notice(&ErrNavigation{Op: msg.op, Message: msg.payload.Message})
	}

	s.record = Record{
		InsertText:   msg.payload.InsertText,
		QuestionText: msg.payload.QuestionText,
		Marks:        msg.payload.Marks,
	}
	s.loaded = true
	slog.Debug("question replaced", "op", msg.op, "number", msg.payload.Number, "total", msg.payload.Total)

	s.outputs.Reset()
	s.field.Clear()
	return tea.Batch(s.field.Focus(), s.nav.Refresh())
}

func notice(err *ErrNavigation) tea.Cmd {
	return func() tea.Msg { return NoticeMsg{Err: err} }
}
