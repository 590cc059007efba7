// Package quiz is the answer-and-feedback screen: the question, the answer
// field, both tiers of feedback, the progress bar and the navigation
// controls.
package quiz

import (
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/examcoach/internal/client"
	"github.com/abhisek/examcoach/internal/feedback"
	"github.com/abhisek/examcoach/internal/navigation"
	"github.com/abhisek/examcoach/internal/progress"
	"github.com/abhisek/examcoach/internal/question"
	"github.com/abhisek/examcoach/internal/router"
	"github.com/abhisek/examcoach/internal/screen"
	"github.com/abhisek/examcoach/internal/screens/notice"
	"github.com/abhisek/examcoach/internal/ui/components"
	"github.com/abhisek/examcoach/internal/ui/layout"
)

// Client is everything the screen needs from the server.
type Client interface {
	feedback.Client
	navigation.Client
	question.Client
}

// QuizScreen implements screen.Screen for a question and its feedback.
type QuizScreen struct {
	bar      *progress.Animator
	feedback *feedback.Orchestrator
	question *question.State
	nav      *navigation.Sync
	buttons  navigation.Buttons
	input    *components.TextInput

	// Content area size from the last WindowSizeMsg.
	width  int
	height int

	offset   int
	atBottom bool
}

var _ screen.Screen = (*QuizScreen)(nil)
var _ screen.KeyHintProvider = (*QuizScreen)(nil)
var _ screen.StatusProvider = (*QuizScreen)(nil)

type options struct {
	tick   time.Duration
	settle time.Duration
}

// Option configures a QuizScreen.
type Option func(*options)

// WithTiming overrides the progress tick interval and the scroll settle
// delay.
func WithTiming(tick, settle time.Duration) Option {
	return func(o *options) {
		o.tick = tick
		o.settle = settle
	}
}

// New creates a QuizScreen talking to c.
func New(c Client, opts ...Option) *QuizScreen {
	o := options{
		tick:   progress.DefaultInterval,
		settle: feedback.DefaultSettleDelay,
	}
	for _, opt := range opts {
		opt(&o)
	}

	input := components.NewTextInput("Your answer", "Type your answer and press Enter...", 0)
	bar := progress.New(progress.WithInterval(o.tick))
	orch := feedback.New(c, bar, feedback.WithSettleDelay(o.settle))
	nav := navigation.New(c)

	return &QuizScreen{
		bar:      bar,
		feedback: orch,
		question: question.New(c, orch, &input, nav, question.WithFocusDelay(o.settle)),
		nav:      nav,
		buttons:  navigation.AllVisible,
		input:    &input,
	}
}

func (s *QuizScreen) Init() tea.Cmd {
	return tea.Batch(
		s.input.Init(),
		s.question.Load(),
		s.nav.Refresh(),
	)
}

func (s *QuizScreen) Title() string {
	return "Exam practice"
}

func (s *QuizScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{
		{Key: "Enter", Description: "Submit"},
		{Key: "Ctrl+R", Description: "Try again"},
	}
	if s.buttons.PreviousVisible {
		hints = append(hints, layout.KeyHint{Key: "Ctrl+P", Description: "Previous"})
	}
	if s.buttons.NextVisible {
		hints = append(hints, layout.KeyHint{Key: "Ctrl+N", Description: "Next"})
	}
	return append(hints,
		layout.KeyHint{Key: "PgUp/PgDn", Description: "Scroll"},
		layout.KeyHint{Key: "Ctrl+C", Description: "Quit"},
	)
}

// Status reports which feedback request is in flight.
func (s *QuizScreen) Status() string {
	switch s.feedback.Stage() {
	case feedback.StagePhase1Pending:
		return "Marking: summary"
	case feedback.StagePhase2Pending:
		return "Marking: detailed feedback"
	case feedback.StageFailed:
		return "Server unreachable"
	}
	return ""
}

func (s *QuizScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = layout.ContentHeight(msg.Height)
		s.offset = min(s.offset, s.maxOffset())
		return s, nil

	case tea.KeyMsg:
		return s.handleKey(msg)

	case feedback.ScrollMsg:
		s.scrollTo(msg.Landmark)
		return s, nil

	case navigation.InfoMsg:
		s.buttons = navigation.Apply(s.buttons, msg)
		return s, nil

	case question.NoticeMsg:
		text := msg.Err.Error()
		return s, func() tea.Msg {
			return router.PushScreenMsg{Screen: notice.New(text)}
		}
	}

	var inputCmd tea.Cmd
	*s.input, inputCmd = s.input.Update(msg)
	return s, tea.Batch(
		s.feedback.Update(msg),
		s.question.Update(msg),
		inputCmd,
	)
}

func (s *QuizScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "enter", "ctrl+s":
		if s.input.Blank() {
			return s, nil
		}
		s.atBottom = false
		return s, s.feedback.Submit(s.input.Value())

	case "ctrl+p":
		return s, s.question.Navigate(client.Previous)

	case "ctrl+n":
		return s, s.question.Navigate(client.Next)

	case "ctrl+r":
		return s, s.question.TryAgain()

	case "pgup":
		s.scrollBy(-s.pageHeight(s.width, s.height))
		return s, nil

	case "pgdown":
		s.scrollBy(s.pageHeight(s.width, s.height))
		return s, nil
	}

	var cmd tea.Cmd
	*s.input, cmd = s.input.Update(msg)
	return s, cmd
}

// scrollTo brings a landmark to the top of the page.
func (s *QuizScreen) scrollTo(l feedback.Landmark) {
	_, marks := s.page(s.width)
	s.offset = max(0, min(marks[l], s.maxOffset()))
	if l == feedback.LandmarkTop {
		s.atBottom = false
	}
}

// scrollBy moves the page. Reaching the end reveals the controls, as
// scrolling to the foot of the page does in a browser.
func (s *QuizScreen) scrollBy(delta int) {
	maxOff := s.maxOffset()
	s.offset = max(0, min(s.offset+delta, maxOff))
	s.atBottom = s.offset == maxOff
}

func (s *QuizScreen) maxOffset() int {
	content, _ := s.page(s.width)
	return max(0, lineCount(content)-s.pageHeight(s.width, s.height))
}

// controlsShown reports whether the previous/next/try-again bar is drawn.
func (s *QuizScreen) controlsShown() bool {
	return s.feedback.NavRevealed() || s.atBottom
}
