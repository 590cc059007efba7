package progress

import (
	"math"
	"sync/atomic"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/examcoach/internal/ui/components"
)

// DefaultInterval is the period between animation ticks.
const DefaultInterval = 50 * time.Millisecond

var lastID atomic.Int64

func nextID() int {
	return int(lastID.Add(1))
}

// TickMsg advances an Animator by one step. Each message is bound to the
// animator and timer generation that scheduled it; messages from a timer
// that has since been replaced are ignored.
type TickMsg struct {
	ID  int
	tag int
}

// Animator eases a displayed percentage toward a target set by the caller.
// Only one timer is live at a time: SetTarget cancels the running timer
// before scheduling the next tick.
type Animator struct {
	id       int
	tag      int
	interval time.Duration
	state    State
	rendered float64
}

// Option configures an Animator.
type Option func(*Animator)

// WithInterval overrides the tick period.
func WithInterval(d time.Duration) Option {
	return func(a *Animator) {
		if d > 0 {
			a.interval = d
		}
	}
}

// New creates a hidden animator at 0%.
func New(opts ...Option) *Animator {
	a := &Animator{
		id:       nextID(),
		interval: DefaultInterval,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// SetTarget sets the percentage to animate toward and restarts the timer.
// A target below the current value moves the bar back immediately; ticks
// themselves never move it backwards.
func (a *Animator) SetTarget(target float64) tea.Cmd {
	target = clamp(target)
	a.state.Target = target
	if target < a.state.Current {
		a.state.Current = target
		a.rendered = Rendered(a.state)
	}

	// Bumping the tag invalidates any tick already in flight.
	a.tag++
	a.state.TimerActive = true
	return a.tick()
}

// SetWaiting toggles the slow approach used while the second feedback
// request is outstanding.
func (a *Animator) SetWaiting(waiting bool) {
	a.state.WaitingForSecondPhase = waiting
}

// Show makes the bar visible.
func (a *Animator) Show() {
	a.state.Visible = true
}

// Reset stops the timer, zeroes the bar and hides it.
func (a *Animator) Reset() {
	a.tag++
	a.state = State{}
	a.rendered = 0
}

// Update handles tick messages and returns the next tick, if any.
func (a *Animator) Update(msg tea.Msg) tea.Cmd {
	tm, ok := msg.(TickMsg)
	if !ok || tm.ID != a.id || tm.tag != a.tag || !a.state.TimerActive {
		return nil
	}

	a.state, a.rendered = Step(a.state)
	if !a.state.TimerActive {
		return nil
	}
	return a.tick()
}

// Due returns the message the live timer will deliver next. It lets callers
// drive the animation without waiting on a real clock.
func (a *Animator) Due() TickMsg {
	return TickMsg{ID: a.id, tag: a.tag}
}

// State returns a copy of the current animation state.
func (a *Animator) State() State {
	return a.state
}

// Percent returns the displayed percentage rounded to a whole number.
func (a *Animator) Percent() int {
	return int(math.Round(a.rendered))
}

// Loading reports whether the bar is part way through.
func (a *Animator) Loading() bool {
	return a.rendered > 0 && a.rendered < 100
}

// Visible reports whether the bar should be drawn.
func (a *Animator) Visible() bool {
	return a.state.Visible
}

// View renders the bar, or nothing when hidden.
func (a *Animator) View(width int) string {
	if !a.state.Visible {
		return ""
	}
	bar := components.NewProgressBar("", a.rendered, true, width)
	bar.Loading = a.Loading()
	return bar.View()
}

func (a *Animator) tick() tea.Cmd {
	id, tag := a.id, a.tag
	return tea.Tick(a.interval, func(time.Time) tea.Msg {
		return TickMsg{ID: id, tag: tag}
	})
}
