package feedback

import (
	"context"
	"log/slog"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/examcoach/internal/client"
	"github.com/abhisek/examcoach/internal/markup"
	"github.com/abhisek/examcoach/internal/progress"
)

// DefaultSettleDelay is how long a smooth scroll is given to finish before
// the next phase starts.
const DefaultSettleDelay = 500 * time.Millisecond

// Progress targets for each step of a submission cycle.
const (
	targetSubmitted   = 20
	targetFlashDone   = 40
	targetProStarting = 80
	targetProWaiting  = 95
	targetComplete    = 100
)

// Orchestrator runs one submission cycle at a time: the flash request, then
// the pro request, driving the progress bar and collecting both results.
//
// Every cycle carries a number and a context. Starting a new cycle or
// calling Reset cancels the context and bumps the number, so responses from
// an abandoned cycle are dropped instead of overwriting newer output.
type Orchestrator struct {
	client   Client
	progress *progress.Animator
	settle   time.Duration

	stage  Stage
	cycle  int
	ctx    context.Context
	cancel context.CancelFunc
	answer string

	flash       *Result
	pro         *Result
	err         error
	navRevealed bool
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithSettleDelay overrides the post-scroll delay.
func WithSettleDelay(d time.Duration) Option {
	return func(o *Orchestrator) {
		o.settle = d
	}
}

// New creates an orchestrator that drives bar while it fetches from c.
func New(c Client, bar *progress.Animator, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		client:   c,
		progress: bar,
		settle:   DefaultSettleDelay,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Submit starts a new cycle for answer. Blank answers are ignored.
func (o *Orchestrator) Submit(answer string) tea.Cmd {
	if strings.TrimSpace(answer) == "" {
		return nil
	}

	o.Reset()
	o.ctx, o.cancel = context.WithCancel(context.Background())
	o.answer = answer

	o.progress.Show()
	o.stage = StagePhase1Pending
	slog.Debug("feedback cycle started", "cycle", o.cycle, "answer_len", len(answer))

	return tea.Batch(
		o.progress.SetTarget(targetSubmitted),
		o.fetch(o.ctx, PhaseFlash),
	)
}

// Reset abandons the current cycle, clears both outputs and hides the
// progress bar.
func (o *Orchestrator) Reset() {
	if o.cancel != nil {
		o.cancel()
		o.cancel = nil
	}
	o.cycle++
	o.stage = StageIdle
	o.answer = ""
	o.flash = nil
	o.pro = nil
	o.err = nil
	o.navRevealed = false
	o.progress.Reset()
}

// Update handles progress ticks and the cycle's own messages.
func (o *Orchestrator) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case progress.TickMsg:
		return o.progress.Update(msg)

	case resultMsg:
		if msg.cycle != o.cycle {
			slog.Debug("dropping stale feedback", "phase", msg.phase, "cycle", msg.cycle, "current", o.cycle)
			return nil
		}
		if msg.err != nil {
			return o.fail(msg.phase, msg.err)
		}
		if msg.phase == PhaseFlash {
			return o.finishFlash(msg.payload)
		}
		return o.finishPro(msg.payload)

	case settledMsg:
		if msg.cycle != o.cycle {
			return nil
		}
		if msg.phase == PhaseFlash {
			return o.startPro()
		}
		o.stage = StageDone
		o.finish()
		return nil
	}
	return nil
}

func (o *Orchestrator) finishFlash(p *client.FeedbackPayload) tea.Cmd {
	bar := o.progress.SetTarget(targetFlashDone)
	if p.HasError() {
		slog.Warn("flash feedback error", "error", p.Error)
		o.flash = &Result{Phase: PhaseFlash, Text: p.Error, IsError: true}
	} else {
		o.flash = &Result{Phase: PhaseFlash, Text: p.Response}
	}
	return tea.Batch(bar, o.scrollTo(LandmarkSummary, PhaseFlash))
}

// startPro begins phase two. The flash result is already stored when this
// runs, so it is always rendered before the pro request goes out.
func (o *Orchestrator) startPro() tea.Cmd {
	o.stage = StagePhase2Pending
	// 80 is only a waypoint: the 95 target replaces its timer straight away.
	o.progress.SetTarget(targetProStarting)
	o.progress.SetWaiting(true)

	return tea.Batch(
		o.progress.SetTarget(targetProWaiting),
		o.fetch(o.ctx, PhasePro),
	)
}

func (o *Orchestrator) finishPro(p *client.FeedbackPayload) tea.Cmd {
	o.progress.SetWaiting(false)
	bar := o.progress.SetTarget(targetComplete)
	if p.HasError() {
		slog.Warn("pro feedback error", "error", p.Error)
		o.pro = &Result{Phase: PhasePro, Text: p.Error, IsError: true}
	} else {
		o.pro = &Result{Phase: PhasePro, Text: markup.BoldToHTML(p.Response)}
	}
	return tea.Batch(bar, o.scrollTo(LandmarkDetail, PhasePro))
}

func (o *Orchestrator) fail(phase Phase, err error) tea.Cmd {
	slog.Error("feedback request failed", "phase", phase, "cycle", o.cycle, "error", err)
	o.err = err
	o.stage = StageFailed
	o.progress.SetWaiting(false)
	bar := o.progress.SetTarget(0)
	o.finish()
	return bar
}

// finish runs on every terminal stage.
func (o *Orchestrator) finish() {
	o.navRevealed = true
	if o.cancel != nil {
		o.cancel()
		o.cancel = nil
	}
}

func (o *Orchestrator) fetch(ctx context.Context, phase Phase) tea.Cmd {
	c, cycle, answer := o.client, o.cycle, o.answer
	return func() tea.Msg {
		payload, err := c.Feedback(ctx, phase.tier(), answer)
		return resultMsg{cycle: cycle, phase: phase, payload: payload, err: err}
	}
}

func (o *Orchestrator) scrollTo(l Landmark, phase Phase) tea.Cmd {
	cycle := o.cycle
	return tea.Batch(
		func() tea.Msg { return ScrollMsg{Landmark: l} },
		tea.Tick(o.settle, func(time.Time) tea.Msg {
			return settledMsg{cycle: cycle, phase: phase}
		}),
	)
}

// Stage returns where the current cycle is.
func (o *Orchestrator) Stage() Stage {
	return o.stage
}

// Busy reports whether a request of the current cycle is outstanding.
func (o *Orchestrator) Busy() bool {
	return o.stage == StagePhase1Pending || o.stage == StagePhase2Pending
}

// Flash returns the flash result, or nil before it arrives.
func (o *Orchestrator) Flash() *Result {
	return o.flash
}

// Pro returns the pro result, or nil before it arrives.
func (o *Orchestrator) Pro() *Result {
	return o.pro
}

// Err returns the transport failure that ended the cycle, if any.
func (o *Orchestrator) Err() error {
	return o.err
}

// NavRevealed reports whether the cycle has ended and the navigation
// controls should be shown.
func (o *Orchestrator) NavRevealed() bool {
	return o.navRevealed
}
