package feedback

import (
	"context"
	"fmt"

	"github.com/abhisek/examcoach/internal/client"
)

// Client fetches generated feedback for an answer.
type Client interface {
	Feedback(ctx context.Context, tier client.Tier, answer string) (*client.FeedbackPayload, error)
}

// Phase identifies which tier of feedback a result belongs to.
type Phase int

const (
	PhaseFlash Phase = iota
	PhasePro
)

func (p Phase) String() string {
	switch p {
	case PhaseFlash:
		return "flash"
	case PhasePro:
		return "pro"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

func (p Phase) tier() client.Tier {
	if p == PhasePro {
		return client.TierPro
	}
	return client.TierFlash
}

// Stage is the orchestrator's position in one submission cycle.
type Stage int

const (
	StageIdle Stage = iota
	StagePhase1Pending
	StagePhase2Pending
	StageDone
	StageFailed
)

func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "idle"
	case StagePhase1Pending:
		return "phase1-pending"
	case StagePhase2Pending:
		return "phase2-pending"
	case StageDone:
		return "done"
	case StageFailed:
		return "failed"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}

// Result is one rendered tier of feedback. Text is trusted markup; when
// IsError is set it holds the server-reported message.
type Result struct {
	Phase   Phase
	Text    string
	IsError bool
}

// Landmark names a section of the page that can be scrolled to.
type Landmark string

const (
	LandmarkTop     Landmark = "top"
	LandmarkSummary Landmark = "summary"
	LandmarkDetail  Landmark = "detail"
)

// ScrollMsg asks the page to bring a landmark into view.
type ScrollMsg struct {
	Landmark Landmark
}

// resultMsg carries a feedback response back into the update loop.
type resultMsg struct {
	cycle   int
	phase   Phase
	payload *client.FeedbackPayload
	err     error
}

// settledMsg is sent once the scroll after a phase has had time to finish.
type settledMsg struct {
	cycle int
	phase Phase
}
