// Package marking turns a learner's answer into flash and pro feedback.
package marking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/abhisek/examcoach/internal/llm"
)

// Tier selects how much feedback is generated.
type Tier string

const (
	// TierFlash is a short summary of the mark scheme.
	TierFlash Tier = "flash"
	// TierPro marks the answer in detail.
	TierPro Tier = "pro"
)

// ParseTier maps a route segment to a tier.
func ParseTier(s string) (Tier, bool) {
	switch Tier(s) {
	case TierFlash, TierPro:
		return Tier(s), true
	}
	return "", false
}

const (
	flashMaxTokens = 1024
	proMaxTokens   = 4096
)

// Error is a marking failure with the message shown to the learner.
type Error struct {
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

// Marker generates feedback with one provider per tier.
type Marker struct {
	flash   llm.Provider
	pro     llm.Provider
	timeout time.Duration
}

// New creates a Marker. A zero timeout means no limit beyond ctx.
func New(flash, pro llm.Provider, timeout time.Duration) *Marker {
	return &Marker{flash: flash, pro: pro, timeout: timeout}
}

// Feedback generates tier feedback for answer. The text has newlines
// replaced by <br>. Failures are returned as *Error.
func (m *Marker) Feedback(ctx context.Context, tier Tier, item Item, answer string) (string, error) {
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	var (
		provider llm.Provider
		req      llm.Request
	)
	switch tier {
	case TierFlash:
		provider = m.flash
		req = llm.Prompt(buildFlashPrompt(item))
		req.MaxTokens = flashMaxTokens
	case TierPro:
		provider = m.pro
		req = llm.Prompt(buildProPrompt(item, answer))
		req.MaxTokens = proMaxTokens
	default:
		return "", &Error{Message: fmt.Sprintf("unknown feedback tier %q", tier)}
	}

	ctx = llm.WithPurpose(ctx, string(tier)+"-feedback")
	resp, err := provider.Generate(ctx, req)
	if err != nil {
		merr := classify(err)
		slog.Error("feedback generation failed", "tier", tier, "error", merr.Message)
		return "", merr
	}

	return strings.ReplaceAll(resp.Text, "\n", "<br>"), nil
}

func classify(err error) *Error {
	var rl *llm.ErrRateLimit
	if errors.As(err, &rl) {
		return &Error{
			Message: "ResourceExhausted: The AI service is currently busy. Please wait 30 seconds and try again. Details: " + err.Error(),
			Err:     err,
		}
	}
	return &Error{
		Message: "Unexpected error in get_ai_response: " + err.Error(),
		Err:     err,
	}
}
