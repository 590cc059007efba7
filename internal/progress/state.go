package progress

import "math"

// State is the animation state of a progress bar. All percentages are in
// the range [0, 100].
type State struct {
	Current float64
	Target  float64

	// TimerActive is true while ticks are still moving Current toward Target.
	TimerActive bool

	// WaitingForSecondPhase slows the bar down near the end while the slow
	// feedback request is outstanding.
	WaitingForSecondPhase bool

	Visible bool
}

// Increment returns how far a single tick advances s.Current.
func Increment(s State) float64 {
	switch {
	case s.WaitingForSecondPhase && s.Current >= 90:
		return 0.1 * (1 - (s.Current-90)/10)
	case s.Current >= 40 && s.Current < 90:
		return 0.5
	default:
		return 0.3
	}
}

// EaseOutCubic maps t in [0,1] onto a decelerating curve with
// EaseOutCubic(0) == 0 and EaseOutCubic(1) == 1.
func EaseOutCubic(t float64) float64 {
	t = math.Max(0, math.Min(1, t))
	return 1 - math.Pow(1-t, 3)
}

// Rendered returns the eased percentage shown for s.
func Rendered(s State) float64 {
	if !s.TimerActive && s.Target == 100 && s.Current >= s.Target {
		return 100
	}
	return EaseOutCubic(s.Current/100) * 100
}

// Step advances s by one tick and returns the new state with the eased
// percentage to display. Current never moves backwards and never passes
// Target. Once Current reaches Target the timer is marked inactive.
func Step(s State) (State, float64) {
	if s.Current >= s.Target {
		s.TimerActive = false
		return s, Rendered(s)
	}

	s.Current = math.Min(s.Current+Increment(s), s.Target)
	if s.Current >= s.Target {
		s.TimerActive = false
	}
	return s, Rendered(s)
}

func clamp(p float64) float64 {
	if math.IsNaN(p) {
		return 0
	}
	return math.Max(0, math.Min(100, p))
}
