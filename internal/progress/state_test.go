package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEaseOutCubic_Endpoints(t *testing.T) {
	assert.Equal(t, 0.0, EaseOutCubic(0))
	assert.Equal(t, 1.0, EaseOutCubic(1))
}

func TestEaseOutCubic_Monotonic(t *testing.T) {
	prev := EaseOutCubic(0)
	for i := 1; i <= 1000; i++ {
		v := EaseOutCubic(float64(i) / 1000)
		if v < prev {
			t.Fatalf("EaseOutCubic not monotonic at t=%v: %v < %v", float64(i)/1000, v, prev)
		}
		prev = v
	}
}

func TestEaseOutCubic_ClampsOutOfRange(t *testing.T) {
	assert.Equal(t, 0.0, EaseOutCubic(-0.5))
	assert.Equal(t, 1.0, EaseOutCubic(1.5))
}

func TestIncrement(t *testing.T) {
	tests := []struct {
		name  string
		state State
		want  float64
	}{
		{"start", State{Current: 0}, 0.3},
		{"just below 40", State{Current: 39.9}, 0.3},
		{"at 40", State{Current: 40}, 0.5},
		{"middle", State{Current: 75}, 0.5},
		{"at 90 not waiting", State{Current: 90}, 0.3},
		{"at 90 waiting", State{Current: 90, WaitingForSecondPhase: true}, 0.1},
		{"at 95 waiting", State{Current: 95, WaitingForSecondPhase: true}, 0.05},
		{"below 90 waiting", State{Current: 60, WaitingForSecondPhase: true}, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Increment(tt.state), 1e-9)
		})
	}
}

func TestStep_ReachesTargetExactly(t *testing.T) {
	for _, target := range []float64{0, 0.1, 7, 20, 39.95, 40, 63.3, 80, 95, 99.99, 100} {
		s := State{Target: target, TimerActive: true}
		for i := 0; i < 10000 && s.TimerActive; i++ {
			s, _ = Step(s)
			if s.Current > target {
				t.Fatalf("target %v: current overshot to %v", target, s.Current)
			}
		}
		assert.False(t, s.TimerActive, "target %v: timer still active", target)
		assert.Equal(t, target, s.Current, "target %v", target)
	}
}

func TestStep_WaitingApproachStillReachesTarget(t *testing.T) {
	s := State{Current: 80, Target: 95, TimerActive: true, WaitingForSecondPhase: true}
	for i := 0; i < 10000 && s.TimerActive; i++ {
		s, _ = Step(s)
	}
	assert.Equal(t, 95.0, s.Current)
}

func TestStep_WaitingNeverReaches100(t *testing.T) {
	s := State{Current: 95, Target: 100, TimerActive: true, WaitingForSecondPhase: true}
	for i := 0; i < 2000; i++ {
		s, _ = Step(s)
	}
	assert.Less(t, s.Current, 100.0)
	assert.True(t, s.TimerActive)
}

func TestStep_RenderedNonDecreasing(t *testing.T) {
	s := State{Target: 100, TimerActive: true}
	prev := -1.0
	for s.TimerActive {
		var rendered float64
		s, rendered = Step(s)
		if rendered < prev {
			t.Fatalf("rendered went backwards: %v < %v", rendered, prev)
		}
		prev = rendered
	}
	assert.Equal(t, 100.0, prev)
}

func TestStep_StopsWhenAlreadyAtTarget(t *testing.T) {
	s, rendered := Step(State{Current: 40, Target: 40, TimerActive: true})
	assert.False(t, s.TimerActive)
	assert.Equal(t, 40.0, s.Current)
	assert.InDelta(t, EaseOutCubic(0.4)*100, rendered, 1e-9)
}
