package pipeline

import (
	"context"
	"sync"

	"github.com/arung-agamani/denpa-pipeline/internal/msg"
)

// FullnessSource reports the decoded reservoir's current fill level,
// polled by StarvationRamper on every pulled message.
type FullnessSource interface {
	SizeInJiffies() uint64
}

// StarvationObserver is told when starvation begins, so upstream (the
// animator, typically) can react — e.g. by logging or surfacing it to
// a diagnostics feed.
type StarvationObserver interface {
	NotifyStarving(mode string)
}

// StarvationRamper watches decoded-reservoir fullness. When it drops
// below a threshold it emits a starvation notification upstream and
// begins ramping down; if audio returns before the ramp completes it
// reverses direction mid-ramp rather than finishing the fade-out.
type StarvationRamper struct {
	up   Source
	down Sink
	sm   *StageMachine

	reservoir    FullnessSource
	threshold    uint64
	rampDuration uint64
	observer     StarvationObserver
	mode         string

	mu        sync.Mutex
	starving  bool
}

func NewStarvationRamper(up Source, down Sink, reservoir FullnessSource, threshold, rampDuration uint64, obs StarvationObserver) *StarvationRamper {
	return &StarvationRamper{
		up: up, down: down, sm: NewStageMachine(),
		reservoir: reservoir, threshold: threshold, rampDuration: rampDuration, observer: obs,
	}
}

func (s *StarvationRamper) State() State { return s.sm.State() }

func (s *StarvationRamper) Run(ctx context.Context) error {
	for {
		m, err := s.up.Pull(ctx)
		if err != nil {
			return err
		}

		if mode, ok := m.(*msg.Mode); ok {
			s.mode = mode.Name
		}

		level := s.reservoir.SizeInJiffies()
		s.mu.Lock()
		wasStarving := s.starving
		nowStarving := level < s.threshold
		s.starving = nowStarving
		s.mu.Unlock()

		switch {
		case nowStarving && !wasStarving:
			if s.observer != nil {
				s.observer.NotifyStarving(s.mode)
			}
			s.sm.BeginRampDown(s.rampDuration)
		case !nowStarving && wasStarving:
			// Audio returned before the ramp finished (or after it
			// finished): reverse direction mid-ramp, retaining the
			// current value, rather than waiting to fully silence.
			s.sm.BeginRampUp(s.rampDuration)
		}

		if n := jiffiesOf(m); n > 0 {
			r := s.sm.Advance(n)
			attachRamp(m, r)
		}

		if err := s.down.Push(ctx, m); err != nil {
			return err
		}
	}
}
