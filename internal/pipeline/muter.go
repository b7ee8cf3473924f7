package pipeline

import (
	"context"
	"sync"
)

// Muter applies a long ramp to/from silence on operator command.
// While muted it keeps pulling and discarding audio so the rest of
// the pipeline (and anything it backpressures) keeps flowing — it
// never stops pulling the way Stopper's pause does.
type Muter struct {
	up   Source
	down Sink
	sm   *StageMachine

	rampLong uint64

	mu    sync.Mutex
	muted bool
}

func NewMuter(up Source, down Sink, rampLong uint64) *Muter {
	return &Muter{up: up, down: down, sm: NewStageMachine(), rampLong: rampLong}
}

func (mu *Muter) State() State { return mu.sm.State() }

func (mu *Muter) Mute() {
	mu.mu.Lock()
	mu.muted = true
	mu.mu.Unlock()
	mu.sm.BeginRampDown(mu.rampLong)
}

func (mu *Muter) Unmute() {
	mu.mu.Lock()
	mu.muted = false
	mu.mu.Unlock()
	mu.sm.BeginRampUp(mu.rampLong)
}

func (mu *Muter) Run(ctx context.Context) error {
	for {
		m, err := mu.up.Pull(ctx)
		if err != nil {
			return err
		}

		if n := jiffiesOf(m); n > 0 {
			mu.mu.Lock()
			muted := mu.muted
			mu.mu.Unlock()
			if muted && mu.sm.State() == RampedDown {
				continue // discard: fully muted, keep pulling upstream
			}

			r := mu.sm.Advance(n)
			attachRamp(m, r)
		}

		if err := mu.down.Push(ctx, m); err != nil {
			return err
		}
	}
}
