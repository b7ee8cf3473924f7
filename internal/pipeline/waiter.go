package pipeline

import (
	"context"
	"sync"

	"github.com/arung-agamani/denpa-pipeline/internal/msg"
)

// Waiter is told upfront which flush id to wait for (by a source that
// must pause pending an external event): it ramps down, discards
// everything until that flush arrives, then ramps back up.
type Waiter struct {
	up   Source
	down Sink
	sm   *StageMachine

	rampShort uint64

	mu         sync.Mutex
	awaitFlush uint64
	waiting    bool
	discarding bool
}

func NewWaiter(up Source, down Sink, rampShort uint64) *Waiter {
	return &Waiter{up: up, down: down, sm: NewStageMachine(), rampShort: rampShort}
}

func (w *Waiter) State() State { return w.sm.State() }

// Wait arms the waiter for the given flush id.
func (w *Waiter) Wait(flushID uint64) {
	w.mu.Lock()
	w.awaitFlush = flushID
	w.waiting = true
	w.mu.Unlock()
	w.sm.BeginRampDown(w.rampShort)
}

func (w *Waiter) Run(ctx context.Context) error {
	for {
		m, err := w.up.Pull(ctx)
		if err != nil {
			return err
		}

		w.mu.Lock()
		discarding := w.discarding
		awaitFlush := w.awaitFlush
		w.mu.Unlock()

		if discarding {
			if fl, ok := m.(*msg.Flush); ok && fl.FlushID == awaitFlush {
				w.mu.Lock()
				w.discarding, w.waiting = false, false
				w.mu.Unlock()
				w.sm.BeginRampUp(w.rampShort)
			}
			continue
		}

		if n := jiffiesOf(m); n > 0 {
			r := w.sm.Advance(n)
			attachRamp(m, r)
			if w.sm.State() == RampedDown {
				w.mu.Lock()
				w.discarding = w.waiting
				w.mu.Unlock()
			}
		}

		if err := w.down.Push(ctx, m); err != nil {
			return err
		}
	}
}
