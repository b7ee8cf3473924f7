package pipeline

import (
	"context"
	"sync"

	"github.com/arung-agamani/denpa-pipeline/internal/msg"
)

// Skipper skips the rest of the current stream (or every pending
// stream) on command: it ramps down, asks the current stream's
// handler to stop, and discards audio until the matching flush, then
// resumes passing messages through at full scale.
type Skipper struct {
	up   Source
	down Sink
	sm   *StageMachine

	rampShort uint64

	mu          sync.Mutex
	curStream   uint64
	curHandler  msg.StreamHandler
	skipAll     bool
	discarding  bool
	awaitFlush  uint64
}

func NewSkipper(up Source, down Sink, rampShort uint64) *Skipper {
	return &Skipper{up: up, down: down, sm: NewStageMachine(), rampShort: rampShort}
}

func (sk *Skipper) State() State { return sk.sm.State() }

// SkipNext skips only the current stream; playback continues with
// whatever follows it in the reservoir.
func (sk *Skipper) SkipNext() {
	sk.mu.Lock()
	sk.skipAll = false
	sk.mu.Unlock()
	sk.sm.BeginRampDown(sk.rampShort)
}

// SkipAll discards every pending stream, not just the current one.
func (sk *Skipper) SkipAll() {
	sk.mu.Lock()
	sk.skipAll = true
	sk.mu.Unlock()
	sk.sm.BeginRampDown(sk.rampShort)
}

func (sk *Skipper) Run(ctx context.Context) error {
	for {
		m, err := sk.up.Pull(ctx)
		if err != nil {
			return err
		}

		if ds, ok := m.(*msg.DecodedStream); ok {
			sk.mu.Lock()
			sk.curStream, sk.curHandler = ds.StreamID, ds.Handler
			discardThisOne := sk.discarding && sk.skipAll
			sk.mu.Unlock()
			if discardThisOne {
				if ds.Handler != nil {
					ds.Handler.TryStop(ds.StreamID)
				}
				continue
			}
		}

		sk.mu.Lock()
		discarding := sk.discarding
		awaitFlush := sk.awaitFlush
		sk.mu.Unlock()

		if discarding {
			if fl, ok := m.(*msg.Flush); ok && fl.FlushID == awaitFlush {
				sk.mu.Lock()
				sk.discarding = false
				sk.mu.Unlock()
				sk.sm.BeginRampUp(sk.rampShort)
			}
			continue
		}

		if n := jiffiesOf(m); n > 0 {
			r := sk.sm.Advance(n)
			attachRamp(m, r)
			if sk.sm.State() == RampedDown {
				sk.mu.Lock()
				handler, streamID := sk.curHandler, sk.curStream
				sk.mu.Unlock()
				if err := sk.down.Push(ctx, m); err != nil {
					return err
				}
				if handler != nil {
					flushID, ok := handler.TryStop(streamID)
					if ok {
						sk.mu.Lock()
						sk.discarding = true
						sk.awaitFlush = flushID
						sk.mu.Unlock()
					} else {
						sk.sm.BeginRampUp(sk.rampShort)
					}
				} else {
					sk.sm.BeginRampUp(sk.rampShort)
				}
				continue
			}
		}

		if err := sk.down.Push(ctx, m); err != nil {
			return err
		}
	}
}
