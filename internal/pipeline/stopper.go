package pipeline

import (
	"context"
	"sync"

	"github.com/arung-agamani/denpa-pipeline/internal/msg"
)

// Stopper implements pause/play/stop with long ramps and holds the
// per-stream OkToPlay gate: every new DecodedStream is offered to the
// stream's handler before any of its audio is allowed through.
//
// Pause is implemented by simply not pulling from upstream once
// RampedDown is reached; Run parks on resume until Play or BeginStop
// changes the state again, rather than returning, since a paused
// player must stay resumable.
type Stopper struct {
	up   Source
	down Sink

	mu sync.Mutex
	sm *StageMachine

	rampLong uint64

	haltID        uint64
	awaitingFlush bool
	curStreamID   uint64
	curHandler    msg.StreamHandler

	resume chan struct{}
}

func NewStopper(up Source, down Sink, rampLong uint64) *Stopper {
	return &Stopper{up: up, down: down, sm: NewStageMachine(), rampLong: rampLong, resume: make(chan struct{}, 1)}
}

func (s *Stopper) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sm.State()
}

// Play requests a transition out of RampedDown/RampingDown back to
// Running, reusing the current ramp value so a partially-applied
// ramp flips direction without a discontinuity.
func (s *Stopper) Play() {
	s.mu.Lock()
	s.sm.BeginRampUp(s.rampLong)
	s.mu.Unlock()
	s.wake()
}

// BeginPause starts a ramp-down after which upstream simply stops
// being pulled.
func (s *Stopper) BeginPause() {
	s.mu.Lock()
	s.haltID = 0
	s.sm.BeginRampDown(s.rampLong)
	s.mu.Unlock()
}

// BeginStop starts a ramp-down that, once complete, emits
// Halt(haltID) and calls TryStop on the current stream's handler.
func (s *Stopper) BeginStop(haltID uint64) {
	s.mu.Lock()
	s.haltID = haltID
	s.sm.BeginRampDown(s.rampLong)
	s.mu.Unlock()
	s.wake()
}

func (s *Stopper) wake() {
	select {
	case s.resume <- struct{}{}:
	default:
	}
}

// Run pumps messages from up to down, applying the Play/Pause/Stop
// state machine and the OkToPlay gate to every DecodedStream.
func (s *Stopper) Run(ctx context.Context) error {
	for {
		s.mu.Lock()
		paused := s.sm.State() == RampedDown && !s.awaitingFlush && s.haltID == 0
		s.mu.Unlock()
		if paused {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-s.resume:
				continue
			}
		}

		m, err := s.up.Pull(ctx)
		if err != nil {
			return err
		}

		if ds, ok := m.(*msg.DecodedStream); ok {
			s.mu.Lock()
			s.curStreamID = ds.StreamID
			s.curHandler = ds.Handler
			s.mu.Unlock()
			if ds.Handler != nil {
				switch ds.Handler.OkToPlay(ds.StreamID) {
				case msg.OkToPlayNo:
					ds.Handler.TryStop(ds.StreamID)
					continue
				case msg.OkToPlayLater:
					s.mu.Lock()
					s.sm.state = RampedDown
					s.mu.Unlock()
					continue
				}
			}
		}

		s.mu.Lock()
		if n := jiffiesOf(m); n > 0 {
			r := s.sm.Advance(n)
			attachRamp(m, r)
		}
		justHalted := s.sm.State() == RampedDown && s.haltID != 0
		var haltID uint64
		var handler msg.StreamHandler
		var streamID uint64
		if justHalted {
			haltID = s.haltID
			s.haltID = 0
			s.awaitingFlush = true
			handler = s.curHandler
			streamID = s.curStreamID
		}
		s.mu.Unlock()

		if err := s.down.Push(ctx, m); err != nil {
			return err
		}

		if justHalted {
			if err := s.down.Push(ctx, &msg.Halt{HaltID: haltID}); err != nil {
				return err
			}
			if handler != nil {
				handler.TryStop(streamID)
			}
		}

		if _, ok := m.(*msg.Flush); ok {
			s.mu.Lock()
			s.awaitingFlush = false
			s.mu.Unlock()
		}
	}
}
