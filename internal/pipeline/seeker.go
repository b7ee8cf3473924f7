package pipeline

import (
	"context"
	"sync"

	"github.com/arung-agamani/denpa-pipeline/internal/codec"
	"github.com/arung-agamani/denpa-pipeline/internal/msg"
)

// SeekObserver is notified when a requested seek completes, either
// with the flush id that will bound the discarded audio or
// msg.IDInvalid if the seek was refused.
type SeekObserver interface {
	NotifySeekComplete(handle int, flushID uint64)
}

// ActiveCodec is the subset of codec.Codec the seeker needs to
// resolve a sample-based seek into a protocol-level byte seek.
type ActiveCodec interface {
	TrySeek(seeker codec.Seeker, sample uint64) error
}

type seekRequest struct {
	handle int
	sample uint64
}

// Seeker consumes seek requests, ramping down before asking the
// active codec to relocate and ramping back up once the matching
// flush has been seen (or immediately, if the seek was refused).
//
// Seeker implements codec.Seeker itself: the active codec calls back
// through TrySeekTo with the byte offset it computed, and Seeker
// forwards that to the current stream's StreamHandler, remembering
// the resulting flush id for resolveSeek to act on.
type Seeker struct {
	up   Source
	down Sink
	sm   *StageMachine

	rampShort uint64
	observer  SeekObserver

	mu          sync.Mutex
	activeCodec ActiveCodec
	curStream   uint64
	curHandler  msg.StreamHandler
	pending     *seekRequest

	awaitFlushID uint64
	discarding   bool
}

func NewSeeker(up Source, down Sink, rampShort uint64, obs SeekObserver) *Seeker {
	return &Seeker{up: up, down: down, sm: NewStageMachine(), rampShort: rampShort, observer: obs}
}

func (s *Seeker) State() State { return s.sm.State() }

// SetActiveCodec is called by the codec controller whenever the
// active codec changes (new recognised stream).
func (s *Seeker) SetActiveCodec(c ActiveCodec) {
	s.mu.Lock()
	s.activeCodec = c
	s.mu.Unlock()
}

// TrySeekTo implements codec.Seeker, forwarding to the current
// stream's handler and latching the result for resolveSeek.
func (s *Seeker) TrySeekTo(byteOffset uint64) (uint64, bool) {
	s.mu.Lock()
	h, streamID := s.curHandler, s.curStream
	s.mu.Unlock()
	if h == nil {
		return msg.IDInvalid, false
	}
	flushID, ok := h.TrySeek(streamID, byteOffset)
	if ok {
		s.mu.Lock()
		s.awaitFlushID = flushID
		s.mu.Unlock()
	}
	return flushID, ok
}

// Seek requests a seek to sample in the stream currently flowing,
// reported back to the observer via handle once resolved.
func (s *Seeker) Seek(handle int, sample uint64) {
	s.mu.Lock()
	s.pending = &seekRequest{handle: handle, sample: sample}
	s.mu.Unlock()
	s.sm.BeginRampDown(s.rampShort)
}

func (s *Seeker) Run(ctx context.Context) error {
	for {
		m, err := s.up.Pull(ctx)
		if err != nil {
			return err
		}

		if ds, ok := m.(*msg.DecodedStream); ok {
			s.mu.Lock()
			s.curStream = ds.StreamID
			s.curHandler = ds.Handler
			s.mu.Unlock()
		}

		switch {
		case s.discarding:
			if fl, ok := m.(*msg.Flush); ok && fl.FlushID == s.awaitFlushID {
				s.discarding = false
				s.sm.BeginRampUp(s.rampShort)
			}
			continue

		case s.sm.State() == RampingDown:
			if n := jiffiesOf(m); n > 0 {
				r := s.sm.Advance(n)
				attachRamp(m, r)
				if s.sm.State() == RampedDown {
					s.resolveSeek()
				}
			}

		case s.sm.State() == RampingUp:
			if n := jiffiesOf(m); n > 0 {
				r := s.sm.Advance(n)
				attachRamp(m, r)
			}
		}

		if err := s.down.Push(ctx, m); err != nil {
			return err
		}
	}
}

// resolveSeek is called once the ramp-down completes: it asks the
// active codec to relocate, which calls back through TrySeekTo.
func (s *Seeker) resolveSeek() {
	s.mu.Lock()
	req := s.pending
	c := s.activeCodec
	s.pending = nil
	s.mu.Unlock()

	if req == nil || c == nil {
		s.sm.BeginRampUp(s.rampShort)
		return
	}

	err := c.TrySeek(s, req.sample)

	s.mu.Lock()
	flushID := s.awaitFlushID
	s.mu.Unlock()

	if err != nil || flushID == msg.IDInvalid {
		if s.observer != nil {
			s.observer.NotifySeekComplete(req.handle, msg.IDInvalid)
		}
		s.sm.BeginRampUp(s.rampShort)
		return
	}

	if s.observer != nil {
		s.observer.NotifySeekComplete(req.handle, flushID)
	}
	s.discarding = true
}
