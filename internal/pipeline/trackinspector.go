package pipeline

import (
	"context"

	"github.com/arung-agamani/denpa-pipeline/internal/msg"
)

// TrackObserver is notified whether the current track ever produced
// audio before the next Track message arrived.
type TrackObserver interface {
	NotifyTrackPlayOutcome(trackID uint64, producedAudio bool)
}

// TrackInspector passes every message through unchanged, watching
// only whether a Track is followed by any AudioPcm before the next
// Track, Halt, or Quit — reporting failure for tracks whose stream
// never actually produced sound (a bad URI, an unsupported codec,
// and so on all look the same from here: silence).
type TrackInspector struct {
	up   Source
	down Sink

	observer TrackObserver

	curTrackID    uint64
	haveTrack     bool
	producedAudio bool
}

func NewTrackInspector(up Source, down Sink, obs TrackObserver) *TrackInspector {
	return &TrackInspector{up: up, down: down, observer: obs}
}

func (t *TrackInspector) Run(ctx context.Context) error {
	for {
		m, err := t.up.Pull(ctx)
		if err != nil {
			return err
		}

		switch v := m.(type) {
		case *msg.Track:
			t.reportIfPending()
			t.curTrackID, t.haveTrack, t.producedAudio = v.TrackID, true, false
		case *msg.AudioPcm:
			t.producedAudio = true
		case *msg.Halt, *msg.Quit:
			t.reportIfPending()
			t.haveTrack = false
		}

		if err := t.down.Push(ctx, m); err != nil {
			return err
		}
	}
}

func (t *TrackInspector) reportIfPending() {
	if t.haveTrack && t.observer != nil {
		t.observer.NotifyTrackPlayOutcome(t.curTrackID, t.producedAudio)
	}
}
