package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/arung-agamani/denpa-pipeline/internal/msg"
)

// chanSource/chanSink let tests wire a stage's up/down to plain Go
// channels instead of the full reservoir/link machinery.
type chanSource struct{ ch chan msg.Msg }

func (c chanSource) Pull(ctx context.Context) (msg.Msg, error) {
	select {
	case m := <-c.ch:
		return m, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

type chanSink struct{ ch chan msg.Msg }

func (c chanSink) Push(ctx context.Context, m msg.Msg) error {
	select {
	case c.ch <- m:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func TestStageMachineRampDownThenUpReversal(t *testing.T) {
	sm := NewStageMachine()
	sm.BeginRampDown(1000)
	if sm.State() != RampingDown {
		t.Fatalf("expected RampingDown")
	}
	sm.Advance(400)
	midValue := sm.ramp.Value
	midRemaining := sm.ramp.Remaining

	// Reverse mid-ramp: BeginRampUp should retain the current value
	// and flip remaining relative to the new duration.
	sm.BeginRampUp(1000)
	if sm.ramp.Value != midValue {
		t.Fatalf("expected ramp value preserved across reversal, got %d want %d", sm.ramp.Value, midValue)
	}
	if sm.ramp.Remaining != 1000-midRemaining {
		t.Fatalf("expected remaining = duration - oldRemaining, got %d", sm.ramp.Remaining)
	}
}

func TestStageMachineReachesRampedDown(t *testing.T) {
	sm := NewStageMachine()
	sm.BeginRampDown(100)
	sm.Advance(100)
	if sm.State() != RampedDown {
		t.Fatalf("expected RampedDown after consuming the full ramp duration, got %v", sm.State())
	}
}

func TestStageMachineReachesRunning(t *testing.T) {
	sm := NewStageMachine()
	sm.BeginRampDown(100)
	sm.Advance(100)
	sm.BeginRampUp(100)
	sm.Advance(100)
	if sm.State() != Running {
		t.Fatalf("expected Running after a full ramp-up, got %v", sm.State())
	}
}

func newTestFactory() *msg.MessageFactory {
	return msg.NewMessageFactory(msg.DefaultFactoryConfig(), msg.NewIDProvider(), nil)
}

func TestMuterDiscardsWhileMuted(t *testing.T) {
	f := newTestFactory()
	up := chanSource{ch: make(chan msg.Msg, 4)}
	down := chanSink{ch: make(chan msg.Msg, 4)}
	m := NewMuter(up, down, 100)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Run(ctx)

	m.Mute()
	pcm := f.NewAudioPcm(make([]int32, 10), 1, 44100, 0, msg.RampFull)
	// Feed enough audio to exhaust the ramp-down window, then some
	// more that should be fully discarded once muted.
	up.ch <- pcm
	select {
	case <-down.ch:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for ramped message")
	}

	up.ch <- f.NewAudioPcm(make([]int32, 10), 1, 44100, 0, msg.RampFull)
	select {
	case <-down.ch:
		t.Fatal("expected audio to be discarded once fully muted")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestTrackInspectorReportsSilentTrack(t *testing.T) {
	f := newTestFactory()
	up := chanSource{ch: make(chan msg.Msg, 4)}
	down := chanSink{ch: make(chan msg.Msg, 4)}

	var reported []bool
	obs := trackObsFunc(func(id uint64, produced bool) { reported = append(reported, produced) })
	ti := NewTrackInspector(up, down, obs)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go ti.Run(ctx)

	track := f.NewTrack("file:///silent.wav", "")
	up.ch <- track
	<-down.ch
	up.ch <- f.NewHalt(1)
	<-down.ch

	if len(reported) != 1 || reported[0] != false {
		t.Fatalf("expected one report of no audio produced, got %v", reported)
	}
}

type trackObsFunc func(trackID uint64, producedAudio bool)

func (f trackObsFunc) NotifyTrackPlayOutcome(trackID uint64, producedAudio bool) { f(trackID, producedAudio) }
