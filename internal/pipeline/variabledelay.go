package pipeline

import (
	"context"
	"sync"

	"github.com/arung-agamani/denpa-pipeline/internal/msg"
)

// VariableDelay maintains a target latency (delayJiffies) and
// reconciles it against the currently-applied delay whenever it
// changes: growing latency ramps down, inserts MsgSilence for the
// difference, then ramps up; shrinking latency ramps down, drops the
// difference worth of audio (splitting messages as needed), then
// ramps up. Two independent instances sit in the pipeline — one
// accepting user-requested latency (between seeker and skipper), one
// accepting animator-reported latency (before the starvation ramper)
// — so each side can adjust without the other observing it.
type VariableDelay struct {
	up   Source
	down Sink
	sm   *StageMachine

	factory   *msg.MessageFactory
	rampShort uint64

	mu             sync.Mutex
	currentJiffies uint64
	targetJiffies  uint64
	toDrop         uint64 // remaining jiffies to drop while shrinking
	toInsert       uint64 // remaining jiffies of silence to insert while growing
}

func NewVariableDelay(up Source, down Sink, factory *msg.MessageFactory, rampShort uint64) *VariableDelay {
	return &VariableDelay{up: up, down: down, sm: NewStageMachine(), factory: factory, rampShort: rampShort}
}

func (v *VariableDelay) State() State { return v.sm.State() }

// SetDelay updates the target latency. adjustment = target - current
// determines whether this grows or shrinks.
func (v *VariableDelay) SetDelay(target uint64) {
	v.mu.Lock()
	v.targetJiffies = target
	adjustment := int64(target) - int64(v.currentJiffies)
	v.mu.Unlock()
	if adjustment == 0 {
		return
	}
	v.sm.BeginRampDown(v.rampShort)
	v.mu.Lock()
	if adjustment > 0 {
		v.toInsert = uint64(adjustment)
	} else {
		v.toDrop = uint64(-adjustment)
	}
	v.mu.Unlock()
}

func (v *VariableDelay) Run(ctx context.Context) error {
	for {
		if v.sm.State() == RampedDown {
			v.mu.Lock()
			insert, drop := v.toInsert, v.toDrop
			v.mu.Unlock()

			if insert > 0 {
				sil := v.factory.NewSilence(insert, 0)
				if err := v.down.Push(ctx, sil); err != nil {
					return err
				}
				v.mu.Lock()
				v.currentJiffies = v.targetJiffies
				v.toInsert = 0
				v.mu.Unlock()
				v.sm.BeginRampUp(v.rampShort)
				continue
			}
			if drop > 0 {
				if err := v.dropNext(ctx); err != nil {
					return err
				}
				continue
			}
			v.sm.BeginRampUp(v.rampShort)
		}

		m, err := v.up.Pull(ctx)
		if err != nil {
			return err
		}

		if n := jiffiesOf(m); n > 0 && v.sm.State() != Running {
			r := v.sm.Advance(n)
			attachRamp(m, r)
		}

		if err := v.down.Push(ctx, m); err != nil {
			return err
		}
	}
}

// dropNext pulls the next audio-bearing message and discards up to
// v.toDrop jiffies of it, splitting if the message is larger than
// what remains to drop, then pushes the remainder (if any)
// downstream unramped.
func (v *VariableDelay) dropNext(ctx context.Context) error {
	m, err := v.up.Pull(ctx)
	if err != nil {
		return err
	}
	pcm, ok := m.(*msg.AudioPcm)
	if !ok {
		return v.down.Push(ctx, m)
	}

	v.mu.Lock()
	drop := v.toDrop
	v.mu.Unlock()

	perSample := uint64(0)
	if pcm.SampleRate > 0 {
		perSample = pcm.Jiffies() / uint64(pcm.Frames())
	}
	if perSample == 0 {
		v.mu.Lock()
		v.toDrop = 0
		v.currentJiffies = v.targetJiffies
		v.mu.Unlock()
		return nil
	}

	dropFrames := int(drop / perSample)
	if dropFrames >= pcm.Frames() {
		v.mu.Lock()
		v.toDrop -= uint64(pcm.Frames()) * perSample
		v.mu.Unlock()
		v.factory.Free(pcm)
		return nil
	}
	if dropFrames == 0 {
		// Remainder smaller than one sample period: not worth
		// splitting over, treat the drop as satisfied.
		v.mu.Lock()
		v.toDrop = 0
		v.currentJiffies = v.targetJiffies
		v.mu.Unlock()
		return v.down.Push(ctx, pcm)
	}

	head, tail := v.factory.SplitAudioPcm(pcm, dropFrames)
	v.factory.Free(head)
	v.mu.Lock()
	v.toDrop = 0
	v.currentJiffies = v.targetJiffies
	v.mu.Unlock()
	return v.down.Push(ctx, tail)
}
