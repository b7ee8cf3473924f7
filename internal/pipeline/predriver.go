package pipeline

import (
	"context"

	"github.com/arung-agamani/denpa-pipeline/internal/jiffies"
	"github.com/arung-agamani/denpa-pipeline/internal/msg"
)

// PreDriver converts AudioPcm/Silence into Playable, the only audio
// variant the driver ever sees, binding Silence's sample rate and
// channel count from the most recently seen DecodedStream (Silence
// itself carries neither). It also applies any ramp attached to an
// outgoing AudioPcm by scaling the samples in place, so downstream of
// here a Playable's samples are already final.
//
// The driver is guaranteed to see only
// {Mode, Drain, Track, DecodedStream, Playable, Halt, Quit} —
// every other variant is consumed by an earlier stage.
type PreDriver struct {
	up      Source
	down    Sink
	factory *msg.MessageFactory

	sampleRate uint
	channels   uint
}

func NewPreDriver(up Source, down Sink, factory *msg.MessageFactory) *PreDriver {
	return &PreDriver{up: up, down: down, factory: factory}
}

func (p *PreDriver) Run(ctx context.Context) error {
	for {
		m, err := p.up.Pull(ctx)
		if err != nil {
			return err
		}

		switch v := m.(type) {
		case *msg.DecodedStream:
			p.sampleRate, p.channels = v.SampleRate, v.Channels
			if err := p.down.Push(ctx, m); err != nil {
				return err
			}
			continue

		case *msg.AudioPcm:
			scaleInPlace(v.Samples(), v.Ramp)
			playable := p.factory.NewPlayableFromPcm(v)
			if err := p.down.Push(ctx, playable); err != nil {
				return err
			}
			continue

		case *msg.Silence:
			frames := 0
			if p.sampleRate > 0 {
				frames = int(jiffies.ToSamples(v.Jiffies, p.sampleRate))
			}
			playable := p.factory.NewPlayableSilence(p.sampleRate, frames)
			if err := p.down.Push(ctx, playable); err != nil {
				return err
			}
			continue

		case *msg.Flush, *msg.Wait, *msg.EncodedStream, *msg.AudioEncoded,
			*msg.MetaText, *msg.StreamInterrupted:
			// Not part of the driver-facing surface; PreDriver is the
			// boundary where these are finally dropped.
			continue
		}

		if err := p.down.Push(ctx, m); err != nil {
			return err
		}
	}
}

// scaleInPlace multiplies every sample by the ramp's current value.
// A full-scale ramp (no active fade) is a no-op pass.
func scaleInPlace(samples []int32, r msg.Ramp) {
	if r.Value == msg.RampMax {
		return
	}
	for i, s := range samples {
		samples[i] = r.Scale(s)
	}
}
