package pipeline

import (
	"context"

	"github.com/arung-agamani/denpa-pipeline/internal/jiffies"
	"github.com/arung-agamani/denpa-pipeline/internal/msg"
)

// PipelineObserver receives the push-based notifications the control
// API and diagnostics surface subscribe to. Reporter is the single
// stage that calls these, so every observer sees a consistent,
// ordered view of pipeline state regardless of which stage actually
// produced the underlying message.
type PipelineObserver interface {
	NotifyMode(name string)
	NotifyTrack(trackID uint64, uri, metadata string)
	NotifyMetaText(text string)
	NotifyStreamInfo(streamID uint64, sampleRate, bitDepth, channels uint, codecName string, lossless bool)
	NotifyTime(seconds float64, totalSeconds float64)
}

// Reporter emits observer callbacks for track/metatext/time/stream
// info as each corresponding message passes through, forwarding every
// message unchanged.
type Reporter struct {
	up   Source
	down Sink

	observer PipelineObserver

	sampleRate   uint
	totalJiffies uint64
	seenJiffies  uint64
}

func NewReporter(up Source, down Sink, obs PipelineObserver) *Reporter {
	return &Reporter{up: up, down: down, observer: obs}
}

func (r *Reporter) Run(ctx context.Context) error {
	for {
		m, err := r.up.Pull(ctx)
		if err != nil {
			return err
		}

		switch v := m.(type) {
		case *msg.Mode:
			if r.observer != nil {
				r.observer.NotifyMode(v.Name)
			}
		case *msg.Track:
			if r.observer != nil {
				r.observer.NotifyTrack(v.TrackID, v.URI, v.Metadata)
			}
		case *msg.MetaText:
			if r.observer != nil {
				r.observer.NotifyMetaText(v.Text)
			}
		case *msg.DecodedStream:
			r.sampleRate = v.SampleRate
			r.totalJiffies = v.TotalJiffies
			r.seenJiffies = 0
			if r.observer != nil {
				r.observer.NotifyStreamInfo(v.StreamID, v.SampleRate, v.BitDepth, v.Channels, v.CodecName, v.Lossless)
			}
		case *msg.AudioPcm:
			r.seenJiffies += v.Jiffies()
			r.reportTime()
		case *msg.Silence:
			r.seenJiffies += v.Jiffies
			r.reportTime()
		}

		if err := r.down.Push(ctx, m); err != nil {
			return err
		}
	}
}

func (r *Reporter) reportTime() {
	if r.observer == nil || r.sampleRate == 0 {
		return
	}
	r.observer.NotifyTime(jiffies.ToSeconds(r.seenJiffies), jiffies.ToSeconds(r.totalJiffies))
}
