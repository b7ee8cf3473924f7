// Package animator defines the driver-facing boundary of the
// pipeline: a PipelineAnimator consumes the final message stream
// (Mode, Drain, Track, DecodedStream, Playable, Halt, Quit) and is
// responsible for actually producing sound, plus reporting the
// latency it's currently holding. Nothing in the pipeline reads that
// report: no VariableDelay instance is adjusted from it.
package animator

import (
	"context"

	"github.com/arung-agamani/denpa-pipeline/internal/msg"
)

// PipelineAnimator is implemented by whatever finally renders audio:
// a real sound device (see the portaudio build-tagged implementation)
// or a no-op sink for pipelines driving a network renderer instead of
// local hardware.
type PipelineAnimator interface {
	// Submit hands the animator the next message in sequence. Submit
	// must not retain m after returning without calling AddRef-style
	// bookkeeping the factory doesn't expose to drivers; it only owns
	// the message for the duration of the call, matching msg's
	// single-owner discipline.
	Submit(ctx context.Context, m msg.Msg) error

	// AnimatorLatencyJiffies reports the extra latency the animator
	// itself introduces (device buffering, resampling, etc.). The
	// pipeline does not call it.
	AnimatorLatencyJiffies() uint64
}
