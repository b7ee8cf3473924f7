package codec

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/arung-agamani/denpa-pipeline/internal/msg"
	"github.com/arung-agamani/denpa-pipeline/internal/reservoir"
)

// RecognitionWindow is the default number of bytes offered to each
// codec during recognition, matching the ~6 KiB the original design
// budgets for header sniffing.
const RecognitionWindow = 6 * 1024

// Controller owns a dedicated goroutine (the "codec thread"): for
// each new EncodedStream it buffers a recognition window, offers it
// to every registered Codec cheapest-first, and on a match drives
// StreamInitialise/Process, pushing DecodedStream/AudioPcm into the
// decoded reservoir.
type Controller struct {
	factory *msg.MessageFactory
	encoded *reservoir.EncodedReservoir
	decoded *reservoir.DecodedReservoir
	codecs  []Codec
	window  int

	mu              sync.Mutex
	pendingFlushID  uint64
	hasPendingFlush bool

	onActive func(Codec)
}

// OnCodecRecognised registers fn to be called with the codec chosen
// for each stream, right after recognition and before
// StreamInitialise. The pipeline's Seeker uses this to learn which
// codec's TrySeek to call for a sample-based seek request.
func (c *Controller) OnCodecRecognised(fn func(Codec)) {
	c.onActive = fn
}

// NewController sorts codecs by RecognitionCost ascending (cheapest
// first) at construction, per the dynamic-codec-registration design.
func NewController(factory *msg.MessageFactory, encoded *reservoir.EncodedReservoir, decoded *reservoir.DecodedReservoir, codecs []Codec) *Controller {
	sorted := append([]Codec(nil), codecs...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].RecognitionCost() < sorted[j].RecognitionCost()
	})
	return &Controller{factory: factory, encoded: encoded, decoded: decoded, codecs: sorted, window: RecognitionWindow}
}

// guardHandler wraps the StreamHandler carried on a fresh
// EncodedStream for the duration of StreamInitialise. A TryStop
// arriving in that window still reaches the upstream handler (so the
// protocol stops producing), but the controller additionally remembers
// the resulting flush id so it can emit the matching Flush itself the
// instant StreamInitialise returns — guaranteeing the request is never
// lost even though the codec thread was busy and couldn't have seen
// the Flush arrive on the data plane yet.
type guardHandler struct {
	msg.StreamHandler
	ctrl *Controller
}

func (g guardHandler) TryStop(streamID uint64) (uint64, bool) {
	flushID, ok := g.StreamHandler.TryStop(streamID)
	if ok {
		g.ctrl.bufferPendingFlush(flushID)
	}
	return flushID, ok
}

func (c *Controller) bufferPendingFlush(flushID uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pendingFlushID = flushID
	c.hasPendingFlush = true
}

func (c *Controller) takePendingFlush() (uint64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id, ok := c.pendingFlushID, c.hasPendingFlush
	c.hasPendingFlush = false
	return id, ok
}

// Run is the controller's main loop. It blocks until ctx is
// cancelled, at which point it returns nil; any other condition is
// treated as this goroutine exiting for good (the caller, typically
// the pipeline orchestrator, decides whether that is fatal).
func (c *Controller) Run(ctx context.Context) error {
	for {
		m, err := c.encoded.Pull(ctx)
		if err != nil {
			return nil
		}
		switch v := m.(type) {
		case *msg.EncodedStream:
			c.runStream(ctx, v)
		case *msg.Quit:
			c.decoded.Push(ctx, v)
			return nil
		default:
			// Mode/Flush/Halt/MetaText arriving with no active
			// stream pass straight through.
			c.decoded.Push(ctx, m)
		}
	}
}

func (c *Controller) runStream(ctx context.Context, es *msg.EncodedStream) {
	src := newSource(ctx, c.factory, c.encoded)
	// handler is reissued on every message the controller emits for
	// this stream (EncodedStream's handler wrapped, then carried on
	// DecodedStream) per the StreamHandler re-wrapping discipline;
	// its TryStop buffers a pending flush for the StreamInitialise
	// window so a concurrent stop is never lost.
	handler := guardHandler{reservoir.WrapHandler(es.Handler), c}

	window, werr := src.Peek(c.window)
	if len(window) == 0 {
		if werr != nil {
			slog.Debug("codec: stream ended before recognition window filled", "uri", es.URI, "error", werr)
		}
		c.factory.Free(es)
		return
	}
	var cont Container
	stripped := cont.Strip(window)

	var active Codec
	for _, cd := range c.codecs {
		if cd.Recognise(stripped) {
			active = cd
			break
		}
	}
	if active == nil {
		slog.Warn("codec: no codec recognised stream", "uri", es.URI, "stream_id", es.StreamID)
		c.stopAndDrain(ctx, handler, es.StreamID, src)
		c.factory.Free(es)
		return
	}
	if c.onActive != nil {
		c.onActive(active)
	}

	info, initErr := active.StreamInitialise(src)
	flushID, hadFlush := c.takePendingFlush()
	if hadFlush {
		c.decoded.Push(ctx, c.factory.NewFlush(flushID))
	}
	if initErr != nil {
		c.reactToCodecError(ctx, handler, es.StreamID, initErr)
		c.factory.Free(es)
		return
	}

	ds := c.factory.NewDecodedStream(es.StreamID, info.BitRate, info.BitDepth, info.SampleRate, info.Channels,
		active.Name(), info.TotalJiffies, info.StartSample, info.Lossless, info.Seekable, es.Live, handler)
	c.decoded.Push(ctx, ds)
	c.factory.Free(es)

	for {
		samples, perr := active.Process(src)
		if perr != nil {
			c.reactToCodecError(ctx, handler, ds.StreamID, perr)
			return
		}
		if len(samples) == 0 {
			continue
		}
		pcm := c.factory.NewAudioPcm(samples, int(info.Channels), info.SampleRate, 0, msg.RampFull)
		if err := c.decoded.Push(ctx, pcm); err != nil {
			return
		}
	}
}

func (c *Controller) reactToCodecError(ctx context.Context, handler msg.StreamHandler, streamID uint64, err error) {
	switch err {
	case ErrStreamEnded:
		return
	case ErrStreamStart:
		return
	case ErrStreamCorrupt, ErrFeatureUnsupported:
		handler.TryStop(streamID)
		return
	default:
		slog.Error("codec: process error", "error", err, "stream_id", streamID)
		handler.TryStop(streamID)
	}
}

func (c *Controller) stopAndDrain(ctx context.Context, handler msg.StreamHandler, streamID uint64, src *source) {
	handler.TryStop(streamID)
	for {
		if _, err := src.Read(make([]byte, 4096)); err != nil {
			pending, perr := src.TakePending()
			if pending != nil {
				c.decoded.Push(ctx, pending)
			}
			_ = perr
			return
		}
	}
}
