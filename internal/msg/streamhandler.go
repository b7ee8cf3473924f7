package msg

// IDInvalid is the sentinel returned by a StreamHandler when a
// control-plane request can't be satisfied (stale stream id, stream
// already stopped, not seekable). Callers must treat it the same as
// an explicit refusal, never as a valid id.
const IDInvalid uint64 = 0

// OkToPlayStatus is the stopper's gate on a freshly arrived
// DecodedStream.
type OkToPlayStatus int

const (
	OkToPlayYes OkToPlayStatus = iota
	OkToPlayNo
	OkToPlayLater
)

func (s OkToPlayStatus) String() string {
	switch s {
	case OkToPlayYes:
		return "yes"
	case OkToPlayNo:
		return "no"
	default:
		return "later"
	}
}

// StreamHandler is the capability carried by EncodedStream/
// DecodedStream messages as a non-owning back-pointer. Whoever
// currently owns a stream (a Protocol, or a pipeline stage that has
// wrapped an upstream handler) answers these without the caller
// needing to know the producer's identity.
//
// Implementations must never block on data flow: each method latches
// a request and returns promptly, per the concurrency model.
type StreamHandler interface {
	OkToPlay(streamID uint64) OkToPlayStatus
	TrySeek(streamID uint64, bytes uint64) (flushID uint64, ok bool)
	TryStop(streamID uint64) (flushID uint64, ok bool)
	NotifyStarving(mode string, streamID uint64)
}

// IDProvider is the single central source of the three monotonic id
// spaces: track ids, stream ids, and halt/flush ids. All pipeline
// components that mint one of these share the same provider so that
// staleness comparisons (old id < current id) stay meaningful
// process-wide.
type IDProvider struct {
	track atomicCounter
	strm  atomicCounter
	halt  atomicCounter
}

// NewIDProvider returns a provider whose three spaces all start at 1
// (0 is reserved as IDInvalid).
func NewIDProvider() *IDProvider {
	return &IDProvider{}
}

func (p *IDProvider) NextTrackID() uint64 { return p.track.next() }
func (p *IDProvider) NextStreamID() uint64 { return p.strm.next() }
func (p *IDProvider) NextHaltID() uint64   { return p.halt.next() }
