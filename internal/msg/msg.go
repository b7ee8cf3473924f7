// Package msg implements the pipeline's message model: a tagged
// variant ("Msg") allocated from per-variant pools, carrying a "next"
// link so messages can be chained, flowing one way from protocol to
// animator.
package msg

import "github.com/arung-agamani/denpa-pipeline/internal/jiffies"

// Kind tags which variant a Msg is. Stages dispatch on this with an
// exhaustive switch; an unhandled Kind for a stage that declares
// support for only some variants is a programming error and panics,
// per the pipeline's "rigid contract" error policy.
type Kind int

const (
	KindMode Kind = iota
	KindTrack
	KindDrain
	KindDelay
	KindEncodedStream
	KindAudioEncoded
	KindMetaText
	KindStreamInterrupted
	KindHalt
	KindFlush
	KindWait
	KindDecodedStream
	KindAudioPcm
	KindSilence
	KindPlayable
	KindQuit
)

func (k Kind) String() string {
	switch k {
	case KindMode:
		return "Mode"
	case KindTrack:
		return "Track"
	case KindDrain:
		return "Drain"
	case KindDelay:
		return "Delay"
	case KindEncodedStream:
		return "EncodedStream"
	case KindAudioEncoded:
		return "AudioEncoded"
	case KindMetaText:
		return "MetaText"
	case KindStreamInterrupted:
		return "StreamInterrupted"
	case KindHalt:
		return "Halt"
	case KindFlush:
		return "Flush"
	case KindWait:
		return "Wait"
	case KindDecodedStream:
		return "DecodedStream"
	case KindAudioPcm:
		return "AudioPcm"
	case KindSilence:
		return "Silence"
	case KindPlayable:
		return "Playable"
	case KindQuit:
		return "Quit"
	default:
		return "Unknown"
	}
}

// Msg is the common interface every variant satisfies. Stages never
// hold variant-specific types except immediately after a type switch.
type Msg interface {
	Kind() Kind
	Next() Msg
	SetNext(Msg)
}

// link is embedded by every variant to provide the chaining field.
type link struct {
	next Msg
}

func (l *link) Next() Msg      { return l.next }
func (l *link) SetNext(m Msg) { l.next = m }

// --- Variant payloads -----------------------------------------------------

// Mode marks a boundary; downstream stages reset per-mode state when
// they see one, before forwarding it.
type Mode struct {
	link
	Name             string
	SupportsLatency  bool
	IsRealTime       bool
	SupportsNextPrev bool
}

func (*Mode) Kind() Kind { return KindMode }

// Track precedes the audio that represents it. A Track may be
// followed by no audio at all, which is a track-level failure.
type Track struct {
	link
	URI      string
	Metadata string
	TrackID  uint64
}

func (*Track) Kind() Kind { return KindTrack }

// Drain's callback fires when the driver (not an intermediate stage)
// finally consumes it, used to synchronise state transitions with the
// true end of in-flight audio.
type Drain struct {
	link
	Callback func()
}

func (*Drain) Kind() Kind { return KindDrain }

// Delay requests a playback latency; RequestedJiffies is the total
// delay desired, AnimatorJiffies the portion attributed to the
// animator's own output latency.
type Delay struct {
	link
	RequestedJiffies uint64
	AnimatorJiffies  uint64
}

func (*Delay) Kind() Kind { return KindDelay }

// EncodedStream is issued once per stream; every AudioEncoded that
// follows belongs to it until the next non-audio message.
type EncodedStream struct {
	link
	URI        string
	TotalBytes uint64
	StreamID   uint64
	Seekable   bool
	Live       bool
	Handler    StreamHandler
}

func (*EncodedStream) Kind() Kind { return KindEncodedStream }

// AudioEncoded carries opaque, splittable encoded bytes. Only valid
// between an EncodedStream and the next non-audio message.
type AudioEncoded struct {
	link
	Bytes []byte
}

func (*AudioEncoded) Kind() Kind { return KindAudioEncoded }

// Split divides the encoded bytes at byte offset n, returning two new
// payload slices (not new pooled Msgs — callers construct those via
// the factory, reusing this split).
func (a *AudioEncoded) Split(n int) ([]byte, []byte) {
	return a.Bytes[:n:n], a.Bytes[n:]
}

// MetaText is purely informational (now-playing text, ICY metadata).
type MetaText struct {
	link
	Text string
}

func (*MetaText) Kind() Kind { return KindMetaText }

// StreamInterrupted signals a brief discontinuity (e.g. a RAOP resend
// timeout); stages may apply a mini-ramp around it.
type StreamInterrupted struct {
	link
}

func (*StreamInterrupted) Kind() Kind { return KindStreamInterrupted }

// Halt carries a deliberate pause in audio flow, matched against halt
// ids issued by Stopper.BeginStop.
type Halt struct {
	link
	HaltID uint64
}

func (*Halt) Kind() Kind { return KindHalt }

// Flush marks the end of a discarded section, matched against flush
// ids issued by seek/stop/wait.
type Flush struct {
	link
	FlushID uint64
}

func (*Flush) Kind() Kind { return KindFlush }

// Wait tells the consumer to transition to "waiting" until a matching
// Flush arrives.
type Wait struct {
	link
	FlushID uint64
}

func (*Wait) Kind() Kind { return KindWait }

// DecodedStream is reissued on every codec (re)start; ramps and
// delays reset on it.
type DecodedStream struct {
	link
	StreamID     uint64
	BitRate      uint
	BitDepth     uint
	SampleRate   uint
	Channels     uint
	CodecName    string
	TotalJiffies uint64
	StartSample  uint64
	Lossless     bool
	Seekable     bool
	Live         bool
	Handler      StreamHandler
}

func (*DecodedStream) Kind() Kind { return KindDecodedStream }

// AudioPcm is a window onto a shared DecodedAudio buffer, splittable
// at any sample boundary; each half keeps its own reference to the
// buffer.
type AudioPcm struct {
	link
	buf           *DecodedAudio
	offsetFrames  int
	numFrames     int
	SampleRate    uint
	OffsetJiffies uint64 // offset into the track this window begins at
	Ramp          Ramp
}

func (*AudioPcm) Kind() Kind { return KindAudioPcm }

// Samples returns the interleaved samples this window covers.
func (a *AudioPcm) Samples() []int32 { return a.buf.Window(a.offsetFrames, a.numFrames) }

// Frames reports how many (possibly multi-channel) samples this
// window covers.
func (a *AudioPcm) Frames() int { return a.numFrames }

// Jiffies reports this window's duration.
func (a *AudioPcm) Jiffies() uint64 { return uint64(a.numFrames) * jiffies.PerSample(a.SampleRate) }

// Silence materialises to zero samples when played, deferring the
// choice of sample rate/channels until PreDriver binds it from the
// most recent DecodedStream.
type Silence struct {
	link
	Jiffies       uint64
	OffsetJiffies uint64
}

func (*Silence) Kind() Kind { return KindSilence }

// Playable is the final form produced by PreDriver: ready-to-drain
// samples, at a fixed sample rate/channel count, with no further
// splitting expected.
type Playable struct {
	link
	buf          *DecodedAudio
	offsetFrames int
	numFrames    int
	SampleRate   uint
	Silent       bool // true for a materialised Silence
}

func (*Playable) Kind() Kind { return KindPlayable }

func (p *Playable) Samples() []int32 {
	if p.Silent {
		return nil
	}
	return p.buf.Window(p.offsetFrames, p.numFrames)
}

func (p *Playable) Frames() int { return p.numFrames }

// Quit travels to the end of the pipeline, causing each stage to
// unblock and exit.
type Quit struct {
	link
}

func (*Quit) Kind() Kind { return KindQuit }
