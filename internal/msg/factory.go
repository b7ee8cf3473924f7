package msg

import (
	"github.com/arung-agamani/denpa-pipeline/internal/diag"
	"github.com/arung-agamani/denpa-pipeline/internal/jiffies"
)

// FactoryConfig sizes every pool the factory owns. Counts are derived
// (by the caller, typically internal/pipeline's wiring code) from
// reservoir byte/jiffy budgets divided by block size, plus slack for
// in-flight splits, per the allocator design.
type FactoryConfig struct {
	ModeCount              int
	TrackCount             int
	DrainCount             int
	DelayCount             int
	EncodedStreamCount     int
	AudioEncodedCount      int
	MetaTextCount          int
	StreamInterruptedCount int
	HaltCount              int
	FlushCount             int
	WaitCount              int
	DecodedStreamCount     int
	AudioPcmCount          int
	SilenceCount           int
	PlayableCount          int
	QuitCount              int

	// DecodedAudioCount and MaxFrames size the shared sample-buffer
	// pool; MaxFrames is the per-buffer capacity in frames, bounded by
	// MaxJiffiesPerDecodedMsg at the pipeline's configured sample rate.
	DecodedAudioCount int
	MaxFrames         int
	MaxChannels       int

	// MaxEncodedBytes bounds a single AudioEncoded's payload (kMaxBytes).
	MaxEncodedBytes int
}

// DefaultFactoryConfig returns reasonable pool sizes for a single
// active stream, suitable for tests and small deployments.
func DefaultFactoryConfig() FactoryConfig {
	return FactoryConfig{
		ModeCount:              4,
		TrackCount:             16,
		DrainCount:             4,
		DelayCount:             4,
		EncodedStreamCount:     8,
		AudioEncodedCount:      256,
		MetaTextCount:          16,
		StreamInterruptedCount: 8,
		HaltCount:              8,
		FlushCount:             8,
		WaitCount:              8,
		DecodedStreamCount:     8,
		AudioPcmCount:          512,
		SilenceCount:           64,
		PlayableCount:          512,
		QuitCount:              2,
		DecodedAudioCount:      256,
		MaxFrames:              4096,
		MaxChannels:            2,
		MaxEncodedBytes:        6144,
	}
}

// MessageFactory is the single source of Msg values: every stage must
// obtain new messages from it rather than constructing variants
// directly, since construction means checking a cell out of a pool.
type MessageFactory struct {
	ids *IDProvider

	modePool              *Pool[Mode]
	trackPool             *Pool[Track]
	drainPool             *Pool[Drain]
	delayPool             *Pool[Delay]
	encodedStreamPool     *Pool[EncodedStream]
	audioEncodedPool      *Pool[AudioEncoded]
	metaTextPool          *Pool[MetaText]
	streamInterruptedPool *Pool[StreamInterrupted]
	haltPool              *Pool[Halt]
	flushPool             *Pool[Flush]
	waitPool              *Pool[Wait]
	decodedStreamPool     *Pool[DecodedStream]
	audioPcmPool          *Pool[AudioPcm]
	silencePool           *Pool[Silence]
	playablePool          *Pool[Playable]
	quitPool              *Pool[Quit]
	decodedAudioPool      *Pool[DecodedAudio]

	maxFrames       int
	maxChannels     int
	maxEncodedBytes int
}

// NewMessageFactory builds every pool per cfg and, if reg is non-nil,
// registers each with it for diagnostics.
func NewMessageFactory(cfg FactoryConfig, ids *IDProvider, reg *diag.Registry) *MessageFactory {
	f := &MessageFactory{
		ids:             ids,
		maxFrames:       cfg.MaxFrames,
		maxChannels:     cfg.MaxChannels,
		maxEncodedBytes: cfg.MaxEncodedBytes,
	}
	f.modePool = NewPool("msg.Mode", cfg.ModeCount, func() *Mode { return &Mode{} }, reg)
	f.trackPool = NewPool("msg.Track", cfg.TrackCount, func() *Track { return &Track{} }, reg)
	f.drainPool = NewPool("msg.Drain", cfg.DrainCount, func() *Drain { return &Drain{} }, reg)
	f.delayPool = NewPool("msg.Delay", cfg.DelayCount, func() *Delay { return &Delay{} }, reg)
	f.encodedStreamPool = NewPool("msg.EncodedStream", cfg.EncodedStreamCount, func() *EncodedStream { return &EncodedStream{} }, reg)
	f.audioEncodedPool = NewPool("msg.AudioEncoded", cfg.AudioEncodedCount, func() *AudioEncoded {
		return &AudioEncoded{Bytes: make([]byte, 0, cfg.MaxEncodedBytes)}
	}, reg)
	f.metaTextPool = NewPool("msg.MetaText", cfg.MetaTextCount, func() *MetaText { return &MetaText{} }, reg)
	f.streamInterruptedPool = NewPool("msg.StreamInterrupted", cfg.StreamInterruptedCount, func() *StreamInterrupted { return &StreamInterrupted{} }, reg)
	f.haltPool = NewPool("msg.Halt", cfg.HaltCount, func() *Halt { return &Halt{} }, reg)
	f.flushPool = NewPool("msg.Flush", cfg.FlushCount, func() *Flush { return &Flush{} }, reg)
	f.waitPool = NewPool("msg.Wait", cfg.WaitCount, func() *Wait { return &Wait{} }, reg)
	f.decodedStreamPool = NewPool("msg.DecodedStream", cfg.DecodedStreamCount, func() *DecodedStream { return &DecodedStream{} }, reg)
	f.audioPcmPool = NewPool("msg.AudioPcm", cfg.AudioPcmCount, func() *AudioPcm { return &AudioPcm{} }, reg)
	f.silencePool = NewPool("msg.Silence", cfg.SilenceCount, func() *Silence { return &Silence{} }, reg)
	f.playablePool = NewPool("msg.Playable", cfg.PlayableCount, func() *Playable { return &Playable{} }, reg)
	f.quitPool = NewPool("msg.Quit", cfg.QuitCount, func() *Quit { return &Quit{} }, reg)
	f.decodedAudioPool = NewPool("msg.DecodedAudio", cfg.DecodedAudioCount, func() *DecodedAudio {
		return &DecodedAudio{}
	}, reg)
	return f
}

func (f *MessageFactory) IDs() *IDProvider { return f.ids }

// MaxEncodedBytes is the recognition-window / AudioEncoded payload
// ceiling (kMaxBytes) this factory was configured with.
func (f *MessageFactory) MaxEncodedBytes() int { return f.maxEncodedBytes }

// MaxFrames is the per-DecodedAudio-buffer frame capacity.
func (f *MessageFactory) MaxFrames() int { return f.maxFrames }

func (f *MessageFactory) NewMode(name string, supportsLatency, isRealTime, supportsNextPrev bool) *Mode {
	m := f.modePool.Allocate()
	m.SetNext(nil)
	m.Name, m.SupportsLatency, m.IsRealTime, m.SupportsNextPrev = name, supportsLatency, isRealTime, supportsNextPrev
	return m
}

func (f *MessageFactory) NewTrack(uri, metadata string) *Track {
	t := f.trackPool.Allocate()
	t.SetNext(nil)
	t.URI, t.Metadata, t.TrackID = uri, metadata, f.ids.NextTrackID()
	return t
}

func (f *MessageFactory) NewDrain(cb func()) *Drain {
	d := f.drainPool.Allocate()
	d.SetNext(nil)
	d.Callback = cb
	return d
}

func (f *MessageFactory) NewDelay(requested, animator uint64) *Delay {
	d := f.delayPool.Allocate()
	d.SetNext(nil)
	d.RequestedJiffies, d.AnimatorJiffies = requested, animator
	return d
}

func (f *MessageFactory) NewEncodedStream(uri string, totalBytes uint64, seekable, live bool, handler StreamHandler) *EncodedStream {
	e := f.encodedStreamPool.Allocate()
	e.SetNext(nil)
	e.URI, e.TotalBytes, e.StreamID = uri, totalBytes, f.ids.NextStreamID()
	e.Seekable, e.Live, e.Handler = seekable, live, handler
	return e
}

// NewAudioEncoded copies data into a pooled cell. data must not exceed
// MaxEncodedBytes.
func (f *MessageFactory) NewAudioEncoded(data []byte) *AudioEncoded {
	a := f.audioEncodedPool.Allocate()
	a.SetNext(nil)
	a.Bytes = append(a.Bytes[:0], data...)
	return a
}

func (f *MessageFactory) NewMetaText(text string) *MetaText {
	m := f.metaTextPool.Allocate()
	m.SetNext(nil)
	m.Text = text
	return m
}

func (f *MessageFactory) NewStreamInterrupted() *StreamInterrupted {
	s := f.streamInterruptedPool.Allocate()
	s.SetNext(nil)
	return s
}

func (f *MessageFactory) NewHalt(haltID uint64) *Halt {
	h := f.haltPool.Allocate()
	h.SetNext(nil)
	h.HaltID = haltID
	return h
}

func (f *MessageFactory) NewFlush(flushID uint64) *Flush {
	fl := f.flushPool.Allocate()
	fl.SetNext(nil)
	fl.FlushID = flushID
	return fl
}

func (f *MessageFactory) NewWait(flushID uint64) *Wait {
	w := f.waitPool.Allocate()
	w.SetNext(nil)
	w.FlushID = flushID
	return w
}

func (f *MessageFactory) NewDecodedStream(streamID uint64, bitRate, bitDepth, sampleRate, channels uint,
	codecName string, totalJiffies, startSample uint64, lossless, seekable, live bool, handler StreamHandler) *DecodedStream {
	d := f.decodedStreamPool.Allocate()
	d.SetNext(nil)
	d.StreamID, d.BitRate, d.BitDepth, d.SampleRate, d.Channels = streamID, bitRate, bitDepth, sampleRate, channels
	d.CodecName, d.TotalJiffies, d.StartSample = codecName, totalJiffies, startSample
	d.Lossless, d.Seekable, d.Live, d.Handler = lossless, seekable, live, handler
	return d
}

// NewAudioPcm allocates a fresh DecodedAudio buffer, copies samples
// into it, and wraps the full buffer in one AudioPcm window.
func (f *MessageFactory) NewAudioPcm(samples []int32, channels int, sampleRate uint, offsetJiffies uint64, ramp Ramp) *AudioPcm {
	buf := f.decodedAudioPool.Allocate()
	buf.pool = f.decodedAudioPool
	store := make([]int32, len(samples))
	copy(store, samples)
	buf.Set(store, channels)

	a := f.audioPcmPool.Allocate()
	a.SetNext(nil)
	a.buf, a.offsetFrames, a.numFrames = buf, 0, buf.Frames()
	a.SampleRate, a.OffsetJiffies, a.Ramp = sampleRate, offsetJiffies, ramp
	return a
}

// SplitAudioPcm divides a at frame offset atFrame into two independent
// AudioPcm windows sharing the same underlying buffer. a is consumed
// (returned to its pool); the returned pair must each eventually be
// freed independently.
func (f *MessageFactory) SplitAudioPcm(a *AudioPcm, atFrame int) (*AudioPcm, *AudioPcm) {
	if atFrame <= 0 || atFrame >= a.numFrames {
		panic("msg: SplitAudioPcm offset out of range")
	}
	a.buf.addRef()

	head := f.audioPcmPool.Allocate()
	head.SetNext(nil)
	head.buf, head.offsetFrames, head.numFrames = a.buf, a.offsetFrames, atFrame
	head.SampleRate, head.OffsetJiffies = a.SampleRate, a.OffsetJiffies
	head.Ramp = a.Ramp

	tail := f.audioPcmPool.Allocate()
	tail.SetNext(nil)
	tail.buf, tail.offsetFrames, tail.numFrames = a.buf, a.offsetFrames+atFrame, a.numFrames-atFrame
	tail.SampleRate = a.SampleRate
	tail.OffsetJiffies = a.OffsetJiffies + uint64(atFrame)*jiffies.PerSample(a.SampleRate)
	tail.Ramp = a.Ramp

	a.buf = nil
	f.audioPcmPool.Free(a)
	return head, tail
}

func (f *MessageFactory) NewSilence(jiffiesLen, offsetJiffies uint64) *Silence {
	s := f.silencePool.Allocate()
	s.SetNext(nil)
	s.Jiffies, s.OffsetJiffies = jiffiesLen, offsetJiffies
	return s
}

// NewPlayableFromPcm converts a (from AudioPcm, consuming it) into the
// final Playable form PreDriver emits.
func (f *MessageFactory) NewPlayableFromPcm(a *AudioPcm) *Playable {
	p := f.playablePool.Allocate()
	p.SetNext(nil)
	p.buf, p.offsetFrames, p.numFrames, p.SampleRate, p.Silent = a.buf, a.offsetFrames, a.numFrames, a.SampleRate, false
	a.buf = nil
	f.audioPcmPool.Free(a)
	return p
}

// NewPlayableSilence materialises a Silence into frames of zeroes at
// the now-known sample rate.
func (f *MessageFactory) NewPlayableSilence(sampleRate uint, frames int) *Playable {
	p := f.playablePool.Allocate()
	p.SetNext(nil)
	p.buf, p.offsetFrames, p.numFrames, p.SampleRate, p.Silent = nil, 0, frames, sampleRate, true
	return p
}

func (f *MessageFactory) NewQuit() *Quit {
	q := f.quitPool.Allocate()
	q.SetNext(nil)
	return q
}

// Free returns m to its owning pool, releasing any shared buffer
// reference it held.
func (f *MessageFactory) Free(m Msg) {
	switch v := m.(type) {
	case *Mode:
		*v = Mode{}
		f.modePool.Free(v)
	case *Track:
		*v = Track{}
		f.trackPool.Free(v)
	case *Drain:
		*v = Drain{}
		f.drainPool.Free(v)
	case *Delay:
		*v = Delay{}
		f.delayPool.Free(v)
	case *EncodedStream:
		*v = EncodedStream{}
		f.encodedStreamPool.Free(v)
	case *AudioEncoded:
		v.Bytes = v.Bytes[:0]
		v.SetNext(nil)
		f.audioEncodedPool.Free(v)
	case *MetaText:
		*v = MetaText{}
		f.metaTextPool.Free(v)
	case *StreamInterrupted:
		*v = StreamInterrupted{}
		f.streamInterruptedPool.Free(v)
	case *Halt:
		*v = Halt{}
		f.haltPool.Free(v)
	case *Flush:
		*v = Flush{}
		f.flushPool.Free(v)
	case *Wait:
		*v = Wait{}
		f.waitPool.Free(v)
	case *DecodedStream:
		*v = DecodedStream{}
		f.decodedStreamPool.Free(v)
	case *AudioPcm:
		if v.buf != nil {
			v.buf.release()
		}
		*v = AudioPcm{}
		f.audioPcmPool.Free(v)
	case *Silence:
		*v = Silence{}
		f.silencePool.Free(v)
	case *Playable:
		if v.buf != nil {
			v.buf.release()
		}
		*v = Playable{}
		f.playablePool.Free(v)
	case *Quit:
		*v = Quit{}
		f.quitPool.Free(v)
	default:
		panic("msg: Free called on unknown variant")
	}
}
