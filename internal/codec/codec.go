// Package codec implements the Container stage, the CodecController,
// and the Codec interface concrete codecs register against. Only one
// concrete codec (WAV) is implemented end to end; the rest of the
// format universe is reachable only through the interface, per the
// out-of-scope decision on concrete codec implementations.
package codec

import "errors"

// Sentinel errors a Codec's StreamInitialise/Process may return. They
// map directly onto the controller's documented reaction to each.
var (
	// ErrStreamCorrupt means the codec recognised the stream but its
	// header/frame data is invalid. The controller calls TryStop and
	// the pipeline moves on.
	ErrStreamCorrupt = errors.New("codec: stream corrupt")
	// ErrFeatureUnsupported means the stream is a valid instance of
	// the format but uses a feature this codec can't decode.
	ErrFeatureUnsupported = errors.New("codec: feature unsupported")
	// ErrStreamEnded means the codec reached a clean end of stream;
	// the controller awaits the next EncodedStream.
	ErrStreamEnded = errors.New("codec: stream ended")
	// ErrStreamStart means the codec has hit a new stream start (e.g.
	// an embedded format change mid-stream). The controller ends the
	// current stream on it exactly as for ErrStreamEnded; recognition
	// is not restarted on the remaining bytes.
	ErrStreamStart = errors.New("codec: stream start")
)

// Seeker lets a codec translate a requested sample offset into a byte
// offset it then asks the controller to seek the protocol to.
type Seeker interface {
	// TrySeekTo requests the controller perform a protocol-level seek
	// to byteOffset. Returns the flush id the protocol issued, or
	// false if refused.
	TrySeekTo(byteOffset uint64) (flushID uint64, ok bool)
}

// Codec is the out-of-scope external collaborator: anything that can
// recognise and decode one encoded format. RecognitionCost orders
// candidates cheapest-first during stream recognition.
type Codec interface {
	Name() string

	// RecognitionCost is an arbitrary, codec-chosen ordering hint:
	// lower runs earlier during recognition.
	RecognitionCost() int

	// Recognise is given up to the recognition window's bytes (never
	// consumed) and reports whether this codec claims the stream.
	Recognise(window []byte) bool

	// StreamInitialise is called once recognition succeeds. It reads
	// whatever header bytes it needs from src and returns the decoded
	// stream's parameters. Returning one of the sentinel errors above
	// drives the controller's documented reaction; any other error is
	// treated as ErrStreamCorrupt.
	StreamInitialise(src ByteSource) (StreamInfo, error)

	// Process pulls more encoded bytes from src and returns one
	// decoded block of interleaved int32 samples. Returning
	// ErrStreamEnded signals a clean end of stream.
	Process(src ByteSource) ([]int32, error)

	// TrySeek asks the codec to translate a sample offset into a byte
	// offset, which it requests via the given Seeker.
	TrySeek(seeker Seeker, sample uint64) error
}

// StreamInfo is what StreamInitialise reports back to the controller,
// which uses it to construct the pipeline's DecodedStream message.
type StreamInfo struct {
	SampleRate   uint
	BitDepth     uint
	Channels     uint
	BitRate      uint
	TotalJiffies uint64
	StartSample  uint64
	Lossless     bool
	Seekable     bool
}

// ByteSource is the narrow read surface a Codec is given over the
// controller's buffered encoded-stream input; it never sees the
// pipeline's Msg types directly.
type ByteSource interface {
	// Read returns up to len(p) bytes, analogous to io.Reader but
	// without the io dependency since codecs never need the rest of
	// that interface surface.
	Read(p []byte) (int, error)
	// Peek returns the next n bytes without consuming them, as far as
	// the controller's recognition buffer allows.
	Peek(n int) ([]byte, error)
}
