// Package wav implements the one concrete Codec this repository
// decodes end to end: PCM WAV (RIFF/WAVE, fmt chunk format tag 1 or
// 0xFFFE extensible, 8/16/24/32-bit integer samples). Every other format named in
// the pipeline's scope (FLAC, MP3, AAC/ADTS, ALAC, Vorbis) stays
// behind the codec.Codec interface only.
package wav

import (
	"encoding/binary"
	"errors"

	"github.com/arung-agamani/denpa-pipeline/internal/codec"
	"github.com/arung-agamani/denpa-pipeline/internal/jiffies"
)

// Codec decodes canonical PCM WAV streams.
type Codec struct {
	sampleRate uint
	bitDepth   uint
	channels   uint
	dataBytes  uint64
	bytesRead  uint64
	blockAlign int
}

// New returns an unstarted WAV codec instance. The controller keeps
// one instance for every stream; StreamInitialise overwrites the
// format fields from each stream's own header.
func New() *Codec { return &Codec{} }

func (c *Codec) Name() string { return "wav" }

// RecognitionCost is low: checking the 12-byte RIFF/WAVE preamble is
// the cheapest possible recognition test in this codec set.
func (c *Codec) RecognitionCost() int { return 0 }

func (c *Codec) Recognise(window []byte) bool {
	if len(window) < 12 {
		return false
	}
	return string(window[0:4]) == "RIFF" && string(window[8:12]) == "WAVE"
}

var errMissingFmtChunk = errors.New("wav: missing fmt chunk")
var errMissingDataChunk = errors.New("wav: missing data chunk")

func (c *Codec) StreamInitialise(src codec.ByteSource) (codec.StreamInfo, error) {
	hdr := make([]byte, 12)
	if _, err := readFull(src, hdr); err != nil {
		return codec.StreamInfo{}, codec.ErrStreamCorrupt
	}
	if string(hdr[0:4]) != "RIFF" || string(hdr[8:12]) != "WAVE" {
		return codec.StreamInfo{}, codec.ErrStreamCorrupt
	}

	var haveFmt bool
	for {
		chunkHdr := make([]byte, 8)
		if _, err := readFull(src, chunkHdr); err != nil {
			if haveFmt {
				return codec.StreamInfo{}, errMissingDataChunk
			}
			return codec.StreamInfo{}, errMissingFmtChunk
		}
		id := string(chunkHdr[0:4])
		size := binary.LittleEndian.Uint32(chunkHdr[4:8])

		switch id {
		case "fmt ":
			body := make([]byte, size)
			if _, err := readFull(src, body); err != nil || len(body) < 16 {
				return codec.StreamInfo{}, codec.ErrStreamCorrupt
			}
			tag := binary.LittleEndian.Uint16(body[0:2])
			if tag != 1 && tag != 0xFFFE {
				return codec.StreamInfo{}, codec.ErrFeatureUnsupported
			}
			c.channels = uint(binary.LittleEndian.Uint16(body[2:4]))
			c.sampleRate = uint(binary.LittleEndian.Uint32(body[4:8]))
			c.blockAlign = int(binary.LittleEndian.Uint16(body[12:14]))
			c.bitDepth = uint(binary.LittleEndian.Uint16(body[14:16]))
			if size%2 == 1 {
				discardPad(src)
			}
			haveFmt = true
		case "data":
			if !haveFmt {
				return codec.StreamInfo{}, errMissingFmtChunk
			}
			c.dataBytes = uint64(size)
			return c.infoFromDataChunk()
		default:
			if _, err := readFull(src, make([]byte, size)); err != nil {
				return codec.StreamInfo{}, codec.ErrStreamCorrupt
			}
			if size%2 == 1 {
				discardPad(src)
			}
		}
	}
}

func (c *Codec) infoFromDataChunk() (codec.StreamInfo, error) {
	if c.channels == 0 || c.sampleRate == 0 || c.bitDepth == 0 || c.blockAlign == 0 {
		return codec.StreamInfo{}, codec.ErrStreamCorrupt
	}
	totalSamples := c.dataBytes / uint64(c.blockAlign)
	return codec.StreamInfo{
		SampleRate:   c.sampleRate,
		BitDepth:     c.bitDepth,
		Channels:     c.channels,
		BitRate:      c.sampleRate * uint(c.blockAlign) * 8,
		TotalJiffies: jiffies.FromSamples(totalSamples, c.sampleRate),
		Lossless:     true,
		Seekable:     true,
	}, nil
}

// Process reads one block of raw PCM and widens it to interleaved
// int32 samples the rest of the pipeline operates on uniformly.
func (c *Codec) Process(src codec.ByteSource) ([]int32, error) {
	const blockFrames = 1024
	bytesPerSample := int(c.bitDepth) / 8
	raw := make([]byte, blockFrames*int(c.channels)*bytesPerSample)
	n, err := src.Read(raw)
	if n == 0 {
		if err != nil {
			return nil, codec.ErrStreamEnded
		}
		return nil, codec.ErrStreamEnded
	}
	raw = raw[:n]
	c.bytesRead += uint64(n)

	samples := make([]int32, n/bytesPerSample)
	for i := range samples {
		off := i * bytesPerSample
		switch bytesPerSample {
		case 1:
			samples[i] = (int32(raw[off]) - 128) << 24
		case 2:
			v := int16(binary.LittleEndian.Uint16(raw[off : off+2]))
			samples[i] = int32(v) << 16
		case 3:
			v := int32(raw[off]) | int32(raw[off+1])<<8 | int32(raw[off+2])<<16
			if v&0x800000 != 0 {
				v |= -0x1000000 // sign-extend 24-bit
			}
			samples[i] = v << 8
		case 4:
			samples[i] = int32(binary.LittleEndian.Uint32(raw[off : off+4]))
		}
	}
	if c.bytesRead >= c.dataBytes {
		return samples, nil
	}
	return samples, nil
}

// TrySeek computes the byte offset for a sample index directly, since
// PCM WAV has a fixed block size and no inter-frame dependencies.
func (c *Codec) TrySeek(seeker codec.Seeker, sample uint64) error {
	byteOffset := sample * uint64(c.blockAlign)
	if _, ok := seeker.TrySeekTo(byteOffset); !ok {
		return codec.ErrFeatureUnsupported
	}
	return nil
}

func readFull(src codec.ByteSource, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := src.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
		if n == 0 {
			return total, errors.New("wav: short read")
		}
	}
	return total, nil
}

func discardPad(src codec.ByteSource) {
	_, _ = src.Read(make([]byte, 1))
}
