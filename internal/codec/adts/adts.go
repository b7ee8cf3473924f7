// Package adts implements recognition only for ADTS-framed AAC
// (the MPEG-4 Part 3 raw stream container used by several of the
// HLS segment formats this pipeline's scope touches). Full AAC
// decoding is out of scope; this codec exists so the controller's
// cheapest-first recognition ordering has more than one registrant to
// exercise, and so an ADTS stream fails cleanly with
// ErrFeatureUnsupported rather than silently mis-decoding as WAV.
package adts

import "github.com/arung-agamani/denpa-pipeline/internal/codec"

// Codec recognises the 12-bit ADTS sync word but cannot decode AAC
// frames.
type Codec struct{}

func New() *Codec { return &Codec{} }

func (c *Codec) Name() string { return "adts" }

// RecognitionCost is higher than wav.Codec's: the sync word needs a
// bit-level check rather than a 4-byte string compare.
func (c *Codec) RecognitionCost() int { return 10 }

func (c *Codec) Recognise(window []byte) bool {
	if len(window) < 7 {
		return false
	}
	return window[0] == 0xFF && window[1]&0xF0 == 0xF0
}

func (c *Codec) StreamInitialise(src codec.ByteSource) (codec.StreamInfo, error) {
	return codec.StreamInfo{}, codec.ErrFeatureUnsupported
}

func (c *Codec) Process(src codec.ByteSource) ([]int32, error) {
	return nil, codec.ErrStreamEnded
}

func (c *Codec) TrySeek(seeker codec.Seeker, sample uint64) error {
	return codec.ErrFeatureUnsupported
}
