// Package raop implements pieces of the receiving side of Apple's RAOP
// (RTSP/RTP AirPlay audio) protocol: the RTP header layout for
// ALAC-framed audio packets, and the retransmit-request machinery a
// receiver uses to recover a dropped packet instead of gapping.
//
// The encryption path is represented only by its parameter sizes
// (AES-128-CBC key/iv); encryption and ALAC decode are Non-goals of playback fidelity here — see
// Non-goals in the accompanying design notes; this package exists to
// exercise the session/timing control-plane shape, not to decode
// audio.
package raop

import (
	"context"
	"encoding/binary"
	"errors"
	"time"

	"github.com/arung-agamani/denpa-pipeline/internal/protocol"
)

// RTP header field sizes per RFC 3550 as used by RAOP's audio channel.
const (
	rtpHeaderBytes  = 12
	rtpPayloadType  = 0x60 // PT 96 (dynamic, audio), marker bit clear
	resendTimeout   = 80 * time.Millisecond
	resendAttempts  = 3
	aesKeyBytes     = 16
	aesIVBytes      = 16
	ntpEpochOffset  = 2208988800 // seconds between 1900 and 1970 epochs
)

var ErrUnsupported = errors.New("raop: playback decode not implemented")

type rtpHeader struct {
	Marker         bool
	PayloadType    byte
	SequenceNumber uint16
	Timestamp      uint32
	SSRC           uint32
}

func parseRTPHeader(b []byte) (rtpHeader, []byte, error) {
	if len(b) < rtpHeaderBytes {
		return rtpHeader{}, nil, errors.New("raop: short rtp header")
	}
	h := rtpHeader{
		Marker:         b[1]&0x80 != 0,
		PayloadType:    b[1] & 0x7f,
		SequenceNumber: binary.BigEndian.Uint16(b[2:4]),
		Timestamp:      binary.BigEndian.Uint32(b[4:8]),
		SSRC:           binary.BigEndian.Uint32(b[8:12]),
	}
	return h, b[rtpHeaderBytes:], nil
}

// resendTracker remembers sequence numbers seen so far and decides
// when a gap has persisted long enough to issue a retransmit request
// (an RTCP-like "resend" packet on RAOP's control channel) rather
// than silently concealing the loss.
type resendTracker struct {
	lastSeq    uint16
	haveLast   bool
	pending    map[uint16]time.Time
}

func newResendTracker() *resendTracker {
	return &resendTracker{pending: make(map[uint16]time.Time)}
}

// Observe records a newly arrived sequence number and returns the
// sequence numbers that should now be requested for resend (gaps
// older than resendTimeout). A gap that is still missing comes due
// again every resendTimeout until it arrives; the number of requests
// per gap is not capped.
func (r *resendTracker) Observe(seq uint16, now time.Time) []uint16 {
	if r.haveLast && seq != r.lastSeq+1 {
		for s := r.lastSeq + 1; s != seq; s++ {
			r.pending[s] = now
		}
	}
	delete(r.pending, seq)
	r.lastSeq = seq
	r.haveLast = true

	var due []uint16
	for s, t := range r.pending {
		if now.Sub(t) >= resendTimeout {
			due = append(due, s)
			r.pending[s] = now
		}
	}
	return due
}

type Protocol struct{}

func New() *Protocol { return &Protocol{} }

func (p *Protocol) Name() string { return "raop" }

func (p *Protocol) Supports(uri string) bool {
	return len(uri) > 7 && uri[:7] == "raop://"
}

// Play is unimplemented: RAOP is a receiver-initiated protocol (a
// sender connects to us via RTSP ANNOUNCE), which doesn't fit this
// pipeline's uri-driven Protocol.Play shape. The type exists so the
// RTP/resend/timing machinery above has a concrete home and can be
// exercised directly by tests.
func (p *Protocol) Play(ctx context.Context, uri string, sink protocol.Sink) error {
	return ErrUnsupported
}
