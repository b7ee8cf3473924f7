package raop

import (
	"testing"
	"time"
)

func TestResendTrackerFlagsGapAfterTimeout(t *testing.T) {
	r := newResendTracker()
	base := time.Now()
	r.Observe(10, base)
	r.Observe(12, base) // gap at 11

	due := r.Observe(13, base.Add(resendTimeout+time.Millisecond))
	found := false
	for _, s := range due {
		if s == 11 {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected sequence 11 to be due for resend, got %v", due)
	}
}

func TestResendTrackerClearsOnArrival(t *testing.T) {
	r := newResendTracker()
	base := time.Now()
	r.Observe(1, base)
	r.Observe(3, base) // gap at 2
	r.Observe(2, base) // late arrival fills the gap

	due := r.Observe(4, base.Add(resendTimeout+time.Millisecond))
	for _, s := range due {
		if s == 2 {
			t.Fatalf("sequence 2 arrived late and should not be requested")
		}
	}
}

func TestParseRTPHeader(t *testing.T) {
	b := make([]byte, rtpHeaderBytes)
	b[1] = 0x80 | 0x60
	b[2], b[3] = 0x00, 0x05
	b[4], b[5], b[6], b[7] = 0, 0, 0, 100
	b[8], b[9], b[10], b[11] = 0, 0, 0, 42

	h, rest, err := parseRTPHeader(b)
	if err != nil {
		t.Fatalf("parseRTPHeader: %v", err)
	}
	if !h.Marker || h.SequenceNumber != 5 || h.Timestamp != 100 || h.SSRC != 42 {
		t.Fatalf("unexpected header: %+v", h)
	}
	if len(rest) != 0 {
		t.Fatalf("expected empty payload")
	}
}
