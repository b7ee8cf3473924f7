package songcast

import "testing"

func TestParseHeader(t *testing.T) {
	b := []byte{'O', 'h', 'm', ' ', 1, 3, 0, 0xAA}
	h, rest, err := parseHeader(b)
	if err != nil {
		t.Fatalf("parseHeader: %v", err)
	}
	if h.Magic != magicOhm || h.Version != 1 || h.Type != 3 {
		t.Fatalf("unexpected header: %+v", h)
	}
	if len(rest) != 1 || rest[0] != 0xAA {
		t.Fatalf("unexpected remainder: %v", rest)
	}
}

func TestParseHeaderShort(t *testing.T) {
	if _, _, err := parseHeader([]byte{1, 2, 3}); err != ErrShortFrame {
		t.Fatalf("expected ErrShortFrame, got %v", err)
	}
}

func TestParseOhmAudio(t *testing.T) {
	b := make([]byte, 14)
	b[3] = 1            // frame count low byte
	b[11] = 44          // sample rate low byte nonsense but nonzero
	b[12] = 16           // bit depth
	b[13] = 2            // channels
	f, rest, err := parseOhmAudio(b)
	if err != nil {
		t.Fatalf("parseOhmAudio: %v", err)
	}
	if f.BitDepth != 16 || f.Channels != 2 {
		t.Fatalf("unexpected frame: %+v", f)
	}
	if len(rest) != 0 {
		t.Fatalf("expected no payload remainder")
	}
}
