package codec

import "testing"

func TestContainerStripsID3v2(t *testing.T) {
	// 10-byte header: "ID3" + version(2) + flags(1) + syncsafe size(4)=5
	header := []byte{'I', 'D', '3', 3, 0, 0, 0, 0, 0, 5}
	body := []byte{1, 2, 3, 4, 5}
	payload := []byte("RIFF....")
	buf := append(append(header, body...), payload...)

	var c Container
	out := c.Strip(buf)
	if string(out) != "RIFF...." {
		t.Fatalf("expected stripped payload, got %q", out)
	}
	if c.StrippedBytes != 15 {
		t.Fatalf("expected 15 stripped bytes, got %d", c.StrippedBytes)
	}
}

func TestContainerPassesThroughUnrecognised(t *testing.T) {
	var c Container
	buf := []byte("RIFF....WAVE")
	out := c.Strip(buf)
	if string(out) != string(buf) {
		t.Fatalf("expected passthrough, got %q", out)
	}
	if c.StrippedBytes != 0 {
		t.Fatalf("expected 0 stripped bytes")
	}
}
