package wav

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/arung-agamani/denpa-pipeline/internal/codec"
)

// byteSliceSource adapts a plain []byte into codec.ByteSource for tests.
type byteSliceSource struct {
	buf []byte
}

func (s *byteSliceSource) Read(p []byte) (int, error) {
	if len(s.buf) == 0 {
		return 0, bytesEOF
	}
	n := copy(p, s.buf)
	s.buf = s.buf[n:]
	return n, nil
}

func (s *byteSliceSource) Peek(n int) ([]byte, error) {
	if n > len(s.buf) {
		n = len(s.buf)
	}
	return s.buf[:n], nil
}

var bytesEOF = errShortStream{}

type errShortStream struct{}

func (errShortStream) Error() string { return "EOF" }

func buildWav(sampleRate uint32, bitDepth uint16, channels uint16, frames int) []byte {
	var buf bytes.Buffer
	blockAlign := int(channels) * int(bitDepth) / 8
	dataSize := frames * blockAlign

	buf.WriteString("RIFF")
	writeU32(&buf, uint32(36+dataSize))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	writeU32(&buf, 16)
	writeU16(&buf, 1) // PCM
	writeU16(&buf, channels)
	writeU32(&buf, sampleRate)
	byteRate := sampleRate * uint32(blockAlign)
	writeU32(&buf, byteRate)
	writeU16(&buf, uint16(blockAlign))
	writeU16(&buf, bitDepth)

	buf.WriteString("data")
	writeU32(&buf, uint32(dataSize))
	for i := 0; i < dataSize; i++ {
		buf.WriteByte(byte(i))
	}
	return buf.Bytes()
}

func writeU32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func writeU16(buf *bytes.Buffer, v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	buf.Write(b[:])
}

func TestWavRecognise(t *testing.T) {
	data := buildWav(44100, 16, 2, 100)
	c := New()
	if !c.Recognise(data[:64]) {
		t.Fatalf("expected WAV to be recognised")
	}
}

func TestWavStreamInitialiseAndProcess(t *testing.T) {
	data := buildWav(44100, 16, 2, 4410) // 0.1s stereo
	src := &byteSliceSource{buf: data}
	c := New()

	info, err := c.StreamInitialise(src)
	if err != nil {
		t.Fatalf("StreamInitialise: %v", err)
	}
	if info.SampleRate != 44100 || info.Channels != 2 || info.BitDepth != 16 {
		t.Fatalf("unexpected stream info: %+v", info)
	}

	total := 0
	for {
		samples, err := c.Process(src)
		if err == codec.ErrStreamEnded {
			break
		}
		if err != nil {
			t.Fatalf("Process: %v", err)
		}
		total += len(samples)
	}
	if total != 4410*2 {
		t.Fatalf("expected %d samples, got %d", 4410*2, total)
	}
}

func TestWavRejectsNonPCM(t *testing.T) {
	data := buildWav(44100, 16, 2, 10)
	// Corrupt the format tag (offset 20) to a non-PCM value.
	data[20] = 3
	src := &byteSliceSource{buf: data}
	c := New()
	_, err := c.StreamInitialise(src)
	if err != codec.ErrFeatureUnsupported {
		t.Fatalf("expected ErrFeatureUnsupported, got %v", err)
	}
}
