package codec

import (
	"encoding/binary"
)

// Container recognises and strips known container-format prefixes
// (ID3v2, MP4/M4A atom headers preceding a bare stream) from the
// start of a fresh encoded stream. It is stateless between streams:
// callers construct one per EncodedStream.
type Container struct {
	// StrippedBytes is how many leading bytes were recognised and
	// removed; SeekBase is added to any byte offset a downstream
	// seek computes, since seeks are expressed relative to the
	// stripped stream.
	StrippedBytes uint64
	SeekBase      uint64
}

// Strip inspects the head of buf (which must contain at least enough
// bytes to cover any container header that might be present; callers
// pass the codec recognition window) and returns the payload with any
// recognised container header removed.
func (c *Container) Strip(buf []byte) []byte {
	if rest, n := stripID3v2(buf); n > 0 {
		c.StrippedBytes += uint64(n)
		c.SeekBase += uint64(n)
		return rest
	}
	if rest, n := stripMP4Ftyp(buf); n > 0 {
		c.StrippedBytes += uint64(n)
		c.SeekBase += uint64(n)
		return rest
	}
	return buf
}

// stripID3v2 recognises the 10-byte ID3v2 header ("ID3" + version +
// flags + a 4-byte syncsafe size) and returns the bytes after the tag,
// plus the tag's total length (header + body).
func stripID3v2(buf []byte) ([]byte, int) {
	if len(buf) < 10 || buf[0] != 'I' || buf[1] != 'D' || buf[2] != '3' {
		return buf, 0
	}
	size := syncsafe(buf[6:10])
	total := 10 + size
	if total > len(buf) {
		// Header claims more than the recognition window holds;
		// the buffer is returned unchanged and nothing is stripped
		// rather than guessing.
		return buf, 0
	}
	return buf[total:], total
}

func syncsafe(b []byte) int {
	return int(b[0])<<21 | int(b[1])<<14 | int(b[2])<<7 | int(b[3])
}

// stripMP4Ftyp recognises a leading MP4 'ftyp' atom (common on
// fragmented M4A/ALAC streams pushed with no preceding moov) and
// removes it; a full MP4 demuxer is out of scope, this only peels the
// one atom type known to precede a raw stream in this pipeline's
// supported inputs.
func stripMP4Ftyp(buf []byte) ([]byte, int) {
	if len(buf) < 8 {
		return buf, 0
	}
	size := int(binary.BigEndian.Uint32(buf[0:4]))
	if size < 8 || size > len(buf) {
		return buf, 0
	}
	if string(buf[4:8]) != "ftyp" {
		return buf, 0
	}
	return buf[size:], size
}
