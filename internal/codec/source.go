package codec

import (
	"context"
	"errors"

	"github.com/arung-agamani/denpa-pipeline/internal/msg"
	"github.com/arung-agamani/denpa-pipeline/internal/reservoir"
)

// errNonAudio is returned internally by source.fill when the next
// message pulled off the encoded reservoir is a control message
// rather than more AudioEncoded payload; the controller decides what
// that means (end of stream, a flush to forward, etc).
var errNonAudio = errors.New("codec: non-audio message encountered")

// source adapts an EncodedReservoir into the ByteSource a Codec reads
// from: it buffers bytes pulled off the reservoir, supports
// non-consuming Peek for recognition, and surfaces any non-audio
// message it encounters (Flush/Halt/Mode/Quit) to the controller
// instead of swallowing it.
type source struct {
	ctx     context.Context
	factory *msg.MessageFactory
	res     *reservoir.EncodedReservoir

	buf     []byte
	pending msg.Msg // a non-audio message pulled ahead of need
	err     error
}

func newSource(ctx context.Context, factory *msg.MessageFactory, res *reservoir.EncodedReservoir) *source {
	return &source{ctx: ctx, factory: factory, res: res}
}

func (s *source) fill(n int) error {
	for len(s.buf) < n {
		if s.pending != nil || s.err != nil {
			return errNonAudio
		}
		m, err := s.res.Pull(s.ctx)
		if err != nil {
			s.err = err
			return err
		}
		ae, ok := m.(*msg.AudioEncoded)
		if !ok {
			s.pending = m
			return errNonAudio
		}
		s.buf = append(s.buf, ae.Bytes...)
		s.factory.Free(ae)
	}
	return nil
}

func (s *source) Peek(n int) ([]byte, error) {
	if err := s.fill(n); err != nil && len(s.buf) < n {
		if len(s.buf) == 0 {
			return nil, err
		}
		return s.buf, err
	}
	if n > len(s.buf) {
		n = len(s.buf)
	}
	return s.buf[:n], nil
}

func (s *source) Read(p []byte) (int, error) {
	if err := s.fill(len(p)); err != nil && len(s.buf) == 0 {
		return 0, err
	}
	n := copy(p, s.buf)
	s.buf = s.buf[n:]
	return n, nil
}

// TakePending returns and clears any non-audio message this source
// ran into while trying to satisfy a Read/Peek, along with any
// terminal pull error (e.g. context cancellation).
func (s *source) TakePending() (msg.Msg, error) {
	m, err := s.pending, s.err
	s.pending, s.err = nil, nil
	return m, err
}
