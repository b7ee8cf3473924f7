//go:build portaudio

package animator

import (
	"context"
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"

	"github.com/arung-agamani/denpa-pipeline/internal/msg"
)

// PortAudio renders Playable messages to a local sound device using a
// blocking portaudio stream: Submit copies each Playable's samples
// into the stream's output buffer and calls Write, rather than
// feeding a realtime callback, since messages already arrive on the
// pipeline's own schedule.
type PortAudio struct {
	mu      sync.Mutex
	stream  *portaudio.Stream
	buf     []int32
	rate    uint
	chans   uint
	latency uint64
}

// NewPortAudio initialises the portaudio library. Callers must call
// Close when done to release the device and terminate the library.
func NewPortAudio() (*PortAudio, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("animator: portaudio init: %w", err)
	}
	return &PortAudio{}, nil
}

func (p *PortAudio) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stream != nil {
		p.stream.Close()
		p.stream = nil
	}
	return portaudio.Terminate()
}

func (p *PortAudio) Submit(ctx context.Context, m msg.Msg) error {
	switch v := m.(type) {
	case *msg.DecodedStream:
		return p.reopen(v.SampleRate, v.Channels)
	case *msg.Playable:
		return p.write(v)
	case *msg.Halt:
		return p.stop()
	}
	return nil
}

const framesPerBuffer = 1024

func (p *PortAudio) reopen(rate, channels uint) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stream != nil && p.rate == rate && p.chans == channels {
		return nil
	}
	if p.stream != nil {
		p.stream.Close()
		p.stream = nil
	}

	p.buf = make([]int32, framesPerBuffer*int(channels))
	stream, err := portaudio.OpenDefaultStream(0, int(channels), float64(rate), framesPerBuffer, &p.buf)
	if err != nil {
		return fmt.Errorf("animator: open stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		return fmt.Errorf("animator: start stream: %w", err)
	}
	p.stream, p.rate, p.chans = stream, rate, channels
	p.latency = uint64(stream.Info().OutputLatency.Microseconds()) * 56448 / 1000
	return nil
}

func (p *PortAudio) write(pl *msg.Playable) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stream == nil {
		return nil
	}
	samples := pl.Samples()
	for off := 0; off < len(samples); off += len(p.buf) {
		n := copy(p.buf, samples[off:])
		for i := n; i < len(p.buf); i++ {
			p.buf[i] = 0
		}
		if err := p.stream.Write(); err != nil {
			return err
		}
	}
	return nil
}

func (p *PortAudio) stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stream == nil {
		return nil
	}
	return p.stream.Stop()
}

func (p *PortAudio) AnimatorLatencyJiffies() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.latency
}
