package pipeline

import (
	"context"

	"github.com/arung-agamani/denpa-pipeline/internal/msg"
)

// link is an unbuffered-enough (depth 1) channel connecting one
// stage's output to the next stage's input, letting each stage run
// its own pull/push loop as an independent goroutine without sharing
// state. A depth of 1 is sufficient: stages are meant to apply
// backpressure transitively back to the reservoirs, not to buffer.
type link struct {
	ch chan msg.Msg
}

func newLink() *link {
	return &link{ch: make(chan msg.Msg, 1)}
}

func (l *link) Push(ctx context.Context, m msg.Msg) error {
	select {
	case l.ch <- m:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *link) Pull(ctx context.Context) (msg.Msg, error) {
	select {
	case m := <-l.ch:
		return m, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
