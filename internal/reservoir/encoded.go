// Package reservoir implements the pipeline's only two blocking
// points: EncodedReservoir and DecodedReservoir. Every other stage
// pulls lazily; these two apply backpressure to their producer when
// full and block their consumer when empty.
package reservoir

import (
	"container/list"
	"context"
	"sync"

	"github.com/arung-agamani/denpa-pipeline/internal/msg"
)

// EncodedReservoir is a FIFO of Msg bounded by total AudioEncoded
// bytes and by the number of distinct streams it is allowed to hold
// concurrently (protection against pathological playlist churn, e.g.
// a user skipping tracks faster than the codec can drain them).
type EncodedReservoir struct {
	mu       sync.Mutex
	notEmpty *sync.Cond
	notFull  *sync.Cond

	queue    list.List
	bytes    uint64
	maxBytes uint64

	streams    map[uint64]struct{}
	maxStreams int

	closed bool
}

// NewEncodedReservoir builds a reservoir with the given byte and
// distinct-stream caps.
func NewEncodedReservoir(maxBytes uint64, maxStreams int) *EncodedReservoir {
	r := &EncodedReservoir{maxBytes: maxBytes, maxStreams: maxStreams, streams: make(map[uint64]struct{})}
	r.notEmpty = sync.NewCond(&r.mu)
	r.notFull = sync.NewCond(&r.mu)
	return r
}

// Push enqueues m, blocking while the reservoir is over its byte cap
// or, for a new EncodedStream, over its distinct-stream cap. Control
// messages (Flush, Halt, Mode, Quit) never block: they must be able
// to reach the consumer to relieve backpressure in the first place.
func (r *EncodedReservoir) Push(ctx context.Context, m msg.Msg) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if blocks(m) {
		for !r.closed && r.over() {
			if !r.waitOrCancel(ctx, r.notFull) {
				return ctx.Err()
			}
		}
	}
	if r.closed {
		return context.Canceled
	}

	if es, ok := m.(*msg.EncodedStream); ok {
		r.streams[es.StreamID] = struct{}{}
	}
	if ae, ok := m.(*msg.AudioEncoded); ok {
		r.bytes += uint64(len(ae.Bytes))
	}
	r.queue.PushBack(m)
	r.notEmpty.Signal()
	return nil
}

// Pull blocks until a message is available (or ctx is cancelled) and
// removes it from the head of the queue.
func (r *EncodedReservoir) Pull(ctx context.Context) (msg.Msg, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for r.queue.Len() == 0 && !r.closed {
		if !r.waitOrCancel(ctx, r.notEmpty) {
			return nil, ctx.Err()
		}
	}
	if r.queue.Len() == 0 {
		return nil, context.Canceled
	}
	e := r.queue.Front()
	r.queue.Remove(e)
	m := e.Value.(msg.Msg)
	if ae, ok := m.(*msg.AudioEncoded); ok {
		r.bytes -= uint64(len(ae.Bytes))
	}
	r.notFull.Signal()
	return m, nil
}

// StreamEnded tells the reservoir a stream id it was tracking for the
// distinct-stream cap has fully drained (its terminal Flush has been
// observed downstream), freeing a slot for a new one.
func (r *EncodedReservoir) StreamEnded(streamID uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.streams, streamID)
	r.notFull.Signal()
}

// Close unblocks every waiter; subsequent Push/Pull return
// context.Canceled once the queue has drained.
func (r *EncodedReservoir) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	r.notEmpty.Broadcast()
	r.notFull.Broadcast()
}

func (r *EncodedReservoir) SizeInBytes() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.bytes
}

func (r *EncodedReservoir) StreamCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.streams)
}

func (r *EncodedReservoir) over() bool {
	return r.bytes >= r.maxBytes || len(r.streams) > r.maxStreams
}

// waitOrCancel waits on cond, returning false if ctx is done first.
// sync.Cond has no context support, so a cancellation watcher
// goroutine broadcasts on ctx.Done to wake every waiter, who then
// re-checks both the predicate and ctx.Err().
func (r *EncodedReservoir) waitOrCancel(ctx context.Context, cond *sync.Cond) bool {
	if ctx.Err() != nil {
		return false
	}
	done := make(chan struct{})
	stop := context.AfterFunc(ctx, func() {
		r.mu.Lock()
		cond.Broadcast()
		r.mu.Unlock()
		close(done)
	})
	defer stop()
	cond.Wait()
	return ctx.Err() == nil
}

func blocks(m msg.Msg) bool {
	switch m.(type) {
	case *msg.AudioEncoded, *msg.EncodedStream:
		return true
	default:
		return false
	}
}

// WrapHandler returns a StreamHandler that simply forwards every call
// to upstream: the reservoir is a pure pass-through for control-plane
// traffic, per the external-interfaces design. It exists so stages
// downstream of the reservoir have a stable handler reference that
// survives the reservoir re-ordering or buffering messages.
func WrapHandler(upstream msg.StreamHandler) msg.StreamHandler {
	return passthroughHandler{upstream}
}

type passthroughHandler struct {
	upstream msg.StreamHandler
}

func (p passthroughHandler) OkToPlay(streamID uint64) msg.OkToPlayStatus { return p.upstream.OkToPlay(streamID) }
func (p passthroughHandler) TrySeek(streamID, bytes uint64) (uint64, bool) {
	return p.upstream.TrySeek(streamID, bytes)
}
func (p passthroughHandler) TryStop(streamID uint64) (uint64, bool) { return p.upstream.TryStop(streamID) }
func (p passthroughHandler) NotifyStarving(mode string, streamID uint64) {
	p.upstream.NotifyStarving(mode, streamID)
}
