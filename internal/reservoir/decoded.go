package reservoir

import (
	"container/list"
	"context"
	"sync"

	"github.com/arung-agamani/denpa-pipeline/internal/msg"
)

// DecodedReservoir buffers decoded audio measured in jiffies rather
// than bytes. Beyond plain backpressure it implements "gorging":
// at the start of each new stream it withholds all audio from
// consumers until gorgeJiffies has accumulated, so a slow network
// doesn't trigger an immediate starvation ramp. It also exposes the
// starvation threshold that StarvationRamper polls.
type DecodedReservoir struct {
	mu       sync.Mutex
	notEmpty *sync.Cond
	notFull  *sync.Cond

	queue        list.List
	jiffies      uint64
	maxJiffies   uint64
	gorgeJiffies uint64
	starveBelow  uint64

	gorging bool // true from a new DecodedStream until gorgeJiffies accumulates

	closed bool
}

// NewDecodedReservoir builds a reservoir with the given jiffy cap,
// gorge threshold, and starvation threshold. starveBelow must be <=
// gorgeJiffies; gorging always clears before starvation can trigger.
func NewDecodedReservoir(maxJiffies, gorgeJiffies, starveBelow uint64) *DecodedReservoir {
	r := &DecodedReservoir{maxJiffies: maxJiffies, gorgeJiffies: gorgeJiffies, starveBelow: starveBelow}
	r.notEmpty = sync.NewCond(&r.mu)
	r.notFull = sync.NewCond(&r.mu)
	return r
}

func (r *DecodedReservoir) jiffiesOf(m msg.Msg) uint64 {
	switch v := m.(type) {
	case *msg.AudioPcm:
		return v.Jiffies()
	case *msg.Silence:
		return v.Jiffies
	default:
		return 0
	}
}

// Push enqueues m, blocking while over the jiffy cap. A new
// DecodedStream resets the gorging flag.
func (r *DecodedReservoir) Push(ctx context.Context, m msg.Msg) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := r.jiffiesOf(m)
	if n > 0 {
		for !r.closed && r.jiffies >= r.maxJiffies {
			if !r.waitOrCancel(ctx, r.notFull) {
				return ctx.Err()
			}
		}
	}
	if r.closed {
		return context.Canceled
	}

	if _, ok := m.(*msg.DecodedStream); ok {
		r.gorging = r.gorgeJiffies > 0
	}
	r.jiffies += n
	r.queue.PushBack(m)
	r.notEmpty.Signal()
	return nil
}

// Pull blocks until either a control message is at the head or enough
// audio has accumulated to satisfy gorging, whichever comes first.
func (r *DecodedReservoir) Pull(ctx context.Context) (msg.Msg, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for !r.closed {
		if r.queue.Len() == 0 {
			if !r.waitOrCancel(ctx, r.notEmpty) {
				return nil, ctx.Err()
			}
			continue
		}
		front := r.queue.Front().Value.(msg.Msg)
		if r.gorging && r.jiffiesOf(front) > 0 && r.jiffies < r.gorgeJiffies {
			if !r.waitOrCancel(ctx, r.notEmpty) {
				return nil, ctx.Err()
			}
			continue
		}
		e := r.queue.Front()
		r.queue.Remove(e)
		n := r.jiffiesOf(front)
		if n > 0 {
			r.gorging = false
		}
		r.jiffies -= n
		r.notFull.Signal()
		return front, nil
	}
	return nil, context.Canceled
}

func (r *DecodedReservoir) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	r.notEmpty.Broadcast()
	r.notFull.Broadcast()
}

func (r *DecodedReservoir) SizeInJiffies() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.jiffies
}

// Starving reports whether the reservoir has dropped below its
// starvation threshold — the condition StarvationRamper watches for.
func (r *DecodedReservoir) Starving() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.jiffies < r.starveBelow
}

func (r *DecodedReservoir) waitOrCancel(ctx context.Context, cond *sync.Cond) bool {
	if ctx.Err() != nil {
		return false
	}
	stop := context.AfterFunc(ctx, func() {
		r.mu.Lock()
		cond.Broadcast()
		r.mu.Unlock()
	})
	defer stop()
	cond.Wait()
	return ctx.Err() == nil
}
