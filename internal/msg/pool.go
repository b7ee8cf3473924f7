package msg

import (
	"fmt"
	"sync/atomic"
	"time"
	"unsafe"

	"github.com/arung-agamani/denpa-pipeline/internal/diag"
)

// AllocatorNoMemory is raised when a pool cannot satisfy an Allocate
// within its bounded wait. Per the error-handling design this
// indicates a misconfigured pool size and must never be silently
// masked, so Allocate panics with this value rather than returning an
// error a caller might ignore.
type AllocatorNoMemory struct {
	Pool string
}

func (e AllocatorNoMemory) Error() string {
	return fmt.Sprintf("msg: allocator %q exhausted", e.Pool)
}

// allocateTimeout is the short bounded wait the factory gives a pool
// before declaring it exhausted.
const allocateTimeout = 50 * time.Millisecond

// Pool is a fixed-capacity free list for one message or buffer kind.
// Backed by a buffered channel so Allocate/Free are a textbook
// single-writer/single-reader handoff rather than a condvar loop.
type Pool[T any] struct {
	name    string
	free    chan *T
	total   int
	used    int32 // atomic
	usedMax int32 // atomic
}

// NewPool preallocates capacity cells via newFn and, if reg is
// non-nil, registers the pool's live stats with it.
func NewPool[T any](name string, capacity int, newFn func() *T, reg *diag.Registry) *Pool[T] {
	p := &Pool[T]{name: name, free: make(chan *T, capacity), total: capacity}
	for i := 0; i < capacity; i++ {
		p.free <- newFn()
	}
	if reg != nil {
		reg.Register(name, p.Stats)
	}
	return p
}

// Allocate removes a cell from the free list, blocking up to
// allocateTimeout if none is immediately available. Panics with
// AllocatorNoMemory on timeout.
func (p *Pool[T]) Allocate() *T {
	select {
	case v := <-p.free:
		used := atomic.AddInt32(&p.used, 1)
		for {
			max := atomic.LoadInt32(&p.usedMax)
			if used <= max || atomic.CompareAndSwapInt32(&p.usedMax, max, used) {
				break
			}
		}
		return v
	case <-time.After(allocateTimeout):
		panic(AllocatorNoMemory{Pool: p.name})
	}
}

// Free returns a cell to the pool. Callers must clear the cell's
// payload before calling Free.
func (p *Pool[T]) Free(v *T) {
	atomic.AddInt32(&p.used, -1)
	p.free <- v
}

// Stats reports this pool's current diag.Stats snapshot.
func (p *Pool[T]) Stats() diag.Stats {
	var zero T
	return diag.Stats{
		CellsTotal:   p.total,
		CellBytes:    int(unsafe.Sizeof(zero)),
		CellsUsed:    int(atomic.LoadInt32(&p.used)),
		CellsUsedMax: int(atomic.LoadInt32(&p.usedMax)),
	}
}
