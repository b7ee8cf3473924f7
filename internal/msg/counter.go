package msg

import "sync/atomic"

// atomicCounter mints ids starting at 1, so 0 stays reserved for
// IDInvalid.
type atomicCounter struct {
	n uint64
}

func (c *atomicCounter) next() uint64 {
	return atomic.AddUint64(&c.n, 1)
}
