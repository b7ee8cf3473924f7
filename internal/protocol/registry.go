package protocol

import (
	"sync"

	"github.com/google/uuid"
	"github.com/arung-agamani/denpa-pipeline/internal/msg"
)

// HandlerRegistry tracks the live StreamHandler for every in-flight
// stream, keyed by a uuid rather than the stream's numeric id so a
// handler can be looked up from outside the pipeline (the control API
// resolving "seek this stream") without racing the id provider.
type HandlerRegistry struct {
	mu       sync.Mutex
	handlers map[string]msg.StreamHandler
}

func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{handlers: make(map[string]msg.StreamHandler)}
}

// Register adds h under a freshly minted key and returns that key.
func (r *HandlerRegistry) Register(h msg.StreamHandler) string {
	key := uuid.NewString()
	r.mu.Lock()
	r.handlers[key] = h
	r.mu.Unlock()
	return key
}

func (r *HandlerRegistry) Lookup(key string) (msg.StreamHandler, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.handlers[key]
	return h, ok
}

func (r *HandlerRegistry) Unregister(key string) {
	r.mu.Lock()
	delete(r.handlers, key)
	r.mu.Unlock()
}
