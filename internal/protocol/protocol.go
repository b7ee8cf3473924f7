// Package protocol implements the source-facing half of the pipeline:
// each Protocol recognises a URI scheme, opens the corresponding
// transport, and feeds EncodedStream/AudioEncoded/MetaText messages
// into an EncodedReservoir via a MessageFactory, mirroring how
// OpenHome's ProtocolManager dispatches a URI to the first protocol
// willing to claim it.
package protocol

import (
	"context"
	"errors"

	"github.com/arung-agamani/denpa-pipeline/internal/msg"
)

var ErrNotSupported = errors.New("protocol: uri scheme not supported")

// Protocol is implemented by each concrete transport (httpstream, hls,
// raop, songcast, qobuz). Manager tries each registered Protocol in
// registration order until one claims the URI.
type Protocol interface {
	Name() string

	// Supports reports whether this protocol can serve uri without
	// opening anything.
	Supports(uri string) bool

	// Play opens uri and pumps messages into sink until the stream
	// ends, ctx is cancelled, or an unrecoverable error occurs.
	Play(ctx context.Context, uri string, sink Sink) error
}

// Sink is the subset of MessageFactory plus reservoir push that a
// Protocol needs, kept narrow so protocol implementations don't need
// the full pipeline wiring to be testable in isolation.
type Sink interface {
	Factory() *msg.MessageFactory
	Push(ctx context.Context, m msg.Msg) error
}

// Manager dispatches a URI to the first registered Protocol that
// claims it.
type Manager struct {
	protocols []Protocol
}

func NewManager(protocols ...Protocol) *Manager {
	return &Manager{protocols: protocols}
}

func (m *Manager) Play(ctx context.Context, uri string, sink Sink) error {
	for _, p := range m.protocols {
		if p.Supports(uri) {
			return p.Play(ctx, uri, sink)
		}
	}
	return ErrNotSupported
}
