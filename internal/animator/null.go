package animator

import (
	"context"
	"log/slog"

	"github.com/arung-agamani/denpa-pipeline/internal/msg"
)

// Null discards every message, logging transitions at debug level.
// It's the default animator: useful for headless operation (a
// pipeline driving a network renderer downstream, or tests) where no
// local sound device should be opened.
type Null struct{}

func NewNull() *Null { return &Null{} }

func (n *Null) Submit(ctx context.Context, m msg.Msg) error {
	switch v := m.(type) {
	case *msg.Mode:
		slog.Debug("animator: mode", "name", v.Name)
	case *msg.Track:
		slog.Debug("animator: track", "uri", v.URI)
	case *msg.Quit:
		slog.Debug("animator: quit")
	}
	return nil
}

func (n *Null) AnimatorLatencyJiffies() uint64 { return 0 }
