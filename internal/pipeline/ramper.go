package pipeline

import (
	"context"

	"github.com/arung-agamani/denpa-pipeline/internal/msg"
)

// Ramper applies a start-of-stream fade-in: the first audio to follow
// a new DecodedStream ramps up from silence over rampUp jiffies,
// rather than starting at full scale, masking any click from the
// codec's first samples not quite settling yet.
type Ramper struct {
	up   Source
	down Sink
	sm   *StageMachine

	rampUp  uint64
	factory *msg.MessageFactory
}

func NewRamper(up Source, down Sink, rampUp uint64, factory *msg.MessageFactory) *Ramper {
	r := &Ramper{up: up, down: down, sm: NewStageMachine(), rampUp: rampUp, factory: factory}
	return r
}

func (r *Ramper) State() State { return r.sm.State() }

func (r *Ramper) Run(ctx context.Context) error {
	for {
		m, err := r.up.Pull(ctx)
		if err != nil {
			return err
		}

		if _, ok := m.(*msg.DecodedStream); ok {
			r.sm.state = RampedDown
			r.sm.BeginRampUp(r.rampUp)
		}

		if n := jiffiesOf(m); n > 0 && r.sm.State() == RampingUp {
			v := r.sm.Advance(n)
			attachRamp(m, v)
		}

		if err := r.down.Push(ctx, m); err != nil {
			return err
		}
	}
}
