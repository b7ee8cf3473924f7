// Package pipeline implements the ramping and flow-control stages
// that sit between the codec controller's DecodedReservoir and the
// animator: Ramper, Seeker, VariableDelay (x2), Skipper, Waiter,
// Stopper, TrackInspector, Reporter, StarvationRamper, Muter, and
// PreDriver. Every stage but PreDriver, TrackInspector and Reporter
// shares the same small state machine, factored out as StageMachine so each stage only needs to
// supply the event that triggers a ramp and what to do once one
// completes.
package pipeline

import (
	"context"

	"github.com/arung-agamani/denpa-pipeline/internal/msg"
)

// State is the shared ramping state machine every flow-control stage
// is built from.
type State int

const (
	Starting State = iota
	Running
	RampingDown
	RampedDown
	RampingUp
)

func (s State) String() string {
	switch s {
	case Starting:
		return "starting"
	case Running:
		return "running"
	case RampingDown:
		return "ramping-down"
	case RampedDown:
		return "ramped-down"
	case RampingUp:
		return "ramping-up"
	default:
		return "unknown"
	}
}

// Source and Sink are the minimal pull/push contract every stage is
// built against, satisfied directly by *reservoir.DecodedReservoir
// and by any upstream/downstream stage in this package.
type Source interface {
	Pull(ctx context.Context) (msg.Msg, error)
}

type Sink interface {
	Push(ctx context.Context, m msg.Msg) error
}

// StageMachine holds the ramp state shared by every flow-control
// stage. It does not itself pull or push messages; each stage embeds
// one and drives it from its own Pull loop.
type StageMachine struct {
	state State
	ramp  msg.Ramp
}

// NewStageMachine starts in Running: audio flows unramped until
// something asks this stage to ramp down.
func NewStageMachine() *StageMachine {
	return &StageMachine{state: Running, ramp: msg.RampFull}
}

func (m *StageMachine) State() State { return m.state }

// BeginRampDown starts a ramp-down of the given duration. A no-op if
// already ramping down or ramped down.
func (m *StageMachine) BeginRampDown(duration uint64) {
	switch m.state {
	case RampingDown, RampedDown:
		return
	case RampingUp:
		// Reverse mid-ramp, retaining the current value, rather than
		// finishing the ramp-up only to immediately ramp back down.
		m.ramp = m.ramp.Reverse(msg.RampDown, duration)
	default:
		m.ramp = msg.NewRamp(msg.RampDown, duration)
	}
	m.state = RampingDown
}

// BeginRampUp starts (or reverses into) a ramp-up of the given
// duration. If a ramp-down was in progress, Reverse retains the
// current value so there's no discontinuity — see msg.Ramp.Reverse.
func (m *StageMachine) BeginRampUp(duration uint64) {
	switch m.state {
	case Running:
		return
	case RampedDown:
		m.ramp = msg.NewRamp(msg.RampUp, duration)
	default:
		m.ramp = m.ramp.Reverse(msg.RampUp, duration)
	}
	m.state = RampingUp
}

// Advance consumes n jiffies of a just-emitted audio message,
// transitioning RampingDown -> RampedDown or RampingUp -> Running
// once the ramp completes. Returns the ramp value to attach to the
// message that was just advanced past (the value in effect during
// that span, i.e. before this call mutates state further).
func (m *StageMachine) Advance(n uint64) msg.Ramp {
	applied := m.ramp
	switch m.state {
	case RampingDown:
		newRamp, done := m.ramp.Advance(n)
		m.ramp = newRamp
		if done {
			m.state = RampedDown
		}
	case RampingUp:
		newRamp, done := m.ramp.Advance(n)
		m.ramp = newRamp
		if done {
			m.state = Running
			m.ramp = msg.RampFull
		}
	}
	return applied
}

// jiffiesOf returns the duration represented by an audio-bearing
// message, or 0 for anything else (control messages don't advance a
// ramp).
func jiffiesOf(m msg.Msg) uint64 {
	switch v := m.(type) {
	case *msg.AudioPcm:
		return v.Jiffies()
	case *msg.Silence:
		return v.Jiffies
	default:
		return 0
	}
}

// attachRamp sets the Ramp field on an AudioPcm message in place;
// Silence and every other variant carry no ramp field, since a ramp
// applied to inserted silence has no audible effect to express.
func attachRamp(m msg.Msg, r msg.Ramp) {
	if pcm, ok := m.(*msg.AudioPcm); ok {
		pcm.Ramp = r
	}
}
