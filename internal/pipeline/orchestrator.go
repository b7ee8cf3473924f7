package pipeline

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/arung-agamani/denpa-pipeline/internal/animator"
	"github.com/arung-agamani/denpa-pipeline/internal/msg"
	"github.com/arung-agamani/denpa-pipeline/internal/reservoir"
)

// Config bundles every pipeline-stage tuning constant sourced from
// the init-time configuration layer.
type Config struct {
	RampLong        uint64 // Stopper, Muter
	RampShort       uint64 // Seeker, Skipper, Waiter, VariableDelay
	StarvationRamp  uint64
	StarvationBelow uint64 // jiffies; mirrors DecodedReservoir's starving threshold
}

// runnable is satisfied by every stage so Orchestrator.Run can
// supervise them uniformly through an errgroup.
type runnable interface {
	Run(ctx context.Context) error
}

// decodedReservoirSource adapts *reservoir.DecodedReservoir to this
// package's Source interface, avoiding an import cycle (reservoir
// does not depend on pipeline).
type decodedReservoirSource struct {
	r *reservoir.DecodedReservoir
}

func (d decodedReservoirSource) Pull(ctx context.Context) (msg.Msg, error) { return d.r.Pull(ctx) }

// animatorSink adapts animator.PipelineAnimator to this package's
// Sink interface.
type animatorSink struct {
	a animator.PipelineAnimator
}

func (a animatorSink) Push(ctx context.Context, m msg.Msg) error { return a.a.Submit(ctx, m) }

// Orchestrator wires the fixed stage topology:
//
//	DecodedReservoir -> Ramper -> Seeker -> VariableDelay(left) ->
//	Skipper -> TrackInspector -> Waiter -> Stopper -> Reporter ->
//	VariableDelay(right) -> StarvationRamper -> Muter -> PreDriver ->
//	PipelineAnimator
//
// Each arrow is a depth-1 link so every stage runs as its own
// goroutine, supervised by an errgroup: the first stage to return a
// non-nil error cancels every other stage through the shared context.
type Orchestrator struct {
	Ramper           *Ramper
	Seeker           *Seeker
	DelayLeft        *VariableDelay
	Skipper          *Skipper
	TrackInspector   *TrackInspector
	Waiter           *Waiter
	Stopper          *Stopper
	Reporter         *Reporter
	DelayRight       *VariableDelay
	StarvationRamper *StarvationRamper
	Muter            *Muter
	PreDriver        *PreDriver

	stages []runnable
}

// New wires every stage given the decoded reservoir as the ultimate
// upstream, the message factory for stages that mint messages, and
// the animator that finally consumes Playable/Mode/Track/Drain/Halt/
// Quit.
func New(
	decoded *reservoir.DecodedReservoir,
	factory *msg.MessageFactory,
	cfg Config,
	anim animator.PipelineAnimator,
	seekObs SeekObserver,
	starveObs StarvationObserver,
	trackObs TrackObserver,
	reportObs PipelineObserver,
) *Orchestrator {
	src := decodedReservoirSource{decoded}

	l1, l2, l3, l4, l5, l6, l7, l8, l9, l10, l11 :=
		newLink(), newLink(), newLink(), newLink(), newLink(), newLink(),
		newLink(), newLink(), newLink(), newLink(), newLink()

	o := &Orchestrator{
		Ramper:           NewRamper(src, l1, cfg.RampShort, factory),
		Seeker:           NewSeeker(l1, l2, cfg.RampShort, seekObs),
		DelayLeft:        NewVariableDelay(l2, l3, factory, cfg.RampShort),
		Skipper:          NewSkipper(l3, l4, cfg.RampShort),
		TrackInspector:   NewTrackInspector(l4, l5, trackObs),
		Waiter:           NewWaiter(l5, l6, cfg.RampShort),
		Stopper:          NewStopper(l6, l7, cfg.RampLong),
		Reporter:         NewReporter(l7, l8, reportObs),
		DelayRight:       NewVariableDelay(l8, l9, factory, cfg.RampShort),
		StarvationRamper: NewStarvationRamper(l9, l10, decoded, cfg.StarvationBelow, cfg.StarvationRamp, starveObs),
		Muter:            NewMuter(l10, l11, cfg.RampLong),
		PreDriver:        NewPreDriver(l11, animatorSink{anim}, factory),
	}
	o.stages = []runnable{
		o.Ramper, o.Seeker, o.DelayLeft, o.Skipper, o.TrackInspector,
		o.Waiter, o.Stopper, o.Reporter, o.DelayRight, o.StarvationRamper,
		o.Muter, o.PreDriver,
	}
	return o
}

// Run starts every stage's pull/push loop and blocks until the first
// one returns (an error, ctx cancellation, or a Quit message having
// propagated all the way to the animator).
func (o *Orchestrator) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, s := range o.stages {
		s := s
		g.Go(func() error { return s.Run(gctx) })
	}
	return g.Wait()
}
