package main

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/arung-agamani/denpa-pipeline/internal/api"
	"github.com/arung-agamani/denpa-pipeline/internal/jiffies"
	"github.com/arung-agamani/denpa-pipeline/internal/msg"
	"github.com/arung-agamani/denpa-pipeline/internal/pipeline"
	"github.com/arung-agamani/denpa-pipeline/internal/protocol"
	"github.com/arung-agamani/denpa-pipeline/internal/reservoir"
	"github.com/arung-agamani/denpa-pipeline/internal/trackdb"
)

// ErrNoTracks is returned by Play/Next/Previous when the playlist has
// nothing queued, or navigation off the end hit a boundary with
// repeat disabled.
var ErrNoTracks = errors.New("mediaplayer: no track to play")

// reservoirSink adapts a MessageFactory and the encoded reservoir to
// protocol.Sink, the narrow interface each Protocol implementation
// pushes into.
type reservoirSink struct {
	factory *msg.MessageFactory
	encoded *reservoir.EncodedReservoir
}

func (s reservoirSink) Factory() *msg.MessageFactory { return s.factory }

func (s reservoirSink) Push(ctx context.Context, m msg.Msg) error {
	return s.encoded.Push(ctx, m)
}

// shuffleNav implements trackdb.Navigator by toggling between the
// database's natural order and the shuffler's own navigation.
// Both *trackdb.Database and *trackdb.Shuffler already satisfy
// trackdb.Navigator on their own (Shuffler's NextTrackRef/PrevTrackRef
// walk its permutation directly, re-splicing on selection per
// TrackRefByIndex), so this type is just a runtime-toggled selector
// between the two, not its own navigation logic.
type shuffleNav struct {
	tracks   *trackdb.Database
	shuffler *trackdb.Shuffler

	mu sync.Mutex
	on bool
}

func (n *shuffleNav) setShuffle(on bool) {
	n.mu.Lock()
	n.on = on
	n.mu.Unlock()
	if on {
		n.shuffler.Reshuffle()
	}
}

func (n *shuffleNav) shuffled() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.on
}

func (n *shuffleNav) active() trackdb.Navigator {
	if n.shuffled() {
		return n.shuffler
	}
	return n.tracks
}

func (n *shuffleNav) Count() int { return n.active().Count() }

func (n *shuffleNav) TrackRefByIndex(index int) (uint64, bool) {
	return n.active().TrackRefByIndex(index)
}

func (n *shuffleNav) NextTrackRef(prevID uint64) (uint64, bool) {
	return n.active().NextTrackRef(prevID)
}

func (n *shuffleNav) PrevTrackRef(prevID uint64) (uint64, bool) {
	return n.active().PrevTrackRef(prevID)
}

// pipelineObserver is the union of every observer interface
// pipeline.New takes, so a single engine value can be handed to all
// four constructor parameters.
type pipelineObserver interface {
	pipeline.PipelineObserver
	pipeline.TrackObserver
	pipeline.StarvationObserver
	pipeline.SeekObserver
}

// engine drives the pipeline/protocol/trackdb machinery behind
// internal/api's Controller interface: it is the only place that
// knows how a transport command turns into reservoir pushes and
// stage-control calls, and the only place that turns pipeline
// observer callbacks into playlist auto-advance.
type engine struct {
	factory      *msg.MessageFactory
	ids          *msg.IDProvider
	encoded      *reservoir.EncodedReservoir
	orchestrator *pipeline.Orchestrator
	manager      *protocol.Manager
	tracks       *trackdb.Database
	nav          *shuffleNav
	repeater     *trackdb.Repeater
	hub          pipelineObserver

	mu            sync.Mutex
	modeSent      bool
	playing       bool
	curTrackID    uint64 // trackdb id
	curPipelineID uint64 // msg.Track.TrackID for the playing stream
	curURI        string
	curMetadata   string
	sampleRate    uint
	positionSecs  float64
	durationSecs  float64
	shuffleOn     bool
	repeatOn      bool
	mutedFlag     bool
	nextSeekH     int

	playCancel context.CancelFunc
}

func newEngine(factory *msg.MessageFactory, ids *msg.IDProvider, encoded *reservoir.EncodedReservoir,
	manager *protocol.Manager, tracks *trackdb.Database, shuffler *trackdb.Shuffler, hub pipelineObserver) *engine {
	nav := &shuffleNav{tracks: tracks, shuffler: shuffler}
	return &engine{
		factory:  factory,
		ids:      ids,
		encoded:  encoded,
		manager:  manager,
		tracks:   tracks,
		nav:      nav,
		repeater: trackdb.NewRepeater(nav),
		hub:      hub,
	}
}

// attach lets main wire the orchestrator in after the engine exists,
// since the orchestrator's constructor needs the engine as its
// observer arguments.
func (e *engine) attach(o *pipeline.Orchestrator) {
	e.orchestrator = o
}

// Play resumes a paused stream, or starts the first track in the
// playlist if nothing has been loaded yet.
func (e *engine) Play() error {
	e.mu.Lock()
	started := e.curTrackID != trackdb.IDNone
	e.mu.Unlock()

	if started {
		e.orchestrator.Stopper.Play()
		e.mu.Lock()
		e.playing = true
		e.mu.Unlock()
		return nil
	}

	id, ok := e.nav.TrackRefByIndex(0)
	if !ok {
		return ErrNoTracks
	}
	return e.startLocked(id)
}

func (e *engine) Pause() {
	e.orchestrator.Stopper.BeginPause()
	e.mu.Lock()
	e.playing = false
	e.mu.Unlock()
}

func (e *engine) Stop() {
	e.orchestrator.Stopper.BeginStop(e.ids.NextHaltID())
	e.mu.Lock()
	e.playing = false
	e.mu.Unlock()
}

func (e *engine) Next() error {
	e.mu.Lock()
	cur := e.curTrackID
	e.mu.Unlock()
	id, ok := e.repeater.NextTrackRef(cur)
	if !ok {
		return ErrNoTracks
	}
	return e.startLocked(id)
}

func (e *engine) Previous() error {
	e.mu.Lock()
	cur := e.curTrackID
	e.mu.Unlock()
	id, ok := e.repeater.PrevTrackRef(cur)
	if !ok {
		return ErrNoTracks
	}
	return e.startLocked(id)
}

func (e *engine) SeekSeconds(seconds float64) error {
	e.mu.Lock()
	rate := e.sampleRate
	e.nextSeekH++
	handle := e.nextSeekH
	e.mu.Unlock()
	if rate == 0 {
		return errors.New("mediaplayer: no active stream to seek")
	}
	sample := jiffies.ToSamples(jiffies.FromSeconds(seconds), rate)
	e.orchestrator.Seeker.Seek(handle, sample)
	return nil
}

func (e *engine) SetMute(on bool) {
	if on {
		e.orchestrator.Muter.Mute()
	} else {
		e.orchestrator.Muter.Unmute()
	}
	e.mu.Lock()
	e.mutedFlag = on
	e.mu.Unlock()
}

func (e *engine) SetShuffle(on bool) {
	e.nav.setShuffle(on)
	e.mu.Lock()
	e.shuffleOn = on
	e.mu.Unlock()
}

func (e *engine) SetRepeat(on bool) {
	e.repeater.SetRepeat(on)
	e.mu.Lock()
	e.repeatOn = on
	e.mu.Unlock()
}

func (e *engine) Status() api.Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	state := "stopped"
	if e.playing {
		state = "playing"
	} else if e.curTrackID != trackdb.IDNone {
		state = "paused"
	}
	return api.Status{
		State:           state,
		TrackID:         e.curTrackID,
		URI:             e.curURI,
		Metadata:        e.curMetadata,
		PositionSeconds: e.positionSecs,
		DurationSeconds: e.durationSecs,
		Shuffle:         e.shuffleOn,
		Repeat:          e.repeatOn,
		Muted:           e.mutedFlag,
	}
}

// startLocked tears down any in-flight protocol playback, pushes a
// fresh Track into the encoded reservoir (not the decoded one: the
// codec controller only relays Track/Mode/Flush/Halt/MetaText to the
// decoded side for messages it sees arrive on the encoded side, so a
// Track pushed anywhere else would race the EncodedStream it belongs
// with), and starts the protocol goroutine for the new track's URI.
func (e *engine) startLocked(id uint64) error {
	track, ok := e.tracks.GetByID(id)
	if !ok {
		return ErrNoTracks
	}

	e.mu.Lock()
	if e.playCancel != nil {
		e.playCancel()
	}
	if !e.modeSent {
		mode := e.factory.NewMode("playlist", false, false, true)
		_ = e.encoded.Push(context.Background(), mode)
		e.modeSent = true
	}
	t := e.factory.NewTrack(track.URI, track.Metadata)
	e.curTrackID = id
	e.curPipelineID = t.TrackID
	e.curURI = track.URI
	e.curMetadata = track.Metadata
	e.playing = true
	ctx, cancel := context.WithCancel(context.Background())
	e.playCancel = cancel
	e.mu.Unlock()

	if err := e.encoded.Push(ctx, t); err != nil {
		return err
	}

	go func() {
		if err := e.manager.Play(ctx, track.URI, reservoirSink{e.factory, e.encoded}); err != nil && ctx.Err() == nil {
			slog.Warn("mediaplayer: protocol play ended with error", "uri", track.URI, "error", err)
		}
	}()
	return nil
}

// --- pipeline.PipelineObserver ---

func (e *engine) NotifyMode(name string) {
	e.hub.NotifyMode(name)
}

func (e *engine) NotifyTrack(trackID uint64, uri, metadata string) {
	e.hub.NotifyTrack(trackID, uri, metadata)
}

func (e *engine) NotifyMetaText(text string) {
	e.hub.NotifyMetaText(text)
}

func (e *engine) NotifyStreamInfo(streamID uint64, sampleRate, bitDepth, channels uint, codecName string, lossless bool) {
	e.mu.Lock()
	e.sampleRate = sampleRate
	e.mu.Unlock()
	e.hub.NotifyStreamInfo(streamID, sampleRate, bitDepth, channels, codecName, lossless)
}

func (e *engine) NotifyTime(seconds, totalSeconds float64) {
	e.mu.Lock()
	e.positionSecs = seconds
	e.durationSecs = totalSeconds
	e.mu.Unlock()
	e.hub.NotifyTime(seconds, totalSeconds)
}

// --- pipeline.TrackObserver ---

func (e *engine) NotifyTrackPlayOutcome(trackID uint64, producedAudio bool) {
	e.hub.NotifyTrackPlayOutcome(trackID, producedAudio)

	e.mu.Lock()
	isCurrent := trackID == e.curPipelineID
	fromID := e.curTrackID
	e.mu.Unlock()
	if !isCurrent {
		return
	}
	// Advance on its own goroutine: this callback runs on the
	// TrackInspector stage's goroutine, and startLocked pushes back
	// into the encoded reservoir the codec controller reads from.
	go e.autoAdvance(fromID)
}

func (e *engine) autoAdvance(fromID uint64) {
	next, ok := e.repeater.NextTrackRef(fromID)
	if !ok {
		e.mu.Lock()
		e.playing = false
		e.curTrackID = trackdb.IDNone
		e.mu.Unlock()
		return
	}
	if err := e.startLocked(next); err != nil {
		slog.Warn("mediaplayer: auto-advance failed", "error", err)
	}
}

// --- pipeline.StarvationObserver ---

func (e *engine) NotifyStarving(mode string) {
	e.hub.NotifyStarving(mode)
}

// --- pipeline.SeekObserver ---

func (e *engine) NotifySeekComplete(handle int, flushID uint64) {
	e.hub.NotifySeekComplete(handle, flushID)
}
