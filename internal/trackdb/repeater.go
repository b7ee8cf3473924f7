package trackdb

// Navigator is the subset of Database (or Shuffler) that Repeater
// layers wraparound on top of.
type Navigator interface {
	Count() int
	NextTrackRef(prevID uint64) (uint64, bool)
	PrevTrackRef(prevID uint64) (uint64, bool)
	TrackRefByIndex(index int) (uint64, bool)
}

// Repeater wraps a Navigator (ordinarily a *Database, or a *Shuffler
// for shuffled playback) and adds wraparound: NextTrackRef off the
// last track yields the first, PrevTrackRef off the first yields the
// last, instead of both reporting IDNone.
//
// Repeat is a runtime-togglable flag rather than a constructor
// parameter, matching how a player's "repeat all" control flips it
// on and off without rebuilding the navigation chain.
type Repeater struct {
	nav    Navigator
	repeat bool
}

// NewRepeater wraps nav with repeat initially disabled.
func NewRepeater(nav Navigator) *Repeater {
	return &Repeater{nav: nav}
}

// SetRepeat toggles wraparound behaviour.
func (r *Repeater) SetRepeat(on bool) {
	r.repeat = on
}

// Repeat reports whether wraparound is currently enabled.
func (r *Repeater) Repeat() bool {
	return r.repeat
}

// NextTrackRef returns the id after prevID, wrapping to the first
// track when repeat is enabled and prevID was the last.
func (r *Repeater) NextTrackRef(prevID uint64) (uint64, bool) {
	if id, ok := r.nav.NextTrackRef(prevID); ok {
		return id, true
	}
	if !r.repeat {
		return IDNone, false
	}
	return r.nav.TrackRefByIndex(0)
}

// PrevTrackRef returns the id before prevID, wrapping to the last
// track when repeat is enabled and prevID was the first.
func (r *Repeater) PrevTrackRef(prevID uint64) (uint64, bool) {
	if id, ok := r.nav.PrevTrackRef(prevID); ok {
		return id, true
	}
	if !r.repeat {
		return IDNone, false
	}
	count := r.nav.Count()
	if count == 0 {
		return IDNone, false
	}
	return r.nav.TrackRefByIndex(count - 1)
}
