package trackdb

import (
	"math/rand"
	"sync"
)

// Source is the subset of Database that Shuffler needs, letting it
// wrap any backing store (in practice always a *Database, but kept
// narrow for testability).
type Source interface {
	Count() int
	TrackRefByIndex(index int) (uint64, bool)
	Snapshot() ([]uint64, uint64)
}

// Shuffler wraps a Source with an independently-maintained
// permutation of track positions. The underlying list order (used by
// TrackDatabase itself and by anything walking it directly) is
// unaffected; NextTrackRef/PrevTrackRef walk the permutation instead.
//
// The permutation is rebuilt lazily whenever the wrapped Source's
// sequence counter has moved since the permutation was last built,
// so structural mutations (insert/delete) invalidate it without
// Shuffler needing to observe the database directly.
type Shuffler struct {
	src Source
	rnd *rand.Rand

	mu     sync.Mutex
	perm   []uint64 // ids in shuffled order
	seq    uint64
	valid  bool
	cursor int // position in perm of the last selected/navigated-to track; -1 if none
}

// NewShuffler wraps src. seed selects the permutation; callers that
// want reproducible shuffles (tests) should pass a fixed seed.
func NewShuffler(src Source, seed int64) *Shuffler {
	return &Shuffler{src: src, rnd: rand.New(rand.NewSource(seed)), cursor: -1}
}

// Reshuffle discards the current permutation, forcing a fresh one to
// be built (with a newly-drawn random order) on the next access.
func (s *Shuffler) Reshuffle() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.valid = false
}

func (s *Shuffler) ensure() {
	ids, seq := s.src.Snapshot()
	if s.valid && seq == s.seq {
		return
	}
	perm := s.rnd.Perm(len(ids))
	// Materialise the permutation against current ids immediately so
	// NextTrackRef/PrevTrackRef don't need to re-permute on every call.
	shuffled := make([]uint64, len(ids))
	for i, p := range perm {
		shuffled[i] = ids[p]
	}
	s.perm = shuffled
	s.seq = seq
	s.valid = true
	// The old cursor position means nothing against a freshly drawn
	// permutation; the next selection or navigation call re-establishes it.
	s.cursor = -1
}

func (s *Shuffler) indexOf(id uint64) int {
	for i, v := range s.perm {
		if v == id {
			return i
		}
	}
	return -1
}

// TrackRefByIndex resolves index against the underlying source's own
// (sorted) order — the order a user sees when selecting "track N" from
// a displayed list — not against the shuffle permutation. The
// original source's TrackRefByIndex carries commented-out logic that
// would index the permutation directly; the active behaviour indexes
// the sorted order and then re-splices the selected track to the
// current cursor position in the permutation, so that subsequent
// NextTrackRef/PrevTrackRef calls navigate onward from the chosen
// track instead of from wherever it happened to already sit.
func (s *Shuffler) TrackRefByIndex(index int) (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.src.TrackRefByIndex(index)
	if !ok {
		return IDNone, false
	}
	s.ensure()
	s.spliceToCursor(id)
	return id, true
}

// spliceToCursor moves id to the current cursor slot in perm, swapping
// it with whatever occupies that slot. If there is no current cursor
// yet (a fresh permutation, or the first selection since one), the
// cursor slot is the head of the permutation, so every other track
// still follows the selected one.
func (s *Shuffler) spliceToCursor(id uint64) {
	pos := s.indexOf(id)
	if pos < 0 {
		return
	}
	if s.cursor < 0 {
		s.cursor = 0
	}
	if pos == s.cursor {
		return
	}
	s.perm[pos], s.perm[s.cursor] = s.perm[s.cursor], s.perm[pos]
}

// NextTrackRef returns the id immediately after prevID in the current
// permutation, advancing the cursor to that position.
func (s *Shuffler) NextTrackRef(prevID uint64) (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensure()
	return s.step(prevID, 1)
}

// PrevTrackRef returns the id immediately before prevID in the current
// permutation, retreating the cursor to that position.
func (s *Shuffler) PrevTrackRef(prevID uint64) (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensure()
	return s.step(prevID, -1)
}

func (s *Shuffler) step(prevID uint64, dir int) (uint64, bool) {
	if len(s.perm) == 0 {
		return IDNone, false
	}
	var pos int
	if prevID == IDNone {
		if dir > 0 {
			pos = -1
		} else {
			pos = len(s.perm)
		}
	} else {
		found := s.indexOf(prevID)
		if found < 0 {
			return IDNone, false
		}
		pos = found
	}
	next := pos + dir
	if next < 0 || next >= len(s.perm) {
		return IDNone, false
	}
	s.cursor = next
	return s.perm[next], true
}

// Count returns the number of tracks in the wrapped source.
func (s *Shuffler) Count() int {
	return s.src.Count()
}
