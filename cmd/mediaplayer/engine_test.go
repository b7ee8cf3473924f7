package main

import (
	"testing"

	"github.com/arung-agamani/denpa-pipeline/internal/trackdb"
)

func newTestNav(t *testing.T, n int) *shuffleNav {
	t.Helper()
	db := trackdb.NewDatabase()
	prev := trackdb.IDNone
	for i := 0; i < n; i++ {
		id, err := db.Insert(prev, "file:///t.wav", "")
		if err != nil {
			t.Fatalf("insert: %v", err)
		}
		prev = id
	}
	return &shuffleNav{tracks: db, shuffler: trackdb.NewShuffler(db, 1)}
}

func TestShuffleNavStraightOrderMatchesDatabase(t *testing.T) {
	nav := newTestNav(t, 3)
	first, ok := nav.TrackRefByIndex(0)
	if !ok {
		t.Fatal("expected a first track")
	}
	next, ok := nav.NextTrackRef(first)
	if !ok {
		t.Fatal("expected a second track")
	}
	if next == first {
		t.Fatal("expected next to differ from first")
	}
	wantFirst, _ := nav.tracks.TrackRefByIndex(0)
	wantNext, _ := nav.tracks.TrackRefByIndex(1)
	if first != wantFirst || next != wantNext {
		t.Fatalf("expected database order %d, %d; got %d, %d", wantFirst, wantNext, first, next)
	}
}

func TestShuffleNavShuffledVisitsEveryTrackOnce(t *testing.T) {
	nav := newTestNav(t, 5)
	nav.setShuffle(true)

	seen := map[uint64]bool{}
	id, ok := nav.TrackRefByIndex(0)
	if !ok {
		t.Fatal("expected a first shuffled track")
	}
	for i := 0; i < 5; i++ {
		if seen[id] {
			t.Fatalf("track %d visited twice", id)
		}
		seen[id] = true
		next, ok := nav.NextTrackRef(id)
		if !ok {
			break
		}
		id = next
	}
	if len(seen) != 5 {
		t.Fatalf("expected 5 distinct tracks, got %d", len(seen))
	}
}

func TestRepeaterWrapsAroundShuffledNav(t *testing.T) {
	nav := newTestNav(t, 2)
	nav.setShuffle(true)
	rep := trackdb.NewRepeater(nav)
	rep.SetRepeat(true)

	first, ok := nav.TrackRefByIndex(0)
	if !ok {
		t.Fatal("expected a first shuffled track")
	}
	last, ok := nav.NextTrackRef(first)
	if !ok {
		t.Fatal("expected a second shuffled track")
	}
	wrapped, ok := rep.NextTrackRef(last)
	if !ok {
		t.Fatal("expected repeat to wrap to the first track")
	}
	if wrapped != first {
		t.Fatalf("expected wraparound to the first shuffled track, got %d want %d", wrapped, first)
	}
}

func TestEngineStatusReflectsShuffleAndRepeatFlags(t *testing.T) {
	nav := newTestNav(t, 1)
	e := &engine{tracks: nav.tracks, nav: nav, repeater: trackdb.NewRepeater(nav)}

	e.SetShuffle(true)
	e.SetRepeat(true)

	st := e.Status()
	if !st.Shuffle || !st.Repeat || st.State != "stopped" {
		t.Fatalf("unexpected status: %+v", st)
	}
}
