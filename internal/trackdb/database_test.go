package trackdb

import "testing"

type recordingObserver struct {
	inserted []Track
	deleted  []uint64
	allClear int
}

func (r *recordingObserver) NotifyTrackInserted(track Track, idBefore, idAfter uint64) {
	r.inserted = append(r.inserted, track)
}

func (r *recordingObserver) NotifyTrackDeleted(id uint64) {
	r.deleted = append(r.deleted, id)
}

func (r *recordingObserver) NotifyAllDeleted() {
	r.allClear++
}

func TestInsertAtHeadAndAppend(t *testing.T) {
	db := NewDatabase()
	id1, err := db.Insert(IDNone, "file:///a.wav", "")
	if err != nil {
		t.Fatalf("insert a: %v", err)
	}
	id2, err := db.Insert(id1, "file:///b.wav", "")
	if err != nil {
		t.Fatalf("insert b: %v", err)
	}
	id3, err := db.Insert(IDNone, "file:///c.wav", "")
	if err != nil {
		t.Fatalf("insert c: %v", err)
	}

	// c was inserted at head, so order is c, a, b.
	want := []uint64{id3, id1, id2}
	got, _ := db.Snapshot()
	if len(got) != len(want) {
		t.Fatalf("expected %d tracks, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestInsertIdAfterIsIdNotIndex(t *testing.T) {
	db := NewDatabase()
	obs := &recordingObserver{}
	db.AddObserver(obs)

	id1, _ := db.Insert(IDNone, "file:///a.wav", "")
	id2, _ := db.Insert(id1, "file:///b.wav", "")

	// Inserting between id1 and id2 must report idAfter == id2, the
	// id of the track now one further along — not the raw index.
	var gotBefore, gotAfter uint64
	db.observers = nil
	db.AddObserver(observerFunc{
		inserted: func(track Track, idBefore, idAfter uint64) {
			gotBefore, gotAfter = idBefore, idAfter
		},
	})
	id3, err := db.Insert(id1, "file:///c.wav", "")
	if err != nil {
		t.Fatalf("insert c: %v", err)
	}
	if gotBefore != id1 {
		t.Fatalf("idBefore = %d, want %d", gotBefore, id1)
	}
	if gotAfter != id2 {
		t.Fatalf("idAfter = %d, want %d (the track id, not an index)", gotAfter, id2)
	}
	_ = id3
}

type observerFunc struct {
	inserted func(track Track, idBefore, idAfter uint64)
}

func (o observerFunc) NotifyTrackInserted(track Track, idBefore, idAfter uint64) {
	if o.inserted != nil {
		o.inserted(track, idBefore, idAfter)
	}
}
func (observerFunc) NotifyTrackDeleted(id uint64) {}
func (observerFunc) NotifyAllDeleted()            {}

func TestDeleteIDRemovesAndRenumbersNeighbours(t *testing.T) {
	db := NewDatabase()
	id1, _ := db.Insert(IDNone, "a", "")
	id2, _ := db.Insert(id1, "b", "")
	id3, _ := db.Insert(id2, "c", "")

	if err := db.DeleteID(id2); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := db.GetByID(id2); ok {
		t.Fatalf("id2 should be gone")
	}
	next, ok := db.NextTrackRef(id1)
	if !ok || next != id3 {
		t.Fatalf("expected id1's next to now be id3, got %d ok=%v", next, ok)
	}
}

func TestDeleteAllClearsAndNotifies(t *testing.T) {
	db := NewDatabase()
	obs := &recordingObserver{}
	db.AddObserver(obs)
	db.Insert(IDNone, "a", "")
	db.Insert(IDNone, "b", "")

	db.DeleteAll()
	if db.Count() != 0 {
		t.Fatalf("expected empty database")
	}
	if obs.allClear != 1 {
		t.Fatalf("expected one NotifyAllDeleted, got %d", obs.allClear)
	}
}

func TestInsertFullReturnsErrFull(t *testing.T) {
	db := NewDatabase()
	last := uint64(IDNone)
	for i := 0; i < MaxTracks; i++ {
		id, err := db.Insert(last, "x", "")
		if err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
		last = id
	}
	if _, err := db.Insert(last, "overflow", ""); err != ErrFull {
		t.Fatalf("expected ErrFull, got %v", err)
	}
}

func TestInsertAfterUnknownIDFails(t *testing.T) {
	db := NewDatabase()
	if _, err := db.Insert(12345, "x", ""); err != ErrNoNeighbor {
		t.Fatalf("expected ErrNoNeighbor, got %v", err)
	}
}

func TestPrevNextTrackRefBounds(t *testing.T) {
	db := NewDatabase()
	id1, _ := db.Insert(IDNone, "a", "")
	id2, _ := db.Insert(id1, "b", "")

	if _, ok := db.PrevTrackRef(id1); ok {
		t.Fatalf("expected no track before the first")
	}
	if _, ok := db.NextTrackRef(id2); ok {
		t.Fatalf("expected no track after the last")
	}
}
