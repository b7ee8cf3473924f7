package trackdb

import "testing"

func TestRepeaterNoWrapByDefault(t *testing.T) {
	db := NewDatabase()
	id1, _ := db.Insert(IDNone, "a", "")
	id2, _ := db.Insert(id1, "b", "")

	r := NewRepeater(db)
	if _, ok := r.NextTrackRef(id2); ok {
		t.Fatalf("expected no wraparound with repeat disabled")
	}
	if _, ok := r.PrevTrackRef(id1); ok {
		t.Fatalf("expected no wraparound with repeat disabled")
	}
}

func TestRepeaterWrapsWhenEnabled(t *testing.T) {
	db := NewDatabase()
	id1, _ := db.Insert(IDNone, "a", "")
	id2, _ := db.Insert(id1, "b", "")
	id3, _ := db.Insert(id2, "c", "")

	r := NewRepeater(db)
	r.SetRepeat(true)

	next, ok := r.NextTrackRef(id3)
	if !ok || next != id1 {
		t.Fatalf("expected wraparound to first track, got %d ok=%v", next, ok)
	}
	prev, ok := r.PrevTrackRef(id1)
	if !ok || prev != id3 {
		t.Fatalf("expected wraparound to last track, got %d ok=%v", prev, ok)
	}
}

func TestRepeaterMiddleNavigationUnaffected(t *testing.T) {
	db := NewDatabase()
	id1, _ := db.Insert(IDNone, "a", "")
	id2, _ := db.Insert(id1, "b", "")
	db.Insert(id2, "c", "")

	r := NewRepeater(db)
	r.SetRepeat(true)
	next, ok := r.NextTrackRef(id1)
	if !ok || next != id2 {
		t.Fatalf("expected ordinary next to id2, got %d ok=%v", next, ok)
	}
}

func TestRepeaterEmptyDatabaseNoWrap(t *testing.T) {
	db := NewDatabase()
	r := NewRepeater(db)
	r.SetRepeat(true)
	if _, ok := r.NextTrackRef(IDNone); ok {
		t.Fatalf("expected no track in an empty database")
	}
}
