package trackdb

import (
	"errors"
	"sync"
	"sync/atomic"
)

var (
	ErrFull       = errors.New("trackdb: database full")
	ErrNotFound   = errors.New("trackdb: track id not found")
	ErrNoNeighbor = errors.New("trackdb: insertAfterID not found")
)

// Database is an ordered sequence of Track values, bounded to
// MaxTracks, protected by a mutex (iLock) with a second mutex
// (iObserverLock) guarding observer dispatch.
//
// Every structural mutation follows the same two-lock interleaving:
// perform the mutation under the data lock, acquire the observer lock
// *before releasing the data lock*, release the data lock, dispatch
// notifications under the observer lock, then release the observer
// lock. This guarantees observers see mutations in the exact order
// they happened without ever holding the data lock during a callback
// (which could deadlock against a callback that re-enters the
// database) and without two mutations racing to deliver their
// notifications out of order.
type Database struct {
	mu    sync.Mutex
	order []uint64          // track ids in list order
	byID  map[uint64]*Track
	seq   atomic.Uint64

	obsMu     sync.Mutex
	observers []Observer

	nextID atomic.Uint64
}

// NewDatabase returns an empty database. ids mint starting at 1 so 0
// stays IDNone.
func NewDatabase() *Database {
	return &Database{byID: make(map[uint64]*Track)}
}

// AddObserver registers o to receive future mutation notifications.
// Not safe to call concurrently with mutations from the same caller
// that expects to observe only notifications issued after this call.
func (d *Database) AddObserver(o Observer) {
	d.obsMu.Lock()
	defer d.obsMu.Unlock()
	d.observers = append(d.observers, o)
}

// Sequence returns the current mutation counter, bumped once per
// structural mutation. Callers doing index-keyed iteration can detect
// staleness by comparing a remembered sequence against this.
func (d *Database) Sequence() uint64 {
	return d.seq.Load()
}

// Count returns the number of tracks currently in the database.
func (d *Database) Count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.order)
}

// Insert adds a new track immediately after insertAfterID (IDNone to
// insert at the head), returning its newly-minted id. The idAfter
// reported to observers is the id of the track that ends up one
// position further along, looked up by id rather than raw index
// (matching the original's Insert behaviour, where a naive
// reimplementation that treated idAfter as an index value would be
// wrong).
func (d *Database) Insert(insertAfterID uint64, uri, metadata string) (uint64, error) {
	d.mu.Lock()

	if len(d.order) >= MaxTracks {
		d.mu.Unlock()
		return 0, ErrFull
	}

	idx := 0
	if insertAfterID != IDNone {
		at, ok := d.indexOf(insertAfterID)
		if !ok {
			d.mu.Unlock()
			return 0, ErrNoNeighbor
		}
		idx = at + 1
	}

	id := d.nextID.Add(1)
	t := &Track{ID: id, URI: uri, Metadata: metadata}
	d.byID[id] = t

	d.order = append(d.order, 0)
	copy(d.order[idx+1:], d.order[idx:])
	d.order[idx] = id
	d.seq.Add(1)

	idAfter := uint64(IDNone)
	if idx+1 < len(d.order) {
		idAfter = d.order[idx+1]
	}

	d.obsMu.Lock()
	d.mu.Unlock()
	d.dispatchInserted(*t, insertAfterID, idAfter)
	d.obsMu.Unlock()

	return id, nil
}

// DeleteID removes the track with the given id, if present.
func (d *Database) DeleteID(id uint64) error {
	d.mu.Lock()

	idx, ok := d.indexOf(id)
	if !ok {
		d.mu.Unlock()
		return ErrNotFound
	}
	d.order = append(d.order[:idx], d.order[idx+1:]...)
	delete(d.byID, id)
	d.seq.Add(1)

	d.obsMu.Lock()
	d.mu.Unlock()
	d.dispatchDeleted(id)
	d.obsMu.Unlock()
	return nil
}

// DeleteAll removes every track.
func (d *Database) DeleteAll() {
	d.mu.Lock()
	d.order = nil
	d.byID = make(map[uint64]*Track)
	d.seq.Add(1)

	d.obsMu.Lock()
	d.mu.Unlock()
	d.dispatchAllDeleted()
	d.obsMu.Unlock()
}

// GetByID returns a copy of the track with the given id.
func (d *Database) GetByID(id uint64) (Track, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	t, ok := d.byID[id]
	if !ok {
		return Track{}, false
	}
	return *t, true
}

// GetByIDWithSeq additionally returns the sequence counter observed
// at lookup time and the track's current index, so a caller holding a
// stale cached index can detect the staleness (seq mismatch) and fall
// back to this id-keyed lookup instead of trusting the cached index.
func (d *Database) GetByIDWithSeq(id uint64) (t Track, index int, seq uint64, ok bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	tr, exists := d.byID[id]
	if !exists {
		return Track{}, -1, d.seq.Load(), false
	}
	idx, _ := d.indexOf(id)
	return *tr, idx, d.seq.Load(), true
}

// TrackRefByIndex returns the id of the track at the given position
// in list order.
func (d *Database) TrackRefByIndex(index int) (uint64, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if index < 0 || index >= len(d.order) {
		return IDNone, false
	}
	return d.order[index], true
}

// NextTrackRef returns the id immediately after prevID in list order.
func (d *Database) NextTrackRef(prevID uint64) (uint64, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	idx, ok := d.indexOf(prevID)
	if !ok || idx+1 >= len(d.order) {
		return IDNone, false
	}
	return d.order[idx+1], true
}

// PrevTrackRef returns the id immediately before prevID in list order.
func (d *Database) PrevTrackRef(prevID uint64) (uint64, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	idx, ok := d.indexOf(prevID)
	if !ok || idx == 0 {
		return IDNone, false
	}
	return d.order[idx-1], true
}

// Snapshot returns a copy of every track id in list order, along with
// the sequence counter at the moment of the snapshot.
func (d *Database) Snapshot() ([]uint64, uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := append([]uint64(nil), d.order...)
	return out, d.seq.Load()
}

func (d *Database) indexOf(id uint64) (int, bool) {
	for i, tid := range d.order {
		if tid == id {
			return i, true
		}
	}
	return 0, false
}

func (d *Database) dispatchInserted(t Track, idBefore, idAfter uint64) {
	for _, o := range d.observers {
		o.NotifyTrackInserted(t, idBefore, idAfter)
	}
}

func (d *Database) dispatchDeleted(id uint64) {
	for _, o := range d.observers {
		o.NotifyTrackDeleted(id)
	}
}

func (d *Database) dispatchAllDeleted() {
	for _, o := range d.observers {
		o.NotifyAllDeleted()
	}
}
