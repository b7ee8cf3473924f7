// Package trackdb implements the playlist track database: an ordered,
// mutex-protected sequence of tracks. Tracks are handed to callers and
// observer callbacks as value copies, so an observer can safely retain
// a Track after it's been removed from the list. Shuffler and Repeater wrap it with
// alternate navigation orders.
package trackdb

// IDNone is the sentinel "no such track" id, mirroring msg.IDInvalid;
// trackdb intentionally doesn't import the msg package so it stays
// usable independent of the rest of the pipeline (e.g. from a bare
// playlist-management CLI or API test).
const IDNone uint64 = 0

// MaxTracks bounds the database, matching kMaxTracks from the
// original design (nominally 1200).
const MaxTracks = 1200

// Track is a single playlist entry: URI, opaque metadata, and a
// unique, stable-for-life id.
type Track struct {
	ID       uint64
	URI      string
	Metadata string
}
