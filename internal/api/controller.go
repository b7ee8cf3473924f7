package api

// Status is a snapshot of what's currently playing, handed back by
// Controller.Status for the GET /api/status route. It is not pushed
// over the websocket; subscribers there receive the individual
// pipeline notifications instead.
type Status struct {
	State           string  `json:"state"`
	TrackID         uint64  `json:"trackId"`
	URI             string  `json:"uri"`
	Metadata        string  `json:"metadata"`
	PositionSeconds float64 `json:"positionSeconds"`
	DurationSeconds float64 `json:"durationSeconds"`
	Shuffle         bool    `json:"shuffle"`
	Repeat          bool    `json:"repeat"`
	Muted           bool    `json:"muted"`
}

// Controller is the transport surface the HTTP/websocket layer drives.
// cmd/mediaplayer's engine implements it, translating these calls into
// trackdb navigation, protocol dispatch, and pipeline stage control —
// internal/api only knows about this interface, not the pipeline or
// protocol packages directly.
type Controller interface {
	Play() error
	Pause()
	Stop()
	Next() error
	Previous() error
	SeekSeconds(seconds float64) error
	SetMute(on bool)
	SetShuffle(on bool)
	SetRepeat(on bool)
	Status() Status
}
