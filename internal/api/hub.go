package api

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// event is the envelope every websocket push uses: a short kind tag
// plus a kind-specific payload, so a thin client can dispatch on
// event.kind without knowing the full observer interface surface.
type event struct {
	Kind string `json:"kind"`
	Data any    `json:"data"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// This process serves no web page of its own, so subscribers are
	// typically cross-origin; allow all origins so a remote dashboard
	// can subscribe, leaving access control to the control API's own
	// bearer-token gate.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// hub fans out pipeline observer notifications to every connected
// websocket client, mirroring TorrX's torrent-progress push channel.
// It implements pipeline.PipelineObserver, pipeline.TrackObserver,
// pipeline.StarvationObserver, and pipeline.SeekObserver so it can be
// handed directly to the orchestrator constructor.
type hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]chan event
}

func newHub() *hub {
	return &hub{clients: make(map[*websocket.Conn]chan event)}
}

func (h *hub) serve(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err, "remote", c.ClientIP())
		return
	}

	ch := make(chan event, 64)
	h.mu.Lock()
	h.clients[conn] = ch
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
		conn.Close()
	}()

	// Drain incoming frames (pings, close) without interpreting them;
	// this is a push-only channel. The read loop's only job is to
	// notice the connection has gone away.
	go func() {
		for {
			if _, _, err := conn.NextReader(); err != nil {
				conn.Close()
				return
			}
		}
	}()

	for ev := range ch {
		if err := conn.WriteJSON(ev); err != nil {
			return
		}
	}
}

func (h *hub) broadcast(ev event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.clients {
		select {
		case ch <- ev:
		default:
			// Slow client: drop the event rather than block the
			// pipeline's reporting stage.
			slog.Warn("websocket client too slow, dropping event", "kind", ev.Kind)
		}
	}
}

func (h *hub) NotifyMode(name string) {
	h.broadcast(event{Kind: "mode", Data: gin.H{"name": name}})
}

func (h *hub) NotifyTrack(trackID uint64, uri, metadata string) {
	h.broadcast(event{Kind: "track", Data: gin.H{"trackId": trackID, "uri": uri, "metadata": metadata}})
}

func (h *hub) NotifyMetaText(text string) {
	h.broadcast(event{Kind: "metatext", Data: gin.H{"text": text}})
}

func (h *hub) NotifyStreamInfo(streamID uint64, sampleRate, bitDepth, channels uint, codecName string, lossless bool) {
	h.broadcast(event{Kind: "streaminfo", Data: gin.H{
		"streamId":   streamID,
		"sampleRate": sampleRate,
		"bitDepth":   bitDepth,
		"channels":   channels,
		"codec":      codecName,
		"lossless":   lossless,
	}})
}

func (h *hub) NotifyTime(seconds, totalSeconds float64) {
	h.broadcast(event{Kind: "time", Data: gin.H{"seconds": seconds, "totalSeconds": totalSeconds}})
}

func (h *hub) NotifyTrackPlayOutcome(trackID uint64, producedAudio bool) {
	h.broadcast(event{Kind: "trackOutcome", Data: gin.H{"trackId": trackID, "producedAudio": producedAudio}})
}

func (h *hub) NotifyStarving(mode string) {
	h.broadcast(event{Kind: "starving", Data: gin.H{"mode": mode}})
}

func (h *hub) NotifySeekComplete(handle int, flushID uint64) {
	h.broadcast(event{Kind: "seekComplete", Data: gin.H{"handle": handle, "flushId": flushID}})
}
