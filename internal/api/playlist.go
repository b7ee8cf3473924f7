package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/arung-agamani/denpa-pipeline/internal/trackdb"
)

type playlistHandlers struct {
	tracks *trackdb.Database
}

type trackJSON struct {
	ID       uint64 `json:"id"`
	URI      string `json:"uri"`
	Metadata string `json:"metadata"`
}

// List handles GET /api/playlist
func (h *playlistHandlers) list(c *gin.Context) {
	ids, seq := h.tracks.Snapshot()
	out := make([]trackJSON, 0, len(ids))
	for _, id := range ids {
		t, ok := h.tracks.GetByID(id)
		if !ok {
			continue
		}
		out = append(out, trackJSON{ID: t.ID, URI: t.URI, Metadata: t.Metadata})
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "sequence": seq, "tracks": out})
}

// Insert handles POST /api/playlist
// Body: {"uri": "...", "metadata": "...", "insertAfterId": 0}
// insertAfterId of 0 (trackdb.IDNone) inserts at the head.
func (h *playlistHandlers) insert(c *gin.Context) {
	var body struct {
		URI           string `json:"uri"`
		Metadata      string `json:"metadata"`
		InsertAfterID uint64 `json:"insertAfterId"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.URI == "" {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "invalid request body"})
		return
	}
	id, err := h.tracks.Insert(body.InsertAfterID, body.URI, trackdb.ResolveMetadata(body.URI, body.Metadata))
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, trackdb.ErrFull) {
			status = http.StatusInsufficientStorage
		}
		c.JSON(status, gin.H{"status": "error", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "id": id})
}

// Scan handles POST /api/playlist/scan
// Body: {"dir": "/path/to/music"}
// Recursively scans dir for supported audio files and appends them to
// the playlist in sorted path order.
func (h *playlistHandlers) scan(c *gin.Context) {
	var body struct {
		Dir string `json:"dir"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.Dir == "" {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "invalid request body"})
		return
	}
	result, err := trackdb.ScanDirectory(h.tracks, body.Dir)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": err.Error()})
		return
	}
	errs := make(map[string]string, len(result.Errors))
	for path, e := range result.Errors {
		errs[path] = e.Error()
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "inserted": result.Inserted, "errors": errs})
}

// Delete handles DELETE /api/playlist/:id
func (h *playlistHandlers) delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "invalid track id"})
		return
	}
	if err := h.tracks.DeleteID(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"status": "error", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// DeleteAll handles DELETE /api/playlist
func (h *playlistHandlers) deleteAll(c *gin.Context) {
	h.tracks.DeleteAll()
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
