package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type transportHandlers struct {
	ctrl Controller
}

// Status handles GET /api/status
func (h *transportHandlers) status(c *gin.Context) {
	c.JSON(http.StatusOK, h.ctrl.Status())
}

// Play handles POST /api/transport/play
func (h *transportHandlers) play(c *gin.Context) {
	if err := h.ctrl.Play(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Pause handles POST /api/transport/pause
func (h *transportHandlers) pause(c *gin.Context) {
	h.ctrl.Pause()
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Stop handles POST /api/transport/stop
func (h *transportHandlers) stop(c *gin.Context) {
	h.ctrl.Stop()
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Next handles POST /api/transport/next
func (h *transportHandlers) next(c *gin.Context) {
	if err := h.ctrl.Next(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Previous handles POST /api/transport/previous
func (h *transportHandlers) previous(c *gin.Context) {
	if err := h.ctrl.Previous(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Seek handles POST /api/transport/seek  {"seconds": 12.5}
func (h *transportHandlers) seek(c *gin.Context) {
	var body struct {
		Seconds float64 `json:"seconds"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "invalid request body"})
		return
	}
	if body.Seconds < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "seconds must be non-negative"})
		return
	}
	if err := h.ctrl.SeekSeconds(body.Seconds); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Mute handles POST /api/transport/mute  {"on": true}
func (h *transportHandlers) mute(c *gin.Context) {
	var body struct {
		On bool `json:"on"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "invalid request body"})
		return
	}
	h.ctrl.SetMute(body.On)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Shuffle handles POST /api/transport/shuffle  {"on": true}
func (h *transportHandlers) shuffle(c *gin.Context) {
	var body struct {
		On bool `json:"on"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "invalid request body"})
		return
	}
	h.ctrl.SetShuffle(body.On)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Repeat handles POST /api/transport/repeat  {"on": true}
func (h *transportHandlers) repeat(c *gin.Context) {
	var body struct {
		On bool `json:"on"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "invalid request body"})
		return
	}
	h.ctrl.SetRepeat(body.On)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
