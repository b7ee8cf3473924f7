package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arung-agamani/denpa-pipeline/internal/diag"
)

type diagHandlers struct {
	registry *diag.Registry
}

// Snapshot handles GET /api/diag, returning every registered
// allocator/pool's current cell counts. The same data is exported as
// Prometheus gauges via diag.Collector on the metrics endpoint; this
// route is the human/JSON-debugging equivalent.
func (h *diagHandlers) snapshot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "pools": h.registry.Snapshot()})
}
