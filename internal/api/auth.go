package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arung-agamani/denpa-pipeline/internal/auth"
)

type authHandlers struct {
	a *auth.Auth
}

// login handles POST /api/auth/login, exchanging the configured
// operator credential for a bearer token used against every other
// guarded route.
func (h *authHandlers) login(c *gin.Context) {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "invalid request body"})
		return
	}
	if len(body.Username) == 0 || len(body.Username) > 256 ||
		len(body.Password) == 0 || len(body.Password) > 256 {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "invalid credentials format"})
		return
	}

	token, err := h.a.Authenticate(body.Username, body.Password, c.Request.RemoteAddr)
	if err != nil {
		slog.Warn("failed control-api login attempt", "remote", c.Request.RemoteAddr, "error", err)
		if err == auth.ErrRateLimited {
			remaining := h.a.RemainingLockout(c.Request.RemoteAddr)
			c.Header("Retry-After", fmt.Sprintf("%d", int(remaining.Seconds())))
			c.JSON(http.StatusTooManyRequests, gin.H{"status": "error", "error": "too many login attempts, please try again later"})
			return
		}
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "error": "invalid credentials"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "token": token})
}

func (h *authHandlers) verify(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
