// Package api exposes the pipeline's control and diagnostics surface
// over HTTP: a gin router for transport/playlist control plus a
// gorilla/websocket push channel for observer notifications, guarded
// by the adapted internal/auth operator login.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/arung-agamani/denpa-pipeline/internal/auth"
	"github.com/arung-agamani/denpa-pipeline/internal/diag"
	"github.com/arung-agamani/denpa-pipeline/internal/trackdb"
)

type Server struct {
	engine     *gin.Engine
	httpServer *http.Server
	hub        *hub
	transportH *transportHandlers
}

// New builds the control/diagnostics router. ctrl drives transport;
// tracks is the live playlist database; registry backs both the JSON
// diagnostics route and the Prometheus /metrics endpoint; authSvc
// guards every /api route except /api/auth/login. /healthz and
// /metrics are not guarded.
func New(addr string, ctrl Controller, tracks *trackdb.Database, registry *diag.Registry, authSvc *auth.Auth) *Server {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), securityHeaders())

	h := newHub()

	authH := &authHandlers{a: authSvc}
	transportH := &transportHandlers{ctrl: ctrl}
	playlistH := &playlistHandlers{tracks: tracks}
	diagH := &diagHandlers{registry: registry}

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(diag.NewCollector(registry))
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(promReg, promhttp.HandlerOpts{})))

	r.POST("/api/auth/login", authH.login)

	guarded := r.Group("/api")
	guarded.Use(authSvc.GinMiddleware())
	{
		guarded.GET("/auth/verify", authH.verify)

		guarded.GET("/status", transportH.status)
		guarded.POST("/transport/play", transportH.play)
		guarded.POST("/transport/pause", transportH.pause)
		guarded.POST("/transport/stop", transportH.stop)
		guarded.POST("/transport/next", transportH.next)
		guarded.POST("/transport/previous", transportH.previous)
		guarded.POST("/transport/seek", transportH.seek)
		guarded.POST("/transport/mute", transportH.mute)
		guarded.POST("/transport/shuffle", transportH.shuffle)
		guarded.POST("/transport/repeat", transportH.repeat)

		guarded.GET("/playlist", playlistH.list)
		guarded.POST("/playlist", playlistH.insert)
		guarded.POST("/playlist/scan", playlistH.scan)
		guarded.DELETE("/playlist", playlistH.deleteAll)
		guarded.DELETE("/playlist/:id", playlistH.delete)

		guarded.GET("/diag", diagH.snapshot)
		guarded.GET("/ws", func(c *gin.Context) { h.serve(c) })
	}

	return &Server{
		engine:     r,
		hub:        h,
		transportH: transportH,
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      r,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		},
	}
}

// Hub exposes the websocket fan-out as the four pipeline observer
// interfaces, so cmd/mediaplayer can hand it straight to
// pipeline.New's observer parameters.
func (s *Server) Hub() *hub { return s.hub }

// SetController rebinds the transport routes to ctrl. cmd/mediaplayer
// calls this once its engine exists, since the engine itself depends
// on Hub() and so can't be constructed before New.
func (s *Server) SetController(ctrl Controller) {
	s.transportH.ctrl = ctrl
}

func (s *Server) Run() error {
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
