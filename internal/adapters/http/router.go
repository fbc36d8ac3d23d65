package http

import (
	"context"
	"net/http"
	"path/filepath"

	"github.com/dkeye/Zloer/internal/adapters/signal"
	"github.com/dkeye/Zloer/internal/app"
	"github.com/dkeye/Zloer/internal/config"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Server bundles what the router needs from the application layer.
type Server struct {
	Rooms   *app.RoomManagerImpl
	Conns   *app.Registry
	Gateway *app.Gateway
	Relay   *app.SignalRelay
}

func SetupRouter(ctx context.Context, cfg *config.Config, srv Server) *gin.Engine {
	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if !cfg.Production() {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())
	r.Use(OriginFilter(cfg.CorsOrigins))

	store := cookie.NewStore([]byte(cfg.Secret))
	store.Options(sessions.Options{Path: "/", MaxAge: 3600 * 24 * 7, HttpOnly: true, SameSite: http.SameSiteLaxMode})
	r.Use(sessions.Sessions("ZloerSessions", store))
	r.Use(ClientTokenMiddleware())

	if cfg.StaticPath != "" {
		r.Static("/static", cfg.StaticPath)
		r.GET("/", func(c *gin.Context) {
			c.File(filepath.Join(cfg.StaticPath, "index.html"))
		})
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "ok",
			"rooms":       len(srv.Rooms.List()),
			"connections": srv.Conns.Count(),
		})
	})

	api := r.Group("/api")
	api.GET("/rooms", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"maxParticipants": srv.Gateway.MaxParticipants(),
			"rooms":           srv.Rooms.List(),
		})
	})

	ctrl := signal.NewSignalWSController(srv.Gateway, srv.Relay, srv.Conns, signal.Options{
		ReadLimit:      cfg.ReadLimit,
		PingPeriod:     cfg.PingPeriod,
		SendBuffer:     cfg.SendBuffer,
		AllowedOrigins: cfg.CorsOrigins,
		RateLimit:      cfg.RateLimit,
		RateInterval:   cfg.RateInterval,
	})
	ws := r.Group("/ws")
	if cfg.JoinSecret != "" {
		ws.Use(JoinTokenAuth(cfg.JoinSecret))
	}
	ws.GET("", func(c *gin.Context) {
		log.Debug().Str("module", "adapters.http").Str("client", c.GetString("client_token")).Msg("ws signal endpoint hit")
		ctrl.HandleSignal(ctx, c)
	})

	log.Info().
		Str("module", "adapters.http").
		Str("static", cfg.StaticPath).
		Bool("join_token", cfg.JoinSecret != "").
		Msg("router setup")
	return r
}
