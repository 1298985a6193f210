// Package http serves the admin API, prometheus metrics and the IRC over
// WebSocket gateway.
package http

import (
	stdhttp "net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-irc/internal/config"
	"github.com/vovakirdan/wirechat-irc/internal/session"
	"github.com/vovakirdan/wirechat-irc/internal/store"
)

const readHeaderTimeout = 5 * time.Second

// Deps are the collaborators the HTTP surface reads from.
type Deps struct {
	Hub      Hub
	Session  session.Options
	Gatherer prometheus.Gatherer
	// Store is nil when auditing is disabled.
	Store  store.EventStore
	Logger *zerolog.Logger
}

// NewServer builds the HTTP server with all routes.
func NewServer(cfg config.Config, deps Deps) *stdhttp.Server {
	return &stdhttp.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           NewRouter(cfg, deps),
		ReadHeaderTimeout: readHeaderTimeout,
	}
}

// NewRouter builds the gin engine.
func NewRouter(cfg config.Config, deps Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	logger := deps.Logger
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(logger))

	api := NewAPIHandlers(deps.Hub, deps.Store, logger)
	router.GET("/health", api.Health)

	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	group := router.Group("/api")
	group.GET("/channels", api.Channels)
	group.GET("/clients", api.Clients)
	group.GET("/audit", api.Audit)

	ws := NewWSHandler(deps.Hub, deps.Session, WSConfig{
		MaxLineLength: cfg.MaxLineLength,
		WriteTimeout:  cfg.WriteTimeout,
		RateLimit:     cfg.WSRateLimit,
	}, logger)
	router.GET("/ws", gin.WrapH(ws))

	return router
}
