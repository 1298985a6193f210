package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	stdhttp "net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-irc/internal/auth"
	"github.com/vovakirdan/wirechat-irc/internal/config"
	"github.com/vovakirdan/wirechat-irc/internal/core"
	"github.com/vovakirdan/wirechat-irc/internal/metrics"
	"github.com/vovakirdan/wirechat-irc/internal/session"
	"github.com/vovakirdan/wirechat-irc/internal/store"
	"github.com/vovakirdan/wirechat-irc/internal/store/sqlite"
	transporthttp "github.com/vovakirdan/wirechat-irc/internal/transport/http"
	"github.com/vovakirdan/wirechat-irc/internal/transport/tcp"
)

// App wires together core and transport layers.
type App struct {
	hub             *core.Hub
	irc             *tcp.Server
	server          *stdhttp.Server // nil when http_addr is empty
	store           store.Store     // nil when audit_path is empty
	shutdownTimeout time.Duration
	log             *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	opts := []core.Option{core.WithLogger(logger), core.WithMetrics(m)}

	var st store.Store
	if cfg.AuditPath != "" {
		sqliteStore, err := sqlite.New(cfg.AuditPath)
		if err != nil {
			return nil, fmt.Errorf("init store: %w", err)
		}
		st = sqliteStore
		opts = append(opts, core.WithStore(st))
		logger.Info().Str("audit_path", cfg.AuditPath).Msg("audit log enabled")
	}

	hub := core.NewHub(core.Config{
		ServerName: cfg.ServerName,
		Welcome:    cfg.Welcome,
		Channels:   channelSpecs(cfg.Channels),
	}, opts...)

	gate := auth.NewGate(cfg.PasswordHash)
	if gate.Required() {
		logger.Info().Msg("connection password required")
	}
	sessionOpts := session.Options{
		Formatter: hub.Formatter(),
		Gate:      gate,
		Metrics:   m,
	}

	irc := tcp.NewServer(tcp.Config{
		Addr:          cfg.Addr,
		MaxLineLength: cfg.MaxLineLength,
		WriteTimeout:  cfg.WriteTimeout,
	}, hub, sessionOpts, logger)

	a := &App{
		hub:             hub,
		irc:             irc,
		store:           st,
		shutdownTimeout: cfg.ShutdownTimeout,
		log:             logger,
	}

	if cfg.HTTPAddr != "" {
		var auditStore store.EventStore
		if st != nil {
			auditStore = st
		}
		a.server = transporthttp.NewServer(*cfg, transporthttp.Deps{
			Hub:      hub,
			Session:  sessionOpts,
			Gatherer: reg,
			Store:    auditStore,
			Logger:   logger,
		})
	}

	return a, nil
}

// Run starts the hub and listeners and blocks until context cancellation or fatal error.
func (a *App) Run(ctx context.Context) error {
	// The hub outlives the listeners so that sessions closed during shutdown
	// can still unregister.
	hubCtx, stopHub := context.WithCancel(context.Background())
	hubDone := make(chan struct{})
	go func() {
		a.hub.Run(hubCtx)
		close(hubDone)
	}()

	serveCtx, stopServing := context.WithCancel(ctx)
	defer stopServing()

	var wg sync.WaitGroup
	errCh := make(chan error, 2)

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := a.irc.ListenAndServe(serveCtx); err != nil {
			errCh <- fmt.Errorf("irc listener: %w", err)
		}
	}()

	if a.server != nil {
		a.server.BaseContext = func(net.Listener) context.Context { return serveCtx }
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.log.Info().Str("addr", a.server.Addr).Msg("http listener started")
			if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
				errCh <- fmt.Errorf("http listener: %w", err)
			}
		}()
	}

	var runErr error
	select {
	case runErr = <-errCh:
		a.log.Error().Err(runErr).Msg("listener failed")
	case <-ctx.Done():
		a.log.Info().Msg("shutting down")
	}

	stopServing()
	if a.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.log.Warn().Err(err).Msg("http shutdown incomplete")
			_ = a.server.Close()
		}
		cancel()
	}
	wg.Wait()

	stopHub()
	select {
	case <-hubDone:
	case <-time.After(a.shutdownTimeout):
		a.log.Warn().Msg("hub did not stop in time")
	}

	a.cleanup()
	return runErr
}

// cleanup closes database and other resources.
func (a *App) cleanup() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close store")
		} else {
			a.log.Info().Msg("store closed")
		}
	}
}

func channelSpecs(channels []config.ChannelConfig) []core.ChannelSpec {
	specs := make([]core.ChannelSpec, 0, len(channels))
	for _, ch := range channels {
		specs = append(specs, core.ChannelSpec{Name: ch.Name, Description: ch.Description})
	}
	return specs
}
