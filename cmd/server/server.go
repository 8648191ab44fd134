package main

import (
	"context"
	"fmt"
	"time"

	"github.com/JaimeStill/folio/internal/config"
	"github.com/JaimeStill/folio/internal/infrastructure"
)

// Server ties the shared infrastructure, the API modules and the listener
// to one lifecycle.
type Server struct {
	infra           *infrastructure.Infrastructure
	http            *httpServer
	shutdownTimeout time.Duration
}

// NewServer wires every subsystem from cfg. Nothing connects or listens
// until Run.
func NewServer(cfg *config.Config) (*Server, error) {
	infra, err := infrastructure.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("infrastructure: %w", err)
	}

	modules, err := NewModules(infra, cfg)
	if err != nil {
		return nil, fmt.Errorf("modules: %w", err)
	}

	router := buildRouter(infra)
	modules.Mount(router)

	infra.Logger.Info("server initialized",
		"addr", cfg.Server.Addr(),
		"env", cfg.Env(),
		"version", cfg.Version,
		"max_upload_size", cfg.API.MaxUploadSize,
		"max_content_size", cfg.Ingest.MaxContentSize,
	)

	return &Server{
		infra:           infra,
		http:            newHTTPServer(&cfg.Server, router, infra.Logger),
		shutdownTimeout: cfg.ShutdownTimeoutDuration(),
	}, nil
}

// Run starts the subsystems and the listener, then blocks until ctx is
// done and the lifecycle has drained. Startup hook failures are logged and
// leave /readyz reporting not ready; they do not stop the listener.
func (s *Server) Run(ctx context.Context) error {
	log := s.infra.Logger
	lc := s.infra.Lifecycle

	if err := s.infra.Start(); err != nil {
		return fmt.Errorf("start infrastructure: %w", err)
	}
	if err := s.http.Start(lc); err != nil {
		return err
	}

	go func() {
		if err := lc.WaitForStartup(); err != nil {
			log.Error("startup failed", "error", err)
			return
		}
		log.Info("all subsystems ready", "status", lc.Status())
	}()

	<-ctx.Done()
	log.Info("shutdown requested", "cause", context.Cause(ctx))

	if err := lc.Shutdown(s.shutdownTimeout); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("folio stopped")
	return nil
}
