package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"trafficgrid/internal/control"
	"trafficgrid/internal/infrastructure/config"
	"trafficgrid/internal/infrastructure/logging"
	"trafficgrid/internal/journal"
	"trafficgrid/internal/probe"
	"trafficgrid/internal/snapshot"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config       config.APIConfig
	WS           config.WebSocketConfig
	Sim          config.SimulationConfig
	Logger       *logging.Logger
	Orchestrator *control.Orchestrator
	Snapshot     *snapshot.Reader
	Prober       *probe.Prober
	Journal      journal.Repository // nil disables the journal endpoint
	Version      string
}

// Server is the HTTP API server for trafficgrid.
//
// It manages the HTTP listener, routes, middleware, and WebSocket hub.
// The server is created with New() and started with Start().
type Server struct {
	cfg          config.APIConfig
	wsCfg        config.WebSocketConfig
	simCfg       config.SimulationConfig
	logger       *logging.Logger
	orchestrator *control.Orchestrator
	snapshot     *snapshot.Reader
	prober       *probe.Prober
	journal      journal.Repository
	version      string
	server       *http.Server
	hub          *Hub
	cancel       context.CancelFunc // cancels background goroutines on Close()
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
//
// Parameters:
//   - deps: Required dependencies (config, logger, orchestrator, snapshot, prober)
//
// Returns:
//   - *Server: Configured server ready to start
//   - error: If required dependencies are missing
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Orchestrator == nil {
		return nil, fmt.Errorf("orchestrator is required")
	}
	if deps.Snapshot == nil {
		return nil, fmt.Errorf("snapshot reader is required")
	}
	if deps.Prober == nil {
		return nil, fmt.Errorf("prober is required")
	}

	return &Server{
		cfg:          deps.Config,
		wsCfg:        deps.WS,
		simCfg:       deps.Sim,
		logger:       deps.Logger,
		orchestrator: deps.Orchestrator,
		snapshot:     deps.Snapshot,
		prober:       deps.Prober,
		journal:      deps.Journal,
		version:      deps.Version,
	}, nil
}

// Start begins listening for HTTP connections.
//
// It sets up the router, starts the WebSocket hub and the snapshot poll
// loop, and launches the HTTP listener in a background goroutine. The
// server can be stopped with Close().
//
// Parameters:
//   - ctx: Context for cancellation (not used for listener lifetime)
//
// Returns:
//   - error: If the server fails to start (port in use, etc.)
func (s *Server) Start(ctx context.Context) error {
	// Internal context so Close() can stop background goroutines
	// independently of the parent context.
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)

	s.hub = NewHub(s.wsCfg, s.logger)
	go s.hub.Run(srvCtx)
	go s.pollSnapshotLoop(srvCtx)

	router := s.buildRouter()

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           router,
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		err := s.server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	s.logger.Info("API server started", "address", s.server.Addr)
	return nil
}

// pollSnapshotLoop re-reads the status snapshot on the configured interval
// and broadcasts it to WebSocket clients subscribed to "snapshot.tick".
func (s *Server) pollSnapshotLoop(ctx context.Context) {
	ticker := time.NewTicker(s.simCfg.PollInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if s.hub.ClientCount() == 0 {
				continue
			}
			s.hub.Broadcast(ChannelSnapshotTick, s.buildStatusPayload(ctx))
		}
	}
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
//
// Returns:
//   - error: If shutdown encounters an error
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	// Cancel background goroutines (hub, snapshot poll loop)
	if s.cancel != nil {
		s.cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running and responsive.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//
// Returns:
//   - error: nil if healthy, error describing the issue otherwise
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}

	return nil
}
