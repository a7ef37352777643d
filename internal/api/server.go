package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/nerrad567/lockguard-core/internal/actuator"
	"github.com/nerrad567/lockguard-core/internal/audit"
	"github.com/nerrad567/lockguard-core/internal/infrastructure/config"
	"github.com/nerrad567/lockguard-core/internal/infrastructure/logging"
	"github.com/nerrad567/lockguard-core/internal/relay"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// LockController issues manual lock commands. *actuator.Actuator satisfies it.
type LockController interface {
	ManualControl(identity string, action actuator.Action) error
}

// AccessCodeStore rotates access codes. user.Repository satisfies it.
type AccessCodeStore interface {
	UpdateAccessCode(ctx context.Context, identity, code string) error
}

// EventStore reads the device event log. *audit.SQLiteRepository satisfies it.
type EventStore interface {
	ListDay(ctx context.Context, identity string, kind audit.Kind, day string) ([]audit.Event, error)
}

// RelayStatus exposes the session relay to the API. *relay.Relay satisfies it.
type RelayStatus interface {
	State() relay.State
	Subscriptions() int
	Track(identity string) error
}

// HealthChecker is implemented by the database and the MQTT client.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config   config.APIConfig
	WS       config.WebSocketConfig
	Security config.SecurityConfig
	Logger   *logging.Logger

	Lock   LockController
	Codes  AccessCodeStore
	Events EventStore
	Relay  RelayStatus
	DB     HealthChecker
	MQTT   HealthChecker

	// Influx is the optional time-series sink. Leave nil when disabled.
	Influx HealthChecker

	// Hub is shared with the relay as its Observer. Created if nil.
	Hub *Hub

	// Gatherer backs /metrics. Default: prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer

	Version string
}

// Server is the HTTP API server for LockGuard Core.
type Server struct {
	cfg      config.APIConfig
	wsCfg    config.WebSocketConfig
	secCfg   config.SecurityConfig
	logger   *logging.Logger
	lock     LockController
	codes    AccessCodeStore
	events   EventStore
	relay    RelayStatus
	db       HealthChecker
	mqtt     HealthChecker
	influx   HealthChecker
	hub      *Hub
	gatherer prometheus.Gatherer
	version  string
	now      func() time.Time

	server *http.Server
	cancel context.CancelFunc
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
//
// Returns:
//   - *Server: Configured server ready to start
//   - error: If required dependencies are missing
func New(deps Deps) (*Server, error) {
	switch {
	case deps.Logger == nil:
		return nil, errors.New("logger is required")
	case deps.Lock == nil:
		return nil, errors.New("lock controller is required")
	case deps.Codes == nil:
		return nil, errors.New("access code store is required")
	case deps.Events == nil:
		return nil, errors.New("event store is required")
	case deps.Security.JWT.Secret == "":
		return nil, errors.New("jwt secret is required")
	}

	hub := deps.Hub
	if hub == nil {
		hub = NewHub(deps.WS, deps.Logger)
	}
	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	return &Server{
		cfg:      deps.Config,
		wsCfg:    deps.WS,
		secCfg:   deps.Security,
		logger:   deps.Logger,
		lock:     deps.Lock,
		codes:    deps.Codes,
		events:   deps.Events,
		relay:    deps.Relay,
		db:       deps.DB,
		mqtt:     deps.MQTT,
		influx:   deps.Influx,
		hub:      hub,
		gatherer: gatherer,
		version:  deps.Version,
		now:      time.Now,
	}, nil
}

// Hub returns the WebSocket hub, for wiring as the relay's Observer.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Start begins listening for HTTP connections in a background goroutine.
// The server can be stopped with Close().
func (s *Server) Start(ctx context.Context) error {
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)

	go s.hub.Run(srvCtx)

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		s.logger.Info("API server starting", "address", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the API server, waiting up to 10 seconds for
// in-flight requests.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

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
