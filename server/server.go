package server

import (
	"net/http"

	"github.com/jonwraymond/odoogate/broker"
	"github.com/jonwraymond/odoogate/health"
	"github.com/jonwraymond/odoogate/observe"
	"github.com/jonwraymond/odoogate/token"
)

// Config holds the server's collaborators. Broker and Codec are required.
type Config struct {
	Broker *broker.Broker
	Codec  *token.Codec

	// Registry defaults to DefaultRegistry(Broker).
	Registry *Registry

	// Health is optional; without it the probe routes answer liveness only.
	Health *health.Aggregator

	// Logger defaults to a discarding logger.
	Logger observe.Logger

	// ServiceName and Version label the descriptor endpoint.
	ServiceName string
	Version     string
}

func (c Config) withDefaults() Config {
	if c.Registry == nil {
		c.Registry = DefaultRegistry(c.Broker)
	}
	if c.Logger == nil {
		c.Logger = observe.NopLogger()
	}
	if c.ServiceName == "" {
		c.ServiceName = "odoogate"
	}
	if c.Version == "" {
		c.Version = "dev"
	}
	return c
}

// Server is the gateway's HTTP surface.
//
// Contract:
//   - Concurrency: safe for concurrent use; all state is read-only after New.
//   - Ownership: the server borrows its collaborators; Close them elsewhere.
type Server struct {
	broker   *broker.Broker
	codec    *token.Codec
	registry *Registry
	logger   observe.Logger
	service  string
	version  string
	handler  http.Handler
}

// New validates the configuration, wires the routes and returns a ready
// server.
func New(cfg Config) (*Server, error) {
	if cfg.Broker == nil {
		return nil, ErrNilBroker
	}
	if cfg.Codec == nil {
		return nil, ErrNilCodec
	}
	cfg = cfg.withDefaults()

	s := &Server{
		broker:   cfg.Broker,
		codec:    cfg.Codec,
		registry: cfg.Registry,
		logger:   cfg.Logger,
		service:  cfg.ServiceName,
		version:  cfg.Version,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /", s.handleRoot)
	mux.HandleFunc("POST /auth/generate", s.handleGenerate)
	mux.HandleFunc("POST /auth/validate", s.handleValidate)
	mux.HandleFunc("GET /tools/list", s.handleToolsList)
	mux.HandleFunc("POST /tools/call", s.handleToolsCall)

	if cfg.Health != nil {
		mux.HandleFunc("GET /health", health.DetailedHandler(cfg.Health, cfg.ServiceName))
		mux.HandleFunc("GET /healthz", health.LivenessHandler())
		mux.HandleFunc("GET /readyz", health.ReadinessHandler(cfg.Health))
	} else {
		mux.HandleFunc("GET /health", health.LivenessHandler())
		mux.HandleFunc("GET /healthz", health.LivenessHandler())
		mux.HandleFunc("GET /readyz", health.LivenessHandler())
	}

	s.handler = withRequestID(withRecovery(s.logger, withAccessLog(s.logger, mux)))
	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}
