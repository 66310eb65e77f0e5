package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/chartscrub/chartscrub/internal/events"
	"github.com/chartscrub/chartscrub/internal/logger"
	"github.com/chartscrub/chartscrub/internal/redact"
)

const version = "0.1.0"

// Config contains HTTP server configuration
type Config struct {
	Port         int           `yaml:"port" mapstructure:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" mapstructure:"idle_timeout"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
}

// DefaultConfig returns the reference server configuration
func DefaultConfig() *Config {
	return &Config{
		Port:         8080,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		MaxBodyBytes: 10 << 20,
	}
}

// Server exposes the redaction and analysis API
type Server struct {
	config    *Config
	logger    *logger.Logger
	scrubber  *redact.Engine
	router    *mux.Router
	server    *http.Server
	hub       *events.Hub
	startTime time.Time
}

// New creates a new API server instance
func New(cfg *Config, scrubber *redact.Engine, hub *events.Hub, log *logger.Logger) (*Server, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if scrubber == nil {
		return nil, fmt.Errorf("server: scrubber is required")
	}

	router := mux.NewRouter()

	server := &Server{
		config:    cfg,
		logger:    log.WithComponent("server"),
		scrubber:  scrubber,
		router:    router,
		hub:       hub,
		startTime: time.Now(),
	}

	server.setupRoutes()

	server.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      server.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return server, nil
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
	s.router.HandleFunc("/info", s.handleInfo).Methods("GET")

	// WebSocket endpoint for the processing-event stream
	s.router.HandleFunc("/ws", s.handleWebSocket).Methods("GET")

	api := s.router.PathPrefix("/v1").Subrouter()
	api.Use(s.loggingMiddleware)
	api.HandleFunc("/scrub", s.handleScrub).Methods("POST")
	api.HandleFunc("/fingerprint", s.handleFingerprint).Methods("POST")
	api.HandleFunc("/analyze", s.handleAnalyze).Methods("POST")
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("Starting API server",
		zap.Int("port", s.config.Port))

	if s.hub != nil {
		go s.hub.Run()
	}

	return s.server.ListenAndServe()
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping API server")
	return s.server.Shutdown(ctx)
}

// Router returns the configured router, mainly for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"healthy","timestamp":"%s"}`, time.Now().Format(time.RFC3339))
}

// handleInfo handles info requests
func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"name":"chartscrub","version":"%s","uptime":"%s"}`,
		version, time.Since(s.startTime).Round(time.Second))
}

// handleWebSocket hands the connection to the event hub
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		http.Error(w, "event stream disabled", http.StatusNotFound)
		return
	}
	s.hub.HandleWebSocket(w, r)
}
