// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/tactile/internal/domain/gesture"
	"github.com/okian/tactile/internal/domain/haptic"
	"github.com/okian/tactile/internal/domain/model"
	"github.com/okian/tactile/internal/domain/motion"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	SampleSubmitter
	MappingRegistry
	EngineController
	FiringSource
}

// SampleSubmitter queues samples for recognition.
type SampleSubmitter interface {
	// Submit queues one sample or reports why it was rejected.
	Submit(ctx context.Context, s motion.Sample) error
}

// MappingRegistry lists and registers gesture mappings.
type MappingRegistry interface {
	// AddMapping appends a mapping and returns the index it was given.
	AddMapping(ctx context.Context, g gesture.Spec, e haptic.Effect) (int, error)
	Mappings(ctx context.Context) []model.Mapping
}

// EngineController starts and stops recognition.
type EngineController interface {
	StartEngine(ctx context.Context) error
	StopEngine(ctx context.Context)
	EngineStatus(ctx context.Context) string
}

// FiringSource exposes recent dispatches.
type FiringSource interface {
	RecentFirings(ctx context.Context, n int) []model.Firing
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	samplesHandler  *SamplesHandler
	mappingsHandler *MappingsHandler
	engineHandler   *EngineHandler
	firingsHandler  *FiringsHandler
	haptics         http.Handler
}

// ServerOption applies a configuration option to the Server.
type ServerOption func(*Server)

// WithHapticsHandler mounts h at /haptics/ws.
func WithHapticsHandler(h http.Handler) ServerOption {
	return func(s *Server) { s.haptics = h }
}

// WithMaxBatch caps the number of samples accepted by one POST /samples.
func WithMaxBatch(n int) ServerOption {
	return func(s *Server) {
		if n > 0 {
			s.samplesHandler.maxBatch = n
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...ServerOption) *Server {
	s := &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		samplesHandler:  NewSamplesHandler(deps),
		mappingsHandler: NewMappingsHandler(deps),
		engineHandler:   NewEngineHandler(deps),
		firingsHandler:  NewFiringsHandler(deps),
	}

	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/samples", MetricsMiddleware(s.samplesHandler.HandlePostSamples, "samples"))
	mux.HandleFunc("/mappings", MetricsMiddleware(s.mappingsHandler.HandleMappings, "mappings"))
	mux.HandleFunc("/engine", MetricsMiddleware(s.engineHandler.HandleGetEngine, "engine"))
	mux.HandleFunc("/engine/start", MetricsMiddleware(s.engineHandler.HandleStart, "engine_start"))
	mux.HandleFunc("/engine/stop", MetricsMiddleware(s.engineHandler.HandleStop, "engine_stop"))
	mux.HandleFunc("/firings", MetricsMiddleware(s.firingsHandler.HandleGetFirings, "firings"))

	if s.haptics != nil {
		mux.Handle("/haptics/ws", s.haptics)
	}
}

type ackResponse struct {
	Status   string `json:"status"`
	Accepted int    `json:"accepted"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
