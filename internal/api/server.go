// Package api provides the HealthSync HTTP server: thin REST
// controllers over the tracking engines, plus health and metrics
// endpoints.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/healthsync-app/healthsync/internal/app/adherence"
	"github.com/healthsync-app/healthsync/internal/app/analytics"
	"github.com/healthsync-app/healthsync/internal/app/score"
	"github.com/healthsync-app/healthsync/internal/app/streak"
	"github.com/healthsync-app/healthsync/internal/app/tracker"
	"github.com/healthsync-app/healthsync/internal/app/xp"
	"github.com/healthsync-app/healthsync/internal/domain"
	"github.com/healthsync-app/healthsync/internal/infra/metrics"
	"github.com/healthsync-app/healthsync/internal/infra/sqlite"
)

// Server is the HealthSync HTTP API server.
type Server struct {
	db             *sqlite.DB
	streaks        *streak.Service
	engine         *xp.Engine
	adherence      *adherence.Calculator
	tracker        *tracker.Service
	scores         *score.Calculator
	analytics      *analytics.Service
	log            *zap.Logger
	metricsEnabled bool
}

// NewServer creates an API server over the given services.
func NewServer(db *sqlite.DB, streaks *streak.Service, engine *xp.Engine, adh *adherence.Calculator, trk *tracker.Service, scores *score.Calculator, ana *analytics.Service, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		db:        db,
		streaks:   streaks,
		engine:    engine,
		adherence: adh,
		tracker:   trk,
		scores:    scores,
		analytics: ana,
		log:       log,
	}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(s.observe)
	r.Use(corsMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := s.db.Ping(); err != nil {
			writeError(w, http.StatusServiceUnavailable, "store unavailable")
			return
		}
		writeOK(w, http.StatusOK, map[string]any{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/users", s.handleCreateUser)
		r.Get("/users/{id}", s.handleGetUser)

		r.Post("/users/{id}/streak", s.handleUpdateStreak)
		r.Delete("/users/{id}/streak", s.handleResetStreak)
		r.Get("/streak/milestone", s.handleMilestone)

		r.Get("/users/{id}/adherence", s.handleAdherence)
		r.Get("/users/{id}/score", s.handleHealthScore)

		r.Post("/users/{id}/xp", s.handleAwardXP)
		r.Get("/xp/progress", s.handleXPProgress)
		r.Get("/users/{id}/xp/breakdown", s.handleXPBreakdown)

		r.Post("/medications", s.handleAddMedication)
		r.Get("/users/{id}/medications", s.handleListMedications)
		r.Post("/medications/{id}/taken", s.handleMarkTaken)
		r.Delete("/medications/{id}/taken", s.handleUnmarkTaken)
		r.Delete("/medications/{id}", s.handleDeleteMedication)

		r.Post("/symptoms", s.handleLogSymptom)
		r.Get("/users/{id}/symptoms", s.handleListSymptoms)
		r.Delete("/symptoms/{id}", s.handleDeleteSymptom)

		r.Get("/doctors/{id}/overview", s.handleDoctorOverview)
	})

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

// observe records request duration and count per route and status, and
// logs each request.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = r.URL.Path
		}
		status := strconv.Itoa(ww.Status())
		metrics.HTTPDuration.WithLabelValues(route, status).Observe(time.Since(start).Seconds())

		s.log.Debug("http request",
			zap.String("method", r.Method),
			zap.String("route", route),
			zap.Int("status", ww.Status()),
			zap.Duration("took", time.Since(start)),
		)
	})
}

// corsMiddleware adds CORS headers for local development.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ─── Response envelope ───────────────────────────────────────────────────────

// writeOK writes a success envelope with the payload fields merged in.
func writeOK(w http.ResponseWriter, status int, fields map[string]any) {
	body := map[string]any{"ok": true}
	for k, v := range fields {
		body[k] = v
	}
	writeJSON(w, status, body)
}

// writeError writes a failure envelope.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"ok": false, "error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// respondError maps domain sentinels to status codes.
func (s *Server) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrMedicationNotFound),
		errors.Is(err, domain.ErrSymptomNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrNotPatient),
		errors.Is(err, domain.ErrNotDoctor):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.log.Error("request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
