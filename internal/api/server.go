package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/fourthdown/gridsim/internal/store"
)

// Server handles HTTP requests around the simulation engine: it owns seed
// lifecycle, persistence of finished games, and replay verification. The
// engine itself stays a pure function.
type Server struct {
	db           store.DB
	logger       zerolog.Logger
	errorHandler *ErrorHandler
	validate     *validator.Validate
	startTime    time.Time
}

// NewServer creates the API server.
func NewServer(db store.DB, logger zerolog.Logger) *Server {
	return &Server{
		db:           db,
		logger:       logger,
		errorHandler: NewErrorHandler(logger),
		validate:     validator.New(),
		startTime:    time.Now(),
	}
}

// Routes builds the router with middleware.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(s.errorHandler.Recovery)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", s.handleHealth)
	r.Get("/health/live", s.handleLiveness)
	r.Get("/health/ready", s.handleReadiness)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/simulate", s.handleSimulate)
		r.Post("/verify", s.handleVerify)
		r.Post("/seed/hash", s.handleSeedHash)
		r.Get("/games", s.handleListGames)
		r.Get("/games/{gameID}", s.handleGetGame)
		r.Get("/games/{gameID}/events", s.handleGetEvents)
		r.Post("/games/{gameID}/reveal", s.handleReveal)
	})

	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("request")
	})
}

// writeJSON writes a JSON response with engine version header.
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Engine-Version", EngineVersion)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		s.errorHandler.Validation(w, r, "body", err.Error())
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		s.errorHandler.Validation(w, r, "body", err.Error())
		return false
	}
	return true
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":         "ok",
		"engine_version": EngineVersion,
		"uptime_seconds": int(time.Since(s.startTime).Seconds()),
	})
}

func (s *Server) handleLiveness(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

func (s *Server) handleReadiness(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "no database"})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
