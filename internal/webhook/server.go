package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mattjoyce/slashgw/internal/dispatch"
	"github.com/mattjoyce/slashgw/internal/events"
	"github.com/mattjoyce/slashgw/internal/interaction"
	"github.com/mattjoyce/slashgw/internal/signature"
)

// Server represents the interactions HTTP server.
type Server struct {
	config     Config
	dispatcher Dispatcher
	logger     *slog.Logger
	server     *http.Server
	startedAt  time.Time

	events      *events.Hub
	metricsPath string
	metrics     http.Handler
}

// Option configures optional routes.
type Option func(*Server)

// WithEvents serves recent dispatches from hub on GET /events.
func WithEvents(hub *events.Hub) Option {
	return func(s *Server) { s.events = hub }
}

// WithMetrics serves h on GET path.
func WithMetrics(path string, h http.Handler) Option {
	return func(s *Server) {
		s.metricsPath = path
		s.metrics = h
	}
}

// New creates a new interactions server instance.
func New(config Config, dispatcher Dispatcher, logger *slog.Logger, opts ...Option) *Server {
	// Apply defaults
	if config.MaxBodySize <= 0 {
		config.MaxBodySize = DefaultMaxBodySize
	}
	if config.Path == "" {
		config.Path = DefaultPath
	}
	if config.ReadTimeout <= 0 {
		config.ReadTimeout = DefaultTimeout
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = DefaultTimeout
	}

	s := &Server{
		config:     config,
		dispatcher: dispatcher,
		logger:     logger,
		startedAt:  time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start starts the HTTP server (blocking).
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:         s.config.Listen,
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("interactions server starting", "listen", s.config.Listen, "path", s.config.Path)

	// Run server in goroutine
	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Wait for context cancellation or server error
	select {
	case <-ctx.Done():
		s.logger.Info("interactions server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("interactions server shutdown failed: %w", err)
		}
		return ctx.Err()
	case err := <-errCh:
		return fmt.Errorf("interactions server error: %w", err)
	}
}

// Handler returns the configured router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)

	r.Post(s.config.Path, s.handleInteraction)
	r.Get("/healthz", s.handleHealthz)
	if s.events != nil {
		r.Get("/events", s.handleEvents)
	}
	if s.metrics != nil {
		r.Method(http.MethodGet, s.metricsPath, s.metrics)
	}

	return r
}

// loggingMiddleware logs HTTP requests (excludes sensitive payloads).
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		// Log request (no body content for security)
		s.logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
			"remote_addr", r.RemoteAddr,
		)
	})
}

// handleInteraction reads the raw body, normalizes the signature headers and
// hands both to the dispatcher untouched.
func (s *Server) handleInteraction(w http.ResponseWriter, r *http.Request) {
	// Enforce body size limit; read one extra byte to detect overflow.
	limit := s.config.MaxBodySize
	if limit < math.MaxInt64 {
		limit++
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, limit))
	if err != nil {
		s.logger.Warn("failed to read interaction body", "error", err)
		s.respondJSON(w, http.StatusBadRequest, dispatch.ErrMalformedBody.Response())
		return
	}

	// Check if body exceeded limit
	if int64(len(body)) > s.config.MaxBodySize {
		s.respondJSON(w, http.StatusRequestEntityTooLarge, interaction.ErrorResponse{
			Title:  "Payload Too Large",
			Detail: "Your request's body is too large.",
		})
		return
	}

	req := signature.FromHTTPHeader(body, r.Header, s.config.Headers)
	res := s.dispatcher.Dispatch(r.Context(), req)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(res.Status)
	if err := res.Encode(w); err != nil {
		s.logger.Error("failed to write interaction response", "status", res.Status, "error", err)
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	resp := HealthzResponse{
		Status:        "ok",
		UptimeSeconds: int64(time.Since(s.startedAt).Seconds()),
	}
	if s.events != nil {
		resp.LastDispatchID = s.events.LastID()
	}
	s.respondJSON(w, http.StatusOK, resp)
}

// handleEvents returns buffered dispatches, optionally only those after ?since=<id>.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	var since int64
	if raw := r.URL.Query().Get("since"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || v < 0 {
			s.respondJSON(w, http.StatusBadRequest, interaction.ErrorResponse{
				Title:  "Bad Request",
				Detail: "since must be a non-negative integer.",
			})
			return
		}
		since = v
	}

	s.respondJSON(w, http.StatusOK, EventsResponse{Dispatches: s.events.Since(since)})
}

// respondJSON sends a JSON response.
func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
