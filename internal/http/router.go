package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/hackclub/lazythumbs/internal/metrics"
	"github.com/hackclub/lazythumbs/internal/thumbs"
)

// HealthChecker reports whether a backing dependency is reachable.
type HealthChecker func(ctx context.Context) error

type Server struct {
	urlPrefix      string
	allowedOrigins []string
	logger         zerolog.Logger
	thumbHandler   *thumbs.Handler
	checks         map[string]HealthChecker
}

func NewServer(
	urlPrefix string,
	allowedOrigins []string,
	logger zerolog.Logger,
	thumbHandler *thumbs.Handler,
	checks map[string]HealthChecker,
) *Server {
	return &Server{
		urlPrefix:      strings.Trim(urlPrefix, "/"),
		allowedOrigins: allowedOrigins,
		logger:         logger,
		thumbHandler:   thumbHandler,
		checks:         checks,
	}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.LoggingMiddleware)
	r.Use(MetricsMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// Thumbnails are public and read-only
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.allowedOrigins,
		AllowedMethods: []string{"GET", "HEAD", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "If-None-Match"},
		ExposedHeaders: []string{"ETag", "Content-Length"},
		MaxAge:         300,
	}))

	r.Get("/healthz", s.HealthCheck)
	r.Handle("/metrics", promhttp.Handler())

	pattern := "/" + s.urlPrefix + "/*"
	r.Get(pattern, s.thumbHandler.HandleRender)
	r.Head(pattern, s.thumbHandler.HandleRender)

	return r
}

// Middleware

func (s *Server) LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		// Health probes and scrapes are noise at info
		event := s.logger.Info()
		if r.URL.Path == "/healthz" || r.URL.Path == "/metrics" {
			event = s.logger.Debug()
		}

		event.
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Str("ip", r.RemoteAddr).
			Str("user_agent", r.UserAgent()).
			Msg("request")
	})
}

func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		metrics.HTTPRequestsInFlight.Inc()
		defer metrics.HTTPRequestsInFlight.Dec()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		metrics.HTTPRequestsTotal.WithLabelValues(r.Method, strconv.Itoa(status)).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(r.Method).Observe(time.Since(start).Seconds())
	})
}

// Handlers

func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	body := map[string]string{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	}

	for name, check := range s.checks {
		if err := check(r.Context()); err != nil {
			s.logger.Warn().Err(err).Str("check", name).Msg("health check failed")
			status = http.StatusServiceUnavailable
			body["status"] = "degraded"
			body[name] = err.Error()
			continue
		}
		body[name] = "ok"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
