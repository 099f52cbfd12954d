package api

import (
	"context"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/containerd/log"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/roach88/sieve/internal/engine"
	"github.com/roach88/sieve/internal/store"
)

// RequestIDHeader carries the request ID on every response.
const RequestIDHeader = "X-Request-Id"

// scopeColumn is the storage column every list is restricted by.
const scopeColumn = "scope"

// Server handles HTTP requests against a store.
type Server struct {
	store  *store.Store
	engine *engine.Engine[store.Entry]
	ids    RequestIDGenerator
	router *mux.Router
}

// Option configures a Server.
type Option func(*Server)

// WithRequestIDs replaces the default UUIDv7 request ID generator.
func WithRequestIDs(g RequestIDGenerator) Option {
	return func(s *Server) {
		s.ids = g
	}
}

// New creates a Server. eng decides the default order and compiles clauses;
// st runs them.
func New(st *store.Store, eng *engine.Engine[store.Entry], opts ...Option) *Server {
	s := &Server{
		store:  st,
		engine: eng,
		ids:    UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(s)
	}

	r := mux.NewRouter()
	r.Use(s.instrument)
	r.HandleFunc("/scopes/{scope}/entries", s.listEntries).Methods(http.MethodGet).Name("entries")
	r.HandleFunc("/healthz", s.healthz).Methods(http.MethodGet).Name("healthz")
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet).Name("metrics")
	s.router = r

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() {
		log.G(ctx).WithField("addr", addr).Info("http server listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		log.G(ctx).Info("http server shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

// listEntries answers GET /scopes/{scope}/entries.
func (s *Server) listEntries(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	scope := mux.Vars(r)["scope"]

	opts, err := engine.OptionsFromValues(r.URL.Query())
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	sel, err := s.engine.Plan(store.Table, opts)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	sel = engine.Scoped(sel, scopeColumn, scope)

	entries, err := s.store.List(ctx, sel)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	total, err := s.store.Count(ctx, sel)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	base := requestURL(r)
	for i := range entries {
		entries[i].URI = base + "/" + strconv.FormatInt(entries[i].ID, 10)
	}

	log.G(ctx).WithFields(log.Fields{
		"scope":    scope,
		"returned": len(entries),
		"total":    total,
	}).Debug("entries listed")

	w.Header().Set("X-Total-Count", strconv.FormatInt(total, 10))
	writeJSON(ctx, w, http.StatusOK, entries)
}

// requestURL returns the absolute URL of r without its query string.
func requestURL(r *http.Request) string {
	u := url.URL{Scheme: "http", Host: r.Host, Path: r.URL.Path}
	if r.TLS != nil {
		u.Scheme = "https"
	}
	return u.String()
}

// healthz answers GET /healthz.
func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := s.store.Ping(ctx); err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// instrument assigns a request ID, attaches a request-scoped logger and
// records metrics for every routed request.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := s.ids.Generate()
		w.Header().Set(RequestIDHeader, id)

		route := "unknown"
		if cur := mux.CurrentRoute(r); cur != nil && cur.GetName() != "" {
			route = cur.GetName()
		}

		ctx := log.WithLogger(r.Context(), log.G(r.Context()).WithFields(log.Fields{
			"request_id": id,
			"method":     r.Method,
			"path":       r.URL.Path,
		}))

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(ctx))

		elapsed := time.Since(start)
		requestsTotal.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
		requestDuration.WithLabelValues(route).Observe(elapsed.Seconds())

		log.G(ctx).WithFields(log.Fields{
			"status":   rec.status,
			"duration": elapsed,
		}).Info("request handled")
	})
}
