// Package server exposes toolkit actions as JSON over HTTP.
//
// Each action is invoked with POST /actions/{name} and the raw payload as
// the request body. /healthz reports collection state and /metrics serves
// the Prometheus registry.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sort"
	"strconv"
	"time"

	gojson "github.com/goccy/go-json"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/unifai-network/unifai-toolkits/internal/collection"
	"github.com/unifai-network/unifai-toolkits/internal/metrics"
	"github.com/unifai-network/unifai-toolkits/internal/query"
)

// ErrBadPayload marks a request body that could not be decoded.
var ErrBadPayload = errors.New("bad payload")

const maxBodyBytes = 1 << 20

// Action handles one decoded invocation. The returned value is encoded as
// the JSON response body.
type Action func(ctx context.Context, payload []byte) (any, error)

type Options struct {
	Addr string
	// RateLimit is requests per second across all actions. 0 disables.
	RateLimit float64
	Burst     int
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
	// Collections are reported by /healthz.
	Collections []*collection.Collection
}

type Server struct {
	opts    Options
	logger  *slog.Logger
	actions map[string]Action
	limiter *rate.Limiter
	mux     *http.ServeMux
	http    *http.Server
}

func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	s := &Server{
		opts:    opts,
		logger:  opts.Logger.With("component", "server"),
		actions: make(map[string]Action),
		mux:     http.NewServeMux(),
	}
	if opts.RateLimit > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = int(opts.RateLimit) + 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	s.mux.HandleFunc("POST /actions/{name}", s.handleAction)
	s.mux.HandleFunc("GET /actions", s.handleList)
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	if opts.Metrics != nil {
		s.mux.Handle("GET /metrics", opts.Metrics.Handler())
	}

	s.http = &http.Server{
		Addr:              opts.Addr,
		Handler:           s.withRequestID(s.mux),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Register adds an action under name, replacing any previous one.
func (s *Server) Register(name string, a Action) {
	s.actions[name] = a
}

// Actions returns the registered action names, sorted.
func (s *Server) Actions() []string {
	names := make([]string, 0, len(s.actions))
	for name := range s.actions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Run serves on ln until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("action server listening", "addr", ln.Addr().String(), "actions", s.Actions())
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		s.logger.Info("context canceled, shutting down")
	case serveErr = <-errCh:
	}

	// The parent context is already done here.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	shutdownErr := s.http.Shutdown(shutdownCtx)
	if serveErr != nil {
		return serveErr
	}
	return shutdownErr
}

// ListenAndRun listens on the configured address and calls Run.
func (s *Server) ListenAndRun(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.opts.Addr, err)
	}
	return s.Run(ctx, ln)
}

type requestIDKey struct{}

// RequestID returns the id assigned to the request carrying ctx.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	logger := s.logger.With("action", name, "request_id", RequestID(r.Context()))

	action, ok := s.actions[name]
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown action %q", name))
		return
	}

	start := time.Now()
	code := http.StatusOK
	defer func() {
		if m := s.opts.Metrics; m != nil {
			m.ActionsTotal.WithLabelValues(name, strconv.Itoa(code)).Inc()
			m.ActionDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
		}
	}()

	if s.limiter != nil && !s.limiter.Allow() {
		code = http.StatusTooManyRequests
		writeError(w, code, "rate limit exceeded")
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		code = http.StatusBadRequest
		writeError(w, code, "reading body: "+err.Error())
		return
	}

	result, err := action(r.Context(), body)
	if err != nil {
		code = statusFor(err)
		if code == http.StatusBadRequest {
			if m := s.opts.Metrics; m != nil {
				m.QueryRejections.WithLabelValues(name).Inc()
			}
			logger.Debug("action rejected", "err", err)
		} else {
			logger.Warn("action failed", "status", code, "err", err)
		}
		writeError(w, code, err.Error())
		return
	}

	logger.Debug("action served", "duration", time.Since(start))
	writeJSON(w, code, result)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"actions": s.Actions()})
}

type collectionHealth struct {
	State     string     `json:"state"`
	Records   int        `json:"records"`
	FetchedAt *time.Time `json:"fetchedAt,omitempty"`
	LastError string     `json:"lastError,omitempty"`
}

// handleHealth is always 200 while the process is up; an empty or stale
// collection is reported, not failed, since the next read refreshes it.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	out := make(map[string]collectionHealth, len(s.opts.Collections))
	for _, c := range s.opts.Collections {
		snap := c.Snapshot()
		h := collectionHealth{State: snap.State.String(), Records: len(snap.Records)}
		if !snap.FetchedAt.IsZero() {
			at := snap.FetchedAt
			h.FetchedAt = &at
		}
		if snap.LastErr != nil {
			h.LastError = snap.LastErr.Error()
		}
		out[snap.Name] = h
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "collections": out})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, query.ErrInvalidSpec), errors.Is(err, ErrBadPayload):
		return http.StatusBadRequest
	case errors.Is(err, collection.ErrUpstream):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	data, err := gojson.Marshal(v)
	if err != nil {
		code = http.StatusInternalServerError
		data = []byte(`{"error":"encoding response"}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(data)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
