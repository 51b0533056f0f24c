// Package server exposes the token queue over HTTP for the staff screen.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	prom "github.com/prometheus/client_golang/prometheus"

	"foodhub/internal/api"
	"foodhub/internal/logging"
	"foodhub/internal/metrics"
)

// RequestIDHeader carries the per-request correlation id.
const RequestIDHeader = "X-Request-ID"

// Server is the staff HTTP API.
type Server struct {
	bind     string
	logger   *slog.Logger
	service  *api.Service
	recorder metrics.Recorder

	listener net.Listener
	server   *http.Server
}

// New builds a Server. reg may be nil, in which case /metrics is not served.
func New(bind string, service *api.Service, recorder metrics.Recorder, reg *prom.Registry, logger *slog.Logger) (*Server, error) {
	bind = strings.TrimSpace(bind)
	if bind == "" {
		return nil, errors.New("server bind address is required")
	}
	if service == nil {
		return nil, errors.New("server requires a service")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	srv := &Server{
		bind:     bind,
		logger:   logging.NewComponentLogger(logger, "api-server"),
		service:  service,
		recorder: recorder,
	}

	mux := http.NewServeMux()
	mux.Handle("GET /api/board", srv.route("board", srv.handleBoard))
	mux.Handle("GET /api/stalls", srv.route("stalls", srv.handleStalls))
	mux.Handle("POST /api/stalls/{stall}/tokens", srv.route("issue", srv.handleIssue))
	mux.Handle("POST /api/stalls/{stall}/serve", srv.route("serve", srv.handleServe))
	mux.Handle("POST /api/stalls/{stall}/clear", srv.route("clear", srv.handleClear))
	mux.Handle("GET /api/menu/{stall}", srv.route("menu", srv.handleMenu))
	if reg != nil {
		mux.Handle("GET /metrics", metrics.HTTPHandler(reg))
	}

	srv.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Addr returns the listening address once Start has succeeded.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Start listens on the bind address and serves until ctx is canceled.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

// Stop shuts the server down, waiting briefly for in-flight requests.
func (s *Server) Stop() {
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// route wraps h with request id propagation, access logging, and metrics.
func (s *Server) route(name string, h http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		requestID := strings.TrimSpace(r.Header.Get(RequestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, requestID)
		ctx := logging.WithRequestID(r.Context(), requestID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		h(rec, r.WithContext(ctx))

		elapsed := time.Since(started)
		s.recorder.ObserveHTTPRequest(name, rec.status, elapsed)
		logging.WithContext(ctx, s.logger).Debug("api request",
			logging.String("method", r.Method),
			logging.String("path", r.URL.Path),
			logging.Int("status", rec.status),
			logging.Duration("elapsed", elapsed),
		)
	})
}

func (s *Server) handleBoard(w http.ResponseWriter, r *http.Request) {
	board, err := s.service.Board(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, board)
}

func (s *Server) handleStalls(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, api.Stalls())
}

func (s *Server) handleIssue(w http.ResponseWriter, r *http.Request) {
	resp, err := s.service.Issue(r.Context(), r.PathValue("stall"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleServe(w http.ResponseWriter, r *http.Request) {
	view, err := s.service.Serve(r.Context(), r.PathValue("stall"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.StallResponse{Stall: view})
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	view, err := s.service.Clear(r.Context(), r.PathValue("stall"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.StallResponse{Stall: view})
}

func (s *Server) handleMenu(w http.ResponseWriter, r *http.Request) {
	card, err := s.service.Menu(r.PathValue("stall"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, card)
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, api.ErrUnknownStall) {
		s.writeError(w, http.StatusNotFound, api.ErrUnknownStall.Error())
		return
	}
	logging.WithContext(r.Context(), s.logger).Error("api request failed",
		logging.String("path", r.URL.Path),
		logging.Error(err),
	)
	s.writeError(w, http.StatusInternalServerError, "internal error")
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
