package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/kasuboski/medialink/pkg/logger"
	"github.com/kasuboski/medialink/pkg/manager"
	"github.com/kasuboski/medialink/pkg/notify"
	"github.com/kasuboski/medialink/pkg/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const shutdownTimeout = 3 * time.Second

type GenericResponse struct {
	Error    string `json:"error,omitempty"`
	Response any    `json:"response"`
}

// Server exposes the engine's admin surface: the ledger, manual resyncs and
// rebuilds, cache invalidation, change events and metrics.
type Server struct {
	baseLogger *zap.SugaredLogger
	manager    *manager.MediaManager
	storage    storage.Storage
	poller     *manager.Poller
	hub        *notify.Hub
	registry   *prometheus.Registry
}

type Option func(*Server)

// WithEvents serves change events from hub over websockets
func WithEvents(hub *notify.Hub) Option {
	return func(s *Server) {
		s.hub = hub
	}
}

func WithRegistry(reg *prometheus.Registry) Option {
	return func(s *Server) {
		s.registry = reg
	}
}

// New creates a new admin server
func New(logger *zap.SugaredLogger, m *manager.MediaManager, store storage.Storage, poller *manager.Poller, opts ...Option) Server {
	s := Server{
		baseLogger: logger,
		manager:    m,
		storage:    store,
		poller:     poller,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

func writeErrorResponse(w http.ResponseWriter, status int, err error) error {
	return writeResponse(w, status, GenericResponse{
		Error: err.Error(),
	})
}

func writeResponse(w http.ResponseWriter, status int, body any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}

	w.Header().Set("content-type", "application/json")
	if status != http.StatusOK {
		w.WriteHeader(status)
	}

	_, err = w.Write(b)
	return err
}

// Router builds the handler for every route
func (s Server) Router() http.Handler {
	rtr := mux.NewRouter()
	rtr.Use(s.LogMiddleware())
	rtr.HandleFunc("/healthz", s.Healthz()).Methods(http.MethodGet)

	if s.registry != nil {
		rtr.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	api := rtr.PathPrefix("/api").Subrouter()

	v1 := api.PathPrefix("/v1").Subrouter()

	v1.HandleFunc("/files", s.ListFiles()).Methods(http.MethodGet)
	v1.HandleFunc("/files/{id:[0-9]+}", s.GetFile()).Methods(http.MethodGet)
	v1.HandleFunc("/files/{id:[0-9]+}/resync", s.ResyncFile()).Methods(http.MethodPost)

	v1.HandleFunc("/scan", s.Scan()).Methods(http.MethodPost)
	v1.HandleFunc("/shows/{tmdbId:[0-9]+}/rebuild", s.RebuildShow()).Methods(http.MethodPost)

	v1.HandleFunc("/cache", s.ListCache()).Methods(http.MethodGet)
	v1.HandleFunc("/cache", s.ClearCache()).Methods(http.MethodDelete)
	v1.HandleFunc("/cache/{key}", s.InvalidateCacheKey()).Methods(http.MethodDelete)

	if s.hub != nil {
		v1.Handle("/events", s.hub).Methods(http.MethodGet)
	}

	return handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodDelete}),
	)(rtr)
}

// Serve starts the http server and blocks until ctx is done
func (s Server) Serve(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		s.baseLogger.Infow("serving...", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
		close(errs)
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

// Healthz is an endpoint that can be used for liveness checks
func (s Server) Healthz() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response := GenericResponse{
			Response: "ok",
		}
		if err := writeResponse(w, http.StatusOK, response); err != nil {
			logger.FromCtx(r.Context()).Errorw("failed to write response", zap.Error(err))
		}
	}
}
