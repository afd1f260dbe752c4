package server

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/kasuboski/medialink/pkg/logger"
	"go.uber.org/zap"
)

var errScanRunning = errors.New("a scan is already running")

// Scan starts a reconciliation tick unless one is in flight
func (s Server) Scan() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.poller.Trigger(r.Context()) {
			writeErrorResponse(w, http.StatusConflict, errScanRunning)
			return
		}
		writeResponse(w, http.StatusAccepted, GenericResponse{Response: "scan started"})
	}
}

// RebuildShow deletes and reprocesses every file of a show
func (s Server) RebuildShow() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromCtx(r.Context())

		tmdbID, err := pathInt32(r, "tmdbId")
		if err != nil {
			writeErrorResponse(w, http.StatusBadRequest, err)
			return
		}

		summary, err := s.manager.RebuildTvShow(r.Context(), tmdbID)
		if err != nil {
			log.Errorw("failed to rebuild show", zap.Int32("tmdb_id", tmdbID), zap.Error(err))
			writeErrorResponse(w, http.StatusInternalServerError, errors.New("failed to rebuild show"))
			return
		}

		if err := writeResponse(w, http.StatusOK, GenericResponse{Response: summary}); err != nil {
			log.Errorw("failed to write response", zap.Error(err))
		}
	}
}

type cacheResponse struct {
	Keys        []string `json:"keys,omitempty"`
	Invalidated int      `json:"invalidated"`
}

func (s Server) ListCache() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeResponse(w, http.StatusOK, GenericResponse{Response: cacheResponse{Keys: s.manager.Metadata().Keys()}})
	}
}

// ClearCache drops every cached provider response
func (s Server) ClearCache() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n := s.manager.Metadata().InvalidateAll()
		logger.FromCtx(r.Context()).Infow("metadata cache cleared", zap.Int("entries", n))
		writeResponse(w, http.StatusOK, GenericResponse{Response: cacheResponse{Invalidated: n}})
	}
}

// InvalidateCacheKey drops one cached provider response, e.g. movie:603
func (s Server) InvalidateCacheKey() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := mux.Vars(r)["key"]
		if !s.manager.Metadata().Invalidate(key) {
			writeErrorResponse(w, http.StatusNotFound, errors.New("cache key not found"))
			return
		}
		writeResponse(w, http.StatusOK, GenericResponse{Response: cacheResponse{Invalidated: 1}})
	}
}
