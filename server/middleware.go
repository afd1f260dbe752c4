package server

import (
	"net/http"

	"github.com/felixge/httpsnoop"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/kasuboski/medialink/pkg/logger"
	"go.uber.org/zap"
)

const requestIDHeader = "X-Request-Id"

func (s Server) LogMiddleware() mux.MiddlewareFunc {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(requestIDHeader)
			if id == "" {
				id = uuid.New().String()
			}
			w.Header().Set(requestIDHeader, id)

			log := s.baseLogger.With(zap.String("request_path", r.URL.Path)).With(zap.String("id", id))
			m := httpsnoop.CaptureMetrics(h, w, r.WithContext(logger.WithCtx(r.Context(), log)))

			log.Debugw("request handled",
				zap.String("method", r.Method),
				zap.Int("status", m.Code),
				zap.Duration("duration", m.Duration))
		})
	}
}
