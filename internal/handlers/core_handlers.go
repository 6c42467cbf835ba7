package handlers

import (
	"context"
	"net/http"
	"time"

	"blog-platform/internal/api"
)

const (
	apiVersion    = "1.0.0"
	healthTimeout = 2 * time.Second
)

func (s *Server) HandleRoot() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		api.WriteJSON(w, http.StatusOK, api.RootResponse{
			Message: "Blog platform API",
			Version: apiVersion,
			Status:  "running",
		})
	}
}

// HandleHealth reports liveness and whether the database answers a ping.
// It always returns 200; the database field carries the connectivity state.
func (s *Server) HandleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		database := "connected"
		if err := s.Store.Ping(ctx); err != nil {
			s.Logger.Warn("database ping failed", "error", err)
			database = "disconnected"
		}

		api.WriteJSON(w, http.StatusOK, api.HealthResponse{
			Status:    "ok",
			Message:   "API is running",
			Timestamp: time.Now().UTC(),
			Database:  database,
			Uptime:    s.Metrics.Uptime().Truncate(time.Second).String(),
		})
	}
}
