package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"blog-platform/internal/api"
	"blog-platform/internal/authors"
	"blog-platform/internal/config"
	"blog-platform/internal/database"
	"blog-platform/internal/engine"
	"blog-platform/internal/middleware"
	"blog-platform/internal/utils"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// Server holds all server dependencies, including the actor engine and the store
type Server struct {
	Engine         *engine.Engine
	Store          database.Store
	Tokens         *middleware.TokenManager
	Authors        *authors.Resolver
	Metrics        *utils.MetricsCollector
	Logger         *slog.Logger
	RequestTimeout time.Duration
	UploadsDir     string
	MetricsEnabled bool
	CORS           *middleware.CORSConfig
}

// NewServer creates a new Server instance with the given components
func NewServer(
	cfg *config.Config,
	eng *engine.Engine,
	store database.Store,
	metrics *utils.MetricsCollector,
	logger *slog.Logger,
) *Server {
	return &Server{
		Engine:         eng,
		Store:          store,
		Tokens:         middleware.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		Authors:        authors.NewResolver(store),
		Metrics:        metrics,
		Logger:         logger,
		RequestTimeout: cfg.Server.RequestTimeout,
		UploadsDir:     cfg.Server.UploadsDir,
		MetricsEnabled: cfg.Server.MetricsEnabled,
		CORS:           middleware.DefaultCORSConfig(cfg.AllowedOrigins),
	}
}

func (s *Server) requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), s.RequestTimeout)
}

// respondError writes err in the error envelope. Server-side failures are
// logged with their detail; the client only sees a generic message.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := api.WriteError(w, err)
	if status >= http.StatusInternalServerError {
		s.Logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.RequestIDFromContext(r.Context()),
			"error", err,
		)
	}
}

// decodeJSON reads a single JSON object from the request body.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return utils.NewValidationError("Request body is required")
		}
		return utils.NewAppError(utils.ErrInvalidInput, "Invalid request body", err)
	}
	return nil
}

// pathID parses the {id} route variable. A malformed id cannot name any
// stored record, so it is reported as not found.
func pathID(r *http.Request, resource string) (uuid.UUID, error) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		return uuid.Nil, utils.NewNotFoundError(resource)
	}
	return id, nil
}
