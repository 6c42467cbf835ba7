package handlers

import (
	"net/http"

	"blog-platform/internal/api"
	"blog-platform/internal/middleware"

	"github.com/gorilla/mux"
)

// NewRouter wires every route and returns the fully wrapped handler.
func (s *Server) NewRouter() http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = s.HandleNotFound()
	r.MethodNotAllowedHandler = s.HandleMethodNotAllowed()
	r.Use(middleware.Metrics(s.Metrics), middleware.Recover(s.Logger))

	requireAuth := s.Tokens.RequireAuth(s.Store, s.Logger)
	optionalAuth := s.Tokens.OptionalAuth(s.Store, s.Logger)
	adminOnly := func(h http.Handler) http.Handler {
		return requireAuth(middleware.RequireAdmin(h))
	}

	r.Handle("/", s.HandleRoot()).Methods(http.MethodGet)
	r.Handle("/api/health", s.HandleHealth()).Methods(http.MethodGet)
	if s.MetricsEnabled {
		r.Handle("/metrics", s.Metrics.Handler()).Methods(http.MethodGet)
	}
	if s.UploadsDir != "" {
		r.PathPrefix("/uploads/").Handler(
			http.StripPrefix("/uploads/", http.FileServer(http.Dir(s.UploadsDir)))).Methods(http.MethodGet, http.MethodHead)
	}

	auth := r.PathPrefix("/api/auth").Subrouter()
	auth.Handle("/register", s.HandleRegister()).Methods(http.MethodPost)
	auth.Handle("/login", s.HandleLogin()).Methods(http.MethodPost)
	auth.Handle("/me", requireAuth(s.HandleMe())).Methods(http.MethodGet)

	posts := r.PathPrefix("/api/posts").Subrouter()
	posts.Handle("", optionalAuth(s.HandleListPosts())).Methods(http.MethodGet)
	posts.Handle("", adminOnly(s.HandleCreatePost())).Methods(http.MethodPost)
	posts.Handle("/{id}", optionalAuth(s.HandleGetPost())).Methods(http.MethodGet)
	posts.Handle("/{id}", adminOnly(s.HandleUpdatePost())).Methods(http.MethodPut)
	posts.Handle("/{id}", adminOnly(s.HandleDeletePost())).Methods(http.MethodDelete)
	posts.Handle("/{id}/like", requireAuth(s.HandleToggleLike())).Methods(http.MethodPost)
	posts.Handle("/{id}/comments", requireAuth(s.HandleCreateComment())).Methods(http.MethodPost)

	r.Handle("/api/comments/post/{id}", optionalAuth(s.HandleGetPostComments())).Methods(http.MethodGet)
	r.Handle("/api/admin/fix-orphaned-comments", adminOnly(s.HandleFixOrphanedComments())).Methods(http.MethodPost)

	var h http.Handler = r
	h = middleware.Logger(s.Logger)(h)
	h = middleware.RequestID(h)
	h = middleware.CORSMiddleware(s.CORS)(h)
	return h
}

func (s *Server) HandleNotFound() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		api.WriteJSON(w, http.StatusNotFound, api.ErrorResponse{Error: "Route not found"})
	}
}

func (s *Server) HandleMethodNotAllowed() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		api.WriteJSON(w, http.StatusMethodNotAllowed, api.ErrorResponse{Error: "Method not allowed"})
	}
}
