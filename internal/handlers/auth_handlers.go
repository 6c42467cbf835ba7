package handlers

import (
	"net/http"
	"time"

	"blog-platform/internal/api"
	"blog-platform/internal/middleware"
	"blog-platform/internal/models"
	"blog-platform/internal/utils"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const invalidCredentials = "Invalid credentials"

// HandleRegister creates a user account and returns a token for it.
func (s *Server) HandleRegister() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req api.RegisterRequest
		if err := decodeJSON(w, r, &req); err != nil {
			s.respondError(w, r, err)
			return
		}
		req.Normalize()
		if err := api.Validate(&req); err != nil {
			s.respondError(w, r, err)
			return
		}

		ctx, cancel := s.requestContext(r)
		defer cancel()

		exists, err := s.Store.UserExists(ctx, req.Username, req.Email)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		if exists {
			s.respondError(w, r, utils.NewAppError(utils.ErrUserAlreadyExists, "User already exists", nil))
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			s.respondError(w, r, err)
			return
		}

		user := &models.User{
			ID:             uuid.New(),
			Username:       req.Username,
			Email:          req.Email,
			HashedPassword: string(hash),
			Role:           models.RoleUser,
			CreatedAt:      time.Now().UTC(),
		}
		// A concurrent registration can still win the race; the unique index reports it.
		if err := s.Store.CreateUser(ctx, user); err != nil {
			s.respondError(w, r, err)
			return
		}

		token, err := s.Tokens.GenerateToken(user.ID)
		if err != nil {
			s.respondError(w, r, err)
			return
		}

		s.Logger.Info("user registered", "user_id", user.ID, "username", user.Username)
		api.WriteJSON(w, http.StatusCreated, api.AuthResponse{
			Success: true,
			Token:   token,
			User:    api.NewUserResponse(user),
		})
	}
}

// HandleLogin accepts a username or an email together with the password.
func (s *Server) HandleLogin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req api.LoginRequest
		if err := decodeJSON(w, r, &req); err != nil {
			s.respondError(w, r, err)
			return
		}
		if err := api.Validate(&req); err != nil {
			s.respondError(w, r, err)
			return
		}

		ctx, cancel := s.requestContext(r)
		defer cancel()

		user, err := s.Store.GetUserByLogin(ctx, req.Login())
		if utils.IsNotFound(err) {
			s.respondError(w, r, utils.NewAppError(utils.ErrInvalidCredentials, invalidCredentials, nil))
			return
		}
		if err != nil {
			s.respondError(w, r, err)
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(req.Password)); err != nil {
			s.respondError(w, r, utils.NewAppError(utils.ErrInvalidCredentials, invalidCredentials, nil))
			return
		}

		token, err := s.Tokens.GenerateToken(user.ID)
		if err != nil {
			s.respondError(w, r, err)
			return
		}

		api.WriteJSON(w, http.StatusOK, api.AuthResponse{
			Success: true,
			Message: "Login successful",
			Token:   token,
			User:    api.NewUserResponse(user),
		})
	}
}

// HandleMe returns the authenticated user without credentials.
func (s *Server) HandleMe() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := middleware.UserFromContext(r.Context())
		if !ok {
			s.respondError(w, r, utils.NewUnauthorizedError("Not authorized"))
			return
		}
		api.WriteJSON(w, http.StatusOK, api.NewUserResponse(user))
	}
}
