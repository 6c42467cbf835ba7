package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"blog-platform/internal/api"
	"blog-platform/internal/models"
	"blog-platform/internal/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const tokenIssuer = "blog-platform-api"

// Claims represents the JWT claims for our application
type Claims struct {
	UserID string `json:"id"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies HS256 bearer tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl}
}

// GenerateToken creates a new JWT token for the given user ID
func (tm *TokenManager) GenerateToken(userID uuid.UUID) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(tm.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
			Subject:   userID.String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(tm.secret)
}

// ValidateToken verifies signature, algorithm and expiry, and returns the user id the token names.
func (tm *TokenManager) ValidateToken(tokenString string) (uuid.UUID, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&Claims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return tm.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return uuid.Nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return uuid.Nil, errors.New("invalid token")
	}
	return uuid.Parse(claims.UserID)
}

// UserLoader is the slice of the user store the auth gates need.
type UserLoader interface {
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
}

func bearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", utils.NewUnauthorizedError("Not authorized, no token")
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", utils.NewUnauthorizedError("Invalid authorization format")
	}
	return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer ")), nil
}

// authenticate resolves the request's bearer token to a stored user.
func (tm *TokenManager) authenticate(r *http.Request, users UserLoader) (*models.User, error) {
	tokenString, err := bearerToken(r)
	if err != nil {
		return nil, err
	}
	userID, err := tm.ValidateToken(tokenString)
	if err != nil {
		return nil, utils.NewAppError(utils.ErrInvalidToken, "Not authorized, token failed", err)
	}
	user, err := users.GetUser(r.Context(), userID)
	if utils.IsNotFound(err) {
		return nil, utils.NewAppError(utils.ErrUnauthorized, "Not authorized, user no longer exists", err)
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// RequireAuth rejects requests without a valid token naming an existing user.
func (tm *TokenManager) RequireAuth(users UserLoader, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := tm.authenticate(r, users)
			if err != nil {
				if !utils.IsAuthError(err) {
					logger.Error("failed to load user for token", "error", err, "request_id", RequestIDFromContext(r.Context()))
				}
				api.WriteError(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// OptionalAuth attaches the user when a valid token is present and otherwise
// lets the request through anonymously.
func (tm *TokenManager) OptionalAuth(users UserLoader, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") == "" {
				next.ServeHTTP(w, r)
				return
			}
			user, err := tm.authenticate(r, users)
			if err != nil {
				logger.Debug("ignoring unusable token on public route", "error", err)
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// RequireAdmin must run after RequireAuth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok {
			api.WriteError(w, utils.NewUnauthorizedError("Not authorized"))
			return
		}
		if !user.IsAdmin() {
			api.WriteError(w, utils.NewForbiddenError(
				fmt.Sprintf("User role %s is not authorized to access this route", user.Role)))
			return
		}
		next.ServeHTTP(w, r)
	})
}

type contextKey string

const (
	userKey      contextKey = "user"
	requestIDKey contextKey = "request_id"
)

func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFromContext returns the authenticated user, if any.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userKey).(*models.User)
	return user, ok && user != nil
}
