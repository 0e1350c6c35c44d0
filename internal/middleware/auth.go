package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"studymate-backend/internal/models"
	"studymate-backend/internal/services"
)

type contextKey string

const userKey contextKey = "user"

// SessionCookieName is the cookie login sets and logout clears.
const SessionCookieName = "session_token"

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

type SessionAuth struct {
	auth   Authenticator
	logger *log.Logger
}

func NewSessionAuth(auth Authenticator, logger *log.Logger) *SessionAuth {
	return &SessionAuth{auth: auth, logger: logger}
}

// Middleware resolves the session token to a user and attaches it to the
// request context. Store failures are reported as internal errors, not 401.
func (a *SessionAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := a.auth.Authenticate(r.Context(), SessionToken(r))
		if err != nil {
			if svcErr, ok := services.AsError(err); ok && svcErr.Kind == services.KindUnauthorized {
				writeError(w, http.StatusUnauthorized, string(svcErr.Kind), svcErr.Message, r)
				return
			}
			a.logger.Error("session lookup failed", "path", r.URL.Path, "err", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", r)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}

// SessionToken returns the session cookie value, falling back to an
// "Authorization: Bearer" header. Empty when neither is present.
func SessionToken(r *http.Request) string {
	if c, err := r.Cookie(SessionCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	authHeader := r.Header.Get("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// CurrentUser returns the authenticated user, or nil outside SessionAuth.
func CurrentUser(ctx context.Context) *models.User {
	user, _ := ctx.Value(userKey).(*models.User)
	return user
}

// GetUserID extracts the authenticated user's id from request context
func GetUserID(ctx context.Context) string {
	if user := CurrentUser(ctx); user != nil {
		return user.ID
	}
	return ""
}

func writeError(w http.ResponseWriter, status int, code, message string, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(models.ErrorResponse{
		Error: models.APIError{
			Code:      code,
			Message:   message,
			RequestID: chimiddleware.GetReqID(r.Context()),
		},
	})
}
