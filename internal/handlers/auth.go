package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"studymate-backend/internal/middleware"
	"studymate-backend/internal/models"
	"studymate-backend/internal/services"
)

type authService interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.User, error)
	Logout(ctx context.Context, token string) error
}

type AuthHandler struct {
	authService authService
	logger      *log.Logger
}

func NewAuthHandler(authService authService, logger *log.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, logger: logger}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.authService.Login(r.Context(), req)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	http.SetCookie(w, sessionCookie(req.SessionToken, int(services.SessionTTL.Seconds())))
	writeJSON(w, http.StatusOK, models.LoginResponse{Message: "Login successful", User: user})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, middleware.CurrentUser(r.Context()))
}

// Logout only honours the cookie; header-authenticated clients are not
// logged out. It always reports success.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(middleware.SessionCookieName); err == nil && c.Value != "" {
		if err := h.authService.Logout(r.Context(), c.Value); err != nil {
			h.logger.Error("failed to delete session on logout", "err", err)
		}
	}

	http.SetCookie(w, sessionCookie("", -1))
	writeJSON(w, http.StatusOK, models.MessageResponse{Message: "Logout successful"})
}

func sessionCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	}
}

// Shared helpers

const (
	defaultListLimit = 20
	maxListLimit     = 100
	maxJSONBodyBytes = 1 << 20
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResp(code, message string, r *http.Request) models.ErrorResponse {
	return errorRespWithFields(code, message, nil, r)
}

func errorRespWithFields(code, message string, fields map[string]string, r *http.Request) models.ErrorResponse {
	return models.ErrorResponse{
		Error: models.APIError{
			Code:      code,
			Message:   message,
			Fields:    fields,
			RequestID: chimiddleware.GetReqID(r.Context()),
		},
	}
}

// handleServiceError maps the closed set of service error kinds to HTTP
// statuses. Anything else is logged and reported without detail.
func handleServiceError(w http.ResponseWriter, r *http.Request, logger *log.Logger, err error) {
	e, ok := services.AsError(err)
	if !ok {
		logger.Error("request failed", "method", r.Method, "path", r.URL.Path,
			"request_id", chimiddleware.GetReqID(r.Context()), "err", err)
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "An unexpected error occurred", r))
		return
	}

	status := http.StatusInternalServerError
	switch e.Kind {
	case services.KindValidation:
		status = http.StatusBadRequest
	case services.KindUnauthorized:
		status = http.StatusUnauthorized
	case services.KindNotFound:
		status = http.StatusNotFound
	case services.KindRateLimited:
		status = http.StatusTooManyRequests
	case services.KindUnavailable:
		status = http.StatusServiceUnavailable
	case services.KindBadUpstream:
		status = http.StatusBadGateway
	}
	writeJSON(w, status, errorRespWithFields(string(e.Kind), e.Message, e.Fields, r))
}

// decodeJSON reads a bounded JSON body into dst, writing a 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		msg := "Invalid request body"
		if errors.Is(err, io.EOF) {
			msg = "Request body is required"
		}
		writeJSON(w, http.StatusBadRequest, errorResp(string(services.KindValidation), msg, r))
		return false
	}
	return true
}

// listLimit parses the "limit" query parameter, clamped to [1, maxListLimit].
func listLimit(r *http.Request) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultListLimit
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return defaultListLimit
	}
	if n > maxListLimit {
		return maxListLimit
	}
	return n
}
