package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"studymate-backend/internal/middleware"
	"studymate-backend/internal/models"
	"studymate-backend/internal/services"
)

type studySessionRepository interface {
	Create(ctx context.Context, s *models.StudySession) error
	ListRecent(ctx context.Context, userID string, limit int) ([]models.StudySession, error)
}

// activityRecorder appends an audit row for an action that already succeeded.
type activityRecorder interface {
	Record(ctx context.Context, userID string, activityType models.ActivityType, description string)
}

type StudySessionHandler struct {
	repo       studySessionRepository
	activities activityRecorder
	logger     *log.Logger
	now        func() time.Time
}

func NewStudySessionHandler(repo studySessionRepository, activities activityRecorder, logger *log.Logger) *StudySessionHandler {
	return &StudySessionHandler{
		repo:       repo,
		activities: activities,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (h *StudySessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateStudySessionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	fields := make(map[string]string)
	if req.Subject == nil || strings.TrimSpace(*req.Subject) == "" {
		fields["subject"] = "Subject is required"
	}
	if req.DurationMinutes == nil {
		fields["duration_minutes"] = "Duration is required"
	} else if *req.DurationMinutes < 0 {
		fields["duration_minutes"] = "Duration cannot be negative"
	}
	if req.Date != nil && !req.Date.Valid() {
		fields["date"] = "Date must be an ISO-8601 date or date-time"
	}
	if len(fields) > 0 {
		handleServiceError(w, r, h.logger, services.NewValidationError(fields))
		return
	}

	userID := middleware.GetUserID(r.Context())
	session := &models.StudySession{
		UserID:          userID,
		Subject:         *req.Subject,
		DurationMinutes: *req.DurationMinutes,
		Date:            h.now(),
		Notes:           req.Notes,
	}
	if req.Date != nil {
		session.Date = req.Date.Time
	}

	if err := h.repo.Create(r.Context(), session); err != nil {
		handleServiceError(w, r, h.logger, fmt.Errorf("failed to create study session: %w", err))
		return
	}

	h.activities.Record(r.Context(), userID, models.ActivityStudySession,
		fmt.Sprintf("Studied %s for %d minutes", session.Subject, session.DurationMinutes))

	writeJSON(w, http.StatusCreated, session)
}

func (h *StudySessionHandler) List(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.repo.ListRecent(r.Context(), middleware.GetUserID(r.Context()), listLimit(r))
	if err != nil {
		handleServiceError(w, r, h.logger, fmt.Errorf("failed to list study sessions: %w", err))
		return
	}
	if sessions == nil {
		sessions = []models.StudySession{}
	}

	writeJSON(w, http.StatusOK, sessions)
}
