package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"

	"studymate-backend/internal/middleware"
	"studymate-backend/internal/models"
	"studymate-backend/internal/services"
)

type reminderRepository interface {
	Create(ctx context.Context, rem *models.Reminder) error
	ListByUser(ctx context.Context, userID string) ([]models.Reminder, error)
	Complete(ctx context.Context, id, userID string) (*models.Reminder, error)
	Delete(ctx context.Context, id, userID string) error
}

type ReminderHandler struct {
	repo       reminderRepository
	activities activityRecorder
	logger     *log.Logger
}

func NewReminderHandler(repo reminderRepository, activities activityRecorder, logger *log.Logger) *ReminderHandler {
	return &ReminderHandler{repo: repo, activities: activities, logger: logger}
}

var errReminderNotFound = services.NewNotFoundError("Reminder not found")

func (h *ReminderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateReminderRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	fields := make(map[string]string)
	if req.Title == nil || strings.TrimSpace(*req.Title) == "" {
		fields["title"] = "Title is required"
	}
	if req.ScheduledTime == nil {
		fields["scheduled_time"] = "Scheduled time is required"
	} else if !req.ScheduledTime.Valid() {
		fields["scheduled_time"] = "Scheduled time must be an ISO-8601 date or date-time"
	}
	if len(fields) > 0 {
		handleServiceError(w, r, h.logger, services.NewValidationError(fields))
		return
	}

	userID := middleware.GetUserID(r.Context())
	reminder := &models.Reminder{
		UserID:        userID,
		Title:         *req.Title,
		Description:   req.Description,
		ScheduledTime: req.ScheduledTime.Time,
	}

	if err := h.repo.Create(r.Context(), reminder); err != nil {
		handleServiceError(w, r, h.logger, fmt.Errorf("failed to create reminder: %w", err))
		return
	}

	h.activities.Record(r.Context(), userID, models.ActivityReminderSet, "Set reminder: "+reminder.Title)

	writeJSON(w, http.StatusCreated, reminder)
}

func (h *ReminderHandler) List(w http.ResponseWriter, r *http.Request) {
	reminders, err := h.repo.ListByUser(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		handleServiceError(w, r, h.logger, fmt.Errorf("failed to list reminders: %w", err))
		return
	}
	if reminders == nil {
		reminders = []models.Reminder{}
	}

	writeJSON(w, http.StatusOK, reminders)
}

func (h *ReminderHandler) Complete(w http.ResponseWriter, r *http.Request) {
	reminder, err := h.repo.Complete(r.Context(), chi.URLParam(r, "id"), middleware.GetUserID(r.Context()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = errReminderNotFound
		}
		handleServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, reminder)
}

func (h *ReminderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.Delete(r.Context(), chi.URLParam(r, "id"), middleware.GetUserID(r.Context())); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = errReminderNotFound
		}
		handleServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, models.MessageResponse{Message: "Reminder deleted"})
}
