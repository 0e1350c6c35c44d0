package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"

	"studymate-backend/internal/middleware"
	"studymate-backend/internal/models"
)

type activityLister interface {
	Recent(ctx context.Context, userID string, limit int) ([]models.ActivityLog, error)
}

type ActivityHandler struct {
	activities activityLister
	logger     *log.Logger
}

func NewActivityHandler(activities activityLister, logger *log.Logger) *ActivityHandler {
	return &ActivityHandler{activities: activities, logger: logger}
}

func (h *ActivityHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.activities.Recent(r.Context(), middleware.GetUserID(r.Context()), listLimit(r))
	if err != nil {
		handleServiceError(w, r, h.logger, fmt.Errorf("failed to list activity: %w", err))
		return
	}
	if entries == nil {
		entries = []models.ActivityLog{}
	}

	writeJSON(w, http.StatusOK, entries)
}
