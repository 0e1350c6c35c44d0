package handlers

import (
	"context"
	"net/http"

	"github.com/charmbracelet/log"

	"studymate-backend/internal/middleware"
	"studymate-backend/internal/models"
)

type dashboardService interface {
	Stats(ctx context.Context, user *models.User) (*models.DashboardStats, error)
	RecentScore(ctx context.Context, userID string) (*models.RecentScore, error)
}

type DashboardHandler struct {
	dashboard dashboardService
	logger    *log.Logger
}

func NewDashboardHandler(dashboard dashboardService, logger *log.Logger) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, logger: logger}
}

func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.dashboard.Stats(r.Context(), middleware.CurrentUser(r.Context()))
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

func (h *DashboardHandler) RecentScore(w http.ResponseWriter, r *http.Request) {
	score, err := h.dashboard.RecentScore(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, score)
}
