package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"

	"studymate-backend/internal/middleware"
	"studymate-backend/internal/models"
	"studymate-backend/internal/services"
)

type quizRepository interface {
	Create(ctx context.Context, q *models.Quiz) error
	GetForUser(ctx context.Context, id, userID string) (*models.Quiz, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]models.Quiz, error)
	Complete(ctx context.Context, id, userID string, score float64, completedAt time.Time) error
}

type QuizHandler struct {
	quizRepo   quizRepository
	activities activityRecorder
	logger     *log.Logger
	now        func() time.Time
}

func NewQuizHandler(quizRepo quizRepository, activities activityRecorder, logger *log.Logger) *QuizHandler {
	return &QuizHandler{
		quizRepo:   quizRepo,
		activities: activities,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

var errQuizNotFound = services.NewNotFoundError("Quiz not found")

// Create stores a new, not yet completed quiz. Score and completion time are
// never taken from the payload.
func (h *QuizHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateQuizRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.Subject == nil || strings.TrimSpace(*req.Subject) == "" {
		handleServiceError(w, r, h.logger, services.NewValidationError(map[string]string{
			"subject": "Subject is required",
		}))
		return
	}

	questions := req.Questions
	if questions == nil {
		questions = []json.RawMessage{}
	}
	questionsJSON, err := json.Marshal(questions)
	if err != nil {
		handleServiceError(w, r, h.logger, services.NewValidationError(map[string]string{
			"questions": "Questions must be a JSON array",
		}))
		return
	}

	userID := middleware.GetUserID(r.Context())
	quiz := &models.Quiz{
		UserID:    userID,
		Subject:   *req.Subject,
		Questions: questionsJSON,
	}

	if err := h.quizRepo.Create(r.Context(), quiz); err != nil {
		handleServiceError(w, r, h.logger, fmt.Errorf("failed to create quiz: %w", err))
		return
	}

	h.activities.Record(r.Context(), userID, models.ActivityQuiz, "Created quiz: "+quiz.Subject)

	writeJSON(w, http.StatusCreated, quiz)
}

func (h *QuizHandler) List(w http.ResponseWriter, r *http.Request) {
	quizzes, err := h.quizRepo.ListByUser(r.Context(), middleware.GetUserID(r.Context()), listLimit(r))
	if err != nil {
		handleServiceError(w, r, h.logger, fmt.Errorf("failed to list quizzes: %w", err))
		return
	}
	if quizzes == nil {
		quizzes = []models.Quiz{}
	}

	writeJSON(w, http.StatusOK, quizzes)
}

func (h *QuizHandler) Get(w http.ResponseWriter, r *http.Request) {
	quiz, err := h.quizRepo.GetForUser(r.Context(), chi.URLParam(r, "id"), middleware.GetUserID(r.Context()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = errQuizNotFound
		}
		handleServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, quiz)
}

// Complete records a score. Completing an already completed quiz overwrites
// the previous score and completion time.
func (h *QuizHandler) Complete(w http.ResponseWriter, r *http.Request) {
	var req models.CompleteQuizRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Score == nil {
		handleServiceError(w, r, h.logger, services.NewValidationError(map[string]string{
			"score": "Score is required",
		}))
		return
	}

	quizID := chi.URLParam(r, "id")
	userID := middleware.GetUserID(r.Context())

	if err := h.quizRepo.Complete(r.Context(), quizID, userID, *req.Score, h.now()); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = errQuizNotFound
		}
		handleServiceError(w, r, h.logger, err)
		return
	}

	h.activities.Record(r.Context(), userID, models.ActivityQuizCompleted,
		"Completed quiz with score: "+strconv.FormatFloat(*req.Score, 'f', -1, 64)+"%")

	writeJSON(w, http.StatusOK, models.MessageResponse{Message: "Quiz completed successfully"})
}
