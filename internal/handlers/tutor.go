package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"studymate-backend/internal/middleware"
	"studymate-backend/internal/models"
	"studymate-backend/internal/services"
)

const tutorDescriptionRunes = 50

type TutorHandler struct {
	tutor      services.Tutor
	extractor  materialExtractor
	activities activityRecorder
	logger     *log.Logger
	now        func() time.Time
}

func NewTutorHandler(tutor services.Tutor, extractor materialExtractor, activities activityRecorder, logger *log.Logger) *TutorHandler {
	return &TutorHandler{
		tutor:      tutor,
		extractor:  extractor,
		activities: activities,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (h *TutorHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req models.TutorAskRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	h.answer(w, r, req.Question, "")
}

// AskWithMaterial answers a question grounded in an uploaded PDF, DOCX or
// TXT file sent as multipart form fields "file" and "question".
func (h *TutorHandler) AskWithMaterial(w http.ResponseWriter, r *http.Request) {
	_, material, ok := readMaterialUpload(w, r, h.extractor, h.logger)
	if !ok {
		return
	}

	h.answer(w, r, r.FormValue("question"), material)
}

func (h *TutorHandler) answer(w http.ResponseWriter, r *http.Request, question, material string) {
	question = strings.TrimSpace(question)
	if question == "" {
		handleServiceError(w, r, h.logger, services.NewValidationError(map[string]string{
			"question": "Question is required",
		}))
		return
	}

	reply, err := h.tutor.Answer(r.Context(), question, material)
	if err != nil {
		handleServiceError(w, r, h.logger, fmt.Errorf("tutor failed to answer: %w", err))
		return
	}

	userID := middleware.GetUserID(r.Context())
	h.activities.Record(r.Context(), userID, models.ActivityTutorAsk, tutorDescription(question))

	writeJSON(w, http.StatusOK, models.TutorAnswer{
		Question:  question,
		Answer:    reply,
		Timestamp: h.now(),
	})
}

func tutorDescription(question string) string {
	runes := []rune(question)
	if len(runes) > tutorDescriptionRunes {
		runes = runes[:tutorDescriptionRunes]
	}
	return "Asked tutor: " + string(runes) + "..."
}
