package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"studymate-backend/internal/middleware"
	"studymate-backend/internal/models"
	"studymate-backend/internal/services"
)

const defaultGeneratedSubject = "Generated quiz"

type QuizGenerationHandler struct {
	quizRepo   quizRepository
	generator  services.QuizGenerator
	extractor  materialExtractor
	activities activityRecorder
	logger     *log.Logger
}

func NewQuizGenerationHandler(quizRepo quizRepository, generator services.QuizGenerator, extractor materialExtractor, activities activityRecorder, logger *log.Logger) *QuizGenerationHandler {
	return &QuizGenerationHandler{
		quizRepo:   quizRepo,
		generator:  generator,
		extractor:  extractor,
		activities: activities,
		logger:     logger,
	}
}

// Generate builds a quiz from study material and stores it for the caller.
// Material is either JSON {"text", "num_questions", "subject"} or a
// multipart upload with fields "file", "num_questions" and "subject".
func (h *QuizGenerationHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var (
		material     string
		subject      string
		numQuestions = services.DefaultQuizQuestions
		fields       = make(map[string]string)
	)

	if isMultipart(r) {
		filename, text, ok := readMaterialUpload(w, r, h.extractor, h.logger)
		if !ok {
			return
		}
		material = text
		subject = strings.TrimSpace(r.FormValue("subject"))
		if subject == "" {
			subject = baseName(filename)
		}
		if raw := strings.TrimSpace(r.FormValue("num_questions")); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				fields["num_questions"] = "Number of questions must be an integer"
			}
			numQuestions = n
		}
	} else {
		var req models.GenerateQuizRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		material = strings.TrimSpace(req.Text)
		if material == "" {
			fields["text"] = "Text is required"
		}
		if req.Subject != nil {
			subject = strings.TrimSpace(*req.Subject)
		}
		if req.NumQuestions != nil {
			numQuestions = *req.NumQuestions
		}
	}

	if _, bad := fields["num_questions"]; !bad && (numQuestions < 1 || numQuestions > services.MaxQuizQuestions) {
		fields["num_questions"] = fmt.Sprintf("Number of questions must be between 1 and %d", services.MaxQuizQuestions)
	}
	if len(fields) > 0 {
		handleServiceError(w, r, h.logger, services.NewValidationError(fields))
		return
	}
	if subject == "" {
		subject = defaultGeneratedSubject
	}

	questions, err := h.generator.GenerateQuiz(r.Context(), material, numQuestions)
	if err != nil {
		if _, ok := services.AsError(err); !ok {
			err = fmt.Errorf("quiz generation failed: %w", err)
		}
		handleServiceError(w, r, h.logger, err)
		return
	}

	questionsJSON, err := json.Marshal(questions)
	if err != nil {
		handleServiceError(w, r, h.logger, fmt.Errorf("failed to encode generated questions: %w", err))
		return
	}

	userID := middleware.GetUserID(r.Context())
	quiz := &models.Quiz{
		UserID:    userID,
		Subject:   subject,
		Questions: questionsJSON,
	}
	if err := h.quizRepo.Create(r.Context(), quiz); err != nil {
		handleServiceError(w, r, h.logger, fmt.Errorf("failed to create quiz: %w", err))
		return
	}

	h.activities.Record(r.Context(), userID, models.ActivityQuiz, "Created quiz: "+quiz.Subject)

	writeJSON(w, http.StatusCreated, quiz)
}
