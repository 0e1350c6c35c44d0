package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"

	"studymate-backend/internal/models"
)

const (
	DefaultQuizQuestions = 5
	MaxQuizQuestions     = 20
	quizOptionCount      = 4
)

// QuizGenerator turns study material into multiple-choice questions.
type QuizGenerator interface {
	GenerateQuiz(ctx context.Context, material string, numQuestions int) ([]models.QuizQuestion, error)
}

func (PlaceholderTutor) GenerateQuiz(ctx context.Context, material string, numQuestions int) ([]models.QuizQuestion, error) {
	return nil, ErrQuizGenerationDisabled
}

// GenerateQuiz asks the model for numQuestions questions grounded in
// material. Malformed questions are dropped; ErrQuizOutputInvalid is
// returned when none survive.
func (t *GeminiTutor) GenerateQuiz(ctx context.Context, material string, numQuestions int) ([]models.QuizQuestion, error) {
	if err := t.acquireRate(ctx); err != nil {
		return nil, err
	}
	defer t.releaseRate()

	resp, err := t.model.GenerateContent(ctx, genai.Text(buildQuizPrompt(material, numQuestions)))
	if err != nil {
		return nil, fmt.Errorf("Gemini API error: %w", err)
	}

	questions := validateQuizQuestions(parseQuizQuestions(extractText(resp)))
	if len(questions) == 0 {
		return nil, ErrQuizOutputInvalid
	}
	if len(questions) > numQuestions {
		questions = questions[:numQuestions]
	}
	return questions, nil
}

func buildQuizPrompt(material string, numQuestions int) string {
	var b strings.Builder

	b.WriteString("You are an expert educational assessor. Generate quiz questions from the study material below.\n\n")
	b.WriteString("CRITICAL: Return ONLY a valid JSON array. No preamble, no markdown, no backticks.\n\n")
	b.WriteString(fmt.Sprintf("Generate exactly %d multiple choice questions.\n", numQuestions))
	b.WriteString(fmt.Sprintf("Each question must have exactly %d options.\n", quizOptionCount))

	b.WriteString(`
JSON schema per question:
{"question": "string", "options": ["string"], "correct_index": int, "explanation": "string", "topic": "string"}
`)

	b.WriteString("\n---STUDY MATERIAL---\n")
	b.WriteString(truncateRunes(strings.TrimSpace(material), maxMaterialRunes))
	b.WriteString("\n---END---\n")

	return b.String()
}

// parseQuizQuestions reads the model's reply, tolerating code fences and
// prose around the JSON array.
func parseQuizQuestions(raw string) []models.QuizQuestion {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	raw = strings.TrimSpace(raw)

	var questions []models.QuizQuestion
	if err := json.Unmarshal([]byte(raw), &questions); err == nil {
		return questions
	}

	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start < 0 || end <= start {
		return nil
	}
	questions = nil
	if err := json.Unmarshal([]byte(raw[start:end+1]), &questions); err != nil {
		return nil
	}
	return questions
}

func validateQuizQuestions(questions []models.QuizQuestion) []models.QuizQuestion {
	valid := []models.QuizQuestion{}
	for _, q := range questions {
		q.Question = strings.TrimSpace(q.Question)
		if q.Question == "" || len(q.Options) < 2 {
			continue
		}
		if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
			q.CorrectIndex = 0
		}
		q.Answer = q.Options[q.CorrectIndex]
		valid = append(valid, q)
	}
	return valid
}
