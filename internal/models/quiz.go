package models

import (
	"encoding/json"
	"time"
)

// Quiz keeps its questions as an ordered JSON array of free-form records.
// Score and CompletedAt are either both nil or both set.
type Quiz struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	Subject     string          `json:"subject"`
	Questions   json.RawMessage `json:"questions"`
	Score       *float64        `json:"score"`
	CompletedAt *time.Time      `json:"completed_at"`
	CreatedAt   time.Time       `json:"created_at"`
}

type CreateQuizRequest struct {
	Subject   *string           `json:"subject"`
	Questions []json.RawMessage `json:"questions"`
}

type CompleteQuizRequest struct {
	Score *float64 `json:"score"`
}

type RecentScore struct {
	Score       *float64   `json:"score"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// QuizQuestion is the shape of a generated multiple-choice question. Answer
// repeats Options[CorrectIndex] for clients that match on text.
type QuizQuestion struct {
	Question     string   `json:"question"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correct_index"`
	Answer       string   `json:"answer"`
	Explanation  string   `json:"explanation,omitempty"`
	Topic        string   `json:"topic,omitempty"`
}

type GenerateQuizRequest struct {
	Subject      *string `json:"subject"`
	Text         string  `json:"text"`
	NumQuestions *int    `json:"num_questions"`
}
