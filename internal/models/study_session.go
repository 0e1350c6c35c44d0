package models

import (
	"time"
)

type StudySession struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	Subject         string    `json:"subject"`
	DurationMinutes int       `json:"duration_minutes"`
	Date            time.Time `json:"date"`
	Notes           *string   `json:"notes"`
}

// CreateStudySessionRequest uses pointers so absent fields can be told apart
// from zero values.
type CreateStudySessionRequest struct {
	Subject         *string    `json:"subject"`
	DurationMinutes *int       `json:"duration_minutes"`
	Date            *Timestamp `json:"date"`
	Notes           *string    `json:"notes"`
}
