package models

import "time"

type ActivityType string

const (
	ActivityStudySession  ActivityType = "study_session"
	ActivityQuiz          ActivityType = "quiz"
	ActivityQuizCompleted ActivityType = "quiz_completed"
	ActivityReminderSet   ActivityType = "reminder_set"
	ActivityTutorAsk      ActivityType = "tutor_ask"
)

func (t ActivityType) Valid() bool {
	switch t {
	case ActivityStudySession, ActivityQuiz, ActivityQuizCompleted, ActivityReminderSet, ActivityTutorAsk:
		return true
	}
	return false
}

type ActivityLog struct {
	ID           string       `json:"id"`
	UserID       string       `json:"user_id"`
	ActivityType ActivityType `json:"activity_type"`
	Description  string       `json:"description"`
	Timestamp    time.Time    `json:"timestamp"`
}
