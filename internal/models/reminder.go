package models

import "time"

type Reminder struct {
	ID            string     `json:"id"`
	UserID        string     `json:"user_id"`
	Title         string     `json:"title"`
	Description   *string    `json:"description"`
	ScheduledTime time.Time  `json:"scheduled_time"`
	Completed     bool       `json:"completed"`
	NotifiedAt    *time.Time `json:"notified_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

type CreateReminderRequest struct {
	Title         *string    `json:"title"`
	Description   *string    `json:"description"`
	ScheduledTime *Timestamp `json:"scheduled_time"`
}
