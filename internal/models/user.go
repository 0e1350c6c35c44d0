package models

import (
	"time"
)

type User struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	Name            string    `json:"name"`
	Picture         *string   `json:"picture"`
	CreatedAt       time.Time `json:"created_at"`
	StreakDays      int       `json:"streak_days"`
	TotalStudyHours float64   `json:"total_study_hours"`
}

// LoginRequest carries a session token and the identity asserted by the
// upstream identity provider. The payload is trusted as-is: no signature or
// credential check happens in this service.
type LoginRequest struct {
	SessionToken string        `json:"session_token"`
	UserData     LoginUserData `json:"user_data"`
}

type LoginUserData struct {
	ID      string  `json:"id"`
	Email   string  `json:"email"`
	Name    string  `json:"name"`
	Picture *string `json:"picture"`
}

type LoginResponse struct {
	Message string `json:"message"`
	User    *User  `json:"user"`
}
