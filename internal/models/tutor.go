package models

import "time"

type TutorAskRequest struct {
	Question string `json:"question"`
}

type TutorAnswer struct {
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Timestamp time.Time `json:"timestamp"`
}
