package models

// WSMessage is the envelope pushed to realtime clients over the
// user_updates:<user_id> channel.
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

const (
	WSTypeActivity    = "activity"
	WSTypeReminderDue = "reminder_due"
)

type APIError struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id"`
}

type ErrorResponse struct {
	Error APIError `json:"error"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
