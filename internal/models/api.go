package models

// API Error response
type APIError struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id"`
}

type ErrorResponse struct {
	Error APIError `json:"error"`
}

// WebSocket message types
const WSTypeAuthState = "auth_state"

type WSMessage struct {
	Type string `json:"type"`
	User *User  `json:"user"`
}
