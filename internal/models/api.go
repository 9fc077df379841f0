package models

import (
	"strings"
	"time"
)

// --- Request Structs ---

// SendMessageRequest defines the expected body for the send endpoint.
type SendMessageRequest struct {
	SessionID string `json:"sessionId"`
	UserID    string `json:"userId"`
	Message   string `json:"message"`
}

// --- Response Structs ---

// SendMessageResponse defines the response body for a relayed message.
// Error is set only in inline-message mode, when Reply carries a responder
// diagnostic instead of an AI reply; the UI renders it as an error bubble.
type SendMessageResponse struct {
	Success   bool      `json:"success"`
	Reply     string    `json:"reply"`
	Timestamp time.Time `json:"timestamp"`
	Error     bool      `json:"error,omitempty"`
}

// ChatHistoryMessage is one transcript entry as returned to clients.
type ChatHistoryMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ChatHistoryResponse defines the response body for the history endpoint.
type ChatHistoryResponse struct {
	Success  bool                 `json:"success"`
	Messages []ChatHistoryMessage `json:"messages"`
}

// HealthResponse defines the response body for the health endpoint.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// DebugConfigResponse reports which configuration values are present.
// It never echoes the values themselves.
type DebugConfigResponse struct {
	HasWebhookURL bool   `json:"hasWebhookUrl"`
	WebhookURL    string `json:"webhookUrl"`
	HasDBHost     bool   `json:"hasDbHost"`
	HasDBUser     bool   `json:"hasDbUser"`
	HasDBPassword bool   `json:"hasDbPassword"`
	HasDBName     bool   `json:"hasDbName"`
	Environment   string `json:"environment"`
}

// ErrorResponse defines the standard structure for API errors.
// Details is populated only in development mode.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// --- Validation ---

// FieldError describes a single invalid request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors aggregates per-field validation failures. It implements
// error so services can return it and handlers can branch on it with errors.As.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, fe := range v {
		msgs = append(msgs, fe.Field+": "+fe.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// ValidationErrorResponse defines the 400 response body listing field errors.
type ValidationErrorResponse struct {
	Success bool         `json:"success"`
	Errors  []FieldError `json:"errors"`
}
