package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"chatrelay-backend/internal/config"
	"chatrelay-backend/internal/models"
	"chatrelay-backend/internal/store"
)

// maxMessageLength caps user-authored message content, in characters.
const maxMessageLength = 5000

// Responder produces an AI reply for a user message within a session.
type Responder interface {
	Relay(ctx context.Context, sessionID, userID, message string) (string, error)
}

// ChatService orchestrates the relay: validate the request, ensure the
// session, persist the user turn, call the responder, persist the AI turn.
// Persistence is best-effort throughout; an unavailable store never fails a
// request, only a present-but-broken one does.
type ChatService struct {
	store     store.Store
	responder Responder
	errorMode string
}

// NewChatService creates a new ChatService.
func NewChatService(st store.Store, responder Responder, cfg *config.Config) *ChatService {
	return &ChatService{
		store:     st,
		responder: responder,
		errorMode: cfg.ErrorMode,
	}
}

// validateSendMessage checks the request fields and collects every failure.
// The message is measured after trimming.
func validateSendMessage(req models.SendMessageRequest) models.ValidationErrors {
	var errs models.ValidationErrors

	if req.SessionID == "" {
		errs = append(errs, models.FieldError{Field: "sessionId", Message: "Session ID is required"})
	}
	if req.UserID == "" {
		errs = append(errs, models.FieldError{Field: "userId", Message: "User ID is required"})
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		errs = append(errs, models.FieldError{Field: "message", Message: "Message is required"})
	} else if utf8.RuneCountInString(message) > maxMessageLength {
		errs = append(errs, models.FieldError{Field: "message", Message: "Message must be between 1 and 5000 characters"})
	}

	return errs
}

// SendMessage relays one user message and returns the AI reply.
//
// The session-ensure and the two message writes are sequential within the
// request; that ordering (user write, responder call, AI write) is the only
// cross-operation guarantee the transcript relies on.
func (s *ChatService) SendMessage(ctx context.Context, req models.SendMessageRequest) (*models.SendMessageResponse, error) {
	if errs := validateSendMessage(req); len(errs) > 0 {
		return nil, errs
	}
	message := strings.TrimSpace(req.Message)

	log.Printf("[ChatService] Received chat message - Session: %s, User: %s", req.SessionID, req.UserID)

	if _, err := s.store.EnsureSession(ctx, req.SessionID, req.UserID); err != nil {
		if !errors.Is(err, store.ErrUnavailable) {
			return nil, fmt.Errorf("failed to ensure session: %w", err)
		}
		log.Printf("WARN [ChatService] Store unavailable - skipping session save for %s", req.SessionID)
	}

	if _, err := s.store.AppendMessage(ctx, req.SessionID, models.RoleUser, message); err != nil {
		if !errors.Is(err, store.ErrUnavailable) {
			return nil, fmt.Errorf("failed to persist user message: %w", err)
		}
		log.Printf("WARN [ChatService] Store unavailable - skipping user message save for %s", req.SessionID)
	}

	reply, err := s.responder.Relay(ctx, req.SessionID, req.UserID, message)
	if err != nil {
		log.Printf("ERROR [ChatService] Responder failed for session %s: %v", req.SessionID, err)
		if s.errorMode == config.ErrorModeInlineMessage {
			// Hand the diagnostic back as an AI-role error bubble instead of
			// failing the request. The failed turn is not persisted.
			return &models.SendMessageResponse{
				Success:   true,
				Reply:     err.Error(),
				Error:     true,
				Timestamp: time.Now().UTC(),
			}, nil
		}
		return nil, err
	}

	if _, err := s.store.AppendMessage(ctx, req.SessionID, models.RoleAI, reply); err != nil {
		if !errors.Is(err, store.ErrUnavailable) {
			return nil, fmt.Errorf("failed to persist ai message: %w", err)
		}
		log.Printf("WARN [ChatService] Store unavailable - skipping ai message save for %s", req.SessionID)
	}

	return &models.SendMessageResponse{
		Success:   true,
		Reply:     reply,
		Timestamp: time.Now().UTC(),
	}, nil
}

// GetHistory returns the full ordered transcript for a session. An unknown
// session and an unavailable store both yield an empty transcript.
func (s *ChatService) GetHistory(ctx context.Context, sessionID string) ([]models.ChatHistoryMessage, error) {
	if sessionID == "" {
		return nil, models.ValidationErrors{
			{Field: "sessionId", Message: "Session ID is required"},
		}
	}

	msgs, err := s.store.ListMessagesBySession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, store.ErrUnavailable) {
			log.Printf("WARN [ChatService] Store unavailable - returning empty history for %s", sessionID)
			return []models.ChatHistoryMessage{}, nil
		}
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	formatted := make([]models.ChatHistoryMessage, 0, len(msgs))
	for _, m := range msgs {
		formatted = append(formatted, models.ChatHistoryMessage{
			Role:      m.Role,
			Content:   m.Content,
			Timestamp: m.CreatedAt,
		})
	}
	return formatted, nil
}
