package store

import (
	"context"

	"chatrelay-backend/internal/models"
)

// Compile-time check to ensure NoopStore implements Store
var _ Store = (*NoopStore)(nil)

// NoopStore stands in for the database when persistence is not configured.
// Every operation reports ErrUnavailable, which callers downgrade to a no-op:
// the relay keeps working, it just has no durable history.
type NoopStore struct{}

func NewNoopStore() *NoopStore {
	return &NoopStore{}
}

func (s *NoopStore) EnsureSession(ctx context.Context, sessionID, userID string) (*models.Session, error) {
	return nil, ErrUnavailable
}

func (s *NoopStore) AppendMessage(ctx context.Context, sessionID, role, content string) (*models.Message, error) {
	return nil, ErrUnavailable
}

func (s *NoopStore) ListMessagesBySession(ctx context.Context, sessionID string) ([]models.Message, error) {
	return nil, ErrUnavailable
}
