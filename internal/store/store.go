package store

import (
	"context"
	"errors"

	"chatrelay-backend/internal/models"
)

// ErrNotFound is returned when a specific record is not found.
var ErrNotFound = errors.New("record not found")

// ErrUnavailable is returned by every operation of an absent store (persistence
// not configured or unreachable at startup). Callers treat it as a best-effort
// no-op, never as a request failure.
var ErrUnavailable = errors.New("store unavailable")

// Sentinels for genuine failures of a present store. The postgres
// implementation maps driver error codes onto these so callers never inspect
// PostgreSQL codes or error strings.
var (
	ErrDuplicate  = errors.New("duplicate entry")
	ErrForeignKey = errors.New("foreign key constraint violation")
	ErrConnection = errors.New("database connection failed")
)

// Store is the persistence boundary for chat sessions and messages.
type Store interface {
	// EnsureSession inserts a session row for sessionID if none exists.
	// Creation is idempotent: a duplicate insert is a no-op, not an error.
	EnsureSession(ctx context.Context, sessionID, userID string) (*models.Session, error)

	// AppendMessage inserts an immutable message row and returns the stored
	// record with its assigned id and timestamp.
	AppendMessage(ctx context.Context, sessionID, role, content string) (*models.Message, error)

	// ListMessagesBySession returns the session's transcript in temporal
	// order, ties broken by insertion order. An unknown session yields an
	// empty slice, not an error.
	ListMessagesBySession(ctx context.Context, sessionID string) ([]models.Message, error)
}
