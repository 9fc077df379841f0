package models

import (
	"time"
)

// Role values for chat messages. Messages are authored by exactly one of the two.
const (
	RoleUser = "user"
	RoleAI   = "ai"
)

// Session represents a conversation context in the database.
// The session ID is an opaque, client-generated string; a session belongs to
// exactly one user and is created on the first message it receives.
type Session struct {
	SessionID string    `db:"session_id"`
	UserID    string    `db:"user_id"`
	CreatedAt time.Time `db:"created_at"`
}

// Message represents one immutable turn in a session.
// ID and CreatedAt are assigned by the store on insert.
type Message struct {
	ID        int64     `db:"id"`
	SessionID string    `db:"session_id"`
	Role      string    `db:"role"`
	Content   string    `db:"content"`
	CreatedAt time.Time `db:"created_at"`
}
