package postgres

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"

	"chatrelay-backend/internal/models"
	"chatrelay-backend/internal/store"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Compile-time check to ensure PostgresStore implements store.Store
var _ store.Store = (*PostgresStore)(nil)

type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// schemaStatements bootstrap the chat tables. Messages belong to exactly one
// session and are removed with it (ON DELETE CASCADE); the indexes back the
// ordered history read path.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS chat_sessions (
		session_id VARCHAR(255) PRIMARY KEY,
		user_id VARCHAR(255) NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS chat_messages (
		id BIGSERIAL PRIMARY KEY,
		session_id VARCHAR(255) NOT NULL,
		role VARCHAR(10) NOT NULL CHECK (role IN ('user', 'ai')),
		content TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (session_id) REFERENCES chat_sessions(session_id) ON DELETE CASCADE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_chat_messages_session_id
		ON chat_messages(session_id)`,
	`CREATE INDEX IF NOT EXISTS idx_chat_messages_created_at
		ON chat_messages(created_at)`,
}

// InitSchema creates the chat tables and indexes if they do not exist yet.
func (s *PostgresStore) InitSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("database error initializing schema: %w", classifyError(err))
		}
	}
	log.Println("[PostgresStore] Database tables initialized.")
	return nil
}

const ensureSession = `
	INSERT INTO chat_sessions (session_id, user_id)
	VALUES ($1, $2)
	ON CONFLICT (session_id) DO NOTHING;
`

const getSession = `
	SELECT session_id, user_id, created_at
	FROM chat_sessions
	WHERE session_id = $1;
`

// EnsureSession inserts a session row for sessionID if none exists.
// A conflicting insert is swallowed and the existing row is returned, so
// calling this on every message of a session is safe.
func (s *PostgresStore) EnsureSession(ctx context.Context, sessionID, userID string) (*models.Session, error) {
	if _, err := s.db.Exec(ctx, ensureSession, sessionID, userID); err != nil {
		log.Printf("ERROR [PostgresStore] EnsureSession: insert failed for session %s: %v", sessionID, err)
		return nil, fmt.Errorf("database error ensuring session: %w", classifyError(err))
	}

	sess := &models.Session{}
	err := s.db.QueryRow(ctx, getSession, sessionID).Scan(
		&sess.SessionID,
		&sess.UserID,
		&sess.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("database error fetching session: %w", classifyError(err))
	}

	return sess, nil
}

const appendMessage = `
	INSERT INTO chat_messages (session_id, role, content)
	VALUES ($1, $2, $3)
	RETURNING id, session_id, role, content, created_at;
`

// AppendMessage inserts an immutable message row and returns the stored record.
func (s *PostgresStore) AppendMessage(ctx context.Context, sessionID, role, content string) (*models.Message, error) {
	msg := &models.Message{}
	err := s.db.QueryRow(ctx, appendMessage, sessionID, role, content).Scan(
		&msg.ID,
		&msg.SessionID,
		&msg.Role,
		&msg.Content,
		&msg.CreatedAt,
	)
	if err != nil {
		log.Printf("ERROR [PostgresStore] AppendMessage: insert failed for session %s (role %s): %v", sessionID, role, err)
		return nil, fmt.Errorf("database error appending message: %w", classifyError(err))
	}

	return msg, nil
}

const listMessagesBySession = `
	SELECT id, session_id, role, content, created_at
	FROM chat_messages
	WHERE session_id = $1
	ORDER BY created_at ASC, id ASC;
`

// ListMessagesBySession returns the session's messages in temporal order,
// ties broken by insertion id.
func (s *PostgresStore) ListMessagesBySession(ctx context.Context, sessionID string) ([]models.Message, error) {
	rows, err := s.db.Query(ctx, listMessagesBySession, sessionID)
	if err != nil {
		return nil, fmt.Errorf("database error querying messages: %w", classifyError(err))
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		var msg models.Message
		if err := rows.Scan(
			&msg.ID,
			&msg.SessionID,
			&msg.Role,
			&msg.Content,
			&msg.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("error scanning message row: %w", err)
		}
		messages = append(messages, msg)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating message rows: %w", classifyError(err))
	}

	return messages, nil
}

// classifyError maps driver-level failures onto the store's sentinel errors so
// callers branch with errors.Is instead of inspecting PostgreSQL error codes.
func classifyError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return store.ErrDuplicate
		case "23503":
			return store.ErrForeignKey
		}
		return err
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return store.ErrConnection
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return store.ErrConnection
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return store.ErrConnection
	}

	return err
}
