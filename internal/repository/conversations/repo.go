// Package conversations persists chat sessions, conversations and
// messages in SQLite.
package conversations

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/spurshop/storefront/internal/domain"
)

// Repo is a SQLite-backed conversation store.
type Repo struct {
	db *sql.DB
}

// New opens the conversation database and initializes its schema.
func New(dataSourceName string) (*Repo, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("open conversations db: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping conversations db: %w", err)
	}

	r := &Repo{db: db}
	if err := r.initSchema(); err != nil {
		return nil, fmt.Errorf("init conversations schema: %w", err)
	}
	return r, nil
}

// NewWithDB wraps an existing handle, sharing it with other repositories.
func NewWithDB(db *sql.DB) (*Repo, error) {
	r := &Repo{db: db}
	if err := r.initSchema(); err != nil {
		return nil, fmt.Errorf("init conversations schema: %w", err)
	}
	return r, nil
}

// Close releases the database handle.
func (r *Repo) Close() error {
	return r.db.Close()
}

func (r *Repo) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS sessions (
        id TEXT PRIMARY KEY,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );

    CREATE TABLE IF NOT EXISTS conversations (
        id TEXT PRIMARY KEY,
        session_id TEXT NOT NULL,
        title TEXT,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
        updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
        FOREIGN KEY (session_id) REFERENCES sessions (id)
    );

    CREATE TABLE IF NOT EXISTS messages (
        id TEXT PRIMARY KEY,
        conversation_id TEXT NOT NULL,
        sender TEXT NOT NULL CHECK (sender IN ('user', 'assistant')),
        content TEXT NOT NULL,
        data TEXT,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
        FOREIGN KEY (conversation_id) REFERENCES conversations (id)
    );

    CREATE INDEX IF NOT EXISTS idx_messages_conversation ON messages (conversation_id, created_at);
    `
	_, err := r.db.Exec(schema)
	return err
}

// EnsureSession returns the session with the given ID, creating it when
// the ID is empty or unknown.
func (r *Repo) EnsureSession(ctx context.Context, id string) (domain.Session, error) {
	if id != "" {
		var s domain.Session
		err := r.db.QueryRowContext(ctx,
			"SELECT id, created_at FROM sessions WHERE id = ?", id,
		).Scan(&s.ID, &s.CreatedAt)
		if err == nil {
			return s, nil
		}
		if err != sql.ErrNoRows {
			return domain.Session{}, fmt.Errorf("get session: %w", err)
		}
	}

	s := domain.Session{ID: uuid.NewString(), CreatedAt: time.Now().UTC()}
	if _, err := r.db.ExecContext(ctx,
		"INSERT INTO sessions (id, created_at) VALUES (?, ?)", s.ID, s.CreatedAt,
	); err != nil {
		return domain.Session{}, fmt.Errorf("create session: %w", err)
	}
	return s, nil
}

// CreateConversation starts a new conversation in a session.
func (r *Repo) CreateConversation(ctx context.Context, sessionID, title string) (domain.Conversation, error) {
	now := time.Now().UTC()
	c := domain.Conversation{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := r.db.ExecContext(ctx,
		"INSERT INTO conversations (id, session_id, title, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		c.ID, c.SessionID, c.Title, c.CreatedAt, c.UpdatedAt,
	); err != nil {
		return domain.Conversation{}, fmt.Errorf("create conversation: %w", err)
	}
	return c, nil
}

// GetConversation fetches a conversation scoped to its session.
func (r *Repo) GetConversation(ctx context.Context, id, sessionID string) (domain.Conversation, error) {
	var c domain.Conversation
	var title sql.NullString
	err := r.db.QueryRowContext(ctx,
		"SELECT id, session_id, title, created_at, updated_at FROM conversations WHERE id = ? AND session_id = ?",
		id, sessionID,
	).Scan(&c.ID, &c.SessionID, &title, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.Conversation{}, domain.ErrConversationNotFound
		}
		return domain.Conversation{}, fmt.Errorf("get conversation: %w", err)
	}
	c.Title = title.String
	return c, nil
}

// ListConversations returns a session's conversations, most recent first.
func (r *Repo) ListConversations(ctx context.Context, sessionID string) ([]domain.Conversation, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, session_id, title, created_at, updated_at FROM conversations WHERE session_id = ? ORDER BY updated_at DESC",
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	var out []domain.Conversation
	for rows.Next() {
		var c domain.Conversation
		var title sql.NullString
		if err := rows.Scan(&c.ID, &c.SessionID, &title, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan conversation row: %w", err)
		}
		c.Title = title.String
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate conversations: %w", err)
	}
	return out, nil
}

// AppendMessage stores a message and bumps the conversation's updated_at.
func (r *Repo) AppendMessage(ctx context.Context, msg domain.Message) (domain.Message, error) {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}

	var data sql.NullString
	if msg.Data != nil {
		blob, err := json.Marshal(msg.Data)
		if err != nil {
			return domain.Message{}, fmt.Errorf("marshal message data: %w", err)
		}
		data = sql.NullString{String: string(blob), Valid: true}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Message{}, fmt.Errorf("begin message tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO messages (id, conversation_id, sender, content, data, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		msg.ID, msg.ConversationID, msg.Sender, msg.Content, data, msg.CreatedAt,
	); err != nil {
		return domain.Message{}, fmt.Errorf("insert message: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE conversations SET updated_at = ? WHERE id = ?",
		msg.CreatedAt, msg.ConversationID,
	); err != nil {
		return domain.Message{}, fmt.Errorf("touch conversation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return domain.Message{}, fmt.Errorf("commit message tx: %w", err)
	}
	return msg, nil
}

// ListMessages returns a conversation's messages in chronological order,
// capped at limit.
func (r *Repo) ListMessages(ctx context.Context, conversationID string, limit int) ([]domain.Message, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, conversation_id, sender, content, data, created_at FROM messages WHERE conversation_id = ? ORDER BY created_at ASC, rowid ASC LIMIT ?",
		conversationID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var out []domain.Message
	for rows.Next() {
		var msg domain.Message
		var data sql.NullString
		if err := rows.Scan(&msg.ID, &msg.ConversationID, &msg.Sender, &msg.Content, &data, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message row: %w", err)
		}
		if data.Valid && data.String != "" {
			var env domain.Envelope
			if err := json.Unmarshal([]byte(data.String), &env); err == nil {
				msg.Data = &env
			}
		}
		out = append(out, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}
	return out, nil
}
