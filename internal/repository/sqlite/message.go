package sqlite

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ocha-app/ocha/internal/domain"
)

// MessageRepository implements domain.MessageRepository
type MessageRepository struct {
	db *DB
}

// NewMessageRepository creates a new message repository
func NewMessageRepository(db *DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create inserts the message and bumps the parent thread's updated_at in
// one transaction.
func (r *MessageRepository) Create(ctx context.Context, message *domain.Message) error {
	if err := domain.ValidateParts(message.Parts); err != nil {
		return err
	}

	partsJSON, err := json.Marshal(message.Parts)
	if err != nil {
		return domain.Wrap(domain.KindStorage, "failed to marshal parts", err)
	}

	tx, err := r.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return domain.Wrap(domain.KindStorage, "failed to begin transaction", err)
	}
	defer tx.Rollback()

	createdAt := message.CreatedAt.UTC().Format(timeLayout)

	res, err := tx.ExecContext(ctx,
		`UPDATE threads SET updated_at = ? WHERE id = ?`, createdAt, message.ThreadID)
	if err != nil {
		return domain.Wrap(domain.KindStorage, "failed to touch thread", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.E(domain.KindStorage, "thread does not exist")
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO messages (id, thread_id, role, parts, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		message.ID,
		message.ThreadID,
		string(message.Role),
		string(partsJSON),
		createdAt,
	)
	if err != nil {
		return domain.Wrap(domain.KindStorage, "failed to create message", err)
	}

	if err := tx.Commit(); err != nil {
		return domain.Wrap(domain.KindStorage, "failed to commit message", err)
	}
	return nil
}

// ListByThread retrieves all messages of a thread, oldest first.
func (r *MessageRepository) ListByThread(ctx context.Context, threadID string) ([]domain.Message, error) {
	return r.queryMessages(ctx,
		`SELECT id, thread_id, role, parts, created_at
		 FROM messages
		 WHERE thread_id = ?
		 ORDER BY created_at ASC`, threadID)
}

// ListRecent retrieves the most recent limit messages in chronological order.
func (r *MessageRepository) ListRecent(ctx context.Context, threadID string, limit int) ([]domain.Message, error) {
	messages, err := r.queryMessages(ctx,
		`SELECT id, thread_id, role, parts, created_at
		 FROM messages
		 WHERE thread_id = ?
		 ORDER BY created_at DESC
		 LIMIT ?`, threadID, limit)
	if err != nil {
		return nil, err
	}

	// Reverse to return chronological order (oldest first)
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

func (r *MessageRepository) queryMessages(ctx context.Context, query string, args ...any) ([]domain.Message, error) {
	rows, err := r.db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, domain.Wrap(domain.KindStorage, "failed to list messages", err)
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var m domain.Message
		var roleStr, partsJSON, createdAt string

		if err := rows.Scan(&m.ID, &m.ThreadID, &roleStr, &partsJSON, &createdAt); err != nil {
			return nil, domain.Wrap(domain.KindStorage, "failed to scan message", err)
		}
		m.Role = domain.MessageRole(roleStr)
		if err := json.Unmarshal([]byte(partsJSON), &m.Parts); err != nil {
			return nil, domain.Wrap(domain.KindStorage, "failed to unmarshal parts", err)
		}
		if m.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
			return nil, domain.Wrap(domain.KindStorage, "failed to parse message timestamp", err)
		}
		messages = append(messages, m)
	}
	return messages, nil
}
