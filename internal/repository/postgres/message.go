package postgres

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ocha-app/ocha/internal/domain"
)

// MessageRepository implements domain.MessageRepository
type MessageRepository struct {
	pool *pgxpool.Pool
}

// NewMessageRepository creates a new message repository
func NewMessageRepository(pool *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{pool: pool}
}

// Create inserts the message and bumps the parent thread's updated_at in
// one transaction. The referential check on thread_id rejects appends to
// missing threads.
func (r *MessageRepository) Create(ctx context.Context, message *domain.Message) error {
	if err := domain.ValidateParts(message.Parts); err != nil {
		return err
	}

	partsJSON, err := json.Marshal(message.Parts)
	if err != nil {
		return domain.Wrap(domain.KindStorage, "failed to marshal parts", err)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domain.Wrap(domain.KindStorage, "failed to begin transaction", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE threads SET updated_at = $1 WHERE id = $2`,
		message.CreatedAt, message.ThreadID,
	)
	if err != nil {
		return domain.Wrap(domain.KindStorage, "failed to touch thread", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.E(domain.KindStorage, "thread does not exist")
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO messages (id, thread_id, role, parts, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		message.ID,
		message.ThreadID,
		string(message.Role),
		partsJSON,
		message.CreatedAt,
	)
	if err != nil {
		return domain.Wrap(domain.KindStorage, "failed to create message", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Wrap(domain.KindStorage, "failed to commit message", err)
	}
	return nil
}

// ListByThread retrieves all messages of a thread, oldest first.
func (r *MessageRepository) ListByThread(ctx context.Context, threadID string) ([]domain.Message, error) {
	query := `
		SELECT id, thread_id, role, parts, created_at
		FROM messages
		WHERE thread_id = $1
		ORDER BY created_at ASC
	`
	return r.queryMessages(ctx, query, threadID)
}

// ListRecent retrieves the most recent limit messages in chronological order.
func (r *MessageRepository) ListRecent(ctx context.Context, threadID string, limit int) ([]domain.Message, error) {
	query := `
		SELECT id, thread_id, role, parts, created_at
		FROM messages
		WHERE thread_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	messages, err := r.queryMessages(ctx, query, threadID, limit)
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
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, domain.Wrap(domain.KindStorage, "failed to list messages", err)
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var m domain.Message
		var roleStr string
		var partsJSON []byte

		if err := rows.Scan(
			&m.ID,
			&m.ThreadID,
			&roleStr,
			&partsJSON,
			&m.CreatedAt,
		); err != nil {
			return nil, domain.Wrap(domain.KindStorage, "failed to scan message", err)
		}
		m.Role = domain.MessageRole(roleStr)
		if err := json.Unmarshal(partsJSON, &m.Parts); err != nil {
			return nil, domain.Wrap(domain.KindStorage, "failed to unmarshal parts", err)
		}
		messages = append(messages, m)
	}
	return messages, nil
}
