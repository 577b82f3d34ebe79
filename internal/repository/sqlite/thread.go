package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/ocha-app/ocha/internal/domain"
)

// Timestamps are stored as UTC text with fixed-width fractional seconds
// so lexical order matches chronological order for the created_at index.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ThreadRepository implements domain.ThreadRepository
type ThreadRepository struct {
	db *DB
}

// NewThreadRepository creates a new thread repository
func NewThreadRepository(db *DB) *ThreadRepository {
	return &ThreadRepository{db: db}
}

func (r *ThreadRepository) Create(ctx context.Context, thread *domain.Thread) error {
	_, err := r.db.conn.ExecContext(ctx,
		`INSERT INTO threads (id, user_id, title, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		thread.ID,
		thread.UserID,
		nullableTitle(thread.Title),
		thread.CreatedAt.UTC().Format(timeLayout),
		thread.UpdatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return domain.Wrap(domain.KindStorage, "failed to create thread", err)
	}
	return nil
}

func (r *ThreadRepository) Get(ctx context.Context, id string) (*domain.Thread, error) {
	row := r.db.conn.QueryRowContext(ctx,
		`SELECT id, user_id, title, created_at, updated_at FROM threads WHERE id = ?`, id)

	t, err := scanThread(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.E(domain.KindNotFound, "thread not found")
	}
	if err != nil {
		return nil, domain.Wrap(domain.KindStorage, "failed to get thread", err)
	}
	return t, nil
}

func (r *ThreadRepository) ListByUser(ctx context.Context, userID string) ([]domain.Thread, error) {
	rows, err := r.db.conn.QueryContext(ctx,
		`SELECT id, user_id, title, created_at, updated_at
		 FROM threads
		 WHERE user_id = ?
		 ORDER BY updated_at DESC, created_at DESC`, userID)
	if err != nil {
		return nil, domain.Wrap(domain.KindStorage, "failed to list threads", err)
	}
	defer rows.Close()

	var threads []domain.Thread
	for rows.Next() {
		t, err := scanThread(rows.Scan)
		if err != nil {
			return nil, domain.Wrap(domain.KindStorage, "failed to scan thread", err)
		}
		threads = append(threads, *t)
	}
	return threads, nil
}

func (r *ThreadRepository) UpdateTitle(ctx context.Context, id string, title string) error {
	res, err := r.db.conn.ExecContext(ctx,
		`UPDATE threads SET title = ?, updated_at = ? WHERE id = ?`,
		title, time.Now().UTC().Format(timeLayout), id)
	if err != nil {
		return domain.Wrap(domain.KindStorage, "failed to update thread", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.E(domain.KindNotFound, "thread not found")
	}
	return nil
}

func (r *ThreadRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.conn.ExecContext(ctx, `DELETE FROM threads WHERE id = ?`, id)
	if err != nil {
		return domain.Wrap(domain.KindStorage, "failed to delete thread", err)
	}
	return nil
}

func (r *ThreadRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM threads WHERE user_id = ?`, userID).Scan(&count)
	if err != nil {
		return 0, domain.Wrap(domain.KindStorage, "failed to count threads", err)
	}
	return count, nil
}

func scanThread(scan func(...any) error) (*domain.Thread, error) {
	var t domain.Thread
	var title sql.NullString
	var createdAt, updatedAt string
	if err := scan(&t.ID, &t.UserID, &title, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	t.Title = title.String

	var err error
	if t.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return nil, err
	}
	if t.UpdatedAt, err = time.Parse(timeLayout, updatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

func nullableTitle(title string) any {
	if title == "" {
		return nil
	}
	return title
}
