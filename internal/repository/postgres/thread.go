package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ocha-app/ocha/internal/domain"
)

// ThreadRepository implements domain.ThreadRepository
type ThreadRepository struct {
	pool *pgxpool.Pool
}

// NewThreadRepository creates a new thread repository
func NewThreadRepository(pool *pgxpool.Pool) *ThreadRepository {
	return &ThreadRepository{pool: pool}
}

func (r *ThreadRepository) Create(ctx context.Context, thread *domain.Thread) error {
	query := `
		INSERT INTO threads (id, user_id, title, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.pool.Exec(ctx, query,
		thread.ID,
		thread.UserID,
		thread.Title,
		thread.CreatedAt,
		thread.UpdatedAt,
	)
	if err != nil {
		return domain.Wrap(domain.KindStorage, "failed to create thread", err)
	}
	return nil
}

func (r *ThreadRepository) Get(ctx context.Context, id string) (*domain.Thread, error) {
	query := `
		SELECT id, user_id, title, created_at, updated_at
		FROM threads
		WHERE id = $1
	`
	var t domain.Thread
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&t.ID,
		&t.UserID,
		&t.Title,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.E(domain.KindNotFound, "thread not found")
	}
	if err != nil {
		return nil, domain.Wrap(domain.KindStorage, "failed to get thread", err)
	}
	return &t, nil
}

func (r *ThreadRepository) ListByUser(ctx context.Context, userID string) ([]domain.Thread, error) {
	query := `
		SELECT id, user_id, title, created_at, updated_at
		FROM threads
		WHERE user_id = $1
		ORDER BY updated_at DESC, created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, domain.Wrap(domain.KindStorage, "failed to list threads", err)
	}
	defer rows.Close()

	var threads []domain.Thread
	for rows.Next() {
		var t domain.Thread
		if err := rows.Scan(
			&t.ID,
			&t.UserID,
			&t.Title,
			&t.CreatedAt,
			&t.UpdatedAt,
		); err != nil {
			return nil, domain.Wrap(domain.KindStorage, "failed to scan thread", err)
		}
		threads = append(threads, t)
	}
	return threads, nil
}

func (r *ThreadRepository) UpdateTitle(ctx context.Context, id string, title string) error {
	query := `
		UPDATE threads
		SET title = $1, updated_at = NOW()
		WHERE id = $2
	`
	tag, err := r.pool.Exec(ctx, query, title, id)
	if err != nil {
		return domain.Wrap(domain.KindStorage, "failed to update thread", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.E(domain.KindNotFound, "thread not found")
	}
	return nil
}

func (r *ThreadRepository) Delete(ctx context.Context, id string) error {
	// Messages go with it via ON DELETE CASCADE.
	query := `DELETE FROM threads WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return domain.Wrap(domain.KindStorage, "failed to delete thread", err)
	}
	return nil
}

func (r *ThreadRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM threads WHERE user_id = $1`, userID).Scan(&count)
	if err != nil {
		return 0, domain.Wrap(domain.KindStorage, "failed to count threads", err)
	}
	return count, nil
}
